// Copyright 2026 Institute of the Czech National Corpus,
//                Faculty of Arts, Charles University
//   This file is part of COQPIPE.
//
//  COQPIPE is free software: you can redistribute it and/or modify
//  it under the terms of the GNU General Public License as published by
//  the Free Software Foundation, either version 3 of the License, or
//  (at your option) any later version.
//
//  COQPIPE is distributed in the hope that it will be useful,
//  but WITHOUT ANY WARRANTY; without even the implied warranty of
//  MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
//  GNU General Public License for more details.
//
//  You should have received a copy of the GNU General Public License
//  along with COQPIPE.  If not, see <https://www.gnu.org/licenses/>.

package openapi

const (
	apiVersion  = "3.1.0"
	contentJSON = "application/json"
)

var statusDescriptions = map[string]string{
	"400": "Invalid request or processing arguments",
	"404": "Unknown resource or worker",
	"500": "Processing failed",
	"504": "No worker responded in time",
}

func pathParam(name, desc string) Parameter {
	return Parameter{Name: name, In: "path", Description: desc, Required: true, Schema: stringType}
}

func queryParam(name, desc string, schema Schema, required bool) Parameter {
	return Parameter{Name: name, In: "query", Description: desc, Required: required, Schema: schema}
}

var resourceParam = pathParam("resourceId", "An ID of a corpus resource the query result comes from")

func jsonContent(schema Schema) Content {
	return Content{contentJSON: {Schema: schema}}
}

// responses describes a successful response and the listed error statuses
func responses(ok Schema, errStatuses ...string) Responses {
	ans := Responses{"200": {Description: "OK", Content: jsonContent(ok)}}
	for _, status := range errStatuses {
		ans[status] = Response{
			Description: statusDescriptions[status],
			Content:     jsonContent(ref("Error")),
		}
	}
	return ans
}

func jsonBody(desc, schema string) *RequestBody {
	return &RequestBody{Description: desc, Required: true, Content: jsonContent(ref(schema))}
}

func processingOperation(operationID, description string) *Operation {
	return &Operation{
		Description: description,
		OperationID: operationID,
		Parameters:  []Parameter{resourceParam},
		RequestBody: jsonBody("A raw query result along with processing settings", "ProcessRequest"),
		Responses:   responses(ref("ProcessResult"), "400", "404", "500", "504"),
	}
}

var spanParam = queryParam(
	"span", "Either recently finished jobs or all the jobs since worker's first report",
	enum("recent", "total"), false)

func resourcePaths() map[string]PathItem {
	return map[string]PathItem{
		"/resources": {Get: &Operation{
			Description: "Lists configured corpus resources along with their features.",
			OperationID: "Resources",
			Parameters:  []Parameter{},
			Responses: responses(object(map[string]Schema{
				"resources": arrayOf(ref("ResourceInfo")),
			})),
		}},
		"/resources/{resourceId}": {Get: &Operation{
			Description: "Shows features of a corpus resource.",
			OperationID: "ResourceInfo",
			Parameters:  []Parameter{resourceParam},
			Responses:   responses(ref("ResourceInfo"), "404"),
		}},
	}
}

func processingPaths() map[string]PathItem {
	return map[string]PathItem{
		"/process/{resourceId}": {Post: processingOperation(
			"Process",
			"Runs the whole processing pipeline (functions, filters, grouping, "+
				"aggregation and sorting) on a raw query result.",
		)},
		"/arrange/{resourceId}": {Post: processingOperation(
			"Arrange",
			"Sorts the last processed result of the same query without recalculating it. "+
				"In case no such result is available, the table is processed from scratch.",
		)},
		"/cell/{resourceId}": {Get: &Operation{
			Description: "Shows frequencies and subcorpus sizes behind a cell of the last contrast matrix.",
			OperationID: "CellContent",
			Parameters: []Parameter{
				resourceParam,
				queryParam("queryId", "An ID of the query the contrast matrix was calculated for", stringType, true),
				queryParam("row", "A row index", integerType, true),
				queryParam("col", "An index of a visible column", integerType, true),
			},
			Responses: responses(ref("CellContent"), "400", "404", "500", "504"),
		}},
		"/headers/{resourceId}": {Post: &Operation{
			Description: "Translates internal column names to display names.",
			OperationID: "TranslateHeaders",
			Parameters:  []Parameter{resourceParam},
			RequestBody: jsonBody("Session and the column names to translate", "HeadersRequest"),
			Responses:   responses(ref("Headers"), "400", "404", "500", "504"),
		}},
	}
}

func monitoringPaths() map[string]PathItem {
	return map[string]PathItem{
		"/monitoring/workers-load": {Get: &Operation{
			Description: "Shows an aggregated load of all the workers.",
			OperationID: "WorkersLoad",
			Parameters:  []Parameter{spanParam},
			Responses:   responses(ref("WorkerLoad"), "400"),
		}},
		"/monitoring/workers-load/{workerId}": {Get: &Operation{
			Description: "Shows a load of a single worker.",
			OperationID: "SingleWorkerLoad",
			Parameters:  []Parameter{pathParam("workerId", "A worker ID"), spanParam},
			Responses:   responses(ref("WorkerLoad"), "400", "404"),
		}},
		"/monitoring/recent-records": {Get: &Operation{
			Description: "Lists recently finished jobs.",
			OperationID: "RecentRecords",
			Parameters: []Parameter{
				queryParam("resource", "Show only jobs of a resource", stringType, false),
				queryParam("func", "Show only jobs of a function", stringType, false),
				queryParam("errorsOnly", "With `1`, only failed jobs are listed", stringType, false),
			},
			Responses: responses(ref("JobRecords")),
		}},
		"/monitoring/call-stats": {Get: &Operation{
			Description: "Summarizes recently finished jobs by function and resource.",
			OperationID: "CallStats",
			Parameters:  []Parameter{},
			Responses:   responses(ref("CallStats")),
		}},
	}
}

// NewResponse creates an OpenAPI description of the HTTP API
func NewResponse(ver, url string) *APIResponse {
	paths := make(map[string]PathItem)
	for _, group := range []map[string]PathItem{
		resourcePaths(), processingPaths(), monitoringPaths(),
	} {
		for k, v := range group {
			paths[k] = v
		}
	}
	return &APIResponse{
		OpenAPI: apiVersion,
		Info: Info{
			Title:       "CoqPipe",
			Description: "Processing of corpus query results: aggregation, statistics and sorting",
			Version:     ver,
		},
		Servers:    []Server{{URL: url}},
		Paths:      paths,
		Components: Components{Schemas: createSchemas()},
	}
}
