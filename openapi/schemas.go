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

const schemaPrefix = "#/components/schemas/"

var (
	stringType  = Schema{Type: "string"}
	integerType = Schema{Type: "integer"}
	numberType  = Schema{Type: "number"}
	booleanType = Schema{Type: "boolean"}
)

func ref(name string) Schema {
	return Schema{Ref: schemaPrefix + name}
}

func arrayOf(item Schema) Schema {
	return Schema{Type: "array", Items: &item}
}

func mapOf(value Schema) Schema {
	return Schema{Type: "object", AdditionalProperties: &value}
}

func object(props map[string]Schema) Schema {
	return Schema{Type: "object", Properties: props}
}

func enum(values ...string) Schema {
	return Schema{Type: "string", Enum: values}
}

func createSchemas() map[string]Schema {
	stringList := arrayOf(stringType)
	return map[string]Schema{
		"TableData": object(map[string]Schema{
			"columns": stringList,
			"kinds":   stringList.Describe("Kinds of columns (`string`, `int`, `float`)"),
			"labels":  stringList,
			"rows":    arrayOf(arrayOf(Schema{Description: "a cell value"})),
		}).Describe("A table encoded by rows. Values are strings, numbers or null (NA)."),

		"FunctionSpec": object(map[string]Schema{
			"name":    stringType,
			"columns": stringList,
			"value":   stringType,
			"alias":   stringType,
		}),

		"Filter": object(map[string]Schema{
			"column":   stringType,
			"operator": enum("==", "!=", "<", "<=", ">", ">=", "~", "in"),
			"value":    stringType,
		}),

		"Sorter": object(map[string]Schema{
			"column":    stringType,
			"ascending": booleanType,
			"reverse":   booleanType,
			"position":  integerType,
		}),

		"PipelineOptions": object(map[string]Schema{
			"caseSensitive": booleanType,
			"outputToLower": booleanType,
			"stopwords":     stringList,
			"contextMode":   enum("none", "kwic", "string", "columns"),
			"contextLeft":   integerType,
			"contextRight":  integerType,
			"groupColumns":  stringList,
			"dropOnNA":      booleanType,
		}),

		"Session": object(map[string]Schema{
			"queryId":         stringType,
			"queryLabel":      stringType,
			"maxTokenCount":   integerType,
			"numberLabels":    stringList,
			"aliases":         mapOf(stringType),
			"options":         ref("PipelineOptions"),
			"columnFunctions": arrayOf(ref("FunctionSpec")),
		}),

		"ProcessRequest": object(map[string]Schema{
			"session": ref("Session"),
			"manager": object(map[string]Schema{
				"mode": enum(
					"TOKENS", "TYPES", "FREQUENCIES", "CONTINGENCY", "COLLOCATIONS", "CONTRASTS"),
				"hiddenColumns":    stringList,
				"filters":          arrayOf(ref("Filter")),
				"groupFilters":     arrayOf(ref("Filter")),
				"groupFunctions":   arrayOf(ref("FunctionSpec")),
				"summaryFunctions": arrayOf(ref("FunctionSpec")),
				"sorters": Schema{
					Type:        "array",
					Nullable:    true,
					Items:       &Schema{Ref: schemaPrefix + "Sorter"},
					Description: "Sorters replacing the current ones. With null, the current sorters are kept.",
				},
			}),
			"table":       ref("TableData"),
			"recalculate": booleanType,
		}),

		"ProcessResult": object(map[string]Schema{
			"table":   ref("TableData"),
			"headers": mapOf(stringType),
			"visible": stringList,
			"mode":    stringType,
			"exceptions": arrayOf(object(map[string]Schema{
				"label":   stringType,
				"message": stringType,
			})),
			"filterStatistics": object(map[string]Schema{
				"preFilter":       integerType,
				"postFilter":      integerType,
				"preGroupFilter":  mapOf(integerType),
				"postGroupFilter": mapOf(integerType),
			}),
			"stopwordsFailed": booleanType,
			"sorters":         arrayOf(ref("Sorter")),
			"resultType":      enum("process"),
		}),

		"CellContent": object(map[string]Schema{
			"cell": object(map[string]Schema{
				"freqRow":  integerType,
				"freqCol":  integerType,
				"totalRow": integerType,
				"totalCol": integerType,
				"labelRow": stringType,
				"labelCol": stringType,
			}),
			"resultType": enum("cellContent"),
		}),

		"HeadersRequest": object(map[string]Schema{
			"session":     ref("Session"),
			"mode":        stringType,
			"headers":     stringList,
			"ignoreAlias": booleanType,
		}),

		"Headers": object(map[string]Schema{
			"headers":    mapOf(stringType),
			"resultType": enum("headers"),
		}),

		"ResourceInfo": object(map[string]Schema{
			"name":        stringType,
			"dbName":      stringType,
			"wordFeature": stringType,
			"features": arrayOf(object(map[string]Schema{
				"name":    stringType,
				"label":   stringType,
				"lexical": booleanType,
				"time":    booleanType,
			})),
			"preferredOrder": stringList,
		}),

		"WorkerLoad": object(map[string]Schema{
			"numJobs":       integerType,
			"numErrors":     integerType,
			"numWorkers":    integerType,
			"totalTimeSecs": numberType,
			"avgJobSecs":    numberType,
			"avgLoad":       numberType,
			"errorRate":     numberType,
			"firstUpdate":   stringType,
			"lastUpdate":    stringType,
		}),

		"JobRecords": object(map[string]Schema{
			"records": arrayOf(object(map[string]Schema{
				"workerId": stringType,
				"func":     stringType,
				"resource": stringType,
				"begin":    stringType,
				"end":      stringType,
				"error":    stringType,
			})),
		}),

		"CallStats": object(map[string]Schema{
			"calls": arrayOf(object(map[string]Schema{
				"func":            stringType,
				"resource":        stringType,
				"numCalls":        integerType,
				"numErrors":       integerType,
				"avgDurationSecs": numberType,
			})),
		}),

		"Error": object(map[string]Schema{
			"error": stringType,
		}),
	}
}
