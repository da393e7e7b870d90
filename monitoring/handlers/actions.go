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

package handlers

import (
	"coqpipe/monitoring"
	"coqpipe/results"
	"errors"
	"fmt"
	"net/http"

	"github.com/czcorpus/cnc-gokit/uniresp"
	"github.com/gin-gonic/gin"
)

const (
	spanRecent = "recent"
	spanTotal  = "total"
)

// jobStats provides aggregated information about jobs
// processed by workers
type jobStats interface {
	TotalLoad() monitoring.WorkerLoad
	RecentLoad() monitoring.WorkerLoad
	TotalWorkerLoad(workerID string) (monitoring.WorkerLoad, error)
	RecentWorkerLoad(workerID string) (monitoring.WorkerLoad, error)
	RecentRecords(filter monitoring.RecordFilter) []results.JobLog
	RecentCallStats() []monitoring.CallStats
}

type Actions struct {
	stats jobStats
}

// spanOrFail reads the `span` URL argument (`recent` by default)
func spanOrFail(ctx *gin.Context) (string, bool) {
	span := ctx.DefaultQuery("span", spanRecent)
	if span != spanRecent && span != spanTotal {
		uniresp.RespondWithErrorJSON(
			ctx, fmt.Errorf("unknown time span `%s`", span), http.StatusBadRequest)
		return "", false
	}
	return span, true
}

func (a *Actions) WorkersLoad(ctx *gin.Context) {
	span, ok := spanOrFail(ctx)
	if !ok {
		return
	}
	if span == spanTotal {
		uniresp.WriteJSONResponse(ctx.Writer, a.stats.TotalLoad())
		return
	}
	uniresp.WriteJSONResponse(ctx.Writer, a.stats.RecentLoad())
}

func (a *Actions) SingleWorkerLoad(ctx *gin.Context) {
	span, ok := spanOrFail(ctx)
	if !ok {
		return
	}
	getLoad := a.stats.RecentWorkerLoad
	if span == spanTotal {
		getLoad = a.stats.TotalWorkerLoad
	}
	ans, err := getLoad(ctx.Param("workerId"))
	if errors.Is(err, monitoring.ErrWorkerNotFound) {
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusNotFound)
		return

	} else if err != nil {
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusInternalServerError)
		return
	}
	uniresp.WriteJSONResponse(ctx.Writer, ans)
}

// RecentRecords lists recent jobs, optionally filtered
// by `resource`, `func` and `errorsOnly=1`
func (a *Actions) RecentRecords(ctx *gin.Context) {
	filter := monitoring.RecordFilter{
		Resource:   ctx.Query("resource"),
		Func:       ctx.Query("func"),
		ErrorsOnly: ctx.Query("errorsOnly") == "1",
	}
	uniresp.WriteJSONResponse(
		ctx.Writer,
		map[string][]results.JobLog{"records": a.stats.RecentRecords(filter)},
	)
}

// CallStats shows how often (and how fast) individual job
// functions were recently called on each resource
func (a *Actions) CallStats(ctx *gin.Context) {
	uniresp.WriteJSONResponse(
		ctx.Writer,
		map[string][]monitoring.CallStats{"calls": a.stats.RecentCallStats()},
	)
}

func NewActions(stats *monitoring.WorkerJobLogger) *Actions {
	return &Actions{stats: stats}
}
