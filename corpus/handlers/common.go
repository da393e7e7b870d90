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
	"coqpipe/rdb"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"time"

	"github.com/bytedance/sonic"
	"github.com/czcorpus/cnc-gokit/uniresp"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

var (
	errNoResult      = errors.New("no result received from worker")
	errWorkerTimeout = errors.New("worker did not respond in time")
)

func respondErr(ctx *gin.Context, err error, status int) {
	uniresp.WriteJSONErrorResponse(ctx.Writer, uniresp.NewActionErrorFrom(err), status)
}

// decodeBodyOrFail reads a JSON request body. In case of an error,
// a response is written and false is returned.
func decodeBodyOrFail[T any](ctx *gin.Context) (T, bool) {
	var ans T
	data, err := io.ReadAll(ctx.Request.Body)
	if err == nil {
		err = sonic.Unmarshal(data, &ans)
	}
	if err != nil {
		respondErr(ctx, fmt.Errorf("invalid request body: %w", err), http.StatusBadRequest)
		return ans, false
	}
	return ans, true
}

// workerErrorStatus maps a failed job to an HTTP status
func workerErrorStatus(result *rdb.WorkerResult) int {
	if result.HasUserError {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// decodeResult unpacks a typed value from a worker result
func decodeResult[T any](result *rdb.WorkerResult) (T, error) {
	var ans T
	if len(result.Value) == 0 {
		return ans, fmt.Errorf("missing worker result value of type %s", reflect.TypeOf(ans))
	}
	if err := sonic.Unmarshal(result.Value, &ans); err != nil {
		return ans, fmt.Errorf(
			"unexpected value for %s (result type %s): %w",
			reflect.TypeOf(ans), result.ResultType, err)
	}
	return ans, nil
}

// awaitResult publishes a query and waits for its result. Any failure
// is written to the response and nil is returned.
func (a *Actions) awaitResult(ctx *gin.Context, fn string, args any) *rdb.WorkerResult {
	query, err := rdb.NewQuery(fn, args)
	if err != nil {
		respondErr(ctx, err, http.StatusInternalServerError)
		return nil
	}
	wait, err := a.radapter.PublishQuery(query)
	if err != nil {
		respondErr(ctx, err, http.StatusInternalServerError)
		return nil
	}
	timer := time.NewTimer(a.workerTimeout)
	defer timer.Stop()
	var result *rdb.WorkerResult
	select {
	case result = <-wait:
	case <-timer.C:
		log.Error().
			Str("func", fn).
			Dur("timeout", a.workerTimeout).
			Msg("worker did not respond in time")
		respondErr(ctx, errWorkerTimeout, http.StatusGatewayTimeout)
		return nil
	}
	if result == nil {
		respondErr(ctx, errNoResult, http.StatusInternalServerError)
		return nil
	}
	if a.jobLogger != nil {
		a.jobLogger.Log(result.JobLog())
	}
	if err := result.Err(); err != nil {
		respondErr(ctx, err, workerErrorStatus(result))
		return nil
	}
	return result
}

// runJob sends a job to workers and writes its typed
// result to the response
func runJob[T any](a *Actions, ctx *gin.Context, fn string, args any) {
	raw := a.awaitResult(ctx, fn, args)
	if raw == nil {
		return
	}
	ans, err := decodeResult[T](raw)
	if err != nil {
		respondErr(ctx, err, http.StatusInternalServerError)
		return
	}
	uniresp.WriteJSONResponse(ctx.Writer, &ans)
}
