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
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := monitoring.NewWorkerJobLogger(nil)
	t0 := time.Now()
	logger.Log(results.JobLog{
		WorkerID: "w1", Func: "process", Resource: "syn", Begin: t0, End: t0.Add(time.Second)})
	logger.Log(results.JobLog{
		WorkerID: "w1", Func: "process", Resource: "bnc", Begin: t0, End: t0.Add(time.Second), Err: "failed"})
	actions := NewActions(logger)
	engine := gin.New()
	engine.GET("/load", actions.WorkersLoad)
	engine.GET("/load/:workerId", actions.SingleWorkerLoad)
	engine.GET("/records", actions.RecentRecords)
	engine.GET("/calls", actions.CallStats)
	return engine
}

func TestWorkersLoad(t *testing.T) {
	engine := newTestEngine()
	for _, item := range []struct {
		url    string
		status int
	}{
		{"/load", http.StatusOK},
		{"/load?span=total", http.StatusOK},
		{"/load?span=yesterday", http.StatusBadRequest},
		{"/load/w1", http.StatusOK},
		{"/load/w1?span=total", http.StatusOK},
		{"/load/w1?span=never", http.StatusBadRequest},
		{"/load/w2", http.StatusNotFound},
		{"/load/w2?span=total", http.StatusNotFound},
		{"/records", http.StatusOK},
		{"/calls", http.StatusOK},
	} {
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, item.url, nil))
		assert.Equal(t, item.status, rec.Code, item.url)
	}
}

func TestRecentRecordsFilter(t *testing.T) {
	engine := newTestEngine()
	get := func(url string) []results.JobLog {
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))
		require.Equal(t, http.StatusOK, rec.Code)
		var ans struct {
			Records []results.JobLog `json:"records"`
		}
		require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &ans))
		return ans.Records
	}
	assert.Len(t, get("/records"), 2)
	assert.Len(t, get("/records?resource=syn"), 1)
	errs := get("/records?errorsOnly=1")
	require.Len(t, errs, 1)
	assert.Equal(t, "bnc", errs[0].Resource)
	assert.Empty(t, get("/records?func=cellContent"))
}

func TestCallStats(t *testing.T) {
	engine := newTestEngine()
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/calls", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var ans struct {
		Calls []monitoring.CallStats `json:"calls"`
	}
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &ans))
	require.Len(t, ans.Calls, 2)
	assert.Equal(t, "bnc", ans.Calls[0].Resource)
	assert.Equal(t, 1, ans.Calls[0].NumErrors)
	assert.InDelta(t, 1.0, ans.Calls[1].AvgDurationSecs, 1e-6)
}
