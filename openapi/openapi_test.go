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

import (
	"coqpipe/cnf"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResponseRefsResolve(t *testing.T) {
	ans := NewResponse("1.2.3", "http://localhost:8090")
	assert.Equal(t, "1.2.3", ans.Info.Version)
	for _, p := range []string{
		"/resources", "/resources/{resourceId}", "/process/{resourceId}",
		"/arrange/{resourceId}", "/cell/{resourceId}", "/headers/{resourceId}",
		"/monitoring/workers-load", "/monitoring/workers-load/{workerId}",
		"/monitoring/recent-records", "/monitoring/call-stats",
	} {
		assert.Contains(t, ans.Paths, p)
	}
	data, err := sonic.Marshal(ans)
	require.NoError(t, err)
	schemas := ans.Components.Schemas
	for _, chunk := range strings.Split(string(data), `"$ref":"#/components/schemas/`)[1:] {
		name := chunk[:strings.Index(chunk, `"`)]
		assert.Contains(t, schemas, name)
	}
	process := ans.Paths["/process/{resourceId}"].Post
	require.NotNil(t, process)
	assert.Contains(t, process.Responses, "504")
	assert.Equal(t, "Error", strings.TrimPrefix(process.Responses["400"].Content[contentJSON].Schema.Ref, schemaPrefix))
}

func TestHandlerServerURL(t *testing.T) {
	gin.SetMode(gin.TestMode)
	conf := &cnf.Conf{PublicURL: "https://api.example.com/coqpipe"}
	engine := gin.New()
	engine.GET("/openapi", MkHandleRequest(conf, "0.1", "/openapi"))

	decode := func(req *http.Request) *APIResponse {
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		var ans APIResponse
		require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &ans))
		return &ans
	}

	req := httptest.NewRequest(http.MethodGet, "/openapi", nil)
	req.Header.Set("x-forwarded-proto", "https")
	req.Header.Set("x-forwarded-host", "api.example.com")
	req.Header.Set("x-original-path", "/coqpipe/openapi")
	ans := decode(req)
	require.Len(t, ans.Servers, 1)
	assert.Equal(t, "https://api.example.com/coqpipe", ans.Servers[0].URL)

	req = httptest.NewRequest(http.MethodGet, "http://localhost:8090/openapi", nil)
	ans = decode(req)
	assert.Equal(t, "http://localhost:8090", ans.Servers[0].URL)
}
