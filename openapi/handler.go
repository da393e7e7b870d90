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
	"net/url"
	"strings"

	"github.com/czcorpus/cnc-gokit/uniresp"
	"github.com/gin-gonic/gin"
)

// headerOr returns the first non-empty request header
// from the list or the fallback value
func headerOr(req *http.Request, fallback string, headers ...string) string {
	for _, h := range headers {
		if v := req.Header.Get(h); v != "" {
			return v
		}
	}
	return fallback
}

// requestURL reconstructs the URL a client used, respecting
// headers set by a reverse proxy
func requestURL(req *http.Request) (string, error) {
	scheme := "http"
	if req.TLS != nil {
		scheme = "https"
	}
	u := url.URL{
		Scheme: headerOr(req, scheme, "X-Forwarded-Proto"),
		Host:   headerOr(req, req.Host, "X-Forwarded-Host"),
	}
	return url.JoinPath(u.String(), headerOr(req, req.URL.Path, "X-Original-Path"))
}

// serverURL prefers the configured public URL whenever the request
// was addressed to it. Otherwise the URL is derived from the request
// with the OpenAPI endpoint path stripped.
func serverURL(conf *cnf.Conf, req *http.Request, endpoint string) string {
	curr, err := requestURL(req)
	if err != nil {
		return conf.PublicURL
	}
	if conf.PublicURL != "" && strings.HasPrefix(curr, conf.PublicURL) {
		return conf.PublicURL
	}
	return strings.TrimSuffix(curr, endpoint)
}

func MkHandleRequest(conf *cnf.Conf, ver, endpoint string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		uniresp.WriteJSONResponse(
			ctx.Writer,
			NewResponse(ver, serverURL(conf, ctx.Request, endpoint)),
		)
	}
}
