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
	"coqpipe/corpus"
	"fmt"
	"net/http"

	"github.com/czcorpus/cnc-gokit/collections"
	"github.com/czcorpus/cnc-gokit/uniresp"
	"github.com/gin-gonic/gin"
)

type featureInfo struct {
	Name    string `json:"name"`
	Label   string `json:"label"`
	Lexical bool   `json:"lexical"`
	Time    bool   `json:"time"`
}

type resourceInfo struct {
	Name           string        `json:"name"`
	DBName         string        `json:"dbName"`
	WordFeature    string        `json:"wordFeature"`
	Features       []featureInfo `json:"features"`
	PreferredOrder []string      `json:"preferredOrder"`
}

func newResourceInfo(conf *corpus.ResourceConf) resourceInfo {
	return resourceInfo{
		Name:        conf.Name,
		DBName:      conf.DBName,
		WordFeature: conf.WordFeature,
		Features: collections.SliceMap(
			conf.Features,
			func(f corpus.FeatureConf, i int) featureInfo {
				return featureInfo{Name: f.Name, Label: f.Label, Lexical: f.Lexical, Time: f.Time}
			},
		),
		PreferredOrder: conf.PreferredOrder,
	}
}

// resourceOrFail finds configuration of the resource specified
// by the `resourceId` URL parameter
func (a *Actions) resourceOrFail(ctx *gin.Context) (*corpus.ResourceConf, bool) {
	rc := a.conf.Resources.Get(ctx.Param("resourceId"))
	if rc == nil {
		uniresp.RespondWithErrorJSON(
			ctx,
			fmt.Errorf("resource %s not found", ctx.Param("resourceId")),
			http.StatusNotFound,
		)
		return nil, false
	}
	return rc, true
}

func (a *Actions) Resources(ctx *gin.Context) {
	ans := struct {
		Resources []resourceInfo `json:"resources"`
	}{
		Resources: collections.SliceMap(
			a.conf.Resources,
			func(rc *corpus.ResourceConf, i int) resourceInfo {
				return newResourceInfo(rc)
			},
		),
	}
	uniresp.WriteJSONResponse(ctx.Writer, ans)
}

func (a *Actions) ResourceInfo(ctx *gin.Context) {
	rc, ok := a.resourceOrFail(ctx)
	if !ok {
		return
	}
	uniresp.WriteJSONResponse(ctx.Writer, newResourceInfo(rc))
}
