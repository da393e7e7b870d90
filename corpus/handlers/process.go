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

	"github.com/czcorpus/cnc-gokit/unireq"
	"github.com/gin-gonic/gin"
)

func (a *Actions) runProcessing(ctx *gin.Context, fn string) {
	if _, ok := a.resourceOrFail(ctx); !ok {
		return
	}
	args, ok := decodeBodyOrFail[rdb.ProcessArgs](ctx)
	if !ok {
		return
	}
	args.Session.Resource = ctx.Param("resourceId")
	runJob[rdb.ProcessResult](a, ctx, fn, args)
}

// Process runs the whole processing pipeline on a raw query
// result sent in the request body
func (a *Actions) Process(ctx *gin.Context) {
	a.runProcessing(ctx, rdb.FuncProcess)
}

// Arrange sorts the last result of a query using sorters
// from the request. The table in the request is used only
// in case no previous result is available.
func (a *Actions) Arrange(ctx *gin.Context) {
	a.runProcessing(ctx, rdb.FuncArrange)
}

func (a *Actions) CellContent(ctx *gin.Context) {
	if _, ok := a.resourceOrFail(ctx); !ok {
		return
	}
	row, ok := unireq.RequireURLIntArgOrFail(ctx, "row")
	if !ok {
		return
	}
	col, ok := unireq.RequireURLIntArgOrFail(ctx, "col")
	if !ok {
		return
	}
	runJob[rdb.CellContentResult](a, ctx, rdb.FuncCellContent, rdb.CellContentArgs{
		Resource: ctx.Param("resourceId"),
		QueryID:  ctx.Query("queryId"),
		Row:      row,
		Column:   col,
	})
}

func (a *Actions) TranslateHeaders(ctx *gin.Context) {
	if _, ok := a.resourceOrFail(ctx); !ok {
		return
	}
	args, ok := decodeBodyOrFail[rdb.TranslateHeadersArgs](ctx)
	if !ok {
		return
	}
	args.Session.Resource = ctx.Param("resourceId")
	runJob[rdb.HeadersResult](a, ctx, rdb.FuncTranslateHeaders, args)
}
