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

package rdb

import (
	"coqpipe/functions"
	"coqpipe/managers"
	"coqpipe/results"

	"github.com/bytedance/sonic"
)

func errToStr(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// ----

// ProcessResult is a processed table along with information
// about the processing
type ProcessResult struct {
	Table results.TableData `json:"table"`

	// Headers maps table columns to their display names
	Headers map[string]string `json:"headers"`

	// Visible lists columns which should be displayed
	Visible []string `json:"visible"`

	// Mode is the manager mode the table was processed with
	Mode string `json:"mode"`

	// Exceptions contains functions which failed during processing.
	// Their columns are missing in the table.
	Exceptions       []functions.Exception     `json:"exceptions"`
	FilterStatistics managers.FilterStatistics `json:"filterStatistics"`
	StopwordsFailed  bool                      `json:"stopwordsFailed"`
	Sorters          []managers.Sorter         `json:"sorters"`
	Error            error                     `json:"-"`
}

func (res *ProcessResult) Err() error {
	return res.Error
}

func (res *ProcessResult) Type() ResultType {
	return ResultTypeProcess
}

func (res *ProcessResult) MarshalJSON() ([]byte, error) {
	type alias ProcessResult
	return sonic.Marshal(struct {
		*alias
		Error      string     `json:"error,omitempty"`
		ResultType ResultType `json:"resultType"`
	}{
		alias:      (*alias)(res),
		Error:      errToStr(res.Error),
		ResultType: res.Type(),
	})
}

// ----

type CellContentResult struct {
	Cell  managers.CellContent `json:"cell"`
	Error error                `json:"-"`
}

func (res *CellContentResult) Err() error {
	return res.Error
}

func (res *CellContentResult) Type() ResultType {
	return ResultTypeCellContent
}

func (res *CellContentResult) MarshalJSON() ([]byte, error) {
	return sonic.Marshal(struct {
		Cell       managers.CellContent `json:"cell"`
		Error      string               `json:"error,omitempty"`
		ResultType ResultType           `json:"resultType"`
	}{
		Cell:       res.Cell,
		Error:      errToStr(res.Error),
		ResultType: res.Type(),
	})
}

// ----

type HeadersResult struct {
	Headers map[string]string `json:"headers"`
	Error   error             `json:"-"`
}

func (res *HeadersResult) Err() error {
	return res.Error
}

func (res *HeadersResult) Type() ResultType {
	return ResultTypeHeaders
}

func (res *HeadersResult) MarshalJSON() ([]byte, error) {
	return sonic.Marshal(struct {
		Headers    map[string]string `json:"headers"`
		Error      string            `json:"error,omitempty"`
		ResultType ResultType        `json:"resultType"`
	}{
		Headers:    res.Headers,
		Error:      errToStr(res.Error),
		ResultType: res.Type(),
	})
}
