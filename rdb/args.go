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
	"coqpipe/filters"
	"coqpipe/functions"
	"coqpipe/options"
	"coqpipe/results"
)

const (
	FuncProcess          = "process"
	FuncArrange          = "arrange"
	FuncCellContent      = "cellContent"
	FuncTranslateHeaders = "translateHeaders"
)

// SorterArgs specifies a sorter installed before a table
// is arranged
type SorterArgs struct {
	Column    string `json:"column"`
	Ascending bool   `json:"ascending"`
	Reverse   bool   `json:"reverse"`
}

// SessionArgs describe a query result the job works with
type SessionArgs struct {
	Resource      string            `json:"resource"`
	QueryID       string            `json:"queryId"`
	QueryLabel    string            `json:"queryLabel,omitempty"`
	MaxTokenCount int               `json:"maxTokenCount"`
	NumberLabels  []string          `json:"numberLabels,omitempty"`
	Aliases       map[string]string `json:"aliases,omitempty"`

	// Options override the configured pipeline defaults
	Options *options.Pipeline `json:"options,omitempty"`

	ColumnFunctions []functions.Spec `json:"columnFunctions,omitempty"`
}

// ManagerArgs configure a manager before it processes
// or arranges a table
type ManagerArgs struct {
	Mode             string            `json:"mode"`
	HiddenColumns    []string          `json:"hiddenColumns,omitempty"`
	Filters          []*filters.Filter `json:"filters,omitempty"`
	GroupFilters     []*filters.Filter `json:"groupFilters,omitempty"`
	GroupFunctions   []functions.Spec  `json:"groupFunctions,omitempty"`
	SummaryFunctions []functions.Spec  `json:"summaryFunctions,omitempty"`

	// Sorters replace the current sorters of the manager. With nil
	// value, the current sorters are kept.
	Sorters []SorterArgs `json:"sorters"`
}

type ProcessArgs struct {
	Session SessionArgs       `json:"session"`
	Manager ManagerArgs       `json:"manager"`
	Table   results.TableData `json:"table"`

	// Recalculate set to false allows reusing a previous
	// result of the same query
	Recalculate bool `json:"recalculate"`
}

type CellContentArgs struct {
	Resource string `json:"resource"`
	QueryID  string `json:"queryId"`
	Row      int    `json:"row"`
	Column   int    `json:"column"`
}

type TranslateHeadersArgs struct {
	Session SessionArgs `json:"session"`
	Mode    string      `json:"mode"`
	Headers []string    `json:"headers"`

	// IgnoreAlias produces original display names
	// even for aliased columns
	IgnoreAlias bool `json:"ignoreAlias"`
}
