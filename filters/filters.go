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

// Package filters provides declarative row filters
// applicable to result tables.
package filters

import (
	"coqpipe/table"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/czcorpus/cnc-gokit/collections"
	"github.com/rs/zerolog/log"
)

type Operator string

const (
	OpEqual        Operator = "=="
	OpNotEqual     Operator = "!="
	OpLess         Operator = "<"
	OpLessEqual    Operator = "<="
	OpGreater      Operator = ">"
	OpGreaterEqual Operator = ">="
	OpMatch        Operator = "~"
	OpIn           Operator = "in"
)

var allOperators = []Operator{
	OpEqual, OpNotEqual, OpLess, OpLessEqual, OpGreater, OpGreaterEqual, OpMatch, OpIn,
}

func (op Operator) Validate() error {
	if !collections.SliceContains(allOperators, op) {
		return fmt.Errorf("unsupported filter operator `%s`", op)
	}
	return nil
}

// Filter keeps rows where `column operator value` holds.
// For the `in` operator, the value is a comma separated list.
// NA values never match (except for `!=`).
type Filter struct {
	Column   string   `json:"column"`
	Operator Operator `json:"operator"`
	Value    string   `json:"value"`

	rx *regexp.Regexp
}

func (f *Filter) String() string {
	return fmt.Sprintf("%s %s %s", f.Column, f.Operator, f.Value)
}

// Validate checks the filter and prepares it for use
func (f *Filter) Validate() error {
	if f.Column == "" {
		return fmt.Errorf("filter column not specified")
	}
	if err := f.Operator.Validate(); err != nil {
		return err
	}
	if f.Operator == OpMatch {
		rx, err := regexp.Compile(f.Value)
		if err != nil {
			return fmt.Errorf("invalid filter pattern: %w", err)
		}
		f.rx = rx
	}
	return nil
}

func (f *Filter) compare(s *table.Series, i int) int {
	if s.Kind.IsNumeric() {
		v, err := strconv.ParseFloat(strings.TrimSpace(f.Value), 64)
		if err == nil {
			x := s.Float(i)
			switch {
			case x < v:
				return -1
			case x > v:
				return 1
			}
			return 0
		}
	}
	return strings.Compare(s.Str(i), f.Value)
}

func (f *Filter) test(s *table.Series, i int) bool {
	if s.IsNA(i) {
		return f.Operator == OpNotEqual
	}
	switch f.Operator {
	case OpEqual:
		return f.compare(s, i) == 0
	case OpNotEqual:
		return f.compare(s, i) != 0
	case OpLess:
		return f.compare(s, i) < 0
	case OpLessEqual:
		return f.compare(s, i) <= 0
	case OpGreater:
		return f.compare(s, i) > 0
	case OpGreaterEqual:
		return f.compare(s, i) >= 0
	case OpMatch:
		return f.rx.MatchString(s.Str(i))
	case OpIn:
		items := collections.SliceMap(
			strings.Split(f.Value, ","),
			func(v string, _ int) string { return strings.TrimSpace(v) },
		)
		if s.Kind.IsNumeric() {
			x := s.Float(i)
			for _, item := range items {
				if v, err := strconv.ParseFloat(item, 64); err == nil && v == x {
					return true
				}
			}
			return false
		}
		return collections.SliceContains(items, s.Str(i))
	}
	return false
}

// Apply returns a table with rows passing the filter. A filter
// referring to a missing column keeps the table unchanged.
func (f *Filter) Apply(t *table.Table) (*table.Table, error) {
	if f.Operator == OpMatch && f.rx == nil {
		if err := f.Validate(); err != nil {
			return nil, err
		}
	}
	s := t.Col(f.Column)
	if s == nil {
		log.Warn().
			Str("column", f.Column).
			Msg("filter refers to a missing column, ignoring")
		return t, nil
	}
	return t.Filter(func(i int) bool { return f.test(s, i) }), nil
}

func New(column string, op Operator, value string) (*Filter, error) {
	ans := &Filter{Column: column, Operator: op, Value: value}
	if err := ans.Validate(); err != nil {
		return nil, err
	}
	return ans, nil
}
