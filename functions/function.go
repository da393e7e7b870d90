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

package functions

import (
	"context"
	"coqpipe/corpus"
	"coqpipe/options"
	"coqpipe/table"
	"fmt"
	"hash/fnv"
	"strings"
)

// HeaderTranslator converts column names to display labels
type HeaderTranslator interface {
	TranslateHeader(header string, ignoreAlias bool) string
}

// Env provides functions with access to the queried resource
// and to the pipeline settings
type Env struct {
	Ctx      context.Context
	Resource corpus.Resource
	Options  *options.Pipeline
	Headers  HeaderTranslator
}

func (env *Env) context() context.Context {
	if env == nil || env.Ctx == nil {
		return context.Background()
	}
	return env.Ctx
}

func (env *Env) translate(col string) string {
	if env == nil || env.Headers == nil {
		return col
	}
	return env.Headers.TranslateHeader(col, false)
}

// Function is a transformation producing one or more new
// columns out of a result table
type Function interface {

	// ID is a stable identifier derived from the function name,
	// its input columns and its parameter. For single column
	// functions, the ID is also the name of the produced column.
	ID() string

	Name() string

	Label(env *Env) string

	// Columns lists columns the function reads
	Columns() []string

	SetColumns(cols []string)

	// SingleColumn functions produce exactly one column which
	// is stored under the function ID.
	SingleColumn() bool

	// DropOnNA tells whether rows with NA values produced by
	// the function may be dropped.
	DropOnNA() bool

	Evaluate(t *table.Table, env *Env) (*table.Table, error)
}

// Spec is a declarative description of a user function
type Spec struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Value   string   `json:"value,omitempty"`
	Alias   string   `json:"alias,omitempty"`
}

type base struct {
	id       string
	name     string
	columns  []string
	value    string
	dropOnNA bool
	single   bool
}

func (b *base) ID() string {
	return b.id
}

func (b *base) Name() string {
	return b.name
}

func (b *base) Columns() []string {
	return b.columns
}

func (b *base) SetColumns(cols []string) {
	b.columns = cols
}

func (b *base) SingleColumn() bool {
	return b.single
}

func (b *base) DropOnNA() bool {
	return b.dropOnNA
}

func (b *base) Label(env *Env) string {
	args := make([]string, len(b.columns))
	for i, c := range b.columns {
		args[i] = env.translate(c)
	}
	if b.value != "" {
		args = append(args, fmt.Sprintf("'%s'", b.value))
	}
	return fmt.Sprintf("%s(%s)", b.name, strings.Join(args, ", "))
}

func (b *base) String() string {
	return b.id
}

func (b *base) column(t *table.Table, i int) (*table.Series, error) {
	if i >= len(b.columns) {
		return nil, fmt.Errorf("function %s requires at least %d column(s)", b.name, i+1)
	}
	ans := t.Col(b.columns[i])
	if ans == nil {
		return nil, fmt.Errorf("%w: %s", table.ErrColumnNotFound, b.columns[i])
	}
	return ans, nil
}

func mkID(name string, columns []string, value, alias string) string {
	if alias != "" {
		return alias
	}
	h := fnv.New32a()
	h.Write([]byte(name))
	for _, c := range columns {
		h.Write([]byte{0})
		h.Write([]byte(c))
	}
	h.Write([]byte{1})
	h.Write([]byte(value))
	return fmt.Sprintf("func_%s_%08x", name, h.Sum32())
}

func newBase(name string, columns []string, value, alias string) base {
	cols := append([]string(nil), columns...)
	return base{
		id:       mkID(name, cols, value, alias),
		name:     name,
		columns:  cols,
		value:    value,
		dropOnNA: true,
		single:   true,
	}
}

func singleColumnResult(s *table.Series) (*table.Table, error) {
	return table.FromSeries(s)
}

// New creates a user function out of its declarative
// specification
func New(spec Spec) (Function, error) {
	switch spec.Name {
	case NameFreq:
		return NewFreq(spec.Columns, spec.Alias), nil
	case NameSubcorpusSize:
		return NewSubcorpusSize(spec.Columns, spec.Alias), nil
	case NameConditionalProbability:
		return NewConditionalProbability(spec.Columns, spec.Alias)
	case NameStringExtract:
		return NewStringExtract(spec.Columns, spec.Value, spec.Alias)
	case NameStringMatch:
		return NewStringMatch(spec.Columns, spec.Value, spec.Alias)
	case NameStringLength:
		return NewStringLength(spec.Columns, spec.Alias), nil
	case NameStem:
		return NewStem(spec.Columns, spec.Value, spec.Alias)
	}
	return nil, fmt.Errorf("unknown function `%s`", spec.Name)
}

// NewListFromSpecs creates a function list out of specifications.
// The first invalid specification stops the processing.
func NewListFromSpecs(specs []Spec) (*List, error) {
	ans := NewList()
	for _, s := range specs {
		fn, err := New(s)
		if err != nil {
			return nil, err
		}
		ans.AddFunction(fn)
	}
	return ans, nil
}
