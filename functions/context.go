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
	"coqpipe/colref"
	"coqpipe/corpus"
	"coqpipe/table"
	"fmt"
	"strings"
)

const (
	NameContextColumns = "ContextColumns"
	NameContextKWIC    = "ContextKWIC"
	NameContextString  = "ContextString"
)

var contextInputs = []string{colref.ColCorpusID, colref.ColNumTokens}

// contextBase loads token contexts of all the matches of
// a table. All the context functions share it.
type contextBase struct {
	base
}

func (f *contextBase) widths(env *Env) (int, int) {
	if env == nil || env.Options == nil {
		return 0, 0
	}
	return env.Options.ContextLeft, env.Options.ContextRight
}

func (f *contextBase) load(t *table.Table, env *Env) ([]corpus.TokenContext, error) {
	if env == nil || env.Resource == nil {
		return nil, fmt.Errorf("function %s requires a corpus resource", f.name)
	}
	ids, err := f.column(t, 0)
	if err != nil {
		return nil, err
	}
	numTokens, err := f.column(t, 1)
	if err != nil {
		return nil, err
	}
	left, right := f.widths(env)
	ans := make([]corpus.TokenContext, t.Len())
	for i := range ans {
		if ids.IsNA(i) {
			ans[i] = corpus.TokenContext{Left: make([]string, left), Right: make([]string, right)}
			continue
		}
		n := 1
		if !numTokens.IsNA(i) && numTokens.Int(i) > 0 {
			n = int(numTokens.Int(i))
		}
		ans[i], err = env.Resource.TokenContext(env.context(), ids.Int(i), n, left, right)
		if err != nil {
			return nil, fmt.Errorf("failed to evaluate %s: %w", f.name, err)
		}
	}
	return ans, nil
}

func newContextBase(name string) contextBase {
	ans := contextBase{base: newBase(name, contextInputs, "", "")}
	ans.single = false
	ans.dropOnNA = false
	return ans
}

// ------

// ContextColumns stores each context token in its own column
// (coq_context_lc1 is the token nearest to the match on its left).
type ContextColumns struct {
	contextBase
}

func (f *ContextColumns) Label(env *Env) string {
	left, right := f.widths(env)
	return fmt.Sprintf("Context columns(%dL, %dR)", left, right)
}

func (f *ContextColumns) Evaluate(t *table.Table, env *Env) (*table.Table, error) {
	ctxs, err := f.load(t, env)
	if err != nil {
		return nil, err
	}
	left, right := f.widths(env)
	cols := make([]*table.Series, 0, left+right)
	for i := 0; i < left; i++ {
		values := make([]string, len(ctxs))
		for j, c := range ctxs {
			values[j] = c.Left[i]
		}
		cols = append(cols, table.NewStringSeries(colref.LeftContextColumn(i+1), values))
	}
	for i := 0; i < right; i++ {
		values := make([]string, len(ctxs))
		for j, c := range ctxs {
			values[j] = c.Right[i]
		}
		cols = append(cols, table.NewStringSeries(colref.RightContextColumn(i+1), values))
	}
	if len(cols) == 0 {
		return table.New(), nil
	}
	return table.FromSeries(cols...)
}

func NewContextColumns() *ContextColumns {
	return &ContextColumns{contextBase: newContextBase(NameContextColumns)}
}

// ------

// ContextKWIC produces the left and the right context
// as two strings
type ContextKWIC struct {
	contextBase
}

func (f *ContextKWIC) Label(env *Env) string {
	left, right := f.widths(env)
	return fmt.Sprintf("KWIC(%dL, %dR)", left, right)
}

func (f *ContextKWIC) Evaluate(t *table.Table, env *Env) (*table.Table, error) {
	ctxs, err := f.load(t, env)
	if err != nil {
		return nil, err
	}
	lft := make([]string, len(ctxs))
	rgt := make([]string, len(ctxs))
	for i, c := range ctxs {
		lft[i] = joinTokens(reversed(c.Left))
		rgt[i] = joinTokens(c.Right)
	}
	return table.FromSeries(
		table.NewStringSeries(colref.ColContextLeft, lft),
		table.NewStringSeries(colref.ColContextRight, rgt),
	)
}

func NewContextKWIC() *ContextKWIC {
	return &ContextKWIC{contextBase: newContextBase(NameContextKWIC)}
}

// ------

// ContextString produces the whole context including
// the match (upper cased) as a single string
type ContextString struct {
	contextBase
}

func (f *ContextString) Label(env *Env) string {
	left, right := f.widths(env)
	return fmt.Sprintf("Context(%dL, %dR)", left, right)
}

func (f *ContextString) Evaluate(t *table.Table, env *Env) (*table.Table, error) {
	ctxs, err := f.load(t, env)
	if err != nil {
		return nil, err
	}
	ans := make([]string, len(ctxs))
	for i, c := range ctxs {
		tokens := reversed(c.Left)
		for _, m := range c.Match {
			tokens = append(tokens, strings.ToUpper(m))
		}
		tokens = append(tokens, c.Right...)
		ans[i] = joinTokens(tokens)
	}
	return table.FromSeries(table.NewStringSeries(colref.ColContextStr, ans))
}

func NewContextString() *ContextString {
	return &ContextString{contextBase: newContextBase(NameContextString)}
}

// ------

func reversed(tokens []string) []string {
	ans := make([]string, len(tokens))
	for i, v := range tokens {
		ans[len(tokens)-1-i] = v
	}
	return ans
}

// joinTokens joins non-empty tokens by a space
func joinTokens(tokens []string) string {
	var buff strings.Builder
	for _, tk := range tokens {
		if tk == "" {
			continue
		}
		if buff.Len() > 0 {
			buff.WriteString(" ")
		}
		buff.WriteString(tk)
	}
	return buff.String()
}
