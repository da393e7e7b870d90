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
	"coqpipe/table"
	"fmt"
)

const (
	NameFreq          = "Freq"
	NameSubcorpusSize = "SubcorpusSize"
)

// Freq counts rows sharing the same values in all the
// function columns
type Freq struct {
	base
}

func (f *Freq) Label(env *Env) string {
	if len(f.columns) == 0 {
		return "Frequency"
	}
	return f.base.Label(env)
}

func (f *Freq) Evaluate(t *table.Table, env *Env) (*table.Table, error) {
	counts := make(map[string]int64, t.Len())
	keys := make([]string, t.Len())
	for i := 0; i < t.Len(); i++ {
		keys[i] = t.RowKey(i, f.columns)
		counts[keys[i]]++
	}
	ans := make([]int64, t.Len())
	for i, k := range keys {
		ans[i] = counts[k]
	}
	return singleColumnResult(table.NewIntSeries(f.id, ans))
}

func NewFreq(columns []string, alias string) *Freq {
	ans := &Freq{base: newBase(NameFreq, columns, "", alias)}
	// frequency lists of empty results keep their rows
	ans.dropOnNA = false
	return ans
}

// SubcorpusSize determines for each row the size of a subcorpus
// defined by values of the row's corpus (i.e. non-lexical) features.
type SubcorpusSize struct {
	base
}

func (f *SubcorpusSize) Label(env *Env) string {
	return fmt.Sprintf("Subcorpus size(%s)", f.base.Label(env))
}

func (f *SubcorpusSize) constraintColumns(env *Env) map[string]string {
	ans := make(map[string]string)
	for _, c := range f.columns {
		ref := colref.MustParse(c)
		if ref.Kind != colref.KindFeature {
			continue
		}
		if env.Resource.IsLexical(ref.Feature) {
			continue
		}
		ans[c] = ref.Feature
	}
	return ans
}

func (f *SubcorpusSize) Evaluate(t *table.Table, env *Env) (*table.Table, error) {
	if env == nil || env.Resource == nil {
		return nil, fmt.Errorf("function %s requires a corpus resource", f.name)
	}
	ccols := f.constraintColumns(env)
	keyCols := make([]string, 0, len(ccols))
	for c := range ccols {
		keyCols = append(keyCols, c)
	}
	cache := make(map[string]int64)
	ans := make([]int64, t.Len())
	for i := 0; i < t.Len(); i++ {
		key := t.RowKey(i, keyCols)
		size, ok := cache[key]
		if !ok {
			constraints := make(map[string]string, len(ccols))
			for col, feat := range ccols {
				s := t.Col(col)
				if !s.IsNA(i) {
					constraints[feat] = s.Str(i)
				}
			}
			var err error
			size, err = env.Resource.SubcorpusSize(env.context(), constraints)
			if err != nil {
				return nil, fmt.Errorf("failed to evaluate %s: %w", f.name, err)
			}
			cache[key] = size
		}
		ans[i] = size
	}
	return singleColumnResult(table.NewIntSeries(f.id, ans))
}

func NewSubcorpusSize(columns []string, alias string) *SubcorpusSize {
	return &SubcorpusSize{base: newBase(NameSubcorpusSize, columns, "", alias)}
}
