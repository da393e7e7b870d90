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
	"coqpipe/table"
	"fmt"
	"math"
)

const (
	NameConditionalProbability = "ConditionalProbability"
	NameMutualInformation      = "MutualInformation"
)

// ConditionalProbability divides a conditional frequency
// (first column) by a total frequency (second column).
// Zero totals produce NA.
type ConditionalProbability struct {
	base
}

func (f *ConditionalProbability) Label(env *Env) string {
	if len(f.columns) < 2 {
		return f.base.Label(env)
	}
	return fmt.Sprintf("P(%s | %s)", env.translate(f.columns[0]), env.translate(f.columns[1]))
}

func (f *ConditionalProbability) Evaluate(t *table.Table, env *Env) (*table.Table, error) {
	cond, err := f.column(t, 0)
	if err != nil {
		return nil, err
	}
	total, err := f.column(t, 1)
	if err != nil {
		return nil, err
	}
	return singleColumnResult(ConditionalProbabilitySeries(f.id, cond, total))
}

// ConditionalProbabilitySeries calculates cond/total for each row
func ConditionalProbabilitySeries(name string, cond, total *table.Series) *table.Series {
	ans := make([]float64, cond.Len())
	for i := range ans {
		if cond.IsNA(i) || total.IsNA(i) || total.Float(i) == 0 {
			ans[i] = math.NaN()
			continue
		}
		ans[i] = cond.Float(i) / total.Float(i)
	}
	return table.NewFloatSeries(name, ans)
}

func NewConditionalProbability(columns []string, alias string) (*ConditionalProbability, error) {
	if len(columns) != 2 {
		return nil, fmt.Errorf(
			"function %s requires exactly two columns, got %d", NameConditionalProbability, len(columns))
	}
	return &ConditionalProbability{base: newBase(NameConditionalProbability, columns, "", alias)}, nil
}

// MutualInformation calculates pointwise mutual information of a node
// and a collocate:
//
//	MI = log2((fColl * size) / (f1 * f2 * span))
//
// where f1 is the node frequency, f2 (first column) the total frequency
// of the collocate and fColl (second column) the frequency of the
// collocate within the context window of the node.
type MutualInformation struct {
	base
	F1   float64
	Size float64
	Span float64
}

func (f *MutualInformation) Label(env *Env) string {
	return "MI"
}

func (f *MutualInformation) Evaluate(t *table.Table, env *Env) (*table.Table, error) {
	f2, err := f.column(t, 0)
	if err != nil {
		return nil, err
	}
	fColl, err := f.column(t, 1)
	if err != nil {
		return nil, err
	}
	ans := make([]float64, t.Len())
	for i := range ans {
		if f2.IsNA(i) || fColl.IsNA(i) {
			ans[i] = math.NaN()
			continue
		}
		ans[i] = MutualInformationValue(f.F1, f2.Float(i), fColl.Float(i), f.Size, f.Span)
	}
	return singleColumnResult(table.NewFloatSeries(f.id, ans))
}

// MutualInformationValue returns NaN for undefined
// (zero or negative) arguments
func MutualInformationValue(f1, f2, fColl, size, span float64) float64 {
	denom := f1 * f2 * span
	if denom <= 0 || fColl <= 0 || size <= 0 {
		return math.NaN()
	}
	return math.Log2((fColl * size) / denom)
}

// NewMutualInformation creates the function for columns
// [collocate total frequency, collocate context frequency].
func NewMutualInformation(columns []string, f1, size, span float64, alias string) *MutualInformation {
	return &MutualInformation{
		base: newBase(NameMutualInformation, columns, fmt.Sprintf("%g:%g:%g", f1, size, span), alias),
		F1:   f1,
		Size: size,
		Span: span,
	}
}
