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

package table

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func values(t *Table, col string) []any {
	s := t.Col(col)
	ans := make([]any, t.Len())
	for i := range ans {
		ans[i] = s.Value(i)
	}
	return ans
}

func sample() *Table {
	return MustFromSeries(
		NewStringSeries("w", []string{"b", "a", "b", "c"}),
		NewIntSeries("n", []int64{2, 1, 2, 5}),
		NewFloatSeries("f", []float64{0.5, math.NaN(), 0.5, 1.5}),
	)
}

func TestFromSeriesValidation(t *testing.T) {
	_, err := FromSeries(
		NewStringSeries("a", []string{"x"}),
		NewStringSeries("a", []string{"y"}),
	)
	assert.Error(t, err)
	_, err = FromSeries(
		NewStringSeries("a", []string{"x"}),
		NewStringSeries("b", []string{"y", "z"}),
	)
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestNaNIsNA(t *testing.T) {
	tab := sample()
	f := tab.Col("f")
	assert.True(t, f.IsNA(1))
	assert.Equal(t, 1, f.CountNA())
	assert.Nil(t, f.Value(1))
	assert.Equal(t, "", f.Str(1))
	assert.True(t, math.IsNaN(f.Float(1)))
}

func TestSelectAndRenameDoNotAffectSource(t *testing.T) {
	tab := sample()
	sel, err := tab.Select([]string{"n", "w"})
	require.NoError(t, err)
	assert.Equal(t, []string{"n", "w"}, sel.Columns())
	require.NoError(t, sel.Rename("n", "count"))
	assert.Equal(t, []string{"count", "w"}, sel.Columns())
	assert.Equal(t, "n", tab.Col("n").Name)
	assert.Error(t, sel.Rename("count", "w"))
	_, err = tab.Select([]string{"missing"})
	assert.ErrorIs(t, err, ErrColumnNotFound)
}

func TestDistinctKeepsFirstOccurrence(t *testing.T) {
	tab := sample()
	tab.SetLabel(2, "x")
	ans := tab.Distinct([]string{"w", "n"})
	assert.Equal(t, []any{"b", "a", "c"}, values(ans, "w"))
	assert.Equal(t, "", ans.Label(0))
}

func TestDistinctEmptySubsetKeepsRows(t *testing.T) {
	tab := sample()
	ans := tab.Distinct([]string{})
	assert.Equal(t, 4, ans.Len())
	assert.Equal(t, []any{"b", "a", "b", "c"}, values(ans, "w"))
}

func TestSortStableMultipleKeys(t *testing.T) {
	tab := MustFromSeries(
		NewStringSeries("a", []string{"y", "x", "y", "x", "x"}),
		NewFloatSeries("b", []float64{1, math.NaN(), 3, 4, 2}),
		NewIntSeries("id", []int64{0, 1, 2, 3, 4}),
	)
	ans, err := tab.SortStable([]SortKey{{Column: "a", Ascending: true}, {Column: "b", Ascending: false}})
	require.NoError(t, err)
	// NA always last within equal primary keys
	assert.Equal(t, []any{int64(3), int64(4), int64(1), int64(2), int64(0)}, values(ans, "id"))

	_, err = tab.SortStable([]SortKey{{Column: "c"}})
	assert.ErrorIs(t, err, ErrColumnNotFound)
}

func TestConcatPromotesKinds(t *testing.T) {
	t1 := MustFromSeries(
		NewIntSeries("n", []int64{1}),
		NewStringSeries("w", []string{"a"}),
	)
	t2 := MustFromSeries(
		NewFloatSeries("n", []float64{1.5}),
		NewIntSeries("x", []int64{7}),
	)
	t2.SetLabel(0, TotalsLabel)
	ans := Concat(t1, t2)
	assert.Equal(t, []string{"n", "w", "x"}, ans.Columns())
	assert.Equal(t, KindFloat, ans.Col("n").Kind)
	assert.Equal(t, []any{1.0, 1.5}, values(ans, "n"))
	assert.Equal(t, []any{"a", nil}, values(ans, "w"))
	assert.Equal(t, []any{nil, int64(7)}, values(ans, "x"))
	assert.True(t, ans.HasTotals())
}

func TestSplitTotals(t *testing.T) {
	tab := sample()
	tab.AppendRow(TotalsLabel, map[string]any{"n": 10})
	assert.Equal(t, 5, tab.Len())
	data, totals := tab.SplitTotals()
	assert.Equal(t, 4, data.Len())
	require.NotNil(t, totals)
	assert.Equal(t, []any{int64(10)}, values(totals, "n"))
	assert.Equal(t, []any{nil}, values(totals, "w"))

	_, totals = sample().SplitTotals()
	assert.Nil(t, totals)
}

func TestGroupBy(t *testing.T) {
	tab := MustFromSeries(
		NewStringSeries("g", []string{"b", "a", "b", "a"}),
		NewIntSeries("v", []int64{1, 2, 3, 4}),
	)
	tab.Col("g").SetNA(3)
	groups, err := tab.GroupBy([]string{"g"})
	require.NoError(t, err)
	require.Len(t, groups, 3)
	assert.Equal(t, []any{"a"}, groups[0].Values)
	assert.Equal(t, []int{1}, groups[0].Rows)
	assert.Equal(t, []int{0, 2}, groups[1].Rows)
	assert.Equal(t, []any{nil}, groups[2].Values)

	_, err = tab.GroupBy([]string{"x"})
	assert.ErrorIs(t, err, ErrColumnNotFound)
}

func TestDropAllNA(t *testing.T) {
	tab := MustFromSeries(
		NewStringSeries("a", []string{"x", "", "z"}),
		NewFloatSeries("b", []float64{math.NaN(), math.NaN(), 1}),
	)
	tab.Col("a").SetNA(1)
	ans := tab.DropAllNA([]string{"a", "b"})
	assert.Equal(t, []any{"x", "z"}, values(ans, "a"))
	assert.Equal(t, 3, tab.DropAllNA([]string{"missing"}).Len())
}

func TestHConcat(t *testing.T) {
	tab := sample()
	require.NoError(t, tab.HConcat(New()))
	require.NoError(t, tab.HConcat(MustFromSeries(NewIntSeries("n", []int64{0, 0, 0, 0}))))
	assert.Equal(t, []any{int64(0), int64(0), int64(0), int64(0)}, values(tab, "n"))
	assert.ErrorIs(t, tab.HConcat(MustFromSeries(NewIntSeries("z", []int64{1}))), ErrLengthMismatch)
}

func TestSeriesConversions(t *testing.T) {
	s := NewStringSeries("s", []string{"1.5", "x", "3"})
	f := s.AsKind(KindFloat)
	assert.Equal(t, 1.5, f.Float(0))
	assert.True(t, f.IsNA(1))
	i := s.AsKind(KindInt)
	assert.Equal(t, int64(1), i.Int(0))
	assert.Equal(t, int64(3), i.Int(2))
	assert.Equal(t, "3", i.Str(2))

	n := NewIntSeries("n", []int64{1})
	n.SetValue(0, math.Inf(1))
	assert.True(t, n.IsNA(0))
	n.SetValue(0, true)
	assert.Equal(t, int64(1), n.Int(0))
}

func TestParseKind(t *testing.T) {
	for _, k := range []Kind{KindString, KindInt, KindFloat} {
		parsed, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}
	_, err := ParseKind("complex")
	assert.Error(t, err)
}
