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

package filters

import (
	"coqpipe/table"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filterTable() *table.Table {
	freq := table.NewIntSeries("func_Freq_1", []int64{5, 1, 3, 0})
	freq.SetNA(3)
	return table.MustFromSeries(
		table.NewStringSeries("coq_word_label_1", []string{"dog", "cat", "dogs", "mouse"}),
		freq,
	)
}

func words(t *table.Table) []string {
	ans := make([]string, t.Len())
	for i := range ans {
		ans[i] = t.Col("coq_word_label_1").Str(i)
	}
	return ans
}

func TestNumericFilters(t *testing.T) {
	flt, err := New("func_Freq_1", OpGreaterEqual, "3")
	require.NoError(t, err)
	ans, err := flt.Apply(filterTable())
	require.NoError(t, err)
	assert.Equal(t, []string{"dog", "dogs"}, words(ans))

	flt, err = New("func_Freq_1", OpNotEqual, "1")
	require.NoError(t, err)
	ans, err = flt.Apply(filterTable())
	require.NoError(t, err)
	assert.Equal(t, []string{"dog", "dogs", "mouse"}, words(ans))
}

func TestStringFilters(t *testing.T) {
	flt, err := New("coq_word_label_1", OpMatch, "^dog")
	require.NoError(t, err)
	ans, err := flt.Apply(filterTable())
	require.NoError(t, err)
	assert.Equal(t, []string{"dog", "dogs"}, words(ans))

	flt, err = New("coq_word_label_1", OpIn, "cat, mouse")
	require.NoError(t, err)
	ans, err = flt.Apply(filterTable())
	require.NoError(t, err)
	assert.Equal(t, []string{"cat", "mouse"}, words(ans))
}

func TestFilterMissingColumnPassesThrough(t *testing.T) {
	flt, err := New("coq_lemma_label_1", OpEqual, "dog")
	require.NoError(t, err)
	ans, err := flt.Apply(filterTable())
	require.NoError(t, err)
	assert.Equal(t, 4, ans.Len())
}

func TestInvalidFilter(t *testing.T) {
	_, err := New("coq_word_label_1", "<>", "dog")
	assert.Error(t, err)
	_, err = New("coq_word_label_1", OpMatch, "(")
	assert.Error(t, err)
}
