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

package results

import (
	"coqpipe/table"
	"math"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableDataFromJSON(t *testing.T) {
	src := `{
		"columns": ["coq_word_label_1", "coquery_invisible_corpus_id", "score"],
		"kinds": ["string", "int", "float"],
		"rows": [["dog", 2, 0.5], ["cat", 5, null], [null, 8, 1]]
	}`
	var td TableData
	require.NoError(t, sonic.Unmarshal([]byte(src), &td))
	tab, err := td.ToTable()
	require.NoError(t, err)
	assert.Equal(t, 3, tab.Len())
	assert.Equal(t, table.KindInt, tab.Col("coquery_invisible_corpus_id").Kind)
	assert.Equal(t, int64(5), tab.Col("coquery_invisible_corpus_id").Int(1))
	assert.True(t, tab.Col("score").IsNA(1))
	assert.True(t, tab.Col("coq_word_label_1").IsNA(2))
	assert.Equal(t, "dog", tab.Col("coq_word_label_1").Str(0))
}

func TestTableDataKeepsLabelsAndNA(t *testing.T) {
	tab := table.MustFromSeries(
		table.NewStringSeries("w", []string{"a", "b"}),
		table.NewFloatSeries("f", []float64{1.5, math.NaN()}),
	)
	tab.SetLabel(1, table.TotalsLabel)
	td := NewTableData(tab)
	assert.Equal(t, []string{"string", "float"}, td.Kinds)
	assert.Equal(t, []string{"", table.TotalsLabel}, td.Labels)
	assert.Equal(t, []any{"b", nil}, td.Rows[1])

	data, err := sonic.Marshal(td)
	require.NoError(t, err)
	assert.Contains(t, string(data), `["b",null]`)

	back, err := td.ToTable()
	require.NoError(t, err)
	assert.True(t, back.HasTotals())
	assert.True(t, back.Col("f").IsNA(1))
}

func TestTableDataWithoutLabels(t *testing.T) {
	tab := table.MustFromSeries(table.NewIntSeries("n", []int64{1}))
	assert.Nil(t, NewTableData(tab).Labels)
}

func TestTableDataValidation(t *testing.T) {
	_, err := TableData{Columns: []string{"a"}, Kinds: []string{}}.ToTable()
	assert.Error(t, err)
	_, err = TableData{Columns: []string{"a"}, Kinds: []string{"complex"}}.ToTable()
	assert.Error(t, err)
	_, err = TableData{
		Columns: []string{"a"},
		Kinds:   []string{"int"},
		Rows:    [][]any{{1, 2}},
	}.ToTable()
	assert.Error(t, err)
	_, err = TableData{
		Columns: []string{"a"},
		Kinds:   []string{"int"},
		Labels:  []string{"x", "y"},
		Rows:    [][]any{{1}},
	}.ToTable()
	assert.Error(t, err)
}
