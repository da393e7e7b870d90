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

package managers

import (
	"coqpipe/colref"
	"coqpipe/corpus"
	"coqpipe/corpus/corpustest"
	"coqpipe/filters"
	"coqpipe/functions"
	"coqpipe/merror"
	"coqpipe/options"
	"coqpipe/session"
	"coqpipe/table"
	"database/sql"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allIDs(tokens []corpustest.Token) []int {
	ans := make([]int, len(tokens))
	for i := range ans {
		ans[i] = i + 1
	}
	return ans
}

func newTestSession(t *testing.T) (*session.Session, []corpustest.Token, *sql.DB) {
	tokens := corpustest.DefaultText()
	res, db, err := corpustest.New(tokens)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	reg := corpus.NewRegistry()
	reg.Add(res)
	return &session.Session{
		QueryID:         "q1",
		Resource:        res,
		Resources:       reg,
		ColumnFunctions: functions.NewList(),
		MaxTokenCount:   1,
		Options:         options.Default(),
	}, tokens, db
}

func strValues(t *table.Table, col string) []string {
	s := t.Col(col)
	ans := make([]string, t.Len())
	for i := range ans {
		ans[i] = s.Str(i)
	}
	return ans
}

func TestProcessEmptyTable(t *testing.T) {
	sess, tokens, _ := newTestSession(t)
	empty := corpustest.ResultTable(tokens)
	for _, mode := range []Mode{
		ModeTokens, ModeTypes, ModeFrequencies, ModeContingency, ModeCollocations, ModeContrasts} {
		m := Factory(mode, 0)
		ans, err := m.Process(empty, sess, true)
		require.NoError(t, err, "mode %s", mode)
		assert.Equal(t, 0, ans.Len(), "mode %s", mode)
	}
}

func TestTokensSelectOrder(t *testing.T) {
	sess, tokens, _ := newTestSession(t)
	raw := corpustest.ResultTable(tokens, 2, 3)
	fn := functions.NewStringLength([]string{"coq_word_label_1"}, "")
	sess.ColumnFunctions.AddFunction(fn)
	src, err := raw.Select([]string{
		"coq_genre_1", colref.ColCorpusID, "coq_pos_label_1", "coq_word_label_1",
		colref.ColNumTokens, "coq_lemma_label_1"})
	require.NoError(t, err)

	m := Factory(ModeTokens, 0)
	ans, err := m.Process(src, sess, true)
	require.NoError(t, err)
	assert.Equal(t,
		[]string{
			"coq_word_label_1", "coq_lemma_label_1", "coq_pos_label_1", "coq_genre_1",
			colref.ColCorpusID, colref.ColNumTokens, fn.ID()},
		ans.Columns())
	require.NotNil(t, m.GetFunction(fn.ID()))
	sess.Functions = m
	assert.Equal(t, "StringLength(Word)", sess.TranslateHeader(fn.ID(), false))
}

func TestProcessUnknownDatabaseIsConfigurationError(t *testing.T) {
	sess, tokens, _ := newTestSession(t)
	raw := corpustest.ResultTable(tokens, 2)
	raw.Set(table.NewStringSeries("db_missing_coq_word_label_1", []string{"x"}))
	_, err := Factory(ModeTokens, 0).Process(raw, sess, true)
	assert.True(t, merror.IsConfigurationError(err))
}

func TestTypesDistinct(t *testing.T) {
	sess, _, _ := newTestSession(t)
	raw := table.MustFromSeries(
		table.NewStringSeries("X", []string{"A", "B", "A", "C"}),
		table.NewIntSeries("Y", []int64{1, 2, 1, 3}),
	)
	ans, err := Factory(ModeTypes, 0).Process(raw, sess, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, strValues(ans, "X"))
	assert.Equal(t, []string{"1", "2", "3"}, strValues(ans, "Y"))
}

func TestFrequencyListConservesMass(t *testing.T) {
	sess, tokens, _ := newTestSession(t)
	raw := corpustest.ResultTable(tokens, allIDs(tokens)...)
	m := Factory(ModeFrequencies, 0)
	m.HideColumn("coq_lemma_label_1")
	ans, err := m.Process(raw, sess, true)
	require.NoError(t, err)

	var freqCol string
	for _, c := range ans.Columns() {
		if strings.HasPrefix(c, "func_Freq") {
			freqCol = c
		}
	}
	require.NotEmpty(t, freqCol)
	var total int64
	seen := make(map[string]bool)
	vis := m.VisibleColumns(ans)
	for i := 0; i < ans.Len(); i++ {
		total += ans.Col(freqCol).Int(i)
		key := ans.RowKey(i, vis)
		assert.False(t, seen[key])
		seen[key] = true
	}
	assert.Equal(t, int64(len(tokens)), total)
	assert.Less(t, ans.Len(), raw.Len())
}

func TestContingencyTotals(t *testing.T) {
	sess, tokens, _ := newTestSession(t)
	raw := corpustest.ResultTable(tokens, allIDs(tokens)...)
	m := Factory(ModeContingency, 0)
	m.HideColumn("coq_word_label_1")
	m.HideColumn("coq_lemma_label_1")
	ans, err := m.Process(raw, sess, true)
	require.NoError(t, err)

	cols := ans.Columns()
	assert.Equal(t, colref.ColColumnTotal, cols[len(cols)-1])
	assert.Equal(t, "coq_pos_label_1", cols[0])
	cells := make([]string, 0, 2)
	for _, c := range cols {
		if strings.HasPrefix(c, "func_Freq") && strings.Contains(c, "(Genre=") {
			cells = append(cells, c)
		}
	}
	require.Len(t, cells, 2)
	assert.True(t, strings.HasSuffix(cells[0], "(Genre='fiction')"))

	last := ans.Len() - 1
	assert.Equal(t, table.TotalsLabel, ans.Label(last))
	var grand int64
	for i := 0; i < last; i++ {
		for _, c := range cells {
			grand += ans.Col(c).Int(i)
		}
	}
	assert.Equal(t, int64(len(tokens)), grand)
	assert.Equal(t, int64(len(tokens)), ans.Col(colref.ColColumnTotal).Int(last))

	// 8 distinct PoS tags plus the totals row
	assert.Equal(t, 9, ans.Len())
	assert.Equal(t, []string{".", "CC", "DT", "JJ", "NN", "NNS", "VBD", "VBP", ""},
		strValues(ans, "coq_pos_label_1"))
}

func TestArrangeKeepsTotalsLast(t *testing.T) {
	sess, tokens, _ := newTestSession(t)
	raw := corpustest.ResultTable(tokens, allIDs(tokens)...)
	m := Factory(ModeContingency, 0)
	m.HideColumn("coq_word_label_1")
	m.HideColumn("coq_lemma_label_1")
	m.AddSorter(colref.ColColumnTotal, false, false)
	m.AddSorter("coq_pos_label_1", true, false)
	ans, err := m.Process(raw, sess, true)
	require.NoError(t, err)
	ans = m.Arrange(ans)

	last := ans.Len() - 1
	assert.Equal(t, table.TotalsLabel, ans.Label(last))
	totals := ans.Col(colref.ColColumnTotal)
	pos := ans.Col("coq_pos_label_1")
	for i := 1; i < last; i++ {
		assert.GreaterOrEqual(t, totals.Int(i-1), totals.Int(i))
		if totals.Int(i-1) == totals.Int(i) {
			assert.LessOrEqual(t, pos.Str(i-1), pos.Str(i))
		}
	}
}

func TestArrangeMultiKey(t *testing.T) {
	raw := table.MustFromSeries(
		table.NewStringSeries("a", []string{"y", "x", "y", "x"}),
		table.NewIntSeries("b", []int64{1, 2, 3, 4}),
	)
	m := Factory(ModeTokens, 0)
	m.AddSorter("a", true, false)
	m.AddSorter("b", false, false)
	ans := m.Arrange(raw)
	assert.Equal(t, []string{"x", "x", "y", "y"}, strValues(ans, "a"))
	assert.Equal(t, []string{"4", "2", "3", "1"}, strValues(ans, "b"))
}

func TestArrangeReverseAndSelfHealing(t *testing.T) {
	raw := table.MustFromSeries(
		table.NewStringSeries("w", []string{"dog", "cat", "mouse"}),
	)
	m := Factory(ModeTokens, 0)
	m.AddSorter("func_deleted", true, false)
	m.AddSorter("w", true, true)
	ans := m.Arrange(raw)
	assert.Equal(t, []string{"mouse", "dog", "cat"}, strValues(ans, "w"))
	assert.Equal(t, []string{"w"}, ans.Columns())
	sorters := m.Sorters()
	require.Len(t, sorters, 1)
	assert.Equal(t, "w", sorters[0].Column)
	assert.Equal(t, 0, sorters[0].Position)
	assert.Nil(t, m.GetSorter("func_deleted"))
}

func TestAddSorterReplacesExisting(t *testing.T) {
	m := Factory(ModeTokens, 0)
	m.AddSorter("a", true, false)
	m.AddSorter("b", true, false)
	m.AddSorter("a", false, false)
	sorters := m.Sorters()
	require.Len(t, sorters, 2)
	assert.Equal(t, "b", sorters[0].Column)
	assert.Equal(t, "a", sorters[1].Column)
	assert.False(t, sorters[1].Ascending)
	assert.Equal(t, 1, sorters[1].Position)
	m.RemoveSorter("b")
	assert.Equal(t, 0, m.GetSorter("a").Position)
}

func TestCollocations(t *testing.T) {
	sess, tokens, _ := newTestSession(t)
	sess.Options.ContextLeft = 1
	sess.Options.ContextRight = 1
	raw := corpustest.ResultTable(tokens, 2, 14)
	ans, err := Factory(ModeCollocations, 0).Process(raw, sess, true)
	require.NoError(t, err)

	assert.Equal(t, collocationColumns, ans.Columns())
	assert.Equal(t, []string{"BARKED", "OLD", "SAW", "THE"}, strValues(ans, ColCollocateLabel))
	for i := 0; i < ans.Len(); i++ {
		coll := ans.Col(ColCollocateFreq).Int(i)
		assert.Equal(t,
			coll,
			ans.Col(ColCollocateFreqLeft).Int(i)+ans.Col(ColCollocateFreqRight).Int(i))
		assert.InDelta(t,
			float64(coll)/ans.Col(colref.ColFrequency).Float(i),
			ans.Col(ColCondProbability).Float(i),
			1e-9)
	}
	assert.Equal(t, int64(3), ans.Col(colref.ColFrequency).Int(3))
	assert.InDelta(t, math.Log2(21.0/12.0), ans.Col(ColMutualInformation).Float(3), 1e-9)
}

func TestCollocationsFilterAppliesToCollocates(t *testing.T) {
	sess, tokens, _ := newTestSession(t)
	sess.Options.ContextLeft = 1
	sess.Options.ContextRight = 1
	flt, err := filters.New(colref.ColFrequency, filters.OpGreater, "1")
	require.NoError(t, err)
	m := Factory(ModeCollocations, 0)
	m.SetFilters([]Filter{flt})
	ans, err := m.Process(corpustest.ResultTable(tokens, 2, 14), sess, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"SAW", "THE"}, strValues(ans, ColCollocateLabel))
}

func TestGTestProperties(t *testing.T) {
	for _, f := range []float64{0, 1, 7, 100} {
		assert.InDelta(t, 0.0, GTest(f, f, 100, 100), 1e-12)
	}
	assert.InDelta(t, GTest(10, 3, 100, 50), GTest(3, 10, 50, 100), 1e-12)
	assert.Greater(t, GTest(50, 5, 100, 100), 0.0)
	assert.InDelta(t, 2*10*math.Log(2), GTest(10, 0, 100, 100), 1e-9)
	assert.True(t, math.IsNaN(GTest(1, 1, 0, 10)))
}

func TestGTestCache(t *testing.T) {
	cv := newContrastVariant(2)
	v1 := cv.gTest(10, 3, 100, 50)
	assert.Equal(t, 1, cv.cache.Len())
	assert.Equal(t, v1, cv.gTest(10, 3, 100, 50))
	cv.gTest(1, 2, 3, 4)
	cv.gTest(5, 6, 7, 8)
	assert.Equal(t, 2, cv.cache.Len())
}

func TestContrastMatrix(t *testing.T) {
	sess, tokens, _ := newTestSession(t)
	raw := corpustest.ResultTable(tokens, allIDs(tokens)...)
	m := Factory(ModeContrasts, 0)
	m.HideColumn("coq_word_label_1")
	m.HideColumn("coq_lemma_label_1")
	m.HideColumn("coq_pos_label_1")
	ans, err := m.Process(raw, sess, true)
	require.NoError(t, err)
	require.Equal(t, 2, ans.Len())
	assert.Equal(t, []string{"fiction", "news"}, strValues(ans, colref.ColRowID))

	gf := ans.Col(colref.PrefixGTest + "fiction")
	gn := ans.Col(colref.PrefixGTest + "news")
	require.NotNil(t, gf)
	require.NotNil(t, gn)
	assert.InDelta(t, 0.0, gf.Float(0), 1e-12)
	assert.InDelta(t, 0.0, gn.Float(1), 1e-12)
	assert.InDelta(t, gf.Float(1), gn.Float(0), 1e-12)

	cell, err := m.CellContent(ans, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, CellContent{
		FreqRow: 10, FreqCol: 11, TotalRow: 10, TotalCol: 11, LabelRow: "fiction", LabelCol: "news",
	}, cell)
	_, err = m.CellContent(ans, 0, 7)
	assert.Error(t, err)
	_, err = Factory(ModeTokens, 0).CellContent(ans, 0, 2)
	assert.Error(t, err)
}

func TestStopwords(t *testing.T) {
	sess, tokens, _ := newTestSession(t)
	sess.Options.Stopwords = []string{"the", "A"}
	m := Factory(ModeTokens, 0)
	ans, err := m.Process(corpustest.ResultTable(tokens, 1, 2, 4, 7, 8), sess, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"dog", "cat"}, strValues(ans, "coq_word_label_1"))
	assert.False(t, m.StopwordsFailed())

	noWords := corpustest.ResultTable(tokens, 1, 2)
	noWords.Drop("coq_word_label_1")
	ans, err = m.Process(noWords, sess, true)
	require.NoError(t, err)
	assert.Equal(t, 2, ans.Len())
	assert.True(t, m.StopwordsFailed())
}

func TestFunctionFailureDoesNotAbortProcessing(t *testing.T) {
	sess, tokens, _ := newTestSession(t)
	raw := corpustest.ResultTable(tokens, 2, 3)
	raw.Set(table.NewStringSeries("coq_unknown_1", []string{"x", "y"}))
	length := functions.NewStringLength([]string{"coq_word_label_1"}, "")
	broken := functions.NewSubcorpusSize([]string{"coq_unknown_1"}, "")
	sess.ColumnFunctions.AddFunction(broken)
	sess.ColumnFunctions.AddFunction(length)
	m := Factory(ModeTokens, 0)
	ans, err := m.Process(raw, sess, true)
	require.NoError(t, err)
	assert.True(t, ans.Has(length.ID()))
	assert.False(t, ans.Has(broken.ID()))
	assert.Len(t, m.Exceptions(), 1)
	assert.Equal(t, 1, sess.ColumnFunctions.Len())
}

func TestGroupFilters(t *testing.T) {
	sess, tokens, _ := newTestSession(t)
	sess.Options.GroupColumns = []string{"genre"}
	flt, err := filters.New("coq_pos_label_1", filters.OpEqual, "NN")
	require.NoError(t, err)
	m := Factory(ModeTokens, 0)
	m.SetGroupFilters([]Filter{flt})
	ans, err := m.Process(corpustest.ResultTable(tokens, allIDs(tokens)...), sess, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"dog", "dog", "cat", "cat"}, strValues(ans, "coq_word_label_1"))
	assert.Equal(t, []string{"fiction", "news", "news", "news"}, strValues(ans, "coq_genre_1"))
	stats := m.FilterStatistics()
	assert.Equal(t, 11, stats.PreGroupFilter["news"])
	assert.Equal(t, 3, stats.PostGroupFilter["news"])
	assert.Equal(t, 10, stats.PreGroupFilter["fiction"])
	assert.Equal(t, 1, stats.PostGroupFilter["fiction"])
}

func TestGroupFunctions(t *testing.T) {
	sess, tokens, _ := newTestSession(t)
	sess.Options.GroupColumns = []string{"genre"}
	freq := functions.NewFreq([]string{"coq_pos_label_1"}, "")
	m := Factory(ModeTokens, 0)
	m.SetGroupFunctions([]functions.Function{freq})
	ans, err := m.Process(corpustest.ResultTable(tokens, 2, 5, 14), sess, true)
	require.NoError(t, err)
	// NN counted within each genre separately
	assert.Equal(t, []string{"1", "2", "2"}, strValues(ans, freq.ID()))
}

func TestContextCache(t *testing.T) {
	sess, tokens, db := newTestSession(t)
	sess.Options.ContextMode = options.ContextColumns
	sess.Options.ContextLeft = 1
	sess.Options.ContextRight = 1
	raw := corpustest.ResultTable(tokens, 2, 14)
	m := Factory(ModeTokens, 0)
	ans, err := m.Process(raw, sess, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"The", "old"}, strValues(ans, colref.LeftContextColumn(1)))

	require.NoError(t, db.Close())
	ans, err = m.Process(raw, sess, true)
	require.NoError(t, err)
	assert.Empty(t, m.Exceptions())
	assert.Equal(t, []string{"saw", "barked"}, strValues(ans, colref.RightContextColumn(1)))

	sess.QueryID = "q2"
	ans, err = m.Process(raw, sess, true)
	require.NoError(t, err)
	assert.Len(t, m.Exceptions(), 1)
	assert.False(t, ans.Has(colref.LeftContextColumn(1)))
}

func TestContextCacheFollowsRawRows(t *testing.T) {
	sess, tokens, db := newTestSession(t)
	sess.Options.ContextMode = options.ContextColumns
	sess.Options.ContextLeft = 1
	sess.Options.ContextRight = 1
	raw := corpustest.ResultTable(tokens, 2, 3, 5)
	m := Factory(ModeTokens, 0)

	sess.Options.Stopwords = []string{"dog"}
	ans, err := m.Process(raw, sess, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"saw", "cat"}, strValues(ans, "coq_word_label_1"))
	assert.Equal(t, []string{"dog", "the"}, strValues(ans, colref.LeftContextColumn(1)))

	// same number of rows, different matches
	sess.Options.Stopwords = []string{"saw"}
	ans, err = m.Process(raw, sess, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"dog", "cat"}, strValues(ans, "coq_word_label_1"))
	assert.Equal(t, []string{"The", "the"}, strValues(ans, colref.LeftContextColumn(1)))

	require.NoError(t, db.Close())
	ans, err = m.Process(raw, sess, true)
	require.NoError(t, err)
	assert.Empty(t, m.Exceptions())
	assert.Equal(t, []string{"The", "the"}, strValues(ans, colref.LeftContextColumn(1)))
	assert.Equal(t, []string{"saw", "."}, strValues(ans, colref.RightContextColumn(1)))
}

func naRowTable(tokens []corpustest.Token) *table.Table {
	raw := corpustest.ResultTable(tokens, 2, 3, 5)
	for _, c := range raw.Columns() {
		if strings.HasPrefix(c, colref.PrefixFeature) {
			raw.Col(c).SetNA(1)
		}
	}
	return raw
}

func TestDropOnNAOption(t *testing.T) {
	sess, tokens, _ := newTestSession(t)
	sess.Options.DropOnNA = true
	ans, err := Factory(ModeTokens, 0).Process(naRowTable(tokens), sess, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"dog", "cat"}, strValues(ans, "coq_word_label_1"))

	sess.Options.DropOnNA = false
	ans, err = Factory(ModeTokens, 0).Process(naRowTable(tokens), sess, true)
	require.NoError(t, err)
	assert.Equal(t, 3, ans.Len())
	assert.True(t, ans.Col("coq_word_label_1").IsNA(1))
}

func TestTypesWithAllColumnsHidden(t *testing.T) {
	sess, _, _ := newTestSession(t)
	raw := table.MustFromSeries(
		table.NewStringSeries("coq_word_label_1", []string{"a", "b", "a"}),
	)
	m := Factory(ModeTypes, 0)
	m.HideColumn("coq_word_label_1")
	ans, err := m.Process(raw, sess, true)
	require.NoError(t, err)
	assert.Equal(t, 3, ans.Len())
}

func TestGroupFilterStatisticsReset(t *testing.T) {
	sess, tokens, _ := newTestSession(t)
	sess.Options.GroupColumns = []string{"genre"}
	flt, err := filters.New("coq_pos_label_1", filters.OpEqual, "NN")
	require.NoError(t, err)
	m := Factory(ModeTokens, 0)
	m.SetGroupFilters([]Filter{flt})
	_, err = m.Process(corpustest.ResultTable(tokens, allIDs(tokens)...), sess, true)
	require.NoError(t, err)
	assert.NotEmpty(t, m.FilterStatistics().PreGroupFilter)

	m.SetGroupFilters(nil)
	_, err = m.Process(corpustest.ResultTable(tokens, allIDs(tokens)...), sess, true)
	require.NoError(t, err)
	stats := m.FilterStatistics()
	assert.Empty(t, stats.PreGroupFilter)
	assert.Empty(t, stats.PostGroupFilter)
}

func TestGetFunctionDuringProcessing(t *testing.T) {
	sess, tokens, _ := newTestSession(t)
	freq := functions.NewFreq([]string{"coq_word_label_1"}, "")
	m := Factory(ModeFrequencies, 0)
	m.SetSummaryFunctions([]functions.Function{freq})
	require.NotNil(t, m.GetFunction(freq.ID()))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			_, err := m.Process(corpustest.ResultTable(tokens, allIDs(tokens)...), sess, true)
			assert.NoError(t, err)
		}
	}()
	for i := 0; i < 200; i++ {
		m.GetFunction(freq.ID())
	}
	wg.Wait()
	assert.NotNil(t, m.GetFunction(freq.ID()))
}

func TestProcessWithoutRecalculation(t *testing.T) {
	sess, tokens, _ := newTestSession(t)
	m := Factory(ModeTokens, 0)
	first, err := m.Process(corpustest.ResultTable(tokens, 2, 3, 4), sess, true)
	require.NoError(t, err)
	m.AddSorter("coq_word_label_1", true, false)
	again, err := m.Process(corpustest.ResultTable(tokens), sess, false)
	require.NoError(t, err)
	assert.Equal(t, first.Len(), again.Len())
	assert.Equal(t, []string{"dog", "saw", "the"}, strValues(again, "coq_word_label_1"))
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry(0)
	m1 := reg.Get(ModeFrequencies, "corp1")
	assert.Same(t, m1, reg.Get(ModeFrequencies, "corp1"))
	assert.NotSame(t, m1, reg.Get(ModeTypes, "corp1"))
	assert.NotSame(t, m1, reg.Get(ModeFrequencies, "corp2"))
	assert.Equal(t, 3, reg.Len())
	assert.Equal(t, ModeContingency, reg.Get(ModeContingency, "corp1").Mode())
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("frequencies")
	require.NoError(t, err)
	assert.Equal(t, ModeFrequencies, m)
	m, err = ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeTokens, m)
	_, err = ParseMode("foo")
	assert.Error(t, err)
}
