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
	"coqpipe/functions"
	"coqpipe/merror"
	"coqpipe/session"
	"coqpipe/table"
	"fmt"
	"math"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"
)

const (
	colContrastCount = "coquery_invisible_count"
	colContrastSize  = "coquery_invisible_size"
)

// GTest calculates the G² (log-likelihood) statistic for two
// frequencies f1, f2 observed in samples of sizes n1, n2:
//
//	e1 = n1 * (f1 + f2) / (n1 + n2)
//	e2 = n2 * (f1 + f2) / (n1 + n2)
//	G² = 2 * (f1 * ln(f1 / e1) + f2 * ln(f2 / e2))
//
// A zero frequency contributes zero. Non-positive sample
// sizes produce NaN.
func GTest(f1, f2, n1, n2 float64) float64 {
	if n1 <= 0 || n2 <= 0 {
		return math.NaN()
	}
	if f1+f2 == 0 {
		return 0
	}
	e1 := n1 * (f1 + f2) / (n1 + n2)
	e2 := n2 * (f1 + f2) / (n1 + n2)
	term := func(f, e float64) float64 {
		if f == 0 {
			return 0
		}
		return f * math.Log(f/e)
	}
	return 2 * (term(f1, e1) + term(f2, e2))
}

// CellContent describes a contrast matrix cell
type CellContent struct {
	FreqRow  int64  `json:"freqRow"`
	FreqCol  int64  `json:"freqCol"`
	TotalRow int64  `json:"totalRow"`
	TotalCol int64  `json:"totalCol"`
	LabelRow string `json:"labelRow"`
	LabelCol string `json:"labelCol"`
}

// contrastVariant compares all pairs of distinct value combinations
// using the G² test
type contrastVariant struct {
	baseVariant
	cache    *lru.Cache[[4]float64, float64]
	startPos int
}

func (v *contrastVariant) ignoreUserFunctions() bool {
	return true
}

func (v *contrastVariant) gTest(f1, f2, n1, n2 float64) float64 {
	key := [4]float64{f1, f2, n1, n2}
	if ans, ok := v.cache.Get(key); ok {
		return ans
	}
	ans := GTest(f1, f2, n1, n2)
	v.cache.Add(key, ans)
	return ans
}

// rowLabels joins visible values of each row by a colon
func (v *contrastVariant) rowLabels(m *Manager, t *table.Table) []string {
	cols := m.VisibleColumns(t)
	ans := make([]string, t.Len())
	for i := range ans {
		items := make([]string, len(cols))
		for k, c := range cols {
			items[k] = t.Col(c).Str(i)
		}
		ans[i] = strings.Join(items, ":")
	}
	return ans
}

func (v *contrastVariant) matrix(m *Manager, t *table.Table) (*table.Table, error) {
	if err := t.Set(table.NewStringSeries(colref.ColRowID, v.rowLabels(m, t))); err != nil {
		return nil, err
	}
	t = t.Distinct([]string{colref.ColRowID})
	t, err := t.SortStable([]table.SortKey{{Column: colref.ColRowID, Ascending: true}})
	if err != nil {
		return nil, err
	}
	labels := t.Col(colref.ColRowID)
	freqs := t.Col(colContrastCount)
	sizes := t.Col(colContrastSize)
	if freqs == nil || sizes == nil {
		return nil, merror.InternalError{Msg: "contrast matrix requires frequencies and subcorpus sizes"}
	}
	for j := 0; j < t.Len(); j++ {
		values := make([]float64, t.Len())
		for i := range values {
			values[i] = v.gTest(freqs.Float(i), freqs.Float(j), sizes.Float(i), sizes.Float(j))
		}
		name := colref.PrefixGTest + labels.Str(j)
		if err := t.Set(table.NewFloatSeries(name, values)); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (v *contrastVariant) summarize(m *Manager, t *table.Table, sess *session.Session) (*table.Table, error) {
	visCols := m.VisibleColumns(t)
	m.ManagerSummaryFunctions = functions.NewList(
		functions.NewFreq(visCols, colContrastCount),
		functions.NewSubcorpusSize(visCols, colContrastSize),
	)
	t, err := m.defaultSummarize(t, sess)
	if err != nil {
		return nil, err
	}
	if t.Len() == 0 {
		return t, nil
	}
	t, err = v.matrix(m, t)
	if err != nil {
		return nil, fmt.Errorf("failed to create contrast matrix: %w", err)
	}
	log.Debug().Str("stage", "summarize").Int("groups", t.Len()).Msg("created contrast matrix")
	return t, nil
}

func (v *contrastVariant) selectColumns(m *Manager, t *table.Table, sess *session.Session) (*table.Table, error) {
	ans, err := m.defaultSelect(t, sess)
	if err != nil {
		return nil, err
	}
	v.startPos = -1
	for i, c := range m.VisibleColumns(ans) {
		if colref.IsGTest(c) {
			v.startPos = i
			break
		}
	}
	return ans, nil
}

// cellContent returns data behind a matrix cell. The column
// index refers to visible columns.
func (v *contrastVariant) cellContent(t *table.Table, row, col int) (CellContent, error) {
	if v.startPos < 0 {
		return CellContent{}, merror.InputError{Msg: "no contrast matrix available"}
	}
	other := col - v.startPos
	if row < 0 || row >= t.Len() || other < 0 || other >= t.Len() {
		return CellContent{}, merror.InputError{Msg: fmt.Sprintf("cell [%d, %d] out of range", row, col)}
	}
	freqs := t.Col(colContrastCount)
	sizes := t.Col(colContrastSize)
	labels := t.Col(colref.ColRowID)
	if freqs == nil || sizes == nil || labels == nil {
		return CellContent{}, merror.InputError{Msg: "table is not a contrast matrix"}
	}
	return CellContent{
		FreqRow:  freqs.Int(row),
		FreqCol:  freqs.Int(other),
		TotalRow: sizes.Int(row),
		TotalCol: sizes.Int(other),
		LabelRow: labels.Str(row),
		LabelCol: labels.Str(other),
	}, nil
}

// CellContent returns raw frequencies, subcorpus sizes and labels
// behind a contrast matrix cell (row and col are indices within
// visible columns of the processed table)
func (m *Manager) CellContent(t *table.Table, row, col int) (CellContent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cv, ok := m.variant.(*contrastVariant)
	if !ok {
		return CellContent{}, merror.InputError{
			Msg: fmt.Sprintf("cell content not available in mode %s", m.mode)}
	}
	return cv.cellContent(t, row, col)
}

func newContrastVariant(cacheSize int) *contrastVariant {
	if cacheSize <= 0 {
		cacheSize = DfltGTestCacheSize
	}
	cache, err := lru.New[[4]float64, float64](cacheSize)
	if err != nil {
		// lru fails only for non-positive sizes
		panic(err)
	}
	return &contrastVariant{cache: cache, startPos: -1}
}
