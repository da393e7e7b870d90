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
	"coqpipe/session"
	"coqpipe/table"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

type aggFunc int

const (
	aggMean aggFunc = iota
	aggSum
	aggFirst
)

func (af aggFunc) apply(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	switch af {
	case aggFirst:
		return values[0]
	case aggSum:
		var ans float64
		for _, v := range values {
			ans += v
		}
		return ans
	default:
		var ans float64
		for _, v := range values {
			ans += v
		}
		return ans / float64(len(values))
	}
}

// contingencyVariant cross-tabulates a frequency list using its last
// categorical column as the column axis
type contingencyVariant struct {
	frequencyVariant
}

var internalNumColumns = []string{colref.ColNumTokens, colref.ColCorpusID, colref.ColOriginID}

// aggregation determines how a numeric column is aggregated: internal
// columns take the first value (so a cell can still be resolved
// to a concrete match), frequencies are summed, others averaged
func (v *contingencyVariant) aggregation(col string) aggFunc {
	switch {
	case colref.IsInternal(col):
		return aggFirst
	case strings.HasPrefix(col, colref.PrefixFunction+functions.NameFreq):
		return aggSum
	}
	return aggMean
}

func (v *contingencyVariant) bundleName(col, pivotLabel string, af aggFunc) string {
	switch af {
	case aggSum:
		if col == v.freqID {
			return col
		}
		return col + "(TOTAL)"
	case aggFirst:
		return fmt.Sprintf("%s(%s=ANY)", col, pivotLabel)
	}
	return col + "(MEAN)"
}

func valuesOf(s *table.Series, rows []int) []float64 {
	ans := make([]float64, 0, len(rows))
	for _, r := range rows {
		if !s.IsNA(r) {
			ans = append(ans, s.Float(r))
		}
	}
	return ans
}

func (v *contingencyVariant) pivot(
	t *table.Table,
	cat, num []string,
	sess *session.Session,
) (*table.Table, error) {
	rowCols := cat[:len(cat)-1]
	pivotCol := cat[len(cat)-1]
	sub := t.Filter(func(i int) bool {
		for _, c := range cat {
			if t.Col(c).IsNA(i) {
				return false
			}
		}
		return true
	})
	pivotSeries := sub.Col(pivotCol)
	pivotValues := make([]string, 0, 20)
	seen := make(map[string]bool)
	for i := 0; i < sub.Len(); i++ {
		val := pivotSeries.Str(i)
		if !seen[val] {
			seen[val] = true
			pivotValues = append(pivotValues, val)
		}
	}
	sort.Strings(pivotValues)
	groups, err := sub.GroupBy(rowCols)
	if err != nil {
		return nil, err
	}
	// rows of each group split by pivot values
	cells := make([]map[string][]int, len(groups))
	for gi, g := range groups {
		cells[gi] = make(map[string][]int)
		for _, r := range g.Rows {
			pv := pivotSeries.Str(r)
			cells[gi][pv] = append(cells[gi][pv], r)
		}
	}

	ans := table.New()
	for ci, c := range rowCols {
		values := make([]string, len(groups))
		for gi, g := range groups {
			values[gi] = fmt.Sprint(g.Values[ci])
		}
		if err := ans.Set(table.NewStringSeries(c, values)); err != nil {
			return nil, err
		}
	}
	pivotLabel := sess.TranslateHeader(pivotCol, false)
	bundles := make([]*table.Series, 0, len(num))
	for _, n := range num {
		src := sub.Col(n)
		af := v.aggregation(n)
		bundleValues := make([][]float64, len(groups))
		for _, pv := range pivotValues {
			name := fmt.Sprintf("%s(%s='%s')", n, pivotLabel, strings.ReplaceAll(pv, "'", "''"))
			values := make([]float64, len(groups))
			for gi := range groups {
				rows, ok := cells[gi][pv]
				if !ok {
					values[gi] = 0
					continue
				}
				values[gi] = af.apply(valuesOf(src, rows))
				if !math.IsNaN(values[gi]) {
					bundleValues[gi] = append(bundleValues[gi], values[gi])
				}
			}
			cell := table.NewFloatSeries(name, values)
			if src.Kind == table.KindInt {
				cell = cell.AsKind(table.KindInt)
			}
			if err := ans.Set(cell); err != nil {
				return nil, err
			}
		}
		bundle := make([]float64, len(groups))
		for gi := range groups {
			bundle[gi] = af.apply(bundleValues[gi])
		}
		bs := table.NewFloatSeries(v.bundleName(n, pivotLabel, af), bundle)
		if src.Kind == table.KindInt {
			bs = bs.AsKind(table.KindInt)
		}
		bundles = append(bundles, bs)
	}
	for _, bs := range bundles {
		if err := ans.Set(bs); err != nil {
			return nil, err
		}
	}
	return ans, nil
}

// appendTotals adds a row aggregating whole columns
func (v *contingencyVariant) appendTotals(t *table.Table, skip int) {
	totals := make(map[string]any)
	for i, c := range t.Columns() {
		if i < skip {
			continue
		}
		base, _, _ := strings.Cut(c, "(")
		s := t.Col(c)
		if !s.Kind.IsNumeric() {
			continue
		}
		rows := make([]int, t.Len())
		for r := range rows {
			rows[r] = r
		}
		val := v.aggregation(base).apply(valuesOf(s, rows))
		if !math.IsNaN(val) {
			totals[c] = val
		}
	}
	t.AppendRow(table.TotalsLabel, totals)
}

func (v *contingencyVariant) summarize(m *Manager, t *table.Table, sess *session.Session) (*table.Table, error) {
	t, err := v.frequencyVariant.summarize(m, t, sess)
	if err != nil {
		return nil, err
	}
	if t.Len() == 0 {
		return t, nil
	}
	cat := make([]string, 0, 5)
	num := make([]string, 0, 5)
	for _, c := range m.VisibleColumns(t) {
		if t.Col(c).Kind == table.KindString {
			cat = append(cat, c)

		} else {
			num = append(num, c)
		}
	}
	for _, c := range internalNumColumns {
		if t.Has(c) {
			num = append(num, c)
		}
	}
	if len(cat) < 2 {
		ans := t.Copy()
		v.appendTotals(ans, 0)
		return ans, nil
	}
	piv, err := v.pivot(t, cat, num, sess)
	if err != nil {
		return nil, fmt.Errorf("failed to create contingency table: %w", err)
	}
	v.appendTotals(piv, len(cat)-1)
	log.Debug().
		Str("stage", "summarize").
		Str("pivot", cat[len(cat)-1]).
		Int("rows", piv.Len()).
		Msg("created contingency table")
	return piv, nil
}

// selectColumns puts the frequency column last and renames it
// to a column total
func (v *contingencyVariant) selectColumns(m *Manager, t *table.Table, sess *session.Session) (*table.Table, error) {
	ans, err := m.defaultSelect(t, sess)
	if err != nil {
		return nil, err
	}
	if v.freqID == "" || !ans.Has(v.freqID) {
		return ans, nil
	}
	cols := make([]string, 0, ans.NumColumns())
	for _, c := range ans.Columns() {
		if c != v.freqID {
			cols = append(cols, c)
		}
	}
	ans, err = ans.Select(append(cols, v.freqID))
	if err != nil {
		return nil, err
	}
	if err := ans.Rename(v.freqID, colref.ColColumnTotal); err != nil {
		return nil, err
	}
	return ans, nil
}
