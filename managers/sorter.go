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
	"coqpipe/session"
	"coqpipe/table"

	"github.com/rs/zerolog/log"
)

const (
	reverseSuffix = "__rev"
)

// Sorter specifies sorting by a column. With Reverse set,
// the column values are compared as reversed strings
// (e.g. for sorting words by their endings).
type Sorter struct {
	Column    string `json:"column"`
	Ascending bool   `json:"ascending"`
	Reverse   bool   `json:"reverse"`
	Position  int    `json:"position"`
}

func reverseString(s string) string {
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}

func (m *Manager) getSorter(column string) *Sorter {
	for _, s := range m.sorters {
		if s.Column == column {
			return s
		}
	}
	return nil
}

func (m *Manager) renumberSorters() {
	for i, s := range m.sorters {
		s.Position = i
	}
}

func (m *Manager) removeSorter(column string) {
	ans := make([]*Sorter, 0, len(m.sorters))
	for _, s := range m.sorters {
		if s.Column != column {
			ans = append(ans, s)
		}
	}
	m.sorters = ans
	m.renumberSorters()
}

// GetSorter returns a copy of the sorter for a column (or nil)
func (m *Manager) GetSorter(column string) *Sorter {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s := m.getSorter(column); s != nil {
		cp := *s
		return &cp
	}
	return nil
}

// AddSorter appends a sorter. An existing sorter for the same
// column is replaced.
func (m *Manager) AddSorter(column string, ascending, reverse bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getSorter(column) != nil {
		m.removeSorter(column)
	}
	m.sorters = append(m.sorters, &Sorter{
		Column:    column,
		Ascending: ascending,
		Reverse:   reverse,
		Position:  len(m.sorters),
	})
}

func (m *Manager) RemoveSorter(column string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeSorter(column)
}

func (m *Manager) ResetSorters() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sorters = []*Sorter{}
}

// Sorters returns copies of the active sorters
func (m *Manager) Sorters() []Sorter {
	m.mu.Lock()
	defer m.mu.Unlock()
	ans := make([]Sorter, len(m.sorters))
	for i, s := range m.sorters {
		ans[i] = *s
	}
	return ans
}

// Arrange sorts a processed table by all the active sorters at once.
// Sorters referring to missing columns are removed. A totals row
// stays at the end of the table.
func (m *Manager) Arrange(t *table.Table) *table.Table {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.arrange(t)
}

func (m *Manager) arrange(t *table.Table) *table.Table {
	if t.Len() == 0 || len(m.sorters) == 0 {
		return t
	}
	data, totals := t.SplitTotals()
	data, _ = data.Select(data.Columns())
	keys := make([]table.SortKey, 0, len(m.sorters))
	tmpCols := make([]string, 0, 2)
	valid := make([]*Sorter, 0, len(m.sorters))
	for _, s := range m.sorters {
		src := data.Col(s.Column)
		if src == nil {
			log.Warn().
				Str("column", s.Column).
				Msg("removing sorter referring to a missing column")
			continue
		}
		valid = append(valid, s)
		if s.Reverse {
			values := make([]string, src.Len())
			for i := range values {
				values[i] = reverseString(src.Str(i))
			}
			rev := table.NewStringSeries(s.Column+reverseSuffix, values)
			for i := range values {
				if src.IsNA(i) {
					rev.SetNA(i)
				}
			}
			data.Set(rev)
			tmpCols = append(tmpCols, rev.Name)
			keys = append(keys, table.SortKey{Column: rev.Name, Ascending: s.Ascending})

		} else {
			keys = append(keys, table.SortKey{Column: s.Column, Ascending: s.Ascending})
		}
	}
	m.sorters = valid
	m.renumberSorters()
	if len(keys) == 0 {
		return t
	}
	sorted, err := data.SortStable(keys)
	if err != nil {
		log.Error().Err(err).Msg("failed to sort result")
		return t
	}
	sorted.Drop(tmpCols...)
	sorted.ResetIndex()
	if totals != nil {
		return table.Concat(sorted, totals)
	}
	return sorted
}

// arrangeGroups sorts rows by group columns using the corpus
// position as a tiebreaker
func (m *Manager) arrangeGroups(t *table.Table, sess *session.Session) *table.Table {
	columns := m.GroupColumns(t, sess)
	if t.Len() == 0 || len(columns) == 0 {
		return t
	}
	if t.Has(colref.ColCorpusID) {
		columns = append(columns, colref.ColCorpusID)
	}
	keys := make([]table.SortKey, len(columns))
	for i, c := range columns {
		keys[i] = table.SortKey{Column: c, Ascending: true}
	}
	data, totals := t.SplitTotals()
	sorted, err := data.SortStable(keys)
	if err != nil {
		log.Error().Err(err).Msg("failed to sort groups")
		return t
	}
	sorted.ResetIndex()
	log.Debug().Str("stage", "arrangeGroups").Strs("columns", columns).Msg("sorted groups")
	if totals != nil {
		return table.Concat(sorted, totals)
	}
	return sorted
}
