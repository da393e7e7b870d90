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
	"errors"
	"fmt"
	"sort"
	"strings"
)

const (

	// TotalsLabel marks a synthetic row containing column
	// aggregates. Such a row is always kept at the end of a table.
	TotalsLabel = "statistics_column_total"

	keySep = "\x1f"
	naKey  = "\x00NA\x00"
)

var (
	ErrColumnNotFound = errors.New("column not found")
	ErrLengthMismatch = errors.New("series length does not match table length")
)

// Table is an ordered columnar collection of rows. Each row
// may carry an index label (empty for ordinary rows).
type Table struct {
	cols   []*Series
	pos    map[string]int
	labels []string
	nrows  int
}

// New creates an empty table with no columns and no rows
func New() *Table {
	return &Table{pos: make(map[string]int)}
}

// FromSeries creates a table out of provided columns. All the columns
// must be of the same length and must have unique names.
func FromSeries(cols ...*Series) (*Table, error) {
	ans := New()
	for _, c := range cols {
		if ans.Has(c.Name) {
			return nil, fmt.Errorf("duplicate column `%s`", c.Name)
		}
		if err := ans.Set(c); err != nil {
			return nil, fmt.Errorf("failed to add column `%s`: %w", c.Name, err)
		}
	}
	return ans, nil
}

// MustFromSeries is like FromSeries but it panics on error
func MustFromSeries(cols ...*Series) *Table {
	ans, err := FromSeries(cols...)
	if err != nil {
		panic(err)
	}
	return ans
}

// Empty creates a table with provided columns and zero rows
func Empty(names []string, kinds []Kind) *Table {
	ans := New()
	for i, n := range names {
		ans.Set(NewEmptySeries(n, kinds[i], 0))
	}
	return ans
}

func (t *Table) Len() int {
	return t.nrows
}

func (t *Table) NumColumns() int {
	return len(t.cols)
}

func (t *Table) Columns() []string {
	ans := make([]string, len(t.cols))
	for i, c := range t.cols {
		ans[i] = c.Name
	}
	return ans
}

func (t *Table) Has(name string) bool {
	_, ok := t.pos[name]
	return ok
}

// Col returns a column by its name or nil if not found
func (t *Table) Col(name string) *Series {
	i, ok := t.pos[name]
	if !ok {
		return nil
	}
	return t.cols[i]
}

// Set adds a new column or replaces an existing one with the same
// name. In case the table has no columns yet, the series length
// defines the number of rows.
func (t *Table) Set(s *Series) error {
	if len(t.cols) == 0 {
		t.nrows = s.Len()
		t.labels = make([]string, t.nrows)

	} else if s.Len() != t.nrows {
		return fmt.Errorf("%w (column `%s`: %d, table: %d)", ErrLengthMismatch, s.Name, s.Len(), t.nrows)
	}
	if i, ok := t.pos[s.Name]; ok {
		t.cols[i] = s
		return nil
	}
	t.pos[s.Name] = len(t.cols)
	t.cols = append(t.cols, s)
	return nil
}

// Drop removes columns in place. Unknown columns are ignored.
func (t *Table) Drop(names ...string) {
	if len(names) == 0 {
		return
	}
	rm := make(map[string]bool)
	for _, n := range names {
		rm[n] = true
	}
	cols := make([]*Series, 0, len(t.cols))
	for _, c := range t.cols {
		if !rm[c.Name] {
			cols = append(cols, c)
		}
	}
	t.setColumns(cols)
}

// DropIf removes all columns matching the predicate
func (t *Table) DropIf(pred func(name string) bool) {
	names := make([]string, 0, 5)
	for _, c := range t.cols {
		if pred(c.Name) {
			names = append(names, c.Name)
		}
	}
	t.Drop(names...)
}

func (t *Table) setColumns(cols []*Series) {
	t.cols = cols
	t.pos = make(map[string]int, len(cols))
	for i, c := range cols {
		t.pos[c.Name] = i
	}
}

// Rename changes a column name in place
func (t *Table) Rename(from, to string) error {
	i, ok := t.pos[from]
	if !ok {
		return fmt.Errorf("%w: %s", ErrColumnNotFound, from)
	}
	if from == to {
		return nil
	}
	if _, ok := t.pos[to]; ok {
		return fmt.Errorf("cannot rename `%s`: column `%s` already exists", from, to)
	}
	t.cols[i] = t.cols[i].Renamed(to)
	delete(t.pos, from)
	t.pos[to] = i
	return nil
}

// Select returns a new table with the provided columns in the
// provided order.
func (t *Table) Select(names []string) (*Table, error) {
	ans := New()
	ans.nrows = t.nrows
	ans.labels = append([]string(nil), t.labels...)
	cols := make([]*Series, 0, len(names))
	for _, n := range names {
		c := t.Col(n)
		if c == nil {
			return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, n)
		}
		cols = append(cols, c)
	}
	ans.setColumns(cols)
	return ans, nil
}

// Label returns the index label of the i-th row
func (t *Table) Label(i int) string {
	return t.labels[i]
}

func (t *Table) SetLabel(i int, label string) {
	t.labels[i] = label
}

// ResetIndex removes all row labels
func (t *Table) ResetIndex() {
	t.labels = make([]string, t.nrows)
}

func (t *Table) HasTotals() bool {
	for _, l := range t.labels {
		if l == TotalsLabel {
			return true
		}
	}
	return false
}

// SplitTotals separates ordinary rows from the totals row(s).
// The totals table is nil if there is no totals row.
func (t *Table) SplitTotals() (data *Table, totals *Table) {
	if !t.HasTotals() {
		return t, nil
	}
	dataIdx := make([]int, 0, t.nrows)
	totalsIdx := make([]int, 0, 1)
	for i, l := range t.labels {
		if l == TotalsLabel {
			totalsIdx = append(totalsIdx, i)

		} else {
			dataIdx = append(dataIdx, i)
		}
	}
	return t.Take(dataIdx), t.Take(totalsIdx)
}

// Take creates a new table containing rows with the provided
// indices (in the provided order).
func (t *Table) Take(idx []int) *Table {
	ans := New()
	ans.nrows = len(idx)
	ans.labels = make([]string, len(idx))
	for i, j := range idx {
		ans.labels[i] = t.labels[j]
	}
	cols := make([]*Series, len(t.cols))
	for i, c := range t.cols {
		cols[i] = c.take(idx)
	}
	ans.setColumns(cols)
	return ans
}

// Filter returns a new table with rows for which keep returns true
func (t *Table) Filter(keep func(i int) bool) *Table {
	idx := make([]int, 0, t.nrows)
	for i := 0; i < t.nrows; i++ {
		if keep(i) {
			idx = append(idx, i)
		}
	}
	return t.Take(idx)
}

// Copy creates a deep copy of the table
func (t *Table) Copy() *Table {
	ans := New()
	ans.nrows = t.nrows
	ans.labels = append([]string(nil), t.labels...)
	cols := make([]*Series, len(t.cols))
	for i, c := range t.cols {
		cols[i] = c.Copy()
	}
	ans.setColumns(cols)
	return ans
}

// RowKey creates a string key identifying values of the i-th row
// in provided columns. Missing columns are treated as NA.
func (t *Table) RowKey(i int, cols []string) string {
	var buff strings.Builder
	for k, c := range cols {
		if k > 0 {
			buff.WriteString(keySep)
		}
		s := t.Col(c)
		if s == nil || s.IsNA(i) {
			buff.WriteString(naKey)

		} else {
			buff.WriteString(s.Str(i))
		}
	}
	return buff.String()
}

// Row returns values of the i-th row in column order
func (t *Table) Row(i int) []any {
	ans := make([]any, len(t.cols))
	for k, c := range t.cols {
		ans[k] = c.Value(i)
	}
	return ans
}

// AppendRow adds a new row. Values are matched to columns by name,
// missing values become NA.
func (t *Table) AppendRow(label string, values map[string]any) {
	for _, c := range t.cols {
		c.appendFrom(nil, 0)
		v, ok := values[c.Name]
		if ok {
			c.SetValue(c.Len()-1, v)
		}
	}
	t.labels = append(t.labels, label)
	t.nrows++
}

// HConcat adds all the columns of other to t (in place). Existing
// columns with the same name are replaced.
func (t *Table) HConcat(other *Table) error {
	if len(t.cols) > 0 && len(other.cols) > 0 && other.Len() != t.nrows {
		return fmt.Errorf("%w (%d vs. %d rows)", ErrLengthMismatch, other.Len(), t.nrows)
	}
	for _, c := range other.cols {
		if err := t.Set(c); err != nil {
			return err
		}
	}
	return nil
}

// Concat stacks tables vertically. The result contains the union
// of all columns (ordered by first appearance), missing values are
// NA. In case the same column has different kinds in different tables,
// ints are promoted to floats and numbers are converted to strings
// when mixed with strings. Row labels are preserved.
func Concat(tables ...*Table) *Table {
	names := make([]string, 0, 10)
	kinds := make(map[string]Kind)
	for _, t := range tables {
		if t == nil {
			continue
		}
		for _, c := range t.cols {
			k, ok := kinds[c.Name]
			if !ok {
				names = append(names, c.Name)
				kinds[c.Name] = c.Kind
				continue
			}
			kinds[c.Name] = promoteKind(k, c.Kind)
		}
	}
	ans := New()
	cols := make([]*Series, len(names))
	for i, n := range names {
		cols[i] = NewEmptySeries(n, kinds[n], 0)
	}
	for _, t := range tables {
		if t == nil {
			continue
		}
		for i := 0; i < t.nrows; i++ {
			for _, c := range cols {
				c.appendFrom(t.Col(c.Name), i)
			}
			ans.labels = append(ans.labels, t.labels[i])
		}
		ans.nrows += t.nrows
	}
	ans.setColumns(cols)
	return ans
}

func promoteKind(a, b Kind) Kind {
	if a == b {
		return a
	}
	if a == KindString || b == KindString {
		return KindString
	}
	return KindFloat
}

// SortKey specifies a column and a direction for sorting
type SortKey struct {
	Column    string
	Ascending bool
}

// SortStable sorts rows by all the keys at once (i.e. the first key
// has the highest priority, ties are resolved by the following keys
// and then by the original row order). NA values are always placed
// last.
func (t *Table) SortStable(keys []SortKey) (*Table, error) {
	cols := make([]*Series, len(keys))
	for i, k := range keys {
		cols[i] = t.Col(k.Column)
		if cols[i] == nil {
			return nil, fmt.Errorf("cannot sort: %w: %s", ErrColumnNotFound, k.Column)
		}
	}
	idx := make([]int, t.nrows)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ra, rb := idx[a], idx[b]
		for i, c := range cols {
			naA, naB := c.IsNA(ra), c.IsNA(rb)
			if naA != naB {
				return naB
			}
			cmp := c.Compare(ra, rb)
			if cmp == 0 {
				continue
			}
			if keys[i].Ascending {
				return cmp < 0
			}
			return cmp > 0
		}
		return false
	})
	return t.Take(idx), nil
}

// Group is a set of rows sharing the same values in grouping columns
type Group struct {
	Key    string
	Values []any
	Rows   []int
}

// GroupBy groups rows by values of provided columns. Groups are
// sorted by their key values (column by column, NA last), rows within
// a group keep their original order.
func (t *Table) GroupBy(cols []string) ([]*Group, error) {
	series := make([]*Series, len(cols))
	for i, c := range cols {
		series[i] = t.Col(c)
		if series[i] == nil {
			return nil, fmt.Errorf("cannot group: %w: %s", ErrColumnNotFound, c)
		}
	}
	index := make(map[string]*Group)
	groups := make([]*Group, 0, 10)
	for i := 0; i < t.nrows; i++ {
		key := t.RowKey(i, cols)
		g, ok := index[key]
		if !ok {
			g = &Group{Key: key, Values: make([]any, len(series))}
			for k, s := range series {
				g.Values[k] = s.Value(i)
			}
			index[key] = g
			groups = append(groups, g)
		}
		g.Rows = append(g.Rows, i)
	}
	sort.SliceStable(groups, func(a, b int) bool {
		ra, rb := groups[a].Rows[0], groups[b].Rows[0]
		for _, s := range series {
			if cmp := s.Compare(ra, rb); cmp != 0 {
				return cmp < 0
			}
		}
		return false
	})
	return groups, nil
}

// Distinct removes rows which are identical (with respect to provided
// columns) to some previous row. The first occurrence is kept, row
// labels are reset. With an empty subset, all the rows are kept.
func (t *Table) Distinct(subset []string) *Table {
	if len(subset) == 0 {
		ans := t.Copy()
		ans.ResetIndex()
		return ans
	}
	seen := make(map[string]bool, t.nrows)
	ans := t.Filter(func(i int) bool {
		key := t.RowKey(i, subset)
		if seen[key] {
			return false
		}
		seen[key] = true
		return true
	})
	ans.ResetIndex()
	return ans
}

// DropAllNA removes rows where all the values in subset columns are NA
func (t *Table) DropAllNA(subset []string) *Table {
	series := make([]*Series, 0, len(subset))
	for _, c := range subset {
		if s := t.Col(c); s != nil {
			series = append(series, s)
		}
	}
	if len(series) == 0 {
		return t
	}
	return t.Filter(func(i int) bool {
		for _, s := range series {
			if !s.IsNA(i) {
				return true
			}
		}
		return false
	})
}
