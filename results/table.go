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
	"fmt"

	"github.com/czcorpus/cnc-gokit/collections"
)

// TableData is a JSON friendly form of a result table.
// NA values are encoded as null.
type TableData struct {
	Columns []string `json:"columns"`
	Kinds   []string `json:"kinds"`

	// Labels contains row index labels. It is omitted
	// in case no row is labeled.
	Labels []string `json:"labels,omitempty"`

	Rows [][]any `json:"rows"`
}

func (td TableData) NumRows() int {
	return len(td.Rows)
}

// ToTable decodes the data into a table. Numeric values
// may come as any numeric type (JSON decoders produce float64).
func (td TableData) ToTable() (*table.Table, error) {
	if len(td.Kinds) != len(td.Columns) {
		return nil, fmt.Errorf(
			"number of column kinds (%d) does not match number of columns (%d)",
			len(td.Kinds), len(td.Columns))
	}
	if len(td.Labels) > 0 && len(td.Labels) != len(td.Rows) {
		return nil, fmt.Errorf(
			"number of row labels (%d) does not match number of rows (%d)",
			len(td.Labels), len(td.Rows))
	}
	series := make([]*table.Series, len(td.Columns))
	for i, c := range td.Columns {
		kind, err := table.ParseKind(td.Kinds[i])
		if err != nil {
			return nil, fmt.Errorf("invalid column %s: %w", c, err)
		}
		series[i] = table.NewEmptySeries(c, kind, len(td.Rows))
	}
	for r, row := range td.Rows {
		if len(row) != len(td.Columns) {
			return nil, fmt.Errorf("row %d has %d values, expected %d", r, len(row), len(td.Columns))
		}
		for i, v := range row {
			series[i].SetValue(r, v)
		}
	}
	ans, err := table.FromSeries(series...)
	if err != nil {
		return nil, err
	}
	if len(td.Columns) == 0 {
		return ans, nil
	}
	for i, label := range td.Labels {
		ans.SetLabel(i, label)
	}
	return ans, nil
}

// NewTableData converts a table to its JSON friendly form
func NewTableData(t *table.Table) TableData {
	columns := t.Columns()
	ans := TableData{
		Columns: columns,
		Kinds: collections.SliceMap(
			columns,
			func(c string, i int) string {
				return t.Col(c).Kind.String()
			},
		),
		Rows: make([][]any, t.Len()),
	}
	var hasLabels bool
	for i := 0; i < t.Len(); i++ {
		ans.Rows[i] = t.Row(i)
		if t.Label(i) != "" {
			hasLabels = true
		}
	}
	if hasLabels {
		ans.Labels = make([]string, t.Len())
		for i := range ans.Labels {
			ans.Labels[i] = t.Label(i)
		}
	}
	return ans
}
