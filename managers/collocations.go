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
	"coqpipe/options"
	"coqpipe/session"
	"coqpipe/table"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"
)

const (
	ColCollocateLabel      = "coq_collocate_label"
	ColCollocateFreq       = "coq_collocate_frequency"
	ColCollocateFreqLeft   = "coq_collocate_frequency_left"
	ColCollocateFreqRight  = "coq_collocate_frequency_right"
	ColCondProbability     = "coq_conditional_probability"
	ColCondProbabilityLeft = "coq_conditional_probability_left"
	ColCondProbabilityRgt  = "coq_conditional_probability_right"
	ColMutualInformation   = "coq_mutual_information"
)

var collocationColumns = []string{
	ColCollocateLabel,
	colref.ColFrequency,
	ColCollocateFreq,
	ColCollocateFreqLeft,
	ColCollocateFreqRight,
	ColCondProbability,
	ColCondProbabilityLeft,
	ColCondProbabilityRgt,
	ColMutualInformation,
}

var collocationKinds = []table.Kind{
	table.KindString,
	table.KindInt,
	table.KindInt,
	table.KindInt,
	table.KindInt,
	table.KindFloat,
	table.KindFloat,
	table.KindFloat,
	table.KindFloat,
}

// collocationsVariant replaces matches by statistics of words
// found in their contexts
type collocationsVariant struct {
	baseVariant
}

// pipelineOptions forces separate context columns
func (v *collocationsVariant) pipelineOptions(opts *options.Pipeline) *options.Pipeline {
	ans := opts.Copy()
	ans.ContextMode = options.ContextColumns
	if ans.ContextLeft == 0 && ans.ContextRight == 0 {
		if err := ans.ValidateAndDefaults("collocations"); err != nil {
			log.Error().Err(err).Msg("failed to set default context window")
		}
	}
	return ans
}

// filter is a no-op here, filters apply to the collocate table
func (v *collocationsVariant) filter(m *Manager, t *table.Table, sess *session.Session) (*table.Table, error) {
	return t, nil
}

func (v *collocationsVariant) ignoreUserFunctions() bool {
	return true
}

func countTokens(t *table.Table, cols []string, opts *options.Pipeline) map[string]int64 {
	ans := make(map[string]int64)
	for _, c := range cols {
		s := t.Col(c)
		for i := 0; i < s.Len(); i++ {
			if s.IsNA(i) || s.Str(i) == "" {
				continue
			}
			ans[opts.FoldCase(s.Str(i))]++
		}
	}
	return ans
}

func (v *collocationsVariant) summarize(m *Manager, t *table.Table, sess *session.Session) (*table.Table, error) {
	if t.Len() == 0 {
		return table.Empty(collocationColumns, collocationKinds), nil
	}
	opts := sess.Options
	leftCols := make([]string, 0, opts.ContextLeft)
	for i := 1; i <= opts.ContextLeft; i++ {
		if c := colref.LeftContextColumn(i); t.Has(c) {
			leftCols = append(leftCols, c)
		}
	}
	rightCols := make([]string, 0, opts.ContextRight)
	for i := 1; i <= opts.ContextRight; i++ {
		if c := colref.RightContextColumn(i); t.Has(c) {
			rightCols = append(rightCols, c)
		}
	}
	corpusSize, err := sess.Resource.CorpusSize(sess.Context())
	if err != nil {
		return nil, merror.InternalError{Msg: fmt.Sprintf("failed to get corpus size: %s", err)}
	}
	left := countTokens(t, leftCols, opts)
	right := countTokens(t, rightCols, opts)
	labels := make([]string, 0, len(left)+len(right))
	for w := range left {
		labels = append(labels, w)
	}
	for w := range right {
		if _, ok := left[w]; !ok {
			labels = append(labels, w)
		}
	}
	sort.Strings(labels)

	freqLeft := make([]int64, len(labels))
	freqRight := make([]int64, len(labels))
	freqAll := make([]int64, len(labels))
	freqTotal := make([]int64, len(labels))
	for i, w := range labels {
		freqLeft[i] = left[w]
		freqRight[i] = right[w]
		freqAll[i] = freqLeft[i] + freqRight[i]
		freqTotal[i], err = sess.Resource.WordFrequency(sess.Context(), w)
		if err != nil {
			return nil, merror.InternalError{Msg: fmt.Sprintf("failed to get frequency of %s: %s", w, err)}
		}
	}
	ans := table.MustFromSeries(
		table.NewStringSeries(ColCollocateLabel, labels),
		table.NewIntSeries(ColCollocateFreqLeft, freqLeft),
		table.NewIntSeries(ColCollocateFreqRight, freqRight),
		table.NewIntSeries(ColCollocateFreq, freqAll),
		table.NewIntSeries(colref.ColFrequency, freqTotal),
	)
	total := ans.Col(colref.ColFrequency)
	ans.Set(functions.ConditionalProbabilitySeries(
		ColCondProbability, ans.Col(ColCollocateFreq), total))
	ans.Set(functions.ConditionalProbabilitySeries(
		ColCondProbabilityLeft, ans.Col(ColCollocateFreqLeft), total))
	ans.Set(functions.ConditionalProbabilitySeries(
		ColCondProbabilityRgt, ans.Col(ColCollocateFreqRight), total))

	mi := functions.NewMutualInformation(
		[]string{colref.ColFrequency, ColCollocateFreq},
		float64(t.Len()),
		float64(corpusSize),
		float64(len(leftCols)+len(rightCols)),
		ColMutualInformation,
	)
	miCol, err := mi.Evaluate(ans, sess.Env())
	if err != nil {
		return nil, merror.InternalError{Msg: err.Error()}
	}
	if err := ans.HConcat(miCol); err != nil {
		return nil, merror.InternalError{Msg: err.Error()}
	}
	ans = ans.Distinct([]string{ColCollocateLabel})
	for _, flt := range m.filters {
		ans, err = flt.Apply(ans)
		if err != nil {
			return nil, merror.InputError{Msg: fmt.Sprintf("failed to apply filter: %s", err)}
		}
	}
	ans.ResetIndex()
	log.Debug().
		Str("stage", "summarize").
		Int("matches", t.Len()).
		Int("collocates", ans.Len()).
		Msg("calculated collocations")
	return ans, nil
}

func (v *collocationsVariant) selectColumns(m *Manager, t *table.Table, sess *session.Session) (*table.Table, error) {
	cols := make([]string, 0, len(collocationColumns))
	for _, c := range collocationColumns {
		if t.Has(c) {
			cols = append(cols, c)
		}
	}
	return t.Select(cols)
}
