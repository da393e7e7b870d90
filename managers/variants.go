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
	"coqpipe/functions"
	"coqpipe/options"
	"coqpipe/session"
	"coqpipe/table"
)

// variant supplies the stages which differ among aggregation
// modes. Each hook receives the manager so it can reuse
// the default stage implementations.
type variant interface {
	pipelineOptions(opts *options.Pipeline) *options.Pipeline
	mainFunctions(m *Manager, t *table.Table, sess *session.Session) []functions.Function
	filter(m *Manager, t *table.Table, sess *session.Session) (*table.Table, error)
	summarize(m *Manager, t *table.Table, sess *session.Session) (*table.Table, error)
	selectColumns(m *Manager, t *table.Table, sess *session.Session) (*table.Table, error)
	ignoreUserFunctions() bool
}

// baseVariant produces a plain table of matches
type baseVariant struct{}

func (v *baseVariant) pipelineOptions(opts *options.Pipeline) *options.Pipeline {
	return opts
}

func (v *baseVariant) mainFunctions(m *Manager, t *table.Table, sess *session.Session) []functions.Function {
	return m.defaultMainFunctions(t, sess)
}

func (v *baseVariant) filter(m *Manager, t *table.Table, sess *session.Session) (*table.Table, error) {
	return m.defaultFilter(t, sess)
}

func (v *baseVariant) summarize(m *Manager, t *table.Table, sess *session.Session) (*table.Table, error) {
	return m.defaultSummarize(t, sess)
}

func (v *baseVariant) selectColumns(m *Manager, t *table.Table, sess *session.Session) (*table.Table, error) {
	return m.defaultSelect(t, sess)
}

func (v *baseVariant) ignoreUserFunctions() bool {
	return false
}

// ------

// typesVariant lists distinct combinations of visible values
type typesVariant struct {
	baseVariant
}

func (v *typesVariant) summarize(m *Manager, t *table.Table, sess *session.Session) (*table.Table, error) {
	t, err := m.defaultSummarize(t, sess)
	if err != nil {
		return nil, err
	}
	return m.distinct(t), nil
}

// ------

// frequencyVariant lists distinct combinations of visible values
// together with their frequencies
type frequencyVariant struct {
	baseVariant
	freqID string
}

// installFreq sets a frequency function over visible columns as
// the only manager summary function (unless the user already has
// the same function)
func (v *frequencyVariant) installFreq(m *Manager, t *table.Table) {
	freq := functions.NewFreq(m.VisibleColumns(t), "")
	v.freqID = freq.ID()
	if m.UserSummaryFunctions.HasFunction(freq) {
		m.ManagerSummaryFunctions = functions.NewList()
		return
	}
	m.ManagerSummaryFunctions = functions.NewList(freq)
}

func (v *frequencyVariant) summarize(m *Manager, t *table.Table, sess *session.Session) (*table.Table, error) {
	v.installFreq(m, t)
	t, err := m.defaultSummarize(t, sess)
	if err != nil {
		return nil, err
	}
	return m.distinct(t), nil
}
