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

package worker

import (
	"context"
	"coqpipe/filters"
	"coqpipe/functions"
	"coqpipe/managers"
	"coqpipe/merror"
	"coqpipe/rdb"
	"coqpipe/results"
	"coqpipe/session"
	"fmt"

	"github.com/rs/zerolog/log"
)

func (w *Worker) newSession(args rdb.SessionArgs) (*session.Session, error) {
	res, ok := w.resources.Get(args.Resource)
	if !ok {
		return nil, merror.InputError{Msg: fmt.Sprintf("unknown resource %s", args.Resource)}
	}
	opts := w.defaults.Merge(args.Options)
	if err := opts.ValidateAndDefaults("options"); err != nil {
		return nil, merror.InputError{Msg: err.Error()}
	}
	colFns, err := functions.NewListFromSpecs(args.ColumnFunctions)
	if err != nil {
		return nil, merror.InputError{Msg: fmt.Sprintf("invalid column function: %s", err)}
	}
	if w.currJobLog != nil {
		w.currJobLog.Resource = args.Resource
	}
	return &session.Session{
		Ctx:             context.Background(),
		QueryID:         args.QueryID,
		QueryLabel:      args.QueryLabel,
		Resource:        res,
		Resources:       w.resources,
		ColumnFunctions: colFns,
		MaxTokenCount:   args.MaxTokenCount,
		NumberLabels:    args.NumberLabels,
		Aliases:         args.Aliases,
		Options:         opts,
	}, nil
}

func (w *Worker) getManager(mode, resource string) (*managers.Manager, error) {
	m, err := managers.ParseMode(mode)
	if err != nil {
		return nil, merror.InputError{Msg: err.Error()}
	}
	return w.managers.Get(m, resource), nil
}

func validFilters(items []*filters.Filter) ([]managers.Filter, error) {
	ans := make([]managers.Filter, len(items))
	for i, f := range items {
		if err := f.Validate(); err != nil {
			return nil, merror.InputError{Msg: fmt.Sprintf("invalid filter %s: %s", f, err)}
		}
		ans[i] = f
	}
	return ans, nil
}

// configureManager applies user settings to a manager before
// a table is processed
func configureManager(m *managers.Manager, args rdb.ManagerArgs) error {
	flt, err := validFilters(args.Filters)
	if err != nil {
		return err
	}
	groupFlt, err := validFilters(args.GroupFilters)
	if err != nil {
		return err
	}
	groupFns, err := functions.NewListFromSpecs(args.GroupFunctions)
	if err != nil {
		return merror.InputError{Msg: fmt.Sprintf("invalid group function: %s", err)}
	}
	summaryFns, err := functions.NewListFromSpecs(args.SummaryFunctions)
	if err != nil {
		return merror.InputError{Msg: fmt.Sprintf("invalid summary function: %s", err)}
	}
	m.ResetHiddenColumns()
	for _, c := range args.HiddenColumns {
		m.HideColumn(c)
	}
	m.SetFilters(flt)
	m.SetGroupFilters(groupFlt)
	m.SetGroupFunctions(groupFns.List())
	m.SetSummaryFunctions(summaryFns.List())
	if args.Sorters != nil {
		m.ResetSorters()
		for _, s := range args.Sorters {
			m.AddSorter(s.Column, s.Ascending, s.Reverse)
		}
	}
	return nil
}

func headersOf(sess *session.Session, columns []string, ignoreAlias bool) map[string]string {
	ans := make(map[string]string, len(columns))
	for _, c := range columns {
		ans[c] = sess.TranslateHeader(c, ignoreAlias)
	}
	return ans
}

func (w *Worker) process(args rdb.ProcessArgs) *rdb.ProcessResult {
	ans := &rdb.ProcessResult{Mode: args.Manager.Mode}
	sess, err := w.newSession(args.Session)
	if err != nil {
		ans.Error = err
		return ans
	}
	m, err := w.getManager(args.Manager.Mode, args.Session.Resource)
	if err != nil {
		ans.Error = err
		return ans
	}
	ans.Mode = string(m.Mode())
	if err := configureManager(m, args.Manager); err != nil {
		ans.Error = err
		return ans
	}
	raw, err := args.Table.ToTable()
	if err != nil {
		ans.Error = merror.InputError{Msg: fmt.Sprintf("invalid query result table: %s", err)}
		return ans
	}
	processed, err := m.Process(raw, sess, args.Recalculate)
	if err != nil {
		ans.Error = err
		return ans
	}
	sess.Functions = m
	ans.Table = results.NewTableData(processed)
	ans.Visible = m.VisibleColumns(processed)
	ans.Headers = headersOf(sess, processed.Columns(), false)
	ans.Exceptions = m.Exceptions()
	ans.FilterStatistics = m.FilterStatistics()
	ans.StopwordsFailed = m.StopwordsFailed()
	ans.Sorters = m.Sorters()
	for _, exc := range ans.Exceptions {
		log.Warn().
			Str("function", exc.Label).
			Str("stack", exc.Stack).
			Err(exc.Err).
			Msg("function failed during processing")
	}
	return ans
}

// arrange sorts the last result of the same query without
// recalculating it. In case the worker has not processed the query
// yet, the provided table is processed from scratch.
func (w *Worker) arrange(args rdb.ProcessArgs) *rdb.ProcessResult {
	args.Recalculate = false
	return w.process(args)
}

func (w *Worker) cellContent(args rdb.CellContentArgs) *rdb.CellContentResult {
	ans := &rdb.CellContentResult{}
	if _, ok := w.resources.Get(args.Resource); !ok {
		ans.Error = merror.InputError{Msg: fmt.Sprintf("unknown resource %s", args.Resource)}
		return ans
	}
	if w.currJobLog != nil {
		w.currJobLog.Resource = args.Resource
	}
	m := w.managers.Get(managers.ModeContrasts, args.Resource)
	last, queryID := m.LastResult()
	if last == nil || queryID != args.QueryID {
		ans.Error = merror.InputError{
			Msg: fmt.Sprintf("no contrast matrix of query %s available", args.QueryID)}
		return ans
	}
	ans.Cell, ans.Error = m.CellContent(last, args.Row, args.Column)
	return ans
}

func (w *Worker) translateHeaders(args rdb.TranslateHeadersArgs) *rdb.HeadersResult {
	ans := &rdb.HeadersResult{}
	sess, err := w.newSession(args.Session)
	if err != nil {
		ans.Error = err
		return ans
	}
	m, err := w.getManager(args.Mode, args.Session.Resource)
	if err != nil {
		ans.Error = err
		return ans
	}
	sess.Functions = m
	ans.Headers = headersOf(sess, args.Headers, args.IgnoreAlias)
	return ans
}
