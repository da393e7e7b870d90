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

// Package managers implements the result processing pipeline
// and its aggregation variants.
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
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

// Filter is a row filter applicable to a result table
type Filter interface {
	Apply(t *table.Table) (*table.Table, error)
}

// contextCacheEntry keeps context columns of a query result. Rows
// of cols are addressed by the raw row labels stored in rows.
type contextCacheEntry struct {
	left  int
	right int
	rows  map[string]int
	cols  *table.Table
}

// take returns cached context rows matching the provided raw
// row labels, or false if some of the rows is not cached
func (e contextCacheEntry) take(labels []string) (*table.Table, bool) {
	idx := make([]int, len(labels))
	for i, lab := range labels {
		pos, ok := e.rows[lab]
		if !ok {
			return nil, false
		}
		idx[i] = pos
	}
	return e.cols.Take(idx), true
}

// FilterStatistics contains row counts before and after filtering.
// Negative overall values mean that no filtering took place.
type FilterStatistics struct {
	PreFilter       int            `json:"preFilter"`
	PostFilter      int            `json:"postFilter"`
	PreGroupFilter  map[string]int `json:"preGroupFilter"`
	PostGroupFilter map[string]int `json:"postGroupFilter"`
}

// Manager runs the result processing pipeline. Its state (sorters,
// filters, hidden columns, context cache) persists across repeated
// processing of the same query result. Calls to Process, Arrange
// and CellContent are serialized.
type Manager struct {
	mu sync.Mutex

	mode    Mode
	variant variant

	// function lists may be replaced only while processing
	// or via the Set*Functions methods
	GroupFunctions          *functions.List
	ManagerSummaryFunctions *functions.List
	UserSummaryFunctions    *functions.List

	filters      []Filter
	groupFilters []Filter
	hidden       map[string]bool
	sorters      []*Sorter

	contextCache map[options.ContextMode]contextCacheEntry
	lastQueryID  string

	lastResult        *table.Table
	lastResultQueryID string

	lenPreFilter       int
	lenPostFilter      int
	lenPreGroupFilter  map[string]int
	lenPostGroupFilter map[string]int

	dropOnNA        bool
	stopwordsFailed bool
	exceptions      []functions.Exception

	fnMu       sync.RWMutex
	functions  []functions.Function
	configured []functions.Function
}

func (m *Manager) Mode() Mode {
	return m.mode
}

func (m *Manager) SetFilters(filters []Filter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.filters = filters
}

func (m *Manager) SetGroupFilters(filters []Filter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.groupFilters = filters
}

func (m *Manager) SetSummaryFunctions(fns []functions.Function) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UserSummaryFunctions.SetList(fns)
	m.snapshotConfigured()
}

func (m *Manager) SetGroupFunctions(fns []functions.Function) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GroupFunctions.SetList(fns)
	m.snapshotConfigured()
}

func (m *Manager) HideColumn(col string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hidden[col] = true
}

func (m *Manager) ShowColumn(col string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.hidden, col)
}

func (m *Manager) IsHiddenColumn(col string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hidden[col]
}

func (m *Manager) ResetHiddenColumns() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hidden = make(map[string]bool)
}

func (m *Manager) ResetContextCache() {
	m.contextCache = make(map[options.ContextMode]contextCacheEntry)
}

func (m *Manager) resetFilterStatistics() {
	m.lenPreFilter = -1
	m.lenPostFilter = -1
}

func (m *Manager) resetGroupFilterStatistics() {
	m.lenPreGroupFilter = make(map[string]int)
	m.lenPostGroupFilter = make(map[string]int)
}

func (m *Manager) FilterStatistics() FilterStatistics {
	m.mu.Lock()
	defer m.mu.Unlock()
	ans := FilterStatistics{
		PreFilter:       m.lenPreFilter,
		PostFilter:      m.lenPostFilter,
		PreGroupFilter:  make(map[string]int, len(m.lenPreGroupFilter)),
		PostGroupFilter: make(map[string]int, len(m.lenPostGroupFilter)),
	}
	for k, v := range m.lenPreGroupFilter {
		ans.PreGroupFilter[k] = v
	}
	for k, v := range m.lenPostGroupFilter {
		ans.PostGroupFilter[k] = v
	}
	return ans
}

// StopwordsFailed tells whether the last stopword filtering
// could not find any word column
func (m *Manager) StopwordsFailed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopwordsFailed
}

// DropOnNA returns the drop-on-NA flag accumulated by all the
// functions applied during the last Process call
func (m *Manager) DropOnNA() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dropOnNA
}

// Exceptions returns function failures of the last Process call
func (m *Manager) Exceptions() []functions.Exception {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.exceptions
}

// GetFunction finds a function which took part in the last
// processing (or which is currently configured). It reads snapshots
// of the function lists so it can be called concurrently with Process.
func (m *Manager) GetFunction(id string) functions.Function {
	m.fnMu.RLock()
	defer m.fnMu.RUnlock()
	for _, items := range [][]functions.Function{m.functions, m.configured} {
		for _, fn := range items {
			if fn.ID() == id {
				return fn
			}
		}
	}
	return nil
}

// snapshotConfigured copies the current group and summary function
// lists for GetFunction. Must be called with m.mu held each time
// one of the lists is replaced or applied.
func (m *Manager) snapshotConfigured() {
	fns := make([]functions.Function, 0, 10)
	for _, fl := range []*functions.List{
		m.GroupFunctions, m.ManagerSummaryFunctions, m.UserSummaryFunctions} {
		fns = append(fns, fl.List()...)
	}
	m.fnMu.Lock()
	m.configured = fns
	m.fnMu.Unlock()
}

// VisibleColumns returns columns which are neither hidden
// nor internal
func (m *Manager) VisibleColumns(t *table.Table) []string {
	ans := make([]string, 0, t.NumColumns())
	for _, c := range t.Columns() {
		if m.hidden[c] || colref.IsInternal(c) || c == colref.ColDummy {
			continue
		}
		ans = append(ans, c)
	}
	return ans
}

// ----------------------- pipeline stages ------------------

type resolver struct {
	m    *Manager
	sess *session.Session
}

func (r resolver) GetFunction(id string) functions.Function {
	if r.sess.ColumnFunctions != nil {
		if fn := r.sess.ColumnFunctions.FindFunction(id); fn != nil {
			return fn
		}
	}
	return r.m.GetFunction(id)
}

// prepareSession creates a shallow copy of the session with
// options adjusted by the manager variant
func (m *Manager) prepareSession(sess *session.Session) *session.Session {
	ans := *sess
	opts := sess.Options
	if opts == nil {
		opts = options.Default()
	}
	ans.Options = m.variant.pipelineOptions(opts)
	ans.Functions = resolver{m: m, sess: sess}
	return &ans
}

func (m *Manager) applyFunctions(fl *functions.List, t *table.Table, sess *session.Session) *table.Table {
	if fl == nil || fl.Len() == 0 {
		return t
	}
	m.snapshotConfigured()
	t, m.dropOnNA = fl.Apply(t, sess.Env(), m.dropOnNA)
	m.exceptions = append(m.exceptions, fl.Exceptions()...)
	m.snapshotConfigured()
	return t
}

func (m *Manager) filterStopwords(t *table.Table, sess *session.Session) *table.Table {
	m.stopwordsFailed = false
	if !sess.Options.HasStopwords() || sess.Resource == nil {
		return t
	}
	prefix := colref.FeatureColumn(sess.Resource.WordFeature(), 0) + "_"
	columns := make([]*table.Series, 0, 3)
	for _, c := range t.Columns() {
		if strings.HasPrefix(c, prefix) {
			columns = append(columns, t.Col(c))
		}
	}
	if len(columns) == 0 {
		m.stopwordsFailed = true
		log.Warn().
			Str("prefix", prefix).
			Msg("no word column found, stopwords not applied")
		return t
	}
	stopwords := sess.Options.StopwordSet()
	ans := t.Filter(func(i int) bool {
		for _, c := range columns {
			if !c.IsNA(i) && stopwords.Contains(c.Str(i)) {
				return false
			}
		}
		return true
	})
	log.Debug().
		Str("stage", "filterStopwords").
		Int("rowsBefore", t.Len()).
		Int("rows", ans.Len()).
		Msg("applied stopwords")
	return ans
}

// rawRowLabels returns labels identifying rows of the raw
// query result (see markRawRows)
func rawRowLabels(t *table.Table) []string {
	ans := make([]string, t.Len())
	for i := range ans {
		ans[i] = t.Label(i)
	}
	return ans
}

// markRawRows labels each row by its position in the raw query result
func markRawRows(t *table.Table) {
	for i := 0; i < t.Len(); i++ {
		t.SetLabel(i, strconv.Itoa(i))
	}
}

// cachedContext returns cached context columns aligned with rows
// of t. False is returned if the cache is missing, was created with
// different window widths or does not contain some of the rows.
func (m *Manager) cachedContext(opts *options.Pipeline, t *table.Table) (*table.Table, bool) {
	entry, ok := m.contextCache[opts.ContextMode]
	if !ok || entry.cols == nil ||
		entry.left != opts.ContextLeft || entry.right != opts.ContextRight {
		return nil, false
	}
	return entry.take(rawRowLabels(t))
}

// defaultMainFunctions returns the context function matching
// the context mode unless the context cache can be used
func (m *Manager) defaultMainFunctions(t *table.Table, sess *session.Session) []functions.Function {
	opts := sess.Options
	if !opts.HasContext() {
		return []functions.Function{}
	}
	if _, ok := m.cachedContext(opts, t); ok {
		return []functions.Function{}
	}
	switch opts.ContextMode {
	case options.ContextColumns:
		return []functions.Function{functions.NewContextColumns()}
	case options.ContextKWIC:
		return []functions.Function{functions.NewContextKWIC()}
	case options.ContextString:
		return []functions.Function{functions.NewContextString()}
	}
	return []functions.Function{}
}

func (m *Manager) mutate(t *table.Table, sess *session.Session) (*table.Table, error) {
	if t.Len() == 0 {
		return t, nil
	}
	opts := sess.Options
	if m.lastQueryID != sess.QueryID {
		m.ResetContextCache()
		m.lastQueryID = sess.QueryID
	}
	var cached *table.Table
	useCache := false
	if opts.HasContext() {
		cached, useCache = m.cachedContext(opts, t)
	}
	rawRows := rawRowLabels(t)
	mainFns := functions.NewList(m.variant.mainFunctions(m, t, sess)...)
	t = m.applyFunctions(mainFns, t, sess)

	if opts.HasContext() {
		if useCache {
			if err := t.HConcat(cached); err != nil {
				return nil, merror.InternalError{Msg: fmt.Sprintf("failed to use cached context: %s", err)}
			}

		} else {
			ctxCols := make([]string, 0, opts.ContextLeft+opts.ContextRight)
			for _, c := range t.Columns() {
				if strings.HasPrefix(c, colref.PrefixContext) {
					ctxCols = append(ctxCols, c)
				}
			}
			if len(ctxCols) > 0 {
				ctx, err := t.Select(ctxCols)
				if err != nil {
					return nil, merror.InternalError{Msg: err.Error()}
				}
				rows := make(map[string]int, len(rawRows))
				for i, lab := range rawRows {
					rows[lab] = i
				}
				m.contextCache[opts.ContextMode] = contextCacheEntry{
					left:  opts.ContextLeft,
					right: opts.ContextRight,
					rows:  rows,
					cols:  ctx.Copy(),
				}
			}
		}
	}
	t = m.applyFunctions(sess.ColumnFunctions, t, sess)
	t.ResetIndex()
	log.Debug().Str("stage", "mutate").Int("rows", t.Len()).Msg("applied functions")
	return t, nil
}

// GroupColumns returns existing columns of the configured
// group-by features
func (m *Manager) GroupColumns(t *table.Table, sess *session.Session) []string {
	ans := make([]string, 0, len(sess.Options.GroupColumns))
	for _, feat := range sess.Options.GroupColumns {
		for _, c := range sess.FormatResourceFeature(feat) {
			if t.Has(c) {
				ans = append(ans, c)
			}
		}
	}
	return ans
}

func groupLabel(g *table.Group) string {
	items := make([]string, len(g.Values))
	for i, v := range g.Values {
		if v == nil {
			items[i] = "NA"

		} else {
			items[i] = fmt.Sprint(v)
		}
	}
	return strings.Join(items, ", ")
}

func concatOrEmpty(orig *table.Table, parts []*table.Table) *table.Table {
	if len(parts) == 0 {
		return orig.Take([]int{})
	}
	return table.Concat(parts...)
}

func (m *Manager) filterGroups(t *table.Table, sess *session.Session) (*table.Table, error) {
	columns := m.GroupColumns(t, sess)
	if t.Len() == 0 || len(columns) == 0 || len(m.groupFilters) == 0 {
		return t, nil
	}
	groups, err := t.GroupBy(columns)
	if err != nil {
		return nil, merror.InternalError{Msg: err.Error()}
	}
	parts := make([]*table.Table, 0, len(groups))
	for _, g := range groups {
		sub := t.Take(g.Rows)
		sub.ResetIndex()
		label := groupLabel(g)
		m.lenPreGroupFilter[label] = sub.Len()
		for _, flt := range m.groupFilters {
			sub, err = flt.Apply(sub)
			if err != nil {
				return nil, merror.InputError{Msg: fmt.Sprintf("failed to apply group filter: %s", err)}
			}
		}
		m.lenPostGroupFilter[label] = sub.Len()
		parts = append(parts, sub)
	}
	ans := concatOrEmpty(t, parts)
	ans.ResetIndex()
	log.Debug().Str("stage", "filterGroups").Int("rows", ans.Len()).Msg("filtered groups")
	return ans, nil
}

func (m *Manager) mutateGroups(t *table.Table, sess *session.Session) (*table.Table, error) {
	columns := m.GroupColumns(t, sess)
	if t.Len() == 0 || len(columns) == 0 || m.GroupFunctions.Len() == 0 {
		return t, nil
	}
	groups, err := t.GroupBy(columns)
	if err != nil {
		return nil, merror.InternalError{Msg: err.Error()}
	}
	parts := make([]*table.Table, 0, len(groups))
	for _, g := range groups {
		sub := t.Take(g.Rows)
		parts = append(parts, m.applyFunctions(m.GroupFunctions, sub, sess))
	}
	ans := concatOrEmpty(t, parts)
	log.Debug().Str("stage", "mutateGroups").Int("rows", ans.Len()).Msg("applied group functions")
	return ans, nil
}

func (m *Manager) defaultFilter(t *table.Table, sess *session.Session) (*table.Table, error) {
	if t.Len() == 0 || len(m.filters) == 0 {
		return t, nil
	}
	m.lenPreFilter = t.Len()
	var err error
	for _, flt := range m.filters {
		t, err = flt.Apply(t)
		if err != nil {
			return nil, merror.InputError{Msg: fmt.Sprintf("failed to apply filter: %s", err)}
		}
	}
	t.ResetIndex()
	m.lenPostFilter = t.Len()
	log.Debug().
		Str("stage", "filter").
		Int("rowsBefore", m.lenPreFilter).
		Int("rows", m.lenPostFilter).
		Msg("applied filters")
	return t, nil
}

func (m *Manager) defaultSummarize(t *table.Table, sess *session.Session) (*table.Table, error) {
	visCols := m.VisibleColumns(t)
	t = m.applyFunctions(m.ManagerSummaryFunctions, t, sess)
	if !m.variant.ignoreUserFunctions() {
		t = m.applyFunctions(m.UserSummaryFunctions, t, sess)
	}
	if sess.Options.DropOnNA {
		cols := make([]string, 0, len(visCols))
		for _, c := range visCols {
			if strings.HasPrefix(c, colref.PrefixFeature) {
				cols = append(cols, c)
			}
		}
		if len(cols) > 0 {
			t = t.DropAllNA(cols)
		}
	}
	return t, nil
}

// distinct removes duplicate rows with respect to visible columns
func (m *Manager) distinct(t *table.Table) *table.Table {
	return t.Distinct(m.VisibleColumns(t))
}

func (m *Manager) isLexicalColumn(ref colref.Ref, sess *session.Session) (bool, error) {
	if ref.Kind == colref.KindExternal {
		if sess.Resources == nil {
			return false, merror.ConfigurationError{
				Msg: fmt.Sprintf("cannot resolve column %s: no external resources available", ref.Raw)}
		}
		res, ok := sess.Resources.ResourceOfDatabase(ref.Database)
		if !ok {
			return false, merror.ConfigurationError{
				Msg: fmt.Sprintf("cannot resolve column %s: unknown database %s", ref.Raw, ref.Database)}
		}
		return res.IsLexical(ref.Feature), nil
	}
	if sess.Resource == nil {
		return false, merror.ConfigurationError{Msg: "no resource available for column selection"}
	}
	return sess.Resource.IsLexical(ref.Feature), nil
}

// defaultSelect orders columns: lexical features (in the preferred
// order of the resource), corpus features, other columns, functions
func (m *Manager) defaultSelect(t *table.Table, sess *session.Session) (*table.Table, error) {
	lexical := make([]colref.Ref, 0, t.NumColumns())
	corpusFeats := make([]string, 0, t.NumColumns())
	others := make([]string, 0, t.NumColumns())
	funcs := make([]string, 0, t.NumColumns())
	for _, c := range t.Columns() {
		if c == colref.ColDummy {
			continue
		}
		ref, err := colref.Parse(c)
		if err != nil {
			return nil, merror.ConfigurationError{Msg: err.Error()}
		}
		switch ref.Kind {
		case colref.KindFunction:
			funcs = append(funcs, c)
		case colref.KindFeature, colref.KindExternal, colref.KindContext:
			isLex, err := m.isLexicalColumn(ref, sess)
			if err != nil {
				return nil, err
			}
			if isLex {
				lexical = append(lexical, ref)

			} else {
				corpusFeats = append(corpusFeats, c)
			}
		default:
			others = append(others, c)
		}
	}
	var order []string
	if sess.Resource != nil {
		order = sess.Resource.PreferredOutputOrder()
	}
	for i := len(order) - 1; i >= 0; i-- {
		matching := make([]colref.Ref, 0, 3)
		rest := make([]colref.Ref, 0, len(lexical))
		for _, ref := range lexical {
			if ref.Feature == order[i] {
				matching = append(matching, ref)

			} else {
				rest = append(rest, ref)
			}
		}
		sort.SliceStable(matching, func(a, b int) bool {
			return matching[a].Position < matching[b].Position
		})
		lexical = append(matching, rest...)
	}
	ans := make([]string, 0, t.NumColumns())
	for _, ref := range lexical {
		ans = append(ans, ref.Raw)
	}
	ans = append(ans, corpusFeats...)
	ans = append(ans, others...)
	ans = append(ans, funcs...)
	return t.Select(ans)
}

func (m *Manager) registerFunctions(sess *session.Session) {
	fns := make([]functions.Function, 0, 10)
	if sess.ColumnFunctions != nil {
		fns = append(fns, sess.ColumnFunctions.List()...)
	}
	fns = append(fns, m.GroupFunctions.List()...)
	fns = append(fns, m.ManagerSummaryFunctions.List()...)
	fns = append(fns, m.UserSummaryFunctions.List()...)
	m.fnMu.Lock()
	m.functions = fns
	m.fnMu.Unlock()
	m.snapshotConfigured()
}

// Process runs the whole pipeline on a raw query result. The input
// table is not modified. With recalculate set to false and a result
// of the same query available, the previous result is only
// re-arranged.
func (m *Manager) Process(t *table.Table, sess *session.Session, recalculate bool) (*table.Table, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !recalculate && m.lastResult != nil && m.lastResultQueryID == sess.QueryID {
		log.Debug().Str("queryId", sess.QueryID).Msg("reusing previous result")
		return m.arrange(m.lastResult.Copy()), nil
	}
	sess = m.prepareSession(sess)
	log.Debug().
		Str("mode", string(m.mode)).
		Str("queryId", sess.QueryID).
		Int("rows", t.Len()).
		Msg("processing query result")

	t = t.Copy()
	markRawRows(t)
	m.dropOnNA = true
	m.exceptions = []functions.Exception{}
	m.resetFilterStatistics()
	m.resetGroupFilterStatistics()

	t = m.filterStopwords(t, sess)
	t.DropIf(colref.IsFunction)

	var err error
	t, err = m.mutate(t, sess)
	if err != nil {
		return nil, err
	}
	if sess.Options.HasGroups() {
		if t, err = m.filterGroups(t, sess); err != nil {
			return nil, err
		}
		t = m.arrangeGroups(t, sess)
		if t, err = m.mutateGroups(t, sess); err != nil {
			return nil, err
		}
	}
	if t, err = m.variant.filter(m, t, sess); err != nil {
		return nil, err
	}
	if t, err = m.variant.summarize(m, t, sess); err != nil {
		return nil, err
	}
	if t, err = m.variant.selectColumns(m, t, sess); err != nil {
		return nil, err
	}
	m.registerFunctions(sess)
	m.lastResult = t.Copy()
	m.lastResultQueryID = sess.QueryID
	log.Debug().
		Str("mode", string(m.mode)).
		Int("rows", t.Len()).
		Int("failedFunctions", len(m.exceptions)).
		Msg("query result processed")
	return t, nil
}

// LastResult returns a copy of the most recent Process result along
// with its query ID. Nil is returned if nothing has been processed yet.
func (m *Manager) LastResult() (*table.Table, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lastResult == nil {
		return nil, ""
	}
	return m.lastResult.Copy(), m.lastResultQueryID
}

func newManager(mode Mode, v variant) *Manager {
	ans := &Manager{
		mode:                    mode,
		variant:                 v,
		GroupFunctions:          functions.NewList(),
		ManagerSummaryFunctions: functions.NewList(),
		UserSummaryFunctions:    functions.NewList(),
		hidden:                  make(map[string]bool),
		dropOnNA:                true,
	}
	ans.ResetContextCache()
	ans.resetFilterStatistics()
	ans.resetGroupFilterStatistics()
	return ans
}
