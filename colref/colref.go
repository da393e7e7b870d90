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

// Package colref decodes the naming conventions of result table
// columns (coq_*, db_*, func_*, coquery_invisible_*, statistics_*).
package colref

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	PrefixFeature   = "coq_"
	PrefixExternal  = "db_"
	PrefixFunction  = "func_"
	PrefixInternal  = "coquery_invisible"
	PrefixStats     = "statistics_"
	PrefixContext   = "coq_context"
	PrefixGTest     = "statistics_g_test_"
	ColQueryString  = "coquery_query_string"
	ColDummy        = "coquery_dummy"
	ColCorpusID     = "coquery_invisible_corpus_id"
	ColNumTokens    = "coquery_invisible_number_of_tokens"
	ColOriginID     = "coquery_invisible_origin_id"
	ColRowID        = "coquery_invisible_row_id"
	ColFrequency    = "statistics_frequency"
	ColColumnTotal  = "statistics_column_total"
	ColContextLeft  = "coq_context_left"
	ColContextRight = "coq_context_right"
	ColContextStr   = "coq_context_string"
	ColContextLC    = "coq_context_lc"
	ColContextRC    = "coq_context_rc"
	FeatureQueryTok = "coquery_query_token"
)

// Kind classifies a column by its name
type Kind int

const (
	KindOther Kind = iota
	KindFeature
	KindExternal
	KindFunction
	KindInternal
	KindStatistics
	KindContext
)

func (k Kind) String() string {
	switch k {
	case KindFeature:
		return "feature"
	case KindExternal:
		return "external"
	case KindFunction:
		return "function"
	case KindInternal:
		return "internal"
	case KindStatistics:
		return "statistics"
	case KindContext:
		return "context"
	default:
		return "other"
	}
}

var (
	funcGroupSuffix = regexp.MustCompile(`^(.*)\((.*)\)$`)
)

// Ref is a decoded column name
type Ref struct {
	Raw  string
	Kind Kind

	// Feature is a resource feature name (e.g. `word_label`)
	// for feature and external columns. For context columns,
	// it contains the part after `coq_` (e.g. `context_lc1`).
	Feature string

	// Database is set for external (`db_*`) columns
	Database string

	// Position is a 1-based query token position, zero if
	// the column name has no positional suffix
	Position int

	// FuncID is the function id (without a group label suffix)
	FuncID string

	// GroupLabel is the content of a trailing `(...)` suffix of
	// a function column (e.g. `match 1`)
	GroupLabel string
}

func (r Ref) String() string {
	return r.Raw
}

func (r Ref) IsFeature() bool {
	return r.Kind == KindFeature || r.Kind == KindExternal
}

func splitPosition(s string) (string, int) {
	base, num, found := cutLast(s, "_")
	if !found {
		return s, 0
	}
	pos, err := strconv.Atoi(num)
	if err != nil || pos <= 0 {
		return s, 0
	}
	return base, pos
}

func cutLast(s, sep string) (before, after string, found bool) {
	i := strings.LastIndex(s, sep)
	if i < 0 {
		return s, "", false
	}
	return s[:i], s[i+len(sep):], true
}

// Parse decodes a column name. Names not following any known
// convention produce a Ref of KindOther. Malformed external
// column names (missing `_coq_` part) produce an error.
func Parse(name string) (Ref, error) {
	ans := Ref{Raw: name}
	switch {
	case strings.HasPrefix(name, PrefixInternal):
		ans.Kind = KindInternal

	case strings.HasPrefix(name, PrefixContext):
		ans.Kind = KindContext
		ans.Feature = strings.TrimPrefix(name, PrefixFeature)

	case strings.HasPrefix(name, PrefixFeature):
		ans.Kind = KindFeature
		ans.Feature, ans.Position = splitPosition(strings.TrimPrefix(name, PrefixFeature))

	case strings.HasPrefix(name, PrefixExternal):
		ans.Kind = KindExternal
		rest := strings.TrimPrefix(name, PrefixExternal)
		db, feat, found := cutLast(rest, "_"+PrefixFeature)
		if !found || db == "" || feat == "" {
			return ans, fmt.Errorf("malformed external column name `%s`", name)
		}
		ans.Database = db
		ans.Feature, ans.Position = splitPosition(feat)

	case strings.HasPrefix(name, PrefixFunction):
		ans.Kind = KindFunction
		if m := funcGroupSuffix.FindStringSubmatch(name); len(m) > 0 {
			ans.FuncID = m[1]
			ans.GroupLabel = m[2]

		} else {
			ans.FuncID = name
		}

	case strings.HasPrefix(name, PrefixStats):
		ans.Kind = KindStatistics
	}
	return ans, nil
}

// MustParse is like Parse but it ignores errors (a malformed
// name is returned as KindOther).
func MustParse(name string) Ref {
	ans, err := Parse(name)
	if err != nil {
		return Ref{Raw: name}
	}
	return ans
}

// FeatureColumn creates a column name for a resource feature and a query
// token position. Position zero produces a name without a suffix.
func FeatureColumn(feature string, position int) string {
	if position <= 0 {
		return PrefixFeature + feature
	}
	return fmt.Sprintf("%s%s_%d", PrefixFeature, feature, position)
}

// ExternalColumn creates a name of a column imported via an
// external table link.
func ExternalColumn(database, feature string, position int) string {
	return PrefixExternal + database + "_" + FeatureColumn(feature, position)
}

// IsInternal tests for bookkeeping columns never shown to a user
func IsInternal(name string) bool {
	return strings.HasPrefix(name, PrefixInternal)
}

func IsFunction(name string) bool {
	return strings.HasPrefix(name, PrefixFunction)
}

func IsGTest(name string) bool {
	return strings.HasPrefix(name, PrefixGTest)
}

func LeftContextColumn(i int) string {
	return fmt.Sprintf("%s%d", ColContextLC, i)
}

func RightContextColumn(i int) string {
	return fmt.Sprintf("%s%d", ColContextRC, i)
}
