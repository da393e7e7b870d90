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

// Package session contains per-query data shared by the result
// pipeline and the presentation of its output.
package session

import (
	"context"
	"coqpipe/colref"
	"coqpipe/corpus"
	"coqpipe/functions"
	"coqpipe/options"
	"fmt"
	"strconv"
	"strings"
)

// FunctionResolver finds functions by their IDs (typically
// a manager which has processed the session data)
type FunctionResolver interface {
	GetFunction(id string) functions.Function
}

// Session describes a single query and its processing context
type Session struct {
	Ctx context.Context

	// QueryID identifies the raw query result. Managers reset
	// their caches once a different query ID appears.
	QueryID string

	QueryLabel string

	Resource corpus.Resource

	// Resources resolves external (db_*) columns
	Resources corpus.ResourceLookup

	// ColumnFunctions are user functions applied to individual rows
	ColumnFunctions *functions.List

	// MaxTokenCount is the maximum number of query tokens
	// produced by the query
	MaxTokenCount int

	// NumberLabels optionally replaces numeric token positions
	// in column labels (NumberLabels[0] is for position 1)
	NumberLabels []string

	// Aliases are user defined column names
	Aliases map[string]string

	Options *options.Pipeline

	Functions FunctionResolver
}

func (s *Session) Context() context.Context {
	if s.Ctx == nil {
		return context.Background()
	}
	return s.Ctx
}

// Env creates an environment for function evaluation
func (s *Session) Env() *functions.Env {
	return &functions.Env{
		Ctx:      s.Context(),
		Resource: s.Resource,
		Options:  s.Options,
		Headers:  s,
	}
}

// FormatResourceFeature returns all the column names a resource
// feature may have in a result table of the session
func (s *Session) FormatResourceFeature(feature string) []string {
	n := s.MaxTokenCount
	if n < 1 {
		n = 1
	}
	ans := make([]string, 0, n+1)
	for i := 1; i <= n; i++ {
		ans = append(ans, colref.FeatureColumn(feature, i))
	}
	return append(ans, colref.FeatureColumn(feature, 0))
}

func (s *Session) positionLabel(position int) string {
	if s.MaxTokenCount <= 1 || position <= 0 {
		return ""
	}
	if position <= len(s.NumberLabels) && s.NumberLabels[position-1] != "" {
		return s.NumberLabels[position-1]
	}
	return strconv.Itoa(position)
}

func (s *Session) contextWidths() (int, int) {
	if s.Options == nil {
		return 0, 0
	}
	return s.Options.ContextLeft, s.Options.ContextRight
}

func (s *Session) translateContext(header string) string {
	left, right := s.contextWidths()
	switch {
	case header == colref.ColContextLeft:
		return fmt.Sprintf("%s(%d)", colref.DisplayNames[header], left)
	case header == colref.ColContextRight:
		return fmt.Sprintf("%s(%d)", colref.DisplayNames[header], right)
	case header == colref.ColContextStr:
		return fmt.Sprintf("%s(%dL, %dR)", colref.DisplayNames[header], left, right)
	case strings.HasPrefix(header, colref.ColContextLC):
		return "L" + strings.TrimPrefix(header, colref.ColContextLC)
	case strings.HasPrefix(header, colref.ColContextRC):
		return "R" + strings.TrimPrefix(header, colref.ColContextRC)
	}
	return header
}

func (s *Session) translateFunction(ref colref.Ref) string {
	if s.Functions == nil {
		return ref.Raw
	}
	fn := s.Functions.GetFunction(ref.FuncID)
	if fn == nil {
		return ref.Raw
	}
	label := fn.Label(s.Env())
	if ref.GroupLabel != "" {
		return fmt.Sprintf("%s(%s)", label, ref.GroupLabel)
	}
	return label
}

func (s *Session) translateFeature(ref colref.Ref) string {
	resource := s.Resource
	var prefix string
	if ref.Kind == colref.KindExternal {
		if s.Resources == nil {
			return ref.Raw
		}
		var ok bool
		resource, ok = s.Resources.ResourceOfDatabase(ref.Database)
		if !ok {
			return ref.Raw
		}
		prefix = resource.Name() + "."
	}
	number := s.positionLabel(ref.Position)
	if ref.Feature == colref.FeatureQueryTok {
		return prefix + colref.DisplayNames[colref.FeatureQueryTok] + number
	}
	if resource != nil {
		if label, ok := resource.FeatureLabel(ref.Feature); ok {
			if resource.IsLexical(ref.Feature) {
				return prefix + label + number
			}
			return prefix + label
		}
	}
	if label, ok := colref.DisplayNames[ref.Feature]; ok {
		return prefix + label + number
	}
	return ref.Raw
}

// TranslateHeader returns a display name of a result column
func (s *Session) TranslateHeader(header string, ignoreAlias bool) string {
	if !ignoreAlias {
		if alias, ok := s.Aliases[header]; ok {
			return alias
		}
	}
	if header == colref.ColQueryString && s.QueryLabel != "" {
		return s.QueryLabel
	}
	if colref.IsInternal(header) {
		return header
	}
	if header == colref.ColFrequency {
		if s.QueryLabel != "" {
			return fmt.Sprintf("%s(%s)", colref.DisplayNames[header], s.QueryLabel)
		}
		return colref.DisplayNames[header]
	}
	if colref.IsGTest(header) {
		return fmt.Sprintf("G²('%s', y)", strings.TrimPrefix(header, colref.PrefixGTest))
	}
	if strings.HasPrefix(header, colref.PrefixContext) {
		return s.translateContext(header)
	}
	if label, ok := colref.DisplayNames[header]; ok {
		return label
	}
	ref, err := colref.Parse(header)
	if err != nil {
		return header
	}
	switch ref.Kind {
	case colref.KindFunction:
		return s.translateFunction(ref)
	case colref.KindFeature, colref.KindExternal:
		return s.translateFeature(ref)
	}
	return header
}
