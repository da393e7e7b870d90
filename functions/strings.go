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

package functions

import (
	"coqpipe/table"
	"fmt"
	"math"
	"regexp"
	"unicode/utf8"

	"github.com/kljensen/snowball"
)

const (
	NameStringExtract = "StringExtract"
	NameStringMatch   = "StringMatch"
	NameStringLength  = "StringLength"
	NameStem          = "Stem"

	dfltStemLanguage = "english"
)

// StringExtract returns the first capturing group (or the whole
// match if the pattern has no groups) of a regular expression
// applied to a string column. Non-matching rows are NA.
type StringExtract struct {
	base
	pattern *regexp.Regexp
}

func (f *StringExtract) Evaluate(t *table.Table, env *Env) (*table.Table, error) {
	src, err := f.column(t, 0)
	if err != nil {
		return nil, err
	}
	ans := table.NewEmptySeries(f.id, table.KindString, t.Len())
	for i := 0; i < t.Len(); i++ {
		if src.IsNA(i) {
			continue
		}
		m := f.pattern.FindStringSubmatch(src.Str(i))
		if len(m) == 0 {
			continue
		}
		if len(m) > 1 {
			ans.SetStr(i, m[1])

		} else {
			ans.SetStr(i, m[0])
		}
	}
	return singleColumnResult(ans)
}

func NewStringExtract(columns []string, value, alias string) (*StringExtract, error) {
	if len(columns) != 1 {
		return nil, fmt.Errorf("function %s requires exactly one column", NameStringExtract)
	}
	rx, err := regexp.Compile(value)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern for %s: %w", NameStringExtract, err)
	}
	return &StringExtract{base: newBase(NameStringExtract, columns, value, alias), pattern: rx}, nil
}

// ------

// StringMatch produces 1 for rows matching a regular expression, 0 otherwise
type StringMatch struct {
	base
	pattern *regexp.Regexp
}

func (f *StringMatch) Evaluate(t *table.Table, env *Env) (*table.Table, error) {
	src, err := f.column(t, 0)
	if err != nil {
		return nil, err
	}
	ans := make([]int64, t.Len())
	for i := range ans {
		if !src.IsNA(i) && f.pattern.MatchString(src.Str(i)) {
			ans[i] = 1
		}
	}
	return singleColumnResult(table.NewIntSeries(f.id, ans))
}

func NewStringMatch(columns []string, value, alias string) (*StringMatch, error) {
	if len(columns) != 1 {
		return nil, fmt.Errorf("function %s requires exactly one column", NameStringMatch)
	}
	rx, err := regexp.Compile(value)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern for %s: %w", NameStringMatch, err)
	}
	return &StringMatch{base: newBase(NameStringMatch, columns, value, alias), pattern: rx}, nil
}

// ------

// StringLength counts characters (not bytes)
type StringLength struct {
	base
}

func (f *StringLength) Evaluate(t *table.Table, env *Env) (*table.Table, error) {
	src, err := f.column(t, 0)
	if err != nil {
		return nil, err
	}
	ans := make([]float64, t.Len())
	for i := range ans {
		if src.IsNA(i) {
			ans[i] = math.NaN()
			continue
		}
		ans[i] = float64(utf8.RuneCountInString(src.Str(i)))
	}
	return singleColumnResult(table.NewFloatSeries(f.id, ans).AsKind(table.KindInt))
}

func NewStringLength(columns []string, alias string) *StringLength {
	return &StringLength{base: newBase(NameStringLength, columns, "", alias)}
}

// ------

// Stem applies a Snowball stemmer. The function value specifies
// the stemmer language (english by default).
type Stem struct {
	base
	language string
}

func (f *Stem) Evaluate(t *table.Table, env *Env) (*table.Table, error) {
	src, err := f.column(t, 0)
	if err != nil {
		return nil, err
	}
	cache := make(map[string]string)
	ans := table.NewEmptySeries(f.id, table.KindString, t.Len())
	for i := 0; i < t.Len(); i++ {
		if src.IsNA(i) {
			continue
		}
		word := src.Str(i)
		stem, ok := cache[word]
		if !ok {
			stem, err = snowball.Stem(word, f.language, true)
			if err != nil {
				return nil, fmt.Errorf("failed to stem `%s`: %w", word, err)
			}
			cache[word] = stem
		}
		ans.SetStr(i, stem)
	}
	return singleColumnResult(ans)
}

func NewStem(columns []string, value, alias string) (*Stem, error) {
	if len(columns) != 1 {
		return nil, fmt.Errorf("function %s requires exactly one column", NameStem)
	}
	lang := value
	if lang == "" {
		lang = dfltStemLanguage
	}
	if _, err := snowball.Stem("test", lang, true); err != nil {
		return nil, fmt.Errorf("unsupported %s language `%s`", NameStem, lang)
	}
	return &Stem{base: newBase(NameStem, columns, value, alias), language: lang}, nil
}
