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
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind is a storage type of a Series
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

func (k Kind) IsNumeric() bool {
	return k == KindInt || k == KindFloat
}

// ParseKind is the inverse of Kind.String()
func ParseKind(v string) (Kind, error) {
	switch v {
	case "string", "":
		return KindString, nil
	case "int":
		return KindInt, nil
	case "float":
		return KindFloat, nil
	default:
		return KindString, fmt.Errorf("unknown column kind `%s`", v)
	}
}

// Series is a single named column of a Table.
// Both integer and float values are stored as float64, the Kind
// decides how the values are presented and restored after
// aggregations.
type Series struct {
	Name string
	Kind Kind
	str  []string
	num  []float64
	na   []bool
}

func NewStringSeries(name string, values []string) *Series {
	return &Series{
		Name: name,
		Kind: KindString,
		str:  values,
		na:   make([]bool, len(values)),
	}
}

func NewIntSeries(name string, values []int64) *Series {
	num := make([]float64, len(values))
	for i, v := range values {
		num[i] = float64(v)
	}
	return &Series{
		Name: name,
		Kind: KindInt,
		num:  num,
		na:   make([]bool, len(values)),
	}
}

func NewFloatSeries(name string, values []float64) *Series {
	ans := &Series{
		Name: name,
		Kind: KindFloat,
		num:  values,
		na:   make([]bool, len(values)),
	}
	for i, v := range values {
		if math.IsNaN(v) {
			ans.na[i] = true
		}
	}
	return ans
}

// NewEmptySeries creates a series of the provided size with all
// the values set to NA
func NewEmptySeries(name string, kind Kind, size int) *Series {
	ans := &Series{
		Name: name,
		Kind: kind,
		na:   make([]bool, size),
	}
	if kind == KindString {
		ans.str = make([]string, size)

	} else {
		ans.num = make([]float64, size)
	}
	for i := range ans.na {
		ans.na[i] = true
	}
	return ans
}

func (s *Series) Len() int {
	return len(s.na)
}

func (s *Series) IsNA(i int) bool {
	return s.na[i]
}

func (s *Series) SetNA(i int) {
	s.na[i] = true
}

func (s *Series) CountNA() int {
	var ans int
	for _, v := range s.na {
		if v {
			ans++
		}
	}
	return ans
}

// Str returns a string representation of the i-th value.
// NA values are represented by an empty string.
func (s *Series) Str(i int) string {
	if s.na[i] {
		return ""
	}
	switch s.Kind {
	case KindString:
		return s.str[i]
	case KindInt:
		return strconv.FormatInt(int64(s.num[i]), 10)
	default:
		return strconv.FormatFloat(s.num[i], 'g', -1, 64)
	}
}

// Float returns a numeric value of the i-th item. For string
// series, the value is parsed and NaN is returned in case
// the value is not a number.
func (s *Series) Float(i int) float64 {
	if s.na[i] {
		return math.NaN()
	}
	if s.Kind == KindString {
		v, err := strconv.ParseFloat(strings.TrimSpace(s.str[i]), 64)
		if err != nil {
			return math.NaN()
		}
		return v
	}
	return s.num[i]
}

func (s *Series) Int(i int) int64 {
	v := s.Float(i)
	if math.IsNaN(v) {
		return 0
	}
	return int64(v)
}

// Value returns the i-th value as a string, int64 or float64
// depending on series kind. NA is returned as nil.
func (s *Series) Value(i int) any {
	if s.na[i] {
		return nil
	}
	switch s.Kind {
	case KindString:
		return s.str[i]
	case KindInt:
		return int64(s.num[i])
	default:
		return s.num[i]
	}
}

func (s *Series) SetStr(i int, v string) {
	if s.Kind != KindString {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			s.na[i] = true
			return
		}
		s.SetFloat(i, f)
		return
	}
	s.str[i] = v
	s.na[i] = false
}

func (s *Series) SetFloat(i int, v float64) {
	if s.Kind == KindString {
		s.str[i] = strconv.FormatFloat(v, 'g', -1, 64)
		s.na[i] = math.IsNaN(v)
		return
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		s.num[i] = 0
		s.na[i] = true
		return
	}
	if s.Kind == KindInt {
		v = math.Trunc(v)
	}
	s.num[i] = v
	s.na[i] = false
}

// SetValue accepts the same types Value() produces (plus int
// and bool). Nil sets NA.
func (s *Series) SetValue(i int, v any) {
	switch tv := v.(type) {
	case nil:
		s.SetNA(i)
	case string:
		s.SetStr(i, tv)
	case int:
		s.SetFloat(i, float64(tv))
	case int64:
		s.SetFloat(i, float64(tv))
	case float64:
		s.SetFloat(i, tv)
	case bool:
		if tv {
			s.SetFloat(i, 1)

		} else {
			s.SetFloat(i, 0)
		}
	default:
		s.SetStr(i, fmt.Sprintf("%v", tv))
	}
}

func (s *Series) Copy() *Series {
	ans := &Series{
		Name: s.Name,
		Kind: s.Kind,
		na:   append([]bool(nil), s.na...),
	}
	if s.str != nil {
		ans.str = append([]string(nil), s.str...)
	}
	if s.num != nil {
		ans.num = append([]float64(nil), s.num...)
	}
	return ans
}

// Renamed returns a copy of the series with a new name
func (s *Series) Renamed(name string) *Series {
	ans := s.Copy()
	ans.Name = name
	return ans
}

// AsKind converts the series to a different kind. Values which
// cannot be converted become NA.
func (s *Series) AsKind(k Kind) *Series {
	if s.Kind == k {
		return s.Copy()
	}
	ans := NewEmptySeries(s.Name, k, s.Len())
	for i := 0; i < s.Len(); i++ {
		if s.na[i] {
			continue
		}
		if k == KindString {
			ans.SetStr(i, s.Str(i))

		} else {
			ans.SetFloat(i, s.Float(i))
		}
	}
	return ans
}

func (s *Series) take(idx []int) *Series {
	ans := &Series{
		Name: s.Name,
		Kind: s.Kind,
		na:   make([]bool, len(idx)),
	}
	if s.Kind == KindString {
		ans.str = make([]string, len(idx))
		for i, j := range idx {
			ans.str[i] = s.str[j]
			ans.na[i] = s.na[j]
		}

	} else {
		ans.num = make([]float64, len(idx))
		for i, j := range idx {
			ans.num[i] = s.num[j]
			ans.na[i] = s.na[j]
		}
	}
	return ans
}

func (s *Series) appendFrom(other *Series, i int) {
	s.na = append(s.na, false)
	last := len(s.na) - 1
	if s.Kind == KindString {
		s.str = append(s.str, "")

	} else {
		s.num = append(s.num, 0)
	}
	if other == nil || other.na[i] {
		s.na[last] = true
		return
	}
	if s.Kind == KindString {
		s.SetStr(last, other.Str(i))

	} else {
		s.SetFloat(last, other.Float(i))
	}
}

// Compare compares i-th and j-th values. NA values are considered
// greater than anything else so they end up at the end in an ascending
// order.
func (s *Series) Compare(i, j int) int {
	return compareValues(s, i, s, j)
}

func compareValues(a *Series, i int, b *Series, j int) int {
	naA, naB := a.na[i], b.na[j]
	if naA && naB {
		return 0
	}
	if naA {
		return 1
	}
	if naB {
		return -1
	}
	if a.Kind == KindString || b.Kind == KindString {
		return strings.Compare(a.Str(i), b.Str(j))
	}
	va, vb := a.num[i], b.num[j]
	if va < vb {
		return -1
	}
	if va > vb {
		return 1
	}
	return 0
}
