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

package options

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FoldCase normalizes output values according to the case
// sensitivity and case folding settings
func (p *Pipeline) FoldCase(s string) string {
	if p.CaseSensitive {
		return s
	}
	if p.OutputToLower {
		return cases.Lower(language.Und).String(s)
	}
	return cases.Upper(language.Und).String(s)
}

// StopwordSet creates a case-insensitive lookup set
// of configured stopwords
func (p *Pipeline) StopwordSet() StopwordSet {
	folder := cases.Fold()
	ans := make(StopwordSet, len(p.Stopwords))
	for _, w := range p.Stopwords {
		if w != "" {
			ans[folder.String(w)] = true
		}
	}
	return ans
}

type StopwordSet map[string]bool

// Contains tests a word ignoring its case
func (sws StopwordSet) Contains(word string) bool {
	return sws[cases.Fold().String(word)]
}
