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
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	dfltContextWidth = 3
)

// ContextMode specifies how (and whether) a context of
// each match is added to a result table
type ContextMode string

const (
	ContextNone    ContextMode = "none"
	ContextKWIC    ContextMode = "kwic"
	ContextString  ContextMode = "string"
	ContextColumns ContextMode = "columns"
)

func (cm ContextMode) Validate() error {
	switch cm {
	case ContextNone, ContextKWIC, ContextString, ContextColumns, "":
		return nil
	}
	return fmt.Errorf("unsupported context mode `%s`", cm)
}

// Pipeline contains all the settings read by the result
// processing pipeline. The value is passed explicitly to
// managers and it is never modified by them.
type Pipeline struct {
	CaseSensitive bool `json:"caseSensitive"`

	// OutputToLower specifies case folding direction used
	// when CaseSensitive is false (false means upper case)
	OutputToLower bool `json:"outputToLower"`

	Stopwords []string `json:"stopwords"`

	ContextMode  ContextMode `json:"contextMode"`
	ContextLeft  int         `json:"contextLeft"`
	ContextRight int         `json:"contextRight"`

	// GroupColumns contains resource features (e.g. `word_label`)
	// used for grouping
	GroupColumns []string `json:"groupColumns"`

	// DropOnNA forces removal of rows having all the visible
	// output columns NA
	DropOnNA bool `json:"dropOnNA"`
}

func (p *Pipeline) HasContext() bool {
	return p.ContextMode != "" && p.ContextMode != ContextNone
}

func (p *Pipeline) HasStopwords() bool {
	return len(p.Stopwords) > 0
}

func (p *Pipeline) HasGroups() bool {
	return len(p.GroupColumns) > 0
}

// Copy creates an independent copy of the options
func (p *Pipeline) Copy() *Pipeline {
	ans := *p
	ans.Stopwords = append([]string(nil), p.Stopwords...)
	ans.GroupColumns = append([]string(nil), p.GroupColumns...)
	return &ans
}

// Merge returns a copy of p with non-zero values from the override
// applied. Boolean values are always taken from the override.
func (p *Pipeline) Merge(override *Pipeline) *Pipeline {
	ans := p.Copy()
	if override == nil {
		return ans
	}
	ans.CaseSensitive = override.CaseSensitive
	ans.OutputToLower = override.OutputToLower
	ans.DropOnNA = override.DropOnNA
	if override.Stopwords != nil {
		ans.Stopwords = append([]string(nil), override.Stopwords...)
	}
	if override.ContextMode != "" {
		ans.ContextMode = override.ContextMode
	}
	if override.ContextLeft > 0 {
		ans.ContextLeft = override.ContextLeft
	}
	if override.ContextRight > 0 {
		ans.ContextRight = override.ContextRight
	}
	if override.GroupColumns != nil {
		ans.GroupColumns = append([]string(nil), override.GroupColumns...)
	}
	return ans
}

func (p *Pipeline) ValidateAndDefaults(confContext string) error {
	if p.ContextMode == "" {
		p.ContextMode = ContextNone
	}
	if err := p.ContextMode.Validate(); err != nil {
		return fmt.Errorf("invalid `%s.contextMode`: %w", confContext, err)
	}
	if p.ContextLeft < 0 || p.ContextRight < 0 {
		return fmt.Errorf("`%s` context widths must not be negative", confContext)
	}
	if p.HasContext() && p.ContextLeft == 0 && p.ContextRight == 0 {
		p.ContextLeft = dfltContextWidth
		p.ContextRight = dfltContextWidth
		log.Warn().
			Int("value", dfltContextWidth).
			Msgf("`%s` context widths not set, using default", confContext)
	}
	for i, sw := range p.Stopwords {
		p.Stopwords[i] = strings.TrimSpace(sw)
	}
	return nil
}

// Default creates options with all the features disabled
func Default() *Pipeline {
	return &Pipeline{
		ContextMode: ContextNone,
	}
}
