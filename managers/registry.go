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
	"fmt"
	"strings"
	"sync"
)

const (
	DfltGTestCacheSize = 10000
)

// Mode is an aggregation mode of a query result
type Mode string

const (
	ModeTokens       Mode = "TOKENS"
	ModeTypes        Mode = "TYPES"
	ModeFrequencies  Mode = "FREQUENCIES"
	ModeContingency  Mode = "CONTINGENCY"
	ModeCollocations Mode = "COLLOCATIONS"
	ModeContrasts    Mode = "CONTRASTS"
)

func ParseMode(v string) (Mode, error) {
	m := Mode(strings.ToUpper(strings.TrimSpace(v)))
	switch m {
	case ModeTokens, ModeTypes, ModeFrequencies, ModeContingency, ModeCollocations, ModeContrasts:
		return m, nil
	case "":
		return ModeTokens, nil
	}
	return "", fmt.Errorf("unknown aggregation mode `%s`", v)
}

// Factory creates a new manager for a mode. Unknown modes
// produce a plain (tokens) manager.
func Factory(mode Mode, gTestCacheSize int) *Manager {
	switch mode {
	case ModeTypes:
		return newManager(mode, &typesVariant{})
	case ModeFrequencies:
		return newManager(mode, &frequencyVariant{})
	case ModeContingency:
		return newManager(mode, &contingencyVariant{})
	case ModeCollocations:
		return newManager(mode, &collocationsVariant{})
	case ModeContrasts:
		return newManager(mode, newContrastVariant(gTestCacheSize))
	}
	return newManager(ModeTokens, &baseVariant{})
}

type registryKey struct {
	resource string
	mode     Mode
}

// Registry keeps managers for (resource, mode) pairs so that their
// state survives between repeated processing requests.
type Registry struct {
	mu             sync.Mutex
	managers       map[registryKey]*Manager
	gTestCacheSize int
}

// Get returns a cached manager or creates a new one
func (reg *Registry) Get(mode Mode, resource string) *Manager {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	key := registryKey{resource: resource, mode: mode}
	m, ok := reg.managers[key]
	if !ok {
		m = Factory(mode, reg.gTestCacheSize)
		reg.managers[key] = m
	}
	return m
}

func (reg *Registry) Len() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return len(reg.managers)
}

func NewRegistry(gTestCacheSize int) *Registry {
	if gTestCacheSize <= 0 {
		gTestCacheSize = DfltGTestCacheSize
	}
	return &Registry{
		managers:       make(map[registryKey]*Manager),
		gTestCacheSize: gTestCacheSize,
	}
}
