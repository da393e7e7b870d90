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

package corpus

import (
	"context"
	"errors"
)

var (
	ErrNotFound       = errors.New("resource not found")
	ErrUnknownFeature = errors.New("unknown resource feature")
)

// TokenContext contains word forms surrounding a match.
// Left[0] is the token immediately preceding the match,
// Right[0] is the token immediately following it. Positions
// outside of the corpus are represented by empty strings.
type TokenContext struct {
	Left  []string `json:"left"`
	Match []string `json:"match"`
	Right []string `json:"right"`
}

// Resource is a queried corpus as seen by the result pipeline
type Resource interface {
	Name() string

	// DBName is a name of the database the resource lives in.
	// It is used to resolve `db_<database>_coq_<feature>` columns.
	DBName() string

	// FeatureLabel returns a display label of a resource feature
	FeatureLabel(feature string) (string, bool)

	// PreferredOutputOrder lists lexical features in the order
	// they should appear in an output table
	PreferredOutputOrder() []string

	IsLexical(feature string) bool

	// WordFeature is the feature containing orthographic word forms
	WordFeature() string

	TimeFeatures() []string

	CorpusSize(ctx context.Context) (int64, error)

	// WordFrequency returns number of occurrences of a word form
	WordFrequency(ctx context.Context, form string) (int64, error)

	// SubcorpusSize returns number of tokens in texts matching
	// all the constraints (feature -> value). Empty constraints
	// produce the whole corpus size.
	SubcorpusSize(ctx context.Context, constraints map[string]string) (int64, error)

	// TokenContext returns word forms surrounding a match starting
	// at corpusID and spanning numTokens tokens.
	TokenContext(ctx context.Context, corpusID int64, numTokens, left, right int) (TokenContext, error)
}

// ResourceLookup resolves the resource owning a database
type ResourceLookup interface {
	ResourceOfDatabase(dbName string) (Resource, bool)
}
