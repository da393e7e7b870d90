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
	"database/sql"
	"fmt"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"
)

// SQLResource is a corpus stored as a single token table
// in a relational database.
type SQLResource struct {
	conf *ResourceConf
	db   *sql.DB

	freqCache *lru.Cache[string, int64]

	sizeLock   sync.Mutex
	corpusSize int64
}

func (r *SQLResource) Name() string {
	return r.conf.Name
}

func (r *SQLResource) DBName() string {
	return r.conf.DBName
}

func (r *SQLResource) FeatureLabel(feature string) (string, bool) {
	f, ok := r.conf.GetFeature(feature)
	if !ok {
		return "", false
	}
	return f.Label, true
}

func (r *SQLResource) PreferredOutputOrder() []string {
	return r.conf.PreferredOrder
}

func (r *SQLResource) IsLexical(feature string) bool {
	f, ok := r.conf.GetFeature(feature)
	return ok && f.Lexical
}

func (r *SQLResource) WordFeature() string {
	return r.conf.WordFeature
}

func (r *SQLResource) TimeFeatures() []string {
	ans := make([]string, 0, 2)
	for _, f := range r.conf.Features {
		if f.Time {
			ans = append(ans, f.Name)
		}
	}
	return ans
}

func (r *SQLResource) wordColumn() string {
	f, _ := r.conf.GetFeature(r.conf.WordFeature)
	return f.SQLColumn()
}

func (r *SQLResource) CorpusSize(ctx context.Context) (int64, error) {
	r.sizeLock.Lock()
	defer r.sizeLock.Unlock()
	if r.corpusSize > 0 {
		return r.corpusSize, nil
	}
	sql1 := fmt.Sprintf("SELECT COUNT(*) FROM %s", r.conf.TokenTable)
	log.Debug().Str("sql", sql1).Str("resource", r.Name()).Msg("going to get corpus size")
	var size int64
	if err := r.db.QueryRowContext(ctx, sql1).Scan(&size); err != nil {
		return 0, fmt.Errorf("failed to get size of %s: %w", r.Name(), err)
	}
	r.corpusSize = size
	return size, nil
}

func (r *SQLResource) WordFrequency(ctx context.Context, form string) (int64, error) {
	if v, ok := r.freqCache.Get(form); ok {
		return v, nil
	}
	var sql1 string
	if r.conf.CaseSensitive {
		sql1 = fmt.Sprintf(
			"SELECT COUNT(*) FROM %s WHERE %s = ?", r.conf.TokenTable, r.wordColumn())

	} else {
		sql1 = fmt.Sprintf(
			"SELECT COUNT(*) FROM %s WHERE LOWER(%s) = LOWER(?)", r.conf.TokenTable, r.wordColumn())
	}
	var freq int64
	if err := r.db.QueryRowContext(ctx, sql1, form).Scan(&freq); err != nil {
		return 0, fmt.Errorf("failed to get frequency of `%s`: %w", form, err)
	}
	r.freqCache.Add(form, freq)
	return freq, nil
}

func (r *SQLResource) SubcorpusSize(ctx context.Context, constraints map[string]string) (int64, error) {
	if len(constraints) == 0 {
		return r.CorpusSize(ctx)
	}
	whereSQL := make([]string, 0, len(constraints))
	whereArgs := make([]any, 0, len(constraints))
	// iterate over configured features to get a stable SQL
	for _, f := range r.conf.Features {
		v, ok := constraints[f.Name]
		if !ok {
			continue
		}
		whereSQL = append(whereSQL, fmt.Sprintf("%s = ?", f.SQLColumn()))
		whereArgs = append(whereArgs, v)
	}
	if len(whereSQL) != len(constraints) {
		for k := range constraints {
			if _, ok := r.conf.GetFeature(k); !ok {
				return 0, fmt.Errorf("%w: %s", ErrUnknownFeature, k)
			}
		}
	}
	sql1 := fmt.Sprintf(
		"SELECT COUNT(*) FROM %s WHERE %s",
		r.conf.TokenTable, strings.Join(whereSQL, " AND "))
	log.Debug().Str("sql", sql1).Any("args", whereArgs).Msg("going to get subcorpus size")
	var size int64
	if err := r.db.QueryRowContext(ctx, sql1, whereArgs...).Scan(&size); err != nil {
		return 0, fmt.Errorf("failed to get subcorpus size: %w", err)
	}
	return size, nil
}

func (r *SQLResource) TokenContext(
	ctx context.Context,
	corpusID int64,
	numTokens, left, right int,
) (TokenContext, error) {
	ans := TokenContext{
		Left:  make([]string, left),
		Match: make([]string, numTokens),
		Right: make([]string, right),
	}
	from := corpusID - int64(left)
	to := corpusID + int64(numTokens) + int64(right)
	sql1 := fmt.Sprintf(
		"SELECT %s, %s FROM %s WHERE %s >= ? AND %s < ? ORDER BY %s",
		r.conf.TokenIDColumn, r.wordColumn(), r.conf.TokenTable,
		r.conf.TokenIDColumn, r.conf.TokenIDColumn, r.conf.TokenIDColumn,
	)
	rows, err := r.db.QueryContext(ctx, sql1, from, to)
	if err != nil {
		return ans, fmt.Errorf("failed to get context of %d: %w", corpusID, err)
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		var word sql.NullString
		if err := rows.Scan(&id, &word); err != nil {
			return ans, fmt.Errorf("failed to get context of %d: %w", corpusID, err)
		}
		switch {
		case id < corpusID:
			ans.Left[corpusID-id-1] = word.String
		case id < corpusID+int64(numTokens):
			ans.Match[id-corpusID] = word.String
		default:
			ans.Right[id-corpusID-int64(numTokens)] = word.String
		}
	}
	return ans, rows.Err()
}

func NewSQLResource(conf *ResourceConf, db *sql.DB, freqCacheSize int) (*SQLResource, error) {
	if freqCacheSize <= 0 {
		freqCacheSize = DfltWordFreqCacheSize
	}
	cache, err := lru.New[string, int64](freqCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create word frequency cache: %w", err)
	}
	return &SQLResource{
		conf:      conf,
		db:        db,
		freqCache: cache,
	}, nil
}
