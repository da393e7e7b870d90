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

package corpus_test

import (
	"context"
	"coqpipe/corpus"
	"coqpipe/corpus/corpustest"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResource(t *testing.T) *corpus.SQLResource {
	res, db, err := corpustest.New(corpustest.DefaultText())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return res
}

func TestCorpusSize(t *testing.T) {
	res := newTestResource(t)
	size, err := res.CorpusSize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(21), size)
}

func TestWordFrequencyIgnoresCase(t *testing.T) {
	res := newTestResource(t)
	for _, w := range []string{"the", "THE", "The"} {
		freq, err := res.WordFrequency(context.Background(), w)
		require.NoError(t, err)
		assert.Equal(t, int64(3), freq, w)
	}
	freq, err := res.WordFrequency(context.Background(), "unicorn")
	require.NoError(t, err)
	assert.Equal(t, int64(0), freq)
}

func TestSubcorpusSize(t *testing.T) {
	res := newTestResource(t)
	size, err := res.SubcorpusSize(context.Background(), map[string]string{"genre": "news"})
	require.NoError(t, err)
	assert.Equal(t, int64(11), size)

	size, err = res.SubcorpusSize(
		context.Background(), map[string]string{"genre": "fiction", "year": "2000"})
	require.NoError(t, err)
	assert.Equal(t, int64(10), size)

	size, err = res.SubcorpusSize(context.Background(), map[string]string{})
	require.NoError(t, err)
	assert.Equal(t, int64(21), size)

	_, err = res.SubcorpusSize(context.Background(), map[string]string{"speaker": "x"})
	assert.ErrorIs(t, err, corpus.ErrUnknownFeature)
}

func TestTokenContext(t *testing.T) {
	res := newTestResource(t)
	ctx, err := res.TokenContext(context.Background(), 2, 1, 2, 2)
	require.NoError(t, err)
	// nearest token first on the left side
	assert.Equal(t, []string{"The", ""}, ctx.Left)
	assert.Equal(t, []string{"dog"}, ctx.Match)
	assert.Equal(t, []string{"saw", "the"}, ctx.Right)

	ctx, err = res.TokenContext(context.Background(), 20, 2, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"dogs"}, ctx.Left)
	assert.Equal(t, []string{"sleep", "."}, ctx.Match)
	assert.Equal(t, []string{""}, ctx.Right)
}

func TestResourceFeatures(t *testing.T) {
	res := newTestResource(t)
	assert.True(t, res.IsLexical("lemma_label"))
	assert.False(t, res.IsLexical("genre"))
	assert.False(t, res.IsLexical("unknown"))
	label, ok := res.FeatureLabel("pos_label")
	assert.True(t, ok)
	assert.Equal(t, "Part-of-speech", label)
	assert.Equal(t, []string{"year"}, res.TimeFeatures())
	assert.Equal(t, "word_label", res.WordFeature())
}

func mockConf(caseSensitive bool) *corpus.ResourceConf {
	conf := corpustest.Conf()
	conf.Driver = corpus.DriverMySQL
	conf.CaseSensitive = caseSensitive
	return conf
}

func TestWordFrequencyQueryIsCached(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	res, err := corpus.NewSQLResource(mockConf(true), db, 10)
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM tokens WHERE word = ?")).
		WithArgs("Dog").
		WillReturnRows(sqlmock.NewRows([]string{"cnt"}).AddRow(5))
	for i := 0; i < 3; i++ {
		freq, err := res.WordFrequency(context.Background(), "Dog")
		require.NoError(t, err)
		assert.Equal(t, int64(5), freq)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCorpusSizeQueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	res, err := corpus.NewSQLResource(mockConf(false), db, 10)
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM tokens")).
		WillReturnError(assert.AnError)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM tokens")).
		WillReturnRows(sqlmock.NewRows([]string{"cnt"}).AddRow(1000))
	_, err = res.CorpusSize(context.Background())
	assert.ErrorIs(t, err, assert.AnError)
	size, err := res.CorpusSize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1000), size)
	size, err = res.CorpusSize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1000), size)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubcorpusSizeQueryUsesConfiguredColumns(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	res, err := corpus.NewSQLResource(mockConf(false), db, 10)
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM tokens WHERE genre = ? AND year = ?")).
		WithArgs("news", "1990").
		WillReturnRows(sqlmock.NewRows([]string{"cnt"}).AddRow(11))
	size, err := res.SubcorpusSize(
		context.Background(), map[string]string{"year": "1990", "genre": "news"})
	require.NoError(t, err)
	assert.Equal(t, int64(11), size)
	assert.NoError(t, mock.ExpectationsWereMet())
}
