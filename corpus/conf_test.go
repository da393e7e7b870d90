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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sqliteCorpusFile(t *testing.T) string {
	path := filepath.Join(t.TempDir(), "corp.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()
	_, err = db.Exec("CREATE TABLE tokens (id INTEGER PRIMARY KEY, word TEXT, genre TEXT)")
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO tokens (id, word, genre) VALUES (1, 'a', 'x'), (2, 'b', 'y')")
	require.NoError(t, err)
	return path
}

func testConf(path string) *ResourceConf {
	return &ResourceConf{
		Name:       "corp",
		Driver:     DriverSQLite,
		SQLitePath: path,
		TokenTable: "tokens",
		Features: []FeatureConf{
			{Name: "word", Lexical: true},
			{Name: "genre", Label: "Genre"},
		},
		WordFeature: "word",
	}
}

func TestResourceConfDefaults(t *testing.T) {
	conf := testConf(sqliteCorpusFile(t))
	require.NoError(t, conf.ValidateAndDefaults("resources[0]"))
	assert.Equal(t, "corp", conf.DBName)
	assert.Equal(t, DfltTokenIDColumn, conf.TokenIDColumn)
	assert.Equal(t, []string{"word"}, conf.PreferredOrder)
	assert.Equal(t, "word", conf.Features[0].Label)
	assert.Equal(t, "Genre", conf.Features[1].Label)
}

func TestResourceConfValidation(t *testing.T) {
	path := sqliteCorpusFile(t)

	conf := testConf(path)
	conf.Name = ""
	assert.Error(t, conf.ValidateAndDefaults("r"))

	conf = testConf(path)
	conf.Driver = DriverMySQL
	assert.Error(t, conf.ValidateAndDefaults("r"))

	conf = testConf(path)
	conf.Driver = "postgres"
	assert.Error(t, conf.ValidateAndDefaults("r"))

	conf = testConf(filepath.Join(t.TempDir(), "missing.db"))
	assert.Error(t, conf.ValidateAndDefaults("r"))

	conf = testConf(path)
	conf.TokenTable = "tokens; DROP TABLE tokens"
	assert.Error(t, conf.ValidateAndDefaults("r"))

	conf = testConf(path)
	conf.Features[1].Column = "genre-x"
	assert.Error(t, conf.ValidateAndDefaults("r"))

	conf = testConf(path)
	conf.WordFeature = "lemma"
	assert.Error(t, conf.ValidateAndDefaults("r"))
}

func TestResourcesSetupRejectsDuplicates(t *testing.T) {
	path := sqliteCorpusFile(t)
	setup := &ResourcesSetup{Resources: Resources{testConf(path), testConf(path)}}
	assert.Error(t, setup.ValidateAndDefaults("resources"))

	setup = &ResourcesSetup{Resources: Resources{testConf(path)}}
	require.NoError(t, setup.ValidateAndDefaults("resources"))
	assert.Equal(t, DfltWordFreqCacheSize, setup.WordFreqCacheSize)

	var empty *ResourcesSetup
	assert.Error(t, empty.ValidateAndDefaults("resources"))
}

func TestResourcesLoad(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "corp.json"),
		[]byte(`{"name": "corp2", "driver": "sqlite", "tokenTable": "tokens"}`),
		0644,
	))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte(`{"name":`), 0644))
	var rscs Resources
	require.NoError(t, rscs.Load(dir))
	require.Len(t, rscs, 1)
	assert.Equal(t, "tokens", rscs.Get("corp2").TokenTable)
	assert.Nil(t, rscs.Get("corp3"))
}

func TestOpenRegistry(t *testing.T) {
	conf := testConf(sqliteCorpusFile(t))
	conf.DBName = "corpdb"
	setup := &ResourcesSetup{Resources: Resources{conf}}
	require.NoError(t, setup.ValidateAndDefaults("resources"))
	reg, err := OpenRegistry(setup)
	require.NoError(t, err)
	defer reg.Close()

	assert.Equal(t, []string{"corp"}, reg.Names())
	res, ok := reg.Get("corp")
	require.True(t, ok)
	size, err := res.SubcorpusSize(context.Background(), map[string]string{"genre": "y"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), size)

	byDB, ok := reg.ResourceOfDatabase("corpdb")
	require.True(t, ok)
	assert.Same(t, res, byDB)
	_, ok = reg.ResourceOfDatabase("corp")
	assert.False(t, ok)
}
