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

// Package corpustest provides an in-memory SQLite corpus
// for testing the result pipeline.
package corpustest

import (
	"coqpipe/colref"
	"coqpipe/corpus"
	"coqpipe/table"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

const (
	ResourceName = "testcorp"
	DBName       = "testcorp_db"
)

type Token struct {
	Word  string
	Lemma string
	POS   string
	Genre string
	Year  int
}

// DefaultText is a tiny two-genre corpus
func DefaultText() []Token {
	ans := make([]Token, 0, 40)
	add := func(genre string, year int, text string) {
		for _, item := range strings.Fields(text) {
			parts := strings.Split(item, "/")
			ans = append(ans, Token{Word: parts[0], Lemma: parts[1], POS: parts[2], Genre: genre, Year: year})
		}
	}
	add("news", 1990,
		"The/the/DT dog/dog/NN saw/see/VBD the/the/DT cat/cat/NN ./././ "+
			"A/a/DT cat/cat/NN saw/see/VBD dogs/dog/NNS ./././")
	add("fiction", 2000,
		"The/the/DT old/old/JJ dog/dog/NN barked/bark/VBD ./././ "+
			"Cats/cat/NNS and/and/CC dogs/dog/NNS sleep/sleep/VBP ./././")
	return ans
}

// Conf returns a configuration matching the token table
// created by New
func Conf() *corpus.ResourceConf {
	return &corpus.ResourceConf{
		Name:          ResourceName,
		DBName:        DBName,
		Driver:        corpus.DriverSQLite,
		TokenTable:    "tokens",
		TokenIDColumn: "id",
		WordFeature:   "word_label",
		Features: []corpus.FeatureConf{
			{Name: "word_label", Label: "Word", Column: "word", Lexical: true},
			{Name: "lemma_label", Label: "Lemma", Column: "lemma", Lexical: true},
			{Name: "pos_label", Label: "Part-of-speech", Column: "pos", Lexical: true},
			{Name: "genre", Label: "Genre", Column: "genre"},
			{Name: "year", Label: "Year", Column: "year", Time: true},
		},
		PreferredOrder: []string{"word_label", "lemma_label", "pos_label"},
	}
}

// New creates an in-memory database containing tokens (with ids
// starting from 1) and a resource on top of it.
func New(tokens []Token) (*corpus.SQLResource, *sql.DB, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open test corpus: %w", err)
	}
	// each connection would see a different in-memory database
	db.SetMaxOpenConns(1)
	_, err = db.Exec(
		"CREATE TABLE tokens (id INTEGER PRIMARY KEY, word TEXT, lemma TEXT, " +
			"pos TEXT, genre TEXT, year INTEGER)")
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to create test corpus: %w", err)
	}
	for i, tk := range tokens {
		_, err := db.Exec(
			"INSERT INTO tokens (id, word, lemma, pos, genre, year) VALUES (?, ?, ?, ?, ?, ?)",
			i+1, tk.Word, tk.Lemma, tk.POS, tk.Genre, tk.Year)
		if err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to fill test corpus: %w", err)
		}
	}
	res, err := corpus.NewSQLResource(Conf(), db, 100)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return res, db, nil
}

// ResultTable creates a raw query result table (a single
// query token) for matches at provided positions (1-based ids).
func ResultTable(tokens []Token, ids ...int) *table.Table {
	words := make([]string, len(ids))
	lemmas := make([]string, len(ids))
	tags := make([]string, len(ids))
	genres := make([]string, len(ids))
	corpusIDs := make([]int64, len(ids))
	numTokens := make([]int64, len(ids))
	origins := make([]int64, len(ids))
	for i, id := range ids {
		tk := tokens[id-1]
		words[i] = tk.Word
		lemmas[i] = tk.Lemma
		tags[i] = tk.POS
		genres[i] = tk.Genre
		corpusIDs[i] = int64(id)
		numTokens[i] = 1
		if tk.Genre == "news" {
			origins[i] = 1

		} else {
			origins[i] = 2
		}
	}
	return table.MustFromSeries(
		table.NewStringSeries(colref.FeatureColumn("word_label", 1), words),
		table.NewStringSeries(colref.FeatureColumn("lemma_label", 1), lemmas),
		table.NewStringSeries(colref.FeatureColumn("pos_label", 1), tags),
		table.NewStringSeries(colref.FeatureColumn("genre", 1), genres),
		table.NewIntSeries(colref.ColCorpusID, corpusIDs),
		table.NewIntSeries(colref.ColNumTokens, numTokens),
		table.NewIntSeries(colref.ColOriginID, origins),
	)
}
