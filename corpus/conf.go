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
	"coqpipe/engine"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/bytedance/sonic"
	"github.com/czcorpus/cnc-gokit/fs"
	"github.com/rs/zerolog/log"
)

const (
	DfltWordFreqCacheSize = 50000
	DfltTokenIDColumn     = "id"
	DriverMySQL           = "mysql"
	DriverSQLite          = "sqlite"
)

var (
	sqlIdentPatt = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// FeatureConf describes a single resource feature (a column
// of the tokens table)
type FeatureConf struct {
	Name  string `json:"name"`
	Label string `json:"label"`

	// Column is a column of the token table containing
	// the feature. If empty, Name is used.
	Column string `json:"column"`

	// Lexical features describe words (word form, lemma, PoS),
	// other features describe texts (genre, year, speaker).
	Lexical bool `json:"lexical"`
	Time    bool `json:"time"`
}

func (fc FeatureConf) SQLColumn() string {
	if fc.Column != "" {
		return fc.Column
	}
	return fc.Name
}

// ResourceConf defines a corpus resource stored in a relational
// database as one denormalized token table (one row per corpus
// position).
type ResourceConf struct {
	Name   string `json:"name"`
	DBName string `json:"dbName"`
	Driver string `json:"driver"`

	// DB is used with the `mysql` driver
	DB *engine.DBConf `json:"db"`

	// SQLitePath is used with the `sqlite` driver
	SQLitePath string `json:"sqlitePath"`

	TokenTable    string `json:"tokenTable"`
	TokenIDColumn string `json:"tokenIdColumn"`

	// WordFeature is the feature containing orthographic
	// word forms (used for stopwords, contexts and word frequencies)
	WordFeature    string        `json:"wordFeature"`
	CaseSensitive  bool          `json:"caseSensitive"`
	Features       []FeatureConf `json:"features"`
	PreferredOrder []string      `json:"preferredOrder"`
}

func (rc *ResourceConf) GetFeature(name string) (FeatureConf, bool) {
	for _, f := range rc.Features {
		if f.Name == name {
			return f, true
		}
	}
	return FeatureConf{}, false
}

func (rc *ResourceConf) ValidateAndDefaults(confContext string) error {
	if rc.Name == "" {
		return fmt.Errorf("missing `%s.name`", confContext)
	}
	if rc.DBName == "" {
		rc.DBName = rc.Name
		log.Warn().
			Str("resource", rc.Name).
			Msgf("`%s.dbName` not set, using resource name", confContext)
	}
	switch rc.Driver {
	case DriverMySQL:
		if rc.DB == nil {
			return fmt.Errorf("missing `%s.db` for driver %s", confContext, rc.Driver)
		}
	case DriverSQLite:
		isFile, err := fs.IsFile(rc.SQLitePath)
		if err != nil {
			return fmt.Errorf("failed to test `%s.sqlitePath`: %w", confContext, err)
		}
		if !isFile {
			return fmt.Errorf("`%s.sqlitePath` does not point to a file", confContext)
		}
	default:
		return fmt.Errorf("unsupported `%s.driver`: %s", confContext, rc.Driver)
	}
	if rc.TokenIDColumn == "" {
		rc.TokenIDColumn = DfltTokenIDColumn
		log.Warn().
			Str("resource", rc.Name).
			Str("value", DfltTokenIDColumn).
			Msgf("`%s.tokenIdColumn` not set, using default", confContext)
	}
	if !sqlIdentPatt.MatchString(rc.TokenTable) {
		return fmt.Errorf("invalid `%s.tokenTable`: %s", confContext, rc.TokenTable)
	}
	if !sqlIdentPatt.MatchString(rc.TokenIDColumn) {
		return fmt.Errorf("invalid `%s.tokenIdColumn`: %s", confContext, rc.TokenIDColumn)
	}
	for i, f := range rc.Features {
		if !sqlIdentPatt.MatchString(f.SQLColumn()) {
			return fmt.Errorf("invalid column of `%s.features[%d]`: %s", confContext, i, f.SQLColumn())
		}
		if f.Label == "" {
			rc.Features[i].Label = f.Name
		}
	}
	if _, ok := rc.GetFeature(rc.WordFeature); !ok {
		return fmt.Errorf("`%s.wordFeature` does not refer to a defined feature", confContext)
	}
	if len(rc.PreferredOrder) == 0 {
		for _, f := range rc.Features {
			if f.Lexical {
				rc.PreferredOrder = append(rc.PreferredOrder, f.Name)
			}
		}
	}
	return nil
}

// Resources is a list of configured corpus resources
type Resources []*ResourceConf

// Load reads additional resource configurations, one JSON file
// per resource.
func (rscs *Resources) Load(directory string) error {
	files, err := os.ReadDir(directory)
	if err != nil {
		return fmt.Errorf("failed to load resource configs: %w", err)
	}
	for _, f := range files {
		confPath := filepath.Join(directory, f.Name())
		tmp, err := os.ReadFile(confPath)
		if err != nil {
			log.Warn().
				Err(err).
				Str("file", confPath).
				Msg("encountered invalid resource configuration file, skipping")
			continue
		}
		var conf ResourceConf
		err = sonic.Unmarshal(tmp, &conf)
		if err != nil {
			log.Warn().
				Err(err).
				Str("file", confPath).
				Msg("encountered invalid resource configuration file, skipping")
			continue
		}
		*rscs = append(*rscs, &conf)
		log.Info().Str("name", conf.Name).Msg("loaded resource configuration file")
	}
	return nil
}

func (rscs Resources) Get(name string) *ResourceConf {
	for _, v := range rscs {
		if v.Name == name {
			return v
		}
	}
	return nil
}

// ResourcesSetup is a root configuration of corpus resources
type ResourcesSetup struct {
	ConfFilesDir      string    `json:"confFilesDir"`
	Resources         Resources `json:"resources"`
	WordFreqCacheSize int       `json:"wordFreqCacheSize"`
}

func (rs *ResourcesSetup) ValidateAndDefaults(confContext string) error {
	if rs == nil {
		return fmt.Errorf("missing configuration section `%s`", confContext)
	}
	if rs.WordFreqCacheSize == 0 {
		rs.WordFreqCacheSize = DfltWordFreqCacheSize
		log.Warn().
			Int("value", DfltWordFreqCacheSize).
			Msgf("`%s.wordFreqCacheSize` not set, using default", confContext)
	}
	if len(rs.Resources) == 0 {
		return fmt.Errorf("no resources defined in `%s`", confContext)
	}
	names := make(map[string]bool)
	for i, v := range rs.Resources {
		if err := v.ValidateAndDefaults(fmt.Sprintf("%s.resources[%d]", confContext, i)); err != nil {
			return err
		}
		if names[v.Name] {
			return fmt.Errorf("duplicate resource `%s` in `%s`", v.Name, confContext)
		}
		names[v.Name] = true
	}
	return nil
}
