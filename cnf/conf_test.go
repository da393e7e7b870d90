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

package cnf

import (
	"coqpipe/managers"
	"coqpipe/options"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConf(t *testing.T, data string) string {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "corp.db")
	require.NoError(t, os.WriteFile(dbPath, []byte{}, 0644))
	rscDir := filepath.Join(dir, "resources")
	require.NoError(t, os.Mkdir(rscDir, 0755))
	rsc := `{"name": "extra", "driver": "sqlite", "sqlitePath": "` + dbPath + `",
		"tokenTable": "tokens", "wordFeature": "word",
		"features": [{"name": "word", "lexical": true}]}`
	require.NoError(t, os.WriteFile(filepath.Join(rscDir, "extra.json"), []byte(rsc), 0644))
	confPath := filepath.Join(dir, "conf.json")
	data = strings.ReplaceAll(data, "$DB", dbPath)
	data = strings.ReplaceAll(data, "$RSC", rscDir)
	require.NoError(t, os.WriteFile(confPath, []byte(data), 0644))
	return confPath
}

const testConf = `{
	"redis": {"host": "localhost"},
	"logLevel": "debug",
	"resources": {
		"confFilesDir": "$RSC",
		"resources": [{
			"name": "main", "driver": "sqlite", "sqlitePath": "$DB",
			"tokenTable": "tokens", "wordFeature": "word",
			"features": [{"name": "word", "lexical": true}, {"name": "genre"}]
		}]
	}
}`

func TestLoadAndValidate(t *testing.T) {
	conf := LoadConfig(writeConf(t, testConf))
	require.NoError(t, conf.LoadSubconfigs())
	require.NoError(t, ValidateAndDefaults(conf))

	assert.True(t, conf.IsDebugMode())
	assert.Equal(t, 6379, conf.Redis.Port)
	assert.Equal(t, dfltListenPort, conf.ListenPort)
	assert.Equal(t, dfltServerWriteTimeoutSecs, conf.ServerWriteTimeoutSecs)
	assert.Equal(t, dfltServerWriteTimeoutSecs, conf.WorkerTimeoutSecs)
	assert.Equal(t, "http://127.0.0.1:8090", conf.PublicURL)
	assert.Equal(t, managers.DfltGTestCacheSize, conf.GTestCacheSize)
	assert.Equal(t, options.ContextNone, conf.Pipeline.ContextMode)
	require.Len(t, conf.Resources.Resources, 2)
	assert.Equal(t, "extra", conf.Resources.Resources[1].Name)
	assert.Equal(t, "main", conf.Resources.Resources[0].DBName)
	assert.True(t, filepath.IsAbs(conf.GetSourcePath()))
	assert.Equal(t, dfltTimeZone, conf.TimezoneLocation().String())
	assert.Nil(t, conf.Monitoring)
}

func TestValidateErrors(t *testing.T) {
	conf := LoadConfig(writeConf(t, testConf))
	conf.Redis = nil
	assert.Error(t, ValidateAndDefaults(conf))

	conf = LoadConfig(writeConf(t, testConf))
	conf.Resources = nil
	assert.Error(t, ValidateAndDefaults(conf))

	conf = LoadConfig(writeConf(t, testConf))
	conf.Pipeline = &options.Pipeline{ContextMode: "everywhere"}
	assert.Error(t, ValidateAndDefaults(conf))

	conf = LoadConfig(writeConf(t, testConf))
	conf.TimeZone = "Nowhere/Atlantis"
	assert.Error(t, ValidateAndDefaults(conf))

	conf = LoadConfig(writeConf(t, testConf))
	conf.GTestCacheSize = -1
	assert.Error(t, ValidateAndDefaults(conf))

	conf = LoadConfig(writeConf(t, testConf))
	conf.ServerWriteTimeoutSecs = 10
	conf.WorkerTimeoutSecs = 20
	assert.Error(t, ValidateAndDefaults(conf))
}
