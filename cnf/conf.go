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
	"coqpipe/corpus"
	"coqpipe/managers"
	"coqpipe/monitoring"
	"coqpipe/options"
	"coqpipe/rdb"
	"fmt"
	"os"
	"path/filepath"
	"time"
	_ "time/tzdata"

	"github.com/bytedance/sonic"
	"github.com/czcorpus/cnc-gokit/logging"
	"github.com/rs/zerolog/log"
)

const (
	dfltServerWriteTimeoutSecs = 30
	dfltListenAddress          = "127.0.0.1"
	dfltListenPort             = 8090
	dfltTimeZone               = "Europe/Prague"
)

type Conf struct {
	ListenAddress          string                 `json:"listenAddress"`
	PublicURL              string                 `json:"publicUrl"`
	ListenPort             int                    `json:"listenPort"`
	ServerReadTimeoutSecs  int                    `json:"serverReadTimeoutSecs"`
	ServerWriteTimeoutSecs int                    `json:"serverWriteTimeoutSecs"`
	WorkerTimeoutSecs      int                    `json:"workerTimeoutSecs"`
	CorsAllowedOrigins     []string               `json:"corsAllowedOrigins"`
	Resources              *corpus.ResourcesSetup `json:"resources"`
	Redis                  *rdb.Conf              `json:"redis"`
	LogFile                string                 `json:"logFile"`
	LogLevel               logging.LogLevel       `json:"logLevel"`
	TimeZone               string                 `json:"timeZone"`

	// Monitoring enables export of job statistics to TimescaleDB
	Monitoring *monitoring.Conf `json:"monitoring"`

	// Pipeline contains default processing options. Clients
	// may override them per query.
	Pipeline *options.Pipeline `json:"pipeline"`

	// GTestCacheSize is a capacity of the G² value cache
	// of each contrast manager
	GTestCacheSize int `json:"gTestCacheSize"`

	srcPath string
}

func (conf *Conf) LoadSubconfigs() error {
	if conf.Resources != nil && conf.Resources.ConfFilesDir != "" {
		if err := conf.Resources.Resources.Load(conf.Resources.ConfFilesDir); err != nil {
			return fmt.Errorf("failed to load subconfig for `resources`: %w", err)
		}
	}
	return nil
}

func (conf *Conf) IsDebugMode() bool {
	return conf.LogLevel == "debug"
}

func (conf *Conf) TimezoneLocation() *time.Location {
	// we can ignore the error here as ValidateAndDefaults
	// already tested the location
	loc, _ := time.LoadLocation(conf.TimeZone)
	return loc
}

func (conf *Conf) GetSourcePath() string {
	if filepath.IsAbs(conf.srcPath) {
		return conf.srcPath
	}
	var cwd string
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "[failed to get working dir]"
	}
	return filepath.Join(cwd, conf.srcPath)
}

func LoadConfig(path string) *Conf {
	if path == "" {
		log.Fatal().Msg("Cannot load config - path not specified")
	}
	rawData, err := os.ReadFile(path)
	if err != nil {
		log.Fatal().Err(err).Msg("Cannot load config")
	}
	var conf Conf
	conf.srcPath = path
	err = sonic.Unmarshal(rawData, &conf)
	if err != nil {
		log.Fatal().Err(err).Msg("Cannot load config")
	}
	return &conf
}

// setDefault fills in a default value of a missing
// configuration item
func setDefault[T comparable](value *T, dflt T, key string) {
	var zero T
	if *value == zero {
		*value = dflt
		log.Warn().
			Str("key", key).
			Interface("value", dflt).
			Msg("configuration item not specified, using default")
	}
}

func (conf *Conf) validateServer() error {
	setDefault(&conf.ListenAddress, dfltListenAddress, "listenAddress")
	setDefault(&conf.ListenPort, dfltListenPort, "listenPort")
	setDefault(&conf.ServerWriteTimeoutSecs, dfltServerWriteTimeoutSecs, "serverWriteTimeoutSecs")
	setDefault(&conf.WorkerTimeoutSecs, conf.ServerWriteTimeoutSecs, "workerTimeoutSecs")
	setDefault(
		&conf.PublicURL,
		fmt.Sprintf("http://%s:%d", conf.ListenAddress, conf.ListenPort),
		"publicUrl",
	)
	if conf.WorkerTimeoutSecs > conf.ServerWriteTimeoutSecs {
		return fmt.Errorf("workerTimeoutSecs cannot exceed serverWriteTimeoutSecs")
	}
	setDefault(&conf.TimeZone, dfltTimeZone, "timeZone")
	if _, err := time.LoadLocation(conf.TimeZone); err != nil {
		return fmt.Errorf("invalid time zone: %w", err)
	}
	return nil
}

func (conf *Conf) validateProcessing() error {
	if conf.Pipeline == nil {
		conf.Pipeline = options.Default()
		log.Warn().Msg("pipeline defaults not specified, all the optional processing disabled")
	}
	if err := conf.Pipeline.ValidateAndDefaults("pipeline"); err != nil {
		return err
	}
	if conf.GTestCacheSize < 0 {
		return fmt.Errorf("gTestCacheSize must be positive")
	}
	setDefault(&conf.GTestCacheSize, managers.DfltGTestCacheSize, "gTestCacheSize")
	return nil
}

// ValidateAndDefaults checks the configuration and fills in
// default values of missing optional items
func ValidateAndDefaults(conf *Conf) error {
	for _, validate := range []func() error{
		conf.validateServer,
		func() error { return conf.Redis.ValidateAndDefaults("redis") },
		func() error { return conf.Resources.ValidateAndDefaults("resources") },
		conf.validateProcessing,
	} {
		if err := validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
	}
	return nil
}
