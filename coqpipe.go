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

package main

import (
	"context"
	"coqpipe/cnf"
	"coqpipe/general"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/czcorpus/cnc-gokit/collections"
	"github.com/czcorpus/cnc-gokit/logging"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	redisConnectionTestTimeout = 120 * time.Second
	corsAllowedHeaders         = "Content-Type, Content-Length, Accept-Encoding, Authorization, Accept, Origin, Cache-Control, X-Requested-With"
)

var (
	version   string
	buildDate string
	gitCommit string
)

type service interface {
	Start(ctx context.Context)
	Stop(ctx context.Context) error
}

func additionalLogEvents() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		logging.AddLogEvent(ctx, "userAgent", ctx.Request.UserAgent())
		if resource := ctx.Param("resourceId"); resource != "" {
			logging.AddLogEvent(ctx, "resourceId", resource)
		}
		ctx.Next()
	}
}

// corsMiddleware allows credentialed cross-origin requests from
// the listed origins only
func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		origin := ctx.GetHeader("Origin")
		if origin != "" && collections.SliceContains(allowedOrigins, origin) {
			hdr := ctx.Writer.Header()
			hdr.Set("Access-Control-Allow-Origin", origin)
			hdr.Set("Access-Control-Allow-Credentials", "true")
			hdr.Set("Access-Control-Allow-Headers", corsAllowedHeaders)
			hdr.Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")
		}
		if ctx.Request.Method == http.MethodOptions {
			ctx.AbortWithStatus(http.StatusNoContent)
			return
		}
		ctx.Next()
	}
}

func cleanVersionInfo(v string) string {
	return strings.TrimLeft(strings.Trim(v, "'"), "v")
}

func usage() {
	prog := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, "CoqPipe - processing of tabular corpus query results\n\nUsage:\n")
	for _, args := range []string{
		"server [config.json]",
		"worker [config.json]",
		"test [config.json]",
		"version",
	} {
		fmt.Fprintf(os.Stderr, "\t%s [options] %s\n", prog, args)
	}
	flag.PrintDefaults()
}

// setupLogging configures the global logger. Workers share
// a separate log file placed next to the server one.
func setupLogging(conf *cnf.Conf, action string) {
	if action != "worker" {
		logging.SetupLogging(logging.LoggingConf{Path: conf.LogFile, Level: conf.LogLevel})
		return
	}
	var logPath string
	if conf.LogFile != "" {
		logPath = filepath.Join(filepath.Dir(conf.LogFile), "worker.log")
	}
	logging.SetupLogging(logging.LoggingConf{Path: logPath, Level: conf.LogLevel})
	log.Logger = log.Logger.With().Str("worker", getWorkerID()).Logger()
}

func main() {
	ver := general.VersionInfo{
		Version:   cleanVersionInfo(version),
		BuildDate: cleanVersionInfo(buildDate),
		GitCommit: cleanVersionInfo(gitCommit),
	}
	flag.Usage = usage
	flag.Parse()
	action := flag.Arg(0)
	if action == "version" {
		fmt.Printf(
			"coqpipe %s\nbuild date: %s\nlast commit: %s\n",
			ver.Version, ver.BuildDate, ver.GitCommit,
		)
		return
	}
	run := map[string]func(conf *cnf.Conf){
		"server": func(conf *cnf.Conf) { runApiServer(conf, ver) },
		"worker": runWorker,
		"test":   func(conf *cnf.Conf) { log.Info().Msg("config OK") },
	}[action]
	if run == nil {
		usage()
		os.Exit(2)
	}

	conf := cnf.LoadConfig(flag.Arg(1))
	setupLogging(conf, action)
	if err := conf.LoadSubconfigs(); err != nil {
		log.Fatal().Err(err).Msg("failed to load subconfig(s)")
		return
	}
	if err := cnf.ValidateAndDefaults(conf); err != nil {
		log.Fatal().Err(err).Msg("failed to validate configuration")
		return
	}
	if action != "test" {
		log.Info().Str("version", ver.Version).Str("action", action).Msg("starting CoqPipe")
	}
	run(conf)
}
