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
	"coqpipe/corpus"
	"coqpipe/managers"
	"coqpipe/rdb"
	"coqpipe/results"
	"coqpipe/worker"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/rs/zerolog/log"
)

// getWorkerID uses the WORKER_ID env. variable with
// the process ID as a fallback
func getWorkerID() string {
	if id, ok := os.LookupEnv("WORKER_ID"); ok && id != "" {
		return id
	}
	return strconv.Itoa(os.Getpid())
}

// zerologJobLogger writes a record of each finished job
// to the application log
type zerologJobLogger struct{}

func (l *zerologJobLogger) Log(rec results.JobLog) {
	evt := log.Info()
	if rec.Err != "" {
		evt = log.Warn().Str("error", rec.Err)
	}
	evt.
		Str("workerId", rec.WorkerID).
		Str("func", rec.Func).
		Str("resource", rec.Resource).
		Dur("duration", rec.Duration()).
		Msg("job finished")
}

func runWorker(conf *cnf.Conf) {
	workerID := getWorkerID()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	resources, err := corpus.OpenRegistry(conf.Resources)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open corpus resources")
		return
	}
	defer resources.Close()

	radapter := rdb.NewAdapter(conf.Redis, ctx)
	defer radapter.Close()
	err = radapter.TestConnection(redisConnectionTestTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}

	ch := radapter.Subscribe()
	wrk := worker.NewWorker(
		workerID,
		radapter,
		ch,
		&zerologJobLogger{},
		resources,
		managers.NewRegistry(conf.GTestCacheSize),
		conf.Pipeline,
	)
	runServices(ctx, []service{wrk})
}
