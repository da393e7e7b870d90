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

package monitoring

import (
	"context"
	"coqpipe/results"
	"time"

	"github.com/czcorpus/hltscl"
	"github.com/rs/zerolog/log"
)

/*
Expected tables:

create table coqpipe_jobs (
  "time" timestamp with time zone NOT NULL,
  worker_id text,
  func text,
  resource text,
  duration_secs float,
  failed int
);
select create_hypertable('coqpipe_jobs', 'time');

create table coqpipe_job_errors (
  "time" timestamp with time zone NOT NULL,
  func text,
  resource text,
  message text
);
select create_hypertable('coqpipe_job_errors', 'time');

*/

const (
	jobsTable      = "coqpipe_jobs"
	jobErrorsTable = "coqpipe_job_errors"
	tsWriteTimeout = 20 * time.Second
)

// Conf configures an optional export of job statistics
type Conf struct {
	DB hltscl.PgConf `json:"db"`
}

type tsTable struct {
	name   string
	writer *hltscl.TableWriter
	data   chan<- hltscl.Entry
	errs   <-chan hltscl.WriteError
}

func (t *tsTable) watchErrors(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-t.errs:
			if !ok {
				return
			}
			log.Error().
				Err(err.Err).
				Str("entry", err.Entry.String()).
				Str("table", t.name).
				Msg("failed to write job statistics")
		}
	}
}

// TimescaleDBWriter exports finished jobs to TimescaleDB.
// Each job is one row in the jobs table, failed jobs are
// also stored along with their error message.
type TimescaleDBWriter struct {
	jobs     *tsTable
	failures *tsTable
	location *time.Location
}

func (sw *TimescaleDBWriter) Start(ctx context.Context) {
	log.Info().Msg("starting job statistics export")
	go sw.jobs.watchErrors(ctx)
	go sw.failures.watchErrors(ctx)
}

func (sw *TimescaleDBWriter) Stop(ctx context.Context) error {
	log.Warn().Msg("stopping job statistics export")
	return nil
}

func (sw *TimescaleDBWriter) Write(item results.JobLog) {
	var failed int
	if item.Err != "" {
		failed = 1
	}
	ts := item.End.In(sw.location)
	sw.jobs.data <- *sw.jobs.writer.NewEntry(ts).
		Str("worker_id", item.WorkerID).
		Str("func", item.Func).
		Str("resource", item.Resource).
		Float("duration_secs", item.Duration().Seconds()).
		Int("failed", failed)
	if failed > 0 {
		sw.failures.data <- *sw.failures.writer.NewEntry(ts).
			Str("func", item.Func).
			Str("resource", item.Resource).
			Str("message", item.Err)
	}
}

func NewTimescaleDBWriter(
	ctx context.Context,
	conf hltscl.PgConf,
	tz *time.Location,
) (*TimescaleDBWriter, error) {
	conn, err := hltscl.CreatePool(conf)
	if err != nil {
		return nil, err
	}
	mkTable := func(name string) *tsTable {
		writer := hltscl.NewTableWriter(conn, name, "time", tz)
		data, errs := writer.Activate(ctx, hltscl.WithTimeout(tsWriteTimeout))
		return &tsTable{name: name, writer: writer, data: data, errs: errs}
	}
	return &TimescaleDBWriter{
		jobs:     mkTable(jobsTable),
		failures: mkTable(jobErrorsTable),
		location: tz,
	}, nil
}
