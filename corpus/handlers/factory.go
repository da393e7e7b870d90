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

package handlers

import (
	"coqpipe/corpus"
	"coqpipe/rdb"
	"coqpipe/results"
	"time"
)

const (
	DefaultWorkerTimeout = 60 * time.Second
)

type queryPublisher interface {
	PublishQuery(query rdb.Query) (<-chan *rdb.WorkerResult, error)
}

type jobLogger interface {
	Log(rec results.JobLog)
}

type Actions struct {
	conf          *corpus.ResourcesSetup
	radapter      queryPublisher
	jobLogger     jobLogger
	workerTimeout time.Duration
}

func NewActions(
	conf *corpus.ResourcesSetup,
	radapter queryPublisher,
	jobLogger jobLogger,
	workerTimeout time.Duration,
) *Actions {
	if workerTimeout <= 0 {
		workerTimeout = DefaultWorkerTimeout
	}
	return &Actions{
		conf:          conf,
		radapter:      radapter,
		jobLogger:     jobLogger,
		workerTimeout: workerTimeout,
	}
}
