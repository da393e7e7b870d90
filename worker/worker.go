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

package worker

import (
	"context"
	"coqpipe/corpus"
	"coqpipe/managers"
	"coqpipe/merror"
	"coqpipe/options"
	"coqpipe/rdb"
	"coqpipe/results"
	"errors"
	"fmt"
	"math/rand"
	"runtime/debug"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	DefaultTickerInterval = 2 * time.Second
)

type jobLogger interface {
	Log(rec results.JobLog)
}

// queryQueue is the part of rdb.Adapter a worker depends on
type queryQueue interface {
	DequeueQuery() (rdb.Query, error)
	SomeoneListens(query rdb.Query) (bool, error)
	PublishResult(channelName string, value *rdb.WorkerResult) error
}

// Worker takes queries from a queue, processes them using
// its managers and publishes results. Managers keep their
// state between queries so a worker is expected to run
// in a single goroutine.
type Worker struct {
	ID         string
	messages   <-chan *redis.Message
	radapter   queryQueue
	ticker     *time.Ticker
	jobLogger  jobLogger
	currJobLog *results.JobLog
	exit       chan struct{}
	done       chan struct{}

	resources *corpus.Registry
	managers  *managers.Registry
	defaults  *options.Pipeline
	handlers  map[string]jobHandler
}

func (w *Worker) publishResult(res rdb.FuncResult, channel string) error {
	ans, err := rdb.CreateWorkerResult(res)
	if err != nil {
		return err
	}
	ans.WorkerID = w.ID
	if w.currJobLog != nil {
		ans.Func = w.currJobLog.Func
		ans.Resource = w.currJobLog.Resource
		ans.ProcBegin = w.currJobLog.Begin
		w.currJobLog.End = ans.ProcEnd
		if res.Err() != nil {
			w.currJobLog.Err = res.Err().Error()
		}
		w.jobLogger.Log(*w.currJobLog)
		w.currJobLog = nil
	}
	return w.radapter.PublishResult(channel, ans)
}

func (w *Worker) sendPublishingErr(query rdb.Query, err error) {
	if err := w.publishResult(&rdb.ErrorResult{Func: query.Func, Error: err}, query.Channel); err != nil {
		log.Error().Err(err).Msg("failed to publish general publishing error")
	}
}

func decodeArgs[T any](query rdb.Query) (T, error) {
	var args T
	if err := sonic.Unmarshal(query.Args, &args); err != nil {
		return args, merror.InputError{
			Msg: fmt.Sprintf("invalid arguments of %s: %s", query.Func, err)}
	}
	return args, nil
}

// jobHandler evaluates a query of a specific function
type jobHandler func(query rdb.Query) rdb.FuncResult

// mkHandler creates a handler decoding query arguments of type T.
// Invalid arguments are reported via a result created by fail.
func mkHandler[T any, R rdb.FuncResult](run func(T) R, fail func(error) R) jobHandler {
	return func(query rdb.Query) rdb.FuncResult {
		args, err := decodeArgs[T](query)
		if err != nil {
			return fail(err)
		}
		return run(args)
	}
}

func (w *Worker) jobHandlers() map[string]jobHandler {
	failProcess := func(err error) *rdb.ProcessResult {
		return &rdb.ProcessResult{Error: err}
	}
	return map[string]jobHandler{
		rdb.FuncProcess: mkHandler(w.process, failProcess),
		rdb.FuncArrange: mkHandler(w.arrange, failProcess),
		rdb.FuncCellContent: mkHandler(
			w.cellContent,
			func(err error) *rdb.CellContentResult { return &rdb.CellContentResult{Error: err} },
		),
		rdb.FuncTranslateHeaders: mkHandler(
			w.translateHeaders,
			func(err error) *rdb.HeadersResult { return &rdb.HeadersResult{Error: err} },
		),
	}
}

func (w *Worker) runQueryProtected(query rdb.Query) (ansErr error) {
	defer func() {
		if r := recover(); r != nil {
			ansErr = merror.Recovered(r, string(debug.Stack()))
		}
	}()
	var ans rdb.FuncResult
	if handle, ok := w.handlers[query.Func]; ok {
		ans = handle(query)

	} else {
		ans = &rdb.ErrorResult{
			Func:  query.Func,
			Error: merror.InputError{Msg: fmt.Sprintf("unknown query function: %s", query.Func)},
		}
	}
	if err := w.publishResult(ans, query.Channel); err != nil {
		w.sendPublishingErr(query, err)
		return err
	}
	return nil
}

func (w *Worker) tryNextQuery() error {
	time.Sleep(time.Duration(rand.Intn(40)) * time.Millisecond)
	query, err := w.radapter.DequeueQuery()
	if errors.Is(err, rdb.ErrorEmptyQueue) {
		return nil

	} else if err != nil {
		return err
	}
	log.Debug().
		Str("channel", query.Channel).
		Str("func", query.Func).
		Msg("received query")

	isActive, err := w.radapter.SomeoneListens(query)
	if err != nil {
		return err
	}
	if !isActive {
		log.Warn().
			Str("func", query.Func).
			Str("channel", query.Channel).
			Msg("worker found an inactive query")
		return nil
	}

	w.currJobLog = &results.JobLog{
		WorkerID: w.ID,
		Func:     query.Func,
		Begin:    time.Now(),
	}

	err = w.runQueryProtected(query)
	var rcvErr merror.RecoveredError
	if errors.As(err, &rcvErr) {
		log.Error().
			Str("func", query.Func).
			Str("stack", rcvErr.Stack).
			Msg("worker panicked")
		if w.currJobLog == nil {
			// the panic occurred while publishing
			w.currJobLog = &results.JobLog{WorkerID: w.ID, Func: query.Func, Begin: time.Now()}
		}
		ans := &rdb.ErrorResult{
			Error: merror.InternalError{Msg: fmt.Sprintf("worker panicked: %s", rcvErr.Error())},
			Func:  query.Func,
		}
		if err := w.publishResult(ans, query.Channel); err != nil {
			return err
		}
		return nil
	}
	return err
}

// Listen processes queries until the worker is stopped
func (w *Worker) Listen() {
	defer close(w.done)
	for {
		select {
		case <-w.ticker.C:
			if err := w.tryNextQuery(); err != nil {
				log.Error().Err(err).Msg("failed to process query")
			}
		case <-w.exit:
			log.Info().Msg("worker exiting")
			return
		case msg, ok := <-w.messages:
			if !ok {
				w.messages = nil
				continue
			}
			if msg.Payload == rdb.MsgNewQuery {
				if err := w.tryNextQuery(); err != nil {
					log.Error().Err(err).Msg("failed to process query")
				}
			}
		}
	}
}

func (w *Worker) Start(ctx context.Context) {
	log.Info().Str("workerId", w.ID).Msg("starting worker")
	go w.Listen()
}

func (w *Worker) Stop(ctx context.Context) error {
	log.Warn().Str("workerId", w.ID).Msg("shutting down worker")
	w.ticker.Stop()
	close(w.exit)
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func NewWorker(
	workerID string,
	radapter queryQueue,
	messages <-chan *redis.Message,
	jobLogger jobLogger,
	resources *corpus.Registry,
	managers *managers.Registry,
	defaults *options.Pipeline,
) *Worker {
	if defaults == nil {
		defaults = options.Default()
	}
	w := &Worker{
		ID:        workerID,
		radapter:  radapter,
		messages:  messages,
		ticker:    time.NewTicker(DefaultTickerInterval),
		jobLogger: jobLogger,
		exit:      make(chan struct{}),
		done:      make(chan struct{}),
		resources: resources,
		managers:  managers,
		defaults:  defaults,
	}
	w.handlers = w.jobHandlers()
	return w
}
