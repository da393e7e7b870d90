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

package rdb

import (
	"coqpipe/merror"
	"coqpipe/results"
	"encoding/json"
	"time"

	"github.com/bytedance/sonic"
)

const (
	ResultTypeProcess     ResultType = "process"
	ResultTypeCellContent ResultType = "cellContent"
	ResultTypeHeaders     ResultType = "headers"
	ResultTypeError       ResultType = "error"
)

type ResultType string

func (rt ResultType) String() string {
	return string(rt)
}

// ----------------

type FuncResult interface {
	Err() error
	Type() ResultType
}

// WorkerResult is an envelope of a job result as transferred
// from a worker back to the API server
type WorkerResult struct {
	ID         string          `json:"id"`
	WorkerID   string          `json:"workerId"`
	Func       string          `json:"func"`
	Resource   string          `json:"resource,omitempty"`
	ResultType ResultType      `json:"resultType"`
	Value      json.RawMessage `json:"value"`

	// Error is set in case a job failed (or its result
	// could not be delivered)
	Error string `json:"error,omitempty"`

	// HasUserError distinguishes errors caused by invalid job
	// arguments from internal failures
	HasUserError bool      `json:"hasUserError"`
	ProcBegin    time.Time `json:"procBegin"`
	ProcEnd      time.Time `json:"procEnd"`
}

func (wr *WorkerResult) Err() error {
	if wr.Error == "" {
		return nil
	}
	if wr.HasUserError {
		return merror.InputError{Msg: wr.Error}
	}
	return merror.InternalError{Msg: wr.Error}
}

// JobLog creates a record of the job which produced the result
func (wr *WorkerResult) JobLog() results.JobLog {
	return results.JobLog{
		WorkerID: wr.WorkerID,
		Func:     wr.Func,
		Resource: wr.Resource,
		Begin:    wr.ProcBegin,
		End:      wr.ProcEnd,
		Err:      wr.Error,
	}
}

// AttachValue serializes a job result into the envelope
func (wr *WorkerResult) AttachValue(value FuncResult) error {
	data, err := sonic.Marshal(value)
	if err != nil {
		return err
	}
	wr.Value = data
	wr.ResultType = value.Type()
	if err := value.Err(); err != nil {
		wr.Error = err.Error()
		wr.HasUserError = merror.IsUserError(err)
	}
	return nil
}

func CreateWorkerResult(value FuncResult) (*WorkerResult, error) {
	ans := &WorkerResult{ProcEnd: time.Now()}
	if err := ans.AttachValue(value); err != nil {
		return nil, err
	}
	return ans, nil
}

// ErrorResult is a result of a job which could not be run at all
// (e.g. unknown job function, invalid arguments, worker panic)
type ErrorResult struct {
	Func  string `json:"func"`
	Error error  `json:"-"`
}

func (res ErrorResult) Err() error {
	return res.Error
}

func (res ErrorResult) Type() ResultType {
	return ResultTypeError
}

func (res ErrorResult) MarshalJSON() ([]byte, error) {
	var msg string
	if res.Error != nil {
		msg = res.Error.Error()
	}
	return sonic.Marshal(struct {
		Func       string     `json:"func"`
		ResultType ResultType `json:"resultType"`
		Error      string     `json:"error"`
	}{
		Func:       res.Func,
		ResultType: res.Type(),
		Error:      msg,
	})
}
