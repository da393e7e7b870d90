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
	"coqpipe/managers"
	"coqpipe/merror"
	"errors"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryEncoding(t *testing.T) {
	q, err := NewQuery(FuncCellContent, CellContentArgs{Resource: "corp", QueryID: "q1", Row: 1, Column: 3})
	require.NoError(t, err)
	q.Channel = "results:1"
	data, err := q.ToJSON()
	require.NoError(t, err)

	q2, err := DecodeQuery(data)
	require.NoError(t, err)
	assert.Equal(t, "results:1", q2.Channel)
	assert.Equal(t, FuncCellContent, q2.Func)
	var args CellContentArgs
	require.NoError(t, sonic.Unmarshal(q2.Args, &args))
	assert.Equal(t, 3, args.Column)

	_, err = DecodeQuery("{not json")
	assert.Error(t, err)
}

func TestWorkerResultErrors(t *testing.T) {
	wr, err := CreateWorkerResult(&HeadersResult{Headers: map[string]string{"a": "A"}})
	require.NoError(t, err)
	assert.NoError(t, wr.Err())
	assert.Equal(t, ResultTypeHeaders, wr.ResultType)
	assert.False(t, wr.ProcEnd.IsZero())

	wr, err = CreateWorkerResult(&ProcessResult{Error: merror.InputError{Msg: "bad filter"}})
	require.NoError(t, err)
	assert.True(t, wr.HasUserError)
	assert.True(t, merror.IsInputError(wr.Err()))
	assert.Equal(t, "bad filter", wr.Error)

	wr, err = CreateWorkerResult(&ProcessResult{Error: merror.ConfigurationError{Msg: "unknown db"}})
	require.NoError(t, err)
	assert.True(t, wr.HasUserError)

	wr, err = CreateWorkerResult(&CellContentResult{Error: errors.New("db failure")})
	require.NoError(t, err)
	assert.False(t, wr.HasUserError)
	var internal merror.InternalError
	assert.ErrorAs(t, wr.Err(), &internal)

	wr, err = CreateWorkerResult(ErrorResult{Func: "foo", Error: errors.New("boom")})
	require.NoError(t, err)
	assert.Equal(t, ResultTypeError, wr.ResultType)
	assert.JSONEq(t, `{"func": "foo", "resultType": "error", "error": "boom"}`, string(wr.Value))
}

func TestProcessResultJSON(t *testing.T) {
	res := &ProcessResult{
		Mode:    "TOKENS",
		Sorters: []managers.Sorter{{Column: "coq_word_label_1", Ascending: true, Position: 0}},
		Error:   merror.InputError{Msg: "oops"},
	}
	data, err := sonic.Marshal(res)
	require.NoError(t, err)
	var raw map[string]any
	require.NoError(t, sonic.Unmarshal(data, &raw))
	assert.Equal(t, "oops", raw["error"])
	assert.Equal(t, "process", raw["resultType"])
	assert.Equal(t, "TOKENS", raw["mode"])

	var decoded ProcessResult
	require.NoError(t, sonic.Unmarshal(data, &decoded))
	assert.Equal(t, res.Sorters, decoded.Sorters)
	assert.NoError(t, decoded.Err())
}

func TestConfDefaults(t *testing.T) {
	var conf *Conf
	assert.Error(t, conf.ValidateAndDefaults("redis"))
	conf = &Conf{}
	assert.Error(t, conf.ValidateAndDefaults("redis"))
	conf = &Conf{Host: "localhost"}
	require.NoError(t, conf.ValidateAndDefaults("redis"))
	assert.Equal(t, 6379, conf.Port)
	assert.Equal(t, "localhost:6379", conf.Addr())
	assert.Equal(t, DefaultQueueKey, conf.QueueKey)
	assert.Equal(t, DefaultQueryChannel, conf.ChannelQuery)
	assert.Equal(t, DefaultResultChannelPrefix, conf.ChannelResultPrefix)
	assert.Equal(t, DefaultResultExpiration, conf.ResultTTL())

	conf = &Conf{Host: "localhost", QueueKey: "q2", ResultTTLSecs: 30}
	require.NoError(t, conf.ValidateAndDefaults("redis"))
	assert.Equal(t, "q2", conf.QueueKey)
	assert.Equal(t, 30*time.Second, conf.ResultTTL())

	conf.ResultTTLSecs = -1
	assert.Error(t, conf.ValidateAndDefaults("redis"))
}
