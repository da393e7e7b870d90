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
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	// MsgNewQuery notifies workers there is a new query in the queue
	MsgNewQuery = "newQuery"

	DefaultQueueKey            = "coqpipeQueue"
	DefaultResultChannelPrefix = "coqpipeResults"
	DefaultQueryChannel        = "coqpipeQueries"
	DefaultResultExpiration    = 10 * time.Minute
	connectionTestInterval     = 2 * time.Second
)

var (
	ErrorEmptyQueue = errors.New("no queries in the queue")
)

// Query is a job for workers. Channel identifies a Redis channel
// where the key of the result will be published.
type Query struct {
	Channel string          `json:"channel"`
	Func    string          `json:"func"`
	Args    json.RawMessage `json:"args"`
}

func (q Query) ToJSON() (string, error) {
	ans, err := sonic.MarshalString(q)
	if err != nil {
		return "", fmt.Errorf("failed to encode query %s: %w", q.Func, err)
	}
	return ans, nil
}

func DecodeQuery(q string) (Query, error) {
	var ans Query
	err := sonic.UnmarshalString(q, &ans)
	return ans, err
}

// NewQuery creates a query with arguments encoded to JSON
func NewQuery(fn string, args any) (Query, error) {
	data, err := sonic.Marshal(args)
	if err != nil {
		return Query{}, fmt.Errorf("failed to encode arguments of %s: %w", fn, err)
	}
	return Query{Func: fn, Args: data}, nil
}

// Adapter connects the API server and workers via a Redis
// queue and pub/sub channels
type Adapter struct {
	ctx  context.Context
	c    *redis.Client
	conf *Conf
}

// TestConnection pings Redis until it responds or the timeout
// is reached
func (a *Adapter) TestConnection(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(a.ctx, timeout)
	defer cancel()
	tick := time.NewTicker(connectionTestInterval)
	defer tick.Stop()
	for {
		err := a.c.Ping(ctx).Err()
		if err == nil {
			log.Info().Str("addr", a.conf.Addr()).Msg("connection to Redis OK")
			return nil
		}
		log.Error().Err(err).Msg("failed to ping Redis, will try again")
		select {
		case <-ctx.Done():
			return fmt.Errorf("failed to connect to Redis within %s: %w", timeout, ctx.Err())
		case <-tick.C:
		}
	}
}

// SomeoneListens tells whether the client which published
// the query still waits for its result
func (a *Adapter) SomeoneListens(query Query) (bool, error) {
	cmd := a.c.PubSubNumSub(a.ctx, query.Channel)
	if err := cmd.Err(); err != nil {
		return false, fmt.Errorf("failed to check channel listeners: %w", err)
	}
	return cmd.Val()[query.Channel] > 0, nil
}

// fetchResult loads a result stored under the key
// announced via a result channel
func (a *Adapter) fetchResult(key string) *WorkerResult {
	ans := new(WorkerResult)
	data, err := a.c.Get(a.ctx, key).Bytes()
	if err == nil {
		err = sonic.Unmarshal(data, ans)
	}
	if err != nil {
		ans.Error = fmt.Sprintf("failed to fetch result: %s", err)
	}
	return ans
}

func (a *Adapter) awaitResult(sub *redis.PubSub, ans chan<- *WorkerResult) {
	defer close(ans)
	defer sub.Close()
	select {
	case msg, ok := <-sub.Channel():
		if !ok {
			ans <- &WorkerResult{Error: "result channel closed unexpectedly"}
			return
		}
		ans <- a.fetchResult(msg.Payload)
	case <-a.ctx.Done():
		ans <- &WorkerResult{Error: a.ctx.Err().Error()}
	}
}

// PublishQuery enqueues a query, notifies workers and returns
// a channel the result will be sent to
func (a *Adapter) PublishQuery(query Query) (<-chan *WorkerResult, error) {
	query.Channel = fmt.Sprintf("%s:%s", a.conf.ChannelResultPrefix, uuid.New())
	log.Debug().
		Str("channel", query.Channel).
		Str("func", query.Func).
		Msg("publishing query")
	msg, err := query.ToJSON()
	if err != nil {
		return nil, err
	}
	// subscription must exist before any worker can see the query
	sub := a.c.Subscribe(a.ctx, query.Channel)
	if _, err := sub.Receive(a.ctx); err != nil {
		sub.Close()
		return nil, fmt.Errorf("failed to subscribe result channel: %w", err)
	}
	if err := a.c.LPush(a.ctx, a.conf.QueueKey, msg).Err(); err != nil {
		sub.Close()
		return nil, fmt.Errorf("failed to enqueue query: %w", err)
	}
	ans := make(chan *WorkerResult, 1)
	go a.awaitResult(sub, ans)
	return ans, a.c.Publish(a.ctx, a.conf.ChannelQuery, MsgNewQuery).Err()
}

func (a *Adapter) DequeueQuery() (Query, error) {
	data, err := a.c.RPop(a.ctx, a.conf.QueueKey).Result()
	if errors.Is(err, redis.Nil) {
		return Query{}, ErrorEmptyQueue

	} else if err != nil {
		return Query{}, fmt.Errorf("failed to dequeue query: %w", err)
	}
	q, err := DecodeQuery(data)
	if err != nil {
		return Query{}, fmt.Errorf("failed to deserialize query: %w", err)
	}
	return q, nil
}

// PublishResult stores a result under the channel name
// and announces it via the channel
func (a *Adapter) PublishResult(channelName string, value *WorkerResult) error {
	log.Debug().
		Str("channel", channelName).
		Str("resultType", value.ResultType.String()).
		Msg("publishing result")
	data, err := sonic.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to serialize result: %w", err)
	}
	if err := a.c.Set(a.ctx, channelName, data, a.conf.ResultTTL()).Err(); err != nil {
		return fmt.Errorf("failed to store result: %w", err)
	}
	return a.c.Publish(a.ctx, channelName, channelName).Err()
}

// Subscribe listens for notifications about new queries
func (a *Adapter) Subscribe() <-chan *redis.Message {
	return a.c.Subscribe(a.ctx, a.conf.ChannelQuery).Channel()
}

func (a *Adapter) Close() error {
	return a.c.Close()
}

// NewAdapter creates a Redis adapter. The configuration is expected
// to be already validated.
func NewAdapter(conf *Conf, ctx context.Context) *Adapter {
	return &Adapter{
		ctx:  ctx,
		conf: conf,
		c: redis.NewClient(&redis.Options{
			Addr:     conf.Addr(),
			Password: conf.Password,
			DB:       conf.DB,
		}),
	}
}
