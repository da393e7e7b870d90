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
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/czcorpus/cnc-gokit/collections"
	"github.com/rs/zerolog/log"
)

const (
	StaleWorkerLoadTTL = time.Hour * 24
	cleanupInterval    = 10 * time.Minute
	recentLogSize      = 100
)

var (
	ErrWorkerNotFound = errors.New("worker not found")
)

// StatusWriter stores job records to an external storage
type StatusWriter interface {
	Write(rec results.JobLog)
}

type NullStatusWriter struct{}

func (n *NullStatusWriter) Write(rec results.JobLog) {}

// CallStats summarizes recent calls of a job function
// on a single resource
type CallStats struct {
	Func            string  `json:"func"`
	Resource        string  `json:"resource"`
	NumCalls        int     `json:"numCalls"`
	NumErrors       int     `json:"numErrors"`
	AvgDurationSecs float64 `json:"avgDurationSecs"`
}

// RecordFilter selects job records. Empty fields match anything.
type RecordFilter struct {
	Resource   string
	Func       string
	ErrorsOnly bool
}

func (rf RecordFilter) matches(rec results.JobLog) bool {
	return (rf.Resource == "" || rf.Resource == rec.Resource) &&
		(rf.Func == "" || rf.Func == rec.Func) &&
		(!rf.ErrorsOnly || rec.Err != "")
}

// WorkerJobLogger collects records of jobs finished by workers.
// It keeps a total load per worker and a fixed-size log of
// the most recent jobs.
type WorkerJobLogger struct {
	loadData     WorkersLoad
	dataLock     sync.RWMutex
	recentLog    *collections.CircularList[results.JobLog]
	statusWriter StatusWriter
}

func (wl *WorkerLoad) add(rec results.JobLog) {
	if wl.NumJobs == 0 || rec.Begin.Before(wl.FirstUpdate) {
		wl.FirstUpdate = rec.Begin
	}
	if rec.End.After(wl.LastUpdate) {
		wl.LastUpdate = rec.End
	}
	wl.NumJobs++
	if rec.Err != "" {
		wl.NumErrors++
	}
	wl.TotalTimeSecs += rec.Duration().Seconds()
}

func (w *WorkerJobLogger) Log(rec results.JobLog) {
	w.dataLock.Lock()
	entry := w.loadData[rec.WorkerID]
	entry.NumWorkers = 1
	entry.add(rec)
	w.loadData[rec.WorkerID] = entry
	w.recentLog.Append(rec)
	w.dataLock.Unlock()
	w.statusWriter.Write(rec)
}

func (w *WorkerJobLogger) TotalLoad() WorkerLoad {
	w.dataLock.RLock()
	defer w.dataLock.RUnlock()
	return w.loadData.SumLoad()
}

// recentLoad aggregates recent records of a worker (or all
// the workers for an empty workerID)
func (w *WorkerJobLogger) recentLoad(workerID string) WorkerLoad {
	w.dataLock.RLock()
	defer w.dataLock.RUnlock()
	var ans WorkerLoad
	workers := collections.NewSet[string]()
	w.recentLog.ForEach(func(i int, item results.JobLog) bool {
		if workerID == "" || item.WorkerID == workerID {
			workers.Add(item.WorkerID)
			ans.add(item)
		}
		return true
	})
	ans.NumWorkers = workers.Size()
	return ans
}

func (w *WorkerJobLogger) RecentLoad() WorkerLoad {
	return w.recentLoad("")
}

func (w *WorkerJobLogger) TotalWorkerLoad(workerID string) (WorkerLoad, error) {
	w.dataLock.RLock()
	defer w.dataLock.RUnlock()
	ans, ok := w.loadData[workerID]
	if !ok {
		return ans, ErrWorkerNotFound
	}
	return ans, nil
}

func (w *WorkerJobLogger) RecentWorkerLoad(workerID string) (WorkerLoad, error) {
	ans := w.recentLoad(workerID)
	if ans.NumJobs == 0 {
		return ans, ErrWorkerNotFound
	}
	return ans, nil
}

// RecentRecords returns recent job records matching the filter
// (oldest first)
func (w *WorkerJobLogger) RecentRecords(filter RecordFilter) []results.JobLog {
	w.dataLock.RLock()
	defer w.dataLock.RUnlock()
	ans := make([]results.JobLog, 0, w.recentLog.Len())
	w.recentLog.ForEach(func(i int, item results.JobLog) bool {
		if filter.matches(item) {
			ans = append(ans, item)
		}
		return true
	})
	return ans
}

// RecentCallStats groups recent job records by function and resource
func (w *WorkerJobLogger) RecentCallStats() []CallStats {
	w.dataLock.RLock()
	defer w.dataLock.RUnlock()
	index := make(map[[2]string]*CallStats)
	w.recentLog.ForEach(func(i int, item results.JobLog) bool {
		key := [2]string{item.Func, item.Resource}
		st, ok := index[key]
		if !ok {
			st = &CallStats{Func: item.Func, Resource: item.Resource}
			index[key] = st
		}
		st.NumCalls++
		if item.Err != "" {
			st.NumErrors++
		}
		// sum for now, divided below
		st.AvgDurationSecs += item.Duration().Seconds()
		return true
	})
	ans := make([]CallStats, 0, len(index))
	for _, st := range index {
		st.AvgDurationSecs /= float64(st.NumCalls)
		ans = append(ans, *st)
	}
	sort.Slice(ans, func(i, j int) bool {
		if ans[i].Func != ans[j].Func {
			return ans[i].Func < ans[j].Func
		}
		return ans[i].Resource < ans[j].Resource
	})
	return ans
}

func (w *WorkerJobLogger) cleanup(now time.Time) {
	w.dataLock.Lock()
	defer w.dataLock.Unlock()
	w.loadData.cleanOldRecords(now)
}

// Start runs a periodic removal of workers which have
// not reported any job for a long time
func (w *WorkerJobLogger) Start(ctx context.Context) {
	log.Info().Msg("starting worker job logger")
	go func() {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				w.cleanup(now)
			}
		}
	}()
}

func (w *WorkerJobLogger) Stop(ctx context.Context) error {
	log.Info().Msg("shutting down worker job logger")
	return nil
}

func NewWorkerJobLogger(statusWriter StatusWriter) *WorkerJobLogger {
	if statusWriter == nil {
		statusWriter = &NullStatusWriter{}
	}
	return &WorkerJobLogger{
		loadData:     make(WorkersLoad),
		recentLog:    collections.NewCircularList[results.JobLog](recentLogSize),
		statusWriter: statusWriter,
	}
}
