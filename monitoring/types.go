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
	"time"

	"github.com/bytedance/sonic"
)

// WorkerLoad aggregates jobs of one or more workers
type WorkerLoad struct {
	NumJobs       int
	NumErrors     int
	NumWorkers    int
	TotalTimeSecs float64
	FirstUpdate   time.Time
	LastUpdate    time.Time
}

// AvgLoad is the share of the observed time a worker
// spent processing jobs
func (wl WorkerLoad) AvgLoad() float64 {
	span := wl.LastUpdate.Sub(wl.FirstUpdate).Seconds()
	if span <= 0 || wl.NumWorkers == 0 {
		return 0
	}
	return wl.TotalTimeSecs / span / float64(wl.NumWorkers)
}

func (wl WorkerLoad) ErrorRate() float64 {
	if wl.NumJobs == 0 {
		return 0
	}
	return float64(wl.NumErrors) / float64(wl.NumJobs)
}

func (wl WorkerLoad) AvgJobSecs() float64 {
	if wl.NumJobs == 0 {
		return 0
	}
	return wl.TotalTimeSecs / float64(wl.NumJobs)
}

type workerLoadView struct {
	NumJobs       int        `json:"numJobs"`
	NumErrors     int        `json:"numErrors"`
	NumWorkers    int        `json:"numWorkers"`
	TotalTimeSecs float64    `json:"totalTimeSecs"`
	AvgJobSecs    float64    `json:"avgJobSecs"`
	AvgLoad       float64    `json:"avgLoad"`
	ErrorRate     float64    `json:"errorRate"`
	FirstUpdate   *time.Time `json:"firstUpdate,omitempty"`
	LastUpdate    *time.Time `json:"lastUpdate,omitempty"`
}

func optTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func (wl WorkerLoad) MarshalJSON() ([]byte, error) {
	return sonic.Marshal(workerLoadView{
		NumJobs:       wl.NumJobs,
		NumErrors:     wl.NumErrors,
		NumWorkers:    wl.NumWorkers,
		TotalTimeSecs: wl.TotalTimeSecs,
		AvgJobSecs:    wl.AvgJobSecs(),
		AvgLoad:       wl.AvgLoad(),
		ErrorRate:     wl.ErrorRate(),
		FirstUpdate:   optTime(wl.FirstUpdate),
		LastUpdate:    optTime(wl.LastUpdate),
	})
}

// WorkersLoad maps worker IDs to their load
type WorkersLoad map[string]WorkerLoad

// SumLoad merges load of all the workers
func (wl WorkersLoad) SumLoad() WorkerLoad {
	var ans WorkerLoad
	for _, v := range wl {
		if ans.NumWorkers == 0 || v.FirstUpdate.Before(ans.FirstUpdate) {
			ans.FirstUpdate = v.FirstUpdate
		}
		if v.LastUpdate.After(ans.LastUpdate) {
			ans.LastUpdate = v.LastUpdate
		}
		ans.NumJobs += v.NumJobs
		ans.NumErrors += v.NumErrors
		ans.TotalTimeSecs += v.TotalTimeSecs
		ans.NumWorkers++
	}
	return ans
}

func (wl WorkersLoad) cleanOldRecords(now time.Time) {
	for k, v := range wl {
		if now.Sub(v.LastUpdate) > StaleWorkerLoadTTL {
			delete(wl, k)
		}
	}
}
