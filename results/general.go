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

package results

import (
	"time"
)

// JobLog describes a single job processed by a worker
type JobLog struct {
	WorkerID string    `json:"workerId"`
	Func     string    `json:"func"`
	Resource string    `json:"resource"`
	Begin    time.Time `json:"begin"`
	End      time.Time `json:"end"`
	Err      string    `json:"error,omitempty"`
}

func (jl *JobLog) Duration() time.Duration {
	return jl.End.Sub(jl.Begin)
}
