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

package functions

import (
	"coqpipe/merror"
	"coqpipe/table"
	"fmt"
	"runtime/debug"

	"github.com/rs/zerolog/log"
)

// Status describes what happened to a function during List.Apply
type Status int

const (
	// StatusUpdated means the function produced its column(s)
	StatusUpdated Status = iota

	// StatusSkipped means some input column was missing and
	// the function has been removed from the list
	StatusSkipped

	// StatusDropped means the evaluation failed and the function
	// has been removed from the list
	StatusDropped
)

func (s Status) String() string {
	switch s {
	case StatusUpdated:
		return "updated"
	case StatusSkipped:
		return "skipped"
	case StatusDropped:
		return "dropped"
	}
	return "unknown"
}

// Outcome is a result of applying a single function
type Outcome struct {
	Function Function
	Status   Status
	Err      error
}

// Exception is a recorded function failure
type Exception struct {
	Label   string `json:"label"`
	Message string `json:"message"`
	Err     error  `json:"-"`
	Stack   string `json:"-"`
}

// List is an ordered collection of functions with unique IDs
type List struct {
	items      []Function
	exceptions []Exception
	outcomes   []Outcome
}

func evaluateSafe(fn Function, t *table.Table, env *Env) (ans *table.Table, stack string, err error) {
	defer func() {
		if r := recover(); r != nil {
			stack = string(debug.Stack())
			err = merror.Recovered(r, stack)
			ans = nil
		}
	}()
	ans, err = fn.Evaluate(t, env)
	return
}

func (fl *List) hasColumns(fn Function, t *table.Table) bool {
	for _, c := range fn.Columns() {
		if !t.Has(c) {
			return false
		}
	}
	return true
}

func (fl *List) merge(fn Function, t, val *table.Table) error {
	if val == nil {
		return fmt.Errorf("function %s produced no data", fn.ID())
	}
	if fn.SingleColumn() {
		if val.NumColumns() != 1 {
			return fmt.Errorf("function %s produced %d columns instead of one", fn.ID(), val.NumColumns())
		}
		s := val.Col(val.Columns()[0])
		if s.Len() != t.Len() {
			return fmt.Errorf("%w (function %s)", table.ErrLengthMismatch, fn.ID())
		}
		return t.Set(s.Renamed(fn.ID()))
	}
	if val.NumColumns() > 0 && val.Len() != t.Len() {
		return fmt.Errorf("%w (function %s)", table.ErrLengthMismatch, fn.ID())
	}
	return t.HConcat(val)
}

// Apply evaluates all the functions and adds their results to t.
// A function with a missing input column is removed from the list
// without a notice. A failing function is removed too, the failure
// is logged and stored (see Exceptions). A failure never stops the
// processing of the remaining functions.
//
// The dropOnNA argument is the flag accumulated so far by the caller.
// The returned value is true unless all the applied functions want
// to keep NA rows. A global DropOnNA option always produces true.
func (fl *List) Apply(t *table.Table, env *Env, dropOnNA bool) (*table.Table, bool) {
	fl.exceptions = []Exception{}
	fl.outcomes = make([]Outcome, 0, len(fl.items))
	snapshot := append([]Function(nil), fl.items...)
	for _, fn := range snapshot {
		if !fl.hasColumns(fn, t) {
			fl.removeItem(fn)
			fl.outcomes = append(fl.outcomes, Outcome{Function: fn, Status: StatusSkipped})
			continue
		}
		if env != nil && env.Options != nil && env.Options.DropOnNA {
			dropOnNA = true

		} else {
			dropOnNA = dropOnNA && fn.DropOnNA()
		}
		val, stack, err := evaluateSafe(fn, t, env)
		if err == nil {
			err = fl.merge(fn, t, val)
		}
		if err != nil {
			fl.removeItem(fn)
			label := fmt.Sprintf("Error during function call %s", fn.Label(env))
			log.Error().Err(err).Str("function", fn.ID()).Msg(label)
			fl.exceptions = append(fl.exceptions, Exception{Label: label, Message: err.Error(), Err: err, Stack: stack})
			fl.outcomes = append(fl.outcomes, Outcome{Function: fn, Status: StatusDropped, Err: err})
			continue
		}
		fl.outcomes = append(fl.outcomes, Outcome{Function: fn, Status: StatusUpdated})
	}
	return t, dropOnNA
}

// Exceptions returns failures recorded by the last Apply call
func (fl *List) Exceptions() []Exception {
	return fl.exceptions
}

// Outcomes returns per-function results of the last Apply call
func (fl *List) Outcomes() []Outcome {
	return fl.outcomes
}

func (fl *List) List() []Function {
	return fl.items
}

func (fl *List) SetList(items []Function) {
	fl.items = append([]Function(nil), items...)
}

func (fl *List) Len() int {
	return len(fl.items)
}

func (fl *List) FindFunction(id string) Function {
	for _, fn := range fl.items {
		if fn.ID() == id {
			return fn
		}
	}
	return nil
}

func (fl *List) HasFunction(fn Function) bool {
	return fl.FindFunction(fn.ID()) != nil
}

// AddFunction appends fn unless a function with the same ID
// is already present
func (fl *List) AddFunction(fn Function) {
	if fl.HasFunction(fn) {
		log.Warn().Str("function", fn.ID()).Msg("function duplicate not added")
		return
	}
	fl.items = append(fl.items, fn)
}

func (fl *List) indexOf(fn Function) int {
	for i, v := range fl.items {
		if v == fn {
			return i
		}
	}
	return -1
}

func (fl *List) removeItem(fn Function) bool {
	ix := fl.indexOf(fn)
	if ix < 0 {
		return false
	}
	fl.items = append(fl.items[:ix], fl.items[ix+1:]...)
	return true
}

// RemoveFunction removes fn and then any other function
// sharing its ID
func (fl *List) RemoveFunction(fn Function) {
	fl.removeItem(fn)
	for {
		other := fl.FindFunction(fn.ID())
		if other == nil {
			return
		}
		fl.removeItem(other)
	}
}

// ReplaceFunction puts newFn at the position of oldFn. Functions
// following it which read the column of oldFn are updated
// to read the column of newFn.
func (fl *List) ReplaceFunction(oldFn, newFn Function) error {
	ix := fl.indexOf(oldFn)
	if ix < 0 {
		return fmt.Errorf("function %s not found", oldFn.ID())
	}
	fl.items[ix] = newFn
	for _, fn := range fl.items[ix:] {
		cols := fn.Columns()
		changed := false
		updated := make([]string, len(cols))
		for i, c := range cols {
			if c == oldFn.ID() {
				updated[i] = newFn.ID()
				changed = true

			} else {
				updated[i] = c
			}
		}
		if changed {
			fn.SetColumns(updated)
		}
	}
	return nil
}

// Copy creates a new list with the same functions
func (fl *List) Copy() *List {
	ans := NewList()
	ans.SetList(fl.items)
	return ans
}

func NewList(items ...Function) *List {
	ans := &List{}
	for _, fn := range items {
		ans.AddFunction(fn)
	}
	return ans
}
