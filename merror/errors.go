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

// Package merror defines error types distinguishing problems caused
// by clients (bad input, inconsistent configuration) from internal
// failures. All of them serialize to JSON as a plain message.
package merror

import (
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
)

func marshalMsg(msg string) ([]byte, error) {
	if msg == "" {
		return []byte("null"), nil
	}
	return sonic.Marshal(msg)
}

// InputError represents invalid data provided by a client
type InputError struct {
	Msg string
}

func (err InputError) Error() string                { return err.Msg }
func (err InputError) MarshalJSON() ([]byte, error) { return marshalMsg(err.Msg) }

type InternalError struct {
	Msg string
}

func (err InternalError) Error() string                { return err.Msg }
func (err InternalError) MarshalJSON() ([]byte, error) { return marshalMsg(err.Msg) }

// ConfigurationError signals an inconsistency between processed
// data and configured resources (e.g. a column referring to an unknown
// database). Such errors abort the whole processing.
type ConfigurationError struct {
	Msg string
}

func (err ConfigurationError) Error() string                { return err.Msg }
func (err ConfigurationError) MarshalJSON() ([]byte, error) { return marshalMsg(err.Msg) }

// RecoveredError wraps a panic recovered during a function
// evaluation or a worker job
type RecoveredError struct {
	Msg   string
	Stack string
}

func (err RecoveredError) Error() string                { return err.Msg }
func (err RecoveredError) MarshalJSON() ([]byte, error) { return marshalMsg(err.Msg) }

// Recovered converts a value obtained from recover()
func Recovered(v any, stack string) RecoveredError {
	var msg string
	switch tv := v.(type) {
	case error:
		msg = fmt.Sprintf("recovered panic: %s", tv)
	case string:
		msg = fmt.Sprintf("recovered panic: %s", tv)
	default:
		msg = fmt.Sprintf("recovered panic from a value of type %T", v)
	}
	return RecoveredError{Msg: msg, Stack: stack}
}

func IsConfigurationError(err error) bool {
	var cErr ConfigurationError
	return errors.As(err, &cErr)
}

func IsInputError(err error) bool {
	var iErr InputError
	return errors.As(err, &iErr)
}

// IsUserError tells whether the error is something a client can fix
func IsUserError(err error) bool {
	return IsInputError(err) || IsConfigurationError(err)
}
