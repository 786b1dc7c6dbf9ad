// Copyright 2019 Google Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package format defines the error kinds shared by the record codecs.
//
// Every decoding failure is reported as an *Error whose Kind is one of the
// sentinel values below, so callers can test for a kind with errors.Is and
// still recover the offending line and its ordinal position.
package format

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedLine reports a line that does not match the field grammar.
	ErrMalformedLine = errors.New("malformed line")
	// ErrStructuralMismatch reports a record whose lines are individually valid
	// but inconsistent with each other (block order, sequence lengths, spans).
	ErrStructuralMismatch = errors.New("structural mismatch")
	// ErrCoordinateInvariant reports a decoded interval with start > end.
	ErrCoordinateInvariant = errors.New("coordinate invariant violation")
	// ErrUnexpectedEOF reports end of input inside a record.
	ErrUnexpectedEOF = errors.New("unexpected end of input")
	// ErrSourceFailure reports an I/O failure of the underlying byte source.
	ErrSourceFailure = errors.New("source failure")
)

// Error describes a decoding failure.  Line is the 1-based ordinal of the
// offending line, or zero when the failure is not tied to a line.
type Error struct {
	Kind error
	Line int
	Text string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Line > 0 {
		msg = fmt.Sprintf("line %d: %s", e.Line, msg)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Text != "" {
		msg = fmt.Sprintf("%s: %q", msg, e.Text)
	}
	return msg
}

// Is reports whether target is the kind of e.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// Malformed returns an ErrMalformedLine error for text.
func Malformed(text string, err error) *Error {
	return &Error{Kind: ErrMalformedLine, Text: text, Err: err}
}

// Mismatch returns an ErrStructuralMismatch error with a formatted cause.
func Mismatch(format string, args ...interface{}) *Error {
	return &Error{Kind: ErrStructuralMismatch, Err: fmt.Errorf(format, args...)}
}

// UnexpectedEOF returns an ErrUnexpectedEOF error describing what was missing.
func UnexpectedEOF(context string) *Error {
	return &Error{Kind: ErrUnexpectedEOF, Err: errors.New(context)}
}

// AtLine sets the line ordinal of err if it is an *Error without one and
// returns err.
func AtLine(err error, line int) error {
	var e *Error
	if errors.As(err, &e) && e.Line == 0 {
		e.Line = line
	}
	return err
}

// Kind returns a short name for the kind of err, or "Internal" when err is not
// a decoding error.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrMalformedLine):
		return "MalformedLine"
	case errors.Is(err, ErrStructuralMismatch):
		return "StructuralMismatch"
	case errors.Is(err, ErrCoordinateInvariant):
		return "CoordinateInvariantViolation"
	case errors.Is(err, ErrUnexpectedEOF):
		return "UnexpectedEndOfInput"
	case errors.Is(err, ErrSourceFailure):
		return "SourceFailure"
	}
	return "Internal"
}

// LineOf returns the line ordinal recorded in err, or zero.
func LineOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Line
	}
	return 0
}

// IsDecodingError reports whether err is a decoding failure.
func IsDecodingError(err error) bool {
	var e *Error
	return errors.As(err, &e)
}
