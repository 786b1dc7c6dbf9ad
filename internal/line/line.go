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

// Package line provides a buffered, forward-only line decoder.
package line

import (
	"bytes"
	"io"

	"github.com/googlegenomics/seqformats/internal/format"
)

// DefaultBufferSize is the buffer capacity used when none is specified.
const DefaultBufferSize = 4 * 1024

// The number of consecutive empty reads tolerated before giving up on a source.
const maxEmptyReads = 100

// Decoder splits a byte source into lines.  Lines are returned in source order
// with the terminating newline (and a preceding carriage return) removed.  A
// Decoder owns its buffer and must not be shared between goroutines.
type Decoder struct {
	r   io.Reader
	buf []byte
	// Unconsumed bytes are buf[start:end].
	start, end int
	eof        bool
	err        error
	line       int
}

// NewDecoder returns a Decoder reading from r with a buffer of size bytes.  If
// size is not positive, DefaultBufferSize is used.
func NewDecoder(r io.Reader, size int) *Decoder {
	if size <= 0 {
		size = DefaultBufferSize
	}
	return &Decoder{r: r, buf: make([]byte, size)}
}

// Next returns the next line.  At the end of input it returns io.EOF.  If the
// source fails, Next returns an error of kind format.ErrSourceFailure and every
// later call returns the same error.
func (d *Decoder) Next() (string, error) {
	if d.err != nil {
		return "", d.err
	}

	// Lines longer than the buffer spill into partial across refills.
	var partial []byte
	for {
		if i := bytes.IndexByte(d.buf[d.start:d.end], '\n'); i >= 0 {
			text := d.buf[d.start : d.start+i]
			d.start += i + 1
			return d.deliver(partial, text), nil
		}

		if d.eof {
			if d.start == d.end && len(partial) == 0 {
				d.err = io.EOF
				return "", d.err
			}
			text := d.buf[d.start:d.end]
			d.start = d.end
			return d.deliver(partial, text), nil
		}

		if err := d.fill(&partial); err != nil {
			d.err = &format.Error{Kind: format.ErrSourceFailure, Line: d.line + 1, Err: err}
			return "", d.err
		}
	}
}

// Line returns the 1-based ordinal of the line most recently returned by Next.
func (d *Decoder) Line() int {
	return d.line
}

// fill shifts the unconsumed bytes to the front of the buffer and reads more
// data after them.  If the buffer is already full of unterminated data, that
// data is moved into partial first.
func (d *Decoder) fill(partial *[]byte) error {
	if d.start > 0 {
		d.end = copy(d.buf, d.buf[d.start:d.end])
		d.start = 0
	}
	if d.end == len(d.buf) {
		*partial = append(*partial, d.buf...)
		d.end = 0
	}

	for i := 0; i < maxEmptyReads; i++ {
		n, err := d.r.Read(d.buf[d.end:])
		d.end += n
		if err == io.EOF {
			d.eof = true
			return nil
		}
		if err != nil {
			return err
		}
		if n > 0 {
			return nil
		}
	}
	return io.ErrNoProgress
}

func (d *Decoder) deliver(partial, text []byte) string {
	d.line++
	var s string
	if len(partial) > 0 {
		s = string(append(partial, text...))
	} else {
		s = string(text)
	}
	if n := len(s); n > 0 && s[n-1] == '\r' {
		s = s[:n-1]
	}
	return s
}
