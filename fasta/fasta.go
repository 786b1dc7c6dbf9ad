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


// Package fasta provides support for reading FASTA sequence files.
package fasta

import (
	"io"
	"strings"
	"unicode"

	"github.com/googlegenomics/seqformats/internal/line"
)

// TitlePrefix starts the title line of every record.
const TitlePrefix = ">"

// Record is a titled sequence.  Name is the first word of the title and
// Description is the rest of it.
type Record struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Sequence    string `json:"sequence"`
}

// Reader reads FASTA records.  Lines before the first title are ignored and
// whitespace inside sequences is removed.
type Reader struct {
	lines *line.Decoder

	// title holds the title line of the next record, without its prefix.
	title   string
	started bool
	done    bool
}

// NewReader returns a Reader using the default buffer size.
func NewReader(r io.Reader) *Reader {
	return NewReaderSize(r, line.DefaultBufferSize)
}

// NewReaderSize returns a Reader whose line buffer holds size bytes.
func NewReaderSize(r io.Reader, size int) *Reader {
	return &Reader{lines: line.NewDecoder(r, size)}
}

// Read returns the next record.  It returns io.EOF when no records remain.
func (r *Reader) Read() (*Record, error) {
	for !r.started {
		text, err := r.lines.Next()
		if err != nil {
			return nil, err
		}
		if strings.HasPrefix(text, TitlePrefix) {
			r.title = text[len(TitlePrefix):]
			r.started = true
		}
	}
	if r.done {
		return nil, io.EOF
	}

	rec := newRecord(r.title)
	var seq strings.Builder
	for {
		text, err := r.lines.Next()
		if err == io.EOF {
			r.done = true
			break
		}
		if err != nil {
			return nil, err
		}
		if strings.HasPrefix(text, TitlePrefix) {
			r.title = text[len(TitlePrefix):]
			break
		}
		for _, c := range text {
			if !unicode.IsSpace(c) {
				seq.WriteRune(c)
			}
		}
	}
	rec.Sequence = seq.String()
	return rec, nil
}

func newRecord(title string) *Record {
	title = strings.TrimRightFunc(title, unicode.IsSpace)
	name := title
	var desc string
	if i := strings.IndexFunc(title, unicode.IsSpace); i >= 0 {
		name, desc = title[:i], strings.TrimLeftFunc(title[i:], unicode.IsSpace)
	}
	return &Record{Name: name, Description: desc}
}

// ReadAll reads every remaining record.
func (r *Reader) ReadAll() ([]*Record, error) {
	var records []*Record
	for {
		rec, err := r.Read()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
}
