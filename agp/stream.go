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

package agp

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/googlegenomics/seqformats/internal/format"
	"github.com/googlegenomics/seqformats/internal/line"
)

// Reader reads AGP records from a byte source.
type Reader struct {
	lines *line.Decoder
}

// NewReader returns a Reader using the default buffer size.
func NewReader(r io.Reader) *Reader {
	return NewReaderSize(r, line.DefaultBufferSize)
}

// NewReaderSize returns a Reader whose line buffer holds size bytes.
func NewReaderSize(r io.Reader, size int) *Reader {
	return &Reader{line.NewDecoder(r, size)}
}

// Read returns the next record, skipping comments and blank lines.  It returns
// io.EOF when no records remain.
func (r *Reader) Read() (*Record, error) {
	for {
		text, err := r.lines.Next()
		if err != nil {
			return nil, err
		}
		text = stripComment(text)
		if text == "" {
			continue
		}
		rec, err := Decode(text)
		if err != nil {
			return nil, format.AtLine(err, r.lines.Line())
		}
		return rec, nil
	}
}

// Line returns the ordinal of the line holding the record most recently
// returned by Read.
func (r *Reader) Line() int {
	return r.lines.Line()
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

// stripComment removes a '#' comment and any whitespace preceding it.
func stripComment(text string) string {
	if i := strings.IndexByte(text, '#'); i >= 0 {
		return strings.TrimRight(text[:i], " \t")
	}
	if strings.TrimSpace(text) == "" {
		return ""
	}
	return text
}

// Writer writes AGP records.  Call Flush when done.
type Writer struct {
	w *bufio.Writer
}

// NewWriter returns a Writer writing to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{bufio.NewWriter(w)}
}

// Write encodes rec as one line.
func (w *Writer) Write(rec *Record) error {
	text, err := Encode(rec)
	if err != nil {
		return fmt.Errorf("encoding record: %v", err)
	}
	if _, err := w.w.WriteString(text + "\n"); err != nil {
		return fmt.Errorf("writing record: %v", err)
	}
	return nil
}

// Flush writes any buffered data to the underlying writer.
func (w *Writer) Flush() error {
	return w.w.Flush()
}
