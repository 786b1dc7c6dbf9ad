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

package repeatmasker

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/googlegenomics/seqformats/internal/format"
	"github.com/googlegenomics/seqformats/internal/line"
)

// Reader reads records from a RepeatMasker table.  The header lines are
// skipped on the first call to Read.  Header lines repeated later in the
// stream, as in concatenated tables, are skipped too.
type Reader struct {
	lines   *line.Decoder
	started bool
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
	if !r.started {
		r.started = true
		for i := 0; i < headerLines; i++ {
			if _, err := r.lines.Next(); err != nil {
				return nil, err
			}
		}
	}

	for {
		text, err := r.lines.Next()
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(text) == "" || isHeaderLine(text) {
			continue
		}
		rec, err := Decode(text)
		if err != nil {
			return nil, format.AtLine(err, r.lines.Line())
		}
		return rec, nil
	}
}

// isHeaderLine reports whether text is one of the column title lines of
// Header.  Record lines start with a numeric score.
func isHeaderLine(text string) bool {
	fields := strings.Fields(text)
	if len(fields) < 2 {
		return false
	}
	return fields[0] == "SW" && fields[1] == "perc" ||
		fields[0] == "score" && fields[1] == "div."
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

// Writer writes a RepeatMasker table.  Call Flush when done.
type Writer struct {
	// OmitHeader suppresses the header, for appending records to a table
	// that already has one.
	OmitHeader bool

	w             *bufio.Writer
	headerWritten bool
}

// NewWriter returns a Writer writing to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Write writes rec, preceded by the table header on the first call.
func (w *Writer) Write(rec *Record) error {
	text, err := Encode(rec)
	if err != nil {
		return err
	}
	if err := w.writeHeader(); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w.w, text); err != nil {
		return fmt.Errorf("writing record: %v", err)
	}
	return nil
}

func (w *Writer) writeHeader() error {
	if w.headerWritten || w.OmitHeader {
		return nil
	}
	w.headerWritten = true
	if _, err := w.w.WriteString(Header); err != nil {
		return fmt.Errorf("writing header: %v", err)
	}
	return nil
}

// Flush writes the header if no record has been written, then any buffered
// data, to the underlying writer.
func (w *Writer) Flush() error {
	if err := w.writeHeader(); err != nil {
		return err
	}
	return w.w.Flush()
}
