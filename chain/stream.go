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

package chain

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/googlegenomics/seqformats/internal/format"
	"github.com/googlegenomics/seqformats/internal/genomics"
	"github.com/googlegenomics/seqformats/internal/line"
)

const headerKeyword = "chain"

// Reader reads chain records from a byte source.
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

// Read returns the next chain.  It returns io.EOF when no chains remain.
func (r *Reader) Read() (*Record, error) {
	var (
		text string
		err  error
	)
	for {
		if text, err = r.lines.Next(); err != nil {
			return nil, err
		}
		if !skippable(text) {
			break
		}
	}

	rec, err := decodeHeader(text)
	if err != nil {
		return nil, format.AtLine(err, r.lines.Line())
	}

	for {
		text, err := r.lines.Next()
		if err == io.EOF {
			return nil, format.AtLine(format.UnexpectedEOF("chain ended before its final block"), r.lines.Line()+1)
		}
		if err != nil {
			return nil, err
		}
		if strings.HasPrefix(text, "#") {
			continue
		}

		block, last, err := decodeBlock(text)
		if err != nil {
			return nil, format.AtLine(err, r.lines.Line())
		}
		rec.Blocks = append(rec.Blocks, block)
		if last {
			break
		}
	}

	if err := checkSpans(rec); err != nil {
		return nil, format.AtLine(err, r.lines.Line())
	}
	return rec, nil
}

// ReadAll reads every remaining chain.
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

func skippable(text string) bool {
	return strings.TrimSpace(text) == "" || strings.HasPrefix(text, "#")
}

// chain score tName tSize tStrand tStart tEnd qName qSize qStrand qStart qEnd [id]
func decodeHeader(text string) (*Record, error) {
	fields := strings.Fields(text)
	if len(fields) < 12 || len(fields) > 13 || fields[0] != headerKeyword {
		return nil, format.Malformed(text, errors.New("invalid chain header"))
	}

	var (
		rec Record
		err error
	)
	if rec.Score, err = strconv.ParseInt(fields[1], 10, 64); err != nil {
		// Some producers write fractional scores.
		score, ferr := strconv.ParseFloat(fields[1], 64)
		if ferr != nil {
			return nil, format.Malformed(text, fmt.Errorf("parsing score: %v", err))
		}
		rec.Score = int64(score)
	}
	rec.TargetName, rec.TargetSize, rec.TargetStrand, rec.TargetSpan, err = decodeSequence(fields[2:7])
	if err != nil {
		return nil, withText(err, text, "target")
	}
	rec.QueryName, rec.QuerySize, rec.QueryStrand, rec.QuerySpan, err = decodeSequence(fields[7:12])
	if err != nil {
		return nil, withText(err, text, "query")
	}
	if len(fields) == 13 {
		rec.ID = fields[12]
	}
	return &rec, nil
}

func decodeSequence(fields []string) (string, uint64, genomics.Strand, genomics.Interval, error) {
	var span genomics.Interval
	size, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return "", 0, 0, span, format.Malformed("", fmt.Errorf("parsing size: %v", err))
	}
	strand, err := genomics.ParseStrand(fields[2])
	if err != nil {
		return "", 0, 0, span, format.Malformed("", err)
	}
	start, err := strconv.ParseUint(fields[3], 10, 64)
	if err != nil {
		return "", 0, 0, span, format.Malformed("", fmt.Errorf("parsing start: %v", err))
	}
	end, err := strconv.ParseUint(fields[4], 10, 64)
	if err != nil {
		return "", 0, 0, span, format.Malformed("", fmt.Errorf("parsing end: %v", err))
	}
	if span, err = genomics.NewInterval(start, end); err != nil {
		return "", 0, 0, span, err
	}
	if end > size {
		return "", 0, 0, span, &format.Error{
			Kind: format.ErrCoordinateInvariant,
			Err:  fmt.Errorf("end %d is past sequence size %d", end, size),
		}
	}
	return fields[0], size, strand, span, nil
}

func decodeBlock(text string) (Block, bool, error) {
	fields := strings.Fields(text)
	if len(fields) != 1 && len(fields) != 3 {
		return Block{}, false, format.Malformed(text, fmt.Errorf("got %d fields, want 1 or 3", len(fields)))
	}

	var values [3]uint64
	for i, field := range fields {
		v, err := strconv.ParseUint(field, 10, 64)
		if err != nil {
			return Block{}, false, format.Malformed(text, err)
		}
		values[i] = v
	}
	return Block{values[0], values[1], values[2]}, len(fields) == 1, nil
}

func checkSpans(rec *Record) error {
	targetSpan, querySpan := uint64(rec.TargetSpan.Len()), uint64(rec.QuerySpan.Len())
	var target, query uint64
	for i, b := range rec.Blocks {
		var ok bool
		if target, ok = cover(target, targetSpan, b.Size, b.TargetGap); !ok {
			return format.Mismatch("blocks through %d cover more than the %d target positions of the header span", i+1, targetSpan)
		}
		if query, ok = cover(query, querySpan, b.Size, b.QueryGap); !ok {
			return format.Mismatch("blocks through %d cover more than the %d query positions of the header span", i+1, querySpan)
		}
	}
	if target != targetSpan {
		return format.Mismatch("blocks cover %d target positions, header span covers %d", target, targetSpan)
	}
	if query != querySpan {
		return format.Mismatch("blocks cover %d query positions, header span covers %d", query, querySpan)
	}
	return nil
}

// cover adds lengths to total, reporting false if the sum would exceed limit.
// total must not exceed limit.
func cover(total, limit uint64, lengths ...uint64) (uint64, bool) {
	for _, n := range lengths {
		if n > limit-total {
			return total, false
		}
		total += n
	}
	return total, true
}

func withText(err error, text, context string) error {
	var e *format.Error
	if errors.As(err, &e) {
		e.Text = text
		e.Err = fmt.Errorf("%s: %v", context, e.Err)
	}
	return err
}

// Writer writes chain records.  Call Flush when done.
type Writer struct {
	w *bufio.Writer
}

// NewWriter returns a Writer writing to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{bufio.NewWriter(w)}
}

// Write writes rec followed by a blank separator line.
func (w *Writer) Write(rec *Record) error {
	if len(rec.Blocks) == 0 {
		return errors.New("chain has no blocks")
	}

	fmt.Fprintf(w.w, "%s %d %s %d %s %d %d %s %d %s %d %d",
		headerKeyword, rec.Score,
		rec.TargetName, rec.TargetSize, rec.TargetStrand, rec.TargetSpan.Start(), rec.TargetSpan.End(),
		rec.QueryName, rec.QuerySize, rec.QueryStrand, rec.QuerySpan.Start(), rec.QuerySpan.End())
	if rec.ID != "" {
		fmt.Fprintf(w.w, " %s", rec.ID)
	}
	w.w.WriteByte('\n')

	last := len(rec.Blocks) - 1
	for _, b := range rec.Blocks[:last] {
		fmt.Fprintf(w.w, "%d\t%d\t%d\n", b.Size, b.TargetGap, b.QueryGap)
	}
	if _, err := fmt.Fprintf(w.w, "%d\n\n", rec.Blocks[last].Size); err != nil {
		return fmt.Errorf("writing chain: %v", err)
	}
	return nil
}

// Flush writes any buffered data to the underlying writer.
func (w *Writer) Flush() error {
	return w.w.Flush()
}
