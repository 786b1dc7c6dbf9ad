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

package clustal

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	DefaultLineWidth         = 76
	DefaultMinNameSeqSpacing = 6
	DefaultMinGutterLen      = 16
	DefaultBlockSpacing      = 1
)

// Writer formats alignments as CLUSTAL text.  The exported fields may be
// changed after NewWriter and before the first call to Write.
type Writer struct {
	// LineWidth is the width of each alignment line, including the name
	// gutter and any sequence number.
	LineWidth int
	// MinNameSeqSpacing is the least number of spaces after a name.
	MinNameSeqSpacing int
	// MinGutterLen is the least width of the name gutter.
	MinGutterLen int
	// BlockSpacing is the number of blank lines before each block.
	BlockSpacing int
	// SeqNos appends the running residue count to each line.
	SeqNos bool

	w *bufio.Writer
}

// NewWriter returns a Writer with the default layout.
func NewWriter(w io.Writer) *Writer {
	return &Writer{
		LineWidth:         DefaultLineWidth,
		MinNameSeqSpacing: DefaultMinNameSeqSpacing,
		MinGutterLen:      DefaultMinGutterLen,
		BlockSpacing:      DefaultBlockSpacing,
		w:                 bufio.NewWriter(w),
	}
}

// Write writes aln as a header followed by its blocks.
func (w *Writer) Write(aln *Alignment) error {
	if err := validate(aln); err != nil {
		return err
	}
	if w.MinNameSeqSpacing < 1 {
		return fmt.Errorf("name spacing %d is less than 1", w.MinNameSeqSpacing)
	}
	if w.BlockSpacing < 0 {
		return fmt.Errorf("negative block spacing %d", w.BlockSpacing)
	}

	var nameLen, seqLen int
	for i, name := range aln.Names {
		nameLen = max(nameLen, len(name))
		seqLen = max(seqLen, len(aln.Sequences[i]))
	}
	gutter := max(w.MinGutterLen, nameLen+w.MinNameSeqSpacing)
	if w.LineWidth < gutter {
		return fmt.Errorf("line width %d is less than gutter width %d", w.LineWidth, gutter)
	}
	var seqNosLen int
	if w.SeqNos {
		seqNosLen = 1 + len(strconv.Itoa(seqLen))
	}
	width := w.LineWidth - gutter - seqNosLen
	if width <= 0 {
		return fmt.Errorf("line width %d leaves no room for sequence", w.LineWidth)
	}

	fmt.Fprintf(w.w, "%s multiple sequence alignment\n", HeaderPrefix)
	positions := make([]int, aln.NumSeqs())
	for start := 0; start < aln.NumCols(); start += width {
		end := min(start+width, aln.NumCols())
		w.w.WriteString(strings.Repeat("\n", w.BlockSpacing))
		for i, name := range aln.Names {
			chunk := aln.Sequences[i][start:end]
			fmt.Fprintf(w.w, "%-*s%s", gutter, name, chunk)

			residues := len(chunk) - strings.Count(chunk, "-")
			positions[i] += residues
			if w.SeqNos && residues > 0 {
				fmt.Fprintf(w.w, " %d", positions[i])
			}
			w.w.WriteByte('\n')
		}
		w.writeIdentity(aln.Sequences, start, end, gutter)
	}
	return nil
}

// writeIdentity marks the columns in [start, end) where every sequence has
// the same character.
func (w *Writer) writeIdentity(seqs []string, start, end, gutter int) {
	w.w.WriteString(strings.Repeat(" ", gutter))
	for col := start; col < end; col++ {
		mark := byte('*')
		for _, seq := range seqs[1:] {
			if seq[col] != seqs[0][col] {
				mark = ' '
				break
			}
		}
		w.w.WriteByte(mark)
	}
	w.w.WriteByte('\n')
}

// Flush writes any buffered data to the underlying writer.
func (w *Writer) Flush() error {
	return w.w.Flush()
}

// WriteFASTA writes each sequence of aln as a FASTA record with lines of at
// most width residues.  Gap characters are kept.  A width of zero or less
// writes each sequence on a single line.
func WriteFASTA(w io.Writer, aln *Alignment, width int) error {
	if err := validate(aln); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	for i, name := range aln.Names {
		fmt.Fprintf(bw, ">%s\n", name)
		seq := aln.Sequences[i]
		n := width
		if n <= 0 {
			n = max(len(seq), 1)
		}
		for len(seq) > n {
			fmt.Fprintf(bw, "%s\n", seq[:n])
			seq = seq[n:]
		}
		fmt.Fprintf(bw, "%s\n", seq)
	}
	return bw.Flush()
}

func validate(aln *Alignment) error {
	if len(aln.Names) != len(aln.Sequences) {
		return fmt.Errorf("alignment has %d names and %d sequences", len(aln.Names), len(aln.Sequences))
	}
	seen := make(map[string]bool)
	for i, name := range aln.Names {
		if name == "" || strings.ContainsAny(name, " \t\r\n") {
			return fmt.Errorf("invalid sequence name %q", name)
		}
		if isHeader(name) {
			return fmt.Errorf("sequence name %q would read as a header", name)
		}
		if seen[name] {
			return fmt.Errorf("duplicate sequence name %q", name)
		}
		seen[name] = true
		if len(aln.Sequences[i]) != aln.NumCols() {
			return errors.New("alignment sequences differ in length")
		}
	}
	return nil
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
