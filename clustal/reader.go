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
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/googlegenomics/seqformats/internal/format"
	"github.com/googlegenomics/seqformats/internal/line"
)

// Reader reassembles alignments from their interleaved blocks.  A stream may
// hold several alignments, each introduced by its own header line.
type Reader struct {
	lines *line.Decoder

	// pending holds a header line that ended the previous alignment.
	pending string
}

// NewReader returns a Reader using the default buffer size.
func NewReader(r io.Reader) *Reader {
	return NewReaderSize(r, line.DefaultBufferSize)
}

// NewReaderSize returns a Reader whose line buffer holds size bytes.
func NewReaderSize(r io.Reader, size int) *Reader {
	return &Reader{lines: line.NewDecoder(r, size)}
}

// assembler accumulates the blocks of one alignment.  The first block fixes
// the sequence order and every later block must repeat it exactly.
type assembler struct {
	names  []string
	index  map[string]int
	seqs   [][]byte
	blocks int

	// row is the position of the next line within the open block and
	// width is the chunk length shared by its lines.
	row   int
	width int
}

func (a *assembler) add(name, chunk string) error {
	if a.blocks == 0 {
		if _, ok := a.index[name]; ok {
			return format.Mismatch("sequence %q appears twice in the first block", name)
		}
		a.index[name] = len(a.names)
		a.names = append(a.names, name)
		a.seqs = append(a.seqs, nil)
	} else {
		if a.row >= len(a.names) {
			return format.Mismatch("block has more than %d sequences", len(a.names))
		}
		if want := a.names[a.row]; name != want {
			return format.Mismatch("block line %d names %q, want %q", a.row+1, name, want)
		}
	}

	if a.row == 0 {
		a.width = len(chunk)
	} else if len(chunk) != a.width {
		return format.Mismatch("chunk for %q has %d columns, block has %d", name, len(chunk), a.width)
	}

	a.seqs[a.row] = append(a.seqs[a.row], chunk...)
	a.row++
	return nil
}

// close ends the open block, if any.
func (a *assembler) close() error {
	if a.row == 0 {
		return nil
	}
	if a.blocks > 0 && a.row != len(a.names) {
		return format.Mismatch("block has %d sequences, want %d", a.row, len(a.names))
	}
	a.blocks++
	a.row = 0
	return nil
}

func (a *assembler) alignment() (*Alignment, error) {
	aln := &Alignment{
		Names:     a.names,
		Sequences: make([]string, len(a.seqs)),
	}
	for i, seq := range a.seqs {
		if len(seq) != len(a.seqs[0]) {
			return nil, format.Mismatch("sequence %q has length %d, want %d", a.names[i], len(seq), len(a.seqs[0]))
		}
		aln.Sequences[i] = string(seq)
	}
	return aln, nil
}

// Read returns the next alignment.  It returns io.EOF when the stream holds
// no further alignments.
func (r *Reader) Read() (*Alignment, error) {
	header := r.pending
	r.pending = ""
	if header == "" {
		for {
			text, err := r.lines.Next()
			if err != nil {
				return nil, err
			}
			if !blank(text) {
				header = text
				break
			}
		}
		if !strings.HasPrefix(header, HeaderPrefix) {
			return nil, format.AtLine(format.Malformed(header, fmt.Errorf("missing %s header", HeaderPrefix)), r.lines.Line())
		}
	}

	a := &assembler{index: make(map[string]int)}
	for {
		text, err := r.lines.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		if blank(text) {
			if err := a.close(); err != nil {
				return nil, format.AtLine(err, r.lines.Line())
			}
			continue
		}
		if a.row == 0 && isHeader(text) {
			r.pending = text
			break
		}
		if text[0] == ' ' || text[0] == '\t' {
			// Conservation line; it trails the block it annotates.
			if err := a.close(); err != nil {
				return nil, format.AtLine(err, r.lines.Line())
			}
			continue
		}

		fields := strings.Fields(text)
		if len(fields) < 2 {
			return nil, format.AtLine(format.Malformed(text, errors.New("want a name and a sequence chunk")), r.lines.Line())
		}
		if err := a.add(fields[0], fields[1]); err != nil {
			return nil, format.AtLine(err, r.lines.Line())
		}
	}

	if err := a.close(); err != nil {
		return nil, format.AtLine(err, r.lines.Line())
	}
	if len(a.names) == 0 {
		if r.pending != "" {
			return nil, format.AtLine(format.Mismatch("alignment has no blocks"), r.lines.Line())
		}
		return nil, format.AtLine(format.UnexpectedEOF("alignment has no blocks"), r.lines.Line()+1)
	}
	aln, err := a.alignment()
	if err != nil {
		return nil, format.AtLine(err, r.lines.Line())
	}
	return aln, nil
}

// ReadAll reads every remaining alignment.
func (r *Reader) ReadAll() ([]*Alignment, error) {
	var alignments []*Alignment
	for {
		aln, err := r.Read()
		if err == io.EOF {
			return alignments, nil
		}
		if err != nil {
			return nil, err
		}
		alignments = append(alignments, aln)
	}
}

// isHeader reports whether text is a header line: the header prefix alone or
// followed by whitespace.  Sequence names may start with the prefix, so
// headers are only recognized between blocks.
func isHeader(text string) bool {
	if !strings.HasPrefix(text, HeaderPrefix) {
		return false
	}
	rest := text[len(HeaderPrefix):]
	return rest == "" || rest[0] == ' ' || rest[0] == '\t'
}

func blank(text string) bool {
	return strings.TrimSpace(text) == ""
}
