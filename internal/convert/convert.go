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

// Package convert implements the record conversions offered by the command
// line tool and the HTTP service.  Each conversion streams records from a
// reader to a writer, one record at a time.
package convert

import (
	"bufio"
	"fmt"
	"io"

	"github.com/googlegenomics/seqformats/agp"
	"github.com/googlegenomics/seqformats/chain"
	"github.com/googlegenomics/seqformats/clustal"
	"github.com/googlegenomics/seqformats/fasta"
	"github.com/googlegenomics/seqformats/repeatmasker"
)

// Options control the conversions.  The zero value selects the defaults.
type Options struct {
	// BufferSize is the line buffer size of the readers.
	BufferSize int
	// Width is the output line width for CLUSTAL and FASTA output.
	Width int
	// SeqNos appends residue counts to CLUSTAL output lines.
	SeqNos bool
	// Append reports that w already holds converted output, so table headers
	// are not written again.
	Append bool
}

// Func converts the records read from r and writes them to w.  It returns the
// number of records converted.  Decoding failures are returned unchanged so
// that callers can inspect their kind and position.
type Func func(r io.Reader, w io.Writer, opts Options) (int, error)

// Funcs maps conversion names to their implementations.
var Funcs = map[string]Func{
	"agp":           NormalizeAGP,
	"agp-validate":  ValidateAGP,
	"chain-flip":    FlipChains,
	"clustal":       ReformatClustal,
	"clustal-fasta": ClustalToFASTA,
	"fasta-clustal": FASTAToClustal,
	"repeatmasker":  NormalizeRepeats,
}

// NormalizeAGP rewrites each AGP record in its forward-object form,
// dropping comments and blank lines.
func NormalizeAGP(r io.Reader, w io.Writer, opts Options) (int, error) {
	reader := agp.NewReaderSize(r, opts.BufferSize)
	writer := agp.NewWriter(w)
	var n int
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return n, err
		}
		normalized := rec.Normalized()
		if err := writer.Write(&normalized); err != nil {
			return n, fmt.Errorf("writing record %d: %v", n+1, err)
		}
		n++
	}
	return n, writer.Flush()
}

// ValidateAGP checks that the records of an AGP file assemble every object
// without gaps or overlaps and writes the length of each object.
func ValidateAGP(r io.Reader, w io.Writer, opts Options) (int, error) {
	reader := agp.NewReaderSize(r, opts.BufferSize)
	validator := agp.NewValidator()
	var n int
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return n, err
		}
		if err := validator.Add(rec, reader.Line()); err != nil {
			return n, err
		}
		n++
	}
	lengths, err := validator.Finish()
	if err != nil {
		return n, err
	}
	bw := bufio.NewWriter(w)
	for _, l := range lengths {
		fmt.Fprintf(bw, "%s\t%d\n", l.Object, l.Length)
	}
	return n, bw.Flush()
}

// FlipChains exchanges the target and query of every chain.
func FlipChains(r io.Reader, w io.Writer, opts Options) (int, error) {
	reader := chain.NewReaderSize(r, opts.BufferSize)
	writer := chain.NewWriter(w)
	var n int
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return n, err
		}
		flipped := rec.Flip()
		if err := writer.Write(&flipped); err != nil {
			return n, fmt.Errorf("writing chain %d: %v", n+1, err)
		}
		n++
	}
	return n, writer.Flush()
}

// ReformatClustal rewrites each alignment with the requested layout.
func ReformatClustal(r io.Reader, w io.Writer, opts Options) (int, error) {
	writer := clustal.NewWriter(w)
	if opts.Width > 0 {
		writer.LineWidth = opts.Width
	}
	writer.SeqNos = opts.SeqNos

	n, err := eachAlignment(r, opts, func(aln *clustal.Alignment) error {
		return writer.Write(aln)
	})
	if err != nil {
		return n, err
	}
	return n, writer.Flush()
}

// ClustalToFASTA writes the sequences of each alignment as FASTA records,
// keeping gap characters.
func ClustalToFASTA(r io.Reader, w io.Writer, opts Options) (int, error) {
	return eachAlignment(r, opts, func(aln *clustal.Alignment) error {
		return clustal.WriteFASTA(w, aln, opts.Width)
	})
}

// FASTAToClustal writes the records of a FASTA file as a single CLUSTAL
// alignment.  The records must have distinct names and equal lengths.
func FASTAToClustal(r io.Reader, w io.Writer, opts Options) (int, error) {
	records, err := fasta.NewReaderSize(r, opts.BufferSize).ReadAll()
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, nil
	}
	names := make([]string, len(records))
	seqs := make([]string, len(records))
	for i, rec := range records {
		names[i], seqs[i] = rec.Name, rec.Sequence
	}
	aln, err := clustal.NewAlignment(names, seqs)
	if err != nil {
		return 0, err
	}

	writer := clustal.NewWriter(w)
	if opts.Width > 0 {
		writer.LineWidth = opts.Width
	}
	writer.SeqNos = opts.SeqNos
	if err := writer.Write(aln); err != nil {
		return 0, fmt.Errorf("writing alignment: %v", err)
	}
	return len(records), writer.Flush()
}

func eachAlignment(r io.Reader, opts Options, fn func(*clustal.Alignment) error) (int, error) {
	reader := clustal.NewReaderSize(r, opts.BufferSize)
	var n int
	for {
		aln, err := reader.Read()
		if err == io.EOF {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		if err := fn(aln); err != nil {
			return n, fmt.Errorf("writing alignment %d: %v", n+1, err)
		}
		n++
	}
}

// NormalizeRepeats rewrites a RepeatMasker table with tab-separated columns.
func NormalizeRepeats(r io.Reader, w io.Writer, opts Options) (int, error) {
	reader := repeatmasker.NewReaderSize(r, opts.BufferSize)
	writer := repeatmasker.NewWriter(w)
	writer.OmitHeader = opts.Append
	var n int
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return n, err
		}
		if err := writer.Write(rec); err != nil {
			return n, fmt.Errorf("writing record %d: %v", n+1, err)
		}
		n++
	}
	return n, writer.Flush()
}
