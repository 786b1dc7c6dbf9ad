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

// Package clustal provides support for reading and writing multiple sequence
// alignments in the block-interleaved CLUSTAL format.
package clustal

import "github.com/googlegenomics/seqformats/internal/format"

// HeaderPrefix starts the signature line of every CLUSTAL alignment.
const HeaderPrefix = "CLUSTAL"

// Alignment is an ordered set of named, gapped sequences of equal length.
type Alignment struct {
	Names     []string `json:"names"`
	Sequences []string `json:"sequences"`
}

// NumSeqs returns the number of sequences in a.
func (a *Alignment) NumSeqs() int {
	return len(a.Names)
}

// NumCols returns the number of alignment columns, or zero if a is empty.
func (a *Alignment) NumCols() int {
	if len(a.Sequences) == 0 {
		return 0
	}
	return len(a.Sequences[0])
}

// Seq returns the gapped sequence named name.
func (a *Alignment) Seq(name string) (string, bool) {
	for i, n := range a.Names {
		if n == name {
			return a.Sequences[i], true
		}
	}
	return "", false
}

// NewAlignment returns the alignment of seqs named by names.  It returns an
// error of kind format.ErrStructuralMismatch if the names are not distinct or
// the sequences differ in length.
func NewAlignment(names, seqs []string) (*Alignment, error) {
	if len(names) != len(seqs) {
		return nil, format.Mismatch("%d names for %d sequences", len(names), len(seqs))
	}
	seen := make(map[string]bool)
	for i, name := range names {
		if seen[name] {
			return nil, format.Mismatch("duplicate sequence name %q", name)
		}
		seen[name] = true
		if len(seqs[i]) != len(seqs[0]) {
			return nil, format.Mismatch("sequence %q has %d columns, want %d", name, len(seqs[i]), len(seqs[0]))
		}
	}
	return &Alignment{Names: names, Sequences: seqs}, nil
}
