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

// Package chain provides support for reading and writing UCSC chain files,
// which describe gapped pairwise alignments between a target and a query.
package chain

import (
	"github.com/googlegenomics/seqformats/internal/genomics"
)

// Block is one ungapped run of an alignment followed by the gaps that
// separate it from the next run.  The gaps of the final block are zero.
type Block struct {
	Size      uint64 `json:"size"`
	TargetGap uint64 `json:"targetGap"`
	QueryGap  uint64 `json:"queryGap"`
}

// Flip returns b with the target and query gaps exchanged.
func (b Block) Flip() Block {
	b.TargetGap, b.QueryGap = b.QueryGap, b.TargetGap
	return b
}

// Record is a single chain.  Spans are zero-based half-open intervals on the
// strand given for each sequence.
type Record struct {
	Score int64 `json:"score"`

	TargetName   string            `json:"targetName"`
	TargetSize   uint64            `json:"targetSize"`
	TargetStrand genomics.Strand   `json:"targetStrand"`
	TargetSpan   genomics.Interval `json:"targetSpan"`

	QueryName   string            `json:"queryName"`
	QuerySize   uint64            `json:"querySize"`
	QueryStrand genomics.Strand   `json:"queryStrand"`
	QuerySpan   genomics.Interval `json:"querySpan"`

	ID     string  `json:"id,omitempty"`
	Blocks []Block `json:"blocks"`
}

// Flip returns a copy of r with the roles of target and query exchanged.
// Block order is preserved.  Flip is an involution: r.Flip().Flip() equals r.
func (r Record) Flip() Record {
	r.TargetName, r.QueryName = r.QueryName, r.TargetName
	r.TargetSize, r.QuerySize = r.QuerySize, r.TargetSize
	r.TargetStrand, r.QueryStrand = r.QueryStrand, r.TargetStrand
	r.TargetSpan, r.QuerySpan = r.QuerySpan, r.TargetSpan

	if r.Blocks != nil {
		blocks := make([]Block, len(r.Blocks))
		for i, b := range r.Blocks {
			blocks[i] = b.Flip()
		}
		r.Blocks = blocks
	}
	return r
}
