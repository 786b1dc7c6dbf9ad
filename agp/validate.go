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
	"io"
	"sort"

	"github.com/googlegenomics/seqformats/internal/format"
	"github.com/googlegenomics/seqformats/internal/genomics"
)

// ObjectLength is the assembled length of one object.
type ObjectLength struct {
	Object string `json:"object"`
	Length uint64 `json:"length"`
}

// Validator checks that the records of a map are consistent: every gap is as
// long as its object span, every component span is as long as its object
// span and the records of each object tile it from position zero without
// gaps or overlaps.  Records may arrive in any order.
type Validator struct {
	objects map[string][]placement
}

type placement struct {
	span genomics.Interval
	line int
}

// NewValidator returns an empty Validator.
func NewValidator() *Validator {
	return &Validator{objects: make(map[string][]placement)}
}

// Add checks the lengths of rec, which was read from the given line, and
// records its object span for Finish.
func (v *Validator) Add(rec *Record, line int) error {
	want := rec.ObjectInterval.Len()
	if rec.IsGap() {
		if rec.GapInfo.Length != want {
			return format.AtLine(format.Mismatch("gap length %d differs from object span length %d", rec.GapInfo.Length, want), line)
		}
	} else if got := rec.Component.Interval.Len(); got != want {
		return format.AtLine(format.Mismatch("component span length %d differs from object span length %d", got, want), line)
	}
	v.objects[rec.Object] = append(v.objects[rec.Object], placement{rec.ObjectInterval, line})
	return nil
}

// Finish checks that the records of each object tile it and returns the
// object lengths ordered by object name.
func (v *Validator) Finish() ([]ObjectLength, error) {
	names := make([]string, 0, len(v.objects))
	for name := range v.objects {
		names = append(names, name)
	}
	sort.Strings(names)

	lengths := make([]ObjectLength, 0, len(names))
	for _, name := range names {
		placements := v.objects[name]
		sort.SliceStable(placements, func(i, j int) bool {
			return placements[i].span.Start() < placements[j].span.Start()
		})
		var end uint64
		for _, p := range placements {
			if p.span.Start() != end {
				return nil, format.AtLine(format.Mismatch("object %s has a gap or overlap at position %d", name, end+1), p.line)
			}
			end = p.span.End()
		}
		lengths = append(lengths, ObjectLength{Object: name, Length: end})
	}
	return lengths, nil
}

// Validate reads every record from r and validates them together.
func Validate(r *Reader) ([]ObjectLength, error) {
	v := NewValidator()
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if err := v.Add(rec, r.Line()); err != nil {
			return nil, err
		}
	}
	return v.Finish()
}
