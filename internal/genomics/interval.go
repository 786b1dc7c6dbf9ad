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

// Package genomics contains the coordinate and strand definitions shared by
// all record formats.
package genomics

import (
	"encoding/json"
	"fmt"

	"github.com/googlegenomics/seqformats/internal/format"
)

// Distance is a signed length in base pairs.
type Distance int64

// Interval is an immutable, zero-based, half-open range [Start, End) of
// positions.  The zero value is the empty interval at position zero.
type Interval struct {
	start, end uint64
}

// NewInterval returns the interval [start, end).  It returns an error of kind
// format.ErrCoordinateInvariant if start > end.
func NewInterval(start, end uint64) (Interval, error) {
	if start > end {
		return Interval{}, &format.Error{
			Kind: format.ErrCoordinateInvariant,
			Err:  fmt.Errorf("start %d > end %d", start, end),
		}
	}
	return Interval{start, end}, nil
}

// FromOneBased converts the 1-based inclusive range [first, last] into an
// Interval.  A first position of zero is not a valid 1-based coordinate.
func FromOneBased(first, last uint64) (Interval, error) {
	if first == 0 {
		return Interval{}, &format.Error{
			Kind: format.ErrCoordinateInvariant,
			Err:  fmt.Errorf("1-based start must be positive"),
		}
	}
	return NewInterval(first-1, last)
}

// Start returns the first position inside the interval.
func (i Interval) Start() uint64 {
	return i.start
}

// End returns the first position after the interval.
func (i Interval) End() uint64 {
	return i.end
}

// Len returns the number of positions covered by the interval.
func (i Interval) Len() Distance {
	return Distance(i.end - i.start)
}

// OneBased returns the 1-based inclusive bounds of the interval.
func (i Interval) OneBased() (first, last uint64) {
	return i.start + 1, i.end
}

func (i Interval) String() string {
	return fmt.Sprintf("[%d, %d)", i.start, i.end)
}

// MarshalJSON encodes the interval as {"start": s, "end": e}.
func (i Interval) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Start uint64 `json:"start"`
		End   uint64 `json:"end"`
	}{i.start, i.end})
}
