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

package genomics

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/googlegenomics/seqformats/internal/format"
)

func TestNewInterval(t *testing.T) {
	testCases := []struct {
		name       string
		start, end uint64
		valid      bool
		length     Distance
	}{
		{"empty at zero", 0, 0, true, 0},
		{"empty", 7, 7, true, 0},
		{"one base", 9, 10, true, 1},
		{"start after end", 11, 10, false, 0},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NewInterval(tc.start, tc.end)
			if !tc.valid {
				if !errors.Is(err, format.ErrCoordinateInvariant) {
					t.Fatalf("Expected coordinate invariant violation, got %v (%v)", err, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got.Start() != tc.start || got.End() != tc.end {
				t.Errorf("Wrong bounds: got %v", got)
			}
			if got.Len() != tc.length {
				t.Errorf("Wrong length: got %d, want %d", got.Len(), tc.length)
			}
		})
	}
}

func TestFromOneBased(t *testing.T) {
	i, err := FromOneBased(1, 10)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got, want := i.String(), "[0, 10)"; got != want {
		t.Errorf("Wrong interval: got %s, want %s", got, want)
	}
	if first, last := i.OneBased(); first != 1 || last != 10 {
		t.Errorf("OneBased() = %d, %d; want 1, 10", first, last)
	}

	for _, bad := range [][2]uint64{{0, 5}, {6, 4}} {
		if _, err := FromOneBased(bad[0], bad[1]); !errors.Is(err, format.ErrCoordinateInvariant) {
			t.Errorf("FromOneBased(%d, %d): expected coordinate invariant violation, got %v", bad[0], bad[1], err)
		}
	}

	// A single base and a zero-length span directly before it.
	if i, err := FromOneBased(5, 5); err != nil || i.Len() != 1 {
		t.Errorf("FromOneBased(5, 5) = %v, %v", i, err)
	}
	if i, err := FromOneBased(5, 4); err != nil || i.Len() != 0 {
		t.Errorf("FromOneBased(5, 4) = %v, %v", i, err)
	}
}

func TestInterval_MarshalJSON(t *testing.T) {
	i, _ := NewInterval(3, 8)
	got, err := json.Marshal(i)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if want := `{"start":3,"end":8}`; string(got) != want {
		t.Errorf("Wrong JSON: got %s, want %s", got, want)
	}
}

func TestStrand_Compose(t *testing.T) {
	testCases := []struct {
		object, feature Strand
		want            string
	}{
		{Forward, Forward, "+"},
		{Forward, Reverse, "-"},
		{Reverse, Forward, "-"},
		{Reverse, Reverse, "+"},
	}
	for _, tc := range testCases {
		t.Run(tc.object.String()+tc.feature.String(), func(t *testing.T) {
			if got := tc.object.Compose(tc.feature).String(); got != tc.want {
				t.Errorf("Compose: got %s, want %s", got, tc.want)
			}
		})
	}
}

func TestStrand_Opposite(t *testing.T) {
	for _, s := range []Strand{Forward, Reverse} {
		if s.Opposite() == s {
			t.Errorf("%s.Opposite() returned the same strand", s)
		}
		if s.Opposite().Opposite() != s {
			t.Errorf("%s.Opposite() is not an involution", s)
		}
	}
}

func TestParseStrand(t *testing.T) {
	for token, want := range map[string]Strand{"+": Forward, "-": Reverse} {
		if got, err := ParseStrand(token); err != nil || got != want {
			t.Errorf("ParseStrand(%q) = %v, %v; want %v", token, got, err, want)
		}
	}
	for _, token := range []string{"", "?", "C", "++"} {
		if _, err := ParseStrand(token); err == nil {
			t.Errorf("ParseStrand(%q) unexpectedly succeeded", token)
		}
	}
}
