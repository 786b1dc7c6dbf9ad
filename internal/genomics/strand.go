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

import "fmt"

// Strand is the orientation of a feature relative to its reference.
type Strand int8

const (
	// Forward is the '+' strand.  It is the zero value.
	Forward Strand = iota
	// Reverse is the '-' strand.
	Reverse
)

// ParseStrand parses "+" or "-".
func ParseStrand(token string) (Strand, error) {
	switch token {
	case "+":
		return Forward, nil
	case "-":
		return Reverse, nil
	}
	return Forward, fmt.Errorf("invalid strand %q", token)
}

// IsForward reports whether s is the forward strand.
func (s Strand) IsForward() bool {
	return s == Forward
}

// IsReverse reports whether s is the reverse strand.
func (s Strand) IsReverse() bool {
	return s == Reverse
}

// Opposite returns the other strand.
func (s Strand) Opposite() Strand {
	if s == Forward {
		return Reverse
	}
	return Forward
}

// Compose returns the effective strand of a feature whose strand is stored
// relative to an object on strand s.
func (s Strand) Compose(feature Strand) Strand {
	if s.IsForward() {
		return feature
	}
	return feature.Opposite()
}

func (s Strand) String() string {
	if s == Reverse {
		return "-"
	}
	return "+"
}

// MarshalText encodes the strand as "+" or "-".
func (s Strand) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
