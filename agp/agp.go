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

// Package agp provides support for reading and writing AGP (A Golden Path)
// files, which describe how sequence objects are assembled from components
// and gaps.
//
// AGP coordinates are 1-based and inclusive on disk; records hold them as
// zero-based half-open genomics.Interval values.
package agp

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/googlegenomics/seqformats/internal/format"
	"github.com/googlegenomics/seqformats/internal/genomics"
)

// ComponentType is the single character code in the fifth AGP column.
type ComponentType byte

// Component type codes.
const (
	ActiveFinishing      ComponentType = 'A'
	DraftHTG             ComponentType = 'D'
	FinishedHTG          ComponentType = 'F'
	WholeGenomeFinishing ComponentType = 'G'
	PreDraft             ComponentType = 'P'
	Gap                  ComponentType = 'N'
	Other                ComponentType = 'O'
	WGSContig            ComponentType = 'W'
)

// Gap types.
const (
	Fragment        = "fragment"
	Contig          = "contig"
	SplitFinished   = "split_finished"
	Clone           = "clone"
	Centromere      = "centromere"
	ShortArm        = "short_arm"
	Heterochromatin = "heterochromatin"
	Telomere        = "telomere"
)

const (
	linkageYes = "yes"
	linkageNo  = "no"

	gapFields       = 8
	componentFields = 9
)

var (
	componentTypes = map[ComponentType]bool{
		ActiveFinishing: true, DraftHTG: true, FinishedHTG: true,
		WholeGenomeFinishing: true, PreDraft: true, Gap: true, Other: true,
		WGSContig: true,
	}
	gapTypes = map[string]bool{
		Fragment: true, Contig: true, SplitFinished: true, Clone: true,
		Centromere: true, ShortArm: true, Heterochromatin: true, Telomere: true,
	}
)

func (t ComponentType) String() string {
	return string(t)
}

// MarshalText encodes the type as its single character code.
func (t ComponentType) MarshalText() ([]byte, error) {
	return []byte{byte(t)}, nil
}

// Record is a single AGP line.  Exactly one of GapInfo and Component is set,
// selected by Type: GapInfo when Type is Gap and Component otherwise.
type Record struct {
	Object         string            `json:"object"`
	ObjectInterval genomics.Interval `json:"objectInterval"`
	// ObjectStrand is the orientation in which the object is being viewed.
	// Decoded records are always on the forward strand.
	ObjectStrand genomics.Strand `json:"objectStrand"`
	PartNumber   uint64          `json:"partNumber"`
	Type         ComponentType   `json:"type"`

	GapInfo   *GapInfo   `json:"gap,omitempty"`
	Component *Component `json:"component,omitempty"`
}

// GapInfo holds the fields of a gap record.
type GapInfo struct {
	Length  genomics.Distance `json:"length"`
	Type    string            `json:"type"`
	Linkage bool              `json:"linkage"`
}

// Component holds the fields of a component record.  Strand is relative to
// the object's forward strand.
type Component struct {
	ID       string            `json:"id"`
	Interval genomics.Interval `json:"interval"`
	Strand   genomics.Strand   `json:"strand"`
}

// IsGap reports whether r describes a gap.
func (r *Record) IsGap() bool {
	return r.Type == Gap
}

// Normalized returns a copy of r as seen from the forward strand of the
// object: the component strand becomes the effective strand and the object
// strand is Forward.  Decoding an encoded record yields its normalized form.
func (r Record) Normalized() Record {
	if r.Component != nil {
		c := *r.Component
		c.Strand = r.ObjectStrand.Compose(c.Strand)
		r.Component = &c
	}
	r.ObjectStrand = genomics.Forward
	return r
}

// Decode parses a single AGP line.  Comments and blank lines must already
// have been removed.
func Decode(text string) (*Record, error) {
	fields := strings.Split(text, "\t")
	if len(fields) < 5 {
		return nil, format.Malformed(text, fmt.Errorf("got %d fields, want %d or %d", len(fields), gapFields, componentFields))
	}

	var (
		rec Record
		err error
	)
	rec.Object = fields[0]
	if rec.Object == "" {
		return nil, format.Malformed(text, errors.New("empty object name"))
	}
	if rec.ObjectInterval, err = parseSpan(fields[1], fields[2]); err != nil {
		return nil, withText(err, text, "object")
	}
	if rec.PartNumber, err = strconv.ParseUint(fields[3], 10, 64); err != nil {
		return nil, format.Malformed(text, fmt.Errorf("parsing part number: %v", err))
	}
	if len(fields[4]) != 1 || !componentTypes[ComponentType(fields[4][0])] {
		return nil, format.Malformed(text, fmt.Errorf("unknown component type %q", fields[4]))
	}
	rec.Type = ComponentType(fields[4][0])

	if rec.IsGap() {
		if len(fields) != gapFields {
			return nil, format.Malformed(text, fmt.Errorf("got %d fields, want %d for a gap", len(fields), gapFields))
		}
		gap, err := decodeGap(fields[5:])
		if err != nil {
			return nil, format.Malformed(text, err)
		}
		rec.GapInfo = gap
		return &rec, nil
	}

	if len(fields) != componentFields {
		return nil, format.Malformed(text, fmt.Errorf("got %d fields, want %d for a component", len(fields), componentFields))
	}
	component := Component{ID: fields[5]}
	if component.ID == "" {
		return nil, format.Malformed(text, errors.New("empty component ID"))
	}
	if component.Interval, err = parseSpan(fields[6], fields[7]); err != nil {
		return nil, withText(err, text, "component")
	}
	if component.Strand, err = genomics.ParseStrand(fields[8]); err != nil {
		return nil, format.Malformed(text, err)
	}
	rec.Component = &component
	return &rec, nil
}

func decodeGap(fields []string) (*GapInfo, error) {
	length, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing gap length: %v", err)
	}
	if !gapTypes[fields[1]] {
		return nil, fmt.Errorf("unknown gap type %q", fields[1])
	}
	gap := &GapInfo{Length: genomics.Distance(length), Type: fields[1]}
	switch fields[2] {
	case linkageYes:
		gap.Linkage = true
	case linkageNo:
	default:
		return nil, fmt.Errorf("invalid linkage %q", fields[2])
	}
	return gap, nil
}

// parseSpan converts a 1-based inclusive pair of columns into an interval.
func parseSpan(first, last string) (genomics.Interval, error) {
	start, err := strconv.ParseUint(first, 10, 64)
	if err != nil {
		return genomics.Interval{}, format.Malformed("", fmt.Errorf("parsing start: %v", err))
	}
	end, err := strconv.ParseUint(last, 10, 64)
	if err != nil {
		return genomics.Interval{}, format.Malformed("", fmt.Errorf("parsing end: %v", err))
	}
	return genomics.FromOneBased(start, end)
}

func withText(err error, text, context string) error {
	var e *format.Error
	if errors.As(err, &e) {
		e.Text = text
		e.Err = fmt.Errorf("%s span: %v", context, e.Err)
	}
	return err
}

// Encode formats rec as a single AGP line without a trailing newline.  The
// component strand is written as seen from the forward strand of the object.
func Encode(rec *Record) (string, error) {
	if err := checkColumn("object name", rec.Object); err != nil {
		return "", err
	}
	if !componentTypes[rec.Type] {
		return "", fmt.Errorf("unknown component type %q", rec.Type)
	}

	first, last := rec.ObjectInterval.OneBased()
	prefix := fmt.Sprintf("%s\t%d\t%d\t%d\t%s", rec.Object, first, last, rec.PartNumber, rec.Type)

	if rec.IsGap() {
		if rec.GapInfo == nil || rec.Component != nil {
			return "", errors.New("gap record must carry only gap fields")
		}
		if !gapTypes[rec.GapInfo.Type] {
			return "", fmt.Errorf("unknown gap type %q", rec.GapInfo.Type)
		}
		linkage := linkageNo
		if rec.GapInfo.Linkage {
			linkage = linkageYes
		}
		return fmt.Sprintf("%s\t%d\t%s\t%s", prefix, rec.GapInfo.Length, rec.GapInfo.Type, linkage), nil
	}

	c := rec.Component
	if c == nil || rec.GapInfo != nil {
		return "", errors.New("component record must carry only component fields")
	}
	if err := checkColumn("component ID", c.ID); err != nil {
		return "", err
	}
	first, last = c.Interval.OneBased()
	strand := rec.ObjectStrand.Compose(c.Strand)
	return fmt.Sprintf("%s\t%s\t%d\t%d\t%s", prefix, c.ID, first, last, strand), nil
}

// checkColumn reports an error if value would not decode as the same single
// column: it must be non-empty and hold no tab, line break or comment marker.
func checkColumn(name, value string) error {
	if value == "" {
		return fmt.Errorf("empty %s", name)
	}
	if strings.ContainsAny(value, "\t\r\n#") {
		return fmt.Errorf("%s %q holds a tab, line break or '#'", name, value)
	}
	return nil
}
