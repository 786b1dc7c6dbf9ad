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
	"sort"

	"github.com/googlegenomics/seqformats/internal/format"
	"github.com/googlegenomics/seqformats/internal/genomics"
)

// Location is a stranded span on a named sequence.
type Location struct {
	Name   string            `json:"name"`
	Span   genomics.Interval `json:"span"`
	Strand genomics.Strand   `json:"strand"`
}

// Mapper translates locations between the coordinates of objects and the
// coordinates of the components they are assembled from.  Gaps have no
// component coordinates and are not mapped.
type Mapper struct {
	parts []part
}

type part struct {
	object    string
	span      genomics.Interval
	component string
	interval  genomics.Interval
	strand    genomics.Strand
}

// NewMapper returns a Mapper over the component records of records.  It
// returns an error of kind format.ErrStructuralMismatch if a component span
// differs in length from its object span.
func NewMapper(records []*Record) (*Mapper, error) {
	m := &Mapper{}
	for _, rec := range records {
		if rec.IsGap() {
			continue
		}
		c := rec.Component
		if got, want := c.Interval.Len(), rec.ObjectInterval.Len(); got != want {
			return nil, format.Mismatch("component %s span length %d differs from object span length %d", c.ID, got, want)
		}
		m.parts = append(m.parts, part{
			object:    rec.Object,
			span:      rec.ObjectInterval,
			component: c.ID,
			interval:  c.Interval,
			strand:    rec.ObjectStrand.Compose(c.Strand),
		})
	}
	sort.SliceStable(m.parts, func(i, j int) bool {
		if m.parts[i].object != m.parts[j].object {
			return m.parts[i].object < m.parts[j].object
		}
		return m.parts[i].span.Start() < m.parts[j].span.Start()
	})
	return m, nil
}

// ToObject maps a location on a component to the object locations it is
// placed at.  Only the portion of loc inside a placed component span is
// mapped; the result is empty if none of it is.
func (m *Mapper) ToObject(loc Location) []Location {
	var out []Location
	for _, p := range m.parts {
		if p.component != loc.Name {
			continue
		}
		a, b, ok := clip(loc.Span, p.interval)
		if !ok {
			continue
		}
		cs, ce, os := p.interval.Start(), p.interval.End(), p.span.Start()
		var span genomics.Interval
		if p.strand.IsForward() {
			span, _ = genomics.NewInterval(os+(a-cs), os+(b-cs))
		} else {
			span, _ = genomics.NewInterval(os+(ce-b), os+(ce-a))
		}
		out = append(out, Location{p.object, span, p.strand.Compose(loc.Strand)})
	}
	return out
}

// ToComponent maps a location on an object to the component locations
// underneath it, in object order.  Portions of loc that lie over gaps or
// outside the object are dropped.
func (m *Mapper) ToComponent(loc Location) []Location {
	var out []Location
	for _, p := range m.parts {
		if p.object != loc.Name {
			continue
		}
		a, b, ok := clip(loc.Span, p.span)
		if !ok {
			continue
		}
		cs, ce, os := p.interval.Start(), p.interval.End(), p.span.Start()
		var span genomics.Interval
		if p.strand.IsForward() {
			span, _ = genomics.NewInterval(cs+(a-os), cs+(b-os))
		} else {
			span, _ = genomics.NewInterval(ce-(b-os), ce-(a-os))
		}
		out = append(out, Location{p.component, span, p.strand.Compose(loc.Strand)})
	}
	return out
}

// clip returns the bounds of the overlap of x and y and whether it is
// non-empty.
func clip(x, y genomics.Interval) (uint64, uint64, bool) {
	a, b := x.Start(), x.End()
	if y.Start() > a {
		a = y.Start()
	}
	if y.End() < b {
		b = y.End()
	}
	return a, b, a < b
}
