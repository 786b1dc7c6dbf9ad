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

package repeatmasker

import (
	"bytes"
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"

	"github.com/googlegenomics/seqformats/internal/format"
	"github.com/googlegenomics/seqformats/internal/genomics"
)

var tableLines = []string{
	"  463   1.3  0.6  1.7  chr1        10001   10468 (249240153) +  (CCCTAA)n      Simple_repeat            1    463    (0)      1",
	" 3612  11.4 21.5  1.3  chr1        10469   11447 (249239174) C  TAR1          Satellite/telomeric  (399)   1712    483      2",
	"  484  25.1 13.2  0.0  chr1        11505   11675 (249238946) C  L1MC5a        LINE/L1             (2382)   5648   5452      3 *",
}

func table() string {
	return Header + strings.Join(tableLines, "\n") + "\n"
}

func interval(t *testing.T, start, end uint64) genomics.Interval {
	t.Helper()
	i, err := genomics.NewInterval(start, end)
	if err != nil {
		t.Fatalf("Bad interval: %v", err)
	}
	return i
}

func TestDecode(t *testing.T) {
	want := []*Record{
		{
			Score: 463, PctDivergence: 1.3, PctDeleted: 0.6, PctInserted: 1.7,
			QueryName: "chr1", QuerySpan: interval(t, 10000, 10468), QueryLeft: 249240153,
			Strand: genomics.Forward,
			RepeatName: "(CCCTAA)n", RepeatClass: "Simple_repeat",
			RepeatSpan: interval(t, 0, 463), RepeatLeft: 0,
			ID: 1,
		},
		{
			Score: 3612, PctDivergence: 11.4, PctDeleted: 21.5, PctInserted: 1.3,
			QueryName: "chr1", QuerySpan: interval(t, 10468, 11447), QueryLeft: 249239174,
			Strand: genomics.Reverse,
			RepeatName: "TAR1", RepeatClass: "Satellite/telomeric",
			RepeatSpan: interval(t, 482, 1712), RepeatLeft: 399,
			ID: 2,
		},
		{
			Score: 484, PctDivergence: 25.1, PctDeleted: 13.2, PctInserted: 0,
			QueryName: "chr1", QuerySpan: interval(t, 11504, 11675), QueryLeft: 249238946,
			Strand: genomics.Reverse,
			RepeatName: "L1MC5a", RepeatClass: "LINE/L1",
			RepeatSpan: interval(t, 5451, 5648), RepeatLeft: 2382,
			ID: 3, InHigherScoring: true,
		},
	}
	for i, text := range tableLines {
		got, err := Decode(text)
		if err != nil {
			t.Fatalf("Decode(%q): %v", text, err)
		}
		if !reflect.DeepEqual(got, want[i]) {
			t.Errorf("Decode(%q):\ngot  %+v\nwant %+v", text, got, want[i])
		}
	}
}

func TestDecode_Errors(t *testing.T) {
	fields := strings.Fields(tableLines[1])
	with := func(i int, value string) string {
		f := append([]string(nil), fields...)
		f[i] = value
		return strings.Join(f, " ")
	}

	testCases := []struct {
		name  string
		input string
		kind  error
	}{
		{"too few fields", strings.Join(fields[:14], " "), format.ErrMalformedLine},
		{"bad score", with(0, "high"), format.ErrMalformedLine},
		{"bad percentage", with(2, "x"), format.ErrMalformedLine},
		{"bad query left", with(7, "249239174"), format.ErrMalformedLine},
		{"bad strand", with(8, "-"), format.ErrMalformedLine},
		{"bad repeat left", with(11, "(399"), format.ErrMalformedLine},
		{"bad trailing mark", tableLines[1] + " +", format.ErrMalformedLine},
		{"query start after end", with(5, "11449"), format.ErrCoordinateInvariant},
		{"query start zero", with(5, "0"), format.ErrCoordinateInvariant},
		{"repeat begin after end", with(13, "1714"), format.ErrCoordinateInvariant},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(tc.input)
			if err == nil {
				t.Fatalf("Decode(%q) succeeded, want error", tc.input)
			}
			if !errors.Is(err, tc.kind) {
				t.Errorf("Wrong error kind: got %v, want %v", err, tc.kind)
			}
		})
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	for _, text := range tableLines {
		rec, err := Decode(text)
		if err != nil {
			t.Fatalf("Decode(%q): %v", text, err)
		}
		encoded, err := Encode(rec)
		if err != nil {
			t.Fatalf("Encode(%+v): %v", rec, err)
		}
		if got, want := encoded, strings.Join(strings.Fields(text), "\t"); got != want {
			t.Errorf("Encode:\ngot  %q\nwant %q", got, want)
		}
		got, err := Decode(encoded)
		if err != nil {
			t.Fatalf("Decode(%q): %v", encoded, err)
		}
		if !reflect.DeepEqual(got, rec) {
			t.Errorf("Round trip mismatch: got %+v, want %+v", got, rec)
		}
	}
}

func TestEncode_Invalid(t *testing.T) {
	valid, err := Decode(tableLines[0])
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	testCases := []struct {
		name   string
		modify func(*Record)
	}{
		{"empty query name", func(r *Record) { r.QueryName = "" }},
		{"empty repeat name", func(r *Record) { r.RepeatName = "" }},
		{"empty repeat class", func(r *Record) { r.RepeatClass = "" }},
		{"query name with space", func(r *Record) { r.QueryName = "chr 1" }},
		{"repeat class with tab", func(r *Record) { r.RepeatClass = "LINE\tL1" }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := *valid
			tc.modify(&rec)
			if got, err := Encode(&rec); err == nil {
				t.Errorf("Encode unexpectedly succeeded: %q", got)
			}
		})
	}
}

func TestReader(t *testing.T) {
	for _, size := range []int{1, 9, 0} {
		records, err := NewReaderSize(strings.NewReader(table()+"\n"), size).ReadAll()
		if err != nil {
			t.Fatalf("ReadAll (buffer %d): %v", size, err)
		}
		if got, want := len(records), len(tableLines); got != want {
			t.Fatalf("Wrong number of records: got %d, want %d", got, want)
		}
		if got, want := records[2].ID, 3; got != want {
			t.Errorf("Wrong ID: got %d, want %d", got, want)
		}
	}
}

func TestReader_Errors(t *testing.T) {
	input := Header + tableLines[0] + "\n" + "bogus line\n"
	r := NewReader(strings.NewReader(input))
	if _, err := r.Read(); err != nil {
		t.Fatalf("Read: %v", err)
	}
	_, err := r.Read()
	if !errors.Is(err, format.ErrMalformedLine) {
		t.Errorf("Wrong error: got %v, want %v", err, format.ErrMalformedLine)
	}
	if got, want := format.LineOf(err), 5; got != want {
		t.Errorf("Wrong error line: got %d, want %d", got, want)
	}
}

func TestReader_ConcatenatedTables(t *testing.T) {
	input := table() + "\n" + table()
	for _, size := range []int{1, 9, 0} {
		records, err := NewReaderSize(strings.NewReader(input), size).ReadAll()
		if err != nil {
			t.Fatalf("ReadAll (buffer %d): %v", size, err)
		}
		if got, want := len(records), 2*len(tableLines); got != want {
			t.Fatalf("Wrong number of records (buffer %d): got %d, want %d", size, got, want)
		}
		if !reflect.DeepEqual(records[:len(tableLines)], records[len(tableLines):]) {
			t.Errorf("Tables differ after the repeated header")
		}
	}
}

func TestReader_HeaderOnly(t *testing.T) {
	for _, input := range []string{"", Header, Header + "\n\n"} {
		if _, err := NewReader(strings.NewReader(input)).Read(); err != io.EOF {
			t.Errorf("Read(%q): got %v, want io.EOF", input, err)
		}
	}
}

func TestWriter(t *testing.T) {
	records, err := NewReader(strings.NewReader(table())).ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}

	var buf bytes.Buffer
	w := NewWriter(&buf)
	for _, rec := range records {
		if err := w.Write(rec); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if !strings.HasPrefix(buf.String(), Header) {
		t.Errorf("Output does not start with the header:\n%s", buf.String())
	}

	reread, err := NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("ReadAll of written table: %v", err)
	}
	if !reflect.DeepEqual(reread, records) {
		t.Errorf("Round trip mismatch: got %+v, want %+v", reread, records)
	}
}

func TestWriter_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := NewWriter(&buf).Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if got, want := buf.String(), Header; got != want {
		t.Errorf("Wrong output: got %q, want %q", got, want)
	}
}

func TestWriter_OmitHeader(t *testing.T) {
	rec, err := Decode(tableLines[0])
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.OmitHeader = true
	if err := w.Write(rec); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	want, err := Encode(rec)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if got := buf.String(); got != want+"\n" {
		t.Errorf("Wrong output: got %q, want %q", got, want+"\n")
	}
}
