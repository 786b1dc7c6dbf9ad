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

package line

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/googlegenomics/seqformats/internal/format"
)

func readAll(d *Decoder) ([]string, error) {
	var lines []string
	for {
		text, err := d.Next()
		if err == io.EOF {
			return lines, nil
		}
		if err != nil {
			return lines, err
		}
		lines = append(lines, text)
	}
}

func TestDecoder_BufferBoundaries(t *testing.T) {
	for _, size := range []int{1, 3, 4, 4096} {
		for _, input := range []string{"ACGTACGTAC", "ACGTACGTAC\n"} {
			t.Run(fmt.Sprintf("%d/%q", size, input), func(t *testing.T) {
				got, err := readAll(NewDecoder(strings.NewReader(input), size))
				if err != nil {
					t.Fatalf("Unexpected error: %v", err)
				}
				if want := []string{"ACGTACGTAC"}; !reflect.DeepEqual(got, want) {
					t.Errorf("Wrong lines: got %q, want %q", got, want)
				}
			})
		}
	}
}

func TestDecoder_Lines(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", nil},
		{"single newline", "\n", []string{""}},
		{"blank lines", "a\n\n\nb\n", []string{"a", "", "", "b"}},
		{"unterminated last line", "first\nsecond", []string{"first", "second"}},
		{"carriage returns", "one\r\ntwo\r\n", []string{"one", "two"}},
		{"long line", strings.Repeat("N", 10000) + "\nx", []string{strings.Repeat("N", 10000), "x"}},
	}
	readers := map[string]func(io.Reader) io.Reader{
		"plain":    func(r io.Reader) io.Reader { return r },
		"one byte": iotest.OneByteReader,
		"half":     iotest.HalfReader,
		"data+EOF": iotest.DataErrReader,
	}
	for _, tc := range testCases {
		for name, wrap := range readers {
			for _, size := range []int{1, 2, 7, 0} {
				t.Run(fmt.Sprintf("%s/%s/%d", tc.name, name, size), func(t *testing.T) {
					got, err := readAll(NewDecoder(wrap(strings.NewReader(tc.input)), size))
					if err != nil {
						t.Fatalf("Unexpected error: %v", err)
					}
					if !reflect.DeepEqual(got, tc.want) {
						t.Errorf("Wrong lines: got %q, want %q", got, tc.want)
					}
				})
			}
		}
	}
}

func TestDecoder_LineOrdinal(t *testing.T) {
	d := NewDecoder(strings.NewReader("a\nb\nc"), 2)
	for want := 1; want <= 3; want++ {
		if _, err := d.Next(); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if got := d.Line(); got != want {
			t.Errorf("Wrong ordinal: got %d, want %d", got, want)
		}
	}
	for i := 0; i < 2; i++ {
		if _, err := d.Next(); err != io.EOF {
			t.Fatalf("Expected io.EOF, got %v", err)
		}
	}
}

type failingReader struct {
	data string
	err  error
}

func (r *failingReader) Read(p []byte) (int, error) {
	if r.data == "" {
		return 0, r.err
	}
	n := copy(p, r.data)
	r.data = r.data[n:]
	return n, nil
}

func TestDecoder_SourceFailure(t *testing.T) {
	cause := errors.New("disk on fire")
	d := NewDecoder(&failingReader{"ok\npartial", cause}, 4)

	if got, err := d.Next(); err != nil || got != "ok" {
		t.Fatalf("Next() = %q, %v; want \"ok\", nil", got, err)
	}
	for i := 0; i < 2; i++ {
		_, err := d.Next()
		if !errors.Is(err, format.ErrSourceFailure) {
			t.Fatalf("Expected source failure, got %v", err)
		}
		if errors.Is(err, io.EOF) {
			t.Errorf("Source failure must not look like end of input: %v", err)
		}
		if !errors.Is(err, cause) {
			t.Errorf("Source failure lost its cause: %v", err)
		}
	}
}

type emptyReader struct{}

func (emptyReader) Read([]byte) (int, error) { return 0, nil }

func TestDecoder_NoProgress(t *testing.T) {
	_, err := NewDecoder(emptyReader{}, 0).Next()
	if !errors.Is(err, io.ErrNoProgress) {
		t.Errorf("Expected io.ErrNoProgress, got %v", err)
	}
}
