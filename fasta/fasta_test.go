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


package fasta

import (
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"

	"github.com/googlegenomics/seqformats/internal/format"
)

const records = "; leading comment\n" +
	">seq1 first sequence  \n" +
	"AC GT\n" +
	"TT\n" +
	"\n" +
	">seq2\r\n" +
	"A-C\r\n" +
	">empty\n"

func TestReader(t *testing.T) {
	want := []*Record{
		{Name: "seq1", Description: "first sequence", Sequence: "ACGTTT"},
		{Name: "seq2", Sequence: "A-C"},
		{Name: "empty"},
	}
	for _, size := range []int{1, 3, 0} {
		got, err := NewReaderSize(strings.NewReader(records), size).ReadAll()
		if err != nil {
			t.Fatalf("ReadAll (buffer %d): %v", size, err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("ReadAll (buffer %d): got %+v, want %+v", size, got, want)
		}
	}
}

func TestReader_NoRecords(t *testing.T) {
	testCases := []string{"", "\n", "no titles here\nACGT\n"}
	for _, input := range testCases {
		r := NewReader(strings.NewReader(input))
		for i := 0; i < 2; i++ {
			if _, err := r.Read(); err != io.EOF {
				t.Errorf("Read(%q): got %v, want %v", input, err, io.EOF)
			}
		}
	}
}

func TestReader_EOFIsSticky(t *testing.T) {
	r := NewReader(strings.NewReader(">a\nAC"))
	if _, err := r.Read(); err != nil {
		t.Fatalf("Read: %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := r.Read(); err != io.EOF {
			t.Errorf("Read: got %v, want %v", err, io.EOF)
		}
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("disk on fire")
}

func TestReader_SourceFailure(t *testing.T) {
	r := NewReader(io.MultiReader(strings.NewReader(">a\nAC\n"), failingReader{}))
	if _, err := r.Read(); !errors.Is(err, format.ErrSourceFailure) {
		t.Errorf("Read: got %v, want %v", err, format.ErrSourceFailure)
	}
}
