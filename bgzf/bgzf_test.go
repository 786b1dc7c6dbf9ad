// Copyright 2017 Google Inc.
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

package bgzf

import (
	"bytes"
	"compress/gzip"
	"errors"
	"io"
	"io/ioutil"
	"strings"
	"testing"
)

func TestAddress(t *testing.T) {
	testCases := []struct {
		name  string
		block uint64
		data  uint16
		want  string
	}{
		{"maximum value", 0x0000ffffffffffff, 0xffff, "ffffffffffffffff"},
		{"zero data offset", 0xffff, 0x0000, "ffff0000"},
		{"zero", 0, 0, "0"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			address := NewAddress(tc.block, tc.data)
			if got, want := address.BlockOffset(), tc.block; got != want {
				t.Errorf("Wrong block offset: got 0x%016x, want 0x%016x", got, want)
			}
			if got, want := address.DataOffset(), tc.data; got != want {
				t.Errorf("Wrong data offset: got 0x%04x, want 0x%04x", got, want)
			}
			if got, want := address.String(), tc.want; got != want {
				t.Errorf("Wrong string result: got %q, want %q", got, want)
			}
		})
	}
}

func TestDecodeBlock(t *testing.T) {
	var encoded []byte
	inputs := [][]byte{[]byte("chr1\t1\t100\n"), bytes.Repeat([]byte("ACGT"), 1000), nil}
	for _, input := range inputs {
		block, err := EncodeBlock(input)
		if err != nil {
			t.Fatalf("EncodeBlock: %v", err)
		}
		encoded = append(encoded, block...)
	}

	// Use a ByteReader so that the gzip reader doesn't read too many bytes
	// (it does if the reader only implements Read).
	r := bytes.NewReader(encoded)
	for i, input := range inputs {
		data, _, err := DecodeBlock(r)
		if err != nil {
			t.Fatalf("Failed to read block %d: %v", i, err)
		}
		if !bytes.Equal(data, input) {
			t.Errorf("Wrong data in block %d: got %d bytes, want %d", i, len(data), len(input))
		}
	}
	if _, _, err := DecodeBlock(r); err != io.EOF {
		t.Errorf("DecodeBlock at end of input: got %v, want io.EOF", err)
	}
}

func TestDecodeBlock_EOFMarker(t *testing.T) {
	data, length, err := DecodeBlock(bytes.NewReader(EOFMarker))
	if err != nil {
		t.Fatalf("DecodeBlock: %v", err)
	}
	if got, want := length, len(EOFMarker); got != want {
		t.Errorf("Wrong compressed block length: got %d, want %d", got, want)
	}
	if len(data) != 0 {
		t.Errorf("EOF marker holds %d bytes of data", len(data))
	}
}

func TestDecodeBlock_NotBGZF(t *testing.T) {
	var buf bytes.Buffer
	gzw := gzip.NewWriter(&buf)
	gzw.Write([]byte("plain gzip"))
	gzw.Close()

	if _, _, err := DecodeBlock(&buf); err == nil {
		t.Errorf("DecodeBlock of a plain gzip member succeeded")
	}
}

func TestIsHeader(t *testing.T) {
	var plain bytes.Buffer
	gzw := gzip.NewWriter(&plain)
	gzw.Write([]byte("plain gzip"))
	gzw.Close()

	block, err := EncodeBlock([]byte("blocked"))
	if err != nil {
		t.Fatalf("EncodeBlock: %v", err)
	}

	testCases := []struct {
		name  string
		input []byte
		want  bool
	}{
		{"block", block, true},
		{"EOF marker", EOFMarker, true},
		{"plain gzip", plain.Bytes(), false},
		{"short", EOFMarker[:10], false},
		{"text", []byte("chain 1 a 10 + 0 5 b 10 + 0 5\n"), false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsHeader(tc.input); got != tc.want {
				t.Errorf("IsHeader() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestReader(t *testing.T) {
	data := []byte(strings.Repeat("chr1\t1\t1000\t1\tF\tAC123.1\t101\t1100\t-\n", 3000))

	var out bytes.Buffer
	w := NewWriter(&out)
	if _, err := w.Write(data); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	for _, size := range []int{1, 1000, 1 << 20} {
		r := NewReader(bytes.NewReader(out.Bytes()))

		var got []byte
		buf := make([]byte, size)
		for {
			n, err := r.Read(buf)
			got = append(got, buf[:n]...)
			if err == io.EOF {
				break
			}
			if err != nil {
				t.Fatalf("Read (buffer %d): %v", size, err)
			}
		}
		if !bytes.Equal(got, data) {
			t.Errorf("Read %d bytes (buffer %d), want %d", len(got), size, len(data))
		}
	}
}

func TestReader_Truncated(t *testing.T) {
	block, err := EncodeBlock([]byte("truncated block"))
	if err != nil {
		t.Fatalf("EncodeBlock: %v", err)
	}
	_, err = ioutil.ReadAll(NewReader(bytes.NewReader(block[:len(block)-4])))
	if err == nil || err == io.EOF {
		t.Errorf("Reading a truncated block: got %v, want an error", err)
	}
}

func TestEncodeBlock_ValidInputs(t *testing.T) {
	testCases := []struct {
		name       string
		data, want []byte
	}{
		{"empty block (EOF marker, embedded zlib sync marker)", nil, []byte{
			0x1f, 0x8b, 0x08, 0x04, 0x00, 0x00, 0x00, 0x00,
			0x00, 0xff, 0x06, 0x00, 0x42, 0x43, 0x02, 0x00,
			0x1e, 0x00, 0x01, 0x00, 0x00, 0xff, 0xff, 0x00,
			0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		}},
		{"single byte block", []byte{0x42}, []byte{
			0x1f, 0x8b, 0x08, 0x04, 0x00, 0x00, 0x00, 0x00,
			0x00, 0xff, 0x06, 0x00, 0x42, 0x43, 0x02, 0x00,
			0x20, 0x00, 0x72, 0x02, 0x04, 0x00, 0x00, 0xff,
			0xff, 0x31, 0xcf, 0xd0, 0x4a, 0x01, 0x00, 0x00,
			0x00,
		}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := EncodeBlock(tc.data)
			if err != nil {
				t.Fatalf("Failed to write block: %v", err)
			}
			if !bytes.Equal(got, tc.want) {
				t.Errorf("WriteBlock(): got %x, want %x", got, tc.want)
			}
		})
	}
}

func TestEncodeBlock_BlockSizes(t *testing.T) {
	if _, err := EncodeBlock(make([]byte, MaximumBlockSize+1)); err == nil {
		t.Fatal("EncodeBlock() should fail with block over size limit but didn't")
	}
	if _, err := EncodeBlock(make([]byte, MaximumBlockSize)); err != nil {
		t.Fatal("EncodeBlock() should succeed with block at size limit but didn't")
	}
}

func TestWriter(t *testing.T) {
	data := []byte(strings.Repeat("chain 100 chrY 58368225 + 0 100 chr5 151006098 - 0 100 1\n", 4000))

	var out bytes.Buffer
	w := NewWriter(&out)
	for p := data; len(p) > 0; {
		n := 1000
		if n > len(p) {
			n = len(p)
		}
		if _, err := w.Write(p[:n]); err != nil {
			t.Fatalf("Write: %v", err)
		}
		p = p[n:]
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if !bytes.HasSuffix(out.Bytes(), EOFMarker) {
		t.Errorf("Output does not end with the EOF marker")
	}

	r := bytes.NewReader(out.Bytes())
	var decoded []byte
	for {
		block, _, err := DecodeBlock(r)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("DecodeBlock: %v", err)
		}
		if len(block) > BlockDataSize {
			t.Errorf("Block holds %d bytes, more than %d", len(block), BlockDataSize)
		}
		decoded = append(decoded, block...)
	}
	if !bytes.Equal(decoded, data) {
		t.Errorf("Decoded %d bytes, want %d", len(decoded), len(data))
	}

	gzr, err := gzip.NewReader(bytes.NewReader(out.Bytes()))
	if err != nil {
		t.Fatalf("gzip.NewReader: %v", err)
	}
	got, err := ioutil.ReadAll(gzr)
	if err != nil {
		t.Fatalf("Reading as gzip: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("gzip reader returned %d bytes, want %d", len(got), len(data))
	}
}

func TestWriter_Address(t *testing.T) {
	var out bytes.Buffer
	w := NewWriter(&out)
	if _, err := w.Write([]byte("0123456789")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got, want := w.Address(), NewAddress(0, 10); got != want {
		t.Errorf("Wrong address before flush: got %s, want %s", got, want)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if got, want := w.Address(), NewAddress(uint64(out.Len()), 0); got != want {
		t.Errorf("Wrong address after flush: got %s, want %s", got, want)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestWriter_Errors(t *testing.T) {
	w := NewWriter(failingWriter{})
	if _, err := w.Write(make([]byte, 2*BlockDataSize)); err == nil {
		t.Errorf("Write to a failing writer succeeded")
	}
	if err := w.Close(); err == nil {
		t.Errorf("Close after a failed write succeeded")
	}
}
