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

// Package bgzf provides support for writing and decoding BGZF files, the
// blocked gzip variant used for indexed genomics data.
package bgzf

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// MaximumBlockSize is the maximum BGZF block size.
const MaximumBlockSize = 65536

// BlockDataSize is the amount of uncompressed data stored in each block by
// Writer.  It leaves room for the gzip framing of incompressible data.
const BlockDataSize = 0xff00

// EOFMarker is the empty block that terminates a BGZF file.
var EOFMarker = []byte{
	0x1f, 0x8b, 0x08, 0x04, 0x00, 0x00, 0x00, 0x00,
	0x00, 0xff, 0x06, 0x00, 0x42, 0x43, 0x02, 0x00,
	0x1b, 0x00, 0x03, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00,
}

// Address stores a BGZF "virtual address".  The lower 16 bits store the data
// offset inside the uncompressed stream and upper 48 bits store the block
// offset inside the compressed archive set.
type Address uint64

// BlockOffset returns the offset to the start of the compressed block.
func (v Address) BlockOffset() uint64 {
	return uint64(v >> 16)
}

// DataOffset returns the offset to the data in the uncompressed block.
func (v Address) DataOffset() uint16 {
	return uint16(v & 0xffff)
}

// String returns v in hexadecimal.
func (v Address) String() string {
	return strconv.FormatUint(uint64(v), 16)
}

// NewAddress returns a new Address with the provided offsets.
func NewAddress(blockOffset uint64, dataOffset uint16) Address {
	return Address(blockOffset<<16 | uint64(dataOffset))
}

// DecodeBlock decodes a single BGZF block from r and returns the uncompressed
// data and the original block size (or an error).  Note that DecodeBlock may
// read bytes past the end of the block if r does not implement io.ByteReader.
// DecodeBlock returns io.EOF if r holds no further blocks.
func DecodeBlock(r io.Reader) ([]byte, int, error) {
	gzr, err := gzip.NewReader(r)
	if err == io.EOF {
		return nil, 0, io.EOF
	}
	if err != nil {
		return nil, 0, fmt.Errorf("initializing gzip reader: %v", err)
	}
	defer gzr.Close()

	extra := gzr.Header.Extra
	if len(extra) < 6 {
		return nil, 0, fmt.Errorf("extra field too short: %d bytes", len(extra))
	}
	if extra[0] != 0x42 || extra[1] != 0x43 {
		return nil, 0, fmt.Errorf("unexpected extra ID: %x", extra[0:2])
	}
	if extra[2] != 2 || extra[3] != 0 {
		return nil, 0, fmt.Errorf("unexpected extra length: %x", extra[2:4])
	}

	gzr.Multistream(false)
	var buffer bytes.Buffer
	if _, err := io.Copy(&buffer, gzr); err != nil {
		return nil, 0, fmt.Errorf("decompressing data: %v", err)
	}
	return buffer.Bytes(), (int(extra[4]) | int(extra[5])<<8) + 1, nil
}

// EncodeBlock returns a single BGZF block that encodes the bytes in data.
func EncodeBlock(data []byte) ([]byte, error) {
	if len(data) > MaximumBlockSize {
		return nil, errors.New("data exceeds maximum block size")
	}

	var buffer bytes.Buffer
	gzw := gzip.NewWriter(&buffer)

	gzw.Header.Extra = []byte{
		0x42, 0x43, // Extra ID.
		0x02, 0x00, // Length of extra data (2 bytes).
		0x88, 0x88, // BSIZE (filled in after writing the archive).
	}
	if _, err := gzw.Write(data); err != nil {
		return nil, fmt.Errorf("writing compressed data: %v", err)
	}
	if err := gzw.Close(); err != nil {
		return nil, fmt.Errorf("closing writer: %v", err)
	}
	bsize := buffer.Len() - 1
	encoded := buffer.Bytes()
	encoded[16] = byte(bsize)
	encoded[17] = byte(bsize >> 8)
	return encoded, nil
}

// IsHeader reports whether p begins with the header of a BGZF block: a gzip
// member header whose extra field starts with the BGZF subfield.
func IsHeader(p []byte) bool {
	return len(p) >= 16 &&
		p[0] == 0x1f && p[1] == 0x8b && p[2] == 0x08 && p[3]&0x04 != 0 &&
		p[12] == 0x42 && p[13] == 0x43 && p[14] == 0x02 && p[15] == 0x00
}

// Reader decompresses a BGZF stream one block at a time.
type Reader struct {
	r     *bufio.Reader
	block []byte
	pos   int
	err   error
}

// NewReader returns a Reader that decodes the blocks in r.
func NewReader(r io.Reader) *Reader {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &Reader{r: br}
}

// Read reads decompressed data, decoding further blocks as needed.  Empty
// blocks, including the EOF marker, are skipped.
func (r *Reader) Read(p []byte) (int, error) {
	for r.pos == len(r.block) {
		if r.err != nil {
			return 0, r.err
		}
		block, _, err := DecodeBlock(r.r)
		if err != nil {
			r.err = err
			continue
		}
		r.block, r.pos = block, 0
	}
	n := copy(p, r.block[r.pos:])
	r.pos += n
	return n, nil
}

// Writer compresses a stream into BGZF blocks.  Close must be called to
// write the final block and the EOF marker; it does not close the
// underlying writer.
type Writer struct {
	w      io.Writer
	buf    []byte
	offset uint64
	err    error
}

// NewWriter returns a Writer that writes blocks to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, buf: make([]byte, 0, BlockDataSize)}
}

// Write buffers p, emitting a block each time BlockDataSize bytes are held.
func (w *Writer) Write(p []byte) (int, error) {
	var n int
	for len(p) > 0 {
		if w.err != nil {
			return n, w.err
		}
		c := copy(w.buf[len(w.buf):cap(w.buf)], p)
		w.buf = w.buf[:len(w.buf)+c]
		n += c
		p = p[c:]
		if len(w.buf) == cap(w.buf) {
			w.Flush()
		}
	}
	return n, w.err
}

// Flush writes any buffered data as a complete block.
func (w *Writer) Flush() error {
	if w.err != nil || len(w.buf) == 0 {
		return w.err
	}
	block, err := EncodeBlock(w.buf)
	if err != nil {
		w.err = err
		return err
	}
	w.buf = w.buf[:0]
	w.emit(block)
	return w.err
}

// Address returns the virtual address of the next byte to be written.
func (w *Writer) Address() Address {
	return NewAddress(w.offset, uint16(len(w.buf)))
}

// Close flushes buffered data and writes the EOF marker.
func (w *Writer) Close() error {
	if err := w.Flush(); err != nil {
		return err
	}
	w.emit(EOFMarker)
	return w.err
}

func (w *Writer) emit(block []byte) {
	if w.err != nil {
		return
	}
	n, err := w.w.Write(block)
	w.offset += uint64(n)
	if err != nil {
		w.err = fmt.Errorf("writing block: %v", err)
	}
}
