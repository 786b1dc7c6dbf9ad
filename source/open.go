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

package source

import (
	"bufio"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"strings"

	"github.com/googlegenomics/seqformats/bgzf"
)

// Stdio names standard input for Open and standard output for Create.
const Stdio = "-"

const gcsScheme = "gs://"

var compressedSuffixes = []string{".gz", ".bgz"}

// ParseGCSPath splits a path of the form gs://bucket/object.
func ParseGCSPath(path string) (bucket, object string, ok bool) {
	if !strings.HasPrefix(path, gcsScheme) {
		return "", "", false
	}
	parts := strings.SplitN(path[len(gcsScheme):], "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// Open returns a reader for path: standard input for Stdio, an object read
// through client for gs://bucket/object paths and a local file otherwise.
// Paths ending in .gz or .bgz are decompressed, including BGZF files.
func Open(ctx context.Context, path string, client Client) (io.ReadCloser, error) {
	var (
		r   io.ReadCloser
		err error
	)
	switch {
	case path == Stdio:
		r = ioutil.NopCloser(os.Stdin)
	case strings.HasPrefix(path, gcsScheme):
		bucket, object, ok := ParseGCSPath(path)
		if !ok {
			return nil, fmt.Errorf("invalid object path %q", path)
		}
		if client == nil {
			return nil, errors.New("no storage client configured")
		}
		if r, err = client.NewObjectHandle(bucket, object).NewRangeReader(ctx, 0, -1); err != nil {
			return nil, fmt.Errorf("opening %s: %v", path, err)
		}
	default:
		if r, err = os.Open(path); err != nil {
			return nil, err
		}
	}

	if !Compressed(path) {
		return r, nil
	}
	return NewDecompressor(r)
}

// NewDecompressor returns a reader that decompresses the gzip or BGZF
// stream in r.  BGZF streams are decoded block by block.  Closing it closes
// r.
func NewDecompressor(r io.ReadCloser) (io.ReadCloser, error) {
	br := bufio.NewReader(r)
	header, _ := br.Peek(bgzfHeaderLen)
	if bgzf.IsHeader(header) {
		return &decompressor{bgzf.NewReader(br), r}, nil
	}

	gzr, err := gzip.NewReader(br)
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("initializing gzip reader: %v", err)
	}
	return &decompressor{gzr, r}, nil
}

const bgzfHeaderLen = 16

type decompressor struct {
	io.Reader
	source io.Closer
}

func (d *decompressor) Close() error {
	var err error
	if c, ok := d.Reader.(io.Closer); ok {
		err = c.Close()
	}
	if serr := d.source.Close(); serr != nil {
		return serr
	}
	return err
}

// Compressed reports whether path names a gzip or BGZF file.
func Compressed(path string) bool {
	for _, suffix := range compressedSuffixes {
		if strings.HasSuffix(path, suffix) {
			return true
		}
	}
	return false
}

// Create returns a writer for path, or for standard output if path is Stdio.
// If compress is set the output is written as BGZF.  Closing the writer
// completes the BGZF stream and closes the file.
func Create(path string, compress bool) (io.WriteCloser, error) {
	var w io.WriteCloser
	if path == Stdio {
		w = nopWriteCloser{os.Stdout}
	} else {
		f, err := os.Create(path)
		if err != nil {
			return nil, err
		}
		w = f
	}

	if !compress {
		return w, nil
	}
	return &compressor{bgzf.NewWriter(w), w}, nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error {
	return nil
}

type compressor struct {
	*bgzf.Writer
	sink io.Closer
}

func (c *compressor) Close() error {
	bgzferr := c.Writer.Close()
	if err := c.sink.Close(); err != nil {
		return err
	}
	return bgzferr
}
