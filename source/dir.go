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
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DirClient is a Client that serves objects from the local file system.
// Each bucket is a subdirectory of Root.
type DirClient struct {
	Root string
}

// NewObjectHandle returns a handle to the file Root/bucket/object.
func (c DirClient) NewObjectHandle(bucket, object string) ObjectHandle {
	return dirObjectHandle{root: c.Root, bucket: bucket, object: object}
}

type dirObjectHandle struct {
	root, bucket, object string
}

func (h dirObjectHandle) path() (string, error) {
	root, err := filepath.Abs(h.root)
	if err != nil {
		return "", fmt.Errorf("resolving root: %v", err)
	}
	path := filepath.Join(root, h.bucket, filepath.FromSlash(h.object))
	if rel, err := filepath.Rel(root, path); err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("object %s/%s is outside of the root directory", h.bucket, h.object)
	}
	return path, nil
}

func (h dirObjectHandle) NewRangeReader(_ context.Context, offset, length int64) (io.ReadCloser, error) {
	path, err := h.path()
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, ErrObjectNotExist
	}
	if err != nil {
		return nil, fmt.Errorf("opening object: %v", err)
	}
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		f.Close()
		return nil, fmt.Errorf("seeking to %d: %v", offset, err)
	}
	if length < 0 {
		return f, nil
	}
	return rangeReader{io.LimitReader(f, length), f}, nil
}

type rangeReader struct {
	io.Reader
	io.Closer
}
