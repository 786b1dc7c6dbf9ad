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

package api

import (
	"io"

	"github.com/googlegenomics/seqformats/agp"
	"github.com/googlegenomics/seqformats/chain"
	"github.com/googlegenomics/seqformats/clustal"
	"github.com/googlegenomics/seqformats/fasta"
	"github.com/googlegenomics/seqformats/repeatmasker"
)

// decodeFunc reads every record in r and returns them with their count.
type decodeFunc func(r io.Reader, bufferSize int) (interface{}, int, error)

var decoders = map[string]decodeFunc{
	"agp": func(r io.Reader, bufferSize int) (interface{}, int, error) {
		records, err := agp.NewReaderSize(r, bufferSize).ReadAll()
		return records, len(records), err
	},
	"chain": func(r io.Reader, bufferSize int) (interface{}, int, error) {
		records, err := chain.NewReaderSize(r, bufferSize).ReadAll()
		return records, len(records), err
	},
	"clustal": func(r io.Reader, bufferSize int) (interface{}, int, error) {
		alignments, err := clustal.NewReaderSize(r, bufferSize).ReadAll()
		return alignments, len(alignments), err
	},
	"fasta": func(r io.Reader, bufferSize int) (interface{}, int, error) {
		records, err := fasta.NewReaderSize(r, bufferSize).ReadAll()
		return records, len(records), err
	},
	"repeatmasker": func(r io.Reader, bufferSize int) (interface{}, int, error) {
		records, err := repeatmasker.NewReaderSize(r, bufferSize).ReadAll()
		return records, len(records), err
	},
}
