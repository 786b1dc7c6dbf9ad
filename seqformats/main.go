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

// This binary converts and validates genome assembly maps (AGP), alignment
// chains, CLUSTAL alignments, FASTA sequences and RepeatMasker tables.
//
// Usage:
//
//	seqformats [flags] <command> [input...]
//
// Inputs may be local files, gs://bucket/object paths or "-" for standard
// input, which is also used when no inputs are given.  Inputs ending in .gz
// or .bgz are decompressed.
package main

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"net/http"
	"os"
	"sort"

	"cloud.google.com/go/storage"
	"github.com/googlegenomics/seqformats/bgzf"
	"github.com/googlegenomics/seqformats/internal/convert"
	"github.com/googlegenomics/seqformats/source"
	"github.com/pkg/profile"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

const (
	scope = "https://www.googleapis.com/auth/devstorage.read_only"
)

var (
	output     = flag.String("o", source.Stdio, "output filename")
	compress   = flag.Bool("bgzf", false, "compress the output with BGZF")
	bufferSize = flag.Int("buffer_size", 0, "line buffer size in bytes (0 selects the default)")
	width      = flag.Int("width", 0, "output line width for clustal, clustal-fasta and fasta-clustal (0 selects the default)")
	seqnos     = flag.Bool("seqnos", false, "append residue counts to clustal output lines")
	token      = flag.String("token", "", "OAuth2 access token for reading gs:// inputs (default: application default credentials)")
	profiling  = flag.String("profile", "", "write a cpu, mem or block profile to the current directory")
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <command> [input...]\n\nCommands:\n", os.Args[0])
	var names []string
	for name := range convert.Funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(flag.CommandLine.Output(), "  %s\n", name)
	}
	fmt.Fprintf(flag.CommandLine.Output(), "\nFlags:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}
	fn, ok := convert.Funcs[flag.Arg(0)]
	if !ok {
		log.Fatalf("Unknown command %q", flag.Arg(0))
	}
	inputs := flag.Args()[1:]
	if len(inputs) == 0 {
		inputs = []string{source.Stdio}
	}

	if err := run(context.Background(), fn, inputs); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, fn convert.Func, inputs []string) error {
	switch *profiling {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath(".")).Stop()
	case "block":
		defer profile.Start(profile.BlockProfile, profile.ProfilePath(".")).Stop()
	default:
		return fmt.Errorf("unknown profile type %q", *profiling)
	}

	var client source.Client
	for _, input := range inputs {
		if _, _, ok := source.ParseGCSPath(input); ok {
			c, err := newStorageClient(ctx)
			if err != nil {
				return fmt.Errorf("creating storage client: %v", err)
			}
			client = c
			break
		}
	}

	w, err := source.Create(*output, *compress)
	if err != nil {
		return fmt.Errorf("creating output: %v", err)
	}

	opts := convert.Options{
		BufferSize: *bufferSize,
		Width:      *width,
		SeqNos:     *seqnos,
	}
	blocked, _ := w.(interface{ Address() bgzf.Address })
	for i, input := range inputs {
		opts.Append = i > 0
		var start bgzf.Address
		if blocked != nil {
			start = blocked.Address()
		}
		n, err := convertInput(ctx, fn, input, w, client, opts)
		if err != nil {
			w.Close()
			return fmt.Errorf("%s: %v", input, err)
		}
		if blocked != nil {
			log.Printf("%s: converted %d records, output starts at virtual offset %s", input, n, start)
		} else {
			log.Printf("%s: converted %d records", input, n)
		}
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("closing output: %v", err)
	}
	return nil
}

func convertInput(ctx context.Context, fn convert.Func, input string, w io.Writer, client source.Client, opts convert.Options) (int, error) {
	r, err := source.Open(ctx, input, client)
	if err != nil {
		return 0, fmt.Errorf("opening input: %v", err)
	}
	defer r.Close()
	return fn(r, w, opts)
}

func newStorageClient(ctx context.Context) (source.Client, error) {
	if *token != "" {
		return source.NewClientFromToken(ctx, *token)
	}

	// For compatibility with other tools, read the standard cURL certificate
	// authority override from the environment.
	if bundle := os.Getenv("CURL_CA_BUNDLE"); bundle != "" {
		pem, err := ioutil.ReadFile(bundle)
		if err != nil {
			return nil, fmt.Errorf("reading CA override file %q: %v", bundle, err)
		}
		pool, err := x509.SystemCertPool()
		if err != nil {
			return nil, fmt.Errorf("initializing system certificate pool: %v", err)
		}
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("adding certificates from bundle %q", bundle)
		}
		ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					RootCAs: pool,
				}},
		})
		log.Printf("Using CA override bundle from %q", bundle)
	}

	hc, err := google.DefaultClient(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("finding default credentials: %v", err)
	}
	gcs, err := storage.NewClient(ctx, option.WithHTTPClient(hc))
	if err != nil {
		return nil, err
	}
	return source.GCSClient{Client: gcs}, nil
}
