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

// This binary provides an HTTP service that decodes, validates and
// normalizes sequence annotation formats, either posted directly or read from
// objects in GCS.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/googlegenomics/seqformats/analytics"
	"github.com/googlegenomics/seqformats/api"
	"github.com/googlegenomics/seqformats/source"
)

var (
	port       = flag.Int("port", 80, "HTTP service port")
	bufferSize = flag.Int("buffer_size", 0, "line buffer size in bytes (0 selects the default)")

	secure    = flag.Bool("secure", false, "serve in HTTPS-only mode and forward client bearer tokens")
	httpsCert = flag.String("https_cert", "", "HTTPS certificate file")
	httpsKey  = flag.String("https_key", "", "HTTPS key file")

	buckets   = flag.String("buckets", "", "if set, restricts reads to a comma-separated list of buckets")
	directory = flag.String("directory", "", "if set, serves objects from this local directory (one subdirectory per bucket) instead of GCS")

	defaultCredentials = flag.Bool("default_credentials", false, "read objects with the server's application default credentials")

	// Enable or disable anonymous usage tracking.
	//
	// If enabled, the formats decoded by the server and the kinds of decoding
	// failures are logged to Google via Google Analytics.  No user identifying
	// information or file content is ever sent.
	trackUsage = flag.Bool("track_usage", false, "anonymous usage tracking")
)

func main() {
	flag.Parse()

	if *secure && (*httpsCert == "" || *httpsKey == "") {
		log.Fatalf("You must specify both -https_cert and -https_key in secure mode.")
	}

	if *secure && *defaultCredentials {
		log.Fatalf("-secure and -default_credentials are mutually exclusive.")
	}

	newStorageClient := source.NewPublicClient
	switch {
	case *secure:
		newStorageClient = source.NewClientFromBearerToken
	case *defaultCredentials:
		newStorageClient = source.NewDefaultClient
	}
	if *directory != "" {
		log.Printf("Serving objects from %q", *directory)
		dir := source.DirClient{Root: *directory}
		newStorageClient = func(*http.Request) (source.Client, http.Header, error) {
			return dir, nil, nil
		}
	}

	router := gin.Default()
	if *trackUsage {
		log.Printf("Enabling anonymous usage tracking")

		client := analytics.NewClient("UA-103022118-1", analytics.NewClientID())
		router.Use(analytics.Middleware(func(hits []analytics.Hit) {
			go func() {
				if err := client.Send(context.Background(), hits); err != nil {
					log.Printf("Failed to send %d hits to analytics: %v", len(hits), err)
				}
			}()
		}))
	}

	server := api.NewServer(newStorageClient, *bufferSize)
	if *buckets != "" {
		server.Whitelist(strings.Split(*buckets, ","))
	}
	server.Export(router)

	address := fmt.Sprintf(":%d", *port)
	if *secure {
		if err := http.ListenAndServeTLS(address, *httpsCert, *httpsKey, router); err != nil {
			log.Fatalf("HTTPS server returned an error: %v", err)
		}
	} else {
		if err := http.ListenAndServe(address, router); err != nil {
			log.Fatalf("HTTP server returned an error: %v", err)
		}
	}
}
