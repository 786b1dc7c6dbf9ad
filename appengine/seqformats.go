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

// Package seqformats serves the decoding API from App Engine.
package seqformats

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/googlegenomics/seqformats/api"
	"github.com/googlegenomics/seqformats/source"
	"google.golang.org/appengine"
)

func init() {
	router := gin.New()
	router.Use(gin.Recovery())

	server := api.NewServer(newAppEngineClient, 8*1024*1024)
	if list := os.Getenv("BUCKET_WHITELIST"); list != "" {
		server.Whitelist(strings.Split(list, ","))
	}
	server.Export(router)
	http.Handle("/", router)
}

func newAppEngineClient(req *http.Request) (source.Client, http.Header, error) {
	return source.NewClientFromBearerToken(req.WithContext(appengine.NewContext(req)))
}
