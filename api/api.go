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

// Package api implements an HTTP service that decodes, validates and
// converts genome assembly maps (AGP), alignment chains, CLUSTAL multiple
// alignments, FASTA sequences and RepeatMasker annotation tables.
package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/googlegenomics/seqformats/agp"
	"github.com/googlegenomics/seqformats/analytics"
	"github.com/googlegenomics/seqformats/internal/convert"
	"github.com/googlegenomics/seqformats/internal/format"
	"github.com/googlegenomics/seqformats/internal/genomics"
	"github.com/googlegenomics/seqformats/source"
)

const (
	// MaxBodySize is the largest request body the server will read.
	MaxBodySize = 256 << 20

	textContentType = "text/plain; charset=utf-8"
)

var (
	errInvalidOrUnspecifiedID = errors.New("invalid or unspecified object ID")
	errBodyTooLarge           = errors.New("request body too large")
)

// NewStorageClientFunc is the type of function that constructs the appropriate
// storage client to satisfy the incoming request.  Any headers that caused
// this particular client to be created are returned as well.
type NewStorageClientFunc func(*http.Request) (source.Client, http.Header, error)

// Server provides the conversion service.  Must be created with NewServer.
type Server struct {
	newStorageClient NewStorageClientFunc
	bufferSize       int
	whitelist        map[string]bool
	maxBodySize      int64
}

// NewServer returns a new Server that decodes with line buffers of
// bufferSize bytes.  The server calls newStorageClient on each object request
// to determine which storage client to use.
func NewServer(newStorageClient NewStorageClientFunc, bufferSize int) *Server {
	return &Server{newStorageClient, bufferSize, make(map[string]bool), MaxBodySize}
}

// Whitelist adds buckets to the set of buckets which the server is allowed to
// access. If Whitelist is never called for a given Server then reads from any
// bucket are allowed.
func (server *Server) Whitelist(buckets []string) {
	for _, bucket := range buckets {
		server.whitelist[bucket] = true
	}
}

// Export registers the service endpoints with router.
func (server *Server) Export(router gin.IRouter) {
	v1 := router.Group("/v1", forwardOrigin)
	v1.POST("/decode/:format", server.serveDecode)
	v1.POST("/agp/normalize", server.serveConversion("agp", convert.NormalizeAGP))
	v1.POST("/agp/validate", server.serveConversion("agp", convert.ValidateAGP))
	v1.POST("/agp/map", server.serveMap)
	v1.POST("/chain/flip", server.serveConversion("chain", convert.FlipChains))
	v1.POST("/clustal/reformat", server.serveConversion("clustal", convert.ReformatClustal))
	v1.POST("/clustal/fasta", server.serveConversion("clustal", convert.ClustalToFASTA))
	v1.POST("/fasta/clustal", server.serveConversion("fasta", convert.FASTAToClustal))
	v1.POST("/repeatmasker/normalize", server.serveConversion("repeatmasker", convert.NormalizeRepeats))
	v1.GET("/objects/:format/:bucket/*object", server.serveObject)
}

func (server *Server) serveDecode(c *gin.Context) {
	name := c.Param("format")
	decode, ok := decoders[name]
	if !ok {
		writeError(c, newUnsupportedFormatError(name))
		return
	}
	server.decodeAndRespond(c, name, decode, server.requestBody(c), nil)
}

func (server *Server) serveObject(c *gin.Context) {
	ctx := c.Request.Context()

	name := c.Param("format")
	decode, ok := decoders[name]
	if !ok {
		writeError(c, newUnsupportedFormatError(name))
		return
	}

	bucket, object := c.Param("bucket"), strings.TrimPrefix(c.Param("object"), "/")
	if bucket == "" || object == "" {
		writeError(c, newInvalidInputError("parsing object ID", errInvalidOrUnspecifiedID))
		return
	}

	if err := server.checkWhitelist(bucket); err != nil {
		writeError(c, newPermissionDeniedError("checking whitelist", err))
		return
	}

	client, _, err := server.newStorageClient(c.Request)
	if err != nil {
		writeError(c, newStorageError("creating client", err))
		return
	}

	data, err := client.NewObjectHandle(bucket, object).NewRangeReader(ctx, 0, -1)
	if err != nil {
		writeError(c, newStorageError("opening object", err))
		return
	}
	if source.Compressed(object) {
		if data, err = source.NewDecompressor(data); err != nil {
			writeError(c, newInvalidInputError("opening object", err))
			return
		}
	}
	defer data.Close()

	server.decodeAndRespond(c, name, decode, data, gin.H{"bucket": bucket, "object": object})
}

func (server *Server) decodeAndRespond(c *gin.Context, name string, decode decodeFunc, r io.Reader, extra gin.H) {
	track := analytics.TrackerFromContext(c.Request.Context())

	records, count, err := decode(r, server.bufferSize)
	if err != nil {
		track(analytics.Failed(name, format.Kind(err)))
		writeError(c, newFormatError(err))
		return
	}
	track(analytics.Decoded(name, count))

	if count == 0 {
		records = []interface{}{}
	}
	response := gin.H{
		"format":  name,
		"count":   count,
		"records": records,
	}
	for k, v := range extra {
		response[k] = v
	}
	c.JSON(http.StatusOK, response)
}

// serveConversion returns a handler that converts the request body with fn
// and responds with the converted text.
func (server *Server) serveConversion(name string, fn convert.Func) gin.HandlerFunc {
	return func(c *gin.Context) {
		track := analytics.TrackerFromContext(c.Request.Context())

		width, err := queryInt(c, "width", 0)
		if err != nil {
			writeError(c, newInvalidInputError("parsing width", err))
			return
		}
		seqnos, err := queryBool(c, "seqnos")
		if err != nil {
			writeError(c, newInvalidInputError("parsing seqnos", err))
			return
		}
		opts := convert.Options{
			BufferSize: server.bufferSize,
			Width:      width,
			SeqNos:     seqnos,
		}

		var buf bytes.Buffer
		count, err := fn(server.requestBody(c), &buf, opts)
		if err != nil {
			if format.IsDecodingError(err) {
				track(analytics.Failed(name, format.Kind(err)))
				writeError(c, newFormatError(err))
				return
			}
			writeError(c, newInvalidInputError("converting records", err))
			return
		}
		track(analytics.Decoded(name, count))
		c.Data(http.StatusOK, textContentType, buf.Bytes())
	}
}

// serveMap maps the location given by the query parameters through the AGP
// file in the request body.  The to parameter selects the direction: "object"
// maps a component location onto the objects and "component" maps an object
// location onto its components.
func (server *Server) serveMap(c *gin.Context) {
	track := analytics.TrackerFromContext(c.Request.Context())

	loc, err := queryLocation(c)
	if err != nil {
		writeError(c, newInvalidInputError("parsing location", err))
		return
	}
	to := c.Query("to")
	if to != "object" && to != "component" {
		writeError(c, newInvalidInputError("parsing direction", fmt.Errorf("to must be object or component, got %q", to)))
		return
	}

	records, err := agp.NewReaderSize(server.requestBody(c), server.bufferSize).ReadAll()
	if err == nil {
		var mapper *agp.Mapper
		if mapper, err = agp.NewMapper(records); err == nil {
			track(analytics.Decoded("agp", len(records)))
			locations := mapper.ToComponent(loc)
			if to == "object" {
				locations = mapper.ToObject(loc)
			}
			if locations == nil {
				locations = []agp.Location{}
			}
			c.JSON(http.StatusOK, gin.H{"locations": locations})
			return
		}
	}
	track(analytics.Failed("agp", format.Kind(err)))
	writeError(c, newFormatError(err))
}

func queryLocation(c *gin.Context) (agp.Location, error) {
	name := c.Query("name")
	if name == "" {
		return agp.Location{}, errors.New("missing name")
	}
	start, err := strconv.ParseUint(c.Query("start"), 10, 64)
	if err != nil {
		return agp.Location{}, fmt.Errorf("parsing start: %v", err)
	}
	end, err := strconv.ParseUint(c.Query("end"), 10, 64)
	if err != nil {
		return agp.Location{}, fmt.Errorf("parsing end: %v", err)
	}
	span, err := genomics.NewInterval(start, end)
	if err != nil {
		return agp.Location{}, err
	}
	strand := genomics.Forward
	if value := c.Query("strand"); value != "" {
		if strand, err = genomics.ParseStrand(value); err != nil {
			return agp.Location{}, err
		}
	}
	return agp.Location{Name: name, Span: span, Strand: strand}, nil
}

func (server *Server) checkWhitelist(bucket string) error {
	if len(server.whitelist) == 0 || server.whitelist[bucket] {
		return nil
	}
	return fmt.Errorf("access to bucket %s is not allowed", bucket)
}

// requestBody limits the request body to the server's maximum size.  Reading
// past the limit fails with errBodyTooLarge.
func (server *Server) requestBody(c *gin.Context) io.Reader {
	return &limitedBody{r: http.MaxBytesReader(c.Writer, c.Request.Body, server.maxBodySize), limit: server.maxBodySize}
}

type limitedBody struct {
	r     io.Reader
	n     int64
	limit int64
}

func (b *limitedBody) Read(p []byte) (int, error) {
	n, err := b.r.Read(p)
	b.n += int64(n)
	if err != nil && err != io.EOF && b.n >= b.limit {
		return n, errBodyTooLarge
	}
	return n, err
}

func queryInt(c *gin.Context, key string, def int) (int, error) {
	value := c.Query(key)
	if value == "" {
		return def, nil
	}
	return strconv.Atoi(value)
}

func queryBool(c *gin.Context, key string) (bool, error) {
	value := c.Query(key)
	if value == "" {
		return false, nil
	}
	return strconv.ParseBool(value)
}

func forwardOrigin(c *gin.Context) {
	if origin := c.Request.Header.Get("Origin"); origin != "" {
		c.Header("Access-Control-Allow-Origin", origin)
	}
	c.Next()
}
