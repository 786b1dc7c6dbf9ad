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

// Package analytics collects anonymous usage events for the conversion
// service and uploads them to Google Analytics.
package analytics

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	defaultEndpoint = "https://www.google-analytics.com"

	// maxBatchSize is the largest batch accepted by the collection endpoint.
	maxBatchSize = 20
)

// Hit is a single analytics event as a set of measurement parameters.
type Hit map[string]string

// Event returns an event hit.  The label may be empty and the value may be
// nil but category and action are required.
func Event(category, action, label string, value *int64) Hit {
	hit := Hit{"t": "event", "ec": category, "ea": action}
	if label != "" {
		hit["el"] = label
	}
	if value != nil {
		hit["ev"] = strconv.FormatInt(*value, 10)
	}
	return hit
}

// Decoded returns the hit recorded after count records of the named format
// have been decoded.
func Decoded(format string, count int) Hit {
	n := int64(count)
	return Event("Decode", "Records Decoded", format, &n)
}

// Failed returns the hit recorded when a request fails with the named error
// kind.
func Failed(format, kind string) Hit {
	return Event("Decode", "Request Failed", format+": "+kind, nil)
}

// Client uploads hits on behalf of one anonymous installation.
type Client struct {
	propertyID string
	clientID   string
	endpoint   string
	batchSize  int
	http       *http.Client
}

// NewClient returns a Client that reports hits for propertyID.  An empty
// clientID is replaced with a random one.
func NewClient(propertyID, clientID string) *Client {
	if clientID == "" {
		clientID = NewClientID()
	}
	return &Client{
		propertyID: propertyID,
		clientID:   clientID,
		endpoint:   defaultEndpoint,
		batchSize:  maxBatchSize,
		http:       http.DefaultClient,
	}
}

// NewClientID returns a random anonymous client identifier.
func NewClientID() string {
	return uuid.New().String()
}

// Send uploads hits in batches.
func (c *Client) Send(ctx context.Context, hits []Hit) error {
	for start := 0; start < len(hits); start += c.batchSize {
		end := start + c.batchSize
		if end > len(hits) {
			end = len(hits)
		}
		if err := c.upload(ctx, hits[start:end]); err != nil {
			return fmt.Errorf("uploading hits: %v", err)
		}
	}
	return nil
}

func (c *Client) upload(ctx context.Context, batch []Hit) error {
	var body bytes.Buffer
	for _, hit := range batch {
		payload := url.Values{
			"v":   []string{"1"},
			"tid": []string{c.propertyID},
			"cid": []string{c.clientID},
		}
		for key, value := range hit {
			payload.Set(key, value)
		}
		body.WriteString(payload.Encode())
		body.WriteByte('\n')
	}

	req, err := http.NewRequest("POST", c.endpoint+"/batch", &body)
	if err != nil {
		return fmt.Errorf("creating request: %v", err)
	}
	resp, err := c.http.Do(req.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("sending request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected response status: %v", resp.Status)
	}
	return nil
}

type contextKey int

const hitsKey contextKey = 1

// Middleware returns a gin handler that collects the hits recorded while
// serving a request and passes them to track once the request completes.
// Handlers record hits with TrackerFromContext.
func Middleware(track func([]Hit)) gin.HandlerFunc {
	return func(c *gin.Context) {
		var hits []Hit
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), hitsKey, &hits))
		c.Next()
		if len(hits) > 0 {
			track(hits)
		}
	}
}

// TrackerFromContext returns a function that records hits for the request
// that ctx belongs to.  Outside of Middleware it discards them.
func TrackerFromContext(ctx context.Context) func(Hit) {
	if hits, ok := ctx.Value(hitsKey).(*[]Hit); ok {
		return func(hit Hit) { *hits = append(*hits, hit) }
	}
	return func(Hit) {}
}
