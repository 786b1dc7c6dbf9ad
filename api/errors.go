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
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/googlegenomics/seqformats/internal/format"
	"github.com/googlegenomics/seqformats/source"
	"google.golang.org/api/googleapi"
)

// apiError is used to capture errors that have a name and status code in the
// service's error responses.
type apiError struct {
	name  string
	code  int
	cause error
	line  int
}

func (err *apiError) Error() string {
	return fmt.Sprintf("%s (%d): %v", err.name, err.code, err.cause)
}

func newAPIError(name string, code int, context string, err error) error {
	return &apiError{name: name, code: code, cause: fmt.Errorf("%s: %v", context, err)}
}

func newInvalidAuthenticationError(context string, err error) error {
	return newAPIError("InvalidAuthentication", http.StatusUnauthorized, context, err)
}

func newInvalidInputError(context string, err error) error {
	return newAPIError("InvalidInput", http.StatusBadRequest, context, err)
}

func newPermissionDeniedError(context string, err error) error {
	return newAPIError("PermissionDenied", http.StatusForbidden, context, err)
}

func newUnsupportedFormatError(name string) error {
	return &apiError{name: "UnsupportedFormat", code: http.StatusBadRequest, cause: fmt.Errorf("unsupported format %q", name)}
}

func newNotFoundError(context string, err error) error {
	return newAPIError("NotFound", http.StatusNotFound, context, err)
}

// newFormatError names err by its decoding error kind.  Failures of the
// underlying byte source are reported as server errors, except for request
// bodies over the size limit.
func newFormatError(err error) error {
	if errors.Is(err, errBodyTooLarge) {
		return newAPIError("RequestTooLarge", http.StatusRequestEntityTooLarge, "reading request", err)
	}
	code := http.StatusBadRequest
	if errors.Is(err, format.ErrSourceFailure) {
		code = http.StatusInternalServerError
	}
	return &apiError{name: format.Kind(err), code: code, cause: err, line: format.LineOf(err)}
}

func newStorageError(context string, err error) error {
	if err == source.ErrMissingOrInvalidToken {
		return newPermissionDeniedError(context, err)
	}
	if err == source.ErrObjectNotExist {
		return newNotFoundError("object does not exist", err)
	}
	if err, ok := err.(*googleapi.Error); ok {
		switch err.Code {
		case http.StatusUnauthorized:
			return newInvalidAuthenticationError(context, err)
		case http.StatusForbidden:
			return newPermissionDeniedError(context, err)
		case http.StatusNotFound:
			return newNotFoundError(context, err)
		}
	}
	return err
}

// writeError writes either a JSON object or bare HTTP error describing err.
// A JSON object is written only when the error has a name and code.
func writeError(c *gin.Context, err error) {
	if err, ok := err.(*apiError); ok {
		body := gin.H{
			"error":   err.name,
			"message": fmt.Sprintf("%s: %v", http.StatusText(err.code), err.cause),
		}
		if err.line > 0 {
			body["line"] = err.line
		}
		c.JSON(err.code, body)
		return
	}

	c.String(http.StatusInternalServerError, "%s: %v", http.StatusText(http.StatusInternalServerError), err)
}
