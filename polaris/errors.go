// Licensed to the Apache Software Foundation (ASF) under one
// or more contributor license agreements.  See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership.  The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License.  You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

package polaris

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

var (
	ErrRESTError          = errors.New("REST error")
	ErrBadRequest         = fmt.Errorf("%w: bad request", ErrRESTError)
	ErrUnauthorized       = fmt.Errorf("%w: unauthorized", ErrRESTError)
	ErrForbidden          = fmt.Errorf("%w: forbidden", ErrRESTError)
	ErrNotFound           = fmt.Errorf("%w: not found", ErrRESTError)
	ErrConflict           = fmt.Errorf("%w: already exists", ErrRESTError)
	ErrServerError        = fmt.Errorf("%w: server error", ErrRESTError)
	ErrServiceUnavailable = fmt.Errorf("%w: service unavailable", ErrRESTError)
	ErrOAuthError         = fmt.Errorf("%w: oauth error", ErrRESTError)
	ErrMissingToken       = fmt.Errorf("%w: token response has no access_token", ErrOAuthError)
	ErrInvalidResponse    = fmt.Errorf("%w: invalid response payload", ErrRESTError)
)

// errorResponse is the Iceberg REST error envelope:
// {"error": {"message": ..., "type": ..., "code": ...}}.
type errorResponse struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    int    `json:"code"`

	wrapping error
}

func (e errorResponse) Unwrap() error { return e.wrapping }
func (e errorResponse) Error() string {
	if e.Type == "" && e.Message == "" {
		return e.wrapping.Error()
	}

	return e.Type + ": " + e.Message
}

type oauthErrorResponse struct {
	Err     string `json:"error"`
	ErrDesc string `json:"error_description"`
	ErrURI  string `json:"error_uri"`
}

func (o oauthErrorResponse) Unwrap() error { return ErrOAuthError }
func (o oauthErrorResponse) Error() string {
	msg := o.Err
	if o.ErrDesc != "" {
		msg += ": " + o.ErrDesc
	}

	if o.ErrURI != "" {
		msg += " (" + o.ErrURI + ")"
	}

	return msg
}

// StatusError maps an HTTP status code onto the package's sentinel errors.
// 2xx codes map to nil.
func StatusError(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusBadRequest:
		return ErrBadRequest
	case code == http.StatusUnauthorized, code == 419:
		return ErrUnauthorized
	case code == http.StatusForbidden:
		return ErrForbidden
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusConflict:
		return ErrConflict
	case code == http.StatusServiceUnavailable:
		return ErrServiceUnavailable
	case code >= 500 && code < 600:
		return ErrServerError
	default:
		return ErrRESTError
	}
}

func handleNon200(rsp *http.Response) error {
	defer func() {
		_, _ = io.Copy(io.Discard, rsp.Body)
		_ = rsp.Body.Close()
	}()

	var e errorResponse
	_ = json.NewDecoder(rsp.Body).Decode(&struct {
		Error *errorResponse `json:"error"`
	}{Error: &e})

	e.wrapping = StatusError(rsp.StatusCode)
	if e.wrapping == nil {
		e.wrapping = fmt.Errorf("%w: unexpected status %d", ErrRESTError, rsp.StatusCode)
	}

	return e
}
