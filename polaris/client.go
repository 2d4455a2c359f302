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

// Package polaris talks to the management endpoints of an Apache Polaris
// (Iceberg REST) catalog directly over HTTP: the OAuth2 token endpoint and
// namespace creation. Table operations go through iceberg-go instead.
package polaris

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

const (
	authorizationHeader = "Authorization"
	bearerPrefix        = "Bearer"
)

type Option func(*options)

func WithHTTPClient(cl *http.Client) Option {
	return func(o *options) {
		o.client = cl
	}
}

func WithHeaders(headers map[string]string) Option {
	return func(o *options) {
		o.headers = headers
	}
}

// WithTokenURL overrides the token endpoint, which otherwise is
// {baseURI}/v1/oauth/tokens.
func WithTokenURL(uri string) Option {
	return func(o *options) {
		o.tokenURL = uri
	}
}

type options struct {
	client   *http.Client
	headers  map[string]string
	tokenURL string
}

type Client struct {
	baseURI  *url.URL
	tokenURI *url.URL
	cl       *http.Client
	headers  map[string]string
}

// NewClient returns a client for the catalog rooted at baseURI, e.g.
// "http://localhost:8181/api/catalog".
func NewClient(baseURI string, opts ...Option) (*Client, error) {
	ops := &options{}
	for _, o := range opts {
		o(ops)
	}

	base, err := url.Parse(baseURI)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog uri %q: %w", baseURI, err)
	}

	tokenURI := base.JoinPath("v1", "oauth", "tokens")
	if ops.tokenURL != "" {
		if tokenURI, err = url.Parse(ops.tokenURL); err != nil {
			return nil, fmt.Errorf("invalid token uri %q: %w", ops.tokenURL, err)
		}
	}

	cl := ops.client
	if cl == nil {
		cl = &http.Client{}
	}

	return &Client{baseURI: base, tokenURI: tokenURI, cl: cl, headers: ops.headers}, nil
}

func (c *Client) TokenURL() string { return c.tokenURI.String() }

func (c *Client) NamespacesURL(catalogName string) string {
	return c.baseURI.JoinPath("v1", catalogName, "namespaces").String()
}

func (c *Client) newRequest(ctx context.Context, method, uri string, body []byte, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, uri, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	req.Header.Set("Content-Type", contentType)

	return req, nil
}

func (c *Client) postJSON(ctx context.Context, uri, token string, payload any) (*http.Response, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, uri, data, "application/json")
	if err != nil {
		return nil, err
	}
	if token != "" {
		req.Header.Set(authorizationHeader, bearerPrefix+" "+token)
	}

	return c.cl.Do(req)
}
