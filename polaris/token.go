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
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const defaultScope = "PRINCIPAL_ROLE:ALL"

// ClientCredentials is an OAuth2 client-credentials grant. An empty Scope
// requests PRINCIPAL_ROLE:ALL, Polaris' "all roles of the principal".
type ClientCredentials struct {
	ID     string
	Secret string
	Scope  string
}

// ParseCredential splits an "id:secret" credential string. A string without
// a colon is taken as the secret alone.
func ParseCredential(cred string) ClientCredentials {
	id, secret, ok := strings.Cut(cred, ":")
	if !ok {
		return ClientCredentials{Secret: cred}
	}

	return ClientCredentials{ID: id, Secret: secret}
}

type oauthTokenResponse struct {
	AccessToken     string `json:"access_token"`
	TokenType       string `json:"token_type"`
	ExpiresIn       int    `json:"expires_in"`
	Scope           string `json:"scope"`
	RefreshToken    string `json:"refresh_token"`
	IssuedTokenType string `json:"issued_token_type"`
}

// FetchToken exchanges the client credentials for a bearer token.
func (c *Client) FetchToken(ctx context.Context, creds ClientCredentials) (string, error) {
	scope := creds.Scope
	if scope == "" {
		scope = defaultScope
	}

	data := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {creds.ID},
		"client_secret": {creds.Secret},
		"scope":         {scope},
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.tokenURI.String(),
		[]byte(data.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		return "", err
	}

	rsp, err := c.cl.Do(req)
	if err != nil {
		return "", err
	}

	switch rsp.StatusCode {
	case http.StatusOK:
		defer rsp.Body.Close()
		var tok oauthTokenResponse
		if err := json.NewDecoder(rsp.Body).Decode(&tok); err != nil {
			return "", fmt.Errorf("%w: failed to decode oauth token response: %s", ErrInvalidResponse, err)
		}
		if tok.AccessToken == "" {
			return "", ErrMissingToken
		}

		return tok.AccessToken, nil
	case http.StatusUnauthorized, http.StatusBadRequest:
		defer func() {
			_, _ = io.Copy(io.Discard, rsp.Body)
			_ = rsp.Body.Close()
		}()
		var oauthErr oauthErrorResponse
		if err := json.NewDecoder(rsp.Body).Decode(&oauthErr); err != nil {
			return "", fmt.Errorf("%w: failed to decode oauth error (status %d): %s",
				ErrOAuthError, rsp.StatusCode, err)
		}

		return "", oauthErr
	default:
		return "", handleNon200(rsp)
	}
}
