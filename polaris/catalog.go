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
	"io"
	"net/http"
)

// StorageConfig is the storage section of a catalog definition. Endpoint
// and PathStyleAccess point Polaris at an S3-compatible store such as
// MinIO.
type StorageConfig struct {
	StorageType      string   `json:"storageType"`
	AllowedLocations []string `json:"allowedLocations,omitempty"`
	Region           string   `json:"region,omitempty"`
	Endpoint         string   `json:"endpoint,omitempty"`
	EndpointInternal string   `json:"endpointInternal,omitempty"`
	PathStyleAccess  bool     `json:"pathStyleAccess,omitempty"`
	StsUnavailable   bool     `json:"stsUnavailable,omitempty"`
}

type CatalogSpec struct {
	Name              string            `json:"name"`
	Type              string            `json:"type"`
	ReadOnly          bool              `json:"readOnly"`
	Properties        map[string]string `json:"properties"`
	StorageConfigInfo StorageConfig     `json:"storageConfigInfo"`
}

// CatalogsURL is the management endpoint listing catalogs. It sits next
// to the catalog API: {base}/../management/v1/catalogs.
func (c *Client) CatalogsURL() string {
	return c.baseURI.JoinPath("..", "management", "v1", "catalogs").String()
}

// CreateCatalog registers a catalog through the management API. Unlike
// CreateNamespace the status is checked; an existing catalog yields an
// error wrapping ErrConflict.
func (c *Client) CreateCatalog(ctx context.Context, token string, spec CatalogSpec) error {
	if spec.Type == "" {
		spec.Type = "INTERNAL"
	}
	if spec.Properties == nil {
		spec.Properties = map[string]string{}
	}

	rsp, err := c.postJSON(ctx, c.CatalogsURL(), token, struct {
		Catalog CatalogSpec `json:"catalog"`
	}{Catalog: spec})
	if err != nil {
		return err
	}

	switch rsp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		defer rsp.Body.Close()
		_, _ = io.Copy(io.Discard, rsp.Body)

		return nil
	default:
		return handleNon200(rsp)
	}
}
