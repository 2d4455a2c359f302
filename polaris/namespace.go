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
)

type createNamespaceRequest struct {
	Namespace  []string          `json:"namespace"`
	Properties map[string]string `json:"properties"`
}

// CreateNamespace creates a single-level namespace in catalogName and
// returns the HTTP status code the catalog answered with. The status is not
// interpreted: a conflict or a rejection is reported to the caller as a
// code, only transport failures are returned as errors. Use StatusError to
// classify the code.
func (c *Client) CreateNamespace(ctx context.Context, token, catalogName, namespace string) (int, error) {
	rsp, err := c.postJSON(ctx, c.NamespacesURL(catalogName), token, createNamespaceRequest{
		Namespace:  []string{namespace},
		Properties: map[string]string{},
	})
	if err != nil {
		return 0, err
	}
	defer rsp.Body.Close()
	_, _ = io.Copy(io.Discard, rsp.Body)

	return rsp.StatusCode, nil
}
