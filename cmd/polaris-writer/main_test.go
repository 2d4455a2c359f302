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

package main

import (
	"context"
	"maps"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/MisterRaindrop/bigdata-docker/config"
	"github.com/MisterRaindrop/bigdata-docker/lakehouse"
	"github.com/MisterRaindrop/bigdata-docker/polaris"
	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeConf(t *testing.T) {
	tests := []struct {
		name  string
		cli   Config
		check func(t *testing.T, cfg config.Config)
	}{
		{
			name: "no flags keeps defaults",
			check: func(t *testing.T, cfg config.Config) {
				assert.Equal(t, config.Defaults(), cfg)
			},
		},
		{
			name: "flags override",
			cli: Config{
				Output:      "json",
				URI:         "http://polaris:8181/api/catalog",
				CatalogName: "quickstart_catalog",
				Namespace:   "sales",
				Table:       "orders",
				Cred:        "writer:secret",
				ClientID:    "admin",
				Bucket:      "warehouse",
				ReuseToken:  true,
			},
			check: func(t *testing.T, cfg config.Config) {
				assert.Equal(t, "json", cfg.Output)
				assert.Equal(t, "http://polaris:8181/api/catalog", cfg.Catalog.URI)
				assert.Equal(t, "quickstart_catalog", cfg.Catalog.Name)
				assert.Equal(t, "quickstart_catalog", cfg.Catalog.Warehouse)
				assert.Equal(t, "sales.orders", cfg.Identifier())
				assert.Equal(t, "writer:secret", cfg.Catalog.Credential)
				assert.Equal(t, "admin", cfg.Auth.ClientID)
				assert.Equal(t, "s3cr3t", cfg.Auth.ClientSecret)
				assert.Equal(t, "warehouse", cfg.Storage.Bucket)
				assert.True(t, cfg.Catalog.ReuseToken)
			},
		},
		{
			name: "catalog name targets the same warehouse",
			cli:  Config{CatalogName: "quickstart_catalog"},
			check: func(t *testing.T, cfg config.Config) {
				cl, err := polaris.NewClient(cfg.Catalog.URI)
				require.NoError(t, err)
				assert.Equal(t, "http://localhost:8181/api/catalog/v1/quickstart_catalog/namespaces",
					cl.NamespacesURL(cfg.Catalog.Name))
				assert.Equal(t, "quickstart_catalog", lakehouse.Properties(cfg, "")["warehouse"])
			},
		},
		{
			name: "properties",
			cli:  Config{Props: "header.X-Iceberg-Access-Delegation=vended-credentials, rest.sigv4-enabled=false"},
			check: func(t *testing.T, cfg config.Config) {
				assert.Equal(t, map[string]string{
					"header.X-Iceberg-Access-Delegation": "vended-credentials",
					"rest.sigv4-enabled":                 "false",
				}, cfg.Catalog.Properties)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Defaults()
			require.NoError(t, mergeConf(tt.cli, &cfg))
			tt.check(t, cfg)
		})
	}
}

func TestMergeConfKeepsFileProperties(t *testing.T) {
	cfg, err := config.ParseConfig([]byte(`
catalog:
  properties:
    header.Polaris-Realm: POLARIS
`))
	require.NoError(t, err)

	require.NoError(t, mergeConf(Config{Props: "scope=PRINCIPAL_ROLE:writer"}, &cfg))
	assert.Equal(t, map[string]string{
		"header.Polaris-Realm": "POLARIS",
		"scope":                "PRINCIPAL_ROLE:writer",
	}, cfg.Catalog.Properties)
}

func TestMergeConfInvalidProperties(t *testing.T) {
	cfg := config.Defaults()
	err := mergeConf(Config{Props: "novalue"}, &cfg)
	assert.ErrorContains(t, err, "failed to parse properties")
}

func TestParseProperties(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  map[string]string
		isErr bool
	}{
		{
			name:  "empty string",
			input: "",
			want:  map[string]string{},
		},
		{
			name:  "single property",
			input: "key1=value1",
			want:  map[string]string{"key1": "value1"},
		},
		{
			name:  "value containing equals",
			input: "token=a=b",
			want:  map[string]string{"token": "a=b"},
		},
		{
			name:  "with spaces",
			input: " key1 = value1 , key2 = value2 ",
			want:  map[string]string{"key1": "value1", "key2": "value2"},
		},
		{
			name:  "invalid format - no equals",
			input: "key1value1",
			isErr: true,
		},
		{
			name:  "invalid format - empty key",
			input: "=value1",
			isErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseProperties(tt.input)
			if (err != nil) != tt.isErr {
				t.Errorf("parseProperties() error = %v, isErr %v", err, tt.isErr)

				return
			}
			if !tt.isErr && !maps.Equal(got, tt.want) {
				t.Errorf("parseProperties() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	lvl, err := parseLogLevel("")
	require.NoError(t, err)
	assert.Equal(t, pterm.LogLevelWarn, lvl)

	lvl, err = parseLogLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, pterm.LogLevelDebug, lvl)

	_, err = parseLogLevel("verbose")
	assert.ErrorContains(t, err, `unknown log level "verbose"`)
}

func TestRunReportsErrors(t *testing.T) {
	t.Setenv("POLARIS_WRITER_HOME", t.TempDir())

	srv := httptest.NewServer(nil)
	unreachable := srv.URL + "/api/catalog"
	srv.Close()

	tests := []struct {
		name   string
		argv   []string
		prefix string
	}{
		{
			name:   "invalid output",
			argv:   []string{"--output", "xml"},
			prefix: `Error: invalid configuration: unknown output type "xml"`,
		},
		{
			name:   "invalid uri",
			argv:   []string{"run", "--uri", "localhost:8181"},
			prefix: "Error: invalid configuration: catalog.uri is not an absolute URL",
		},
		{
			name:   "catalog unreachable",
			argv:   []string{"--uri", unreachable},
			prefix: "Error: fetch token: ",
		},
		{
			name:   "missing config file",
			argv:   []string{"--config", "/nonexistent/polaris-writer.yaml"},
			prefix: "Error: invalid configuration: open /nonexistent/polaris-writer.yaml",
		},
		{
			name:   "unknown log level",
			argv:   []string{"verify", "--log-level", "loud"},
			prefix: `Error: unknown log level "loud"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureText(t)

			code := run(context.Background(), tt.argv)
			assert.Equal(t, 1, code)
			assert.True(t, strings.HasPrefix(buf.String(), tt.prefix), buf.String())
		})
	}
}
