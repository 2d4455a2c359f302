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

// Package config holds the settings for a polaris-writer run. Every value
// defaults to the constants of the demo deployment (Polaris on
// localhost:8181, MinIO on localhost:9000); a YAML file and command line
// flags may override them.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	cfgFile = ".polaris-writer.yaml"
	homeEnv = "POLARIS_WRITER_HOME"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Auth    AuthConfig    `yaml:"auth"`
	Catalog CatalogConfig `yaml:"catalog"`
	Storage StorageConfig `yaml:"storage"`
	Table   TableConfig   `yaml:"table"`
	Output  string        `yaml:"output"`
}

// AuthConfig is the client-credentials pair used to obtain the bearer
// token for the raw namespace call.
type AuthConfig struct {
	TokenURI     string `yaml:"token-uri"`
	ClientID     string `yaml:"client-id"`
	ClientSecret string `yaml:"client-secret"`
	Scope        string `yaml:"scope"`
}

// CatalogConfig is handed to the Iceberg client library. Credential is the
// library's own "id:secret" pair, independent from AuthConfig unless
// ReuseToken is set.
type CatalogConfig struct {
	Type       string            `yaml:"type"`
	URI        string            `yaml:"uri"`
	Name       string            `yaml:"name"`
	Warehouse  string            `yaml:"warehouse"`
	Credential string            `yaml:"credential"`
	Scope      string            `yaml:"scope"`
	ReuseToken bool              `yaml:"reuse-token"`
	Properties map[string]string `yaml:"properties"`
}

type StorageConfig struct {
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	AccessKeyID     string `yaml:"access-key-id"`
	SecretAccessKey string `yaml:"secret-access-key"`
	PathStyleAccess bool   `yaml:"path-style-access"`

	// Bucket, when set, is created before the table if it does not exist.
	Bucket string `yaml:"bucket"`
}

type TableConfig struct {
	Namespace string `yaml:"namespace"`
	Name      string `yaml:"name"`
}

func Defaults() Config {
	return Config{
		Auth: AuthConfig{
			ClientID:     "root",
			ClientSecret: "s3cr3t",
			Scope:        "PRINCIPAL_ROLE:ALL",
		},
		Catalog: CatalogConfig{
			Type:       "rest",
			URI:        "http://localhost:8181/api/catalog",
			Name:       "polaris",
			Warehouse:  "polaris",
			Credential: "root:s3cr3t",
			Scope:      "PRINCIPAL_ROLE:ALL",
		},
		Storage: StorageConfig{
			Endpoint:        "http://localhost:9000",
			Region:          "us-east-1",
			AccessKeyID:     "minio_root",
			SecretAccessKey: "m1n1opwd",
			PathStyleAccess: true,
		},
		Table: TableConfig{
			Namespace: "test_ns",
			Name:      "sample_table",
		},
		Output: "text",
	}
}

// TokenURL returns the OAuth token endpoint, derived from the catalog URI
// when no explicit token URI is configured.
func (c Config) TokenURL() string {
	if c.Auth.TokenURI != "" {
		return c.Auth.TokenURI
	}

	return strings.TrimSuffix(c.Catalog.URI, "/") + "/v1/oauth/tokens"
}

// Identifier returns the namespaced table name, e.g. "test_ns.sample_table".
func (c Config) Identifier() string {
	return c.Table.Namespace + "." + c.Table.Name
}

func (c Config) Validate() error {
	var errs []error
	required := func(name, v string) {
		if strings.TrimSpace(v) == "" {
			errs = append(errs, fmt.Errorf("%w: %s must not be empty", ErrInvalidConfig, name))
		}
	}

	required("auth.client-id", c.Auth.ClientID)
	required("catalog.type", c.Catalog.Type)
	required("catalog.uri", c.Catalog.URI)
	required("catalog.name", c.Catalog.Name)
	required("table.namespace", c.Table.Namespace)
	required("table.name", c.Table.Name)

	for name, v := range map[string]string{
		"catalog.uri":      c.Catalog.URI,
		"auth.token-uri":   c.Auth.TokenURI,
		"storage.endpoint": c.Storage.Endpoint,
	} {
		if v == "" {
			continue
		}
		if u, err := url.Parse(v); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("%w: %s is not an absolute URL: %q", ErrInvalidConfig, name, v))
		}
	}

	if strings.Contains(c.Table.Namespace, ".") {
		errs = append(errs, fmt.Errorf("%w: table.namespace must be a single level, got %q",
			ErrInvalidConfig, c.Table.Namespace))
	}

	switch strings.ToLower(c.Output) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("%w: unknown output type %q", ErrInvalidConfig, c.Output))
	}

	return errors.Join(errs...)
}

// LoadConfig reads the config file at configPath, or from $POLARIS_WRITER_HOME
// or the user's home directory when configPath is empty. An explicit path
// must be readable; a missing file in the looked-up locations yields nil.
func LoadConfig(configPath string) ([]byte, error) {
	if len(configPath) > 0 {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}

		return file, nil
	}

	var path string
	switch {
	case os.Getenv(homeEnv) != "":
		path = filepath.Join(os.Getenv(homeEnv), cfgFile)
	default:
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, nil
		}
		path = filepath.Join(homeDir, cfgFile)
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return nil, nil
	}

	return file, nil
}

// ParseConfig unmarshals file over the defaults, so keys missing from the
// file keep their default value.
func ParseConfig(file []byte) (Config, error) {
	cfg := Defaults()
	if len(file) == 0 {
		return cfg, nil
	}

	if err := yaml.Unmarshal(file, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: %s", ErrInvalidConfig, err)
	}

	return cfg, nil
}

func Load(configPath string) (Config, error) {
	file, err := LoadConfig(configPath)
	if err != nil {
		return Defaults(), err
	}

	return ParseConfig(file)
}
