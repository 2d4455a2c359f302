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

// Package recipe starts a local Polaris + MinIO stack for integration
// tests and registers the warehouse catalog in it.
package recipe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	_ "embed"

	"github.com/MisterRaindrop/bigdata-docker/config"
	"github.com/MisterRaindrop/bigdata-docker/objectstore"
	"github.com/MisterRaindrop/bigdata-docker/polaris"
	"github.com/testcontainers/testcontainers-go/modules/compose"
	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"
)

//go:embed docker-compose.yml
var composeFile []byte

const (
	// PolarisURIEnv points the tests at an already running Polaris; the
	// compose stack is not started when it is set.
	PolarisURIEnv = "POLARIS_URI"

	Bucket = "warehouse"

	polarisHealth = "http://localhost:8182/q/health"
	minioHealth   = "http://localhost:9000/minio/health/live"
	minioInternal = "http://minio:9000"
	readyTimeout  = 3 * time.Minute
)

// Config returns the configuration of a run against the stack: the
// defaults plus the bucket the catalog stores its tables in.
func Config() config.Config {
	cfg := config.Defaults()
	if uri, ok := os.LookupEnv(PolarisURIEnv); ok {
		cfg.Catalog.URI = uri
	}
	cfg.Storage.Bucket = Bucket

	return cfg
}

func Start(t *testing.T) (*compose.DockerCompose, error) {
	if _, ok := os.LookupEnv(PolarisURIEnv); ok {
		return nil, nil
	}

	stack, err := compose.NewDockerComposeWith(
		compose.WithStackReaders(bytes.NewBuffer(composeFile)),
	)
	if err != nil {
		return nil, xerrors.Errorf("fail to start compose: %w", err)
	}
	if err := stack.Up(t.Context()); err != nil {
		return stack, xerrors.Errorf("fail to up compose: %w", err)
	}

	ctx, cancel := context.WithTimeout(t.Context(), readyTimeout)
	defer cancel()
	if err := WaitReady(ctx, polarisHealth, minioHealth); err != nil {
		return stack, xerrors.Errorf("stack not ready: %w", err)
	}

	return stack, nil
}

// WaitReady polls every url until it answers 200 or ctx is done.
func WaitReady(ctx context.Context, urls ...string) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, u := range urls {
		g.Go(func() error {
			return poll(ctx, u)
		})
	}

	return g.Wait()
}

func poll(ctx context.Context, url string) error {
	tick := time.NewTicker(time.Second)
	defer tick.Stop()

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}

		rsp, err := http.DefaultClient.Do(req)
		if err == nil {
			rsp.Body.Close()
			if rsp.StatusCode == http.StatusOK {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%s: %w", url, ctx.Err())
		case <-tick.C:
		}
	}
}

// Provision creates the warehouse bucket and registers cfg's catalog in
// Polaris, backed by that bucket. Both steps tolerate existing resources.
func Provision(ctx context.Context, cfg config.Config) error {
	s3cl, err := objectstore.NewClient(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	if _, err := objectstore.EnsureBucket(ctx, s3cl, cfg.Storage.Bucket); err != nil {
		return err
	}

	cl, err := polaris.NewClient(cfg.Catalog.URI, polaris.WithTokenURL(cfg.TokenURL()))
	if err != nil {
		return err
	}

	tok, err := cl.FetchToken(ctx, polaris.ClientCredentials{
		ID: cfg.Auth.ClientID, Secret: cfg.Auth.ClientSecret, Scope: cfg.Auth.Scope,
	})
	if err != nil {
		return xerrors.Errorf("fail to fetch token: %w", err)
	}

	location := "s3://" + cfg.Storage.Bucket
	err = cl.CreateCatalog(ctx, tok, polaris.CatalogSpec{
		Name:       cfg.Catalog.Name,
		Properties: map[string]string{"default-base-location": location},
		StorageConfigInfo: polaris.StorageConfig{
			StorageType:      "S3",
			AllowedLocations: []string{location},
			Region:           cfg.Storage.Region,
			Endpoint:         cfg.Storage.Endpoint,
			EndpointInternal: minioInternal,
			PathStyleAccess:  cfg.Storage.PathStyleAccess,
			StsUnavailable:   true,
		},
	})
	if err != nil && !errors.Is(err, polaris.ErrConflict) {
		return xerrors.Errorf("fail to create catalog %s: %w", cfg.Catalog.Name, err)
	}

	return nil
}
