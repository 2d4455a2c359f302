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

// Package lakehouse drives the Iceberg client library: it loads the
// catalog from a property map, creates the target table, commits appends
// and reads the data back.
package lakehouse

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strconv"

	"github.com/MisterRaindrop/bigdata-docker/config"
	"github.com/MisterRaindrop/bigdata-docker/sample"
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/iceberg-go"
	"github.com/apache/iceberg-go/catalog"
	_ "github.com/apache/iceberg-go/catalog/rest"
	iceio "github.com/apache/iceberg-go/io"
	"github.com/apache/iceberg-go/table"
)

const (
	keyType       = "type"
	keyURI        = "uri"
	keyWarehouse  = "warehouse"
	keyCredential = "credential"
	keyToken      = "token"
	keyScope      = "scope"

	// pyiceberg's spelling. iceberg-go reads io.S3ForceVirtualAddressing
	// instead; both are set so the map works with either client.
	keyS3PathStyle = "s3.path-style-access"
)

var ErrEmptyDataset = errors.New("dataset has no rows")

// Properties builds the client library configuration for cfg. When the
// catalog is set to reuse the bearer token and token is non-empty, the token
// replaces the embedded credential.
func Properties(cfg config.Config, token string) iceberg.Properties {
	props := iceberg.Properties{}
	maps.Copy(props, cfg.Catalog.Properties)

	setIf := func(key, v string) {
		if v != "" {
			props[key] = v
		}
	}

	setIf(keyType, cfg.Catalog.Type)
	setIf(keyURI, cfg.Catalog.URI)
	setIf(keyWarehouse, cfg.Catalog.Warehouse)
	setIf(keyScope, cfg.Catalog.Scope)
	if cfg.Catalog.ReuseToken && token != "" {
		props[keyToken] = token
	} else {
		setIf(keyCredential, cfg.Catalog.Credential)
	}

	setIf(iceio.S3EndpointURL, cfg.Storage.Endpoint)
	setIf(iceio.S3Region, cfg.Storage.Region)
	setIf(iceio.S3AccessKeyID, cfg.Storage.AccessKeyID)
	setIf(iceio.S3SecretAccessKey, cfg.Storage.SecretAccessKey)
	if cfg.Storage.Endpoint != "" {
		props[keyS3PathStyle] = strconv.FormatBool(cfg.Storage.PathStyleAccess)
		props[iceio.S3ForceVirtualAddressing] = strconv.FormatBool(!cfg.Storage.PathStyleAccess)
	}

	return props
}

type Lakehouse struct {
	cat catalog.Catalog
}

// Open loads the catalog named in cfg through the catalog registry.
func Open(ctx context.Context, cfg config.Config, token string) (*Lakehouse, error) {
	cat, err := catalog.Load(ctx, cfg.Catalog.Name, Properties(cfg, token))
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog %q: %w", cfg.Catalog.Name, err)
	}

	return New(cat), nil
}

func New(cat catalog.Catalog) *Lakehouse { return &Lakehouse{cat: cat} }

func (l *Lakehouse) Catalog() catalog.Catalog { return l.cat }

func (l *Lakehouse) CreateTable(ctx context.Context, ident table.Identifier, sc *iceberg.Schema, props iceberg.Properties) (*table.Table, error) {
	var opts []catalog.CreateTableOpt
	if len(props) > 0 {
		opts = append(opts, catalog.WithProperties(props))
	}

	return l.cat.CreateTable(ctx, ident, sc, opts...)
}

// Append commits data to tbl as a single append snapshot after checking
// the data's schema against the table's current schema.
func (l *Lakehouse) Append(ctx context.Context, tbl *table.Table, data arrow.Table, snapshotProps iceberg.Properties) (*table.Table, error) {
	if data.NumRows() == 0 {
		return nil, ErrEmptyDataset
	}

	if err := sample.CheckCompatible(data.Schema(), tbl.Schema()); err != nil {
		return nil, err
	}

	return tbl.AppendTable(ctx, data, data.NumRows(), snapshotProps)
}

func (l *Lakehouse) ReadBack(ctx context.Context, ident table.Identifier) ([]sample.Person, error) {
	tbl, err := l.cat.LoadTable(ctx, ident)
	if err != nil {
		return nil, err
	}

	data, err := tbl.Scan().ToArrowTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", ident, err)
	}
	defer data.Release()

	return sample.FromArrowTable(data)
}

// Cleanup drops the table and then its namespace. Entities that are already
// gone are skipped.
func (l *Lakehouse) Cleanup(ctx context.Context, ident table.Identifier) error {
	err := l.cat.DropTable(ctx, ident)
	if err != nil && !errors.Is(err, catalog.ErrNoSuchTable) && !errors.Is(err, catalog.ErrNoSuchNamespace) {
		return fmt.Errorf("failed to drop table %s: %w", ident, err)
	}

	ns := catalog.NamespaceFromIdent(ident)
	if err := l.cat.DropNamespace(ctx, ns); err != nil && !errors.Is(err, catalog.ErrNoSuchNamespace) {
		return fmt.Errorf("failed to drop namespace %s: %w", ns, err)
	}

	return nil
}
