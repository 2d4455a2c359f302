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

// Package pipeline runs the write sequence against a Polaris catalog:
// token, namespace, table, append. Every step runs exactly once and the
// first failure aborts the run.
package pipeline

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/MisterRaindrop/bigdata-docker/config"
	"github.com/MisterRaindrop/bigdata-docker/lakehouse"
	"github.com/MisterRaindrop/bigdata-docker/objectstore"
	"github.com/MisterRaindrop/bigdata-docker/polaris"
	"github.com/MisterRaindrop/bigdata-docker/sample"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/iceberg-go"
	"github.com/apache/iceberg-go/table"
	"github.com/google/uuid"
	"github.com/pterm/pterm"
)

// RunIDProperty is the snapshot summary property holding the id of the run
// that committed the snapshot.
const RunIDProperty = "polaris-writer.run-id"

const (
	StepToken     = "fetch token"
	StepNamespace = "create namespace"
	StepBucket    = "ensure bucket"
	StepCatalog   = "load catalog"
	StepTable     = "create table"
	StepAppend    = "append"
	StepReadBack  = "read back"
	StepCleanup   = "cleanup"
)

var ErrRowMismatch = errors.New("rows read back differ from rows written")

// StepError records which step of the run failed.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string { return e.Step + ": " + e.Err.Error() }

func (e *StepError) Unwrap() error { return e.Err }

func stepErr(step string, err error) error {
	return &StepError{Step: step, Err: err}
}

// Reporter is told about each completed step.
type Reporter interface {
	TokenObtained(tokenURL string)
	NamespaceCreated(namespace string, status int)
	BucketEnsured(bucket string, created bool)
	TableCreated(ident table.Identifier, location string)
	Appended(ident table.Identifier, stats lakehouse.SnapshotStats)
}

type nopReporter struct{}

func (nopReporter) TokenObtained(string)                               {}
func (nopReporter) NamespaceCreated(string, int)                       {}
func (nopReporter) BucketEnsured(string, bool)                         {}
func (nopReporter) TableCreated(table.Identifier, string)              {}
func (nopReporter) Appended(table.Identifier, lakehouse.SnapshotStats) {}

type OpenFunc func(ctx context.Context, cfg config.Config, token string) (*lakehouse.Lakehouse, error)

// Result describes a completed run.
type Result struct {
	RunID           string                  `json:"run-id"`
	Namespace       string                  `json:"namespace"`
	NamespaceStatus int                     `json:"namespace-status"`
	BucketCreated   bool                    `json:"bucket-created,omitempty"`
	Table           string                  `json:"table"`
	Location        string                  `json:"location"`
	Snapshot        lakehouse.SnapshotStats `json:"snapshot"`
}

type Runner struct {
	Config  config.Config
	Polaris *polaris.Client

	// OpenCatalog defaults to lakehouse.Open.
	OpenCatalog OpenFunc
	Reporter    Reporter
	Memory      memory.Allocator

	// Bucketer is used when Config.Storage.Bucket is set. When nil an S3
	// client for Config.Storage is created.
	Bucketer objectstore.Bucketer
	Logger   *pterm.Logger
}

// NewRunner returns a runner whose raw HTTP client targets cfg's catalog
// and token endpoints.
func NewRunner(cfg config.Config, opts ...polaris.Option) (*Runner, error) {
	opts = append([]polaris.Option{polaris.WithTokenURL(cfg.TokenURL())}, opts...)
	cl, err := polaris.NewClient(cfg.Catalog.URI, opts...)
	if err != nil {
		return nil, err
	}

	return &Runner{Config: cfg, Polaris: cl}, nil
}

func (r *Runner) reporter() Reporter {
	if r.Reporter == nil {
		return nopReporter{}
	}

	return r.Reporter
}

func (r *Runner) logger() *pterm.Logger {
	if r.Logger == nil {
		return &pterm.DefaultLogger
	}

	return r.Logger
}

func (r *Runner) mem() memory.Allocator {
	if r.Memory == nil {
		return memory.DefaultAllocator
	}

	return r.Memory
}

func (r *Runner) open(ctx context.Context, token string) (*lakehouse.Lakehouse, error) {
	open := r.OpenCatalog
	if open == nil {
		open = lakehouse.Open
	}

	lh, err := open(ctx, r.Config, token)
	if err != nil {
		return nil, stepErr(StepCatalog, err)
	}

	return lh, nil
}

func (r *Runner) ident() table.Identifier {
	return table.Identifier{r.Config.Table.Namespace, r.Config.Table.Name}
}

func (r *Runner) credentials() polaris.ClientCredentials {
	return polaris.ClientCredentials{
		ID:     r.Config.Auth.ClientID,
		Secret: r.Config.Auth.ClientSecret,
		Scope:  r.Config.Auth.Scope,
	}
}

func (r *Runner) token(ctx context.Context) (string, error) {
	tok, err := r.Polaris.FetchToken(ctx, r.credentials())
	if err != nil {
		return "", stepErr(StepToken, err)
	}
	r.logger().Debug("obtained token", r.logger().Args("url", r.Polaris.TokenURL()))
	r.reporter().TokenObtained(r.Polaris.TokenURL())

	return tok, nil
}

// Run performs the full write sequence. The namespace step never fails on
// the status the catalog answers with, so re-running against an existing
// namespace proceeds and then fails at the table step.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	cfg := r.Config
	log := r.logger()
	ident := r.ident()
	res := &Result{Namespace: cfg.Table.Namespace, Table: cfg.Identifier()}

	tok, err := r.token(ctx)
	if err != nil {
		return nil, err
	}

	status, err := r.Polaris.CreateNamespace(ctx, tok, cfg.Catalog.Name, cfg.Table.Namespace)
	if err != nil {
		return nil, stepErr(StepNamespace, err)
	}
	res.NamespaceStatus = status
	if serr := polaris.StatusError(status); serr != nil {
		log.Debug("namespace request not successful", log.Args("status", status, "error", serr))
	}
	r.reporter().NamespaceCreated(cfg.Table.Namespace, status)

	if cfg.Storage.Bucket != "" {
		if res.BucketCreated, err = r.ensureBucket(ctx); err != nil {
			return nil, stepErr(StepBucket, err)
		}
		r.reporter().BucketEnsured(cfg.Storage.Bucket, res.BucketCreated)
	}

	lh, err := r.open(ctx, tok)
	if err != nil {
		return nil, err
	}

	tbl, err := lh.CreateTable(ctx, ident, sample.TableSchema(), nil)
	if err != nil {
		return nil, stepErr(StepTable, err)
	}
	res.Location = tbl.Location()
	log.Debug("created table", log.Args("table", res.Table, "location", res.Location))
	r.reporter().TableCreated(ident, res.Location)

	data := sample.NewTable(r.mem(), sample.Rows())
	defer data.Release()

	res.RunID = uuid.NewString()
	tbl, err = lh.Append(ctx, tbl, data, iceberg.Properties{RunIDProperty: res.RunID})
	if err != nil {
		return nil, stepErr(StepAppend, err)
	}

	res.Snapshot, _ = lakehouse.Stats(tbl)
	log.Debug("appended rows", log.Args("table", res.Table, "snapshot", res.Snapshot.SnapshotID,
		"records", res.Snapshot.AddedRecords))
	r.reporter().Appended(ident, res.Snapshot)

	return res, nil
}

func (r *Runner) ensureBucket(ctx context.Context) (bool, error) {
	cl := r.Bucketer
	if cl == nil {
		s3cl, err := objectstore.NewClient(ctx, r.Config.Storage)
		if err != nil {
			return false, err
		}
		cl = s3cl
	}

	return objectstore.EnsureBucket(ctx, cl, r.Config.Storage.Bucket)
}

// catalogToken fetches a bearer token only when the catalog is configured
// to reuse it; otherwise the library authenticates on its own.
func (r *Runner) catalogToken(ctx context.Context) (string, error) {
	if !r.Config.Catalog.ReuseToken {
		return "", nil
	}

	return r.token(ctx)
}

// Verify reads the table back and compares its rows, ordered by id, with
// the rows Run writes.
func (r *Runner) Verify(ctx context.Context) ([]sample.Person, error) {
	tok, err := r.catalogToken(ctx)
	if err != nil {
		return nil, err
	}

	lh, err := r.open(ctx, tok)
	if err != nil {
		return nil, err
	}

	rows, err := lh.ReadBack(ctx, r.ident())
	if err != nil {
		return nil, stepErr(StepReadBack, err)
	}

	slices.SortFunc(rows, func(a, b sample.Person) int {
		return cmp.Compare(a.ID, b.ID)
	})
	if !slices.Equal(rows, sample.Rows()) {
		return rows, stepErr(StepReadBack, fmt.Errorf("%w: got %d rows, want %d",
			ErrRowMismatch, len(rows), len(sample.Rows())))
	}

	return rows, nil
}

// Cleanup drops the table and its namespace so that Run can be repeated.
func (r *Runner) Cleanup(ctx context.Context) error {
	tok, err := r.catalogToken(ctx)
	if err != nil {
		return err
	}

	lh, err := r.open(ctx, tok)
	if err != nil {
		return err
	}

	if err := lh.Cleanup(ctx, r.ident()); err != nil {
		return stepErr(StepCleanup, err)
	}
	r.logger().Debug("dropped table", r.logger().Args("table", r.Config.Identifier()))

	return nil
}
