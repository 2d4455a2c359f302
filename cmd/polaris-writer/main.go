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
	"fmt"
	"maps"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/MisterRaindrop/bigdata-docker/config"
	"github.com/MisterRaindrop/bigdata-docker/pipeline"
	"github.com/docopt/docopt-go"
	"github.com/pterm/pterm"
)

const version = "0.1.0"

const usage = `polaris-writer.

Writes a small sample dataset into an Iceberg table managed by an
Apache Polaris catalog.

Usage:
  polaris-writer [run] [options]
  polaris-writer verify [options]
  polaris-writer cleanup [options]
  polaris-writer -h | --help | --version

Commands:
  run         Create the namespace and the table, then append the sample rows (default).
  verify      Read the table back and compare it with the sample rows.
  cleanup     Drop the table and its namespace.

Options:
  -h --help            	show this help message and exit
  --config PATH        	specify the path to the configuration file
  --output TYPE        	output type (json/text)
  --uri TEXT           	specify the catalog URI, e.g. http://localhost:8181/api/catalog
  --catalog-name TEXT  	specify the catalog name, also used as the warehouse
  --namespace TEXT     	specify the namespace to create
  --table TEXT         	specify the table to create
  --credential TEXT    	specify the id:secret credential of the catalog library
  --client-id TEXT     	specify the client id used to obtain the bearer token
  --client-secret TEXT 	specify the client secret used to obtain the bearer token
  --properties TEXT    	extra catalog properties in key=value format
                       	Ex:"header.X-Iceberg-Access-Delegation=vended-credentials"
  --bucket TEXT        	create this warehouse bucket before creating the table
  --reuse-token        	hand the bearer token to the catalog library
  --log-level LEVEL    	log level (trace/debug/info/warn/error) [default: warn]`

type Config struct {
	Run     bool `docopt:"run"`
	Verify  bool `docopt:"verify"`
	Cleanup bool `docopt:"cleanup"`

	Config       string `docopt:"--config"`
	Output       string `docopt:"--output"`
	URI          string `docopt:"--uri"`
	CatalogName  string `docopt:"--catalog-name"`
	Namespace    string `docopt:"--namespace"`
	Table        string `docopt:"--table"`
	Cred         string `docopt:"--credential"`
	ClientID     string `docopt:"--client-id"`
	ClientSecret string `docopt:"--client-secret"`
	Props        string `docopt:"--properties"`
	Bucket       string `docopt:"--bucket"`
	ReuseToken   bool   `docopt:"--reuse-token"`
	LogLevel     string `docopt:"--log-level"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:])
	stop()

	os.Exit(code)
}

func run(ctx context.Context, argv []string) int {
	args, err := docopt.ParseArgs(usage, argv, version)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)

		return 1
	}

	cli := Config{}
	if err := args.Bind(&cli); err != nil {
		fmt.Fprintln(os.Stderr, err)

		return 1
	}

	cfg, err := config.Load(cli.Config)
	if err == nil {
		err = mergeConf(cli, &cfg)
	}

	output := newOutput(cfg.Output)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		output.Error(err)

		return 1
	}

	level, err := parseLogLevel(cli.LogLevel)
	if err != nil {
		output.Error(err)

		return 1
	}
	logger := pterm.DefaultLogger.WithLevel(level).WithWriter(os.Stderr)

	runner, err := pipeline.NewRunner(cfg)
	if err != nil {
		output.Error(err)

		return 1
	}
	runner.Reporter = output
	runner.Logger = logger

	switch {
	case cli.Verify:
		rows, err := runner.Verify(ctx)
		if err != nil {
			output.Error(err)

			return 1
		}
		output.Rows(rows)
	case cli.Cleanup:
		if err := runner.Cleanup(ctx); err != nil {
			output.Error(err)

			return 1
		}
		output.Text("Dropped " + cfg.Identifier())
	default:
		res, err := runner.Run(ctx)
		if err != nil {
			output.Error(err)

			return 1
		}
		output.Result(res)
	}

	return 0
}

func newOutput(typ string) Output {
	if strings.EqualFold(typ, "json") {
		return jsonOutput{}
	}

	return textOutput{}
}

// mergeConf applies the flags that were given on top of cfg, which already
// holds the config file merged over the defaults.
func mergeConf(cli Config, cfg *config.Config) error {
	set := func(dst *string, v string) {
		if len(v) > 0 {
			*dst = v
		}
	}

	set(&cfg.Output, cli.Output)
	set(&cfg.Catalog.URI, cli.URI)
	set(&cfg.Catalog.Name, cli.CatalogName)
	// Polaris addresses a catalog by the same name on both APIs
	set(&cfg.Catalog.Warehouse, cli.CatalogName)
	set(&cfg.Catalog.Credential, cli.Cred)
	set(&cfg.Auth.ClientID, cli.ClientID)
	set(&cfg.Auth.ClientSecret, cli.ClientSecret)
	set(&cfg.Table.Namespace, cli.Namespace)
	set(&cfg.Table.Name, cli.Table)
	set(&cfg.Storage.Bucket, cli.Bucket)
	if cli.ReuseToken {
		cfg.Catalog.ReuseToken = true
	}

	if cli.Props != "" {
		props, err := parseProperties(cli.Props)
		if err != nil {
			return fmt.Errorf("failed to parse properties: %w", err)
		}
		if cfg.Catalog.Properties == nil {
			cfg.Catalog.Properties = map[string]string{}
		}
		maps.Copy(cfg.Catalog.Properties, props)
	}

	return nil
}
