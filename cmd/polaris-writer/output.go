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
	"encoding/json"
	"os"
	"strconv"
	"strings"

	"github.com/MisterRaindrop/bigdata-docker/lakehouse"
	"github.com/MisterRaindrop/bigdata-docker/pipeline"
	"github.com/MisterRaindrop/bigdata-docker/polaris"
	"github.com/MisterRaindrop/bigdata-docker/sample"
	"github.com/apache/iceberg-go/table"
	"github.com/pterm/pterm"
)

type Output interface {
	pipeline.Reporter

	Result(*pipeline.Result)
	Rows([]sample.Person)
	Text(string)
	Error(error)
}

type textOutput struct{}

func (textOutput) TokenObtained(string) {
	pterm.Println("Token obtained successfully")
}

func (textOutput) NamespaceCreated(_ string, status int) {
	pterm.Printfln("Namespace creation: %d", status)
}

func (textOutput) BucketEnsured(bucket string, created bool) {
	if created {
		pterm.Printfln("Bucket %s created", bucket)

		return
	}
	pterm.Printfln("Bucket %s already exists", bucket)
}

func (textOutput) TableCreated(ident table.Identifier, location string) {
	pterm.Printfln("Table %s created at %s", strings.Join(ident, "."), location)
}

func (textOutput) Appended(table.Identifier, lakehouse.SnapshotStats) {
	pterm.Println("Data written successfully!")
}

func (textOutput) Result(res *pipeline.Result) {
	itoa := func(n int64) string { return strconv.FormatInt(n, 10) }

	data := pterm.TableData{
		{"Run ID", res.RunID},
		{"Table", res.Table},
		{"Location", res.Location},
		{"Namespace status", strconv.Itoa(res.NamespaceStatus)},
		{"Snapshot", itoa(res.Snapshot.SnapshotID)},
		{"Operation", res.Snapshot.Operation},
		{"Added records", itoa(res.Snapshot.AddedRecords)},
		{"Added data files", itoa(res.Snapshot.AddedFiles)},
		{"Total records", itoa(res.Snapshot.TotalRecords)},
	}
	if err := polaris.StatusError(res.NamespaceStatus); err != nil {
		data[3][1] += " (" + err.Error() + ")"
	}

	pterm.DefaultTable.WithData(data).Render()
}

func (textOutput) Rows(rows []sample.Person) {
	data := pterm.TableData{{"id", "name", "age", "city"}}
	for _, r := range rows {
		data = append(data, []string{
			strconv.FormatInt(r.ID, 10), r.Name, strconv.Itoa(int(r.Age)), r.City,
		})
	}

	pterm.DefaultTable.
		WithHasHeader(true).
		WithHeaderRowSeparator("-").
		WithData(data).Render()
}

func (textOutput) Text(val string) {
	pterm.Println(val)
}

func (textOutput) Error(err error) {
	pterm.Println("Error: " + err.Error())
}

// jsonOutput writes a single JSON document per command to stdout. Progress
// is not reported; the result carries the namespace status instead.
type jsonOutput struct{}

func (jsonOutput) TokenObtained(string)                               {}
func (jsonOutput) NamespaceCreated(string, int)                       {}
func (jsonOutput) BucketEnsured(string, bool)                         {}
func (jsonOutput) TableCreated(table.Identifier, string)              {}
func (jsonOutput) Appended(table.Identifier, lakehouse.SnapshotStats) {}

func (j jsonOutput) Result(res *pipeline.Result) { j.encode(res) }

func (j jsonOutput) Rows(rows []sample.Person) {
	j.encode(struct {
		Rows []sample.Person `json:"rows"`
	}{Rows: rows})
}

func (j jsonOutput) Text(val string) {
	j.encode(struct {
		Message string `json:"message"`
	}{Message: val})
}

func (j jsonOutput) Error(err error) {
	j.encode(struct {
		Error string `json:"error"`
	}{Error: err.Error()})
}

func (jsonOutput) encode(v any) {
	_ = json.NewEncoder(os.Stdout).Encode(v)
}
