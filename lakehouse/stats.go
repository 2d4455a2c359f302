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

package lakehouse

import (
	"strconv"

	"github.com/apache/iceberg-go/table"
)

const (
	summaryAddedRecords = "added-records"
	summaryAddedFiles   = "added-data-files"
	summaryTotalRecords = "total-records"
)

type SnapshotStats struct {
	SnapshotID   int64             `json:"snapshot-id"`
	Operation    string            `json:"operation"`
	AddedRecords int64             `json:"added-records"`
	AddedFiles   int64             `json:"added-data-files"`
	TotalRecords int64             `json:"total-records"`
	Properties   map[string]string `json:"properties,omitempty"`
}

// Stats summarises the current snapshot of tbl. ok is false when the table
// has no snapshot yet.
func Stats(tbl *table.Table) (stats SnapshotStats, ok bool) {
	snap := tbl.CurrentSnapshot()
	if snap == nil {
		return stats, false
	}

	stats.SnapshotID = snap.SnapshotID
	if snap.Summary == nil {
		return stats, true
	}

	stats.Operation = string(snap.Summary.Operation)
	stats.Properties = snap.Summary.Properties

	num := func(key string) int64 {
		n, _ := strconv.ParseInt(snap.Summary.Properties[key], 10, 64)

		return n
	}
	stats.AddedRecords = num(summaryAddedRecords)
	stats.AddedFiles = num(summaryAddedFiles)
	stats.TotalRecords = num(summaryTotalRecords)

	return stats, true
}
