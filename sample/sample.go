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

// Package sample defines the demo dataset written by polaris-writer: a
// four column people table with five rows, the Iceberg schema of the
// target table and the Arrow schema of the in-memory data.
package sample

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/iceberg-go"
)

type Person struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Age  int32  `json:"age"`
	City string `json:"city"`
}

func Rows() []Person {
	return []Person{
		{ID: 1, Name: "Alice", Age: 25, City: "New York"},
		{ID: 2, Name: "Bob", Age: 30, City: "London"},
		{ID: 3, Name: "Charlie", Age: 35, City: "Tokyo"},
		{ID: 4, Name: "David", Age: 28, City: "Paris"},
		{ID: 5, Name: "Eve", Age: 32, City: "Berlin"},
	}
}

// TableSchema is the schema the table is created with. It is declared on
// its own rather than derived from ArrowSchema; CheckCompatible keeps the
// two in step.
func TableSchema() *iceberg.Schema {
	return iceberg.NewSchema(0,
		iceberg.NestedField{ID: 1, Name: "id", Type: iceberg.PrimitiveTypes.Int64, Required: true},
		iceberg.NestedField{ID: 2, Name: "name", Type: iceberg.PrimitiveTypes.String, Required: true},
		iceberg.NestedField{ID: 3, Name: "age", Type: iceberg.PrimitiveTypes.Int32, Required: true},
		iceberg.NestedField{ID: 4, Name: "city", Type: iceberg.PrimitiveTypes.String, Required: true},
	)
}

func ArrowSchema() *arrow.Schema {
	return arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.PrimitiveTypes.Int64, Nullable: false},
		{Name: "name", Type: arrow.BinaryTypes.String, Nullable: false},
		{Name: "age", Type: arrow.PrimitiveTypes.Int32, Nullable: false},
		{Name: "city", Type: arrow.BinaryTypes.String, Nullable: false},
	}, nil)
}

// NewRecord builds a single record batch holding rows. The caller owns the
// returned record and must release it.
func NewRecord(mem memory.Allocator, rows []Person) arrow.Record {
	bldr := array.NewRecordBuilder(mem, ArrowSchema())
	defer bldr.Release()

	ids := bldr.Field(0).(*array.Int64Builder)
	names := bldr.Field(1).(*array.StringBuilder)
	ages := bldr.Field(2).(*array.Int32Builder)
	cities := bldr.Field(3).(*array.StringBuilder)

	for _, r := range rows {
		ids.Append(r.ID)
		names.Append(r.Name)
		ages.Append(r.Age)
		cities.Append(r.City)
	}

	return bldr.NewRecord()
}

// NewTable wraps NewRecord into an arrow.Table, the shape Table.AppendTable
// expects. The caller must release the returned table.
func NewTable(mem memory.Allocator, rows []Person) arrow.Table {
	rec := NewRecord(mem, rows)
	defer rec.Release()

	return array.NewTableFromRecords(rec.Schema(), []arrow.Record{rec})
}
