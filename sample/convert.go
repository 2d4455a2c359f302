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

package sample

import (
	"errors"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
)

var ErrUnexpectedColumn = errors.New("unexpected column")

// FromArrowTable reads rows back out of a scanned table. Scans may hand
// back large strings or widened integers, so both widths are accepted.
// Nulls are rejected: every column of the table is required.
func FromArrowTable(tbl arrow.Table) ([]Person, error) {
	idx := make(map[string]int, 4)
	for _, name := range []string{"id", "name", "age", "city"} {
		found := tbl.Schema().FieldIndices(name)
		if len(found) != 1 {
			return nil, fmt.Errorf("%w: %q not found in %s", ErrUnexpectedColumn, name, tbl.Schema())
		}
		idx[name] = found[0]
	}

	out := make([]Person, 0, tbl.NumRows())
	rdr := array.NewTableReader(tbl, -1)
	defer rdr.Release()

	for rdr.Next() {
		rec := rdr.Record()
		for i := 0; i < int(rec.NumRows()); i++ {
			p, err := personAt(rec, idx, i)
			if err != nil {
				return nil, err
			}
			out = append(out, p)
		}
	}

	return out, rdr.Err()
}

func personAt(rec arrow.Record, idx map[string]int, row int) (p Person, err error) {
	col := func(name string) arrow.Array { return rec.Column(idx[name]) }

	if p.ID, err = intAt(col("id"), "id", row); err != nil {
		return p, err
	}

	age, err := intAt(col("age"), "age", row)
	if err != nil {
		return p, err
	}
	p.Age = int32(age)

	if p.Name, err = stringAt(col("name"), "name", row); err != nil {
		return p, err
	}

	p.City, err = stringAt(col("city"), "city", row)

	return p, err
}

func intAt(arr arrow.Array, name string, row int) (int64, error) {
	if arr.IsNull(row) {
		return 0, fmt.Errorf("%w: %s is null at row %d", ErrUnexpectedColumn, name, row)
	}

	switch a := arr.(type) {
	case *array.Int64:
		return a.Value(row), nil
	case *array.Int32:
		return int64(a.Value(row)), nil
	default:
		return 0, fmt.Errorf("%w: %s has type %s", ErrUnexpectedColumn, name, arr.DataType())
	}
}

func stringAt(arr arrow.Array, name string, row int) (string, error) {
	if arr.IsNull(row) {
		return "", fmt.Errorf("%w: %s is null at row %d", ErrUnexpectedColumn, name, row)
	}

	switch a := arr.(type) {
	case *array.String:
		return a.Value(row), nil
	case *array.LargeString:
		return a.Value(row), nil
	default:
		return "", fmt.Errorf("%w: %s has type %s", ErrUnexpectedColumn, name, arr.DataType())
	}
}
