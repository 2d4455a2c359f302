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
	"github.com/apache/iceberg-go"
	"github.com/apache/iceberg-go/table"
)

var ErrSchemaMismatch = errors.New("dataset schema does not match table schema")

// CheckCompatible reports whether a dataset with Arrow schema data can be
// appended to a table with schema sc: same number of fields, same names in
// the same order, nullable exactly where the table field is optional, and
// the Arrow type the table field converts to, in either its regular or its
// large variant. The first mismatch is returned.
func CheckCompatible(data *arrow.Schema, sc *iceberg.Schema) error {
	want, err := table.SchemaToArrowSchema(sc, nil, false, false)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrSchemaMismatch, err)
	}

	wantLarge, err := table.SchemaToArrowSchema(sc, nil, false, true)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrSchemaMismatch, err)
	}

	fields := sc.Fields()
	if data.NumFields() != len(fields) {
		return fmt.Errorf("%w: dataset has %d fields, table has %d",
			ErrSchemaMismatch, data.NumFields(), len(fields))
	}

	for i, tf := range fields {
		df := data.Field(i)
		if df.Name != tf.Name {
			return fmt.Errorf("%w: field %d is %q in the dataset but %q in the table",
				ErrSchemaMismatch, i, df.Name, tf.Name)
		}

		if df.Nullable != want.Field(i).Nullable {
			return fmt.Errorf("%w: field %q nullable=%t in the dataset but required=%t in the table",
				ErrSchemaMismatch, tf.Name, df.Nullable, tf.Required)
		}

		if !arrow.TypeEqual(df.Type, want.Field(i).Type) && !arrow.TypeEqual(df.Type, wantLarge.Field(i).Type) {
			return fmt.Errorf("%w: field %q is %s in the dataset but %s in the table",
				ErrSchemaMismatch, tf.Name, df.Type, tf.Type)
		}
	}

	return nil
}
