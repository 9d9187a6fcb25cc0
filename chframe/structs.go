// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package chframe

import (
	"fmt"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
)

// Column pairs an arrow field with its data. The ordered []Column form
// is the working representation between the wire layer and a finished
// RecordBatch.
type Column struct {
	Field arrow.Field
	Data  arrow.Array
}

// FlattenRecord replaces every struct column of the record with its
// recursively flattened sub-columns, renamed "<parent>.<field>". Other
// columns pass through in place, so
//
//	{a, s{x, y}, b}  becomes  {a, s.x, s.y, b}
//
// and nesting flattens all the way down ("s.t.x"). UnflattenColumns is
// the inverse.
func FlattenRecord(rec arrow.RecordBatch) (arrow.RecordBatch, error) {
	cols := make([]Column, rec.NumCols())
	for i := range cols {
		cols[i] = Column{Field: rec.Schema().Field(i), Data: rec.Column(i)}
	}
	flat := flattenColumns(cols)
	fields := make([]arrow.Field, len(flat))
	arrs := make([]arrow.Array, len(flat))
	for i, c := range flat {
		fields[i] = c.Field
		arrs[i] = c.Data
	}
	schema := arrow.NewSchema(fields, nil)
	return array.NewRecordBatch(schema, arrs, rec.NumRows()), nil
}

// FlattenSchema flattens struct fields of a schema the same way
// FlattenRecord flattens columns.
func FlattenSchema(schema *arrow.Schema) *arrow.Schema {
	var out []arrow.Field
	for _, f := range schema.Fields() {
		out = append(out, flattenField(f)...)
	}
	return arrow.NewSchema(out, nil)
}

func flattenField(f arrow.Field) []arrow.Field {
	st, ok := f.Type.(*arrow.StructType)
	if !ok {
		return []arrow.Field{f}
	}
	var out []arrow.Field
	for _, sub := range st.Fields() {
		for _, leaf := range flattenField(sub) {
			leaf.Name = f.Name + "." + leaf.Name
			out = append(out, leaf)
		}
	}
	return out
}

func flattenColumns(cols []Column) []Column {
	var out []Column
	for _, c := range cols {
		st, ok := c.Data.(*array.Struct)
		if !ok {
			out = append(out, c)
			continue
		}
		stType := c.Field.Type.(*arrow.StructType)
		sub := make([]Column, st.NumField())
		for i := range sub {
			sub[i] = Column{Field: stType.Field(i), Data: st.Field(i)}
		}
		for _, leaf := range flattenColumns(sub) {
			leaf.Field.Name = c.Field.Name + "." + leaf.Field.Name
			out = append(out, leaf)
		}
	}
	return out
}

// UnflattenColumns reconstructs struct columns from dot-named flat
// columns. Columns sharing a first path segment are grouped into one
// struct column, spliced into the output at the position of the group's
// first member; deeper nesting is handled recursively. Non-dotted
// columns keep their position. Inverse of FlattenRecord's flattening.
func UnflattenColumns(cols []Column) ([]Column, error) {
	groups := make(map[string][]Column)
	var order []string
	for _, c := range cols {
		name := c.Field.Name
		i := strings.IndexByte(name, '.')
		if i < 0 {
			continue
		}
		prefix, suffix := name[:i], name[i+1:]
		if _, seen := groups[prefix]; !seen {
			order = append(order, prefix)
		}
		sub := c
		sub.Field.Name = suffix
		groups[prefix] = append(groups[prefix], sub)
	}

	built := make(map[string]Column, len(order))
	for _, prefix := range order {
		sub, err := UnflattenColumns(groups[prefix])
		if err != nil {
			return nil, err
		}
		fields := make([]arrow.Field, len(sub))
		arrs := make([]arrow.Array, len(sub))
		for i, c := range sub {
			fields[i] = c.Field
			arrs[i] = c.Data
		}
		st, err := array.NewStructArrayWithFields(arrs, fields)
		if err != nil {
			return nil, fmt.Errorf("chframe: building struct column %q: %w", prefix, err)
		}
		built[prefix] = Column{
			Field: arrow.Field{Name: prefix, Type: st.DataType()},
			Data:  st,
		}
	}

	var out []Column
	emitted := make(map[string]bool, len(built))
	for _, c := range cols {
		name := c.Field.Name
		i := strings.IndexByte(name, '.')
		if i < 0 {
			out = append(out, c)
			continue
		}
		prefix := name[:i]
		if !emitted[prefix] {
			emitted[prefix] = true
			out = append(out, built[prefix])
		}
	}
	return out, nil
}

// recordFromColumns assembles a RecordBatch from ordered columns. All
// columns must have equal length; rows is taken from the first column
// (zero for an empty set).
func recordFromColumns(cols []Column) arrow.RecordBatch {
	fields := make([]arrow.Field, len(cols))
	arrs := make([]arrow.Array, len(cols))
	rows := int64(0)
	for i, c := range cols {
		fields[i] = c.Field
		arrs[i] = c.Data
		if i == 0 {
			rows = int64(c.Data.Len())
		}
	}
	return array.NewRecordBatch(arrow.NewSchema(fields, nil), arrs, rows)
}
