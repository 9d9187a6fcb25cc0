// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package chframe

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// nestedSchema has a struct column on each side of a plain one, with one
// struct nested two levels deep:
//
//	col1: struct{field1 String}
//	col0: Int64
//	col2: struct{field1 struct{subfield1 String, subfield2 Int64}, field2 String}
func nestedSchema() *arrow.Schema {
	return arrow.NewSchema([]arrow.Field{
		{Name: "col1", Type: arrow.StructOf(
			arrow.Field{Name: "field1", Type: arrow.BinaryTypes.String},
		)},
		{Name: "col0", Type: arrow.PrimitiveTypes.Int64},
		{Name: "col2", Type: arrow.StructOf(
			arrow.Field{Name: "field1", Type: arrow.StructOf(
				arrow.Field{Name: "subfield1", Type: arrow.BinaryTypes.String},
				arrow.Field{Name: "subfield2", Type: arrow.PrimitiveTypes.Int64},
			)},
			arrow.Field{Name: "field2", Type: arrow.BinaryTypes.String},
		)},
	}, nil)
}

func nestedRecord(t *testing.T, mem memory.Allocator) arrow.RecordBatch {
	t.Helper()
	b := array.NewRecordBuilder(mem, nestedSchema())
	defer b.Release()

	col1 := b.Field(0).(*array.StructBuilder)
	col1f1 := col1.FieldBuilder(0).(*array.StringBuilder)
	col0 := b.Field(1).(*array.Int64Builder)
	col2 := b.Field(2).(*array.StructBuilder)
	col2f1 := col2.FieldBuilder(0).(*array.StructBuilder)
	sub1 := col2f1.FieldBuilder(0).(*array.StringBuilder)
	sub2 := col2f1.FieldBuilder(1).(*array.Int64Builder)
	col2f2 := col2.FieldBuilder(1).(*array.StringBuilder)

	for i := 0; i < 3; i++ {
		col1.Append(true)
		col1f1.Append("a")
		col0.Append(int64(i))
		col2.Append(true)
		col2f1.Append(true)
		sub1.Append("b")
		sub2.Append(int64(i * 10))
		col2f2.Append("c")
	}
	return b.NewRecordBatch()
}

func TestFlattenRecord(t *testing.T) {
	mem := memory.NewGoAllocator()
	rec := nestedRecord(t, mem)
	defer rec.Release()

	flat, err := FlattenRecord(rec)
	require.NoError(t, err)
	defer flat.Release()

	var names []string
	for _, f := range flat.Schema().Fields() {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{
		"col1.field1",
		"col0",
		"col2.field1.subfield1",
		"col2.field1.subfield2",
		"col2.field2",
	}, names)
	assert.Equal(t, rec.NumRows(), flat.NumRows())

	// Leaf data passes through untouched.
	sub2 := flat.Column(3).(*array.Int64)
	assert.Equal(t, []int64{0, 10, 20}, sub2.Int64Values())
}

func TestFlattenSchema(t *testing.T) {
	flat := FlattenSchema(nestedSchema())
	require.Equal(t, 5, flat.NumFields())
	assert.Equal(t, "col2.field1.subfield2", flat.Field(3).Name)
	assert.True(t, arrow.TypeEqual(arrow.PrimitiveTypes.Int64, flat.Field(3).Type))

	// A flat schema flattens to itself.
	plain := arrow.NewSchema([]arrow.Field{
		{Name: "x", Type: arrow.PrimitiveTypes.Int32},
	}, nil)
	assert.True(t, plain.Equal(FlattenSchema(plain)))
}

// Unflattening a flattened record reproduces the original schema and
// data, including splice positions of struct columns between plain ones.
func TestUnflattenInvertsFlatten(t *testing.T) {
	mem := memory.NewGoAllocator()
	rec := nestedRecord(t, mem)
	defer rec.Release()

	flat, err := FlattenRecord(rec)
	require.NoError(t, err)
	defer flat.Release()

	cols := make([]Column, flat.NumCols())
	for i := range cols {
		cols[i] = Column{Field: flat.Schema().Field(i), Data: flat.Column(i)}
	}
	nested, err := UnflattenColumns(cols)
	require.NoError(t, err)
	require.Len(t, nested, int(rec.NumCols()))

	for i, c := range nested {
		want := rec.Schema().Field(i)
		assert.Equal(t, want.Name, c.Field.Name)
		assert.True(t, arrow.TypeEqual(want.Type, c.Field.Type),
			"column %s: got %s, want %s", want.Name, c.Field.Type, want.Type)
		assert.True(t, array.Equal(rec.Column(i), c.Data), "column %s data", want.Name)
	}
}

func TestUnflattenPassthrough(t *testing.T) {
	mem := memory.NewGoAllocator()

	b := array.NewInt64Builder(mem)
	defer b.Release()
	b.Append(1)
	arr := b.NewInt64Array()
	defer arr.Release()

	in := []Column{{Field: arrow.Field{Name: "plain", Type: arrow.PrimitiveTypes.Int64}, Data: arr}}
	out, err := UnflattenColumns(in)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "plain", out[0].Field.Name)
	assert.Same(t, arrow.Array(arr), out[0].Data)
}
