// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package chframe

import (
	"fmt"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/Query-farm/ch-frame/wire"
)

// fixtureRecord generates rows of mixed scalar and list data, the shape
// a typical events table has.
func fixtureRecord(mem memory.Allocator, rows int) arrow.RecordBatch {
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.PrimitiveTypes.Int64},
		{Name: "value", Type: arrow.PrimitiveTypes.Float64},
		{Name: "label", Type: arrow.BinaryTypes.String},
		{Name: "tags", Type: arrow.ListOf(arrow.BinaryTypes.String)},
	}, nil)
	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()

	ids := b.Field(0).(*array.Int64Builder)
	values := b.Field(1).(*array.Float64Builder)
	labels := b.Field(2).(*array.StringBuilder)
	tags := b.Field(3).(*array.ListBuilder)
	tag := tags.ValueBuilder().(*array.StringBuilder)

	for i := 0; i < rows; i++ {
		ids.Append(int64(i))
		values.Append(float64(i) * 0.5)
		labels.Append(fmt.Sprintf("label-%d", i%100))
		tags.Append(true)
		tag.Append("a")
		if i%2 == 0 {
			tag.Append("b")
		}
	}
	return b.NewRecordBatch()
}

func fixtureTable() *Table {
	elem := wire.Type{Base: wire.String}
	return &Table{Name: "events", Columns: []TableColumn{
		{Name: "id", Type: NativeType(wire.Type{Base: wire.Int64})},
		{Name: "value", Type: NativeType(wire.Type{Base: wire.Float64})},
		{Name: "label", Type: NativeType(wire.Type{Base: wire.String})},
		{Name: "tags", Type: NativeType(wire.Type{Base: wire.Array, Elem: &elem})},
	}}
}

func fixtureBlocks(b *testing.B, mem memory.Allocator, rows int) []*wire.Block {
	b.Helper()
	rec := fixtureRecord(mem, rows)
	defer rec.Release()
	table, err := TableFromSchema("events", rec.Schema(), nil, nil)
	if err != nil {
		b.Fatal(err)
	}
	asm, err := NewBlockAssembler(table, rec, nil)
	if err != nil {
		b.Fatal(err)
	}
	schema := &wire.Block{Columns: make([]wire.Column, len(table.Columns))}
	for i, c := range table.Columns {
		schema.Columns[i] = wire.Column{Name: c.Name, Type: c.Type.WireType()}
	}
	blocks := []*wire.Block{schema}
	for asm.Next() {
		blocks = append(blocks, asm.Block())
	}
	if err := asm.Err(); err != nil {
		b.Fatal(err)
	}
	return blocks
}

func BenchmarkEncodeRecord(b *testing.B) {
	mem := memory.NewGoAllocator()
	rec := fixtureRecord(mem, 10_000)
	defer rec.Release()
	table := fixtureTable()

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		asm, err := NewBlockAssembler(table, rec, nil)
		if err != nil {
			b.Fatal(err)
		}
		for asm.Next() {
		}
		if err := asm.Err(); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkAccumulateRecord(b *testing.B) {
	mem := memory.NewGoAllocator()
	blocks := fixtureBlocks(b, mem, 10_000)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rec, err := AccumulateRecord(mem, wire.NewSliceReader(blocks...), nil)
		if err != nil {
			b.Fatal(err)
		}
		rec.Release()
	}
}

func BenchmarkDecodeStringColumn(b *testing.B) {
	mem := memory.NewGoAllocator()
	vals := make([]wire.Value, 10_000)
	for i := range vals {
		vals[i] = wire.StringValue(fmt.Sprintf("value-%d", i%100))
	}
	ct := NativeType(wire.Type{Base: wire.String})

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		arr, err := DecodeColumn(mem, vals, ct)
		if err != nil {
			b.Fatal(err)
		}
		arr.Release()
	}
}
