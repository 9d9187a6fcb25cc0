// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package chframe

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Query-farm/ch-frame/wire"
)

func TestParseColumnType(t *testing.T) {
	ct, err := ParseColumnType("Bool")
	require.NoError(t, err)
	assert.True(t, ct.Equal(BoolType))
	assert.Equal(t, "Bool", ct.String())

	ct, err = ParseColumnType("Nullable(Int64)")
	require.NoError(t, err)
	assert.Equal(t, "Nullable(Int64)", ct.String())

	_, err = ParseColumnType("Tuple(Int8, Int8)")
	var ute *wire.UnsupportedTypeError
	require.ErrorAs(t, err, &ute)
}

func TestColumnTypeWireType(t *testing.T) {
	tests := []struct {
		ct   ColumnType
		want string
	}{
		{BoolType, "UInt8"},
		{BoolType.AsNullable(), "Nullable(UInt8)"},
		{NativeType(wire.Type{Base: wire.Int64}), "Int64"},
		{mustParseColumnType(t, "Nullable(String)"), "Nullable(String)"},
		{mustParseColumnType(t, "Array(Int32)"), "Array(Int32)"},
	}
	for _, tc := range tests {
		t.Run(tc.ct.String(), func(t *testing.T) {
			assert.Equal(t, tc.want, tc.ct.WireType().String())
		})
	}
}

func TestColumnTypeToArrow(t *testing.T) {
	tests := []struct {
		text     string
		want     arrow.DataType
		nullable bool
	}{
		{"Int8", arrow.PrimitiveTypes.Int8, false},
		{"UInt64", arrow.PrimitiveTypes.Uint64, false},
		{"Float32", arrow.PrimitiveTypes.Float32, false},
		{"String", arrow.BinaryTypes.String, false},
		{"UUID", arrow.BinaryTypes.String, false},
		{"JSON", arrow.BinaryTypes.String, false},
		{"Bool", arrow.FixedWidthTypes.Boolean, false},
		{"Nullable(Int32)", arrow.PrimitiveTypes.Int32, true},
		{"LowCardinality(String)", arrow.BinaryTypes.String, false},
		{"LowCardinality(Nullable(String))", arrow.BinaryTypes.String, true},
		{
			"Array(Int64)",
			arrow.ListOfField(arrow.Field{Name: "item", Type: arrow.PrimitiveTypes.Int64}),
			false,
		},
		{
			"Array(Nullable(String))",
			arrow.ListOfField(arrow.Field{Name: "item", Type: arrow.BinaryTypes.String, Nullable: true}),
			false,
		},
	}
	for _, tc := range tests {
		t.Run(tc.text, func(t *testing.T) {
			ct := mustParseColumnType(t, tc.text)
			dt, nullable, err := ct.ArrowType()
			require.NoError(t, err)
			assert.True(t, arrow.TypeEqual(tc.want, dt), "got %s, want %s", dt, tc.want)
			assert.Equal(t, tc.nullable, nullable)
		})
	}
}

func TestColumnTypeToArrowUnsupported(t *testing.T) {
	elem := wire.Type{Base: wire.Int64}
	ct := NativeType(wire.Type{Base: wire.LowCardinality, Elem: &elem})
	_, _, err := ct.ArrowType()
	var ute *UnsupportedTypeError
	require.ErrorAs(t, err, &ute)
}

func TestColumnTypeFromArrow(t *testing.T) {
	tests := []struct {
		field arrow.Field
		want  string
	}{
		{arrow.Field{Name: "a", Type: arrow.PrimitiveTypes.Int16}, "Int16"},
		{arrow.Field{Name: "a", Type: arrow.PrimitiveTypes.Uint32}, "UInt32"},
		{arrow.Field{Name: "a", Type: arrow.BinaryTypes.String}, "String"},
		{arrow.Field{Name: "a", Type: arrow.FixedWidthTypes.Boolean}, "Bool"},
		{arrow.Field{Name: "a", Type: arrow.FixedWidthTypes.Boolean, Nullable: true}, "Nullable(Bool)"},
		{arrow.Field{Name: "a", Type: arrow.PrimitiveTypes.Float64, Nullable: true}, "Nullable(Float64)"},
		{arrow.Field{Name: "a", Type: lowCardinalityDictType}, "LowCardinality(String)"},
		{
			arrow.Field{Name: "a", Type: arrow.ListOfField(arrow.Field{Name: "item", Type: arrow.PrimitiveTypes.Int64})},
			"Array(Int64)",
		},
		{
			arrow.Field{Name: "a", Type: arrow.ListOf(arrow.BinaryTypes.String)},
			"Array(Nullable(String))",
		},
	}
	for _, tc := range tests {
		t.Run(tc.want, func(t *testing.T) {
			ct, err := ColumnTypeFromArrow(tc.field)
			require.NoError(t, err)
			assert.Equal(t, tc.want, ct.String())
		})
	}

	_, err := ColumnTypeFromArrow(arrow.Field{Name: "a", Type: arrow.FixedWidthTypes.Date32})
	var ute *UnsupportedTypeError
	require.ErrorAs(t, err, &ute)
}

// The arrow boolean maps to Bool, never back to the UInt8 it is stored
// as on the wire; the two directions are deliberately asymmetric.
func TestBoolMappingAsymmetry(t *testing.T) {
	ct, err := ColumnTypeFromArrow(arrow.Field{Name: "a", Type: arrow.FixedWidthTypes.Boolean})
	require.NoError(t, err)
	assert.True(t, ct.Equal(BoolType))
	assert.Equal(t, "UInt8", ct.WireType().String())

	back, err := ColumnTypeFromArrow(arrow.Field{Name: "a", Type: arrow.PrimitiveTypes.Uint8})
	require.NoError(t, err)
	assert.False(t, back.Equal(BoolType))
}

func mustParseColumnType(t *testing.T, s string) ColumnType {
	t.Helper()
	ct, err := ParseColumnType(s)
	require.NoError(t, err)
	return ct
}
