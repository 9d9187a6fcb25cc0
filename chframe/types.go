// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package chframe

import (
	"sync/atomic"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/Query-farm/ch-frame/wire"
)

// sharedDict controls whether LowCardinality(String) columns decode to
// arrow Dictionary arrays. Off by default; see EnableSharedDictionaries.
var sharedDict atomic.Bool

// EnableSharedDictionaries opts the process into dictionary-encoded
// decoding of LowCardinality(String) columns. It must be called once by
// the embedding application before any decode; without it such columns
// decode to plain String arrays. There is no way to turn the mode back
// off, matching its role as process lifecycle configuration.
func EnableSharedDictionaries() {
	sharedDict.Store(true)
}

// lowCardinalityDictType is the arrow type used for dictionary-decoded
// LowCardinality(String) columns.
var lowCardinalityDictType = &arrow.DictionaryType{
	IndexType: arrow.PrimitiveTypes.Int32,
	ValueType: arrow.BinaryTypes.String,
}

type columnTypeKind uint8

const (
	ctNative columnTypeKind = iota
	ctBool
	ctNullable
)

// ColumnType is the semantic column type vocabulary of the bridge. It
// layers two distinctions over the physical wire type: Bool (stored as
// UInt8 on the wire) and an explicit Nullable wrapper. The semantic tag,
// not the physical one, drives all conversions; consulting only the wire
// type would silently decode booleans as raw integers.
type ColumnType struct {
	kind   columnTypeKind
	native wire.Type
	elem   *ColumnType
}

// BoolType is the semantic boolean column type.
var BoolType = ColumnType{kind: ctBool}

// NativeType wraps a wire type as a semantic column type. The reverse
// direction of WireType; Bool is not recoverable this way, only through
// explicit schema knowledge such as DESCRIBE TABLE output.
func NativeType(t wire.Type) ColumnType {
	return ColumnType{kind: ctNative, native: t}
}

// ParseColumnType parses ClickHouse type text, recognizing the semantic
// "Bool" spelling on top of the native grammar.
func ParseColumnType(s string) (ColumnType, error) {
	if s == "Bool" {
		return BoolType, nil
	}
	t, err := wire.ParseType(s)
	if err != nil {
		return ColumnType{}, err
	}
	return NativeType(t), nil
}

// String renders the type in ClickHouse syntax.
func (c ColumnType) String() string {
	switch c.kind {
	case ctBool:
		return "Bool"
	case ctNullable:
		return "Nullable(" + c.elem.String() + ")"
	default:
		return c.native.String()
	}
}

// Equal reports structural equality.
func (c ColumnType) Equal(o ColumnType) bool {
	if c.kind != o.kind {
		return false
	}
	switch c.kind {
	case ctNullable:
		return c.elem.Equal(*o.elem)
	case ctNative:
		return c.native.Equal(o.native)
	default:
		return true
	}
}

// AsNullable wraps the type in the semantic Nullable wrapper.
// Already-nullable types are returned unchanged.
func (c ColumnType) AsNullable() ColumnType {
	if c.kind == ctNullable || (c.kind == ctNative && c.native.Base == wire.Nullable) {
		return c
	}
	inner := c
	return ColumnType{kind: ctNullable, elem: &inner}
}

// WireType returns the physical type a column of this semantic type has
// on the wire. Bool erases to UInt8.
func (c ColumnType) WireType() wire.Type {
	switch c.kind {
	case ctBool:
		return wire.Type{Base: wire.UInt8}
	case ctNullable:
		return c.elem.WireType().AsNullable()
	default:
		return c.native
	}
}

// expectedKind is the physical value tag every non-null cell of this
// column must carry.
func (c ColumnType) expectedKind() wire.Kind {
	return c.WireType().ValueKind()
}

// ArrowType maps the semantic type to the arrow vocabulary, returning
// the data type and whether the column is nullable. Types outside the
// closed correspondence fail with [UnsupportedTypeError].
func (c ColumnType) ArrowType() (arrow.DataType, bool, error) {
	switch c.kind {
	case ctBool:
		return arrow.FixedWidthTypes.Boolean, false, nil
	case ctNullable:
		dt, _, err := c.elem.ArrowType()
		return dt, true, err
	}
	t := c.native
	switch t.Base {
	case wire.Int8:
		return arrow.PrimitiveTypes.Int8, false, nil
	case wire.Int16:
		return arrow.PrimitiveTypes.Int16, false, nil
	case wire.Int32:
		return arrow.PrimitiveTypes.Int32, false, nil
	case wire.Int64:
		return arrow.PrimitiveTypes.Int64, false, nil
	case wire.UInt8:
		return arrow.PrimitiveTypes.Uint8, false, nil
	case wire.UInt16:
		return arrow.PrimitiveTypes.Uint16, false, nil
	case wire.UInt32:
		return arrow.PrimitiveTypes.Uint32, false, nil
	case wire.UInt64:
		return arrow.PrimitiveTypes.Uint64, false, nil
	case wire.Float32:
		return arrow.PrimitiveTypes.Float32, false, nil
	case wire.Float64:
		return arrow.PrimitiveTypes.Float64, false, nil
	case wire.String, wire.UUID, wire.JSON:
		// UUID and JSON are opaque text on the arrow side.
		return arrow.BinaryTypes.String, false, nil
	case wire.Array:
		inner, nullable, err := NativeType(*t.Elem).ArrowType()
		if err != nil {
			return nil, false, err
		}
		return arrow.ListOfField(arrow.Field{Name: "item", Type: inner, Nullable: nullable}), false, nil
	case wire.LowCardinality:
		if t.Elem.StripNullable().Base != wire.String {
			return nil, false, &UnsupportedTypeError{Type: c.String()}
		}
		nullable := t.Elem.Base == wire.Nullable
		if sharedDict.Load() {
			return lowCardinalityDictType, nullable, nil
		}
		return arrow.BinaryTypes.String, nullable, nil
	case wire.Nullable:
		dt, _, err := NativeType(*t.Elem).ArrowType()
		return dt, true, err
	default:
		return nil, false, &UnsupportedTypeError{Type: c.String()}
	}
}

// ColumnTypeFromArrow maps an arrow field to the semantic column type,
// honoring the field's nullable flag. Arrow types outside the closed
// correspondence fail with [UnsupportedTypeError].
func ColumnTypeFromArrow(f arrow.Field) (ColumnType, error) {
	ct, err := columnTypeFromArrowType(f.Type)
	if err != nil {
		return ColumnType{}, err
	}
	if f.Nullable {
		ct = ct.AsNullable()
	}
	return ct, nil
}

func columnTypeFromArrowType(dt arrow.DataType) (ColumnType, error) {
	switch dt.ID() {
	case arrow.INT8:
		return NativeType(wire.Type{Base: wire.Int8}), nil
	case arrow.INT16:
		return NativeType(wire.Type{Base: wire.Int16}), nil
	case arrow.INT32:
		return NativeType(wire.Type{Base: wire.Int32}), nil
	case arrow.INT64:
		return NativeType(wire.Type{Base: wire.Int64}), nil
	case arrow.UINT8:
		return NativeType(wire.Type{Base: wire.UInt8}), nil
	case arrow.UINT16:
		return NativeType(wire.Type{Base: wire.UInt16}), nil
	case arrow.UINT32:
		return NativeType(wire.Type{Base: wire.UInt32}), nil
	case arrow.UINT64:
		return NativeType(wire.Type{Base: wire.UInt64}), nil
	case arrow.FLOAT32:
		return NativeType(wire.Type{Base: wire.Float32}), nil
	case arrow.FLOAT64:
		return NativeType(wire.Type{Base: wire.Float64}), nil
	case arrow.STRING:
		return NativeType(wire.Type{Base: wire.String}), nil
	case arrow.BOOL:
		return BoolType, nil
	case arrow.DICTIONARY:
		d := dt.(*arrow.DictionaryType)
		if d.ValueType.ID() != arrow.STRING {
			return ColumnType{}, &UnsupportedTypeError{Type: dt.String()}
		}
		elem := wire.Type{Base: wire.String}
		return NativeType(wire.Type{Base: wire.LowCardinality, Elem: &elem}), nil
	case arrow.LIST:
		l := dt.(*arrow.ListType)
		inner, err := ColumnTypeFromArrow(l.ElemField())
		if err != nil {
			return ColumnType{}, err
		}
		elem := inner.WireType()
		return NativeType(wire.Type{Base: wire.Array, Elem: &elem}), nil
	default:
		return ColumnType{}, &UnsupportedTypeError{Type: dt.String()}
	}
}
