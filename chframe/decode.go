// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package chframe

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/Query-farm/ch-frame/wire"
)

// DecodeColumn converts one block column's tagged values into an arrow
// array of the semantic column type. Before any value is built, every
// non-null value's physical tag is checked against the tag the declared
// type implies; a disagreement fails with [TypeMismatchError] rather
// than coercing.
func DecodeColumn(mem memory.Allocator, values []wire.Value, ct ColumnType) (arrow.Array, error) {
	expected := ct.expectedKind()
	for _, v := range values {
		if k := v.Kind(); k != wire.KindNull && k != expected {
			return nil, &TypeMismatchError{Found: k, Expected: expected}
		}
	}

	dt, _, err := ct.ArrowType()
	if err != nil {
		return nil, err
	}
	b := array.NewBuilder(mem, dt)
	defer b.Release()
	if err := appendValues(b, values, ct); err != nil {
		return nil, err
	}
	return b.NewArray(), nil
}

// appendValues appends tagged values to a builder, recursing through
// wrapper and array types. The builder's concrete type is derived from
// the same ColumnType via ArrowType, so the assertions below hold by
// construction.
func appendValues(b array.Builder, values []wire.Value, ct ColumnType) error {
	switch ct.kind {
	case ctBool:
		bb := b.(*array.BooleanBuilder)
		for _, v := range values {
			if v.Kind() == wire.KindNull {
				bb.AppendNull()
				continue
			}
			bb.Append(v.(wire.UInt8Value) > 0)
		}
		return nil
	case ctNullable:
		// Nullability lives in the arrow validity bitmap; the builder
		// is already the element type's builder.
		return appendValues(b, values, *ct.elem)
	}

	t := ct.native
	switch t.Base {
	case wire.Int8:
		ab := b.(*array.Int8Builder)
		for _, v := range values {
			if v.Kind() == wire.KindNull {
				ab.AppendNull()
			} else {
				ab.Append(int8(v.(wire.Int8Value)))
			}
		}
	case wire.Int16:
		ab := b.(*array.Int16Builder)
		for _, v := range values {
			if v.Kind() == wire.KindNull {
				ab.AppendNull()
			} else {
				ab.Append(int16(v.(wire.Int16Value)))
			}
		}
	case wire.Int32:
		ab := b.(*array.Int32Builder)
		for _, v := range values {
			if v.Kind() == wire.KindNull {
				ab.AppendNull()
			} else {
				ab.Append(int32(v.(wire.Int32Value)))
			}
		}
	case wire.Int64:
		ab := b.(*array.Int64Builder)
		for _, v := range values {
			if v.Kind() == wire.KindNull {
				ab.AppendNull()
			} else {
				ab.Append(int64(v.(wire.Int64Value)))
			}
		}
	case wire.UInt8:
		ab := b.(*array.Uint8Builder)
		for _, v := range values {
			if v.Kind() == wire.KindNull {
				ab.AppendNull()
			} else {
				ab.Append(uint8(v.(wire.UInt8Value)))
			}
		}
	case wire.UInt16:
		ab := b.(*array.Uint16Builder)
		for _, v := range values {
			if v.Kind() == wire.KindNull {
				ab.AppendNull()
			} else {
				ab.Append(uint16(v.(wire.UInt16Value)))
			}
		}
	case wire.UInt32:
		ab := b.(*array.Uint32Builder)
		for _, v := range values {
			if v.Kind() == wire.KindNull {
				ab.AppendNull()
			} else {
				ab.Append(uint32(v.(wire.UInt32Value)))
			}
		}
	case wire.UInt64:
		ab := b.(*array.Uint64Builder)
		for _, v := range values {
			if v.Kind() == wire.KindNull {
				ab.AppendNull()
			} else {
				ab.Append(uint64(v.(wire.UInt64Value)))
			}
		}
	case wire.Float32:
		ab := b.(*array.Float32Builder)
		for _, v := range values {
			if v.Kind() == wire.KindNull {
				ab.AppendNull()
			} else {
				ab.Append(float32(v.(wire.Float32Value)))
			}
		}
	case wire.Float64:
		ab := b.(*array.Float64Builder)
		for _, v := range values {
			if v.Kind() == wire.KindNull {
				ab.AppendNull()
			} else {
				ab.Append(float64(v.(wire.Float64Value)))
			}
		}
	case wire.String, wire.JSON:
		ab := b.(*array.StringBuilder)
		for _, v := range values {
			if v.Kind() == wire.KindNull {
				ab.AppendNull()
			} else {
				ab.Append(string(v.(wire.StringValue)))
			}
		}
	case wire.UUID:
		ab := b.(*array.StringBuilder)
		for _, v := range values {
			if v.Kind() == wire.KindNull {
				ab.AppendNull()
			} else {
				ab.Append(string(v.(wire.UUIDValue)))
			}
		}
	case wire.LowCardinality:
		if !sharedDict.Load() {
			return appendValues(b, values, NativeType(t.Elem.StripNullable()))
		}
		db := b.(*array.BinaryDictionaryBuilder)
		for _, v := range values {
			if v.Kind() == wire.KindNull {
				db.AppendNull()
				continue
			}
			if err := db.AppendString(string(v.(wire.StringValue))); err != nil {
				return fmt.Errorf("chframe: appending dictionary value: %w", err)
			}
		}
	case wire.Nullable:
		return appendValues(b, values, NativeType(*t.Elem))
	case wire.Array:
		lb := b.(*array.ListBuilder)
		inner := NativeType(*t.Elem)
		innerKind := inner.expectedKind()
		for _, v := range values {
			if v.Kind() == wire.KindNull {
				lb.AppendNull()
				continue
			}
			elems := v.(wire.ArrayValue)
			for _, e := range elems {
				if k := e.Kind(); k != wire.KindNull && k != innerKind {
					return &TypeMismatchError{Found: k, Expected: innerKind}
				}
			}
			lb.Append(true)
			if err := appendValues(lb.ValueBuilder(), elems, inner); err != nil {
				return err
			}
		}
	default:
		return &UnsupportedTypeError{Type: ct.String()}
	}
	return nil
}
