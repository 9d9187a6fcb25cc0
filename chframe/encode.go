// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package chframe

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/Query-farm/ch-frame/wire"
)

// EncodeColumn converts an arrow array into the tagged value sequence a
// block column of the semantic type carries. Arrow nulls become the Null
// tag; dictionary columns are traversed by their decoded strings, never
// their index codes; list columns recurse per row. An arrow layout that
// cannot furnish the expected scalar family fails with
// [SeriesTypeMismatchError].
func EncodeColumn(arr arrow.Array, ct ColumnType) ([]wire.Value, error) {
	switch ct.kind {
	case ctBool:
		a, ok := arr.(*array.Boolean)
		if !ok {
			return nil, &SeriesTypeMismatchError{DataType: arr.DataType()}
		}
		return encodeScalar(a, func(i int) wire.Value {
			if a.Value(i) {
				return wire.UInt8Value(1)
			}
			return wire.UInt8Value(0)
		}), nil
	case ctNullable:
		return EncodeColumn(arr, *ct.elem)
	}

	t := ct.native
	switch t.Base {
	case wire.Int8:
		a, ok := arr.(*array.Int8)
		if !ok {
			return nil, &SeriesTypeMismatchError{DataType: arr.DataType()}
		}
		return encodeScalar(a, func(i int) wire.Value { return wire.Int8Value(a.Value(i)) }), nil
	case wire.Int16:
		a, ok := arr.(*array.Int16)
		if !ok {
			return nil, &SeriesTypeMismatchError{DataType: arr.DataType()}
		}
		return encodeScalar(a, func(i int) wire.Value { return wire.Int16Value(a.Value(i)) }), nil
	case wire.Int32:
		a, ok := arr.(*array.Int32)
		if !ok {
			return nil, &SeriesTypeMismatchError{DataType: arr.DataType()}
		}
		return encodeScalar(a, func(i int) wire.Value { return wire.Int32Value(a.Value(i)) }), nil
	case wire.Int64:
		a, ok := arr.(*array.Int64)
		if !ok {
			return nil, &SeriesTypeMismatchError{DataType: arr.DataType()}
		}
		return encodeScalar(a, func(i int) wire.Value { return wire.Int64Value(a.Value(i)) }), nil
	case wire.UInt8:
		a, ok := arr.(*array.Uint8)
		if !ok {
			return nil, &SeriesTypeMismatchError{DataType: arr.DataType()}
		}
		return encodeScalar(a, func(i int) wire.Value { return wire.UInt8Value(a.Value(i)) }), nil
	case wire.UInt16:
		a, ok := arr.(*array.Uint16)
		if !ok {
			return nil, &SeriesTypeMismatchError{DataType: arr.DataType()}
		}
		return encodeScalar(a, func(i int) wire.Value { return wire.UInt16Value(a.Value(i)) }), nil
	case wire.UInt32:
		a, ok := arr.(*array.Uint32)
		if !ok {
			return nil, &SeriesTypeMismatchError{DataType: arr.DataType()}
		}
		return encodeScalar(a, func(i int) wire.Value { return wire.UInt32Value(a.Value(i)) }), nil
	case wire.UInt64:
		a, ok := arr.(*array.Uint64)
		if !ok {
			return nil, &SeriesTypeMismatchError{DataType: arr.DataType()}
		}
		return encodeScalar(a, func(i int) wire.Value { return wire.UInt64Value(a.Value(i)) }), nil
	case wire.Float32:
		a, ok := arr.(*array.Float32)
		if !ok {
			return nil, &SeriesTypeMismatchError{DataType: arr.DataType()}
		}
		return encodeScalar(a, func(i int) wire.Value { return wire.Float32Value(a.Value(i)) }), nil
	case wire.Float64:
		a, ok := arr.(*array.Float64)
		if !ok {
			return nil, &SeriesTypeMismatchError{DataType: arr.DataType()}
		}
		return encodeScalar(a, func(i int) wire.Value { return wire.Float64Value(a.Value(i)) }), nil
	case wire.String, wire.JSON:
		a, ok := arr.(*array.String)
		if !ok {
			return nil, &SeriesTypeMismatchError{DataType: arr.DataType()}
		}
		return encodeScalar(a, func(i int) wire.Value { return wire.StringValue(a.Value(i)) }), nil
	case wire.UUID:
		a, ok := arr.(*array.String)
		if !ok {
			return nil, &SeriesTypeMismatchError{DataType: arr.DataType()}
		}
		return encodeScalar(a, func(i int) wire.Value { return wire.UUIDValue(a.Value(i)) }), nil
	case wire.LowCardinality:
		switch a := arr.(type) {
		case *array.Dictionary:
			dict, ok := a.Dictionary().(*array.String)
			if !ok {
				return nil, &SeriesTypeMismatchError{DataType: arr.DataType()}
			}
			return encodeScalar(a, func(i int) wire.Value {
				return wire.StringValue(dict.Value(a.GetValueIndex(i)))
			}), nil
		case *array.String:
			// Shared-dictionary mode off decodes LowCardinality as plain
			// strings; accept them back on the insert path.
			return encodeScalar(a, func(i int) wire.Value { return wire.StringValue(a.Value(i)) }), nil
		default:
			return nil, &SeriesTypeMismatchError{DataType: arr.DataType()}
		}
	case wire.Nullable:
		return EncodeColumn(arr, NativeType(*t.Elem))
	case wire.Array:
		a, ok := arr.(*array.List)
		if !ok {
			return nil, &SeriesTypeMismatchError{DataType: arr.DataType()}
		}
		inner := NativeType(*t.Elem)
		elems := a.ListValues()
		out := make([]wire.Value, a.Len())
		for i := range out {
			if a.IsNull(i) {
				out[i] = wire.Null
				continue
			}
			start, end := a.ValueOffsets(i)
			row := array.NewSlice(elems, start, end)
			vals, err := EncodeColumn(row, inner)
			row.Release()
			if err != nil {
				return nil, err
			}
			out[i] = wire.ArrayValue(vals)
		}
		return out, nil
	default:
		return nil, &UnsupportedTypeError{Type: ct.String()}
	}
}

// encodeScalar maps every cell of a scalar array through get, emitting
// the Null tag for null cells.
func encodeScalar(a arrow.Array, get func(i int) wire.Value) []wire.Value {
	out := make([]wire.Value, a.Len())
	for i := range out {
		if a.IsNull(i) {
			out[i] = wire.Null
		} else {
			out[i] = get(i)
		}
	}
	return out
}
