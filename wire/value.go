// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package wire

// Kind is the physical tag carried by a [Value].
type Kind uint8

const (
	KindNull Kind = iota
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUInt8
	KindUInt16
	KindUInt32
	KindUInt64
	KindFloat32
	KindFloat64
	KindString
	KindUUID
	KindArray
)

var kindNames = [...]string{
	KindNull:    "Null",
	KindInt8:    "Int8",
	KindInt16:   "Int16",
	KindInt32:   "Int32",
	KindInt64:   "Int64",
	KindUInt8:   "UInt8",
	KindUInt16:  "UInt16",
	KindUInt32:  "UInt32",
	KindUInt64:  "UInt64",
	KindFloat32: "Float32",
	KindFloat64: "Float64",
	KindString:  "String",
	KindUUID:    "UUID",
	KindArray:   "Array",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// Value is one cell as delivered by the transport, tagged with its
// physical kind. The concrete types below are the only implementations.
type Value interface {
	Kind() Kind
}

// NullValue is the null marker.
type NullValue struct{}

func (NullValue) Kind() Kind { return KindNull }

// Null is the shared null marker value.
var Null Value = NullValue{}

type Int8Value int8

func (Int8Value) Kind() Kind { return KindInt8 }

type Int16Value int16

func (Int16Value) Kind() Kind { return KindInt16 }

type Int32Value int32

func (Int32Value) Kind() Kind { return KindInt32 }

type Int64Value int64

func (Int64Value) Kind() Kind { return KindInt64 }

type UInt8Value uint8

func (UInt8Value) Kind() Kind { return KindUInt8 }

type UInt16Value uint16

func (UInt16Value) Kind() Kind { return KindUInt16 }

type UInt32Value uint32

func (UInt32Value) Kind() Kind { return KindUInt32 }

type UInt64Value uint64

func (UInt64Value) Kind() Kind { return KindUInt64 }

type Float32Value float32

func (Float32Value) Kind() Kind { return KindFloat32 }

type Float64Value float64

func (Float64Value) Kind() Kind { return KindFloat64 }

type StringValue string

func (StringValue) Kind() Kind { return KindString }

// UUIDValue carries a UUID in canonical text form.
type UUIDValue string

func (UUIDValue) Kind() Kind { return KindUUID }

// ArrayValue is one cell of an Array column; its elements are themselves
// tagged values of the array's element type.
type ArrayValue []Value

func (ArrayValue) Kind() Kind { return KindArray }
