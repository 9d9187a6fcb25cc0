// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"fmt"
	"strings"
)

// BaseType enumerates the ClickHouse type constructors understood by this
// library. Scalars stand alone; Array, Nullable, and LowCardinality carry
// an element type.
type BaseType uint8

const (
	Int8 BaseType = iota
	Int16
	Int32
	Int64
	UInt8
	UInt16
	UInt32
	UInt64
	Float32
	Float64
	String
	UUID
	JSON
	Array
	Nullable
	LowCardinality
)

// Type is a recursively-defined ClickHouse type. Elem is nil for scalars
// and set for Array, Nullable, and LowCardinality.
type Type struct {
	Base BaseType
	Elem *Type
}

var baseNames = map[BaseType]string{
	Int8:    "Int8",
	Int16:   "Int16",
	Int32:   "Int32",
	Int64:   "Int64",
	UInt8:   "UInt8",
	UInt16:  "UInt16",
	UInt32:  "UInt32",
	UInt64:  "UInt64",
	Float32: "Float32",
	Float64: "Float64",
	String:  "String",
	UUID:    "UUID",
	JSON:    "JSON",
}

var scalarByName = func() map[string]BaseType {
	m := make(map[string]BaseType, len(baseNames))
	for b, n := range baseNames {
		m[n] = b
	}
	return m
}()

// UnsupportedTypeError reports a type name outside the supported grammar.
type UnsupportedTypeError struct {
	Name string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("wire: unsupported ClickHouse type %q", e.Name)
}

// ParseType parses ClickHouse type text such as "Int64",
// "Nullable(String)", or "Array(LowCardinality(String))".
func ParseType(s string) (Type, error) {
	s = strings.TrimSpace(s)
	for _, w := range []struct {
		prefix string
		base   BaseType
	}{
		{"Array(", Array},
		{"Nullable(", Nullable},
		{"LowCardinality(", LowCardinality},
	} {
		if strings.HasPrefix(s, w.prefix) && strings.HasSuffix(s, ")") {
			inner, err := ParseType(s[len(w.prefix) : len(s)-1])
			if err != nil {
				return Type{}, err
			}
			return Type{Base: w.base, Elem: &inner}, nil
		}
	}
	if b, ok := scalarByName[s]; ok {
		return Type{Base: b}, nil
	}
	return Type{}, &UnsupportedTypeError{Name: s}
}

// String renders the type in ClickHouse syntax, the inverse of [ParseType].
func (t Type) String() string {
	switch t.Base {
	case Array:
		return "Array(" + t.Elem.String() + ")"
	case Nullable:
		return "Nullable(" + t.Elem.String() + ")"
	case LowCardinality:
		return "LowCardinality(" + t.Elem.String() + ")"
	default:
		return baseNames[t.Base]
	}
}

// Equal reports structural equality.
func (t Type) Equal(o Type) bool {
	if t.Base != o.Base {
		return false
	}
	if t.Elem == nil || o.Elem == nil {
		return t.Elem == nil && o.Elem == nil
	}
	return t.Elem.Equal(*o.Elem)
}

// AsNullable wraps the type in Nullable. Already-nullable types are
// returned unchanged.
func (t Type) AsNullable() Type {
	if t.Base == Nullable {
		return t
	}
	inner := t
	return Type{Base: Nullable, Elem: &inner}
}

// StripNullable removes a Nullable wrapper, if any.
func (t Type) StripNullable() Type {
	if t.Base == Nullable {
		return *t.Elem
	}
	return t
}

// StripLowCardinality removes a LowCardinality wrapper, if any.
func (t Type) StripLowCardinality() Type {
	if t.Base == LowCardinality {
		return *t.Elem
	}
	return t
}

// ValueKind returns the physical value tag a column of this type carries
// on the wire. Wrappers delegate to their element type.
func (t Type) ValueKind() Kind {
	switch t.Base {
	case Int8:
		return KindInt8
	case Int16:
		return KindInt16
	case Int32:
		return KindInt32
	case Int64:
		return KindInt64
	case UInt8:
		return KindUInt8
	case UInt16:
		return KindUInt16
	case UInt32:
		return KindUInt32
	case UInt64:
		return KindUInt64
	case Float32:
		return KindFloat32
	case Float64:
		return KindFloat64
	case String, JSON:
		return KindString
	case UUID:
		return KindUUID
	case Array:
		return KindArray
	case Nullable, LowCardinality:
		return t.Elem.ValueKind()
	default:
		return KindNull
	}
}
