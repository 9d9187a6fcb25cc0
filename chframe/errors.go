// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package chframe

import (
	"errors"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/Query-farm/ch-frame/wire"
)

// ErrMissingInitialBlock is returned when a query's block stream ends
// before the schema-defining first block arrives.
var ErrMissingInitialBlock = errors.New("chframe: block stream ended before the initial block")

// ErrInsertionUnsupported is returned by transports that cannot accept
// native insert blocks, such as the HTTP interface.
var ErrInsertionUnsupported = errors.New("chframe: insertion is not supported over this transport")

// UnsupportedTypeError reports a type, on either side of the bridge,
// with no mapping. Type holds its textual rendering.
type UnsupportedTypeError struct {
	Type string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("chframe: unsupported type %s", e.Type)
}

// TypeMismatchError reports a wire value whose physical tag disagrees
// with the declared column type. Values are never coerced.
type TypeMismatchError struct {
	Found    wire.Kind
	Expected wire.Kind
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("chframe: unexpected value tag %s, expected %s", e.Found, e.Expected)
}

// SeriesTypeMismatchError reports an arrow column whose physical layout
// cannot furnish the scalar family the declared column type requires.
type SeriesTypeMismatchError struct {
	DataType arrow.DataType
}

func (e *SeriesTypeMismatchError) Error() string {
	return fmt.Sprintf("chframe: unexpected column type %s", e.DataType)
}

// ColumnMismatchError reports a disagreement between a record's column
// set and the target table's column set at insert time.
type ColumnMismatchError struct {
	Detail string
}

func (e *ColumnMismatchError) Error() string {
	return "chframe: column mismatch between record and table: " + e.Detail
}

// MissingColumnLocallyError reports a server-returned column absent from
// the accumulated schema.
type MissingColumnLocallyError struct {
	Column string
}

func (e *MissingColumnLocallyError) Error() string {
	return fmt.Sprintf("chframe: column %q returned by the server is not present locally", e.Column)
}

// LengthMismatchError reports columns of unequal length after
// accumulation, which indicates a transport or decoding bug.
type LengthMismatchError struct {
	Lengths []int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("chframe: accumulated columns have mismatching lengths %v", e.Lengths)
}

// InvalidPrimaryKeyError reports a primary key naming no table column.
type InvalidPrimaryKeyError struct {
	Key string
}

func (e *InvalidPrimaryKeyError) Error() string {
	return fmt.Sprintf("chframe: primary key %q is not a table column", e.Key)
}
