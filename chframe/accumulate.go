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

// accumColumn is one growable result column: the authoritative type plus
// the decoded chunks received so far.
type accumColumn struct {
	name   string
	ctype  ColumnType
	chunks []arrow.Array
	length int
}

// AccumulateRecord drains a query's block stream into a RecordBatch.
//
// The first block, whatever its row count, is authoritative for column
// types; overrides replace the server-declared type by name (this is how
// booleans, which the server reports as UInt8, come back as booleans).
// Override names the server never mentions are carried as extra columns,
// which end up dropped unless a later block populates them. Data in the
// first block is ignored: the native protocol's first block is
// schema-only, and the HTTP adapter replays its first block to keep that
// shape.
//
// Subsequent non-empty blocks are decoded column by column against the
// authoritative types and appended. When the stream ends, columns that
// never received a row are dropped rather than emitted empty (so a
// zero-row result has no columns), remaining lengths must agree, and
// nested struct columns are rebuilt from the dot-named flat columns.
func AccumulateRecord(mem memory.Allocator, blocks wire.BlockReader, overrides map[string]ColumnType) (arrow.RecordBatch, error) {
	if !blocks.Next() {
		if err := blocks.Err(); err != nil {
			return nil, fmt.Errorf("chframe: reading initial block: %w", err)
		}
		return nil, ErrMissingInitialBlock
	}

	first := blocks.Block()
	cols := make([]*accumColumn, 0, len(first.Columns))
	index := make(map[string]*accumColumn, len(first.Columns))
	add := func(name string, ct ColumnType) {
		c := &accumColumn{name: name, ctype: ct}
		cols = append(cols, c)
		index[name] = c
	}
	for _, bc := range first.Columns {
		add(bc.Name, NativeType(bc.Type))
	}
	for name, ct := range overrides {
		if c, ok := index[name]; ok {
			c.ctype = ct
		}
	}
	// Keep override-only columns too; they are dropped at the end if no
	// block ever populates them.
	for name, ct := range overrides {
		if _, ok := index[name]; !ok {
			add(name, ct)
		}
	}
	logger.Debug("received initial block", "columns", len(cols))

	for blocks.Next() {
		b := blocks.Block()
		if b.Rows == 0 {
			continue
		}
		for _, bc := range b.Columns {
			c, ok := index[bc.Name]
			if !ok {
				return nil, &MissingColumnLocallyError{Column: bc.Name}
			}
			arr, err := DecodeColumn(mem, bc.Values, c.ctype)
			if err != nil {
				return nil, fmt.Errorf("chframe: decoding column %q: %w", bc.Name, err)
			}
			c.chunks = append(c.chunks, arr)
			c.length += arr.Len()
		}
	}
	if err := blocks.Err(); err != nil {
		return nil, fmt.Errorf("chframe: reading block stream: %w", err)
	}

	// Drop columns no block populated, e.g. schema columns the query's
	// predicate matched no rows for.
	populated := cols[:0]
	for _, c := range cols {
		if c.length > 0 {
			populated = append(populated, c)
		}
	}

	lengths := map[int]struct{}{}
	for _, c := range populated {
		lengths[c.length] = struct{}{}
	}
	if len(lengths) > 1 {
		observed := make([]int, 0, len(lengths))
		for l := range lengths {
			observed = append(observed, l)
		}
		return nil, &LengthMismatchError{Lengths: observed}
	}

	flat := make([]Column, len(populated))
	for i, c := range populated {
		arr, err := concatChunks(mem, c.chunks)
		if err != nil {
			return nil, fmt.Errorf("chframe: concatenating column %q: %w", c.name, err)
		}
		dt, nullable, err := c.ctype.ArrowType()
		if err != nil {
			return nil, err
		}
		flat[i] = Column{
			Field: arrow.Field{Name: c.name, Type: dt, Nullable: nullable},
			Data:  arr,
		}
	}

	nested, err := UnflattenColumns(flat)
	if err != nil {
		return nil, err
	}
	rec := recordFromColumns(nested)
	logger.Debug("accumulated record", "columns", rec.NumCols(), "rows", rec.NumRows())
	return rec, nil
}

func concatChunks(mem memory.Allocator, chunks []arrow.Array) (arrow.Array, error) {
	if len(chunks) == 1 {
		return chunks[0], nil
	}
	out, err := array.Concatenate(chunks, mem)
	if err != nil {
		return nil, err
	}
	for _, c := range chunks {
		c.Release()
	}
	return out, nil
}
