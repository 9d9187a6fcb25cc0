// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package chframe

import (
	"fmt"
	"sort"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/Query-farm/ch-frame/wire"
)

// MaxBlockRows is the row cap per insert block. Records larger than this
// are split into multiple blocks.
const MaxBlockRows = 200_000

// BlockAssembler partitions a (pre-flattened) record into insert blocks
// of at most MaxBlockRows rows each. It implements [wire.BlockReader]:
//
//	asm, err := NewBlockAssembler(table, rec, defaults)
//	for asm.Next() {
//		send(asm.Block())
//	}
//	return asm.Err()
//
// Every emitted block declares the full table schema; columns missing
// from the record are filled with the constant default value, repeated
// once per row. Encoding is per block, so only one block's values are
// resident at a time.
type BlockAssembler struct {
	table    *Table
	recCols  map[string]arrow.Array
	defaults map[string]wire.Value
	rows     int64
	offset   int64
	cur      *wire.Block
	err      error
}

// NewBlockAssembler validates the column-set algebra and returns the
// assembler. The record's columns must be a subset of the table's, and
// together with the default keys must cover the table exactly;
// otherwise a [ColumnMismatchError] is returned before any block is
// produced.
func NewBlockAssembler(table *Table, rec arrow.RecordBatch, defaults map[string]wire.Value) (*BlockAssembler, error) {
	recCols := make(map[string]arrow.Array, rec.NumCols())
	for i := 0; i < int(rec.NumCols()); i++ {
		recCols[rec.ColumnName(i)] = rec.Column(i)
	}

	var extra []string
	for name := range recCols {
		if _, ok := table.Column(name); !ok {
			extra = append(extra, name)
		}
	}
	if len(extra) > 0 {
		sort.Strings(extra)
		return nil, &ColumnMismatchError{Detail: fmt.Sprintf("%v are not table columns", extra)}
	}

	var missing []string
	for _, tc := range table.Columns {
		if _, ok := recCols[tc.Name]; ok {
			continue
		}
		if _, ok := defaults[tc.Name]; ok {
			continue
		}
		missing = append(missing, tc.Name)
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, &ColumnMismatchError{Detail: fmt.Sprintf("missing table columns: %v", missing)}
	}

	return &BlockAssembler{
		table:    table,
		recCols:  recCols,
		defaults: defaults,
		rows:     rec.NumRows(),
	}, nil
}

// Next encodes the next block. It returns false when the record is
// exhausted or encoding failed; consult Err afterwards.
func (a *BlockAssembler) Next() bool {
	if a.err != nil {
		return false
	}
	n := a.rows - a.offset
	if n <= 0 {
		return false
	}
	if n > MaxBlockRows {
		n = MaxBlockRows
	}

	cols := make([]wire.Column, len(a.table.Columns))
	for i, tc := range a.table.Columns {
		cols[i] = wire.Column{Name: tc.Name, Type: tc.Type.WireType()}
		if arr, ok := a.recCols[tc.Name]; ok {
			chunk := array.NewSlice(arr, a.offset, a.offset+n)
			vals, err := EncodeColumn(chunk, tc.Type)
			chunk.Release()
			if err != nil {
				a.err = err
				return false
			}
			cols[i].Values = vals
			continue
		}
		vals := make([]wire.Value, n)
		def := a.defaults[tc.Name]
		for j := range vals {
			vals[j] = def
		}
		cols[i].Values = vals
	}

	a.offset += n
	a.cur = &wire.Block{Rows: int(n), Columns: cols}
	logger.Debug("assembled insert block", "table", a.table.Name, "rows", n)
	return true
}

// Block returns the block produced by the last successful Next.
func (a *BlockAssembler) Block() *wire.Block { return a.cur }

// Err returns the first encoding error, if any.
func (a *BlockAssembler) Err() error { return a.err }
