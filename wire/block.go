// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package wire

// Column is one named, typed column of a [Block] together with its
// values. Values has length Block.Rows, except in the leading
// schema-only block of a native exchange, where it is empty.
type Column struct {
	Name   string
	Type   Type
	Values []Value
}

// Block is the unit of data exchange with the transport: a row-aligned
// batch of named, typed columns. Column order is meaningful and must be
// consistent across all blocks of one exchange.
type Block struct {
	Rows    int
	Columns []Column
}

// Column returns the named column, or nil if absent.
func (b *Block) Column(name string) *Column {
	for i := range b.Columns {
		if b.Columns[i].Name == name {
			return &b.Columns[i]
		}
	}
	return nil
}

// BlockReader iterates a stream of blocks. The contract mirrors the
// arrow ipc.Reader: Next advances and reports whether a block is
// available, Block returns the current block, and Err returns the first
// error encountered (nil on clean end-of-stream).
type BlockReader interface {
	Next() bool
	Block() *Block
	Err() error
}

// SliceReader is a BlockReader over an in-memory slice of blocks.
type SliceReader struct {
	blocks []*Block
	pos    int
}

// NewSliceReader returns a reader that yields the given blocks in order.
func NewSliceReader(blocks ...*Block) *SliceReader {
	return &SliceReader{blocks: blocks}
}

func (r *SliceReader) Next() bool {
	if r.pos >= len(r.blocks) {
		return false
	}
	r.pos++
	return true
}

func (r *SliceReader) Block() *Block { return r.blocks[r.pos-1] }

func (r *SliceReader) Err() error { return nil }
