// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package chframe

import (
	"context"

	"github.com/Query-farm/ch-frame/wire"
)

// Client is the fallible transport capability the bridge drives. The
// native TCP transport supports both directions; the HTTP transport
// implements QueryBlocks only and fails InsertBlocks with
// [ErrInsertionUnsupported], so callers must handle the refusal
// explicitly rather than it being a silent no-op.
//
// Implementations own their connection's concurrency discipline; the
// bridge allocates fresh accumulator and assembler state per operation
// and adds no locking of its own. Cancelling ctx abandons the operation
// with no partial results surfaced.
type Client interface {
	// QueryBlocks executes the query text and returns its block stream.
	// The first block of a well-formed stream carries the authoritative
	// column types.
	QueryBlocks(ctx context.Context, query string) (wire.BlockReader, error)

	// InsertBlocks sends the blocks as an insert into the named table.
	InsertBlocks(ctx context.Context, table string, blocks wire.BlockReader) error

	// Exec runs a statement for its side effects, discarding any result.
	Exec(ctx context.Context, query string) error
}
