// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

// Package wire defines the block-level vocabulary exchanged with a
// ClickHouse transport: the recursive database [Type] grammar, tagged
// cell [Value] variants, the row-aligned [Block], and the [BlockReader]
// stream contract.
//
// The package deliberately stops at the vocabulary. Framing a block onto
// the native TCP protocol (or parsing one off it) is the transport
// layer's job; everything here is the shape that layer produces and
// consumes.
package wire
