// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

// Package chframe bridges ClickHouse's block-based native wire
// representation and Apache Arrow RecordBatches, so that query results
// materialize as records and records insert as tables.
//
// The bridge is built from a pair of partial type mappings, a recursive
// value codec, and streaming block machinery:
//
//   - [ColumnType] carries the semantic type vocabulary (boolean and
//     low-cardinality strings are semantic tags layered over their
//     physical wire representation) and maps it to both the wire and
//     arrow vocabularies.
//   - [DecodeColumn] and [EncodeColumn] convert between a block column's
//     tagged values and an arrow array, recursing through arrays and
//     nullable wrappers and refusing, never coercing, mismatched tags.
//   - [FlattenRecord] and [UnflattenColumns] project nested struct
//     columns onto the wire's flat dot-named column namespace and back,
//     losslessly and order-preservingly.
//   - [BlockAssembler] partitions a record into bounded insert blocks;
//     [AccumulateRecord] drains a query's block stream into a record.
//
// Transport is abstracted behind the [Client] capability interface. The
// native TCP transport is external; [HTTPClient] adapts ClickHouse's
// HTTP interface, which lacks the native protocol's leading schema-only
// block and cannot accept inserts.
//
// # Query path
//
//	table, err := chframe.TableFromServer(ctx, client, "events")
//	rec, err := table.QueryRecord(ctx, client, memory.DefaultAllocator,
//		"SELECT * FROM events")
//
// # Insert path
//
//	table, err := chframe.TableFromSchema("events", rec.Schema(), nil, nil)
//	err = table.CreateTable(ctx, client, chframe.CreateOptions{
//		PrimaryKeys: []string{"id"},
//	})
//	err = table.InsertRecord(ctx, client, rec, nil)
//
// Operations are single-flow and I/O-bound: one sequential block-stream
// traversal per call, fresh state per call, cancellation via ctx. The
// package retries nothing; every error is terminal for the operation
// that raised it.
package chframe
