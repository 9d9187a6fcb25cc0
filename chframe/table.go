// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package chframe

import (
	"context"
	"fmt"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/Query-farm/ch-frame/wire"
)

// TableColumn is one named, semantically-typed column of a table schema.
type TableColumn struct {
	Name string
	Type ColumnType
}

// Table is an ordered ClickHouse table schema. Column order is
// meaningful (it becomes creation and display order) and the schema is
// immutable after construction. Build one with [TableFromServer]
// (authoritative, reflects server storage types) or [TableFromSchema]
// (derived from an arrow schema).
type Table struct {
	Name    string
	Columns []TableColumn
}

// Column returns the type of the named column.
func (t *Table) Column(name string) (ColumnType, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c.Type, true
		}
	}
	return ColumnType{}, false
}

// TableFromServer introspects a live table via DESCRIBE TABLE. The
// result reflects server storage, so booleans come back as UInt8; pass
// explicit overrides or a schema-derived Table when the semantic types
// matter.
func TableFromServer(ctx context.Context, client Client, name string) (*Table, error) {
	logger.Debug("retrieving table schema", "table", name)
	blocks, err := client.QueryBlocks(ctx, fmt.Sprintf("DESCRIBE TABLE `%s`", name))
	if err != nil {
		return nil, fmt.Errorf("chframe: describing table %q: %w", name, err)
	}
	t := &Table{Name: name}
	for blocks.Next() {
		b := blocks.Block()
		if b.Rows == 0 {
			continue
		}
		names, types := b.Column("name"), b.Column("type")
		if names == nil || types == nil {
			return nil, fmt.Errorf("chframe: DESCRIBE TABLE %q returned no name/type columns", name)
		}
		for i := 0; i < b.Rows; i++ {
			colName, ok := names.Values[i].(wire.StringValue)
			if !ok {
				return nil, &TypeMismatchError{Found: names.Values[i].Kind(), Expected: wire.KindString}
			}
			typeText, ok := types.Values[i].(wire.StringValue)
			if !ok {
				return nil, &TypeMismatchError{Found: types.Values[i].Kind(), Expected: wire.KindString}
			}
			ct, err := ParseColumnType(string(typeText))
			if err != nil {
				return nil, err
			}
			t.Columns = append(t.Columns, TableColumn{Name: string(colName), Type: ct})
		}
	}
	if err := blocks.Err(); err != nil {
		return nil, fmt.Errorf("chframe: describing table %q: %w", name, err)
	}
	return t, nil
}

// TableFromSchema derives a table schema from an arrow schema. Struct
// fields are flattened to dot-named columns first. extra columns (for
// values supplied as insert defaults rather than record columns) are
// appended in order. Columns named in nullables, and any flattened
// column nested under such a name, are wrapped in Nullable.
func TableFromSchema(name string, schema *arrow.Schema, extra []TableColumn, nullables []string) (*Table, error) {
	logger.Debug("deriving table schema", "table", name)
	nullable := make(map[string]bool, len(nullables))
	for _, n := range nullables {
		nullable[n] = true
	}
	isNullable := func(col string) bool {
		if nullable[col] {
			return true
		}
		for n := range nullable {
			if strings.HasPrefix(col, n+".") {
				return true
			}
		}
		return false
	}

	t := &Table{Name: name}
	for _, f := range FlattenSchema(schema).Fields() {
		ct, err := ColumnTypeFromArrow(f)
		if err != nil {
			return nil, err
		}
		if isNullable(f.Name) {
			ct = ct.AsNullable()
		}
		t.Columns = append(t.Columns, TableColumn{Name: f.Name, Type: ct})
	}
	for _, c := range extra {
		ct := c.Type
		if isNullable(c.Name) {
			ct = ct.AsNullable()
		}
		t.Columns = append(t.Columns, TableColumn{Name: c.Name, Type: ct})
	}
	return t, nil
}

// CreateOptions configures CREATE TABLE text generation.
type CreateOptions struct {
	// PrimaryKeys lists the primary key columns. Each must be a table column.
	PrimaryKeys []string
	// IfNotExists adds the IF NOT EXISTS clause.
	IfNotExists bool
	// Suffix is appended verbatim after the generated statement, for
	// engine settings and the like.
	Suffix string
}

// CreateStatement renders the CREATE TABLE text for this schema. Pure
// text generation; execution is the transport's job (see CreateTable).
func (t *Table) CreateStatement(opts CreateOptions) (string, error) {
	for _, key := range opts.PrimaryKeys {
		if _, ok := t.Column(key); !ok {
			return "", &InvalidPrimaryKeyError{Key: key}
		}
	}

	var sb strings.Builder
	sb.WriteString("CREATE TABLE ")
	if opts.IfNotExists {
		sb.WriteString("IF NOT EXISTS ")
	}
	fmt.Fprintf(&sb, "`%s` (\n", t.Name)
	for i, c := range t.Columns {
		fmt.Fprintf(&sb, "  `%s` %s", c.Name, c.Type)
		if i < len(t.Columns)-1 {
			sb.WriteByte(',')
		}
		sb.WriteByte('\n')
	}
	sb.WriteString(")\nENGINE = MergeTree()\n")
	fmt.Fprintf(&sb, "PRIMARY KEY (%s)", strings.Join(opts.PrimaryKeys, ", "))
	if opts.Suffix != "" {
		sb.WriteByte('\n')
		sb.WriteString(opts.Suffix)
	}
	return sb.String(), nil
}

// CreateTable generates the CREATE TABLE statement and executes it
// through the client.
func (t *Table) CreateTable(ctx context.Context, client Client, opts CreateOptions) error {
	stmt, err := t.CreateStatement(opts)
	if err != nil {
		return err
	}
	logger.Debug("creating table", "table", t.Name)
	return client.Exec(ctx, stmt)
}

// InsertRecord inserts a record into this table. Struct columns are
// flattened first; defaults supply constant values for table columns the
// record lacks. The record's columns plus the default keys must cover
// the table exactly.
func (t *Table) InsertRecord(ctx context.Context, client Client, rec arrow.RecordBatch, defaults map[string]wire.Value) error {
	logger.Debug("inserting record", "table", t.Name, "rows", rec.NumRows())
	flat, err := FlattenRecord(rec)
	if err != nil {
		return err
	}
	defer flat.Release()
	asm, err := NewBlockAssembler(t, flat, defaults)
	if err != nil {
		return err
	}
	return client.InsertBlocks(ctx, t.Name, asm)
}

// QueryRecord runs the query with this table's types as overrides, which
// restores semantic types (booleans in particular) the server would
// otherwise report physically.
func (t *Table) QueryRecord(ctx context.Context, client Client, mem memory.Allocator, query string) (arrow.RecordBatch, error) {
	overrides := make(map[string]ColumnType, len(t.Columns))
	for _, c := range t.Columns {
		overrides[c.Name] = c.Type
	}
	return QueryRecord(ctx, client, mem, query, overrides)
}

// QueryRecord executes the query and materializes its block stream as a
// RecordBatch. overrides replace server-declared column types by name;
// pass nil to take the server's types as-is.
func QueryRecord(ctx context.Context, client Client, mem memory.Allocator, query string, overrides map[string]ColumnType) (arrow.RecordBatch, error) {
	logger.Debug("querying record", "query", query)
	blocks, err := client.QueryBlocks(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("chframe: executing query: %w", err)
	}
	return AccumulateRecord(mem, blocks, overrides)
}
