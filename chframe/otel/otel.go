// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

// Package chotel provides OpenTelemetry instrumentation for chframe
// transports. It wraps a [chframe.Client] so every query and insert gets
// a span plus block/row counters.
//
// Usage:
//
//	client = chotel.InstrumentClient(client, chotel.DefaultConfig())
package chotel

import (
	"context"
	"time"

	"github.com/Query-farm/ch-frame/chframe"
	"github.com/Query-farm/ch-frame/wire"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "ch_frame"

// Config configures OpenTelemetry instrumentation for a chframe client.
type Config struct {
	// TracerProvider supplies the tracer. Defaults to otel.GetTracerProvider().
	TracerProvider trace.TracerProvider
	// MeterProvider supplies the meter. Defaults to otel.GetMeterProvider().
	MeterProvider metric.MeterProvider
	// EnableTracing enables span creation. Default true.
	EnableTracing bool
	// EnableMetrics enables counter and histogram recording. Default true.
	EnableMetrics bool
	// RecordExceptions calls RecordError on the span for failed operations.
	// Default true.
	RecordExceptions bool
	// CustomAttributes are added to every span.
	CustomAttributes []attribute.KeyValue
}

// DefaultConfig returns a Config with sensible defaults. TracerProvider
// and MeterProvider are resolved from the global OTel SDK at
// instrumentation time.
func DefaultConfig() Config {
	return Config{
		EnableTracing:    true,
		EnableMetrics:    true,
		RecordExceptions: true,
	}
}

// InstrumentClient wraps a client with OpenTelemetry instrumentation.
func InstrumentClient(client chframe.Client, cfg Config) chframe.Client {
	if cfg.TracerProvider == nil {
		cfg.TracerProvider = otel.GetTracerProvider()
	}
	if cfg.MeterProvider == nil {
		cfg.MeterProvider = otel.GetMeterProvider()
	}

	ic := &instrumentedClient{inner: client, cfg: cfg}
	if cfg.EnableTracing {
		ic.tracer = cfg.TracerProvider.Tracer(instrumentationName)
	}
	if cfg.EnableMetrics {
		meter := cfg.MeterProvider.Meter(instrumentationName)
		ic.operations, _ = meter.Int64Counter("ch_frame.client.operations",
			metric.WithDescription("Transport operations by kind and outcome"))
		ic.blocks, _ = meter.Int64Counter("ch_frame.client.blocks",
			metric.WithDescription("Blocks moved through the transport"))
		ic.rows, _ = meter.Int64Counter("ch_frame.client.rows",
			metric.WithDescription("Rows moved through the transport"))
		ic.duration, _ = meter.Float64Histogram("ch_frame.client.duration",
			metric.WithDescription("Operation duration in seconds"),
			metric.WithUnit("s"))
	}
	return ic
}

type instrumentedClient struct {
	inner  chframe.Client
	cfg    Config
	tracer trace.Tracer

	operations metric.Int64Counter
	blocks     metric.Int64Counter
	rows       metric.Int64Counter
	duration   metric.Float64Histogram
}

func (c *instrumentedClient) start(ctx context.Context, op string) (context.Context, trace.Span) {
	if c.tracer == nil {
		return ctx, nil
	}
	attrs := append([]attribute.KeyValue{
		attribute.String("db.system", "clickhouse"),
		attribute.String("db.operation", op),
	}, c.cfg.CustomAttributes...)
	return c.tracer.Start(ctx, "chframe."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...))
}

func (c *instrumentedClient) finish(ctx context.Context, span trace.Span, op string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	if c.operations != nil {
		c.operations.Add(ctx, 1, metric.WithAttributes(
			attribute.String("operation", op),
			attribute.String("status", status)))
		c.duration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(
			attribute.String("operation", op)))
	}
	if span == nil {
		return
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		if c.cfg.RecordExceptions {
			span.RecordError(err)
		}
	}
	span.End()
}

func (c *instrumentedClient) QueryBlocks(ctx context.Context, query string) (wire.BlockReader, error) {
	start := time.Now()
	ctx, span := c.start(ctx, "query")
	blocks, err := c.inner.QueryBlocks(ctx, query)
	if err != nil {
		c.finish(ctx, span, "query", start, err)
		return nil, err
	}
	// The span covers the whole stream; it ends when the reader drains.
	return &countingReader{
		inner: blocks,
		done: func(readErr error) {
			c.finish(ctx, span, "query", start, readErr)
		},
		count: func(b *wire.Block) {
			if c.blocks != nil {
				attrs := metric.WithAttributes(attribute.String("direction", "read"))
				c.blocks.Add(ctx, 1, attrs)
				c.rows.Add(ctx, int64(b.Rows), attrs)
			}
		},
	}, nil
}

func (c *instrumentedClient) InsertBlocks(ctx context.Context, table string, blocks wire.BlockReader) error {
	start := time.Now()
	ctx, span := c.start(ctx, "insert")
	if span != nil {
		span.SetAttributes(attribute.String("db.sql.table", table))
	}
	counted := &countingReader{
		inner: blocks,
		count: func(b *wire.Block) {
			if c.blocks != nil {
				attrs := metric.WithAttributes(attribute.String("direction", "write"))
				c.blocks.Add(ctx, 1, attrs)
				c.rows.Add(ctx, int64(b.Rows), attrs)
			}
		},
	}
	err := c.inner.InsertBlocks(ctx, table, counted)
	c.finish(ctx, span, "insert", start, err)
	return err
}

func (c *instrumentedClient) Exec(ctx context.Context, query string) error {
	start := time.Now()
	ctx, span := c.start(ctx, "exec")
	err := c.inner.Exec(ctx, query)
	c.finish(ctx, span, "exec", start, err)
	return err
}

// countingReader forwards a block stream, counting blocks and rows, and
// reports stream completion exactly once.
type countingReader struct {
	inner    wire.BlockReader
	count    func(*wire.Block)
	done     func(error)
	finished bool
}

func (r *countingReader) Next() bool {
	if r.inner.Next() {
		r.count(r.inner.Block())
		return true
	}
	if !r.finished {
		r.finished = true
		if r.done != nil {
			r.done(r.inner.Err())
		}
	}
	return false
}

func (r *countingReader) Block() *wire.Block { return r.inner.Block() }

func (r *countingReader) Err() error { return r.inner.Err() }
