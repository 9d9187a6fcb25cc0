// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package chframe

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/Query-farm/ch-frame/wire"
)

// BlockDecoder decodes one native-format block from a buffered byte
// stream. Implementations wrap the native framing layer, which is
// outside this package's scope. DecodeBlock must return io.EOF only at a
// clean block boundary; a truncated block is an error.
type BlockDecoder interface {
	DecodeBlock(r *bufio.Reader) (*wire.Block, error)
}

// HTTPClientOptions configures an HTTPClient.
type HTTPClientOptions struct {
	// Client is the underlying HTTP client. http.DefaultClient if nil;
	// TLS, pooling, and deadlines are its business.
	Client *http.Client
	// Username and Password are sent as X-ClickHouse-* headers when set.
	Username string
	Password string
	// Database selects the default database for queries.
	Database string
	// Compression names the Accept-Encoding to request: "zstd", "lz4",
	// or "" for identity.
	Compression string
}

// HTTPClient implements [Client] against a ClickHouse HTTP endpoint.
//
// The HTTP interface differs from the native protocol in two ways this
// adapter papers over. It never sends the leading schema-only block, so
// QueryBlocks emits the first decoded block twice: once standing in for
// the schema block, once as data. That assumes the first block's types
// are representative of the whole stream, which holds as long as the
// server does not drift schemas mid-response. And it cannot accept
// native insert blocks, so InsertBlocks fails with
// [ErrInsertionUnsupported] without making a request.
type HTTPClient struct {
	endpoint string
	opts     HTTPClientOptions
	dec      BlockDecoder
}

// NewHTTPClient returns an HTTPClient for the endpoint (e.g.
// "http://localhost:8123"). dec supplies native block framing.
func NewHTTPClient(endpoint string, dec BlockDecoder, opts HTTPClientOptions) *HTTPClient {
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}
	return &HTTPClient{endpoint: strings.TrimRight(endpoint, "/"), opts: opts, dec: dec}
}

var _ Client = (*HTTPClient)(nil)

func (c *HTTPClient) newRequest(ctx context.Context, body string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/", strings.NewReader(body))
	if err != nil {
		return nil, err
	}
	if c.opts.Username != "" {
		req.Header.Set("X-ClickHouse-User", c.opts.Username)
	}
	if c.opts.Password != "" {
		req.Header.Set("X-ClickHouse-Key", c.opts.Password)
	}
	if c.opts.Database != "" {
		req.Header.Set("X-ClickHouse-Database", c.opts.Database)
	}
	if c.opts.Compression != "" {
		req.Header.Set("Accept-Encoding", c.opts.Compression)
	}
	return req, nil
}

// do issues the request and unwraps the response body through the
// negotiated content encoding.
func (c *HTTPClient) do(req *http.Request) (io.ReadCloser, error) {
	resp, err := c.opts.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chframe: http request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, fmt.Errorf("chframe: http status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	switch resp.Header.Get("Content-Encoding") {
	case "zstd":
		zr, err := zstd.NewReader(resp.Body)
		if err != nil {
			resp.Body.Close()
			return nil, fmt.Errorf("chframe: zstd reader: %w", err)
		}
		return &decompressedBody{r: zr.IOReadCloser(), underlying: resp.Body}, nil
	case "lz4":
		return &decompressedBody{r: io.NopCloser(lz4.NewReader(resp.Body)), underlying: resp.Body}, nil
	default:
		return resp.Body, nil
	}
}

// decompressedBody closes both the decompressor and the HTTP body.
type decompressedBody struct {
	r          io.ReadCloser
	underlying io.Closer
}

func (d *decompressedBody) Read(p []byte) (int, error) { return d.r.Read(p) }

func (d *decompressedBody) Close() error {
	err := d.r.Close()
	if cerr := d.underlying.Close(); err == nil {
		err = cerr
	}
	return err
}

// QueryBlocks executes the query with FORMAT Native and returns the
// decoded block stream, with the first block replayed twice (see the
// type comment). An empty response body yields an empty stream, not an
// error.
func (c *HTTPClient) QueryBlocks(ctx context.Context, query string) (wire.BlockReader, error) {
	if !strings.Contains(strings.ToUpper(query), " FORMAT ") {
		query += " FORMAT Native"
	}
	req, err := c.newRequest(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("chframe: building query request: %w", err)
	}
	body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	return &httpBlockReader{
		body: body,
		br:   bufio.NewReader(body),
		dec:  c.dec,
	}, nil
}

// InsertBlocks always fails: the HTTP interface cannot accept native
// insert blocks. No request is made.
func (c *HTTPClient) InsertBlocks(ctx context.Context, table string, blocks wire.BlockReader) error {
	return ErrInsertionUnsupported
}

// Exec runs a statement for its side effects.
func (c *HTTPClient) Exec(ctx context.Context, query string) error {
	req, err := c.newRequest(ctx, query)
	if err != nil {
		return fmt.Errorf("chframe: building exec request: %w", err)
	}
	body, err := c.do(req)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, body)
	return body.Close()
}

// httpBlockReader decodes blocks off the response body one at a time,
// replaying the first decoded block once.
type httpBlockReader struct {
	body     io.ReadCloser
	br       *bufio.Reader
	dec      BlockDecoder
	cur      *wire.Block
	pending  *wire.Block
	sawFirst bool
	done     bool
	err      error
}

func (r *httpBlockReader) Next() bool {
	if r.pending != nil {
		r.cur, r.pending = r.pending, nil
		return true
	}
	if r.done {
		return false
	}
	if _, err := r.br.Peek(1); err == io.EOF {
		// Clean end of stream; before the first block this is an empty
		// result, not an error.
		r.finish(nil)
		return false
	}
	b, err := r.dec.DecodeBlock(r.br)
	if err == io.EOF {
		r.finish(nil)
		return false
	}
	if err != nil {
		r.finish(fmt.Errorf("chframe: decoding http block: %w", err))
		return false
	}
	r.cur = b
	if !r.sawFirst {
		r.sawFirst = true
		r.pending = b
	}
	return true
}

func (r *httpBlockReader) Block() *wire.Block { return r.cur }

func (r *httpBlockReader) Err() error { return r.err }

func (r *httpBlockReader) finish(err error) {
	r.done = true
	r.err = err
	if r.body != nil {
		_ = r.body.Close()
		r.body = nil
	}
}
