// Package chain is the read-only query façade over Neo N3 JSON-RPC nodes.
// Every query tries the primary endpoint up to three times and then the
// fallback endpoint exactly once.
package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog"
)

// ErrNoResult is returned when neither endpoint produced a result. Callers
// treat it as "data unavailable".
var ErrNoResult = errors.New("no result from any endpoint")

// RPCError is a JSON-RPC error object returned by a node. It is never
// retried: the node answered.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// Client is a Neo N3 JSON-RPC client with primary/fallback endpoints.
type Client struct {
	primary  string
	fallback string
	client   *http.Client
	log      zerolog.Logger
	attempts uint
	delay    time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the client logger.
func WithLogger(l zerolog.Logger) Option { return func(c *Client) { c.log = l } }

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.client = hc } }

// WithRetryDelay sets the pause between primary attempts.
func WithRetryDelay(d time.Duration) Option { return func(c *Client) { c.delay = d } }

// New creates a client. fallback may equal primary.
func New(primary, fallback string, opts ...Option) *Client {
	c := &Client{
		primary:  primary,
		fallback: fallback,
		client:   &http.Client{Timeout: 15 * time.Second},
		log:      zerolog.Nop(),
		attempts: 3,
		delay:    time.Second,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Primary returns the primary endpoint URL.
func (c *Client) Primary() string { return c.primary }

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
	ID      int    `json:"id"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
}

// call runs method with the retry-primary-then-fallback-once policy and
// decodes the result into out.
func (c *Client) call(ctx context.Context, method string, params []any, out any) error {
	if params == nil {
		params = []any{}
	}
	body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", Method: method, Params: params, ID: 1})
	if err != nil {
		return err
	}

	raw, err := retry.DoWithData(
		func() (json.RawMessage, error) { return c.post(ctx, c.primary, body) },
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.delay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			var rpcErr *RPCError
			return !errors.As(err, &rpcErr)
		}),
	)
	var rpcErr *RPCError
	switch {
	case err == nil:
	case errors.As(err, &rpcErr):
		c.log.Warn().Str("method", method).Int("code", rpcErr.Code).Msg(rpcErr.Message)
		return rpcErr
	case ctx.Err() != nil:
		return ctx.Err()
	default:
		c.log.Warn().Err(err).Str("method", method).Str("endpoint", c.primary).Msg("primary endpoint failed, trying fallback")
		raw, err = c.post(ctx, c.fallback, body)
		if err != nil {
			if errors.As(err, &rpcErr) {
				return rpcErr
			}
			c.log.Error().Err(err).Str("method", method).Str("endpoint", c.fallback).Msg("fallback endpoint failed")
			return fmt.Errorf("%s: %w: %v", method, ErrNoResult, err)
		}
	}

	if out == nil || len(raw) == 0 || string(raw) == "null" {
		if out != nil {
			return fmt.Errorf("%s: %w", method, ErrNoResult)
		}
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parsing %s result: %w", method, err)
	}
	return nil
}

// post sends one request to url. Transport failures and non-2xx statuses
// are returned as plain errors, node errors as *RPCError.
func (c *Client) post(ctx context.Context, url string, body []byte) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("RPC request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("RPC request failed: HTTP %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	var rpcResp rpcResponse
	if err := json.Unmarshal(data, &rpcResp); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}
	if rpcResp.Error != nil {
		return nil, rpcResp.Error
	}
	return rpcResp.Result, nil
}
