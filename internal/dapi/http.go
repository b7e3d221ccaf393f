package dapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// BridgeInfo is returned by the bridge handshake.
type BridgeInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// HTTPConn talks to a wallet bridge over JSON-RPC on HTTP. Wallet events
// are fetched by polling the bridge's "events" method.
type HTTPConn struct {
	url    string
	client *http.Client
	log    zerolog.Logger
	poll   time.Duration

	mu       sync.Mutex
	handlers map[string][]func(json.RawMessage)
	cursor   uint64

	cancel context.CancelFunc
	done   chan struct{}
	info   BridgeInfo
}

// Option configures an HTTPConn.
type Option func(*HTTPConn)

// WithLogger sets the connection logger.
func WithLogger(l zerolog.Logger) Option { return func(c *HTTPConn) { c.log = l } }

// WithHTTPClient replaces the default client.
func WithHTTPClient(hc *http.Client) Option { return func(c *HTTPConn) { c.client = hc } }

// WithEventPoll sets the event polling interval; 0 disables event delivery.
func WithEventPoll(d time.Duration) Option { return func(c *HTTPConn) { c.poll = d } }

type request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type response struct {
	ID     string          `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  json.RawMessage `json:"error"`
}

type event struct {
	Seq   uint64          `json:"seq"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Dial performs the bridge handshake. A bridge that cannot be reached yields
// an error matching ErrNotInjected.
func Dial(ctx context.Context, url string, opts ...Option) (*HTTPConn, error) {
	c := &HTTPConn{
		url:      url,
		client:   &http.Client{Timeout: 30 * time.Second},
		log:      zerolog.Nop(),
		poll:     2 * time.Second,
		handlers: make(map[string][]func(json.RawMessage)),
		done:     make(chan struct{}),
	}
	for _, o := range opts {
		o(c)
	}
	if err := c.Call(ctx, "ready", nil, &c.info); err != nil {
		return nil, err
	}
	c.log.Debug().Str("bridge", c.info.Name).Str("version", c.info.Version).Msg("dapi bridge ready")

	wctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	if c.poll > 0 {
		go c.watch(wctx)
	} else {
		close(c.done)
	}
	return c, nil
}

// Info returns the handshake result.
func (c *HTTPConn) Info() BridgeInfo { return c.info }

// Call implements Conn.
func (c *HTTPConn) Call(ctx context.Context, method string, params, result any) error {
	body, err := json.Marshal(request{JSONRPC: "2.0", ID: uuid.NewString(), Method: method, Params: params})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", ErrNotInjected, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusServiceUnavailable {
		return fmt.Errorf("%w: HTTP %d", ErrNotInjected, resp.StatusCode)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	var rpcResp response
	if err := json.Unmarshal(raw, &rpcResp); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	if len(rpcResp.Error) > 0 && string(rpcResp.Error) != "null" {
		return decodeError(rpcResp.Error)
	}
	if result == nil || len(rpcResp.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(rpcResp.Result, result); err != nil {
		return fmt.Errorf("parsing %s result: %w", method, err)
	}
	return nil
}

// decodeError turns a wallet error payload into *Error. Plain JSON-RPC
// errors from the bridge itself become RPC_ERROR.
func decodeError(raw json.RawMessage) error {
	var de Error
	if err := json.Unmarshal(raw, &de); err == nil && de.Type != "" {
		return &de
	}
	var re struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &re); err != nil {
		return fmt.Errorf("unrecognized error payload: %s", raw)
	}
	return &Error{Type: RPCError, Description: fmt.Sprintf("%d: %s", re.Code, re.Message)}
}

// On implements Conn.
func (c *HTTPConn) On(name string, fn func(json.RawMessage)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[name] = append(c.handlers[name], fn)
}

// Close stops event delivery.
func (c *HTTPConn) Close() error {
	if c.cancel != nil {
		c.cancel()
	}
	<-c.done
	return nil
}

func (c *HTTPConn) watch(ctx context.Context) {
	defer close(c.done)
	ticker := time.NewTicker(c.poll)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.pollOnce(ctx)
		}
	}
}

func (c *HTTPConn) pollOnce(ctx context.Context) {
	c.mu.Lock()
	cursor := c.cursor
	c.mu.Unlock()

	var events []event
	if err := c.Call(ctx, "events", []any{cursor}, &events); err != nil {
		if ctx.Err() == nil {
			c.log.Debug().Err(err).Msg("dapi event poll failed")
		}
		return
	}
	for _, ev := range events {
		c.mu.Lock()
		if ev.Seq > c.cursor {
			c.cursor = ev.Seq
		}
		hs := append([]func(json.RawMessage){}, c.handlers[ev.Event]...)
		c.mu.Unlock()
		for _, h := range hs {
			h(ev.Data)
		}
	}
}
