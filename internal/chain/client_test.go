package chain

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neoburger/burgerctl/internal/neo"
)

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

type capturedRequest struct {
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

// rpcMock serves a fixed JSON-RPC result per method and counts requests.
// Unknown methods return an RPC error.
func rpcMock(t *testing.T, responses map[string]any, hits *int32, last *capturedRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			atomic.AddInt32(hits, 1)
		}
		var req capturedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		if last != nil {
			*last = req
		}
		w.Header().Set("Content-Type", "application/json")
		if result, ok := responses[req.Method]; ok {
			json.NewEncoder(w).Encode(map[string]any{"jsonrpc": "2.0", "id": 1, "result": result}) //nolint:errcheck
			return
		}
		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
			"jsonrpc": "2.0",
			"id":      1,
			"error":   map[string]any{"code": -32601, "message": "method not found"},
		})
	}))
}

// failingServer always answers with HTTP 503.
func failingServer(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(hits, 1)
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
}

func newTestClient(primary, fallback string) *Client {
	return New(primary, fallback, WithRetryDelay(0))
}

// ---------------------------------------------------------------------------
// retry and fallback policy
// ---------------------------------------------------------------------------

func TestPrimarySuccessSkipsFallback(t *testing.T) {
	var p, f int32
	primary := rpcMock(t, map[string]any{"getblockcount": 1234}, &p, nil)
	defer primary.Close()
	fallback := rpcMock(t, map[string]any{"getblockcount": 1}, &f, nil)
	defer fallback.Close()

	n, err := newTestClient(primary.URL, fallback.URL).BlockCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint32(1234), n)
	assert.Equal(t, int32(1), p)
	assert.Equal(t, int32(0), f)
}

func TestFallbackAfterThreePrimaryFailures(t *testing.T) {
	var p, f int32
	primary := failingServer(t, &p)
	defer primary.Close()
	fallback := rpcMock(t, map[string]any{"getblockcount": 99}, &f, nil)
	defer fallback.Close()

	n, err := newTestClient(primary.URL, fallback.URL).BlockCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint32(99), n)
	assert.Equal(t, int32(3), p, "initial attempt plus two retries")
	assert.Equal(t, int32(1), f, "exactly one fallback request")
}

func TestBothEndpointsFailing(t *testing.T) {
	var p, f int32
	primary := failingServer(t, &p)
	defer primary.Close()
	fallback := failingServer(t, &f)
	defer fallback.Close()

	_, err := newTestClient(primary.URL, fallback.URL).BlockCount(context.Background())
	assert.ErrorIs(t, err, ErrNoResult)
	assert.Equal(t, int32(3), p)
	assert.Equal(t, int32(1), f)
}

func TestRPCErrorIsNotRetried(t *testing.T) {
	var p, f int32
	primary := rpcMock(t, map[string]any{}, &p, nil)
	defer primary.Close()
	fallback := rpcMock(t, map[string]any{}, &f, nil)
	defer fallback.Close()

	_, err := newTestClient(primary.URL, fallback.URL).ApplicationLog(context.Background(), "0xabc")
	var rpcErr *RPCError
	require.True(t, errors.As(err, &rpcErr))
	assert.Equal(t, -32601, rpcErr.Code)
	assert.Equal(t, int32(1), p)
	assert.Equal(t, int32(0), f)
}

func TestBadJSONIsRetried(t *testing.T) {
	var p, f int32
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&p, 1)
		w.Write([]byte(`{not valid json`)) //nolint:errcheck
	}))
	defer primary.Close()
	fallback := rpcMock(t, map[string]any{"getblockcount": 7}, &f, nil)
	defer fallback.Close()

	n, err := newTestClient(primary.URL, fallback.URL).BlockCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint32(7), n)
	assert.Equal(t, int32(3), p)
}

func TestCancelledContextSkipsFallback(t *testing.T) {
	var p, f int32
	primary := failingServer(t, &p)
	defer primary.Close()
	fallback := rpcMock(t, map[string]any{"getblockcount": 7}, &f, nil)
	defer fallback.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestClient(primary.URL, fallback.URL).BlockCount(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(0), f)
}

// ---------------------------------------------------------------------------
// typed queries
// ---------------------------------------------------------------------------

func TestInvokeFunctionWithSigner(t *testing.T) {
	var last capturedRequest
	srv := rpcMock(t, map[string]any{
		"invokefunction": map[string]any{
			"state": "HALT",
			"stack": []any{map[string]any{"type": "Integer", "value": "100000000"}},
		},
	}, nil, &last)
	defer srv.Close()

	c := newTestClient(srv.URL, srv.URL)
	res, err := c.InvokeFunction(context.Background(), "0xbneo", "balanceOf",
		[]neo.Param{neo.Hash160("0x01")}, "0xsigner")
	require.NoError(t, err)
	first, err := res.First()
	require.NoError(t, err)
	assert.Equal(t, "100000000", first.IntegerString())

	assert.Equal(t, "invokefunction", last.Method)
	require.Len(t, last.Params, 4)
	assert.JSONEq(t, `"0xbneo"`, string(last.Params[0]))
	assert.JSONEq(t, `[{"type":"Hash160","value":"0x01"}]`, string(last.Params[2]))
	assert.JSONEq(t, `[{"account":"0xsigner","scopes":"CalledByEntry","allowedcontracts":[],"allowedgroups":[]}]`, string(last.Params[3]))
}

func TestInvokeFunctionWithoutSignerHasThreeParams(t *testing.T) {
	var last capturedRequest
	srv := rpcMock(t, map[string]any{"invokefunction": map[string]any{"state": "HALT"}}, nil, &last)
	defer srv.Close()

	_, err := newTestClient(srv.URL, srv.URL).InvokeFunction(context.Background(), "0xbneo", "totalSupply", nil, "")
	require.NoError(t, err)
	require.Len(t, last.Params, 3)
	assert.JSONEq(t, `[]`, string(last.Params[2]))
}

func TestInvokeScript(t *testing.T) {
	var last capturedRequest
	srv := rpcMock(t, map[string]any{"invokescript": map[string]any{"state": "FAULT", "exception": "boom"}}, nil, &last)
	defer srv.Close()

	res, err := newTestClient(srv.URL, srv.URL).InvokeScript(context.Background(), "AQID", "")
	require.NoError(t, err)
	assert.False(t, res.Halted())
	require.Len(t, last.Params, 1)
}

func TestNEP17Balances(t *testing.T) {
	srv := rpcMock(t, map[string]any{
		"getnep17balances": map[string]any{
			"address": "Nxxx1",
			"balance": []any{
				map[string]any{"assethash": "0xd2a4cff31913016155e38e474a2c06d08be276cf", "amount": "150000000", "lastupdatedblock": 10},
			},
		},
	}, nil, nil)
	defer srv.Close()

	res, err := newTestClient(srv.URL, srv.URL).NEP17Balances(context.Background(), "Nxxx1")
	require.NoError(t, err)
	require.Len(t, res.Balance, 1)
	assert.Equal(t, "150000000", res.Balance[0].Amount)
}

func TestApplicationLog(t *testing.T) {
	srv := rpcMock(t, map[string]any{
		"getapplicationlog": map[string]any{"txid": "0xabc", "executions": []any{map[string]any{"vmstate": "HALT"}}},
	}, nil, nil)
	defer srv.Close()

	log, err := newTestClient(srv.URL, srv.URL).ApplicationLog(context.Background(), "0xabc")
	require.NoError(t, err)
	status, ok := log.Verdict()
	assert.True(t, ok)
	assert.Equal(t, neo.StatusSuccess, status)
}

func TestCalculateNetworkFee(t *testing.T) {
	srv := rpcMock(t, map[string]any{"calculatenetworkfee": map[string]any{"networkfee": "1234567"}}, nil, nil)
	defer srv.Close()

	fee, err := newTestClient(srv.URL, srv.URL).CalculateNetworkFee(context.Background(), "AAAA")
	require.NoError(t, err)
	assert.Equal(t, "1234567", fee)
}

func TestCommittee(t *testing.T) {
	srv := rpcMock(t, map[string]any{"getcommittee": []string{"02aa", "03bb"}}, nil, nil)
	defer srv.Close()

	keys, err := newTestClient(srv.URL, srv.URL).Committee(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"02aa", "03bb"}, keys)
}

func TestNullResultIsNoResult(t *testing.T) {
	srv := rpcMock(t, map[string]any{"getcommittee": nil}, nil, nil)
	defer srv.Close()

	_, err := newTestClient(srv.URL, srv.URL).Committee(context.Background())
	assert.ErrorIs(t, err, ErrNoResult)
}

func TestPing(t *testing.T) {
	var hits int32
	srv := rpcMock(t, map[string]any{"getblockcount": 5000}, &hits, nil)
	defer srv.Close()

	latency, height, err := newTestClient(srv.URL, srv.URL).Ping(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint32(5000), height)
	assert.GreaterOrEqual(t, latency.Nanoseconds(), int64(0))
	assert.Equal(t, int32(1), hits)
}
