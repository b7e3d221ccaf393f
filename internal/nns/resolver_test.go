package nns

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neoburger/burgerctl/internal/chain"
	"github.com/neoburger/burgerctl/internal/neo"
)

const bneoHash = "0x48c40d4666f93408be1bef038b6722404d9a4c2a"

// ---------------------------------------------------------------------------
// IsName
// ---------------------------------------------------------------------------

func TestIsName(t *testing.T) {
	for _, s := range []string{"burger.neo", "my-wallet.neo", "a.b.neo", "Burger.NEO"} {
		assert.True(t, IsName(s), s)
	}
	for _, s := range []string{"neo", "NVg7LjGcUSrgxgjX3zEgqaksfMaiS8Z6e1", "-bad.neo", "bad-.neo", "a..neo", "sp ace.neo", ""} {
		assert.False(t, IsName(s), s)
	}
}

// ---------------------------------------------------------------------------
// helpers: nnsMock answers invokefunction per contract method
// ---------------------------------------------------------------------------

func stack(items ...map[string]any) map[string]any {
	return map[string]any{"state": "HALT", "gasconsumed": "1", "stack": items}
}

func byteString(b []byte) map[string]any {
	return map[string]any{"type": "ByteString", "value": base64.StdEncoding.EncodeToString(b)}
}

func nnsMock(t *testing.T, results map[string]map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string            `json:"method"`
			Params []json.RawMessage `json:"params"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		var op string
		if len(req.Params) > 1 {
			_ = json.Unmarshal(req.Params[1], &op)
		}
		w.Header().Set("Content-Type", "application/json")
		res, ok := results[op]
		if !ok {
			res = map[string]any{"state": "FAULT", "exception": "token not found", "stack": []any{}}
		}
		json.NewEncoder(w).Encode(map[string]any{"jsonrpc": "2.0", "id": 1, "result": res}) //nolint:errcheck
	}))
	t.Cleanup(srv.Close)
	return srv
}

func ownerAddress(t *testing.T) string {
	t.Helper()
	addr, err := neo.AddressFromScriptHash(bneoHash)
	require.NoError(t, err)
	return addr
}

// ---------------------------------------------------------------------------
// Resolve
// ---------------------------------------------------------------------------

func TestResolveTXTAddress(t *testing.T) {
	addr := ownerAddress(t)
	srv := nnsMock(t, map[string]map[string]any{
		"resolve": stack(byteString([]byte(addr))),
	})
	got, err := Resolve(context.Background(), chain.New(srv.URL, srv.URL), "", "Burger.neo")
	require.NoError(t, err)
	assert.Equal(t, addr, got)
}

func TestResolveTXTScriptHash(t *testing.T) {
	srv := nnsMock(t, map[string]map[string]any{
		"resolve": stack(byteString([]byte(bneoHash))),
	})
	got, err := Resolve(context.Background(), chain.New(srv.URL, srv.URL), ContractHash, "burger.neo")
	require.NoError(t, err)
	assert.Equal(t, ownerAddress(t), got)
}

func TestResolveFallsBackToOwner(t *testing.T) {
	u, err := util.Uint160DecodeStringLE(bneoHash[2:])
	require.NoError(t, err)
	srv := nnsMock(t, map[string]map[string]any{
		"resolve": stack(map[string]any{"type": "Any"}),
		"ownerOf": stack(byteString(u.BytesBE())),
	})
	got, err := Resolve(context.Background(), chain.New(srv.URL, srv.URL), "", "burger.neo")
	require.NoError(t, err)
	assert.Equal(t, ownerAddress(t), got)
}

func TestResolveIgnoresGarbageRecord(t *testing.T) {
	u, err := util.Uint160DecodeStringLE(bneoHash[2:])
	require.NoError(t, err)
	srv := nnsMock(t, map[string]map[string]any{
		"resolve": stack(byteString([]byte("hello world"))),
		"ownerOf": stack(byteString(u.BytesBE())),
	})
	got, err := Resolve(context.Background(), chain.New(srv.URL, srv.URL), "", "burger.neo")
	require.NoError(t, err)
	assert.Equal(t, ownerAddress(t), got)
}

func TestResolveUnregistered(t *testing.T) {
	srv := nnsMock(t, map[string]map[string]any{})
	_, err := Resolve(context.Background(), chain.New(srv.URL, srv.URL), "", "nobody.neo")
	assert.ErrorIs(t, err, ErrNotFound)
}
