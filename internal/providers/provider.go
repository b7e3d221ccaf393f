// Package providers adapts the supported Neo N3 wallets to wallet.Provider.
// Each type only describes how its wallet is called; the shared engine in
// package wallet does the rest.
package providers

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/neoburger/burgerctl/internal/dapi"
	"github.com/neoburger/burgerctl/internal/neo"
	"github.com/neoburger/burgerctl/internal/wallet"
)

// Supported wallet names.
const (
	Neoline       = "Neoline"
	NeolineMobile = "NeolineMobile"
	O3            = "O3"
	OneGate       = "OneGate"
	Neon          = "Neon"
)

// Names lists the supported wallets in registry order.
var Names = []string{Neoline, NeolineMobile, O3, OneGate, Neon}

// Dialer opens the connection to a wallet.
type Dialer func(ctx context.Context) (dapi.Conn, error)

// HTTPDialer dials a dAPI bridge over HTTP. An empty url means the wallet
// is not installed.
func HTTPDialer(url string, opts ...dapi.Option) Dialer {
	return func(ctx context.Context) (dapi.Conn, error) {
		if url == "" {
			return nil, dapi.ErrNotInjected
		}
		return dapi.Dial(ctx, url, opts...)
	}
}

// bridge carries the methods every dAPI wallet exposes the same way.
type bridge struct {
	name string
	dial Dialer

	mu   sync.Mutex
	conn dapi.Conn
}

func (b *bridge) Name() string { return b.name }

func (b *bridge) open(ctx context.Context) (dapi.Conn, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.conn != nil {
		return b.conn, nil
	}
	conn, err := b.dial(ctx)
	if err != nil {
		return nil, err
	}
	b.conn = conn
	return conn, nil
}

func (b *bridge) call(ctx context.Context, method string, params, out any) error {
	b.mu.Lock()
	conn := b.conn
	b.mu.Unlock()
	if conn == nil {
		return dapi.ErrNotInjected
	}
	return conn.Call(ctx, method, params, out)
}

// watch forwards wallet events to ev. Account and network changes are only
// wired for wallets that emit them.
func (b *bridge) watch(conn dapi.Conn, ev wallet.Events, accountAndNetwork bool) {
	if ev.Disconnected != nil {
		conn.On(dapi.EventDisconnected, func(json.RawMessage) { ev.Disconnected() })
	}
	if !accountAndNetwork {
		return
	}
	if ev.AccountChanged != nil {
		conn.On(dapi.EventAccountChanged, func(data json.RawMessage) {
			var acct account
			if json.Unmarshal(data, &acct) == nil && acct.Address != "" {
				ev.AccountChanged(acct.Address)
			}
		})
	}
	if ev.NetworkChanged != nil {
		conn.On(dapi.EventNetworkChanged, func(data json.RawMessage) {
			var n networks
			if json.Unmarshal(data, &n) == nil {
				ev.NetworkChanged(n.DefaultNetwork)
			}
		})
	}
}

func (b *bridge) Connect(ctx context.Context) (wallet.Account, error) {
	var acct account
	if err := b.call(ctx, "getAccount", nil, &acct); err != nil {
		return wallet.Account{}, err
	}
	return wallet.Account{Address: acct.Address, PublicKey: acct.PublicKey}, nil
}

func (b *bridge) Network(ctx context.Context) (string, error) {
	var n networks
	if err := b.call(ctx, "getNetworks", nil, &n); err != nil {
		return "", err
	}
	return n.DefaultNetwork, nil
}

func (b *bridge) ApplicationLog(ctx context.Context, txid string) (*neo.ApplicationLog, error) {
	var log neo.ApplicationLog
	if err := b.call(ctx, "getApplicationLog", map[string]string{"txid": txid}, &log); err != nil {
		return nil, err
	}
	return &log, nil
}

func (b *bridge) PublicKey(ctx context.Context) (string, error) {
	var acct account
	if err := b.call(ctx, "getPublicKey", nil, &acct); err != nil {
		return "", err
	}
	return acct.PublicKey, nil
}

func (b *bridge) Disconnect(ctx context.Context) error {
	err := b.call(ctx, "disconnect", nil, nil)
	b.mu.Lock()
	conn := b.conn
	b.conn = nil
	b.mu.Unlock()
	if conn != nil {
		_ = conn.Close()
	}
	return err
}

// ---------------------------------------------------------------------------
// wire shapes
// ---------------------------------------------------------------------------

type account struct {
	Address   string `json:"address"`
	Label     string `json:"label,omitempty"`
	PublicKey string `json:"publicKey,omitempty"`
}

type networks struct {
	Networks       []string `json:"networks"`
	ChainID        int      `json:"chainId,omitempty"`
	DefaultNetwork string   `json:"defaultNetwork"`
}

// symbolBalance is the getBalance entry of the legacy dAPI.
type symbolBalance struct {
	Symbol   string `json:"symbol"`
	Amount   string `json:"amount"`
	Contract string `json:"contract"`
}

// hashBalance is the getNep17Balances entry of NeoDapi wallets.
type hashBalance struct {
	AssetHash string `json:"assetHash"`
	Amount    string `json:"amount"`
}

type txResult struct {
	TxID string `json:"txid"`
}

type signer struct {
	Account string `json:"account,omitempty"`
	Scopes  any    `json:"scopes"`
}

type invocation struct {
	ScriptHash        string      `json:"scriptHash"`
	Operation         string      `json:"operation"`
	Args              []neo.Param `json:"args"`
	Fee               string      `json:"fee,omitempty"`
	BroadcastOverride *bool       `json:"broadcastOverride,omitempty"`
	Signers           []signer    `json:"signers,omitempty"`
}

// legacyInvocation is the invoke shape of NeoLine and O3: numeric scopes,
// zero extra fee and wallet-side broadcast.
func legacyInvocation(req neo.InvocationRequest) invocation {
	broadcastOverride := false
	return invocation{
		ScriptHash:        req.Contract,
		Operation:         req.Operation,
		Args:              req.Args,
		Fee:               "0",
		BroadcastOverride: &broadcastOverride,
		Signers:           []signer{{Account: req.Signer, Scopes: req.Scope.OrDefault().Code()}},
	}
}

// dapiInvocation is the NeoDapi invoke shape with named scopes.
func dapiInvocation(req neo.InvocationRequest) invocation {
	return invocation{
		ScriptHash: req.Contract,
		Operation:  req.Operation,
		Args:       req.Args,
		Signers:    []signer{{Account: req.Signer, Scopes: string(req.Scope.OrDefault())}},
	}
}

func symbolHoldings(entries []symbolBalance) []wallet.Holding {
	out := make([]wallet.Holding, 0, len(entries))
	for _, e := range entries {
		out = append(out, wallet.Holding{Asset: e.Symbol, Amount: e.Amount})
	}
	return out
}

func hashHoldings(entries []hashBalance) []wallet.Holding {
	out := make([]wallet.Holding, 0, len(entries))
	for _, e := range entries {
		out = append(out, wallet.Holding{Asset: e.AssetHash, Amount: e.Amount})
	}
	return out
}
