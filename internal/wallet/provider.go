// Package wallet normalizes heterogeneous Neo N3 wallet providers behind
// one Adapter engine. The engine owns connection state, the submit and
// confirm protocol, and error classification; each Provider only adapts
// the wallet's native calls.
package wallet

import (
	"context"

	"github.com/neoburger/burgerctl/internal/neo"
)

// Account is a connected wallet account.
type Account struct {
	Address   string
	PublicKey string
}

// Holding is one raw balance entry reported by a provider. Asset is either
// a symbol ("NEO") or a script hash depending on the provider.
type Holding struct {
	Asset  string
	Amount string
}

// Events are callbacks a provider fires for wallet-side changes.
type Events struct {
	Disconnected   func()
	AccountChanged func(address string)
	NetworkChanged func(network string)
}

// Provider adapts one wallet's native API.
type Provider interface {
	Name() string
	Capabilities() Capabilities
	// Init performs the handshake and wires ev to wallet events.
	Init(ctx context.Context, ev Events) error
	Connect(ctx context.Context) (Account, error)
	Balances(ctx context.Context, address string) ([]Holding, error)
	// Network returns the wallet's raw network identifier.
	Network(ctx context.Context) (string, error)
	// Invoke asks the wallet to sign and broadcast req and returns the txid.
	Invoke(ctx context.Context, req neo.InvocationRequest) (string, error)
	ApplicationLog(ctx context.Context, txid string) (*neo.ApplicationLog, error)
	PublicKey(ctx context.Context) (string, error)
	Disconnect(ctx context.Context) error
}

// AutoConnect decides whether InitDapi reconnects without a user action.
type AutoConnect int

const (
	// Never waits for an explicit GetAccount.
	Never AutoConnect = iota
	// Always connects as soon as the wallet is ready.
	Always
	// IfMarked connects when the session markers say this wallet was
	// connected and is the last used one.
	IfMarked
	// IfLastUsed connects when this wallet is the last used one.
	IfLastUsed
)

// BalancePolicy decides how raw holdings become decimal balances.
type BalancePolicy int

const (
	// BySymbol maps wallet symbols to script hashes; amounts are already
	// decimal.
	BySymbol BalancePolicy = iota
	// ShiftKnown shifts amounts of assets in the decimals table and drops
	// unknown assets.
	ShiftKnown
	// ShiftOrPassthrough shifts known assets and keeps unknown ones raw.
	ShiftOrPassthrough
)

// Capabilities is the per-provider descriptor driving the engine.
type Capabilities struct {
	AutoConnect AutoConnect
	Balances    BalancePolicy
	// PersistMarker records the wallet as last used after a connect.
	PersistMarker bool
	// ReloadOnDisconnect re-initializes the adapter after Disconnect since
	// relay channel teardown is not observable otherwise.
	ReloadOnDisconnect bool
	// AddressArgs sends transfer parties as Address params instead of
	// Hash160 script hashes.
	AddressArgs bool
}
