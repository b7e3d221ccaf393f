package dapi

import (
	"context"
	"encoding/json"
)

// Wallet-side events.
const (
	EventReady          = "READY"
	EventDisconnected   = "DISCONNECTED"
	EventAccountChanged = "ACCOUNT_CHANGED"
	EventNetworkChanged = "NETWORK_CHANGED"
)

// Conn is a connection to one wallet.
type Conn interface {
	// Call invokes a wallet method and decodes its result into result,
	// which may be nil. Wallet failures are returned as *Error.
	Call(ctx context.Context, method string, params, result any) error
	// On registers fn for a wallet event. Handlers run on the connection's
	// event goroutine.
	On(event string, fn func(data json.RawMessage))
	Close() error
}
