// Package dapi speaks the Neo N3 dAPI wire protocol exposed by wallet
// bridges: structured provider errors and a JSON-RPC style connection.
package dapi

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Error types reported by dAPI wallets.
const (
	NoProvider        = "NO_PROVIDER"
	ConnectionDenied  = "CONNECTION_DENIED"
	ConnectionRefused = "CONNECTION_REFUSED"
	Canceled          = "CANCELED"
	RPCError          = "RPC_ERROR"
	MalformedInput    = "MALFORMED_INPUT"
	InsufficientFunds = "INSUFFICIENT_FUNDS"
	ChainNotMatch     = "CHAIN_NOT_MATCH"
)

// ErrNotInjected is returned when no wallet answers at the bridge address.
var ErrNotInjected = &Error{Type: NoProvider, Description: "wallet bridge not available"}

// Error is the structured error a wallet returns.
type Error struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Data        string `json:"data,omitempty"`
}

func (e *Error) Error() string {
	if e.Description == "" {
		return "dapi: " + e.Type
	}
	return fmt.Sprintf("dapi: %s: %s", e.Type, e.Description)
}

// Is matches any *Error with the same Type.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Type == e.Type
}

// UnmarshalJSON tolerates wallets that send data as an object.
func (e *Error) UnmarshalJSON(b []byte) error {
	var raw struct {
		Type        string          `json:"type"`
		Description string          `json:"description"`
		Data        json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	e.Type, e.Description = raw.Type, raw.Description
	e.Data = ""
	if len(raw.Data) > 0 && string(raw.Data) != "null" {
		var s string
		if json.Unmarshal(raw.Data, &s) == nil {
			e.Data = s
		} else {
			e.Data = string(raw.Data)
		}
	}
	return nil
}

// TypeOf returns the dAPI error type carried by err, or "".
func TypeOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Type
	}
	return ""
}
