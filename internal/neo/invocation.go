package neo

import (
	"encoding/json"
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
)

// SignerScope is the witness scope granted to the signing account.
type SignerScope string

// Signer scopes.
const (
	ScopeNone            SignerScope = "None"
	ScopeCalledByEntry   SignerScope = "CalledByEntry"
	ScopeCustomContracts SignerScope = "CustomContracts"
	ScopeCustomGroups    SignerScope = "CustomGroups"
	ScopeGlobal          SignerScope = "Global"
)

// WitnessScope maps the scope onto neo-go's transaction witness scope.
// The empty scope is CalledByEntry.
func (s SignerScope) WitnessScope() (transaction.WitnessScope, error) {
	switch s {
	case ScopeNone:
		return transaction.None, nil
	case "", ScopeCalledByEntry:
		return transaction.CalledByEntry, nil
	case ScopeCustomContracts:
		return transaction.CustomContracts, nil
	case ScopeCustomGroups:
		return transaction.CustomGroups, nil
	case ScopeGlobal:
		return transaction.Global, nil
	}
	return transaction.None, fmt.Errorf("unknown signer scope %q", string(s))
}

// Code returns the numeric scope flag used by dAPIs that take integers.
func (s SignerScope) Code() int {
	ws, err := s.WitnessScope()
	if err != nil {
		return int(transaction.CalledByEntry)
	}
	return int(ws)
}

// OrDefault returns CalledByEntry for the zero scope.
func (s SignerScope) OrDefault() SignerScope {
	if s == "" {
		return ScopeCalledByEntry
	}
	return s
}

// InvocationRequest describes one state-changing contract call, independent
// of the wallet that will sign it.
type InvocationRequest struct {
	Contract  string
	Operation string
	Args      []Param
	Scope     SignerScope
	// Signer is the 0x-prefixed script hash of the signing account.
	Signer string
}

// RPCSigner is the signer shape accepted by invokefunction / invokescript.
type RPCSigner struct {
	Account          string   `json:"account"`
	Scopes           string   `json:"scopes"`
	AllowedContracts []string `json:"allowedcontracts"`
	AllowedGroups    []string `json:"allowedgroups"`
}

// NewRPCSigner returns a CalledByEntry signer for account.
func NewRPCSigner(account string) RPCSigner {
	return RPCSigner{
		Account:          account,
		Scopes:           string(ScopeCalledByEntry),
		AllowedContracts: []string{},
		AllowedGroups:    []string{},
	}
}

// ArgsJSON renders the request arguments for logging.
func (r InvocationRequest) ArgsJSON() string {
	b, err := json.Marshal(r.Args)
	if err != nil {
		return "[]"
	}
	return string(b)
}
