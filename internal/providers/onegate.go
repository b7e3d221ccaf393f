package providers

import (
	"context"

	"github.com/neoburger/burgerctl/internal/neo"
	"github.com/neoburger/burgerctl/internal/wallet"
)

// OneGateWallet is the OneGate wallet's NeoDapi bridge.
type OneGateWallet struct {
	bridge
}

// NewOneGate returns the OneGate provider reached through dial.
func NewOneGate(dial Dialer) *OneGateWallet {
	return &OneGateWallet{bridge{name: OneGate, dial: dial}}
}

func (p *OneGateWallet) Capabilities() wallet.Capabilities {
	return wallet.Capabilities{
		AutoConnect: wallet.Always,
		Balances:    wallet.ShiftKnown,
	}
}

func (p *OneGateWallet) Init(ctx context.Context, ev wallet.Events) error {
	conn, err := p.open(ctx)
	if err != nil {
		return err
	}
	p.watch(conn, ev, false)
	return nil
}

func (p *OneGateWallet) Balances(ctx context.Context, address string) ([]wallet.Holding, error) {
	return nep17Balances(ctx, &p.bridge, address)
}

func (p *OneGateWallet) Invoke(ctx context.Context, req neo.InvocationRequest) (string, error) {
	return dapiInvoke(ctx, &p.bridge, req)
}

// PublicKey is part of the account record.
func (p *OneGateWallet) PublicKey(ctx context.Context) (string, error) {
	acct, err := p.Connect(ctx)
	if err != nil {
		return "", err
	}
	return acct.PublicKey, nil
}
