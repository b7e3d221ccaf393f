package providers

import (
	"context"

	"github.com/neoburger/burgerctl/internal/neo"
	"github.com/neoburger/burgerctl/internal/wallet"
)

// NeoLine is the NeoLine browser extension.
type NeoLine struct {
	bridge
}

// NewNeoLine returns the NeoLine provider reached through dial.
func NewNeoLine(dial Dialer) *NeoLine {
	return &NeoLine{bridge{name: Neoline, dial: dial}}
}

func (p *NeoLine) Capabilities() wallet.Capabilities {
	return wallet.Capabilities{
		AutoConnect:   wallet.IfMarked,
		Balances:      wallet.BySymbol,
		PersistMarker: true,
		AddressArgs:   true,
	}
}

func (p *NeoLine) Init(ctx context.Context, ev wallet.Events) error {
	conn, err := p.open(ctx)
	if err != nil {
		return err
	}
	p.watch(conn, ev, true)
	return nil
}

// Balances returns the symbol-keyed holdings the extension reports for
// address.
func (p *NeoLine) Balances(ctx context.Context, address string) ([]wallet.Holding, error) {
	var res map[string][]symbolBalance
	if err := p.call(ctx, "getBalance", nil, &res); err != nil {
		return nil, err
	}
	return symbolHoldings(res[address]), nil
}

func (p *NeoLine) Invoke(ctx context.Context, req neo.InvocationRequest) (string, error) {
	var res txResult
	if err := p.call(ctx, "invoke", legacyInvocation(req), &res); err != nil {
		return neo.FailedTxID, err
	}
	return res.TxID, nil
}
