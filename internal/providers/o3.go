package providers

import (
	"context"

	"github.com/neoburger/burgerctl/internal/neo"
	"github.com/neoburger/burgerctl/internal/wallet"
)

// O3Wallet is the O3 desktop and browser wallet.
type O3Wallet struct {
	bridge
}

// NewO3 returns the O3 provider reached through dial.
func NewO3(dial Dialer) *O3Wallet {
	return &O3Wallet{bridge{name: O3, dial: dial}}
}

func (p *O3Wallet) Capabilities() wallet.Capabilities {
	return wallet.Capabilities{
		AutoConnect:   wallet.IfLastUsed,
		Balances:      wallet.BySymbol,
		PersistMarker: true,
		AddressArgs:   true,
	}
}

func (p *O3Wallet) Init(ctx context.Context, ev wallet.Events) error {
	conn, err := p.open(ctx)
	if err != nil {
		return err
	}
	p.watch(conn, ev, true)
	return nil
}

type o3BalanceQuery struct {
	Params []o3BalanceParam `json:"params"`
}

type o3BalanceParam struct {
	Address string `json:"address"`
}

func (p *O3Wallet) Balances(ctx context.Context, address string) ([]wallet.Holding, error) {
	var res map[string][]symbolBalance
	query := o3BalanceQuery{Params: []o3BalanceParam{{Address: address}}}
	if err := p.call(ctx, "getBalance", query, &res); err != nil {
		return nil, err
	}
	return symbolHoldings(res[address]), nil
}

func (p *O3Wallet) Invoke(ctx context.Context, req neo.InvocationRequest) (string, error) {
	var res txResult
	if err := p.call(ctx, "invoke", legacyInvocation(req), &res); err != nil {
		return neo.FailedTxID, err
	}
	return res.TxID, nil
}
