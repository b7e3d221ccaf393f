package providers

import (
	"context"
	"strings"

	"github.com/neoburger/burgerctl/internal/neo"
	"github.com/neoburger/burgerctl/internal/wallet"
)

// NeoLineMobile is the NeoLine mobile app's in-app browser dAPI.
type NeoLineMobile struct {
	bridge
}

// NewNeoLineMobile returns the NeoLine mobile provider reached through dial.
func NewNeoLineMobile(dial Dialer) *NeoLineMobile {
	return &NeoLineMobile{bridge{name: NeolineMobile, dial: dial}}
}

func (p *NeoLineMobile) Capabilities() wallet.Capabilities {
	return wallet.Capabilities{
		AutoConnect: wallet.Always,
		Balances:    wallet.ShiftKnown,
	}
}

func (p *NeoLineMobile) Init(ctx context.Context, ev wallet.Events) error {
	conn, err := p.open(ctx)
	if err != nil {
		return err
	}
	p.watch(conn, ev, false)
	return nil
}

func (p *NeoLineMobile) Balances(ctx context.Context, address string) ([]wallet.Holding, error) {
	return nep17Balances(ctx, &p.bridge, address)
}

func (p *NeoLineMobile) Invoke(ctx context.Context, req neo.InvocationRequest) (string, error) {
	return dapiInvoke(ctx, &p.bridge, req)
}

// PublicKey reads the key from the account, where the app reports it
// wrapped as PublicKey(<hex>).
func (p *NeoLineMobile) PublicKey(ctx context.Context) (string, error) {
	acct, err := p.Connect(ctx)
	if err != nil {
		return "", err
	}
	return unwrapPublicKey(acct.PublicKey), nil
}

func unwrapPublicKey(s string) string {
	if i := strings.IndexByte(s, '('); i >= 0 && strings.HasSuffix(s, ")") {
		return s[i+1 : len(s)-1]
	}
	return s
}

// nep17Balances queries getNep17Balances, shared by NeoDapi wallets.
func nep17Balances(ctx context.Context, b *bridge, address string) ([]wallet.Holding, error) {
	var res []hashBalance
	if err := b.call(ctx, "getNep17Balances", map[string]string{"address": address}, &res); err != nil {
		return nil, err
	}
	return hashHoldings(res), nil
}

func dapiInvoke(ctx context.Context, b *bridge, req neo.InvocationRequest) (string, error) {
	var res txResult
	if err := b.call(ctx, "invoke", dapiInvocation(req), &res); err != nil {
		return neo.FailedTxID, err
	}
	return res.TxID, nil
}
