package providers

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/neoburger/burgerctl/internal/chain"
	"github.com/neoburger/burgerctl/internal/config"
	"github.com/neoburger/burgerctl/internal/confirm"
	"github.com/neoburger/burgerctl/internal/dapi"
	"github.com/neoburger/burgerctl/internal/neo"
	"github.com/neoburger/burgerctl/internal/state"
	"github.com/neoburger/burgerctl/internal/wallet"
)

// Deps are the shared services wallet providers are built from.
type Deps struct {
	Config  *config.Config
	Store   *state.Store
	Chain   *chain.Client
	Secrets wallet.SecretStore
	Session *wallet.Session
	Log     zerolog.Logger
	// Dial overrides how a wallet is reached, mainly for tests.
	Dial func(name string) Dialer
}

// New returns the provider called name.
func New(name string, d Deps) (wallet.Provider, error) {
	dial := d.dialer(name)
	switch name {
	case Neoline:
		return NewNeoLine(dial), nil
	case NeolineMobile:
		return NewNeoLineMobile(dial), nil
	case O3:
		return NewO3(dial), nil
	case OneGate:
		return NewOneGate(dial), nil
	case Neon:
		secrets := d.Secrets
		if secrets == nil {
			secrets = wallet.NewInMemoryKeystore()
		}
		chainID := NeonMainNet
		if d.Config.Testnet() {
			chainID = NeonTestNet
		}
		return NewNeon(dial, d.Chain, secrets, chainID, NeonLogger(d.Log)), nil
	}
	return nil, fmt.Errorf("unknown wallet %q (supported: %s)", name, strings.Join(Names, ", "))
}

// BuildRegistry assembles the wallet registry for every supported wallet.
// Adapters share the projection store, the reconnection markers and the
// confirmation schedule from the config.
func BuildRegistry(d Deps) *wallet.Registry {
	var reg *wallet.Registry
	reg = wallet.NewRegistry(Names, func(_ context.Context, name string) (*wallet.Adapter, error) {
		p, err := New(name, d)
		if err != nil {
			return nil, err
		}
		return NewAdapter(p, d, func(ctx context.Context) { reg.Reload(ctx, name) }), nil
	}, d.Log)
	return reg
}

// NewAdapter wires p into an engine configured from d.
func NewAdapter(p wallet.Provider, d Deps, reload func(ctx context.Context)) *wallet.Adapter {
	initial, multiplier, maxAttempts := d.Config.PollSchedule()
	return wallet.NewAdapter(p, d.Store,
		wallet.WithLogger(d.Log),
		wallet.WithSession(d.Session),
		wallet.WithProtocol(Protocol(d.Config)),
		wallet.WithPollOptions(
			confirm.WithBackoff(confirm.Exponential{Initial: initial, Multiplier: multiplier}),
			confirm.WithMaxAttempts(maxAttempts),
		),
		wallet.WithReload(reload),
	)
}

// Protocol derives the adapter protocol coordinates from cfg. The network
// guard only applies on mainnet.
func Protocol(cfg *config.Config) wallet.Protocol {
	c := cfg.Contracts
	p := wallet.Protocol{
		ToAddress:  cfg.ToAddress(),
		NoBug:      c.NoBug,
		Governance: c.Governance,
		Decimals: map[string]int32{
			strings.ToLower(c.NEO):  0,
			strings.ToLower(c.GAS):  8,
			strings.ToLower(c.BNEO): 8,
		},
		Symbols: map[string]string{
			"NEO":  c.NEO,
			"GAS":  c.GAS,
			"BNEO": c.BNEO,
		},
	}
	if !cfg.Testnet() {
		p.Network = neo.MainNet
	}
	return p
}

func (d Deps) dialer(name string) Dialer {
	if d.Dial != nil {
		return d.Dial(name)
	}
	opts := []dapi.Option{dapi.WithLogger(d.Log)}
	addr := d.Config.BridgeURL(name)
	if name == Neon && addr == "" {
		addr = relayURL(d.Config.Relay)
	}
	return HTTPDialer(addr, opts...)
}

// relayURL appends the project id to the relay address.
func relayURL(r config.RelayConfig) string {
	if r.URL == "" || r.ProjectID == "" {
		return r.URL
	}
	u, err := url.Parse(r.URL)
	if err != nil {
		return r.URL
	}
	q := u.Query()
	q.Set("projectId", r.ProjectID)
	u.RawQuery = q.Encode()
	return u.String()
}
