package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/neoburger/burgerctl/internal/burger"
	"github.com/neoburger/burgerctl/internal/chain"
	"github.com/neoburger/burgerctl/internal/config"
	"github.com/neoburger/burgerctl/internal/neo"
	"github.com/neoburger/burgerctl/internal/nns"
	"github.com/neoburger/burgerctl/internal/price"
	"github.com/neoburger/burgerctl/internal/providers"
	"github.com/neoburger/burgerctl/internal/rpc"
	"github.com/neoburger/burgerctl/internal/state"
	"github.com/neoburger/burgerctl/internal/ui"
	"github.com/neoburger/burgerctl/internal/wallet"
)

var (
	errNoWallet   = errors.New("no wallet selected")
	errTxFailed   = errors.New("transaction failed")
	errTxPending  = errors.New("transaction not confirmed yet")
	errSimulation = errors.New("simulation faulted")
)

func newLogger(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().Logger()
}

// errLine renders a command error. Wallet errors use the message catalog.
func errLine(err error) string {
	if wallet.Classify(err) != wallet.Unclassified {
		return ui.Err(wallet.DefaultMessages.Message(err))
	}
	return ui.Err(err.Error())
}

func interactive() bool {
	return term.IsTerminal(int(os.Stdout.Fd())) && term.IsTerminal(int(os.Stdin.Fd()))
}

// queryClient returns the chain client for the active mode. The fastest
// algorithm benchmarks every endpoint first; failover uses configured order.
func queryClient(ctx context.Context) (*chain.Client, error) {
	algo := rpc.Algorithm(cfg.RPCAlgorithm)
	primary, fallback := cfg.PrimaryAndFallback()
	if algo == rpc.AlgorithmFastest {
		ctx, cancel := context.WithTimeout(ctx, config.RPCSelectTimeout)
		defer cancel()
		var err error
		primary, fallback, err = rpc.Order(ctx, cfg.Endpoints(), algo)
		if err != nil {
			return nil, err
		}
	}
	if primary == "" {
		return nil, rpc.ErrNoHealthyRPC
	}
	log.Debug().Str("primary", primary).Str("fallback", fallback).Msg("query endpoints")
	return chain.New(primary, fallback, chain.WithLogger(log)), nil
}

func newReader(client *chain.Client) *burger.Reader {
	return burger.New(client, cfg, burger.WithLogger(log))
}

func newPrices(client *chain.Client) *price.Fetcher {
	return price.NewFetcher(client, cfg.Contracts, cfg.QuoteAPI, price.WithLogger(log))
}

// openWallets initializes every wallet provider and waits for all of them
// to settle. Unavailable wallets stay nil in the registry.
func openWallets(ctx context.Context, client *chain.Client) (*wallet.Registry, *state.Store) {
	store := state.NewStore()
	reg := providers.BuildRegistry(providers.Deps{
		Config:  cfg,
		Store:   store,
		Chain:   client,
		Secrets: wallet.DefaultKeystore(cfg.Dir()),
		Session: wallet.NewScopedSession(cfg.SessionPath(), wallet.TerminalSessionKey()),
		Log:     log,
	})
	ctx, cancel := context.WithTimeout(ctx, config.BridgeTimeout)
	defer cancel()
	reg.InitAll(ctx)
	reg.Wait()
	return reg, store
}

// walletItems lists every provider for the picker; uninitialized ones are
// shown but disabled.
func walletItems(reg *wallet.Registry) []ui.PickerItem {
	var items []ui.PickerItem
	for _, name := range reg.Names() {
		item := ui.PickerItem{Label: name, Value: name, SubLabel: "ready"}
		if a := reg.Get(name); a == nil {
			item.Disabled, item.SubLabel = true, "unavailable"
		} else if addr := a.Address(); addr != "" {
			item.SubLabel = addr
		}
		items = append(items, item)
	}
	return items
}

// chooseWallet resolves --wallet, then the configured default, then the
// interactive picker.
func chooseWallet(reg *wallet.Registry) (string, error) {
	if walletFlag != "" {
		return walletFlag, nil
	}
	if cfg.DefaultWallet != "" {
		return cfg.DefaultWallet, nil
	}
	if !interactive() {
		return "", fmt.Errorf("%w: pass --wallet or run `burgerctl config set-default-wallet`", errNoWallet)
	}
	name, err := ui.PickItem("Choose a wallet", walletItems(reg))
	if err != nil {
		return "", err
	}
	if name == "" {
		return "", errNoWallet
	}
	return name, nil
}

// connect returns the chosen adapter with a connected address, prompting the
// wallet when it did not reconnect on its own.
func connect(ctx context.Context, reg *wallet.Registry) (*wallet.Adapter, string, error) {
	name, err := chooseWallet(reg)
	if err != nil {
		return nil, "", err
	}
	a := reg.Get(name)
	if a == nil {
		return nil, "", fmt.Errorf("wallet %q is not available (known: %v)", name, reg.Names())
	}
	addr := a.Address()
	if addr == "" {
		ctx, cancel := context.WithTimeout(ctx, config.BridgeTimeout)
		defer cancel()
		addr = a.GetAccount(ctx)
	}
	if addr == "" {
		return nil, "", fmt.Errorf("%s did not connect an account", name)
	}
	return a, addr, nil
}

// submit runs wait under the progress view, or plainly when stdout is not a
// terminal, and maps the outcome to the command result.
func submit(ctx context.Context, out io.Writer, title string, wait ui.WaitFunc) error {
	var o neo.Outcome
	if interactive() {
		var err error
		if o, err = ui.RunTx(ctx, title, wait); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(out, ui.Meta(title+", approve in your wallet"))
		o = wait(ctx)
		fmt.Fprintln(out, ui.RenderOutcome(o))
	}
	switch o.Status {
	case neo.StatusSuccess:
		return nil
	case neo.StatusPending:
		return errTxPending
	}
	if o.Err != nil {
		return fmt.Errorf("%w: %w", errTxFailed, o.Err)
	}
	return errTxFailed
}

// resolveAddress accepts an N3 address or an NNS domain.
func resolveAddress(ctx context.Context, client *chain.Client, s string) (string, error) {
	if !nns.IsName(s) {
		if _, err := neo.ScriptHashFromAddress(s); err != nil {
			return "", err
		}
		return s, nil
	}
	addr, err := nns.Resolve(ctx, client, cfg.Contracts.NNS, s)
	if err != nil {
		return "", err
	}
	log.Debug().Str("name", s).Str("address", addr).Msg("resolved NNS name")
	return addr, nil
}

// symbolOf names a known asset hash.
func symbolOf(hash string) string {
	switch {
	case sameHash(hash, cfg.Contracts.NEO):
		return "NEO"
	case sameHash(hash, cfg.Contracts.GAS):
		return "GAS"
	case sameHash(hash, cfg.Contracts.BNEO):
		return "bNEO"
	}
	return ui.TruncateAddr(hash)
}

func sameHash(a, b string) bool {
	return a != "" && strings.EqualFold(a, b)
}
