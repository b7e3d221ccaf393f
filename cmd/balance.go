package cmd

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/neoburger/burgerctl/internal/burger"
	"github.com/neoburger/burgerctl/internal/chain"
	"github.com/neoburger/burgerctl/internal/config"
	"github.com/neoburger/burgerctl/internal/neo"
	"github.com/neoburger/burgerctl/internal/price"
	"github.com/neoburger/burgerctl/internal/ui"
)

var balanceWatch bool

var balanceCmd = &cobra.Command{
	Use:   "balance [address|name.neo]",
	Short: "Show NEO, GAS and bNEO holdings with unclaimed GAS",
	Long: `Show holdings of an address. Without an address the connected wallet
reports its own balances.

Examples:
  burgerctl balance                                  # connected wallet
  burgerctl balance NVg7LjGcUSrgxgjX3zEgqaksfMaiS8Z6e1
  burgerctl balance burger.neo                       # NNS domain
  burgerctl balance --watch                          # refresh every watch_interval`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		client, err := queryClient(ctx)
		if err != nil {
			return err
		}
		reader := newReader(client)
		prices := newPrices(client)

		var address string
		var holdings func(ctx context.Context) (map[string]string, error)
		if len(args) == 1 {
			if address, err = resolveAddress(ctx, client, args[0]); err != nil {
				return err
			}
			holdings = func(ctx context.Context) (map[string]string, error) {
				return chainBalances(ctx, client, address)
			}
		} else {
			reg, _ := openWallets(ctx, client)
			a, addr, err := connect(ctx, reg)
			if err != nil {
				return err
			}
			address = addr
			holdings = func(ctx context.Context) (map[string]string, error) {
				b := a.GetBalance(ctx)
				if b == nil {
					return nil, fmt.Errorf("%s returned no balances", a.Name())
				}
				return b, nil
			}
		}

		fetch := func(ctx context.Context) ([][2]string, error) {
			b, err := holdings(ctx)
			if err != nil {
				return nil, err
			}
			quote, qerr := prices.Quote(ctx)
			if qerr != nil {
				log.Debug().Err(qerr).Msg("no USD quote")
			}
			unclaimed := unclaimedFor(ctx, reader, address)
			pairs := append([][2]string{{"Address", address}}, balancePairs(b, quote)...)
			return append(pairs, [2]string{"Unclaimed GAS", neo.FormatNumber(unclaimed, neo.WithDecimals(8))}), nil
		}

		if balanceWatch {
			_, err := ui.NewDashboard(ctx, "Balance", watchInterval(), fetch).Run()
			return err
		}

		spin := ui.NewSpinner("Fetching balances...")
		spin.Start()
		pairs, err := fetch(ctx)
		spin.Stop()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.KeyValueBlock("Balance ("+cfg.NetworkMode+")", pairs))
		return nil
	},
}

// chainBalances reads NEP-17 balances from the node and shifts known assets
// to decimal amounts. Unknown assets are skipped.
func chainBalances(ctx context.Context, client *chain.Client, address string) (map[string]string, error) {
	res, err := client.NEP17Balances(ctx, address)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string)
	for _, b := range res.Balance {
		hash := strings.ToLower(b.AssetHash)
		if d, ok := config.Decimals[hash]; ok {
			out[hash] = neo.IntegerToDecimal(b.Amount, d)
		}
	}
	return out, nil
}

// balancePairs renders the three protocol assets first, in a fixed order,
// followed by any other asset the wallet reported. USD values are added when
// the quote has a price for the asset; bNEO is valued like NEO.
func balancePairs(b map[string]string, q price.Quote) [][2]string {
	lower := make(map[string]string, len(b))
	for k, v := range b {
		lower[strings.ToLower(k)] = v
	}
	usd := map[string]decimal.Decimal{
		strings.ToLower(cfg.Contracts.NEO):  q.NEO,
		strings.ToLower(cfg.Contracts.GAS):  q.GAS,
		strings.ToLower(cfg.Contracts.BNEO): q.NEO,
	}

	var pairs [][2]string
	known := []string{cfg.Contracts.NEO, cfg.Contracts.GAS, cfg.Contracts.BNEO}
	for _, hash := range known {
		hash = strings.ToLower(hash)
		amount := lower[hash]
		if amount == "" {
			amount = "0"
		}
		pairs = append(pairs, [2]string{symbolOf(hash), amountWithUSD(amount, usd[hash])})
		delete(lower, hash)
	}
	for _, hash := range sortedKeys(lower) {
		pairs = append(pairs, [2]string{symbolOf(hash), neo.FormatNumber(lower[hash])})
	}
	return pairs
}

func amountWithUSD(amount string, unit decimal.Decimal) string {
	s := neo.FormatNumber(amount)
	if unit.IsZero() {
		return s
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return s
	}
	return s + "  ≈ " + neo.FormatNumber(d.Mul(unit).String(), neo.WithDecimals(2), neo.WithSymbol("$"))
}

func sortedKeys(m map[string]string) []string {
	return slices.Sorted(maps.Keys(m))
}

func watchInterval() time.Duration {
	if cfg.WatchInterval <= 0 {
		return 15 * time.Second
	}
	return time.Duration(cfg.WatchInterval) * time.Second
}

// unclaimedFor returns the claimable GAS of address or "" when unknown.
func unclaimedFor(ctx context.Context, reader *burger.Reader, address string) string {
	v, err := reader.UnclaimedGAS(ctx, address)
	if err != nil {
		log.Debug().Err(err).Msg("unclaimed GAS unavailable")
		return ""
	}
	return v
}

func init() {
	balanceCmd.Flags().BoolVar(&balanceWatch, "watch", false, "refresh every watch_interval until q is pressed")
}
