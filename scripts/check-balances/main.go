// check-balances queries NEO, GAS and bNEO holdings for a set of addresses on
// mainnet and testnet in parallel and prints a summary table.
//
// Run from the module root:
//
//	go run ./scripts/check-balances [address...]
package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/neoburger/burgerctl/internal/chain"
	"github.com/neoburger/burgerctl/internal/config"
	"github.com/neoburger/burgerctl/internal/neo"
)

var defaultAddresses = []string{
	"NVg7LjGcUSrgxgjX3zEgqaksfMaiS8Z6e1",
	"NPmdLGJN47EddqYcxixdGMhtkr7Z5w4Aos",
}

var endpoints = map[string]string{
	"mainnet": config.MainnetRPC,
	"testnet": config.TestnetRPC,
}

var assets = []string{config.NEOHash, config.GASHash, config.BNEOHash}

const rpcTimeout = 12 * time.Second

type result struct {
	mode    string
	address string
	amounts map[string]string // asset hash -> decimal amount
	err     string
}

func main() {
	addresses := os.Args[1:]
	if len(addresses) == 0 {
		addresses = defaultAddresses
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results []result
	)
	for mode, url := range endpoints {
		client := chain.New(url, url)
		for _, addr := range addresses {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
				defer cancel()

				r := result{mode: mode, address: addr}
				if _, err := neo.ScriptHashFromAddress(addr); err != nil {
					r.err = "invalid address"
				} else if res, err := client.NEP17Balances(ctx, addr); err != nil {
					r.err = shortErr(err)
				} else {
					r.amounts = make(map[string]string)
					for _, b := range res.Balance {
						hash := strings.ToLower(b.AssetHash)
						if d, ok := config.Decimals[hash]; ok {
							r.amounts[hash] = neo.IntegerToDecimal(b.Amount, d)
						}
					}
				}

				mu.Lock()
				results = append(results, r)
				mu.Unlock()
			}()
		}
	}
	wg.Wait()

	printTable(results)
}

func printTable(results []result) {
	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.mode != b.mode {
			return a.mode < b.mode
		}
		return a.address < b.address
	})

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MODE\tADDRESS\tNEO\tGAS\tBNEO\tNOTE")
	lastMode := ""
	for _, r := range results {
		if lastMode != "" && r.mode != lastMode {
			fmt.Fprintln(w, "\t\t\t\t\t")
		}
		lastMode = r.mode
		cells := []string{r.mode, shortAddr(r.address)}
		for _, hash := range assets {
			v := "-"
			if r.amounts != nil {
				v = r.amounts[hash]
				if v == "" {
					v = "0"
				}
			}
			cells = append(cells, v)
		}
		cells = append(cells, r.err)
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	w.Flush()
}

func shortAddr(addr string) string {
	if len(addr) < 12 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}

func shortErr(err error) string {
	s := err.Error()
	if len(s) > 30 {
		return s[:30] + "…"
	}
	return s
}
