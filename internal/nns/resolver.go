// Package nns resolves Neo Name Service domains to N3 addresses.
package nns

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	nnsrpc "github.com/nspcc-dev/neo-go/pkg/rpcclient/nns"

	"github.com/neoburger/burgerctl/internal/chain"
	"github.com/neoburger/burgerctl/internal/neo"
)

// ErrNotFound is returned when a domain has neither an address record nor
// an owner.
var ErrNotFound = errors.New("name not registered")

// NNS contract, same hash on mainnet and testnet.
const ContractHash = "0x50ac1c37690cc2cfc594472833cf57505d5f46de"

var labelPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)

// IsName reports whether s looks like a domain rather than an address:
// at least two labels of lowercase letters, digits and hyphens.
func IsName(s string) bool {
	labels := strings.Split(strings.ToLower(s), ".")
	if len(labels) < 2 || len(s) > 255 {
		return false
	}
	for _, l := range labels {
		if !labelPattern.MatchString(l) {
			return false
		}
	}
	return true
}

// Resolve returns the address a domain points to. The TXT record is
// consulted first; a domain without one resolves to its owner.
func Resolve(ctx context.Context, client *chain.Client, contract, name string) (string, error) {
	if contract == "" {
		contract = ContractHash
	}
	name = strings.ToLower(name)

	res, err := client.InvokeFunction(ctx, contract, "resolve",
		[]neo.Param{neo.String(name), neo.Integer(strconv.Itoa(int(nnsrpc.TXT)))}, "")
	if err != nil {
		return "", fmt.Errorf("querying NNS resolve: %w", err)
	}
	if res.Halted() {
		if item, err := res.First(); err == nil && !item.IsNull() {
			if txt, err := item.Text(); err == nil {
				if addr, ok := parseRecord(txt); ok {
					return addr, nil
				}
			}
		}
	}

	res, err = client.InvokeFunction(ctx, contract, "ownerOf", []neo.Param{neo.String(name)}, "")
	if err != nil {
		return "", fmt.Errorf("querying NNS owner: %w", err)
	}
	if !res.Halted() {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	item, err := res.First()
	if err != nil || item.IsNull() {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	b64, err := item.Base64()
	if err != nil {
		return "", err
	}
	hash, err := neo.ScriptHashFromStackBytes(b64)
	if err != nil {
		return "", err
	}
	return neo.AddressFromScriptHash(hash)
}

// parseRecord accepts an address or a 0x script hash.
func parseRecord(txt string) (string, bool) {
	txt = strings.TrimSpace(txt)
	if _, err := neo.ScriptHashFromAddress(txt); err == nil {
		return txt, true
	}
	if strings.HasPrefix(txt, "0x") {
		if addr, err := neo.AddressFromScriptHash(txt); err == nil {
			return addr, true
		}
	}
	return "", false
}
