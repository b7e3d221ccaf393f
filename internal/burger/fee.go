package burger

import (
	"context"
	"encoding/base64"
	"fmt"
	"math/big"
	"strings"

	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
	"github.com/nspcc-dev/neo-go/pkg/crypto/keys"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract"
	"github.com/nspcc-dev/neo-go/pkg/util"

	"github.com/neoburger/burgerctl/internal/config"
)

// TransferScript builds the NEP-17 transfer of amount (smallest unit) of
// the token at contract from one address to another.
func TransferScript(contract, from, to, amount string) ([]byte, error) {
	token, err := util.Uint160DecodeStringLE(strings.TrimPrefix(contract, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid contract %q: %w", contract, err)
	}
	sender, err := address.StringToUint160(from)
	if err != nil {
		return nil, fmt.Errorf("invalid address %q: %w", from, err)
	}
	receiver, err := address.StringToUint160(to)
	if err != nil {
		return nil, fmt.Errorf("invalid address %q: %w", to, err)
	}
	value, ok := new(big.Int).SetString(amount, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", amount)
	}
	return smartcontract.CreateCallScript(token, "transfer", sender, receiver, value, nil)
}

// TransferTx builds the unsigned protocol transfer from the account of
// publicKey, carrying the account verification script so the node can
// price its witness.
func (r *Reader) TransferTx(ctx context.Context, contract, from, amount, publicKey string) (*transaction.Transaction, error) {
	pub, err := keys.NewPublicKeyFromString(publicKey)
	if err != nil {
		return nil, fmt.Errorf("invalid public key: %w", err)
	}
	script, err := TransferScript(contract, from, r.toAddress, amount)
	if err != nil {
		return nil, err
	}
	sender, err := address.StringToUint160(from)
	if err != nil {
		return nil, err
	}
	height, err := r.chain.BlockCount(ctx)
	if err != nil {
		return nil, err
	}
	tx := transaction.New(script, 0)
	tx.ValidUntilBlock = height + config.ValidUntilBlockIncrement
	tx.Signers = []transaction.Signer{{Account: sender, Scopes: transaction.CalledByEntry}}
	tx.Scripts = []transaction.Witness{{
		InvocationScript:   []byte{},
		VerificationScript: pub.GetVerificationScript(),
	}}
	return tx, nil
}

// NetworkFee estimates the network fee, in GAS fractions, of transferring
// amount of contract to the protocol. It is "0" when the wallet exposes no
// public key.
func (r *Reader) NetworkFee(ctx context.Context, contract, from, amount, publicKey string) (string, error) {
	if publicKey == "" {
		return "0", nil
	}
	tx, err := r.TransferTx(ctx, contract, from, amount, publicKey)
	if err != nil {
		return "", err
	}
	return r.chain.CalculateNetworkFee(ctx, base64.StdEncoding.EncodeToString(tx.Bytes()))
}
