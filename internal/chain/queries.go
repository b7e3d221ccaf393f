package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/neoburger/burgerctl/internal/neo"
)

// NEP17Balance is one entry of getnep17balances.
type NEP17Balance struct {
	AssetHash        string `json:"assethash"`
	Amount           string `json:"amount"`
	LastUpdatedBlock uint32 `json:"lastupdatedblock"`
}

// NEP17Balances is the getnep17balances result.
type NEP17Balances struct {
	Address string         `json:"address"`
	Balance []NEP17Balance `json:"balance"`
}

// BlockCount returns the current chain height.
func (c *Client) BlockCount(ctx context.Context) (uint32, error) {
	var n uint32
	if err := c.call(ctx, "getblockcount", nil, &n); err != nil {
		return 0, err
	}
	return n, nil
}

// InvokeFunction runs a read-only contract call. When signer is a script
// hash the call is simulated as signed by it with CalledByEntry scope.
func (c *Client) InvokeFunction(ctx context.Context, contract, method string, args []neo.Param, signer string) (*neo.InvokeResult, error) {
	if args == nil {
		args = []neo.Param{}
	}
	params := []any{contract, method, args}
	if signer != "" {
		params = append(params, []neo.RPCSigner{neo.NewRPCSigner(signer)})
	}
	var res neo.InvokeResult
	if err := c.call(ctx, "invokefunction", params, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// InvokeScript runs a base64 script.
func (c *Client) InvokeScript(ctx context.Context, script, signer string) (*neo.InvokeResult, error) {
	params := []any{script}
	if signer != "" {
		params = append(params, []neo.RPCSigner{neo.NewRPCSigner(signer)})
	}
	var res neo.InvokeResult
	if err := c.call(ctx, "invokescript", params, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// NEP17Balances returns the fungible token balances of address.
func (c *Client) NEP17Balances(ctx context.Context, address string) (*NEP17Balances, error) {
	var res NEP17Balances
	if err := c.call(ctx, "getnep17balances", []any{address}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ApplicationLog returns the execution log of txid. Nodes that have not
// indexed the transaction yet answer with an RPC error.
func (c *Client) ApplicationLog(ctx context.Context, txid string) (*neo.ApplicationLog, error) {
	var res neo.ApplicationLog
	if err := c.call(ctx, "getapplicationlog", []any{txid}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// CalculateNetworkFee returns the network fee, in GAS fractions, of a
// base64 serialized transaction.
func (c *Client) CalculateNetworkFee(ctx context.Context, tx string) (string, error) {
	var res struct {
		NetworkFee json.Number `json:"networkfee"`
	}
	if err := c.call(ctx, "calculatenetworkfee", []any{tx}, &res); err != nil {
		return "", err
	}
	return res.NetworkFee.String(), nil
}

// Committee returns the public keys of the current council members.
func (c *Client) Committee(ctx context.Context) ([]string, error) {
	var res []string
	if err := c.call(ctx, "getcommittee", nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// Ping queries the primary endpoint once and returns latency and height.
func (c *Client) Ping(ctx context.Context) (latency time.Duration, height uint32, err error) {
	body, _ := json.Marshal(rpcRequest{JSONRPC: "2.0", Method: "getblockcount", Params: []any{}, ID: 1})
	start := time.Now()
	raw, err := c.post(ctx, c.primary, body)
	latency = time.Since(start)
	if err != nil {
		return latency, 0, err
	}
	n, err := strconv.ParseUint(string(raw), 10, 32)
	if err != nil {
		return latency, 0, fmt.Errorf("could not parse block count: %w", err)
	}
	return latency, uint32(n), nil
}
