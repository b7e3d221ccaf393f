package burger

import (
	"context"
	"fmt"
	"net/http"

	"github.com/neoburger/burgerctl/internal/neo"
)

// AssetInfo is the holder summary published by the asset explorer.
type AssetInfo struct {
	Hash      string `json:"hash"`
	Symbol    string `json:"symbol"`
	Decimals  int    `json:"decimals"`
	Addresses int    `json:"addresses"`
}

// Claim is one NoBug airdrop entitlement.
type Claim struct {
	ScriptHash string
	Amount     string
	Nonce      string
	Proof      []string
}

// NoBugSupply returns the NoBug token supply.
func (r *Reader) NoBugSupply(ctx context.Context) (string, error) {
	v, err := r.integer(ctx, r.contracts.NoBug, "totalSupply")
	if err != nil {
		return "", err
	}
	return neo.ShiftedBy(v, -10), nil
}

// NoBugClaimed dry-runs the claim of c. A claim that faults has already
// been made.
func (r *Reader) NoBugClaimed(ctx context.Context, c Claim) (bool, error) {
	if r.contracts.NoBug == "" {
		return false, fmt.Errorf("claim: contract not configured")
	}
	proof := make([]neo.Param, len(c.Proof))
	for i, p := range c.Proof {
		proof[i] = neo.Hash256(p)
	}
	res, err := r.chain.InvokeFunction(ctx, r.contracts.NoBug, "claim", []neo.Param{
		neo.Hash160(c.ScriptHash),
		neo.Integer(c.Amount),
		neo.Integer(c.Nonce),
		neo.Array(proof...),
	}, "")
	if err != nil {
		return false, err
	}
	return res.State == neo.VMStateFault, nil
}

// NoBugInfo returns the NoBug holder summary.
func (r *Reader) NoBugInfo(ctx context.Context) (*AssetInfo, error) {
	if r.contracts.NoBug == "" {
		return nil, fmt.Errorf("nobug contract not configured")
	}
	var resp struct {
		Data AssetInfo `json:"data"`
	}
	header := http.Header{"Network": []string{r.network}}
	if err := r.getJSON(ctx, fmt.Sprintf(r.assetURL, r.contracts.NoBug), header, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}
