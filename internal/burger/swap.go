package burger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/neoburger/burgerctl/internal/config"
	"github.com/neoburger/burgerctl/internal/neo"
)

// ErrInvalidAmount is returned for amounts that are not positive numbers.
var ErrInvalidAmount = errors.New("invalid amount")

// Action is a protocol operation performed by a token transfer to the bNEO
// contract.
type Action string

const (
	Mint     Action = "mint"   // NEO in, bNEO out
	Redeem   Action = "redeem" // GAS fee in, NEO out
	ClaimGAS Action = "claim"  // zero bNEO transfer pays out rewards
)

// Plan is the transfer that performs an action.
type Plan struct {
	Action   Action
	Contract string
	// Amount is in the smallest unit of Contract.
	Amount string
}

// PlanFor builds the transfer for action. amount is NEO for mint and bNEO
// for redeem; it is ignored for claim.
func (r *Reader) PlanFor(action Action, amount string) (Plan, error) {
	switch action {
	case Mint:
		d, err := positive(amount)
		if err != nil {
			return Plan{}, err
		}
		if !d.Equal(d.Truncate(0)) {
			return Plan{}, fmt.Errorf("%w: NEO is indivisible", ErrInvalidAmount)
		}
		return Plan{Action: action, Contract: r.contracts.NEO, Amount: d.String()}, nil
	case Redeem:
		d, err := positive(amount)
		if err != nil {
			return Plan{}, err
		}
		fee := d.Mul(decimal.RequireFromString(config.RedeemRate))
		return Plan{Action: action, Contract: r.contracts.GAS, Amount: neo.DecimalToInteger(fee.String(), 8)}, nil
	case ClaimGAS:
		return Plan{Action: action, Contract: r.contracts.BNEO, Amount: "0"}, nil
	}
	return Plan{}, fmt.Errorf("unknown action %q", action)
}

func positive(amount string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, amount)
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %s must be greater than zero", ErrInvalidAmount, amount)
	}
	return d, nil
}

// DryRun simulates p signed by from. A FAULT result means the wallet
// transfer would fail.
func (r *Reader) DryRun(ctx context.Context, from string, p Plan) (*neo.InvokeResult, error) {
	sender, err := neo.ScriptHashFromAddress(from)
	if err != nil {
		return nil, err
	}
	receiver, err := neo.ScriptHashFromAddress(r.toAddress)
	if err != nil {
		return nil, err
	}
	return r.chain.InvokeFunction(ctx, p.Contract, "transfer", []neo.Param{
		neo.Hash160(sender),
		neo.Hash160(receiver),
		neo.Integer(p.Amount),
		neo.Any(),
	}, sender)
}
