package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/neoburger/burgerctl/internal/burger"
	"github.com/neoburger/burgerctl/internal/config"
	"github.com/neoburger/burgerctl/internal/neo"
	"github.com/neoburger/burgerctl/internal/ui"
)

var (
	swapYes    bool
	swapDryRun bool
)

var mintCmd = &cobra.Command{
	Use:   "mint <neo-amount>",
	Short: "Deposit NEO and receive bNEO 1:1",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAction(cmd, burger.Mint, args[0])
	},
}

var redeemCmd = &cobra.Command{
	Use:   "redeem <bneo-amount>",
	Short: "Burn bNEO for NEO, paying the redemption fee in GAS",
	Long: fmt.Sprintf(`Burn bNEO for NEO. The wallet transfers %s GAS per bNEO
redeemed to the bNEO contract, which burns the bNEO and returns NEO.`, config.RedeemRate),
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAction(cmd, burger.Redeem, args[0])
	},
}

var claimCmd = &cobra.Command{
	Use:   "claim",
	Short: "Claim the GAS rewards accrued by your bNEO",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAction(cmd, burger.ClaimGAS, "")
	},
}

// runAction plans, simulates, prices and finally submits one protocol
// transfer through the connected wallet.
func runAction(cmd *cobra.Command, action burger.Action, amount string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	client, err := queryClient(ctx)
	if err != nil {
		return err
	}
	reader := newReader(client)
	plan, err := reader.PlanFor(action, amount)
	if err != nil {
		return err
	}

	reg, _ := openWallets(ctx, client)
	a, from, err := connect(ctx, reg)
	if err != nil {
		return err
	}

	pairs, err := preflight(ctx, reader, from, plan, a.GetPublicKey(ctx))
	if err != nil {
		return err
	}
	if action == burger.ClaimGAS {
		pairs = append(pairs, [2]string{"Claimable", neo.FormatNumber(unclaimedFor(ctx, reader, from), neo.WithDecimals(8)) + " GAS"})
	}
	fmt.Fprintln(out, ui.KeyValueBlock(actionTitle(plan, amount), pairs))

	if swapDryRun {
		return nil
	}
	if !swapYes {
		if !interactive() {
			return fmt.Errorf("refusing to submit without --yes when not attached to a terminal")
		}
		if !ui.ConfirmDanger("Send this transaction to " + cfg.NetworkMode + "?") {
			fmt.Fprintln(out, ui.Meta("cancelled"))
			return nil
		}
	}
	return submit(ctx, out, actionTitle(plan, amount), func(ctx context.Context) neo.Outcome {
		return a.Transfer(ctx, plan.Contract, plan.Amount)
	})
}

// preflight dry-runs the transfer and estimates the network fee. A FAULT
// simulation aborts; an unreachable node only loses the estimates.
func preflight(ctx context.Context, reader *burger.Reader, from string, plan burger.Plan, publicKey string) ([][2]string, error) {
	pairs := [][2]string{
		{"From", from},
		{"Transfer", planAmount(plan)},
	}

	res, err := reader.DryRun(ctx, from, plan)
	switch {
	case err != nil:
		log.Warn().Err(err).Msg("simulation unavailable")
	case !res.Halted():
		msg := res.State
		if res.Exception != nil {
			msg = *res.Exception
		}
		return nil, fmt.Errorf("%w: %s", errSimulation, msg)
	default:
		pairs = append(pairs, [2]string{"System fee", neo.IntegerToDecimal(res.GasConsumed, 8) + " GAS"})
	}

	fee, err := reader.NetworkFee(ctx, plan.Contract, from, plan.Amount, publicKey)
	switch {
	case err != nil:
		log.Warn().Err(err).Msg("network fee unavailable")
	case fee == "0":
		pairs = append(pairs, [2]string{"Network fee", "unknown (wallet hides its public key)"})
	default:
		pairs = append(pairs, [2]string{"Network fee", neo.IntegerToDecimal(fee, 8) + " GAS"})
	}
	return pairs, nil
}

func planAmount(p burger.Plan) string {
	decimals := int32(8)
	if sameHash(p.Contract, cfg.Contracts.NEO) {
		decimals = 0
	}
	return neo.FormatNumber(neo.IntegerToDecimal(p.Amount, decimals)) + " " + symbolOf(p.Contract)
}

func actionTitle(p burger.Plan, amount string) string {
	switch p.Action {
	case burger.Mint:
		return "Mint " + amount + " bNEO"
	case burger.Redeem:
		return "Redeem " + amount + " bNEO"
	}
	return "Claim GAS"
}

func init() {
	for _, c := range []*cobra.Command{mintCmd, redeemCmd, claimCmd} {
		c.Flags().BoolVarP(&swapYes, "yes", "y", false, "submit without asking")
		c.Flags().BoolVar(&swapDryRun, "dry-run", false, "simulate and estimate fees only")
	}
}
