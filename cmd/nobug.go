package cmd

import (
	"context"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/neoburger/burgerctl/internal/burger"
	"github.com/neoburger/burgerctl/internal/neo"
	"github.com/neoburger/burgerctl/internal/ui"
)

var (
	nobugAmount string
	nobugNonce  string
	nobugProof  []string
)

var nobugCmd = &cobra.Command{
	Use:   "nobug",
	Short: "NoBug token supply and holders",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		client, err := queryClient(ctx)
		if err != nil {
			return err
		}
		reader := newReader(client)
		supply, err := reader.NoBugSupply(ctx)
		if err != nil {
			return err
		}
		pairs := [][2]string{
			{"Contract", cfg.Contracts.NoBug},
			{"Total supply", neo.FormatNumber(supply)},
		}
		if info, err := reader.NoBugInfo(ctx); err != nil {
			log.Debug().Err(err).Msg("holder count unavailable")
		} else {
			pairs = append(pairs, [2]string{"Holders", strconv.Itoa(info.Addresses)})
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.KeyValueBlock("NoBug", pairs))
		return nil
	},
}

var nobugClaimCmd = &cobra.Command{
	Use:   "claim",
	Short: "Claim a NoBug allocation with its Merkle proof",
	Long: `Claim a NoBug allocation. The amount, nonce and proof come from the
published airdrop list for your address.

Example:
  burgerctl nobug claim --amount 1250000000000 --nonce 7 \
    --proof 0x9f..01,0x33..ae`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()
		client, err := queryClient(ctx)
		if err != nil {
			return err
		}
		reader := newReader(client)

		reg, _ := openWallets(ctx, client)
		a, from, err := connect(ctx, reg)
		if err != nil {
			return err
		}
		claim, err := nobugClaim(from, nobugAmount, nobugNonce, nobugProof)
		if err != nil {
			return err
		}

		claimed, err := reader.NoBugClaimed(ctx, claim)
		if err != nil {
			log.Warn().Err(err).Msg("could not check claim status")
		} else if claimed {
			fmt.Fprintln(out, ui.Info("this allocation has already been claimed"))
			return nil
		}

		fmt.Fprintln(out, ui.KeyValueBlock("NoBug claim", [][2]string{
			{"Account", from},
			{"Amount", neo.FormatNumber(neo.IntegerToDecimal(claim.Amount, 10)) + " NoBug"},
			{"Proof", fmt.Sprintf("%d hashes", len(claim.Proof))},
		}))
		return submit(ctx, out, "Claiming NoBug", func(ctx context.Context) neo.Outcome {
			return a.ClaimNoBug(ctx, claim.ScriptHash, claim.Amount, claim.Nonce, claim.Proof)
		})
	},
}

// nobugClaim validates the flags of a claim for address.
func nobugClaim(address, amount, nonce string, proof []string) (burger.Claim, error) {
	hash, err := neo.ScriptHashFromAddress(address)
	if err != nil {
		return burger.Claim{}, err
	}
	for _, v := range []string{amount, nonce} {
		if n, ok := new(big.Int).SetString(v, 10); !ok || n.Sign() < 0 {
			return burger.Claim{}, fmt.Errorf("amount and nonce must be non-negative integers, got %q", v)
		}
	}
	hashes := make([]string, 0, len(proof))
	for _, p := range proof {
		p = strings.TrimSpace(p)
		if len(strings.TrimPrefix(p, "0x")) != 64 {
			return burger.Claim{}, fmt.Errorf("proof entry %q is not a 32-byte hash", p)
		}
		hashes = append(hashes, p)
	}
	return burger.Claim{ScriptHash: hash, Amount: amount, Nonce: nonce, Proof: hashes}, nil
}

func init() {
	f := nobugClaimCmd.Flags()
	f.StringVar(&nobugAmount, "amount", "", "allocation in the smallest unit")
	f.StringVar(&nobugNonce, "nonce", "", "allocation nonce")
	f.StringSliceVar(&nobugProof, "proof", nil, "comma separated Merkle proof hashes")
	_ = nobugClaimCmd.MarkFlagRequired("amount")
	_ = nobugClaimCmd.MarkFlagRequired("nonce")
	nobugCmd.AddCommand(nobugClaimCmd)
}
