package cmd

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/spf13/cobra"

	"github.com/neoburger/burgerctl/internal/chain"
	"github.com/neoburger/burgerctl/internal/confirm"
	"github.com/neoburger/burgerctl/internal/neo"
	"github.com/neoburger/burgerctl/internal/ui"
)

var txWait bool

var txIDPattern = regexp.MustCompile(`^(0x)?[0-9a-fA-F]{64}$`)

var txCmd = &cobra.Command{
	Use:   "tx <txid>",
	Short: "Show the execution verdict of a transaction",
	Long: `Look up the application log of a transaction. With --wait the lookup
is repeated on the configured poll schedule until the transaction executes.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		txid := args[0]
		if !txIDPattern.MatchString(txid) {
			return fmt.Errorf("invalid transaction id %q", txid)
		}
		ctx := cmd.Context()
		out := cmd.OutOrStdout()
		client, err := queryClient(ctx)
		if err != nil {
			return err
		}

		if txWait {
			if err := submit(ctx, out, "Waiting for "+ui.TruncateAddr(txid), func(ctx context.Context) neo.Outcome {
				return waitOutcome(ctx, client, txid)
			}); err != nil && !errors.Is(err, errTxFailed) {
				return err
			}
		}

		applog, err := client.ApplicationLog(ctx, txid)
		if err != nil {
			var rpcErr *chain.RPCError
			if errors.As(err, &rpcErr) {
				fmt.Fprintln(out, ui.Warn("not found yet: the transaction is pending or unknown to "+client.Primary()))
				return nil
			}
			return err
		}
		fmt.Fprintln(out, ui.KeyValueBlock("Transaction", txPairs(txid, applog)))
		return nil
	},
}

// waitOutcome polls the application log of txid on the configured schedule.
func waitOutcome(ctx context.Context, client *chain.Client, txid string) neo.Outcome {
	initial, multiplier, attempts := cfg.PollSchedule()
	p := confirm.New(client.ApplicationLog,
		confirm.WithBackoff(confirm.Exponential{Initial: initial, Multiplier: multiplier}),
		confirm.WithMaxAttempts(attempts),
		confirm.WithLogger(log),
	)
	status, err := p.Wait(ctx, txid)
	return neo.Outcome{Status: status, TxID: txid, Err: err}
}

func txPairs(txid string, l *neo.ApplicationLog) [][2]string {
	status, ok := l.Verdict()
	verdict := ui.Warn("pending")
	switch {
	case !ok:
	case status == neo.StatusSuccess:
		verdict = ui.Success("HALT")
	default:
		verdict = ui.Err(l.Executions[0].VMState)
	}
	pairs := [][2]string{
		{"TxID", txid},
		{"Verdict", verdict},
	}
	if !ok {
		return pairs
	}
	e := l.Executions[0]
	if e.Trigger != "" {
		pairs = append(pairs, [2]string{"Trigger", e.Trigger})
	}
	if e.GasConsumed != "" {
		pairs = append(pairs, [2]string{"GAS consumed", neo.IntegerToDecimal(e.GasConsumed, 8)})
	}
	if e.Exception != "" {
		pairs = append(pairs, [2]string{"Exception", e.Exception})
	}
	return pairs
}

func init() {
	txCmd.Flags().BoolVar(&txWait, "wait", false, "poll until the transaction executes")
}
