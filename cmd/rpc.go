package cmd

import (
	"context"
	"fmt"
	"net/url"
	"slices"

	"github.com/spf13/cobra"

	"github.com/neoburger/burgerctl/internal/config"
	"github.com/neoburger/burgerctl/internal/rpc"
	"github.com/neoburger/burgerctl/internal/ui"
)

var rpcCmd = &cobra.Command{
	Use:   "rpc",
	Short: "Manage Neo N3 query endpoints",
}

var rpcAddCmd = &cobra.Command{
	Use:   "add <url>",
	Short: "Add a custom endpoint for the active network mode",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		u := args[0]
		if err := validEndpoint(u); err != nil {
			return err
		}
		if err := cfg.AddRPC(cfg.NetworkMode, u); err != nil {
			return err
		}
		if err := saveConfig(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Added %s endpoint %s", cfg.NetworkMode, u)))
		return nil
	},
}

var rpcRemoveCmd = &cobra.Command{
	Use:   "remove <url>",
	Short: "Remove a custom endpoint of the active network mode",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.RemoveRPC(cfg.NetworkMode, args[0]); err != nil {
			return err
		}
		if err := saveConfig(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Removed %s endpoint %s", cfg.NetworkMode, args[0])))
		return nil
	},
}

var rpcListCmd = &cobra.Command{
	Use:   "list",
	Short: "List endpoints of the active network mode in order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ui.StyleTitle.Render(fmt.Sprintf("Endpoints (%s, %s)", cfg.NetworkMode, cfg.RPCAlgorithm)))
		custom := cfg.GetRPCs(cfg.NetworkMode)
		for i, u := range cfg.Endpoints() {
			tag := ""
			switch {
			case slices.Contains(custom, u):
				tag = ui.Meta("(custom)")
			case i == 0:
				tag = ui.Meta("(primary)")
			}
			fmt.Fprintf(out, "  %d. %s %s\n", i+1, u, tag)
		}
		return nil
	},
}

var rpcBenchmarkCmd = &cobra.Command{
	Use:   "benchmark",
	Short: "Measure every endpoint and show which pair would be used",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		urls := cfg.Endpoints()
		ctx, cancel := context.WithTimeout(cmd.Context(), config.RPCTimeout)
		defer cancel()

		spin := ui.NewSpinner(fmt.Sprintf("Benchmarking %d endpoints...", len(urls)))
		spin.Start()
		results := rpc.Benchmark(ctx, urls)
		spin.Stop()

		fmt.Fprintln(out, benchmarkTable(results).Render())
		winner, err := rpc.NewPicker(rpc.Algorithm(cfg.RPCAlgorithm)).Pick(rpc.ResultsToEndpoints(results))
		if err != nil {
			return err
		}
		fmt.Fprintln(out, ui.Hint(fmt.Sprintf("%s would use %s", cfg.RPCAlgorithm, winner.URL)))
		return nil
	},
}

func benchmarkTable(results []rpc.BenchmarkResult) *ui.Table {
	t := ui.NewTable([]ui.Column{
		{Title: "Endpoint", Width: 40},
		{Title: "Latency", Width: 10, Right: true},
		{Title: "Height", Width: 10, Right: true},
		{Title: "Status", Width: 10},
	})
	for _, r := range results {
		if r.Err != nil {
			t.AddRow(ui.Row{r.URL, "-", "-", "down"})
			continue
		}
		t.AddRow(ui.Row{r.URL, fmt.Sprintf("%dms", r.Latency.Milliseconds()), fmt.Sprint(r.Height), "healthy"})
	}
	return t
}

var rpcAlgorithmCmd = &cobra.Command{
	Use:   "algorithm",
	Short: "Show or set how the primary endpoint is chosen",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), cfg.RPCAlgorithm)
		return nil
	},
}

var rpcAlgorithmSetCmd = &cobra.Command{
	Use:       "set <failover|fastest>",
	Short:     "Set the endpoint selection algorithm",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(rpc.AlgorithmFailover), string(rpc.AlgorithmFastest)},
	RunE: func(cmd *cobra.Command, args []string) error {
		algo := rpc.Algorithm(args[0])
		if !algo.Valid() {
			return fmt.Errorf("invalid algorithm %q, choose failover or fastest", args[0])
		}
		cfg.RPCAlgorithm = string(algo)
		if err := saveConfig(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("RPC algorithm set to %q", algo)))
		return nil
	},
}

func validEndpoint(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("endpoint must be an http(s) URL, got %q", raw)
	}
	return nil
}

func init() {
	rpcAlgorithmCmd.AddCommand(rpcAlgorithmSetCmd)
	rpcCmd.AddCommand(rpcAddCmd, rpcRemoveCmd, rpcListCmd, rpcBenchmarkCmd, rpcAlgorithmCmd)
}
