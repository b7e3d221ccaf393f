package cmd

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/neoburger/burgerctl/internal/providers"
	contractsync "github.com/neoburger/burgerctl/internal/sync"
	"github.com/neoburger/burgerctl/internal/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show current configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s\n\n", ui.StyleTitle.Render("Current Configuration"))
		fmt.Fprintln(out, string(data))
		fmt.Fprintln(out, ui.Meta("Config directory: "+cfg.Dir()))
		return nil
	},
}

var configSetDefaultWalletCmd = &cobra.Command{
	Use:   "set-default-wallet <name>",
	Short: "Set the wallet used when --wallet is absent",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := knownWallet(args[0]); err != nil {
			return err
		}
		cfg.DefaultWallet = args[0]
		if err := saveConfig(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Default wallet set to %q", args[0])))
		return nil
	},
}

var configSetNetworkModeCmd = &cobra.Command{
	Use:       "set-network-mode <mainnet|testnet>",
	Short:     "Set the network mode",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"mainnet", "testnet"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.SetNetworkMode(args[0]); err != nil {
			return err
		}
		persistedMode = cfg.NetworkMode
		if err := saveConfig(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Network mode set to %q", args[0])))
		return nil
	},
}

var configSetBridgeCmd = &cobra.Command{
	Use:   "set-bridge <wallet> <url>",
	Short: "Set the dAPI bridge address of a wallet provider",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, u := args[0], args[1]
		if err := knownWallet(name); err != nil {
			return err
		}
		if err := validEndpoint(u); err != nil {
			return err
		}
		if cfg.Bridges == nil {
			cfg.Bridges = make(map[string]string)
		}
		cfg.Bridges[name] = u
		if err := saveConfig(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Bridge for %s set to %s", name, u)))
		return nil
	},
}

var configSetWatchIntervalCmd = &cobra.Command{
	Use:   "set-watch-interval <seconds>",
	Short: "Set the refresh period of --watch views",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return fmt.Errorf("interval must be a positive number of seconds, got %q", args[0])
		}
		cfg.WatchInterval = n
		if err := saveConfig(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Watch interval set to %ds", n)))
		return nil
	},
}

var configSetPollCmd = &cobra.Command{
	Use:   "set-poll <initial-seconds> <multiplier> [max-attempts]",
	Short: "Set the confirmation polling schedule",
	Long: `Set the confirmation polling schedule. Lookups happen immediately, then
after initial, initial*multiplier, initial*multiplier^2 seconds and so on.
A max-attempts of 0 polls until interrupted.`,
	Args: cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		initial, err := strconv.ParseFloat(args[0], 64)
		if err != nil || initial <= 0 {
			return fmt.Errorf("initial must be a positive number of seconds, got %q", args[0])
		}
		mult, err := strconv.ParseFloat(args[1], 64)
		if err != nil || mult < 1 {
			return fmt.Errorf("multiplier must be at least 1, got %q", args[1])
		}
		attempts := 0
		if len(args) == 3 {
			if attempts, err = strconv.Atoi(args[2]); err != nil || attempts < 0 {
				return fmt.Errorf("max-attempts must be a non-negative integer, got %q", args[2])
			}
		}
		cfg.Poll.InitialSeconds, cfg.Poll.Multiplier, cfg.Poll.MaxAttempts = initial, mult, attempts
		if err := saveConfig(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Polling every %gs x%g, %d attempts max", initial, mult, attempts)))
		return nil
	},
}

var configSyncSource string

var configSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Refresh contract hashes and endpoints from a deployments manifest",
	Long: `Download the deployments manifest and apply the entry of the active
network mode. Hashes the manifest leaves out keep their current value.

  burgerctl config sync --source https://example.com/deployments.json
  burgerctl config sync --testnet`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if configSyncSource != "" {
			if err := validEndpoint(configSyncSource); err != nil {
				return err
			}
			cfg.ContractsSource = configSyncSource
		}
		spin := ui.NewSpinner("Fetching deployments manifest...")
		spin.Start()
		d, err := contractsync.New(cfg, contractsync.WithLogger(log)).Run(cmd.Context())
		spin.Stop()
		if err != nil {
			return err
		}
		if err := saveConfig(); err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ui.Success(fmt.Sprintf("Synced %s contracts from %s", cfg.NetworkMode, cfg.ContractsSource)))
		fmt.Fprintln(out, ui.KeyValueBlock("Contracts", [][2]string{
			{"bNEO", cfg.Contracts.BNEO},
			{"NoBug", orMeta(cfg.Contracts.NoBug)},
			{"Governance", orMeta(cfg.Contracts.Governance)},
			{"Committee info", orMeta(cfg.Contracts.CommitteeInfo)},
			{"NNS", orMeta(cfg.Contracts.NNS)},
			{"Endpoints", fmt.Sprint(len(d.RPC))},
		}))
		return nil
	},
}

func orMeta(s string) string {
	if s == "" {
		return ui.Meta("unset")
	}
	return s
}

// saveConfig persists cfg without the per-invocation --testnet/--mainnet
// override.
func saveConfig() error {
	mode := cfg.NetworkMode
	cfg.NetworkMode = persistedMode
	defer func() { cfg.NetworkMode = mode }()
	return cfg.Save()
}

func knownWallet(name string) error {
	if slices.Contains(providers.Names, name) {
		return nil
	}
	return fmt.Errorf("unknown wallet %q (known: %v)", name, providers.Names)
}

func init() {
	configCmd.AddCommand(
		configListCmd,
		configSetDefaultWalletCmd,
		configSetNetworkModeCmd,
		configSetBridgeCmd,
		configSetWatchIntervalCmd,
		configSetPollCmd,
		configSyncCmd,
	)
	configSyncCmd.Flags().StringVar(&configSyncSource, "source", "", "manifest URL (saved for later syncs)")
}
