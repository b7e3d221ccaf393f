package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/neoburger/burgerctl/internal/config"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/neoburger/burgerctl/cmd.Version=1.2.3" .
var Version = "0.1.0"

var (
	cfgDir     string
	cfg        *config.Config
	log        = zerolog.Nop()
	verbose    bool
	testnet    bool
	mainnet    bool
	walletFlag string

	// persistedMode is the network mode stored on disk, before overrides.
	persistedMode string
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "burgerctl",
	Short: "NeoBurger from the terminal",
	Long: `burgerctl mints and redeems bNEO, claims GAS rewards, votes on
NeoBurger proposals and reports protocol statistics on Neo N3.

Transactions are signed by a browser or mobile wallet reached through its
dAPI bridge (NeoLine, NeoLine mobile, O3, OneGate) or by Neon Wallet paired
over the relay. Select one with --wallet or persist it with
  burgerctl config set-default-wallet <name>

Global flags --testnet and --mainnet override the configured network mode
for a single invocation.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		log = newLogger(cmd.ErrOrStderr(), verbose)

		var err error
		cfg, err = config.Load(cfgDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		persistedMode = cfg.NetworkMode
		if testnet {
			cfg.NetworkMode = "testnet"
		}
		if mainnet {
			cfg.NetworkMode = "mainnet"
		}
		log.Debug().Str("mode", cfg.NetworkMode).Str("dir", cfg.Dir()).Msg("config loaded")
		return nil
	},
}

// Execute runs the root command. Interrupts cancel the command context so
// pending confirmations stop cleanly.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, errLine(err))
		stop()
		os.Exit(1)
	}
}

func init() {
	// BURGERCTL_CONFIG_DIR overrides the --config flag.
	if envDir := os.Getenv(config.EnvDir); envDir != "" {
		cfgDir = envDir
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgDir, "config", cfgDir, "config directory (default: ~/.burgerctl)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug logging on stderr")
	pf.BoolVar(&testnet, "testnet", false, "use N3 testnet")
	pf.BoolVar(&mainnet, "mainnet", false, "use N3 mainnet")
	pf.StringVarP(&walletFlag, "wallet", "w", "", "wallet provider (default: config)")
	rootCmd.MarkFlagsMutuallyExclusive("testnet", "mainnet")

	rootCmd.AddCommand(
		walletCmd,
		balanceCmd,
		mintCmd,
		redeemCmd,
		claimCmd,
		nobugCmd,
		proposalCmd,
		voteCmd,
		statsCmd,
		txCmd,
		rpcCmd,
		configCmd,
	)
}
