package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/neoburger/burgerctl/internal/state"
	"github.com/neoburger/burgerctl/internal/ui"
	"github.com/neoburger/burgerctl/internal/wallet"
)

var walletSetDefault bool

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Connect and inspect wallets",
}

var walletListCmd = &cobra.Command{
	Use:   "list",
	Short: "List wallet providers and whether their bridge answered",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		client, err := queryClient(ctx)
		if err != nil {
			return err
		}
		spin := ui.NewSpinner("Probing wallet bridges...")
		spin.Start()
		reg, _ := openWallets(ctx, client)
		spin.Stop()

		lastUsed := wallet.NewScopedSession(cfg.SessionPath(), wallet.TerminalSessionKey()).LastUsed()
		t := ui.NewTable([]ui.Column{
			{Title: "Wallet", Width: 16},
			{Title: "Status", Width: 12},
			{Title: "Address", Width: 36},
			{Title: "Default", Width: 8},
		})
		for _, item := range walletItems(reg) {
			status, addr := "ready", ""
			if item.Disabled {
				status = "unavailable"
			} else if item.SubLabel != "ready" {
				status, addr = "connected", item.SubLabel
			}
			if item.Value == lastUsed && addr == "" {
				status += "*"
			}
			def := ""
			if item.Value == cfg.DefaultWallet {
				def = "✓"
			}
			t.AddRow(ui.Row{item.Label, status, addr, def})
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, t.Render())
		if lastUsed != "" {
			fmt.Fprintln(out, ui.Meta("* last used"))
		}
		if len(reg.Ready()) == 0 {
			fmt.Fprintln(out, ui.Hint("configure a bridge under \"bridges\" in "+cfg.Dir()+"/config.json"))
		}
		return nil
	},
}

var walletConnectCmd = &cobra.Command{
	Use:   "connect [wallet]",
	Short: "Connect a wallet and show its account",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			walletFlag = args[0]
		}
		ctx := cmd.Context()
		client, err := queryClient(ctx)
		if err != nil {
			return err
		}
		reg, store := openWallets(ctx, client)
		a, addr, err := connect(ctx, reg)
		if err != nil {
			return err
		}

		p := store.Snapshot()
		pairs := [][2]string{
			{"Wallet", a.Name()},
			{"Address", ui.Addr(addr)},
			{"Network", networkLabel(p.Network)},
		}
		if pub := a.GetPublicKey(ctx); pub != "" {
			pairs = append(pairs, [2]string{"Public key", ui.Addr(pub)})
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ui.KeyValueBlock("Wallet connected", pairs))
		if p.Network != "" && p.Network != cfg.ExpectedNetwork() {
			fmt.Fprintln(out, ui.Warn(fmt.Sprintf("wallet is on %s but burgerctl is in %s mode", p.Network, cfg.NetworkMode)))
		}

		if walletSetDefault {
			cfg.DefaultWallet = a.Name()
			if err := saveConfig(); err != nil {
				return err
			}
			fmt.Fprintln(out, ui.Success(fmt.Sprintf("Default wallet set to %q", a.Name())))
		}
		return nil
	},
}

var walletDisconnectCmd = &cobra.Command{
	Use:   "disconnect [wallet]",
	Short: "Forget the wallet session",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			walletFlag = args[0]
		}
		ctx := cmd.Context()
		client, err := queryClient(ctx)
		if err != nil {
			return err
		}
		reg, _ := openWallets(ctx, client)
		name, err := chooseWallet(reg)
		if err != nil {
			return err
		}
		reg.Get(name).Disconnect(ctx)
		reg.Wait()
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(name+" disconnected"))
		return nil
	},
}

var walletWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream account, network and balance changes until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		client, err := queryClient(ctx)
		if err != nil {
			return err
		}
		reg, store := openWallets(ctx, client)
		a, _, err := connect(ctx, reg)
		if err != nil {
			return err
		}

		updates := make(chan state.Projection, 16)
		sub := store.Subscribe(updates)
		defer sub.Unsubscribe()

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ui.Meta("watching "+a.Name()+", ctrl+c to stop"))
		refresh := time.NewTicker(watchInterval())
		defer refresh.Stop()
		a.GetBalance(ctx)
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-refresh.C:
				a.GetBalance(ctx)
			case err := <-sub.Err():
				return err
			case p := <-updates:
				fmt.Fprintln(out, projectionLine(p))
			}
		}
	},
}

func projectionLine(p state.Projection) string {
	addr := "-"
	if p.Connected() {
		addr = ui.Addr(p.Address)
	}
	line := fmt.Sprintf("#%d  %s  %s  %s", p.Seq, p.WalletName, addr, networkLabel(p.Network))
	for _, hash := range sortedKeys(p.Balance) {
		line += "  " + ui.Amount(p.Balance[hash], symbolOf(hash))
	}
	return line
}

func networkLabel(n string) string {
	if n == "" {
		return "unknown"
	}
	return n
}

func init() {
	walletConnectCmd.Flags().BoolVar(&walletSetDefault, "default", false, "save as the default wallet")
	walletCmd.AddCommand(walletListCmd, walletConnectCmd, walletDisconnectCmd, walletWatchCmd)
}
