package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/neoburger/burgerctl/internal/burger"
	"github.com/neoburger/burgerctl/internal/neo"
	"github.com/neoburger/burgerctl/internal/price"
	"github.com/neoburger/burgerctl/internal/ui"
)

var (
	statsWatch bool
	statsDays  int
)

const barWidth = 30

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Protocol statistics: supply, reward rate, APR and prices",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		client, err := queryClient(ctx)
		if err != nil {
			return err
		}
		reader := newReader(client)
		prices := newPrices(client)
		fetch := func(ctx context.Context) ([][2]string, error) {
			return statsSummary(ctx, reader, prices)
		}

		if statsWatch {
			_, err := ui.NewDashboard(ctx, "NeoBurger", watchInterval(), fetch).Run()
			return err
		}

		spin := ui.NewSpinner("Reading protocol state...")
		spin.Start()
		pairs, err := fetch(ctx)
		spin.Stop()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.KeyValueBlock("NeoBurger ("+cfg.NetworkMode+")", pairs))
		return nil
	},
}

// statsSummary reads the headline figures concurrently. Only the supply is
// mandatory; the other rows degrade to "n/a".
func statsSummary(ctx context.Context, reader *burger.Reader, prices *price.Fetcher) ([][2]string, error) {
	var (
		supply string
		rps    string
		rate   decimal.Decimal
		quote  price.Quote
		rateOK bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		supply, err = reader.TotalSupply(gctx)
		return err
	})
	g.Go(func() error {
		v, err := reader.RewardsPerNEO(gctx)
		if err != nil {
			log.Debug().Err(err).Msg("rPS unavailable")
		}
		rps = v
		return nil
	})
	g.Go(func() error {
		v, err := reader.GASPerNEOPerSecond(gctx)
		if err != nil {
			log.Debug().Err(err).Msg("reward rate unavailable")
			return nil
		}
		rate, rateOK = v, true
		return nil
	})
	g.Go(func() error {
		q, err := prices.Quote(gctx)
		if err != nil {
			log.Debug().Err(err).Msg("no price quote")
		}
		quote = q
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summaryPairs(supply, rps, rate, rateOK, quote), nil
}

func summaryPairs(supply, rps string, rate decimal.Decimal, rateOK bool, q price.Quote) [][2]string {
	na := ui.Meta("n/a")
	pairs := [][2]string{
		{"bNEO supply", neo.FormatNumber(supply, neo.WithDecimals(2)) + " bNEO"},
	}
	if rps != "" {
		pairs = append(pairs, [2]string{"Rewards per NEO", neo.FormatNumber(neo.ShiftedBy(rps, -8), neo.WithDecimals(8)) + " GAS"})
	} else {
		pairs = append(pairs, [2]string{"Rewards per NEO", na})
	}

	daily, apr := na, na
	if rateOK {
		daily = neo.FormatNumber(rate.Shift(-8).Mul(decimal.NewFromInt(86400)).String(), neo.WithDecimals(8)) + " GAS"
		if v, ok := burger.APR(rate, q.NEO, q.GAS); ok {
			apr = v.StringFixed(2) + "%"
		}
	}
	pairs = append(pairs,
		[2]string{"GAS per NEO per day", daily},
		[2]string{"APR", apr},
	)

	if q.NEO.IsZero() {
		pairs = append(pairs, [2]string{"NEO price", na})
	} else {
		pairs = append(pairs, [2]string{"NEO price", neo.FormatNumber(q.NEO.String(), neo.WithDecimals(2), neo.WithSymbol("$"))})
	}
	if q.GAS.IsZero() {
		pairs = append(pairs, [2]string{"GAS price", na})
	} else {
		pairs = append(pairs, [2]string{"GAS price", neo.FormatNumber(q.GAS.String(), neo.WithDecimals(2), neo.WithSymbol("$"))})
	}
	return pairs
}

var statsSeriesCmd = &cobra.Command{
	Use:       "series <supply|rewards|treasury>",
	Short:     "Daily history from the published statistics snapshots",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"supply", "rewards", "treasury"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if statsDays <= 0 || statsDays > 365 {
			return fmt.Errorf("--days must be between 1 and 365")
		}
		ctx := cmd.Context()
		client, err := queryClient(ctx)
		if err != nil {
			return err
		}
		reader := newReader(client)

		spin := ui.NewSpinner(fmt.Sprintf("Fetching %d days of snapshots...", statsDays))
		spin.Start()
		var t *ui.Table
		switch args[0] {
		case "supply":
			var pts []burger.Point
			if pts, err = reader.SupplySeries(ctx, statsDays); err == nil {
				t = seriesTable("bNEO supply", pts)
			}
		case "rewards":
			var pts []burger.Point
			if pts, err = reader.RewardSeries(ctx, statsDays); err == nil {
				t = seriesTable("GAS per NEO", pts)
			}
		case "treasury":
			var pts []burger.TreasuryPoint
			if pts, err = reader.TreasurySeries(ctx, statsDays); err == nil {
				t = treasuryTable(pts)
			}
		default:
			err = fmt.Errorf("unknown series %q", args[0])
		}
		spin.Stop()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), t.Render())
		return nil
	},
}

func seriesTable(title string, pts []burger.Point) *ui.Table {
	var peak decimal.Decimal
	for _, p := range pts {
		if d, err := decimal.NewFromString(p.Y); err == nil && d.GreaterThan(peak) {
			peak = d
		}
	}
	t := ui.NewTable([]ui.Column{
		{Title: "Day", Width: 6},
		{Title: title, Width: 18, Right: true},
		{Title: "", Width: barWidth},
	})
	for _, p := range pts {
		day := p.X
		if day == "" {
			day = "-"
		}
		if p.Y == "" {
			t.AddRow(ui.Row{day, "-", ""})
			continue
		}
		t.AddRow(ui.Row{day, neo.FormatNumber(p.Y, neo.WithDecimals(4)), bar(p.Y, peak)})
	}
	return t
}

func treasuryTable(pts []burger.TreasuryPoint) *ui.Table {
	t := ui.NewTable([]ui.Column{
		{Title: "Day", Width: 6},
		{Title: "TEE (bNEO)", Width: 16, Right: true},
		{Title: "DAO (bNEO)", Width: 16, Right: true},
	})
	dash := func(s string) string {
		if s == "" {
			return "-"
		}
		return neo.FormatNumber(s, neo.WithDecimals(2))
	}
	for _, p := range pts {
		day := p.X
		if day == "" {
			day = "-"
		}
		t.AddRow(ui.Row{day, dash(p.TEE), dash(p.DAO)})
	}
	return t
}

// bar scales v against peak into at most barWidth blocks.
func bar(v string, peak decimal.Decimal) string {
	d, err := decimal.NewFromString(v)
	if err != nil || peak.Sign() <= 0 || d.Sign() <= 0 {
		return ""
	}
	n := int(d.Div(peak).Mul(decimal.NewFromInt(barWidth)).IntPart())
	if n == 0 {
		n = 1
	}
	return strings.Repeat("█", n)
}

var statsAgentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "bNEO agents, their NEO and the candidates they vote for",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		client, err := queryClient(ctx)
		if err != nil {
			return err
		}
		spin := ui.NewSpinner("Reading agents...")
		spin.Start()
		agents, err := newReader(client).Agents(ctx)
		spin.Stop()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(agents) == 0 {
			fmt.Fprintln(out, ui.Info("no agent votes for a whitelisted candidate"))
			return nil
		}
		fmt.Fprintln(out, agentTable(agents).Render())
		return nil
	},
}

func agentTable(agents []burger.Agent) *ui.Table {
	t := ui.NewTable([]ui.Column{
		{Title: "Agent", Width: 14},
		{Title: "NEO", Width: 12, Right: true},
		{Title: "Candidate", Width: 20},
		{Title: "Votes", Width: 14, Right: true},
	})
	for _, a := range agents {
		name := a.Name
		if name == "" {
			name = ui.TruncateAddr(a.Target)
		}
		t.AddRow(ui.Row{ui.TruncateAddr(a.ScriptHash), neo.FormatNumber(a.Balance), name, neo.FormatNumber(a.Votes)})
	}
	return t
}

var statsCommitteeCmd = &cobra.Command{
	Use:   "committee",
	Short: "Current council members",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		client, err := queryClient(ctx)
		if err != nil {
			return err
		}
		reader := newReader(client)
		keys, err := reader.Committee(ctx)
		if err != nil {
			return err
		}
		members, err := reader.CommitteeMembers(ctx)
		if err != nil {
			log.Debug().Err(err).Msg("committee names unavailable")
		}

		t := ui.NewTable([]ui.Column{
			{Title: "#", Width: 3, Right: true},
			{Title: "Name", Width: 20},
			{Title: "Address", Width: 36},
		})
		for i, key := range keys {
			addr, err := neo.AddressFromPublicKey(key)
			if err != nil {
				return err
			}
			t.AddRow(ui.Row{fmt.Sprint(i + 1), members[addr].Name, addr})
		}
		fmt.Fprintln(cmd.OutOrStdout(), t.Render())
		return nil
	},
}

func init() {
	statsCmd.Flags().BoolVar(&statsWatch, "watch", false, "refresh every watch_interval")
	statsSeriesCmd.Flags().IntVar(&statsDays, "days", 14, "number of days")
	statsCmd.AddCommand(statsSeriesCmd, statsAgentsCmd, statsCommitteeCmd)
}
