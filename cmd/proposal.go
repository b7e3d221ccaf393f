package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/neoburger/burgerctl/internal/burger"
	"github.com/neoburger/burgerctl/internal/chain"
	"github.com/neoburger/burgerctl/internal/neo"
	"github.com/neoburger/burgerctl/internal/ui"
)

var (
	proposalFrom    int64
	proposalSize    int
	proposalAddress string

	proposalTitle    string
	proposalDesc     string
	proposalContract string
	proposalMethod   string
	proposalArgs     string
)

var proposalCmd = &cobra.Command{
	Use:     "proposal",
	Aliases: []string{"proposals"},
	Short:   "Browse and create governance proposals",
}

var proposalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List proposals, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		client, err := queryClient(ctx)
		if err != nil {
			return err
		}
		reader := newReader(client)
		address, err := voterAddress(ctx, client)
		if err != nil {
			return err
		}

		from := proposalFrom
		if from <= 0 {
			if from, err = reader.LatestProposalID(ctx); err != nil {
				return err
			}
		}
		page, next, err := reader.Proposals(ctx, address, from, proposalSize)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(page) == 0 {
			fmt.Fprintln(out, ui.Info("no proposals"))
			return nil
		}
		fmt.Fprintln(out, proposalTable(page, reader.Now(), address != "").Render())
		if next > 0 {
			fmt.Fprintln(out, ui.Hint(fmt.Sprintf("more: burgerctl proposal list --from %d", next)))
		}
		return nil
	},
}

var proposalShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one proposal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseProposalID(args[0])
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		client, err := queryClient(ctx)
		if err != nil {
			return err
		}
		reader := newReader(client)
		address, err := voterAddress(ctx, client)
		if err != nil {
			return err
		}
		p, err := reader.Proposal(ctx, id)
		if err != nil {
			return err
		}
		if address != "" {
			if p.Vote, err = reader.VoteStatus(ctx, address, id); err != nil {
				return err
			}
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.KeyValueBlock(fmt.Sprintf("Proposal #%d", p.ID), proposalPairs(p, reader.Now(), address != "")))
		return nil
	},
}

var proposalNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Submit a proposal executing a contract call once passed",
	Long: `Submit a proposal. Arguments of the target call are given as a JSON
array of typed parameters.

Example:
  burgerctl proposal new --title "Raise agent cap" --description "..." \
    --contract 0x48c40d4666f93408be1bef038b6722404d9a4c2a --method setMax \
    --args '[{"type":"Integer","value":"21"}]'`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		callArgs, err := parseParams(proposalArgs)
		if err != nil {
			return err
		}
		if !strings.HasPrefix(proposalContract, "0x") || len(proposalContract) != 42 {
			return fmt.Errorf("contract must be a 0x-prefixed script hash, got %q", proposalContract)
		}

		ctx := cmd.Context()
		out := cmd.OutOrStdout()
		client, err := queryClient(ctx)
		if err != nil {
			return err
		}
		reader := newReader(client)
		latest, err := reader.LatestProposalID(ctx)
		if err != nil {
			return err
		}
		id := strconv.FormatInt(latest+1, 10)

		reg, _ := openWallets(ctx, client)
		a, from, err := connect(ctx, reg)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, ui.KeyValueBlock("New proposal #"+id, [][2]string{
			{"Proposer", from},
			{"Title", proposalTitle},
			{"Call", proposalContract + "." + proposalMethod},
			{"Arguments", strconv.Itoa(len(callArgs))},
		}))
		return submit(ctx, out, "Submitting proposal #"+id, func(ctx context.Context) neo.Outcome {
			return a.NewProposal(ctx, from, id, proposalTitle, proposalDesc, proposalContract, proposalMethod, callArgs)
		})
	},
}

var voteCmd = &cobra.Command{
	Use:   "vote <proposal-id> <for|against|unvote>",
	Short: "Vote on a governance proposal",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseProposalID(args[0])
		if err != nil {
			return err
		}
		forOrAgainst, unvote, err := parseVoteChoice(args[1])
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		client, err := queryClient(ctx)
		if err != nil {
			return err
		}
		reader := newReader(client)
		p, err := reader.Proposal(ctx, id)
		if err != nil {
			return err
		}
		if p.Status(reader.Now()) != burger.StatusActive {
			return fmt.Errorf("proposal #%d is closed", id)
		}

		reg, _ := openWallets(ctx, client)
		a, from, err := connect(ctx, reg)
		if err != nil {
			return err
		}
		current, err := reader.VoteStatus(ctx, from, id)
		if err != nil {
			log.Warn().Err(err).Msg("current vote unknown")
		}
		if unvote {
			if current == burger.VoteNone {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Info("nothing to withdraw"))
				return nil
			}
			// Withdrawing names the side being withdrawn.
			forOrAgainst = current == burger.VoteFor
		}

		ids := strconv.FormatInt(id, 10)
		return submit(ctx, cmd.OutOrStdout(), fmt.Sprintf("Voting %s on #%d", args[1], id), func(ctx context.Context) neo.Outcome {
			return a.Vote(ctx, from, ids, forOrAgainst, unvote)
		})
	},
}

// voterAddress resolves --address, which may be an NNS domain.
func voterAddress(ctx context.Context, client *chain.Client) (string, error) {
	if proposalAddress == "" {
		return "", nil
	}
	return resolveAddress(ctx, client, proposalAddress)
}

func parseProposalID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(s, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid proposal id %q", s)
	}
	return id, nil
}

// parseVoteChoice maps the vote argument onto the contract flags.
func parseVoteChoice(s string) (forOrAgainst, unvote bool, err error) {
	switch strings.ToLower(s) {
	case "for", "yes", "y":
		return true, false, nil
	case "against", "no", "n":
		return false, false, nil
	case "unvote", "withdraw":
		return false, true, nil
	}
	return false, false, fmt.Errorf("vote must be for, against or unvote, got %q", s)
}

// parseParams decodes a JSON array of {"type","value"} parameters.
func parseParams(s string) ([]neo.Param, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var params []neo.Param
	if err := json.Unmarshal([]byte(s), &params); err != nil {
		return nil, fmt.Errorf("parsing --args: %w", err)
	}
	return params, nil
}

func proposalTable(page []burger.Proposal, now time.Time, withVote bool) *ui.Table {
	cols := []ui.Column{
		{Title: "ID", Width: 5, Right: true},
		{Title: "Title", Width: 32},
		{Title: "Status", Width: 9},
		{Title: "For", Width: 12, Right: true},
		{Title: "Against", Width: 12, Right: true},
		{Title: "Ends", Width: 16},
	}
	if withVote {
		cols = append(cols, ui.Column{Title: "Vote", Width: 8})
	}
	t := ui.NewTable(cols)
	for _, p := range page {
		row := ui.Row{
			strconv.FormatInt(p.ID, 10),
			p.Title,
			string(p.Status(now)),
			neo.FormatNumber(p.For),
			neo.FormatNumber(p.Against),
			p.End.UTC().Format("2006-01-02 15:04"),
		}
		if withVote {
			row = append(row, p.Vote.String())
		}
		t.AddRow(row)
	}
	return t
}

func proposalPairs(p *burger.Proposal, now time.Time, withVote bool) [][2]string {
	pairs := [][2]string{
		{"Title", p.Title},
		{"Status", string(p.Status(now))},
		{"Proposer", p.Proposer},
		{"Starts", p.Start.UTC().Format(time.RFC3339)},
		{"Ends", p.End.UTC().Format(time.RFC3339)},
		{"Call", p.Target.Contract + "." + p.Target.Method},
		{"Arguments", strconv.Itoa(len(p.Target.Args))},
		{"For", neo.FormatNumber(p.For)},
		{"Against", neo.FormatNumber(p.Against)},
	}
	if withVote {
		pairs = append(pairs, [2]string{"Your vote", p.Vote.String()})
	}
	if p.Description != "" {
		pairs = append(pairs, [2]string{"Description", p.Description})
	}
	return pairs
}

func init() {
	for _, c := range []*cobra.Command{proposalListCmd, proposalShowCmd} {
		c.Flags().StringVar(&proposalAddress, "address", "", "show how this address or NNS domain voted")
	}
	proposalListCmd.Flags().Int64Var(&proposalFrom, "from", 0, "newest id to list (default: latest)")
	proposalListCmd.Flags().IntVar(&proposalSize, "size", 10, "proposals per page")

	f := proposalNewCmd.Flags()
	f.StringVar(&proposalTitle, "title", "", "proposal title")
	f.StringVar(&proposalDesc, "description", "", "proposal description")
	f.StringVar(&proposalContract, "contract", "", "target contract script hash")
	f.StringVar(&proposalMethod, "method", "", "target method")
	f.StringVar(&proposalArgs, "args", "", "target arguments as a JSON parameter array")
	for _, name := range []string{"title", "contract", "method"} {
		_ = proposalNewCmd.MarkFlagRequired(name)
	}

	proposalCmd.AddCommand(proposalListCmd, proposalShowCmd, proposalNewCmd)
}
