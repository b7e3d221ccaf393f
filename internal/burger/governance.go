package burger

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/neoburger/burgerctl/internal/neo"
)

// ErrProposalNotFound is returned for ids whose attributes cannot be read.
var ErrProposalNotFound = errors.New("proposal not found")

// ProposalStatus is the lifecycle state of a proposal.
type ProposalStatus string

const (
	StatusActive   ProposalStatus = "Active"
	StatusExecuted ProposalStatus = "Executed"
	StatusFailed   ProposalStatus = "Failed"
)

// Vote is an account's recorded choice on a proposal.
type Vote int

const (
	VoteNone    Vote = 0
	VoteFor     Vote = 1
	VoteAgainst Vote = -1
)

func (v Vote) String() string {
	switch v {
	case VoteFor:
		return "for"
	case VoteAgainst:
		return "against"
	}
	return "-"
}

// Target is the call a proposal executes when it passes.
type Target struct {
	Contract string
	Method   string
	Args     []neo.StackItem
}

// Proposal is a governance proposal as stored by the governance contract.
type Proposal struct {
	ID          int64
	Title       string
	Description string
	Start       time.Time
	End         time.Time
	Proposer    string
	Target      Target
	For         string
	Against     string
	Vote        Vote
	Executed    bool
}

// Status derives the proposal state at now.
func (p *Proposal) Status(now time.Time) ProposalStatus {
	if now.Before(p.End) {
		return StatusActive
	}
	if p.Executed {
		return StatusExecuted
	}
	return StatusFailed
}

// LatestProposalID returns the highest proposal id issued so far.
func (r *Reader) LatestProposalID(ctx context.Context) (int64, error) {
	v, err := r.integer(ctx, r.contracts.Governance, "getLatestProposalID")
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(v, 10, 64)
}

// Proposal reads proposal id.
func (r *Reader) Proposal(ctx context.Context, id int64) (*Proposal, error) {
	if r.contracts.Governance == "" {
		return nil, fmt.Errorf("proposalAttributes: contract not configured")
	}
	res, err := r.chain.InvokeFunction(ctx, r.contracts.Governance, "proposalAttributes",
		[]neo.Param{neo.Integer(strconv.FormatInt(id, 10))}, "")
	if err != nil {
		return nil, err
	}
	if !res.Halted() || len(res.Stack) == 0 {
		return nil, fmt.Errorf("%w: %d", ErrProposalNotFound, id)
	}
	fields, err := res.Stack[0].Items()
	if err != nil || len(fields) < 9 {
		return nil, fmt.Errorf("%w: %d: %v", ErrProposalNotFound, id, neo.ErrStackShape)
	}
	return decodeProposal(id, fields), nil
}

// decodeProposal maps the proposalAttributes struct. Tallies at 10 and 11
// are optional and default to zero.
func decodeProposal(id int64, f []neo.StackItem) *Proposal {
	p := &Proposal{ID: id, For: "0", Against: "0", Executed: true}
	if b64, err := f[0].Base64(); err == nil {
		if hash, err := neo.ScriptHashFromStackBytes(b64); err == nil {
			p.Proposer, _ = neo.AddressFromScriptHash(hash)
		}
	}
	p.Title, _ = f[1].Text()
	p.Description, _ = f[2].Text()
	if b64, err := f[3].Base64(); err == nil {
		p.Target.Contract, _ = neo.ScriptHashFromStackBytes(b64)
	}
	p.Target.Method, _ = f[4].Text()
	p.Target.Args, _ = f[5].Items()
	if ms, err := f[7].Integer(); err == nil {
		p.Start = time.UnixMilli(ms.Int64())
	}
	if ms, err := f[8].Integer(); err == nil {
		p.End = time.UnixMilli(ms.Int64())
	}
	if len(f) > 9 && !f[9].IsNull() {
		if done, err := f[9].Bool(); err == nil {
			p.Executed = done
		}
	}
	if len(f) > 11 {
		if v := f[10].IntegerString(); v != "" {
			p.For = v
		}
		if v := f[11].IntegerString(); v != "" {
			p.Against = v
		}
	}
	return p
}

// VoteStatus returns how address voted on proposal id.
func (r *Reader) VoteStatus(ctx context.Context, address string, id int64) (Vote, error) {
	hash, err := neo.ScriptHashFromAddress(address)
	if err != nil {
		return VoteNone, err
	}
	v, err := r.integer(ctx, r.contracts.Governance, "getVote",
		neo.Hash160(hash), neo.Integer(strconv.FormatInt(id, 10)))
	if err != nil {
		return VoteNone, err
	}
	switch v {
	case "1":
		return VoteFor, nil
	case "-1":
		return VoteAgainst, nil
	}
	return VoteNone, nil
}

// Proposals reads one page of proposals newest first, walking ids from
// down to 1. Ids that cannot be read are skipped. next is the first id of
// the following page, 0 when the walk is done. When address is set each
// proposal carries its vote.
func (r *Reader) Proposals(ctx context.Context, address string, from int64, size int) (page []Proposal, next int64, err error) {
	if from <= 0 || size <= 0 {
		return nil, 0, nil
	}
	ids := make([]int64, 0, size)
	for id := from; id > 0 && len(ids) < size; id-- {
		ids = append(ids, id)
	}
	slots := make([]*Proposal, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			p, err := r.Proposal(gctx, id)
			if errors.Is(err, ErrProposalNotFound) {
				r.log.Debug().Int64("id", id).Msg("skipping unreadable proposal")
				return nil
			}
			if err != nil {
				return err
			}
			if address != "" {
				if p.Vote, err = r.VoteStatus(gctx, address, id); err != nil {
					r.log.Debug().Err(err).Int64("id", id).Msg("vote status unavailable")
				}
			}
			slots[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	for _, p := range slots {
		if p != nil {
			page = append(page, *p)
		}
	}
	return page, ids[len(ids)-1] - 1, nil
}

// Now is the reader clock, used to derive proposal status.
func (r *Reader) Now() time.Time { return r.now() }
