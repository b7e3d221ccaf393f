package burger

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/neoburger/burgerctl/internal/neo"
)

// Candidate is a consensus candidate registered with the NEO contract.
type Candidate struct {
	PublicKey string
	Address   string
	Votes     string
}

// Agent is a bNEO agent contract holding NEO and voting for a candidate.
type Agent struct {
	ScriptHash string
	Balance    string // NEO held
	Target     string // public key voted for, "" when not voting
	Name       string
	Logo       string
	Votes      string // total votes of the target
}

// CommitteeMember is the registered identity of a council account.
type CommitteeMember struct {
	Address string
	Name    string
	Logo    string
}

// Candidates returns the candidate whitelist in NEO contract order.
func (r *Reader) Candidates(ctx context.Context) ([]Candidate, error) {
	item, err := r.first(ctx, r.contracts.NEO, "getCandidates")
	if err != nil {
		return nil, err
	}
	entries, err := item.Items()
	if err != nil {
		return nil, fmt.Errorf("getCandidates: %w", err)
	}
	out := make([]Candidate, 0, len(entries))
	for i, e := range entries {
		fields, err := e.Items()
		if err != nil || len(fields) < 2 {
			return nil, fmt.Errorf("getCandidates entry %d: %w", i, neo.ErrStackShape)
		}
		b64, err := fields[0].Base64()
		if err != nil {
			return nil, err
		}
		pub, err := neo.HexFromStackBytes(b64)
		if err != nil {
			return nil, err
		}
		addr, err := neo.AddressFromPublicKey(pub)
		if err != nil {
			return nil, err
		}
		out = append(out, Candidate{PublicKey: pub, Address: addr, Votes: fields[1].IntegerString()})
	}
	return out, nil
}

// Committee returns the public keys of the current council.
func (r *Reader) Committee(ctx context.Context) ([]string, error) {
	return r.chain.Committee(ctx)
}

// CommitteeMembers returns the registered council identities keyed by
// address. It returns an empty map when no committee info contract is
// configured.
func (r *Reader) CommitteeMembers(ctx context.Context) (map[string]CommitteeMember, error) {
	out := make(map[string]CommitteeMember)
	if r.contracts.CommitteeInfo == "" {
		return out, nil
	}
	item, err := r.first(ctx, r.contracts.CommitteeInfo, "getAllInfo")
	if err != nil {
		return nil, err
	}
	entries, err := item.Items()
	if err != nil {
		return nil, fmt.Errorf("getAllInfo: %w", err)
	}
	for _, e := range entries {
		fields, err := e.Items()
		if err != nil || len(fields) < 2 {
			continue
		}
		b64, err := fields[0].Base64()
		if err != nil {
			continue
		}
		hash, err := neo.ScriptHashFromStackBytes(b64)
		if err != nil {
			continue
		}
		addr, err := neo.AddressFromScriptHash(hash)
		if err != nil {
			continue
		}
		m := CommitteeMember{Address: addr}
		m.Name, _ = fields[1].Text()
		if len(fields) > 9 {
			m.Logo, _ = fields[9].Text()
		}
		out[addr] = m
	}
	return out, nil
}

// VoteTarget returns the public key the account hash votes for with its
// NEO, or "" when it does not vote.
func (r *Reader) VoteTarget(ctx context.Context, hash string) (string, error) {
	item, err := r.first(ctx, r.contracts.NEO, "getAccountState", neo.Hash160(hash))
	if err != nil {
		return "", err
	}
	if item.IsNull() {
		return "", nil
	}
	fields, err := item.Items()
	if err != nil {
		return "", fmt.Errorf("getAccountState: %w", err)
	}
	if len(fields) < 3 || fields[2].IsNull() {
		return "", nil
	}
	b64, err := fields[2].Base64()
	if err != nil {
		return "", err
	}
	return neo.HexFromStackBytes(b64)
}

// agentHashes runs the agent script and returns the agent script hashes.
func (r *Reader) agentHashes(ctx context.Context) ([]string, error) {
	if r.contracts.AgentScript == "" {
		return nil, fmt.Errorf("agent script not configured")
	}
	res, err := r.chain.InvokeScript(ctx, r.contracts.AgentScript, "")
	if err != nil {
		return nil, err
	}
	if !res.Halted() {
		return nil, fmt.Errorf("agent script did not halt: %s", res.State)
	}
	var out []string
	for _, item := range res.Stack {
		if item.IsNull() {
			continue
		}
		b64, err := item.Base64()
		if err != nil || b64 == "" {
			continue
		}
		hash, err := neo.ScriptHashFromStackBytes(b64)
		if err != nil {
			return nil, err
		}
		out = append(out, hash)
	}
	return out, nil
}

// Agents returns the agents voting for whitelisted candidates, in
// candidate order. Several agents voting for one candidate are listed
// together.
func (r *Reader) Agents(ctx context.Context) ([]Agent, error) {
	var (
		candidates []Candidate
		hashes     []string
		members    map[string]CommitteeMember
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		candidates, err = r.Candidates(gctx)
		return err
	})
	g.Go(func() (err error) {
		hashes, err = r.agentHashes(gctx)
		return err
	})
	g.Go(func() (err error) {
		members, err = r.CommitteeMembers(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	agents := make([]Agent, len(hashes))
	var mu sync.Mutex
	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, hash := range hashes {
		g.Go(func() error {
			target, err := r.VoteTarget(gctx, hash)
			if err != nil {
				return err
			}
			balance, err := r.BalanceOf(gctx, r.contracts.NEO, hash)
			if err != nil {
				return err
			}
			mu.Lock()
			agents[i] = Agent{ScriptHash: hash, Balance: balance, Target: target}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]Agent, 0, len(agents))
	for _, c := range candidates {
		for _, a := range agents {
			if a.Target != c.PublicKey {
				continue
			}
			a.Votes = c.Votes
			if m, ok := members[c.Address]; ok {
				a.Name, a.Logo = m.Name, m.Logo
			}
			out = append(out, a)
		}
	}
	return out, nil
}
