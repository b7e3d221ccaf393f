package burger

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
	"github.com/nspcc-dev/neo-go/pkg/crypto/keys"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neoburger/burgerctl/internal/chain"
	"github.com/neoburger/burgerctl/internal/config"
	"github.com/neoburger/burgerctl/internal/neo"
)

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

const (
	noBugHash = "0x1111111111111111111111111111111111111111"
	govHash   = "0x2222222222222222222222222222222222222222"
	infoHash  = "0x3333333333333333333333333333333333333333"
)

// call is one decoded JSON-RPC request. For invokefunction Contract,
// Operation and Args are filled in.
type call struct {
	Method    string
	Params    []json.RawMessage
	Contract  string
	Operation string
	Args      []struct {
		Type  string          `json:"type"`
		Value json.RawMessage `json:"value"`
	}
}

func (c call) argString(i int) string {
	var s string
	_ = json.Unmarshal(c.Args[i].Value, &s)
	return s
}

// node answers JSON-RPC requests through handle. A nil result is sent
// as a method-not-found error.
func node(t *testing.T, handle func(c call) any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string            `json:"method"`
			Params []json.RawMessage `json:"params"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		c := call{Method: req.Method, Params: req.Params}
		if req.Method == "invokefunction" && len(req.Params) >= 3 {
			_ = json.Unmarshal(req.Params[0], &c.Contract)
			_ = json.Unmarshal(req.Params[1], &c.Operation)
			_ = json.Unmarshal(req.Params[2], &c.Args)
		}
		result := handle(c)
		w.Header().Set("Content-Type", "application/json")
		if result == nil {
			json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
				"jsonrpc": "2.0", "id": 1,
				"error": map[string]any{"code": -32601, "message": "method not found"},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"jsonrpc": "2.0", "id": 1, "result": result}) //nolint:errcheck
	}))
}

func integer(v string) map[string]any { return map[string]any{"type": "Integer", "value": v} }

func bytesItem(b []byte) map[string]any {
	return map[string]any{"type": "ByteString", "value": base64.StdEncoding.EncodeToString(b)}
}

func text(s string) map[string]any { return bytesItem([]byte(s)) }

func array(items ...any) map[string]any {
	if items == nil {
		items = []any{}
	}
	return map[string]any{"type": "Array", "value": items}
}

func strct(items ...any) map[string]any { return map[string]any{"type": "Struct", "value": items} }

func halt(items ...any) map[string]any {
	return map[string]any{"state": "HALT", "gasconsumed": "1", "stack": items}
}

func fault() map[string]any {
	return map[string]any{"state": "FAULT", "gasconsumed": "1", "exception": "boom", "stack": []any{}}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)
	cfg.Contracts.NoBug = noBugHash
	cfg.Contracts.Governance = govHash
	cfg.Contracts.CommitteeInfo = infoHash
	cfg.Contracts.AgentScript = "EMAGDGdldEFnZW50cw=="
	return cfg
}

func newReader(t *testing.T, srv *httptest.Server, opts ...Option) *Reader {
	t.Helper()
	client := chain.New(srv.URL, srv.URL, chain.WithRetryDelay(0))
	opts = append([]Option{WithRetryDelay(0)}, opts...)
	return New(client, testConfig(t), opts...)
}

func newKey(t *testing.T) *keys.PrivateKey {
	t.Helper()
	k, err := keys.NewPrivateKey()
	require.NoError(t, err)
	return k
}

// blobs serves statistics snapshots keyed by height.
func blobs(t *testing.T, hits *int32, snap func(height int) any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			atomic.AddInt32(hits, 1)
		}
		h, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/"), ".json"))
		if err != nil {
			http.NotFound(w, r)
			return
		}
		v := snap(h)
		if v == nil {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(v) //nolint:errcheck
	}))
}

func blockCount(n int) func(c call) any {
	return func(c call) any {
		if c.Method == "getblockcount" {
			return n
		}
		return nil
	}
}

// ---------------------------------------------------------------------------
// supply and rewards
// ---------------------------------------------------------------------------

func TestSupplyAndRewards(t *testing.T) {
	addr := newKey(t).Address()
	srv := node(t, func(c call) any {
		switch c.Operation {
		case "totalSupply":
			return halt(integer("123456789000"))
		case "reward":
			return halt(integer("250000000"))
		case "rPS":
			return halt(integer("987654321"))
		}
		return nil
	})
	defer srv.Close()
	r := newReader(t, srv)
	ctx := context.Background()

	supply, err := r.TotalSupply(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1234.56789", supply)

	gas, err := r.UnclaimedGAS(ctx, addr)
	require.NoError(t, err)
	assert.Equal(t, "2.5", gas)

	rps, err := r.RewardsPerNEO(ctx)
	require.NoError(t, err)
	assert.Equal(t, "987654321", rps)
}

func TestUnclaimedGASRejectsBadAddress(t *testing.T) {
	srv := node(t, func(call) any { return nil })
	defer srv.Close()
	_, err := newReader(t, srv).UnclaimedGAS(context.Background(), "not-an-address")
	assert.Error(t, err)
}

func TestFaultedReadIsAnError(t *testing.T) {
	srv := node(t, func(call) any { return fault() })
	defer srv.Close()
	_, err := newReader(t, srv).TotalSupply(context.Background())
	assert.ErrorContains(t, err, "did not halt")
}

// ---------------------------------------------------------------------------
// statistics blobs
// ---------------------------------------------------------------------------

func TestBlockInfoFallsBackToMirror(t *testing.T) {
	var primaryHits, mirrorHits int32
	primary := blobs(t, &primaryHits, func(int) any { return nil })
	defer primary.Close()
	mirror := blobs(t, &mirrorHits, func(h int) any {
		return map[string]any{"timestamp": 1700000000000, "rps": "42", "total_supply": 100000000}
	})
	defer mirror.Close()
	srv := node(t, blockCount(1))
	defer srv.Close()

	r := newReader(t, srv, WithBlobURLs(primary.URL+"/%d.json", mirror.URL+"/%d.json"))
	info, err := r.BlockInfo(context.Background(), 77)
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&primaryHits))
	assert.Equal(t, int32(1), atomic.LoadInt32(&mirrorHits))
	assert.Equal(t, Amount("42"), info.RPS)
	assert.Equal(t, Amount("100000000"), info.TotalSupply)
	assert.Equal(t, "11-14", info.Day())
}

func TestBlockInfoBothStoresDown(t *testing.T) {
	down := blobs(t, nil, func(int) any { return nil })
	defer down.Close()
	srv := node(t, blockCount(1))
	defer srv.Close()

	r := newReader(t, srv, WithBlobURLs(down.URL+"/%d.json", down.URL+"/%d.json"))
	_, err := r.BlockInfo(context.Background(), 1)
	assert.ErrorIs(t, err, chain.ErrNoResult)
}

func TestGASPerNEOPerSecond(t *testing.T) {
	const height = 200000
	store := blobs(t, nil, func(h int) any {
		switch h {
		case height - config.StatsLag:
			return map[string]any{"timestamp": 2000000, "rps": "3000"}
		case height - config.StatsLag - config.StatsWindow:
			return map[string]any{"timestamp": 1000000, "rps": 1000}
		}
		return nil
	})
	defer store.Close()
	srv := node(t, blockCount(height))
	defer srv.Close()

	r := newReader(t, srv, WithBlobURLs(store.URL+"/%d.json", store.URL+"/%d.json"))
	rate, err := r.GASPerNEOPerSecond(context.Background())
	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.NewFromInt(2)), "got %s", rate)
}

func TestGASPerNEOPerSecondShortChain(t *testing.T) {
	srv := node(t, blockCount(1000))
	defer srv.Close()
	_, err := newReader(t, srv).GASPerNEOPerSecond(context.Background())
	assert.ErrorIs(t, err, ErrNotEnoughHistory)
}

func TestAPR(t *testing.T) {
	apr, ok := APR(decimal.NewFromInt(1), decimal.NewFromInt(10), decimal.NewFromInt(5))
	require.True(t, ok)
	assert.Equal(t, "15.77", apr.StringFixed(2))

	_, ok = APR(decimal.NewFromInt(1), decimal.Zero, decimal.NewFromInt(5))
	assert.False(t, ok)
}

func dayMillis(day int) int64 {
	return time.Date(2024, time.January, day, 12, 0, 0, 0, time.UTC).UnixMilli()
}

func TestSupplySeriesOldestFirst(t *testing.T) {
	const day = config.BlocksPerDay
	store := blobs(t, nil, func(h int) any {
		if h == 2*day {
			return nil
		}
		return map[string]any{"timestamp": dayMillis(h / day), "total_supply": fmt.Sprintf("%d00000000", h)}
	})
	defer store.Close()
	srv := node(t, blockCount(3*day))
	defer srv.Close()

	r := newReader(t, srv, WithBlobURLs(store.URL+"/%d.json", store.URL+"/%d.json"))
	series, err := r.SupplySeries(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, []Point{
		{X: "01-01", Y: "5760"},
		{X: "", Y: ""},
		{X: "01-03", Y: "17280"},
	}, series)
}

func TestRewardSeries(t *testing.T) {
	const day = config.BlocksPerDay
	store := blobs(t, nil, func(h int) any {
		return map[string]any{"timestamp": dayMillis(h / day), "rps": fmt.Sprintf("%d00000000", h)}
	})
	defer store.Close()
	srv := node(t, func(c call) any {
		if c.Method == "getblockcount" {
			return 3 * day
		}
		if c.Operation == "rPS" {
			return halt(integer("1800000000000"))
		}
		return nil
	})
	defer srv.Close()

	clock := func() time.Time { return time.Date(2024, time.March, 9, 0, 0, 0, 0, time.UTC) }
	r := newReader(t, srv, WithBlobURLs(store.URL+"/%d.json", store.URL+"/%d.json"), WithClock(clock))
	series, err := r.RewardSeries(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, []Point{
		{X: "01-02", Y: "5760"},
		{X: "03-09", Y: "6480"},
	}, series)
}

func TestTreasurySeries(t *testing.T) {
	const day = config.BlocksPerDay
	store := blobs(t, nil, func(h int) any {
		return map[string]any{"timestamp": dayMillis(1), "balance_of_TEE": "150000000", "balance_of_DAO": 300000000}
	})
	defer store.Close()
	srv := node(t, blockCount(day))
	defer srv.Close()

	r := newReader(t, srv, WithBlobURLs(store.URL+"/%d.json", store.URL+"/%d.json"))
	series, err := r.TreasurySeries(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []TreasuryPoint{{X: "01-01", TEE: "1.5", DAO: "3"}}, series)
}

// ---------------------------------------------------------------------------
// agents and committee
// ---------------------------------------------------------------------------

func TestAgentsFollowCandidateOrder(t *testing.T) {
	c1, c2 := newKey(t).PublicKey(), newKey(t).PublicKey()
	a1 := util.Uint160{1}
	a2 := util.Uint160{2}
	a3 := util.Uint160{3}
	targets := map[string]*keys.PublicKey{
		"0x" + a1.StringLE(): c2,
		"0x" + a2.StringLE(): c1,
		"0x" + a3.StringLE(): c2,
	}
	c1Hash := c1.GetScriptHash()

	srv := node(t, func(c call) any {
		switch {
		case c.Method == "invokescript":
			return halt(bytesItem(a1.BytesBE()), bytesItem(a2.BytesBE()), map[string]any{"type": "Any"}, bytesItem(a3.BytesBE()))
		case c.Operation == "getCandidates":
			return halt(array(
				strct(bytesItem(c1.Bytes()), integer("100")),
				strct(bytesItem(c2.Bytes()), integer("50")),
			))
		case c.Operation == "getAllInfo":
			fields := []any{bytesItem(c1Hash.BytesBE()), text("Alpha")}
			for i := 2; i < 9; i++ {
				fields = append(fields, integer("0"))
			}
			fields = append(fields, text("https://example.org/alpha.png"))
			return halt(array(strct(fields...)))
		case c.Operation == "getAccountState":
			pub := targets[c.argString(0)]
			return halt(strct(integer("10"), integer("1"), bytesItem(pub.Bytes())))
		case c.Operation == "balanceOf":
			return halt(integer("5"))
		}
		return nil
	})
	defer srv.Close()

	agents, err := newReader(t, srv).Agents(context.Background())
	require.NoError(t, err)
	require.Len(t, agents, 3)

	assert.Equal(t, "0x"+a2.StringLE(), agents[0].ScriptHash)
	assert.Equal(t, "Alpha", agents[0].Name)
	assert.Equal(t, "https://example.org/alpha.png", agents[0].Logo)
	assert.Equal(t, "100", agents[0].Votes)
	assert.Equal(t, "5", agents[0].Balance)
	assert.Equal(t, "0x"+a1.StringLE(), agents[1].ScriptHash)
	assert.Equal(t, "0x"+a3.StringLE(), agents[2].ScriptHash)
	assert.Equal(t, "50", agents[2].Votes)
	assert.Empty(t, agents[2].Name)
	assert.Equal(t, c2.StringCompressed(), agents[1].Target)
}

func TestCandidates(t *testing.T) {
	pub := newKey(t).PublicKey()
	srv := node(t, func(c call) any {
		return halt(array(strct(bytesItem(pub.Bytes()), integer("7"))))
	})
	defer srv.Close()

	got, err := newReader(t, srv).Candidates(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Candidate{{PublicKey: pub.StringCompressed(), Address: pub.Address(), Votes: "7"}}, got)
}

func TestVoteTargetNotVoting(t *testing.T) {
	srv := node(t, func(c call) any {
		return halt(strct(integer("10"), integer("1"), map[string]any{"type": "Any"}))
	})
	defer srv.Close()
	target, err := newReader(t, srv).VoteTarget(context.Background(), "0x"+util.Uint160{9}.StringLE())
	require.NoError(t, err)
	assert.Empty(t, target)
}

func TestCommitteeMembersWithoutContract(t *testing.T) {
	srv := node(t, func(call) any { return nil })
	defer srv.Close()
	r := newReader(t, srv)
	r.contracts.CommitteeInfo = ""
	members, err := r.CommitteeMembers(context.Background())
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestCommittee(t *testing.T) {
	srv := node(t, func(c call) any {
		if c.Method == "getcommittee" {
			return []string{"02aa", "03bb"}
		}
		return nil
	})
	defer srv.Close()
	members, err := newReader(t, srv).Committee(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"02aa", "03bb"}, members)
}

// ---------------------------------------------------------------------------
// NoBug
// ---------------------------------------------------------------------------

func TestNoBugSupply(t *testing.T) {
	srv := node(t, func(c call) any {
		if c.Contract == noBugHash && c.Operation == "totalSupply" {
			return halt(integer("12345678901234"))
		}
		return nil
	})
	defer srv.Close()
	supply, err := newReader(t, srv).NoBugSupply(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1234.5678901234", supply)
}

func TestNoBugClaimed(t *testing.T) {
	claim := Claim{
		ScriptHash: "0x" + util.Uint160{4}.StringLE(),
		Amount:     "100",
		Nonce:      "1",
		Proof:      []string{"0x" + util.Uint256{5}.StringLE()},
	}
	for state, want := range map[string]bool{"FAULT": true, "HALT": false} {
		var seen call
		srv := node(t, func(c call) any {
			seen = c
			return map[string]any{"state": state, "stack": []any{}}
		})
		claimed, err := newReader(t, srv).NoBugClaimed(context.Background(), claim)
		srv.Close()
		require.NoError(t, err)
		assert.Equal(t, want, claimed, state)
		assert.Equal(t, "claim", seen.Operation)
		require.Len(t, seen.Args, 4)
		assert.Equal(t, "Array", seen.Args[3].Type)
	}
}

func TestNoBugInfoSendsNetworkHeader(t *testing.T) {
	var header, path string
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header, path = r.Header.Get("Network"), r.URL.Path
		w.Write([]byte(`{"data":{"hash":"x","symbol":"NOBUG","decimals":10,"addresses":42}}`)) //nolint:errcheck
	}))
	defer api.Close()
	srv := node(t, func(call) any { return nil })
	defer srv.Close()

	info, err := newReader(t, srv, WithAssetURL(api.URL+"/asset/%s"), WithNetworkName("testnet")).NoBugInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, info.Addresses)
	assert.Equal(t, "testnet", header)
	assert.Equal(t, "/asset/"+noBugHash, path)
}

// ---------------------------------------------------------------------------
// governance
// ---------------------------------------------------------------------------

func proposalItem(title string, start, end time.Time, executed string, tallies ...string) map[string]any {
	fields := []any{
		bytesItem(util.Uint160{7}.BytesBE()),
		text(title),
		text("desc of " + title),
		bytesItem(util.Uint160{8}.BytesBE()),
		text("update"),
		array(integer("1")),
		integer("0"),
		integer(strconv.FormatInt(start.UnixMilli(), 10)),
		integer(strconv.FormatInt(end.UnixMilli(), 10)),
		integer(executed),
	}
	for _, v := range tallies {
		fields = append(fields, integer(v))
	}
	return halt(strct(fields...))
}

func TestProposalDecodeAndStatus(t *testing.T) {
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(72 * time.Hour)
	srv := node(t, func(c call) any {
		switch c.argString(0) {
		case "1":
			return proposalItem("one", start, end, "0")
		case "2":
			return proposalItem("two", start, end, "1", "300", "200")
		}
		return fault()
	})
	defer srv.Close()
	r := newReader(t, srv)
	ctx := context.Background()

	p1, err := r.Proposal(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "one", p1.Title)
	assert.Equal(t, "desc of one", p1.Description)
	assert.Equal(t, "0x"+util.Uint160{8}.StringLE(), p1.Target.Contract)
	assert.Equal(t, "update", p1.Target.Method)
	assert.Len(t, p1.Target.Args, 1)
	assert.True(t, p1.Start.Equal(start))
	assert.True(t, p1.End.Equal(end))
	assert.Equal(t, "0", p1.For)
	assert.NotEmpty(t, p1.Proposer)

	assert.Equal(t, StatusActive, p1.Status(start.Add(time.Hour)))
	assert.Equal(t, StatusFailed, p1.Status(end))

	p2, err := r.Proposal(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, StatusExecuted, p2.Status(end.Add(time.Minute)))
	assert.Equal(t, "300", p2.For)
	assert.Equal(t, "200", p2.Against)

	_, err = r.Proposal(ctx, 3)
	assert.ErrorIs(t, err, ErrProposalNotFound)
}

func TestVoteStatus(t *testing.T) {
	addr := newKey(t).Address()
	for raw, want := range map[string]Vote{"1": VoteFor, "-1": VoteAgainst, "0": VoteNone} {
		srv := node(t, func(c call) any {
			if c.Operation == "getVote" {
				return halt(integer(raw))
			}
			return nil
		})
		got, err := newReader(t, srv).VoteStatus(context.Background(), addr, 3)
		srv.Close()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	assert.Equal(t, "for", VoteFor.String())
	assert.Equal(t, "-", VoteNone.String())
}

func TestProposalsPageNewestFirstSkippingGaps(t *testing.T) {
	addr := newKey(t).Address()
	start := time.Now().Add(-time.Hour)
	var mu sync.Mutex
	votes := 0
	srv := node(t, func(c call) any {
		switch c.Operation {
		case "getLatestProposalID":
			return halt(integer("5"))
		case "getVote":
			mu.Lock()
			votes++
			mu.Unlock()
			return halt(integer("1"))
		case "proposalAttributes":
			id := c.argString(0)
			if id == "4" {
				return fault()
			}
			return proposalItem("p"+id, start, start.Add(time.Hour*24), "1")
		}
		return nil
	})
	defer srv.Close()
	r := newReader(t, srv)
	ctx := context.Background()

	latest, err := r.LatestProposalID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), latest)

	page, next, err := r.Proposals(ctx, addr, latest, 3)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, int64(5), page[0].ID)
	assert.Equal(t, int64(3), page[1].ID)
	assert.Equal(t, VoteFor, page[0].Vote)
	assert.Equal(t, int64(2), next)
	assert.Equal(t, 2, votes)

	page, next, err = r.Proposals(ctx, "", next, 3)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "p2", page[0].Title)
	assert.Equal(t, int64(0), next)

	page, next, err = r.Proposals(ctx, "", 0, 3)
	require.NoError(t, err)
	assert.Empty(t, page)
	assert.Zero(t, next)
}

// ---------------------------------------------------------------------------
// fees and protocol transfers
// ---------------------------------------------------------------------------

func TestNetworkFeeWithoutPublicKey(t *testing.T) {
	var hits int32
	srv := node(t, func(call) any {
		atomic.AddInt32(&hits, 1)
		return nil
	})
	defer srv.Close()
	fee, err := newReader(t, srv).NetworkFee(context.Background(), config.NEOHash, newKey(t).Address(), "1", "")
	require.NoError(t, err)
	assert.Equal(t, "0", fee)
	assert.Zero(t, atomic.LoadInt32(&hits))
}

func TestNetworkFeeBuildsUnsignedTransfer(t *testing.T) {
	key := newKey(t)
	pub := key.PublicKey()
	var txParam string
	srv := node(t, func(c call) any {
		switch c.Method {
		case "getblockcount":
			return 100
		case "calculatenetworkfee":
			_ = json.Unmarshal(c.Params[0], &txParam)
			return map[string]any{"networkfee": 1234567}
		}
		return nil
	})
	defer srv.Close()

	fee, err := newReader(t, srv).NetworkFee(context.Background(), config.NEOHash, key.Address(), "10", pub.StringCompressed())
	require.NoError(t, err)
	assert.Equal(t, "1234567", fee)

	raw, err := base64.StdEncoding.DecodeString(txParam)
	require.NoError(t, err)
	tx, err := transaction.NewTransactionFromBytes(raw)
	require.NoError(t, err)
	assert.Equal(t, uint32(100+config.ValidUntilBlockIncrement), tx.ValidUntilBlock)
	require.Len(t, tx.Signers, 1)
	assert.Equal(t, pub.GetScriptHash(), tx.Signers[0].Account)
	assert.Equal(t, transaction.CalledByEntry, tx.Signers[0].Scopes)
	require.Len(t, tx.Scripts, 1)
	assert.Equal(t, pub.GetVerificationScript(), tx.Scripts[0].VerificationScript)
}

func TestNetworkFeeRejectsBadKey(t *testing.T) {
	srv := node(t, blockCount(1))
	defer srv.Close()
	_, err := newReader(t, srv).NetworkFee(context.Background(), config.NEOHash, newKey(t).Address(), "1", "zz")
	assert.Error(t, err)
}

func TestTransferScriptRejectsBadInput(t *testing.T) {
	addr := newKey(t).Address()
	_, err := TransferScript("0xnothex", addr, addr, "1")
	assert.Error(t, err)
	_, err = TransferScript(config.NEOHash, "bad", addr, "1")
	assert.Error(t, err)
	_, err = TransferScript(config.NEOHash, addr, addr, "1.5")
	assert.Error(t, err)
	script, err := TransferScript(config.NEOHash, addr, addr, "1")
	require.NoError(t, err)
	assert.NotEmpty(t, script)
}

func TestPlanFor(t *testing.T) {
	srv := node(t, func(call) any { return nil })
	defer srv.Close()
	r := newReader(t, srv)

	p, err := r.PlanFor(Mint, "10")
	require.NoError(t, err)
	assert.Equal(t, Plan{Action: Mint, Contract: config.NEOHash, Amount: "10"}, p)

	p, err = r.PlanFor(Redeem, "100")
	require.NoError(t, err)
	assert.Equal(t, Plan{Action: Redeem, Contract: config.GASHash, Amount: "10000000"}, p)

	p, err = r.PlanFor(ClaimGAS, "")
	require.NoError(t, err)
	assert.Equal(t, Plan{Action: ClaimGAS, Contract: config.BNEOHash, Amount: "0"}, p)

	for _, bad := range []string{"0", "-1", "abc", "1.5"} {
		_, err := r.PlanFor(Mint, bad)
		assert.ErrorIs(t, err, ErrInvalidAmount, bad)
	}
	_, err = r.PlanFor("swap", "1")
	assert.Error(t, err)
}

func TestDryRunSignsAsSender(t *testing.T) {
	addr := newKey(t).Address()
	var seen call
	srv := node(t, func(c call) any {
		seen = c
		return halt(map[string]any{"type": "Boolean", "value": true})
	})
	defer srv.Close()
	r := newReader(t, srv)

	res, err := r.DryRun(context.Background(), addr, Plan{Action: Mint, Contract: config.NEOHash, Amount: "10"})
	require.NoError(t, err)
	assert.True(t, res.Halted())

	sender, _ := neo.ScriptHashFromAddress(addr)
	require.Len(t, seen.Params, 4)
	var signers []neo.RPCSigner
	require.NoError(t, json.Unmarshal(seen.Params[3], &signers))
	assert.Equal(t, sender, signers[0].Account)
	assert.Equal(t, "transfer", seen.Operation)
	assert.Equal(t, sender, seen.argString(0))
	assert.Equal(t, "10", seen.argString(2))
	assert.Equal(t, "Any", seen.Args[3].Type)
}
