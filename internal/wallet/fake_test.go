package wallet

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/nspcc-dev/neo-go/pkg/crypto/keys"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/neoburger/burgerctl/internal/confirm"
	"github.com/neoburger/burgerctl/internal/neo"
	"github.com/neoburger/burgerctl/internal/state"
)

// ---------------------------------------------------------------------------
// fake provider
// ---------------------------------------------------------------------------

type fakeProvider struct {
	mu sync.Mutex

	name      string
	caps      Capabilities
	initErr   error
	initPanic bool

	account    Account
	connectErr error
	holdings   []Holding
	balanceErr error
	network    string
	networkErr error
	txid       string
	invokeErr  error
	logs       []*neo.ApplicationLog
	logErrs    []error
	pubKey     string
	pubErr     error

	events      Events
	connects    int
	invokes     []neo.InvocationRequest
	logCalls    int
	disconnects int
}

func (f *fakeProvider) Name() string               { return f.name }
func (f *fakeProvider) Capabilities() Capabilities { return f.caps }

func (f *fakeProvider) Init(_ context.Context, ev Events) error {
	if f.initPanic {
		panic("bridge exploded")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = ev
	return f.initErr
}

func (f *fakeProvider) Connect(context.Context) (Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connects++
	return f.account, f.connectErr
}

func (f *fakeProvider) Balances(context.Context, string) ([]Holding, error) {
	return f.holdings, f.balanceErr
}

func (f *fakeProvider) Network(context.Context) (string, error) {
	return f.network, f.networkErr
}

func (f *fakeProvider) Invoke(_ context.Context, req neo.InvocationRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invokes = append(f.invokes, req)
	return f.txid, f.invokeErr
}

// ApplicationLog replays logs and logErrs in order; the last log repeats.
func (f *fakeProvider) ApplicationLog(context.Context, string) (*neo.ApplicationLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.logCalls
	f.logCalls++
	if i < len(f.logErrs) && f.logErrs[i] != nil {
		return nil, f.logErrs[i]
	}
	if len(f.logs) == 0 {
		return nil, nil
	}
	if i >= len(f.logs) {
		i = len(f.logs) - 1
	}
	return f.logs[i], nil
}

func (f *fakeProvider) PublicKey(context.Context) (string, error) {
	return f.pubKey, f.pubErr
}

func (f *fakeProvider) Disconnect(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disconnects++
	return nil
}

func (f *fakeProvider) invoked() []neo.InvocationRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]neo.InvocationRequest(nil), f.invokes...)
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func pending() *neo.ApplicationLog { return &neo.ApplicationLog{} }

func vmState(s string) *neo.ApplicationLog {
	return &neo.ApplicationLog{Executions: []neo.Execution{{VMState: s}}}
}

// newAddress returns a fresh valid N3 address.
func newAddress(t *testing.T) string {
	t.Helper()
	pk, err := keys.NewPrivateKey()
	require.NoError(t, err)
	return pk.Address()
}

type sleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *sleepRecorder) sleep(_ context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays = append(s.delays, d)
	return nil
}

type harness struct {
	provider *fakeProvider
	store    *state.Store
	session  *Session
	sleeps   *sleepRecorder
	logs     *bytes.Buffer
	adapter  *Adapter
}

func newHarness(t *testing.T, p *fakeProvider) *harness {
	t.Helper()
	h := &harness{
		provider: p,
		store:    state.NewStore(),
		session:  NewSession(t.TempDir() + "/session.json"),
		sleeps:   &sleepRecorder{},
		logs:     &bytes.Buffer{},
	}
	h.adapter = NewAdapter(p, h.store,
		WithLogger(zerolog.New(h.logs)),
		WithSession(h.session),
		WithProtocol(Protocol{
			ToAddress:  newAddress(t),
			NoBug:      "0x1111111111111111111111111111111111111111",
			Governance: "0x2222222222222222222222222222222222222222",
			Decimals:   map[string]int32{neoHash: 0, gasHash: 8},
			Symbols:    map[string]string{"NEO": neoHash, "GAS": gasHash},
			Network:    neo.MainNet,
		}),
		WithPollOptions(confirm.WithSleep(h.sleeps.sleep)),
	)
	return h
}

const (
	neoHash = "0xef4073a0f2b305a38ec4050e4d3d28bc40ea63f5"
	gasHash = "0xd2a4cff31913016155e38e474a2c06d08be276cf"
)
