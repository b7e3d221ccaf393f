package wallet

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/neoburger/burgerctl/internal/confirm"
	"github.com/neoburger/burgerctl/internal/neo"
	"github.com/neoburger/burgerctl/internal/state"
)

// ErrNotConnected is reported when an operation needs a connected address.
var ErrNotConnected = errors.New("wallet not connected")

// ErrNoAccount is reported when a wallet accepts a connect without naming
// an account.
var ErrNoAccount = errors.New("wallet returned no account")

// Protocol holds the contract coordinates mutating operations target.
type Protocol struct {
	// ToAddress receives mint, redeem and claim transfers.
	ToAddress  string
	NoBug      string
	Governance string
	// Decimals maps asset script hash to its decimal shift.
	Decimals map[string]int32
	// Symbols maps wallet-reported symbols to script hashes.
	Symbols map[string]string
	// Network is the normalized network mutating operations require.
	// Empty disables the guard.
	Network string
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithLogger sets the adapter logger.
func WithLogger(l zerolog.Logger) Option { return func(a *Adapter) { a.log = l } }

// WithSession sets where reconnection markers are kept.
func WithSession(s *Session) Option { return func(a *Adapter) { a.markers = s } }

// WithProtocol sets the protocol coordinates.
func WithProtocol(p Protocol) Option { return func(a *Adapter) { a.proto = p } }

// WithPollOptions configures the confirmation poller of every submission.
func WithPollOptions(opts ...confirm.Option) Option {
	return func(a *Adapter) { a.pollOpts = append(a.pollOpts, opts...) }
}

// WithReload sets the hook run after Disconnect for providers whose
// channel teardown must be followed by a fresh init.
func WithReload(fn func(ctx context.Context)) Option {
	return func(a *Adapter) { a.reload = fn }
}

// Adapter drives one Provider through the uniform wallet contract. All
// methods are safe on a nil *Adapter and then do nothing.
type Adapter struct {
	provider Provider
	caps     Capabilities
	store    *state.Store
	markers  *Session
	proto    Protocol
	pollOpts []confirm.Option
	reload   func(ctx context.Context)
	log      zerolog.Logger

	mu      sync.Mutex
	address string
	network string
	pubKey  string
}

// NewAdapter binds p to the shared projection store.
func NewAdapter(p Provider, store *state.Store, opts ...Option) *Adapter {
	a := &Adapter{
		provider: p,
		caps:     p.Capabilities(),
		store:    store,
		log:      zerolog.Nop(),
	}
	for _, o := range opts {
		o(a)
	}
	a.log = a.log.With().Str("wallet", p.Name()).Logger()
	return a
}

// Name returns the provider name.
func (a *Adapter) Name() string {
	if a == nil {
		return ""
	}
	return a.provider.Name()
}

// Address returns the address of this adapter's session.
func (a *Adapter) Address() string {
	if a == nil {
		return ""
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.address
}

// InitDapi performs the provider handshake, subscribes to wallet events and
// reconnects silently when the markers allow it.
func (a *Adapter) InitDapi(ctx context.Context) error {
	if a == nil {
		return nil
	}
	err := a.provider.Init(ctx, Events{
		Disconnected:   a.onDisconnected,
		AccountChanged: a.onAccountChanged,
		NetworkChanged: a.onNetworkChanged,
	})
	if err != nil {
		Report(a.log, err)
		return err
	}
	a.log.Debug().Msg("wallet ready")
	if a.shouldAutoConnect() {
		a.GetAccount(ctx)
	}
	return nil
}

func (a *Adapter) shouldAutoConnect() bool {
	name := a.provider.Name()
	switch a.caps.AutoConnect {
	case Always:
		return true
	case IfMarked:
		return a.markers.Connected() && a.markers.LastUsed() == name
	case IfLastUsed:
		return a.markers.LastUsed() == name
	}
	return false
}

// GetAccount prompts the wallet for its account and publishes it. It
// returns the connected address, or "" when the wallet refused.
func (a *Adapter) GetAccount(ctx context.Context) string {
	if a == nil {
		return ""
	}
	acct, err := a.provider.Connect(ctx)
	if err == nil && acct.Address == "" {
		err = ErrNoAccount
	}
	if err != nil {
		Report(a.log, err)
		return ""
	}
	a.mu.Lock()
	a.address = acct.Address
	if acct.PublicKey != "" {
		a.pubKey = acct.PublicKey
	}
	a.mu.Unlock()

	a.GetNetwork(ctx, true)
	if a.caps.PersistMarker {
		a.markers.MarkConnected(a.provider.Name())
	}
	a.store.Update(state.WalletName(a.provider.Name()), state.Address(acct.Address))
	a.log.Info().Str("address", acct.Address).Msg("wallet connected")
	return acct.Address
}

// GetBalance fetches the holdings of the projected address, converts them to
// decimal strings keyed by script hash and publishes them.
func (a *Adapter) GetBalance(ctx context.Context) map[string]string {
	if a == nil {
		return nil
	}
	addr := a.store.Address()
	if addr == "" {
		Report(a.log, ErrNotConnected)
		return nil
	}
	holdings, err := a.provider.Balances(ctx, addr)
	if err != nil {
		Report(a.log, err)
		return nil
	}
	balance := a.convert(holdings)
	a.store.Update(state.Balance(balance))
	return balance
}

func (a *Adapter) convert(holdings []Holding) map[string]string {
	out := make(map[string]string, len(holdings))
	for _, h := range holdings {
		switch a.caps.Balances {
		case BySymbol:
			if hash, ok := a.proto.Symbols[strings.ToUpper(h.Asset)]; ok {
				out[hash] = h.Amount
			}
		case ShiftKnown:
			if d, ok := a.proto.Decimals[strings.ToLower(h.Asset)]; ok {
				out[strings.ToLower(h.Asset)] = neo.IntegerToDecimal(h.Amount, d)
			}
		case ShiftOrPassthrough:
			if d, ok := a.proto.Decimals[strings.ToLower(h.Asset)]; ok {
				out[strings.ToLower(h.Asset)] = neo.IntegerToDecimal(h.Amount, d)
			} else {
				out[h.Asset] = h.Amount
			}
		}
	}
	return out
}

// GetNetwork returns the wallet network normalized to N3MainNet, N3TestNet
// or "". The projection is written only when shouldUpdate is set.
func (a *Adapter) GetNetwork(ctx context.Context, shouldUpdate bool) string {
	if a == nil {
		return ""
	}
	raw, err := a.provider.Network(ctx)
	if err != nil {
		Report(a.log, err)
		return ""
	}
	network := neo.NormalizeNetwork(raw)
	if shouldUpdate {
		a.mu.Lock()
		a.network = network
		a.mu.Unlock()
		a.store.Update(state.Network(network))
	}
	return network
}

// GetPublicKey returns the account public key or "" when the wallet cannot
// provide one.
func (a *Adapter) GetPublicKey(ctx context.Context) string {
	if a == nil {
		return ""
	}
	a.mu.Lock()
	cached := a.pubKey
	a.mu.Unlock()
	if cached != "" {
		return cached
	}
	key, err := a.provider.PublicKey(ctx)
	if err != nil {
		Report(a.log, err)
		return ""
	}
	a.mu.Lock()
	a.pubKey = key
	a.mu.Unlock()
	return key
}

// Disconnect clears the markers and the projected address, then asks the
// wallet to drop the session. Wallet-side failures are only logged.
func (a *Adapter) Disconnect(ctx context.Context) {
	if a == nil {
		return
	}
	a.clear()
	if err := a.provider.Disconnect(ctx); err != nil {
		a.log.Debug().Err(err).Msg("wallet disconnect")
	}
	if a.caps.ReloadOnDisconnect && a.reload != nil {
		a.reload(ctx)
	}
}

// clear resets the session state; network and balance stay as they are.
func (a *Adapter) clear() {
	a.markers.Clear()
	a.mu.Lock()
	a.address = ""
	a.pubKey = ""
	a.mu.Unlock()
	a.store.Update(state.Address(""))
}

func (a *Adapter) onDisconnected() {
	a.log.Info().Msg("wallet disconnected")
	a.clear()
}

func (a *Adapter) onAccountChanged(address string) {
	a.mu.Lock()
	a.address = address
	a.pubKey = ""
	a.mu.Unlock()
	a.store.Update(state.Address(address))
}

func (a *Adapter) onNetworkChanged(network string) {
	n := neo.NormalizeNetwork(network)
	a.mu.Lock()
	a.network = n
	a.mu.Unlock()
	a.store.Update(state.Network(n))
}

// ---------------------------------------------------------------------------
// mutating operations
// ---------------------------------------------------------------------------

// Transfer sends amount (smallest unit) of the NEP-17 token at contract from
// the connected address to the protocol destination.
func (a *Adapter) Transfer(ctx context.Context, contract, amount string) neo.Outcome {
	if a == nil {
		return neo.Outcome{}
	}
	from := a.store.Address()
	if from == "" {
		Report(a.log, ErrNotConnected)
		return neo.Failed(ErrNotConnected)
	}
	signer, err := neo.ScriptHashFromAddress(from)
	if err != nil {
		Report(a.log, err)
		return neo.Failed(err)
	}
	var fromArg, toArg neo.Param
	if a.caps.AddressArgs {
		fromArg, toArg = neo.Address(from), neo.Address(a.proto.ToAddress)
	} else {
		to, err := neo.ScriptHashFromAddress(a.proto.ToAddress)
		if err != nil {
			Report(a.log, err)
			return neo.Failed(err)
		}
		fromArg, toArg = neo.Hash160(signer), neo.Hash160(to)
	}
	return a.submit(ctx, neo.InvocationRequest{
		Contract:  contract,
		Operation: "transfer",
		Args:      []neo.Param{fromArg, toArg, neo.Integer(amount), neo.Any()},
		Scope:     neo.ScopeCalledByEntry,
		Signer:    signer,
	})
}

// ClaimNoBug claims a NoBug airdrop allocation with its Merkle proof.
func (a *Adapter) ClaimNoBug(ctx context.Context, scriptHash, amount, nonce string, proof []string) neo.Outcome {
	if a == nil {
		return neo.Outcome{}
	}
	hashes := make([]neo.Param, len(proof))
	for i, p := range proof {
		hashes[i] = neo.Hash256(p)
	}
	return a.submit(ctx, neo.InvocationRequest{
		Contract:  a.proto.NoBug,
		Operation: "claim",
		Args: []neo.Param{
			neo.Hash160(scriptHash),
			neo.Integer(amount),
			neo.Integer(nonce),
			neo.Array(hashes...),
		},
		Scope:  neo.ScopeCalledByEntry,
		Signer: scriptHash,
	})
}

// NewProposal submits a governance proposal executing method on scriptHash
// with args once passed.
func (a *Adapter) NewProposal(ctx context.Context, address, id, title, desc, scriptHash, method string, args []neo.Param) neo.Outcome {
	if a == nil {
		return neo.Outcome{}
	}
	signer, err := neo.ScriptHashFromAddress(address)
	if err != nil {
		Report(a.log, err)
		return neo.Failed(err)
	}
	return a.submit(ctx, neo.InvocationRequest{
		Contract:  a.proto.Governance,
		Operation: "newProposal",
		Args: []neo.Param{
			neo.Hash160(signer),
			neo.String(title),
			neo.String(desc),
			neo.Integer(id),
			neo.Hash160(scriptHash),
			neo.String(method),
			neo.Array(args...),
		},
		Scope:  neo.ScopeCalledByEntry,
		Signer: signer,
	})
}

// Vote casts, flips or withdraws a vote on proposal id.
func (a *Adapter) Vote(ctx context.Context, address, id string, forOrAgainst, unvote bool) neo.Outcome {
	if a == nil {
		return neo.Outcome{}
	}
	signer, err := neo.ScriptHashFromAddress(address)
	if err != nil {
		Report(a.log, err)
		return neo.Failed(err)
	}
	return a.submit(ctx, neo.InvocationRequest{
		Contract:  a.proto.Governance,
		Operation: "vote",
		Args: []neo.Param{
			neo.Hash160(signer),
			neo.Integer(id),
			neo.Bool(forOrAgainst),
			neo.Bool(unvote),
		},
		Scope:  neo.ScopeCalledByEntry,
		Signer: signer,
	})
}

// submit runs the submit and confirm protocol for req. A provider failure
// or the "-1" sentinel ends in an error outcome without a txid; otherwise
// the outcome carries the txid and the verdict of its application log.
func (a *Adapter) submit(ctx context.Context, req neo.InvocationRequest) neo.Outcome {
	if err := a.guardNetwork(ctx); err != nil {
		Report(a.log, err)
		return neo.Failed(err)
	}

	txid, err := a.provider.Invoke(ctx, req)
	if err != nil {
		Report(a.log, err)
		return neo.Failed(err)
	}
	if txid == "" || txid == neo.FailedTxID {
		a.log.Warn().Str("operation", req.Operation).Msg("wallet returned no transaction id")
		return neo.Failed(nil)
	}
	a.log.Info().Str("operation", req.Operation).Str("txid", txid).Msg("transaction submitted")

	opts := append([]confirm.Option{
		confirm.WithLogger(a.log),
		confirm.WithErrorHandler(func(_ string, err error) { Report(a.log, err) }),
	}, a.pollOpts...)
	status, err := confirm.New(a.provider.ApplicationLog, opts...).Wait(ctx, txid)
	if err != nil {
		a.log.Warn().Err(err).Str("txid", txid).Msg("confirmation abandoned")
	}
	a.log.Info().Str("txid", txid).Str("status", string(status)).Msg("transaction settled")
	return neo.Outcome{Status: status, TxID: txid}
}

// guardNetwork refuses to submit when the wallet is on another network
// than the protocol requires. The wallet is queried without publishing.
func (a *Adapter) guardNetwork(ctx context.Context) error {
	if a.proto.Network == "" {
		return nil
	}
	if a.GetNetwork(ctx, false) != a.proto.Network {
		return ErrNetworkMismatch
	}
	return nil
}
