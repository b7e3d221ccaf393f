package providers

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/neoburger/burgerctl/internal/chain"
	"github.com/neoburger/burgerctl/internal/neo"
	"github.com/neoburger/burgerctl/internal/wallet"
)

// Relay chain ids.
const (
	NeonMainNet = "neo3:mainnet"
	NeonTestNet = "neo3:testnet"
)

const neonTopic = "neon.topic"

// NeonWallet is Neon wallet paired over a relay channel. The channel only
// signs; balances and logs come from the query endpoints.
type NeonWallet struct {
	bridge
	chain   *chain.Client
	secrets wallet.SecretStore
	chainID string
	log     zerolog.Logger

	topicMu sync.Mutex
	topic   string
}

// NeonOption configures a NeonWallet.
type NeonOption func(*NeonWallet)

// NeonLogger sets the logger.
func NeonLogger(l zerolog.Logger) NeonOption { return func(p *NeonWallet) { p.log = l } }

// NewNeon returns the Neon provider. The pairing topic is kept in secrets so
// a later run can resume the session.
func NewNeon(dial Dialer, client *chain.Client, secrets wallet.SecretStore, chainID string, opts ...NeonOption) *NeonWallet {
	p := &NeonWallet{
		bridge:  bridge{name: Neon, dial: dial},
		chain:   client,
		secrets: secrets,
		chainID: chainID,
		log:     zerolog.Nop(),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *NeonWallet) Capabilities() wallet.Capabilities {
	return wallet.Capabilities{
		AutoConnect:        wallet.IfLastUsed,
		Balances:           wallet.ShiftOrPassthrough,
		PersistMarker:      true,
		ReloadOnDisconnect: true,
		AddressArgs:        true,
	}
}

func (p *NeonWallet) Init(ctx context.Context, ev wallet.Events) error {
	conn, err := p.open(ctx)
	if err != nil {
		return err
	}
	p.watch(conn, ev, false)
	if topic, err := p.secrets.Retrieve(wallet.SecretRef(neonTopic)); err == nil {
		p.setTopic(topic)
	}
	return nil
}

type neonSession struct {
	Topic   string `json:"topic"`
	Address string `json:"address"`
	ChainID string `json:"chainId"`
}

type topicParams struct {
	Topic string `json:"topic"`
}

// Connect resumes the stored pairing when the relay still knows it and
// pairs anew otherwise.
func (p *NeonWallet) Connect(ctx context.Context) (wallet.Account, error) {
	if topic := p.currentTopic(); topic != "" {
		var s neonSession
		if err := p.call(ctx, "loadSession", topicParams{Topic: topic}, &s); err == nil && s.Address != "" {
			return wallet.Account{Address: s.Address}, nil
		}
	}
	var s neonSession
	if err := p.call(ctx, "connect", map[string]string{"chainId": p.chainID}, &s); err != nil {
		return wallet.Account{}, err
	}
	p.setTopic(s.Topic)
	if s.Topic != "" {
		// The stored topic only lets a later run resume the pairing.
		if _, err := p.secrets.Store(neonTopic, s.Topic); err != nil {
			p.log.Warn().Err(err).Msg("neon: pairing not saved, the next run pairs again")
		}
	}
	return wallet.Account{Address: s.Address}, nil
}

// Network returns the relay chain id, e.g. "neo3:mainnet".
func (p *NeonWallet) Network(ctx context.Context) (string, error) {
	topic := p.currentTopic()
	if topic == "" {
		return "", nil
	}
	var chainID string
	if err := p.call(ctx, "getChainId", topicParams{Topic: topic}, &chainID); err != nil {
		return "", err
	}
	return chainID, nil
}

func (p *NeonWallet) Balances(ctx context.Context, address string) ([]wallet.Holding, error) {
	res, err := p.chain.NEP17Balances(ctx, address)
	if err != nil {
		return nil, err
	}
	out := make([]wallet.Holding, 0, len(res.Balance))
	for _, b := range res.Balance {
		out = append(out, wallet.Holding{Asset: b.AssetHash, Amount: b.Amount})
	}
	return out, nil
}

type neonInvocation struct {
	ScriptHash string      `json:"scriptHash"`
	Operation  string      `json:"operation"`
	Args       []neo.Param `json:"args"`
}

type neonInvokeParams struct {
	Topic       string           `json:"topic"`
	Invocations []neonInvocation `json:"invocations"`
	Signers     []signer         `json:"signers"`
}

// Invoke asks the paired wallet to sign and send req. The signer account
// is implied by the pairing.
func (p *NeonWallet) Invoke(ctx context.Context, req neo.InvocationRequest) (string, error) {
	params := neonInvokeParams{
		Topic: p.currentTopic(),
		Invocations: []neonInvocation{{
			ScriptHash: req.Contract,
			Operation:  req.Operation,
			Args:       req.Args,
		}},
		Signers: []signer{{Scopes: req.Scope.OrDefault().Code()}},
	}
	var txid string
	if err := p.call(ctx, "invokeFunction", params, &txid); err != nil {
		return neo.FailedTxID, err
	}
	return txid, nil
}

// ApplicationLog reads the log from the query endpoints. A log the node
// has not indexed yet is reported as pending.
func (p *NeonWallet) ApplicationLog(ctx context.Context, txid string) (*neo.ApplicationLog, error) {
	log, err := p.chain.ApplicationLog(ctx, txid)
	if errors.Is(err, chain.ErrNoResult) {
		return nil, nil
	}
	var rpcErr *chain.RPCError
	if errors.As(err, &rpcErr) {
		return nil, nil
	}
	return log, err
}

// PublicKey is not exposed over the relay.
func (p *NeonWallet) PublicKey(context.Context) (string, error) {
	return "", nil
}

// Disconnect ends the pairing and forgets its topic.
func (p *NeonWallet) Disconnect(ctx context.Context) error {
	err := p.call(ctx, "disconnect", topicParams{Topic: p.currentTopic()}, nil)
	p.setTopic("")
	if derr := p.secrets.Delete(wallet.SecretRef(neonTopic)); derr != nil && err == nil {
		err = derr
	}
	p.mu.Lock()
	conn := p.conn
	p.conn = nil
	p.mu.Unlock()
	if conn != nil {
		_ = conn.Close()
	}
	return err
}

func (p *NeonWallet) currentTopic() string {
	p.topicMu.Lock()
	defer p.topicMu.Unlock()
	return p.topic
}

func (p *NeonWallet) setTopic(t string) {
	p.topicMu.Lock()
	defer p.topicMu.Unlock()
	p.topic = t
}
