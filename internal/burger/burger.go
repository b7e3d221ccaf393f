// Package burger is the read model of the NeoBurger protocol: supply and
// reward statistics, agents and committee, NoBug, governance proposals and
// network fee estimation. Everything here is read-only; state changes go
// through a wallet.Adapter.
package burger

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/neoburger/burgerctl/internal/chain"
	"github.com/neoburger/burgerctl/internal/config"
	"github.com/neoburger/burgerctl/internal/neo"
)

// Reader answers protocol queries from the chain and the statistics blobs.
type Reader struct {
	chain     *chain.Client
	contracts config.Contracts
	toAddress string

	client    *http.Client
	blobURL   string
	mirrorURL string
	assetURL  string
	network   string

	log      zerolog.Logger
	attempts uint
	delay    time.Duration
	now      func() time.Time
}

// Option configures a Reader.
type Option func(*Reader)

// WithLogger sets the reader logger.
func WithLogger(l zerolog.Logger) Option { return func(r *Reader) { r.log = l } }

// WithHTTPClient replaces the client used for blobs and the asset API.
func WithHTTPClient(hc *http.Client) Option { return func(r *Reader) { r.client = hc } }

// WithBlobURLs overrides the statistics blob stores. Both are fmt patterns
// taking the block height.
func WithBlobURLs(primary, mirror string) Option {
	return func(r *Reader) { r.blobURL, r.mirrorURL = primary, mirror }
}

// WithAssetURL overrides the asset info API pattern taking the contract hash.
func WithAssetURL(pattern string) Option { return func(r *Reader) { r.assetURL = pattern } }

// WithNetworkName sets the network sent to the asset info API.
func WithNetworkName(name string) Option { return func(r *Reader) { r.network = name } }

// WithRetryDelay sets the pause between primary blob attempts.
func WithRetryDelay(d time.Duration) Option { return func(r *Reader) { r.delay = d } }

// WithClock replaces time.Now for proposal status.
func WithClock(now func() time.Time) Option { return func(r *Reader) { r.now = now } }

// New returns a reader over client for the protocol contracts in cfg.
func New(client *chain.Client, cfg *config.Config, opts ...Option) *Reader {
	network := "mainnet"
	if cfg.Testnet() {
		network = "testnet"
	}
	r := &Reader{
		chain:     client,
		contracts: cfg.Contracts,
		toAddress: cfg.ToAddress(),
		client:    &http.Client{Timeout: config.RPCTimeout},
		blobURL:   config.StatsBlobURL,
		mirrorURL: config.StatsMirrorURL,
		assetURL:  config.AssetInfoURL,
		network:   network,
		log:       zerolog.Nop(),
		attempts:  3,
		delay:     time.Second,
		now:       time.Now,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// first runs a read-only call and returns the first stack item.
func (r *Reader) first(ctx context.Context, contract, method string, args ...neo.Param) (neo.StackItem, error) {
	if contract == "" {
		return neo.StackItem{}, fmt.Errorf("%s: contract not configured", method)
	}
	res, err := r.chain.InvokeFunction(ctx, contract, method, args, "")
	if err != nil {
		return neo.StackItem{}, err
	}
	item, err := res.First()
	if err != nil {
		return neo.StackItem{}, fmt.Errorf("%s: %w", method, err)
	}
	return item, nil
}

// integer runs a call returning one Integer and renders it in base 10.
func (r *Reader) integer(ctx context.Context, contract, method string, args ...neo.Param) (string, error) {
	item, err := r.first(ctx, contract, method, args...)
	if err != nil {
		return "", err
	}
	i, err := item.Integer()
	if err != nil {
		return "", fmt.Errorf("%s: %w", method, err)
	}
	return i.String(), nil
}
