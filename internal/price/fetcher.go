// Package price quotes NEO and GAS in USD.
package price

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/neoburger/burgerctl/internal/chain"
	"github.com/neoburger/burgerctl/internal/config"
	"github.com/neoburger/burgerctl/internal/neo"
)

// ErrUnavailable is returned when neither the oracle nor the quote API
// produced both prices.
var ErrUnavailable = errors.New("price not available")

// Oracle prices carry six decimals.
const oracleDecimals = 6

// Quote is a pair of USD unit prices.
type Quote struct {
	NEO decimal.Decimal
	GAS decimal.Decimal
}

// GASPerNEO is how much GAS one NEO buys.
func (q Quote) GASPerNEO() decimal.Decimal {
	if q.GAS.IsZero() {
		return decimal.Zero
	}
	return q.NEO.Div(q.GAS)
}

// Fetcher retrieves quotes from the on-chain price oracle scripts and falls
// back to the OneGate quote API.
type Fetcher struct {
	chain     *chain.Client
	client    *http.Client
	contracts config.Contracts
	quoteURL  string
	log       zerolog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithLogger sets the fetcher logger.
func WithLogger(l zerolog.Logger) Option { return func(f *Fetcher) { f.log = l } }

// WithHTTPClient replaces the client used for the quote API.
func WithHTTPClient(hc *http.Client) Option { return func(f *Fetcher) { f.client = hc } }

// NewFetcher creates a fetcher. quoteURL may be empty to disable the API
// fallback.
func NewFetcher(client *chain.Client, contracts config.Contracts, quoteURL string, opts ...Option) *Fetcher {
	f := &Fetcher{
		chain:     client,
		client:    &http.Client{Timeout: 10 * time.Second},
		contracts: contracts,
		quoteURL:  quoteURL,
		log:       zerolog.Nop(),
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Quote returns the current NEO and GAS prices.
func (f *Fetcher) Quote(ctx context.Context) (Quote, error) {
	if f.contracts.NEOPriceScript != "" && f.contracts.GASPriceScript != "" {
		q, err := f.oracle(ctx)
		if err == nil {
			return q, nil
		}
		f.log.Warn().Err(err).Msg("price oracle failed, trying quote API")
	}
	if f.quoteURL == "" {
		return Quote{}, ErrUnavailable
	}
	return f.api(ctx)
}

// oracle runs both price scripts. The NEO price sits in field 1 of the
// result struct and the GAS price in field 2.
func (f *Fetcher) oracle(ctx context.Context) (Quote, error) {
	var q Quote
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		q.NEO, err = f.oracleField(gctx, f.contracts.NEOPriceScript, 1)
		return err
	})
	g.Go(func() (err error) {
		q.GAS, err = f.oracleField(gctx, f.contracts.GASPriceScript, 2)
		return err
	})
	if err := g.Wait(); err != nil {
		return Quote{}, err
	}
	return q, nil
}

func (f *Fetcher) oracleField(ctx context.Context, script string, field int) (decimal.Decimal, error) {
	res, err := f.chain.InvokeScript(ctx, script, "")
	if err != nil {
		return decimal.Zero, err
	}
	item, err := res.First()
	if err != nil {
		return decimal.Zero, err
	}
	fields, err := item.Items()
	if err != nil {
		return decimal.Zero, err
	}
	if len(fields) <= field {
		return decimal.Zero, fmt.Errorf("%w: price struct has %d fields", neo.ErrStackShape, len(fields))
	}
	v, err := fields[field].Integer()
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromBigInt(v, -oracleDecimals), nil
}

// api posts the asset hashes to the quote API, which answers with one
// price per hash in request order.
func (f *Fetcher) api(ctx context.Context) (Quote, error) {
	body, err := json.Marshal([]string{f.contracts.NEO, f.contracts.GAS})
	if err != nil {
		return Quote{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.quoteURL, bytes.NewReader(body))
	if err != nil {
		return Quote{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return Quote{}, fmt.Errorf("fetching prices: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Quote{}, fmt.Errorf("fetching prices: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Quote{}, fmt.Errorf("reading price response: %w", err)
	}
	// Response: [neoPrice, gasPrice]
	var raw []decimal.Decimal
	if err := json.Unmarshal(data, &raw); err != nil {
		return Quote{}, fmt.Errorf("parsing price response: %w", err)
	}
	if len(raw) < 2 {
		return Quote{}, fmt.Errorf("%w: got %d prices", ErrUnavailable, len(raw))
	}
	return Quote{NEO: raw[0], GAS: raw[1]}, nil
}
