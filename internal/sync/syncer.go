// Package sync refreshes protocol contract hashes and query endpoints from a
// published deployments manifest.
package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog"

	"github.com/neoburger/burgerctl/internal/config"
	"github.com/neoburger/burgerctl/internal/neo"
)

// ErrNoSource is returned by Run when no manifest URL is configured.
var ErrNoSource = errors.New("no contracts source configured")

// Manifest maps a network mode ("mainnet", "testnet") to its deployment.
type Manifest map[string]Deployment

// Deployment is the published state of one network.
type Deployment struct {
	Contracts config.Contracts `json:"contracts"`
	RPC       []string         `json:"rpc,omitempty"`
}

// Syncer applies the manifest entry of the active network mode to the
// config.
type Syncer struct {
	cfg    *config.Config
	client *http.Client
	log    zerolog.Logger
	delay  time.Duration
	now    func() time.Time
}

// Option configures a Syncer.
type Option func(*Syncer)

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option { return func(s *Syncer) { s.log = l } }

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option { return func(s *Syncer) { s.client = hc } }

// WithRetryDelay sets the pause between fetch attempts.
func WithRetryDelay(d time.Duration) Option { return func(s *Syncer) { s.delay = d } }

// New creates a new Syncer.
func New(cfg *config.Config, opts ...Option) *Syncer {
	s := &Syncer{
		cfg:    cfg,
		client: &http.Client{Timeout: config.RPCTimeout},
		log:    zerolog.Nop(),
		delay:  time.Second,
		now:    time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Run fetches the manifest and merges the entry for the active mode into
// the config. Fields the manifest leaves empty keep their value. The caller
// saves the config.
func (s *Syncer) Run(ctx context.Context) (Deployment, error) {
	if s.cfg.ContractsSource == "" {
		return Deployment{}, fmt.Errorf("%w: run `burgerctl config sync --source <url>`", ErrNoSource)
	}
	m, err := s.fetchManifest(ctx, s.cfg.ContractsSource)
	if err != nil {
		return Deployment{}, fmt.Errorf("fetching manifest: %w", err)
	}
	mode := s.cfg.NetworkMode
	d, ok := m[mode]
	if !ok {
		return Deployment{}, fmt.Errorf("manifest has no %s deployment", mode)
	}
	if err := validate(d); err != nil {
		return Deployment{}, fmt.Errorf("%s deployment: %w", mode, err)
	}

	s.cfg.Contracts.Merge(d.Contracts)
	if len(d.RPC) > 0 {
		if s.cfg.RPC == nil {
			s.cfg.RPC = make(map[string][]string)
		}
		s.cfg.RPC[mode] = d.RPC
	}
	s.cfg.LastSynced = s.now().UTC().Format(time.RFC3339)
	s.log.Debug().Str("mode", mode).Str("bneo", s.cfg.Contracts.BNEO).Int("rpc", len(d.RPC)).Msg("contracts synced")
	return d, nil
}

// validate rejects malformed script hashes before they reach the config.
func validate(d Deployment) error {
	c := d.Contracts
	for name, hash := range map[string]string{
		"neo": c.NEO, "gas": c.GAS, "bneo": c.BNEO, "nobug": c.NoBug,
		"governance": c.Governance, "committee_info": c.CommitteeInfo, "nns": c.NNS,
	} {
		if hash == "" {
			continue
		}
		if _, err := neo.AddressFromScriptHash(hash); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

func (s *Syncer) fetchManifest(ctx context.Context, url string) (Manifest, error) {
	return retry.DoWithData(
		func() (Manifest, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return nil, retry.Unrecoverable(err)
			}
			resp, err := s.client.Do(req)
			if err != nil {
				return nil, err
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return nil, fmt.Errorf("manifest: HTTP %d", resp.StatusCode)
			}
			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return nil, err
			}
			var m Manifest
			if err := json.Unmarshal(body, &m); err != nil {
				return nil, retry.Unrecoverable(fmt.Errorf("parsing manifest: %w", err))
			}
			return m, nil
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(s.delay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
}
