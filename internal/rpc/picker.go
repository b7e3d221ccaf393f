// Package rpc measures the configured Neo N3 query endpoints and orders
// them into the primary/fallback pair used by chain.Client.
package rpc

import (
	"errors"
	"sync"
	"time"
)

// ErrNoHealthyRPC is returned when no healthy RPC endpoint is available.
var ErrNoHealthyRPC = errors.New("no healthy RPC endpoint available")

// Algorithm defines how the primary endpoint is selected.
type Algorithm string

const (
	// AlgorithmFailover keeps configured order, skipping unhealthy nodes.
	AlgorithmFailover Algorithm = "failover"
	// AlgorithmFastest scores nodes by latency and height.
	AlgorithmFastest Algorithm = "fastest"

	// Nodes more than this many blocks behind the best are discarded.
	staleBlockThreshold = 3
	// The fastest winner is reused for this long.
	cacheTTL = 5 * time.Minute
)

// Valid reports whether a is a known algorithm.
func (a Algorithm) Valid() bool {
	return a == AlgorithmFailover || a == AlgorithmFastest
}

// Endpoint is a query endpoint with its measured attributes.
type Endpoint struct {
	URL     string
	Latency time.Duration
	Height  uint32
	Healthy bool // meaningful only when Checked
	Checked bool
}

// Picker selects an endpoint according to its algorithm.
type Picker struct {
	algo Algorithm

	mu          sync.Mutex
	cachedURL   string
	cacheExpiry time.Time
	onBenchmark func()
}

// NewPicker creates a picker. Unknown algorithms pick the fastest node.
func NewPicker(algo Algorithm) *Picker {
	return &Picker{algo: algo}
}

// OnBenchmark registers a hook run each time the fastest node is
// recomputed.
func (p *Picker) OnBenchmark(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onBenchmark = fn
}

// Pick selects an endpoint from endpoints.
func (p *Picker) Pick(endpoints []Endpoint) (*Endpoint, error) {
	if len(endpoints) == 0 {
		return nil, ErrNoHealthyRPC
	}
	if p.algo == AlgorithmFailover {
		return pickFailover(endpoints)
	}
	return p.pickFastest(endpoints)
}

func (p *Picker) pickFastest(endpoints []Endpoint) (*Endpoint, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cachedURL != "" && time.Now().Before(p.cacheExpiry) {
		for i := range endpoints {
			if endpoints[i].URL == p.cachedURL {
				return &endpoints[i], nil
			}
		}
	}
	if p.onBenchmark != nil {
		p.onBenchmark()
	}

	best := bestHeight(endpoints)
	var winner *Endpoint
	var bestScore float64
	for _, e := range candidates(endpoints) {
		if stale(e, best) {
			continue
		}
		if s := score(e, best); winner == nil || s > bestScore {
			winner, bestScore = e, s
		}
	}
	if winner == nil {
		return nil, ErrNoHealthyRPC
	}
	p.cachedURL = winner.URL
	p.cacheExpiry = time.Now().Add(cacheTTL)
	return winner, nil
}

func pickFailover(endpoints []Endpoint) (*Endpoint, error) {
	for i := range endpoints {
		if e := &endpoints[i]; !e.Checked || e.Healthy {
			return e, nil
		}
	}
	return nil, ErrNoHealthyRPC
}

// --- scoring ---

func bestHeight(endpoints []Endpoint) uint32 {
	var best uint32
	for _, e := range endpoints {
		best = max(best, e.Height)
	}
	return best
}

func stale(e *Endpoint, best uint32) bool {
	return best > e.Height && best-e.Height > staleBlockThreshold
}

// score favors low latency and loses a point per block behind best.
func score(e *Endpoint, best uint32) float64 {
	var s float64
	if ms := e.Latency.Milliseconds(); ms > 0 {
		s += 1000.0 / float64(ms)
	}
	if best > 0 {
		s += 10 - (float64(best) - float64(e.Height))
	}
	return s
}

// candidates returns the endpoints eligible for selection. Without any
// health data every endpoint is a candidate.
func candidates(endpoints []Endpoint) []*Endpoint {
	var out []*Endpoint
	for i := range endpoints {
		if e := &endpoints[i]; !e.Checked || e.Healthy {
			out = append(out, e)
		}
	}
	return out
}
