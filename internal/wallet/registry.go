package wallet

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/neoburger/burgerctl/internal/state"
)

// Factory builds the adapter for one provider name.
type Factory func(ctx context.Context, name string) (*Adapter, error)

// Registry is the process-wide table of wallet adapters. An entry stays nil
// until its adapter initialized successfully.
type Registry struct {
	names   []string
	factory Factory
	log     zerolog.Logger

	mu      sync.RWMutex
	entries map[string]*Adapter

	wg sync.WaitGroup
}

// NewRegistry returns a registry for the given provider names.
func NewRegistry(names []string, factory Factory, log zerolog.Logger) *Registry {
	entries := make(map[string]*Adapter, len(names))
	for _, n := range names {
		entries[n] = nil
	}
	return &Registry{
		names:   slices.Clone(names),
		factory: factory,
		log:     log,
		entries: entries,
	}
}

// Names returns the provider names in registration order.
func (r *Registry) Names() []string {
	return slices.Clone(r.names)
}

// InitAll starts every provider's init independently. A failing or
// panicking init leaves its entry nil and does not affect the others.
func (r *Registry) InitAll(ctx context.Context) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		var g errgroup.Group
		for _, name := range r.names {
			g.Go(func() error {
				if err := r.init(ctx, name); err != nil {
					r.log.Debug().Err(err).Str("wallet", name).Msg("wallet unavailable")
				}
				return nil
			})
		}
		_ = g.Wait()
	}()
}

// Wait blocks until every init started by InitAll or Reload has settled.
func (r *Registry) Wait() {
	r.wg.Wait()
}

func (r *Registry) init(ctx context.Context, name string) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("wallet %s init panic: %v", name, p)
		}
	}()
	a, err := r.factory(ctx, name)
	if err != nil {
		return err
	}
	if err := a.InitDapi(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	r.entries[name] = a
	r.mu.Unlock()
	return nil
}

// Get returns the adapter for name, or nil when it is not ready.
func (r *Registry) Get(name string) *Adapter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.entries[name]
}

// Ready returns the names of initialized adapters in registration order.
func (r *Registry) Ready() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []string
	for _, n := range r.names {
		if r.entries[n] != nil {
			out = append(out, n)
		}
	}
	return out
}

// Active returns the adapter named by the projected wallet name.
func (r *Registry) Active(store *state.Store) *Adapter {
	return r.Get(store.Snapshot().WalletName)
}

// Reload drops the adapter for name and initializes a fresh one.
func (r *Registry) Reload(ctx context.Context, name string) {
	r.mu.Lock()
	if _, ok := r.entries[name]; !ok {
		r.mu.Unlock()
		return
	}
	r.entries[name] = nil
	r.mu.Unlock()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if err := r.init(ctx, name); err != nil {
			r.log.Debug().Err(err).Str("wallet", name).Msg("wallet reload failed")
		}
	}()
}
