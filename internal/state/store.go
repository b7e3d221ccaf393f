// Package state holds the process-wide projection of the active wallet
// session: connected address, network, wallet name and balances.
package state

import (
	"maps"
	"sync"

	"github.com/ethereum/go-ethereum/event"
)

// Projection is a point-in-time copy of the shared state.
type Projection struct {
	Address    string
	Network    string
	WalletName string
	// Balance maps asset script hash to a decimal amount string.
	Balance map[string]string
	// Seq increases by one on every write.
	Seq uint64
}

// Connected reports whether an address is set.
func (p Projection) Connected() bool { return p.Address != "" }

// Field sets one field of the projection.
type Field func(*Projection)

// Address sets the connected address; "" marks the session disconnected.
func Address(addr string) Field { return func(p *Projection) { p.Address = addr } }

// Network sets the normalized network name.
func Network(network string) Field { return func(p *Projection) { p.Network = network } }

// WalletName sets the active provider name.
func WalletName(name string) Field { return func(p *Projection) { p.WalletName = name } }

// Balance replaces the balance map.
func Balance(b map[string]string) Field {
	return func(p *Projection) { p.Balance = maps.Clone(b) }
}

// Store is the shared mutable record every adapter writes into. Writes are
// last-writer-wins per field and are not coordinated between writers.
type Store struct {
	mu   sync.RWMutex
	cur  Projection
	feed event.Feed
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Update applies fields in order, bumps Seq and notifies subscribers with
// the resulting projection.
func (s *Store) Update(fields ...Field) Projection {
	s.mu.Lock()
	for _, f := range fields {
		f(&s.cur)
	}
	s.cur.Seq++
	snap := s.copyLocked()
	s.mu.Unlock()

	s.feed.Send(snap)
	return snap
}

// Snapshot returns a copy of the current projection.
func (s *Store) Snapshot() Projection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyLocked()
}

// Address returns the connected address.
func (s *Store) Address() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur.Address
}

// Seq returns the current write sequence.
func (s *Store) Seq() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur.Seq
}

// Subscribe delivers every projection written after the call to ch. Sends
// block the writer until each subscriber has received, so ch should be
// buffered and drained promptly.
func (s *Store) Subscribe(ch chan<- Projection) event.Subscription {
	return s.feed.Subscribe(ch)
}

func (s *Store) copyLocked() Projection {
	p := s.cur
	p.Balance = maps.Clone(s.cur.Balance)
	return p
}
