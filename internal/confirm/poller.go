package confirm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/neoburger/burgerctl/internal/neo"
)

// ErrExhausted is returned when MaxAttempts lookups produced no verdict.
var ErrExhausted = errors.New("confirmation attempts exhausted")

// LogSource looks up the application log of a transaction. A nil log or a
// log without executions means the transaction is not indexed yet.
type LogSource func(ctx context.Context, txid string) (*neo.ApplicationLog, error)

// Poller waits for transactions to reach a terminal VM state. Each Wait
// call polls sequentially; separate calls are independent.
type Poller struct {
	source      LogSource
	backoff     Backoff
	maxAttempts int
	sleep       func(ctx context.Context, d time.Duration) error
	onError     func(txid string, err error)
	log         zerolog.Logger
}

// Option configures a Poller.
type Option func(*Poller)

// WithBackoff replaces the default 10s * 1.5^k schedule.
func WithBackoff(b Backoff) Option { return func(p *Poller) { p.backoff = b } }

// WithMaxAttempts bounds the number of lookups; 0 polls until ctx ends.
func WithMaxAttempts(n int) Option { return func(p *Poller) { p.maxAttempts = n } }

// WithSleep replaces the context-aware sleep, mainly for tests.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(p *Poller) { p.sleep = fn }
}

// WithErrorHandler receives every failed lookup. Failed lookups never end
// the wait.
func WithErrorHandler(fn func(txid string, err error)) Option {
	return func(p *Poller) { p.onError = fn }
}

// WithLogger sets the poller logger.
func WithLogger(l zerolog.Logger) Option { return func(p *Poller) { p.log = l } }

// New returns a Poller reading logs from source.
func New(source LogSource, opts ...Option) *Poller {
	p := &Poller{
		source:  source,
		backoff: DefaultBackoff(),
		sleep:   Sleep,
		log:     zerolog.Nop(),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Wait polls until txid halts (success) or faults (error). The first lookup
// is immediate. It returns StatusPending with a non-nil error only when ctx
// ends or MaxAttempts is reached.
func (p *Poller) Wait(ctx context.Context, txid string) (neo.Status, error) {
	for k := 0; ; k++ {
		if err := ctx.Err(); err != nil {
			return neo.StatusPending, err
		}

		log, err := p.source(ctx, txid)
		if err != nil {
			if p.onError != nil {
				p.onError(txid, err)
			}
			p.log.Debug().Err(err).Str("txid", txid).Int("attempt", k).Msg("application log lookup failed")
		} else if status, ok := log.Verdict(); ok {
			p.log.Debug().Str("txid", txid).Str("status", string(status)).Int("attempt", k).Msg("transaction confirmed")
			return status, nil
		}

		if p.maxAttempts > 0 && k+1 >= p.maxAttempts {
			return neo.StatusPending, fmt.Errorf("%w after %d lookups", ErrExhausted, k+1)
		}

		d := p.backoff.Next(k)
		p.log.Debug().Str("txid", txid).Dur("wait", d).Msg("transaction pending")
		if err := p.sleep(ctx, d); err != nil {
			return neo.StatusPending, err
		}
	}
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
