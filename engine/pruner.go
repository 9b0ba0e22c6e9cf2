package engine

import (
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/tomb.v2"
)

// GFDPruner is the single background worker that cancels every resting
// GFD order at the configured trading-session close (spec 4.4). It
// coordinates shutdown with the book's client-thread operations through a
// supervised goroutine (gopkg.in/tomb.v2) instead of the source's raw
// condition-variable-plus-atomic-bool pair — Tomb.Kill/Dying/Wait is the
// idiomatic Go shape of that same protocol (spec 5, "Cancellation/timeout
// semantics").
type GFDPruner struct {
	t *tomb.Tomb

	book      *Book
	clock     Clock
	closeHour int
	logger    zerolog.Logger

	// after is time.After by default; tests override it to avoid sleeping
	// through real trading-session boundaries.
	after func(time.Duration) <-chan time.Time
}

func newGFDPruner(b *Book, clock Clock, closeHour int, logger zerolog.Logger) *GFDPruner {
	return &GFDPruner{
		t:         new(tomb.Tomb),
		book:      b,
		clock:     clock,
		closeHour: closeHour,
		logger:    logger,
		after:     time.After,
	}
}

// Start launches the pruner's supervised goroutine.
func (p *GFDPruner) Start() {
	p.t.Go(p.run)
}

// Stop requests shutdown and blocks until the pruner goroutine exits,
// mirroring the source's destructor: signal, wake, join.
func (p *GFDPruner) Stop() error {
	p.t.Kill(nil)
	return p.t.Wait()
}

func (p *GFDPruner) run() error {
	for {
		wait := p.nextCloseDuration() + 100*time.Millisecond

		select {
		case <-p.t.Dying():
			p.logger.Debug().Msg("gfd pruner: shutting down")
			return nil
		case <-p.after(wait):
		}

		p.sweep()
	}
}

// nextCloseDuration computes the wall-clock time of the next occurrence of
// closeHour:00:00.000, advancing to tomorrow if that time has already
// passed today. Computed in the clock's own location (local time by
// default for SystemClock) — spec 9 flags local-vs-UTC as an open
// question; this implementation picks local time explicitly, as the
// source does, and accepts the DST caveat the spec calls out.
func (p *GFDPruner) nextCloseDuration() time.Duration {
	now := p.clock.Now()
	target := time.Date(now.Year(), now.Month(), now.Day(), p.closeHour, 0, 0, 0, now.Location())
	if !target.After(now) {
		target = target.AddDate(0, 0, 1)
	}
	return target.Sub(now)
}

// sweep collects every resting GFD order id under the book mutex, releases
// it, then reacquires to cancel each one through the ordinary gateway
// cancel path (spec 4.4, 5). Between the two phases an order may already
// be gone — cancel is idempotent, so that race is harmless.
func (p *GFDPruner) sweep() {
	b := p.book

	b.mu.Lock()
	ids := b.index.GFDOrderIDs()
	b.mu.Unlock()

	if len(ids) == 0 {
		return
	}

	b.mu.Lock()
	for _, id := range ids {
		b.gateway.cancel(id, true) // pruner-issued, not a user cancel: excluded from the Cancel latency bucket
	}
	b.mu.Unlock()

	p.logger.Debug().Int("cancelled", len(ids)).Msg("gfd pruner: day-close sweep")
}
