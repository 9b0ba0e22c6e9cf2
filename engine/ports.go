// Package engine wires the book package's data structures into the
// matching engine, the order gateway, the GFD pruner and the latency
// meter, and exposes the whole thing as a single Book façade (spec 4, 5,
// 6). All mutating operations serialize on one mutex owned by Book.
package engine

import (
	"time"

	"github.com/OussamaHadad/matchbook/domain"
)

// Clock abstracts wall time for the GFD pruner. Production code uses
// SystemClock; tests inject a fake so the day-close sweep can be driven
// without sleeping real hours (spec 9, "Pruner clock").
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock, backed by time.Now.
type SystemClock struct{}

// Now returns the current wall-clock time.
func (SystemClock) Now() time.Time { return time.Now() }

// TradeSink receives every trade emitted by the crossing loop, in
// matching-loop order, contiguous within a single Add/Amend call. The core
// never persists or broadcasts trades itself — that is an external
// collaborator's job (spec 1).
type TradeSink interface {
	OnTrade(domain.Trade)
}

// NopTradeSink discards every trade. Useful as a default when a caller
// only wants the resting-book side effects.
type NopTradeSink struct{}

// OnTrade implements TradeSink by doing nothing.
func (NopTradeSink) OnTrade(domain.Trade) {}

// StatsSink persists a latency snapshot, e.g. to CSV or JSON. Serializing
// statistics to a file is explicitly out of scope for the core (spec 1);
// the core only assembles the StatsSnapshot and calls Write.
type StatsSink interface {
	Write(path string, snapshot StatsSnapshot) error
}

// Config holds the book's tunable, non-structural settings.
type Config struct {
	// CloseHour is the local hour (0-23) at which GFD orders are pruned.
	// Defaults to 16 per spec 4.4.
	CloseHour int
	// ExpectedUpdates, if >= 0, makes WriteLatencyStats fail when the
	// total sample count doesn't match (spec 7, class 6). -1 disables the
	// check.
	ExpectedUpdates int
}

// DefaultConfig returns the spec's stated defaults.
func DefaultConfig() Config {
	return Config{CloseHour: 16, ExpectedUpdates: -1}
}
