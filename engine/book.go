package engine

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"

	"github.com/OussamaHadad/matchbook/book"
	"github.com/OussamaHadad/matchbook/domain"
	"github.com/rs/zerolog"
)

// Book is the single-symbol order book façade: one mutex guards the bid
// side, the ask side, and the order index together, and every public
// method here is the lock-acquiring counterpart of an internal method that
// assumes the lock is already held (spec 5).
type Book struct {
	mu sync.Mutex

	bids  *book.BookSide
	asks  *book.BookSide
	index *book.OrderIndex

	match   *MatchEngine
	gateway *OrderGateway
	latency *LatencyMeter
	pruner  *GFDPruner

	cfg    Config
	stats  StatsSink
	logger zerolog.Logger
}

// NewBook wires bids/asks/index/match/gateway/latency together and starts
// the GFD pruner. trades and stats may be nil (NopTradeSink and "don't
// write stats", respectively); clock defaults to SystemClock.
func NewBook(cfg Config, clock Clock, trades TradeSink, stats StatsSink, logger zerolog.Logger) *Book {
	if trades == nil {
		trades = NopTradeSink{}
	}
	if clock == nil {
		clock = SystemClock{}
	}

	bids := book.NewBookSide(true)
	asks := book.NewBookSide(false)
	index := book.NewOrderIndex()
	latency := NewLatencyMeter()
	match := newMatchEngine(bids, asks, index, trades, latency)
	gateway := newOrderGateway(bids, asks, index, match, latency)

	b := &Book{
		bids:    bids,
		asks:    asks,
		index:   index,
		match:   match,
		gateway: gateway,
		latency: latency,
		cfg:     cfg,
		stats:   stats,
		logger:  logger,
	}
	b.pruner = newGFDPruner(b, clock, cfg.CloseHour, logger)
	b.pruner.Start()
	return b
}

// AddOrder admits order according to its kind's gate — FAK requires an
// immediately marketable counterpart, FOK requires full fillability, a
// Market order is rewritten to a GTC at the worst opposing price or
// rejected if the opposite side is empty (spec 4.2) — inserts whatever is
// left resting, runs the crossing loop, and returns every trade produced.
func (b *Book) AddOrder(order *domain.Order) []domain.Trade {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.gateway.add(order, true, 0)
}

// CancelOrder removes orderID if it is resting. A no-op if it is not.
func (b *Book) CancelOrder(orderID uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.gateway.cancel(orderID, false)
}

// AmendOrder replaces orderID's price and/or share count, forfeiting its
// time priority (spec 3). A no-op (nil, nil) if orderID is not resting.
func (b *Book) AmendOrder(orderID uint32, newPrice float64, newShares uint32) ([]domain.Trade, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.gateway.amend(orderID, newPrice, newShares)
}

// NumberOfOrders returns the count of currently-resting orders.
func (b *Book) NumberOfOrders() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.index.Len()
}

// RandomOrderID returns the id of an arbitrary resting order, or false if
// the book is empty. Used by load generators that need to exercise
// cancel/amend against live ids (spec 6).
func (b *Book) RandomOrderID() (uint32, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ids := b.index.AllIDs()
	if len(ids) == 0 {
		return 0, false
	}
	return ids[rand.Intn(len(ids))], true
}

// LevelView is one read-only row of a book-side depth snapshot.
type LevelView struct {
	Price       float64
	TotalShares uint32
	TotalOrders int
}

// BookSnapshot is a point-in-time depth view, best price first on each
// side (SPEC_FULL.md 11.1).
type BookSnapshot struct {
	Bids []LevelView
	Asks []LevelView
}

// Snapshot returns up to maxLevels price levels per side, best-to-worst.
// maxLevels <= 0 means unlimited.
func (b *Book) Snapshot(maxLevels int) BookSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return BookSnapshot{
		Bids: levelViews(b.bids.Levels(maxLevels)),
		Asks: levelViews(b.asks.Levels(maxLevels)),
	}
}

func levelViews(levels []*book.Level) []LevelView {
	views := make([]LevelView, len(levels))
	for i, l := range levels {
		views[i] = LevelView{Price: l.Price, TotalShares: l.TotalShares, TotalOrders: l.TotalOrders}
	}
	return views
}

// String renders a snapshot the way the source's console dump does: one
// line per level, bids then asks.
func (s BookSnapshot) String() string {
	var sb strings.Builder
	sb.WriteString("Bids:\n")
	for _, l := range s.Bids {
		fmt.Fprintf(&sb, "  Price = %v, Number of Bids = %d, Number of Shares = %d\n", l.Price, l.TotalOrders, l.TotalShares)
	}
	sb.WriteString("Asks:\n")
	for _, l := range s.Asks {
		fmt.Fprintf(&sb, "  Price = %v, Number of Asks = %d, Number of Shares = %d\n", l.Price, l.TotalOrders, l.TotalShares)
	}
	return sb.String()
}

// PrintBook renders the full current book depth.
func (b *Book) PrintBook() string {
	return b.Snapshot(0).String()
}

// OrderView is a read-only snapshot of a single resting order. It never
// exposes the live *domain.Order pointer, so a caller cannot mutate book
// state outside the mutex (SPEC_FULL.md 11.2).
type OrderView struct {
	ID              uint32
	Kind            domain.Kind
	Side            domain.Side
	Price           float64
	InitialShares   uint32
	RemainingShares uint32
}

// Order returns a snapshot of orderID if it is currently resting.
func (b *Book) Order(orderID uint32) (OrderView, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	entry, ok := b.index.Get(orderID)
	if !ok {
		return OrderView{}, false
	}
	o := entry.Order
	return OrderView{
		ID:              o.ID,
		Kind:            o.Kind,
		Side:            o.Side,
		Price:           o.Price,
		InitialShares:   o.InitialShares,
		RemainingShares: o.RemainingShares,
	}, true
}

// ClearLatencies discards every recorded latency sample.
func (b *Book) ClearLatencies() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.latency.Clear()
}

// LatencySnapshot returns the current latency buckets without clearing
// them (SPEC_FULL.md 11.3).
func (b *Book) LatencySnapshot() StatsSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.latency.Snapshot()
}

// WriteLatencyStats assembles the current latency snapshot and delegates
// serialization to the injected StatsSink; the core never writes files
// itself (spec 1). If cfg.ExpectedUpdates >= 0 and the total sample count
// doesn't match, this is a class-6 error and nothing is written.
func (b *Book) WriteLatencyStats(path string) error {
	snap := b.LatencySnapshot()

	if b.cfg.ExpectedUpdates >= 0 && int64(b.cfg.ExpectedUpdates) != snap.TotalSamples {
		return &StatsError{
			Err:    fmt.Errorf("%w: got %d, expected %d", ErrStatsMismatch, snap.TotalSamples, b.cfg.ExpectedUpdates),
			Detail: "consistency check",
		}
	}

	if b.stats == nil {
		return nil
	}
	if err := b.stats.Write(path, snap); err != nil {
		return &StatsError{Err: fmt.Errorf("%w: %v", ErrStatsIO, err), Detail: path}
	}
	return nil
}

// Rejections returns the running counts of silently-refused admissions
// (SPEC_FULL.md 11.5).
func (b *Book) Rejections() RejectionCounts {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.gateway.rejections
}

// Close signals the GFD pruner to stop and waits for it to exit.
func (b *Book) Close() error {
	return b.pruner.Stop()
}
