package engine

import (
	"time"

	"github.com/OussamaHadad/matchbook/book"
	"github.com/OussamaHadad/matchbook/domain"
)

// OrderGateway implements add/cancel/amend (spec 4.2). Every method here
// assumes the caller already holds the owning Book's mutex — Book.AddOrder
// / CancelOrder / AmendOrder are the lock-acquiring public entry points.
// This explicit internal-vs-public split is the alternative the source's
// design notes recommend over a reentrant mutex plus lock_on/amendedOrder
// booleans (spec 9, "Reentrancy").
type OrderGateway struct {
	bids, asks *book.BookSide
	index      *book.OrderIndex
	match      *MatchEngine
	latency    *LatencyMeter
	rejections RejectionCounts
}

func newOrderGateway(bids, asks *book.BookSide, index *book.OrderIndex, match *MatchEngine, latency *LatencyMeter) *OrderGateway {
	return &OrderGateway{bids: bids, asks: asks, index: index, match: match, latency: latency}
}

func (g *OrderGateway) sideOf(side domain.Side) (own, opposite *book.BookSide) {
	if side == domain.Bid {
		return g.bids, g.asks
	}
	return g.asks, g.bids
}

// add is the internal intake path used both by the public add and by
// amend's re-insertion phase. isNewOrder selects Add-bucket vs Amend-bucket
// latency accounting; priorElapsed folds an amend's cancel-phase elapsed
// time into the subsequent add-phase sample (spec 4.5).
func (g *OrderGateway) add(order *domain.Order, isNewOrder bool, priorElapsed time.Duration) []domain.Trade {
	start := time.Now()

	recordOutcome := func(outcome AddOutcome) {
		if g.latency == nil {
			return
		}
		elapsed := priorElapsed + time.Since(start)
		if isNewOrder {
			g.latency.RecordAdd(order.Kind, outcome, elapsed)
		} else {
			g.latency.RecordAmend(outcome, elapsed)
		}
	}

	if g.index.Has(order.ID) {
		g.rejections.DuplicateID++
		recordOutcome(OutcomeRejected)
		return nil
	}

	switch order.Kind {
	case domain.FAK:
		if !g.match.CanMatch(order.Side, order.Price) {
			g.rejections.FAKUnmatchable++
			recordOutcome(OutcomeRejected)
			return nil
		}
	case domain.FOK:
		if !g.match.CanFullyFill(order.Side, order.Price, order.RemainingShares) {
			g.rejections.FOKUnfillable++
			recordOutcome(OutcomeRejected)
			return nil
		}
	case domain.Market:
		_, opposite := g.sideOf(order.Side)
		levels := opposite.Levels(0)
		if len(levels) == 0 {
			g.rejections.MarketNoOpposite++
			recordOutcome(OutcomeRejected)
			return nil
		}
		worst := levels[len(levels)-1].Price
		_ = order.RewriteToGTC(worst) // worst is always > 0: every resting price is
	}

	own, _ := g.sideOf(order.Side)
	level, event, _ := own.Apply(order.Price, order.RemainingShares, book.ActionAdd)
	elem := level.Orders.PushBack(order)
	g.index.Put(order.ID, &book.IndexEntry{Order: order, Elem: elem, Level: level})

	outcome := OutcomeExistingLevel
	if event == book.EventNewLevel {
		outcome = OutcomeNewLevel
	}
	recordOutcome(outcome)

	return g.match.Match()
}

// cancel removes orderID if it is resting, a no-op if it is not — cancel
// is idempotent by construction (spec 8.7). excludeFromLatency is set when
// called from amend, since that cancel phase is accounted for by
// RecordAmend instead of RecordCancel (spec 4.5).
func (g *OrderGateway) cancel(orderID uint32, excludeFromLatency bool) {
	start := time.Now()

	entry, ok := g.index.Get(orderID)
	if !ok {
		return
	}

	own, _ := g.sideOf(entry.Order.Side)
	level := entry.Level
	lastInLevel := level.TotalOrders == 1

	level.Orders.Remove(entry.Elem)
	_, _, _ = own.Apply(entry.Order.Price, entry.Order.RemainingShares, book.ActionRemove)
	g.index.Delete(orderID)

	if !excludeFromLatency && g.latency != nil {
		g.latency.RecordCancel(lastInLevel, time.Since(start))
	}
}

// amend is cancel-then-add-with-the-same-id: the amended order loses its
// time priority and re-enters at the back of its (possibly new) price
// level (spec 3, "Amendment is defined as...").
func (g *OrderGateway) amend(orderID uint32, newPrice float64, newShares uint32) ([]domain.Trade, error) {
	if newPrice < 0 {
		return nil, &domain.OrderError{OrderID: orderID, Err: domain.ErrInvalidPrice}
	}
	if newShares == 0 {
		return nil, &domain.OrderError{OrderID: orderID, Err: domain.ErrInvalidShares}
	}

	entry, ok := g.index.Get(orderID)
	if !ok {
		return nil, nil // inexistent id: silent no-op
	}
	kind, side := entry.Order.Kind, entry.Order.Side

	start := time.Now()
	g.cancel(orderID, true)
	priorElapsed := time.Since(start)

	newOrder, err := domain.New(orderID, kind, side, newPrice, newShares)
	if err != nil {
		// The cancel phase already committed: the source this spec was
		// distilled from has the same non-transactional behavior (cancel
		// happens, then the replacement Order's constructor can still
		// throw). Amend is not atomic across this boundary.
		return nil, err
	}

	return g.add(newOrder, false, priorElapsed), nil
}
