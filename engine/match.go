package engine

import (
	"container/list"
	"time"

	"github.com/OussamaHadad/matchbook/book"
	"github.com/OussamaHadad/matchbook/domain"
)

// MatchEngine is the crossing heart of the book: canMatch/canFullyFill
// admission checks, the main crossing loop, and the FAK tail sweep (spec
// 4.1). Every method here assumes the caller already holds the owning
// Book's mutex.
type MatchEngine struct {
	bids, asks *book.BookSide
	index      *book.OrderIndex
	trades     TradeSink
	latency    *LatencyMeter
	tradeSeq   uint64
}

func newMatchEngine(bids, asks *book.BookSide, index *book.OrderIndex, trades TradeSink, latency *LatencyMeter) *MatchEngine {
	return &MatchEngine{bids: bids, asks: asks, index: index, trades: trades, latency: latency}
}

func (me *MatchEngine) sideOf(side domain.Side) (own, opposite *book.BookSide) {
	if side == domain.Bid {
		return me.bids, me.asks
	}
	return me.asks, me.bids
}

// CanMatch reports whether a marketable counterpart exists for a
// hypothetical order of (side, price): for a bid, the best ask must be at
// or below price; for an ask, the best bid must be at or above price.
func (me *MatchEngine) CanMatch(side domain.Side, price float64) bool {
	_, opposite := me.sideOf(side)
	level, ok := opposite.Best()
	if !ok {
		return false
	}
	if side == domain.Bid {
		return level.Price <= price
	}
	return level.Price >= price
}

// CanFullyFill reports whether a hypothetical order of (side, price,
// quantity) would be fully consumed by the opposing resting volume. It
// walks the opposite side from the top, stopping at the first
// non-marketable price, accumulating each level's total resting shares
// (spec 9, "canFullyFill" design note: the ordered-scan-plus-aggregate
// form, not the legacy unordered-map scan).
func (me *MatchEngine) CanFullyFill(side domain.Side, price float64, quantity uint32) bool {
	if !me.CanMatch(side, price) {
		return false
	}
	_, opposite := me.sideOf(side)

	var cumulative uint32
	for _, level := range opposite.Levels(0) {
		if side == domain.Bid && level.Price > price {
			break
		}
		if side == domain.Ask && level.Price < price {
			break
		}
		cumulative += level.TotalShares
		if cumulative >= quantity {
			return true
		}
	}
	return false
}

// Match runs the crossing loop until the top of book no longer crosses,
// then sweeps any FAK order left resting with a partial fill. It returns
// every trade produced, in matching order.
func (me *MatchEngine) Match() []domain.Trade {
	var trades []domain.Trade

	for {
		bidLevel, bidOk := me.bids.Best()
		askLevel, askOk := me.asks.Best()
		if !bidOk || !askOk || bidLevel.Price < askLevel.Price {
			break
		}

		start := time.Now()

		bidElem := bidLevel.Orders.Front()
		askElem := askLevel.Orders.Front()
		bidOrder := bidElem.Value.(*domain.Order)
		askOrder := askElem.Value.(*domain.Order)

		traded := min(bidOrder.RemainingShares, askOrder.RemainingShares)
		_ = bidOrder.Fill(traded) // traded <= RemainingShares by construction
		_ = askOrder.Fill(traded)

		me.tradeSeq++
		trade := domain.Trade{
			Seq:        me.tradeSeq,
			BidOrderID: bidOrder.ID,
			BidPrice:   bidOrder.Price,
			AskOrderID: askOrder.ID,
			AskPrice:   askOrder.Price,
			Shares:     traded,
		}
		trades = append(trades, trade)
		if me.trades != nil {
			me.trades.OnTrade(trade)
		}

		me.settleLeg(me.bids, bidLevel, bidElem, bidOrder, traded)
		me.settleLeg(me.asks, askLevel, askElem, askOrder, traded)

		if me.latency != nil {
			me.latency.RecordMatch(time.Since(start))
		}
	}

	me.sweepFAK(me.bids)
	me.sweepFAK(me.asks)

	return trades
}

// settleLeg applies one leg's post-trade bookkeeping: if the order is now
// filled it leaves the FIFO and the index entirely (Action::Remove);
// otherwise it keeps resting with reduced shares (Action::Match).
func (me *MatchEngine) settleLeg(side *book.BookSide, level *book.Level, elem *list.Element, order *domain.Order, traded uint32) {
	if order.IsFilled() {
		level.Orders.Remove(elem)
		me.index.Delete(order.ID)
		_, _, _ = side.Apply(level.Price, traded, book.ActionRemove)
		return
	}
	_, _, _ = side.Apply(level.Price, traded, book.ActionMatch)
}

// sweepFAK cancels a FAK order left resting at the head of side after the
// crossing loop with a partial fill: FAK means execute what's immediately
// matchable and kill the remainder (spec 4.1).
func (me *MatchEngine) sweepFAK(side *book.BookSide) {
	level, ok := side.Best()
	if !ok {
		return
	}
	order := level.Front()
	if order == nil || order.Kind != domain.FAK || order.RemainingShares == order.InitialShares {
		return
	}

	elem := level.Orders.Front()
	level.Orders.Remove(elem)
	me.index.Delete(order.ID)
	_, _, _ = side.Apply(level.Price, order.RemainingShares, book.ActionRemove)
}
