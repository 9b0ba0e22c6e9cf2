package engine

import (
	"testing"

	"github.com/OussamaHadad/matchbook/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBook(t *testing.T) *Book {
	t.Helper()
	cfg := DefaultConfig()
	b := NewBook(cfg, nil, nil, nil, zerolog.Nop())
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func mustAdd(t *testing.T, b *Book, id uint32, kind domain.Kind, side domain.Side, price float64, shares uint32) []domain.Trade {
	t.Helper()
	o, err := domain.New(id, kind, side, price, shares)
	require.NoError(t, err)
	return b.AddOrder(o)
}

// Invariant: the book never rests crossed, i.e. best bid < best ask
// whenever both sides are non-empty (spec 8).
func TestInvariantBookNeverRestsCrossed(t *testing.T) {
	b := newTestBook(t)
	mustAdd(t, b, 1, domain.GTC, domain.Bid, 10, 100)
	mustAdd(t, b, 2, domain.GTC, domain.Ask, 11, 100)

	snap := b.Snapshot(0)
	if len(snap.Bids) > 0 && len(snap.Asks) > 0 {
		assert.Less(t, snap.Bids[0].Price, snap.Asks[0].Price)
	}
}

// Invariant: a level's TotalShares equals the sum of its resting orders'
// remaining shares, and TotalOrders equals the FIFO length (spec 8).
func TestInvariantLevelAggregatesMatchQueue(t *testing.T) {
	b := newTestBook(t)
	mustAdd(t, b, 1, domain.GTC, domain.Bid, 10, 100)
	mustAdd(t, b, 2, domain.GTC, domain.Bid, 10, 50)

	snap := b.Snapshot(0)
	require.Len(t, snap.Bids, 1)
	assert.Equal(t, uint32(150), snap.Bids[0].TotalShares)
	assert.Equal(t, 2, snap.Bids[0].TotalOrders)
}

// Invariant: every resting order appears in the OrderIndex exactly once,
// and NumberOfOrders reflects it.
func TestInvariantOrderIndexMembership(t *testing.T) {
	b := newTestBook(t)
	mustAdd(t, b, 1, domain.GTC, domain.Bid, 10, 100)
	mustAdd(t, b, 2, domain.GTC, domain.Bid, 9, 100)
	assert.Equal(t, 2, b.NumberOfOrders())

	b.CancelOrder(1)
	assert.Equal(t, 1, b.NumberOfOrders())
	_, ok := b.Order(1)
	assert.False(t, ok)
}

// Invariant: total shares are conserved across a trade — what one side
// loses from its resting book is exactly what moved into the trade.
func TestInvariantShareConservationAcrossTrade(t *testing.T) {
	b := newTestBook(t)
	mustAdd(t, b, 1, domain.GTC, domain.Ask, 10, 100)
	trades := mustAdd(t, b, 2, domain.GTC, domain.Bid, 10, 60)

	require.Len(t, trades, 1)
	assert.Equal(t, uint32(60), trades[0].Shares)

	snap := b.Snapshot(0)
	require.Len(t, snap.Asks, 1)
	assert.Equal(t, uint32(40), snap.Asks[0].TotalShares)
	assert.Empty(t, snap.Bids)
}

// Invariant: FIFO ordering — among resting orders at the same price, the
// earliest-added order is filled first.
func TestInvariantFIFOOrderingWithinLevel(t *testing.T) {
	b := newTestBook(t)
	mustAdd(t, b, 1, domain.GTC, domain.Ask, 10, 50)
	mustAdd(t, b, 2, domain.GTC, domain.Ask, 10, 50)

	trades := mustAdd(t, b, 3, domain.GTC, domain.Bid, 10, 50)
	require.Len(t, trades, 1)
	assert.Equal(t, uint32(1), trades[0].AskOrderID)

	_, ok := b.Order(1)
	assert.False(t, ok, "order 1 should be fully filled and gone")
	view, ok := b.Order(2)
	require.True(t, ok)
	assert.Equal(t, uint32(50), view.RemainingShares)
}

// Invariant: amend forfeits time priority — an amended order re-enters at
// the back of its level even if the price is unchanged.
func TestInvariantAmendForfeitsTimePriority(t *testing.T) {
	b := newTestBook(t)
	mustAdd(t, b, 1, domain.GTC, domain.Ask, 10, 50)
	mustAdd(t, b, 2, domain.GTC, domain.Ask, 10, 50)

	_, err := b.AmendOrder(1, 10, 60)
	require.NoError(t, err)

	trades := mustAdd(t, b, 3, domain.GTC, domain.Bid, 10, 50)
	require.Len(t, trades, 1)
	assert.Equal(t, uint32(2), trades[0].AskOrderID, "order 2 now has priority since order 1 was amended")
}

// Invariant: cancel is idempotent — cancelling an id that is absent (or
// already cancelled) is a silent no-op.
func TestInvariantCancelIsIdempotent(t *testing.T) {
	b := newTestBook(t)
	b.CancelOrder(999)
	assert.Equal(t, 0, b.NumberOfOrders())

	mustAdd(t, b, 1, domain.GTC, domain.Bid, 10, 100)
	b.CancelOrder(1)
	b.CancelOrder(1)
	assert.Equal(t, 0, b.NumberOfOrders())
}

func TestRandomOrderIDOnEmptyBook(t *testing.T) {
	b := newTestBook(t)
	_, ok := b.RandomOrderID()
	assert.False(t, ok)
}

func TestRandomOrderIDReturnsLiveID(t *testing.T) {
	b := newTestBook(t)
	mustAdd(t, b, 1, domain.GTC, domain.Bid, 10, 100)
	id, ok := b.RandomOrderID()
	require.True(t, ok)
	assert.Equal(t, uint32(1), id)
}

func TestWriteLatencyStatsMismatchIsClass6Error(t *testing.T) {
	cfg := Config{CloseHour: 16, ExpectedUpdates: 5}
	b := NewBook(cfg, nil, nil, nil, zerolog.Nop())
	defer b.Close()

	mustAdd(t, b, 1, domain.GTC, domain.Bid, 10, 100)

	err := b.WriteLatencyStats("/dev/null")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStatsMismatch)
}

func TestRejectionsCountDuplicateIDs(t *testing.T) {
	b := newTestBook(t)
	mustAdd(t, b, 1, domain.GTC, domain.Bid, 10, 100)
	mustAdd(t, b, 1, domain.GTC, domain.Bid, 10, 100)

	assert.Equal(t, int64(1), b.Rejections().DuplicateID)
}
