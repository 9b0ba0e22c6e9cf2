package book

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookSideBestOrdering(t *testing.T) {
	bids := NewBookSide(true)
	_, _, _ = bids.Apply(50.0, 10, ActionAdd)
	_, _, _ = bids.Apply(51.0, 10, ActionAdd)
	_, _, _ = bids.Apply(49.0, 10, ActionAdd)

	price, ok := bids.BestPrice()
	require.True(t, ok)
	assert.Equal(t, 51.0, price, "bids must order best = highest price first")

	asks := NewBookSide(false)
	_, _, _ = asks.Apply(50.0, 10, ActionAdd)
	_, _, _ = asks.Apply(51.0, 10, ActionAdd)
	_, _, _ = asks.Apply(49.0, 10, ActionAdd)

	price, ok = asks.BestPrice()
	require.True(t, ok)
	assert.Equal(t, 49.0, price, "asks must order best = lowest price first")
}

func TestApplyAddCreatesNewLevel(t *testing.T) {
	side := NewBookSide(false)
	level, event, err := side.Apply(50.0, 10, ActionAdd)
	require.NoError(t, err)
	assert.Equal(t, EventNewLevel, event)
	assert.Equal(t, uint32(10), level.TotalShares)
	assert.Equal(t, 1, level.TotalOrders)
}

func TestApplyAddOnExistingLevelAccumulates(t *testing.T) {
	side := NewBookSide(false)
	_, _, _ = side.Apply(50.0, 10, ActionAdd)
	level, event, err := side.Apply(50.0, 5, ActionAdd)
	require.NoError(t, err)
	assert.Equal(t, EventUpdated, event)
	assert.Equal(t, uint32(15), level.TotalShares)
	assert.Equal(t, 2, level.TotalOrders)
}

func TestApplyMatchLeavesOrderCountUnchanged(t *testing.T) {
	side := NewBookSide(false)
	_, _, _ = side.Apply(50.0, 10, ActionAdd)
	level, event, err := side.Apply(50.0, 4, ActionMatch)
	require.NoError(t, err)
	assert.Equal(t, EventUpdated, event)
	assert.Equal(t, uint32(6), level.TotalShares)
	assert.Equal(t, 1, level.TotalOrders)
}

func TestApplyRemoveLastOrderErasesLevel(t *testing.T) {
	side := NewBookSide(false)
	_, _, _ = side.Apply(50.0, 10, ActionAdd)
	_, event, err := side.Apply(50.0, 10, ActionRemove)
	require.NoError(t, err)
	assert.Equal(t, EventLastRemoved, event)

	_, ok := side.Get(50.0)
	assert.False(t, ok, "level must be erased once its last order is removed")
	assert.True(t, side.Empty())
}

func TestApplyMatchOrRemoveOnUnknownPriceIsAnError(t *testing.T) {
	side := NewBookSide(false)

	_, _, err := side.Apply(50.0, 10, ActionMatch)
	assert.Error(t, err)

	_, _, err = side.Apply(50.0, 10, ActionRemove)
	assert.Error(t, err)
}

func TestLevelsReturnsBestToWorst(t *testing.T) {
	asks := NewBookSide(false)
	_, _, _ = asks.Apply(52.0, 10, ActionAdd)
	_, _, _ = asks.Apply(50.0, 10, ActionAdd)
	_, _, _ = asks.Apply(51.0, 10, ActionAdd)

	levels := asks.Levels(0)
	require.Len(t, levels, 3)
	assert.Equal(t, 50.0, levels[0].Price)
	assert.Equal(t, 51.0, levels[1].Price)
	assert.Equal(t, 52.0, levels[2].Price)
}

func TestLevelsRespectsMaxCap(t *testing.T) {
	asks := NewBookSide(false)
	_, _, _ = asks.Apply(52.0, 10, ActionAdd)
	_, _, _ = asks.Apply(50.0, 10, ActionAdd)
	_, _, _ = asks.Apply(51.0, 10, ActionAdd)

	levels := asks.Levels(2)
	assert.Len(t, levels, 2)
}
