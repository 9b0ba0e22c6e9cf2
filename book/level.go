// Package book holds the price-ordered book-side data structure: one
// BookSide per side (bids descending, asks ascending), each a red-black
// tree of price -> Level, where a Level is the FIFO queue of resting
// orders at that price together with its aggregate summary.
//
// The distilled spec models LevelQueue and LevelAggregates as two separate
// components (2 and 4). This package collapses the aggregate into the
// level node instead of keeping a second hashmap keyed by price — the
// source's own design notes call this out as the preferred simplification
// ("removes a class of skew bugs"); see DESIGN.md.
package book

import (
	"container/list"

	"github.com/OussamaHadad/matchbook/domain"
)

// LevelAction identifies how a level's aggregate should be updated; it is
// the single choke point from spec 4.3.
type LevelAction int

const (
	ActionAdd LevelAction = iota
	ActionMatch
	ActionRemove
)

func (a LevelAction) String() string {
	switch a {
	case ActionAdd:
		return "add"
	case ActionMatch:
		return "match"
	case ActionRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// LevelEvent is what Apply returns, consumed by the latency meter to
// bucket Add/Amend samples by existing-vs-new limit level.
type LevelEvent int

const (
	EventUpdated LevelEvent = iota
	EventNewLevel
	EventLastRemoved
)

// Level is the set of resting orders sharing one price on one side: a
// FIFO queue (container/list, insertion at tail, O(1) erase-at-element)
// plus the running totals that must always equal the queue's contents.
type Level struct {
	Price       float64
	Orders      *list.List
	TotalShares uint32
	TotalOrders int
}

func newLevel(price float64) *Level {
	return &Level{Price: price, Orders: list.New()}
}

// Front returns the resting order at the head of the FIFO, or nil if the
// level is empty.
func (l *Level) Front() *domain.Order {
	if l.Orders.Len() == 0 {
		return nil
	}
	return l.Orders.Front().Value.(*domain.Order)
}
