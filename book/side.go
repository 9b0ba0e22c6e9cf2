package book

import (
	"fmt"

	rbt "github.com/emirpasic/gods/v2/trees/redblacktree"
)

// BookSide is an ordered map of price -> Level: bids compare descending
// (best bid first), asks ascending (best ask first). Empty levels are
// erased immediately by Apply; the tree never holds an empty Level except
// transiently within the caller's critical section, between the caller
// removing the last order from the Level's FIFO and its Apply(Remove) call,
// which erases the Level once its order count reaches zero.
//
// The underlying structure is the teacher's own choice, a red-black tree
// (github.com/emirpasic/gods/v2/trees/redblacktree), giving the O(log P)
// price-level access spec 1 asks for.
type BookSide struct {
	tree *rbt.Tree[float64, *Level]
}

func ascending(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func descending(a, b float64) int { return -ascending(a, b) }

// NewBookSide builds an empty side. descending is true for bids (best =
// highest price), false for asks (best = lowest price).
func NewBookSide(desc bool) *BookSide {
	cmp := ascending
	if desc {
		cmp = descending
	}
	return &BookSide{tree: rbt.NewWith[float64, *Level](cmp)}
}

// Empty reports whether the side has no resting orders.
func (bs *BookSide) Empty() bool { return bs.tree.Empty() }

// Best returns the top-of-book level for this side.
func (bs *BookSide) Best() (*Level, bool) {
	node := bs.tree.Left()
	if node == nil {
		return nil, false
	}
	return node.Value, true
}

// BestPrice returns the top-of-book price, or false if the side is empty.
func (bs *BookSide) BestPrice() (float64, bool) {
	level, ok := bs.Best()
	if !ok {
		return 0, false
	}
	return level.Price, true
}

// Get returns the level resting at price, if any.
func (bs *BookSide) Get(price float64) (*Level, bool) { return bs.tree.Get(price) }

// Levels returns price levels from best to worst. max <= 0 means
// unlimited. Used by the FOK admission scan (canFullyFill) and by book
// depth introspection.
func (bs *BookSide) Levels(max int) []*Level {
	it := bs.tree.Iterator()
	var out []*Level
	for it.Next() {
		out = append(out, it.Value())
		if max > 0 && len(out) >= max {
			break
		}
	}
	return out
}

// Apply is the single choke point for per-price aggregate maintenance
// (spec 4.3): Add on an unknown price creates the level; Match decrements
// shares only; Remove decrements both and erases the level once empty.
// Match/Remove against an unknown price is a logic-violation bug (spec 7,
// class 3) — Apply returns an error and leaves the side unchanged. The
// engine's callers discard that error; no diagnostic is logged for it.
func (bs *BookSide) Apply(price float64, shares uint32, action LevelAction) (*Level, LevelEvent, error) {
	level, found := bs.tree.Get(price)
	if !found {
		if action != ActionAdd {
			return nil, EventUpdated, fmt.Errorf("book: %s on unknown price level %v", action, price)
		}
		level = newLevel(price)
		bs.tree.Put(price, level)
		level.TotalShares += shares
		level.TotalOrders++
		return level, EventNewLevel, nil
	}

	switch action {
	case ActionAdd:
		level.TotalShares += shares
		level.TotalOrders++
		return level, EventUpdated, nil
	case ActionMatch:
		level.TotalShares -= shares
		return level, EventUpdated, nil
	case ActionRemove:
		level.TotalShares -= shares
		level.TotalOrders--
		if level.TotalOrders == 0 {
			bs.tree.Remove(price)
			return level, EventLastRemoved, nil
		}
		return level, EventUpdated, nil
	default:
		return level, EventUpdated, nil
	}
}
