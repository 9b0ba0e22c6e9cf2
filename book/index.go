package book

import (
	"container/list"

	"github.com/OussamaHadad/matchbook/domain"
)

// IndexEntry is OrderIndex's value: the order handle plus its O(1)
// back-pointers into the owning Level's FIFO, so cancel never has to scan
// a price level to find the order being removed.
type IndexEntry struct {
	Order *domain.Order
	Elem  *list.Element
	Level *Level
}

// OrderIndex maps order id -> (order handle, position in its LevelQueue).
// Every resting order appears in exactly one Level's FIFO and exactly one
// OrderIndex entry; cancelled or filled orders appear in neither.
type OrderIndex struct {
	entries map[uint32]*IndexEntry
}

// NewOrderIndex builds an empty index.
func NewOrderIndex() *OrderIndex {
	return &OrderIndex{entries: make(map[uint32]*IndexEntry)}
}

// Has reports whether id is currently resting.
func (idx *OrderIndex) Has(id uint32) bool {
	_, ok := idx.entries[id]
	return ok
}

// Get returns the index entry for id.
func (idx *OrderIndex) Get(id uint32) (*IndexEntry, bool) {
	e, ok := idx.entries[id]
	return e, ok
}

// Put records a newly-resting order's position.
func (idx *OrderIndex) Put(id uint32, entry *IndexEntry) { idx.entries[id] = entry }

// Delete removes id, e.g. on fill, cancel, or GFD prune.
func (idx *OrderIndex) Delete(id uint32) { delete(idx.entries, id) }

// Len returns the number of resting orders.
func (idx *OrderIndex) Len() int { return len(idx.entries) }

// GFDOrderIDs returns the ids of every currently-resting GFD order. Used by
// the day-close pruner to collect ids under the book mutex before
// cancelling them (spec 4.4).
func (idx *OrderIndex) GFDOrderIDs() []uint32 {
	var ids []uint32
	for id, entry := range idx.entries {
		if entry.Order.Kind == domain.GFD {
			ids = append(ids, id)
		}
	}
	return ids
}

// AllIDs returns the ids of every currently-resting order, in no particular
// order. Used by Book.RandomOrderID.
func (idx *OrderIndex) AllIDs() []uint32 {
	ids := make([]uint32, 0, len(idx.entries))
	for id := range idx.entries {
		ids = append(ids, id)
	}
	return ids
}
