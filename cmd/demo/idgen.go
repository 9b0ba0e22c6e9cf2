package main

import "sync/atomic"

// idGenerator hands out unique order ids. Adapted from the matching
// engine's own id generator: an atomic counter is uniqueness enough, no
// timestamp or string formatting is needed since domain.Order.ID is a
// plain uint32.
type idGenerator struct {
	counter uint32
}

func newIDGenerator() *idGenerator { return &idGenerator{} }

// Next returns the next unique order id, starting at 1.
func (g *idGenerator) Next() uint32 {
	return atomic.AddUint32(&g.counter, 1)
}
