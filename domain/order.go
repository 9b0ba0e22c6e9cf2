// Package domain holds the identity types shared by the book and engine
// packages: orders and trades. Nothing here touches locking, the book
// structure, or matching — those live in book and engine.
package domain

import (
	"errors"
	"fmt"
)

// Kind is the five-way order-type state machine from the spec: GTC, FAK,
// FOK, GFD and Market. A Market order never rests with Kind == Market — it
// is rewritten to GTC during intake (see engine.OrderGateway.add).
type Kind int

const (
	GTC Kind = iota
	FAK
	FOK
	GFD
	Market
)

func (k Kind) String() string {
	switch k {
	case GTC:
		return "GTC"
	case FAK:
		return "FAK"
	case FOK:
		return "FOK"
	case GFD:
		return "GFD"
	case Market:
		return "Market"
	default:
		return "Unknown"
	}
}

// Side is the book side an order rests on.
type Side int

const (
	Bid Side = iota
	Ask
)

func (s Side) String() string {
	if s == Bid {
		return "Bid"
	}
	return "Ask"
}

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == Bid {
		return Ask
	}
	return Bid
}

var (
	// ErrInvalidPrice is the class-1 invalid-construction error: a
	// non-Market order must have price > 0.
	ErrInvalidPrice = errors.New("order price must be strictly positive")
	// ErrInvalidShares is the class-1 invalid-construction error: initial
	// shares must be strictly positive.
	ErrInvalidShares = errors.New("order shares must be strictly positive")
	// ErrOverfill is the class-2 logic-violation error: a fill can never
	// exceed an order's remaining shares.
	ErrOverfill = errors.New("fill quantity exceeds remaining shares")
)

// OrderError wraps one of the sentinels above with the offending order id,
// per spec section 6 ("raise a structured failure with the offending
// order_id in the message").
type OrderError struct {
	OrderID uint32
	Err     error
}

func (e *OrderError) Error() string {
	return fmt.Sprintf("order %d: %v", e.OrderID, e.Err)
}

func (e *OrderError) Unwrap() error { return e.Err }

// Order is the book's unit of identity: an immutable id/side pairing with
// a mutable remaining-shares counter. Kind and Price change only once, by
// the Market->GTC intake rewrite; everywhere else they are fixed for the
// order's life.
type Order struct {
	ID              uint32
	Kind            Kind
	Side            Side
	Price           float64
	InitialShares   uint32
	RemainingShares uint32
}

// New validates and builds an order. Market orders are admitted with
// price == 0 (absent "only transiently ... during intake", per spec 3);
// every other kind requires price > 0.
func New(id uint32, kind Kind, side Side, price float64, shares uint32) (*Order, error) {
	if kind != Market && price <= 0 {
		return nil, &OrderError{OrderID: id, Err: ErrInvalidPrice}
	}
	if shares == 0 {
		return nil, &OrderError{OrderID: id, Err: ErrInvalidShares}
	}
	return &Order{
		ID:              id,
		Kind:            kind,
		Side:            side,
		Price:           price,
		InitialShares:   shares,
		RemainingShares: shares,
	}, nil
}

// IsFilled reports whether the order has no shares left to trade.
func (o *Order) IsFilled() bool { return o.RemainingShares == 0 }

// Fill decrements RemainingShares by traded, enforcing the invariant
// 0 <= RemainingShares <= InitialShares (spec section 3). Overfilling an
// order is a class-2 logic violation: it indicates an engine bug and is
// fatal to the caller, never silently clamped.
func (o *Order) Fill(traded uint32) error {
	if traded > o.RemainingShares {
		return &OrderError{OrderID: o.ID, Err: ErrOverfill}
	}
	o.RemainingShares -= traded
	return nil
}

// RewriteToGTC turns an intake Market order into a resting GTC order at
// the given worst opposing price (spec 4.2, Market admission gate).
func (o *Order) RewriteToGTC(price float64) error {
	if price <= 0 {
		return &OrderError{OrderID: o.ID, Err: ErrInvalidPrice}
	}
	o.Price = price
	o.Kind = GTC
	return nil
}
