package domain

// Trade is one fill between a resting bid and a resting ask. The source
// this spec was distilled from records each leg's own limit price rather
// than a single cross price — each leg reports the price of the order that
// was resting on that leg. This is the design's price-time-priority
// convention, not a single-print exchange convention; see spec 4.1.
type Trade struct {
	// Seq is a monotonic trade sequence number, unique within a Book's
	// lifetime. It is additive over the distilled spec (recovered for
	// idempotent trade-sink consumption) and carries no matching
	// semantics of its own.
	Seq uint64

	BidOrderID uint32
	BidPrice   float64

	AskOrderID uint32
	AskPrice   float64

	// Shares is the quantity traded on this fill; it is identical on both
	// legs by construction (min of the two heads' remaining shares).
	Shares uint32
}
