package lob

// DepthChange represents a change in the aggregated order book depth.
type DepthChange struct {
	Side     Side
	Price    int64
	SizeDiff int64
}

// CalculateDepthChange translates a BookEvent into the depth delta it
// implies. It returns the zero DepthChange for events that do not move
// resting liquidity (accepts, rejects, top-of-book notifications, and
// cancels of remainders that never rested).
// Note: for trade events the side returned is the maker's side, the
// opposite of the event's (taker) side.
func CalculateDepthChange(ev *BookEvent) DepthChange {
	switch ev.Type {
	case EventOrderRested:
		return DepthChange{
			Side:     ev.Side,
			Price:    ev.Price,
			SizeDiff: ev.Quantity,
		}
	case EventOrderCancelled:
		// Quantity is zero when the cancelled remainder never rested
		// (market orders, self-trade prevention).
		if ev.Quantity == 0 {
			return DepthChange{}
		}
		return DepthChange{
			Side:     ev.Side,
			Price:    ev.Price,
			SizeDiff: -ev.Quantity,
		}
	case EventOrderReduced:
		return DepthChange{
			Side:     ev.Side,
			Price:    ev.Price,
			SizeDiff: -ev.Quantity,
		}
	case EventTrade:
		// A match consumes liquidity from the maker side.
		return DepthChange{
			Side:     opposite(ev.Side),
			Price:    ev.Price,
			SizeDiff: -ev.Quantity,
		}
	}

	return DepthChange{}
}
