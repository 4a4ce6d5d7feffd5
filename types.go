package lob

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusActive          OrderStatus = "active"
	StatusPartiallyFilled OrderStatus = "partially_filled"
	StatusFilled          OrderStatus = "filled"
	StatusCancelled       OrderStatus = "cancelled"
)

// Order represents the state of an order in the order book.
// Prices are integer ticks and quantities integer lots; the core never
// touches floating point or decimals, so matching is exactly reproducible.
//
// A resting order is owned by exactly one price level. The unexported
// pointers make the order its own queue node, which is what gives cancel
// its O(1) unlink.
type Order struct {
	ID        string      `json:"id"`
	UserID    uint64      `json:"user_id"`
	Side      Side        `json:"side"`
	Type      OrderType   `json:"type"`
	Price     int64       `json:"price,omitempty"` // ticks; zero for market orders
	Quantity  int64       `json:"quantity"`        // original quantity in lots
	Remaining int64       `json:"remaining"`       // unfilled quantity in lots
	Priority  uint64      `json:"priority"`        // time priority token, engine-assigned
	Status    OrderStatus `json:"status"`
	Timestamp int64       `json:"timestamp"` // Unix nano, creation time

	// Intrusive linked list pointers and owning level (ignored by JSON)
	next  *Order
	prev  *Order
	level *priceLevel
}

// LimitOrder is the input command for a new limit order.
type LimitOrder struct {
	ID       string
	UserID   uint64
	Side     Side
	Price    int64 // ticks
	Quantity int64 // lots
}

// MarketOrder is the input command for a new market order.
// Market orders carry no price; any unfilled remainder is cancelled,
// never rested.
type MarketOrder struct {
	ID       string
	UserID   uint64
	Side     Side
	Quantity int64 // lots
}

// DepthItem is one aggregated price level of the book.
type DepthItem struct {
	Price    int64 `json:"price"`
	Quantity int64 `json:"quantity"`
	Orders   int64 `json:"orders"`
}

// Depth is a point-in-time aggregated view of both sides, best price first.
// UpdateID is the event sequence number at capture time.
type Depth struct {
	UpdateID uint64       `json:"update_id"`
	Bids     []*DepthItem `json:"bids"`
	Asks     []*DepthItem `json:"asks"`
}

// BookStats contains statistics about the order book queues
type BookStats struct {
	AskDepthCount int64
	AskOrderCount int64
	BidDepthCount int64
	BidOrderCount int64
}
