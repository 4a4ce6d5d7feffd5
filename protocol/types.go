package protocol

// Side represents the order side (Buy/Sell).
type Side int8

const (
	SideBuy  Side = 1
	SideSell Side = 2
)

// OrderType represents the type of order.
type OrderType string

const (
	OrderTypeLimit  OrderType = "limit"
	OrderTypeMarket OrderType = "market"
)

// RejectReason explains why a command did not (fully) enter the book.
// It appears on reject events and on cancel events for remainders that
// never rested.
type RejectReason string

const (
	RejectReasonNone            RejectReason = ""
	RejectReasonDuplicateID     RejectReason = "duplicate_order_id"
	RejectReasonOrderNotFound   RejectReason = "order_not_found"
	RejectReasonInvalidQuantity RejectReason = "invalid_quantity"
	RejectReasonInvalidPrice    RejectReason = "invalid_price"
	RejectReasonInvalidPayload  RejectReason = "invalid_payload"
	RejectReasonNoLiquidity     RejectReason = "no_liquidity"
	RejectReasonSelfTrade       RejectReason = "self_trade_prevention"
)

// DepthItem is one aggregated price level in a depth response.
// Price and Size are decimal strings to prevent precision loss in JSON.
type DepthItem struct {
	Price string `json:"price"`
	Size  string `json:"size"`
	Count int64  `json:"count"`
}

// GetDepthResponse represents the state of the order book depth.
type GetDepthResponse struct {
	UpdateID uint64       `json:"update_id"`
	Asks     []*DepthItem `json:"asks"`
	Bids     []*DepthItem `json:"bids"`
}

// GetStatsResponse contains statistics about the order book queues.
type GetStatsResponse struct {
	AskDepthCount int64 `json:"ask_depth_count"`
	AskOrderCount int64 `json:"ask_order_count"`
	BidDepthCount int64 `json:"bid_depth_count"`
	BidOrderCount int64 `json:"bid_order_count"`
}
