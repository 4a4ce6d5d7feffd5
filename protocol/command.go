package protocol

// CommandType identifies the payload type for fast routing
// (uint8 for memory alignment and performance).
type CommandType uint8

const (
	CmdUnknown     CommandType = 0
	CmdPlaceOrder  CommandType = 1
	CmdCancelOrder CommandType = 2
	CmdAmendOrder  CommandType = 3
)

// Command is the standard carrier for commands entering the matching core.
// It is designed to be efficient for serialization and compatible with
// event sourcing: payloads stay as bytes until the owning book decodes them.
type Command struct {
	// Version is the protocol version for backward compatibility.
	Version uint8 `json:"version"`

	// SeqID is used for global ordering and deduplication.
	SeqID uint64 `json:"seq_id"`

	// Type identifies the payload type.
	Type CommandType `json:"type"`

	// Payload contains the serialized business data
	// (e.g. JSON bytes of PlaceOrderCommand).
	Payload []byte `json:"payload"`

	// Metadata stores non-business context (e.g. tracing ID, source IP).
	Metadata map[string]string `json:"metadata,omitempty"`
}

// PlaceOrderCommand is the payload for placing a new order.
// Price and Size are decimal strings to prevent precision loss in JSON;
// the book normalizes them onto the instrument's integer tick/lot grid.
// Price must be empty for market orders.
type PlaceOrderCommand struct {
	OrderID   string    `json:"order_id"`
	Side      Side      `json:"side"`
	OrderType OrderType `json:"order_type"`
	Price     string    `json:"price,omitempty"`
	Size      string    `json:"size"`
	UserID    uint64    `json:"user_id"`
	Timestamp int64     `json:"timestamp"`
}

// CancelOrderCommand is the payload for cancelling an existing order.
type CancelOrderCommand struct {
	OrderID   string `json:"order_id"`
	UserID    uint64 `json:"user_id"`
	Timestamp int64  `json:"timestamp"`
}

// AmendOrderCommand is the payload for modifying an existing order.
// A price change or a size increase loses time priority; a pure size
// decrease at the same price keeps it.
type AmendOrderCommand struct {
	OrderID   string `json:"order_id"`
	NewPrice  string `json:"new_price"`
	NewSize   string `json:"new_size"`
	UserID    uint64 `json:"user_id"`
	Timestamp int64  `json:"timestamp"`
}

// GetDepthRequest is the payload for querying order book depth.
// This is used for synchronous queries, separate from the async command stream.
type GetDepthRequest struct {
	Limit uint32 `json:"limit"`
}
