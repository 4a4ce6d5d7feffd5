package lob

import "github.com/tickworks/lob/protocol"

const (
	// EngineVersion is the current version of the matching core
	EngineVersion = "v1.0.0"

	// SnapshotSchemaVersion is the current version of the snapshot schema
	// Increment this when the snapshot format changes in a backward-incompatible way
	SnapshotSchemaVersion = 1
)

type Side = protocol.Side

const (
	Buy  Side = protocol.SideBuy
	Sell Side = protocol.SideSell
)

type OrderType = protocol.OrderType

const (
	Limit  OrderType = protocol.OrderTypeLimit
	Market OrderType = protocol.OrderTypeMarket
)

type RejectReason = protocol.RejectReason

// opposite returns the other side of the book.
func opposite(side Side) Side {
	if side == Buy {
		return Sell
	}
	return Buy
}
