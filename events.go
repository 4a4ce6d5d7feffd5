package lob

import (
	"sync"
	"time"
)

// EventType classifies a BookEvent.
type EventType string

const (
	EventTrade          EventType = "trade"
	EventOrderAccepted  EventType = "accepted"
	EventOrderRejected  EventType = "rejected"
	EventOrderCancelled EventType = "cancelled"
	EventOrderRested    EventType = "rested"
	EventOrderReduced   EventType = "reduced"
	EventBookTopChanged EventType = "book_top"
)

// BookEvent is an event emitted by the matching core.
// SequenceID is a per-engine increasing ID for every event, used for
// ordering, deduplication, and rebuild synchronization in downstream
// systems. Events are published in the exact order they were generated
// while processing a command.
//
// Field semantics by type:
//   - trade: Price is the maker's resting price, Quantity the executed
//     lots, OrderID/UserID the taker, MakerOrderID/MakerUserID the maker.
//   - rested: Quantity and Remaining are the lots left on the book.
//   - cancelled: Quantity is the lots removed from the book (zero when a
//     market or self-trade remainder never rested), Remaining the order's
//     unfilled lots, Reason why the remainder was cancelled (empty for a
//     user-requested cancel).
//   - reduced: Quantity is the lots removed in place, Remaining what rests.
//   - book_top: Price/Quantity are the side's new best level, both zero
//     when the side emptied.
//   - rejected: Reason is set; the book state did not change.
type BookEvent struct {
	SequenceID   uint64       `json:"seq_id"`
	TradeID      uint64       `json:"trade_id,omitempty"` // Sequential trade ID, only set for trade events
	Type         EventType    `json:"type"`
	Instrument   string       `json:"instrument"`
	Side         Side         `json:"side,omitempty"`
	Price        int64        `json:"price,omitempty"`
	Quantity     int64        `json:"quantity,omitempty"`
	Remaining    int64        `json:"remaining,omitempty"`
	OrderID      string       `json:"order_id,omitempty"`
	UserID       uint64       `json:"user_id,omitempty"`
	MakerOrderID string       `json:"maker_order_id,omitempty"`
	MakerUserID  uint64       `json:"maker_user_id,omitempty"`
	Reason       RejectReason `json:"reason,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
}

var eventPool = sync.Pool{
	New: func() any {
		return new(BookEvent)
	},
}

func acquireEvent() *BookEvent {
	return eventPool.Get().(*BookEvent)
}

func releaseEvent(ev *BookEvent) {
	*ev = BookEvent{}
	eventPool.Put(ev)
}

func newTradeEvent(seqID, tradeID uint64, instrument string, taker, maker *Order, qty int64, now time.Time) *BookEvent {
	ev := acquireEvent()
	ev.SequenceID = seqID
	ev.TradeID = tradeID
	ev.Type = EventTrade
	ev.Instrument = instrument
	ev.Side = taker.Side
	ev.Price = maker.Price
	ev.Quantity = qty
	ev.OrderID = taker.ID
	ev.UserID = taker.UserID
	ev.MakerOrderID = maker.ID
	ev.MakerUserID = maker.UserID
	ev.CreatedAt = now
	return ev
}

func newAcceptedEvent(seqID uint64, instrument string, o *Order, now time.Time) *BookEvent {
	ev := acquireEvent()
	ev.SequenceID = seqID
	ev.Type = EventOrderAccepted
	ev.Instrument = instrument
	ev.Side = o.Side
	ev.Price = o.Price
	ev.Quantity = o.Quantity
	ev.OrderID = o.ID
	ev.UserID = o.UserID
	ev.CreatedAt = now
	return ev
}

func newRejectedEvent(seqID uint64, instrument, orderID string, userID uint64, reason RejectReason, now time.Time) *BookEvent {
	ev := acquireEvent()
	ev.SequenceID = seqID
	ev.Type = EventOrderRejected
	ev.Instrument = instrument
	ev.OrderID = orderID
	ev.UserID = userID
	ev.Reason = reason
	ev.CreatedAt = now
	return ev
}

func newCancelledEvent(seqID uint64, instrument string, o *Order, removedQty int64, reason RejectReason, now time.Time) *BookEvent {
	ev := acquireEvent()
	ev.SequenceID = seqID
	ev.Type = EventOrderCancelled
	ev.Instrument = instrument
	ev.Side = o.Side
	ev.Price = o.Price
	ev.Quantity = removedQty
	ev.Remaining = o.Remaining
	ev.OrderID = o.ID
	ev.UserID = o.UserID
	ev.Reason = reason
	ev.CreatedAt = now
	return ev
}

func newRestedEvent(seqID uint64, instrument string, o *Order, now time.Time) *BookEvent {
	ev := acquireEvent()
	ev.SequenceID = seqID
	ev.Type = EventOrderRested
	ev.Instrument = instrument
	ev.Side = o.Side
	ev.Price = o.Price
	ev.Quantity = o.Remaining
	ev.Remaining = o.Remaining
	ev.OrderID = o.ID
	ev.UserID = o.UserID
	ev.CreatedAt = now
	return ev
}

func newReducedEvent(seqID uint64, instrument string, o *Order, removedQty int64, now time.Time) *BookEvent {
	ev := acquireEvent()
	ev.SequenceID = seqID
	ev.Type = EventOrderReduced
	ev.Instrument = instrument
	ev.Side = o.Side
	ev.Price = o.Price
	ev.Quantity = removedQty
	ev.Remaining = o.Remaining
	ev.OrderID = o.ID
	ev.UserID = o.UserID
	ev.CreatedAt = now
	return ev
}

func newBookTopEvent(seqID uint64, instrument string, side Side, price, qty int64, now time.Time) *BookEvent {
	ev := acquireEvent()
	ev.SequenceID = seqID
	ev.Type = EventBookTopChanged
	ev.Instrument = instrument
	ev.Side = side
	ev.Price = price
	ev.Quantity = qty
	ev.CreatedAt = now
	return ev
}
