package lob

import (
	"time"

	"github.com/tickworks/lob/protocol"
)

// SelfTradePolicy decides what happens when an incoming order would match a
// resting order from the same user.
type SelfTradePolicy int8

const (
	// SelfTradeAllow lets the orders trade against each other.
	SelfTradeAllow SelfTradePolicy = iota
	// SelfTradeCancelTaker stops the cross and cancels the taker's
	// remainder as soon as the next maker belongs to the same user.
	SelfTradeCancelTaker
)

// EngineOption configures a MatchingEngine.
type EngineOption func(*MatchingEngine)

// WithSelfTradePolicy sets the self-match policy. The default is
// SelfTradeAllow.
func WithSelfTradePolicy(p SelfTradePolicy) EngineOption {
	return func(e *MatchingEngine) {
		e.selfTrade = p
	}
}

// MatchingEngine is the single-instrument matching core. It is strictly
// single-threaded: one command is fully processed, including all resulting
// trades and book mutations, before the next is accepted. Callers that need
// concurrent ingestion must serialize commands themselves; OrderBook does
// exactly that with a dedicated worker goroutine. The engine holds no locks.
//
// Every command is atomic: validation happens before any mutation, so a
// rejected command leaves the book untouched. Three monotonic counters are
// owned by the instance (never process-wide): the event sequence, the trade
// sequence, and the time-priority token, which keeps independent books in
// one process safe to run side by side.
type MatchingEngine struct {
	instrument string
	bids       *bookSide
	asks       *bookSide
	index      *orderIndex
	statuses   map[string]OrderStatus
	sink       EventSink
	selfTrade  SelfTradePolicy

	seqID       uint64 // increases for every published event
	tradeID     uint64 // increases only for trade events
	prioritySeq uint64 // time priority token source

	haltErr error
}

// NewMatchingEngine creates a matching core for one instrument. Events are
// delivered to sink in generation order.
func NewMatchingEngine(instrument string, sink EventSink, opts ...EngineOption) *MatchingEngine {
	if sink == nil {
		sink = NewDiscardEventSink()
	}

	e := &MatchingEngine{
		instrument: instrument,
		bids:       newBidSide(),
		asks:       newAskSide(),
		index:      newOrderIndex(),
		statuses:   make(map[string]OrderStatus),
		sink:       sink,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Instrument returns the symbol this engine matches.
func (e *MatchingEngine) Instrument() string {
	return e.instrument
}

// NewLimitOrder processes a new limit order: it crosses against the opposite
// side while the limit price allows, then rests any remainder at its limit
// price with a fresh time-priority token.
func (e *MatchingEngine) NewLimitOrder(cmd *LimitOrder) error {
	if e.haltErr != nil {
		return e.haltErr
	}
	if cmd.Side != Buy && cmd.Side != Sell || len(cmd.ID) == 0 {
		return e.reject(cmd.ID, cmd.UserID, protocol.RejectReasonInvalidPayload, ErrInvalidParam)
	}
	if cmd.Quantity <= 0 {
		return e.reject(cmd.ID, cmd.UserID, protocol.RejectReasonInvalidQuantity, ErrInvalidQuantity)
	}
	if cmd.Price <= 0 {
		return e.reject(cmd.ID, cmd.UserID, protocol.RejectReasonInvalidPrice, ErrInvalidPrice)
	}
	if _, seen := e.statuses[cmd.ID]; seen {
		return e.reject(cmd.ID, cmd.UserID, protocol.RejectReasonDuplicateID, ErrDuplicateOrderID)
	}

	now := time.Now()
	nowUTC := now.UTC()

	e.prioritySeq++
	order := &Order{
		ID:        cmd.ID,
		UserID:    cmd.UserID,
		Side:      cmd.Side,
		Type:      Limit,
		Price:     cmd.Price,
		Quantity:  cmd.Quantity,
		Remaining: cmd.Quantity,
		Priority:  e.prioritySeq,
		Status:    StatusActive,
		Timestamp: now.UnixNano(),
	}
	e.statuses[order.ID] = StatusActive

	prevBid, prevAsk := e.top(Buy), e.top(Sell)

	events := make([]*BookEvent, 0, 8)
	events = append(events, newAcceptedEvent(e.nextSeq(), e.instrument, order, nowUTC))
	events = e.settle(order, events, nowUTC)
	events = e.emitTopChanges(prevBid, prevAsk, events, nowUTC)
	e.publish(events)

	return e.verify()
}

// NewMarketOrder processes a new market order: it crosses against the best
// available prices until filled or the opposite side is exhausted. An
// unfilled remainder is cancelled, never rested; running out of liquidity
// is an outcome, not an error.
func (e *MatchingEngine) NewMarketOrder(cmd *MarketOrder) error {
	if e.haltErr != nil {
		return e.haltErr
	}
	if cmd.Side != Buy && cmd.Side != Sell || len(cmd.ID) == 0 {
		return e.reject(cmd.ID, cmd.UserID, protocol.RejectReasonInvalidPayload, ErrInvalidParam)
	}
	if cmd.Quantity <= 0 {
		return e.reject(cmd.ID, cmd.UserID, protocol.RejectReasonInvalidQuantity, ErrInvalidQuantity)
	}
	if _, seen := e.statuses[cmd.ID]; seen {
		return e.reject(cmd.ID, cmd.UserID, protocol.RejectReasonDuplicateID, ErrDuplicateOrderID)
	}

	now := time.Now()
	nowUTC := now.UTC()

	e.prioritySeq++
	order := &Order{
		ID:        cmd.ID,
		UserID:    cmd.UserID,
		Side:      cmd.Side,
		Type:      Market,
		Quantity:  cmd.Quantity,
		Remaining: cmd.Quantity,
		Priority:  e.prioritySeq,
		Status:    StatusActive,
		Timestamp: now.UnixNano(),
	}
	e.statuses[order.ID] = StatusActive

	prevBid, prevAsk := e.top(Buy), e.top(Sell)

	events := make([]*BookEvent, 0, 8)
	events = append(events, newAcceptedEvent(e.nextSeq(), e.instrument, order, nowUTC))

	events, stopped := e.cross(order, events, nowUTC)

	if order.Remaining > 0 {
		order.Status = StatusCancelled
		e.statuses[order.ID] = StatusCancelled
		reason := protocol.RejectReasonNoLiquidity
		if stopped {
			reason = protocol.RejectReasonSelfTrade
		}
		events = append(events, newCancelledEvent(e.nextSeq(), e.instrument, order, 0, reason, nowUTC))
	} else {
		order.Status = StatusFilled
		e.statuses[order.ID] = StatusFilled
	}

	events = e.emitTopChanges(prevBid, prevAsk, events, nowUTC)
	e.publish(events)

	return e.verify()
}

// Cancel removes a resting order from the book. Cancelling an id that is
// unknown or already terminal fails with ErrUnknownOrderID and leaves the
// book untouched.
func (e *MatchingEngine) Cancel(id string) error {
	if e.haltErr != nil {
		return e.haltErr
	}

	order, err := e.index.lookup(id)
	if err != nil {
		return e.reject(id, 0, protocol.RejectReasonOrderNotFound, err)
	}

	nowUTC := time.Now().UTC()
	prevBid, prevAsk := e.top(Buy), e.top(Sell)

	e.sideOf(order.Side).unlinkOrder(order)
	if err := e.index.remove(id); err != nil {
		return e.halt(ErrBookCorrupted)
	}
	order.Status = StatusCancelled
	e.statuses[id] = StatusCancelled

	events := make([]*BookEvent, 0, 3)
	events = append(events, newCancelledEvent(e.nextSeq(), e.instrument, order, order.Remaining, protocol.RejectReasonNone, nowUTC))
	events = e.emitTopChanges(prevBid, prevAsk, events, nowUTC)
	e.publish(events)

	return e.verify()
}

// Modify changes a resting order. A price change or a quantity increase
// loses time priority and is processed as cancel-then-new, re-entering the
// crossing loop (it may trade immediately). A pure quantity decrease at the
// same price adjusts in place and keeps priority. The asymmetry is a
// deliberate, auditable rule.
func (e *MatchingEngine) Modify(id string, newPrice, newQty int64) error {
	if e.haltErr != nil {
		return e.haltErr
	}
	if newQty <= 0 {
		return e.reject(id, 0, protocol.RejectReasonInvalidQuantity, ErrInvalidQuantity)
	}
	if newPrice <= 0 {
		return e.reject(id, 0, protocol.RejectReasonInvalidPrice, ErrInvalidPrice)
	}

	order, err := e.index.lookup(id)
	if err != nil {
		return e.reject(id, 0, protocol.RejectReasonOrderNotFound, err)
	}

	if newPrice == order.Price && newQty == order.Remaining {
		return nil
	}

	now := time.Now()
	nowUTC := now.UTC()
	prevBid, prevAsk := e.top(Buy), e.top(Sell)
	events := make([]*BookEvent, 0, 8)

	if newPrice == order.Price && newQty < order.Remaining {
		// Priority kept: shrink in place.
		removed := order.Remaining - newQty
		order.level.reduce(removed)
		order.Remaining = newQty
		events = append(events, newReducedEvent(e.nextSeq(), e.instrument, order, removed, nowUTC))
	} else {
		// Priority lost: remove, then re-enter the crossing loop as a
		// fresh order under the same id.
		removedQty := order.Remaining
		e.sideOf(order.Side).unlinkOrder(order)
		if err := e.index.remove(id); err != nil {
			return e.halt(ErrBookCorrupted)
		}
		events = append(events, newCancelledEvent(e.nextSeq(), e.instrument, order, removedQty, protocol.RejectReasonNone, nowUTC))

		e.prioritySeq++
		order.Price = newPrice
		order.Quantity = newQty
		order.Remaining = newQty
		order.Priority = e.prioritySeq
		order.Status = StatusActive
		order.Timestamp = now.UnixNano()
		e.statuses[id] = StatusActive

		events = append(events, newAcceptedEvent(e.nextSeq(), e.instrument, order, nowUTC))
		events = e.settle(order, events, nowUTC)
	}

	events = e.emitTopChanges(prevBid, prevAsk, events, nowUTC)
	e.publish(events)

	return e.verify()
}

// settle runs the crossing loop for a limit order and then rests, fills, or
// cancels the remainder.
func (e *MatchingEngine) settle(order *Order, events []*BookEvent, nowUTC time.Time) []*BookEvent {
	events, stopped := e.cross(order, events, nowUTC)

	switch {
	case order.Remaining == 0:
		order.Status = StatusFilled
		e.statuses[order.ID] = StatusFilled
	case stopped:
		// Self-trade prevention: the remainder would match the user's own
		// order, so it must not rest either.
		order.Status = StatusCancelled
		e.statuses[order.ID] = StatusCancelled
		events = append(events, newCancelledEvent(e.nextSeq(), e.instrument, order, 0, protocol.RejectReasonSelfTrade, nowUTC))
	default:
		if err := e.rest(order); err != nil {
			e.halt(ErrBookCorrupted)
			return events
		}
		events = append(events, newRestedEvent(e.nextSeq(), e.instrument, order, nowUTC))
	}

	return events
}

// cross matches the taker against the opposite side while the price allows,
// trading at each maker's resting price. It returns true when self-trade
// prevention stopped the loop early.
func (e *MatchingEngine) cross(taker *Order, events []*BookEvent, nowUTC time.Time) ([]*BookEvent, bool) {
	opp := e.sideOf(opposite(taker.Side))

	for taker.Remaining > 0 {
		lvl := opp.bestLevel()
		if lvl == nil {
			break
		}
		if taker.Type == Limit && !crosses(taker.Side, taker.Price, lvl.price) {
			break
		}

		maker := lvl.peekFront()
		if maker == nil {
			// An empty level in the ladder is a programming defect.
			e.halt(ErrBookCorrupted)
			break
		}

		if e.selfTrade == SelfTradeCancelTaker && maker.UserID != 0 && maker.UserID == taker.UserID {
			return events, true
		}

		qty := min(taker.Remaining, maker.Remaining)
		taker.Remaining -= qty
		maker.Remaining -= qty
		lvl.reduce(qty)

		e.tradeID++
		events = append(events, newTradeEvent(e.nextSeq(), e.tradeID, e.instrument, taker, maker, qty, nowUTC))

		if maker.Remaining == 0 {
			maker.Status = StatusFilled
			e.statuses[maker.ID] = StatusFilled
			opp.unlinkOrder(maker)
			if err := e.index.remove(maker.ID); err != nil {
				e.halt(ErrBookCorrupted)
				break
			}
		} else {
			maker.Status = StatusPartiallyFilled
			e.statuses[maker.ID] = StatusPartiallyFilled
		}
	}

	return events, false
}

// crosses reports whether a limit price reaches the opposite best price.
func crosses(side Side, limit, best int64) bool {
	if side == Buy {
		return limit >= best
	}
	return limit <= best
}

// rest places the residual on its own side and registers the locator.
func (e *MatchingEngine) rest(order *Order) error {
	if err := e.index.insert(order); err != nil {
		return err
	}
	if err := e.sideOf(order.Side).insertOrder(order); err != nil {
		_ = e.index.remove(order.ID)
		return err
	}
	return nil
}

func (e *MatchingEngine) sideOf(side Side) *bookSide {
	if side == Buy {
		return e.bids
	}
	return e.asks
}

// BestBid returns the highest bid level, if any.
func (e *MatchingEngine) BestBid() (price, qty int64, ok bool) {
	t := e.top(Buy)
	return t.price, t.qty, t.ok
}

// BestAsk returns the lowest ask level, if any.
func (e *MatchingEngine) BestAsk() (price, qty int64, ok bool) {
	t := e.top(Sell)
	return t.price, t.qty, t.ok
}

// Depth returns up to limit aggregated levels per side, best price first.
func (e *MatchingEngine) Depth(limit uint32) *Depth {
	return &Depth{
		UpdateID: e.seqID,
		Bids:     e.bids.depth(limit),
		Asks:     e.asks.depth(limit),
	}
}

// OrderStatus reports the lifecycle state of any order the engine has
// accepted, including filled and cancelled ones.
func (e *MatchingEngine) OrderStatus(id string) (OrderStatus, error) {
	st, ok := e.statuses[id]
	if !ok {
		return "", ErrUnknownOrderID
	}
	return st, nil
}

// Stats returns usage statistics for the book.
func (e *MatchingEngine) Stats() *BookStats {
	return &BookStats{
		AskDepthCount: e.asks.depthCount(),
		AskOrderCount: e.asks.orderCount(),
		BidDepthCount: e.bids.depthCount(),
		BidOrderCount: e.bids.orderCount(),
	}
}

type topOfBook struct {
	price int64
	qty   int64
	ok    bool
}

func (e *MatchingEngine) top(side Side) topOfBook {
	lvl := e.sideOf(side).bestLevel()
	if lvl == nil {
		return topOfBook{}
	}
	return topOfBook{price: lvl.price, qty: lvl.totalQty, ok: true}
}

// emitTopChanges appends a book_top event for each side whose best level
// moved during the command, for feeding external market data distribution.
func (e *MatchingEngine) emitTopChanges(prevBid, prevAsk topOfBook, events []*BookEvent, nowUTC time.Time) []*BookEvent {
	if cur := e.top(Buy); cur != prevBid {
		events = append(events, newBookTopEvent(e.nextSeq(), e.instrument, Buy, cur.price, cur.qty, nowUTC))
	}
	if cur := e.top(Sell); cur != prevAsk {
		events = append(events, newBookTopEvent(e.nextSeq(), e.instrument, Sell, cur.price, cur.qty, nowUTC))
	}
	return events
}

func (e *MatchingEngine) nextSeq() uint64 {
	e.seqID++
	return e.seqID
}

// publish hands events to the sink in generation order and recycles them.
func (e *MatchingEngine) publish(events []*BookEvent) {
	if len(events) == 0 {
		return
	}
	e.sink.Publish(events...)
	for _, ev := range events {
		releaseEvent(ev)
	}
}

// reject emits a rejected event and returns err to the caller. Rejections
// never touch book state.
func (e *MatchingEngine) reject(orderID string, userID uint64, reason RejectReason, err error) error {
	ev := newRejectedEvent(e.nextSeq(), e.instrument, orderID, userID, reason, time.Now().UTC())
	e.sink.Publish(ev)
	releaseEvent(ev)
	return err
}

// halt marks the engine unusable after an internal consistency failure.
// Continuing on corrupted state would silently misprice trades, so every
// later command fails with the same error.
func (e *MatchingEngine) halt(err error) error {
	if e.haltErr == nil {
		e.haltErr = err
		logger.Error("matching engine halted", "instrument", e.instrument, "error", err)
	}
	return e.haltErr
}

// verify checks the book invariants that must hold after every command:
// non-negative aggregates at the top and an uncrossed book. A violation is
// a programming defect and halts the engine.
func (e *MatchingEngine) verify() error {
	if e.haltErr != nil {
		return e.haltErr
	}

	bid, ask := e.top(Buy), e.top(Sell)
	if bid.ok && bid.qty <= 0 || ask.ok && ask.qty <= 0 {
		return e.halt(ErrBookCorrupted)
	}
	if bid.ok && ask.ok && bid.price >= ask.price {
		return e.halt(ErrBookCorrupted)
	}
	return nil
}
