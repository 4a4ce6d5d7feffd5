package lob

import (
	"context"
	"errors"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/tickworks/lob/protocol"
)

// commandType discriminates the payload on the actor's command channel.
type commandType int

const (
	cmdPlaceLimit commandType = iota
	cmdPlaceMarket
	cmdCancel
	cmdModify
	cmdDepth
	cmdStats
	cmdStatus
	cmdSnapshot
)

// command is the unified carrier sent to the book loop. A single channel
// keeps command ordering deterministic.
type command struct {
	typ     commandType
	payload any
	resp    chan any // optional: for synchronous queries
}

type modifyRequest struct {
	orderID  string
	newPrice int64
	newQty   int64
}

type statusResult struct {
	status OrderStatus
	err    error
}

// OrderBook wraps a MatchingEngine behind a single dedicated worker
// consuming an ordered command queue. The engine itself is lock-free and
// single-threaded; this wrapper is the serialization point for concurrent
// callers. It also owns the instrument grid, normalizing the decimal
// strings of protocol commands into the integer ticks and lots the core
// requires.
//
// Mutating commands are asynchronous: submission errors (full context,
// shutdown) surface here, matching outcomes surface as events on the sink.
type OrderBook struct {
	engine     *MatchingEngine
	instrument *protocol.Instrument
	serializer protocol.Serializer

	isShutdown       atomic.Bool
	cmdChan          chan command
	done             chan struct{}
	shutdownComplete chan struct{}
}

// NewOrderBook creates an order book for one instrument. Call Start to
// begin processing.
func NewOrderBook(ins *protocol.Instrument, sink EventSink, opts ...EngineOption) *OrderBook {
	return &OrderBook{
		engine:           NewMatchingEngine(ins.Symbol, sink, opts...),
		instrument:       ins,
		serializer:       &protocol.DefaultJSONSerializer{},
		cmdChan:          make(chan command, 32768),
		done:             make(chan struct{}),
		shutdownComplete: make(chan struct{}),
	}
}

// PlaceOrder submits a new order asynchronously. Prices and sizes are
// normalized onto the instrument grid before the command is enqueued, so
// the book loop stays integer-only. Returns ErrShutdown if the book is
// shutting down and ErrInvalidPrice/ErrInvalidQuantity for values off the
// grid. A price on a market order is an error: market orders cross at
// whatever the book offers.
func (book *OrderBook) PlaceOrder(ctx context.Context, cmd *protocol.PlaceOrderCommand) error {
	if book.isShutdown.Load() {
		return ErrShutdown
	}
	if len(cmd.OrderID) == 0 {
		return ErrInvalidParam
	}

	qty, err := book.instrument.SizeToLots(cmd.Size)
	if err != nil {
		return errors.Join(ErrInvalidQuantity, err)
	}

	var payload any
	switch cmd.OrderType {
	case protocol.OrderTypeLimit:
		price, err := book.instrument.PriceToTicks(cmd.Price)
		if err != nil {
			return errors.Join(ErrInvalidPrice, err)
		}
		payload = &LimitOrder{
			ID:       cmd.OrderID,
			UserID:   cmd.UserID,
			Side:     cmd.Side,
			Price:    price,
			Quantity: qty,
		}
	case protocol.OrderTypeMarket:
		if len(cmd.Price) != 0 {
			return ErrInvalidPrice
		}
		payload = &MarketOrder{
			ID:       cmd.OrderID,
			UserID:   cmd.UserID,
			Side:     cmd.Side,
			Quantity: qty,
		}
	default:
		return ErrInvalidParam
	}

	typ := cmdPlaceLimit
	if cmd.OrderType == protocol.OrderTypeMarket {
		typ = cmdPlaceMarket
	}

	select {
	case book.cmdChan <- command{typ: typ, payload: payload}:
		return nil
	case <-ctx.Done():
		return ErrTimeout
	}
}

// CancelOrder submits a cancellation request asynchronously.
func (book *OrderBook) CancelOrder(ctx context.Context, id string) error {
	if book.isShutdown.Load() {
		return ErrShutdown
	}
	if len(id) == 0 {
		return ErrInvalidParam
	}

	select {
	case book.cmdChan <- command{typ: cmdCancel, payload: id}:
		return nil
	case <-ctx.Done():
		return ErrTimeout
	}
}

// AmendOrder submits a modify request asynchronously.
func (book *OrderBook) AmendOrder(ctx context.Context, cmd *protocol.AmendOrderCommand) error {
	if book.isShutdown.Load() {
		return ErrShutdown
	}
	if len(cmd.OrderID) == 0 {
		return ErrInvalidParam
	}

	price, err := book.instrument.PriceToTicks(cmd.NewPrice)
	if err != nil {
		return errors.Join(ErrInvalidPrice, err)
	}
	qty, err := book.instrument.SizeToLots(cmd.NewSize)
	if err != nil {
		return errors.Join(ErrInvalidQuantity, err)
	}

	select {
	case book.cmdChan <- command{typ: cmdModify, payload: &modifyRequest{orderID: cmd.OrderID, newPrice: price, newQty: qty}}:
		return nil
	case <-ctx.Done():
		return ErrTimeout
	}
}

// EnqueueCommand decodes a serialized command envelope and routes it to the
// typed submission path. This is the entry point for callers feeding the
// book from an ordered log.
func (book *OrderBook) EnqueueCommand(ctx context.Context, cmd *protocol.Command) error {
	switch cmd.Type {
	case protocol.CmdPlaceOrder:
		payload := &protocol.PlaceOrderCommand{}
		if err := book.serializer.Unmarshal(cmd.Payload, payload); err != nil {
			return errors.Join(ErrInvalidParam, err)
		}
		return book.PlaceOrder(ctx, payload)
	case protocol.CmdCancelOrder:
		payload := &protocol.CancelOrderCommand{}
		if err := book.serializer.Unmarshal(cmd.Payload, payload); err != nil {
			return errors.Join(ErrInvalidParam, err)
		}
		return book.CancelOrder(ctx, payload.OrderID)
	case protocol.CmdAmendOrder:
		payload := &protocol.AmendOrderCommand{}
		if err := book.serializer.Unmarshal(cmd.Payload, payload); err != nil {
			return errors.Join(ErrInvalidParam, err)
		}
		return book.AmendOrder(ctx, payload)
	default:
		return ErrInvalidParam
	}
}

// Depth returns the current aggregated depth up to limit levels per side,
// rendered back onto the instrument's decimal grid.
func (book *OrderBook) Depth(limit uint32) (*protocol.GetDepthResponse, error) {
	if limit == 0 {
		return nil, ErrInvalidParam
	}

	res, err := book.query(cmdDepth, limit)
	if err != nil {
		return nil, err
	}

	depth, ok := res.(*Depth)
	if !ok {
		return nil, ErrInternalResponse
	}

	return &protocol.GetDepthResponse{
		UpdateID: depth.UpdateID,
		Asks:     book.renderDepth(depth.Asks),
		Bids:     book.renderDepth(depth.Bids),
	}, nil
}

// Stats returns usage statistics for the order book.
func (book *OrderBook) Stats() (*protocol.GetStatsResponse, error) {
	res, err := book.query(cmdStats, nil)
	if err != nil {
		return nil, err
	}

	stats, ok := res.(*BookStats)
	if !ok {
		return nil, ErrInternalResponse
	}

	return &protocol.GetStatsResponse{
		AskDepthCount: stats.AskDepthCount,
		AskOrderCount: stats.AskOrderCount,
		BidDepthCount: stats.BidDepthCount,
		BidOrderCount: stats.BidOrderCount,
	}, nil
}

// OrderStatus reports the lifecycle state of an order by id.
func (book *OrderBook) OrderStatus(id string) (OrderStatus, error) {
	res, err := book.query(cmdStatus, id)
	if err != nil {
		return "", err
	}

	sr, ok := res.(statusResult)
	if !ok {
		return "", ErrInternalResponse
	}
	return sr.status, sr.err
}

// TakeSnapshot captures the current state of the book. It is thread-safe
// and interacts with the book loop via the command channel.
func (book *OrderBook) TakeSnapshot() (*BookSnapshot, error) {
	res, err := book.query(cmdSnapshot, nil)
	if err != nil {
		return nil, err
	}

	snap, ok := res.(*BookSnapshot)
	if !ok {
		return nil, ErrInternalResponse
	}
	return snap, nil
}

// Restore rebuilds the book from a snapshot. It must be called before
// Start; the engine is mutated directly.
func (book *OrderBook) Restore(snap *BookSnapshot) error {
	return book.engine.RestoreSnapshot(snap)
}

// ErrInternalResponse signals an unexpected response type on a query
// channel; it indicates a defect in the book loop, not bad input.
var ErrInternalResponse = errors.New("unexpected response type from book loop")

// query sends a synchronous command and waits for its response.
func (book *OrderBook) query(typ commandType, payload any) (any, error) {
	respChan := make(chan any, 1)

	select {
	case book.cmdChan <- command{typ: typ, payload: payload, resp: respChan}:
	case <-book.done:
		return nil, ErrShutdown
	case <-time.After(time.Second):
		return nil, ErrTimeout
	}

	select {
	case res := <-respChan:
		return res, nil
	case <-time.After(time.Second):
		return nil, ErrTimeout
	}
}

// renderDepth converts integer levels back to decimal strings.
func (book *OrderBook) renderDepth(levels []*DepthItem) []*protocol.DepthItem {
	out := make([]*protocol.DepthItem, 0, len(levels))
	for _, lvl := range levels {
		out = append(out, &protocol.DepthItem{
			Price: book.instrument.TicksToPrice(lvl.Price),
			Size:  book.instrument.LotsToSize(lvl.Quantity),
			Count: lvl.Orders,
		})
	}
	return out
}

// Start runs the book loop to process orders, cancellations, and queries.
// Returns nil when Shutdown() is called and all pending commands are
// drained.
func (book *OrderBook) Start() error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	for {
		select {
		case <-book.done:
			return book.drain()
		case cmd := <-book.cmdChan:
			book.dispatch(cmd)
		}
	}
}

// dispatch applies one command to the engine. Errors from mutating
// commands are already reported through reject events; the loop must keep
// going regardless, except after corruption.
func (book *OrderBook) dispatch(cmd command) {
	switch cmd.typ {
	case cmdPlaceLimit:
		if order, ok := cmd.payload.(*LimitOrder); ok {
			book.checkFatal(book.engine.NewLimitOrder(order))
		}
	case cmdPlaceMarket:
		if order, ok := cmd.payload.(*MarketOrder); ok {
			book.checkFatal(book.engine.NewMarketOrder(order))
		}
	case cmdCancel:
		if id, ok := cmd.payload.(string); ok {
			book.checkFatal(book.engine.Cancel(id))
		}
	case cmdModify:
		if req, ok := cmd.payload.(*modifyRequest); ok {
			book.checkFatal(book.engine.Modify(req.orderID, req.newPrice, req.newQty))
		}
	case cmdDepth:
		if limit, ok := cmd.payload.(uint32); ok {
			book.respond(cmd, book.engine.Depth(limit))
		}
	case cmdStats:
		book.respond(cmd, book.engine.Stats())
	case cmdStatus:
		if id, ok := cmd.payload.(string); ok {
			st, err := book.engine.OrderStatus(id)
			book.respond(cmd, statusResult{status: st, err: err})
		}
	case cmdSnapshot:
		book.respond(cmd, book.engine.Snapshot())
	}
}

// checkFatal stops intake once the engine has halted on corrupted state.
func (book *OrderBook) checkFatal(err error) {
	if errors.Is(err, ErrBookCorrupted) && book.isShutdown.CompareAndSwap(false, true) {
		logger.Error("order book halted", "instrument", book.engine.Instrument())
		close(book.done)
	}
}

func (book *OrderBook) respond(cmd command, res any) {
	if cmd.resp == nil {
		return
	}
	select {
	case cmd.resp <- res:
	default:
		// Non-blocking send, if no one is listening, just drop it
	}
}

// Shutdown signals the book to stop accepting new commands and waits for
// all pending ones to be processed. Returns ctx.Err() if the context ends
// first.
func (book *OrderBook) Shutdown(ctx context.Context) error {
	if book.isShutdown.CompareAndSwap(false, true) {
		close(book.done)
	}

	select {
	case <-book.shutdownComplete:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// drain processes all remaining mutating commands before returning.
func (book *OrderBook) drain() error {
	defer close(book.shutdownComplete)

	for {
		select {
		case cmd := <-book.cmdChan:
			switch cmd.typ {
			case cmdPlaceLimit, cmdPlaceMarket, cmdCancel, cmdModify:
				book.dispatch(cmd)
			default:
				// Read-only commands, no-op during drain
			}
		default:
			return nil
		}
	}
}
