package lob

import (
	"errors"
	"sync/atomic"

	"github.com/igrmk/treemap/v2"
)

var (
	// ErrSequenceGap indicates a missing event between the last applied
	// sequence ID and the incoming one; the caller must resynchronize from
	// a depth snapshot before replaying further.
	ErrSequenceGap = errors.New("aggregated book: sequence gap detected")
	// ErrNegativeDepth indicates replay drove a price level below zero,
	// which means the event stream and the book state have diverged.
	ErrNegativeDepth = errors.New("aggregated book: negative depth after replay")
)

// AggregatedBook maintains a simplified view of the order book, tracking
// only price levels and their aggregated sizes (depth). It is designed for
// downstream services that rebuild book state from BookEvents received via
// an event stream: prime it with OnSnapshot, then feed every event to
// Replay. Replay is ordered by SequenceID; duplicates are skipped and gaps
// rejected.
type AggregatedBook struct {
	seqID  atomic.Uint64 // last applied SequenceID
	primed atomic.Bool
	ask    *treemap.TreeMap[int64, int64]
	bid    *treemap.TreeMap[int64, int64]
}

// NewAggregatedBook creates a new AggregatedBook with empty sides.
func NewAggregatedBook() *AggregatedBook {
	return &AggregatedBook{
		ask: treemap.New[int64, int64](),
		bid: treemap.New[int64, int64](),
	}
}

// SequenceID returns the last applied sequence ID, used for gap detection
// and resynchronization.
func (ab *AggregatedBook) SequenceID() uint64 {
	return ab.seqID.Load()
}

// OnSnapshot resets the book from an aggregated depth snapshot. Replay
// resumes from the snapshot's UpdateID.
func (ab *AggregatedBook) OnSnapshot(depth *Depth) {
	ab.bid.Clear()
	ab.ask.Clear()
	for _, lvl := range depth.Bids {
		ab.bid.Set(lvl.Price, lvl.Quantity)
	}
	for _, lvl := range depth.Asks {
		ab.ask.Set(lvl.Price, lvl.Quantity)
	}
	ab.seqID.Store(depth.UpdateID)
	ab.primed.Store(true)
}

// Replay applies one BookEvent. Events that do not move resting liquidity
// (accepts, rejects, top-of-book notifications) still advance the sequence
// ID so gap detection keeps working.
func (ab *AggregatedBook) Replay(ev *BookEvent) error {
	last := ab.seqID.Load()
	if ab.primed.Load() || last > 0 {
		if ev.SequenceID <= last {
			return nil // duplicate, already applied
		}
		if ev.SequenceID != last+1 {
			return ErrSequenceGap
		}
	}

	ch := CalculateDepthChange(ev)
	if ch.SizeDiff != 0 {
		side := ab.bid
		if ch.Side == Sell {
			side = ab.ask
		}

		cur, _ := side.Get(ch.Price)
		next := cur + ch.SizeDiff
		switch {
		case next < 0:
			return ErrNegativeDepth
		case next == 0:
			side.Del(ch.Price)
		default:
			side.Set(ch.Price, next)
		}
	}

	ab.seqID.Store(ev.SequenceID)
	return nil
}

// BestBid returns the highest bid level, if any.
func (ab *AggregatedBook) BestBid() (price, size int64, ok bool) {
	it := ab.bid.Reverse()
	if !it.Valid() {
		return 0, 0, false
	}
	return it.Key(), it.Value(), true
}

// BestAsk returns the lowest ask level, if any.
func (ab *AggregatedBook) BestAsk() (price, size int64, ok bool) {
	it := ab.ask.Iterator()
	if !it.Valid() {
		return 0, 0, false
	}
	return it.Key(), it.Value(), true
}

// DepthAt returns the aggregated size at a specific price level for the
// given side, or zero if the level does not exist.
func (ab *AggregatedBook) DepthAt(side Side, price int64) int64 {
	tree := ab.bid
	if side == Sell {
		tree = ab.ask
	}
	size, _ := tree.Get(price)
	return size
}

// Levels returns the number of price levels tracked on the given side.
func (ab *AggregatedBook) Levels(side Side) int {
	if side == Sell {
		return ab.ask.Len()
	}
	return ab.bid.Len()
}
