package lob

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregatedBookReplay(t *testing.T) {
	engine, sink := newTestEngine()

	assert.NoError(t, engine.NewLimitOrder(&LimitOrder{ID: "b1", UserID: 1, Side: Buy, Price: 10, Quantity: 100}))
	assert.NoError(t, engine.NewLimitOrder(&LimitOrder{ID: "s1", UserID: 2, Side: Sell, Price: 12, Quantity: 50}))
	assert.NoError(t, engine.NewLimitOrder(&LimitOrder{ID: "s2", UserID: 2, Side: Sell, Price: 9, Quantity: 60}))
	assert.NoError(t, engine.Modify("b1", 10, 30))
	assert.NoError(t, engine.Cancel("s1"))

	ab := NewAggregatedBook()
	for _, ev := range sink.Events() {
		assert.NoError(t, ab.Replay(ev))
	}

	// The replayed view matches the live book level by level.
	depth := engine.Depth(100)
	assert.Equal(t, len(depth.Bids), ab.Levels(Buy))
	assert.Equal(t, len(depth.Asks), ab.Levels(Sell))
	for _, lvl := range depth.Bids {
		assert.Equal(t, lvl.Quantity, ab.DepthAt(Buy, lvl.Price))
	}
	for _, lvl := range depth.Asks {
		assert.Equal(t, lvl.Quantity, ab.DepthAt(Sell, lvl.Price))
	}

	price, size, ok := ab.BestBid()
	assert.True(t, ok)
	assert.Equal(t, int64(10), price)
	assert.Equal(t, int64(30), size)

	_, _, ok = ab.BestAsk()
	assert.False(t, ok)

	assert.Equal(t, depth.UpdateID, ab.SequenceID())
}

func TestAggregatedBookDuplicateAndGap(t *testing.T) {
	engine, sink := newTestEngine()
	assert.NoError(t, engine.NewLimitOrder(&LimitOrder{ID: "b1", UserID: 1, Side: Buy, Price: 10, Quantity: 100}))
	assert.NoError(t, engine.NewLimitOrder(&LimitOrder{ID: "b2", UserID: 1, Side: Buy, Price: 11, Quantity: 20}))

	events := sink.Events()
	require.GreaterOrEqual(t, len(events), 3)

	ab := NewAggregatedBook()
	assert.NoError(t, ab.Replay(events[0]))
	assert.NoError(t, ab.Replay(events[1]))

	t.Run("duplicate is skipped", func(t *testing.T) {
		size := ab.DepthAt(Buy, 10)
		assert.NoError(t, ab.Replay(events[1]))
		assert.Equal(t, size, ab.DepthAt(Buy, 10))
		assert.Equal(t, events[1].SequenceID, ab.SequenceID())
	})

	t.Run("gap is rejected", func(t *testing.T) {
		assert.ErrorIs(t, ab.Replay(events[3]), ErrSequenceGap)
		// The failed event did not advance the cursor.
		assert.Equal(t, events[1].SequenceID, ab.SequenceID())
	})
}

func TestAggregatedBookSnapshotResync(t *testing.T) {
	engine, sink := newTestEngine()

	assert.NoError(t, engine.NewLimitOrder(&LimitOrder{ID: "b1", UserID: 1, Side: Buy, Price: 10, Quantity: 100}))
	assert.NoError(t, engine.NewLimitOrder(&LimitOrder{ID: "s1", UserID: 2, Side: Sell, Price: 12, Quantity: 50}))

	mid := engine.Depth(100)

	assert.NoError(t, engine.NewLimitOrder(&LimitOrder{ID: "s2", UserID: 2, Side: Sell, Price: 9, Quantity: 40}))
	assert.NoError(t, engine.Cancel("s1"))

	// Prime from the mid-session snapshot, then feed the whole stream:
	// events at or before the snapshot are skipped as duplicates.
	ab := NewAggregatedBook()
	ab.OnSnapshot(mid)
	assert.Equal(t, mid.UpdateID, ab.SequenceID())

	for _, ev := range sink.Events() {
		assert.NoError(t, ab.Replay(ev))
	}

	final := engine.Depth(100)
	assert.Equal(t, len(final.Bids), ab.Levels(Buy))
	assert.Equal(t, len(final.Asks), ab.Levels(Sell))
	for _, lvl := range final.Bids {
		assert.Equal(t, lvl.Quantity, ab.DepthAt(Buy, lvl.Price))
	}
}

func TestAggregatedBookNegativeDepth(t *testing.T) {
	ab := NewAggregatedBook()

	assert.NoError(t, ab.Replay(&BookEvent{
		SequenceID: 1,
		Type:       EventOrderRested,
		Side:       Buy,
		Price:      10,
		Quantity:   5,
	}))

	// Removing more than the level holds means the stream diverged.
	assert.ErrorIs(t, ab.Replay(&BookEvent{
		SequenceID: 2,
		Type:       EventOrderCancelled,
		Side:       Buy,
		Price:      10,
		Quantity:   8,
	}), ErrNegativeDepth)
}

func TestCalculateDepthChange(t *testing.T) {
	tests := []struct {
		name string
		ev   *BookEvent
		want DepthChange
	}{
		{
			name: "rested adds liquidity",
			ev:   &BookEvent{Type: EventOrderRested, Side: Buy, Price: 10, Quantity: 100},
			want: DepthChange{Side: Buy, Price: 10, SizeDiff: 100},
		},
		{
			name: "cancelled removes what rested",
			ev:   &BookEvent{Type: EventOrderCancelled, Side: Sell, Price: 12, Quantity: 40},
			want: DepthChange{Side: Sell, Price: 12, SizeDiff: -40},
		},
		{
			name: "cancelled remainder that never rested",
			ev:   &BookEvent{Type: EventOrderCancelled, Side: Buy, Quantity: 0, Remaining: 20},
			want: DepthChange{},
		},
		{
			name: "reduced shrinks in place",
			ev:   &BookEvent{Type: EventOrderReduced, Side: Buy, Price: 10, Quantity: 20},
			want: DepthChange{Side: Buy, Price: 10, SizeDiff: -20},
		},
		{
			name: "trade consumes the maker side",
			ev:   &BookEvent{Type: EventTrade, Side: Sell, Price: 10, Quantity: 60},
			want: DepthChange{Side: Buy, Price: 10, SizeDiff: -60},
		},
		{
			name: "accepted moves nothing",
			ev:   &BookEvent{Type: EventOrderAccepted, Side: Buy, Price: 10, Quantity: 100},
			want: DepthChange{},
		},
		{
			name: "book top moves nothing",
			ev:   &BookEvent{Type: EventBookTopChanged, Side: Buy, Price: 10, Quantity: 100},
			want: DepthChange{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CalculateDepthChange(tc.ev))
		})
	}
}
