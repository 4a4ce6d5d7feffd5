package lob

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func makeOrder(id string, side Side, price, qty int64) *Order {
	return &Order{
		ID:        id,
		Side:      side,
		Type:      Limit,
		Price:     price,
		Quantity:  qty,
		Remaining: qty,
		Status:    StatusActive,
	}
}

func TestPriceLevelFIFO(t *testing.T) {
	lvl := newPriceLevel(100)

	a := makeOrder("a", Buy, 100, 10)
	b := makeOrder("b", Buy, 100, 20)
	c := makeOrder("c", Buy, 100, 30)

	assert.NoError(t, lvl.enqueue(a))
	assert.NoError(t, lvl.enqueue(b))
	assert.NoError(t, lvl.enqueue(c))

	assert.Equal(t, int64(60), lvl.totalQty)
	assert.Equal(t, int64(3), lvl.count)

	assert.Equal(t, "a", lvl.peekFront().ID)
	assert.Equal(t, "a", lvl.popFront().ID)
	assert.Equal(t, "b", lvl.peekFront().ID)
	assert.Equal(t, int64(50), lvl.totalQty)
	assert.Equal(t, "b", lvl.popFront().ID)
	assert.Equal(t, "c", lvl.popFront().ID)

	assert.True(t, lvl.isEmpty())
	assert.Nil(t, lvl.popFront())
	assert.Equal(t, int64(0), lvl.totalQty)
}

func TestPriceLevelRejectsMismatchedPrice(t *testing.T) {
	lvl := newPriceLevel(100)
	err := lvl.enqueue(makeOrder("a", Buy, 101, 10))
	assert.ErrorIs(t, err, errPriceMismatch)
	assert.True(t, lvl.isEmpty())
}

func TestPriceLevelUnlinkMiddle(t *testing.T) {
	lvl := newPriceLevel(100)

	a := makeOrder("a", Buy, 100, 10)
	b := makeOrder("b", Buy, 100, 20)
	c := makeOrder("c", Buy, 100, 30)

	assert.NoError(t, lvl.enqueue(a))
	assert.NoError(t, lvl.enqueue(b))
	assert.NoError(t, lvl.enqueue(c))

	lvl.unlink(b)
	assert.Equal(t, int64(40), lvl.totalQty)
	assert.Equal(t, int64(2), lvl.count)
	assert.Nil(t, b.level)

	// Queue order of the rest is preserved
	assert.Equal(t, "a", lvl.popFront().ID)
	assert.Equal(t, "c", lvl.popFront().ID)
	assert.True(t, lvl.isEmpty())
}

func TestPriceLevelUnlinkEnds(t *testing.T) {
	lvl := newPriceLevel(100)

	a := makeOrder("a", Buy, 100, 10)
	b := makeOrder("b", Buy, 100, 20)

	assert.NoError(t, lvl.enqueue(a))
	assert.NoError(t, lvl.enqueue(b))

	lvl.unlink(a)
	assert.Equal(t, "b", lvl.peekFront().ID)
	lvl.unlink(b)
	assert.True(t, lvl.isEmpty())
	assert.Nil(t, lvl.peekFront())
}

func TestPriceLevelReduce(t *testing.T) {
	lvl := newPriceLevel(100)

	a := makeOrder("a", Buy, 100, 50)
	assert.NoError(t, lvl.enqueue(a))

	// Partial fill: aggregate and order remaining move together.
	a.Remaining -= 20
	lvl.reduce(20)
	assert.Equal(t, int64(30), lvl.totalQty)
	assert.False(t, lvl.isEmpty())

	lvl.unlink(a)
	assert.Equal(t, int64(0), lvl.totalQty)
	assert.True(t, lvl.isEmpty())
}
