package lob

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderIndex(t *testing.T) {
	idx := newOrderIndex()

	a := makeOrder("a", Buy, 100, 10)
	assert.NoError(t, idx.insert(a))
	assert.Equal(t, 1, idx.size())

	t.Run("duplicate insert fails", func(t *testing.T) {
		err := idx.insert(makeOrder("a", Sell, 200, 5))
		assert.ErrorIs(t, err, ErrDuplicateOrderID)
		assert.Equal(t, 1, idx.size())
	})

	t.Run("lookup", func(t *testing.T) {
		got, err := idx.lookup("a")
		assert.NoError(t, err)
		assert.Same(t, a, got)

		_, err = idx.lookup("missing")
		assert.ErrorIs(t, err, ErrUnknownOrderID)
	})

	t.Run("remove", func(t *testing.T) {
		assert.NoError(t, idx.remove("a"))
		assert.Equal(t, 0, idx.size())

		// Removing twice is always an explicit error
		assert.ErrorIs(t, idx.remove("a"), ErrUnknownOrderID)
	})
}
