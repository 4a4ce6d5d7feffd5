package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInstrument(t *testing.T) {
	ins, err := NewInstrument("BTC-USDT", "0.01", "0.001")
	require.NoError(t, err)
	assert.Equal(t, "BTC-USDT", ins.Symbol)

	_, err = NewInstrument("X", "0", "1")
	assert.ErrorIs(t, err, ErrInvalidTickSize)
	_, err = NewInstrument("X", "abc", "1")
	assert.ErrorIs(t, err, ErrInvalidTickSize)
	_, err = NewInstrument("X", "0.01", "-1")
	assert.ErrorIs(t, err, ErrInvalidLotSize)
}

func TestPriceToTicks(t *testing.T) {
	ins, err := NewInstrument("BTC-USDT", "0.01", "0.001")
	require.NoError(t, err)

	ticks, err := ins.PriceToTicks("100.00")
	assert.NoError(t, err)
	assert.Equal(t, int64(10000), ticks)

	ticks, err = ins.PriceToTicks("0.01")
	assert.NoError(t, err)
	assert.Equal(t, int64(1), ticks)

	t.Run("off the grid", func(t *testing.T) {
		_, err := ins.PriceToTicks("100.005")
		assert.ErrorIs(t, err, ErrOffTickGrid)
	})

	t.Run("not positive", func(t *testing.T) {
		_, err := ins.PriceToTicks("0")
		assert.ErrorIs(t, err, ErrNotPositive)
		_, err = ins.PriceToTicks("-5")
		assert.ErrorIs(t, err, ErrNotPositive)
	})

	t.Run("not a number", func(t *testing.T) {
		_, err := ins.PriceToTicks("ten")
		assert.Error(t, err)
	})
}

func TestSizeToLots(t *testing.T) {
	ins, err := NewInstrument("BTC-USDT", "0.01", "0.001")
	require.NoError(t, err)

	lots, err := ins.SizeToLots("1.5")
	assert.NoError(t, err)
	assert.Equal(t, int64(1500), lots)

	_, err = ins.SizeToLots("1.0005")
	assert.ErrorIs(t, err, ErrOffLotGrid)
	_, err = ins.SizeToLots("0")
	assert.ErrorIs(t, err, ErrNotPositive)
}

func TestGridRoundTrip(t *testing.T) {
	ins, err := NewInstrument("BTC-USDT", "0.01", "0.001")
	require.NoError(t, err)

	assert.Equal(t, "100", ins.TicksToPrice(10000))
	assert.Equal(t, "99.95", ins.TicksToPrice(9995))
	assert.Equal(t, "1.5", ins.LotsToSize(1500))
	assert.Equal(t, "0.001", ins.LotsToSize(1))

	ticks, err := ins.PriceToTicks(ins.TicksToPrice(123456))
	assert.NoError(t, err)
	assert.Equal(t, int64(123456), ticks)
}
