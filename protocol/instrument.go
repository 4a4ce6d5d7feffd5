package protocol

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidTickSize = errors.New("protocol: tick size must be positive")
	ErrInvalidLotSize  = errors.New("protocol: lot size must be positive")
	ErrOffTickGrid     = errors.New("protocol: price is not a multiple of the tick size")
	ErrOffLotGrid      = errors.New("protocol: size is not a multiple of the lot size")
	ErrNotPositive     = errors.New("protocol: value must be positive")
)

// Instrument describes the fixed-point grid for one market. External prices
// and sizes arrive as decimal strings; the matching core only ever sees
// integer ticks and lots, so all decimal arithmetic stops here.
type Instrument struct {
	Symbol   string
	TickSize decimal.Decimal
	LotSize  decimal.Decimal
}

// NewInstrument parses tick and lot sizes from decimal strings.
func NewInstrument(symbol, tickSize, lotSize string) (*Instrument, error) {
	tick, err := decimal.NewFromString(tickSize)
	if err != nil || tick.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidTickSize
	}
	lot, err := decimal.NewFromString(lotSize)
	if err != nil || lot.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidLotSize
	}
	return &Instrument{Symbol: symbol, TickSize: tick, LotSize: lot}, nil
}

// PriceToTicks converts a decimal price string into integer ticks.
// Prices off the tick grid are rejected rather than rounded; rounding
// would silently change the price a client asked for.
func (ins *Instrument) PriceToTicks(price string) (int64, error) {
	d, err := decimal.NewFromString(price)
	if err != nil {
		return 0, err
	}
	if d.LessThanOrEqual(decimal.Zero) {
		return 0, ErrNotPositive
	}
	if !d.Mod(ins.TickSize).IsZero() {
		return 0, ErrOffTickGrid
	}
	return d.Div(ins.TickSize).IntPart(), nil
}

// SizeToLots converts a decimal size string into integer lots.
func (ins *Instrument) SizeToLots(size string) (int64, error) {
	d, err := decimal.NewFromString(size)
	if err != nil {
		return 0, err
	}
	if d.LessThanOrEqual(decimal.Zero) {
		return 0, ErrNotPositive
	}
	if !d.Mod(ins.LotSize).IsZero() {
		return 0, ErrOffLotGrid
	}
	return d.Div(ins.LotSize).IntPart(), nil
}

// TicksToPrice renders integer ticks back into a decimal price string.
func (ins *Instrument) TicksToPrice(ticks int64) string {
	return decimal.NewFromInt(ticks).Mul(ins.TickSize).String()
}

// LotsToSize renders integer lots back into a decimal size string.
func (ins *Instrument) LotsToSize(lots int64) string {
	return decimal.NewFromInt(lots).Mul(ins.LotSize).String()
}
