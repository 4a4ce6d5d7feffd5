package lob

import (
	"math/rand"
	"testing"

	"github.com/rs/xid"
)

func BenchmarkNewLimitOrder(b *testing.B) {
	engine := NewMatchingEngine("BTC-USDT", NewDiscardEventSink())
	rng := rand.New(rand.NewSource(42))

	ids := make([]string, b.N)
	for i := range ids {
		ids[i] = xid.New().String()
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		side := Buy
		price := int64(10000 - rng.Intn(100))
		if i%2 == 1 {
			side = Sell
			price = int64(10000 + rng.Intn(100))
		}
		_ = engine.NewLimitOrder(&LimitOrder{
			ID:       ids[i],
			UserID:   uint64(i%16 + 1),
			Side:     side,
			Price:    price,
			Quantity: int64(rng.Intn(10) + 1),
		})
	}
}

func BenchmarkCrossingOrders(b *testing.B) {
	engine := NewMatchingEngine("BTC-USDT", NewDiscardEventSink())

	ids := make([]string, 2*b.N)
	for i := range ids {
		ids[i] = xid.New().String()
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = engine.NewLimitOrder(&LimitOrder{
			ID:       ids[2*i],
			UserID:   1,
			Side:     Buy,
			Price:    10000,
			Quantity: 5,
		})
		_ = engine.NewLimitOrder(&LimitOrder{
			ID:       ids[2*i+1],
			UserID:   2,
			Side:     Sell,
			Price:    10000,
			Quantity: 5,
		})
	}
}

func BenchmarkCancel(b *testing.B) {
	engine := NewMatchingEngine("BTC-USDT", NewDiscardEventSink())

	ids := make([]string, b.N)
	for i := range ids {
		ids[i] = xid.New().String()
		_ = engine.NewLimitOrder(&LimitOrder{
			ID:       ids[i],
			UserID:   1,
			Side:     Buy,
			Price:    int64(5000 + i%500),
			Quantity: 1,
		})
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = engine.Cancel(ids[i])
	}
}
