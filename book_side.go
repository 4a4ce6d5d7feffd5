package lob

import "github.com/huandu/skiplist"

// bookSide holds the price ladder for one side of the book. Levels live in
// a skip list ordered best price first (bids descending, asks ascending),
// giving O(log n) level insertion and O(1) best-price access. levelIndex
// maps price to its skip list element so cancels reach their level without
// a search.
type bookSide struct {
	side        Side
	totalOrders int64
	levels      *skiplist.SkipList
	levelIndex  map[int64]*skiplist.Element
}

// newBidSide creates the buy side, sorted by price in descending order
// (highest bid first).
func newBidSide() *bookSide {
	return &bookSide{
		side: Buy,
		levels: skiplist.New(skiplist.GreaterThanFunc(func(lhs, rhs any) int {
			p1, _ := lhs.(int64)
			p2, _ := rhs.(int64)

			if p1 < p2 {
				return 1
			} else if p1 > p2 {
				return -1
			}

			return 0
		})),
		levelIndex: make(map[int64]*skiplist.Element),
	}
}

// newAskSide creates the sell side, sorted by price in ascending order
// (lowest ask first).
func newAskSide() *bookSide {
	return &bookSide{
		side: Sell,
		levels: skiplist.New(skiplist.GreaterThanFunc(func(lhs, rhs any) int {
			p1, _ := lhs.(int64)
			p2, _ := rhs.(int64)

			if p1 > p2 {
				return 1
			} else if p1 < p2 {
				return -1
			}

			return 0
		})),
		levelIndex: make(map[int64]*skiplist.Element),
	}
}

// bestLevel returns the level with the most aggressive price, or nil if the
// side has no liquidity.
func (s *bookSide) bestLevel() *priceLevel {
	el := s.levels.Front()
	if el == nil {
		return nil
	}

	lvl, _ := el.Value.(*priceLevel)
	return lvl
}

// getOrCreateLevel returns the level at price, creating and inserting it in
// sort order if it does not exist yet.
func (s *bookSide) getOrCreateLevel(price int64) *priceLevel {
	if el, ok := s.levelIndex[price]; ok {
		lvl, _ := el.Value.(*priceLevel)
		return lvl
	}

	lvl := newPriceLevel(price)
	s.levelIndex[price] = s.levels.Set(price, lvl)
	return lvl
}

// removeLevelIfEmpty deletes the level once its queue is empty. Levels with
// zero aggregate quantity must not exist in the ladder.
func (s *bookSide) removeLevelIfEmpty(lvl *priceLevel) {
	if !lvl.isEmpty() {
		return
	}

	if el, ok := s.levelIndex[lvl.price]; ok {
		s.levels.RemoveElement(el)
		delete(s.levelIndex, lvl.price)
	}
}

// insertOrder rests an order at its limit price.
func (s *bookSide) insertOrder(o *Order) error {
	lvl := s.getOrCreateLevel(o.Price)
	if err := lvl.enqueue(o); err != nil {
		s.removeLevelIfEmpty(lvl)
		return err
	}

	s.totalOrders++
	return nil
}

// unlinkOrder removes a resting order and cleans up its level if emptied.
func (s *bookSide) unlinkOrder(o *Order) {
	lvl := o.level
	if lvl == nil {
		return
	}

	lvl.unlink(o)
	s.totalOrders--
	s.removeLevelIfEmpty(lvl)
}

// eachLevel walks the levels from the best price outward until fn returns
// false or the ladder is exhausted.
func (s *bookSide) eachLevel(fn func(*priceLevel) bool) {
	for el := s.levels.Front(); el != nil; el = el.Next() {
		lvl, _ := el.Value.(*priceLevel)
		if !fn(lvl) {
			return
		}
	}
}

// depth returns up to limit aggregated levels in priority order.
func (s *bookSide) depth(limit uint32) []*DepthItem {
	result := make([]*DepthItem, 0, limit)

	var i uint32
	s.eachLevel(func(lvl *priceLevel) bool {
		if i >= limit {
			return false
		}
		result = append(result, &DepthItem{
			Price:    lvl.price,
			Quantity: lvl.totalQty,
			Orders:   lvl.count,
		})
		i++
		return true
	})

	return result
}

// orderCount returns the total number of resting orders on this side.
func (s *bookSide) orderCount() int64 {
	return s.totalOrders
}

// depthCount returns the number of price levels on this side.
func (s *bookSide) depthCount() int64 {
	return int64(len(s.levelIndex))
}

// snapshotOrders copies every resting order in priority order: best level
// first, FIFO within a level. Re-inserting the copies in this order rebuilds
// identical time priority.
func (s *bookSide) snapshotOrders() []Order {
	snapshots := make([]Order, 0, s.totalOrders)

	s.eachLevel(func(lvl *priceLevel) bool {
		for o := lvl.head; o != nil; o = o.next {
			cpy := *o
			cpy.next = nil
			cpy.prev = nil
			cpy.level = nil
			snapshots = append(snapshots, cpy)
		}
		return true
	})

	return snapshots
}
