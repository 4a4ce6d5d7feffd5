package lob

import "errors"

// errPriceMismatch indicates an order was handed to a level with a different
// price. It can only be caused by a programming defect, never by input.
var errPriceMismatch = errors.New("order price does not match the level price")

// priceLevel is a FIFO queue of resting orders at one exact price.
// The queue is an intrusive doubly-linked list threaded through the orders
// themselves, and totalQty is maintained incrementally on every mutation so
// aggregate lookups never re-sum the queue.
type priceLevel struct {
	price    int64
	head     *Order
	tail     *Order
	totalQty int64
	count    int64
}

func newPriceLevel(price int64) *priceLevel {
	return &priceLevel{price: price}
}

// enqueue appends an order to the tail, preserving time priority.
func (l *priceLevel) enqueue(o *Order) error {
	if o.Price != l.price {
		return errPriceMismatch
	}

	o.prev = l.tail
	o.next = nil
	if l.tail != nil {
		l.tail.next = o
	} else {
		l.head = o
	}
	l.tail = o
	o.level = l

	l.totalQty += o.Remaining
	l.count++
	return nil
}

// peekFront returns the oldest resting order, or nil if the level is empty.
func (l *priceLevel) peekFront() *Order {
	return l.head
}

// popFront removes and returns the oldest resting order.
func (l *priceLevel) popFront() *Order {
	o := l.head
	if o == nil {
		return nil
	}
	l.unlink(o)
	return o
}

// unlink removes an arbitrary order in O(1) using its own pointers,
// keeping the rest of the queue in order.
func (l *priceLevel) unlink(o *Order) {
	if o.prev != nil {
		o.prev.next = o.next
	} else {
		l.head = o.next
	}
	if o.next != nil {
		o.next.prev = o.prev
	} else {
		l.tail = o.prev
	}

	// Clear pointers to avoid leaks
	o.next = nil
	o.prev = nil
	o.level = nil

	l.totalQty -= o.Remaining
	l.count--
}

// reduce lowers the aggregate after a partial fill or an in-place quantity
// decrease. The caller adjusts the order's Remaining itself; the two must
// move together or unlink would drift.
func (l *priceLevel) reduce(qty int64) {
	l.totalQty -= qty
}

// isEmpty is true iff no order rests at this price.
func (l *priceLevel) isEmpty() bool {
	return l.count == 0
}
