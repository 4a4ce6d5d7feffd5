package lob

// orderIndex maps order ids to their live order, which carries its own
// locator (side, price, level pointer, list node). Every Active or
// PartiallyFilled order in either side has exactly one entry here;
// terminal orders have none.
type orderIndex struct {
	orders map[string]*Order
}

func newOrderIndex() *orderIndex {
	return &orderIndex{orders: make(map[string]*Order)}
}

// insert registers a resting order. Duplicate ids are an explicit error,
// never silently replaced.
func (idx *orderIndex) insert(o *Order) error {
	if _, ok := idx.orders[o.ID]; ok {
		return ErrDuplicateOrderID
	}
	idx.orders[o.ID] = o
	return nil
}

// lookup finds a resting order by id.
func (idx *orderIndex) lookup(id string) (*Order, error) {
	o, ok := idx.orders[id]
	if !ok {
		return nil, ErrUnknownOrderID
	}
	return o, nil
}

// remove deletes the entry. Removing an absent id is an explicit error so
// double cancels are always reported.
func (idx *orderIndex) remove(id string) error {
	if _, ok := idx.orders[id]; !ok {
		return ErrUnknownOrderID
	}
	delete(idx.orders, id)
	return nil
}

// size returns the number of resting orders tracked.
func (idx *orderIndex) size() int {
	return len(idx.orders)
}
