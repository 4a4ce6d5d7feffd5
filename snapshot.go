package lob

// BookSnapshot contains the full resting state of a single book.
// Orders appear best price first and FIFO within a level, so re-inserting
// them in slice order rebuilds identical time priority. Durability is an
// external collaborator's concern; the core only produces and consumes the
// in-memory form.
type BookSnapshot struct {
	SchemaVersion int     `json:"schema_version"`
	Instrument    string  `json:"instrument"`
	SeqID         uint64  `json:"seq_id"`       // current event sequence ID
	TradeID       uint64  `json:"trade_id"`     // current trade sequence ID
	PrioritySeq   uint64  `json:"priority_seq"` // current time-priority token
	Bids          []Order `json:"bids"`
	Asks          []Order `json:"asks"`
}

// Snapshot captures the current resting state of the book. Terminal order
// statuses are not part of the snapshot; only resting orders are.
func (e *MatchingEngine) Snapshot() *BookSnapshot {
	return &BookSnapshot{
		SchemaVersion: SnapshotSchemaVersion,
		Instrument:    e.instrument,
		SeqID:         e.seqID,
		TradeID:       e.tradeID,
		PrioritySeq:   e.prioritySeq,
		Bids:          e.bids.snapshotOrders(),
		Asks:          e.asks.snapshotOrders(),
	}
}

// RestoreSnapshot resets the engine and rebuilds the book from a snapshot,
// bypassing the matching logic. Counters resume where the snapshot left off.
func (e *MatchingEngine) RestoreSnapshot(snap *BookSnapshot) error {
	e.bids = newBidSide()
	e.asks = newAskSide()
	e.index = newOrderIndex()
	e.statuses = make(map[string]OrderStatus)
	e.seqID = snap.SeqID
	e.tradeID = snap.TradeID
	e.prioritySeq = snap.PrioritySeq
	e.haltErr = nil

	restore := func(orders []Order) error {
		for i := range orders {
			o := orders[i] // copy; the snapshot stays untouched
			if err := e.rest(&o); err != nil {
				return err
			}
			e.statuses[o.ID] = o.Status
		}
		return nil
	}

	if err := restore(snap.Bids); err != nil {
		return err
	}
	if err := restore(snap.Asks); err != nil {
		return err
	}

	return e.verify()
}
