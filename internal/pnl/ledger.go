package pnl

import "crew-pnl-service/internal/domain"

// dustEpsilon is the quantity below which a lot is considered fully consumed
// and discarded, so floating-point dust cannot accumulate across many sells.
const dustEpsilon = 1e-7

// lotQueue is an index-based FIFO queue of cost lots. The front index
// advances instead of re-slicing on every pop, so consuming a lot is O(1)
// even when a heavily-traded token accumulates thousands of lots.
type lotQueue struct {
	lots  []domain.CostLot
	front int
}

func (q *lotQueue) push(lot domain.CostLot) {
	q.lots = append(q.lots, lot)
}

func (q *lotQueue) empty() bool {
	return q.front >= len(q.lots)
}

// peek returns the front lot for in-place mutation. Callers must check
// empty() first.
func (q *lotQueue) peek() *domain.CostLot {
	return &q.lots[q.front]
}

func (q *lotQueue) pop() {
	q.lots[q.front] = domain.CostLot{}
	q.front++
}

// remaining returns the unconsumed lots in FIFO order.
func (q *lotQueue) remaining() []domain.CostLot {
	if q.empty() {
		return nil
	}
	out := make([]domain.CostLot, len(q.lots)-q.front)
	copy(out, q.lots[q.front:])
	return out
}

// applyFIFO runs the FIFO cost-basis ledger over one token's trades in
// chronological order, mutating each sell's RealizedPnL, CostBasisUsed and
// OversoldQuantity in place, and returns the residual open lots.
//
// Buys append a lot {quantity, usdValue}; zero/negative quantity or negative
// cost is a no-op, not an error. Sells consume from the oldest lot at that
// lot's current average unit cost, reducing quantity and cost together. A
// sell that outruns the available lots is charged zero cost basis for the
// unmatched portion; the shortfall is recorded on the trade. This queue
// discipline is FIFO, never LIFO or average-cost: downstream rankings depend
// on it.
func applyFIFO(trades []*domain.ProcessedTrade) []domain.CostLot {
	var queue lotQueue

	for _, t := range trades {
		if t.Amount == nil {
			continue
		}
		amount := *t.Amount

		if t.Direction == domain.DirectionBuy {
			if amount > 0 && t.USDValue >= 0 {
				queue.push(domain.CostLot{Quantity: amount, Cost: t.USDValue})
			}
			continue
		}

		// SELL
		remaining := amount
		costBasisUsed := 0.0

		for remaining > 0 && !queue.empty() {
			lot := queue.peek()
			take := remaining
			if lot.Quantity < take {
				take = lot.Quantity
			}

			unitCost := lot.Cost / lot.Quantity
			costBasisUsed += take * unitCost

			lot.Quantity -= take
			lot.Cost -= take * unitCost
			remaining -= take

			if lot.Quantity < dustEpsilon {
				queue.pop()
			}
		}

		t.CostBasisUsed = costBasisUsed
		t.RealizedPnL = t.USDValue - costBasisUsed
		if remaining > dustEpsilon {
			t.OversoldQuantity = remaining
		}
	}

	return queue.remaining()
}
