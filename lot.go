package taxlot

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PositionLot is one still-open slice of an opening transaction, resident in
// its instrument's FIFO queue. The quantity sign carries the direction of the
// original open. Value and Fees hold the unconsumed remainder of the opening
// amount; Consume shrinks them proportionally.
type PositionLot struct {
	Symbol   string
	Kind     PositionKind
	Quantity Quantity
	Value    Money // remaining cost basis, broker sign convention
	Fees     Money
	Opened   time.Time

	// option fields, zero for stock lots
	Strike  decimal.Decimal
	Expiry  time.Time
	CallPut string
}

// newLot builds a lot from an opening transaction.
func newLot(t Transaction) PositionLot {
	lot := PositionLot{
		Symbol:   t.Symbol,
		Kind:     t.Kind(),
		Quantity: t.Quantity,
		Value:    t.Value,
		Fees:     t.Fees,
		Opened:   t.Time,
	}
	if lot.Kind.IsOption() {
		lot.Strike = t.Strike
		lot.Expiry = t.Expiry
		lot.CallPut = t.CallPut
	}
	return lot
}

// Key returns the instrument key the lot is queued under.
func (l *PositionLot) Key() InstrumentKey {
	if !l.Kind.IsOption() {
		return InstrumentKey{Symbol: l.Symbol, Kind: l.Kind}
	}
	return InstrumentKey{Symbol: l.Symbol, Kind: l.Kind, Strike: l.Strike.String(), Expiry: l.Expiry, CallPut: l.CallPut}
}

// Matches reports whether the lot tracks the given instrument. Stock lots
// match on symbol and kind alone; option lots additionally require exact
// strike, expiry and marker equality.
func (l *PositionLot) Matches(symbol string, kind PositionKind, strike decimal.Decimal, expiry time.Time, callPut string) bool {
	if l.Symbol != symbol || l.Kind != kind {
		return false
	}
	if kind == Stock {
		return true
	}
	return l.Strike.Equal(strike) && l.Expiry.Equal(expiry) && l.CallPut == callPut
}

// CanCloseWith reports whether a closing quantity runs against this lot:
// the two must have strictly opposite signs.
func (l *PositionLot) CanCloseWith(closing Quantity) bool {
	return l.Quantity.OppositeSign(closing)
}

// ConsumedValues is the basis/fees portion removed from a lot by Consume.
type ConsumedValues struct {
	Value Money
	Fees  Money
}

// Consume removes n units from the lot (n is unsigned, following the lot's own
// direction) and proportionally removes cost basis and fees, returning the
// removed portion. n must not exceed the lot's remaining absolute quantity.
func (l *PositionLot) Consume(n Quantity) (ConsumedValues, error) {
	remaining := l.Quantity.Abs()
	if n.GreaterThan(remaining) {
		return ConsumedValues{}, fmt.Errorf("cannot consume %s from lot with quantity %s", n, l.Quantity)
	}
	pct := n.Div(remaining).Decimal()

	consumed := ConsumedValues{
		Value: l.Value.Prorate(pct),
		Fees:  l.Fees.Prorate(pct),
	}

	if l.Quantity.IsPositive() {
		l.Quantity = l.Quantity.Sub(n)
	} else {
		l.Quantity = l.Quantity.Add(n)
	}
	l.Value = l.Value.Sub(consumed.Value)
	l.Fees = l.Fees.Sub(consumed.Fees)

	return consumed, nil
}

// AdjustForSplit rescales the lot in place for a share split with the given
// ratio (new shares per old share; a reverse split has ratio < 1). Rounding is
// toward zero magnitude, floor for long and ceil for short, so it never
// increases exposure. A lot whose quantity rounds to zero keeps its basis and
// fees for residual reporting. Option strikes are divided by the ratio.
func (l *PositionLot) AdjustForSplit(ratio decimal.Decimal) {
	if l.Quantity.IsZero() {
		return
	}

	target := l.Quantity.Decimal().Mul(ratio)
	var newQty decimal.Decimal
	if l.Quantity.IsPositive() {
		newQty = target.Floor()
	} else {
		newQty = target.Ceil()
	}

	if !newQty.IsZero() && !target.IsZero() {
		scale := newQty.Div(target)
		l.Value = l.Value.Prorate(scale)
		l.Fees = l.Fees.Prorate(scale)
	}
	l.Quantity = Q(newQty)

	if !l.Strike.IsZero() {
		l.Strike = l.Strike.Div(ratio)
	}
}

// IsEmpty reports whether the lot holds no quantity. Exactly-consumed lots are
// removed from their queue; zero-quantity lots produced by split rounding are
// kept on purpose.
func (l *PositionLot) IsEmpty() bool { return l.Quantity.IsZero() }

func (l *PositionLot) String() string {
	return fmt.Sprintf("%s %s opened %s, basis %s, fees %s",
		l.Quantity, l.Key(), l.Opened.Format("2006-01-02"), l.Value, l.Fees)
}

// lotQueue is the per-instrument FIFO queue. Closing pops from the head;
// opening pushes at the tail; a partially consumed lot is pushed back onto the
// head so it keeps priority over later opens. A ring buffer keeps both head
// operations O(1) instead of relying on slice-shifting conventions.
type lotQueue struct {
	lots []*PositionLot
	head int
	size int
}

func (q *lotQueue) len() int { return q.size }

func (q *lotQueue) grow() {
	buf := make([]*PositionLot, max(4, 2*len(q.lots)))
	for i := 0; i < q.size; i++ {
		buf[i] = q.lots[(q.head+i)%len(q.lots)]
	}
	q.lots, q.head = buf, 0
}

// pushTail appends a lot at the end of the queue.
func (q *lotQueue) pushTail(l *PositionLot) {
	if q.size == len(q.lots) {
		q.grow()
	}
	q.lots[(q.head+q.size)%len(q.lots)] = l
	q.size++
}

// pushHead reinserts a lot at the front of the queue.
func (q *lotQueue) pushHead(l *PositionLot) {
	if q.size == len(q.lots) {
		q.grow()
	}
	q.head = (q.head - 1 + len(q.lots)) % len(q.lots)
	q.lots[q.head] = l
	q.size++
}

// peekHead returns the front lot without removing it, or nil when empty.
func (q *lotQueue) peekHead() *PositionLot {
	if q.size == 0 {
		return nil
	}
	return q.lots[q.head]
}

// popHead removes and returns the front lot, or nil when empty.
func (q *lotQueue) popHead() *PositionLot {
	if q.size == 0 {
		return nil
	}
	l := q.lots[q.head]
	q.lots[q.head] = nil
	q.head = (q.head + 1) % len(q.lots)
	q.size--
	return l
}

// all returns the queued lots in FIFO order.
func (q *lotQueue) all() []*PositionLot {
	out := make([]*PositionLot, 0, q.size)
	for i := 0; i < q.size; i++ {
		out = append(out, q.lots[(q.head+i)%len(q.lots)])
	}
	return out
}
