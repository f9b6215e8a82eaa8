package taxlot

import (
	"log"
	"sort"
)

// PositionManager owns the per-instrument FIFO queues of open lots and the
// ledger of realized trades. AddPosition is the only mutator; transactions
// must be applied in chronological order (the caller sorts, see Transaction).
type PositionManager struct {
	openLots map[InstrumentKey]*lotQueue
	trades   []RealizedTrade

	// pendingRename holds the lot staged by the closing leg of a symbol
	// change or stock merger, waiting for the opening leg to reuse its basis.
	pendingRename *PositionLot

	// Splits resolves reverse-split ratios that the broker description does
	// not spell out. Optional.
	Splits SplitTable
}

// NewPositionManager creates an empty position manager.
func NewPositionManager() *PositionManager {
	return &PositionManager{
		openLots: make(map[InstrumentKey]*lotQueue),
		Splits:   make(SplitTable),
	}
}

// RealizedTrades returns the ledger of realized trades, in realization order.
func (m *PositionManager) RealizedTrades() []RealizedTrade { return m.trades }

// OpenLots returns all still-open lots sorted by opening time, for
// diagnostics and carry-forward reporting.
func (m *PositionManager) OpenLots() []PositionLot {
	var all []PositionLot
	for _, q := range m.openLots {
		for _, l := range q.all() {
			all = append(all, *l)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Opened.Before(all[j].Opened) })
	return all
}

// AddPosition applies one position-affecting transaction. Dispatch priority:
// symbol change / stock merger (two-leg handshake), reverse split (lot
// mutation, never realizes), ordinary close (strict FIFO), ordinary open.
func (m *PositionManager) AddPosition(t Transaction) error {
	switch t.Subcode {
	case SymbolChange, StockMerger:
		m.handleRename(t)
		return nil
	case ReverseSplit:
		// An OCC option token in the description means this row swaps option
		// legs: it trades like any other close or open.
		if !occOptionToken.MatchString(t.Description) {
			return m.handleReverseSplit(t)
		}
		log.Printf("reverse split row for %s trades as option leg: %q", t.Symbol, t.Description)
	}

	if t.isClosing() {
		return m.closePosition(t)
	}
	m.openPosition(t)
	return nil
}

// openPosition appends a new lot at the tail of the instrument's queue.
func (m *PositionManager) openPosition(t Transaction) {
	log.Printf("%s opening %s %s", t.Time.Format("2006-01-02 15:04:05"), t.Quantity, t.Key())
	lot := newLot(t)
	m.queue(t.Key()).pushTail(&lot)
}

func (m *PositionManager) queue(key InstrumentKey) *lotQueue {
	q, ok := m.openLots[key]
	if !ok {
		q = &lotQueue{}
		m.openLots[key] = q
	}
	return q
}

// handleRename implements the two-leg protocol for symbol changes and stock
// mergers. Brokers report a rename as a fictitious sale+purchase pair; for tax
// purposes it is a continuation, so the closing leg stages the lot's basis,
// fees and opening date without realizing a gain, and the opening leg recreates
// the lot under the new key from the staged values instead of the
// transaction's own (often zero) reported value.
func (m *PositionManager) handleRename(t Transaction) {
	if t.isClosing() {
		key := t.Key()
		q, ok := m.openLots[key]
		if !ok || q.len() == 0 {
			log.Printf("%s close leg for %s found no open position to mutate", t.Subcode, key)
			return
		}
		staged := q.popHead()
		if q.len() == 0 {
			delete(m.openLots, key)
		}
		m.pendingRename = staged
		log.Printf("%s: staged lot %s", t.Subcode, staged)
		return
	}

	staged := m.pendingRename
	if staged == nil {
		log.Printf("%s open leg for %s has no staged lot to transfer basis from, using reported values", t.Subcode, t.Symbol)
		m.openPosition(t)
		return
	}
	m.pendingRename = nil

	lot := newLot(t)
	lot.Value = staged.Value
	lot.Fees = staged.Fees
	lot.Opened = staged.Opened
	m.queue(t.Key()).pushTail(&lot)
	log.Printf("%s: lot continues as %s (basis preserved from %s)", t.Subcode, &lot, staged.Symbol)
}

// handleReverseSplit resolves the split ratio and rescales every open lot of
// the affected symbol in place. It never emits a RealizedTrade. An
// unresolvable ratio is a configuration error, not a silent mis-tracking.
func (m *PositionManager) handleReverseSplit(t Transaction) error {
	date := t.Time.Format("2006-01-02")
	ratio, ok := parseSplitRatio(t.Description)
	if !ok {
		ratio, ok = m.Splits.Lookup(t.Symbol, date)
	}
	if !ok {
		return &SplitRatioError{Symbol: t.Symbol, Date: date, Description: t.Description}
	}

	count := 0
	for key, q := range m.openLots {
		if key.Symbol != t.Symbol {
			continue
		}
		for _, lot := range q.all() {
			lot.AdjustForSplit(ratio)
			count++
		}
	}
	log.Printf("applied split ratio %s to %d open %s lots", ratio, count, t.Symbol)
	return nil
}

// closePosition matches the closing transaction against the head of the
// instrument's queue, strictly first-in-first-out. The whole match is staged
// against copies and committed only when the closing quantity is fully
// satisfied, so a failed close leaves the queues unmodified.
func (m *PositionManager) closePosition(t Transaction) error {
	key := t.Key()
	q, ok := m.openLots[key]
	if !ok || q.len() == 0 {
		return &InsufficientPositionError{Transaction: t, Remaining: t.Quantity.Abs(), OpenLots: m.OpenLots()}
	}

	// Stage: copy the queue's lots so rollback is free.
	staged := &lotQueue{}
	for _, l := range q.all() {
		lot := *l
		staged.pushTail(&lot)
	}

	remaining := t.Quantity.Abs()
	var matched []RealizedTrade
	var residuals []*PositionLot

	for !remaining.IsZero() && staged.len() > 0 {
		head := staged.peekHead()

		// Zero-quantity residual lots (split rounding) hold basis only and
		// cannot satisfy any close; set them aside.
		if head.IsEmpty() {
			residuals = append(residuals, staged.popHead())
			continue
		}

		// Assignment and expiration are the broker's authoritative removal
		// and force-match regardless of sign. Everything else requires the
		// head lot to run opposite: a same-signed head stops the match (no
		// skipping ahead) and surfaces the data error below.
		if t.Subcode != Expiration && t.Subcode != Assignment && !head.CanCloseWith(t.Quantity) {
			break
		}
		staged.popHead()

		closable := remaining.Min(head.Quantity.Abs())
		openingWasLong := head.Quantity.IsPositive()

		consumed, err := head.Consume(closable)
		if err != nil {
			return err
		}

		trade := newRealizedTrade(head, t, closable, consumed, openingWasLong)
		matched = append(matched, trade)
		log.Printf("%s - %s closing %s %s",
			trade.Opened.Format("2006-01-02 15:04:05"),
			trade.Closed.Format("2006-01-02 15:04:05"),
			trade.Quantity, trade.Symbol)

		if !head.IsEmpty() {
			// The remainder keeps FIFO priority over later opens.
			staged.pushHead(head)
		}

		remaining = remaining.Sub(closable)
	}

	if !remaining.IsZero() {
		return &InsufficientPositionError{Transaction: t, Remaining: remaining, OpenLots: m.OpenLots()}
	}

	// Commit. Residual zero-quantity lots stay queued for reporting.
	for _, l := range residuals {
		staged.pushTail(l)
	}
	if staged.len() == 0 {
		delete(m.openLots, key)
	} else {
		m.openLots[key] = staged
	}
	m.trades = append(m.trades, matched...)
	return nil
}
