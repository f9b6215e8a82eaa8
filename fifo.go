package taxlot

import (
	"time"

	"github.com/shopspring/decimal"
)

// RealizedTrade is the output of matching a closing transaction against one
// lot (or lot remainder). It is created exactly once per lot-slice
// consumption, appended to the ledger and never mutated afterward.
type RealizedTrade struct {
	Symbol string
	Kind   PositionKind
	Opened time.Time
	Closed time.Time

	// Quantity is signed with the direction of the ORIGINAL lot, not of the
	// closing transaction: a fully closed long lot always yields a positive
	// quantity.
	Quantity Quantity

	Profit Money // consumed opening basis + prorated closing amount
	Fees   Money

	// WorthlessExpiry marks a long option closed by expiration: the whole
	// premium is a total loss, which the netting rules treat separately.
	WorthlessExpiry bool

	// option fields, zero for stock trades
	Strike decimal.Decimal
	Expiry time.Time
}

// newRealizedTrade builds the trade record for one FIFO match. The closing
// transaction's total amount and fees are prorated by the consumed share of
// its quantity; the opening side arrives pre-prorated (and sign-correct) in
// consumed. openingWasLong is captured by the caller before Consume mutates
// the lot.
func newRealizedTrade(lot *PositionLot, closing Transaction, consumedQty Quantity, consumed ConsumedValues, openingWasLong bool) RealizedTrade {
	var pct decimal.Decimal
	if abs := closing.Quantity.Abs(); !abs.IsZero() {
		pct = consumedQty.Div(abs).Decimal()
	}
	closingValue := closing.Value.Prorate(pct)
	closingFees := closing.Fees.Prorate(pct)

	quantity := consumedQty
	if !openingWasLong {
		quantity = consumedQty.Neg()
	}

	trade := RealizedTrade{
		Symbol:          closing.Symbol,
		Kind:            closing.Kind(),
		Opened:          lot.Opened,
		Closed:          closing.Time,
		Quantity:        quantity,
		Profit:          consumed.Value.Add(closingValue),
		Fees:            consumed.Fees.Add(closingFees),
		WorthlessExpiry: closing.Subcode == Expiration && openingWasLong,
	}
	if trade.Kind.IsOption() {
		trade.Strike = closing.Strike
		trade.Expiry = closing.Expiry
	}
	return trade
}

// Year returns the tax year the trade is realized in (the closing year).
func (t RealizedTrade) Year() int { return t.Closed.Year() }
