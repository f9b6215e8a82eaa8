package taxlot

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionCode is the broker's coarse transaction category.
type TransactionCode string

const (
	CodeTrade          TransactionCode = "Trade"
	CodeReceiveDeliver TransactionCode = "Receive Deliver"
	CodeMoneyMovement  TransactionCode = "Money Movement"
)

// Subcode is the broker's fine-grained transaction type. Position-affecting
// subcodes drive the PositionManager dispatch; money-movement subcodes are
// bucketed per year by the Engine.
type Subcode string

const (
	BuyToOpen    Subcode = "Buy to Open"
	SellToOpen   Subcode = "Sell to Open"
	BuyToClose   Subcode = "Buy to Close"
	SellToClose  Subcode = "Sell to Close"
	Assignment   Subcode = "Assignment"
	Expiration   Subcode = "Expiration"
	ReverseSplit Subcode = "Reverse Split"
	SymbolChange Subcode = "Symbol Change"
	StockMerger  Subcode = "Stock Merger"

	Transfer           Subcode = "Transfer"
	Withdrawal         Subcode = "Withdrawal"
	BalanceAdjustment  Subcode = "Balance Adjustment"
	Fee                Subcode = "Fee"
	Deposit            Subcode = "Deposit"
	CreditInterest     Subcode = "Credit Interest"
	DebitInterest      Subcode = "Debit Interest"
	Dividend           Subcode = "Dividend"
	StockLendingIncome Subcode = "Fully Paid Stock Lending Income"
)

// closingSubcodes are the subcodes that always close against open lots.
var closingSubcodes = map[Subcode]bool{
	BuyToClose:  true,
	SellToClose: true,
	Assignment:  true,
	Expiration:  true,
}

// OpenClose is the broker's explicit open/close marker, when present.
type OpenClose string

const (
	Open  OpenClose = "Open"
	Close OpenClose = "Close"
)

// Transaction is one validated entry of the broker's transaction history.
// Callers (the CSV importer, tests) build the sequence and sort it
// chronologically before feeding it to the engine; ordering is a precondition
// of FIFO matching, not enforced here.
type Transaction struct {
	Time      time.Time
	Code      TransactionCode
	Subcode   Subcode
	Symbol    string
	OpenClose OpenClose
	Quantity  Quantity // signed: + long direction, - short direction
	Value     Money    // total amount, broker sign convention (debit negative)
	Fees      Money

	// option fields, zero for stock transactions
	Strike  decimal.Decimal
	Expiry  time.Time
	CallPut string // "C" or "P"

	// Description is the broker's free text. It disambiguates overloaded
	// subcodes: reverse-split ratios, option legs on split rows, and the
	// cash movements the broker mislabels.
	Description string
}

// Kind derives the position kind from the option marker.
func (t Transaction) Kind() PositionKind {
	switch t.CallPut {
	case "C":
		return Call
	case "P":
		return Put
	default:
		return Stock
	}
}

// Key returns the instrument grouping key for this transaction.
func (t Transaction) Key() InstrumentKey {
	kind := t.Kind()
	if kind == Stock {
		return InstrumentKey{Symbol: t.Symbol, Kind: Stock}
	}
	return InstrumentKey{
		Symbol:  t.Symbol,
		Kind:    kind,
		Strike:  t.Strike.String(),
		Expiry:  t.Expiry,
		CallPut: t.CallPut,
	}
}

// IsOption reports whether the transaction concerns an option contract.
func (t Transaction) IsOption() bool { return t.Kind().IsOption() }

// isClosing reports whether the transaction closes an existing position,
// either by subcode or by the explicit Open/Close marker.
func (t Transaction) isClosing() bool {
	return closingSubcodes[t.Subcode] || t.OpenClose == Close
}

// Year returns the tax year the transaction belongs to.
func (t Transaction) Year() int { return t.Time.Year() }
