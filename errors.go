package taxlot

import (
	"fmt"
	"strings"
)

// InsufficientPositionError reports a closing transaction that FIFO matching
// could not satisfy: either no open lot exists for the instrument, or the
// remaining head lot is sign-incompatible, or the queue ran out of quantity.
// The failed transaction leaves the queues unmodified.
type InsufficientPositionError struct {
	Transaction Transaction
	Remaining   Quantity // unmatched closing quantity
	OpenLots    []PositionLot
}

func (e *InsufficientPositionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "cannot close %s %s on %s: %s unmatched",
		e.Transaction.Quantity, e.Transaction.Key(),
		e.Transaction.Time.Format("2006-01-02"), e.Remaining)
	if len(e.OpenLots) == 0 {
		b.WriteString(", no open lots")
		return b.String()
	}
	b.WriteString(", open lots:")
	for _, lot := range e.OpenLots {
		fmt.Fprintf(&b, " [%s %s opened %s]", lot.Quantity, lot.Key(), lot.Opened.Format("2006-01-02"))
	}
	return b.String()
}

// SplitRatioError reports a reverse split whose ratio could not be parsed from
// the description and has no configured fallback. The message names the
// symbol and date so an operator can add a configuration entry.
type SplitRatioError struct {
	Symbol      string
	Date        string
	Description string
}

func (e *SplitRatioError) Error() string {
	return fmt.Sprintf("unresolved reverse split for %s on %s (description %q): "+
		"add a [[splits]] entry with symbol=%q date=%q ratio=<new/old> to the configuration file",
		e.Symbol, e.Date, e.Description, e.Symbol, e.Date)
}

// UnknownSubcodeError reports a transaction subcode the engine does not
// handle. Silently ignoring a money movement would corrupt the yearly totals,
// so this is fatal.
type UnknownSubcodeError struct {
	Subcode     Subcode
	Description string
}

func (e *UnknownSubcodeError) Error() string {
	return fmt.Sprintf("unknown transaction subcode %q (description %q): cannot be ignored without corrupting totals",
		e.Subcode, e.Description)
}
