package taxlot

import (
	"fmt"
	"time"
)

// PositionKind distinguishes the fungible unit being tracked.
type PositionKind int

const (
	// Stock is a share position (also used for ETFs and crypto pairs).
	Stock PositionKind = iota
	// Call is a call option position.
	Call
	// Put is a put option position.
	Put
)

func (k PositionKind) String() string {
	switch k {
	case Stock:
		return "stock"
	case Call:
		return "call"
	case Put:
		return "put"
	default:
		return "unknown"
	}
}

// ParsePositionKind parses a string into a PositionKind.
func ParsePositionKind(s string) (PositionKind, error) {
	switch s {
	case "stock":
		return Stock, nil
	case "call":
		return Call, nil
	case "put":
		return Put, nil
	default:
		return 0, fmt.Errorf("unknown position kind: %q", s)
	}
}

// IsOption reports whether the kind is a call or a put.
func (k PositionKind) IsOption() bool { return k == Call || k == Put }

// InstrumentKey identifies one fungible tradable unit. Two transactions refer
// to the same instrument iff all set fields are equal; stock keys leave the
// option fields zero. The struct is comparable and serves as the map key for
// the per-instrument FIFO queues.
type InstrumentKey struct {
	Symbol  string
	Kind    PositionKind
	Strike  string // canonical decimal string, "" for stock
	Expiry  time.Time
	CallPut string // "C" or "P", "" for stock
}

func (k InstrumentKey) String() string {
	if !k.Kind.IsOption() {
		return k.Symbol
	}
	return fmt.Sprintf("%s %s %s %s", k.Symbol, k.Expiry.Format("2006-01-02"), k.CallPut, k.Strike)
}
