package taxlot

import (
	"fmt"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// newDecimal is a convenient factory for decimal.Decimal
func newDecimal[T float32 | float64 | int | int32 | int64 | decimal.Decimal](value T) decimal.Decimal {
	switch v := any(value).(type) {
	case decimal.Decimal:
		return v
	case float32:
		return decimal.NewFromFloat32(v)
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int32:
		return decimal.NewFromInt32(v)
	case int64:
		return decimal.NewFromInt(v)
	default:
		panic("unsupported type")
	}
}

// Money is a dual-currency amount. The broker reports every value in USD; the
// filing needs the same value in EUR converted on the transaction date. Both
// components always travel together, and once constructed a Money is never
// re-converted.
type Money struct {
	usd decimal.Decimal
	eur decimal.Decimal
}

// M creates a Money from a USD and a EUR component.
func M[T float32 | float64 | int | int32 | int64 | decimal.Decimal](usd, eur T) Money {
	return Money{usd: newDecimal(usd), eur: newDecimal(eur)}
}

// USD returns the USD component.
func (m Money) USD() decimal.Decimal { return m.usd }

// EUR returns the EUR component.
func (m Money) EUR() decimal.Decimal { return m.eur }

// binary operators, component-wise.
func (m Money) Add(n Money) Money { return Money{usd: m.usd.Add(n.usd), eur: m.eur.Add(n.eur)} }
func (m Money) Sub(n Money) Money { return Money{usd: m.usd.Sub(n.usd), eur: m.eur.Sub(n.eur)} }
func (m Money) Neg() Money        { return Money{usd: m.usd.Neg(), eur: m.eur.Neg()} }
func (m Money) Abs() Money        { return Money{usd: m.usd.Abs(), eur: m.eur.Abs()} }

// Prorate returns the given fraction of m, component-wise. This is the single
// primitive behind partial lot consumption and closing-amount proration.
func (m Money) Prorate(pct decimal.Decimal) Money {
	return Money{usd: m.usd.Mul(pct), eur: m.eur.Mul(pct)}
}

func (m Money) IsZero() bool       { return m.usd.IsZero() && m.eur.IsZero() }
func (m Money) Equal(n Money) bool { return m.usd.Equal(n.usd) && m.eur.Equal(n.eur) }

// formatAmount renders one component with its currency symbol and fraction digits.
func formatAmount(value decimal.Decimal, code string) string {
	cur := *money.New(0, code).Currency()
	dec := value.Round(int32(cur.Fraction)).Shift(int32(cur.Fraction))
	return cur.Formatter().Format(dec.IntPart())
}

// String renders both components rounded to the currency's fraction. Exact
// values are kept internally; rounding happens only at this rendering boundary.
func (m Money) String() string {
	return fmt.Sprintf("%s (%s)", formatAmount(m.eur, money.EUR), formatAmount(m.usd, money.USD))
}

// SignedString returns the string representation with an explicit sign.
// 0 is represented as a "-"
func (m Money) SignedString() string {
	if m.IsZero() {
		return "-"
	}
	if m.eur.IsPositive() {
		return "+" + m.String()
	}
	return m.String()
}
