package taxlot

import (
	"testing"
	"time"
)

// at is a helper to create a transaction timestamp from consts.
func at(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

// dm is a helper to create a dual-currency amount with a fixed 0.5 rate, so
// expected EUR values stay exact in assertions.
func dm(usd float64) Money { return M(usd, usd/2) }

// wantMoney fails the test when got differs from want.
func wantMoney(t *testing.T, name string, got, want Money) {
	t.Helper()
	if !got.Equal(want) {
		t.Errorf("%s = %s, want %s", name, got, want)
	}
}

// buyStock builds a Buy to Open row: amount is the unsigned cost in USD.
func buyStock(tm time.Time, symbol string, qty int, amount float64) Transaction {
	return Transaction{
		Time: tm, Code: CodeTrade, Subcode: BuyToOpen, Symbol: symbol,
		OpenClose: Open, Quantity: Q(qty), Value: dm(-amount),
	}
}

// sellStock builds a Sell to Close row: amount is the unsigned proceeds in USD.
func sellStock(tm time.Time, symbol string, qty int, amount float64) Transaction {
	return Transaction{
		Time: tm, Code: CodeTrade, Subcode: SellToClose, Symbol: symbol,
		OpenClose: Close, Quantity: Q(-qty), Value: dm(amount),
	}
}

// option builds an option row for the given subcode, with the engine's signed
// quantity convention and a January 2024 expiry.
func option(tm time.Time, subcode Subcode, symbol string, qty int, strike float64, callPut string, amount float64) Transaction {
	return Transaction{
		Time: tm, Code: CodeTrade, Subcode: subcode, Symbol: symbol,
		Quantity: Q(qty), Value: dm(amount),
		Strike: newDecimal(strike), Expiry: at(2024, time.January, 19), CallPut: callPut,
	}
}

// cash builds a money-movement row.
func cash(tm time.Time, subcode Subcode, amount float64, description string) Transaction {
	return Transaction{
		Time: tm, Code: CodeMoneyMovement, Subcode: subcode,
		Value: dm(amount), Description: description,
	}
}
