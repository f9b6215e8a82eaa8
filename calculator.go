package taxlot

import "github.com/shopspring/decimal"

// This file holds the pure reductions that turn the realized-trade ledger
// into the named aggregates a filing needs. None of them mutate their input.

// SumProfits adds up the profit of all trades.
func SumProfits(trades []RealizedTrade) Money {
	var sum Money
	for _, t := range trades {
		sum = sum.Add(t.Profit)
	}
	return sum
}

// SumFees adds up the fees of all trades.
func SumFees(trades []RealizedTrade) Money {
	var sum Money
	for _, t := range trades {
		sum = sum.Add(t.Fees)
	}
	return sum
}

// filter returns the trades satisfying the predicate.
func filter(trades []RealizedTrade, keep func(RealizedTrade) bool) []RealizedTrade {
	var out []RealizedTrade
	for _, t := range trades {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

// Filter predicates. Profitability is judged on the EUR side, the currency
// the filing is computed in.

func OptionTrades(trades []RealizedTrade) []RealizedTrade {
	return filter(trades, func(t RealizedTrade) bool { return t.Kind.IsOption() })
}

func StockTrades(trades []RealizedTrade) []RealizedTrade {
	return filter(trades, func(t RealizedTrade) bool { return t.Kind == Stock })
}

func ProfitableTrades(trades []RealizedTrade) []RealizedTrade {
	return filter(trades, func(t RealizedTrade) bool { return t.Profit.EUR().IsPositive() })
}

func LossTrades(trades []RealizedTrade) []RealizedTrade {
	return filter(trades, func(t RealizedTrade) bool { return !t.Profit.EUR().IsPositive() })
}

func LongTrades(trades []RealizedTrade) []RealizedTrade {
	return filter(trades, func(t RealizedTrade) bool { return t.Quantity.IsPositive() })
}

func ShortTrades(trades []RealizedTrade) []RealizedTrade {
	return filter(trades, func(t RealizedTrade) bool { return t.Quantity.IsNegative() })
}

func WorthlessExpiryTrades(trades []RealizedTrade) []RealizedTrade {
	return filter(trades, func(t RealizedTrade) bool { return t.WorthlessExpiry })
}

func NonWorthlessExpiryTrades(trades []RealizedTrade) []RealizedTrade {
	return filter(trades, func(t RealizedTrade) bool { return !t.WorthlessExpiry })
}

// CombinedSum is the profit over all stock and option trades.
func CombinedSum(trades []RealizedTrade) Money { return SumProfits(trades) }

// OptionSum is the profit over all option trades.
func OptionSum(trades []RealizedTrade) Money { return SumProfits(OptionTrades(trades)) }

// LongOptionProfits sums winning long option trades, excluding worthless
// expiries (those never win).
func LongOptionProfits(trades []RealizedTrade) Money {
	return SumProfits(LongTrades(ProfitableTrades(NonWorthlessExpiryTrades(OptionTrades(trades)))))
}

// LongOptionLosses sums losing long option trades closed by an actual trade.
func LongOptionLosses(trades []RealizedTrade) Money {
	return SumProfits(LongTrades(LossTrades(NonWorthlessExpiryTrades(OptionTrades(trades)))))
}

// LongOptionTotalLosses sums long options that expired worthless: the whole
// premium is lost, a bucket the netting rules cap separately.
func LongOptionTotalLosses(trades []RealizedTrade) Money {
	return SumProfits(LongTrades(LossTrades(WorthlessExpiryTrades(OptionTrades(trades)))))
}

// ShortOptionProfits sums winning short option trades.
func ShortOptionProfits(trades []RealizedTrade) Money {
	return SumProfits(ShortTrades(ProfitableTrades(OptionTrades(trades))))
}

// ShortOptionLosses sums losing short option trades.
func ShortOptionLosses(trades []RealizedTrade) Money {
	return SumProfits(ShortTrades(LossTrades(OptionTrades(trades))))
}

// OptionDifferential is the offsettable amount under the netting cap: the
// lesser of |sum of losing option trades| and |sum of winning option trades|,
// per currency.
func OptionDifferential(trades []RealizedTrade) Money {
	options := OptionTrades(trades)
	if len(options) == 0 {
		return Money{}
	}
	losses := SumProfits(LossTrades(options)).Abs()
	profits := SumProfits(ProfitableTrades(options)).Abs()
	return M(
		decimal.Min(losses.USD(), profits.USD()),
		decimal.Min(losses.EUR(), profits.EUR()),
	)
}

// StockLoss sums losing stock trades net of their fees.
func StockLoss(trades []RealizedTrade) Money {
	var sum Money
	for _, t := range LossTrades(StockTrades(trades)) {
		sum = sum.Add(t.Profit.Sub(t.Fees))
	}
	return sum
}

// StockFees sums the fees of stock trades.
func StockFees(trades []RealizedTrade) Money { return SumFees(StockTrades(trades)) }

// OtherFees sums the fees of option trades.
func OtherFees(trades []RealizedTrade) Money { return SumFees(OptionTrades(trades)) }

// FeeSum sums all trade fees.
func FeeSum(trades []RealizedTrade) Money { return SumFees(trades) }

// GrossEquityETFProfits sums the gross profit of winning equity-ETF trades,
// before the partial exemption.
func GrossEquityETFProfits(trades []RealizedTrade, classifier *AssetClassifier) Money {
	var sum Money
	for _, t := range ProfitableTrades(StockTrades(trades)) {
		if classifier.Classify(t.Symbol, t.Kind) == EquityETF {
			sum = sum.Add(t.Profit)
		}
	}
	return sum
}

// EquityETFProfits sums the taxable profit of winning equity-ETF trades: the
// net profit shrunk by the exemption percentage. The exemption applies to the
// taxable, not the gross, amount.
func EquityETFProfits(trades []RealizedTrade, classifier *AssetClassifier) Money {
	var sum Money
	for _, t := range ProfitableTrades(StockTrades(trades)) {
		category := classifier.Classify(t.Symbol, t.Kind)
		if category != EquityETF {
			continue
		}
		sum = sum.Add(Taxable(t.Profit.Sub(t.Fees), classifier.ExemptionPercentage(category)))
	}
	return sum
}

// OtherStockAndBondProfits sums the profit net of fees of winning stock
// trades outside the equity-ETF category.
func OtherStockAndBondProfits(trades []RealizedTrade, classifier *AssetClassifier) Money {
	var sum Money
	for _, t := range ProfitableTrades(StockTrades(trades)) {
		if classifier.Classify(t.Symbol, t.Kind) != EquityETF {
			sum = sum.Add(t.Profit.Sub(t.Fees))
		}
	}
	return sum
}

// Taxable shrinks a gross amount by an exemption percentage:
// taxable = gross × (1 − pct/100). It applies to losses too.
func Taxable(gross Money, exemptionPct int) Money {
	pct := decimal.NewFromInt(100 - int64(exemptionPct)).Div(decimal.NewFromInt(100))
	return gross.Prorate(pct)
}
