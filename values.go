package taxlot

// Values holds every per-year total the report renders: the money-movement
// buckets accumulated while replaying the history, and the trade buckets
// computed from that year's realized trades. Each year gets its own freshly
// initialized instance.
type Values struct {
	// money movements
	Withdrawal              Money
	Transfer                Money
	BalanceAdjustment       Money
	Fee                     Money
	Deposit                 Money
	CreditInterest          Money
	DebitInterest           Money
	Dividend                Money
	SecuritiesLendingIncome Money

	// realized trade buckets
	StockAndOptionsSum             Money
	EquityETFGrossProfits          Money
	EquityETFProfits               Money
	OtherStockAndBondProfits       Money
	StockAndETFLosses              Money
	TotalTaxableStockAndETFProfits Money
	OptionSum                      Money
	LongOptionProfits              Money
	LongOptionLosses               Money
	LongOptionTotalLosses          Money
	ShortOptionProfits             Money
	ShortOptionLosses              Money
	GrossOptionDifferential        Money
	StockFees                      Money
	OtherFees                      Money
}
