// Package renderer turns the engine's outputs into markdown reports.
package renderer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/etnz/taxlot"
)

// ReportMarkdown renders the per-year filing buckets to a markdown string.
func ReportMarkdown(years map[int]*taxlot.Values) string {
	var b strings.Builder
	fmt.Fprint(&b, "# Tax Report\n\n")

	keys := make([]int, 0, len(years))
	for y := range years {
		keys = append(keys, y)
	}
	sort.Ints(keys)

	for _, year := range keys {
		fmt.Fprintf(&b, "## Year %d\n\n", year)
		YearMarkdown(&b, years[year])
		fmt.Fprintln(&b)
	}
	return b.String()
}

// YearMarkdown renders one year's buckets as markdown tables.
func YearMarkdown(b *strings.Builder, v *taxlot.Values) {
	fmt.Fprint(b, "### Cash movements\n\n")
	fmt.Fprintln(b, "| Bucket | EUR (USD) |")
	fmt.Fprintln(b, "|:---|---:|")
	rows := []struct {
		label string
		value taxlot.Money
	}{
		{"Deposits", v.Deposit},
		{"Withdrawals", v.Withdrawal},
		{"Transfers", v.Transfer},
		{"Balance adjustments", v.BalanceAdjustment},
		{"Fees", v.Fee},
		{"Credit interest", v.CreditInterest},
		{"Debit interest", v.DebitInterest},
		{"Dividends", v.Dividend},
		{"Securities lending income", v.SecuritiesLendingIncome},
	}
	for _, r := range rows {
		fmt.Fprintf(b, "| %s | %s |\n", r.label, r.value.SignedString())
	}

	fmt.Fprint(b, "\n### Stocks and funds\n\n")
	fmt.Fprintln(b, "| Bucket | EUR (USD) |")
	fmt.Fprintln(b, "|:---|---:|")
	rows = []struct {
		label string
		value taxlot.Money
	}{
		{"Combined stock and option result", v.StockAndOptionsSum},
		{"Equity ETF profits (gross)", v.EquityETFGrossProfits},
		{"Equity ETF profits (taxable)", v.EquityETFProfits},
		{"Other stock and bond profits", v.OtherStockAndBondProfits},
		{"Stock and ETF losses", v.StockAndETFLosses},
		{"Total taxable stock profits", v.TotalTaxableStockAndETFProfits},
		{"Stock trading fees", v.StockFees},
	}
	for _, r := range rows {
		fmt.Fprintf(b, "| %s | %s |\n", r.label, r.value.SignedString())
	}

	fmt.Fprint(b, "\n### Options\n\n")
	fmt.Fprintln(b, "| Bucket | EUR (USD) |")
	fmt.Fprintln(b, "|:---|---:|")
	rows = []struct {
		label string
		value taxlot.Money
	}{
		{"Option result", v.OptionSum},
		{"Long option profits", v.LongOptionProfits},
		{"Long option losses", v.LongOptionLosses},
		{"Long option total losses (worthless expiry)", v.LongOptionTotalLosses},
		{"Short option profits", v.ShortOptionProfits},
		{"Short option losses", v.ShortOptionLosses},
		{"Gross option differential (netting cap)", v.GrossOptionDifferential},
		{"Option trading fees", v.OtherFees},
	}
	for _, r := range rows {
		fmt.Fprintf(b, "| %s | %s |\n", r.label, r.value.SignedString())
	}
}

// LotsMarkdown renders the still-open lots, the carry-forward into the next
// tax year.
func LotsMarkdown(lots []taxlot.PositionLot) string {
	var b strings.Builder
	fmt.Fprint(&b, "# Open Positions\n\n")
	if len(lots) == 0 {
		fmt.Fprintln(&b, "No open positions.")
		return b.String()
	}
	fmt.Fprintln(&b, "| Instrument | Quantity | Opened | Cost Basis | Fees |")
	fmt.Fprintln(&b, "|:---|---:|:---|---:|---:|")
	for _, lot := range lots {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			lot.Key(), lot.Quantity, lot.Opened.Format("2006-01-02"),
			lot.Value.SignedString(), lot.Fees.SignedString())
	}
	return b.String()
}

// TradesMarkdown renders the realized-trade ledger.
func TradesMarkdown(trades []taxlot.RealizedTrade) string {
	var b strings.Builder
	fmt.Fprint(&b, "# Realized Trades\n\n")
	if len(trades) == 0 {
		fmt.Fprintln(&b, "No realized trades.")
		return b.String()
	}
	fmt.Fprintln(&b, "| Symbol | Kind | Quantity | Opened | Closed | Profit | Fees | Worthless |")
	fmt.Fprintln(&b, "|:---|:---|---:|:---|:---|---:|---:|:---|")
	for _, t := range trades {
		worthless := ""
		if t.WorthlessExpiry {
			worthless = "yes"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s | %s |\n",
			t.Symbol, t.Kind, t.Quantity,
			t.Opened.Format("2006-01-02"), t.Closed.Format("2006-01-02"),
			t.Profit.SignedString(), t.Fees.SignedString(), worthless)
	}
	return b.String()
}
