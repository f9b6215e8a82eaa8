package taxlot

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Engine replays a full broker history: money movements accumulate into
// per-year Values, trades and receive-deliver events flow through the
// PositionManager, and Run folds the realized trades of each year into the
// filing buckets. One Engine per account; independent runs never share state.
type Engine struct {
	Positions  *PositionManager
	Classifier *AssetClassifier

	years map[int]*Values
}

// NewEngine creates an engine with a fresh position manager and the built-in
// classifier rule table.
func NewEngine() *Engine {
	return &Engine{
		Positions:  NewPositionManager(),
		Classifier: NewAssetClassifier(),
		years:      make(map[int]*Values),
	}
}

// year returns the Values accumulator for a year, creating it on first use.
func (e *Engine) year(y int) *Values {
	v, ok := e.years[y]
	if !ok {
		v = &Values{}
		e.years[y] = v
	}
	return v
}

// interestPeriod matches the broker's margin-interest withdrawal description.
var interestPeriod = regexp.MustCompile(`.*FROM \d{2}/\d{2} THRU \d{2}/\d{2} @.*`)

// moneyMovement buckets one cash transaction into the year's totals. The
// broker overloads some subcodes, so the description disambiguates: wired
// deposits arrive as withdrawals, margin interest hides under withdrawals,
// and credit interest sometimes arrives as a deposit.
func (e *Engine) moneyMovement(t Transaction) error {
	v := e.year(t.Year())
	m := t.Value

	switch t.Subcode {
	case Transfer:
		v.Transfer = v.Transfer.Add(m)
	case Withdrawal:
		switch {
		case strings.Contains(t.Description, "Wire Funds Received"):
			v.Deposit = v.Deposit.Add(m)
		case interestPeriod.MatchString(t.Description):
			v.DebitInterest = v.DebitInterest.Add(m)
		default:
			v.Withdrawal = v.Withdrawal.Add(m)
		}
	case BalanceAdjustment:
		v.BalanceAdjustment = v.BalanceAdjustment.Add(m)
	case Fee:
		v.Fee = v.Fee.Add(m)
	case Deposit:
		if t.Description == "INTEREST ON CREDIT BALANCE" {
			v.CreditInterest = v.CreditInterest.Add(m)
		} else {
			v.Deposit = v.Deposit.Add(m)
		}
	case CreditInterest:
		v.CreditInterest = v.CreditInterest.Add(m)
	case DebitInterest:
		v.DebitInterest = v.DebitInterest.Add(m)
	case Dividend:
		v.Dividend = v.Dividend.Add(m)
	case StockLendingIncome:
		v.SecuritiesLendingIncome = v.SecuritiesLendingIncome.Add(m)
	default:
		return &UnknownSubcodeError{Subcode: t.Subcode, Description: t.Description}
	}
	return nil
}

// Process replays the transactions. The sequence must already be in
// chronological order; FIFO correctness depends on it.
func (e *Engine) Process(transactions []Transaction) error {
	for _, t := range transactions {
		var err error
		switch t.Code {
		case CodeMoneyMovement:
			err = e.moneyMovement(t)
		case CodeTrade, CodeReceiveDeliver:
			err = e.Positions.AddPosition(t)
		default:
			err = &UnknownSubcodeError{Subcode: t.Subcode, Description: fmt.Sprintf("transaction code %q: %s", t.Code, t.Description)}
		}
		if err != nil {
			return fmt.Errorf("processing transaction of %s: %w", t.Time.Format("2006-01-02 15:04:05"), err)
		}
	}
	return nil
}

// YearlyTrades groups the realized trades by the year they were realized in.
func (e *Engine) YearlyTrades() map[int][]RealizedTrade {
	byYear := make(map[int][]RealizedTrade)
	for _, t := range e.Positions.RealizedTrades() {
		byYear[t.Year()] = append(byYear[t.Year()], t)
	}
	return byYear
}

// Run computes the per-year filing buckets from the accumulated state. Trade
// fees are folded, negated, into the year's fee bucket; classification gaps
// are logged, never fatal. The returned map is keyed by tax year.
func (e *Engine) Run() map[int]*Values {
	byYear := e.YearlyTrades()

	// A year can have trades without money movements and vice versa.
	for y := range byYear {
		e.year(y)
	}

	for y, v := range e.years {
		trades := byYear[y]
		e.checkClassifications(trades)

		v.Fee = v.Fee.Add(FeeSum(trades).Neg())

		v.StockAndOptionsSum = CombinedSum(trades)
		v.EquityETFGrossProfits = GrossEquityETFProfits(trades, e.Classifier)
		v.EquityETFProfits = EquityETFProfits(trades, e.Classifier)
		v.OtherStockAndBondProfits = OtherStockAndBondProfits(trades, e.Classifier)
		v.StockAndETFLosses = StockLoss(trades)
		v.TotalTaxableStockAndETFProfits = v.EquityETFProfits.Add(v.OtherStockAndBondProfits)

		v.OptionSum = OptionSum(trades)
		v.LongOptionProfits = LongOptionProfits(trades)
		v.LongOptionLosses = LongOptionLosses(trades)
		v.LongOptionTotalLosses = LongOptionTotalLosses(trades)
		v.ShortOptionProfits = ShortOptionProfits(trades)
		v.ShortOptionLosses = ShortOptionLosses(trades)
		v.GrossOptionDifferential = OptionDifferential(trades)
		v.StockFees = StockFees(trades).Neg()
		v.OtherFees = OtherFees(trades).Neg()
	}

	return e.years
}

// Years returns the covered tax years in ascending order.
func (e *Engine) Years() []int {
	years := make([]int, 0, len(e.years))
	for y := range e.years {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// checkClassifications runs the manual-review diagnostics over the distinct
// stock symbols of the year's trades.
func (e *Engine) checkClassifications(trades []RealizedTrade) {
	seen := make(map[string]bool)
	var symbols []string
	for _, t := range StockTrades(trades) {
		if !seen[t.Symbol] {
			seen[t.Symbol] = true
			symbols = append(symbols, t.Symbol)
		}
	}
	sort.Strings(symbols)
	e.Classifier.CheckUnsupportedAssets(symbols)
}
