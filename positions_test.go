package taxlot

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

// process feeds the transactions in order and fails on any error.
func process(t *testing.T, m *PositionManager, transactions ...Transaction) {
	t.Helper()
	for _, tx := range transactions {
		if err := m.AddPosition(tx); err != nil {
			t.Fatalf("AddPosition(%s %s) error = %v", tx.Subcode, tx.Symbol, err)
		}
	}
}

func TestPositionManager_FIFOOrder(t *testing.T) {
	m := NewPositionManager()
	t1 := at(2021, time.January, 4)
	t2 := at(2021, time.February, 1)
	process(t, m,
		buyStock(t1, "AAPL", 5, 500),
		buyStock(t2, "AAPL", 15, 1800),
		sellStock(at(2021, time.March, 1), "AAPL", 20, 2400),
	)

	trades := m.RealizedTrades()
	if len(trades) != 2 {
		t.Fatalf("got %d trades, want 2", len(trades))
	}

	// The oldest lot is consumed first, and fully.
	if !trades[0].Opened.Equal(t1) || !trades[0].Quantity.Equal(Q(5)) {
		t.Errorf("first trade = %s opened %s, want 5 opened %s", trades[0].Quantity, trades[0].Opened, t1)
	}
	wantMoney(t, "first trade Profit", trades[0].Profit, dm(100))

	// The younger lot covers the remainder.
	if !trades[1].Opened.Equal(t2) || !trades[1].Quantity.Equal(Q(15)) {
		t.Errorf("second trade = %s opened %s, want 15 opened %s", trades[1].Quantity, trades[1].Opened, t2)
	}
	wantMoney(t, "second trade Profit", trades[1].Profit, dm(0))

	if got := len(m.OpenLots()); got != 0 {
		t.Errorf("got %d open lots, want 0", got)
	}
}

func TestPositionManager_PartialCloseKeepsRemainder(t *testing.T) {
	m := NewPositionManager()
	process(t, m,
		buyStock(at(2021, time.January, 4), "AAPL", 10, 1000),
		sellStock(at(2021, time.March, 1), "AAPL", 4, 480),
	)

	trades := m.RealizedTrades()
	if len(trades) != 1 {
		t.Fatalf("got %d trades, want 1", len(trades))
	}
	wantMoney(t, "Profit", trades[0].Profit, dm(80))

	lots := m.OpenLots()
	if len(lots) != 1 {
		t.Fatalf("got %d open lots, want 1", len(lots))
	}
	if !lots[0].Quantity.Equal(Q(6)) {
		t.Errorf("open lot Quantity = %s, want 6", lots[0].Quantity)
	}
	wantMoney(t, "open lot Value", lots[0].Value, dm(-600))
}

func TestPositionManager_Conservation(t *testing.T) {
	// Over any sequence, realized profit plus the basis still held in open
	// lots equals the sum of all transaction amounts.
	transactions := []Transaction{
		buyStock(at(2021, time.January, 4), "AAPL", 10, 1000),
		buyStock(at(2021, time.January, 5), "AAPL", 6, 660),
		sellStock(at(2021, time.February, 1), "AAPL", 16, 1920),
		{Time: at(2021, time.March, 1), Code: CodeTrade, Subcode: SellToOpen,
			Symbol: "TSLA", Quantity: Q(-5), Value: dm(500), OpenClose: Open},
		{Time: at(2021, time.April, 1), Code: CodeTrade, Subcode: BuyToClose,
			Symbol: "TSLA", Quantity: Q(3), Value: dm(-240), OpenClose: Close},
		option(at(2021, time.May, 3), BuyToOpen, "SPY", 2, 400, "C", -350),
		option(at(2021, time.June, 1), SellToClose, "SPY", -1, 400, "C", 220),
	}

	m := NewPositionManager()
	process(t, m, transactions...)

	var total Money
	for _, tx := range transactions {
		total = total.Add(tx.Value)
	}
	sum := SumProfits(m.RealizedTrades())
	for _, l := range m.OpenLots() {
		sum = sum.Add(l.Value)
	}
	wantMoney(t, "realized + open basis", sum, total)
}

func TestPositionManager_FailedCloseIsAtomic(t *testing.T) {
	m := NewPositionManager()
	process(t, m, buyStock(at(2021, time.January, 4), "AAPL", 10, 1000))

	err := m.AddPosition(sellStock(at(2021, time.February, 1), "AAPL", 15, 1800))
	var insufficient *InsufficientPositionError
	if !errors.As(err, &insufficient) {
		t.Fatalf("AddPosition() error = %v, want InsufficientPositionError", err)
	}
	if !insufficient.Remaining.Equal(Q(5)) {
		t.Errorf("Remaining = %s, want 5", insufficient.Remaining)
	}

	// The failed close left everything untouched.
	if got := len(m.RealizedTrades()); got != 0 {
		t.Errorf("got %d realized trades, want 0", got)
	}
	lots := m.OpenLots()
	if len(lots) != 1 || !lots[0].Quantity.Equal(Q(10)) {
		t.Fatalf("open lots after failed close = %v, want the untouched 10-unit lot", lots)
	}
	wantMoney(t, "open lot Value", lots[0].Value, dm(-1000))
}

func TestPositionManager_SameSignedHeadStopsMatch(t *testing.T) {
	// A close running in the same direction as the open position is a data
	// error, not something to match around.
	m := NewPositionManager()
	process(t, m, Transaction{
		Time: at(2021, time.January, 4), Code: CodeTrade, Subcode: SellToOpen,
		Symbol: "TSLA", Quantity: Q(-10), Value: dm(2000), OpenClose: Open,
	})

	err := m.AddPosition(Transaction{
		Time: at(2021, time.February, 1), Code: CodeTrade, Subcode: SellToClose,
		Symbol: "TSLA", Quantity: Q(-5), Value: dm(900), OpenClose: Close,
	})
	var insufficient *InsufficientPositionError
	if !errors.As(err, &insufficient) {
		t.Fatalf("AddPosition() error = %v, want InsufficientPositionError", err)
	}
	if got := len(m.RealizedTrades()); got != 0 {
		t.Errorf("got %d realized trades, want 0", got)
	}
}

func TestPositionManager_ReverseSplitIsolation(t *testing.T) {
	m := NewPositionManager()
	process(t, m,
		buyStock(at(2020, time.March, 2), "USO", 15, 1500),
		buyStock(at(2020, time.March, 2), "SPY", 10, 3000),
		Transaction{
			Time: at(2020, time.April, 28), Code: CodeReceiveDeliver,
			Subcode: ReverseSplit, Symbol: "USO",
			Description: "1 for 10 reverse split",
		},
	)

	for _, l := range m.OpenLots() {
		switch l.Symbol {
		case "USO":
			if !l.Quantity.Equal(Q(1)) {
				t.Errorf("USO Quantity = %s, want 1", l.Quantity)
			}
		case "SPY":
			if !l.Quantity.Equal(Q(10)) {
				t.Errorf("SPY Quantity = %s, want 10: split leaked to another symbol", l.Quantity)
			}
			wantMoney(t, "SPY Value", l.Value, dm(-3000))
		}
	}
	if got := len(m.RealizedTrades()); got != 0 {
		t.Errorf("split realized %d trades, want 0", got)
	}
}

func TestPositionManager_ReverseSplitFromTable(t *testing.T) {
	m := NewPositionManager()
	m.Splits.Add("USO", "2020-04-28", decimal.NewFromFloat(0.125))
	process(t, m,
		buyStock(at(2020, time.March, 2), "USO", 8, 800),
		Transaction{
			Time: at(2020, time.April, 28), Code: CodeReceiveDeliver,
			Subcode: ReverseSplit, Symbol: "USO",
			Description: "Reverse split",
		},
	)

	lots := m.OpenLots()
	if len(lots) != 1 || !lots[0].Quantity.Equal(Q(1)) {
		t.Fatalf("open lots = %v, want one 1-unit lot", lots)
	}
}

func TestPositionManager_ReverseSplitWithoutRatio(t *testing.T) {
	m := NewPositionManager()
	process(t, m, buyStock(at(2020, time.March, 2), "USO", 8, 800))

	err := m.AddPosition(Transaction{
		Time: at(2020, time.April, 28), Code: CodeReceiveDeliver,
		Subcode: ReverseSplit, Symbol: "USO",
		Description: "Reverse split",
	})
	var split *SplitRatioError
	if !errors.As(err, &split) {
		t.Fatalf("AddPosition() error = %v, want SplitRatioError", err)
	}
	if split.Symbol != "USO" || split.Date != "2020-04-28" {
		t.Errorf("SplitRatioError = %v, want USO on 2020-04-28", split)
	}
}

func TestPositionManager_ResidualLotIsSkipped(t *testing.T) {
	m := NewPositionManager()
	process(t, m,
		buyStock(at(2020, time.March, 2), "USO", 4, 400),
		Transaction{
			Time: at(2020, time.April, 28), Code: CodeReceiveDeliver,
			Subcode: ReverseSplit, Symbol: "USO",
			Description: "1 for 10 reverse split",
		},
		// New position after the split: closes must skip the empty lot.
		buyStock(at(2020, time.May, 4), "USO", 10, 200),
		sellStock(at(2020, time.June, 1), "USO", 10, 300),
	)

	trades := m.RealizedTrades()
	if len(trades) != 1 {
		t.Fatalf("got %d trades, want 1", len(trades))
	}
	wantMoney(t, "Profit", trades[0].Profit, dm(100))

	// The residual lot survives with its basis for reporting.
	lots := m.OpenLots()
	if len(lots) != 1 || !lots[0].IsEmpty() {
		t.Fatalf("open lots = %v, want the single residual lot", lots)
	}
	wantMoney(t, "residual Value", lots[0].Value, dm(-400))
}

func TestPositionManager_SplitRowWithOptionTokenTrades(t *testing.T) {
	// Some "Reverse Split" rows swap option legs; the OCC token in the
	// description tells them apart from share mutations.
	m := NewPositionManager()
	process(t, m,
		option(at(2020, time.March, 2), BuyToOpen, "USO", 1, 5, "C", -80),
		Transaction{
			Time: at(2020, time.April, 28), Code: CodeReceiveDeliver,
			Subcode: ReverseSplit, Symbol: "USO", OpenClose: Close,
			Quantity: Q(-1), Value: dm(0),
			Strike: decimal.NewFromInt(5), Expiry: at(2024, time.January, 19), CallPut: "C",
			Description: "Reverse split: Close 1 USO 200117C00005000",
		},
	)

	trades := m.RealizedTrades()
	if len(trades) != 1 {
		t.Fatalf("got %d trades, want 1: the option leg must close, not split", len(trades))
	}
	wantMoney(t, "Profit", trades[0].Profit, dm(-80))
}

func TestPositionManager_SymbolChangePreservesBasis(t *testing.T) {
	m := NewPositionManager()
	opened := at(2021, time.January, 4)
	process(t, m,
		buyStock(opened, "FB", 10, 1000),
		Transaction{
			Time: at(2022, time.June, 9), Code: CodeReceiveDeliver,
			Subcode: SymbolChange, Symbol: "FB", OpenClose: Close, Quantity: Q(-10),
		},
		Transaction{
			Time: at(2022, time.June, 9), Code: CodeReceiveDeliver,
			Subcode: SymbolChange, Symbol: "META", OpenClose: Open, Quantity: Q(10),
		},
	)

	// The rename realized nothing.
	if got := len(m.RealizedTrades()); got != 0 {
		t.Fatalf("rename realized %d trades, want 0", got)
	}
	lots := m.OpenLots()
	if len(lots) != 1 || lots[0].Symbol != "META" {
		t.Fatalf("open lots = %v, want one META lot", lots)
	}
	wantMoney(t, "renamed Value", lots[0].Value, dm(-1000))
	if !lots[0].Opened.Equal(opened) {
		t.Errorf("renamed Opened = %s, want the original %s", lots[0].Opened, opened)
	}

	// Closing under the new symbol uses the original basis.
	process(t, m, sellStock(at(2022, time.December, 1), "META", 10, 1500))
	trades := m.RealizedTrades()
	if len(trades) != 1 {
		t.Fatalf("got %d trades, want 1", len(trades))
	}
	wantMoney(t, "Profit", trades[0].Profit, dm(500))
	if !trades[0].Opened.Equal(opened) {
		t.Errorf("trade Opened = %s, want the original %s", trades[0].Opened, opened)
	}
}

func TestPositionManager_StockMergerPreservesBasis(t *testing.T) {
	m := NewPositionManager()
	process(t, m,
		buyStock(at(2021, time.January, 4), "SBNY", 20, 2000),
		Transaction{
			Time: at(2021, time.October, 1), Code: CodeReceiveDeliver,
			Subcode: StockMerger, Symbol: "SBNY", OpenClose: Close, Quantity: Q(-20),
		},
		Transaction{
			Time: at(2021, time.October, 1), Code: CodeReceiveDeliver,
			Subcode: StockMerger, Symbol: "NYCB", OpenClose: Open, Quantity: Q(20),
		},
	)

	lots := m.OpenLots()
	if len(lots) != 1 || lots[0].Symbol != "NYCB" {
		t.Fatalf("open lots = %v, want one NYCB lot", lots)
	}
	wantMoney(t, "merged Value", lots[0].Value, dm(-2000))
}

func TestPositionManager_ExpirationForceMatches(t *testing.T) {
	// An expiration row carries the same sign as a long lot; the broker's
	// removal is authoritative and matches anyway.
	m := NewPositionManager()
	process(t, m,
		option(at(2021, time.March, 1), BuyToOpen, "AAPL", 2, 150, "C", -300),
		option(at(2021, time.June, 18), Expiration, "AAPL", 2, 150, "C", 0),
	)

	trades := m.RealizedTrades()
	if len(trades) != 1 {
		t.Fatalf("got %d trades, want 1", len(trades))
	}
	if !trades[0].WorthlessExpiry {
		t.Error("WorthlessExpiry = false")
	}
	wantMoney(t, "Profit", trades[0].Profit, dm(-300))
	if got := len(m.OpenLots()); got != 0 {
		t.Errorf("got %d open lots, want 0", got)
	}
}

func TestPositionManager_OptionsAreSeparateInstruments(t *testing.T) {
	// Same symbol, different strike or expiry: separate FIFO queues.
	m := NewPositionManager()
	process(t, m,
		option(at(2021, time.March, 1), BuyToOpen, "AAPL", 1, 150, "C", -300),
		option(at(2021, time.March, 2), BuyToOpen, "AAPL", 1, 155, "C", -200),
		option(at(2021, time.April, 1), SellToClose, "AAPL", -1, 155, "C", 260),
	)

	trades := m.RealizedTrades()
	if len(trades) != 1 {
		t.Fatalf("got %d trades, want 1", len(trades))
	}
	wantMoney(t, "Profit", trades[0].Profit, dm(60))

	lots := m.OpenLots()
	if len(lots) != 1 || !lots[0].Strike.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("open lots = %v, want the untouched 150 strike", lots)
	}
}
