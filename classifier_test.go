package taxlot

import "testing"

func TestClassify(t *testing.T) {
	c := NewAssetClassifier()
	cases := []struct {
		symbol string
		kind   PositionKind
		want   Category
	}{
		{"QQQ", Stock, EquityETF},
		{"SPY", Stock, EquityETF},
		{"TLT", Stock, BondETF},
		{"AOM", Stock, MixedFundETF},
		{"VNQ", Stock, RealEstateETF},
		{"BTC", Stock, Crypto},
		{"ETH/USD", Stock, Crypto},
		{"SHIB/EUR", Stock, Crypto},
		{"AAPL", Stock, IndividualStock},
		{"AAPL", Call, CallOption},
		{"AAPL", Put, PutOption},
		// Option kind wins over the symbol's fund category.
		{"QQQ", Put, PutOption},
	}
	for _, tc := range cases {
		if got := c.Classify(tc.symbol, tc.kind); got != tc.want {
			t.Errorf("Classify(%q, %s) = %s, want %s", tc.symbol, tc.kind, got, tc.want)
		}
	}
}

func TestExemptionPercentage(t *testing.T) {
	c := NewAssetClassifier()
	cases := []struct {
		category Category
		want     int
	}{
		{EquityETF, 30},
		{BondETF, 0},
		{MixedFundETF, 15},
		{RealEstateETF, 60},
		{IndividualStock, 0},
		{CallOption, 0},
	}
	for _, tc := range cases {
		if got := c.ExemptionPercentage(tc.category); got != tc.want {
			t.Errorf("ExemptionPercentage(%s) = %d, want %d", tc.category, got, tc.want)
		}
	}
}

func TestTaxCategory(t *testing.T) {
	c := NewAssetClassifier()
	if got := c.TaxCategory(EquityETF); got != TaxCategoryKAPINV {
		t.Errorf("TaxCategory(EquityETF) = %q, want %q", got, TaxCategoryKAPINV)
	}
	if got := c.TaxCategory(Crypto); got != TaxCategorySO {
		t.Errorf("TaxCategory(Crypto) = %q, want %q", got, TaxCategorySO)
	}
	if got := c.TaxCategory(IndividualStock); got != TaxCategoryKAP {
		t.Errorf("TaxCategory(IndividualStock) = %q, want %q", got, TaxCategoryKAP)
	}
}

func TestAddSymbols(t *testing.T) {
	c := NewAssetClassifier()
	if got := c.Classify("IWDA", Stock); got != IndividualStock {
		t.Fatalf("Classify(IWDA) = %s before AddSymbols, want INDIVIDUAL_STOCK", got)
	}

	c.AddSymbols(EquityETF, "IWDA", "VOO")
	if got := c.Classify("IWDA", Stock); got != EquityETF {
		t.Errorf("Classify(IWDA) = %s, want EQUITY_ETF", got)
	}
	if got := c.Classify("VOO", Stock); got != EquityETF {
		t.Errorf("Classify(VOO) = %s, want EQUITY_ETF", got)
	}

	// Extending a predicate-based rule keeps the predicate working.
	c.AddSymbols(Crypto, "SOL")
	if got := c.Classify("SOL", Stock); got != Crypto {
		t.Errorf("Classify(SOL) = %s, want CRYPTO", got)
	}
	if got := c.Classify("DOGE/USD", Stock); got != Crypto {
		t.Errorf("Classify(DOGE/USD) = %s after AddSymbols, want CRYPTO", got)
	}
}
