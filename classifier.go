package taxlot

import (
	"log"
	"strings"
)

// Category is the tax bucket an instrument falls into.
type Category string

const (
	EquityETF       Category = "EQUITY_ETF"
	BondETF         Category = "BOND_ETF"
	MixedFundETF    Category = "MIXED_FUND_ETF"
	RealEstateETF   Category = "REAL_ESTATE_ETF"
	Crypto          Category = "CRYPTO"
	IndividualStock Category = "INDIVIDUAL_STOCK"
	CallOption      Category = "CALL"
	PutOption       Category = "PUT"
)

// Tax category labels on the filing forms.
const (
	TaxCategoryKAP    = "KAP"     // plain capital income
	TaxCategoryKAPINV = "KAP-INV" // investment funds, partial exemption applies
	TaxCategorySO     = "SO"      // other income, not handled by this engine
)

// ClassifierRule maps a set of symbols, or a predicate over the symbol, to a
// category with its exemption percentage and filing form. Rules are evaluated
// in order; first match wins.
type ClassifierRule struct {
	Category    Category
	Symbols     map[string]bool
	Match       func(symbol string) bool // used when Symbols is nil
	ExemptionPc int                      // percentage of the gain excluded from taxable income
	TaxCategory string
}

func (r ClassifierRule) matches(symbol string) bool {
	if r.Symbols[symbol] {
		return true
	}
	return r.Match != nil && r.Match(symbol)
}

func symbolSet(symbols ...string) map[string]bool {
	set := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		set[s] = true
	}
	return set
}

var cryptoCoins = symbolSet("BTC", "ETH", "DOGE")

// defaultRules is the built-in rule table. The exemption percentages are the
// statutory Teilfreistellung rates per fund type.
func defaultRules() []ClassifierRule {
	return []ClassifierRule{
		{
			Category:    EquityETF,
			Symbols:     symbolSet("SCHG", "TECL", "QQQ", "SPY", "VTI", "VXUS"),
			ExemptionPc: 30,
			TaxCategory: TaxCategoryKAPINV,
		},
		{
			Category:    BondETF,
			Symbols:     symbolSet("PULS", "VGSH", "ICSH", "TLT", "BND", "AGG"),
			ExemptionPc: 0,
			TaxCategory: TaxCategoryKAPINV,
		},
		{
			Category:    MixedFundETF,
			Symbols:     symbolSet("AOM", "AOR", "AOK", "AOA"),
			ExemptionPc: 15,
			TaxCategory: TaxCategoryKAPINV,
		},
		{
			Category:    RealEstateETF,
			Symbols:     symbolSet("VNQ", "IYR", "VNQI", "RWR"),
			ExemptionPc: 60,
			TaxCategory: TaxCategoryKAPINV,
		},
		{
			Category: Crypto,
			Match: func(symbol string) bool {
				return strings.HasSuffix(symbol, "/USD") ||
					strings.HasSuffix(symbol, "/EUR") ||
					cryptoCoins[symbol]
			},
			ExemptionPc: 0,
			TaxCategory: TaxCategorySO,
		},
	}
}

// AssetClassifier maps a symbol and position kind to its tax category. The
// rule table is data: a different jurisdiction is a table change, not an
// architecture change.
type AssetClassifier struct {
	rules []ClassifierRule
}

// NewAssetClassifier creates a classifier with the built-in rule table.
func NewAssetClassifier() *AssetClassifier {
	return &AssetClassifier{rules: defaultRules()}
}

// AddSymbols extends the rule for a category with extra symbols, typically
// from the configuration file. Unknown categories are ignored with a warning.
func (c *AssetClassifier) AddSymbols(category Category, symbols ...string) {
	for i := range c.rules {
		if c.rules[i].Category != category {
			continue
		}
		if c.rules[i].Symbols == nil {
			c.rules[i].Symbols = make(map[string]bool)
		}
		for _, s := range symbols {
			c.rules[i].Symbols[s] = true
		}
		return
	}
	log.Printf("cannot add symbols to unknown category %q", category)
}

// Classify returns the category for a symbol and position kind. Non-stock
// kinds map directly to their option category; unmatched stock symbols are
// individual stocks.
func (c *AssetClassifier) Classify(symbol string, kind PositionKind) Category {
	switch kind {
	case Call:
		return CallOption
	case Put:
		return PutOption
	}
	for _, rule := range c.rules {
		if rule.matches(symbol) {
			return rule.Category
		}
	}
	return IndividualStock
}

// ExemptionPercentage returns the partial-exemption percentage for a
// category, 0 when the category carries none.
func (c *AssetClassifier) ExemptionPercentage(category Category) int {
	for _, rule := range c.rules {
		if rule.Category == category {
			return rule.ExemptionPc
		}
	}
	return 0
}

// TaxCategory returns the filing form label for a category, defaulting to the
// generic capital-income form.
func (c *AssetClassifier) TaxCategory(category Category) string {
	for _, rule := range c.rules {
		if rule.Category == category {
			return rule.TaxCategory
		}
	}
	return TaxCategoryKAP
}

// CheckUnsupportedAssets logs a warning for every symbol whose category needs
// manual review: categories on a filing form the engine cannot auto-handle,
// unclassified symbols that might be funds, and partial-exemption fund types
// without full automatic support. It never fails: the report is still
// produced, flagged.
func (c *AssetClassifier) CheckUnsupportedAssets(symbols []string) {
	for _, symbol := range symbols {
		category := c.Classify(symbol, Stock)
		switch {
		case c.TaxCategory(category) == TaxCategorySO:
			log.Printf("unsupported tax category: symbol %q (%s) belongs on form SO; calculate it manually", symbol, category)
		case category == IndividualStock:
			log.Printf("unknown fund or stock type for symbol %q, treated as individual stock; mixed and real-estate funds need different exemption rates", symbol)
		case category == MixedFundETF || category == RealEstateETF:
			log.Printf("special fund type: %q (%s) has %d%% exemption but automatic handling is incomplete", symbol, category, c.ExemptionPercentage(category))
		}
	}
}
