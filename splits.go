package taxlot

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// SplitTable maps a symbol and date (YYYY-MM-DD) to a split ratio
// (new shares per old share) for reverse splits whose broker description
// carries no parseable ratio. It is supplied as configuration.
type SplitTable map[string]map[string]decimal.Decimal

// Lookup returns the configured ratio for a symbol on a date.
func (t SplitTable) Lookup(symbol, date string) (decimal.Decimal, bool) {
	ratio, ok := t[symbol][date]
	return ratio, ok
}

// Add records a ratio for a symbol and date.
func (t SplitTable) Add(symbol, date string, ratio decimal.Decimal) {
	if t[symbol] == nil {
		t[symbol] = make(map[string]decimal.Decimal)
	}
	t[symbol][date] = ratio
}

// occOptionToken matches an OCC-style option descriptor (yymmdd, C or P,
// 8-digit strike). A "Reverse Split" row whose description carries one is an
// option leg being swapped out, not a share mutation.
var occOptionToken = regexp.MustCompile(`\d{6}[CP]\d{8}`)

// ratioPatterns are the forms brokers use to spell a split ratio in free text.
var ratioPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d+):(\d+)`),
	regexp.MustCompile(`(?i)(\d+)-for-(\d+)`),
	regexp.MustCompile(`(?i)(\d+)\s*for\s*(\d+)`),
}

// parseSplitRatio extracts a split ratio (new shares / old shares) from a
// broker description. A "reverse" description orders the pair small/large,
// a forward split large/small. Returns false when no pattern matches.
func parseSplitRatio(description string) (decimal.Decimal, bool) {
	for _, pattern := range ratioPatterns {
		match := pattern.FindStringSubmatch(description)
		if match == nil {
			continue
		}
		a, _ := strconv.ParseInt(match[1], 10, 64)
		b, _ := strconv.ParseInt(match[2], 10, 64)
		if a == 0 || b == 0 {
			continue
		}
		lo, hi := min(a, b), max(a, b)
		if strings.Contains(strings.ToLower(description), "reverse") {
			return decimal.NewFromInt(lo).Div(decimal.NewFromInt(hi)), true
		}
		return decimal.NewFromInt(hi).Div(decimal.NewFromInt(lo)), true
	}
	return decimal.Decimal{}, false
}
