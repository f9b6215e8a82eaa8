package tastyworks

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/etnz/taxlot"
)

// The broker replaced the legacy export with a new column set. ReadModern
// maps the new columns onto the legacy ones and reuses the legacy row parser,
// so both formats produce identical transactions.

// modernToLegacy maps new-format column names to their legacy equivalent.
var modernToLegacy = map[string]string{
	"Date":            "Date/Time",
	"Type":            "Transaction Code",
	"Sub Type":        "Transaction Subcode",
	"Symbol":          "Symbol",
	"Expiration Date": "Expiration Date",
	"Strike Price":    "Strike",
	"Call or Put":     "Call/Put",
	"Average Price":   "Price",
	"Fees":            "Fees",
	"Value":           "Amount",
	"Description":     "Description",
	"Quantity":        "Quantity",
}

const modernDateLayout = "2006-01-02T15:04:05-0700"

// ReadModern parses a new-format export into the same transaction sequence
// Read produces.
func ReadModern(reader io.Reader, rates *taxlot.Rates) ([]taxlot.Transaction, error) {
	r := csv.NewReader(reader)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("cannot read csv header: %w", err)
	}

	index := make(map[string]int)
	for i, col := range header {
		if legacy, ok := modernToLegacy[col]; ok {
			index[legacy] = i
		}
	}
	for modern, legacy := range modernToLegacy {
		if _, ok := index[legacy]; !ok {
			return nil, fmt.Errorf("new-format export is missing column %q", modern)
		}
	}

	var records [][]string
	line := 1
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line+1, err)
		}
		line++

		legacy, err := toLegacyRecord(row, index)
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		records = append(records, legacy)
	}

	// Feed the converted rows through the legacy parser.
	var b strings.Builder
	w := csv.NewWriter(&b)
	w.Write(legacyHeader)
	w.WriteAll(records)
	if err := w.Error(); err != nil {
		return nil, err
	}
	return Read(strings.NewReader(b.String()), rates)
}

// toLegacyRecord converts one new-format row to the legacy column layout.
func toLegacyRecord(row []string, index map[string]int) ([]string, error) {
	get := func(col string) string { return row[index[col]] }

	date, err := time.Parse(modernDateLayout, get("Date/Time"))
	if err != nil {
		return nil, fmt.Errorf("bad date %q: %w", get("Date/Time"), err)
	}

	subcode := get("Transaction Subcode")
	// The new format spells the direction inside the sub type; the legacy
	// Buy/Sell and Open/Close columns are derived from it.
	var buySell, openClose string
	switch {
	case strings.Contains(subcode, "Buy"):
		buySell = "Buy"
	case strings.Contains(subcode, "Sell"):
		buySell = "Sell"
	}
	switch {
	case strings.HasSuffix(subcode, "to Open"):
		openClose = "Open"
	case strings.HasSuffix(subcode, "to Close"):
		openClose = "Close"
	}

	expiry := get("Expiration Date")
	if expiry != "" {
		for _, layout := range []string{"1/2/06", "2006-01-02", expiryLayout} {
			if d, err := time.Parse(layout, expiry); err == nil {
				expiry = d.Format(expiryLayout)
				break
			}
		}
	}

	// The new format packs the option descriptor into the symbol column:
	// "UVXY 210129P00014500"; the legacy symbol is the first token.
	symbol := get("Symbol")
	if parts := strings.Fields(symbol); len(parts) > 0 {
		symbol = parts[0]
	}

	// "CALL"/"PUT" in the new format, "C"/"P" in the legacy one.
	callPut := get("Call/Put")
	if callPut != "" {
		callPut = strings.ToUpper(callPut[:1])
	}

	return []string{
		date.Format(dateTimeLayout),
		get("Transaction Code"),
		subcode,
		symbol,
		buySell,
		openClose,
		get("Quantity"),
		expiry,
		get("Strike"),
		callPut,
		get("Price"),
		get("Fees"),
		get("Amount"),
		get("Description"),
		"", // Account Reference, absent from the new format
	}, nil
}
