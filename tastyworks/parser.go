// Package tastyworks reads the broker's transaction-history CSV exports and
// produces the validated, chronologically ordered transaction sequence the
// engine consumes. The EUR side of every amount is derived here, on the
// transaction date, through the conversion rate table.
package tastyworks

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/etnz/taxlot"
	"github.com/shopspring/decimal"
)

// legacyHeader is the column set of the broker's legacy export format.
var legacyHeader = []string{
	"Date/Time", "Transaction Code", "Transaction Subcode", "Symbol",
	"Buy/Sell", "Open/Close", "Quantity", "Expiration Date", "Strike",
	"Call/Put", "Price", "Fees", "Amount", "Description", "Account Reference",
}

const (
	dateTimeLayout = "01/02/2006 3:04 PM"
	expiryLayout   = "01/02/2006"
)

// signs of the quantity column per subcode: the export reports quantities
// unsigned, the engine wants the direction in the sign.
var subcodeSigns = map[taxlot.Subcode]int{
	taxlot.BuyToOpen:   +1,
	taxlot.BuyToClose:  +1,
	taxlot.SellToOpen:  -1,
	taxlot.SellToClose: -1,
	taxlot.Assignment:  +1,
	taxlot.Expiration:  +1,
}

// Read parses a legacy-format export. The file lists entries newest first;
// the result is re-sorted into the chronological order FIFO matching needs.
// rates supplies the USD→EUR conversion for the derived EUR amounts.
func Read(reader io.Reader, rates *taxlot.Rates) ([]taxlot.Transaction, error) {
	r := csv.NewReader(reader)
	r.FieldsPerRecord = len(legacyHeader)

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("cannot read csv header: %w", err)
	}
	for i, want := range legacyHeader {
		if header[i] != want {
			return nil, fmt.Errorf("unexpected csv column %d: got %q, want %q", i, header[i], want)
		}
	}

	var transactions []taxlot.Transaction
	line := 1
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line+1, err)
		}
		line++

		t, err := parseRow(record, rates)
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		transactions = append(transactions, t)
	}

	// The export is newest first; a stable reversal preserves the relative
	// order of same-minute entries (the export's resolution is one minute).
	for i, j := 0, len(transactions)-1; i < j; i, j = i+1, j-1 {
		transactions[i], transactions[j] = transactions[j], transactions[i]
	}
	return transactions, nil
}

// parseRow builds one Transaction from a legacy-format record.
func parseRow(record []string, rates *taxlot.Rates) (taxlot.Transaction, error) {
	var t taxlot.Transaction
	var err error

	t.Time, err = time.Parse(dateTimeLayout, record[0])
	if err != nil {
		return t, fmt.Errorf("bad date/time %q: %w", record[0], err)
	}
	t.Code = taxlot.TransactionCode(record[1])
	t.Subcode = taxlot.Subcode(record[2])
	t.Symbol = record[3]
	t.OpenClose = taxlot.OpenClose(record[5])
	t.Description = record[13]

	qty, err := parseDecimal(record[6])
	if err != nil {
		return t, fmt.Errorf("bad quantity %q: %w", record[6], err)
	}
	sign, err := quantitySign(t.Code, t.Subcode, record[4])
	if err != nil {
		return t, err
	}
	t.Quantity = taxlot.Q(qty.Abs().Mul(signDecimal(sign)))

	if record[9] != "" {
		t.CallPut = record[9]
		t.Strike, err = parseDecimal(record[8])
		if err != nil {
			return t, fmt.Errorf("bad strike %q: %w", record[8], err)
		}
		if record[7] != "" {
			t.Expiry, err = time.Parse(expiryLayout, record[7])
			if err != nil {
				return t, fmt.Errorf("bad expiration date %q: %w", record[7], err)
			}
		}
	}

	t.Value, err = dualAmount(record[12], t.Time, rates)
	if err != nil {
		return t, fmt.Errorf("bad amount %q: %w", record[12], err)
	}
	t.Fees, err = dualAmount(record[11], t.Time, rates)
	if err != nil {
		return t, fmt.Errorf("bad fees %q: %w", record[11], err)
	}
	return t, nil
}

// quantitySign derives the direction of a position-affecting row. Money
// movements carry no direction.
func quantitySign(code taxlot.TransactionCode, subcode taxlot.Subcode, buySell string) (int, error) {
	if code == taxlot.CodeMoneyMovement {
		return +1, nil
	}
	switch subcode {
	case taxlot.ReverseSplit, taxlot.SymbolChange, taxlot.StockMerger:
		if buySell == "Sell" {
			return -1, nil
		}
		return +1, nil
	}
	if sign, ok := subcodeSigns[subcode]; ok {
		return sign, nil
	}
	return 0, fmt.Errorf("invalid transaction subcode %q", subcode)
}

func signDecimal(sign int) decimal.Decimal {
	return decimal.NewFromInt(int64(sign))
}

// parseDecimal reads a possibly empty numeric cell; empty reads as zero.
func parseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return decimal.Decimal{}, nil
	}
	return decimal.NewFromString(s)
}

// dualAmount builds the dual-currency Money of a USD cell, converting the EUR
// side on the transaction date.
func dualAmount(cell string, date time.Time, rates *taxlot.Rates) (taxlot.Money, error) {
	usd, err := parseDecimal(cell)
	if err != nil {
		return taxlot.Money{}, err
	}
	eur, err := rates.Convert(usd, date)
	if err != nil {
		return taxlot.Money{}, err
	}
	return taxlot.M(usd, eur), nil
}
