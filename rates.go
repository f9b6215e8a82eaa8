package taxlot

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
)

// Rates is the USD→EUR conversion table the importer uses to derive the EUR
// side of every Money. Rates are EUR per USD, keyed by date; requests for a
// date with no rate (weekends, holidays) fall back to the nearest previous
// date with one.
type Rates struct {
	days  []time.Time // sorted ascending
	rates map[time.Time]decimal.Decimal
}

// NewRates creates an empty rate table.
func NewRates() *Rates {
	return &Rates{rates: make(map[time.Time]decimal.Decimal)}
}

// day truncates to a date key.
func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Add records the EUR-per-USD rate for a date.
func (r *Rates) Add(date time.Time, rate decimal.Decimal) {
	d := day(date)
	if _, ok := r.rates[d]; !ok {
		i := sort.Search(len(r.days), func(i int) bool { return r.days[i].After(d) })
		r.days = append(r.days, time.Time{})
		copy(r.days[i+1:], r.days[i:])
		r.days[i] = d
	}
	r.rates[d] = rate
}

// Rate returns the EUR-per-USD rate applicable on a date: the rate of that
// date, or the nearest previous one.
func (r *Rates) Rate(date time.Time) (decimal.Decimal, error) {
	d := day(date)
	if rate, ok := r.rates[d]; ok {
		return rate, nil
	}
	i := sort.Search(len(r.days), func(i int) bool { return r.days[i].After(d) })
	if i == 0 {
		return decimal.Decimal{}, fmt.Errorf("no conversion rate on or before %s", d.Format("2006-01-02"))
	}
	return r.rates[r.days[i-1]], nil
}

// Convert converts a USD amount to EUR at the rate of the given date. This is
// the pure conversion function the engine's collaborators rely on.
func (r *Rates) Convert(usd decimal.Decimal, date time.Time) (decimal.Decimal, error) {
	rate, err := r.Rate(date)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return usd.Mul(rate), nil
}

// ReadRatesCSV loads a rate table from a two-column CSV snapshot
// (date,eur_per_usd), header optional.
func ReadRatesCSV(reader io.Reader) (*Rates, error) {
	records, err := csv.NewReader(reader).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("cannot read rates csv: %w", err)
	}
	rates := NewRates()
	for i, rec := range records {
		if len(rec) < 2 {
			return nil, fmt.Errorf("rates csv line %d: want 2 columns, got %d", i+1, len(rec))
		}
		date, err := time.Parse("2006-01-02", rec[0])
		if err != nil {
			if i == 0 {
				continue // header line
			}
			return nil, fmt.Errorf("rates csv line %d: %w", i+1, err)
		}
		rate, err := decimal.NewFromString(rec[1])
		if err != nil {
			return nil, fmt.Errorf("rates csv line %d: %w", i+1, err)
		}
		rates.Add(date, rate)
	}
	return rates, nil
}

// WriteCSV writes the table as a two-column snapshot (date,eur_per_usd),
// readable back by ReadRatesCSV.
func (r *Rates) WriteCSV(w *csv.Writer) error {
	if err := w.Write([]string{"date", "eur_per_usd"}); err != nil {
		return err
	}
	for _, d := range r.days {
		if err := w.Write([]string{d.Format("2006-01-02"), r.rates[d].String()}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// jwget retrieves a JSON payload into data.
func jwget(client *http.Client, addr string, data interface{}) error {
	resp, err := client.Get(addr)
	if err != nil {
		return err
	}
	if resp.StatusCode != 200 {
		return fmt.Errorf("cannot http GET %v/%v: %v", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}
	var buf bytes.Buffer
	_, err = io.Copy(&buf, resp.Body)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return json.Unmarshal(buf.Bytes(), data)
}

/*
	{
	    "amount": 1.0,
	    "base": "USD",
	    "date": "2024-03-01",
	    "rates": {
	        "EUR": 0.92331
	    }
	}
*/
func fetchEURperUSD(date time.Time) (float64, error) {
	addr := "https://api.frankfurter.dev/v1/" + day(date).Format("2006-01-02") + "?base=USD&symbols=EUR"
	var jobj any
	if err := jwget(new(http.Client), addr, &jobj); err != nil {
		return 0, fmt.Errorf("error in wget %q: %w", "USD/EUR", err)
	}
	path := "$.rates.EUR"
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return 0, fmt.Errorf("error parsing %q: %q %w", "USD/EUR", path, err)
	}
	// because jsonpath is never clear about whether it returns a list of 1 answer, or a single answer:
	// by this call I keep the first one if any
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	val, ok := jval.(float64)
	if !ok {
		return 0, fmt.Errorf("error parsing %q: %q %s %v", "USD/EUR", path, "not a float", jval)
	}
	return val, nil
}

// Fetch retrieves the USD→EUR rate for a date from the reference-rate API and
// records it in the table.
func (r *Rates) Fetch(date time.Time) error {
	val, err := fetchEURperUSD(date)
	if err != nil {
		return err
	}
	r.Add(date, decimal.NewFromFloat(val))
	return nil
}
