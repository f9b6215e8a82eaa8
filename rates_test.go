package taxlot

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestRates_NearestPreviousFallback(t *testing.T) {
	r := NewRates()
	r.Add(at(2021, time.March, 5), decimal.NewFromFloat(0.84)) // Friday
	r.Add(at(2021, time.March, 8), decimal.NewFromFloat(0.85)) // Monday

	// Exact day.
	rate, err := r.Rate(at(2021, time.March, 5))
	if err != nil {
		t.Fatalf("Rate() error = %v", err)
	}
	if !rate.Equal(decimal.NewFromFloat(0.84)) {
		t.Errorf("Rate(Friday) = %s, want 0.84", rate)
	}

	// Weekend falls back to Friday.
	rate, err = r.Rate(at(2021, time.March, 7))
	if err != nil {
		t.Fatalf("Rate() error = %v", err)
	}
	if !rate.Equal(decimal.NewFromFloat(0.84)) {
		t.Errorf("Rate(Sunday) = %s, want Friday's 0.84", rate)
	}

	// Before the first known date there is nothing to fall back to.
	if _, err := r.Rate(at(2021, time.March, 1)); err == nil {
		t.Error("Rate() before the first date: want error, got nil")
	}
}

func TestRates_Convert(t *testing.T) {
	r := NewRates()
	r.Add(at(2021, time.March, 5), decimal.NewFromFloat(0.8))

	eur, err := r.Convert(decimal.NewFromInt(250), at(2021, time.March, 5))
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if !eur.Equal(decimal.NewFromInt(200)) {
		t.Errorf("Convert(250) = %s, want 200", eur)
	}
}

func TestReadRatesCSV(t *testing.T) {
	csv := `date,eur_per_usd
2021-03-05,0.84
2021-03-08,0.85
`
	r, err := ReadRatesCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ReadRatesCSV() error = %v", err)
	}
	rate, err := r.Rate(at(2021, time.March, 8))
	if err != nil {
		t.Fatalf("Rate() error = %v", err)
	}
	if !rate.Equal(decimal.NewFromFloat(0.85)) {
		t.Errorf("Rate() = %s, want 0.85", rate)
	}

	// Headerless snapshots load too.
	r, err = ReadRatesCSV(strings.NewReader("2021-03-05,0.84\n"))
	if err != nil {
		t.Fatalf("ReadRatesCSV() headerless error = %v", err)
	}
	if _, err := r.Rate(at(2021, time.March, 5)); err != nil {
		t.Errorf("Rate() error = %v", err)
	}

	if _, err := ReadRatesCSV(strings.NewReader("2021-03-05,not-a-number\n")); err == nil {
		t.Error("bad rate cell: want error, got nil")
	}
}
