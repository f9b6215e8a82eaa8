package cmd

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/etnz/taxlot"
	"github.com/google/subcommands"
)

// fetchRateCmd holds the flags for the 'fetch-rates' subcommand.
type fetchRateCmd struct {
	from string
	to   string
}

func (*fetchRateCmd) Name() string     { return "fetch-rates" }
func (*fetchRateCmd) Synopsis() string { return "download USD/EUR reference rates into the rates file" }
func (*fetchRateCmd) Usage() string {
	return `twt fetch-rates -from <date> [-to <date>]

  Downloads the daily USD to EUR reference rate for each day in the range
  and writes the snapshot to the rates file. Dates use the YYYY-MM-DD format.
`
}

func (c *fetchRateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "", "First date to fetch (YYYY-MM-DD)")
	f.StringVar(&c.to, "to", time.Now().Format("2006-01-02"), "Last date to fetch (YYYY-MM-DD)")
}

func (c *fetchRateCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.from == "" {
		fmt.Fprintln(os.Stderr, "-from is required")
		return subcommands.ExitUsageError
	}
	from, err := time.Parse("2006-01-02", c.from)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing -from date: %v\n", err)
		return subcommands.ExitUsageError
	}
	to, err := time.Parse("2006-01-02", c.to)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing -to date: %v\n", err)
		return subcommands.ExitUsageError
	}

	rates := taxlot.NewRates()
	// The reference-rate API skips weekends and bank holidays, returning the
	// last published rate instead, so every calendar day gets a value.
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if err := rates.Fetch(d); err != nil {
			fmt.Fprintf(os.Stderr, "Error fetching rate for %s: %v\n", d.Format("2006-01-02"), err)
			return subcommands.ExitFailure
		}
	}

	out, err := os.Create(*ratesFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating rates file %q: %v\n", *ratesFile, err)
		return subcommands.ExitFailure
	}
	defer out.Close()

	w := csv.NewWriter(out)
	if err := rates.WriteCSV(w); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing rates file %q: %v\n", *ratesFile, err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Wrote rates for %s..%s to %s\n", c.from, c.to, *ratesFile)
	return subcommands.ExitSuccess
}
