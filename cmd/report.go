package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/taxlot"
	"github.com/etnz/taxlot/renderer"
	"github.com/google/subcommands"
)

// reportCmd holds the flags for the 'report' subcommand.
type reportCmd struct {
	year int
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "yearly tax report with filing buckets" }
func (*reportCmd) Usage() string {
	return `twt report [-year <year>]

  Replays the transaction history and prints the per-year filing buckets:
  cash movements, stock and fund profits with partial exemption, and the
  option profit, loss and netting totals.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.year, "year", 0, "Report a single tax year (defaults to all years)")
}

func (c *reportCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	engine, err := loadEngine()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading history: %v\n", err)
		return subcommands.ExitFailure
	}

	years := engine.Run()
	if c.year != 0 {
		v, ok := years[c.year]
		if !ok {
			fmt.Fprintf(os.Stderr, "No transactions in year %d\n", c.year)
			return subcommands.ExitFailure
		}
		years = map[int]*taxlot.Values{c.year: v}
	}

	md := renderer.ReportMarkdown(years)
	printMarkdown(md)

	return subcommands.ExitSuccess
}
