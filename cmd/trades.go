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

// tradesCmd holds the flags for the 'trades' subcommand.
type tradesCmd struct {
	year int
}

func (*tradesCmd) Name() string     { return "trades" }
func (*tradesCmd) Synopsis() string { return "realized trades with per-trade profit" }
func (*tradesCmd) Usage() string {
	return `twt trades [-year <year>]

  Replays the transaction history and lists every realized trade with its
  opening and closing dates, matched quantity, profit and fees.
`
}

func (c *tradesCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.year, "year", 0, "List trades realized in a single tax year (defaults to all years)")
}

func (c *tradesCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	engine, err := loadEngine()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading history: %v\n", err)
		return subcommands.ExitFailure
	}

	trades := engine.Positions.RealizedTrades()
	if c.year != 0 {
		var kept []taxlot.RealizedTrade
		for _, trade := range trades {
			if trade.Year() == c.year {
				kept = append(kept, trade)
			}
		}
		trades = kept
	}

	md := renderer.TradesMarkdown(trades)
	printMarkdown(md)

	return subcommands.ExitSuccess
}
