package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/taxlot/renderer"
	"github.com/google/subcommands"
)

// lotsCmd holds the flags for the 'lots' subcommand.
type lotsCmd struct{}

func (*lotsCmd) Name() string     { return "lots" }
func (*lotsCmd) Synopsis() string { return "open position lots after replaying the history" }
func (*lotsCmd) Usage() string {
	return `twt lots

  Replays the transaction history and lists the lots still open at the end,
  oldest first, with their remaining quantity and cost basis.
`
}

func (c *lotsCmd) SetFlags(f *flag.FlagSet) {}

func (c *lotsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	engine, err := loadEngine()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading history: %v\n", err)
		return subcommands.ExitFailure
	}

	md := renderer.LotsMarkdown(engine.Positions.OpenLots())
	printMarkdown(md)

	return subcommands.ExitSuccess
}
