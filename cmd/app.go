// Package cmd implements the CLI application to compute tax reports from
// broker transaction histories.
package cmd

import (
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/taxlot"
	"github.com/etnz/taxlot/tastyworks"
	"github.com/google/subcommands"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&reportCmd{}, "reports")
	c.Register(&lotsCmd{}, "reports")
	c.Register(&tradesCmd{}, "reports")
	c.Register(&checkCmd{}, "reports")

	c.Register(&fetchRateCmd{}, "rates")

	c.Register(&assistCmd{}, "")
	c.Register(&topicCmd{}, "")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var historyFile = flag.String("history", "transactions.csv", "Path to the broker transaction history export (CSV)")
var historyFormat = flag.String("format", "legacy", "Export format of the history file (legacy, modern)")
var ratesFile = flag.String("rates", "rates.csv", "Path to the USD/EUR conversion rates snapshot (CSV)")
var configFile = flag.String("config", "", "Path to the TOML configuration file (split ratios, extra symbols)")

// loadHistory reads the rate table and the transaction history.
func loadHistory() ([]taxlot.Transaction, error) {
	rf, err := os.Open(*ratesFile)
	if err != nil {
		return nil, fmt.Errorf("cannot open rates file %q: %w", *ratesFile, err)
	}
	defer rf.Close()
	rates, err := taxlot.ReadRatesCSV(rf)
	if err != nil {
		return nil, err
	}

	hf, err := os.Open(*historyFile)
	if err != nil {
		return nil, fmt.Errorf("cannot open history file %q: %w", *historyFile, err)
	}
	defer hf.Close()

	switch *historyFormat {
	case "legacy":
		return tastyworks.Read(hf, rates)
	case "modern":
		return tastyworks.ReadModern(hf, rates)
	default:
		return nil, fmt.Errorf("unknown history format %q (want legacy or modern)", *historyFormat)
	}
}

// loadEngine builds an engine, applies the configuration, and replays the
// full history through it.
func loadEngine() (*taxlot.Engine, error) {
	transactions, err := loadHistory()
	if err != nil {
		return nil, err
	}

	engine := taxlot.NewEngine()
	if *configFile != "" {
		cfg, err := taxlot.LoadConfig(*configFile)
		if err != nil {
			return nil, err
		}
		cfg.Apply(engine)
	}

	if err := engine.Process(transactions); err != nil {
		return nil, err
	}
	return engine, nil
}

// printMarkdown renders markdown to the terminal.
func printMarkdown(md string) {
	out, err := glamour.Render(md, "auto")
	if err != nil {
		// fall back to the raw markdown
		fmt.Println(md)
		return
	}
	fmt.Print(out)
}
