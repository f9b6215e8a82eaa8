package taxlot

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"
)

// Config is the engine's configuration surface: reverse-split ratios the
// broker description does not spell out, and extra classifier symbols per
// category. It is read from a TOML file.
//
//	[[splits]]
//	symbol = "USO"
//	date = "2020-04-28"
//	ratio = 0.125
//
//	[symbols]
//	EQUITY_ETF = ["VOO", "IWDA"]
type Config struct {
	Splits  []SplitEntry        `toml:"splits"`
	Symbols map[string][]string `toml:"symbols"`
}

// SplitEntry is one configured reverse-split ratio (new shares per old share).
type SplitEntry struct {
	Symbol string  `toml:"symbol"`
	Date   string  `toml:"date"`
	Ratio  float64 `toml:"ratio"`
}

// LoadConfig reads a TOML configuration file.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("cannot read configuration %q: %w", path, err)
	}
	return &cfg, nil
}

// Apply installs the configuration into an engine: split ratios into the
// position manager's table, extra symbols into the classifier's rules.
func (c *Config) Apply(e *Engine) {
	for _, s := range c.Splits {
		e.Positions.Splits.Add(s.Symbol, s.Date, decimal.NewFromFloat(s.Ratio))
	}
	for category, symbols := range c.Symbols {
		e.Classifier.AddSymbols(Category(category), symbols...)
	}
}
