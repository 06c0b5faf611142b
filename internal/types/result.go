package types

import "math"

// RunResult is the outcome of one full simulation for one parameter set.
// Results are compared by TerminalPortfolioValue only.
type RunResult struct {
	ID                     string         `yaml:"id" json:"id"`
	Policy                 string         `yaml:"policy" json:"policy"`
	Parameters             map[string]any `yaml:"parameters" json:"parameters"`
	TerminalPortfolioValue float64        `yaml:"terminal_portfolio_value" json:"terminal_portfolio_value"`
	Cash                   float64        `yaml:"cash" json:"cash"`
	Position               PositionState  `yaml:"position" json:"position"`
	TradeLog               []TradeRecord  `yaml:"trade_log" json:"trade_log"`
	Orders                 []Order        `yaml:"orders" json:"orders"`
	Marks                  []Mark         `yaml:"marks" json:"marks"`
	Stats                  TradeStats     `yaml:"stats" json:"stats"`
	BarsProcessed          int            `yaml:"bars_processed" json:"bars_processed"`
	StaleBarsSkipped       int            `yaml:"stale_bars_skipped" json:"stale_bars_skipped"`
	// MalformedBarsSkipped counts bars with non-finite prices or volume.
	MalformedBarsSkipped int `yaml:"malformed_bars_skipped" json:"malformed_bars_skipped"`
	// Err is set by the optimizer when the combination failed to run.
	Err error `yaml:"-" json:"-"`
}

// FailedRunResult is the placeholder the optimizer records for a combination
// that errored. Its value is -Inf so it can never be selected.
func FailedRunResult(policy string, parameters map[string]any, err error) RunResult {
	return RunResult{
		Policy:                 policy,
		Parameters:             parameters,
		TerminalPortfolioValue: math.Inf(-1),
		Err:                    err,
	}
}

// Better reports whether r beats other. Equal values are not better, so the
// first seen result wins ties.
func (r RunResult) Better(other RunResult) bool {
	return r.TerminalPortfolioValue > other.TerminalPortfolioValue
}
