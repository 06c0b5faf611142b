package types

import (
	"math"
	"os"
	"time"

	"github.com/rxtech-lab/argo-signals/pkg/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type TradeHoldingTime struct {
	// Minimum holding time of a trade in seconds
	Min int `yaml:"min" json:"min"`
	// Maximum holding time of a trade in seconds
	Max int `yaml:"max" json:"max"`
	// Average holding time of a trade in seconds
	Avg int `yaml:"avg" json:"avg"`
}

type TradePnl struct {
	// Realized PnL. Sum of the net pnl of all closed trades.
	RealizedPnL float64 `yaml:"realized_pnl" json:"realized_pnl"`
	// Unrealized PnL of the position still open at the end of the run.
	UnrealizedPnL float64 `yaml:"unrealized_pnl" json:"unrealized_pnl"`
	// Total PnL. By adding RealizedPnL and UnrealizedPnL.
	TotalPnL float64 `yaml:"total_pnl" json:"total_pnl"`
	// Maximum loss. The minimum net pnl of all closed trades.
	MaximumLoss float64 `yaml:"maximum_loss" json:"maximum_loss"`
	// Maximum profit. The maximum net pnl of all closed trades.
	MaximumProfit float64 `yaml:"maximum_profit" json:"maximum_profit"`
}

type TradeResult struct {
	// Count of all closed trades.
	NumberOfTrades int `yaml:"number_of_trades" json:"number_of_trades"`
	// Count of winning trades that has positive net pnl.
	NumberOfWinningTrades int `yaml:"number_of_winning_trades" json:"number_of_winning_trades"`
	// Count of losing trades that has negative net pnl.
	NumberOfLosingTrades int `yaml:"number_of_losing_trades" json:"number_of_losing_trades"`
	// Win rate.
	WinRate float64 `yaml:"win_rate" json:"win_rate"`
	// Maximum drawdown of realized equity, as a fraction of the peak.
	MaxDrawdown float64 `yaml:"max_drawdown" json:"max_drawdown"`
}

type TradeStats struct {
	// ID is the unique identifier for this backtest run.
	ID string `yaml:"id" json:"id"`
	// Timestamp is when this backtest run was executed.
	Timestamp time.Time `yaml:"timestamp" json:"timestamp"`
	// Policy is the signal policy kind used for the run.
	Policy string `yaml:"policy" json:"policy"`
	// Parameters are the policy parameters of the run.
	Parameters map[string]any `yaml:"parameters" json:"parameters"`
	// Result of all trades.
	TradeResult TradeResult `yaml:"trade_result" json:"trade_result"`
	// Total fees.
	TotalFees float64 `yaml:"total_fees" json:"total_fees"`
	// Holding time of all trades.
	TradeHoldingTime TradeHoldingTime `yaml:"trade_holding_time" json:"trade_holding_time"`
	// PnL of all trades.
	TradePnl TradePnl `yaml:"trade_pnl" json:"trade_pnl"`
	// Buy and hold PnL of the initial capital over the same bars.
	BuyAndHoldPnl float64 `yaml:"buy_and_hold_pnl" json:"buy_and_hold_pnl"`
	// InitialCapital is the starting cash.
	InitialCapital float64 `yaml:"initial_capital" json:"initial_capital"`
	// TerminalPortfolioValue is cash plus the open position marked at the last close.
	TerminalPortfolioValue float64 `yaml:"terminal_portfolio_value" json:"terminal_portfolio_value"`
	// StaleBarsSkipped counts bars whose decision step was skipped by the live-lag filter.
	StaleBarsSkipped int `yaml:"stale_bars_skipped" json:"stale_bars_skipped"`
	// TradesFilePath is the path to the trades parquet file.
	TradesFilePath string `yaml:"trades_file_path" json:"trades_file_path"`
	// DataPath is the path to the market data used for this backtest.
	DataPath string `yaml:"data_path" json:"data_path"`
}

// CalculateTradeStats summarises a trade log. firstClose and lastClose are the
// closes of the first and last bar of the run.
func CalculateTradeStats(trades []TradeRecord, position PositionState, initialCapital, firstClose, lastClose float64) TradeStats {
	stats := TradeStats{
		InitialCapital: initialCapital,
	}

	realized := decimal.Zero
	fees := decimal.Zero
	equity := decimal.NewFromFloat(initialCapital)
	peak := equity
	maxDrawdown := 0.0

	var totalHolding time.Duration

	for i, trade := range trades {
		net := decimal.NewFromFloat(trade.NetPnL())
		realized = realized.Add(net)
		fees = fees.Add(decimal.NewFromFloat(trade.Fees))

		netFloat, _ := net.Float64()
		if i == 0 {
			stats.TradePnl.MaximumLoss = netFloat
			stats.TradePnl.MaximumProfit = netFloat
		} else {
			stats.TradePnl.MaximumLoss = math.Min(stats.TradePnl.MaximumLoss, netFloat)
			stats.TradePnl.MaximumProfit = math.Max(stats.TradePnl.MaximumProfit, netFloat)
		}

		switch {
		case net.IsPositive():
			stats.TradeResult.NumberOfWinningTrades++
		case net.IsNegative():
			stats.TradeResult.NumberOfLosingTrades++
		}

		equity = equity.Add(net)
		if equity.GreaterThan(peak) {
			peak = equity
		}

		if peak.IsPositive() {
			drawdown, _ := peak.Sub(equity).Div(peak).Float64()
			maxDrawdown = math.Max(maxDrawdown, drawdown)
		}

		holding := trade.HoldingTime()
		seconds := int(holding.Seconds())

		if i == 0 || seconds < stats.TradeHoldingTime.Min {
			stats.TradeHoldingTime.Min = seconds
		}

		if seconds > stats.TradeHoldingTime.Max {
			stats.TradeHoldingTime.Max = seconds
		}

		totalHolding += holding
	}

	stats.TradeResult.NumberOfTrades = len(trades)
	stats.TradeResult.MaxDrawdown = maxDrawdown

	if len(trades) > 0 {
		stats.TradeResult.WinRate = float64(stats.TradeResult.NumberOfWinningTrades) / float64(len(trades))
		stats.TradeHoldingTime.Avg = int(totalHolding.Seconds()) / len(trades)
	}

	if position.IsOpen {
		unrealized, _ := decimal.NewFromFloat(lastClose).
			Sub(decimal.NewFromFloat(position.EntryPrice)).
			Mul(decimal.NewFromFloat(position.Size)).
			Sub(decimal.NewFromFloat(position.EntryFee)).
			Float64()
		stats.TradePnl.UnrealizedPnL = unrealized
		fees = fees.Add(decimal.NewFromFloat(position.EntryFee))
	}

	stats.TradePnl.RealizedPnL, _ = realized.Float64()
	stats.TradePnl.TotalPnL, _ = realized.Add(decimal.NewFromFloat(stats.TradePnl.UnrealizedPnL)).Float64()
	stats.TotalFees, _ = fees.Float64()

	if firstClose > 0 {
		stats.BuyAndHoldPnl, _ = decimal.NewFromFloat(initialCapital).
			Div(decimal.NewFromFloat(firstClose)).
			Mul(decimal.NewFromFloat(lastClose).Sub(decimal.NewFromFloat(firstClose))).
			Float64()
	}

	return stats
}

func WriteTradeStats(path string, stats []TradeStats) error {
	// Marshal the struct to YAML
	data, err := yaml.Marshal(stats)
	if err != nil {
		return errors.Wrap(errors.ErrCodeBacktestWriteFailed, "failed to marshal trade stats to YAML", err)
	}

	// Write the YAML data to the file
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeBacktestWriteFailed, "failed to write trade stats to file", err)
	}

	return nil
}
