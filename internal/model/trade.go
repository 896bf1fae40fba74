package model

import (
	"time"
)

// TradeRecord represents a single row of a trade log. Entry time, exit time,
// position side and P&L in points are required; duration and drawdown are
// optional columns.
type TradeRecord struct {
	EntryTime time.Time `json:"entry_time"`
	ExitTime  time.Time `json:"exit_time"`
	Position  string    `json:"position"`
	PnL       float64   `json:"pnl"`
	Duration  *float64  `json:"duration,omitempty"`
	Drawdown  *float64  `json:"drawdown,omitempty"`
}

// EquityPoint represents the account value recorded at a trade's exit date
type EquityPoint struct {
	Date   time.Time `json:"date"`
	Equity float64   `json:"equity"`
}

// ReturnPoint represents the simple percentage return between two successive
// equity points. The first return is computed against initial capital.
type ReturnPoint struct {
	Date   time.Time `json:"date"`
	Return float64   `json:"return"`
}

// PerformanceMetrics represents summary statistics derived from a trade log
// and its equity curve
type PerformanceMetrics struct {
	TotalTrades      int     `json:"total_trades"`
	WinningTrades    int     `json:"winning_trades"`
	LosingTrades     int     `json:"losing_trades"`
	LongTrades       int     `json:"long_trades"`
	ShortTrades      int     `json:"short_trades"`
	WinRate          float64 `json:"win_rate"`
	ProfitFactor     float64 `json:"profit_factor"`
	SharpeRatio      float64 `json:"sharpe_ratio"`
	MaxDrawdown      float64 `json:"max_drawdown"`
	TotalPnLPoints   float64 `json:"total_pnl_points"`
	TotalPnLDollars  float64 `json:"total_pnl_dollars"`
	FinalCapital     float64 `json:"final_capital"`
	TotalReturn      float64 `json:"total_return"`
	AverageWin       float64 `json:"average_win"`
	AverageLoss      float64 `json:"average_loss"`
	LargestWin       float64 `json:"largest_win"`
	LargestLoss      float64 `json:"largest_loss"`
}

// PerformanceReport is the full result returned for a trade log analysis
type PerformanceReport struct {
	InitialCapital float64            `json:"initial_capital"`
	PointValue     float64            `json:"point_value"`
	Equity         []EquityPoint      `json:"equity"`
	Returns        []ReturnPoint      `json:"returns"`
	Metrics        PerformanceMetrics `json:"metrics"`
}
