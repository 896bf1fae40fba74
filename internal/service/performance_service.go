package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/yourorg/market-data-service/internal/model"
	"github.com/yourorg/market-data-service/internal/utils"

	"go.uber.org/zap"
)

// tradeLogColumns are the required columns of a trade log
var tradeLogColumns = []string{"entry_time", "exit_time", "position", "pnl"}

// timestampLayouts accepted for trade log time columns
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02",
}

// PerformanceService converts a trade log into an equity curve, a return
// series, and summary metrics
type PerformanceService struct {
	periodsPerYear float64
	logger         *zap.Logger
}

// NewPerformanceService creates a new performance service. periodsPerYear is
// the annualization factor for the Sharpe ratio (252 for daily-equivalent
// series).
func NewPerformanceService(periodsPerYear float64, logger *zap.Logger) *PerformanceService {
	if periodsPerYear <= 0 {
		periodsPerYear = 252
	}
	return &PerformanceService{
		periodsPerYear: periodsPerYear,
		logger:         logger,
	}
}

// LoadTradeLog parses a CSV trade log. The header must contain entry_time,
// exit_time, position and pnl; duration and drawdown are optional.
func LoadTradeLog(r io.Reader) ([]model.TradeRecord, error) {
	reader := csv.NewReader(r)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, model.NewValidationError("trade_log", err.Error())
	}
	if len(records) == 0 {
		return nil, &model.SchemaError{Missing: tradeLogColumns}
	}

	header := records[0]
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}

	var missing []string
	for _, col := range tradeLogColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &model.SchemaError{Missing: missing}
	}

	trades := make([]model.TradeRecord, 0, len(records)-1)
	for n, row := range records[1:] {
		entry, err := parseTimestamp(row[index["entry_time"]])
		if err != nil {
			return nil, model.NewValidationError("trade_log", fmt.Sprintf("row %d: bad entry_time: %v", n+1, err))
		}
		exit, err := parseTimestamp(row[index["exit_time"]])
		if err != nil {
			return nil, model.NewValidationError("trade_log", fmt.Sprintf("row %d: bad exit_time: %v", n+1, err))
		}
		pnl, err := strconv.ParseFloat(strings.TrimSpace(row[index["pnl"]]), 64)
		if err != nil {
			return nil, model.NewValidationError("trade_log", fmt.Sprintf("row %d: bad pnl: %v", n+1, err))
		}

		trade := model.TradeRecord{
			EntryTime: entry,
			ExitTime:  exit,
			Position:  strings.TrimSpace(row[index["position"]]),
			PnL:       pnl,
		}
		if i, ok := index["duration"]; ok && i < len(row) {
			if v, err := strconv.ParseFloat(strings.TrimSpace(row[i]), 64); err == nil {
				trade.Duration = &v
			}
		}
		if i, ok := index["drawdown"]; ok && i < len(row) {
			if v, err := strconv.ParseFloat(strings.TrimSpace(row[i]), 64); err == nil {
				trade.Drawdown = &v
			}
		}
		trades = append(trades, trade)
	}

	return trades, nil
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
}

// BuildEquitySeries converts a trade log into a cumulative equity series and
// a simple percentage return series. Equity starts from initialCapital and
// each trade adds pnl * pointValue to the running total, recorded at its
// exit date in exit-time order. The first return is computed against initial
// capital so both series have the same length.
func (s *PerformanceService) BuildEquitySeries(trades []model.TradeRecord, initialCapital, pointValue float64) ([]model.EquityPoint, []model.ReturnPoint, error) {
	if len(trades) == 0 {
		return nil, nil, model.NewValidationError("trades", "trade log is empty")
	}
	if initialCapital <= 0 {
		return nil, nil, model.NewValidationError("initial_capital", "must be positive")
	}

	sorted := make([]model.TradeRecord, len(trades))
	copy(sorted, trades)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ExitTime.Before(sorted[j].ExitTime)
	})

	equity := make([]model.EquityPoint, 0, len(sorted))
	running := initialCapital
	for _, trade := range sorted {
		running += trade.PnL * pointValue
		equity = append(equity, model.EquityPoint{
			Date:   utils.NormalizeDate(trade.ExitTime),
			Equity: running,
		})
	}

	returns := make([]model.ReturnPoint, len(equity))
	prev := initialCapital
	for i, point := range equity {
		returns[i] = model.ReturnPoint{
			Date:   point.Date,
			Return: (point.Equity - prev) / prev,
		}
		prev = point.Equity
	}

	return equity, returns, nil
}

// Summarize derives summary metrics from a trade log and its equity curve
func (s *PerformanceService) Summarize(trades []model.TradeRecord, equity []model.EquityPoint, returns []model.ReturnPoint, initialCapital, pointValue float64) model.PerformanceMetrics {
	m := model.PerformanceMetrics{
		TotalTrades:  len(trades),
		FinalCapital: initialCapital,
	}

	var grossWin, grossLoss float64
	for _, trade := range trades {
		dollars := trade.PnL * pointValue
		m.TotalPnLPoints += trade.PnL
		m.TotalPnLDollars += dollars

		switch {
		case trade.PnL > 0:
			m.WinningTrades++
			grossWin += dollars
			if dollars > m.LargestWin {
				m.LargestWin = dollars
			}
		case trade.PnL < 0:
			m.LosingTrades++
			grossLoss += -dollars
			if dollars < m.LargestLoss {
				m.LargestLoss = dollars
			}
		}

		switch {
		case strings.EqualFold(trade.Position, "long"):
			m.LongTrades++
		case strings.EqualFold(trade.Position, "short"):
			m.ShortTrades++
		}
	}

	if m.TotalTrades > 0 {
		m.WinRate = float64(m.WinningTrades) / float64(m.TotalTrades)
	}
	if m.WinningTrades > 0 {
		m.AverageWin = grossWin / float64(m.WinningTrades)
	}
	if m.LosingTrades > 0 {
		m.AverageLoss = -grossLoss / float64(m.LosingTrades)
	}
	if grossLoss > 0 {
		m.ProfitFactor = grossWin / grossLoss
	}

	if len(equity) > 0 {
		m.FinalCapital = equity[len(equity)-1].Equity
		m.TotalReturn = (m.FinalCapital - initialCapital) / initialCapital
		m.MaxDrawdown = maxDrawdown(equity, initialCapital)
	}
	m.SharpeRatio = s.sharpeRatio(returns)

	return m
}

// BuildReport runs the full trade log analysis
func (s *PerformanceService) BuildReport(trades []model.TradeRecord, initialCapital, pointValue float64) (*model.PerformanceReport, error) {
	equity, returns, err := s.BuildEquitySeries(trades, initialCapital, pointValue)
	if err != nil {
		return nil, err
	}

	report := &model.PerformanceReport{
		InitialCapital: initialCapital,
		PointValue:     pointValue,
		Equity:         equity,
		Returns:        returns,
		Metrics:        s.Summarize(trades, equity, returns, initialCapital, pointValue),
	}

	s.logger.Info("Trade log analyzed",
		zap.Int("trades", len(trades)),
		zap.Float64("final_capital", report.Metrics.FinalCapital),
		zap.Float64("total_return", report.Metrics.TotalReturn))

	return report, nil
}

// maxDrawdown computes the largest peak-to-trough decline of the equity
// curve as a fraction of the peak
func maxDrawdown(equity []model.EquityPoint, initialCapital float64) float64 {
	peak := initialCapital
	var worst float64
	for _, point := range equity {
		if point.Equity > peak {
			peak = point.Equity
		}
		if dd := (peak - point.Equity) / peak; dd > worst {
			worst = dd
		}
	}
	return worst
}

// sharpeRatio annualizes the mean/stddev of the simple return series
func (s *PerformanceService) sharpeRatio(returns []model.ReturnPoint) float64 {
	if len(returns) < 2 {
		return 0
	}

	var sum float64
	for _, r := range returns {
		sum += r.Return
	}
	mean := sum / float64(len(returns))

	var variance float64
	for _, r := range returns {
		variance += (r.Return - mean) * (r.Return - mean)
	}
	variance /= float64(len(returns) - 1)

	std := math.Sqrt(variance)
	if std == 0 {
		return 0
	}
	return mean / std * math.Sqrt(s.periodsPerYear)
}
