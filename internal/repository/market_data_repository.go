package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/yourorg/market-data-service/internal/config"
	"github.com/yourorg/market-data-service/internal/model"
	"github.com/yourorg/market-data-service/internal/utils"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// MarketDataRepository executes the retrieval operations through a session
// and shapes raw rows into the canonical tabular forms: strictly ascending
// unique timestamps for bars, ascending deduplicated dates for calendars.
type MarketDataRepository struct {
	session *Session
	catalog *QueryCatalog
	market  config.MarketConfig
	logger  *zap.Logger

	sessionOpenSec  int
	sessionCloseSec int
}

// NewMarketDataRepository creates a new market data repository
func NewMarketDataRepository(session *Session, market config.MarketConfig, logger *zap.Logger) *MarketDataRepository {
	openSec := parseClock(market.SessionOpen, 9*3600+30*60)
	closeSec := parseClock(market.SessionClose, 15*3600+59*60)

	return &MarketDataRepository{
		session: session,
		catalog: NewQueryCatalog(),
		market:  market,
		logger:  logger,
		// the close bound is inclusive of the whole minute
		sessionOpenSec:  openSec,
		sessionCloseSec: closeSec + 59,
	}
}

// parseClock converts "HH:MM" to seconds since midnight
func parseClock(s string, fallback int) int {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return fallback
	}
	return h*3600 + m*60
}

// GetTradingDays retrieves the distinct trading session dates seen in the
// primary index table, ascending
func (r *MarketDataRepository) GetTradingDays(ctx context.Context) ([]time.Time, error) {
	if len(r.market.IndexSymbols) == 0 {
		return nil, model.NewValidationError("symbol", "no index symbols configured")
	}
	query, args := r.catalog.TradingDays(r.market.IndexSymbols[0])

	var days []time.Time
	err := r.session.Execute(ctx, query, args, func(rows *sqlx.Rows) error {
		days = days[:0]
		for rows.Next() {
			var day time.Time
			if err := rows.Scan(&day); err != nil {
				return fmt.Errorf("failed to scan trading day: %w", err)
			}
			days = append(days, utils.NormalizeDate(day))
		}
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to get trading days", zap.Error(err))
		return nil, err
	}

	return dedupDates(days), nil
}

// GetExpiryDates retrieves the distinct option expiry dates for a root,
// ascending and deduplicated
func (r *MarketDataRepository) GetExpiryDates(ctx context.Context, symbol string) ([]time.Time, error) {
	query, args := r.catalog.ExpiryDates(symbol)

	var dates []time.Time
	err := r.session.Execute(ctx, query, args, func(rows *sqlx.Rows) error {
		dates = dates[:0]
		for rows.Next() {
			var expiry time.Time
			if err := rows.Scan(&expiry); err != nil {
				return fmt.Errorf("failed to scan expiry date: %w", err)
			}
			dates = append(dates, utils.NormalizeDate(expiry))
		}
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to get expiry dates",
			zap.Error(err),
			zap.String("symbol", symbol))
		return nil, err
	}

	return dedupDates(dates), nil
}

// GetIndexBars retrieves index bars over a date range, timestamp ascending
func (r *MarketDataRepository) GetIndexBars(ctx context.Context, q model.IndexQuery) ([]model.IndexBar, error) {
	query, args := r.catalog.IndexBars(q)

	var bars []model.IndexBar
	err := r.session.Execute(ctx, query, args, func(rows *sqlx.Rows) error {
		bars = bars[:0]
		for rows.Next() {
			var b model.IndexBar
			if err := rows.Scan(&b.Timestamp, &b.Open, &b.High, &b.Low, &b.Close); err != nil {
				return fmt.Errorf("failed to scan index bar: %w", err)
			}
			if n := len(bars); n > 0 && !bars[n-1].Timestamp.Before(b.Timestamp) {
				continue
			}
			bars = append(bars, b)
		}
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to get index bars",
			zap.Error(err),
			zap.String("symbol", q.Symbol))
		return nil, err
	}

	if len(bars) == 0 {
		return nil, model.NewNotFoundError("index", fmt.Sprintf(
			"symbol=%s start=%s end=%s",
			q.Symbol, utils.FormatDate(q.StartDate), utils.FormatDate(q.EndDate)))
	}

	return bars, nil
}

// GetOptionBars retrieves 1-minute option bars for one contract, restricted
// to the regular trading session window with timestamps rounded to whole
// seconds, ascending
func (r *MarketDataRepository) GetOptionBars(ctx context.Context, q model.OptionQuery) ([]model.OptionBar, error) {
	query, args := r.catalog.OptionBars(q)

	var bars []model.OptionBar
	err := r.session.Execute(ctx, query, args, func(rows *sqlx.Rows) error {
		bars = bars[:0]
		for rows.Next() {
			var b model.OptionBar
			if err := rows.Scan(&b.Timestamp, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
				return fmt.Errorf("failed to scan option bar: %w", err)
			}
			bars = append(bars, b)
		}
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to get option bars",
			zap.Error(err),
			zap.String("symbol", q.Symbol),
			zap.Float64("strike", q.Strike),
			zap.String("option_type", q.OptionType))
		return nil, err
	}

	if len(bars) == 0 {
		return nil, model.NewNotFoundError("options", fmt.Sprintf(
			"symbol=%s start=%s end=%s strike=%g expiry=%s type=%s",
			q.Symbol, utils.FormatDate(q.StartDate), utils.FormatDate(q.EndDate),
			q.Strike, utils.FormatDate(q.Expiry), q.OptionType))
	}

	return r.shapeOptionBars(bars, q), nil
}

// shapeOptionBars rounds timestamps to whole seconds, keeps only bars inside
// the regular session window, fills in the contract scope, and enforces a
// strictly ascending unique timestamp order
func (r *MarketDataRepository) shapeOptionBars(bars []model.OptionBar, q model.OptionQuery) []model.OptionBar {
	out := make([]model.OptionBar, 0, len(bars))
	for _, b := range bars {
		b.Timestamp = b.Timestamp.Round(time.Second)

		tod := b.Timestamp.Hour()*3600 + b.Timestamp.Minute()*60 + b.Timestamp.Second()
		if tod < r.sessionOpenSec || tod > r.sessionCloseSec {
			continue
		}

		b.OptionType = q.OptionType
		b.Strike = q.Strike
		b.Expiry = utils.NormalizeDate(q.Expiry)

		if n := len(out); n > 0 && !out[n-1].Timestamp.Before(b.Timestamp) {
			continue
		}
		out = append(out, b)
	}
	return out
}

// GetContractMonths retrieves the distinct contract months of a futures
// symbol, ascending
func (r *MarketDataRepository) GetContractMonths(ctx context.Context, symbol string) ([]string, error) {
	query, args := r.catalog.ContractMonths(symbol)

	var months []string
	err := r.session.Execute(ctx, query, args, func(rows *sqlx.Rows) error {
		months = months[:0]
		for rows.Next() {
			var month string
			if err := rows.Scan(&month); err != nil {
				return fmt.Errorf("failed to scan contract month: %w", err)
			}
			months = append(months, month)
		}
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to get contract months",
			zap.Error(err),
			zap.String("symbol", symbol))
		return nil, err
	}

	return months, nil
}

// GetFutureBars retrieves futures bars for one contract month over a date
// range, timestamp ascending
func (r *MarketDataRepository) GetFutureBars(ctx context.Context, q model.FuturesQuery) ([]model.FutureBar, error) {
	query, args := r.catalog.FutureBars(q)

	var bars []model.FutureBar
	err := r.session.Execute(ctx, query, args, func(rows *sqlx.Rows) error {
		bars = bars[:0]
		for rows.Next() {
			var b model.FutureBar
			if err := rows.Scan(&b.Timestamp, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
				return fmt.Errorf("failed to scan future bar: %w", err)
			}
			if n := len(bars); n > 0 && !bars[n-1].Timestamp.Before(b.Timestamp) {
				continue
			}
			bars = append(bars, b)
		}
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to get future bars",
			zap.Error(err),
			zap.String("symbol", q.Symbol),
			zap.String("contract_month", q.ContractMonth))
		return nil, err
	}

	if len(bars) == 0 {
		return nil, model.NewNotFoundError("futures", fmt.Sprintf(
			"symbol=%s start=%s end=%s contract_month=%s",
			q.Symbol, utils.FormatDate(q.StartDate), utils.FormatDate(q.EndDate), q.ContractMonth))
	}

	return bars, nil
}

// dedupDates removes consecutive duplicates from an ascending date sequence
func dedupDates(dates []time.Time) []time.Time {
	out := dates[:0]
	for _, d := range dates {
		if n := len(out); n > 0 && d.Equal(out[n-1]) {
			continue
		}
		out = append(out, d)
	}
	return out
}
