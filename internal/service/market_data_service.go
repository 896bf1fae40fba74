package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yourorg/market-data-service/internal/config"
	"github.com/yourorg/market-data-service/internal/model"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// MarketDataStore is the retrieval surface provided by the repository layer
type MarketDataStore interface {
	GetTradingDays(ctx context.Context) ([]time.Time, error)
	GetExpiryDates(ctx context.Context, symbol string) ([]time.Time, error)
	GetIndexBars(ctx context.Context, q model.IndexQuery) ([]model.IndexBar, error)
	GetOptionBars(ctx context.Context, q model.OptionQuery) ([]model.OptionBar, error)
	GetContractMonths(ctx context.Context, symbol string) ([]string, error)
	GetFutureBars(ctx context.Context, q model.FuturesQuery) ([]model.FutureBar, error)
}

// MarketDataService validates retrieval parameters against the configured
// symbol sets before any store access and delegates to the store. Validation
// failures short-circuit without touching the session.
type MarketDataService struct {
	store    MarketDataStore
	market   config.MarketConfig
	validate *validator.Validate
	logger   *zap.Logger
}

// NewMarketDataService creates a new market data service
func NewMarketDataService(store MarketDataStore, market config.MarketConfig, logger *zap.Logger) *MarketDataService {
	return &MarketDataService{
		store:    store,
		market:   market,
		validate: validator.New(),
		logger:   logger,
	}
}

// GetTradingDays retrieves the trading calendar of the primary index
func (s *MarketDataService) GetTradingDays(ctx context.Context) ([]time.Time, error) {
	return s.store.GetTradingDays(ctx)
}

// GetExpiryDates retrieves expiry dates for a supported option root
func (s *MarketDataService) GetExpiryDates(ctx context.Context, symbol string) ([]time.Time, error) {
	if err := s.checkSymbol(symbol, s.market.OptionRoots, "option root"); err != nil {
		return nil, err
	}
	return s.store.GetExpiryDates(ctx, symbol)
}

// GetIndexBars retrieves index bars for a supported index symbol
func (s *MarketDataService) GetIndexBars(ctx context.Context, q model.IndexQuery) ([]model.IndexBar, error) {
	if err := s.checkStruct(q); err != nil {
		return nil, err
	}
	if err := s.checkSymbol(q.Symbol, s.market.IndexSymbols, "index symbol"); err != nil {
		return nil, err
	}
	if err := checkDateOrder(q.StartDate, q.EndDate); err != nil {
		return nil, err
	}
	return s.store.GetIndexBars(ctx, q)
}

// GetOptionBars retrieves 1-minute option bars for a supported option root
func (s *MarketDataService) GetOptionBars(ctx context.Context, q model.OptionQuery) ([]model.OptionBar, error) {
	if err := s.checkStruct(q); err != nil {
		return nil, err
	}
	if err := s.checkSymbol(q.Symbol, s.market.OptionRoots, "option root"); err != nil {
		return nil, err
	}
	if err := checkDateOrder(q.StartDate, q.EndDate); err != nil {
		return nil, err
	}

	s.logger.Info("Fetching option data",
		zap.String("symbol", q.Symbol),
		zap.Time("start", q.StartDate),
		zap.Time("end", q.EndDate),
		zap.Time("expiry", q.Expiry))

	return s.store.GetOptionBars(ctx, q)
}

// GetContractMonths retrieves contract months for a supported futures symbol
func (s *MarketDataService) GetContractMonths(ctx context.Context, symbol string) ([]string, error) {
	if err := s.checkSymbol(symbol, s.market.FuturesSymbols, "futures symbol"); err != nil {
		return nil, err
	}
	return s.store.GetContractMonths(ctx, symbol)
}

// GetFutureBars retrieves futures bars for one contract month
func (s *MarketDataService) GetFutureBars(ctx context.Context, q model.FuturesQuery) ([]model.FutureBar, error) {
	if err := s.checkStruct(q); err != nil {
		return nil, err
	}
	if err := s.checkSymbol(q.Symbol, s.market.FuturesSymbols, "futures symbol"); err != nil {
		return nil, err
	}
	if err := checkDateOrder(q.StartDate, q.EndDate); err != nil {
		return nil, err
	}
	return s.store.GetFutureBars(ctx, q)
}

// checkSymbol verifies membership in a configured symbol set
func (s *MarketDataService) checkSymbol(symbol string, supported []string, kind string) error {
	for _, candidate := range supported {
		if strings.EqualFold(symbol, candidate) {
			return nil
		}
	}
	return model.NewValidationError("symbol", fmt.Sprintf(
		"%q is not a supported %s (supported: %s)",
		symbol, kind, strings.Join(supported, ", ")))
}

// checkStruct runs tag-based validation on a parameter struct
func (s *MarketDataService) checkStruct(q interface{}) error {
	err := s.validate.Struct(q)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return model.NewValidationError(strings.ToLower(fe.Field()), fmt.Sprintf(
			"failed %q validation", fe.Tag()))
	}
	return model.NewValidationError("", err.Error())
}

func checkDateOrder(start, end time.Time) error {
	if start.After(end) {
		return model.NewValidationError("start_date", "must not be after end_date")
	}
	return nil
}
