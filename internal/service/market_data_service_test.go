package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yourorg/market-data-service/internal/config"
	"github.com/yourorg/market-data-service/internal/model"
)

// mockStore records how often each retrieval operation was invoked
type mockStore struct {
	calls int

	tradingDays    []time.Time
	expiryDates    []time.Time
	indexBars      []model.IndexBar
	optionBars     []model.OptionBar
	contractMonths []string
	futureBars     []model.FutureBar
	err            error
}

func (m *mockStore) GetTradingDays(ctx context.Context) ([]time.Time, error) {
	m.calls++
	return m.tradingDays, m.err
}

func (m *mockStore) GetExpiryDates(ctx context.Context, symbol string) ([]time.Time, error) {
	m.calls++
	return m.expiryDates, m.err
}

func (m *mockStore) GetIndexBars(ctx context.Context, q model.IndexQuery) ([]model.IndexBar, error) {
	m.calls++
	return m.indexBars, m.err
}

func (m *mockStore) GetOptionBars(ctx context.Context, q model.OptionQuery) ([]model.OptionBar, error) {
	m.calls++
	return m.optionBars, m.err
}

func (m *mockStore) GetContractMonths(ctx context.Context, symbol string) ([]string, error) {
	m.calls++
	return m.contractMonths, m.err
}

func (m *mockStore) GetFutureBars(ctx context.Context, q model.FuturesQuery) ([]model.FutureBar, error) {
	m.calls++
	return m.futureBars, m.err
}

func testMarket() config.MarketConfig {
	return config.MarketConfig{
		IndexSymbols:   []string{"SPX"},
		OptionRoots:    []string{"SPXW"},
		FuturesSymbols: []string{"ES", "NQ"},
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestUnsupportedSymbolNeverReachesStore(t *testing.T) {
	store := &mockStore{}
	svc := NewMarketDataService(store, testMarket(), zap.NewNop())
	ctx := context.Background()

	_, err := svc.GetExpiryDates(ctx, "NIFTY")
	var validationErr *model.ValidationError
	require.ErrorAs(t, err, &validationErr)

	_, err = svc.GetIndexBars(ctx, model.IndexQuery{
		Symbol:    "DAX",
		StartDate: day(2024, 1, 2),
		EndDate:   day(2024, 1, 3),
	})
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Message, "supported")

	_, err = svc.GetContractMonths(ctx, "CL")
	require.ErrorAs(t, err, &validationErr)

	assert.Equal(t, 0, store.calls)
}

func TestSymbolMatchingIsCaseInsensitive(t *testing.T) {
	store := &mockStore{expiryDates: []time.Time{day(2024, 1, 5)}}
	svc := NewMarketDataService(store, testMarket(), zap.NewNop())

	dates, err := svc.GetExpiryDates(context.Background(), "spxw")
	require.NoError(t, err)
	assert.Len(t, dates, 1)
	assert.Equal(t, 1, store.calls)
}

func TestStartAfterEndIsRejected(t *testing.T) {
	store := &mockStore{}
	svc := NewMarketDataService(store, testMarket(), zap.NewNop())

	_, err := svc.GetIndexBars(context.Background(), model.IndexQuery{
		Symbol:    "SPX",
		StartDate: day(2024, 1, 5),
		EndDate:   day(2024, 1, 2),
	})

	var validationErr *model.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "start_date", validationErr.Field)
	assert.Equal(t, 0, store.calls)
}

func TestSameDayRangeIsAllowed(t *testing.T) {
	store := &mockStore{indexBars: []model.IndexBar{{}}}
	svc := NewMarketDataService(store, testMarket(), zap.NewNop())

	_, err := svc.GetIndexBars(context.Background(), model.IndexQuery{
		Symbol:    "SPX",
		StartDate: day(2024, 1, 2),
		EndDate:   day(2024, 1, 2),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, store.calls)
}

func TestOptionQueryValidation(t *testing.T) {
	store := &mockStore{}
	svc := NewMarketDataService(store, testMarket(), zap.NewNop())
	ctx := context.Background()

	base := model.OptionQuery{
		Symbol:     "SPXW",
		StartDate:  day(2024, 1, 2),
		EndDate:    day(2024, 1, 3),
		Strike:     4800,
		Expiry:     day(2024, 1, 5),
		OptionType: model.OptionTypeCall,
	}

	t.Run("bad option type", func(t *testing.T) {
		q := base
		q.OptionType = "CALL"
		_, err := svc.GetOptionBars(ctx, q)
		var validationErr *model.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "optiontype", validationErr.Field)
	})

	t.Run("non-positive strike", func(t *testing.T) {
		q := base
		q.Strike = 0
		_, err := svc.GetOptionBars(ctx, q)
		var validationErr *model.ValidationError
		require.ErrorAs(t, err, &validationErr)
	})

	assert.Equal(t, 0, store.calls)

	t.Run("valid query reaches store", func(t *testing.T) {
		store.optionBars = []model.OptionBar{{}}
		_, err := svc.GetOptionBars(ctx, base)
		require.NoError(t, err)
		assert.Equal(t, 1, store.calls)
	})
}

func TestFuturesQueryRequiresContractMonth(t *testing.T) {
	store := &mockStore{}
	svc := NewMarketDataService(store, testMarket(), zap.NewNop())

	_, err := svc.GetFutureBars(context.Background(), model.FuturesQuery{
		Symbol:    "ES",
		StartDate: day(2024, 3, 1),
		EndDate:   day(2024, 3, 8),
	})

	var validationErr *model.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, 0, store.calls)
}

func TestStoreErrorsPassThroughUnwrapped(t *testing.T) {
	store := &mockStore{err: assert.AnError}
	svc := NewMarketDataService(store, testMarket(), zap.NewNop())

	_, err := svc.GetTradingDays(context.Background())
	assert.ErrorIs(t, err, assert.AnError)
}
