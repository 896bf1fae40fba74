package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yourorg/market-data-service/internal/model"
)

// stubProvider returns canned results per operation
type stubProvider struct {
	tradingDays    []time.Time
	expiryDates    []time.Time
	indexBars      []model.IndexBar
	optionBars     []model.OptionBar
	contractMonths []string
	futureBars     []model.FutureBar
	err            error

	lastIndexQuery  *model.IndexQuery
	lastOptionQuery *model.OptionQuery
}

func (s *stubProvider) GetTradingDays(ctx context.Context) ([]time.Time, error) {
	return s.tradingDays, s.err
}

func (s *stubProvider) GetExpiryDates(ctx context.Context, symbol string) ([]time.Time, error) {
	return s.expiryDates, s.err
}

func (s *stubProvider) GetIndexBars(ctx context.Context, q model.IndexQuery) ([]model.IndexBar, error) {
	s.lastIndexQuery = &q
	return s.indexBars, s.err
}

func (s *stubProvider) GetOptionBars(ctx context.Context, q model.OptionQuery) ([]model.OptionBar, error) {
	s.lastOptionQuery = &q
	return s.optionBars, s.err
}

func (s *stubProvider) GetContractMonths(ctx context.Context, symbol string) ([]string, error) {
	return s.contractMonths, s.err
}

func (s *stubProvider) GetFutureBars(ctx context.Context, q model.FuturesQuery) ([]model.FutureBar, error) {
	return s.futureBars, s.err
}

func newTestRouter(provider *stubProvider) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewMarketDataHandler(provider, zap.NewNop())

	router := gin.New()
	router.GET("/market-data/trading-days", h.GetTradingDays)
	router.GET("/market-data/expiry-dates", h.GetExpiryDates)
	router.GET("/market-data/index", h.GetIndexBars)
	router.GET("/market-data/options", h.GetOptionBars)
	router.GET("/market-data/futures/contract-months", h.GetContractMonths)
	router.GET("/market-data/futures", h.GetFutureBars)
	return router
}

func doGet(t *testing.T, router *gin.Engine, url string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	router.ServeHTTP(w, req)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestGetTradingDaysResponse(t *testing.T) {
	provider := &stubProvider{tradingDays: []time.Time{
		time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
	}}
	router := newTestRouter(provider)

	w, body := doGet(t, router, "/market-data/trading-days")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), body["count"])
	assert.Equal(t, []interface{}{"2024-01-02", "2024-01-03"}, body["data"])
}

func TestGetExpiryDatesRequiresSymbol(t *testing.T) {
	router := newTestRouter(&stubProvider{})

	w, body := doGet(t, router, "/market-data/expiry-dates")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, body["error"], "Symbol")
}

func TestGetIndexBarsParsesDates(t *testing.T) {
	provider := &stubProvider{indexBars: []model.IndexBar{{}}}
	router := newTestRouter(provider)

	w, _ := doGet(t, router, "/market-data/index?symbol=SPX&start_date=2024-01-02&end_date=2024-01-05")
	assert.Equal(t, http.StatusOK, w.Code)

	require.NotNil(t, provider.lastIndexQuery)
	assert.Equal(t, "SPX", provider.lastIndexQuery.Symbol)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), provider.lastIndexQuery.StartDate)
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), provider.lastIndexQuery.EndDate)
}

func TestGetIndexBarsRejectsBadDate(t *testing.T) {
	provider := &stubProvider{}
	router := newTestRouter(provider)

	w, body := doGet(t, router, "/market-data/index?symbol=SPX&start_date=01/02/2024&end_date=2024-01-05")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, body["error"], "start_date")
	assert.Nil(t, provider.lastIndexQuery)
}

func TestValidationErrorMapsTo400(t *testing.T) {
	provider := &stubProvider{err: model.NewValidationError("symbol", "not supported")}
	router := newTestRouter(provider)

	w, body := doGet(t, router, "/market-data/index?symbol=DAX&start_date=2024-01-02&end_date=2024-01-05")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, body["error"], "symbol")
}

func TestNotFoundErrorMapsTo404(t *testing.T) {
	provider := &stubProvider{err: model.NewNotFoundError("index", "symbol=SPX")}
	router := newTestRouter(provider)

	w, body := doGet(t, router, "/market-data/index?symbol=SPX&start_date=2024-01-02&end_date=2024-01-05")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, body["error"], "not found")
}

func TestUnknownErrorMapsTo500(t *testing.T) {
	provider := &stubProvider{err: assert.AnError}
	router := newTestRouter(provider)

	w, _ := doGet(t, router, "/market-data/trading-days")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGetOptionBarsQueryParsing(t *testing.T) {
	provider := &stubProvider{optionBars: []model.OptionBar{{}}}
	router := newTestRouter(provider)

	w, _ := doGet(t, router, "/market-data/options?symbol=SPXW&start_date=2024-01-02&end_date=2024-01-02&strike=4800&expiry=2024-01-05&option_type=CE")
	assert.Equal(t, http.StatusOK, w.Code)

	require.NotNil(t, provider.lastOptionQuery)
	assert.Equal(t, 4800.0, provider.lastOptionQuery.Strike)
	assert.Equal(t, "CE", provider.lastOptionQuery.OptionType)
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), provider.lastOptionQuery.Expiry)
}

func TestGetOptionBarsRejectsBadStrike(t *testing.T) {
	provider := &stubProvider{}
	router := newTestRouter(provider)

	w, body := doGet(t, router, "/market-data/options?symbol=SPXW&start_date=2024-01-02&end_date=2024-01-02&strike=abc&expiry=2024-01-05&option_type=CE")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, body["error"], "strike")
	assert.Nil(t, provider.lastOptionQuery)
}

func TestGetContractMonthsResponse(t *testing.T) {
	provider := &stubProvider{contractMonths: []string{"2024-03", "2024-06"}}
	router := newTestRouter(provider)

	w, body := doGet(t, router, "/market-data/futures/contract-months?symbol=ES")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []interface{}{"2024-03", "2024-06"}, body["data"])
}
