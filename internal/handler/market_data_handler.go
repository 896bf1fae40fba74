package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/yourorg/market-data-service/internal/model"
	"github.com/yourorg/market-data-service/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MarketDataProvider is what the market data handler needs from the service
// layer
type MarketDataProvider interface {
	GetTradingDays(ctx context.Context) ([]time.Time, error)
	GetExpiryDates(ctx context.Context, symbol string) ([]time.Time, error)
	GetIndexBars(ctx context.Context, q model.IndexQuery) ([]model.IndexBar, error)
	GetOptionBars(ctx context.Context, q model.OptionQuery) ([]model.OptionBar, error)
	GetContractMonths(ctx context.Context, symbol string) ([]string, error)
	GetFutureBars(ctx context.Context, q model.FuturesQuery) ([]model.FutureBar, error)
}

// MarketDataHandler handles market data HTTP requests
type MarketDataHandler struct {
	marketDataService MarketDataProvider
	logger            *zap.Logger
}

// NewMarketDataHandler creates a new market data handler
func NewMarketDataHandler(marketDataService MarketDataProvider, logger *zap.Logger) *MarketDataHandler {
	return &MarketDataHandler{
		marketDataService: marketDataService,
		logger:            logger,
	}
}

// GetTradingDays handles retrieving the trading day calendar
// GET /api/v1/market-data/trading-days
func (h *MarketDataHandler) GetTradingDays(c *gin.Context) {
	days, err := h.marketDataService.GetTradingDays(c.Request.Context())
	if err != nil {
		h.sendError(c, err, "Failed to get trading days")
		return
	}

	utils.SendListResponse(c, http.StatusOK, formatDates(days), len(days))
}

// GetExpiryDates handles retrieving option expiry dates
// GET /api/v1/market-data/expiry-dates
func (h *MarketDataHandler) GetExpiryDates(c *gin.Context) {
	symbol := c.Query("symbol")
	if symbol == "" {
		utils.SendErrorResponse(c, http.StatusBadRequest, "Symbol is required")
		return
	}

	dates, err := h.marketDataService.GetExpiryDates(c.Request.Context(), symbol)
	if err != nil {
		h.sendError(c, err, "Failed to get expiry dates")
		return
	}

	utils.SendListResponse(c, http.StatusOK, formatDates(dates), len(dates))
}

// GetIndexBars handles retrieving index bars for a date range
// GET /api/v1/market-data/index
func (h *MarketDataHandler) GetIndexBars(c *gin.Context) {
	var query model.IndexQuery
	query.Symbol = c.Query("symbol")

	var ok bool
	if query.StartDate, ok = h.parseDateParam(c, "start_date"); !ok {
		return
	}
	if query.EndDate, ok = h.parseDateParam(c, "end_date"); !ok {
		return
	}

	bars, err := h.marketDataService.GetIndexBars(c.Request.Context(), query)
	if err != nil {
		h.sendError(c, err, "Failed to get index data")
		return
	}

	utils.SendListResponse(c, http.StatusOK, bars, len(bars))
}

// GetOptionBars handles retrieving 1-minute option bars for a contract
// GET /api/v1/market-data/options
func (h *MarketDataHandler) GetOptionBars(c *gin.Context) {
	var query model.OptionQuery
	query.Symbol = c.Query("symbol")
	query.OptionType = c.Query("option_type")

	var ok bool
	if query.StartDate, ok = h.parseDateParam(c, "start_date"); !ok {
		return
	}
	if query.EndDate, ok = h.parseDateParam(c, "end_date"); !ok {
		return
	}
	if query.Expiry, ok = h.parseDateParam(c, "expiry"); !ok {
		return
	}

	strike, err := strconv.ParseFloat(c.Query("strike"), 64)
	if err != nil {
		utils.SendErrorResponse(c, http.StatusBadRequest, "Invalid strike")
		return
	}
	query.Strike = strike

	bars, err := h.marketDataService.GetOptionBars(c.Request.Context(), query)
	if err != nil {
		h.sendError(c, err, "Failed to get option data")
		return
	}

	utils.SendListResponse(c, http.StatusOK, bars, len(bars))
}

// GetContractMonths handles retrieving available futures contract months
// GET /api/v1/market-data/futures/contract-months
func (h *MarketDataHandler) GetContractMonths(c *gin.Context) {
	symbol := c.Query("symbol")
	if symbol == "" {
		utils.SendErrorResponse(c, http.StatusBadRequest, "Symbol is required")
		return
	}

	months, err := h.marketDataService.GetContractMonths(c.Request.Context(), symbol)
	if err != nil {
		h.sendError(c, err, "Failed to get contract months")
		return
	}

	utils.SendListResponse(c, http.StatusOK, months, len(months))
}

// GetFutureBars handles retrieving futures bars for a contract month
// GET /api/v1/market-data/futures
func (h *MarketDataHandler) GetFutureBars(c *gin.Context) {
	var query model.FuturesQuery
	query.Symbol = c.Query("symbol")
	query.ContractMonth = c.Query("contract_month")

	var ok bool
	if query.StartDate, ok = h.parseDateParam(c, "start_date"); !ok {
		return
	}
	if query.EndDate, ok = h.parseDateParam(c, "end_date"); !ok {
		return
	}

	bars, err := h.marketDataService.GetFutureBars(c.Request.Context(), query)
	if err != nil {
		h.sendError(c, err, "Failed to get futures data")
		return
	}

	utils.SendListResponse(c, http.StatusOK, bars, len(bars))
}

// parseDateParam parses a required date query parameter. It writes the error
// response itself and reports success via the second return value.
func (h *MarketDataHandler) parseDateParam(c *gin.Context, name string) (time.Time, bool) {
	value := c.Query(name)
	if value == "" {
		utils.SendErrorResponse(c, http.StatusBadRequest, name+" is required")
		return time.Time{}, false
	}

	t, err := utils.ParseDate(value)
	if err != nil {
		utils.SendErrorResponse(c, http.StatusBadRequest, "Invalid "+name+" format. Use YYYY-MM-DD or RFC3339")
		return time.Time{}, false
	}
	return t, true
}

// sendError maps service errors to HTTP status codes
func (h *MarketDataHandler) sendError(c *gin.Context, err error, message string) {
	var validationErr *model.ValidationError
	if errors.As(err, &validationErr) {
		utils.SendErrorResponse(c, http.StatusBadRequest, validationErr.Error())
		return
	}

	var notFoundErr *model.NotFoundError
	if errors.As(err, &notFoundErr) {
		utils.SendErrorResponse(c, http.StatusNotFound, notFoundErr.Error())
		return
	}

	h.logger.Error(message, zap.Error(err), zap.String("path", c.FullPath()))
	utils.SendErrorResponse(c, http.StatusInternalServerError, message)
}

func formatDates(dates []time.Time) []string {
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = utils.FormatDate(d)
	}
	return out
}
