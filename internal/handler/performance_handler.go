package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/yourorg/market-data-service/internal/config"
	"github.com/yourorg/market-data-service/internal/model"
	"github.com/yourorg/market-data-service/internal/service"
	"github.com/yourorg/market-data-service/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PerformanceHandler handles trade log analysis HTTP requests
type PerformanceHandler struct {
	performanceService *service.PerformanceService
	eventService       *service.EventService
	market             config.MarketConfig
	logger             *zap.Logger
}

// NewPerformanceHandler creates a new performance handler
func NewPerformanceHandler(performanceService *service.PerformanceService, eventService *service.EventService, market config.MarketConfig, logger *zap.Logger) *PerformanceHandler {
	return &PerformanceHandler{
		performanceService: performanceService,
		eventService:       eventService,
		market:             market,
		logger:             logger,
	}
}

// BuildReport handles analyzing an uploaded CSV trade log
// POST /api/v1/performance/report
func (h *PerformanceHandler) BuildReport(c *gin.Context) {
	fileHeader, err := c.FormFile("trade_log")
	if err != nil {
		utils.SendErrorResponse(c, http.StatusBadRequest, "trade_log file is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.logger.Error("Failed to open uploaded trade log", zap.Error(err))
		utils.SendErrorResponse(c, http.StatusInternalServerError, "Failed to read trade log")
		return
	}
	defer file.Close()

	trades, err := service.LoadTradeLog(file)
	if err != nil {
		h.sendError(c, err, "Failed to parse trade log")
		return
	}

	initialCapital, ok := h.parseFloatField(c, "initial_capital", h.market.InitialCapital)
	if !ok {
		return
	}
	pointValue, ok := h.parseFloatField(c, "point_value", h.market.PointValue)
	if !ok {
		return
	}

	report, err := h.performanceService.BuildReport(trades, initialCapital, pointValue)
	if err != nil {
		h.sendError(c, err, "Failed to build report")
		return
	}

	h.eventService.PublishReportGenerated(len(trades), report.Metrics.FinalCapital)
	utils.SendSuccessResponse(c, http.StatusOK, report)
}

// parseFloatField parses an optional positive form field, falling back to the
// configured default. It writes the error response itself.
func (h *PerformanceHandler) parseFloatField(c *gin.Context, name string, fallback float64) (float64, bool) {
	value := c.PostForm(name)
	if value == "" {
		return fallback, true
	}

	v, err := strconv.ParseFloat(value, 64)
	if err != nil || v <= 0 {
		utils.SendErrorResponse(c, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return v, true
}

func (h *PerformanceHandler) sendError(c *gin.Context, err error, message string) {
	var schemaErr *model.SchemaError
	if errors.As(err, &schemaErr) {
		utils.SendErrorResponse(c, http.StatusUnprocessableEntity, schemaErr.Error())
		return
	}

	var validationErr *model.ValidationError
	if errors.As(err, &validationErr) {
		utils.SendErrorResponse(c, http.StatusBadRequest, validationErr.Error())
		return
	}

	h.logger.Error(message, zap.Error(err))
	utils.SendErrorResponse(c, http.StatusInternalServerError, message)
}
