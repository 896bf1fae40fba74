package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yourorg/market-data-service/internal/cache"
	"github.com/yourorg/market-data-service/internal/config"
	"github.com/yourorg/market-data-service/internal/handler"
	"github.com/yourorg/market-data-service/internal/middleware"
	"github.com/yourorg/market-data-service/internal/repository"
	"github.com/yourorg/market-data-service/internal/service"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Set up logger
	logger, err := createLogger(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Open the store session
	source, err := repository.NewConnectionSource(cfg.Database, logger)
	if err != nil {
		logger.Fatal("Invalid database configuration", zap.Error(err))
	}

	session := repository.NewSession(source, cfg.Database.QueryTimeout, logger)
	if err := session.Open(context.Background()); err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer session.Close()

	// Initialize operational events
	eventService := service.NewEventService(cfg.Kafka, logger)
	defer eventService.Close()
	session.SetRepairHook(eventService.PublishSessionRepaired)

	// Initialize repository and optional calendar caching
	marketDataRepo := repository.NewMarketDataRepository(session, cfg.Market, logger)

	var store service.MarketDataStore = marketDataRepo
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			logger.Warn("Redis unavailable, calendar caching disabled", zap.Error(err))
		} else {
			store = cache.NewCalendarCache(rdb, cfg.Redis.CacheTTL, marketDataRepo)
		}
	}

	// Initialize services
	marketDataService := service.NewMarketDataService(store, cfg.Market, logger)
	performanceService := service.NewPerformanceService(cfg.Market.PeriodsPerYear, logger)

	// Initialize handlers
	marketDataHandler := handler.NewMarketDataHandler(marketDataService, logger)
	performanceHandler := handler.NewPerformanceHandler(performanceService, eventService, cfg.Market, logger)

	// Set up HTTP server with Gin
	router := setupRouter(marketDataHandler, performanceHandler, logger, cfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start the server in a goroutine
	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Create a deadline for server shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited properly")
}

func createLogger(level string) (*zap.Logger, error) {
	// Parse log level
	var zapLevel zap.AtomicLevel
	switch level {
	case "debug":
		zapLevel = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapLevel = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapLevel = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		zapLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	// Create logger config
	config := zap.Config{
		Level:            zapLevel,
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return config.Build()
}

func setupRouter(
	marketDataHandler *handler.MarketDataHandler,
	performanceHandler *handler.PerformanceHandler,
	logger *zap.Logger,
	cfg *config.Config,
) *gin.Engine {
	router := gin.New()

	// Use middlewares
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	// API routes
	v1 := router.Group("/api/v1")
	v1.Use(middleware.ServiceAuthMiddleware(cfg.Server.ServiceKey, logger))
	{
		// Market data routes
		marketData := v1.Group("/market-data")
		{
			marketData.GET("/trading-days", marketDataHandler.GetTradingDays)
			marketData.GET("/expiry-dates", marketDataHandler.GetExpiryDates)
			marketData.GET("/index", marketDataHandler.GetIndexBars)
			marketData.GET("/options", marketDataHandler.GetOptionBars)
			marketData.GET("/futures/contract-months", marketDataHandler.GetContractMonths)
			marketData.GET("/futures", marketDataHandler.GetFutureBars)
		}

		// Performance routes
		performance := v1.Group("/performance")
		{
			performance.POST("/report", performanceHandler.BuildReport)
		}
	}

	return router
}
