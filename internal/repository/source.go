package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/yourorg/market-data-service/internal/config"
	"github.com/yourorg/market-data-service/internal/model"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// Connector opens a database handle for a session
type Connector interface {
	Connect(ctx context.Context) (*sqlx.DB, error)
}

// ConnectionSource builds the connection descriptor from configuration and
// opens database handles on demand
type ConnectionSource struct {
	cfg    config.DatabaseConfig
	logger *zap.Logger
}

// NewConnectionSource validates the database configuration and creates a
// connection source
func NewConnectionSource(cfg config.DatabaseConfig, logger *zap.Logger) (*ConnectionSource, error) {
	var missing []string
	if cfg.DBName == "" {
		missing = append(missing, "dbname")
	}
	if cfg.User == "" {
		missing = append(missing, "user")
	}
	if cfg.Host == "" {
		missing = append(missing, "host")
	}
	if cfg.Port == "" {
		missing = append(missing, "port")
	}
	if cfg.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return nil, &model.ConfigurationError{Missing: missing}
	}

	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = 30 * time.Second
	}
	if cfg.ConnectInterval <= 0 {
		cfg.ConnectInterval = 2 * time.Second
	}

	return &ConnectionSource{cfg: cfg, logger: logger}, nil
}

// DSN returns the connection descriptor string
func (s *ConnectionSource) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		s.cfg.Host,
		s.cfg.Port,
		s.cfg.User,
		s.cfg.Password,
		s.cfg.DBName,
		s.cfg.SSLMode,
	)
}

// Connect opens a database handle restricted to a single live connection and
// verifies it with a bounded ping retry
func (s *ConnectionSource) Connect(ctx context.Context) (*sqlx.DB, error) {
	db, err := sqlx.Open("pgx", s.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection, one cursor: the session owns it exclusively
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ping := func() error {
		pingCtx, cancel := context.WithTimeout(ctx, s.cfg.QueryTimeout)
		defer cancel()
		return db.PingContext(pingCtx)
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(s.cfg.ConnectInterval), s.cfg.ConnectRetries),
		ctx,
	)
	if err := backoff.Retry(ping, policy); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s.logger.Info("Database connection established",
		zap.String("host", s.cfg.Host),
		zap.String("dbname", s.cfg.DBName))

	return db, nil
}

// QueryTimeout returns the per-query timeout for this source
func (s *ConnectionSource) QueryTimeout() time.Duration {
	return s.cfg.QueryTimeout
}
