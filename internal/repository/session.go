package repository

import (
	"context"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// Session holds exactly one live connection and one live cursor against the
// data store. The pair is created lazily on first use and repaired in place
// when a query fails: the cursor is closed, the connection is reopened if it
// turns out to be dead, and the identical query is resubmitted exactly once.
// A second consecutive failure propagates the store's error unmodified.
//
// The session assumes exclusive ownership of the cursor during repair, so all
// executes are serialized behind a single mutex.
type Session struct {
	source  Connector
	timeout time.Duration
	logger  *zap.Logger

	mu       sync.Mutex
	db       *sqlx.DB
	conn     *sqlx.Conn
	onRepair func()
}

// NewSession creates a session backed by the given connector. The connection
// is not established until Open or the first Execute.
func NewSession(source Connector, timeout time.Duration, logger *zap.Logger) *Session {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Session{
		source:  source,
		timeout: timeout,
		logger:  logger,
	}
}

// SetRepairHook registers a callback invoked after a successful repair
func (s *Session) SetRepairHook(hook func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onRepair = hook
}

// Open eagerly establishes the connection and cursor
func (s *Session) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensure(ctx)
}

// Execute runs a query through the session. On failure of any kind the
// session is repaired once and the identical query resubmitted; a failure of
// the resubmission is returned as-is with no further retries. The scan
// callback must consume the rows; it may run twice and must reset any
// accumulated state on entry.
func (s *Session) Execute(ctx context.Context, query string, args []interface{}, scan func(*sqlx.Rows) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensure(ctx); err != nil {
		return err
	}

	err := s.run(ctx, query, args, scan)
	if err == nil {
		return nil
	}

	s.logger.Warn("Query failed, repairing session", zap.Error(err))
	if repairErr := s.repair(ctx); repairErr != nil {
		return repairErr
	}
	if s.onRepair != nil {
		s.onRepair()
	}

	return s.run(ctx, query, args, scan)
}

// Close releases the cursor and the connection
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

// ensure lazily establishes the connection and cursor
func (s *Session) ensure(ctx context.Context) error {
	if s.db == nil {
		db, err := s.source.Connect(ctx)
		if err != nil {
			return err
		}
		s.db = db
	}
	if s.conn == nil {
		conn, err := s.db.Connx(ctx)
		if err != nil {
			return err
		}
		s.conn = conn
	}
	return nil
}

// run executes a single attempt under the session's query timeout
func (s *Session) run(ctx context.Context, query string, args []interface{}, scan func(*sqlx.Rows) error) error {
	queryCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.conn.QueryxContext(queryCtx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	if err := scan(rows); err != nil {
		return err
	}
	return rows.Err()
}

// repair closes the cursor and, when the connection itself is broken,
// reopens it through the connection source before acquiring a fresh cursor.
// Cursor-close success does not imply connection health, so the connection
// is pinged before reuse.
func (s *Session) repair(ctx context.Context) error {
	var closeErr error
	if s.conn != nil {
		closeErr = s.conn.Close()
		s.conn = nil
	}

	reopen := closeErr != nil
	if !reopen {
		pingCtx, cancel := context.WithTimeout(ctx, s.timeout)
		reopen = s.db.PingContext(pingCtx) != nil
		cancel()
	}

	if reopen {
		if s.db != nil {
			s.db.Close()
			// drop the dead handle so a failed reconnect leaves the
			// session in its lazy initial state instead of pinned to a
			// closed connection
			s.db = nil
		}
		db, err := s.source.Connect(ctx)
		if err != nil {
			return err
		}
		s.db = db
		s.logger.Info("Database connection reopened during session repair")
	}

	conn, err := s.db.Connx(ctx)
	if err != nil {
		return err
	}
	s.conn = conn
	return nil
}
