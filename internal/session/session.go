// Package session manages the DuckDB-backed processing session a job runs in.
// A Registry holds at most one active session; GetOrCreate returns it when
// present and opens a new one otherwise.
package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/google/uuid"

	"duck-job/internal/ddl"
	"duck-job/internal/domain"
)

// ErrStopped is returned by any operation on a session that has been stopped.
var ErrStopped = errors.New("session is stopped")

// Options configures a new session. Only AppName is required.
type Options struct {
	AppName     string       // display name of the session, shown in logs
	Threads     int          // DuckDB worker threads; 0 keeps the engine default
	MemoryLimit string       // DuckDB memory_limit, e.g. "1GB"; empty keeps the engine default
	Logger      *slog.Logger // defaults to slog.Default()
}

// Validate checks the options before any engine resources are acquired.
func (o Options) Validate() error {
	if o.AppName == "" {
		return domain.ErrValidation("application name is required")
	}
	if o.Threads < 0 {
		return domain.ErrValidation("threads must not be negative, got %d", o.Threads)
	}
	if o.MemoryLimit != "" {
		if err := ddl.ValidateMemoryLimit(o.MemoryLimit); err != nil {
			return domain.ErrValidation("%s", err.Error())
		}
	}
	return nil
}

// Session is a handle to one in-memory DuckDB database.
type Session struct {
	id        string
	appName   string
	startedAt time.Time
	logger    *slog.Logger
	registry  *Registry

	mu sync.RWMutex
	db *sql.DB // nil once stopped
}

// ID returns the unique session identifier.
func (s *Session) ID() string { return s.id }

// AppName returns the application name the session was created with.
func (s *Session) AppName() string { return s.appName }

// StartedAt returns the time the session was created.
func (s *Session) StartedAt() time.Time { return s.startedAt }

// Logger returns the session's logger, tagged with the session id and name.
func (s *Session) Logger() *slog.Logger { return s.logger }

// Stopped reports whether Stop has been called.
func (s *Session) Stopped() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.db == nil
}

// DB returns the underlying database handle.
func (s *Session) DB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, ErrStopped
	}
	return s.db, nil
}

// Conn returns a dedicated connection. The caller must close it.
func (s *Session) Conn(ctx context.Context) (*sql.Conn, error) {
	db, err := s.DB()
	if err != nil {
		return nil, err
	}
	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	return conn, nil
}

// Version returns the DuckDB engine version.
func (s *Session) Version(ctx context.Context) (string, error) {
	db, err := s.DB()
	if err != nil {
		return "", err
	}
	var version string
	if err := db.QueryRowContext(ctx, "SELECT version()").Scan(&version); err != nil {
		return "", fmt.Errorf("query engine version: %w", err)
	}
	return version, nil
}

// Stop closes the database and unregisters the session. Calling Stop on an
// already stopped session is a no-op.
func (s *Session) Stop() error {
	s.mu.Lock()
	db := s.db
	s.db = nil
	s.mu.Unlock()

	if db == nil {
		return nil
	}
	if s.registry != nil {
		s.registry.release(s)
	}

	if err := db.Close(); err != nil {
		return fmt.Errorf("close session %s: %w", s.id, err)
	}
	s.logger.Info("session stopped", "uptime", time.Since(s.startedAt).Round(time.Millisecond).String())
	return nil
}

// open creates the database and applies the options. It does not touch
// any registry.
func open(ctx context.Context, opts Options) (*Session, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	var settings []string
	if opts.Threads > 0 {
		stmt, err := ddl.SetThreads(opts.Threads)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		settings = append(settings, stmt)
	}
	if opts.MemoryLimit != "" {
		stmt, err := ddl.SetMemoryLimit(opts.MemoryLimit)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		settings = append(settings, stmt)
	}
	for _, stmt := range settings {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply setting (%s): %w", stmt, err)
		}
	}

	id := uuid.NewString()
	s := &Session{
		id:        id,
		appName:   opts.AppName,
		startedAt: time.Now(),
		logger:    logger.With("session_id", id, "app_name", opts.AppName),
		db:        db,
	}

	version, err := s.Version(ctx)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	s.logger.Info("session started", "duckdb_version", version, "threads", opts.Threads, "memory_limit", opts.MemoryLimit)
	return s, nil
}
