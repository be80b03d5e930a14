package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"github.com/crucial707/hci-accounts/internal/models"
)

// DefaultAcquireTimeout bounds a single store round trip, including the wait
// for a free connection.
const DefaultAcquireTimeout = 5 * time.Second

// uniqueViolation is the SQLSTATE postgres reports for a unique constraint.
const uniqueViolation = "23505"

// ==========================
// Store
// ==========================

// Store runs parameterized statements against the shared pool. Every call
// borrows a connection for the duration of the statement only; database/sql
// hands it back on all exit paths once rows are closed.
type Store struct {
	DB             *sql.DB
	AcquireTimeout time.Duration
}

// NewStore wraps db. A non-positive timeout falls back to DefaultAcquireTimeout.
func NewStore(db *sql.DB, acquireTimeout time.Duration) *Store {
	if acquireTimeout <= 0 {
		acquireTimeout = DefaultAcquireTimeout
	}
	return &Store{DB: db, AcquireTimeout: acquireTimeout}
}

// Run executes query and passes the result set to scan. Rows are always
// closed before Run returns.
func (s *Store) Run(ctx context.Context, op, query string, args []any, scan func(*sql.Rows) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.AcquireTimeout)
	defer cancel()

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return wrap(ctx, op, err)
	}
	defer rows.Close()

	if err := scan(rows); err != nil {
		return wrap(ctx, op, err)
	}
	if err := rows.Err(); err != nil {
		return wrap(ctx, op, err)
	}
	return nil
}

// QueryRow executes query and scans the single resulting row into dest.
// sql.ErrNoRows is returned unwrapped so callers can treat it as "none".
func (s *Store) QueryRow(ctx context.Context, op, query string, args []any, dest ...any) error {
	ctx, cancel := context.WithTimeout(ctx, s.AcquireTimeout)
	defer cancel()

	err := s.DB.QueryRowContext(ctx, query, args...).Scan(dest...)
	if errors.Is(err, sql.ErrNoRows) {
		return sql.ErrNoRows
	}
	return wrap(ctx, op, err)
}

// Ping checks that a connection can be acquired and used.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.AcquireTimeout)
	defer cancel()
	return wrap(ctx, "ping", s.DB.PingContext(ctx))
}

// IsUniqueViolation reports whether err carries a postgres unique violation.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func wrap(ctx context.Context, op string, err error) error {
	if err == nil {
		return nil
	}
	timeout := errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded)
	return &models.StoreError{Op: op, Err: err, Timeout: timeout}
}
