package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/nkosi-ncube/CareIQ/internal/repository"
	"github.com/nkosi-ncube/CareIQ/pkg/metrics"
)

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	db      *sqlx.DB
	metrics *metrics.Metrics
}

// NewBaseRepository creates a new base repository. m may be nil.
func NewBaseRepository(db *sqlx.DB, m *metrics.Metrics) BaseRepository {
	return BaseRepository{db: db, metrics: m}
}

// WithTx executes a function within a transaction
func (r *BaseRepository) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

func (r *BaseRepository) observe(op string, start time.Time, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		err = nil
	}
	r.metrics.ObserveDB(op, start, err)
}

// get wraps GetContext, mapping no rows onto ErrNotFound.
func (r *BaseRepository) get(ctx context.Context, op string, dest interface{}, query string, args ...interface{}) (err error) {
	start := time.Now()
	defer func() { r.observe(op, start, err) }()
	if err = r.db.GetContext(ctx, dest, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return repository.ErrNotFound
		}
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	return nil
}

func (r *BaseRepository) list(ctx context.Context, op string, dest interface{}, query string, args ...interface{}) (err error) {
	start := time.Now()
	defer func() { r.observe(op, start, err) }()
	if err = r.db.SelectContext(ctx, dest, query, args...); err != nil {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	return nil
}

// execConditional runs a guarded write and reports whether a row changed.
func (r *BaseRepository) execConditional(ctx context.Context, op string, query string, args ...interface{}) (changed bool, err error) {
	start := time.Now()
	defer func() { r.observe(op, start, err) }()

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to %s: %w", op, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
