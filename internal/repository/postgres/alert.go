package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nkosi-ncube/CareIQ/internal/model"
)

func (r *alertRepository) Create(ctx context.Context, alert *model.Alert) error {
	query := `
		INSERT INTO alerts (id, user_id, title, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	start := time.Now()
	_, err := r.db.ExecContext(ctx, query,
		alert.ID, alert.UserID, alert.Title, alert.Status, alert.CreatedAt, alert.UpdatedAt)
	r.observe("create alert", start, err)
	if err != nil {
		return fmt.Errorf("failed to create alert: %w", err)
	}
	return nil
}

// CreateBatch inserts all alerts or none.
func (r *alertRepository) CreateBatch(ctx context.Context, alerts []*model.Alert) error {
	query := `
		INSERT INTO alerts (id, user_id, title, status, created_at, updated_at)
		VALUES (:id, :user_id, :title, :status, :created_at, :updated_at)
	`

	start := time.Now()
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		for _, alert := range alerts {
			if _, err := tx.NamedExecContext(ctx, query, alert); err != nil {
				return err
			}
		}
		return nil
	})
	r.observe("create alerts", start, err)
	if err != nil {
		return fmt.Errorf("failed to create alerts: %w", err)
	}
	return nil
}

func (r *alertRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.Alert, error) {
	query := `
		SELECT id, user_id, title, status, created_at, updated_at
		FROM alerts
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	var alerts []*model.Alert
	if err := r.list(ctx, "list alerts", &alerts, query, userID); err != nil {
		return nil, err
	}
	return alerts, nil
}

func (r *alertRepository) MarkRead(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	query := `
		UPDATE alerts SET status = 'read', updated_at = NOW()
		WHERE id = $1 AND user_id = $2
	`
	return r.execConditional(ctx, "mark alert read", query, id, userID)
}
