package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nkosi-ncube/CareIQ/internal/model"
)

func (r *diagnosticTestRepository) Create(ctx context.Context, test *model.DiagnosticTest) error {
	query := `
		INSERT INTO diagnostic_tests (id, user_id, name, result, date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	start := time.Now()
	_, err := r.db.ExecContext(ctx, query,
		test.ID, test.UserID, test.Name, test.Result, test.Date, test.CreatedAt, test.UpdatedAt)
	r.observe("create diagnostic test", start, err)
	if err != nil {
		return fmt.Errorf("failed to create diagnostic test: %w", err)
	}
	return nil
}

func (r *diagnosticTestRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.DiagnosticTest, error) {
	query := `
		SELECT id, user_id, name, result, date, created_at, updated_at
		FROM diagnostic_tests
		WHERE user_id = $1
		ORDER BY date DESC
	`

	var tests []*model.DiagnosticTest
	if err := r.list(ctx, "list diagnostic tests", &tests, query, userID); err != nil {
		return nil, err
	}
	return tests, nil
}

// Update only touches rows owned by test.UserID.
func (r *diagnosticTestRepository) Update(ctx context.Context, test *model.DiagnosticTest) (bool, error) {
	query := `
		UPDATE diagnostic_tests
		SET name = $1, result = $2, date = $3, updated_at = $4
		WHERE id = $5 AND user_id = $6
	`
	test.UpdatedAt = time.Now().UTC()
	return r.execConditional(ctx, "update diagnostic test", query,
		test.Name, test.Result, test.Date, test.UpdatedAt, test.ID, test.UserID)
}

func (r *diagnosticTestRepository) Delete(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	query := `DELETE FROM diagnostic_tests WHERE id = $1 AND user_id = $2`
	return r.execConditional(ctx, "delete diagnostic test", query, id, userID)
}
