package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/nkosi-ncube/CareIQ/internal/model"
	"github.com/nkosi-ncube/CareIQ/internal/repository"
)

const userColumns = `id, name, email, password_hash, role, patient_profile, professional_profile, created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (
			id, name, email, password_hash, role,
			patient_profile, professional_profile, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	start := time.Now()
	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Name,
		strings.ToLower(user.Email),
		user.PasswordHash,
		user.Role,
		user.Patient,
		user.Professional,
		user.CreatedAt,
		user.UpdatedAt,
	)
	r.observe("create user", start, err)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepository) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	if err := r.get(ctx, "get user", &user, query, id); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	if err := r.get(ctx, "get user by email", &user, query, strings.ToLower(email)); err != nil {
		return nil, err
	}
	return &user, nil
}

// Update writes the mutable profile fields. Role and password are not touched.
func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	query := `
		UPDATE users SET
			name = $1,
			email = $2,
			patient_profile = $3,
			professional_profile = $4,
			updated_at = $5
		WHERE id = $6
	`

	user.UpdatedAt = time.Now().UTC()
	changed, err := r.execConditional(ctx, "update user", query,
		user.Name,
		strings.ToLower(user.Email),
		user.Patient,
		user.Professional,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	if !changed {
		return repository.ErrNotFound
	}
	return nil
}

func (r *userRepository) ListProfessionals(ctx context.Context, specialties []model.Specialty) ([]*model.Professional, error) {
	query := `
		SELECT id, name, professional_profile->>'specialty' AS specialty
		FROM users
		WHERE role = 'hcp'
	`
	var args []interface{}
	if len(specialties) > 0 {
		names := make([]string, len(specialties))
		for i, s := range specialties {
			names[i] = string(s)
		}
		query += ` AND professional_profile->>'specialty' = ANY($1)`
		args = append(args, pq.Array(names))
	}
	query += ` ORDER BY name`

	var professionals []*model.Professional
	if err := r.list(ctx, "list professionals", &professionals, query, args...); err != nil {
		return nil, err
	}
	return professionals, nil
}
