package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ibanking/backend/internal/models"
)

// UserRepository stores the mapping between identity-provider subjects and
// internal users.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetUser(ctx context.Context, externalID string) (*models.User, error) {
	query := `
		SELECT id, external_id, username, email, date_created
		FROM users
		WHERE external_id = $1
	`
	var u models.User
	err := r.db.QueryRowContext(ctx, query, externalID).Scan(&u.ID, &u.ExternalID, &u.Username, &u.Email, &u.DateCreated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

func (r *UserRepository) SaveUser(ctx context.Context, user *models.User) (int64, error) {
	query := `
		INSERT INTO users (id, external_id, username, email, date_created)
		VALUES ($1, $2, $3, $4, $5)
	`
	result, err := r.db.ExecContext(ctx, query, user.ID, user.ExternalID, user.Username, user.Email, user.DateCreated)
	if err != nil {
		return 0, fmt.Errorf("failed to save user: %w", err)
	}
	return rowsAffected(result)
}
