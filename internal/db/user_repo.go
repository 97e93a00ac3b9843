package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"airwatch/internal/types"
)

// UserRepo owns the device-owner records.
type UserRepo struct {
	db DBTX
}

// NewUserRepo creates a UserRepo.
func NewUserRepo(db DBTX) *UserRepo {
	return &UserRepo{db: db}
}

// Create registers a user and fills in the assigned ID.
func (r *UserRepo) Create(ctx context.Context, user *types.User) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO users (name, device_token) VALUES ($1, $2) RETURNING id`,
		user.Name,
		user.DeviceToken,
	).Scan(&user.ID)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to create user", err)
	}
	return nil
}

// GetByID fetches one user, returning not_found_user when absent.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*types.User, error) {
	var user types.User
	err := r.db.QueryRow(ctx,
		`SELECT id, name, device_token FROM users WHERE id = $1`,
		id,
	).Scan(&user.ID, &user.Name, &user.DeviceToken)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, types.NewAppError(types.ErrCodeNotFoundUser, "user not found", nil)
	}
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to fetch user", err)
	}
	return &user, nil
}
