package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"networth/internal/domain/user"
)

// UserRepository implements the user.Repository interface for PostgreSQL
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new PostgreSQL user repository
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, params user.CreateUserParams) (*user.User, error) {
	query := `
		INSERT INTO users (id, email, name, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id, email, name, password_hash, device_token, created_at, updated_at
	`

	u, err := r.scanUser(r.db.QueryRowContext(ctx, query, params.ID, params.Email, params.Name, params.PasswordHash))
	if err != nil {
		if strings.Contains(err.Error(), "users_email_key") {
			return nil, user.ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return u, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	query := `
		SELECT id, email, name, password_hash, device_token, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	u, err := r.scanUser(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, user.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return u, nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	query := `
		SELECT id, email, name, password_hash, device_token, created_at, updated_at
		FROM users
		WHERE email = $1
	`

	u, err := r.scanUser(r.db.QueryRowContext(ctx, query, email))
	if err == sql.ErrNoRows {
		return nil, user.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return u, nil
}

// UpdateDeviceToken stores (or clears, when nil) the user's push token
func (r *UserRepository) UpdateDeviceToken(ctx context.Context, userID string, token *string) error {
	query := `UPDATE users SET device_token = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, token, userID)
	if err != nil {
		return fmt.Errorf("failed to update device token: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rows == 0 {
		return user.ErrUserNotFound
	}

	return nil
}

// ClearDeviceToken removes a push token wherever it is stored. Used when the
// messaging provider reports the token as unregistered; clearing zero rows is
// fine (the user may have re-registered already).
func (r *UserRepository) ClearDeviceToken(ctx context.Context, token string) error {
	query := `UPDATE users SET device_token = NULL, updated_at = CURRENT_TIMESTAMP WHERE device_token = $1`

	if _, err := r.db.ExecContext(ctx, query, token); err != nil {
		return fmt.Errorf("failed to clear device token: %w", err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *UserRepository) scanUser(row rowScanner) (*user.User, error) {
	var u user.User
	var passwordHash, deviceToken sql.NullString

	err := row.Scan(&u.ID, &u.Email, &u.Name, &passwordHash, &deviceToken, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if passwordHash.Valid {
		u.PasswordHash = &passwordHash.String
	}
	if deviceToken.Valid {
		u.DeviceToken = &deviceToken.String
	}

	return &u, nil
}
