package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/safeforge/safeforge/internal/models"
)

// CreateUser inserts a new user into the database.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt == 0 {
		user.CreatedAt = time.Now().Unix()
	}

	query := `
		INSERT INTO users (id, name, title, email, auth_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		user.ID,
		user.Name,
		user.Title,
		user.Email,
		user.AuthID,
		user.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByID retrieves a user by their ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.getUser(ctx, "id = ?", id)
}

// GetUserByEmail retrieves the first user with the given email address.
// Email is a soft natural key: the first match wins.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, "email = ?", email)
}

// GetUserByAuthID retrieves the user linked to an external auth subject.
func (s *SQLiteStore) GetUserByAuthID(ctx context.Context, authID string) (*models.User, error) {
	return s.getUser(ctx, "auth_id = ?", authID)
}

func (s *SQLiteStore) getUser(ctx context.Context, where string, arg string) (*models.User, error) {
	query := `
		SELECT id, name, title, email, auth_id, created_at
		FROM users
		WHERE ` + where + `
		LIMIT 1
	`

	user := &models.User{}
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Name,
		&user.Title,
		&user.Email,
		&user.AuthID,
		&user.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil // User not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// UpdateUser overwrites the user's signatory details.
func (s *SQLiteStore) UpdateUser(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET name = ?, title = ?, email = ?
		WHERE id = ?
	`

	res, err := s.db.ExecContext(ctx, query, user.Name, user.Title, user.Email, user.ID)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("failed to update user %s: no such row", user.ID)
	}

	return nil
}
