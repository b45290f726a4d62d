package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/zdangz/ToDoApp-Group5/internal/auth/storage"
	"github.com/zdangz/ToDoApp-Group5/internal/auth/user"
)

// CreateUser inserts a new user record.
func (s *Store) CreateUser(ctx context.Context, u user.User) error {
	if u.ID == "" {
		return fmt.Errorf("user id is required")
	}
	if u.Username == "" {
		return fmt.Errorf("username is required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO users (id, username, created_at)
VALUES (?, ?, ?);
`, u.ID, u.Username, toMillis(u.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetUser returns a user by id.
func (s *Store) GetUser(ctx context.Context, userID string) (user.User, error) {
	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, username, created_at
FROM users
WHERE id = ?;
`, userID)
	return scanUser(row)
}

// GetUserByUsername returns a user by normalized username.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, username, created_at
FROM users
WHERE username = ?;
`, username)
	return scanUser(row)
}

func scanUser(row *sql.Row) (user.User, error) {
	var u user.User
	var createdAt int64
	if err := row.Scan(&u.ID, &u.Username, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.User{}, storage.ErrNotFound
		}
		return user.User{}, fmt.Errorf("scan user: %w", err)
	}
	u.CreatedAt = fromMillis(createdAt)
	return u, nil
}
