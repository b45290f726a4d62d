// Package user provides the auth user identity model.
package user

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	apperrors "github.com/zdangz/ToDoApp-Group5/internal/platform/errors"
	"github.com/zdangz/ToDoApp-Group5/internal/platform/id"
)

var (
	// ErrEmptyUsername indicates a missing username.
	ErrEmptyUsername = apperrors.New(apperrors.CodeUserEmptyUsername, "username is required")
	// ErrInvalidUsername indicates a username that does not match the required format.
	ErrInvalidUsername = apperrors.New(apperrors.CodeUserInvalidUsername, "username must be 3-32 lowercase alphanumeric, dot, dash, or underscore characters")

	usernamePattern = regexp.MustCompile(`^[a-z0-9_.\-]{3,32}$`)
)

// User represents an authenticated identity record.
//
// Identities are created once during credential registration and are
// immutable afterwards; the rest of the application references them by ID.
type User struct {
	ID        string
	Username  string
	CreatedAt time.Time
}

// ValidateUsername enforces the canonical username constraints shared by
// registration and login lookups.
func ValidateUsername(s string) error {
	if !usernamePattern.MatchString(s) {
		return ErrInvalidUsername
	}
	return nil
}

// NormalizeUsername trims and lowercases a raw username before validation.
func NormalizeUsername(s string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	if normalized == "" {
		return "", ErrEmptyUsername
	}
	if err := ValidateUsername(normalized); err != nil {
		return "", err
	}
	return normalized, nil
}

// NewUser creates a user identity from an already-normalized username.
//
// Registration treats this as the single point where an untrusted handle
// becomes a stable identity used by sessions and credential ownership.
func NewUser(username string, now func() time.Time, idGenerator func() (string, error)) (User, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	normalized, err := NormalizeUsername(username)
	if err != nil {
		return User{}, err
	}

	userID, err := idGenerator()
	if err != nil {
		return User{}, fmt.Errorf("generate user id: %w", err)
	}

	return User{
		ID:        userID,
		Username:  normalized,
		CreatedAt: now().UTC(),
	}, nil
}
