// Package storage defines persistence interfaces for identities and
// passkey credentials.
package storage

import (
	"context"
	"time"

	"github.com/zdangz/ToDoApp-Group5/internal/auth/user"
	apperrors "github.com/zdangz/ToDoApp-Group5/internal/platform/errors"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")

// ErrCounterRegression indicates a credential counter update was rejected
// because the new value did not advance past the stored one.
var ErrCounterRegression = apperrors.New(apperrors.CodePossibleClone, "credential counter did not advance")

// Credential stores a passkey public key and its clone-detection state.
//
// CredentialID is the authenticator-assigned id in base64url form and is
// unique across all users. SignCount mirrors the authenticator's signature
// counter; authenticators that do not implement counters report zero forever.
type Credential struct {
	CredentialID    string
	UserID          string
	PublicKey       []byte
	AttestationType string
	Transports      []string
	Flags           CredentialFlags
	AAGUID          []byte
	SignCount       uint32
	CreatedAt       time.Time
	UpdatedAt       time.Time
	LastUsedAt      *time.Time
}

// CredentialFlags records authenticator state captured at registration.
type CredentialFlags struct {
	UserPresent    bool `json:"userPresent"`
	UserVerified   bool `json:"userVerified"`
	BackupEligible bool `json:"backupEligible"`
	BackupState    bool `json:"backupState"`
}

// IdentityStore persists user accounts.
type IdentityStore interface {
	// CreateUser inserts a new user. The username must be unique.
	CreateUser(ctx context.Context, u user.User) error
	// GetUser returns a user by id, or ErrNotFound.
	GetUser(ctx context.Context, userID string) (user.User, error)
	// GetUserByUsername returns a user by normalized username, or ErrNotFound.
	GetUserByUsername(ctx context.Context, username string) (user.User, error)
}

// CredentialStore persists passkey credentials.
type CredentialStore interface {
	// PutCredential inserts a credential. The credential id must be unique.
	PutCredential(ctx context.Context, credential Credential) error
	// GetCredential returns a credential by id, or ErrNotFound.
	GetCredential(ctx context.Context, credentialID string) (Credential, error)
	// ListCredentialsByUser returns all credentials registered to a user.
	ListCredentialsByUser(ctx context.Context, userID string) ([]Credential, error)
	// UpdateCredentialCounter persists a counter advance for a credential.
	//
	// The update applies only when counter is strictly greater than the
	// stored value, or when both are zero. A rejected advance returns
	// ErrCounterRegression; an unknown credential returns ErrNotFound.
	UpdateCredentialCounter(ctx context.Context, credentialID string, counter uint32, usedAt time.Time) error
}

// Store combines every persistence concern of the auth service.
type Store interface {
	IdentityStore
	CredentialStore
}
