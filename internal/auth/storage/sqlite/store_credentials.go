package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/zdangz/ToDoApp-Group5/internal/auth/storage"
)

// PutCredential inserts a passkey credential.
func (s *Store) PutCredential(ctx context.Context, credential storage.Credential) error {
	if credential.CredentialID == "" {
		return fmt.Errorf("credential id is required")
	}
	if credential.UserID == "" {
		return fmt.Errorf("user id is required")
	}

	transports, err := json.Marshal(credential.Transports)
	if err != nil {
		return fmt.Errorf("marshal transports: %w", err)
	}
	flags, err := json.Marshal(credential.Flags)
	if err != nil {
		return fmt.Errorf("marshal flags: %w", err)
	}

	var lastUsedAt any
	if credential.LastUsedAt != nil {
		lastUsedAt = toMillis(*credential.LastUsedAt)
	}

	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO credentials (
    credential_id, user_id, public_key, attestation_type, transports,
    flags, aaguid, sign_count, created_at, updated_at, last_used_at
)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
`,
		credential.CredentialID,
		credential.UserID,
		credential.PublicKey,
		credential.AttestationType,
		string(transports),
		string(flags),
		credential.AAGUID,
		int64(credential.SignCount),
		toMillis(credential.CreatedAt),
		toMillis(credential.UpdatedAt),
		lastUsedAt,
	)
	if err != nil {
		return fmt.Errorf("insert credential: %w", err)
	}
	return nil
}

// GetCredential returns a credential by id.
func (s *Store) GetCredential(ctx context.Context, credentialID string) (storage.Credential, error) {
	row := s.sqlDB.QueryRowContext(ctx, `
SELECT credential_id, user_id, public_key, attestation_type, transports,
       flags, aaguid, sign_count, created_at, updated_at, last_used_at
FROM credentials
WHERE credential_id = ?;
`, credentialID)

	credential, err := scanCredential(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Credential{}, storage.ErrNotFound
		}
		return storage.Credential{}, err
	}
	return credential, nil
}

// ListCredentialsByUser returns all credentials registered to a user.
func (s *Store) ListCredentialsByUser(ctx context.Context, userID string) ([]storage.Credential, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT credential_id, user_id, public_key, attestation_type, transports,
       flags, aaguid, sign_count, created_at, updated_at, last_used_at
FROM credentials
WHERE user_id = ?
ORDER BY created_at ASC;
`, userID)
	if err != nil {
		return nil, fmt.Errorf("query credentials: %w", err)
	}
	defer rows.Close()

	var credentials []storage.Credential
	for rows.Next() {
		credential, err := scanCredential(rows)
		if err != nil {
			return nil, err
		}
		credentials = append(credentials, credential)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate credentials: %w", err)
	}
	return credentials, nil
}

// UpdateCredentialCounter persists a counter advance for a credential.
//
// The guard in the UPDATE keeps the monotonicity check effective under
// concurrent logins: two racing updates cannot both pass it.
func (s *Store) UpdateCredentialCounter(ctx context.Context, credentialID string, counter uint32, usedAt time.Time) error {
	result, err := s.sqlDB.ExecContext(ctx, `
UPDATE credentials
SET sign_count = ?, updated_at = ?, last_used_at = ?
WHERE credential_id = ?
  AND (sign_count < ? OR (sign_count = 0 AND ? = 0));
`,
		int64(counter),
		toMillis(usedAt),
		toMillis(usedAt),
		credentialID,
		int64(counter),
		int64(counter),
	)
	if err != nil {
		return fmt.Errorf("update credential counter: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update credential counter: %w", err)
	}
	if affected > 0 {
		return nil
	}

	if _, err := s.GetCredential(ctx, credentialID); err != nil {
		return err
	}
	return storage.ErrCounterRegression
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCredential(row rowScanner) (storage.Credential, error) {
	var credential storage.Credential
	var transports, flags string
	var signCount, createdAt, updatedAt int64
	var lastUsedAt sql.NullInt64

	err := row.Scan(
		&credential.CredentialID,
		&credential.UserID,
		&credential.PublicKey,
		&credential.AttestationType,
		&transports,
		&flags,
		&credential.AAGUID,
		&signCount,
		&createdAt,
		&updatedAt,
		&lastUsedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Credential{}, sql.ErrNoRows
		}
		return storage.Credential{}, fmt.Errorf("scan credential: %w", err)
	}

	if err := json.Unmarshal([]byte(transports), &credential.Transports); err != nil {
		return storage.Credential{}, fmt.Errorf("unmarshal transports: %w", err)
	}
	if err := json.Unmarshal([]byte(flags), &credential.Flags); err != nil {
		return storage.Credential{}, fmt.Errorf("unmarshal flags: %w", err)
	}

	credential.SignCount = uint32(signCount)
	credential.CreatedAt = fromMillis(createdAt)
	credential.UpdatedAt = fromMillis(updatedAt)
	if lastUsedAt.Valid {
		used := fromMillis(lastUsedAt.Int64)
		credential.LastUsedAt = &used
	}
	return credential, nil
}
