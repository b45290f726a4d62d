// Package session issues and verifies stateless signed session tokens.
//
// A session exists only as a signed token held by the client; there is no
// server-side session record and no revocation list. Logout deletes the
// client cookie, and a compromised token stays valid until its natural
// expiry. That trade-off buys statelessness for the rest of the app.
package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/zdangz/ToDoApp-Group5/internal/platform/errors"
	"github.com/zdangz/ToDoApp-Group5/internal/platform/id"
)

// ErrSessionInvalid is returned for every verification failure.
//
// Bad signature, expiry, malformed token, and wrong algorithm are all
// reported identically so the error is useless to a forger.
var ErrSessionInvalid = apperrors.New(apperrors.CodeSessionInvalid, "session is invalid")

// Identity is the authenticated principal carried by a valid session.
type Identity struct {
	UserID   string
	Username string
}

type sessionClaims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
}

// Manager signs and verifies session tokens with a process-wide HMAC key.
//
// The key is read once at construction and never mutated, so a Manager is
// safe for concurrent use without locking.
type Manager struct {
	secret      []byte
	ttl         time.Duration
	now         func() time.Time
	idGenerator func() (string, error)
}

// NewManager builds a session manager from configuration.
func NewManager(cfg Config) *Manager {
	secret := cfg.Secret
	if secret == "" {
		secret = DevSecret
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		secret:      []byte(secret),
		ttl:         ttl,
		now:         time.Now,
		idGenerator: id.NewID,
	}
}

// Issue produces a signed token for the given identity.
func (m *Manager) Issue(userID, username string) (string, error) {
	if userID == "" || username == "" {
		return "", fmt.Errorf("user id and username are required")
	}

	jti, err := m.idGenerator()
	if err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}

	now := m.now().UTC()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			ID:        jti,
		},
		Username: username,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return token, nil
}

// Verify checks a token's signature and expiry and returns its identity.
//
// A session is valid iff the signature verifies against the current key
// and the expiry claim is in the future.
func (m *Manager) Verify(token string) (Identity, error) {
	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !parsed.Valid {
		return Identity{}, ErrSessionInvalid
	}
	if claims.Subject == "" || claims.Username == "" {
		return Identity{}, ErrSessionInvalid
	}
	return Identity{UserID: claims.Subject, Username: claims.Username}, nil
}
