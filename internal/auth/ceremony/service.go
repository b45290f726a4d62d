// Package ceremony runs the WebAuthn registration and login ceremonies.
package ceremony

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"

	"github.com/zdangz/ToDoApp-Group5/internal/auth/challenge"
	"github.com/zdangz/ToDoApp-Group5/internal/auth/passkey"
	"github.com/zdangz/ToDoApp-Group5/internal/auth/session"
	"github.com/zdangz/ToDoApp-Group5/internal/auth/storage"
	"github.com/zdangz/ToDoApp-Group5/internal/auth/user"
	apperrors "github.com/zdangz/ToDoApp-Group5/internal/platform/errors"
	"github.com/zdangz/ToDoApp-Group5/internal/platform/id"
)

var (
	// ErrAlreadyRegistered indicates the username already has a passkey.
	ErrAlreadyRegistered = apperrors.New(apperrors.CodeAlreadyRegistered, "username is already registered")
	// ErrUserNotFound indicates no account exists for the username.
	ErrUserNotFound = apperrors.New(apperrors.CodeUserNotFound, "user not found")
	// ErrNoCredentials indicates the account has no passkeys to assert with.
	ErrNoCredentials = apperrors.New(apperrors.CodeNoCredentials, "no credentials registered")
	// ErrChallengeExpired indicates the ceremony challenge is missing, spent,
	// or past its TTL. The cases are deliberately indistinguishable.
	ErrChallengeExpired = apperrors.New(apperrors.CodeChallengeExpired, "challenge not found or expired")
	// ErrCredentialNotFound indicates the asserted credential is unknown or
	// belongs to a different account.
	ErrCredentialNotFound = apperrors.New(apperrors.CodeCredentialNotFound, "credential not found")
	// ErrVerificationFailed indicates the signed ceremony response did not
	// verify against the stored public key and expected ceremony state.
	ErrVerificationFailed = apperrors.New(apperrors.CodeVerificationFailed, "verification failed")
	// ErrPossibleClone indicates the credential signature counter did not
	// advance, which points at a cloned authenticator.
	ErrPossibleClone = apperrors.New(apperrors.CodePossibleClone, "credential counter did not advance")
)

// Result is the outcome of a completed ceremony.
type Result struct {
	User         user.User
	CredentialID string
	SessionToken string
}

// Service drives both WebAuthn ceremonies against a credential store.
type Service struct {
	store      storage.Store
	challenges *challenge.Store
	sessions   *session.Manager

	webAuthn Provider
	parser   Parser

	clock       func() time.Time
	idGenerator func() (string, error)
}

// New builds a ceremony service for the configured relying party.
func New(cfg passkey.Config, store storage.Store, challenges *challenge.Store, sessions *session.Manager) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if challenges == nil {
		return nil, fmt.Errorf("challenge store is required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session manager is required")
	}

	webAuthn, err := webauthn.New(&webauthn.Config{
		RPDisplayName: cfg.RPDisplayName,
		RPID:          cfg.RPID,
		RPOrigins:     cfg.RPOrigins,
	})
	if err != nil {
		return nil, fmt.Errorf("configure webauthn: %w", err)
	}

	return &Service{
		store:       store,
		challenges:  challenges,
		sessions:    sessions,
		webAuthn:    webAuthn,
		parser:      defaultParser{},
		clock:       time.Now,
		idGenerator: id.NewID,
	}, nil
}

// BeginRegistration starts a credential creation ceremony for a new
// username and returns the options the browser passes to the authenticator.
func (s *Service) BeginRegistration(ctx context.Context, username string) (*protocol.CredentialCreation, error) {
	username, err := user.NormalizeUsername(username)
	if err != nil {
		return nil, err
	}

	if err := s.checkNotRegistered(ctx, username); err != nil {
		return nil, err
	}

	webUser := &ceremonyUser{user: user.User{Username: username}}
	creation, sessionData, err := s.webAuthn.BeginRegistration(webUser,
		webauthn.WithAuthenticatorSelection(protocol.AuthenticatorSelection{
			AuthenticatorAttachment: protocol.Platform,
			ResidentKey:             protocol.ResidentKeyRequirementPreferred,
			UserVerification:        protocol.VerificationRequired,
		}),
		webauthn.WithConveyancePreference(protocol.PreferNoAttestation),
	)
	if err != nil {
		return nil, fmt.Errorf("begin registration: %w", err)
	}
	if sessionData == nil {
		return nil, fmt.Errorf("begin registration: missing session data")
	}

	s.challenges.Issue(username, challenge.KindRegistration, *sessionData)
	return creation, nil
}

// FinishRegistration verifies an attestation response, creates the account
// with its first credential, and signs the user in.
func (s *Service) FinishRegistration(ctx context.Context, username string, response []byte) (Result, error) {
	username, err := user.NormalizeUsername(username)
	if err != nil {
		return Result{}, err
	}

	if err := s.checkNotRegistered(ctx, username); err != nil {
		return Result{}, err
	}

	parsed, err := s.parser.ParseCredentialCreationResponseBytes(response)
	if err != nil {
		return Result{}, apperrors.Wrap(apperrors.CodeVerificationFailed, "verification failed", err)
	}

	sessionData, ok := s.challenges.Redeem(username, challenge.KindRegistration, parsed.Response.CollectedClientData.Challenge)
	if !ok {
		return Result{}, ErrChallengeExpired
	}

	webUser := &ceremonyUser{user: user.User{Username: username}}
	credential, err := s.webAuthn.CreateCredential(webUser, sessionData, parsed)
	if err != nil {
		return Result{}, apperrors.Wrap(apperrors.CodeVerificationFailed, "verification failed", err)
	}

	account, err := s.ensureUser(ctx, username)
	if err != nil {
		return Result{}, err
	}

	stored := toStoredCredential(account.ID, *credential)
	stored.CreatedAt = s.clock().UTC()
	stored.UpdatedAt = stored.CreatedAt
	if err := s.store.PutCredential(ctx, stored); err != nil {
		return Result{}, fmt.Errorf("store credential: %w", err)
	}

	token, err := s.sessions.Issue(account.ID, account.Username)
	if err != nil {
		return Result{}, fmt.Errorf("issue session: %w", err)
	}

	return Result{User: account, CredentialID: stored.CredentialID, SessionToken: token}, nil
}

// BeginLogin starts an assertion ceremony for an existing account.
func (s *Service) BeginLogin(ctx context.Context, username string) (*protocol.CredentialAssertion, error) {
	username, err := user.NormalizeUsername(username)
	if err != nil {
		return nil, err
	}

	webUser, _, err := s.loadCeremonyUser(ctx, username)
	if err != nil {
		return nil, err
	}

	assertion, sessionData, err := s.webAuthn.BeginLogin(webUser,
		webauthn.WithUserVerification(protocol.VerificationRequired),
	)
	if err != nil {
		return nil, fmt.Errorf("begin login: %w", err)
	}
	if sessionData == nil {
		return nil, fmt.Errorf("begin login: missing session data")
	}

	s.challenges.Issue(username, challenge.KindLogin, *sessionData)
	return assertion, nil
}

// FinishLogin verifies an assertion response, enforces counter
// monotonicity, persists the advanced counter, and signs the user in.
//
// A counter that fails to advance is treated as a cloned authenticator:
// the login is rejected and the stored counter is left untouched.
func (s *Service) FinishLogin(ctx context.Context, username string, response []byte) (Result, error) {
	username, err := user.NormalizeUsername(username)
	if err != nil {
		return Result{}, err
	}

	webUser, credentials, err := s.loadCeremonyUser(ctx, username)
	if err != nil {
		return Result{}, err
	}

	parsed, err := s.parser.ParseCredentialRequestResponseBytes(response)
	if err != nil {
		return Result{}, apperrors.Wrap(apperrors.CodeVerificationFailed, "verification failed", err)
	}

	credentialID := encodeCredentialID(parsed.RawID)
	stored, ok := credentials[credentialID]
	if !ok {
		return Result{}, ErrCredentialNotFound
	}

	sessionData, redeemed := s.challenges.Redeem(username, challenge.KindLogin, parsed.Response.CollectedClientData.Challenge)
	if !redeemed {
		return Result{}, ErrChallengeExpired
	}

	validated, err := s.webAuthn.ValidateLogin(webUser, sessionData, parsed)
	if err != nil {
		return Result{}, apperrors.Wrap(apperrors.CodeVerificationFailed, "verification failed", err)
	}

	newCount := validated.Authenticator.SignCount
	if validated.Authenticator.CloneWarning {
		return Result{}, ErrPossibleClone
	}
	if stored.SignCount > 0 && newCount <= stored.SignCount {
		return Result{}, ErrPossibleClone
	}

	if err := s.store.UpdateCredentialCounter(ctx, credentialID, newCount, s.clock().UTC()); err != nil {
		if errors.Is(err, storage.ErrCounterRegression) {
			return Result{}, ErrPossibleClone
		}
		return Result{}, fmt.Errorf("update credential counter: %w", err)
	}

	account := webUser.user
	token, err := s.sessions.Issue(account.ID, account.Username)
	if err != nil {
		return Result{}, fmt.Errorf("issue session: %w", err)
	}

	return Result{User: account, CredentialID: credentialID, SessionToken: token}, nil
}

// checkNotRegistered rejects usernames that already own a credential.
//
// An account row without credentials does not count as registered, so an
// interrupted registration can be retried from the options step.
func (s *Service) checkNotRegistered(ctx context.Context, username string) error {
	account, err := s.store.GetUserByUsername(ctx, username)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("look up user: %w", err)
	}

	credentials, err := s.store.ListCredentialsByUser(ctx, account.ID)
	if err != nil {
		return fmt.Errorf("list credentials: %w", err)
	}
	if len(credentials) > 0 {
		return ErrAlreadyRegistered
	}
	return nil
}

// ensureUser returns the account for a username, creating it if needed.
func (s *Service) ensureUser(ctx context.Context, username string) (user.User, error) {
	account, err := s.store.GetUserByUsername(ctx, username)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return user.User{}, fmt.Errorf("look up user: %w", err)
	}

	account, err = user.NewUser(username, s.clock, s.idGenerator)
	if err != nil {
		return user.User{}, err
	}
	if err := s.store.CreateUser(ctx, account); err != nil {
		return user.User{}, fmt.Errorf("create user: %w", err)
	}
	return account, nil
}

// loadCeremonyUser loads an account and its credentials for an assertion.
func (s *Service) loadCeremonyUser(ctx context.Context, username string) (*ceremonyUser, map[string]storage.Credential, error) {
	account, err := s.store.GetUserByUsername(ctx, username)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil, ErrUserNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("look up user: %w", err)
	}

	records, err := s.store.ListCredentialsByUser(ctx, account.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("list credentials: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, ErrNoCredentials
	}

	credentials := make([]webauthn.Credential, 0, len(records))
	byID := make(map[string]storage.Credential, len(records))
	for _, record := range records {
		credential, err := toWebAuthnCredential(record)
		if err != nil {
			return nil, nil, fmt.Errorf("decode credential %s: %w", record.CredentialID, err)
		}
		credentials = append(credentials, credential)
		byID[record.CredentialID] = record
	}

	return &ceremonyUser{user: account, credentials: credentials}, byID, nil
}
