package ceremony

import (
	"encoding/base64"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"

	"github.com/zdangz/ToDoApp-Group5/internal/auth/storage"
	"github.com/zdangz/ToDoApp-Group5/internal/auth/user"
)

// Provider is the subset of the WebAuthn library the ceremonies use.
type Provider interface {
	BeginRegistration(user webauthn.User, opts ...webauthn.RegistrationOption) (*protocol.CredentialCreation, *webauthn.SessionData, error)
	CreateCredential(user webauthn.User, session webauthn.SessionData, response *protocol.ParsedCredentialCreationData) (*webauthn.Credential, error)
	BeginLogin(user webauthn.User, opts ...webauthn.LoginOption) (*protocol.CredentialAssertion, *webauthn.SessionData, error)
	ValidateLogin(user webauthn.User, session webauthn.SessionData, response *protocol.ParsedCredentialAssertionData) (*webauthn.Credential, error)
}

// Parser decodes raw browser ceremony responses.
type Parser interface {
	ParseCredentialCreationResponseBytes(data []byte) (*protocol.ParsedCredentialCreationData, error)
	ParseCredentialRequestResponseBytes(data []byte) (*protocol.ParsedCredentialAssertionData, error)
}

type defaultParser struct{}

func (defaultParser) ParseCredentialCreationResponseBytes(data []byte) (*protocol.ParsedCredentialCreationData, error) {
	return protocol.ParseCredentialCreationResponseBytes(data)
}

func (defaultParser) ParseCredentialRequestResponseBytes(data []byte) (*protocol.ParsedCredentialAssertionData, error) {
	return protocol.ParseCredentialRequestResponseBytes(data)
}

// ceremonyUser adapts a user and its credentials to webauthn.User.
//
// The WebAuthn user handle is the username, not the internal user id, so
// a registration ceremony can run before the account row exists.
type ceremonyUser struct {
	user        user.User
	credentials []webauthn.Credential
}

func (u *ceremonyUser) WebAuthnID() []byte {
	return []byte(u.user.Username)
}

func (u *ceremonyUser) WebAuthnName() string {
	return u.user.Username
}

func (u *ceremonyUser) WebAuthnDisplayName() string {
	return u.user.Username
}

func (u *ceremonyUser) WebAuthnIcon() string {
	return ""
}

func (u *ceremonyUser) WebAuthnCredentials() []webauthn.Credential {
	return u.credentials
}

func encodeCredentialID(id []byte) string {
	return base64.RawURLEncoding.EncodeToString(id)
}

func toStoredCredential(userID string, credential webauthn.Credential) storage.Credential {
	transports := make([]string, 0, len(credential.Transport))
	for _, transport := range credential.Transport {
		transports = append(transports, string(transport))
	}
	return storage.Credential{
		CredentialID:    encodeCredentialID(credential.ID),
		UserID:          userID,
		PublicKey:       credential.PublicKey,
		AttestationType: credential.AttestationType,
		Transports:      transports,
		Flags: storage.CredentialFlags{
			UserPresent:    credential.Flags.UserPresent,
			UserVerified:   credential.Flags.UserVerified,
			BackupEligible: credential.Flags.BackupEligible,
			BackupState:    credential.Flags.BackupState,
		},
		AAGUID:    credential.Authenticator.AAGUID,
		SignCount: credential.Authenticator.SignCount,
	}
}

func toWebAuthnCredential(stored storage.Credential) (webauthn.Credential, error) {
	id, err := base64.RawURLEncoding.DecodeString(stored.CredentialID)
	if err != nil {
		return webauthn.Credential{}, err
	}
	transports := make([]protocol.AuthenticatorTransport, 0, len(stored.Transports))
	for _, transport := range stored.Transports {
		transports = append(transports, protocol.AuthenticatorTransport(transport))
	}
	return webauthn.Credential{
		ID:              id,
		PublicKey:       stored.PublicKey,
		AttestationType: stored.AttestationType,
		Transport:       transports,
		Flags: webauthn.CredentialFlags{
			UserPresent:    stored.Flags.UserPresent,
			UserVerified:   stored.Flags.UserVerified,
			BackupEligible: stored.Flags.BackupEligible,
			BackupState:    stored.Flags.BackupState,
		},
		Authenticator: webauthn.Authenticator{
			AAGUID:    stored.AAGUID,
			SignCount: stored.SignCount,
		},
	}, nil
}
