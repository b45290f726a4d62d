// Package passkey configures WebAuthn relying-party settings.
//
// It models the identifiers and origins every ceremony signature is bound
// to, so registration and login verify against one shared relying party.
package passkey
