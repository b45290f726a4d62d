// Package user defines the auth user model used as the shared identity anchor.
//
// These utilities normalize and validate usernames before they are
// persisted or bound into a WebAuthn ceremony.
package user
