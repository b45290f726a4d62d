// Package auth defines the passwordless identity boundary of the app.
//
// It is the single place that owns user accounts, passkey credentials, and
// session issuance so the rest of the app can depend on stable user IDs
// instead of re-implementing identity rules.
//
// Subpackages:
//   - app: auth server wiring and lifecycle
//   - api/httpapi: JSON endpoints under /api/auth and session middleware
//   - ceremony: WebAuthn registration and login ceremonies
//   - challenge: single-use in-memory ceremony challenges
//   - session: signed session tokens and cookie helpers
//   - storage: persistence interfaces and the SQLite implementation
//   - user: user domain model and helpers
package auth
