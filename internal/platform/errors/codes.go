// Package errors provides structured error handling for the auth core.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// User errors
	CodeUserEmptyUsername   Code = "USER_EMPTY_USERNAME"
	CodeUserInvalidUsername Code = "USER_INVALID_USERNAME"
	CodeUserNotFound        Code = "USER_NOT_FOUND"
	CodeAlreadyRegistered   Code = "ALREADY_REGISTERED"

	// Ceremony errors
	CodeNoCredentials      Code = "NO_CREDENTIALS"
	CodeChallengeExpired   Code = "CHALLENGE_EXPIRED"
	CodeCredentialNotFound Code = "CREDENTIAL_NOT_FOUND"
	CodeVerificationFailed Code = "VERIFICATION_FAILED"
	CodePossibleClone      Code = "POSSIBLE_CLONE_DETECTED"

	// Session errors
	CodeSessionInvalid Code = "SESSION_INVALID"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
)

// HTTPStatus maps domain codes to HTTP status codes at the API boundary.
func (c Code) HTTPStatus() int {
	switch c {
	// Bad request - validation and ceremony failures
	case CodeUserEmptyUsername,
		CodeUserInvalidUsername,
		CodeChallengeExpired,
		CodeVerificationFailed,
		CodePossibleClone:
		return http.StatusBadRequest

	// Conflict - unique resource constraint
	case CodeAlreadyRegistered:
		return http.StatusConflict

	// NotFound - resource doesn't exist
	case CodeUserNotFound,
		CodeNoCredentials,
		CodeCredentialNotFound,
		CodeNotFound:
		return http.StatusNotFound

	// Unauthorized - session failures
	case CodeSessionInvalid:
		return http.StatusUnauthorized

	default:
		return http.StatusInternalServerError
	}
}
