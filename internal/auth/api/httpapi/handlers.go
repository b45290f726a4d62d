package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/zdangz/ToDoApp-Group5/internal/auth/session"
	"github.com/zdangz/ToDoApp-Group5/internal/auth/user"
	apperrors "github.com/zdangz/ToDoApp-Group5/internal/platform/errors"
)

type optionsRequest struct {
	Username string `json:"username"`
}

type verifyRequest struct {
	Username string          `json:"username"`
	Response json.RawMessage `json:"response"`
}

type userView struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type verifyResponse struct {
	Success bool     `json:"success"`
	User    userView `json:"user"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleRegisterOptions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var request optionsRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	creation, err := s.ceremonies.BeginRegistration(r.Context(), request.Username)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, creation)
}

func (s *Server) handleRegisterVerify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var request verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.ceremonies.FinishRegistration(r.Context(), request.Username, request.Response)
	if err != nil {
		writeError(w, err)
		return
	}

	session.WriteCookie(w, r, result.SessionToken, s.sessionTTL)
	writeJSON(w, http.StatusOK, verifyResponse{Success: true, User: viewOf(result.User)})
}

func (s *Server) handleLoginOptions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var request optionsRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	assertion, err := s.ceremonies.BeginLogin(r.Context(), request.Username)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, assertion)
}

func (s *Server) handleLoginVerify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var request verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.ceremonies.FinishLogin(r.Context(), request.Username, request.Response)
	if err != nil {
		writeError(w, err)
		return
	}

	session.WriteCookie(w, r, result.SessionToken, s.sessionTTL)
	writeJSON(w, http.StatusOK, verifyResponse{Success: true, User: viewOf(result.User)})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session.ClearCookie(w, r)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, map[string]userView{
		"user": {ID: identity.UserID, Username: identity.Username},
	})
}

func viewOf(u user.User) userView {
	return userView{ID: u.ID, Username: u.Username}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeError maps domain errors onto HTTP statuses and client messages.
//
// Verification-adjacent failures collapse into one generic response so the
// endpoint cannot be used as an oracle for which check rejected the attempt.
func writeError(w http.ResponseWriter, err error) {
	code := apperrors.GetCode(err)
	switch code {
	case apperrors.CodeUserEmptyUsername, apperrors.CodeUserInvalidUsername:
		writeJSONError(w, code.HTTPStatus(), "Invalid username")
	case apperrors.CodeAlreadyRegistered:
		writeJSONError(w, code.HTTPStatus(), "Username already exists")
	case apperrors.CodeUserNotFound:
		writeJSONError(w, code.HTTPStatus(), "User not found")
	case apperrors.CodeNoCredentials:
		writeJSONError(w, code.HTTPStatus(), "No credentials registered for user")
	case apperrors.CodeChallengeExpired:
		writeJSONError(w, code.HTTPStatus(), "Challenge not found or expired")
	case apperrors.CodeVerificationFailed, apperrors.CodePossibleClone, apperrors.CodeCredentialNotFound:
		writeJSONError(w, http.StatusBadRequest, "Verification failed")
	case apperrors.CodeSessionInvalid:
		writeJSONError(w, code.HTTPStatus(), "Unauthorized")
	default:
		writeJSONError(w, http.StatusInternalServerError, "Internal server error")
	}
}
