// Package httpapi exposes the auth service as JSON endpoints under /api/auth.
package httpapi

import (
	"net/http"
	"time"

	"github.com/zdangz/ToDoApp-Group5/internal/auth/ceremony"
	"github.com/zdangz/ToDoApp-Group5/internal/auth/session"
)

// Server hosts the authentication HTTP endpoints.
type Server struct {
	ceremonies *ceremony.Service
	sessions   *session.Manager
	sessionTTL time.Duration
}

// NewServer builds an HTTP server over the ceremony service.
func NewServer(ceremonies *ceremony.Service, sessions *session.Manager, sessionTTL time.Duration) *Server {
	if sessionTTL <= 0 {
		sessionTTL = session.DefaultTTL
	}
	return &Server{
		ceremonies: ceremonies,
		sessions:   sessions,
		sessionTTL: sessionTTL,
	}
}

// RegisterRoutes registers the auth endpoints on the provided mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	if mux == nil {
		return
	}

	mux.HandleFunc("/api/auth/register-options", s.handleRegisterOptions)
	mux.HandleFunc("/api/auth/register-verify", s.handleRegisterVerify)
	mux.HandleFunc("/api/auth/login-options", s.handleLoginOptions)
	mux.HandleFunc("/api/auth/login-verify", s.handleLoginVerify)
	mux.HandleFunc("/api/auth/logout", s.handleLogout)
	mux.Handle("/api/auth/me", s.RequireSession(http.HandlerFunc(s.handleMe)))
	mux.HandleFunc("/up", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}
