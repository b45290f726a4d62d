package httpapi

import (
	"context"
	"net/http"

	"github.com/zdangz/ToDoApp-Group5/internal/auth/session"
)

type contextKey struct{}

var identityKey contextKey

// IdentityFromContext returns the authenticated identity, when present.
func IdentityFromContext(ctx context.Context) (session.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(session.Identity)
	return identity, ok
}

// RequireSession rejects requests without a valid session cookie and adds
// the verified identity to the request context for downstream handlers.
func (s *Server) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := session.ReadCookie(r)
		if !ok {
			writeJSONError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		identity, err := s.sessions.Verify(token)
		if err != nil {
			writeJSONError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		ctx := context.WithValue(r.Context(), identityKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
