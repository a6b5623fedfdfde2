package api

import (
	"net/http"

	"github.com/Anshika-404/MockMate/internal/models"
)

// SessionMiddleware resolves the session cookie to a user. A missing or
// invalid session is a normal outcome, not an error: API callers get a 401
// and the client redirects to its entry flow.
type SessionMiddleware struct {
	gateway sessionGateway
}

// NewSessionMiddleware creates session middleware over the auth gateway.
func NewSessionMiddleware(gateway sessionGateway) *SessionMiddleware {
	return &SessionMiddleware{gateway: gateway}
}

// Authenticate resolves the session cookie and injects the user into the
// request context.
func (m *SessionMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := m.resolve(r)
		if user == nil {
			respondError(w, http.StatusUnauthorized, "unauthorized", "sign in required")
			return
		}

		ctx := ContextWithUser(r.Context(), user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *SessionMiddleware) resolve(r *http.Request) *models.User {
	cookie, err := r.Cookie(m.gateway.CookieName())
	if err != nil {
		return nil
	}

	user, err := m.gateway.Resolve(r.Context(), cookie.Value)
	if err != nil || user == nil {
		return nil
	}
	return user
}
