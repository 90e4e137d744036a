package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/cluckhub/cluckhub/internal/domain"
)

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "cluckhub_session"

// TokenVerifier resolves a session token to the subject email, or "" when
// the token is missing, tampered or expired.
type TokenVerifier interface {
	VerifySessionToken(token string) string
}

// Auth is the cookie-based authentication middleware.
type Auth struct {
	verifier TokenVerifier
}

// NewAuth creates a new auth middleware around the given verifier.
func NewAuth(verifier TokenVerifier) *Auth {
	return &Auth{verifier: verifier}
}

// RequireAuth rejects requests without a valid session cookie and stores the
// authenticated email in the request context for handlers downstream.
func (a *Auth) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email := a.SessionEmail(r)
		if email == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized"})
			return
		}

		ctx := context.WithValue(r.Context(), domain.AuthEmailKey, email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SessionEmail reads and verifies the session cookie without failing the
// request: "" means "not authenticated".
func (a *Auth) SessionEmail(r *http.Request) string {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return a.verifier.VerifySessionToken(cookie.Value)
}

// AuthenticatedEmail returns the email stored by RequireAuth, or "".
func AuthenticatedEmail(ctx context.Context) string {
	email, _ := ctx.Value(domain.AuthEmailKey).(string)
	return email
}
