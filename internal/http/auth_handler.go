package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/cluckhub/cluckhub/internal/domain"
	"github.com/cluckhub/cluckhub/internal/http/middleware"
	"github.com/cluckhub/cluckhub/pkg/logger"
)

// AuthHandler serves the credential lifecycle under /auth?action=...
type AuthHandler struct {
	authService   domain.AuthServiceInterface
	auth          *middleware.Auth
	secureCookies bool
	logger        logger.Logger
}

func NewAuthHandler(authService domain.AuthServiceInterface, auth *middleware.Auth, secureCookies bool, logger logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		auth:          auth,
		secureCookies: secureCookies,
		logger:        logger,
	}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/auth", h.handle)
}

func (h *AuthHandler) handle(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Query().Get("action") {
	case "signup":
		h.signup(w, r)
	case "login":
		h.login(w, r)
	case "logout":
		h.logout(w, r)
	case "me":
		h.me(w, r)
	case "ping":
		writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
	default:
		WriteJSONError(w, "unknown auth action", http.StatusBadRequest)
	}
}

func (h *AuthHandler) signup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var input credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		WriteJSONError(w, "Invalid signup request body", http.StatusBadRequest)
		return
	}

	resp, err := h.authService.Signup(r.Context(), input.Email, input.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.setSessionCookie(w, resp)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":         true,
		"email":      resp.Email,
		"expires_at": resp.ExpiresAt,
	})
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var input credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		WriteJSONError(w, "Invalid login request body", http.StatusBadRequest)
		return
	}

	resp, err := h.authService.Login(r.Context(), input.Email, input.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.setSessionCookie(w, resp)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":         true,
		"email":      resp.Email,
		"expires_at": resp.ExpiresAt,
	})
}

// logout overwrites the cookie with an already-expired one. The token itself
// stays cryptographically valid until its natural expiry; there is no
// server-side revocation.
func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}

// me reports the session's subject email, or null when the cookie is
// missing or invalid. Never an error: an invalid session is a state, not a
// failure.
func (h *AuthHandler) me(w http.ResponseWriter, r *http.Request) {
	var email interface{}
	if subject := h.auth.SessionEmail(r); subject != "" {
		email = subject
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":    true,
		"email": email,
	})
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, resp *domain.AuthResponse) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    resp.Token,
		Path:     "/",
		Expires:  resp.ExpiresAt,
		MaxAge:   int(domain.SessionDuration / time.Second),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
