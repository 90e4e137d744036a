package http

import (
	"encoding/json"
	"net/http"

	"github.com/cluckhub/cluckhub/internal/domain"
	"github.com/cluckhub/cluckhub/internal/http/middleware"
	"github.com/cluckhub/cluckhub/pkg/logger"
)

// ProfileHandler serves profile read/update under /user?action=get|update.
type ProfileHandler struct {
	profileService domain.ProfileServiceInterface
	auth           *middleware.Auth
	logger         logger.Logger
}

func NewProfileHandler(profileService domain.ProfileServiceInterface, auth *middleware.Auth, logger logger.Logger) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		auth:           auth,
		logger:         logger,
	}
}

func (h *ProfileHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("/user", h.auth.RequireAuth(http.HandlerFunc(h.handle)))
}

func (h *ProfileHandler) handle(w http.ResponseWriter, r *http.Request) {
	email := middleware.AuthenticatedEmail(r.Context())

	switch r.URL.Query().Get("action") {
	case "", "get":
		profile, err := h.profileService.Get(r.Context(), email)
		if err != nil {
			handleServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"ok":      true,
			"profile": profile,
		})

	case "update":
		if r.Method != http.MethodPost {
			WriteJSONError(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var profile domain.Profile
		if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
			WriteJSONError(w, "Invalid profile request body", http.StatusBadRequest)
			return
		}
		updated, err := h.profileService.Update(r.Context(), email, &profile)
		if err != nil {
			handleServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"ok":      true,
			"profile": updated,
		})

	default:
		WriteJSONError(w, "unknown user action", http.StatusBadRequest)
	}
}
