package http

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/cluckhub/cluckhub/internal/domain"
	"github.com/cluckhub/cluckhub/internal/http/middleware"
	"github.com/cluckhub/cluckhub/pkg/logger"
)

// UserDataHandler serves the user-scoped data gateway under /data?key=...
// The namespace belongs to the authenticated account, so the only gates are
// authentication and a present key parameter.
type UserDataHandler struct {
	dataService domain.UserDataServiceInterface
	auth        *middleware.Auth
	logger      logger.Logger
}

func NewUserDataHandler(dataService domain.UserDataServiceInterface, auth *middleware.Auth, logger logger.Logger) *UserDataHandler {
	return &UserDataHandler{
		dataService: dataService,
		auth:        auth,
		logger:      logger,
	}
}

func (h *UserDataHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("/data", h.auth.RequireAuth(http.HandlerFunc(h.handle)))
}

func (h *UserDataHandler) handle(w http.ResponseWriter, r *http.Request) {
	email := middleware.AuthenticatedEmail(r.Context())
	key := r.URL.Query().Get("key")

	switch r.Method {
	case http.MethodGet:
		data, err := h.dataService.Read(r.Context(), email, key)
		if err != nil {
			handleServiceError(w, err)
			return
		}
		if data == nil {
			data = json.RawMessage("null")
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"ok":   true,
			"data": data,
		})

	case http.MethodPost:
		body, err := io.ReadAll(r.Body)
		if err != nil {
			WriteJSONError(w, "failed to read request body", http.StatusBadRequest)
			return
		}
		if err := h.dataService.Write(r.Context(), email, key, body); err != nil {
			handleServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true})

	default:
		WriteJSONError(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}
