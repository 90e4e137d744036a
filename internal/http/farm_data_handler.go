package http

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/cluckhub/cluckhub/internal/domain"
	"github.com/cluckhub/cluckhub/internal/http/middleware"
	"github.com/cluckhub/cluckhub/pkg/logger"
)

// FarmDataHandler serves the farm-scoped data gateway under
// /farmData/{farmId}/{key}. GET returns the stored document or null; POST
// overwrites it wholesale after the role and shape gates.
type FarmDataHandler struct {
	dataService domain.FarmDataServiceInterface
	auth        *middleware.Auth
	logger      logger.Logger
}

func NewFarmDataHandler(dataService domain.FarmDataServiceInterface, auth *middleware.Auth, logger logger.Logger) *FarmDataHandler {
	return &FarmDataHandler{
		dataService: dataService,
		auth:        auth,
		logger:      logger,
	}
}

func (h *FarmDataHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("/farmData/", h.auth.RequireAuth(http.HandlerFunc(h.handle)))
}

func (h *FarmDataHandler) handle(w http.ResponseWriter, r *http.Request) {
	farmID, key, ok := parseFarmDataPath(r.URL.Path)
	if !ok {
		WriteJSONError(w, "expected /farmData/{farmId}/{key}", http.StatusBadRequest)
		return
	}

	email := middleware.AuthenticatedEmail(r.Context())

	switch r.Method {
	case http.MethodGet:
		data, err := h.dataService.Read(r.Context(), email, farmID, key)
		if err != nil {
			handleServiceError(w, err)
			return
		}
		if data == nil {
			// never written is not an error
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
		if err := h.dataService.Write(r.Context(), email, farmID, key, body); err != nil {
			handleServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true})

	default:
		WriteJSONError(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func parseFarmDataPath(path string) (farmID, key string, ok bool) {
	rest := strings.TrimPrefix(path, "/farmData/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}
