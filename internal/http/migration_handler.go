package http

import (
	"context"
	"net/http"

	"github.com/cluckhub/cluckhub/internal/http/middleware"
	"github.com/cluckhub/cluckhub/internal/service"
	"github.com/cluckhub/cluckhub/pkg/logger"
)

// LegacyMigrator copies the fixed set of legacy un-namespaced keys under a
// farm namespace.
type LegacyMigrator interface {
	MigrateLegacyKeys(ctx context.Context, farmID string) (*service.MigrationResult, error)
}

// MigrationHandler serves the one-time legacy key migration under /migrate.
type MigrationHandler struct {
	migrator LegacyMigrator
	auth     *middleware.Auth
	logger   logger.Logger
}

func NewMigrationHandler(migrator LegacyMigrator, auth *middleware.Auth, logger logger.Logger) *MigrationHandler {
	return &MigrationHandler{
		migrator: migrator,
		auth:     auth,
		logger:   logger,
	}
}

func (h *MigrationHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("/migrate", h.auth.RequireAuth(http.HandlerFunc(h.handle)))
}

func (h *MigrationHandler) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	result, err := h.migrator.MigrateLegacyKeys(r.Context(), r.URL.Query().Get("farmId"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":       true,
		"migrated": result.Migrated,
		"skipped":  result.Skipped,
	})
}
