package http

import (
	"context"
	"net/http"

	"github.com/cluckhub/cluckhub/internal/http/middleware"
	"github.com/cluckhub/cluckhub/pkg/logger"
)

// CalendarExporter renders a farm's reminders and shed placements as an
// iCalendar document.
type CalendarExporter interface {
	Export(ctx context.Context, email, farmID string) (string, error)
}

// ICSHandler serves the calendar export under /ics?farmId=...
type ICSHandler struct {
	calendar CalendarExporter
	auth     *middleware.Auth
	logger   logger.Logger
}

func NewICSHandler(calendar CalendarExporter, auth *middleware.Auth, logger logger.Logger) *ICSHandler {
	return &ICSHandler{
		calendar: calendar,
		auth:     auth,
		logger:   logger,
	}
}

func (h *ICSHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("/ics", h.auth.RequireAuth(http.HandlerFunc(h.handle)))
}

func (h *ICSHandler) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	farmID := r.URL.Query().Get("farmId")
	if farmID == "" {
		WriteJSONError(w, "farmId is required", http.StatusBadRequest)
		return
	}

	email := middleware.AuthenticatedEmail(r.Context())
	ics, err := h.calendar.Export(r.Context(), email, farmID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="cluckhub.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(ics))
}
