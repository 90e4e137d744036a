package http

import (
	"encoding/json"
	"net/http"

	"github.com/cluckhub/cluckhub/internal/domain"
	"github.com/cluckhub/cluckhub/internal/http/middleware"
	"github.com/cluckhub/cluckhub/pkg/logger"
)

// FarmHandler serves the farm and membership registry under /farms.
// GET lists the caller's farms, POST creates one (or mutates membership via
// the action parameter), DELETE removes one.
type FarmHandler struct {
	farmService domain.FarmServiceInterface
	auth        *middleware.Auth
	logger      logger.Logger
}

func NewFarmHandler(farmService domain.FarmServiceInterface, auth *middleware.Auth, logger logger.Logger) *FarmHandler {
	return &FarmHandler{
		farmService: farmService,
		auth:        auth,
		logger:      logger,
	}
}

type createFarmRequest struct {
	Name string `json:"name"`
}

type memberRequest struct {
	FarmID string      `json:"farmId"`
	Email  string      `json:"email"`
	Role   domain.Role `json:"role,omitempty"`
}

type deleteFarmRequest struct {
	FarmID string `json:"farmId"`
}

func (h *FarmHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("/farms", h.auth.RequireAuth(http.HandlerFunc(h.handle)))
}

func (h *FarmHandler) handle(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		switch r.URL.Query().Get("action") {
		case "", "create":
			h.create(w, r)
		case "invite":
			h.invite(w, r)
		case "changeRole":
			h.changeRole(w, r)
		case "removeMember":
			h.removeMember(w, r)
		default:
			WriteJSONError(w, "unknown farms action", http.StatusBadRequest)
		}
	case http.MethodDelete:
		h.delete(w, r)
	default:
		WriteJSONError(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *FarmHandler) list(w http.ResponseWriter, r *http.Request) {
	email := middleware.AuthenticatedEmail(r.Context())

	farms, err := h.farmService.ListFarms(r.Context(), email)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":    true,
		"farms": farms,
	})
}

func (h *FarmHandler) create(w http.ResponseWriter, r *http.Request) {
	email := middleware.AuthenticatedEmail(r.Context())

	var input createFarmRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		WriteJSONError(w, "Invalid create farm request body", http.StatusBadRequest)
		return
	}

	farm, err := h.farmService.CreateFarm(r.Context(), email, input.Name)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":   true,
		"farm": farm,
	})
}

func (h *FarmHandler) delete(w http.ResponseWriter, r *http.Request) {
	email := middleware.AuthenticatedEmail(r.Context())

	farmID := r.URL.Query().Get("farmId")
	if farmID == "" {
		var input deleteFarmRequest
		if err := json.NewDecoder(r.Body).Decode(&input); err == nil {
			farmID = input.FarmID
		}
	}
	if farmID == "" {
		WriteJSONError(w, "farmId is required", http.StatusBadRequest)
		return
	}

	if err := h.farmService.DeleteFarm(r.Context(), email, farmID); err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}

func (h *FarmHandler) invite(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeMember(w, r)
	if !ok {
		return
	}

	farm, err := h.farmService.InviteMember(r.Context(), input.FarmID, input.Email, input.Role)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":   true,
		"farm": farm,
	})
}

func (h *FarmHandler) changeRole(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeMember(w, r)
	if !ok {
		return
	}

	farm, err := h.farmService.ChangeRole(r.Context(), input.FarmID, input.Email, input.Role)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":   true,
		"farm": farm,
	})
}

func (h *FarmHandler) removeMember(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeMember(w, r)
	if !ok {
		return
	}

	farm, err := h.farmService.RemoveMember(r.Context(), input.FarmID, input.Email)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":   true,
		"farm": farm,
	})
}

// decodeMember parses a membership mutation request and enforces that the
// caller is an owner or manager of the farm before any change is applied.
func (h *FarmHandler) decodeMember(w http.ResponseWriter, r *http.Request) (*memberRequest, bool) {
	var input memberRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		WriteJSONError(w, "Invalid member request body", http.StatusBadRequest)
		return nil, false
	}
	if input.FarmID == "" {
		WriteJSONError(w, "farmId is required", http.StatusBadRequest)
		return nil, false
	}

	caller := middleware.AuthenticatedEmail(r.Context())
	farm, err := h.farmService.GetFarm(r.Context(), input.FarmID)
	if err != nil {
		handleServiceError(w, err)
		return nil, false
	}
	role := farm.MemberRole(caller)
	if role != domain.RoleOwner && role != domain.RoleManager {
		WriteJSONError(w, "only owners and managers can manage members", http.StatusForbidden)
		return nil, false
	}

	return &input, true
}
