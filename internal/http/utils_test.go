package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cluckhub/cluckhub/internal/domain"
)

func TestHandleServiceError(t *testing.T) {
	testCases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"unauthorized", domain.ErrUnauthorized, http.StatusUnauthorized},
		{"wrapped unauthorized", errors.Join(errors.New("context"), domain.ErrUnauthorized), http.StatusUnauthorized},
		{"validation", domain.NewValidationError("name is required"), http.StatusBadRequest},
		{"permission", domain.NewPermissionError(domain.RoleViewer, "dailyLog", "read only"), http.StatusForbidden},
		{"not found", &domain.ErrNotFound{Entity: "farm", ID: "abc"}, http.StatusNotFound},
		{"account exists", &domain.ErrAccountExists{Email: "a@b.com"}, http.StatusConflict},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handleServiceError(rec, tc.err)

			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestWriteJSONError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSONError(rec, "boom", http.StatusBadRequest)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"boom"}`, rec.Body.String())
}
