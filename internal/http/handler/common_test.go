package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/meera-jewels/retail-api/internal/domain"
	"github.com/meera-jewels/retail-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondServiceError(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{"not found", service.ErrNotFound, http.StatusNotFound, domain.ErrorTypeNotFound},
		{"invalid transition", service.ErrInvalidTransition, http.StatusConflict, domain.ErrorTypeInvalidTransition},
		{"invalid assignee", service.ErrInvalidAssignee, http.StatusUnprocessableEntity, domain.ErrorTypeInvalidAssignee},
		{"invalid input", service.ErrInvalidInput, http.StatusBadRequest, domain.ErrorTypeBadRequest},
		{"conflict", service.ErrConflict, http.StatusConflict, domain.ErrorTypeConflict},
		{"transient", service.ErrTransient, http.StatusServiceUnavailable, domain.ErrorTypeTransient},
		{"unknown", fmt.Errorf("something broke"), http.StatusInternalServerError, domain.ErrorTypeInternal},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// errors arrive wrapped by the service layer
			wrapped := fmt.Errorf("failed to get lead: %w", tc.err)

			rec := httptest.NewRecorder()
			respondServiceError(rec, wrapped, "Operation failed")

			assert.Equal(t, tc.wantStatus, rec.Code)

			var body domain.APIError
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.wantType, body.Type)
			assert.Equal(t, tc.wantStatus, body.Status)
		})
	}
}

func TestRespondServiceError_TransientSetsRetryAfter(t *testing.T) {
	rec := httptest.NewRecorder()
	respondServiceError(rec, fmt.Errorf("failed to list leads: %w", service.ErrTransient), "Operation failed")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}
