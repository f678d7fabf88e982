package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/meera-jewels/retail-api/internal/domain"
	"github.com/meera-jewels/retail-api/internal/events"
	"github.com/meera-jewels/retail-api/internal/http/handler"
	"github.com/meera-jewels/retail-api/internal/repository"
	"github.com/meera-jewels/retail-api/internal/service"
	"github.com/meera-jewels/retail-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupLeadRouter(t *testing.T) (*chi.Mux, *gorm.DB) {
	db := testutil.SetupTestDB(t)
	bus := events.NewBus(zap.NewNop())
	t.Cleanup(func() { _ = bus.Close() })

	leadRepo := repository.NewLeadRepository(db)
	productRepo := repository.NewProductRepository(db)
	teamRepo := repository.NewTeamMemberRepository(db)

	leadService := service.NewLeadService(leadRepo, productRepo, teamRepo, bus, zap.NewNop())
	assignmentService := service.NewAssignmentService(leadRepo, teamRepo, bus, zap.NewNop())
	h := handler.NewLeadHandler(leadService, assignmentService, zap.NewNop())

	r := chi.NewRouter()
	r.Route("/leads", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.GetByID)
		r.Put("/{id}", h.Update)
		r.Get("/{id}/next-stage", h.NextStage)
		r.Post("/{id}/transition", h.Transition)
		r.Post("/{id}/assign", h.Assign)
		r.Delete("/{id}/assign", h.Unassign)
	})
	return r, db
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestLeadHandler_Create(t *testing.T) {
	router, _ := setupLeadRouter(t)

	t.Run("creates with location header", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/leads", map[string]interface{}{
			"customerName":  "Anita Desai",
			"customerPhone": "9812345678",
			"interest":      "gold chain",
			"floor":         1,
		})
		require.Equal(t, http.StatusCreated, rec.Code)

		var lead domain.LeadDTO
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lead))
		assert.Equal(t, domain.LeadStagePotential, lead.Stage)
		assert.Equal(t, "/api/v1/leads/"+lead.ID.String(), rec.Header().Get("Location"))
	})

	t.Run("rejects malformed json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/leads", bytes.NewBufferString("{not json"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("validation errors name the field", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/leads", map[string]interface{}{
			"customerPhone": "9812345678",
			"interest":      "gold chain",
			"floor":         1,
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var apiErr domain.APIError
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
		assert.Equal(t, domain.ErrorTypeValidation, apiErr.Type)
		assert.Contains(t, apiErr.Errors, "customerName")
	})

	t.Run("rejects lead without product or interest", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/leads", map[string]interface{}{
			"customerName":  "Anita Desai",
			"customerPhone": "9812345678",
			"floor":         1,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestLeadHandler_Transition(t *testing.T) {
	router, db := setupLeadRouter(t)

	lead := testutil.CreateTestLead(t, db, 1, domain.LeadStagePotential, 1000)

	t.Run("moves forward", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, fmt.Sprintf("/leads/%s/transition", lead.ID),
			map[string]string{"stage": "demo"})
		require.Equal(t, http.StatusOK, rec.Code)

		var dto domain.LeadDTO
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
		assert.Equal(t, domain.LeadStageDemo, dto.Stage)
	})

	t.Run("illegal jump conflicts", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, fmt.Sprintf("/leads/%s/transition", lead.ID),
			map[string]string{"stage": "closed_won"})
		require.Equal(t, http.StatusConflict, rec.Code)

		var apiErr domain.APIError
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
		assert.Equal(t, domain.ErrorTypeInvalidTransition, apiErr.Type)
	})

	t.Run("missing lead", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, fmt.Sprintf("/leads/%s/transition", uuid.New()),
			map[string]string{"stage": "demo"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("bad uuid", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/leads/not-a-uuid/transition",
			map[string]string{"stage": "demo"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestLeadHandler_Assign(t *testing.T) {
	router, db := setupLeadRouter(t)

	testutil.CreateTestSalesperson(t, db, "sp-1", 1)
	lead := testutil.CreateTestLead(t, db, 1, domain.LeadStagePotential, 1000)

	t.Run("assigns", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, fmt.Sprintf("/leads/%s/assign", lead.ID),
			map[string]string{"salespersonId": "sp-1"})
		require.Equal(t, http.StatusOK, rec.Code)

		var dto domain.LeadDTO
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
		assert.Equal(t, "sp-1", dto.AssignedTo)
	})

	t.Run("unknown salesperson is unprocessable", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, fmt.Sprintf("/leads/%s/assign", lead.ID),
			map[string]string{"salespersonId": "sp-missing"})
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		var apiErr domain.APIError
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
		assert.Equal(t, domain.ErrorTypeInvalidAssignee, apiErr.Type)
	})

	t.Run("unassign clears", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodDelete, fmt.Sprintf("/leads/%s/assign", lead.ID), nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var dto domain.LeadDTO
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
		assert.Empty(t, dto.AssignedTo)
	})
}

func TestLeadHandler_List(t *testing.T) {
	router, db := setupLeadRouter(t)

	testutil.CreateTestLead(t, db, 1, domain.LeadStagePotential, 1000)
	testutil.CreateTestLead(t, db, 1, domain.LeadStageDemo, 2000)
	testutil.CreateTestLead(t, db, 2, domain.LeadStagePotential, 3000)

	t.Run("filters by floor", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/leads?floor=1", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var leads []domain.LeadDTO
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &leads))
		assert.Len(t, leads, 2)
	})

	t.Run("assignedTo none returns unassigned", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/leads?assignedTo=none", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var leads []domain.LeadDTO
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &leads))
		assert.Len(t, leads, 3)
	})

	t.Run("unknown stage rejected", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/leads?stage=wishful", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestLeadHandler_NextStage(t *testing.T) {
	router, db := setupLeadRouter(t)

	open := testutil.CreateTestLead(t, db, 1, domain.LeadStageProposal, 1000)
	closed := testutil.CreateTestLead(t, db, 1, domain.LeadStageClosedWon, 1000)

	rec := doJSON(t, router, http.MethodGet, fmt.Sprintf("/leads/%s/next-stage", open.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp handler.NextStageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.NextStage)
	assert.Equal(t, domain.LeadStageNegotiation, *resp.NextStage)

	// terminal leads suggest nothing
	rec = doJSON(t, router, http.MethodGet, fmt.Sprintf("/leads/%s/next-stage", closed.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Nil(t, resp.NextStage)
}
