package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/meera-jewels/retail-api/internal/domain"
	"github.com/meera-jewels/retail-api/internal/repository"
	"github.com/meera-jewels/retail-api/internal/service"
	"go.uber.org/zap"
)

type LeadHandler struct {
	leadService       *service.LeadService
	assignmentService *service.AssignmentService
	logger            *zap.Logger
}

func NewLeadHandler(leadService *service.LeadService, assignmentService *service.AssignmentService, logger *zap.Logger) *LeadHandler {
	return &LeadHandler{
		leadService:       leadService,
		assignmentService: assignmentService,
		logger:            logger,
	}
}

// @Summary List leads
// @Description List leads with optional filters
// @Tags Leads
// @Produce json
// @Param floor query int false "Filter by floor"
// @Param stage query string false "Filter by stage (potential, demo, proposal, negotiation, closed_won, closed_lost)"
// @Param assignedTo query string false "Filter by salesperson ID; use 'none' for unassigned leads"
// @Param createdAfter query string false "Created after date (YYYY-MM-DD)"
// @Param createdBefore query string false "Created before date (YYYY-MM-DD)"
// @Param sort query string false "Sort by (created_desc, created_asc, amount_desc, amount_asc)"
// @Success 200 {array} domain.LeadDTO
// @Security BearerAuth
// @Router /leads [get]
func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	filters := &repository.LeadFilters{}

	if f := r.URL.Query().Get("floor"); f != "" {
		if floor, err := parseFloor(f); err == nil {
			filters.Floor = &floor
		}
	}

	if s := r.URL.Query().Get("stage"); s != "" {
		stage := domain.LeadStage(s)
		if !stage.IsValid() {
			respondWithError(w, http.StatusBadRequest, "Unknown stage: "+s)
			return
		}
		filters.Stage = &stage
	}

	if a := r.URL.Query().Get("assignedTo"); a != "" {
		assignee := a
		if a == "none" {
			assignee = ""
		}
		filters.AssignedTo = &assignee
	}

	if ca := r.URL.Query().Get("createdAfter"); ca != "" {
		if t, err := time.Parse("2006-01-02", ca); err == nil {
			filters.CreatedAfter = &t
		}
	}
	if cb := r.URL.Query().Get("createdBefore"); cb != "" {
		if t, err := time.Parse("2006-01-02", cb); err == nil {
			filters.CreatedBefore = &t
		}
	}

	sortBy := repository.LeadSortByCreatedDesc
	if s := r.URL.Query().Get("sort"); s != "" {
		sortBy = repository.LeadSortOption(s)
	}

	leads, err := h.leadService.List(r.Context(), filters, sortBy)
	if err != nil {
		h.logger.Error("failed to list leads", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list leads")
		return
	}

	respondJSON(w, http.StatusOK, leads)
}

// @Summary Create lead
// @Description Register a walk-in customer as a new lead
// @Tags Leads
// @Accept json
// @Produce json
// @Param request body domain.CreateLeadRequest true "Lead data"
// @Success 201 {object} domain.LeadDTO
// @Security BearerAuth
// @Router /leads [post]
func (h *LeadHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	lead, err := h.leadService.Create(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create lead", zap.Error(err))
		respondServiceError(w, err, "Failed to create lead")
		return
	}

	w.Header().Set("Location", "/api/v1/leads/"+lead.ID.String())
	respondJSON(w, http.StatusCreated, lead)
}

// @Summary Get lead
// @Description Get a lead by ID
// @Tags Leads
// @Produce json
// @Param id path string true "Lead ID"
// @Success 200 {object} domain.LeadDTO
// @Security BearerAuth
// @Router /leads/{id} [get]
func (h *LeadHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid lead ID: must be a valid UUID")
		return
	}

	lead, err := h.leadService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, "Failed to get lead")
		return
	}

	respondJSON(w, http.StatusOK, lead)
}

// @Summary Update lead
// @Description Partially update a lead's details. Stage and assignment move through their own operations.
// @Tags Leads
// @Accept json
// @Produce json
// @Param id path string true "Lead ID"
// @Param request body domain.UpdateLeadRequest true "Fields to update"
// @Success 200 {object} domain.LeadDTO
// @Security BearerAuth
// @Router /leads/{id} [put]
func (h *LeadHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid lead ID: must be a valid UUID")
		return
	}

	var req domain.UpdateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	lead, err := h.leadService.Update(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("failed to update lead", zap.Error(err), zap.String("lead_id", id.String()))
		respondServiceError(w, err, "Failed to update lead")
		return
	}

	respondJSON(w, http.StatusOK, lead)
}

// @Summary Transition lead stage
// @Description Move a lead to a new pipeline stage
// @Tags Leads
// @Accept json
// @Produce json
// @Param id path string true "Lead ID"
// @Param request body domain.TransitionLeadRequest true "Target stage"
// @Success 200 {object} domain.LeadDTO
// @Failure 409 {object} domain.APIError "Transition not allowed from the current stage"
// @Security BearerAuth
// @Router /leads/{id}/transition [post]
func (h *LeadHandler) Transition(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid lead ID: must be a valid UUID")
		return
	}

	var req domain.TransitionLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	lead, err := h.leadService.Transition(r.Context(), id, req.Stage)
	if err != nil {
		respondServiceError(w, err, "Failed to transition lead")
		return
	}

	respondJSON(w, http.StatusOK, lead)
}

// @Summary Suggest next stage
// @Description Get the one-step-forward stage suggestion for a lead
// @Tags Leads
// @Produce json
// @Param id path string true "Lead ID"
// @Success 200 {object} NextStageResponse
// @Security BearerAuth
// @Router /leads/{id}/next-stage [get]
func (h *LeadHandler) NextStage(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid lead ID: must be a valid UUID")
		return
	}

	next, err := h.leadService.SuggestNextStage(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, "Failed to suggest next stage")
		return
	}

	respondJSON(w, http.StatusOK, NextStageResponse{NextStage: next})
}

// NextStageResponse carries the suggested next stage; null for terminal leads
type NextStageResponse struct {
	NextStage *domain.LeadStage `json:"nextStage"`
}

// @Summary Assign lead
// @Description Assign a lead to a salesperson, overwriting any previous assignment
// @Tags Leads
// @Accept json
// @Produce json
// @Param id path string true "Lead ID"
// @Param request body domain.AssignLeadRequest true "Salesperson"
// @Success 200 {object} domain.LeadDTO
// @Failure 422 {object} domain.APIError "Unknown, inactive or ineligible salesperson"
// @Security BearerAuth
// @Router /leads/{id}/assign [post]
func (h *LeadHandler) Assign(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid lead ID: must be a valid UUID")
		return
	}

	var req domain.AssignLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	lead, err := h.assignmentService.Assign(r.Context(), id, req.SalespersonID)
	if err != nil {
		respondServiceError(w, err, "Failed to assign lead")
		return
	}

	respondJSON(w, http.StatusOK, lead)
}

// @Summary Unassign lead
// @Description Explicitly clear a lead's salesperson
// @Tags Leads
// @Produce json
// @Param id path string true "Lead ID"
// @Success 200 {object} domain.LeadDTO
// @Security BearerAuth
// @Router /leads/{id}/assign [delete]
func (h *LeadHandler) Unassign(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid lead ID: must be a valid UUID")
		return
	}

	lead, err := h.assignmentService.Unassign(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, "Failed to unassign lead")
		return
	}

	respondJSON(w, http.StatusOK, lead)
}
