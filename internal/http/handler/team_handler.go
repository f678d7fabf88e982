package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/meera-jewels/retail-api/internal/domain"
	"github.com/meera-jewels/retail-api/internal/service"
	"go.uber.org/zap"
)

type TeamHandler struct {
	teamService       *service.TeamService
	assignmentService *service.AssignmentService
	logger            *zap.Logger
}

func NewTeamHandler(teamService *service.TeamService, assignmentService *service.AssignmentService, logger *zap.Logger) *TeamHandler {
	return &TeamHandler{
		teamService:       teamService,
		assignmentService: assignmentService,
		logger:            logger,
	}
}

// @Summary List team members
// @Tags Team
// @Produce json
// @Param floor query int false "Filter by floor"
// @Success 200 {array} domain.TeamMemberDTO
// @Security BearerAuth
// @Router /team [get]
func (h *TeamHandler) List(w http.ResponseWriter, r *http.Request) {
	var floor *int
	if f := r.URL.Query().Get("floor"); f != "" {
		parsed, err := parseFloor(f)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid floor parameter")
			return
		}
		floor = &parsed
	}

	members, err := h.teamService.List(r.Context(), floor)
	if err != nil {
		h.logger.Error("failed to list team members", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list team members")
		return
	}

	respondJSON(w, http.StatusOK, members)
}

// @Summary Create team member
// @Tags Team
// @Accept json
// @Produce json
// @Param request body domain.CreateTeamMemberRequest true "Member data"
// @Success 201 {object} domain.TeamMemberDTO
// @Security BearerAuth
// @Router /team [post]
func (h *TeamHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateTeamMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	member, err := h.teamService.Create(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create team member", zap.Error(err))
		respondServiceError(w, err, "Failed to create team member")
		return
	}

	w.Header().Set("Location", "/api/v1/team/"+member.ID)
	respondJSON(w, http.StatusCreated, member)
}

// @Summary Get team member
// @Tags Team
// @Produce json
// @Param id path string true "Member ID"
// @Success 200 {object} domain.TeamMemberDTO
// @Security BearerAuth
// @Router /team/{id} [get]
func (h *TeamHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	member, err := h.teamService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, "Failed to get team member")
		return
	}

	respondJSON(w, http.StatusOK, member)
}

// @Summary Update team member
// @Tags Team
// @Accept json
// @Produce json
// @Param id path string true "Member ID"
// @Param request body domain.UpdateTeamMemberRequest true "Fields to update"
// @Success 200 {object} domain.TeamMemberDTO
// @Security BearerAuth
// @Router /team/{id} [put]
func (h *TeamHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req domain.UpdateTeamMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	member, err := h.teamService.Update(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("failed to update team member", zap.Error(err), zap.String("member_id", id))
		respondServiceError(w, err, "Failed to update team member")
		return
	}

	respondJSON(w, http.StatusOK, member)
}

// @Summary List floor salespeople
// @Description List a floor's active salespeople with live active-lead counts
// @Tags Team
// @Produce json
// @Param floor query int true "Floor number"
// @Success 200 {array} domain.Salesperson
// @Security BearerAuth
// @Router /salespeople [get]
func (h *TeamHandler) ListSalespeople(w http.ResponseWriter, r *http.Request) {
	floor, err := parseFloor(r.URL.Query().Get("floor"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid or missing floor parameter")
		return
	}

	salespeople, err := h.assignmentService.GetSalespeople(r.Context(), floor)
	if err != nil {
		h.logger.Error("failed to list salespeople", zap.Error(err), zap.Int("floor", floor))
		respondWithError(w, http.StatusInternalServerError, "Failed to list salespeople")
		return
	}

	respondJSON(w, http.StatusOK, salespeople)
}

// @Summary Get salesperson's active leads
// @Description The count is recomputed from the lead store on every call
// @Tags Team
// @Produce json
// @Param id path string true "Salesperson ID"
// @Success 200 {object} ActiveLeadsResponse
// @Security BearerAuth
// @Router /salespeople/{id}/active-leads [get]
func (h *TeamHandler) GetActiveLeads(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	leads, err := h.assignmentService.GetActiveLeads(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, "Failed to get active leads")
		return
	}

	respondJSON(w, http.StatusOK, ActiveLeadsResponse{
		SalespersonID: id,
		Count:         len(leads),
		Leads:         leads,
	})
}

// ActiveLeadsResponse carries a salesperson's open leads and their count
type ActiveLeadsResponse struct {
	SalespersonID string           `json:"salespersonId"`
	Count         int              `json:"count"`
	Leads         []domain.LeadDTO `json:"leads"`
}
