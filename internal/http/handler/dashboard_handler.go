package handler

import (
	"net/http"

	"github.com/meera-jewels/retail-api/internal/service"
	"go.uber.org/zap"
)

type DashboardHandler struct {
	dashboardService *service.DashboardService
	logger           *zap.Logger
}

func NewDashboardHandler(dashboardService *service.DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		logger:           logger,
	}
}

// @Summary Get floor dashboard
// @Description Returns the live pipeline projection for one floor: per-stage counts, total lead count, total pipeline amount and won/lost counts. Computed on every request, never cached.
// @Tags Dashboard
// @Produce json
// @Param floor query int true "Floor number"
// @Success 200 {object} domain.DashboardDTO
// @Security BearerAuth
// @Router /dashboard [get]
func (h *DashboardHandler) GetFloorDashboard(w http.ResponseWriter, r *http.Request) {
	floor, err := parseFloor(r.URL.Query().Get("floor"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid or missing floor parameter")
		return
	}

	dashboard, err := h.dashboardService.GetFloorDashboard(r.Context(), floor)
	if err != nil {
		h.logger.Error("failed to get floor dashboard", zap.Error(err), zap.Int("floor", floor))
		respondWithError(w, http.StatusInternalServerError, "Failed to get dashboard")
		return
	}

	respondJSON(w, http.StatusOK, dashboard)
}
