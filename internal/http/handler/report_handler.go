package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/meera-jewels/retail-api/internal/auth"
	"github.com/meera-jewels/retail-api/internal/domain"
	"github.com/meera-jewels/retail-api/internal/service"
	"go.uber.org/zap"
)

type ReportHandler struct {
	reportService *service.ReportService
	logger        *zap.Logger
}

func NewReportHandler(reportService *service.ReportService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		logger:        logger,
	}
}

// @Summary Generate sales report
// @Description Generates an immutable report snapshot for a floor and period (today, week, month). Lead rows are enriched with product and salesperson names as of generation time.
// @Tags Reports
// @Accept json
// @Produce json
// @Param request body domain.GenerateReportRequest true "Report parameters"
// @Success 201 {object} domain.SalesReportDTO
// @Security BearerAuth
// @Router /reports [post]
func (h *ReportHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req domain.GenerateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	if req.SubmittedBy == "" {
		req.SubmittedBy = auth.SubmitterName(r.Context())
	}

	report, err := h.reportService.Generate(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to generate report", zap.Error(err), zap.Int("floor", req.Floor))
		respondServiceError(w, err, "Failed to generate report")
		return
	}

	w.Header().Set("Location", "/api/v1/reports/"+report.ID.String())
	respondJSON(w, http.StatusCreated, report)
}

// @Summary List floor reports
// @Description List a floor's submitted reports, newest first
// @Tags Reports
// @Produce json
// @Param floor query int true "Floor number"
// @Success 200 {array} domain.SalesReportDTO
// @Security BearerAuth
// @Router /reports [get]
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	floor, err := parseFloor(r.URL.Query().Get("floor"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid or missing floor parameter")
		return
	}

	reports, err := h.reportService.ListByFloor(r.Context(), floor)
	if err != nil {
		h.logger.Error("failed to list reports", zap.Error(err), zap.Int("floor", floor))
		respondWithError(w, http.StatusInternalServerError, "Failed to list reports")
		return
	}

	respondJSON(w, http.StatusOK, reports)
}

// @Summary Get report
// @Tags Reports
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} domain.SalesReportDTO
// @Security BearerAuth
// @Router /reports/{id} [get]
func (h *ReportHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid report ID: must be a valid UUID")
		return
	}

	report, err := h.reportService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, "Failed to get report")
		return
	}

	respondJSON(w, http.StatusOK, report)
}

// @Summary Export report as CSV
// @Description Streams the report's lead rows as a CSV attachment
// @Tags Reports
// @Produce text/csv
// @Param id path string true "Report ID"
// @Success 200 {string} string "CSV content"
// @Security BearerAuth
// @Router /reports/{id}/export [get]
func (h *ReportHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid report ID: must be a valid UUID")
		return
	}

	var buf bytes.Buffer
	if err := h.reportService.ExportCSV(r.Context(), id, &buf); err != nil {
		h.logger.Error("failed to export report csv", zap.Error(err), zap.String("report_id", id.String()))
		respondServiceError(w, err, "Failed to export report")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=report-%s.csv", id))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
