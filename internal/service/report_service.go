package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/meera-jewels/retail-api/internal/domain"
	"github.com/meera-jewels/retail-api/internal/events"
	"github.com/meera-jewels/retail-api/internal/mapper"
	"github.com/meera-jewels/retail-api/internal/repository"
	"github.com/meera-jewels/retail-api/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ReportService generates immutable sales report snapshots. Lead rows are
// enriched with product and salesperson names as they exist at generation
// time; later edits to the catalog or the team never change a submitted
// report.
type ReportService struct {
	reportRepo *repository.ReportRepository
	leadRepo   *repository.LeadRepository
	teamRepo   *repository.TeamMemberRepository
	bus        *events.Bus
	archive    storage.Storage
	logger     *zap.Logger
}

func NewReportService(
	reportRepo *repository.ReportRepository,
	leadRepo *repository.LeadRepository,
	teamRepo *repository.TeamMemberRepository,
	bus *events.Bus,
	logger *zap.Logger,
) *ReportService {
	return &ReportService{
		reportRepo: reportRepo,
		leadRepo:   leadRepo,
		teamRepo:   teamRepo,
		bus:        bus,
		logger:     logger,
	}
}

// SetArchive sets the export archive. Called after construction because
// archiving is optional.
func (s *ReportService) SetArchive(archive storage.Storage) {
	s.archive = archive
}

// ResolvePeriod resolves a report period to an inclusive [start, end] date
// range around the reference time, in its location.
//
// Weeks run Monday through Sunday: a Sunday belongs to the week that
// started six days earlier, not the one starting the next day.
func ResolvePeriod(period domain.ReportPeriod, now time.Time) (time.Time, time.Time, error) {
	loc := now.Location()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	switch period {
	case domain.ReportPeriodToday:
		return midnight, endOfDay(midnight), nil
	case domain.ReportPeriodWeek:
		// Monday=0 ... Sunday=6
		offset := (int(now.Weekday()) + 6) % 7
		start := midnight.AddDate(0, 0, -offset)
		return start, endOfDay(start.AddDate(0, 0, 6)), nil
	case domain.ReportPeriodMonth:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
		last := start.AddDate(0, 1, -1)
		return start, endOfDay(last), nil
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("%w: unknown period %q", ErrInvalidInput, period)
	}
}

func endOfDay(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), 23, 59, 59, 0, day.Location())
}

// Generate builds and persists one report for the floor and period, then
// publishes on the floor's reports topic.
func (s *ReportService) Generate(ctx context.Context, req *domain.GenerateReportRequest) (*domain.SalesReportDTO, error) {
	if !req.Period.IsValid() {
		return nil, fmt.Errorf("%w: unknown period %q", ErrInvalidInput, req.Period)
	}

	startDate, endDate, err := ResolvePeriod(req.Period, time.Now())
	if err != nil {
		return nil, err
	}

	leads, err := s.leadRepo.GetByFloorAndRange(ctx, req.Floor, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch leads for report: %w", err)
	}

	submittedBy := req.SubmittedBy
	if submittedBy == "" {
		submittedBy = "system"
	}

	report := &domain.SalesReport{
		Floor:       req.Floor,
		Period:      req.Period,
		StartDate:   startDate,
		EndDate:     endDate,
		Notes:       req.Notes,
		SubmittedBy: submittedBy,
		LeadCount:   len(leads),
	}

	// Salesperson names resolved once per assignee
	nameCache := make(map[string]string)
	report.Leads = make([]domain.ReportLead, len(leads))
	for i := range leads {
		lead := &leads[i]
		row := domain.ReportLead{
			LeadID:          lead.ID,
			CustomerName:    lead.CustomerName,
			CustomerPhone:   lead.CustomerPhone,
			Amount:          lead.Amount,
			Stage:           lead.Stage,
			SalespersonName: s.salespersonName(ctx, lead.AssignedTo, nameCache),
			LeadCreatedAt:   lead.CreatedAt,
		}
		if lead.Product != nil {
			row.ProductName = lead.Product.Name
			row.ProductPrice = lead.Product.Price
		} else if lead.Interest != "" {
			row.ProductName = lead.Interest
		}
		report.Leads[i] = row

		report.TotalAmount += lead.Amount
		switch lead.Stage {
		case domain.LeadStageClosedWon:
			report.WonCount++
		case domain.LeadStageClosedLost:
			report.LostCount++
		}
	}

	if err := s.reportRepo.Create(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}

	s.logger.Info("sales report generated",
		zap.String("report_id", report.ID.String()),
		zap.Int("floor", report.Floor),
		zap.String("period", string(report.Period)),
		zap.Int("lead_count", report.LeadCount),
		zap.Float64("total_amount", report.TotalAmount))

	s.bus.Publish(events.ReportsTopic(report.Floor))

	s.archiveCSV(ctx, report)

	dto := mapper.ToSalesReportDTO(report)
	return &dto, nil
}

func (s *ReportService) GetByID(ctx context.Context, id uuid.UUID) (*domain.SalesReportDTO, error) {
	report, err := s.reportRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	dto := mapper.ToSalesReportDTO(report)
	return &dto, nil
}

func (s *ReportService) ListByFloor(ctx context.Context, floor int) ([]domain.SalesReportDTO, error) {
	reports, err := s.reportRepo.ListByFloor(ctx, floor)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	dtos := make([]domain.SalesReportDTO, len(reports))
	for i := range reports {
		dtos[i] = mapper.ToSalesReportDTO(&reports[i])
	}
	return dtos, nil
}

// ExportCSV writes the report's enriched lead rows as CSV, one row per
// lead.
func (s *ReportService) ExportCSV(ctx context.Context, id uuid.UUID, w io.Writer) error {
	report, err := s.reportRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get report: %w", err)
	}

	return writeReportCSV(report, w)
}

func writeReportCSV(report *domain.SalesReport, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Customer Name", "Product Name", "Amount", "Stage", "Salesperson", "Created Date"}); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for i := range report.Leads {
		row := &report.Leads[i]
		record := []string{
			row.CustomerName,
			row.ProductName,
			strconv.FormatFloat(row.Amount, 'f', 2, 64),
			string(row.Stage),
			row.SalespersonName,
			row.LeadCreatedAt.Format("2006-01-02"),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// archiveCSV uploads the report's CSV rendering to the configured archive.
// Best effort: archiving failures never fail report generation.
func (s *ReportService) archiveCSV(ctx context.Context, report *domain.SalesReport) {
	if s.archive == nil {
		return
	}

	var buf bytes.Buffer
	if err := writeReportCSV(report, &buf); err != nil {
		s.logger.Warn("failed to render report csv for archive",
			zap.String("report_id", report.ID.String()),
			zap.Error(err))
		return
	}

	filename := fmt.Sprintf("report-%s.csv", report.ID)
	path, size, err := s.archive.Upload(ctx, filename, "text/csv", &buf)
	if err != nil {
		s.logger.Warn("failed to archive report csv",
			zap.String("report_id", report.ID.String()),
			zap.Error(err))
		return
	}

	s.logger.Info("report csv archived",
		zap.String("report_id", report.ID.String()),
		zap.String("storage_path", path),
		zap.Int64("size", size))
}

func (s *ReportService) salespersonName(ctx context.Context, salespersonID string, cache map[string]string) string {
	if salespersonID == "" {
		return "Unassigned"
	}
	if name, ok := cache[salespersonID]; ok {
		return name
	}

	name := "Unassigned"
	member, err := s.teamRepo.GetByID(ctx, salespersonID)
	if err == nil {
		name = member.Name
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Warn("failed to resolve salesperson name for report",
			zap.String("salesperson_id", salespersonID),
			zap.Error(err))
	}

	cache[salespersonID] = name
	return name
}
