package service_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/meera-jewels/retail-api/internal/domain"
	"github.com/meera-jewels/retail-api/internal/events"
	"github.com/meera-jewels/retail-api/internal/repository"
	"github.com/meera-jewels/retail-api/internal/service"
	"github.com/meera-jewels/retail-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupReportService(t *testing.T) (*service.ReportService, *gorm.DB) {
	db := testutil.SetupTestDB(t)
	bus := events.NewBus(zap.NewNop())
	t.Cleanup(func() { _ = bus.Close() })

	svc := service.NewReportService(
		repository.NewReportRepository(db),
		repository.NewLeadRepository(db),
		repository.NewTeamMemberRepository(db),
		bus,
		zap.NewNop(),
	)
	return svc, db
}

func TestResolvePeriod(t *testing.T) {
	loc := time.UTC

	t.Run("today", func(t *testing.T) {
		now := time.Date(2025, 3, 12, 15, 30, 0, 0, loc)
		start, end, err := service.ResolvePeriod(domain.ReportPeriodToday, now)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 3, 12, 0, 0, 0, 0, loc), start)
		assert.Equal(t, time.Date(2025, 3, 12, 23, 59, 59, 0, loc), end)
	})

	t.Run("week runs monday through sunday", func(t *testing.T) {
		// Wednesday 2025-03-12
		now := time.Date(2025, 3, 12, 10, 0, 0, 0, loc)
		start, end, err := service.ResolvePeriod(domain.ReportPeriodWeek, now)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, loc), start)
		assert.Equal(t, time.Date(2025, 3, 16, 23, 59, 59, 0, loc), end)
	})

	t.Run("sunday belongs to the week that started six days earlier", func(t *testing.T) {
		// Sunday 2025-03-16
		now := time.Date(2025, 3, 16, 20, 0, 0, 0, loc)
		start, end, err := service.ResolvePeriod(domain.ReportPeriodWeek, now)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, loc), start)
		assert.Equal(t, time.Date(2025, 3, 16, 23, 59, 59, 0, loc), end)
	})

	t.Run("monday starts a new week", func(t *testing.T) {
		now := time.Date(2025, 3, 17, 0, 30, 0, 0, loc)
		start, _, err := service.ResolvePeriod(domain.ReportPeriodWeek, now)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 3, 17, 0, 0, 0, 0, loc), start)
	})

	t.Run("month is calendar month", func(t *testing.T) {
		now := time.Date(2025, 2, 14, 12, 0, 0, 0, loc)
		start, end, err := service.ResolvePeriod(domain.ReportPeriodMonth, now)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, loc), start)
		assert.Equal(t, time.Date(2025, 2, 28, 23, 59, 59, 0, loc), end)
	})

	t.Run("unknown period", func(t *testing.T) {
		_, _, err := service.ResolvePeriod(domain.ReportPeriod("quarter"), time.Now())
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})
}

func TestReportService_Generate(t *testing.T) {
	svc, db := setupReportService(t)
	ctx := context.Background()

	product := testutil.CreateTestProduct(t, db, "Gold Necklace", 120000)
	testutil.CreateTestSalesperson(t, db, "sp-1", 1)

	// assigned lead with catalog product
	assigned := testutil.CreateTestLead(t, db, 1, domain.LeadStageClosedWon, 120000)
	require.NoError(t, db.Model(&domain.Lead{}).Where("id = ?", assigned.ID).
		Updates(map[string]interface{}{"assigned_to": "sp-1", "product_id": product.ID}).Error)

	// unassigned interest-only lead
	unassigned := testutil.CreateTestLead(t, db, 1, domain.LeadStageDemo, 5000)
	require.NoError(t, db.Model(&domain.Lead{}).Where("id = ?", unassigned.ID).
		Update("interest", "silver anklet").Error)

	// lost lead
	testutil.CreateTestLead(t, db, 1, domain.LeadStageClosedLost, 8000)

	// different floor, must not appear
	testutil.CreateTestLead(t, db, 2, domain.LeadStagePotential, 999)

	report, err := svc.Generate(ctx, &domain.GenerateReportRequest{
		Floor:       1,
		Period:      domain.ReportPeriodToday,
		SubmittedBy: "manager-1",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Floor)
	assert.Equal(t, domain.ReportPeriodToday, report.Period)
	assert.Equal(t, "manager-1", report.SubmittedBy)
	assert.Equal(t, 3, report.LeadCount)
	assert.Equal(t, float64(133000), report.TotalAmount)
	assert.Equal(t, 1, report.WonCount)
	assert.Equal(t, 1, report.LostCount)
	require.Len(t, report.Leads, 3)

	rowsByLead := make(map[uuid.UUID]domain.ReportLeadDTO)
	for _, row := range report.Leads {
		rowsByLead[row.LeadID] = row
	}

	// enrichment resolved at generation time
	assert.Equal(t, "Gold Necklace", rowsByLead[assigned.ID].ProductName)
	assert.Equal(t, float64(120000), rowsByLead[assigned.ID].ProductPrice)
	assert.Equal(t, "Salesperson sp-1", rowsByLead[assigned.ID].SalespersonName)

	assert.Equal(t, "silver anklet", rowsByLead[unassigned.ID].ProductName)
	assert.Equal(t, "Unassigned", rowsByLead[unassigned.ID].SalespersonName)

	t.Run("defaults submitter", func(t *testing.T) {
		report, err := svc.Generate(ctx, &domain.GenerateReportRequest{
			Floor:  1,
			Period: domain.ReportPeriodToday,
		})
		require.NoError(t, err)
		assert.Equal(t, "system", report.SubmittedBy)
	})

	t.Run("unknown period", func(t *testing.T) {
		_, err := svc.Generate(ctx, &domain.GenerateReportRequest{
			Floor:  1,
			Period: domain.ReportPeriod("yearly"),
		})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})
}

func TestReportService_ReportsAreImmutable(t *testing.T) {
	svc, db := setupReportService(t)
	ctx := context.Background()

	product := testutil.CreateTestProduct(t, db, "Original Name", 50000)
	testutil.CreateTestSalesperson(t, db, "sp-1", 1)

	lead := testutil.CreateTestLead(t, db, 1, domain.LeadStageProposal, 50000)
	require.NoError(t, db.Model(&domain.Lead{}).Where("id = ?", lead.ID).
		Updates(map[string]interface{}{"assigned_to": "sp-1", "product_id": product.ID}).Error)

	report, err := svc.Generate(ctx, &domain.GenerateReportRequest{
		Floor:       1,
		Period:      domain.ReportPeriodToday,
		SubmittedBy: "manager-1",
	})
	require.NoError(t, err)

	// later catalog and team edits must not change the stored report
	require.NoError(t, db.Model(&domain.Product{}).Where("id = ?", product.ID).
		Update("name", "Renamed Product").Error)
	require.NoError(t, db.Model(&domain.TeamMember{}).Where("id = ?", "sp-1").
		Update("name", "Renamed Person").Error)

	stored, err := svc.GetByID(ctx, report.ID)
	require.NoError(t, err)
	require.Len(t, stored.Leads, 1)
	assert.Equal(t, "Original Name", stored.Leads[0].ProductName)
	assert.Equal(t, "Salesperson sp-1", stored.Leads[0].SalespersonName)
}

func TestReportService_ListByFloor(t *testing.T) {
	svc, db := setupReportService(t)
	ctx := context.Background()

	testutil.CreateTestLead(t, db, 1, domain.LeadStagePotential, 1000)

	for i := 0; i < 2; i++ {
		_, err := svc.Generate(ctx, &domain.GenerateReportRequest{
			Floor:       1,
			Period:      domain.ReportPeriodToday,
			SubmittedBy: "manager-1",
		})
		require.NoError(t, err)
	}
	_, err := svc.Generate(ctx, &domain.GenerateReportRequest{
		Floor:       2,
		Period:      domain.ReportPeriodToday,
		SubmittedBy: "manager-2",
	})
	require.NoError(t, err)

	reports, err := svc.ListByFloor(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, reports, 2)
	for _, r := range reports {
		assert.Equal(t, 1, r.Floor)
	}
}

func TestReportService_ExportCSV(t *testing.T) {
	svc, db := setupReportService(t)
	ctx := context.Background()

	product := testutil.CreateTestProduct(t, db, "Gold Coin 10g", 65000)
	testutil.CreateTestSalesperson(t, db, "sp-1", 1)

	lead := testutil.CreateTestLead(t, db, 1, domain.LeadStageClosedWon, 65000)
	require.NoError(t, db.Model(&domain.Lead{}).Where("id = ?", lead.ID).
		Updates(map[string]interface{}{"assigned_to": "sp-1", "product_id": product.ID}).Error)

	report, err := svc.Generate(ctx, &domain.GenerateReportRequest{
		Floor:       1,
		Period:      domain.ReportPeriodToday,
		SubmittedBy: "manager-1",
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportCSV(ctx, report.ID, &buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, []string{"Customer Name", "Product Name", "Amount", "Stage", "Salesperson", "Created Date"}, records[0])

	row := records[1]
	assert.Equal(t, "Test Customer", row[0])
	assert.Equal(t, "Gold Coin 10g", row[1])
	assert.Equal(t, "65000.00", row[2])
	assert.Equal(t, "closed_won", row[3])
	assert.Equal(t, "Salesperson sp-1", row[4])

	t.Run("missing report", func(t *testing.T) {
		var buf bytes.Buffer
		err := svc.ExportCSV(ctx, uuid.New(), &buf)
		assert.ErrorIs(t, err, service.ErrNotFound)
	})
}
