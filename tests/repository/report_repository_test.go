package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/meera-jewels/retail-api/internal/domain"
	"github.com/meera-jewels/retail-api/internal/repository"
	"github.com/meera-jewels/retail-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestReport(floor int, leadRows int) *domain.SalesReport {
	report := &domain.SalesReport{
		Floor:       floor,
		Period:      domain.ReportPeriodToday,
		StartDate:   time.Now().Truncate(24 * time.Hour),
		EndDate:     time.Now(),
		SubmittedBy: "manager-1",
		LeadCount:   leadRows,
	}
	for i := 0; i < leadRows; i++ {
		report.Leads = append(report.Leads, domain.ReportLead{
			LeadID:        uuid.New(),
			CustomerName:  "Customer",
			Amount:        1000,
			Stage:         domain.LeadStagePotential,
			LeadCreatedAt: time.Now(),
		})
	}
	return report
}

func TestReportRepository_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewReportRepository(db)
	ctx := context.Background()

	report := newTestReport(1, 2)
	require.NoError(t, repo.Create(ctx, report))
	require.NotEqual(t, uuid.Nil, report.ID)

	// lead rows land with the parent id set
	stored, err := repo.GetByID(ctx, report.ID)
	require.NoError(t, err)
	require.Len(t, stored.Leads, 2)
	for _, row := range stored.Leads {
		assert.Equal(t, report.ID, row.ReportID)
	}

	t.Run("empty report persists without rows", func(t *testing.T) {
		empty := newTestReport(1, 0)
		require.NoError(t, repo.Create(ctx, empty))

		stored, err := repo.GetByID(ctx, empty.ID)
		require.NoError(t, err)
		assert.Empty(t, stored.Leads)
	})
}

func TestReportRepository_GetByID_Missing(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewReportRepository(db)

	_, err := repo.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestReportRepository_ListByFloor(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewReportRepository(db)
	ctx := context.Background()

	first := newTestReport(1, 0)
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, db.Model(&domain.SalesReport{}).Where("id = ?", first.ID).
		Update("created_at", time.Now().Add(-time.Hour)).Error)

	second := newTestReport(1, 0)
	require.NoError(t, repo.Create(ctx, second))

	other := newTestReport(2, 0)
	require.NoError(t, repo.Create(ctx, other))

	reports, err := repo.ListByFloor(ctx, 1)
	require.NoError(t, err)
	require.Len(t, reports, 2)

	// newest first
	assert.Equal(t, second.ID, reports[0].ID)
	assert.Equal(t, first.ID, reports[1].ID)
}

func TestReportRepository_ListCreatedAfter(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewReportRepository(db)
	ctx := context.Background()

	old := newTestReport(1, 0)
	require.NoError(t, repo.Create(ctx, old))
	require.NoError(t, db.Model(&domain.SalesReport{}).Where("id = ?", old.ID).
		Update("created_at", time.Now().Add(-48*time.Hour)).Error)

	recent := newTestReport(1, 0)
	require.NoError(t, repo.Create(ctx, recent))

	reports, err := repo.ListCreatedAfter(ctx, 1, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, recent.ID, reports[0].ID)
}
