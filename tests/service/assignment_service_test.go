package service_test

import (
	"context"
	"testing"

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

func setupAssignmentService(t *testing.T) (*service.AssignmentService, *gorm.DB) {
	db := testutil.SetupTestDB(t)
	bus := events.NewBus(zap.NewNop())
	t.Cleanup(func() { _ = bus.Close() })

	svc := service.NewAssignmentService(
		repository.NewLeadRepository(db),
		repository.NewTeamMemberRepository(db),
		bus,
		zap.NewNop(),
	)
	return svc, db
}

func TestAssignmentService_Assign(t *testing.T) {
	svc, db := setupAssignmentService(t)
	ctx := context.Background()

	t.Run("assigns and overwrites previous assignee", func(t *testing.T) {
		testutil.CreateTestSalesperson(t, db, "sp-1", 1)
		testutil.CreateTestSalesperson(t, db, "sp-2", 1)
		lead := testutil.CreateTestLead(t, db, 1, domain.LeadStagePotential, 1000)

		assigned, err := svc.Assign(ctx, lead.ID, "sp-1")
		require.NoError(t, err)
		assert.Equal(t, "sp-1", assigned.AssignedTo)

		// reassignment replaces, no history kept
		reassigned, err := svc.Assign(ctx, lead.ID, "sp-2")
		require.NoError(t, err)
		assert.Equal(t, "sp-2", reassigned.AssignedTo)
	})

	t.Run("same assignment is idempotent", func(t *testing.T) {
		testutil.CreateTestSalesperson(t, db, "sp-3", 1)
		lead := testutil.CreateTestLead(t, db, 1, domain.LeadStageDemo, 1000)

		for i := 0; i < 2; i++ {
			assigned, err := svc.Assign(ctx, lead.ID, "sp-3")
			require.NoError(t, err)
			assert.Equal(t, "sp-3", assigned.AssignedTo)
		}
	})

	t.Run("assignment does not change stage", func(t *testing.T) {
		testutil.CreateTestSalesperson(t, db, "sp-4", 1)
		lead := testutil.CreateTestLead(t, db, 1, domain.LeadStageNegotiation, 1000)

		assigned, err := svc.Assign(ctx, lead.ID, "sp-4")
		require.NoError(t, err)
		assert.Equal(t, domain.LeadStageNegotiation, assigned.Stage)
	})

	t.Run("unknown salesperson", func(t *testing.T) {
		lead := testutil.CreateTestLead(t, db, 1, domain.LeadStagePotential, 1000)
		_, err := svc.Assign(ctx, lead.ID, "sp-missing")
		assert.ErrorIs(t, err, service.ErrInvalidAssignee)
	})

	t.Run("inactive salesperson", func(t *testing.T) {
		member := testutil.CreateTestSalesperson(t, db, "sp-gone", 1)
		member.IsActive = false
		require.NoError(t, db.Save(member).Error)

		lead := testutil.CreateTestLead(t, db, 1, domain.LeadStagePotential, 1000)
		_, err := svc.Assign(ctx, lead.ID, "sp-gone")
		assert.ErrorIs(t, err, service.ErrInvalidAssignee)
	})

	t.Run("cashier is not sales eligible", func(t *testing.T) {
		cashier := &domain.TeamMember{
			ID:       "cash-1",
			Name:     "Till Operator",
			Email:    "cash-1@example.com",
			Role:     domain.TeamRoleCashier,
			Floor:    1,
			IsActive: true,
		}
		require.NoError(t, db.Create(cashier).Error)

		lead := testutil.CreateTestLead(t, db, 1, domain.LeadStagePotential, 1000)
		_, err := svc.Assign(ctx, lead.ID, "cash-1")
		assert.ErrorIs(t, err, service.ErrInvalidAssignee)
	})

	t.Run("missing lead", func(t *testing.T) {
		testutil.CreateTestSalesperson(t, db, "sp-5", 1)
		_, err := svc.Assign(ctx, uuid.New(), "sp-5")
		assert.ErrorIs(t, err, service.ErrNotFound)
	})
}

func TestAssignmentService_Unassign(t *testing.T) {
	svc, db := setupAssignmentService(t)
	ctx := context.Background()

	testutil.CreateTestSalesperson(t, db, "sp-1", 1)
	lead := testutil.CreateTestLead(t, db, 1, domain.LeadStagePotential, 1000)

	_, err := svc.Assign(ctx, lead.ID, "sp-1")
	require.NoError(t, err)

	unassigned, err := svc.Unassign(ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, "", unassigned.AssignedTo)

	// unassigning an already-unassigned lead is fine
	again, err := svc.Unassign(ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, "", again.AssignedTo)
}

func TestAssignmentService_ActiveLeadCount(t *testing.T) {
	svc, db := setupAssignmentService(t)
	ctx := context.Background()

	testutil.CreateTestSalesperson(t, db, "sp-1", 1)

	open1 := testutil.CreateTestLead(t, db, 1, domain.LeadStagePotential, 1000)
	open2 := testutil.CreateTestLead(t, db, 1, domain.LeadStageDemo, 1000)
	won := testutil.CreateTestLead(t, db, 1, domain.LeadStageClosedWon, 1000)
	lost := testutil.CreateTestLead(t, db, 1, domain.LeadStageClosedLost, 1000)

	for _, l := range []*domain.Lead{open1, open2, won, lost} {
		err := db.Model(&domain.Lead{}).Where("id = ?", l.ID).Update("assigned_to", "sp-1").Error
		require.NoError(t, err)
	}

	count, err := svc.ActiveLeadCount(ctx, "sp-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	// counts recompute live: closing an open lead drops it immediately
	require.NoError(t, db.Model(&domain.Lead{}).Where("id = ?", open1.ID).
		Update("stage", domain.LeadStageClosedWon).Error)

	count, err = svc.ActiveLeadCount(ctx, "sp-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	t.Run("unknown salesperson", func(t *testing.T) {
		_, err := svc.ActiveLeadCount(ctx, "sp-missing")
		assert.ErrorIs(t, err, service.ErrNotFound)
	})
}

func TestAssignmentService_GetSalespeople(t *testing.T) {
	svc, db := setupAssignmentService(t)
	ctx := context.Background()

	testutil.CreateTestSalesperson(t, db, "sp-1", 1)
	testutil.CreateTestSalesperson(t, db, "sp-2", 1)
	testutil.CreateTestSalesperson(t, db, "sp-other-floor", 2)

	inactive := testutil.CreateTestSalesperson(t, db, "sp-inactive", 1)
	inactive.IsActive = false
	require.NoError(t, db.Save(inactive).Error)

	lead := testutil.CreateTestLead(t, db, 1, domain.LeadStageDemo, 1000)
	require.NoError(t, db.Model(&domain.Lead{}).Where("id = ?", lead.ID).
		Update("assigned_to", "sp-1").Error)

	salespeople, err := svc.GetSalespeople(ctx, 1)
	require.NoError(t, err)
	require.Len(t, salespeople, 2)

	byID := make(map[string]int64)
	for _, sp := range salespeople {
		byID[sp.ID] = sp.ActiveLeadCount
	}
	assert.Equal(t, int64(1), byID["sp-1"])
	assert.Equal(t, int64(0), byID["sp-2"])
}
