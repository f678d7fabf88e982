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

func setupLeadService(t *testing.T) (*service.LeadService, *gorm.DB) {
	db := testutil.SetupTestDB(t)
	bus := events.NewBus(zap.NewNop())
	t.Cleanup(func() { _ = bus.Close() })

	svc := service.NewLeadService(
		repository.NewLeadRepository(db),
		repository.NewProductRepository(db),
		repository.NewTeamMemberRepository(db),
		bus,
		zap.NewNop(),
	)
	return svc, db
}

func TestLeadService_Create(t *testing.T) {
	svc, db := setupLeadService(t)
	ctx := context.Background()

	t.Run("defaults amount from product price", func(t *testing.T) {
		product := testutil.CreateTestProduct(t, db, "Gold Ring", 45000)

		lead, err := svc.Create(ctx, &domain.CreateLeadRequest{
			CustomerName:  "Asha Nair",
			CustomerPhone: "9812345670",
			ProductID:     &product.ID,
			Floor:         1,
		})
		require.NoError(t, err)
		assert.Equal(t, float64(45000), lead.Amount)
		assert.Equal(t, domain.LeadStagePotential, lead.Stage)
		assert.Equal(t, "Gold Ring", lead.ProductName)
	})

	t.Run("explicit amount overrides product price", func(t *testing.T) {
		product := testutil.CreateTestProduct(t, db, "Diamond Pendant", 90000)
		amount := 82000.0

		lead, err := svc.Create(ctx, &domain.CreateLeadRequest{
			CustomerName:  "Ravi Menon",
			CustomerPhone: "9812345671",
			ProductID:     &product.ID,
			Amount:        &amount,
			Floor:         1,
		})
		require.NoError(t, err)
		assert.Equal(t, 82000.0, lead.Amount)
	})

	t.Run("interest only lead has zero amount", func(t *testing.T) {
		lead, err := svc.Create(ctx, &domain.CreateLeadRequest{
			CustomerName:  "Walk In",
			CustomerPhone: "9812345672",
			Interest:      "bridal set",
			Floor:         2,
		})
		require.NoError(t, err)
		assert.Equal(t, float64(0), lead.Amount)
		assert.Equal(t, "bridal set", lead.Interest)
	})

	t.Run("requires product or interest", func(t *testing.T) {
		_, err := svc.Create(ctx, &domain.CreateLeadRequest{
			CustomerName:  "No Interest",
			CustomerPhone: "9812345673",
			Floor:         1,
		})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})

	t.Run("rejects negative amount", func(t *testing.T) {
		amount := -1.0
		_, err := svc.Create(ctx, &domain.CreateLeadRequest{
			CustomerName:  "Negative",
			CustomerPhone: "9812345674",
			Interest:      "coins",
			Amount:        &amount,
			Floor:         1,
		})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})

	t.Run("rejects unknown product", func(t *testing.T) {
		missing := uuid.New()
		_, err := svc.Create(ctx, &domain.CreateLeadRequest{
			CustomerName:  "Ghost Product",
			CustomerPhone: "9812345675",
			ProductID:     &missing,
			Floor:         1,
		})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})

	t.Run("rejects inactive assignee", func(t *testing.T) {
		member := testutil.CreateTestSalesperson(t, db, "sp-inactive", 1)
		member.IsActive = false
		require.NoError(t, db.Save(member).Error)

		_, err := svc.Create(ctx, &domain.CreateLeadRequest{
			CustomerName:  "Assigned",
			CustomerPhone: "9812345676",
			Interest:      "earrings",
			Floor:         1,
			AssignedTo:    "sp-inactive",
		})
		assert.ErrorIs(t, err, service.ErrInvalidAssignee)
	})
}

func TestLeadService_Transition(t *testing.T) {
	svc, db := setupLeadService(t)
	ctx := context.Background()

	stages := []domain.LeadStage{
		domain.LeadStagePotential,
		domain.LeadStageDemo,
		domain.LeadStageProposal,
		domain.LeadStageNegotiation,
		domain.LeadStageClosedWon,
		domain.LeadStageClosedLost,
	}

	// expected[from][to]
	expected := map[domain.LeadStage]map[domain.LeadStage]bool{
		domain.LeadStagePotential: {
			domain.LeadStageDemo: true, domain.LeadStageProposal: true,
			domain.LeadStageNegotiation: true, domain.LeadStageClosedWon: true,
			domain.LeadStageClosedLost: true,
		},
		domain.LeadStageDemo: {
			domain.LeadStagePotential: true, domain.LeadStageProposal: true,
			domain.LeadStageNegotiation: true, domain.LeadStageClosedWon: true,
			domain.LeadStageClosedLost: true,
		},
		domain.LeadStageProposal: {
			domain.LeadStagePotential: true, domain.LeadStageNegotiation: true,
			domain.LeadStageClosedWon: true, domain.LeadStageClosedLost: true,
		},
		domain.LeadStageNegotiation: {
			domain.LeadStagePotential: true, domain.LeadStageClosedWon: true,
			domain.LeadStageClosedLost: true,
		},
		domain.LeadStageClosedWon:  {},
		domain.LeadStageClosedLost: {},
	}

	for _, from := range stages {
		for _, to := range stages {
			if from == to {
				continue
			}
			from, to := from, to
			t.Run(string(from)+"_to_"+string(to), func(t *testing.T) {
				lead := testutil.CreateTestLead(t, db, 1, from, 1000)

				result, err := svc.Transition(ctx, lead.ID, to)
				if expected[from][to] {
					require.NoError(t, err)
					assert.Equal(t, to, result.Stage)
				} else {
					assert.ErrorIs(t, err, service.ErrInvalidTransition)

					// rejected transition leaves the lead untouched
					unchanged, getErr := svc.GetByID(ctx, lead.ID)
					require.NoError(t, getErr)
					assert.Equal(t, from, unchanged.Stage)
				}
			})
		}
	}

	t.Run("same stage is rejected", func(t *testing.T) {
		lead := testutil.CreateTestLead(t, db, 1, domain.LeadStageDemo, 1000)
		_, err := svc.Transition(ctx, lead.ID, domain.LeadStageDemo)
		assert.ErrorIs(t, err, service.ErrInvalidTransition)
	})

	t.Run("terminal rejection is repeatable", func(t *testing.T) {
		lead := testutil.CreateTestLead(t, db, 1, domain.LeadStageClosedWon, 1000)

		for i := 0; i < 3; i++ {
			_, err := svc.Transition(ctx, lead.ID, domain.LeadStageDemo)
			assert.ErrorIs(t, err, service.ErrInvalidTransition)
		}

		unchanged, err := svc.GetByID(ctx, lead.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.LeadStageClosedWon, unchanged.Stage)
	})

	t.Run("unknown stage is rejected", func(t *testing.T) {
		lead := testutil.CreateTestLead(t, db, 1, domain.LeadStagePotential, 1000)
		_, err := svc.Transition(ctx, lead.ID, domain.LeadStage("archived"))
		assert.ErrorIs(t, err, service.ErrInvalidTransition)
	})

	t.Run("missing lead", func(t *testing.T) {
		_, err := svc.Transition(ctx, uuid.New(), domain.LeadStageDemo)
		assert.ErrorIs(t, err, service.ErrNotFound)
	})
}

func TestNextStage(t *testing.T) {
	cases := []struct {
		stage domain.LeadStage
		next  *domain.LeadStage
	}{
		{domain.LeadStagePotential, stagePtr(domain.LeadStageDemo)},
		{domain.LeadStageDemo, stagePtr(domain.LeadStageProposal)},
		{domain.LeadStageProposal, stagePtr(domain.LeadStageNegotiation)},
		{domain.LeadStageNegotiation, stagePtr(domain.LeadStageClosedWon)},
		{domain.LeadStageClosedWon, nil},
		{domain.LeadStageClosedLost, nil},
	}

	for _, tc := range cases {
		t.Run(string(tc.stage), func(t *testing.T) {
			got := service.NextStage(tc.stage)
			if tc.next == nil {
				assert.Nil(t, got)
			} else {
				require.NotNil(t, got)
				assert.Equal(t, *tc.next, *got)
			}
		})
	}
}

func TestLeadService_SuggestNextStage(t *testing.T) {
	svc, db := setupLeadService(t)
	ctx := context.Background()

	lead := testutil.CreateTestLead(t, db, 1, domain.LeadStageProposal, 5000)

	next, err := svc.SuggestNextStage(ctx, lead.ID)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, domain.LeadStageNegotiation, *next)

	won := testutil.CreateTestLead(t, db, 1, domain.LeadStageClosedWon, 5000)
	next, err = svc.SuggestNextStage(ctx, won.ID)
	require.NoError(t, err)
	assert.Nil(t, next)
}

func TestLeadService_Update(t *testing.T) {
	svc, db := setupLeadService(t)
	ctx := context.Background()

	t.Run("partial update leaves other fields", func(t *testing.T) {
		lead := testutil.CreateTestLead(t, db, 1, domain.LeadStageDemo, 3000)

		notes := "asked for hallmark certificate"
		updated, err := svc.Update(ctx, lead.ID, &domain.UpdateLeadRequest{Notes: &notes})
		require.NoError(t, err)
		assert.Equal(t, notes, updated.Notes)
		assert.Equal(t, "Test Customer", updated.CustomerName)
		assert.Equal(t, domain.LeadStageDemo, updated.Stage)
		assert.Equal(t, 1, updated.Floor)
	})

	t.Run("switching product re-defaults amount", func(t *testing.T) {
		lead := testutil.CreateTestLead(t, db, 1, domain.LeadStagePotential, 3000)
		product := testutil.CreateTestProduct(t, db, "Gold Bangle", 62000)

		updated, err := svc.Update(ctx, lead.ID, &domain.UpdateLeadRequest{ProductID: &product.ID})
		require.NoError(t, err)
		assert.Equal(t, float64(62000), updated.Amount)
	})

	t.Run("rejects empty customer name", func(t *testing.T) {
		lead := testutil.CreateTestLead(t, db, 1, domain.LeadStagePotential, 3000)
		empty := ""
		_, err := svc.Update(ctx, lead.ID, &domain.UpdateLeadRequest{CustomerName: &empty})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})

	t.Run("missing lead", func(t *testing.T) {
		notes := "x"
		_, err := svc.Update(ctx, uuid.New(), &domain.UpdateLeadRequest{Notes: &notes})
		assert.ErrorIs(t, err, service.ErrNotFound)
	})
}

func TestLeadService_List(t *testing.T) {
	svc, db := setupLeadService(t)
	ctx := context.Background()

	testutil.CreateTestLead(t, db, 1, domain.LeadStagePotential, 1000)
	testutil.CreateTestLead(t, db, 1, domain.LeadStageDemo, 2000)
	testutil.CreateTestLead(t, db, 2, domain.LeadStagePotential, 3000)

	t.Run("filter by floor", func(t *testing.T) {
		floor := 1
		leads, err := svc.List(ctx, &repository.LeadFilters{Floor: &floor}, repository.LeadSortByCreatedDesc)
		require.NoError(t, err)
		assert.Len(t, leads, 2)
	})

	t.Run("filter by stage", func(t *testing.T) {
		stage := domain.LeadStageDemo
		leads, err := svc.List(ctx, &repository.LeadFilters{Stage: &stage}, repository.LeadSortByCreatedDesc)
		require.NoError(t, err)
		assert.Len(t, leads, 1)
		assert.Equal(t, float64(2000), leads[0].Amount)
	})

	t.Run("filter unassigned", func(t *testing.T) {
		unassigned := ""
		leads, err := svc.List(ctx, &repository.LeadFilters{AssignedTo: &unassigned}, repository.LeadSortByCreatedDesc)
		require.NoError(t, err)
		assert.Len(t, leads, 3)
	})

	t.Run("sort by amount", func(t *testing.T) {
		leads, err := svc.List(ctx, nil, repository.LeadSortByAmountDesc)
		require.NoError(t, err)
		require.Len(t, leads, 3)
		assert.Equal(t, float64(3000), leads[0].Amount)
		assert.Equal(t, float64(1000), leads[2].Amount)
	})
}

func stagePtr(s domain.LeadStage) *domain.LeadStage {
	return &s
}
