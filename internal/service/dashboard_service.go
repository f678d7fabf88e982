package service

import (
	"context"
	"fmt"
	"time"

	"github.com/meera-jewels/retail-api/internal/domain"
	"github.com/meera-jewels/retail-api/internal/repository"
	"go.uber.org/zap"
)

// DashboardService computes the per-floor pipeline projection. It is a pure
// read over the lead store: nothing here is cached or persisted, so the
// view is always consistent with whatever state a re-fetching subscriber
// observes.
type DashboardService struct {
	leadRepo *repository.LeadRepository
	logger   *zap.Logger
}

func NewDashboardService(leadRepo *repository.LeadRepository, logger *zap.Logger) *DashboardService {
	return &DashboardService{
		leadRepo: leadRepo,
		logger:   logger,
	}
}

// GetFloorDashboard returns per-stage counts, total lead count, total
// pipeline amount and won/lost counts for one floor.
func (s *DashboardService) GetFloorDashboard(ctx context.Context, floor int) (*domain.DashboardDTO, error) {
	stats, err := s.leadRepo.GetFloorStats(ctx, floor)
	if err != nil {
		return nil, fmt.Errorf("failed to get floor stats: %w", err)
	}

	dto := &domain.DashboardDTO{
		Floor:       floor,
		StageCounts: make(map[domain.LeadStage]int64),
		TotalLeads:  stats.TotalCount,
		TotalAmount: stats.TotalAmount,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}

	// Every stage appears in the response, zero or not
	for _, stage := range []domain.LeadStage{
		domain.LeadStagePotential,
		domain.LeadStageDemo,
		domain.LeadStageProposal,
		domain.LeadStageNegotiation,
		domain.LeadStageClosedWon,
		domain.LeadStageClosedLost,
	} {
		dto.StageCounts[stage] = stats.ByStage[stage].Count
	}

	dto.WonCount = stats.ByStage[domain.LeadStageClosedWon].Count
	dto.LostCount = stats.ByStage[domain.LeadStageClosedLost].Count

	return dto, nil
}
