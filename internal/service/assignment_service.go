package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/meera-jewels/retail-api/internal/domain"
	"github.com/meera-jewels/retail-api/internal/events"
	"github.com/meera-jewels/retail-api/internal/mapper"
	"github.com/meera-jewels/retail-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AssignmentService assigns leads to salespeople. Assignment and stage are
// orthogonal: assigning never changes stage and closing a lead never clears
// its assignee.
type AssignmentService struct {
	leadRepo *repository.LeadRepository
	teamRepo *repository.TeamMemberRepository
	bus      *events.Bus
	logger   *zap.Logger
}

func NewAssignmentService(
	leadRepo *repository.LeadRepository,
	teamRepo *repository.TeamMemberRepository,
	bus *events.Bus,
	logger *zap.Logger,
) *AssignmentService {
	return &AssignmentService{
		leadRepo: leadRepo,
		teamRepo: teamRepo,
		bus:      bus,
		logger:   logger,
	}
}

// Assign sets the lead's salesperson, overwriting any previous assignee.
// No history of prior assignees is kept. Re-submitting the same assignment
// is idempotent and safe.
func (s *AssignmentService) Assign(ctx context.Context, leadID uuid.UUID, salespersonID string) (*domain.LeadDTO, error) {
	lead, err := s.leadRepo.GetByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}

	member, err := s.teamRepo.GetByID(ctx, salespersonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidAssignee, salespersonID)
		}
		return nil, fmt.Errorf("failed to look up salesperson: %w", err)
	}
	if !member.IsActive || !member.Role.IsSalesEligible() {
		return nil, fmt.Errorf("%w: %s is not an active salesperson", ErrInvalidAssignee, salespersonID)
	}

	if err := s.leadRepo.UpdateFields(ctx, leadID, map[string]interface{}{"assigned_to": salespersonID}); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to assign lead: %w", err)
	}

	s.logger.Info("lead assigned",
		zap.String("lead_id", leadID.String()),
		zap.String("salesperson_id", salespersonID),
		zap.String("previous", lead.AssignedTo))

	s.bus.Publish(events.LeadsTopic(lead.Floor))

	return s.reloadLead(ctx, leadID)
}

// Unassign explicitly clears the lead's salesperson. Leaving a lead
// unassigned is a deliberate state, never a side effect of other updates.
func (s *AssignmentService) Unassign(ctx context.Context, leadID uuid.UUID) (*domain.LeadDTO, error) {
	lead, err := s.leadRepo.GetByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}

	if err := s.leadRepo.UpdateFields(ctx, leadID, map[string]interface{}{"assigned_to": ""}); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to unassign lead: %w", err)
	}

	s.bus.Publish(events.LeadsTopic(lead.Floor))

	return s.reloadLead(ctx, leadID)
}

// ActiveLeadCount returns the number of open leads assigned to the
// salesperson, recomputed from the lead store on every call.
func (s *AssignmentService) ActiveLeadCount(ctx context.Context, salespersonID string) (int64, error) {
	if _, err := s.teamRepo.GetByID(ctx, salespersonID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("failed to look up salesperson: %w", err)
	}

	count, err := s.leadRepo.CountActiveByAssignee(ctx, salespersonID)
	if err != nil {
		return 0, fmt.Errorf("failed to count active leads: %w", err)
	}
	return count, nil
}

// GetActiveLeads returns the salesperson's open leads
func (s *AssignmentService) GetActiveLeads(ctx context.Context, salespersonID string) ([]domain.LeadDTO, error) {
	if _, err := s.teamRepo.GetByID(ctx, salespersonID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to look up salesperson: %w", err)
	}

	leads, err := s.leadRepo.GetActiveByAssignee(ctx, salespersonID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active leads: %w", err)
	}

	dtos := make([]domain.LeadDTO, len(leads))
	for i := range leads {
		dtos[i] = mapper.ToLeadDTO(&leads[i])
		dtos[i].NextStage = NextStage(leads[i].Stage)
	}
	return dtos, nil
}

// GetSalespeople returns a floor's active salespeople, each with a live
// active-lead count.
func (s *AssignmentService) GetSalespeople(ctx context.Context, floor int) ([]domain.Salesperson, error) {
	members, err := s.teamRepo.GetSalespeople(ctx, floor)
	if err != nil {
		return nil, fmt.Errorf("failed to list salespeople: %w", err)
	}

	salespeople := make([]domain.Salesperson, len(members))
	for i, member := range members {
		count, err := s.leadRepo.CountActiveByAssignee(ctx, member.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to count active leads for %s: %w", member.ID, err)
		}
		salespeople[i] = domain.Salesperson{
			ID:              member.ID,
			Name:            member.Name,
			Email:           member.Email,
			Role:            member.Role,
			Floor:           member.Floor,
			ActiveLeadCount: count,
		}
	}
	return salespeople, nil
}

func (s *AssignmentService) reloadLead(ctx context.Context, leadID uuid.UUID) (*domain.LeadDTO, error) {
	lead, err := s.leadRepo.GetByID(ctx, leadID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload lead: %w", err)
	}
	dto := mapper.ToLeadDTO(lead)
	dto.NextStage = NextStage(lead.Stage)
	return &dto, nil
}
