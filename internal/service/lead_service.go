package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/meera-jewels/retail-api/internal/domain"
	"github.com/meera-jewels/retail-api/internal/events"
	"github.com/meera-jewels/retail-api/internal/mapper"
	"github.com/meera-jewels/retail-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// stageChain is the forward progression of the pipeline. The suggested next
// stage always advances exactly one step along it, even though callers may
// jump further ahead explicitly.
var stageChain = []domain.LeadStage{
	domain.LeadStagePotential,
	domain.LeadStageDemo,
	domain.LeadStageProposal,
	domain.LeadStageNegotiation,
	domain.LeadStageClosedWon,
}

// Stage transition rules: any forward jump along the chain, back to
// potential from any open stage, and closed_lost from any open stage.
// Terminal stages have no outgoing transitions.
var validStageTransitions = map[domain.LeadStage][]domain.LeadStage{
	domain.LeadStagePotential: {
		domain.LeadStageDemo, domain.LeadStageProposal, domain.LeadStageNegotiation,
		domain.LeadStageClosedWon, domain.LeadStageClosedLost,
	},
	domain.LeadStageDemo: {
		domain.LeadStageProposal, domain.LeadStageNegotiation, domain.LeadStageClosedWon,
		domain.LeadStagePotential, domain.LeadStageClosedLost,
	},
	domain.LeadStageProposal: {
		domain.LeadStageNegotiation, domain.LeadStageClosedWon,
		domain.LeadStagePotential, domain.LeadStageClosedLost,
	},
	domain.LeadStageNegotiation: {
		domain.LeadStageClosedWon,
		domain.LeadStagePotential, domain.LeadStageClosedLost,
	},
	domain.LeadStageClosedWon:  {},
	domain.LeadStageClosedLost: {},
}

// NextStage returns the one-step-forward suggestion for a stage, or nil
// when there is none (terminal stages).
func NextStage(stage domain.LeadStage) *domain.LeadStage {
	for i, s := range stageChain {
		if s == stage && i+1 < len(stageChain) {
			next := stageChain[i+1]
			return &next
		}
	}
	return nil
}

// IsValidTransition checks if a stage transition is allowed
func IsValidTransition(from, to domain.LeadStage) bool {
	validNextStages, ok := validStageTransitions[from]
	if !ok {
		return false
	}

	for _, validStage := range validNextStages {
		if validStage == to {
			return true
		}
	}
	return false
}

// LeadService is the write and read surface of the lead store. Every
// successful mutation publishes on the floor's lead topic before returning,
// so a caller that re-fetches after its own write never sees older state.
type LeadService struct {
	leadRepo    *repository.LeadRepository
	productRepo *repository.ProductRepository
	teamRepo    *repository.TeamMemberRepository
	bus         *events.Bus
	logger      *zap.Logger
}

func NewLeadService(
	leadRepo *repository.LeadRepository,
	productRepo *repository.ProductRepository,
	teamRepo *repository.TeamMemberRepository,
	bus *events.Bus,
	logger *zap.Logger,
) *LeadService {
	return &LeadService{
		leadRepo:    leadRepo,
		productRepo: productRepo,
		teamRepo:    teamRepo,
		bus:         bus,
		logger:      logger,
	}
}

func (s *LeadService) Create(ctx context.Context, req *domain.CreateLeadRequest) (*domain.LeadDTO, error) {
	// A lead must carry either a catalog reference or a free-text interest
	if req.ProductID == nil && req.Interest == "" {
		return nil, fmt.Errorf("%w: either productId or interest is required", ErrInvalidInput)
	}

	stage := req.Stage
	if stage == "" {
		stage = domain.LeadStagePotential
	}
	if !stage.IsValid() {
		return nil, fmt.Errorf("%w: unknown stage %q", ErrInvalidInput, stage)
	}

	visitedDate := time.Now()
	if req.VisitedDate != nil {
		visitedDate = *req.VisitedDate
	}

	// Amount defaults from the selected product's price
	var amount float64
	var product *domain.Product
	if req.ProductID != nil {
		var err error
		product, err = s.productRepo.GetByID(ctx, *req.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: product %s does not exist", ErrInvalidInput, req.ProductID)
			}
			return nil, fmt.Errorf("failed to look up product: %w", err)
		}
		amount = product.Price
	}
	if req.Amount != nil {
		amount = *req.Amount
	}
	if amount < 0 {
		return nil, fmt.Errorf("%w: amount must be >= 0", ErrInvalidInput)
	}

	if req.AssignedTo != "" {
		if err := s.validateAssignee(ctx, req.AssignedTo); err != nil {
			return nil, err
		}
	}

	lead := &domain.Lead{
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		CustomerEmail: req.CustomerEmail,
		ProductID:     req.ProductID,
		Interest:      req.Interest,
		Amount:        amount,
		Stage:         stage,
		Floor:         req.Floor,
		AssignedTo:    req.AssignedTo,
		Notes:         req.Notes,
		VisitedDate:   visitedDate,
	}

	if err := s.leadRepo.Create(ctx, lead); err != nil {
		return nil, fmt.Errorf("failed to create lead: %w", err)
	}

	s.bus.Publish(events.LeadsTopic(lead.Floor))

	lead.Product = product
	dto := mapper.ToLeadDTO(lead)
	dto.NextStage = NextStage(lead.Stage)
	return &dto, nil
}

func (s *LeadService) GetByID(ctx context.Context, id uuid.UUID) (*domain.LeadDTO, error) {
	lead, err := s.leadRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}

	dto := mapper.ToLeadDTO(lead)
	dto.NextStage = NextStage(lead.Stage)
	return &dto, nil
}

// Update merges the provided fields into the lead. Stage and assignment are
// not reachable from here; they move through Transition and the assignment
// operations only.
func (s *LeadService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateLeadRequest) (*domain.LeadDTO, error) {
	lead, err := s.leadRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}

	updates := map[string]interface{}{}
	if req.CustomerName != nil {
		if *req.CustomerName == "" {
			return nil, fmt.Errorf("%w: customer name cannot be empty", ErrInvalidInput)
		}
		updates["customer_name"] = *req.CustomerName
	}
	if req.CustomerPhone != nil {
		if *req.CustomerPhone == "" {
			return nil, fmt.Errorf("%w: customer phone cannot be empty", ErrInvalidInput)
		}
		updates["customer_phone"] = *req.CustomerPhone
	}
	if req.CustomerEmail != nil {
		updates["customer_email"] = *req.CustomerEmail
	}
	if req.ProductID != nil {
		product, err := s.productRepo.GetByID(ctx, *req.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: product %s does not exist", ErrInvalidInput, req.ProductID)
			}
			return nil, fmt.Errorf("failed to look up product: %w", err)
		}
		updates["product_id"] = *req.ProductID
		// Switching products re-defaults the amount unless the caller
		// provided one explicitly
		if req.Amount == nil {
			updates["amount"] = product.Price
		}
	}
	if req.Interest != nil {
		updates["interest"] = *req.Interest
	}
	if req.Amount != nil {
		if *req.Amount < 0 {
			return nil, fmt.Errorf("%w: amount must be >= 0", ErrInvalidInput)
		}
		updates["amount"] = *req.Amount
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}

	if len(updates) > 0 {
		if err := s.leadRepo.UpdateFields(ctx, id, updates); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("failed to update lead: %w", err)
		}
		s.bus.Publish(events.LeadsTopic(lead.Floor))
	}

	return s.GetByID(ctx, id)
}

// Transition moves a lead to the target stage after validating the move
// against the transition table. A rejected transition leaves the lead
// untouched.
func (s *LeadService) Transition(ctx context.Context, id uuid.UUID, target domain.LeadStage) (*domain.LeadDTO, error) {
	lead, err := s.leadRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}

	if !target.IsValid() {
		return nil, fmt.Errorf("%w: unknown stage %q", ErrInvalidTransition, target)
	}
	if !IsValidTransition(lead.Stage, target) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, lead.Stage, target)
	}

	if err := s.leadRepo.UpdateFields(ctx, id, map[string]interface{}{"stage": target}); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update lead stage: %w", err)
	}

	s.logger.Info("lead stage changed",
		zap.String("lead_id", id.String()),
		zap.String("from", string(lead.Stage)),
		zap.String("to", string(target)))

	s.bus.Publish(events.LeadsTopic(lead.Floor))

	return s.GetByID(ctx, id)
}

// SuggestNextStage returns the one-step-forward suggestion for a lead, or
// nil when the lead is terminal.
func (s *LeadService) SuggestNextStage(ctx context.Context, id uuid.UUID) (*domain.LeadStage, error) {
	lead, err := s.leadRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}
	return NextStage(lead.Stage), nil
}

func (s *LeadService) List(ctx context.Context, filters *repository.LeadFilters, sortBy repository.LeadSortOption) ([]domain.LeadDTO, error) {
	leads, err := s.leadRepo.List(ctx, filters, sortBy)
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}

	dtos := make([]domain.LeadDTO, len(leads))
	for i := range leads {
		dtos[i] = mapper.ToLeadDTO(&leads[i])
		dtos[i].NextStage = NextStage(leads[i].Stage)
	}
	return dtos, nil
}

func (s *LeadService) validateAssignee(ctx context.Context, salespersonID string) error {
	member, err := s.teamRepo.GetByID(ctx, salespersonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %s", ErrInvalidAssignee, salespersonID)
		}
		return fmt.Errorf("failed to look up salesperson: %w", err)
	}
	if !member.IsActive || !member.Role.IsSalesEligible() {
		return fmt.Errorf("%w: %s is not an active salesperson", ErrInvalidAssignee, salespersonID)
	}
	return nil
}
