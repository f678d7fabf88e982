package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/meera-jewels/retail-api/internal/domain"
	"github.com/meera-jewels/retail-api/internal/mapper"
	"github.com/meera-jewels/retail-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TeamService manages the staff roster. Member IDs are short stable
// codes chosen at creation, not generated, so badges and rosters can
// refer to them directly.
type TeamService struct {
	teamRepo *repository.TeamMemberRepository
	logger   *zap.Logger
}

func NewTeamService(teamRepo *repository.TeamMemberRepository, logger *zap.Logger) *TeamService {
	return &TeamService{
		teamRepo: teamRepo,
		logger:   logger,
	}
}

func (s *TeamService) Create(ctx context.Context, req *domain.CreateTeamMemberRequest) (*domain.TeamMemberDTO, error) {
	if !req.Role.IsValid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, req.Role)
	}

	existing, err := s.teamRepo.GetByID(ctx, req.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check member id: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: member %s already exists", ErrConflict, req.ID)
	}

	member := &domain.TeamMember{
		ID:       req.ID,
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Role:     req.Role,
		Floor:    req.Floor,
		IsActive: true,
	}

	if err := s.teamRepo.Create(ctx, member); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: member %s already exists", ErrConflict, req.ID)
		}
		return nil, fmt.Errorf("failed to create team member: %w", err)
	}

	s.logger.Info("team member created",
		zap.String("member_id", member.ID),
		zap.String("role", string(member.Role)),
		zap.Int("floor", member.Floor))

	dto := mapper.ToTeamMemberDTO(member)
	return &dto, nil
}

func (s *TeamService) GetByID(ctx context.Context, id string) (*domain.TeamMemberDTO, error) {
	member, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get team member: %w", err)
	}

	dto := mapper.ToTeamMemberDTO(member)
	return &dto, nil
}

func (s *TeamService) Update(ctx context.Context, id string, req *domain.UpdateTeamMemberRequest) (*domain.TeamMemberDTO, error) {
	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Role != nil {
		if !req.Role.IsValid() {
			return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, *req.Role)
		}
		updates["role"] = *req.Role
	}
	if req.Floor != nil {
		updates["floor"] = *req.Floor
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := s.teamRepo.UpdateFields(ctx, id, updates); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("failed to update team member: %w", err)
		}
	}

	return s.GetByID(ctx, id)
}

func (s *TeamService) List(ctx context.Context, floor *int) ([]domain.TeamMemberDTO, error) {
	members, err := s.teamRepo.List(ctx, floor)
	if err != nil {
		return nil, fmt.Errorf("failed to list team members: %w", err)
	}

	dtos := make([]domain.TeamMemberDTO, len(members))
	for i := range members {
		dtos[i] = mapper.ToTeamMemberDTO(&members[i])
	}
	return dtos, nil
}
