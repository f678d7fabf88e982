package repository

import (
	"context"
	"time"

	"github.com/meera-jewels/retail-api/internal/domain"
	"gorm.io/gorm"
)

type TeamMemberRepository struct {
	db *gorm.DB
}

func NewTeamMemberRepository(db *gorm.DB) *TeamMemberRepository {
	return &TeamMemberRepository{db: db}
}

func (r *TeamMemberRepository) Create(ctx context.Context, member *domain.TeamMember) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *TeamMemberRepository) GetByID(ctx context.Context, id string) (*domain.TeamMember, error) {
	var member domain.TeamMember
	err := withReadRetry(ctx, func() error {
		return r.db.WithContext(ctx).Where("id = ?", id).First(&member).Error
	})
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *TeamMemberRepository) UpdateFields(ctx context.Context, id string, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	result := r.db.WithContext(ctx).Model(&domain.TeamMember{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *TeamMemberRepository) List(ctx context.Context, floor *int) ([]domain.TeamMember, error) {
	var members []domain.TeamMember
	err := withReadRetry(ctx, func() error {
		query := r.db.WithContext(ctx).Model(&domain.TeamMember{})
		if floor != nil {
			query = query.Where("floor = ?", *floor)
		}
		return query.Order("name ASC").Find(&members).Error
	})
	return members, err
}

// GetSalespeople returns the active sales-eligible members of a floor
func (r *TeamMemberRepository) GetSalespeople(ctx context.Context, floor int) ([]domain.TeamMember, error) {
	var members []domain.TeamMember
	err := withReadRetry(ctx, func() error {
		return r.db.WithContext(ctx).
			Where("floor = ?", floor).
			Where("is_active = ?", true).
			Where("role IN ?", []domain.TeamRole{domain.TeamRoleSalesExecutive, domain.TeamRoleFloorManager}).
			Order("name ASC").
			Find(&members).Error
	})
	return members, err
}
