package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/meera-jewels/retail-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LeadFilters contains all filter options for listing leads
type LeadFilters struct {
	Floor         *int
	Stage         *domain.LeadStage
	AssignedTo    *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

// LeadSortOption represents available sort options
type LeadSortOption string

const (
	LeadSortByCreatedDesc LeadSortOption = "created_desc"
	LeadSortByCreatedAsc  LeadSortOption = "created_asc"
	LeadSortByAmountDesc  LeadSortOption = "amount_desc"
	LeadSortByAmountAsc   LeadSortOption = "amount_asc"
)

type LeadRepository struct {
	db *gorm.DB
}

func NewLeadRepository(db *gorm.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

func (r *LeadRepository) Create(ctx context.Context, lead *domain.Lead) error {
	// Omit associations to avoid GORM trying to validate related records
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(lead).Error
}

func (r *LeadRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Lead, error) {
	var lead domain.Lead
	err := withReadRetry(ctx, func() error {
		return r.db.WithContext(ctx).
			Preload("Product").
			Where("id = ?", id).
			First(&lead).Error
	})
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

// UpdateFields applies a partial update to a single lead row. The updated_at
// bump rides in the same statement so a lead's lastUpdated always moves with
// the mutation itself.
func (r *LeadRepository) UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	result := r.db.WithContext(ctx).Model(&domain.Lead{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *LeadRepository) List(ctx context.Context, filters *LeadFilters, sortBy LeadSortOption) ([]domain.Lead, error) {
	var leads []domain.Lead
	err := withReadRetry(ctx, func() error {
		query := r.db.WithContext(ctx).Model(&domain.Lead{}).Preload("Product")
		query = r.applyFilters(query, filters)
		query = r.applySorting(query, sortBy)
		return query.Find(&leads).Error
	})
	return leads, err
}

// GetByFloorAndRange returns a floor's leads created within [from, to],
// the slice the reporting aggregator snapshots.
func (r *LeadRepository) GetByFloorAndRange(ctx context.Context, floor int, from, to time.Time) ([]domain.Lead, error) {
	var leads []domain.Lead
	err := withReadRetry(ctx, func() error {
		return r.db.WithContext(ctx).
			Preload("Product").
			Where("floor = ?", floor).
			Where("created_at >= ? AND created_at <= ?", from, to).
			Order("created_at ASC").
			Find(&leads).Error
	})
	return leads, err
}

// CountActiveByAssignee counts a salesperson's leads that are still open.
// Always computed live; caching this across writes is how counts drift.
func (r *LeadRepository) CountActiveByAssignee(ctx context.Context, salespersonID string) (int64, error) {
	var count int64
	err := withReadRetry(ctx, func() error {
		return r.db.WithContext(ctx).Model(&domain.Lead{}).
			Where("assigned_to = ?", salespersonID).
			Where("stage NOT IN ?", []domain.LeadStage{domain.LeadStageClosedWon, domain.LeadStageClosedLost}).
			Count(&count).Error
	})
	return count, err
}

// GetActiveByAssignee returns a salesperson's open leads
func (r *LeadRepository) GetActiveByAssignee(ctx context.Context, salespersonID string) ([]domain.Lead, error) {
	var leads []domain.Lead
	err := withReadRetry(ctx, func() error {
		return r.db.WithContext(ctx).
			Preload("Product").
			Where("assigned_to = ?", salespersonID).
			Where("stage NOT IN ?", []domain.LeadStage{domain.LeadStageClosedWon, domain.LeadStageClosedLost}).
			Order("created_at DESC").
			Find(&leads).Error
	})
	return leads, err
}

// StageStats holds statistics for a single stage
type StageStats struct {
	Count       int64
	TotalAmount float64
}

// FloorStats holds aggregated pipeline statistics for one floor
type FloorStats struct {
	TotalCount  int64
	TotalAmount float64
	ByStage     map[domain.LeadStage]StageStats
}

// GetFloorStats returns per-stage counts and amounts for a floor in one
// grouped query
func (r *LeadRepository) GetFloorStats(ctx context.Context, floor int) (*FloorStats, error) {
	stats := &FloorStats{
		ByStage: make(map[domain.LeadStage]StageStats),
	}

	type stageResult struct {
		Stage       domain.LeadStage
		Count       int64
		TotalAmount float64
	}

	var results []stageResult
	err := withReadRetry(ctx, func() error {
		return r.db.WithContext(ctx).Model(&domain.Lead{}).
			Select("stage, COUNT(*) as count, COALESCE(SUM(amount), 0) as total_amount").
			Where("floor = ?", floor).
			Group("stage").
			Scan(&results).Error
	})
	if err != nil {
		return nil, err
	}

	for _, row := range results {
		stats.ByStage[row.Stage] = StageStats{
			Count:       row.Count,
			TotalAmount: row.TotalAmount,
		}
		stats.TotalCount += row.Count
		stats.TotalAmount += row.TotalAmount
	}

	return stats, nil
}

// applyFilters applies all filter criteria to the query
func (r *LeadRepository) applyFilters(query *gorm.DB, filters *LeadFilters) *gorm.DB {
	if filters == nil {
		return query
	}

	if filters.Floor != nil {
		query = query.Where("floor = ?", *filters.Floor)
	}

	if filters.Stage != nil {
		query = query.Where("stage = ?", *filters.Stage)
	}

	if filters.AssignedTo != nil {
		if *filters.AssignedTo == "" {
			query = query.Where("assigned_to = '' OR assigned_to IS NULL")
		} else {
			query = query.Where("assigned_to = ?", *filters.AssignedTo)
		}
	}

	if filters.CreatedAfter != nil {
		query = query.Where("created_at >= ?", *filters.CreatedAfter)
	}

	if filters.CreatedBefore != nil {
		query = query.Where("created_at <= ?", *filters.CreatedBefore)
	}

	return query
}

// applySorting applies the sorting option to the query
func (r *LeadRepository) applySorting(query *gorm.DB, sortBy LeadSortOption) *gorm.DB {
	switch sortBy {
	case LeadSortByCreatedAsc:
		return query.Order("created_at ASC")
	case LeadSortByAmountDesc:
		return query.Order("amount DESC")
	case LeadSortByAmountAsc:
		return query.Order("amount ASC")
	default: // LeadSortByCreatedDesc
		return query.Order("created_at DESC")
	}
}
