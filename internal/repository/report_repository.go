package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/meera-jewels/retail-api/internal/domain"
	"gorm.io/gorm"
)

// ReportRepository persists sales reports. There is deliberately no update
// or delete here: reports are append-only snapshots.
type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Create writes the report and its enriched lead rows in one transaction.
func (r *ReportRepository) Create(ctx context.Context, report *domain.SalesReport) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Leads").Create(report).Error; err != nil {
			return err
		}
		for i := range report.Leads {
			report.Leads[i].ReportID = report.ID
		}
		if len(report.Leads) == 0 {
			return nil
		}
		return tx.Create(&report.Leads).Error
	})
}

func (r *ReportRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.SalesReport, error) {
	var report domain.SalesReport
	err := withReadRetry(ctx, func() error {
		return r.db.WithContext(ctx).
			Preload("Leads").
			Where("id = ?", id).
			First(&report).Error
	})
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// ListByFloor returns a floor's reports, newest first, without lead rows
// (those are loaded per report on demand).
func (r *ReportRepository) ListByFloor(ctx context.Context, floor int) ([]domain.SalesReport, error) {
	var reports []domain.SalesReport
	err := withReadRetry(ctx, func() error {
		return r.db.WithContext(ctx).
			Where("floor = ?", floor).
			Order("created_at DESC").
			Find(&reports).Error
	})
	return reports, err
}

// ListCreatedAfter returns a floor's reports submitted after the cutoff,
// oldest first. Used by the warehouse sync to pick up unsynced reports.
func (r *ReportRepository) ListCreatedAfter(ctx context.Context, floor int, after time.Time) ([]domain.SalesReport, error) {
	var reports []domain.SalesReport
	err := withReadRetry(ctx, func() error {
		return r.db.WithContext(ctx).
			Where("floor = ?", floor).
			Where("created_at > ?", after).
			Order("created_at ASC").
			Find(&reports).Error
	})
	return reports, err
}
