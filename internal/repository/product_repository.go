package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/meera-jewels/retail-api/internal/domain"
	"gorm.io/gorm"
)

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	var product domain.Product
	err := withReadRetry(ctx, func() error {
		return r.db.WithContext(ctx).Where("id = ?", id).First(&product).Error
	})
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *ProductRepository) UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	result := r.db.WithContext(ctx).Model(&domain.Product{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *ProductRepository) List(ctx context.Context, category *domain.ProductCategory) ([]domain.Product, error) {
	var products []domain.Product
	err := withReadRetry(ctx, func() error {
		query := r.db.WithContext(ctx).Model(&domain.Product{})
		if category != nil {
			query = query.Where("category = ?", *category)
		}
		return query.Order("name ASC").Find(&products).Error
	})
	return products, err
}

// Search performs a case-insensitive name/sku search
func (r *ProductRepository) Search(ctx context.Context, searchQuery string, limit int) ([]domain.Product, error) {
	var products []domain.Product
	searchPattern := "%" + strings.ToLower(searchQuery) + "%"
	err := withReadRetry(ctx, func() error {
		return r.db.WithContext(ctx).
			Where("LOWER(name) LIKE ? OR LOWER(sku) LIKE ?", searchPattern, searchPattern).
			Limit(limit).
			Order("name ASC").
			Find(&products).Error
	})
	return products, err
}
