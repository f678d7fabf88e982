package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/meera-jewels/retail-api/internal/domain"
	"gorm.io/gorm"
)

type CustomerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	return r.db.WithContext(ctx).Create(customer).Error
}

func (r *CustomerRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	var customer domain.Customer
	err := withReadRetry(ctx, func() error {
		return r.db.WithContext(ctx).Where("id = ?", id).First(&customer).Error
	})
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *CustomerRepository) GetByPhone(ctx context.Context, phone string) (*domain.Customer, error) {
	var customer domain.Customer
	err := withReadRetry(ctx, func() error {
		return r.db.WithContext(ctx).Where("phone = ?", phone).First(&customer).Error
	})
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *CustomerRepository) UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	result := r.db.WithContext(ctx).Model(&domain.Customer{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *CustomerRepository) List(ctx context.Context) ([]domain.Customer, error) {
	var customers []domain.Customer
	err := withReadRetry(ctx, func() error {
		return r.db.WithContext(ctx).Order("name ASC").Find(&customers).Error
	})
	return customers, err
}

// Search performs a case-insensitive name/phone search
func (r *CustomerRepository) Search(ctx context.Context, searchQuery string, limit int) ([]domain.Customer, error) {
	var customers []domain.Customer
	searchPattern := "%" + strings.ToLower(searchQuery) + "%"
	err := withReadRetry(ctx, func() error {
		return r.db.WithContext(ctx).
			Where("LOWER(name) LIKE ? OR phone LIKE ?", searchPattern, searchPattern).
			Limit(limit).
			Order("name ASC").
			Find(&customers).Error
	})
	return customers, err
}
