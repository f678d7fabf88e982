package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/meera-jewels/retail-api/internal/domain"
	"github.com/meera-jewels/retail-api/internal/mapper"
	"github.com/meera-jewels/retail-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CustomerService manages the walk-in customer book. Phone numbers are
// the natural key on the shop floor, so duplicates are rejected.
type CustomerService struct {
	customerRepo *repository.CustomerRepository
	logger       *zap.Logger
}

func NewCustomerService(customerRepo *repository.CustomerRepository, logger *zap.Logger) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
		logger:       logger,
	}
}

func (s *CustomerService) Create(ctx context.Context, req *domain.CreateCustomerRequest) (*domain.CustomerDTO, error) {
	existing, err := s.customerRepo.GetByPhone(ctx, req.Phone)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check phone: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: phone %s already registered", ErrConflict, req.Phone)
	}

	customer := &domain.Customer{
		Name:    req.Name,
		Phone:   req.Phone,
		Email:   req.Email,
		Address: req.Address,
		City:    req.City,
		Notes:   req.Notes,
	}

	if err := s.customerRepo.Create(ctx, customer); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: phone %s already registered", ErrConflict, req.Phone)
		}
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	dto := mapper.ToCustomerDTO(customer)
	return &dto, nil
}

func (s *CustomerService) GetByID(ctx context.Context, id uuid.UUID) (*domain.CustomerDTO, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	dto := mapper.ToCustomerDTO(customer)
	return &dto, nil
}

func (s *CustomerService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateCustomerRequest) (*domain.CustomerDTO, error) {
	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.City != nil {
		updates["city"] = *req.City
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}

	if len(updates) > 0 {
		if err := s.customerRepo.UpdateFields(ctx, id, updates); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, fmt.Errorf("%w: phone already registered", ErrConflict)
			}
			return nil, fmt.Errorf("failed to update customer: %w", err)
		}
	}

	return s.GetByID(ctx, id)
}

func (s *CustomerService) List(ctx context.Context, search string) ([]domain.CustomerDTO, error) {
	var (
		customers []domain.Customer
		err       error
	)
	if search != "" {
		customers, err = s.customerRepo.Search(ctx, search, 100)
	} else {
		customers, err = s.customerRepo.List(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}

	dtos := make([]domain.CustomerDTO, len(customers))
	for i := range customers {
		dtos[i] = mapper.ToCustomerDTO(&customers[i])
	}
	return dtos, nil
}
