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

// ProductService is the catalog collaborator: slim CRUD plus the
// name/price lookup the pipeline depends on.
type ProductService struct {
	productRepo *repository.ProductRepository
	logger      *zap.Logger
}

func NewProductService(productRepo *repository.ProductRepository, logger *zap.Logger) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		logger:      logger,
	}
}

func (s *ProductService) Create(ctx context.Context, req *domain.CreateProductRequest) (*domain.ProductDTO, error) {
	category := req.Category
	if category == "" {
		category = domain.ProductCategoryOther
	}
	if !category.IsValid() {
		return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, category)
	}

	product := &domain.Product{
		Name:     req.Name,
		SKU:      req.SKU,
		Category: category,
		Price:    req.Price,
		Weight:   req.Weight,
		InStock:  true,
		ImageURL: req.ImageURL,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: sku %q already exists", ErrConflict, req.SKU)
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	dto := mapper.ToProductDTO(product)
	return &dto, nil
}

func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ProductDTO, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	dto := mapper.ToProductDTO(product)
	return &dto, nil
}

func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateProductRequest) (*domain.ProductDTO, error) {
	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Category != nil {
		if !req.Category.IsValid() {
			return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, *req.Category)
		}
		updates["category"] = *req.Category
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.Weight != nil {
		updates["weight"] = *req.Weight
	}
	if req.InStock != nil {
		updates["in_stock"] = *req.InStock
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}

	if len(updates) > 0 {
		if err := s.productRepo.UpdateFields(ctx, id, updates); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("failed to update product: %w", err)
		}
	}

	return s.GetByID(ctx, id)
}

func (s *ProductService) List(ctx context.Context, category *domain.ProductCategory, search string) ([]domain.ProductDTO, error) {
	var (
		products []domain.Product
		err      error
	)
	if search != "" {
		products, err = s.productRepo.Search(ctx, search, 100)
	} else {
		products, err = s.productRepo.List(ctx, category)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	dtos := make([]domain.ProductDTO, len(products))
	for i := range products {
		dtos[i] = mapper.ToProductDTO(&products[i])
	}
	return dtos, nil
}
