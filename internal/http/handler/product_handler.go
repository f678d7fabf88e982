package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/meera-jewels/retail-api/internal/domain"
	"github.com/meera-jewels/retail-api/internal/service"
	"go.uber.org/zap"
)

type ProductHandler struct {
	productService *service.ProductService
	logger         *zap.Logger
}

func NewProductHandler(productService *service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		logger:         logger,
	}
}

// @Summary List products
// @Description List catalog products with optional category filter
// @Tags Products
// @Produce json
// @Param category query string false "Filter by category (rings, necklaces, earrings, bangles, bracelets, coins, other)"
// @Param search query string false "Search by name or SKU"
// @Success 200 {array} domain.ProductDTO
// @Security BearerAuth
// @Router /products [get]
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	var category *domain.ProductCategory
	if c := r.URL.Query().Get("category"); c != "" {
		cat := domain.ProductCategory(c)
		if !cat.IsValid() {
			respondWithError(w, http.StatusBadRequest, "Unknown category: "+c)
			return
		}
		category = &cat
	}

	products, err := h.productService.List(r.Context(), category, r.URL.Query().Get("search"))
	if err != nil {
		h.logger.Error("failed to list products", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list products")
		return
	}

	respondJSON(w, http.StatusOK, products)
}

// @Summary Create product
// @Tags Products
// @Accept json
// @Produce json
// @Param request body domain.CreateProductRequest true "Product data"
// @Success 201 {object} domain.ProductDTO
// @Security BearerAuth
// @Router /products [post]
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	product, err := h.productService.Create(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create product", zap.Error(err))
		respondServiceError(w, err, "Failed to create product")
		return
	}

	w.Header().Set("Location", "/api/v1/products/"+product.ID.String())
	respondJSON(w, http.StatusCreated, product)
}

// @Summary Get product
// @Tags Products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} domain.ProductDTO
// @Security BearerAuth
// @Router /products/{id} [get]
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid product ID: must be a valid UUID")
		return
	}

	product, err := h.productService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, "Failed to get product")
		return
	}

	respondJSON(w, http.StatusOK, product)
}

// @Summary Update product
// @Tags Products
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param request body domain.UpdateProductRequest true "Fields to update"
// @Success 200 {object} domain.ProductDTO
// @Security BearerAuth
// @Router /products/{id} [put]
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid product ID: must be a valid UUID")
		return
	}

	var req domain.UpdateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	product, err := h.productService.Update(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("failed to update product", zap.Error(err), zap.String("product_id", id.String()))
		respondServiceError(w, err, "Failed to update product")
		return
	}

	respondJSON(w, http.StatusOK, product)
}
