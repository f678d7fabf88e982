package domain

import (
	"time"

	"github.com/google/uuid"
)

// DTOs for API responses

type LeadDTO struct {
	ID            uuid.UUID  `json:"id"`
	CustomerName  string     `json:"customerName"`
	CustomerPhone string     `json:"customerPhone"`
	CustomerEmail string     `json:"customerEmail,omitempty"`
	ProductID     *uuid.UUID `json:"productId,omitempty"`
	ProductName   string     `json:"productName,omitempty"`
	Interest      string     `json:"interest,omitempty"`
	Amount        float64    `json:"amount"`
	Stage         LeadStage  `json:"stage"`
	NextStage     *LeadStage `json:"nextStage,omitempty"`
	Floor         int        `json:"floor"`
	AssignedTo    string     `json:"assignedTo,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	VisitedDate   string     `json:"visitedDate"` // ISO 8601 date
	CreatedAt     string     `json:"createdAt"`   // ISO 8601
	LastUpdated   string     `json:"lastUpdated"` // ISO 8601
}

type ProductDTO struct {
	ID       uuid.UUID       `json:"id"`
	Name     string          `json:"name"`
	SKU      string          `json:"sku,omitempty"`
	Category ProductCategory `json:"category"`
	Price    float64         `json:"price"`
	Weight   float64         `json:"weight,omitempty"`
	InStock  bool            `json:"inStock"`
	ImageURL string          `json:"imageUrl,omitempty"`
}

type CustomerDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email,omitempty"`
	Address   string    `json:"address,omitempty"`
	City      string    `json:"city,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt string    `json:"createdAt"` // ISO 8601
	UpdatedAt string    `json:"updatedAt"` // ISO 8601
}

type TeamMemberDTO struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Phone    string   `json:"phone,omitempty"`
	Role     TeamRole `json:"role"`
	Floor    int      `json:"floor"`
	IsActive bool     `json:"isActive"`
}

type SalesReportDTO struct {
	ID          uuid.UUID       `json:"id"`
	Floor       int             `json:"floor"`
	Period      ReportPeriod    `json:"period"`
	StartDate   string          `json:"startDate"` // ISO 8601 date
	EndDate     string          `json:"endDate"`   // ISO 8601 date
	Notes       string          `json:"notes,omitempty"`
	SubmittedBy string          `json:"submittedBy"`
	LeadCount   int             `json:"leadCount"`
	TotalAmount float64         `json:"totalAmount"`
	WonCount    int             `json:"wonCount"`
	LostCount   int             `json:"lostCount"`
	Leads       []ReportLeadDTO `json:"leads,omitempty"`
	CreatedAt   string          `json:"createdAt"` // ISO 8601
}

type ReportLeadDTO struct {
	LeadID          uuid.UUID `json:"leadId"`
	CustomerName    string    `json:"customerName"`
	CustomerPhone   string    `json:"customerPhone,omitempty"`
	ProductName     string    `json:"productName,omitempty"`
	ProductPrice    float64   `json:"productPrice,omitempty"`
	Amount          float64   `json:"amount"`
	Stage           LeadStage `json:"stage"`
	SalespersonName string    `json:"salespersonName"`
	LeadCreatedAt   string    `json:"leadCreatedAt"` // ISO 8601
}

// DashboardDTO is the derived per-floor pipeline view. It is computed from
// the lead store on every request and never persisted.
type DashboardDTO struct {
	Floor       int                 `json:"floor"`
	StageCounts map[LeadStage]int64 `json:"stageCounts"`
	TotalLeads  int64               `json:"totalLeads"`
	TotalAmount float64             `json:"totalAmount"`
	WonCount    int64               `json:"wonCount"`
	LostCount   int64               `json:"lostCount"`
	GeneratedAt string              `json:"generatedAt"` // ISO 8601
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// Lead request DTOs

type CreateLeadRequest struct {
	CustomerName  string     `json:"customerName" validate:"required,max=200"`
	CustomerPhone string     `json:"customerPhone" validate:"required,max=50"`
	CustomerEmail string     `json:"customerEmail,omitempty" validate:"omitempty,email,max=255"`
	ProductID     *uuid.UUID `json:"productId,omitempty"`
	Interest      string     `json:"interest,omitempty" validate:"max=200"`
	Amount        *float64   `json:"amount,omitempty" validate:"omitempty,gte=0"`
	Stage         LeadStage  `json:"stage,omitempty"`
	Floor         int        `json:"floor" validate:"required,min=1"`
	AssignedTo    string     `json:"assignedTo,omitempty" validate:"max=100"`
	Notes         string     `json:"notes,omitempty"`
	VisitedDate   *time.Time `json:"visitedDate,omitempty"`
}

// UpdateLeadRequest is a partial update; nil fields are left untouched.
// Stage and assignment are deliberately absent here, they move only
// through their dedicated operations.
type UpdateLeadRequest struct {
	CustomerName  *string    `json:"customerName,omitempty" validate:"omitempty,max=200"`
	CustomerPhone *string    `json:"customerPhone,omitempty" validate:"omitempty,max=50"`
	CustomerEmail *string    `json:"customerEmail,omitempty" validate:"omitempty,email,max=255"`
	ProductID     *uuid.UUID `json:"productId,omitempty"`
	Interest      *string    `json:"interest,omitempty" validate:"omitempty,max=200"`
	Amount        *float64   `json:"amount,omitempty" validate:"omitempty,gte=0"`
	Notes         *string    `json:"notes,omitempty"`
}

type TransitionLeadRequest struct {
	Stage LeadStage `json:"stage" validate:"required"`
}

type AssignLeadRequest struct {
	SalespersonID string `json:"salespersonId" validate:"required,max=100"`
}

// Report request DTOs

type GenerateReportRequest struct {
	Floor       int          `json:"floor" validate:"required,min=1"`
	Period      ReportPeriod `json:"period" validate:"required,oneof=today week month"`
	Notes       string       `json:"notes,omitempty"`
	SubmittedBy string       `json:"submittedBy,omitempty" validate:"max=200"`
}

// Catalog / customer / team request DTOs

type CreateProductRequest struct {
	Name     string          `json:"name" validate:"required,max=200"`
	SKU      string          `json:"sku,omitempty" validate:"max=50"`
	Category ProductCategory `json:"category,omitempty"`
	Price    float64         `json:"price" validate:"gte=0"`
	Weight   float64         `json:"weight,omitempty" validate:"omitempty,gte=0"`
	ImageURL string          `json:"imageUrl,omitempty" validate:"omitempty,url,max=500"`
}

type UpdateProductRequest struct {
	Name     *string          `json:"name,omitempty" validate:"omitempty,max=200"`
	Category *ProductCategory `json:"category,omitempty"`
	Price    *float64         `json:"price,omitempty" validate:"omitempty,gte=0"`
	Weight   *float64         `json:"weight,omitempty" validate:"omitempty,gte=0"`
	InStock  *bool            `json:"inStock,omitempty"`
	ImageURL *string          `json:"imageUrl,omitempty" validate:"omitempty,url,max=500"`
}

type CreateCustomerRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Phone   string `json:"phone" validate:"required,max=50"`
	Email   string `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Address string `json:"address,omitempty" validate:"max=500"`
	City    string `json:"city,omitempty" validate:"max=100"`
	Notes   string `json:"notes,omitempty"`
}

type UpdateCustomerRequest struct {
	Name    *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Phone   *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Email   *string `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Address *string `json:"address,omitempty" validate:"omitempty,max=500"`
	City    *string `json:"city,omitempty" validate:"omitempty,max=100"`
	Notes   *string `json:"notes,omitempty"`
}

type CreateTeamMemberRequest struct {
	ID    string   `json:"id" validate:"required,max=100"`
	Name  string   `json:"name" validate:"required,max=200"`
	Email string   `json:"email" validate:"required,email,max=255"`
	Phone string   `json:"phone,omitempty" validate:"max=50"`
	Role  TeamRole `json:"role" validate:"required"`
	Floor int      `json:"floor" validate:"required,min=1"`
}

type UpdateTeamMemberRequest struct {
	Name     *string   `json:"name,omitempty" validate:"omitempty,max=200"`
	Email    *string   `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Phone    *string   `json:"phone,omitempty" validate:"omitempty,max=50"`
	Role     *TeamRole `json:"role,omitempty"`
	Floor    *int      `json:"floor,omitempty" validate:"omitempty,min=1"`
	IsActive *bool     `json:"isActive,omitempty"`
}
