package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns an ID when the caller did not provide one
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// LeadStage represents the stage of a lead in the sales pipeline
type LeadStage string

const (
	LeadStagePotential   LeadStage = "potential"
	LeadStageDemo        LeadStage = "demo"
	LeadStageProposal    LeadStage = "proposal"
	LeadStageNegotiation LeadStage = "negotiation"
	LeadStageClosedWon   LeadStage = "closed_won"
	LeadStageClosedLost  LeadStage = "closed_lost"
)

// IsValid checks if the LeadStage is a valid enum value
func (ls LeadStage) IsValid() bool {
	switch ls {
	case LeadStagePotential, LeadStageDemo, LeadStageProposal, LeadStageNegotiation, LeadStageClosedWon, LeadStageClosedLost:
		return true
	}
	return false
}

// IsTerminal reports whether the stage is a closed outcome. Terminal leads
// accept no further stage transitions.
func (ls LeadStage) IsTerminal() bool {
	return ls == LeadStageClosedWon || ls == LeadStageClosedLost
}

// Lead represents a sales opportunity moving through the pipeline.
// Contact fields are a snapshot taken at capture time; a lead does not
// require a pre-existing customer record (walk-ins are common).
type Lead struct {
	BaseModel
	CustomerName  string     `gorm:"type:varchar(200);not null;index;column:customer_name"`
	CustomerPhone string     `gorm:"type:varchar(50);not null;column:customer_phone"`
	CustomerEmail string     `gorm:"type:varchar(255);column:customer_email"`
	ProductID     *uuid.UUID `gorm:"type:uuid;index;column:product_id"`
	Product       *Product   `gorm:"foreignKey:ProductID"`
	Interest      string     `gorm:"type:varchar(200)"`
	Amount        float64    `gorm:"type:decimal(12,2);not null;default:0"`
	Stage         LeadStage  `gorm:"type:varchar(50);not null;default:'potential';index"`
	Floor         int        `gorm:"not null;index"`
	AssignedTo    string     `gorm:"type:varchar(100);index;column:assigned_to"`
	Notes         string     `gorm:"type:text"`
	VisitedDate   time.Time  `gorm:"type:date;not null;column:visited_date"`
}

// ProductCategory represents the catalog section a product belongs to
type ProductCategory string

const (
	ProductCategoryRings     ProductCategory = "rings"
	ProductCategoryNecklaces ProductCategory = "necklaces"
	ProductCategoryEarrings  ProductCategory = "earrings"
	ProductCategoryBangles   ProductCategory = "bangles"
	ProductCategoryBracelets ProductCategory = "bracelets"
	ProductCategoryCoins     ProductCategory = "coins"
	ProductCategoryOther     ProductCategory = "other"
)

// IsValid checks if the ProductCategory is a valid enum value
func (pc ProductCategory) IsValid() bool {
	switch pc {
	case ProductCategoryRings, ProductCategoryNecklaces, ProductCategoryEarrings, ProductCategoryBangles, ProductCategoryBracelets, ProductCategoryCoins, ProductCategoryOther:
		return true
	}
	return false
}

// Product represents a catalog entry
type Product struct {
	BaseModel
	Name     string          `gorm:"type:varchar(200);not null;index"`
	SKU      string          `gorm:"type:varchar(50);unique;index;column:sku"`
	Category ProductCategory `gorm:"type:varchar(50);not null;default:'other';index"`
	Price    float64         `gorm:"type:decimal(12,2);not null;default:0"`
	Weight   float64         `gorm:"type:decimal(10,3);default:0"` // grams
	InStock  bool            `gorm:"not null;default:true;column:in_stock"`
	ImageURL string          `gorm:"type:varchar(500);column:image_url"`
}

// Customer represents a known customer profile
type Customer struct {
	BaseModel
	Name    string `gorm:"type:varchar(200);not null;index"`
	Phone   string `gorm:"type:varchar(50);not null;uniqueIndex"`
	Email   string `gorm:"type:varchar(255)"`
	Address string `gorm:"type:varchar(500)"`
	City    string `gorm:"type:varchar(100)"`
	Notes   string `gorm:"type:text"`
}

// TeamRole represents a team member's role in the store
type TeamRole string

const (
	TeamRoleSalesExecutive TeamRole = "sales_executive"
	TeamRoleFloorManager   TeamRole = "floor_manager"
	TeamRoleCashier        TeamRole = "cashier"
	TeamRoleAdmin          TeamRole = "admin"
)

// IsValid checks if the TeamRole is a valid enum value
func (tr TeamRole) IsValid() bool {
	switch tr {
	case TeamRoleSalesExecutive, TeamRoleFloorManager, TeamRoleCashier, TeamRoleAdmin:
		return true
	}
	return false
}

// IsSalesEligible reports whether a member with this role may carry leads.
func (tr TeamRole) IsSalesEligible() bool {
	return tr == TeamRoleSalesExecutive || tr == TeamRoleFloorManager
}

// TeamMember represents a store employee. IDs are short human-assigned
// codes ("sp-1") rather than UUIDs so they survive HR system migrations.
type TeamMember struct {
	ID        string    `gorm:"type:varchar(100);primaryKey"`
	Name      string    `gorm:"type:varchar(200);not null"`
	Email     string    `gorm:"type:varchar(255);not null;unique"`
	Phone     string    `gorm:"type:varchar(50)"`
	Role      TeamRole  `gorm:"type:varchar(50);not null;index"`
	Floor     int       `gorm:"not null;index"`
	IsActive  bool      `gorm:"not null;default:true;column:is_active"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// ReportPeriod represents the date range preset of a sales report
type ReportPeriod string

const (
	ReportPeriodToday ReportPeriod = "today"
	ReportPeriodWeek  ReportPeriod = "week"
	ReportPeriodMonth ReportPeriod = "month"
)

// IsValid checks if the ReportPeriod is a valid enum value
func (rp ReportPeriod) IsValid() bool {
	switch rp {
	case ReportPeriodToday, ReportPeriodWeek, ReportPeriodMonth:
		return true
	}
	return false
}

// SalesReport is an immutable point-in-time aggregation of one floor's
// leads over a date range. Reports are append-only; the enriched lead rows
// are copies, not references, so later catalog or team edits never change
// what a submitted report says.
type SalesReport struct {
	BaseModel
	Floor       int          `gorm:"not null;index"`
	Period      ReportPeriod `gorm:"type:varchar(20);not null"`
	StartDate   time.Time    `gorm:"type:date;not null;column:start_date"`
	EndDate     time.Time    `gorm:"type:date;not null;column:end_date"`
	Notes       string       `gorm:"type:text"`
	SubmittedBy string       `gorm:"type:varchar(200);not null;column:submitted_by"`
	LeadCount   int          `gorm:"not null;default:0;column:lead_count"`
	TotalAmount float64      `gorm:"type:decimal(15,2);not null;default:0;column:total_amount"`
	WonCount    int          `gorm:"not null;default:0;column:won_count"`
	LostCount   int          `gorm:"not null;default:0;column:lost_count"`
	Leads       []ReportLead `gorm:"foreignKey:ReportID;constraint:OnDelete:CASCADE"`
}

// ReportLead is one enriched lead row inside a sales report, with product
// and salesperson names resolved at generation time.
type ReportLead struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key"`
	ReportID        uuid.UUID `gorm:"type:uuid;not null;index;column:report_id"`
	LeadID          uuid.UUID `gorm:"type:uuid;not null;column:lead_id"`
	CustomerName    string    `gorm:"type:varchar(200);not null;column:customer_name"`
	CustomerPhone   string    `gorm:"type:varchar(50);column:customer_phone"`
	ProductName     string    `gorm:"type:varchar(200);column:product_name"`
	ProductPrice    float64   `gorm:"type:decimal(12,2);column:product_price"`
	Amount          float64   `gorm:"type:decimal(12,2);not null;default:0"`
	Stage           LeadStage `gorm:"type:varchar(50);not null"`
	SalespersonName string    `gorm:"type:varchar(200);column:salesperson_name"`
	LeadCreatedAt   time.Time `gorm:"not null;column:lead_created_at"`
}

// BeforeCreate assigns an ID when the caller did not provide one
func (rl *ReportLead) BeforeCreate(tx *gorm.DB) error {
	if rl.ID == uuid.Nil {
		rl.ID = uuid.New()
	}
	return nil
}

// TableName overrides the default table name to match the migration
func (ReportLead) TableName() string {
	return "report_leads"
}

// Salesperson is the sales-eligible projection of a team member exposed to
// assignment and reporting. ActiveLeadCount is always recomputed from the
// lead store at read time, never persisted.
type Salesperson struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Email           string   `json:"email"`
	Role            TeamRole `json:"role"`
	Floor           int      `json:"floor"`
	ActiveLeadCount int64    `json:"activeLeadCount"`
}
