package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/meera-jewels/retail-api/internal/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB creates an isolated in-memory SQLite database and migrates
// the full schema. Each test gets its own database, so tests can run in
// parallel without cleanup ordering problems.
func SetupTestDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "Failed to open test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Shared-cache in-memory databases disappear when the last connection
	// closes; a single connection keeps the schema alive for the test.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	err = db.AutoMigrate(
		&domain.Product{},
		&domain.Customer{},
		&domain.TeamMember{},
		&domain.Lead{},
		&domain.SalesReport{},
		&domain.ReportLead{},
	)
	require.NoError(t, err, "Failed to migrate test schema")

	return db
}

// CreateTestProduct inserts a catalog product
func CreateTestProduct(t *testing.T, db *gorm.DB, name string, price float64) *domain.Product {
	product := &domain.Product{
		Name:     name,
		SKU:      fmt.Sprintf("SKU-%d", time.Now().UnixNano()),
		Category: domain.ProductCategoryRings,
		Price:    price,
		InStock:  true,
	}
	err := db.Create(product).Error
	require.NoError(t, err)
	return product
}

// CreateTestSalesperson inserts an active sales executive on the floor
func CreateTestSalesperson(t *testing.T, db *gorm.DB, id string, floor int) *domain.TeamMember {
	member := &domain.TeamMember{
		ID:       id,
		Name:     "Salesperson " + id,
		Email:    id + "@example.com",
		Role:     domain.TeamRoleSalesExecutive,
		Floor:    floor,
		IsActive: true,
	}
	err := db.Create(member).Error
	require.NoError(t, err)
	return member
}

// CreateTestLead inserts a lead in the given stage
func CreateTestLead(t *testing.T, db *gorm.DB, floor int, stage domain.LeadStage, amount float64) *domain.Lead {
	lead := &domain.Lead{
		CustomerName:  "Test Customer",
		CustomerPhone: "9876543210",
		Amount:        amount,
		Stage:         stage,
		Floor:         floor,
		VisitedDate:   time.Now(),
	}
	err := db.Create(lead).Error
	require.NoError(t, err)
	return lead
}
