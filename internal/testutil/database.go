// Package testutil provides test helpers for setting up in-memory databases,
// creating fixtures, and making assertions.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"goldsphere/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// AllModels is the list of all GORM models to auto-migrate in tests.
var AllModels = []interface{}{
	&models.User{},
	&models.Product{},
	&models.Custodian{},
	&models.CustodyService{},
	&models.Portfolio{},
	&models.Position{},
	&models.Order{},
	&models.OrderItem{},
	&models.Transaction{},
	&models.AuditLog{},
}

// activePositionKeyIndex mirrors idx_positions_active_key from the
// migrations in SQLite syntax.
const activePositionKeyIndex = `CREATE UNIQUE INDEX IF NOT EXISTS idx_positions_active_key ON positions
	(user_id, product_id, portfolio_id, COALESCE(custody_service_id, ''))
	WHERE status = 'active' AND deleted_at IS NULL`

// dbCounter gives every test its own named in-memory database.
var dbCounter atomic.Int64

// SetupTestDB creates an isolated in-memory SQLite database with all models migrated.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:goldsphere_test_%d?mode=memory&cache=shared", dbCounter.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(AllModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	if err := db.Exec(activePositionKeyIndex).Error; err != nil {
		t.Fatalf("failed to create position key index: %v", err)
	}

	return db
}

// TeardownTestDB closes the underlying database connection.
func TeardownTestDB(t *testing.T, db *gorm.DB) {
	t.Helper()

	sqlDB, err := db.DB()
	if err != nil {
		t.Errorf("failed to get underlying DB for teardown: %v", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		t.Errorf("failed to close test database: %v", err)
	}
}
