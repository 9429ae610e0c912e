package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"goldsphere/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// Dec parses a decimal literal and panics on malformed input.
func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// CreateTestUser creates a customer with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestAdmin creates a user with the admin role.
func CreateTestAdmin(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user := CreateTestUserWithEmail(t, db, fmt.Sprintf("admin%d@test.com", nextID()))
	if err := db.Model(user).Update("role", models.UserRoleAdmin).Error; err != nil {
		t.Fatalf("failed to promote test admin: %v", err)
	}
	user.Role = models.UserRoleAdmin
	return user
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:     email,
		Password:  string(hash),
		FirstName: "Test",
		LastName:  fmt.Sprintf("User%d", nextID()),
		Role:      models.UserRoleCustomer,
		IsActive:  true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestProduct creates an active gold coin priced in CHF.
func CreateTestProduct(t *testing.T, db *gorm.DB, price string) *models.Product {
	t.Helper()

	product := &models.Product{
		Name:        fmt.Sprintf("Test Coin %d", nextID()),
		Metal:       models.MetalGold,
		ProductType: models.ProductTypeCoin,
		WeightGrams: Dec("31.1035"),
		Purity:      Dec("0.9999"),
		Producer:    "Test Mint",
		Price:       Dec(price),
		Currency:    "CHF",
		InStock:     true,
		IsActive:    true,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("failed to create test product: %v", err)
	}
	return product
}

// CreateTestCustodyService creates a custodian with a single yearly service.
func CreateTestCustodyService(t *testing.T, db *gorm.DB) *models.CustodyService {
	t.Helper()

	custodian := &models.Custodian{Name: fmt.Sprintf("Test Vault %d", nextID()), Country: "CH"}
	if err := db.Create(custodian).Error; err != nil {
		t.Fatalf("failed to create test custodian: %v", err)
	}

	service := &models.CustodyService{
		CustodianID:      custodian.ID,
		Name:             "Segregated storage",
		Fee:              Dec("120"),
		Currency:         "CHF",
		PaymentFrequency: models.PaymentFrequencyYearly,
	}
	if err := db.Create(service).Error; err != nil {
		t.Fatalf("failed to create test custody service: %v", err)
	}
	return service
}

// CreateTestPortfolio creates a portfolio for the user.
func CreateTestPortfolio(t *testing.T, db *gorm.DB, userID string) *models.Portfolio {
	t.Helper()

	portfolio := &models.Portfolio{
		UserID:   userID,
		Name:     fmt.Sprintf("Test Portfolio %d", nextID()),
		IsActive: true,
	}
	if err := db.Create(portfolio).Error; err != nil {
		t.Fatalf("failed to create test portfolio: %v", err)
	}
	return portfolio
}

// CreateTestPosition creates a position with the given quantity, price and status.
func CreateTestPosition(t *testing.T, db *gorm.DB, userID, productID, portfolioID string, custodyServiceID *string, quantity, price string, status models.PositionStatus) *models.Position {
	t.Helper()

	position := &models.Position{
		UserID:           userID,
		ProductID:        productID,
		PortfolioID:      portfolioID,
		CustodyServiceID: custodyServiceID,
		Quantity:         Dec(quantity),
		PurchasePrice:    Dec(price),
		MarketPrice:      Dec(price),
		Status:           status,
		PurchaseDate:     time.Now().UTC(),
	}
	if status == models.PositionStatusClosed {
		closed := time.Now().UTC()
		position.ClosedDate = &closed
	}
	if err := db.Create(position).Error; err != nil {
		t.Fatalf("failed to create test position: %v", err)
	}
	return position
}

// TestLine describes one order line for CreateTestOrder.
type TestLine struct {
	ProductID string
	Quantity  string
	UnitPrice string
}

// CreateTestOrder creates an order with the given lines directly in the store.
func CreateTestOrder(t *testing.T, db *gorm.DB, userID string, orderType models.OrderType, status models.OrderStatus, lines ...TestLine) *models.Order {
	t.Helper()

	order := &models.Order{
		UserID:   userID,
		Type:     orderType,
		Status:   status,
		Currency: "CHF",
	}
	for _, line := range lines {
		qty, price := Dec(line.Quantity), Dec(line.UnitPrice)
		total := qty.Mul(price)
		order.Items = append(order.Items, models.OrderItem{
			ProductID:  line.ProductID,
			Quantity:   qty,
			UnitPrice:  price,
			TotalPrice: total,
		})
		order.Subtotal = order.Subtotal.Add(total)
	}
	order.Total = order.Subtotal
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("failed to create test order: %v", err)
	}
	return order
}
