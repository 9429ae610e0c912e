package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"goldsphere/internal/events"
	"goldsphere/internal/models"
	"goldsphere/internal/pagination"
)

// Actor identifies who is asking for a state change.
type Actor struct {
	UserID  string
	IsAdmin bool
}

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
	StoreRefreshTokenHash(userID, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
	SetRole(userID string, role models.UserRole) (*models.User, error)
}

// ProductFilter holds optional filter parameters for listing products.
type ProductFilter struct {
	Metal       *models.Metal
	ProductType *models.ProductType
	ActiveOnly  bool
}

// ProductInput carries the writable catalog fields.
type ProductInput struct {
	Name              string
	Metal             models.Metal
	ProductType       models.ProductType
	WeightGrams       decimal.Decimal
	Purity            decimal.Decimal
	Producer          string
	Country           string
	Year              int
	Price             decimal.Decimal
	Currency          string
	MinPriceIncrement decimal.Decimal
	InStock           bool
	Description       string
}

// ProductServicer defines the contract for the product catalog.
type ProductServicer interface {
	CreateProduct(input ProductInput) (*models.Product, error)
	GetProducts(page pagination.PageRequest, filter ProductFilter) (*pagination.PageResponse[models.Product], error)
	GetProductByID(id string) (*models.Product, error)
	UpdateProduct(id string, input ProductInput) (*models.Product, error)
	DeleteProduct(id string) error
}

// CustodyServiceInput carries the writable custody service fields.
type CustodyServiceInput struct {
	CustodianID      string
	Name             string
	Fee              decimal.Decimal
	Currency         string
	PaymentFrequency models.PaymentFrequency
	MaxWeightGrams   decimal.Decimal
}

// CustodyServicer defines the contract for custodians and their services.
type CustodyServicer interface {
	CreateCustodian(name, country, website string) (*models.Custodian, error)
	GetCustodians(page pagination.PageRequest) (*pagination.PageResponse[models.Custodian], error)
	GetCustodianByID(id string) (*models.Custodian, error)
	UpdateCustodian(id, name, country, website string) (*models.Custodian, error)
	DeleteCustodian(id string) error
	CreateCustodyService(input CustodyServiceInput) (*models.CustodyService, error)
	GetCustodyServices(custodianID string, page pagination.PageRequest) (*pagination.PageResponse[models.CustodyService], error)
	GetCustodyServiceByID(id string) (*models.CustodyService, error)
	UpdateCustodyService(id string, input CustodyServiceInput) (*models.CustodyService, error)
	DeleteCustodyService(id string) error
}

// PortfolioServicer defines the contract for portfolio-related business logic.
type PortfolioServicer interface {
	CreatePortfolio(userID, name, description string) (*models.Portfolio, error)
	GetUserPortfolios(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Portfolio], error)
	GetPortfolioByID(userID, portfolioID string) (*models.Portfolio, error)
	UpdatePortfolio(userID, portfolioID, name, description string) (*models.Portfolio, error)
	DeletePortfolio(userID, portfolioID string) error
	// EnsurePortfolio returns the owner's first-created portfolio, creating one
	// inside tx when the owner has none. The bool reports whether it was created.
	EnsurePortfolio(tx *gorm.DB, user *models.User) (*models.Portfolio, bool, error)
}

// PositionFilter holds optional filter parameters for listing positions.
type PositionFilter struct {
	PortfolioID *string
	ProductID   *string
	Status      *models.PositionStatus
}

// PositionServicer exposes read access to positions.
type PositionServicer interface {
	GetUserPositions(userID string, page pagination.PageRequest, filter PositionFilter) (*pagination.PageResponse[models.Position], error)
	GetPositionByID(userID, positionID string) (*models.Position, error)
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	PositionID *string
	OrderID    *string
	Type       *models.OrderType
	FromDate   *time.Time
	ToDate     *time.Time
}

// TransactionServicer exposes read access to the transaction ledger.
type TransactionServicer interface {
	GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(userID, transactionID string) (*models.Transaction, error)
}

// OrderLine is one requested product line when placing or editing an order.
// Unit prices always come from the catalog.
type OrderLine struct {
	ProductID string
	Quantity  decimal.Decimal
	Fees      decimal.Decimal
}

// PlaceOrderInput carries an order placement request.
type PlaceOrderInput struct {
	Type             models.OrderType
	Currency         string
	CustodyServiceID *string
	Notes            string
	Lines            []OrderLine
}

// OrderFilter holds optional filter parameters for listing orders.
type OrderFilter struct {
	Status *models.OrderStatus
	Type   *models.OrderType
}

// OrderServicer defines the order lifecycle: placement, the status state
// machine and administrative deletion.
type OrderServicer interface {
	PlaceOrder(ctx context.Context, userID string, input PlaceOrderInput) (*models.Order, error)
	GetOrders(ctx context.Context, actor Actor, page pagination.PageRequest, filter OrderFilter) (*pagination.PageResponse[models.Order], error)
	GetOrderByID(ctx context.Context, actor Actor, orderID string) (*models.Order, error)
	UpdateOrderItems(ctx context.Context, actor Actor, orderID string, lines []OrderLine) (*models.Order, error)
	AdvanceOrder(ctx context.Context, orderID string) (*models.Order, error)
	CancelOrder(ctx context.Context, orderID string, actor Actor) (*models.Order, error)
	DeleteOrder(ctx context.Context, orderID string) error
}

// FulfillmentResult aggregates everything one fulfillment pass changed.
type FulfillmentResult struct {
	Portfolio        *models.Portfolio
	PortfolioCreated bool
	Positions        []*models.Position
	Transactions     []*models.Transaction
	Events           []events.MutationEvent
}

// FulfillmentServicer turns a delivered order's lines into position and
// transaction mutations. Fulfill runs inside the caller's transaction.
type FulfillmentServicer interface {
	Fulfill(ctx context.Context, tx *gorm.DB, order *models.Order) (*FulfillmentResult, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
