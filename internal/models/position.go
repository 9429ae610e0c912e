package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PositionStatus is the lifecycle state of a position.
type PositionStatus string

const (
	PositionStatusActive PositionStatus = "active"
	PositionStatusClosed PositionStatus = "closed"
)

// Position is a user's holding of one product within one portfolio and
// optional custody service. At most one active position exists per
// (user, product, portfolio, custody service) key.
type Position struct {
	Base
	UserID           string          `gorm:"type:uuid;not null;index:idx_positions_key" json:"user_id"`
	ProductID        string          `gorm:"type:uuid;not null;index:idx_positions_key" json:"product_id"`
	PortfolioID      string          `gorm:"type:uuid;not null;index:idx_positions_key" json:"portfolio_id"`
	CustodyServiceID *string         `gorm:"type:uuid;index:idx_positions_key" json:"custody_service_id,omitempty"`
	Quantity         decimal.Decimal `gorm:"type:numeric(20,4);not null" json:"quantity"`
	PurchasePrice    decimal.Decimal `gorm:"type:numeric(20,4);not null" json:"purchase_price"`
	MarketPrice      decimal.Decimal `gorm:"type:numeric(20,4);not null" json:"market_price"`
	Status           PositionStatus  `gorm:"not null;index" json:"status"`
	PurchaseDate     time.Time       `gorm:"not null" json:"purchase_date"`
	ClosedDate       *time.Time      `json:"closed_date,omitempty"`
	Notes            string          `json:"notes,omitempty"`

	// Relationships
	Product        *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	CustodyService *CustodyService `gorm:"foreignKey:CustodyServiceID" json:"custody_service,omitempty"`
}

// IsActive reports whether the position is currently held.
func (p *Position) IsActive() bool {
	return p.Status == PositionStatusActive
}
