package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is an immutable ledger entry for one buy or sell applied to a position.
type Transaction struct {
	Ledger
	PositionID string          `gorm:"type:uuid;not null;index" json:"position_id"`
	UserID     string          `gorm:"type:uuid;not null;index" json:"user_id"`
	OrderID    *string         `gorm:"type:uuid;index" json:"order_id,omitempty"`
	Type       OrderType       `gorm:"not null" json:"type"`
	Date       time.Time       `gorm:"not null" json:"date"`
	Quantity   decimal.Decimal `gorm:"type:numeric(20,4);not null" json:"quantity"`
	Price      decimal.Decimal `gorm:"type:numeric(20,4);not null" json:"price"`
	Fees       decimal.Decimal `gorm:"type:numeric(20,4);not null;default:0" json:"fees"`
	Notes      string          `json:"notes,omitempty"`
}
