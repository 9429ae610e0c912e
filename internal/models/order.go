package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderType is the direction of an order.
type OrderType string

const (
	OrderTypeBuy  OrderType = "buy"
	OrderTypeSell OrderType = "sell"
)

// Valid reports whether t is a known order type.
func (t OrderType) Valid() bool {
	return t == OrderTypeBuy || t == OrderTypeSell
}

// OrderStatus is the closed set of order lifecycle states. Values are stored
// lowercase; any other casing is a presentation concern.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// OrderStatuses lists every status in forward order, cancelled last.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

// Valid reports whether s is one of the defined statuses.
func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is possible.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// ParseOrderStatus accepts any casing and returns the stored form.
func ParseOrderStatus(raw string) (OrderStatus, bool) {
	s := OrderStatus(strings.ToLower(strings.TrimSpace(raw)))
	return s, s.Valid()
}

// Order is a buy or sell intent placed by one user.
type Order struct {
	Base
	UserID           string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Type             OrderType       `gorm:"not null" json:"type"`
	Status           OrderStatus     `gorm:"not null;index;default:'pending'" json:"status"`
	Currency         string          `gorm:"size:3;not null" json:"currency"`
	CustodyServiceID *string         `gorm:"type:uuid" json:"custody_service_id,omitempty"`
	Subtotal         decimal.Decimal `gorm:"type:numeric(20,4);not null;default:0" json:"subtotal"`
	Fees             decimal.Decimal `gorm:"type:numeric(20,4);not null;default:0" json:"fees"`
	Total            decimal.Decimal `gorm:"type:numeric(20,4);not null;default:0" json:"total"`
	Notes            string          `json:"notes,omitempty"`
	// FulfilledAt is stamped by the fulfillment pass; a set value means the
	// order's lines have already been applied to positions.
	FulfilledAt *time.Time  `json:"fulfilled_at,omitempty"`
	Items       []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
}

// OrderItem is one product line of an order.
type OrderItem struct {
	Base
	OrderID    string          `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID  string          `gorm:"type:uuid;not null" json:"product_id"`
	Quantity   decimal.Decimal `gorm:"type:numeric(20,4);not null" json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"type:numeric(20,4);not null" json:"unit_price"`
	TotalPrice decimal.Decimal `gorm:"type:numeric(20,4);not null" json:"total_price"`
	Fees       decimal.Decimal `gorm:"type:numeric(20,4);not null;default:0" json:"fees"`
	Product    *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}
