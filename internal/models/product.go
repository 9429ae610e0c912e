package models

import "github.com/shopspring/decimal"

// Metal is the precious metal a product is made of.
type Metal string

const (
	MetalGold      Metal = "gold"
	MetalSilver    Metal = "silver"
	MetalPlatinum  Metal = "platinum"
	MetalPalladium Metal = "palladium"
)

// ProductType is the physical form of a product.
type ProductType string

const (
	ProductTypeCoin  ProductType = "coin"
	ProductTypeBar   ProductType = "bar"
	ProductTypeRound ProductType = "round"
)

// Product is a tradable catalog item, e.g. a 1 oz Krugerrand or a 100 g bar.
type Product struct {
	Base
	Name        string          `gorm:"not null" json:"name"`
	Metal       Metal           `gorm:"not null;index" json:"metal"`
	ProductType ProductType     `gorm:"not null" json:"product_type"`
	WeightGrams decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"weight_grams"`
	Purity      decimal.Decimal `gorm:"type:numeric(6,5);not null" json:"purity"`
	Producer    string          `json:"producer,omitempty"`
	Country     string          `gorm:"size:2" json:"country,omitempty"`
	Year        int             `json:"year,omitempty"`
	Price       decimal.Decimal `gorm:"type:numeric(20,4);not null" json:"price"`
	Currency    string          `gorm:"size:3;not null;default:'CHF'" json:"currency"`
	// MinPriceIncrement is the tick size prices are rounded to. Zero means
	// the currency's minor unit.
	MinPriceIncrement decimal.Decimal `gorm:"type:numeric(20,4);not null;default:0" json:"min_price_increment"`
	InStock           bool            `gorm:"not null" json:"in_stock"`
	IsActive          bool            `gorm:"not null" json:"is_active"`
	Description       string          `json:"description,omitempty"`
}
