package models

import "github.com/shopspring/decimal"

// PaymentFrequency is how often a custody fee is charged.
type PaymentFrequency string

const (
	PaymentFrequencyMonthly   PaymentFrequency = "monthly"
	PaymentFrequencyQuarterly PaymentFrequency = "quarterly"
	PaymentFrequencyYearly    PaymentFrequency = "yearly"
)

// Custodian operates vaults that store metal on behalf of users.
type Custodian struct {
	Base
	Name     string           `gorm:"not null;uniqueIndex" json:"name"`
	Country  string           `gorm:"size:2" json:"country,omitempty"`
	Website  string           `json:"website,omitempty"`
	Services []CustodyService `gorm:"foreignKey:CustodianID" json:"services,omitempty"`
}

// CustodyService is a storage arrangement offered by a custodian. It is the
// optional fourth part of a position's identity.
type CustodyService struct {
	Base
	CustodianID      string           `gorm:"type:uuid;not null;index" json:"custodian_id"`
	Name             string           `gorm:"not null" json:"name"`
	Fee              decimal.Decimal  `gorm:"type:numeric(20,4);not null;default:0" json:"fee"`
	Currency         string           `gorm:"size:3;not null;default:'CHF'" json:"currency"`
	PaymentFrequency PaymentFrequency `gorm:"not null;default:'yearly'" json:"payment_frequency"`
	MaxWeightGrams   decimal.Decimal  `gorm:"type:numeric(14,4)" json:"max_weight_grams"`
	Custodian        *Custodian       `gorm:"foreignKey:CustodianID" json:"custodian,omitempty"`
}
