package models

// Portfolio is a named container of positions owned by one user.
type Portfolio struct {
	Base
	UserID      string     `gorm:"type:uuid;not null;index" json:"user_id"`
	Name        string     `gorm:"not null" json:"name"`
	Description string     `json:"description,omitempty"`
	IsActive    bool       `gorm:"not null" json:"is_active"`
	Positions   []Position `gorm:"foreignKey:PortfolioID" json:"positions,omitempty"`
}
