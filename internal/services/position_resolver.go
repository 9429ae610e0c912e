package services

import (
	"errors"

	"gorm.io/gorm"

	"goldsphere/internal/database"
	"goldsphere/internal/models"
)

// PositionKey identifies a holding. A nil CustodyServiceID is its own class
// and only matches positions without a custody service.
type PositionKey struct {
	UserID           string
	ProductID        string
	PortfolioID      string
	CustodyServiceID *string
}

// Scope restricts a query to positions with exactly this key.
func (k PositionKey) Scope(db *gorm.DB) *gorm.DB {
	db = db.Where("user_id = ? AND product_id = ? AND portfolio_id = ?", k.UserID, k.ProductID, k.PortfolioID)
	if k.CustodyServiceID == nil {
		return db.Where("custody_service_id IS NULL")
	}
	return db.Where("custody_service_id = ?", *k.CustodyServiceID)
}

// Resolution is the outcome of looking up a position key.
type Resolution int

const (
	ResolutionNone Resolution = iota
	ResolutionActive
	ResolutionClosed
)

func (r Resolution) String() string {
	switch r {
	case ResolutionActive:
		return "active"
	case ResolutionClosed:
		return "closed"
	default:
		return "none"
	}
}

// PositionResolution carries the matched position, nil for ResolutionNone.
type PositionResolution struct {
	Outcome  Resolution
	Position *models.Position
}

// ResolvePosition finds the active position for key, or failing that the most
// recently closed one. Matched rows are locked for update until tx ends.
func ResolvePosition(tx *gorm.DB, key PositionKey) (*PositionResolution, error) {
	var active models.Position
	err := tx.Scopes(key.Scope, database.ForUpdate).
		Where("status = ?", models.PositionStatusActive).
		Order("created_at ASC, id ASC").
		Take(&active).Error
	switch {
	case err == nil:
		return &PositionResolution{Outcome: ResolutionActive, Position: &active}, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	var closed models.Position
	err = tx.Scopes(key.Scope, database.ForUpdate).
		Where("status = ?", models.PositionStatusClosed).
		Order("closed_date DESC, id DESC").
		Take(&closed).Error
	switch {
	case err == nil:
		return &PositionResolution{Outcome: ResolutionClosed, Position: &closed}, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	return &PositionResolution{Outcome: ResolutionNone}, nil
}
