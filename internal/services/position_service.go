package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "goldsphere/internal/errors"
	"goldsphere/internal/models"
	"goldsphere/internal/pagination"
)

var positionSortColumns = []string{"created_at", "updated_at", "purchase_date", "quantity", "purchase_price"}

// positionService exposes a user's holdings. Positions are only written by
// fulfillment.
type positionService struct {
	db *gorm.DB
}

// NewPositionService creates a new PositionServicer.
func NewPositionService(db *gorm.DB) PositionServicer {
	return &positionService{db: db}
}

// GetUserPositions lists a user's positions with optional filters.
func (s *positionService) GetUserPositions(userID string, page pagination.PageRequest, filter PositionFilter) (*pagination.PageResponse[models.Position], error) {
	page.Defaults()

	base := s.db.Model(&models.Position{}).Where("user_id = ?", userID)
	if filter.PortfolioID != nil {
		base = base.Where("portfolio_id = ?", *filter.PortfolioID)
	}
	if filter.ProductID != nil {
		base = base.Where("product_id = ?", *filter.ProductID)
	}
	if filter.Status != nil {
		base = base.Where("status = ?", *filter.Status)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var positions []models.Position
	if err := base.Preload("Product").Preload("CustodyService").
		Order(page.OrderClause(positionSortColumns, "created_at")).
		Scopes(pagination.Paginate(page)).Find(&positions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(positions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetPositionByID retrieves one of the user's positions.
func (s *positionService) GetPositionByID(userID, positionID string) (*models.Position, error) {
	var position models.Position
	if err := s.db.Preload("Product").Preload("CustodyService").
		Where("id = ? AND user_id = ?", positionID, userID).First(&position).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.WithMessage(apperrors.ErrNotFound, "Position not found")
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &position, nil
}
