package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"goldsphere/internal/database"
	apperrors "goldsphere/internal/errors"
	"goldsphere/internal/models"
	"goldsphere/internal/pagination"
)

var portfolioSortColumns = []string{"created_at", "updated_at", "name"}

// portfolioService handles portfolio-related business logic.
type portfolioService struct {
	db *gorm.DB
}

// NewPortfolioService creates a new PortfolioServicer.
func NewPortfolioService(db *gorm.DB) PortfolioServicer {
	return &portfolioService{db: db}
}

// CreatePortfolio creates a named portfolio for a user.
func (s *portfolioService) CreatePortfolio(userID, name, description string) (*models.Portfolio, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "portfolio name is required")
	}

	portfolio := &models.Portfolio{
		UserID:      userID,
		Name:        name,
		Description: description,
		IsActive:    true,
	}
	if err := s.db.Create(portfolio).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return portfolio, nil
}

// GetUserPortfolios retrieves a paginated list of portfolios for a user.
func (s *portfolioService) GetUserPortfolios(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Portfolio], error) {
	page.Defaults()

	var totalItems int64
	base := s.db.Model(&models.Portfolio{}).Where("user_id = ?", userID)
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var portfolios []models.Portfolio
	if err := base.Order(page.OrderClause(portfolioSortColumns, "created_at")).
		Scopes(pagination.Paginate(page)).Find(&portfolios).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(portfolios, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetPortfolioByID retrieves a portfolio by ID for a specific user.
func (s *portfolioService) GetPortfolioByID(userID, portfolioID string) (*models.Portfolio, error) {
	var portfolio models.Portfolio
	if err := s.db.Where("id = ? AND user_id = ?", portfolioID, userID).First(&portfolio).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPortfolioNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &portfolio, nil
}

// UpdatePortfolio renames or re-describes a portfolio. Empty name keeps the current one.
func (s *portfolioService) UpdatePortfolio(userID, portfolioID, name, description string) (*models.Portfolio, error) {
	portfolio, err := s.GetPortfolioByID(userID, portfolioID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{"description": description}
	if name = strings.TrimSpace(name); name != "" {
		updates["name"] = name
	}
	if err := s.db.Model(portfolio).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.GetPortfolioByID(userID, portfolioID)
}

// DeletePortfolio soft-deletes a portfolio that holds no active positions.
// The owner row is locked before the portfolio row, matching Fulfill.
func (s *portfolioService) DeletePortfolio(userID, portfolioID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var owner models.User
		if err := tx.Scopes(database.ForUpdate).First(&owner, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrPortfolioNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		var portfolio models.Portfolio
		if err := tx.Scopes(database.ForUpdate).Where("id = ? AND user_id = ?", portfolioID, userID).First(&portfolio).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrPortfolioNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		var active int64
		if err := tx.Model(&models.Position{}).
			Where("portfolio_id = ? AND status = ?", portfolioID, models.PositionStatusActive).
			Count(&active).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if active > 0 {
			return apperrors.ErrPortfolioHasPositions
		}

		if err := tx.Delete(&portfolio).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// EnsurePortfolio returns the owner's first-created portfolio or provisions
// one. The caller holds the owner row lock, so two concurrent fulfillments for
// the same owner cannot both create a portfolio.
func (s *portfolioService) EnsurePortfolio(tx *gorm.DB, user *models.User) (*models.Portfolio, bool, error) {
	var portfolio models.Portfolio
	err := tx.Where("user_id = ?", user.ID).Order("created_at ASC, id ASC").Take(&portfolio).Error
	if err == nil {
		return &portfolio, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	portfolio = models.Portfolio{
		UserID:   user.ID,
		Name:     DefaultPortfolioName(user),
		IsActive: true,
	}
	if err := tx.Create(&portfolio).Error; err != nil {
		return nil, false, err
	}
	return &portfolio, true, nil
}

// DefaultPortfolioName derives a display name from the owner's identity,
// falling back to the local part of the email when no name is set.
func DefaultPortfolioName(user *models.User) string {
	owner := strings.TrimSpace(strings.TrimSpace(user.FirstName) + " " + strings.TrimSpace(user.LastName))
	if owner == "" {
		owner, _, _ = strings.Cut(user.Email, "@")
	}
	if owner == "" {
		return "My Portfolio"
	}
	return fmt.Sprintf("%s's Portfolio", owner)
}
