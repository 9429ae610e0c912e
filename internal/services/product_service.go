package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "goldsphere/internal/errors"
	"goldsphere/internal/models"
	"goldsphere/internal/pagination"
)

var productSortColumns = []string{"created_at", "name", "price", "weight_grams", "year"}

// productService manages the product catalog.
type productService struct {
	db *gorm.DB
}

// NewProductService creates a new ProductServicer.
func NewProductService(db *gorm.DB) ProductServicer {
	return &productService{db: db}
}

func validateProductInput(input ProductInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "product name is required")
	}
	if !input.Price.IsPositive() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "price must be greater than zero")
	}
	if !input.WeightGrams.IsPositive() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "weight must be greater than zero")
	}
	if input.MinPriceIncrement.IsNegative() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "minimum price increment cannot be negative")
	}
	return nil
}

// CreateProduct adds a product to the catalog.
func (s *productService) CreateProduct(input ProductInput) (*models.Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}
	if input.Currency == "" {
		input.Currency = "CHF"
	}

	product := &models.Product{
		Name:              strings.TrimSpace(input.Name),
		Metal:             input.Metal,
		ProductType:       input.ProductType,
		WeightGrams:       input.WeightGrams,
		Purity:            input.Purity,
		Producer:          input.Producer,
		Country:           strings.ToUpper(input.Country),
		Year:              input.Year,
		Price:             input.Price,
		Currency:          strings.ToUpper(input.Currency),
		MinPriceIncrement: input.MinPriceIncrement,
		InStock:           input.InStock,
		IsActive:          true,
		Description:       input.Description,
	}
	if err := s.db.Create(product).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return product, nil
}

// GetProducts lists catalog products with optional metal and type filters.
func (s *productService) GetProducts(page pagination.PageRequest, filter ProductFilter) (*pagination.PageResponse[models.Product], error) {
	page.Defaults()

	base := s.db.Model(&models.Product{})
	if filter.Metal != nil {
		base = base.Where("metal = ?", *filter.Metal)
	}
	if filter.ProductType != nil {
		base = base.Where("product_type = ?", *filter.ProductType)
	}
	if filter.ActiveOnly {
		base = base.Where("is_active = ?", true)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var products []models.Product
	if err := base.Order(page.OrderClause(productSortColumns, "created_at")).
		Scopes(pagination.Paginate(page)).Find(&products).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(products, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetProductByID retrieves a single product.
func (s *productService) GetProductByID(id string) (*models.Product, error) {
	var product models.Product
	if err := s.db.Where("id = ?", id).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProductNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &product, nil
}

// UpdateProduct replaces the writable fields of a product. Prices of existing
// orders are not affected; they were captured at placement.
func (s *productService) UpdateProduct(id string, input ProductInput) (*models.Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}
	product, err := s.GetProductByID(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"name":                strings.TrimSpace(input.Name),
		"metal":               input.Metal,
		"product_type":        input.ProductType,
		"weight_grams":        input.WeightGrams,
		"purity":              input.Purity,
		"producer":            input.Producer,
		"country":             strings.ToUpper(input.Country),
		"year":                input.Year,
		"price":               input.Price,
		"min_price_increment": input.MinPriceIncrement,
		"in_stock":            input.InStock,
		"description":         input.Description,
	}
	if input.Currency != "" {
		updates["currency"] = strings.ToUpper(input.Currency)
	}
	if err := s.db.Model(product).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.GetProductByID(id)
}

// DeleteProduct retires a product. It stays referenced by positions and past
// orders, so it is only marked inactive and soft-deleted.
func (s *productService) DeleteProduct(id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.Where("id = ?", id).First(&product).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrProductNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Model(&product).Update("is_active", false).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(&product).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}
