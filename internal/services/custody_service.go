package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "goldsphere/internal/errors"
	"goldsphere/internal/models"
	"goldsphere/internal/pagination"
)

// custodyService manages custodians and the custody services they offer.
type custodyService struct {
	db *gorm.DB
}

// NewCustodyService creates a new CustodyServicer.
func NewCustodyService(db *gorm.DB) CustodyServicer {
	return &custodyService{db: db}
}

// CreateCustodian registers a vault operator.
func (s *custodyService) CreateCustodian(name, country, website string) (*models.Custodian, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "custodian name is required")
	}

	var count int64
	if err := s.db.Model(&models.Custodian{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "a custodian with this name already exists")
	}

	custodian := &models.Custodian{
		Name:    name,
		Country: strings.ToUpper(country),
		Website: website,
	}
	if err := s.db.Create(custodian).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return custodian, nil
}

// GetCustodians lists custodians by name.
func (s *custodyService) GetCustodians(page pagination.PageRequest) (*pagination.PageResponse[models.Custodian], error) {
	page.Defaults()

	var totalItems int64
	base := s.db.Model(&models.Custodian{})
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var custodians []models.Custodian
	if err := base.Order("name ASC, id ASC").Scopes(pagination.Paginate(page)).Find(&custodians).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(custodians, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetCustodianByID retrieves a custodian with its services.
func (s *custodyService) GetCustodianByID(id string) (*models.Custodian, error) {
	var custodian models.Custodian
	if err := s.db.Preload("Services").Where("id = ?", id).First(&custodian).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCustodianNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &custodian, nil
}

// UpdateCustodian changes a custodian's details. Empty name keeps the current one.
func (s *custodyService) UpdateCustodian(id, name, country, website string) (*models.Custodian, error) {
	custodian, err := s.GetCustodianByID(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"country": strings.ToUpper(country),
		"website": website,
	}
	if name = strings.TrimSpace(name); name != "" {
		updates["name"] = name
	}
	if err := s.db.Model(custodian).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.GetCustodianByID(id)
}

// DeleteCustodian removes a custodian that no longer offers any service.
func (s *custodyService) DeleteCustodian(id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var custodian models.Custodian
		if err := tx.Where("id = ?", id).First(&custodian).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrCustodianNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		var services int64
		if err := tx.Model(&models.CustodyService{}).Where("custodian_id = ?", id).Count(&services).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if services > 0 {
			return apperrors.ErrCustodianInUse
		}

		if err := tx.Delete(&custodian).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

func validateCustodyServiceInput(input CustodyServiceInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "custody service name is required")
	}
	if input.Fee.IsNegative() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "fee cannot be negative")
	}
	if input.MaxWeightGrams.IsNegative() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "max weight cannot be negative")
	}
	return nil
}

// CreateCustodyService adds a service to an existing custodian.
func (s *custodyService) CreateCustodyService(input CustodyServiceInput) (*models.CustodyService, error) {
	if err := validateCustodyServiceInput(input); err != nil {
		return nil, err
	}
	if _, err := s.GetCustodianByID(input.CustodianID); err != nil {
		return nil, err
	}
	if input.Currency == "" {
		input.Currency = "CHF"
	}
	if input.PaymentFrequency == "" {
		input.PaymentFrequency = models.PaymentFrequencyYearly
	}

	service := &models.CustodyService{
		CustodianID:      input.CustodianID,
		Name:             strings.TrimSpace(input.Name),
		Fee:              input.Fee,
		Currency:         strings.ToUpper(input.Currency),
		PaymentFrequency: input.PaymentFrequency,
		MaxWeightGrams:   input.MaxWeightGrams,
	}
	if err := s.db.Create(service).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return service, nil
}

// GetCustodyServices lists custody services, optionally for one custodian.
func (s *custodyService) GetCustodyServices(custodianID string, page pagination.PageRequest) (*pagination.PageResponse[models.CustodyService], error) {
	page.Defaults()

	base := s.db.Model(&models.CustodyService{})
	if custodianID != "" {
		base = base.Where("custodian_id = ?", custodianID)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var services []models.CustodyService
	if err := base.Preload("Custodian").Order("name ASC, id ASC").
		Scopes(pagination.Paginate(page)).Find(&services).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(services, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetCustodyServiceByID retrieves one custody service with its custodian.
func (s *custodyService) GetCustodyServiceByID(id string) (*models.CustodyService, error) {
	var service models.CustodyService
	if err := s.db.Preload("Custodian").Where("id = ?", id).First(&service).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCustodyServiceNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &service, nil
}

// UpdateCustodyService replaces the writable fields of a custody service.
// The custodian it belongs to cannot change.
func (s *custodyService) UpdateCustodyService(id string, input CustodyServiceInput) (*models.CustodyService, error) {
	if err := validateCustodyServiceInput(input); err != nil {
		return nil, err
	}
	service, err := s.GetCustodyServiceByID(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"name":             strings.TrimSpace(input.Name),
		"fee":              input.Fee,
		"max_weight_grams": input.MaxWeightGrams,
	}
	if input.Currency != "" {
		updates["currency"] = strings.ToUpper(input.Currency)
	}
	if input.PaymentFrequency != "" {
		updates["payment_frequency"] = input.PaymentFrequency
	}
	if err := s.db.Model(service).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.GetCustodyServiceByID(id)
}

// DeleteCustodyService soft-deletes a custody service. Positions keep
// referencing it as part of their key.
func (s *custodyService) DeleteCustodyService(id string) error {
	result := s.db.Where("id = ?", id).Delete(&models.CustodyService{})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrCustodyServiceNotFound
	}
	return nil
}
