package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "goldsphere/internal/errors"
	"goldsphere/internal/models"
	"goldsphere/internal/pagination"
	"goldsphere/internal/services"
)

// CustodyHandler serves custodians and the custody services they offer.
type CustodyHandler struct {
	custodyService services.CustodyServicer
	auditService   services.AuditServicer
}

// NewCustodyHandler creates a new CustodyHandler.
func NewCustodyHandler(custodyService services.CustodyServicer, auditService services.AuditServicer) *CustodyHandler {
	return &CustodyHandler{custodyService: custodyService, auditService: auditService}
}

// CustodianRequest is the payload for creating or updating a custodian.
type CustodianRequest struct {
	Name    string `json:"name" binding:"required,max=200"`
	Country string `json:"country" binding:"omitempty,len=2"`
	Website string `json:"website" binding:"omitempty,url,max=500"`
}

// CustodyServiceRequest is the payload for creating or updating a custody service.
type CustodyServiceRequest struct {
	CustodianID      string          `json:"custodian_id" binding:"required,uuid"`
	Name             string          `json:"name" binding:"required,max=200"`
	Fee              decimal.Decimal `json:"fee" binding:"decimal_nonnegative"`
	Currency         string          `json:"currency" binding:"required,iso4217"`
	PaymentFrequency string          `json:"payment_frequency" binding:"required,payment_frequency"`
	MaxWeightGrams   decimal.Decimal `json:"max_weight_grams" binding:"decimal_nonnegative"`
}

func (r CustodyServiceRequest) toInput() services.CustodyServiceInput {
	return services.CustodyServiceInput{
		CustodianID:      r.CustodianID,
		Name:             r.Name,
		Fee:              r.Fee,
		Currency:         strings.ToUpper(r.Currency),
		PaymentFrequency: models.PaymentFrequency(r.PaymentFrequency),
		MaxWeightGrams:   r.MaxWeightGrams,
	}
}

// CreateCustodian registers a vault operator
// @Summary     Create custodian
// @Tags        custody
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CustodianRequest true "Custodian details"
// @Success     201 {object} models.Custodian "Custodian created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Router      /custodians [post]
func (h *CustodyHandler) CreateCustodian(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CustodianRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	custodian, err := h.custodyService.CreateCustodian(req.Name, strings.ToUpper(req.Country), req.Website)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_CUSTODIAN", "custodian", custodian.ID, c.ClientIP(),
		map[string]interface{}{"name": custodian.Name})

	c.JSON(http.StatusCreated, gin.H{"custodian": custodian})
}

// GetCustodians lists custodians
// @Summary     List custodians
// @Tags        custody
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Custodian] "Paginated custodians"
// @Router      /custodians [get]
func (h *CustodyHandler) GetCustodians(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.custodyService.GetCustodians(page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetCustodian returns one custodian with its services
// @Summary     Get custodian
// @Tags        custody
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Custodian ID"
// @Success     200 {object} models.Custodian "Custodian"
// @Failure     404 {object} ErrorResponse "Custodian not found"
// @Router      /custodians/{id} [get]
func (h *CustodyHandler) GetCustodian(c *gin.Context) {
	custodianID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	custodian, err := h.custodyService.GetCustodianByID(custodianID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"custodian": custodian})
}

// UpdateCustodian replaces a custodian's details
// @Summary     Update custodian
// @Tags        custody
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string           true "Custodian ID"
// @Param       request body CustodianRequest true "Custodian details"
// @Success     200 {object} models.Custodian "Updated custodian"
// @Failure     404 {object} ErrorResponse "Custodian not found"
// @Router      /custodians/{id} [put]
func (h *CustodyHandler) UpdateCustodian(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	custodianID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CustodianRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	custodian, err := h.custodyService.UpdateCustodian(custodianID, req.Name, strings.ToUpper(req.Country), req.Website)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_CUSTODIAN", "custodian", custodian.ID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"custodian": custodian})
}

// DeleteCustodian removes a custodian without services
// @Summary     Delete custodian
// @Tags        custody
// @Security    BearerAuth
// @Param       id path string true "Custodian ID"
// @Success     204 "Deleted"
// @Failure     404 {object} ErrorResponse "Custodian not found"
// @Failure     409 {object} ErrorResponse "Custodian still offers services"
// @Router      /custodians/{id} [delete]
func (h *CustodyHandler) DeleteCustodian(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	custodianID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.custodyService.DeleteCustodian(custodianID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_CUSTODIAN", "custodian", custodianID, c.ClientIP(), nil)

	c.Status(http.StatusNoContent)
}

// CreateCustodyService adds a storage offering to a custodian
// @Summary     Create custody service
// @Tags        custody
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CustodyServiceRequest true "Custody service details"
// @Success     201 {object} models.CustodyService "Custody service created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Custodian not found"
// @Router      /custody-services [post]
func (h *CustodyHandler) CreateCustodyService(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CustodyServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	service, err := h.custodyService.CreateCustodyService(req.toInput())
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_CUSTODY_SERVICE", "custody_service", service.ID, c.ClientIP(),
		map[string]interface{}{"custodian_id": service.CustodianID, "fee": service.Fee.String()})

	c.JSON(http.StatusCreated, gin.H{"custody_service": service})
}

// GetCustodyServices lists custody services
// @Summary     List custody services
// @Tags        custody
// @Produce     json
// @Security    BearerAuth
// @Param       custodian_id query string false "Only services of this custodian"
// @Param       page         query int    false "Page number (default 1)"
// @Param       page_size    query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.CustodyService] "Paginated custody services"
// @Router      /custody-services [get]
func (h *CustodyHandler) GetCustodyServices(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	custodianID, err := parseQueryID(c, "custodian_id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	var filter string
	if custodianID != nil {
		filter = *custodianID
	}

	result, err := h.custodyService.GetCustodyServices(filter, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetCustodyService returns one custody service
// @Summary     Get custody service
// @Tags        custody
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Custody service ID"
// @Success     200 {object} models.CustodyService "Custody service"
// @Failure     404 {object} ErrorResponse "Custody service not found"
// @Router      /custody-services/{id} [get]
func (h *CustodyHandler) GetCustodyService(c *gin.Context) {
	serviceID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	service, err := h.custodyService.GetCustodyServiceByID(serviceID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"custody_service": service})
}

// UpdateCustodyService replaces a custody service's terms
// @Summary     Update custody service
// @Tags        custody
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                true "Custody service ID"
// @Param       request body CustodyServiceRequest true "Custody service details"
// @Success     200 {object} models.CustodyService "Updated custody service"
// @Failure     404 {object} ErrorResponse "Custody service not found"
// @Router      /custody-services/{id} [put]
func (h *CustodyHandler) UpdateCustodyService(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	serviceID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CustodyServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	service, err := h.custodyService.UpdateCustodyService(serviceID, req.toInput())
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_CUSTODY_SERVICE", "custody_service", service.ID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"custody_service": service})
}

// DeleteCustodyService withdraws a custody service
// @Summary     Delete custody service
// @Tags        custody
// @Security    BearerAuth
// @Param       id path string true "Custody service ID"
// @Success     204 "Deleted"
// @Failure     404 {object} ErrorResponse "Custody service not found"
// @Router      /custody-services/{id} [delete]
func (h *CustodyHandler) DeleteCustodyService(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	serviceID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.custodyService.DeleteCustodyService(serviceID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_CUSTODY_SERVICE", "custody_service", serviceID, c.ClientIP(), nil)

	c.Status(http.StatusNoContent)
}
