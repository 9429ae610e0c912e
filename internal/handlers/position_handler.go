package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "goldsphere/internal/errors"
	"goldsphere/internal/models"
	"goldsphere/internal/pagination"
	"goldsphere/internal/services"
)

// PositionHandler exposes read access to holdings and their ledger.
type PositionHandler struct {
	positionService    services.PositionServicer
	transactionService services.TransactionServicer
}

// NewPositionHandler creates a new PositionHandler.
func NewPositionHandler(positionService services.PositionServicer, transactionService services.TransactionServicer) *PositionHandler {
	return &PositionHandler{positionService: positionService, transactionService: transactionService}
}

// GetPositions lists the caller's positions
// @Summary     List positions
// @Tags        positions
// @Produce     json
// @Security    BearerAuth
// @Param       portfolio_id query string false "Filter by portfolio"
// @Param       product_id   query string false "Filter by product"
// @Param       status       query string false "active or closed"
// @Param       page         query int    false "Page number (default 1)"
// @Param       page_size    query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Position] "Paginated positions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /positions [get]
func (h *PositionHandler) GetPositions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var filter services.PositionFilter
	if filter.PortfolioID, err = parseQueryID(c, "portfolio_id"); err != nil {
		respondWithError(c, err)
		return
	}
	if filter.ProductID, err = parseQueryID(c, "product_id"); err != nil {
		respondWithError(c, err)
		return
	}
	if v := c.Query("status"); v != "" {
		status := models.PositionStatus(v)
		if status != models.PositionStatusActive && status != models.PositionStatusClosed {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid status, must be active or closed"))
			return
		}
		filter.Status = &status
	}

	result, err := h.positionService.GetUserPositions(userID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetPosition returns one position
// @Summary     Get position
// @Tags        positions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Position ID"
// @Success     200 {object} models.Position "Position"
// @Failure     404 {object} ErrorResponse "Position not found"
// @Router      /positions/{id} [get]
func (h *PositionHandler) GetPosition(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	positionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	position, err := h.positionService.GetPositionByID(userID, positionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"position": position})
}

// GetPositionTransactions lists the ledger entries of one position
// @Summary     Get position transactions
// @Tags        positions,transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id        path  string true  "Position ID"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Transaction] "Paginated transactions"
// @Failure     404 {object} ErrorResponse "Position not found"
// @Router      /positions/{id}/transactions [get]
func (h *PositionHandler) GetPositionTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	positionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	if _, err := h.positionService.GetPositionByID(userID, positionID); err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.transactionService.GetUserTransactions(userID, page, services.TransactionFilter{PositionID: &positionID})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
