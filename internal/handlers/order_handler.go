package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "goldsphere/internal/errors"
	"goldsphere/internal/models"
	"goldsphere/internal/pagination"
	"goldsphere/internal/services"
)

// OrderHandler handles order placement and the order lifecycle.
type OrderHandler struct {
	orderService services.OrderServicer
	auditService services.AuditServicer
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderService services.OrderServicer, auditService services.AuditServicer) *OrderHandler {
	return &OrderHandler{orderService: orderService, auditService: auditService}
}

// OrderLineRequest is one product line of an order request.
type OrderLineRequest struct {
	ProductID string          `json:"product_id" binding:"required,uuid"`
	Quantity  decimal.Decimal `json:"quantity" binding:"decimal_positive"`
	Fees      decimal.Decimal `json:"fees" binding:"decimal_nonnegative"`
}

// PlaceOrderRequest represents the request payload for placing an order.
type PlaceOrderRequest struct {
	Type             string             `json:"type" binding:"required,order_type"`
	Currency         string             `json:"currency" binding:"omitempty,iso4217"`
	CustodyServiceID *string            `json:"custody_service_id" binding:"omitempty,uuid"`
	Notes            string             `json:"notes" binding:"max=1000"`
	Items            []OrderLineRequest `json:"items" binding:"required,min=1,max=50,dive"`
}

// UpdateOrderItemsRequest replaces the lines of a pending order.
type UpdateOrderItemsRequest struct {
	Items []OrderLineRequest `json:"items" binding:"required,min=1,max=50,dive"`
}

// OrderItemResponse is one priced line of an order.
type OrderItemResponse struct {
	ID         string          `json:"id"`
	ProductID  string          `json:"product_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Fees       decimal.Decimal `json:"fees"`
}

// OrderResponse is the external representation of an order. Status and type
// are rendered uppercase.
type OrderResponse struct {
	ID               string              `json:"id"`
	UserID           string              `json:"user_id"`
	Type             string              `json:"type"`
	Status           string              `json:"status"`
	Currency         string              `json:"currency"`
	CustodyServiceID *string             `json:"custody_service_id,omitempty"`
	Subtotal         decimal.Decimal     `json:"subtotal"`
	Fees             decimal.Decimal     `json:"fees"`
	Total            decimal.Decimal     `json:"total"`
	Notes            string              `json:"notes,omitempty"`
	FulfilledAt      *time.Time          `json:"fulfilled_at,omitempty"`
	Items            []OrderItemResponse `json:"items"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

func newOrderResponse(order *models.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemResponse{
			ID:         item.ID,
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			TotalPrice: item.TotalPrice,
			Fees:       item.Fees,
		})
	}
	return OrderResponse{
		ID:               order.ID,
		UserID:           order.UserID,
		Type:             strings.ToUpper(string(order.Type)),
		Status:           strings.ToUpper(string(order.Status)),
		Currency:         order.Currency,
		CustodyServiceID: order.CustodyServiceID,
		Subtotal:         order.Subtotal,
		Fees:             order.Fees,
		Total:            order.Total,
		Notes:            order.Notes,
		FulfilledAt:      order.FulfilledAt,
		Items:            items,
		CreatedAt:        order.CreatedAt,
		UpdatedAt:        order.UpdatedAt,
	}
}

func toOrderLines(reqs []OrderLineRequest) []services.OrderLine {
	lines := make([]services.OrderLine, 0, len(reqs))
	for _, r := range reqs {
		lines = append(lines, services.OrderLine{ProductID: r.ProductID, Quantity: r.Quantity, Fees: r.Fees})
	}
	return lines
}

// PlaceOrder handles order placement
// @Summary     Place an order
// @Description Place a buy or sell order. Unit prices are taken from the catalog. The order starts as PENDING.
// @Tags        orders
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body PlaceOrderRequest true "Order details"
// @Success     201 {object} OrderResponse "Order placed"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Product or custody service not found"
// @Router      /orders [post]
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	orderType, _ := parseOrderType(req.Type)
	order, err := h.orderService.PlaceOrder(c.Request.Context(), userID, services.PlaceOrderInput{
		Type:             orderType,
		Currency:         req.Currency,
		CustodyServiceID: req.CustodyServiceID,
		Notes:            req.Notes,
		Lines:            toOrderLines(req.Items),
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "PLACE_ORDER", "order", order.ID, c.ClientIP(),
		map[string]interface{}{"type": order.Type, "total": order.Total.String(), "currency": order.Currency})

	c.JSON(http.StatusCreated, gin.H{"order": newOrderResponse(order)})
}

// GetOrders lists orders
// @Summary     List orders
// @Description Customers see their own orders, admins see all orders. Status filters accept any casing.
// @Tags        orders
// @Produce     json
// @Security    BearerAuth
// @Param       status    query string false "Filter by status"
// @Param       type      query string false "buy or sell"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Param       sort      query string false "created_at, updated_at, status or total"
// @Param       order     query string false "asc or desc"
// @Success     200 {object} pagination.PageResponse[OrderResponse] "Paginated orders"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /orders [get]
func (h *OrderHandler) GetOrders(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var filter services.OrderFilter
	if v := c.Query("status"); v != "" {
		status, ok := models.ParseOrderStatus(v)
		if !ok {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid status"))
			return
		}
		filter.Status = &status
	}
	if v := c.Query("type"); v != "" {
		orderType, ok := parseOrderType(v)
		if !ok {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid type, must be buy or sell"))
			return
		}
		filter.Type = &orderType
	}

	result, err := h.orderService.GetOrders(c.Request.Context(), actor, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	data := make([]OrderResponse, 0, len(result.Data))
	for i := range result.Data {
		data = append(data, newOrderResponse(&result.Data[i]))
	}
	c.JSON(http.StatusOK, pagination.NewPageResponse(data, result.Page, result.PageSize, result.TotalItems))
}

// GetOrder returns one order
// @Summary     Get order
// @Tags        orders
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Order ID"
// @Success     200 {object} OrderResponse "Order"
// @Failure     404 {object} ErrorResponse "Order not found"
// @Router      /orders/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	orderID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	order, err := h.orderService.GetOrderByID(c.Request.Context(), actor, orderID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": newOrderResponse(order)})
}

// UpdateOrderItems replaces the lines of a pending order
// @Summary     Update order items
// @Description Replace all lines of a PENDING order. Lines are repriced from the catalog.
// @Tags        orders
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                  true "Order ID"
// @Param       request body UpdateOrderItemsRequest true "New lines"
// @Success     200 {object} OrderResponse "Updated order"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Order not found"
// @Failure     409 {object} ErrorResponse "Order is no longer pending"
// @Router      /orders/{id}/items [put]
func (h *OrderHandler) UpdateOrderItems(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	orderID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateOrderItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	order, err := h.orderService.UpdateOrderItems(c.Request.Context(), actor, orderID, toOrderLines(req.Items))
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor.UserID, "UPDATE_ORDER_ITEMS", "order", order.ID, c.ClientIP(),
		map[string]interface{}{"items": len(order.Items), "total": order.Total.String()})

	c.JSON(http.StatusOK, gin.H{"order": newOrderResponse(order)})
}

// AdvanceOrder moves an order one status forward
// @Summary     Advance order status
// @Description Move an order to its next status (admin only). Advancing a SHIPPED order to DELIVERED applies it to the owner's positions. Returns 503 with Retry-After when the order or its positions are locked.
// @Tags        orders
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Order ID"
// @Success     200 {object} OrderResponse "Advanced order"
// @Failure     404 {object} ErrorResponse "Order not found"
// @Failure     409 {object} ErrorResponse "Order is terminal"
// @Failure     422 {object} ErrorResponse "Fulfillment rejected"
// @Failure     503 {object} ErrorResponse "Resource busy"
// @Router      /orders/{id}/advance [post]
func (h *OrderHandler) AdvanceOrder(c *gin.Context) {
	adminID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	orderID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	order, err := h.orderService.AdvanceOrder(c.Request.Context(), orderID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(adminID, "ADVANCE_ORDER", "order", order.ID, c.ClientIP(),
		map[string]interface{}{"status": order.Status})

	c.JSON(http.StatusOK, gin.H{"order": newOrderResponse(order)})
}

// CancelOrder cancels an order
// @Summary     Cancel order
// @Description Owners may cancel their PENDING orders. Admins may cancel any order that is not DELIVERED, COMPLETED or CANCELLED.
// @Tags        orders
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Order ID"
// @Success     200 {object} OrderResponse "Cancelled order"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "Order not found"
// @Failure     409 {object} ErrorResponse "Invalid transition"
// @Router      /orders/{id}/cancel [post]
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	orderID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	order, err := h.orderService.CancelOrder(c.Request.Context(), orderID, actor)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor.UserID, "CANCEL_ORDER", "order", order.ID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"order": newOrderResponse(order)})
}

// DeleteOrder permanently removes an order
// @Summary     Delete order
// @Description Hard-delete an order and its items (admin only). Ledger entries keep their history.
// @Tags        orders
// @Security    BearerAuth
// @Param       id path string true "Order ID"
// @Success     204 "Deleted"
// @Failure     404 {object} ErrorResponse "Order not found"
// @Router      /orders/{id} [delete]
func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	adminID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	orderID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.orderService.DeleteOrder(c.Request.Context(), orderID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(adminID, "DELETE_ORDER", "order", orderID, c.ClientIP(), nil)

	c.Status(http.StatusNoContent)
}
