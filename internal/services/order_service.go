package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"goldsphere/internal/database"
	apperrors "goldsphere/internal/errors"
	"goldsphere/internal/events"
	"goldsphere/internal/logger"
	"goldsphere/internal/models"
	"goldsphere/internal/money"
	"goldsphere/internal/pagination"
)

var orderSortColumns = []string{"created_at", "updated_at", "status", "total"}

// OrderServiceConfig bounds how long order state changes may wait on locks.
type OrderServiceConfig struct {
	LockTimeout        time.Duration
	FulfillmentTimeout time.Duration
}

// orderService handles order placement and the status state machine.
type orderService struct {
	db          *gorm.DB
	fulfillment FulfillmentServicer
	sink        events.Sink
	cfg         OrderServiceConfig
}

// NewOrderService creates a new OrderServicer. A nil sink discards events.
func NewOrderService(db *gorm.DB, fulfillment FulfillmentServicer, sink events.Sink, cfg OrderServiceConfig) OrderServicer {
	if sink == nil {
		sink = events.NopSink{}
	}
	return &orderService{db: db, fulfillment: fulfillment, sink: sink, cfg: cfg}
}

// PlaceOrder creates a pending order priced from the current catalog.
func (s *orderService) PlaceOrder(ctx context.Context, userID string, input PlaceOrderInput) (*models.Order, error) {
	if !input.Type.Valid() {
		return nil, apperrors.ErrInvalidOrderType
	}
	if len(input.Lines) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "an order needs at least one line")
	}

	order := &models.Order{
		UserID:           userID,
		Type:             input.Type,
		Status:           models.OrderStatusPending,
		Currency:         strings.ToUpper(input.Currency),
		CustodyServiceID: input.CustodyServiceID,
		Notes:            input.Notes,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if order.CustodyServiceID != nil {
			if err := ensureCustodyService(tx, *order.CustodyServiceID); err != nil {
				return err
			}
		}
		items, err := priceLines(tx, order, input.Lines)
		if err != nil {
			return err
		}
		order.Items = items
		applyTotals(order)

		if err := tx.Create(order).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, database.ClassifyError(err)
	}

	logger.FromContext(ctx).Infow("order placed", "order_id", order.ID, "user_id", userID, "type", order.Type, "total", order.Total.String())
	return order, nil
}

// GetOrders lists the actor's orders; administrators see every order.
func (s *orderService) GetOrders(ctx context.Context, actor Actor, page pagination.PageRequest, filter OrderFilter) (*pagination.PageResponse[models.Order], error) {
	page.Defaults()

	base := s.db.WithContext(ctx).Model(&models.Order{})
	if !actor.IsAdmin {
		base = base.Where("user_id = ?", actor.UserID)
	}
	if filter.Status != nil {
		base = base.Where("status = ?", *filter.Status)
	}
	if filter.Type != nil {
		base = base.Where("type = ?", *filter.Type)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var orders []models.Order
	if err := base.Preload("Items", orderItemsByCreation).
		Order(page.OrderClause(orderSortColumns, "created_at")).
		Scopes(pagination.Paginate(page)).
		Find(&orders).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(orders, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetOrderByID returns one order with its items. Orders of other users look
// like missing orders unless the actor is an administrator.
func (s *orderService) GetOrderByID(ctx context.Context, actor Actor, orderID string) (*models.Order, error) {
	return s.loadOrder(s.db.WithContext(ctx), actor, orderID)
}

// UpdateOrderItems replaces the lines of a pending order and reprices it.
func (s *orderService) UpdateOrderItems(ctx context.Context, actor Actor, orderID string, lines []OrderLine) (*models.Order, error) {
	if len(lines) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "an order needs at least one line")
	}

	var order *models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := database.SetLockTimeout(tx, s.cfg.LockTimeout); err != nil {
			return err
		}
		var err error
		order, err = lockOrder(tx, orderID)
		if err != nil {
			return err
		}
		if !actor.IsAdmin && order.UserID != actor.UserID {
			return apperrors.ErrOrderNotFound
		}
		if order.Status != models.OrderStatusPending {
			return apperrors.ErrOrderNotEditable
		}

		items, err := priceLines(tx, order, lines)
		if err != nil {
			return err
		}
		if err := tx.Unscoped().Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
		order.Items = items
		applyTotals(order)
		return tx.Model(order).Select("updated_at", "subtotal", "fees", "total").Updates(order).Error
	})
	if err != nil {
		return nil, database.ClassifyError(err)
	}
	return order, nil
}

// AdvanceOrder moves an order one step forward. The transition into delivered
// fulfills the order in the same database transaction, so a failed
// fulfillment leaves the order in its previous status. Mutation events are
// published only after commit.
func (s *orderService) AdvanceOrder(ctx context.Context, orderID string) (*models.Order, error) {
	txCtx := ctx
	if s.cfg.FulfillmentTimeout > 0 {
		var cancel context.CancelFunc
		txCtx, cancel = context.WithTimeout(ctx, s.cfg.FulfillmentTimeout)
		defer cancel()
	}

	var (
		order  *models.Order
		from   models.OrderStatus
		result *FulfillmentResult
	)
	err := s.db.WithContext(txCtx).Transaction(func(tx *gorm.DB) error {
		if err := database.SetLockTimeout(tx, s.cfg.LockTimeout); err != nil {
			return err
		}
		var err error
		order, err = lockOrder(tx, orderID)
		if err != nil {
			return err
		}
		from = order.Status

		next, err := NextOrderStatus(order.Status)
		if err != nil {
			return err
		}
		if next == models.OrderStatusDelivered {
			result, err = s.fulfillment.Fulfill(txCtx, tx, order)
			if err != nil {
				return err
			}
		}

		order.Status = next
		return tx.Model(order).Select("updated_at", "status").Updates(order).Error
	})
	if err != nil {
		logger.FromContext(ctx).Warnw("order advance failed", "order_id", orderID, "error", err)
		return nil, database.ClassifyError(err)
	}

	logger.FromContext(ctx).Infow("order advanced", "order_id", order.ID, "from", from, "to", order.Status)
	if result != nil {
		events.Dispatch(ctx, s.sink, result.Events)
	}
	return order, nil
}

// CancelOrder moves an order to cancelled when actor is allowed to.
func (s *orderService) CancelOrder(ctx context.Context, orderID string, actor Actor) (*models.Order, error) {
	var order *models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := database.SetLockTimeout(tx, s.cfg.LockTimeout); err != nil {
			return err
		}
		var err error
		order, err = lockOrder(tx, orderID)
		if err != nil {
			return err
		}
		if err := checkCancel(order, actor); err != nil {
			return err
		}
		order.Status = models.OrderStatusCancelled
		return tx.Model(order).Select("updated_at", "status").Updates(order).Error
	})
	if err != nil {
		return nil, database.ClassifyError(err)
	}

	logger.FromContext(ctx).Infow("order cancelled", "order_id", order.ID, "by", actor.UserID, "admin", actor.IsAdmin)
	return order, nil
}

// DeleteOrder permanently removes an order and its items.
func (s *orderService) DeleteOrder(ctx context.Context, orderID string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockOrder(tx, orderID); err != nil {
			return err
		}
		if err := tx.Unscoped().Where("order_id = ?", orderID).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Where("id = ?", orderID).Delete(&models.Order{}).Error
	})
	return database.ClassifyError(err)
}

func (s *orderService) loadOrder(db *gorm.DB, actor Actor, orderID string) (*models.Order, error) {
	query := db.Preload("Items", orderItemsByCreation).Where("id = ?", orderID)
	if !actor.IsAdmin {
		query = query.Where("user_id = ?", actor.UserID)
	}
	var order models.Order
	if err := query.First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &order, nil
}

func orderItemsByCreation(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC, id ASC")
}

// lockOrder reads an order for update, then its items.
func lockOrder(tx *gorm.DB, orderID string) (*models.Order, error) {
	var order models.Order
	if err := tx.Scopes(database.ForUpdate).Where("id = ?", orderID).Take(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrOrderNotFound
		}
		return nil, err
	}
	if err := tx.Scopes(orderItemsByCreation).Where("order_id = ?", order.ID).Find(&order.Items).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func ensureCustodyService(tx *gorm.DB, id string) error {
	var count int64
	if err := tx.Model(&models.CustodyService{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return apperrors.ErrCustodyServiceNotFound
	}
	return nil
}

// priceLines builds order items at current catalog prices. An order without a
// currency adopts the first product's currency; all lines must match it.
func priceLines(tx *gorm.DB, order *models.Order, lines []OrderLine) ([]models.OrderItem, error) {
	items := make([]models.OrderItem, 0, len(lines))
	for i, line := range lines {
		if !line.Quantity.IsPositive() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("line %d: quantity must be greater than zero", i+1))
		}
		if line.Fees.IsNegative() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("line %d: fees cannot be negative", i+1))
		}

		var product models.Product
		if err := tx.Where("id = ?", line.ProductID).First(&product).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrProductNotFound
			}
			return nil, err
		}
		if !product.IsActive {
			return nil, apperrors.ErrProductInactive
		}
		if order.Currency == "" {
			order.Currency = product.Currency
		}
		if !strings.EqualFold(product.Currency, order.Currency) {
			return nil, apperrors.WithMessage(apperrors.ErrCurrencyMismatch,
				fmt.Sprintf("%s is priced in %s, order is in %s", product.Name, product.Currency, order.Currency))
		}

		items = append(items, models.OrderItem{
			ProductID:  product.ID,
			Quantity:   line.Quantity,
			UnitPrice:  product.Price,
			TotalPrice: money.RoundCurrency(line.Quantity.Mul(product.Price), order.Currency),
			Fees:       line.Fees,
		})
	}
	return items, nil
}

func applyTotals(order *models.Order) {
	subtotal, fees := decimal.Zero, decimal.Zero
	for _, item := range order.Items {
		subtotal = subtotal.Add(item.TotalPrice)
		fees = fees.Add(item.Fees)
	}
	order.Subtotal = subtotal
	order.Fees = fees
	order.Total = subtotal.Add(fees)
}
