package services

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "goldsphere/internal/errors"
	"goldsphere/internal/events"
	"goldsphere/internal/models"
	"goldsphere/internal/money"
)

// positionColumns are the columns a mutation may rewrite.
var positionColumns = []string{"updated_at", "quantity", "purchase_price", "market_price", "status", "purchase_date", "closed_date"}

func requirePositiveQuantity(item *models.OrderItem) error {
	if !item.Quantity.IsPositive() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "Order line quantity must be greater than zero")
	}
	return nil
}

func positionEvent(kind events.Kind, pos *models.Position, qtyFrom, priceFrom decimal.Decimal, at time.Time) events.MutationEvent {
	return events.MutationEvent{
		Kind:         kind,
		UserID:       pos.UserID,
		PortfolioID:  pos.PortfolioID,
		PositionID:   pos.ID,
		ProductID:    pos.ProductID,
		QuantityFrom: qtyFrom,
		QuantityTo:   pos.Quantity,
		PriceFrom:    priceFrom,
		PriceTo:      pos.PurchasePrice,
		OccurredAt:   at,
	}
}

// CreatePosition opens a new active position for key from a buy line.
func CreatePosition(tx *gorm.DB, key PositionKey, item *models.OrderItem, now time.Time) (*models.Position, events.MutationEvent, error) {
	if err := requirePositiveQuantity(item); err != nil {
		return nil, events.MutationEvent{}, err
	}
	pos := &models.Position{
		UserID:           key.UserID,
		ProductID:        key.ProductID,
		PortfolioID:      key.PortfolioID,
		CustodyServiceID: key.CustodyServiceID,
		Quantity:         item.Quantity,
		PurchasePrice:    item.UnitPrice,
		MarketPrice:      item.UnitPrice,
		Status:           models.PositionStatusActive,
		PurchaseDate:     now,
	}
	if err := tx.Create(pos).Error; err != nil {
		return nil, events.MutationEvent{}, err
	}
	return pos, positionEvent(events.KindPositionCreated, pos, decimal.Zero, decimal.Zero, now), nil
}

// ConsolidatePosition adds a buy line to an active position. The new cost
// basis is the quantity-weighted average, rounded half-up once to increment.
func ConsolidatePosition(tx *gorm.DB, pos *models.Position, item *models.OrderItem, increment decimal.Decimal, now time.Time) (events.MutationEvent, error) {
	if err := requirePositiveQuantity(item); err != nil {
		return events.MutationEvent{}, err
	}
	qtyFrom, priceFrom := pos.Quantity, pos.PurchasePrice

	avg := money.WeightedAverage(pos.Quantity, pos.PurchasePrice, item.Quantity, item.UnitPrice, increment)
	pos.Quantity = pos.Quantity.Add(item.Quantity)
	pos.PurchasePrice = avg
	pos.MarketPrice = avg

	if err := tx.Model(pos).Select(positionColumns).Updates(pos).Error; err != nil {
		return events.MutationEvent{}, err
	}
	return positionEvent(events.KindPositionConsolidated, pos, qtyFrom, priceFrom, now), nil
}

// ReactivatePosition reopens a closed position as a fresh lot. The closed
// lot's quantity and cost basis are discarded.
func ReactivatePosition(tx *gorm.DB, pos *models.Position, item *models.OrderItem, now time.Time) (events.MutationEvent, error) {
	if err := requirePositiveQuantity(item); err != nil {
		return events.MutationEvent{}, err
	}
	if pos.IsActive() {
		return events.MutationEvent{}, fmt.Errorf("position %s is already active", pos.ID)
	}
	qtyFrom, priceFrom := pos.Quantity, pos.PurchasePrice

	pos.Quantity = item.Quantity
	pos.PurchasePrice = item.UnitPrice
	pos.MarketPrice = item.UnitPrice
	pos.Status = models.PositionStatusActive
	pos.PurchaseDate = now
	pos.ClosedDate = nil

	if err := tx.Model(pos).Select(positionColumns).Updates(pos).Error; err != nil {
		return events.MutationEvent{}, err
	}
	return positionEvent(events.KindPositionReactivated, pos, qtyFrom, priceFrom, now), nil
}

// ReducePosition applies a sell line. Selling the whole quantity closes the
// position; selling more than it holds fails without writing anything.
func ReducePosition(tx *gorm.DB, pos *models.Position, item *models.OrderItem, now time.Time) (events.MutationEvent, error) {
	if err := requirePositiveQuantity(item); err != nil {
		return events.MutationEvent{}, err
	}
	if !pos.IsActive() {
		return events.MutationEvent{}, apperrors.ErrPositionNotFound
	}
	if pos.Quantity.LessThan(item.Quantity) {
		return events.MutationEvent{}, apperrors.WithMessage(apperrors.ErrInsufficientQuantity,
			fmt.Sprintf("Cannot sell %s, position holds %s", item.Quantity, pos.Quantity))
	}
	qtyFrom, priceFrom := pos.Quantity, pos.PurchasePrice

	kind := events.KindPositionReduced
	pos.Quantity = pos.Quantity.Sub(item.Quantity)
	if pos.Quantity.IsZero() {
		kind = events.KindPositionClosed
		pos.Quantity = decimal.Zero
		pos.Status = models.PositionStatusClosed
		closed := now
		pos.ClosedDate = &closed
	}

	if err := tx.Model(pos).Select(positionColumns).Updates(pos).Error; err != nil {
		return events.MutationEvent{}, err
	}
	return positionEvent(kind, pos, qtyFrom, priceFrom, now), nil
}
