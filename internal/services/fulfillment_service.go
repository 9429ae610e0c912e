package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"goldsphere/internal/database"
	apperrors "goldsphere/internal/errors"
	"goldsphere/internal/events"
	"goldsphere/internal/logger"
	"goldsphere/internal/models"
	"goldsphere/internal/money"
)

// fulfillmentService applies a delivered order to the owner's positions.
type fulfillmentService struct {
	portfolios PortfolioServicer
	now        func() time.Time
}

// NewFulfillmentService creates a new FulfillmentServicer.
func NewFulfillmentService(portfolios PortfolioServicer) FulfillmentServicer {
	return &fulfillmentService{
		portfolios: portfolios,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Fulfill resolves the owner's portfolio and applies every order line in its
// own savepoint. The first failing line aborts the whole pass; nothing is
// committed here, the caller owns tx.
func (s *fulfillmentService) Fulfill(ctx context.Context, tx *gorm.DB, order *models.Order) (*FulfillmentResult, error) {
	if order.FulfilledAt != nil {
		return nil, apperrors.ErrAlreadyFulfilled
	}
	if !order.Type.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidOrderType, fmt.Sprintf("Unsupported order type %q", order.Type))
	}

	log := logger.FromContext(ctx).Named("fulfillment").With("order_id", order.ID, "user_id", order.UserID, "type", order.Type)
	now := s.now()

	var owner models.User
	if err := tx.Scopes(database.ForUpdate).First(&owner, "id = ?", order.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}

	portfolio, created, err := s.portfolios.EnsurePortfolio(tx, &owner)
	if err != nil {
		return nil, err
	}

	result := &FulfillmentResult{Portfolio: portfolio, PortfolioCreated: created}
	if created {
		log.Infow("provisioned portfolio", "portfolio_id", portfolio.ID, "name", portfolio.Name)
		result.Events = append(result.Events, events.MutationEvent{
			Kind:        events.KindPortfolioCreated,
			OrderID:     order.ID,
			UserID:      owner.ID,
			PortfolioID: portfolio.ID,
			OccurredAt:  now,
		})
	}

	items := order.Items
	if items == nil {
		if err := tx.Where("order_id = ?", order.ID).Order("created_at ASC, id ASC").Find(&items).Error; err != nil {
			return nil, err
		}
	}

	for i := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		item := &items[i]
		key := PositionKey{
			UserID:           order.UserID,
			ProductID:        item.ProductID,
			PortfolioID:      portfolio.ID,
			CustodyServiceID: order.CustodyServiceID,
		}

		var line lineOutcome
		err := tx.Transaction(func(lineTx *gorm.DB) error {
			var err error
			line, err = s.applyLine(lineTx, order, item, key, now)
			return err
		})
		if err != nil {
			log.Warnw("order line failed", "item_id", item.ID, "product_id", item.ProductID, "error", err)
			return nil, err
		}

		result.Positions = append(result.Positions, line.position)
		result.Transactions = append(result.Transactions, line.transaction)
		result.Events = append(result.Events, line.events...)
	}

	order.FulfilledAt = &now
	if err := tx.Model(order).Update("fulfilled_at", now).Error; err != nil {
		return nil, err
	}

	log.Infow("order fulfilled",
		"portfolio_id", portfolio.ID,
		"positions", len(result.Positions),
		"transactions", len(result.Transactions),
	)
	return result, nil
}

type lineOutcome struct {
	position    *models.Position
	transaction *models.Transaction
	events      []events.MutationEvent
}

// applyLine runs resolve, mutate and record for one order line.
func (s *fulfillmentService) applyLine(tx *gorm.DB, order *models.Order, item *models.OrderItem, key PositionKey, now time.Time) (lineOutcome, error) {
	var out lineOutcome

	resolution, err := ResolvePosition(tx, key)
	if err != nil {
		return out, err
	}

	var (
		pos   *models.Position
		event events.MutationEvent
	)
	switch order.Type {
	case models.OrderTypeBuy:
		switch resolution.Outcome {
		case ResolutionActive:
			increment, err := s.priceIncrement(tx, item.ProductID, order.Currency)
			if err != nil {
				return out, err
			}
			pos = resolution.Position
			event, err = ConsolidatePosition(tx, pos, item, increment, now)
			if err != nil {
				return out, err
			}
		case ResolutionClosed:
			pos = resolution.Position
			event, err = ReactivatePosition(tx, pos, item, now)
			if err != nil {
				return out, err
			}
		default:
			pos, event, err = CreatePosition(tx, key, item, now)
			if err != nil {
				return out, err
			}
		}
	case models.OrderTypeSell:
		if resolution.Outcome != ResolutionActive {
			return out, apperrors.WithMessage(apperrors.ErrPositionNotFound,
				fmt.Sprintf("No active position for product %s to sell from", item.ProductID))
		}
		pos = resolution.Position
		event, err = ReducePosition(tx, pos, item, now)
		if err != nil {
			return out, err
		}
	}

	txn, err := RecordTransaction(tx, pos, order, item)
	if err != nil {
		return out, err
	}

	event.OrderID = order.ID
	out.position = pos
	out.transaction = txn
	out.events = []events.MutationEvent{
		event,
		{
			Kind:          events.KindTransactionRecorded,
			OrderID:       order.ID,
			UserID:        txn.UserID,
			PortfolioID:   pos.PortfolioID,
			PositionID:    pos.ID,
			ProductID:     pos.ProductID,
			TransactionID: txn.ID,
			QuantityFrom:  event.QuantityFrom,
			QuantityTo:    event.QuantityTo,
			PriceFrom:     txn.Price,
			PriceTo:       txn.Price,
			OccurredAt:    txn.Date,
		},
	}
	return out, nil
}

// priceIncrement returns the rounding step for the product's weighted
// average: its minimum price increment, or the currency's minor unit.
func (s *fulfillmentService) priceIncrement(tx *gorm.DB, productID, currency string) (decimal.Decimal, error) {
	var product models.Product
	if err := tx.Select("id", "currency", "min_price_increment").First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Decimal{}, apperrors.ErrProductNotFound
		}
		return decimal.Decimal{}, err
	}
	if currency == "" {
		currency = product.Currency
	}
	return money.Increment(product.MinPriceIncrement, currency), nil
}
