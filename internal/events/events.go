// Package events carries position and transaction mutation events out of the
// fulfillment path. Events are delivered after the owning database
// transaction commits; a sink failure is logged and never fails the request.
package events

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"goldsphere/internal/logger"
)

// Kind names a single ledger mutation.
type Kind string

const (
	KindPositionCreated      Kind = "position.created"
	KindPositionConsolidated Kind = "position.consolidated"
	KindPositionReactivated  Kind = "position.reactivated"
	KindPositionReduced      Kind = "position.reduced"
	KindPositionClosed       Kind = "position.closed"
	KindTransactionRecorded  Kind = "transaction.recorded"
	KindPortfolioCreated     Kind = "portfolio.created"
)

// MutationEvent describes one change applied while fulfilling an order.
type MutationEvent struct {
	Kind          Kind            `json:"kind"`
	OrderID       string          `json:"order_id"`
	UserID        string          `json:"user_id"`
	PortfolioID   string          `json:"portfolio_id,omitempty"`
	PositionID    string          `json:"position_id,omitempty"`
	ProductID     string          `json:"product_id,omitempty"`
	TransactionID string          `json:"transaction_id,omitempty"`
	QuantityFrom  decimal.Decimal `json:"quantity_from"`
	QuantityTo    decimal.Decimal `json:"quantity_to"`
	PriceFrom     decimal.Decimal `json:"price_from"`
	PriceTo       decimal.Decimal `json:"price_to"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// ResourceType returns the kind of row the event refers to.
func (e MutationEvent) ResourceType() string {
	switch e.Kind {
	case KindTransactionRecorded:
		return "transaction"
	case KindPortfolioCreated:
		return "portfolio"
	default:
		return "position"
	}
}

// ResourceID returns the id of the row the event refers to.
func (e MutationEvent) ResourceID() string {
	switch e.ResourceType() {
	case "transaction":
		return e.TransactionID
	case "portfolio":
		return e.PortfolioID
	default:
		return e.PositionID
	}
}

// Sink receives committed mutation events.
type Sink interface {
	Publish(ctx context.Context, events []MutationEvent) error
}

// MultiSink fans events out to every sink. Each sink sees the full batch even
// when an earlier one fails.
type MultiSink []Sink

// Publish implements Sink.
func (m MultiSink) Publish(ctx context.Context, events []MutationEvent) error {
	var firstErr error
	for _, s := range m {
		if err := s.Publish(ctx, events); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Dispatch publishes to sink and logs any failure. It never returns an error.
func Dispatch(ctx context.Context, sink Sink, events []MutationEvent) {
	if sink == nil || len(events) == 0 {
		return
	}
	if err := sink.Publish(ctx, events); err != nil {
		logger.Get().Errorw("failed to publish mutation events",
			"error", err,
			"count", len(events),
			"order_id", events[0].OrderID,
		)
	}
}

// NopSink discards everything.
type NopSink struct{}

// Publish implements Sink.
func (NopSink) Publish(context.Context, []MutationEvent) error { return nil }
