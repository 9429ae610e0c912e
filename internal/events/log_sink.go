package events

import (
	"context"

	"go.uber.org/zap"
)

// LogSink writes each event as a structured log line.
type LogSink struct {
	log *zap.SugaredLogger
}

// NewLogSink creates a LogSink on the given logger.
func NewLogSink(log *zap.SugaredLogger) *LogSink {
	return &LogSink{log: log}
}

// Publish implements Sink.
func (s *LogSink) Publish(_ context.Context, events []MutationEvent) error {
	for _, e := range events {
		s.log.Infow("ledger mutation",
			"kind", string(e.Kind),
			"order_id", e.OrderID,
			"user_id", e.UserID,
			"portfolio_id", e.PortfolioID,
			"position_id", e.PositionID,
			"product_id", e.ProductID,
			"transaction_id", e.TransactionID,
			"quantity_from", e.QuantityFrom.String(),
			"quantity_to", e.QuantityTo.String(),
			"price_from", e.PriceFrom.String(),
			"price_to", e.PriceTo.String(),
		)
	}
	return nil
}
