package notify

import (
	"context"

	"go.uber.org/zap"
)

// LogSender only logs events. It is the default when no broker is set up.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSender{logger: logger}
}

func (s *LogSender) PurchaseCreated(_ context.Context, evt Event) error {
	s.logger.Info("purchase created",
		zap.String("purchase_id", evt.PurchaseID),
		zap.String("bookable_id", evt.BookableID),
		zap.String("customer_email", evt.CustomerEmail),
		zap.Int("quantity", evt.Quantity),
		zap.Stringer("total_amount", evt.TotalAmount),
		zap.String("payment_reference", evt.PaymentReference),
	)
	return nil
}

func (s *LogSender) Close() error { return nil }
