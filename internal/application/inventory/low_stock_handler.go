package inventory

import (
	"context"
	"fmt"

	"github.com/taller/backend/internal/domain/catalog"
	"github.com/taller/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// LowStockHandler reacts to stock_below_minimum events: whenever a sale or
// adjustment drops a product's projection under its reorder threshold, it
// raises a stock alert through the configured notifier.
type LowStockHandler struct {
	logger   *zap.Logger
	notifier StockAlertNotifier
}

// StockAlertNotifier delivers stock alerts. Implementations decide the
// channel (log, email, dashboard).
type StockAlertNotifier interface {
	SendAlert(ctx context.Context, alert StockAlert) error
}

// StockAlert describes a product whose stock fell below its reorder threshold
type StockAlert struct {
	ProductID    string `json:"product_id"`
	ProductCode  string `json:"product_code"`
	CurrentStock string `json:"current_stock"`
	MinimumStock string `json:"minimum_stock"`
	AlertType    string `json:"alert_type"` // "low_stock", "out_of_stock"
}

// NewLowStockHandler creates a new LowStockHandler
func NewLowStockHandler(logger *zap.Logger) *LowStockHandler {
	return &LowStockHandler{logger: logger}
}

// WithNotifier sets the notifier used to deliver alerts
func (h *LowStockHandler) WithNotifier(notifier StockAlertNotifier) *LowStockHandler {
	h.notifier = notifier
	return h
}

// EventTypes returns the event types this handler is interested in
func (h *LowStockHandler) EventTypes() []string {
	return []string{catalog.EventTypeStockBelowMinimum}
}

// Handle processes a StockBelowMinimumEvent
func (h *LowStockHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	lowStock, ok := event.(*catalog.StockBelowMinimumEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			catalog.EventTypeStockBelowMinimum, event.EventType())
	}

	h.logger.Warn("stock below reorder threshold",
		zap.String("product_id", lowStock.AggregateID().String()),
		zap.String("product_code", lowStock.Code),
		zap.String("current_stock", lowStock.CurrentStock.String()),
		zap.String("minimum_stock", lowStock.MinimumStock.String()),
	)

	if h.notifier == nil {
		return nil
	}

	alertType := "low_stock"
	if !lowStock.CurrentStock.IsPositive() {
		alertType = "out_of_stock"
	}

	alert := StockAlert{
		ProductID:    lowStock.AggregateID().String(),
		ProductCode:  lowStock.Code,
		CurrentStock: lowStock.CurrentStock.String(),
		MinimumStock: lowStock.MinimumStock.String(),
		AlertType:    alertType,
	}
	if err := h.notifier.SendAlert(ctx, alert); err != nil {
		// Alerting is best effort, a failed delivery never fails the event
		h.logger.Error("failed to send stock alert",
			zap.String("product_code", alert.ProductCode), zap.Error(err))
	}
	return nil
}

var _ shared.EventHandler = (*LowStockHandler)(nil)

// LogStockAlertNotifier writes alerts to the application log. It is the
// default notifier until a real channel is wired in.
type LogStockAlertNotifier struct {
	logger *zap.Logger
}

// NewLogStockAlertNotifier creates a new LogStockAlertNotifier
func NewLogStockAlertNotifier(logger *zap.Logger) *LogStockAlertNotifier {
	return &LogStockAlertNotifier{logger: logger}
}

// SendAlert logs the stock alert
func (n *LogStockAlertNotifier) SendAlert(_ context.Context, alert StockAlert) error {
	n.logger.Warn("STOCK ALERT",
		zap.String("type", alert.AlertType),
		zap.String("product_code", alert.ProductCode),
		zap.String("current_stock", alert.CurrentStock),
		zap.String("minimum_stock", alert.MinimumStock),
	)
	return nil
}

var _ StockAlertNotifier = (*LogStockAlertNotifier)(nil)
