package inventory

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taller/backend/internal/domain/catalog"
	"go.uber.org/zap"
)

type recordingNotifier struct {
	alerts []StockAlert
	err    error
}

func (n *recordingNotifier) SendAlert(_ context.Context, alert StockAlert) error {
	n.alerts = append(n.alerts, alert)
	return n.err
}

func belowMinimumProduct(t *testing.T, stock int64) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct("Filtro de aceite", "FIL001",
		decimal.NewFromInt(10), decimal.NewFromInt(18), decimal.NewFromInt(5))
	require.NoError(t, err)
	product.ApplyStockDelta(decimal.NewFromInt(stock))
	return product
}

func TestLowStockHandler_Handle(t *testing.T) {
	t.Run("forwards the alert to the notifier", func(t *testing.T) {
		notifier := &recordingNotifier{}
		handler := NewLowStockHandler(zap.NewNop()).WithNotifier(notifier)
		product := belowMinimumProduct(t, 2)

		err := handler.Handle(context.Background(), catalog.NewStockBelowMinimumEvent(product))

		assert.NoError(t, err)
		require.Len(t, notifier.alerts, 1)
		alert := notifier.alerts[0]
		assert.Equal(t, "FIL001", alert.ProductCode)
		assert.Equal(t, "low_stock", alert.AlertType)
		assert.Equal(t, "2", alert.CurrentStock)
		assert.Equal(t, "5", alert.MinimumStock)
	})

	t.Run("flags exhausted stock as out_of_stock", func(t *testing.T) {
		notifier := &recordingNotifier{}
		handler := NewLowStockHandler(zap.NewNop()).WithNotifier(notifier)
		product := belowMinimumProduct(t, 0)

		err := handler.Handle(context.Background(), catalog.NewStockBelowMinimumEvent(product))

		assert.NoError(t, err)
		require.Len(t, notifier.alerts, 1)
		assert.Equal(t, "out_of_stock", notifier.alerts[0].AlertType)
	})

	t.Run("notifier failure does not fail the event", func(t *testing.T) {
		notifier := &recordingNotifier{err: assert.AnError}
		handler := NewLowStockHandler(zap.NewNop()).WithNotifier(notifier)
		product := belowMinimumProduct(t, 1)

		err := handler.Handle(context.Background(), catalog.NewStockBelowMinimumEvent(product))

		assert.NoError(t, err)
	})

	t.Run("rejects foreign event types", func(t *testing.T) {
		handler := NewLowStockHandler(zap.NewNop())
		product := belowMinimumProduct(t, 1)

		err := handler.Handle(context.Background(), catalog.NewProductCreatedEvent(product))

		assert.Error(t, err)
	})
}

func TestLowStockHandler_EventTypes(t *testing.T) {
	handler := NewLowStockHandler(zap.NewNop())
	assert.Equal(t, []string{catalog.EventTypeStockBelowMinimum}, handler.EventTypes())
}
