package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/taller/backend/internal/domain/catalog"
	"github.com/taller/backend/internal/domain/inventory"
	"github.com/taller/backend/internal/domain/shared"
	"go.uber.org/zap"
)

type memProductRepo struct {
	products map[uuid.UUID]catalog.Product
}

func (r *memProductRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := p
	return &copied, nil
}

func (r *memProductRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	return r.FindByID(ctx, id)
}

func (r *memProductRepo) FindByCode(_ context.Context, _ string) (*catalog.Product, error) {
	return nil, shared.ErrNotFound
}
func (r *memProductRepo) FindAll(_ context.Context, _ shared.Filter) ([]catalog.Product, error) {
	return nil, nil
}
func (r *memProductRepo) FindBelowMinimum(_ context.Context, _ shared.Filter) ([]catalog.Product, error) {
	return nil, nil
}
func (r *memProductRepo) Save(_ context.Context, p *catalog.Product) error {
	r.products[p.ID] = *p
	return nil
}
func (r *memProductRepo) SaveWithLock(ctx context.Context, p *catalog.Product) error {
	return r.Save(ctx, p)
}
func (r *memProductRepo) ExistsByCode(_ context.Context, _ string) (bool, error) { return false, nil }
func (r *memProductRepo) Count(_ context.Context, _ shared.Filter) (int64, error) { return 0, nil }

type memMovementRepo struct {
	movements []inventory.StockMovement
}

func (r *memMovementRepo) Save(_ context.Context, m *inventory.StockMovement) error {
	r.movements = append(r.movements, *m)
	return nil
}

func (r *memMovementRepo) SaveAll(ctx context.Context, ms []*inventory.StockMovement) error {
	for _, m := range ms {
		if err := r.Save(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

func (r *memMovementRepo) FindByID(_ context.Context, _ uuid.UUID) (*inventory.StockMovement, error) {
	return nil, shared.ErrNotFound
}

func (r *memMovementRepo) FindByProduct(_ context.Context, productID uuid.UUID, _ shared.Filter) ([]inventory.StockMovement, error) {
	var out []inventory.StockMovement
	for _, m := range r.movements {
		if m.ProductID == productID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memMovementRepo) FindBySale(_ context.Context, _ uuid.UUID) ([]inventory.StockMovement, error) {
	return nil, nil
}

func (r *memMovementRepo) SumByProduct(_ context.Context, productID uuid.UUID) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, m := range r.movements {
		if m.ProductID == productID {
			sum = sum.Add(m.SignedQuantity())
		}
	}
	return sum, nil
}

func (r *memMovementRepo) CountByProduct(_ context.Context, productID uuid.UUID) (int64, error) {
	var n int64
	for _, m := range r.movements {
		if m.ProductID == productID {
			n++
		}
	}
	return n, nil
}

func newStockFixture(t *testing.T) (*StockService, *memProductRepo, *memMovementRepo, *catalog.Product) {
	t.Helper()
	productRepo := &memProductRepo{products: make(map[uuid.UUID]catalog.Product)}
	movementRepo := &memMovementRepo{}

	product, err := catalog.NewProduct("Bateria Samsung A52", "BAT-A52",
		decimal.NewFromInt(40), decimal.NewFromInt(70), decimal.NewFromInt(3))
	assert.NoError(t, err)
	// A stored row carries no pending events
	product.ClearDomainEvents()
	productRepo.products[product.ID] = *product

	service := NewStockService(
		NewNoOpTransactionScope(productRepo, movementRepo),
		movementRepo,
		inventory.NewStockLedger(inventory.OversellWarn),
		zap.NewNop(),
	)
	return service, productRepo, movementRepo, product
}

func TestStockService_Adjust(t *testing.T) {
	actorID := uuid.New()
	ctx := context.Background()

	t.Run("add writes a movement and moves the projection", func(t *testing.T) {
		service, productRepo, movementRepo, product := newStockFixture(t)

		resp, err := service.Adjust(ctx, actorID, AdjustStockRequest{
			ProductID: product.ID, Mode: "add", Quantity: decimal.NewFromInt(12),
		})

		assert.NoError(t, err)
		assert.True(t, resp.StockAfter.Equal(decimal.NewFromInt(12)))
		assert.Len(t, movementRepo.movements, 1)
		assert.Equal(t, inventory.ReasonManualAdjustment, movementRepo.movements[0].Reason)
		// Unit price defaults to the purchase price
		assert.True(t, movementRepo.movements[0].UnitPrice.Equal(decimal.NewFromInt(40)))

		stored := productRepo.products[product.ID]
		assert.True(t, stored.CurrentStock.Equal(decimal.NewFromInt(12)))
	})

	t.Run("set to the current value is a no-op", func(t *testing.T) {
		service, _, movementRepo, product := newStockFixture(t)

		_, err := service.Adjust(ctx, actorID, AdjustStockRequest{
			ProductID: product.ID, Mode: "add", Quantity: decimal.NewFromInt(5),
		})
		assert.NoError(t, err)

		resp, err := service.Adjust(ctx, actorID, AdjustStockRequest{
			ProductID: product.ID, Mode: "set", Quantity: decimal.NewFromInt(5),
		})

		assert.NoError(t, err)
		assert.Nil(t, resp.Movement)
		assert.True(t, resp.StockAfter.Equal(decimal.NewFromInt(5)))
		assert.Len(t, movementRepo.movements, 1)
	})

	t.Run("subtract below zero is flagged under warn policy", func(t *testing.T) {
		service, _, _, product := newStockFixture(t)

		resp, err := service.Adjust(ctx, actorID, AdjustStockRequest{
			ProductID: product.ID, Mode: "subtract", Quantity: decimal.NewFromInt(2),
		})

		assert.NoError(t, err)
		assert.True(t, resp.Oversold)
		assert.True(t, resp.StockAfter.Equal(decimal.NewFromInt(-2)))
	})

	t.Run("unknown product fails", func(t *testing.T) {
		service, _, _, _ := newStockFixture(t)

		_, err := service.Adjust(ctx, actorID, AdjustStockRequest{
			ProductID: uuid.New(), Mode: "add", Quantity: decimal.NewFromInt(1),
		})

		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

type capturingPublisher struct {
	events []shared.DomainEvent
}

func (p *capturingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

func TestStockService_Adjust_PublishesLowStockEvent(t *testing.T) {
	actorID := uuid.New()
	ctx := context.Background()
	service, _, _, product := newStockFixture(t)
	publisher := &capturingPublisher{}
	service.SetEventPublisher(publisher)

	// 10 on hand, threshold 3
	_, err := service.Adjust(ctx, actorID, AdjustStockRequest{
		ProductID: product.ID, Mode: "add", Quantity: decimal.NewFromInt(10),
	})
	assert.NoError(t, err)
	assert.Empty(t, publisher.events)

	// Subtracting 8 leaves 2, below the threshold
	_, err = service.Adjust(ctx, actorID, AdjustStockRequest{
		ProductID: product.ID, Mode: "subtract", Quantity: decimal.NewFromInt(8),
	})
	assert.NoError(t, err)

	if assert.Len(t, publisher.events, 1) {
		event, ok := publisher.events[0].(*catalog.StockBelowMinimumEvent)
		assert.True(t, ok)
		assert.Equal(t, "BAT-A52", event.Code)
		assert.True(t, event.CurrentStock.Equal(decimal.NewFromInt(2)))
		assert.True(t, event.MinimumStock.Equal(decimal.NewFromInt(3)))
	}
}

func TestStockService_BulkAdjust(t *testing.T) {
	actorID := uuid.New()
	ctx := context.Background()
	service, productRepo, movementRepo, productA := newStockFixture(t)

	productB, err := catalog.NewProduct("Cable USB-C", "CAB-USBC",
		decimal.NewFromInt(5), decimal.NewFromInt(12), decimal.Zero)
	assert.NoError(t, err)
	productRepo.products[productB.ID] = *productB

	// Bring A to 10 first so one item of the bulk is already at target
	_, err = service.Adjust(ctx, actorID, AdjustStockRequest{
		ProductID: productA.ID, Mode: "add", Quantity: decimal.NewFromInt(10),
	})
	assert.NoError(t, err)

	responses, err := service.BulkAdjust(ctx, actorID, BulkAdjustRequest{
		Items: []BulkAdjustItem{
			{ProductID: productA.ID, Target: decimal.NewFromInt(10)}, // already there
			{ProductID: productB.ID, Target: decimal.NewFromInt(25)},
		},
		Notes: "conteo fisico agosto",
	})

	assert.NoError(t, err)
	assert.Len(t, responses, 2)
	assert.Nil(t, responses[0].Movement)
	assert.NotNil(t, responses[1].Movement)
	assert.Equal(t, inventory.ReasonBulkAdjustment.String(), responses[1].Movement.Reason)
	assert.Equal(t, "conteo fisico agosto", responses[1].Movement.Notes)

	// One movement from the setup add plus one from the bulk
	assert.Len(t, movementRepo.movements, 2)
	assert.True(t, productRepo.products[productB.ID].CurrentStock.Equal(decimal.NewFromInt(25)))
}

func TestStockService_Audit(t *testing.T) {
	actorID := uuid.New()
	ctx := context.Background()

	t.Run("clean projection passes", func(t *testing.T) {
		service, _, _, product := newStockFixture(t)

		_, err := service.Adjust(ctx, actorID, AdjustStockRequest{
			ProductID: product.ID, Mode: "add", Quantity: decimal.NewFromInt(7),
		})
		assert.NoError(t, err)

		assert.NoError(t, service.Audit(ctx, product.ID))
	})

	t.Run("diverged projection is an invariant violation", func(t *testing.T) {
		service, productRepo, _, product := newStockFixture(t)

		_, err := service.Adjust(ctx, actorID, AdjustStockRequest{
			ProductID: product.ID, Mode: "add", Quantity: decimal.NewFromInt(7),
		})
		assert.NoError(t, err)

		// Corrupt the projection behind the ledger's back
		stored := productRepo.products[product.ID]
		stored.CurrentStock = decimal.NewFromInt(99)
		productRepo.products[product.ID] = stored

		err = service.Audit(ctx, product.ID)

		assert.Error(t, err)
		assert.Equal(t, shared.KindInvariant, shared.KindOf(err))
	})
}
