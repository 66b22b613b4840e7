package sales

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/taller/backend/internal/domain/catalog"
	"github.com/taller/backend/internal/domain/inventory"
	"github.com/taller/backend/internal/domain/notification"
	"github.com/taller/backend/internal/domain/numbering"
	"github.com/taller/backend/internal/domain/partner"
	"github.com/taller/backend/internal/domain/sales"
	"github.com/taller/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ---- in-memory fakes -------------------------------------------------------

type fakeProductRepo struct {
	products      map[uuid.UUID]catalog.Product
	failSaveAfter int // fail the Nth save (1-based), 0 disables
	saves         int
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[uuid.UUID]catalog.Product)}
}

func (r *fakeProductRepo) put(p *catalog.Product) { r.products[p.ID] = *p }

func (r *fakeProductRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := p
	return &copied, nil
}

func (r *fakeProductRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeProductRepo) FindByCode(_ context.Context, code string) (*catalog.Product, error) {
	for _, p := range r.products {
		if p.Code == code {
			copied := p
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeProductRepo) FindAll(_ context.Context, _ shared.Filter) ([]catalog.Product, error) {
	out := make([]catalog.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, p)
	}
	return out, nil
}

func (r *fakeProductRepo) FindBelowMinimum(_ context.Context, _ shared.Filter) ([]catalog.Product, error) {
	return nil, nil
}

func (r *fakeProductRepo) Save(_ context.Context, p *catalog.Product) error {
	r.saves++
	if r.failSaveAfter > 0 && r.saves >= r.failSaveAfter {
		return errors.New("simulated storage failure")
	}
	r.products[p.ID] = *p
	return nil
}

func (r *fakeProductRepo) SaveWithLock(ctx context.Context, p *catalog.Product) error {
	return r.Save(ctx, p)
}

func (r *fakeProductRepo) ExistsByCode(_ context.Context, _ string) (bool, error) { return false, nil }
func (r *fakeProductRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	return int64(len(r.products)), nil
}

type fakeMovementRepo struct {
	movements     []inventory.StockMovement
	failOn        inventory.MovementReason // fail saves with this reason, "" disables
	failSaveAfter int                      // fail the Nth save (1-based), 0 disables
	saves         int
}

func (r *fakeMovementRepo) Save(_ context.Context, m *inventory.StockMovement) error {
	r.saves++
	if r.failSaveAfter > 0 && r.saves >= r.failSaveAfter {
		return errors.New("simulated storage failure")
	}
	if r.failOn != "" && m.Reason == r.failOn {
		return errors.New("simulated storage failure")
	}
	r.movements = append(r.movements, *m)
	return nil
}

func (r *fakeMovementRepo) SaveAll(ctx context.Context, ms []*inventory.StockMovement) error {
	for _, m := range ms {
		if err := r.Save(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeMovementRepo) FindByID(_ context.Context, id uuid.UUID) (*inventory.StockMovement, error) {
	for i := range r.movements {
		if r.movements[i].ID == id {
			copied := r.movements[i]
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeMovementRepo) FindByProduct(_ context.Context, productID uuid.UUID, _ shared.Filter) ([]inventory.StockMovement, error) {
	var out []inventory.StockMovement
	for _, m := range r.movements {
		if m.ProductID == productID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMovementRepo) FindBySale(_ context.Context, saleID uuid.UUID) ([]inventory.StockMovement, error) {
	var out []inventory.StockMovement
	for _, m := range r.movements {
		if m.SaleID != nil && *m.SaleID == saleID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMovementRepo) SumByProduct(_ context.Context, productID uuid.UUID) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, m := range r.movements {
		if m.ProductID == productID {
			sum = sum.Add(m.SignedQuantity())
		}
	}
	return sum, nil
}

func (r *fakeMovementRepo) CountByProduct(_ context.Context, productID uuid.UUID) (int64, error) {
	var n int64
	for _, m := range r.movements {
		if m.ProductID == productID {
			n++
		}
	}
	return n, nil
}

type fakeSaleRepo struct {
	sales    map[uuid.UUID]sales.Sale
	failSave bool
}

func newFakeSaleRepo() *fakeSaleRepo {
	return &fakeSaleRepo{sales: make(map[uuid.UUID]sales.Sale)}
}

func copySale(s sales.Sale) sales.Sale {
	s.Details = append([]sales.SaleDetail(nil), s.Details...)
	return s
}

func (r *fakeSaleRepo) FindByID(_ context.Context, id uuid.UUID) (*sales.Sale, error) {
	s, ok := r.sales[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := copySale(s)
	return &copied, nil
}

func (r *fakeSaleRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*sales.Sale, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeSaleRepo) FindByNumber(_ context.Context, number string) (*sales.Sale, error) {
	for _, s := range r.sales {
		if s.SaleNumber == number {
			copied := copySale(s)
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeSaleRepo) FindAll(_ context.Context, _ shared.Filter) ([]sales.Sale, error) {
	out := make([]sales.Sale, 0, len(r.sales))
	for _, s := range r.sales {
		out = append(out, copySale(s))
	}
	return out, nil
}

func (r *fakeSaleRepo) FindByCustomer(_ context.Context, customerID uuid.UUID, _ shared.Filter) ([]sales.Sale, error) {
	var out []sales.Sale
	for _, s := range r.sales {
		if s.CustomerID == customerID {
			out = append(out, copySale(s))
		}
	}
	return out, nil
}

func (r *fakeSaleRepo) Save(_ context.Context, s *sales.Sale) error {
	if r.failSave {
		return errors.New("simulated storage failure")
	}
	r.sales[s.ID] = copySale(*s)
	return nil
}

func (r *fakeSaleRepo) SaveWithLock(ctx context.Context, s *sales.Sale) error {
	return r.Save(ctx, s)
}

func (r *fakeSaleRepo) ReplaceDetails(_ context.Context, saleID uuid.UUID, details []sales.SaleDetail) error {
	s, ok := r.sales[saleID]
	if !ok {
		return shared.ErrNotFound
	}
	s.Details = append([]sales.SaleDetail(nil), details...)
	r.sales[saleID] = s
	return nil
}

func (r *fakeSaleRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	return int64(len(r.sales)), nil
}

type fakeCustomerRepo struct {
	customers map[uuid.UUID]partner.Customer
}

func (r *fakeCustomerRepo) FindByID(_ context.Context, id uuid.UUID) (*partner.Customer, error) {
	c, ok := r.customers[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := c
	return &copied, nil
}

func (r *fakeCustomerRepo) FindByDocumentID(_ context.Context, _ string) (*partner.Customer, error) {
	return nil, shared.ErrNotFound
}
func (r *fakeCustomerRepo) FindAll(_ context.Context, _ shared.Filter) ([]partner.Customer, error) {
	return nil, nil
}
func (r *fakeCustomerRepo) Save(_ context.Context, c *partner.Customer) error {
	r.customers[c.ID] = *c
	return nil
}
func (r *fakeCustomerRepo) ExistsByDocumentID(_ context.Context, _ string) (bool, error) {
	return false, nil
}
func (r *fakeCustomerRepo) Count(_ context.Context, _ shared.Filter) (int64, error) { return 0, nil }

// fakeScope snapshots the stores before running the function and restores
// them when it fails, mimicking a database rollback.
type fakeScope struct {
	productRepo  *fakeProductRepo
	movementRepo *fakeMovementRepo
	saleRepo     *fakeSaleRepo
}

func (s *fakeScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	productSnapshot := make(map[uuid.UUID]catalog.Product, len(s.productRepo.products))
	for k, v := range s.productRepo.products {
		productSnapshot[k] = v
	}
	movementSnapshot := append([]inventory.StockMovement(nil), s.movementRepo.movements...)
	saleSnapshot := make(map[uuid.UUID]sales.Sale, len(s.saleRepo.sales))
	for k, v := range s.saleRepo.sales {
		saleSnapshot[k] = copySale(v)
	}

	if err := fn(s); err != nil {
		s.productRepo.products = productSnapshot
		s.movementRepo.movements = movementSnapshot
		s.saleRepo.sales = saleSnapshot
		return err
	}
	return nil
}

func (s *fakeScope) SaleRepo() sales.SaleRepository                  { return s.saleRepo }
func (s *fakeScope) ProductRepo() catalog.ProductRepository          { return s.productRepo }
func (s *fakeScope) MovementRepo() inventory.StockMovementRepository { return s.movementRepo }

type fakeSequenceRepo struct {
	counters map[string]int64
}

func (r *fakeSequenceRepo) NextValue(_ context.Context, key string) (int64, error) {
	if r.counters == nil {
		r.counters = make(map[string]int64)
	}
	r.counters[key]++
	return r.counters[key], nil
}

func (r *fakeSequenceRepo) CurrentValue(_ context.Context, key string) (int64, error) {
	return r.counters[key], nil
}

type fakeQueue struct {
	jobs []*notification.Job
	err  error
}

func (q *fakeQueue) Enqueue(_ context.Context, job *notification.Job) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *fakeQueue) Dequeue(_ context.Context, _ time.Duration) (*notification.Job, error) {
	return nil, nil
}

type recordingPublisher struct {
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) byType(eventType string) []shared.DomainEvent {
	var out []shared.DomainEvent
	for _, e := range p.events {
		if e.EventType() == eventType {
			out = append(out, e)
		}
	}
	return out
}

type denyAllChecker struct{}

func (denyAllChecker) Can(_ context.Context, _ uuid.UUID, _ string) (bool, error) {
	return false, nil
}

// ---- harness ---------------------------------------------------------------

type saleServiceFixture struct {
	service      *SaleService
	productRepo  *fakeProductRepo
	movementRepo *fakeMovementRepo
	saleRepo     *fakeSaleRepo
	customerRepo *fakeCustomerRepo
	queue        *fakeQueue
	customerID   uuid.UUID
	sellerID     uuid.UUID
}

func newFixture(t *testing.T, policy inventory.OversellPolicy) *saleServiceFixture {
	t.Helper()

	productRepo := newFakeProductRepo()
	movementRepo := &fakeMovementRepo{}
	saleRepo := newFakeSaleRepo()
	customerRepo := &fakeCustomerRepo{customers: make(map[uuid.UUID]partner.Customer)}
	queue := &fakeQueue{}
	scope := &fakeScope{productRepo: productRepo, movementRepo: movementRepo, saleRepo: saleRepo}

	customer, err := partner.NewCustomer("Maria Quispe", "45678901", "987654321", "maria@example.com", "")
	assert.NoError(t, err)
	customerRepo.customers[customer.ID] = *customer

	service := NewSaleService(
		scope,
		saleRepo,
		customerRepo,
		numbering.NewService(&fakeSequenceRepo{}),
		inventory.NewStockLedger(policy),
		AllowAllCapabilityChecker{},
		zap.NewNop(),
	)
	service.SetNotificationQueue(queue)

	return &saleServiceFixture{
		service:      service,
		productRepo:  productRepo,
		movementRepo: movementRepo,
		saleRepo:     saleRepo,
		customerRepo: customerRepo,
		queue:        queue,
		customerID:   customer.ID,
		sellerID:     uuid.New(),
	}
}

func (f *saleServiceFixture) seedProduct(t *testing.T, code string, stock int64) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct("Producto "+code, code,
		decimal.NewFromInt(3), decimal.NewFromInt(5), decimal.Zero)
	assert.NoError(t, err)
	if stock > 0 {
		product.ApplyStockDelta(decimal.NewFromInt(stock))
	}
	// A stored row carries no pending events
	product.ClearDomainEvents()
	f.productRepo.put(product)
	return product
}

func (f *saleServiceFixture) stockOf(t *testing.T, productID uuid.UUID) decimal.Decimal {
	t.Helper()
	p, err := f.productRepo.FindByID(context.Background(), productID)
	assert.NoError(t, err)
	return p.CurrentStock
}

// ---- tests -----------------------------------------------------------------

func TestSaleService_Create_CashEndToEnd(t *testing.T) {
	f := newFixture(t, inventory.OversellWarn)
	product := f.seedProduct(t, "P001", 10)
	ctx := context.Background()

	resp, err := f.service.Create(ctx, f.sellerID, CreateSaleRequest{
		CustomerID: f.customerID,
		SaleType:   "CASH",
		Items: []SaleItemRequest{
			{ProductID: product.ID, Quantity: decimal.NewFromInt(4), UnitPrice: decimal.NewFromInt(5)},
		},
	})

	assert.NoError(t, err)
	assert.Equal(t, "VEN000001", resp.SaleNumber)
	assert.True(t, resp.Total.Equal(decimal.NewFromInt(20)))
	assert.Equal(t, "PAID", resp.Status)
	assert.True(t, resp.PendingBalance.IsZero())

	assert.True(t, f.stockOf(t, product.ID).Equal(decimal.NewFromInt(6)))

	assert.Len(t, f.movementRepo.movements, 1)
	m := f.movementRepo.movements[0]
	assert.Equal(t, inventory.MovementOut, m.Direction)
	assert.Equal(t, inventory.ReasonSale, m.Reason)
	assert.True(t, m.Quantity.Equal(decimal.NewFromInt(4)))
	assert.True(t, m.StockBefore.Equal(decimal.NewFromInt(10)))
	assert.True(t, m.StockAfter.Equal(decimal.NewFromInt(6)))
	assert.Equal(t, resp.ID, *m.SaleID)

	assert.Len(t, f.queue.jobs, 1)
	assert.Equal(t, notification.SubjectSale, f.queue.jobs[0].SubjectType)
}

func TestSaleService_Create_AtomicOnMidTransactionFailure(t *testing.T) {
	// A two-line sale writes movement 1, product 1, movement 2, product 2
	// and finally the sale itself. Blow up at each position in turn so every
	// partial prefix is shown to roll back.
	tests := []struct {
		name   string
		inject func(f *saleServiceFixture)
	}{
		{"first movement save fails", func(f *saleServiceFixture) { f.movementRepo.failSaveAfter = 1 }},
		{"first product save fails", func(f *saleServiceFixture) { f.productRepo.failSaveAfter = 1 }},
		{"second movement save fails", func(f *saleServiceFixture) { f.movementRepo.failSaveAfter = 2 }},
		{"second product save fails", func(f *saleServiceFixture) { f.productRepo.failSaveAfter = 2 }},
		{"sale save fails", func(f *saleServiceFixture) { f.saleRepo.failSave = true }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, inventory.OversellWarn)
			productA := f.seedProduct(t, "P001", 10)
			productB := f.seedProduct(t, "P002", 10)
			tt.inject(f)
			ctx := context.Background()

			_, err := f.service.Create(ctx, f.sellerID, CreateSaleRequest{
				CustomerID: f.customerID,
				SaleType:   "CASH",
				Items: []SaleItemRequest{
					{ProductID: productA.ID, Quantity: decimal.NewFromInt(3), UnitPrice: decimal.NewFromInt(5)},
					{ProductID: productB.ID, Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(5)},
				},
			})

			assert.Error(t, err)
			// Everything rolled back: no sale, no movements, projections untouched
			assert.Empty(t, f.saleRepo.sales)
			assert.Empty(t, f.movementRepo.movements)
			assert.True(t, f.stockOf(t, productA.ID).Equal(decimal.NewFromInt(10)))
			assert.True(t, f.stockOf(t, productB.ID).Equal(decimal.NewFromInt(10)))
			assert.Empty(t, f.queue.jobs)
		})
	}
}

func TestSaleService_Create_PublishesLowStockEvent(t *testing.T) {
	f := newFixture(t, inventory.OversellWarn)
	publisher := &recordingPublisher{}
	f.service.SetEventPublisher(publisher)
	ctx := context.Background()

	// 10 on hand, reorder threshold 5: selling 7 leaves 3 and must raise an alert
	product, err := catalog.NewProduct("Producto P001", "P001",
		decimal.NewFromInt(3), decimal.NewFromInt(5), decimal.NewFromInt(5))
	assert.NoError(t, err)
	product.ApplyStockDelta(decimal.NewFromInt(10))
	product.ClearDomainEvents()
	f.productRepo.put(product)

	_, err = f.service.Create(ctx, f.sellerID, CreateSaleRequest{
		CustomerID: f.customerID,
		SaleType:   "CASH",
		Items: []SaleItemRequest{
			{ProductID: product.ID, Quantity: decimal.NewFromInt(7), UnitPrice: decimal.NewFromInt(5)},
		},
	})
	assert.NoError(t, err)

	assert.Len(t, publisher.byType(sales.EventTypeSaleCreated), 1)

	lowStock := publisher.byType(catalog.EventTypeStockBelowMinimum)
	if assert.Len(t, lowStock, 1) {
		event := lowStock[0].(*catalog.StockBelowMinimumEvent)
		assert.Equal(t, "P001", event.Code)
		assert.True(t, event.CurrentStock.Equal(decimal.NewFromInt(3)))
		assert.True(t, event.MinimumStock.Equal(decimal.NewFromInt(5)))
	}
}

func TestSaleService_Create_NoLowStockEventAboveThreshold(t *testing.T) {
	f := newFixture(t, inventory.OversellWarn)
	publisher := &recordingPublisher{}
	f.service.SetEventPublisher(publisher)
	product := f.seedProduct(t, "P001", 10)
	ctx := context.Background()

	_, err := f.service.Create(ctx, f.sellerID, CreateSaleRequest{
		CustomerID: f.customerID,
		SaleType:   "CASH",
		Items: []SaleItemRequest{
			{ProductID: product.ID, Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(5)},
		},
	})
	assert.NoError(t, err)

	assert.Len(t, publisher.byType(sales.EventTypeSaleCreated), 1)
	assert.Empty(t, publisher.byType(catalog.EventTypeStockBelowMinimum))
}

func TestSaleService_Create_OversellRejected(t *testing.T) {
	f := newFixture(t, inventory.OversellReject)
	product := f.seedProduct(t, "P001", 2)
	ctx := context.Background()

	_, err := f.service.Create(ctx, f.sellerID, CreateSaleRequest{
		CustomerID: f.customerID,
		SaleType:   "CASH",
		Items: []SaleItemRequest{
			{ProductID: product.ID, Quantity: decimal.NewFromInt(3), UnitPrice: decimal.NewFromInt(5)},
		},
	})

	assert.Error(t, err)
	assert.Equal(t, shared.KindBusinessRule, shared.KindOf(err))
	assert.Empty(t, f.saleRepo.sales)
	assert.True(t, f.stockOf(t, product.ID).Equal(decimal.NewFromInt(2)))
}

func TestSaleService_Create_CapabilityDenied(t *testing.T) {
	f := newFixture(t, inventory.OversellWarn)
	product := f.seedProduct(t, "P001", 10)
	f.service.capabilities = denyAllChecker{}
	ctx := context.Background()

	_, err := f.service.Create(ctx, f.sellerID, CreateSaleRequest{
		CustomerID: f.customerID,
		SaleType:   "CASH",
		Items: []SaleItemRequest{
			{ProductID: product.ID, Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(5)},
		},
	})

	assert.ErrorIs(t, err, shared.ErrForbidden)
	assert.Empty(t, f.saleRepo.sales)
}

func TestSaleService_Cancel_RestoresStockWithReversalMovements(t *testing.T) {
	f := newFixture(t, inventory.OversellWarn)
	productA := f.seedProduct(t, "P001", 10)
	productB := f.seedProduct(t, "P002", 5)
	ctx := context.Background()

	resp, err := f.service.Create(ctx, f.sellerID, CreateSaleRequest{
		CustomerID: f.customerID,
		SaleType:   "CASH",
		Items: []SaleItemRequest{
			{ProductID: productA.ID, Quantity: decimal.NewFromInt(3), UnitPrice: decimal.NewFromInt(5)},
			{ProductID: productB.ID, Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(8)},
		},
	})
	assert.NoError(t, err)

	cancelled, err := f.service.Cancel(ctx, resp.ID, f.sellerID, CancelSaleRequest{
		Reason: "customer returned the items",
	})

	assert.NoError(t, err)
	assert.Equal(t, "CANCELLED", cancelled.Status)
	assert.Contains(t, cancelled.Notes, "customer returned the items")

	// Stock fully restored
	assert.True(t, f.stockOf(t, productA.ID).Equal(decimal.NewFromInt(10)))
	assert.True(t, f.stockOf(t, productB.ID).Equal(decimal.NewFromInt(5)))

	// Two original out movements untouched plus exactly two in reversals
	var outs, ins int
	for _, m := range f.movementRepo.movements {
		switch m.Reason {
		case inventory.ReasonSale:
			assert.Equal(t, inventory.MovementOut, m.Direction)
			outs++
		case inventory.ReasonSaleCancellation:
			assert.Equal(t, inventory.MovementIn, m.Direction)
			assert.Contains(t, m.Notes, "customer returned the items")
			ins++
		}
	}
	assert.Equal(t, 2, outs)
	assert.Equal(t, 2, ins)
}

func TestSaleService_Cancel_OutsideSameDayWindow(t *testing.T) {
	f := newFixture(t, inventory.OversellWarn)
	product := f.seedProduct(t, "P001", 10)
	ctx := context.Background()

	resp, err := f.service.Create(ctx, f.sellerID, CreateSaleRequest{
		CustomerID: f.customerID,
		SaleType:   "CASH",
		Items: []SaleItemRequest{
			{ProductID: product.ID, Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(5)},
		},
	})
	assert.NoError(t, err)

	// Age the sale past midnight
	stored := f.saleRepo.sales[resp.ID]
	stored.CreatedAt = stored.CreatedAt.AddDate(0, 0, -1)
	f.saleRepo.sales[resp.ID] = stored

	_, err = f.service.Cancel(ctx, resp.ID, f.sellerID, CancelSaleRequest{Reason: "late"})

	assert.Error(t, err)
	assert.Equal(t, shared.KindBusinessRule, shared.KindOf(err))
	assert.True(t, f.stockOf(t, product.ID).Equal(decimal.NewFromInt(8)))
	assert.Len(t, f.movementRepo.movements, 1)
}

func TestSaleService_Edit_LedgerLevelReversal(t *testing.T) {
	f := newFixture(t, inventory.OversellWarn)
	product := f.seedProduct(t, "P001", 10)
	ctx := context.Background()

	resp, err := f.service.Create(ctx, f.sellerID, CreateSaleRequest{
		CustomerID: f.customerID,
		SaleType:   "CASH",
		Items: []SaleItemRequest{
			{ProductID: product.ID, Quantity: decimal.NewFromInt(4), UnitPrice: decimal.NewFromInt(5)},
		},
	})
	assert.NoError(t, err)
	assert.True(t, f.stockOf(t, product.ID).Equal(decimal.NewFromInt(6)))

	edited, err := f.service.Edit(ctx, resp.ID, f.sellerID, EditSaleRequest{
		Items: []SaleItemRequest{
			{ProductID: product.ID, Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(5)},
		},
	})

	assert.NoError(t, err)
	assert.True(t, edited.Total.Equal(decimal.NewFromInt(10)))
	assert.Len(t, edited.Details, 1)

	// 10 - 4 + 4 - 2: the edit reverses the old revision and applies the new one
	assert.True(t, f.stockOf(t, product.ID).Equal(decimal.NewFromInt(8)))

	// Every projection change has a ledger entry: sale out, update in, update out
	assert.Len(t, f.movementRepo.movements, 3)
	assert.Equal(t, inventory.ReasonSale, f.movementRepo.movements[0].Reason)
	assert.Equal(t, inventory.ReasonSaleUpdate, f.movementRepo.movements[1].Reason)
	assert.Equal(t, inventory.MovementIn, f.movementRepo.movements[1].Direction)
	assert.Equal(t, inventory.ReasonSaleUpdate, f.movementRepo.movements[2].Reason)
	assert.Equal(t, inventory.MovementOut, f.movementRepo.movements[2].Direction)

	// Stored details were replaced
	stored := f.saleRepo.sales[resp.ID]
	assert.Len(t, stored.Details, 1)
	assert.True(t, stored.Details[0].Quantity.Equal(decimal.NewFromInt(2)))
}

func TestSaleService_Edit_FailureRollsBackEverything(t *testing.T) {
	f := newFixture(t, inventory.OversellWarn)
	product := f.seedProduct(t, "P001", 10)
	ctx := context.Background()

	resp, err := f.service.Create(ctx, f.sellerID, CreateSaleRequest{
		CustomerID: f.customerID,
		SaleType:   "CASH",
		Items: []SaleItemRequest{
			{ProductID: product.ID, Quantity: decimal.NewFromInt(4), UnitPrice: decimal.NewFromInt(5)},
		},
	})
	assert.NoError(t, err)

	// Reversal movements write fine, the new revision's movements blow up
	f.movementRepo.failOn = inventory.ReasonSaleUpdate

	_, err = f.service.Edit(ctx, resp.ID, f.sellerID, EditSaleRequest{
		Items: []SaleItemRequest{
			{ProductID: product.ID, Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(5)},
		},
	})

	assert.Error(t, err)
	assert.True(t, f.stockOf(t, product.ID).Equal(decimal.NewFromInt(6)))
	assert.Len(t, f.movementRepo.movements, 1)
	stored := f.saleRepo.sales[resp.ID]
	assert.True(t, stored.Details[0].Quantity.Equal(decimal.NewFromInt(4)))
	assert.True(t, stored.Total.Equal(decimal.NewFromInt(20)))
}

func TestSaleService_RecordCreditPayment(t *testing.T) {
	f := newFixture(t, inventory.OversellWarn)
	product := f.seedProduct(t, "P001", 10)
	ctx := context.Background()

	resp, err := f.service.Create(ctx, f.sellerID, CreateSaleRequest{
		CustomerID:     f.customerID,
		SaleType:       "CREDIT",
		AdvancePayment: decimal.NewFromInt(30),
		Items: []SaleItemRequest{
			{ProductID: product.ID, Quantity: decimal.NewFromInt(10), UnitPrice: decimal.NewFromInt(10)},
		},
	})
	assert.NoError(t, err)
	assert.Equal(t, "PENDING", resp.Status)
	assert.True(t, resp.PendingBalance.Equal(decimal.NewFromInt(70)))

	t.Run("overpayment is rejected and state survives", func(t *testing.T) {
		_, err := f.service.RecordCreditPayment(ctx, resp.ID, f.sellerID, CreditPaymentRequest{
			Amount: decimal.NewFromInt(71), Method: "cash",
		})

		assert.Error(t, err)
		stored := f.saleRepo.sales[resp.ID]
		assert.True(t, stored.PendingBalance.Equal(decimal.NewFromInt(70)))
		assert.Equal(t, sales.SaleStatusPending, stored.Status)
	})

	t.Run("exact payment settles the sale", func(t *testing.T) {
		paid, err := f.service.RecordCreditPayment(ctx, resp.ID, f.sellerID, CreditPaymentRequest{
			Amount: decimal.NewFromInt(70), Method: "transfer",
		})

		assert.NoError(t, err)
		assert.Equal(t, "PAID", paid.Status)
		assert.True(t, paid.PendingBalance.IsZero())
	})
}

func TestSaleService_Create_QueueFailureDoesNotFailSale(t *testing.T) {
	f := newFixture(t, inventory.OversellWarn)
	product := f.seedProduct(t, "P001", 10)
	f.queue.err = errors.New("redis down")
	ctx := context.Background()

	resp, err := f.service.Create(ctx, f.sellerID, CreateSaleRequest{
		CustomerID: f.customerID,
		SaleType:   "CASH",
		Items: []SaleItemRequest{
			{ProductID: product.ID, Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(5)},
		},
	})

	assert.NoError(t, err)
	assert.NotNil(t, resp)
	assert.Len(t, f.saleRepo.sales, 1)
}
