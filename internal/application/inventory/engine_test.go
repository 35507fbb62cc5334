package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stockmaster-api/internal/application/inventory"
	"github.com/jhoicas/stockmaster-api/internal/domain"
	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
	"github.com/jhoicas/stockmaster-api/internal/infrastructure/memory"
)

type fixture struct {
	store  *memory.Store
	engine *inventory.MovementEngine
	obs    *fakeObserver
	pub    *fakePublisher
}

type fakeObserver struct {
	mu    sync.Mutex
	calls []string
}

func (o *fakeObserver) OperationFinished(kind, status string, _ time.Duration, _ int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, kind+":"+status)
}

type fakePublisher struct {
	mu  sync.Mutex
	ops []*entity.Operation
	err error
}

func (p *fakePublisher) PublishOperation(_ context.Context, op *entity.Operation, _ []*entity.LedgerEntry) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ops = append(p.ops, op)
	return p.err
}

func qty(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	s := memory.New()
	for _, p := range []*entity.Product{
		{ID: "steel", SKU: "STL-001", Name: "Steel Rod", UOM: "kg", ReorderLevel: qty(50)},
		{ID: "bolt", SKU: "BLT-001", Name: "Bolt", UOM: "pcs", ReorderLevel: qty(10)},
	} {
		require.NoError(t, s.Products().Create(ctx, p))
	}
	for _, l := range []*entity.Location{
		{ID: "main", Name: "Main Warehouse", Type: entity.LocationTypeWarehouse},
		{ID: "floor", Name: "Production Floor", Type: entity.LocationTypeLocation},
	} {
		require.NoError(t, s.Locations().Create(ctx, l))
	}

	obs := &fakeObserver{}
	pub := &fakePublisher{}
	engine := inventory.NewMovementEngine(
		s, s.Products(), s.Locations(), s.Operations(), s.Ledger(),
		inventory.EngineConfig{OperationTimeout: time.Second}, nil,
	).WithObserver(obs).WithPublisher(pub)
	return &fixture{store: s, engine: engine, obs: obs, pub: pub}
}

func (f *fixture) stock(t *testing.T, productID, locationID string) decimal.Decimal {
	t.Helper()
	levels, err := f.store.Stock().ListByProduct(context.Background(), productID)
	require.NoError(t, err)
	for _, lvl := range levels {
		if lvl.LocationID == locationID {
			return lvl.Quantity
		}
	}
	return decimal.Zero
}

func (f *fixture) receive(t *testing.T, productID, locationID string, n int64) {
	t.Helper()
	_, err := f.engine.Receipt(context.Background(), inventory.ReceiptInput{
		Supplier: "Acme",
		Items:    []inventory.LineItem{{ProductID: productID, Quantity: qty(n), LocationID: locationID}},
	})
	require.NoError(t, err)
}

func TestReceipt_SumaStockYRegistraAsiento(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	op, err := f.engine.Receipt(ctx, inventory.ReceiptInput{
		Supplier: "Acme Steel",
		Items:    []inventory.LineItem{{ProductID: "steel", Quantity: qty(500), LocationID: "main"}},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusDone, op.Status)
	assert.Equal(t, entity.OperationReceipt, op.Kind)
	assert.True(t, f.stock(t, "steel", "main").Equal(qty(500)))

	entries, err := f.engine.Entries(ctx, op.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Nil(t, entries[0].FromLocationID)
	require.NotNil(t, entries[0].ToLocationID)
	assert.Equal(t, "main", *entries[0].ToLocationID)
	assert.True(t, entries[0].Quantity.Equal(qty(500)))

	assert.Equal(t, []string{"receipt:done"}, f.obs.calls)
	require.Len(t, f.pub.ops, 1)
	assert.Equal(t, op.ID, f.pub.ops[0].ID)
}

func TestTransfer_ConservaElTotal(t *testing.T) {
	f := newFixture(t)
	f.receive(t, "steel", "main", 500)

	op, err := f.engine.Transfer(context.Background(), inventory.TransferInput{
		Items: []inventory.TransferItem{{ProductID: "steel", Quantity: qty(200), FromLocationID: "main", ToLocationID: "floor"}},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusDone, op.Status)
	assert.True(t, f.stock(t, "steel", "main").Equal(qty(300)))
	assert.True(t, f.stock(t, "steel", "floor").Equal(qty(200)))

	entries, err := f.engine.Entries(context.Background(), op.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].FromLocationID)
	require.NotNil(t, entries[0].ToLocationID)
	assert.Equal(t, "main", *entries[0].FromLocationID)
	assert.Equal(t, "floor", *entries[0].ToLocationID)
}

func TestDelivery_ResultaEnCero(t *testing.T) {
	f := newFixture(t)
	f.receive(t, "steel", "floor", 200)

	op, err := f.engine.Delivery(context.Background(), inventory.DeliveryInput{
		Customer: "Buildco",
		Items:    []inventory.LineItem{{ProductID: "steel", Quantity: qty(200), LocationID: "floor"}},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusDone, op.Status)
	assert.True(t, f.stock(t, "steel", "floor").IsZero())
}

func TestAdjustment_FijaConteoYRegistraDiferencia(t *testing.T) {
	f := newFixture(t)
	f.receive(t, "steel", "main", 300)

	res, err := f.engine.Adjustment(context.Background(), inventory.AdjustmentInput{
		ProductID: "steel", LocationID: "main", CountedQuantity: qty(297), Reason: "damaged",
	})
	require.NoError(t, err)
	require.NotNil(t, res.Stock)
	assert.True(t, res.Stock.Quantity.Equal(qty(297)))
	assert.True(t, f.stock(t, "steel", "main").Equal(qty(297)))
	assert.Equal(t, "damaged", res.Operation.Reason)

	entries, err := f.engine.Entries(context.Background(), res.Operation.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Quantity.Equal(qty(-3)))
	assert.Equal(t, entity.OperationAdjustment, entries[0].Type)
}

func TestAdjustment_SinDiferenciaIgualRegistraAsiento(t *testing.T) {
	f := newFixture(t)
	f.receive(t, "bolt", "main", 12)

	res, err := f.engine.Adjustment(context.Background(), inventory.AdjustmentInput{
		ProductID: "bolt", LocationID: "main", CountedQuantity: qty(12),
	})
	require.NoError(t, err)
	entries, err := f.engine.Entries(context.Background(), res.Operation.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Quantity.IsZero())
}

func TestAdjustment_EnUbicacionSinStockCreaRegistro(t *testing.T) {
	f := newFixture(t)

	res, err := f.engine.Adjustment(context.Background(), inventory.AdjustmentInput{
		ProductID: "bolt", LocationID: "floor", CountedQuantity: qty(4),
	})
	require.NoError(t, err)
	assert.True(t, res.Stock.Quantity.Equal(qty(4)))
}

func TestDelivery_StockInsuficienteNoTieneEfectos(t *testing.T) {
	f := newFixture(t)
	f.receive(t, "steel", "main", 450)

	op, err := f.engine.Delivery(context.Background(), inventory.DeliveryInput{
		Customer: "Buildco",
		Items:    []inventory.LineItem{{ProductID: "steel", Quantity: qty(600), LocationID: "main"}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.ErrorIs(t, err, domain.ErrValidationFailed)

	var ise *domain.InsufficientStockError
	require.True(t, errors.As(err, &ise))
	assert.True(t, ise.Available.Equal(qty(450)))
	assert.True(t, ise.Requested.Equal(qty(600)))

	assert.True(t, f.stock(t, "steel", "main").Equal(qty(450)))
	require.NotNil(t, op)
	assert.Equal(t, entity.StatusFailed, op.Status)
	assert.NotEmpty(t, op.FailureReason)

	entries, err := f.engine.Entries(context.Background(), op.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)

	stored, err := f.engine.Get(context.Background(), op.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusFailed, stored.Status)
	assert.Contains(t, f.obs.calls, "delivery:failed")
}

func TestDelivery_LoteConUnItemInvalidoNoAplicaNinguno(t *testing.T) {
	f := newFixture(t)
	f.receive(t, "steel", "main", 100)
	f.receive(t, "bolt", "main", 5)

	_, err := f.engine.Delivery(context.Background(), inventory.DeliveryInput{
		Items: []inventory.LineItem{
			{ProductID: "steel", Quantity: qty(10), LocationID: "main"},
			{ProductID: "bolt", Quantity: qty(6), LocationID: "main"},
		},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	var itemErr *domain.ItemError
	require.True(t, errors.As(err, &itemErr))
	assert.Equal(t, 1, itemErr.Index)
	assert.Equal(t, "bolt", itemErr.ProductID)

	assert.True(t, f.stock(t, "steel", "main").Equal(qty(100)))
	assert.True(t, f.stock(t, "bolt", "main").Equal(qty(5)))
}

func TestDelivery_ClaveRepetidaAcumula(t *testing.T) {
	f := newFixture(t)
	f.receive(t, "steel", "main", 10)

	_, err := f.engine.Delivery(context.Background(), inventory.DeliveryInput{
		Items: []inventory.LineItem{
			{ProductID: "steel", Quantity: qty(6), LocationID: "main"},
			{ProductID: "steel", Quantity: qty(6), LocationID: "main"},
		},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, f.stock(t, "steel", "main").Equal(qty(10)))
}

func TestReceipt_FalloEnLedgerRevierteTodo(t *testing.T) {
	f := newFixture(t)
	f.store.SetFault(func(op string) error {
		if op == memory.FaultLedgerAppend {
			return errors.New("disco lleno")
		}
		return nil
	})

	op, err := f.engine.Receipt(context.Background(), inventory.ReceiptInput{
		Items: []inventory.LineItem{
			{ProductID: "steel", Quantity: qty(5), LocationID: "main"},
			{ProductID: "bolt", Quantity: qty(7), LocationID: "floor"},
		},
	})
	require.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.Equal(t, entity.StatusFailed, op.Status)
	assert.True(t, f.stock(t, "steel", "main").IsZero())
	assert.True(t, f.stock(t, "bolt", "floor").IsZero())

	history, err := f.engine.History(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, history)

	stored, err := f.engine.Get(context.Background(), op.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusFailed, stored.Status)
	assert.Empty(t, f.pub.ops)
}

func TestReceipt_TimeoutEsStoreUnavailable(t *testing.T) {
	f := newFixture(t)
	f.store.SetFault(func(op string) error {
		if op == memory.FaultStockWrite {
			return context.DeadlineExceeded
		}
		return nil
	})

	_, err := f.engine.Receipt(context.Background(), inventory.ReceiptInput{
		Items: []inventory.LineItem{{ProductID: "steel", Quantity: qty(5), LocationID: "main"}},
	})
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, f.stock(t, "steel", "main").IsZero())
}

func TestReceipt_ContextoCanceladoNoInterrumpe(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	op, err := f.engine.Receipt(ctx, inventory.ReceiptInput{
		Items: []inventory.LineItem{{ProductID: "steel", Quantity: qty(5), LocationID: "main"}},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusDone, op.Status)
}

func TestValidacion_Errores(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name string
		run  func() error
		want error
	}{
		{"producto desconocido", func() error {
			_, err := f.engine.Receipt(ctx, inventory.ReceiptInput{Items: []inventory.LineItem{{ProductID: "nope", Quantity: qty(1), LocationID: "main"}}})
			return err
		}, domain.ErrUnknownReference},
		{"ubicación desconocida", func() error {
			_, err := f.engine.Receipt(ctx, inventory.ReceiptInput{Items: []inventory.LineItem{{ProductID: "steel", Quantity: qty(1), LocationID: "nope"}}})
			return err
		}, domain.ErrUnknownReference},
		{"ubicación vacía", func() error {
			_, err := f.engine.Delivery(ctx, inventory.DeliveryInput{Items: []inventory.LineItem{{ProductID: "steel", Quantity: qty(1)}}})
			return err
		}, domain.ErrUnknownReference},
		{"cantidad cero", func() error {
			_, err := f.engine.Receipt(ctx, inventory.ReceiptInput{Items: []inventory.LineItem{{ProductID: "steel", Quantity: decimal.Zero, LocationID: "main"}}})
			return err
		}, domain.ErrInvalidQuantity},
		{"cantidad negativa", func() error {
			_, err := f.engine.Transfer(ctx, inventory.TransferInput{Items: []inventory.TransferItem{{ProductID: "steel", Quantity: qty(-1), FromLocationID: "main", ToLocationID: "floor"}}})
			return err
		}, domain.ErrInvalidQuantity},
		{"conteo negativo", func() error {
			_, err := f.engine.Adjustment(ctx, inventory.AdjustmentInput{ProductID: "steel", LocationID: "main", CountedQuantity: qty(-2)})
			return err
		}, domain.ErrInvalidQuantity},
		{"más de cuatro decimales", func() error {
			_, err := f.engine.Receipt(ctx, inventory.ReceiptInput{Items: []inventory.LineItem{{ProductID: "steel", Quantity: decimal.RequireFromString("0.00001"), LocationID: "main"}}})
			return err
		}, domain.ErrInvalidQuantity},
		{"conteo con más de cuatro decimales", func() error {
			_, err := f.engine.Adjustment(ctx, inventory.AdjustmentInput{ProductID: "steel", LocationID: "main", CountedQuantity: decimal.RequireFromString("430.00005")})
			return err
		}, domain.ErrInvalidQuantity},
		{"cantidad fuera de rango", func() error {
			_, err := f.engine.Receipt(ctx, inventory.ReceiptInput{Items: []inventory.LineItem{{ProductID: "steel", Quantity: decimal.New(1, 14), LocationID: "main"}}})
			return err
		}, domain.ErrInvalidQuantity},
		{"traslado a la misma ubicación", func() error {
			_, err := f.engine.Transfer(ctx, inventory.TransferInput{Items: []inventory.TransferItem{{ProductID: "steel", Quantity: qty(1), FromLocationID: "main", ToLocationID: "main"}}})
			return err
		}, domain.ErrInvalidTransfer},
		{"sin ítems", func() error {
			_, err := f.engine.Receipt(ctx, inventory.ReceiptInput{})
			return err
		}, domain.ErrValidationFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, tc.run(), tc.want)
		})
	}

	history, err := f.engine.History(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestReceipt_SaldoFueraDeRangoNoEsReintentable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	top := decimal.RequireFromString("99999999999999")
	_, err := f.engine.Receipt(ctx, inventory.ReceiptInput{Items: []inventory.LineItem{{ProductID: "steel", Quantity: top, LocationID: "main"}}})
	require.NoError(t, err)

	op, err := f.engine.Receipt(ctx, inventory.ReceiptInput{Items: []inventory.LineItem{{ProductID: "steel", Quantity: qty(1), LocationID: "main"}}})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	assert.NotErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.Equal(t, entity.StatusFailed, op.Status)
	assert.True(t, f.stock(t, "steel", "main").Equal(top))
}

func TestHistory_OrdenYEstabilidad(t *testing.T) {
	f := newFixture(t)
	f.receive(t, "steel", "main", 1)
	f.receive(t, "steel", "main", 2)
	f.receive(t, "steel", "main", 3)

	first, err := f.engine.History(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, first, 3)
	assert.True(t, first[0].Quantity.Equal(qty(3)))
	assert.True(t, first[2].Quantity.Equal(qty(1)))

	second, err := f.engine.History(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	limited, err := f.engine.History(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestGet_OperacionInexistente(t *testing.T) {
	f := newFixture(t)
	_, err := f.engine.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDelivery_ConcurrentesNuncaDejanNegativo(t *testing.T) {
	f := newFixture(t)
	f.receive(t, "bolt", "main", 10)

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.engine.Delivery(context.Background(), inventory.DeliveryInput{
				Items: []inventory.LineItem{{ProductID: "bolt", Quantity: qty(1), LocationID: "main"}},
			})
			if err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, domain.ErrInsufficientStock)
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, ok)
	assert.True(t, f.stock(t, "bolt", "main").IsZero())
}

func TestLedger_SumaPorClaveIgualAlStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.receive(t, "steel", "main", 500)
	_, err := f.engine.Transfer(ctx, inventory.TransferInput{Items: []inventory.TransferItem{
		{ProductID: "steel", Quantity: qty(120), FromLocationID: "main", ToLocationID: "floor"},
	}})
	require.NoError(t, err)
	_, err = f.engine.Delivery(ctx, inventory.DeliveryInput{Items: []inventory.LineItem{
		{ProductID: "steel", Quantity: qty(20), LocationID: "floor"},
	}})
	require.NoError(t, err)
	_, err = f.engine.Adjustment(ctx, inventory.AdjustmentInput{ProductID: "steel", LocationID: "main", CountedQuantity: qty(377)})
	require.NoError(t, err)

	entries, err := f.engine.History(ctx, inventory.MaxHistoryLimit)
	require.NoError(t, err)
	sums := map[string]decimal.Decimal{}
	for _, e := range entries {
		switch e.Type {
		case entity.OperationAdjustment:
			sums[*e.ToLocationID] = sums[*e.ToLocationID].Add(e.Quantity)
		default:
			if e.FromLocationID != nil {
				sums[*e.FromLocationID] = sums[*e.FromLocationID].Sub(e.Quantity)
			}
			if e.ToLocationID != nil {
				sums[*e.ToLocationID] = sums[*e.ToLocationID].Add(e.Quantity)
			}
		}
	}
	assert.True(t, sums["main"].Equal(f.stock(t, "steel", "main")))
	assert.True(t, sums["floor"].Equal(f.stock(t, "steel", "floor")))
	assert.True(t, f.stock(t, "steel", "main").Equal(qty(377)))
	assert.True(t, f.stock(t, "steel", "floor").Equal(qty(100)))
}

func TestPublisher_ErrorNoFallaLaOperacion(t *testing.T) {
	f := newFixture(t)
	f.pub.err = errors.New("broker caído")

	op, err := f.engine.Receipt(context.Background(), inventory.ReceiptInput{
		Items: []inventory.LineItem{{ProductID: "steel", Quantity: qty(1), LocationID: "main"}},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusDone, op.Status)
}
