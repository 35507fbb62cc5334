package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stockmaster-api/internal/domain"
	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
	"github.com/jhoicas/stockmaster-api/internal/domain/repository"
	"github.com/jhoicas/stockmaster-api/internal/infrastructure/memory"
)

func TestStore_RunDescartaCambiosSiFnFalla(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	err := s.Run(ctx, func(stock repository.StockRepository, ledger repository.LedgerRepository, _ repository.OperationRepository) error {
		lvl, err := stock.GetOrCreate(ctx, "p1", "l1")
		require.NoError(t, err)
		lvl.Quantity = decimal.NewFromInt(10)
		require.NoError(t, stock.Write(ctx, lvl))
		require.NoError(t, ledger.Append(ctx, &entity.LedgerEntry{ID: "e1", RefID: "op1"}))
		return errors.New("abortar")
	})
	require.Error(t, err)

	levels, err := s.Stock().ListByProduct(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, levels)
	entries, err := s.Ledger().ListByRef(ctx, "op1")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStore_RunPublicaAlConfirmar(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	err := s.Run(ctx, func(stock repository.StockRepository, _ repository.LedgerRepository, _ repository.OperationRepository) error {
		lvl, err := stock.GetOrCreate(ctx, "p1", "l1")
		if err != nil {
			return err
		}
		lvl.Quantity = decimal.NewFromInt(7)
		return stock.Write(ctx, lvl)
	})
	require.NoError(t, err)

	levels, err := s.Stock().ListByProduct(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, levels, 1)
	assert.True(t, levels[0].Quantity.Equal(decimal.NewFromInt(7)))
}

func TestStore_FallaInyectadaEnCommit(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	s.SetFault(func(op string) error {
		if op == memory.FaultCommit {
			return errors.New("commit perdido")
		}
		return nil
	})

	err := s.Run(ctx, func(stock repository.StockRepository, _ repository.LedgerRepository, _ repository.OperationRepository) error {
		lvl, _ := stock.GetOrCreate(ctx, "p1", "l1")
		lvl.Quantity = decimal.NewFromInt(3)
		return stock.Write(ctx, lvl)
	})
	require.Error(t, err)

	levels, _ := s.Stock().ListByProduct(ctx, "p1")
	assert.Empty(t, levels)
}

func TestStockRepo_RechazaNegativo(t *testing.T) {
	s := memory.New()
	err := s.Stock().Write(context.Background(), &entity.StockLevel{
		ProductID: "p1", LocationID: "l1", Quantity: decimal.NewFromInt(-1),
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestProductRepo_SKUDuplicado(t *testing.T) {
	ctx := context.Background()
	repo := memory.New().Products()

	require.NoError(t, repo.Create(ctx, &entity.Product{ID: "a", SKU: "SKU-1", Name: "Tornillo"}))
	err := repo.Create(ctx, &entity.Product{ID: "b", SKU: "SKU-1", Name: "Tuerca"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	got, err := repo.GetByID(ctx, "zzz")
	require.NoError(t, err)
	assert.Nil(t, got)

	err = repo.Update(ctx, &entity.Product{ID: "zzz", SKU: "X"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProductRepo_ListOrdenaYPagina(t *testing.T) {
	ctx := context.Background()
	repo := memory.New().Products()
	for _, p := range []*entity.Product{
		{ID: "1", SKU: "C", Name: "Cable"},
		{ID: "2", SKU: "A", Name: "Arandela"},
		{ID: "3", SKU: "B", Name: "Broca"},
	} {
		require.NoError(t, repo.Create(ctx, p))
	}

	first, err := repo.List(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, "Arandela", first[0].Name)
	assert.Equal(t, "Broca", first[1].Name)

	rest, err := repo.List(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, "Cable", rest[0].Name)

	none, err := repo.List(ctx, 2, 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestLedgerRepo_HistoryMasRecientePrimero(t *testing.T) {
	ctx := context.Background()
	ledger := memory.New().Ledger()
	for _, id := range []string{"e1", "e2", "e3"} {
		require.NoError(t, ledger.Append(ctx, &entity.LedgerEntry{ID: id, RefID: "op"}))
	}

	got, err := ledger.History(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "e3", got[0].ID)
	assert.Equal(t, "e2", got[1].ID)

	byRef, err := ledger.ListByRef(ctx, "op")
	require.NoError(t, err)
	require.Len(t, byRef, 3)
	assert.Equal(t, "e1", byRef[0].ID)
}

func TestUserRepo_EmailSinDistinguirMayusculas(t *testing.T) {
	ctx := context.Background()
	users := memory.New().Users()
	require.NoError(t, users.Create(ctx, &entity.User{ID: "u1", Email: "ana@example.com"}))

	err := users.Create(ctx, &entity.User{ID: "u2", Email: "ANA@example.com"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	got, err := users.GetByEmail(ctx, "Ana@Example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "u1", got.ID)
}

func TestPasswordResetRepo_LatestActive(t *testing.T) {
	ctx := context.Background()
	resets := memory.New().PasswordResets()
	require.NoError(t, resets.Create(ctx, &entity.PasswordReset{ID: "r1", Email: "a@b.co"}))
	require.NoError(t, resets.Create(ctx, &entity.PasswordReset{ID: "r2", Email: "a@b.co"}))

	got, err := resets.LatestActive(ctx, "a@b.co")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "r2", got.ID)

	require.NoError(t, resets.MarkUsed(ctx, "r2"))
	got, err = resets.LatestActive(ctx, "a@b.co")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "r1", got.ID)

	assert.ErrorIs(t, resets.MarkUsed(ctx, "nope"), domain.ErrNotFound)
}

func TestAnalyticsRepo_LowStockYResumen(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	require.NoError(t, s.Products().Create(ctx, &entity.Product{ID: "p1", SKU: "A", Name: "Acero", ReorderLevel: decimal.NewFromInt(100)}))
	require.NoError(t, s.Products().Create(ctx, &entity.Product{ID: "p2", SKU: "B", Name: "Bisagra", ReorderLevel: decimal.NewFromInt(5)}))
	require.NoError(t, s.Locations().Create(ctx, &entity.Location{ID: "l1", Name: "Main Warehouse"}))
	require.NoError(t, s.Locations().Create(ctx, &entity.Location{ID: "l2", Name: "Rack A1"}))
	for _, lvl := range []*entity.StockLevel{
		{ProductID: "p1", LocationID: "l1", Quantity: decimal.NewFromInt(40)},
		{ProductID: "p1", LocationID: "l2", Quantity: decimal.NewFromInt(30)},
		{ProductID: "p2", LocationID: "l1", Quantity: decimal.NewFromInt(9)},
	} {
		require.NoError(t, s.Stock().Write(ctx, lvl))
	}
	require.NoError(t, s.Operations().Create(ctx, &entity.Operation{ID: "f1", Kind: entity.OperationDelivery, Status: entity.StatusFailed}))

	low, err := s.Analytics().LowStock(ctx)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "p1", low[0].ProductID)
	assert.True(t, low[0].CurrentStock.Equal(decimal.NewFromInt(70)))

	sum, err := s.Analytics().Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.TotalProducts)
	assert.True(t, sum.TotalStock.Equal(decimal.NewFromInt(79)))
	assert.Equal(t, 1, sum.FailedOperations)
	assert.Zero(t, sum.PendingDeliveries)

	rows, err := s.Analytics().StockReport(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Main Warehouse", rows[0].LocationName)
	assert.Equal(t, "Rack A1", rows[1].LocationName)
}

func TestAnalyticsRepo_DailyMovements(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	day := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	for _, e := range []*entity.LedgerEntry{
		{ID: "1", Type: entity.OperationReceipt, Quantity: decimal.NewFromInt(10), CreatedAt: day},
		{ID: "2", Type: entity.OperationDelivery, Quantity: decimal.NewFromInt(4), CreatedAt: day.Add(time.Hour)},
		{ID: "3", Type: entity.OperationTransfer, Quantity: decimal.NewFromInt(99), CreatedAt: day},
		{ID: "4", Type: entity.OperationReceipt, Quantity: decimal.NewFromInt(1), CreatedAt: day.AddDate(0, 0, -30)},
	} {
		require.NoError(t, s.Ledger().Append(ctx, e))
	}

	got, err := s.Analytics().DailyMovements(ctx, day.AddDate(0, 0, -7))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].In.Equal(decimal.NewFromInt(10)))
	assert.True(t, got[0].Out.Equal(decimal.NewFromInt(4)))
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), got[0].Day)
}
