package analytics

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
	"github.com/jhoicas/stockmaster-api/internal/infrastructure/memory"
)

type mapCache struct {
	mu   sync.Mutex
	data map[string]string
	sets int
}

func (c *mapCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return "", errors.New("miss")
	}
	return v, nil
}

func (c *mapCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data == nil {
		c.data = make(map[string]string)
	}
	c.data[key] = value.(string)
	c.sets++
	return nil
}

func seedStore(t *testing.T) *memory.Store {
	t.Helper()
	ctx := context.Background()
	s := memory.New()
	require.NoError(t, s.Products().Create(ctx, &entity.Product{ID: "p1", SKU: "A", Name: "Acero", Category: "Raw", ReorderLevel: decimal.NewFromInt(100)}))
	require.NoError(t, s.Products().Create(ctx, &entity.Product{ID: "p2", SKU: "B", Name: "Bisagra", ReorderLevel: decimal.NewFromInt(1)}))
	require.NoError(t, s.Locations().Create(ctx, &entity.Location{ID: "l1", Name: "Main Warehouse"}))
	require.NoError(t, s.Stock().Write(ctx, &entity.StockLevel{ProductID: "p1", LocationID: "l1", Quantity: decimal.NewFromInt(30)}))
	require.NoError(t, s.Stock().Write(ctx, &entity.StockLevel{ProductID: "p2", LocationID: "l1", Quantity: decimal.NewFromInt(8)}))
	return s
}

func TestKPIs_CalculaYCachea(t *testing.T) {
	ctx := context.Background()
	s := seedStore(t)
	cache := &mapCache{}
	uc := NewDashboardUseCase(s.Analytics(), cache, time.Minute, nil)

	res, err := uc.KPIs(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.TotalProducts)
	assert.True(t, res.TotalStock.Equal(decimal.NewFromInt(38)))
	require.Len(t, res.LowStockProducts, 1)
	assert.Equal(t, "p1", res.LowStockProducts[0].ID)
	assert.Equal(t, 1, cache.sets)

	// un cambio posterior no se ve mientras la caché esté vigente
	require.NoError(t, s.Products().Create(ctx, &entity.Product{ID: "p3", SKU: "C", Name: "Cable"}))
	again, err := uc.KPIs(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, again.TotalProducts)
	assert.Equal(t, 1, cache.sets)
}

func TestKPIs_SinCache(t *testing.T) {
	s := seedStore(t)
	uc := NewDashboardUseCase(s.Analytics(), nil, 0, nil)
	res, err := uc.KPIs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.TotalProducts)
}

func TestCharts_SieteDiasYSinCategoria(t *testing.T) {
	ctx := context.Background()
	s := seedStore(t)
	now := time.Date(2026, 5, 20, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.Ledger().Append(ctx, &entity.LedgerEntry{
		ID: "e1", Type: entity.OperationReceipt, Quantity: decimal.NewFromInt(12), CreatedAt: now.Add(-time.Hour),
	}))
	require.NoError(t, s.Ledger().Append(ctx, &entity.LedgerEntry{
		ID: "e2", Type: entity.OperationDelivery, Quantity: decimal.NewFromInt(5), CreatedAt: now.AddDate(0, 0, -2),
	}))

	uc := NewDashboardUseCase(s.Analytics(), nil, 0, nil)
	uc.now = func() time.Time { return now }

	res, err := uc.Charts(ctx)
	require.NoError(t, err)
	require.Len(t, res.StockTrends, 7)
	assert.Equal(t, "2026-05-14", res.StockTrends[0].Name)
	last := res.StockTrends[6]
	assert.Equal(t, "2026-05-20", last.Name)
	assert.True(t, last.In.Equal(decimal.NewFromInt(12)))
	assert.True(t, res.StockTrends[4].Out.Equal(decimal.NewFromInt(5)))
	assert.True(t, res.StockTrends[1].In.IsZero())

	names := map[string]int{}
	for _, c := range res.CategoryData {
		names[c.Name] = c.Value
	}
	assert.Equal(t, 1, names["Raw"])
	assert.Equal(t, 1, names["Uncategorized"])
}

type fakeGenerator struct{ rows int }

func (g *fakeGenerator) GenerateStockReport(_ context.Context, rows []entity.StockReportRow, _ time.Time) ([]byte, error) {
	g.rows = len(rows)
	return []byte("%PDF-"), nil
}

func TestStockReportPDF(t *testing.T) {
	s := seedStore(t)
	gen := &fakeGenerator{}
	out, err := NewReportUseCase(s.Analytics(), gen).StockReportPDF(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "%PDF-", string(out))
	assert.Equal(t, 2, gen.rows)
}
