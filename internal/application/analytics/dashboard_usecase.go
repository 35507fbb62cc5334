// Package analytics contiene los casos de uso de lectura: KPIs y gráficos del dashboard
// y el reporte de existencias.
package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/jhoicas/stockmaster-api/internal/application/dto"
	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
	"github.com/jhoicas/stockmaster-api/internal/domain/repository"
	"github.com/jhoicas/stockmaster-api/pkg/logger"
)

const (
	trendDays          = 7
	uncategorizedLabel = "Uncategorized"
	kpiCacheKey        = "stockmaster:dashboard:kpis"
)

// DashboardUseCase KPIs y gráficos del dashboard.
//
// Fuente de datos: AnalyticsRepository (consultas read-only). Los KPIs se cachean con TTL corto;
// varias peticiones concurrentes con la caché vacía comparten una sola consulta.
type DashboardUseCase struct {
	analyticsRepo repository.AnalyticsRepository
	cache         KPICache
	ttl           time.Duration
	group         singleflight.Group
	log           *logger.Logger
	now           func() time.Time
}

// NewDashboardUseCase construye el caso de uso. cache puede ser nil (sin caché).
func NewDashboardUseCase(analyticsRepo repository.AnalyticsRepository, cache KPICache, ttl time.Duration, log *logger.Logger) *DashboardUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &DashboardUseCase{
		analyticsRepo: analyticsRepo,
		cache:         cache,
		ttl:           ttl,
		log:           log.Named("dashboard"),
		now:           time.Now,
	}
}

// KPIs totales del inventario y productos bajo el nivel de reorden.
func (uc *DashboardUseCase) KPIs(ctx context.Context) (*dto.KPIResponse, error) {
	if cached, ok := uc.fromCache(ctx); ok {
		return cached, nil
	}

	v, err, _ := uc.group.Do(kpiCacheKey, func() (any, error) {
		res, err := uc.computeKPIs(ctx)
		if err != nil {
			return nil, err
		}
		uc.toCache(ctx, res)
		return res, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*dto.KPIResponse), nil
}

func (uc *DashboardUseCase) computeKPIs(ctx context.Context) (*dto.KPIResponse, error) {
	var (
		summary *entity.StockSummary
		low     []entity.LowStockItem
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		summary, err = uc.analyticsRepo.Summary(gctx)
		if err != nil {
			return fmt.Errorf("dashboard: resumen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		low, err = uc.analyticsRepo.LowStock(gctx)
		if err != nil {
			return fmt.Errorf("dashboard: bajo stock: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &dto.KPIResponse{
		TotalProducts:     summary.TotalProducts,
		TotalStock:        summary.TotalStock,
		PendingReceipts:   summary.PendingReceipts,
		PendingDeliveries: summary.PendingDeliveries,
		FailedOperations:  summary.FailedOperations,
		LowStockProducts:  make([]dto.LowStockProduct, 0, len(low)),
	}
	for _, item := range low {
		res.LowStockProducts = append(res.LowStockProducts, dto.LowStockProduct{
			ID:           item.ProductID,
			SKU:          item.SKU,
			Name:         item.Name,
			CurrentStock: item.CurrentStock,
			ReorderLevel: item.ReorderLevel,
		})
	}
	return res, nil
}

func (uc *DashboardUseCase) fromCache(ctx context.Context) (*dto.KPIResponse, bool) {
	if uc.cache == nil {
		return nil, false
	}
	raw, err := uc.cache.Get(ctx, kpiCacheKey)
	if err != nil || raw == "" {
		return nil, false
	}
	var res dto.KPIResponse
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		uc.log.Warn().Err(err).Msg("caché de KPIs corrupta")
		return nil, false
	}
	return &res, true
}

func (uc *DashboardUseCase) toCache(ctx context.Context, res *dto.KPIResponse) {
	if uc.cache == nil || uc.ttl <= 0 {
		return
	}
	raw, err := json.Marshal(res)
	if err != nil {
		return
	}
	if err := uc.cache.Set(ctx, kpiCacheKey, string(raw), uc.ttl); err != nil {
		uc.log.Warn().Err(err).Msg("no se pudo guardar la caché de KPIs")
	}
}

// Charts entradas/salidas de los últimos 7 días (incluye días sin movimiento) y
// distribución de productos por categoría.
func (uc *DashboardUseCase) Charts(ctx context.Context) (*dto.ChartsResponse, error) {
	today := uc.now().UTC().Truncate(24 * time.Hour)
	since := today.AddDate(0, 0, -(trendDays - 1))

	var (
		daily      []entity.DailyMovement
		categories []entity.CategoryCount
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		daily, err = uc.analyticsRepo.DailyMovements(gctx, since)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = uc.analyticsRepo.CategoryDistribution(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("dashboard: gráficos: %w", err)
	}

	byDay := make(map[string]entity.DailyMovement, len(daily))
	for _, d := range daily {
		byDay[d.Day.UTC().Format(time.DateOnly)] = d
	}
	res := &dto.ChartsResponse{
		StockTrends:  make([]dto.StockTrendPoint, 0, trendDays),
		CategoryData: make([]dto.CategorySlice, 0, len(categories)),
	}
	for i := 0; i < trendDays; i++ {
		day := since.AddDate(0, 0, i).Format(time.DateOnly)
		point := dto.StockTrendPoint{Name: day, In: decimal.Zero, Out: decimal.Zero}
		if d, ok := byDay[day]; ok {
			point.In, point.Out = d.In, d.Out
		}
		res.StockTrends = append(res.StockTrends, point)
	}
	for _, c := range categories {
		name := c.Category
		if name == "" {
			name = uncategorizedLabel
		}
		res.CategoryData = append(res.CategoryData, dto.CategorySlice{Name: name, Value: c.Count})
	}
	return res, nil
}
