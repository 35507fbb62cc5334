package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
)

// AnalyticsRepository consultas de solo lectura para dashboard, reposición y reportes.
// No requieren transacción; toleran lecturas levemente desactualizadas.
type AnalyticsRepository interface {
	Summary(ctx context.Context) (*entity.StockSummary, error)
	// LowStock productos con sum(stock) < nivel de reorden.
	LowStock(ctx context.Context) ([]entity.LowStockItem, error)
	DailyMovements(ctx context.Context, since time.Time) ([]entity.DailyMovement, error)
	CategoryDistribution(ctx context.Context) ([]entity.CategoryCount, error)
	StockReport(ctx context.Context) ([]entity.StockReportRow, error)
}
