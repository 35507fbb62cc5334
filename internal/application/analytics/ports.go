package analytics

import (
	"context"
	"time"

	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
)

// KPICache caché de respuestas serializadas (Redis). Un error en Get se trata como miss.
type KPICache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// StockReportGenerator renderiza el reporte de existencias.
type StockReportGenerator interface {
	GenerateStockReport(ctx context.Context, rows []entity.StockReportRow, generatedAt time.Time) ([]byte, error)
}
