package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/stockmaster-api/internal/domain/repository"
)

// ReportUseCase reporte de existencias por producto y ubicación.
type ReportUseCase struct {
	analyticsRepo repository.AnalyticsRepository
	generator     StockReportGenerator
	now           func() time.Time
}

// NewReportUseCase construye el caso de uso.
func NewReportUseCase(analyticsRepo repository.AnalyticsRepository, generator StockReportGenerator) *ReportUseCase {
	return &ReportUseCase{analyticsRepo: analyticsRepo, generator: generator, now: time.Now}
}

// StockReportPDF devuelve el PDF con una fila por (producto, ubicación).
func (uc *ReportUseCase) StockReportPDF(ctx context.Context) ([]byte, error) {
	rows, err := uc.analyticsRepo.StockReport(ctx)
	if err != nil {
		return nil, fmt.Errorf("reporte: consultar stock: %w", err)
	}
	return uc.generator.GenerateStockReport(ctx, rows, uc.now())
}
