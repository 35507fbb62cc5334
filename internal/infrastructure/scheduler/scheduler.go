package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
	"github.com/jhoicas/stockmaster-api/internal/domain/repository"
	"github.com/jhoicas/stockmaster-api/pkg/logger"
)

const (
	lowStockJobName = "low_stock"
	jobTimeout      = 30 * time.Second
)

// LowStockPublisher publica una alerta por producto bajo el nivel de reorden.
type LowStockPublisher interface {
	PublishLowStock(ctx context.Context, item entity.LowStockItem) error
}

// JobMetrics métricas que actualiza el job.
type JobMetrics interface {
	SetLowStock(n int)
	JobRun(job string, ok bool)
}

// LowStockJob revisa periódicamente el stock bajo.
type LowStockJob struct {
	analytics repository.AnalyticsRepository
	publisher LowStockPublisher
	metrics   JobMetrics
	log       *logger.Logger
}

// NewLowStockJob construye el job. publisher y metrics pueden ser nil.
func NewLowStockJob(analytics repository.AnalyticsRepository, publisher LowStockPublisher, metrics JobMetrics, log *logger.Logger) *LowStockJob {
	if log == nil {
		log = logger.Nop()
	}
	return &LowStockJob{analytics: analytics, publisher: publisher, metrics: metrics, log: log.Named("low_stock_job")}
}

// Run ejecuta una revisión y devuelve los productos bajo reorden.
// Un fallo al publicar se registra y no interrumpe la revisión.
func (j *LowStockJob) Run(ctx context.Context) ([]entity.LowStockItem, error) {
	items, err := j.analytics.LowStock(ctx)
	if err != nil {
		j.report(false)
		return nil, fmt.Errorf("consultar stock bajo: %w", err)
	}
	if j.metrics != nil {
		j.metrics.SetLowStock(len(items))
	}
	for _, it := range items {
		j.log.Warn().
			Str("product_id", it.ProductID).
			Str("sku", it.SKU).
			Str("current_stock", it.CurrentStock.String()).
			Str("reorder_level", it.ReorderLevel.String()).
			Msg("producto bajo nivel de reorden")
		if j.publisher == nil {
			continue
		}
		if err := j.publisher.PublishLowStock(ctx, it); err != nil {
			j.log.Error().Err(err).Str("product_id", it.ProductID).Msg("no se pudo publicar alerta de stock bajo")
		}
	}
	j.report(true)
	return items, nil
}

func (j *LowStockJob) report(ok bool) {
	if j.metrics != nil {
		j.metrics.JobRun(lowStockJobName, ok)
	}
}

// Start registra el job con la expresión cron indicada y arranca el scheduler.
// El llamador debe invocar Stop() sobre el *cron.Cron devuelto al apagar.
func Start(spec string, job *LowStockJob, log *logger.Logger) (*cron.Cron, error) {
	if log == nil {
		log = logger.Nop()
	}
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		items, err := job.Run(ctx)
		if err != nil {
			log.Error().Err(err).Str("job", lowStockJobName).Msg("job falló")
			return
		}
		log.Info().Str("job", lowStockJobName).Int("low_stock", len(items)).Msg("job completado")
	})
	if err != nil {
		return nil, fmt.Errorf("registrar job %s (%q): %w", lowStockJobName, spec, err)
	}
	c.Start()
	return c, nil
}
