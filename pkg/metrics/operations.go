package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OperationMetrics métricas del motor de movimientos y de los jobs de stock.
// Todos los métodos aceptan receptor nil.
type OperationMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	ledger     *prometheus.CounterVec
	lowStock   prometheus.Gauge
	jobRuns    *prometheus.CounterVec
}

// NewOperationMetrics registra las métricas en el registerer indicado.
// Con reg nil devuelve una instancia sin colectores.
func NewOperationMetrics(reg prometheus.Registerer) *OperationMetrics {
	if reg == nil {
		return &OperationMetrics{}
	}
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stockmaster_operations_total",
		Help: "Operaciones de stock finalizadas por tipo y estado.",
	}, []string{"kind", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "stockmaster_operation_duration_seconds",
		Help:    "Duración de las operaciones de stock en segundos.",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})
	ledger := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stockmaster_ledger_entries_total",
		Help: "Asientos del libro de movimientos confirmados.",
	}, []string{"kind"})
	lowStock := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "stockmaster_low_stock_products",
		Help: "Productos por debajo del nivel de reorden en la última revisión.",
	})
	jobRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stockmaster_job_runs_total",
		Help: "Ejecuciones de jobs programados por resultado.",
	}, []string{"job", "result"})
	reg.MustRegister(operations, duration, ledger, lowStock, jobRuns)
	return &OperationMetrics{
		operations: operations,
		duration:   duration,
		ledger:     ledger,
		lowStock:   lowStock,
		jobRuns:    jobRuns,
	}
}

// OperationFinished registra el resultado de una operación del motor.
func (m *OperationMetrics) OperationFinished(kind, status string, d time.Duration, ledgerEntries int) {
	if m == nil || m.operations == nil {
		return
	}
	kind = normalizeLabel(kind)
	m.operations.WithLabelValues(kind, normalizeLabel(status)).Inc()
	m.duration.WithLabelValues(kind).Observe(d.Seconds())
	if ledgerEntries > 0 {
		m.ledger.WithLabelValues(kind).Add(float64(ledgerEntries))
	}
}

// SetLowStock fija el número de productos con stock bajo.
func (m *OperationMetrics) SetLowStock(n int) {
	if m == nil || m.lowStock == nil {
		return
	}
	m.lowStock.Set(float64(n))
}

// JobRun cuenta una ejecución de job; ok=false la marca como fallida.
func (m *OperationMetrics) JobRun(job string, ok bool) {
	if m == nil || m.jobRuns == nil {
		return
	}
	result := "success"
	if !ok {
		result = "failure"
	}
	m.jobRuns.WithLabelValues(normalizeLabel(job), result).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
