package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperationMetrics_ExportaContadoresEHistograma(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewOperationMetrics(reg)

	m.OperationFinished("receipt", "done", 120*time.Millisecond, 3)
	m.OperationFinished("receipt", "failed", 10*time.Millisecond, 0)
	m.OperationFinished("delivery", "done", 50*time.Millisecond, 1)
	m.SetLowStock(4)
	m.JobRun("low_stock", true)

	mfs, err := reg.Gather()
	require.NoError(t, err)

	v, err := counterValue(mfs, "stockmaster_operations_total", map[string]string{"kind": "receipt", "status": "done"})
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)

	v, err = counterValue(mfs, "stockmaster_operations_total", map[string]string{"kind": "receipt", "status": "failed"})
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)

	v, err = counterValue(mfs, "stockmaster_ledger_entries_total", map[string]string{"kind": "receipt"})
	require.NoError(t, err)
	assert.Equal(t, 3.0, v)

	mf := findFamily(mfs, "stockmaster_operation_duration_seconds")
	require.NotNil(t, mf)
	assert.Len(t, mf.GetMetric(), 2, "un histograma por kind")

	gauge := findFamily(mfs, "stockmaster_low_stock_products")
	require.NotNil(t, gauge)
	assert.Equal(t, 4.0, gauge.GetMetric()[0].GetGauge().GetValue())

	v, err = counterValue(mfs, "stockmaster_job_runs_total", map[string]string{"job": "low_stock", "result": "success"})
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)
}

func TestOperationMetrics_ReceptorNilNoFalla(t *testing.T) {
	var m *OperationMetrics
	assert.NotPanics(t, func() {
		m.OperationFinished("receipt", "done", time.Second, 1)
		m.SetLowStock(1)
		m.JobRun("x", false)
	})

	empty := NewOperationMetrics(nil)
	assert.NotPanics(t, func() { empty.OperationFinished("", "", 0, 0) })
}

func counterValue(mfs []*dto.MetricFamily, name string, labels map[string]string) (float64, error) {
	mf := findFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("métrica %q no encontrada", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabels(metric.GetLabel(), labels) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("métrica %q sin labels %v", name, labels)
}

func findFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabels(pairs []*dto.LabelPair, want map[string]string) bool {
	found := 0
	for _, p := range pairs {
		if v, ok := want[p.GetName()]; ok && v == p.GetValue() {
			found++
		}
	}
	return found == len(want)
}
