package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Asset store operation names.
const (
	AssetUpload = "upload"
	AssetDelete = "delete"
)

// AssetMetrics counts remote asset store calls by outcome.
type AssetMetrics struct {
	ops *prometheus.CounterVec
}

// NewAssetMetrics registers the asset counters on the provided registerer.
func NewAssetMetrics(reg prometheus.Registerer) *AssetMetrics {
	if reg == nil {
		return &AssetMetrics{}
	}
	ops := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "asset_operations_total",
		Help:      "Asset store operations, by operation and outcome.",
	}, []string{"op", "outcome"})
	reg.MustRegister(ops)
	return &AssetMetrics{ops: ops}
}

// Record counts one operation; err decides the outcome label.
func (m *AssetMetrics) Record(op string, err error) {
	if m == nil || m.ops == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.ops.WithLabelValues(normalizeLabel(op), outcome).Inc()
}
