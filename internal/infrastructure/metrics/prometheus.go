// Package metrics expone métricas Prometheus del pipeline de PDF.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jhoicas/facturas-api/internal/application/billing"
)

var _ billing.RenderObserver = (*PDFMetrics)(nil)

// PDFMetrics duración y tamaño de los renders correctos, fallos por código.
type PDFMetrics struct {
	duration prometheus.Histogram
	size     prometheus.Histogram
	failures *prometheus.CounterVec
}

// NewPDFMetrics registra las métricas en reg (prometheus.DefaultRegisterer en main).
func NewPDFMetrics(reg prometheus.Registerer) *PDFMetrics {
	m := &PDFMetrics{
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "invoice_pdf_render_duration_seconds",
			Help:    "Duración de la generación de PDF de facturas.",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}),
		size: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "invoice_pdf_size_bytes",
			Help:    "Tamaño de los PDF entregados.",
			Buckets: prometheus.ExponentialBuckets(4096, 2, 10),
		}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "invoice_pdf_failures_total",
			Help: "Fallos de generación de PDF por código de error.",
		}, []string{"code"}),
	}
	reg.MustRegister(m.duration, m.size, m.failures)
	return m
}

// ObserveRender implementa billing.RenderObserver.
func (m *PDFMetrics) ObserveRender(d time.Duration, size int) {
	m.duration.Observe(d.Seconds())
	m.size.Observe(float64(size))
}

// ObserveFailure implementa billing.RenderObserver.
func (m *PDFMetrics) ObserveFailure(code string) {
	m.failures.WithLabelValues(code).Inc()
}
