package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder es lo que usan servicios y workers; Nop cuando no hay Prometheus.
type Recorder interface {
	RecordReconciliation(result string)
	RecordNotificationsWritten(op string, count int)
	RecordConflictRetry()
	RecordDiagnostics(kind string, count int)
	RecordSweep(duration time.Duration, children int)
	RecordPurged(count int)
}

const (
	ResultOK       = "ok"
	ResultNoop     = "noop"
	ResultConflict = "conflict"
	ResultError    = "error"

	OpCreate = "create"
	OpUpdate = "update"
)

type Collector struct {
	reconciliations *prometheus.CounterVec
	written         *prometheus.CounterVec
	conflictRetries prometheus.Counter
	diagnostics     *prometheus.CounterVec
	sweepLatency    prometheus.Histogram
	sweptChildren   prometheus.Counter
	purged          prometheus.Counter
}

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		reconciliations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "immunization_reconciliations_total",
			Help: "Reconciliaciones de notificaciones por resultado",
		}, []string{"result"}),
		written: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "immunization_notifications_written_total",
			Help: "Notificaciones creadas o actualizadas",
		}, []string{"op"}),
		conflictRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "immunization_reconcile_conflict_retries_total",
			Help: "Reintentos por violación de unicidad de notificación activa",
		}),
		diagnostics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "immunization_diagnostics_total",
			Help: "Datos descartados durante la evaluación por tipo",
		}, []string{"kind"}),
		sweepLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "immunization_sweep_duration_seconds",
			Help:    "Duración del barrido periódico",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
		sweptChildren: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "immunization_sweep_children_total",
			Help: "Niños procesados por el barrido",
		}),
		purged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "immunization_notifications_purged_total",
			Help: "Notificaciones APLICADA eliminadas por retención",
		}),
	}

	reg.MustRegister(
		c.reconciliations,
		c.written,
		c.conflictRetries,
		c.diagnostics,
		c.sweepLatency,
		c.sweptChildren,
		c.purged,
	)
	return c
}

func (c *Collector) RecordReconciliation(result string) {
	c.reconciliations.WithLabelValues(result).Inc()
}

func (c *Collector) RecordNotificationsWritten(op string, count int) {
	if count <= 0 {
		return
	}
	c.written.WithLabelValues(op).Add(float64(count))
}

func (c *Collector) RecordConflictRetry() {
	c.conflictRetries.Inc()
}

func (c *Collector) RecordDiagnostics(kind string, count int) {
	if count <= 0 {
		return
	}
	c.diagnostics.WithLabelValues(kind).Add(float64(count))
}

func (c *Collector) RecordSweep(duration time.Duration, children int) {
	c.sweepLatency.Observe(duration.Seconds())
	c.sweptChildren.Add(float64(children))
}

func (c *Collector) RecordPurged(count int) {
	c.purged.Add(float64(count))
}

// Nop descarta todas las mediciones.
type Nop struct{}

func (Nop) RecordReconciliation(string)            {}
func (Nop) RecordNotificationsWritten(string, int) {}
func (Nop) RecordConflictRetry()                   {}
func (Nop) RecordDiagnostics(string, int)          {}
func (Nop) RecordSweep(time.Duration, int)         {}
func (Nop) RecordPurged(int)                       {}

// Handler expone la registry para scraping.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
