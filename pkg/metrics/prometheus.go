package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector emitted by a pipeline run.
type Manager struct {
	namespace       string
	subsystem       string
	durationBuckets []float64
	constLabels     map[string]string
	registry        *prometheus.Registry

	// Ingestion
	rowsRead          *prometheus.CounterVec
	rowsDropped       *prometheus.CounterVec
	coercionFailures  *prometheus.CounterVec
	sourcesDegraded   *prometheus.CounterVec
	debtorsAggregated *prometheus.GaugeVec

	// Scoring
	stageOutcomes *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	stageAUC      *prometheus.GaugeVec
	debtorsScored prometheus.Gauge
	categoryCount *prometheus.GaugeVec

	// Run
	runDuration prometheus.Gauge
	runLastUnix prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton manager for package-level helpers

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager()
}

// NewManager creates a metrics manager backed by its own registry unless one
// is supplied.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:       "debtscore",
		subsystem:       "pipeline",
		durationBuckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		constLabels:     map[string]string{},
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // flat collector declarations
	auto := promauto.With(m.registry)

	m.rowsRead = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "rows_read_total",
		Help:        "Rows read from each input source",
		ConstLabels: m.constLabels,
	}, []string{"source"})

	m.rowsDropped = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "rows_dropped_total",
		Help:        "Rows discarded per source and reason (invalid key, duplicate)",
		ConstLabels: m.constLabels,
	}, []string{"source", "reason"})

	m.coercionFailures = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "coercion_failures_total",
		Help:        "Cells that could not be parsed and were replaced by missing",
		ConstLabels: m.constLabels,
	}, []string{"source", "column"})

	m.sourcesDegraded = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "sources_degraded_total",
		Help:        "Auxiliary sources that contributed an empty summary",
		ConstLabels: m.constLabels,
	}, []string{"source", "reason"})

	m.debtorsAggregated = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "debtors_aggregated",
		Help:        "Distinct debtors per aggregated source",
		ConstLabels: m.constLabels,
	}, []string{"source"})

	m.stageOutcomes = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "stage_outcomes_total",
		Help:        "Propensity stage results by outcome (trained, degraded)",
		ConstLabels: m.constLabels,
	}, []string{"stage", "outcome"})

	m.stageDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "stage_duration_seconds",
		Help:        "Wall time spent fitting and scoring a propensity stage",
		Buckets:     m.durationBuckets,
		ConstLabels: m.constLabels,
	}, []string{"stage"})

	m.stageAUC = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "stage_auc",
		Help:        "ROC AUC of each stage on its evaluation partition",
		ConstLabels: m.constLabels,
	}, []string{"stage"})

	m.debtorsScored = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "debtors_scored",
		Help:        "Rows in the consolidated output",
		ConstLabels: m.constLabels,
	})

	m.categoryCount = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "score_category_debtors",
		Help:        "Debtors per score category",
		ConstLabels: m.constLabels,
	}, []string{"category"})

	m.runDuration = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "run_duration_seconds",
		Help:        "Duration of the last pipeline run",
		ConstLabels: m.constLabels,
	})

	m.runLastUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "run_last_completion_unix",
		Help:        "Unix time the last pipeline run completed",
		ConstLabels: m.constLabels,
	})
}

// Registry returns the registry the manager's collectors live on.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the registry in the text exposition format, suitable
// for the node-exporter textfile collector.
func (m *Manager) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteTextfile, err)
	}
	return nil
}

// Ingestion helpers.

// RecordRowsRead adds n rows read from source.
func RecordRowsRead(source string, n int) {
	globalManager.rowsRead.WithLabelValues(source).Add(float64(n))
}

// RecordRowsDropped adds n rows discarded from source for reason.
func RecordRowsDropped(source, reason string, n int) {
	if n <= 0 {
		return
	}
	globalManager.rowsDropped.WithLabelValues(source, reason).Add(float64(n))
}

// RecordCoercionFailures adds n unparseable cells in source.column.
func RecordCoercionFailures(source, column string, n int) {
	if n <= 0 {
		return
	}
	globalManager.coercionFailures.WithLabelValues(source, column).Add(float64(n))
}

// RecordSourceDegraded counts an auxiliary source that produced no summary.
func RecordSourceDegraded(source, reason string) {
	globalManager.sourcesDegraded.WithLabelValues(source, reason).Inc()
}

// UpdateDebtorsAggregated sets the distinct debtors summarized for source.
func UpdateDebtorsAggregated(source string, n int) {
	globalManager.debtorsAggregated.WithLabelValues(source).Set(float64(n))
}

// Scoring helpers.

// RecordStageOutcome counts a stage result.
func RecordStageOutcome(stage, outcome string) {
	globalManager.stageOutcomes.WithLabelValues(stage, outcome).Inc()
}

// RecordStageDuration observes the stage wall time in seconds.
func RecordStageDuration(stage string, seconds float64) {
	globalManager.stageDuration.WithLabelValues(stage).Observe(seconds)
}

// UpdateStageAUC sets the evaluation AUC of a stage.
func UpdateStageAUC(stage string, auc float64) {
	globalManager.stageAUC.WithLabelValues(stage).Set(auc)
}

// UpdateDebtorsScored sets the number of output rows.
func UpdateDebtorsScored(n int) {
	globalManager.debtorsScored.Set(float64(n))
}

// UpdateCategoryCount sets the number of debtors in a score category.
func UpdateCategoryCount(category string, n int) {
	globalManager.categoryCount.WithLabelValues(category).Set(float64(n))
}

// Run helpers.

// RecordRunCompleted stores the run duration and completion time.
func RecordRunCompleted(seconds float64, unix int64) {
	globalManager.runDuration.Set(seconds)
	globalManager.runLastUnix.Set(float64(unix))
}

// GetRegistry returns the registry used by the package-level helpers.
func GetRegistry() *prometheus.Registry {
	return globalManager.registry
}

// WriteTextfile writes the package-level registry to path.
func WriteTextfile(path string) error {
	return globalManager.WriteTextfile(path)
}
