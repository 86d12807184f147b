package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics глобальный контейнер метрик
type Metrics struct {
	// Перечислитель остовных деревьев
	TreesEnumerated   *prometheus.HistogramVec
	TreeEnumerationDuration prometheus.Histogram

	// Метаэвристический подбор
	SizerRunsTotal    *prometheus.CounterVec
	SizerDuration     *prometheus.HistogramVec
	SizerBestCost     *prometheus.GaugeVec
	SizerIterations   *prometheus.HistogramVec

	// Гидравлический расчёт
	HydraulicEvaluationsTotal *prometheus.CounterVec
	InfeasibleHydraulicsTotal prometheus.Counter

	// Системные метрики
	MemoryUsage *prometheus.GaugeVec
	Goroutines  prometheus.Gauge

	// StageDuration times a named pipeline stage end to end (enumerate,
	// size, report) via StartStageTimer — distinct from SizerDuration,
	// which times one sizer run rather than the whole concurrent batch.
	StageDuration *prometheus.HistogramVec

	// Информация о сервисе
	ServiceInfo *prometheus.GaugeVec
}

var defaultMetrics *Metrics

// InitMetrics инициализирует метрики
func InitMetrics(namespace, subsystem string) *Metrics {
	m := &Metrics{
		TreesEnumerated: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "trees_enumerated",
				Help:      "Number of distinct spanning trees produced per run",
				Buckets:   []float64{1, 5, 10, 20, 50, 100},
			},
			[]string{"status"},
		),

		TreeEnumerationDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "tree_enumeration_duration_seconds",
				Help:      "Duration of spanning-tree enumeration",
				Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
		),

		SizerRunsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "sizer_runs_total",
				Help:      "Total number of sizer optimization runs",
			},
			[]string{"algorithm", "status"},
		),

		SizerDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "sizer_duration_seconds",
				Help:      "Duration of sizer optimization runs",
				Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"algorithm"},
		),

		SizerBestCost: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "sizer_best_cost",
				Help:      "Best penalized cost found by the last sizer run",
			},
			[]string{"algorithm"},
		),

		SizerIterations: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "sizer_iterations",
				Help:      "Iterations completed by a sizer run",
				Buckets:   []float64{10, 25, 50, 100, 150, 250, 500},
			},
			[]string{"algorithm"},
		),

		HydraulicEvaluationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "hydraulic_evaluations_total",
				Help:      "Total number of Manning hydraulic evaluations",
			},
			[]string{"feasible"},
		),

		InfeasibleHydraulicsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "infeasible_hydraulics_total",
				Help:      "Total number of hydraulic evaluations that returned infeasible",
			},
		),

		MemoryUsage: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "memory_usage_bytes",
				Help:      "Current memory usage",
			},
			[]string{"type"},
		),

		Goroutines: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "goroutines",
				Help:      "Current number of goroutines",
			},
		),

		StageDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "stage_duration_seconds",
				Help:      "Wall-clock duration of a named pipeline stage",
				Buckets:   []float64{.05, .1, .5, 1, 5, 10, 30, 60, 300},
			},
			[]string{"stage"},
		),

		ServiceInfo: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "service_info",
				Help:      "Service information",
			},
			[]string{"version", "environment"},
		),
	}

	// RuntimeCollector reports goroutine/heap/GC stats alongside the
	// domain metrics above, on the same default registry that Handler
	// serves.
	prometheus.MustRegister(NewRuntimeCollector(namespace, subsystem))

	defaultMetrics = m
	return m
}

// StartStageTimer begins timing a named pipeline stage (cmd/sewerdesign
// calls this around enumeration, sizing, and report export); call
// ObserveDuration on the result when the stage completes.
func (m *Metrics) StartStageTimer(stage string) *Timer {
	return NewTimer(m.StageDuration, stage)
}

// Get возвращает глобальные метрики
func Get() *Metrics {
	if defaultMetrics == nil {
		return InitMetrics("sewernet", "")
	}
	return defaultMetrics
}

// RecordTreeEnumeration записывает метрики перечисления деревьев
func (m *Metrics) RecordTreeEnumeration(status string, count int, duration time.Duration) {
	m.TreesEnumerated.WithLabelValues(status).Observe(float64(count))
	m.TreeEnumerationDuration.Observe(duration.Seconds())
}

// RecordSizerRun записывает метрики запуска метаэвристического подбора
func (m *Metrics) RecordSizerRun(algorithm string, success bool, duration time.Duration, bestCost float64, iterations int) {
	status := "success"
	if !success {
		status = "error"
	}

	m.SizerRunsTotal.WithLabelValues(algorithm, status).Inc()
	m.SizerDuration.WithLabelValues(algorithm).Observe(duration.Seconds())
	m.SizerBestCost.WithLabelValues(algorithm).Set(bestCost)
	m.SizerIterations.WithLabelValues(algorithm).Observe(float64(iterations))
}

// RecordHydraulicEvaluation записывает результат гидравлического расчёта
func (m *Metrics) RecordHydraulicEvaluation(feasible bool) {
	label := "true"
	if !feasible {
		label = "false"
		m.InfeasibleHydraulicsTotal.Inc()
	}
	m.HydraulicEvaluationsTotal.WithLabelValues(label).Inc()
}

// SetServiceInfo устанавливает информацию о сервисе
func (m *Metrics) SetServiceInfo(version, environment string) {
	m.ServiceInfo.WithLabelValues(version, environment).Set(1)
}

// Handler возвращает HTTP handler для /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}

// StartMetricsServer запускает HTTP сервер для метрик
func StartMetricsServer(port int) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		// Игнорируем ошибку записи - response уже отправлен
		_, _ = w.Write([]byte("OK")) //nolint:errcheck // health endpoint, ошибка записи не критична
	})

	server := &http.Server{
		Addr:         ":" + strconv.Itoa(port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	return server.ListenAndServe()
}
