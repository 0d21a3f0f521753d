package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the bot's Prometheus collectors
	Registry = prometheus.NewRegistry()

	guessesSettled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "settlement",
			Name:      "guesses_total",
			Help:      "Settled guesses by outcome.",
		},
		[]string{LabelOutcome},
	)

	settlementDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "settlement",
			Name:      "duration_seconds",
			Help:      "Time spent settling a guess, including the transaction.",
			Buckets:   prometheus.ExponentialBuckets(0.002, 2, 12), // 2ms to ~4s
		},
		[]string{LabelResult},
	)

	balanceChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "ledger",
			Name:      "coins_moved_total",
			Help:      "Absolute coins moved through the ledger by reason.",
		},
		[]string{LabelReason},
	)

	eventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "events",
			Name:      "published_total",
			Help:      "Domain events published to the message bus.",
		},
		[]string{LabelEventType, LabelResult},
	)

	hydrations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "hydration",
			Name:      "veils_total",
			Help:      "Veils processed by startup hydration.",
		},
		[]string{LabelResult},
	)

	veilsPosted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "veils",
			Name:      "posted_total",
			Help:      "Veil post attempts.",
		},
		[]string{LabelResult},
	)

	jobRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "jobs",
			Name:      "runs_total",
			Help:      "Scheduled job runs.",
		},
		[]string{LabelJob, LabelResult},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests handled.",
		},
		[]string{LabelMethod, LabelRoute, LabelStatus},
	)
)

func init() {
	Registry.MustRegister(
		guessesSettled,
		settlementDuration,
		balanceChanges,
		eventsPublished,
		hydrations,
		veilsPosted,
		jobRuns,
		httpRequests,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// RecordSettlement counts a settled guess and its latency
func RecordSettlement(outcome string, elapsed time.Duration, err error) {
	result := ResultSuccess
	if err != nil {
		result = ResultFailure
	} else {
		guessesSettled.WithLabelValues(outcome).Inc()
	}
	settlementDuration.WithLabelValues(result).Observe(elapsed.Seconds())
}

// RecordBalanceChange counts coins moved for a reason
func RecordBalanceChange(reason string, amount int64) {
	if amount < 0 {
		amount = -amount
	}
	balanceChanges.WithLabelValues(reason).Add(float64(amount))
}

// RecordEventPublished counts a publish attempt
func RecordEventPublished(eventType string, err error) {
	eventsPublished.WithLabelValues(eventType, resultOf(err)).Inc()
}

// RecordHydration counts one hydrated veil
func RecordHydration(result string) {
	hydrations.WithLabelValues(result).Inc()
}

// RecordVeilPosted counts a veil post attempt
func RecordVeilPosted(err error) {
	veilsPosted.WithLabelValues(resultOf(err)).Inc()
}

// RecordJobRun counts a scheduled job run
func RecordJobRun(job string, err error) {
	jobRuns.WithLabelValues(job, resultOf(err)).Inc()
}

func resultOf(err error) string {
	if err != nil {
		return ResultFailure
	}
	return ResultSuccess
}

// Handler returns an HTTP handler exposing the registered metrics
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler counts requests by route pattern and status
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
