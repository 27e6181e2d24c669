package watchdog

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	verdictsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pumpwatch",
		Name:      "verdicts_total",
		Help:      "Verdicts recorded, by severity",
	}, []string{"severity"})
	fetchErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "pumpwatch",
		Name:      "fetch_errors_total",
		Help:      "Telemetry fetch failures",
	})
	writeErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "pumpwatch",
		Name:      "write_errors_total",
		Help:      "Ledger cell write failures",
	})
	runDuration = prometheus.NewSummary(prometheus.SummaryOpts{
		Namespace: "pumpwatch",
		Name:      "run_duration_seconds",
		Help:      "Time spent on one full run",
	})
	lastRunSuccessTS = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "pumpwatch",
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix timestamp of the last completed run",
	})
)

func init() {
	prometheus.MustRegister(verdictsTotal, fetchErrorsTotal, writeErrorsTotal, runDuration, lastRunSuccessTS)
}

func observeRun(start time.Time) {
	runDuration.Observe(time.Since(start).Seconds())
	lastRunSuccessTS.Set(float64(time.Now().Unix()))
}

// NewMetricsServer exposes /metrics and /healthz on addr. The caller owns the
// server lifecycle.
func NewMetricsServer(addr string) *http.Server {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	return &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
