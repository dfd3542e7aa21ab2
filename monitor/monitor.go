package monitor

import (
	"context"
	"fmt"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Config for the monitoring server
type Config struct {
	Enabled bool
	Host    string
	Port    int
	Pprof   bool
}

var (
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "affiliate_api",
		Name:      "http_requests_total",
		Help:      "Number of handled http requests",
	}, []string{"method", "route", "status"})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "affiliate_api",
		Name:      "http_request_duration_seconds",
		Help:      "Duration of the handled http requests",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
	}, []string{"method", "route"})

	ApplicationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "affiliate_api",
		Name:      "applications_total",
		Help:      "Submitted applications by resulting status",
	}, []string{"status"})

	PayoutsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "affiliate_api",
		Name:      "payouts_total",
		Help:      "Payouts created or moved to a status",
	}, []string{"status"})

	PayoutAmountTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "affiliate_api",
		Name:      "payout_amount_total",
		Help:      "Amount of the created payouts",
	})

	CommissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "affiliate_api",
		Name:      "commissions_total",
		Help:      "Commissions by status transition",
	}, []string{"status"})

	LinkClicksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "affiliate_api",
		Name:      "link_clicks_total",
		Help:      "Tracked link clicks",
	})

	DemoResponsesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "affiliate_api",
		Name:      "demo_responses_total",
		Help:      "Responses served with placeholder data",
	}, []string{"section", "state"})
)

var monitoringServer *http.Server

// LoopProfilingServer starts the metrics server and blocks until it is shut down
func LoopProfilingServer(cfg Config) {
	if !cfg.Enabled {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if cfg.Pprof {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}
	monitoringServer = &http.Server{Addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port), Handler: mux}

	log.Info().Str("worker", "monitoring").Str("action", "start").Int("port", cfg.Port).Msg("Monitoring server - started")
	if err := monitoringServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error().Err(err).Str("worker", "monitoring").Msg("Unable to start monitoring server")
	}
}

// ShutdownServer stops the metrics server
func ShutdownServer() {
	if monitoringServer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := monitoringServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Str("worker", "monitoring").Msg("Unable to shutdown monitoring server")
	}
}
