// Package telemetry provides Prometheus metrics and correlation-id aware logging helpers.
package telemetry

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once sync.Once

	// Counters
	CommandInvocations *prometheus.CounterVec // labels: command, outcome
	DeliveryFailures   *prometheus.CounterVec // labels: frontend

	// Histograms (seconds)
	UpstreamRequestDuration *prometheus.HistogramVec // labels: status
)

// Init registers metrics (idempotent).
func Init() {
	once.Do(func() {
		CommandInvocations = promauto.NewCounterVec(prometheus.CounterOpts{Name: "livebot_command_invocations_total", Help: "Number of command invocations by outcome"}, []string{"command", "outcome"})
		DeliveryFailures = promauto.NewCounterVec(prometheus.CounterOpts{Name: "livebot_delivery_failures_total", Help: "Number of replies that could not be delivered"}, []string{"frontend"})
		UpstreamRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{Name: "livebot_upstream_request_duration_seconds", Help: "Streaming API request duration seconds", Buckets: prometheus.DefBuckets}, []string{"status"})
	})
}

// CountInvocation records one finished command invocation. No-op before Init.
func CountInvocation(command, outcome string) {
	if CommandInvocations != nil {
		CommandInvocations.WithLabelValues(command, outcome).Inc()
	}
}

// CountDeliveryFailure records a reply that could not be delivered. No-op before Init.
func CountDeliveryFailure(frontend string) {
	if DeliveryFailures != nil {
		DeliveryFailures.WithLabelValues(frontend).Inc()
	}
}

// ObserveUpstream records the duration of one streaming API request. No-op before Init.
func ObserveUpstream(status string, d time.Duration) {
	if UpstreamRequestDuration != nil {
		UpstreamRequestDuration.WithLabelValues(status).Observe(d.Seconds())
	}
}

// TimeFunc measures the duration of fn and records in observer if non-nil.
func TimeFunc(obs prometheus.Observer, fn func()) time.Duration {
	start := time.Now()
	fn()
	d := time.Since(start)
	if obs != nil {
		obs.Observe(d.Seconds())
	}
	return d
}

// Correlation ID helpers ----------------------------------------------------
type corrKeyType struct{}

var corrKey corrKeyType

// WithCorrelation returns a new context embedding the correlation id.
func WithCorrelation(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, corrKey, id)
}

// GetCorrelation returns correlation id or empty string.
func GetCorrelation(ctx context.Context) string {
	v := ctx.Value(corrKey)
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// LoggerWithCorr returns a logger with corr attribute if present.
func LoggerWithCorr(ctx context.Context) *slog.Logger {
	if id := GetCorrelation(ctx); id != "" {
		return slog.Default().With(slog.String("corr", id))
	}
	return slog.Default()
}
