// Package metrics holds the Prometheus collectors of the server and the
// optional HTTP listener exposing them.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/corymhall/aidllsp/debug"
)

// Outcomes of a dispatched message.
const (
	OutcomeOK             = "ok"
	OutcomeError          = "error"
	OutcomeInvalidParams  = "invalid_params"
	OutcomeMethodNotFound = "method_not_found"
	OutcomeIgnored        = "ignored"
)

var (
	// messages counts dispatched messages.
	// Labels: method, outcome
	messages = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "aidllsp",
		Subsystem: "dispatch",
		Name:      "messages_total",
		Help:      "Total messages dispatched by method and outcome",
	}, []string{"method", "outcome"})

	// messageDuration measures handler latency.
	// Labels: method
	messageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "aidllsp",
		Subsystem: "dispatch",
		Name:      "duration_seconds",
		Help:      "Time spent handling a message",
		Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}, []string{"method"})

	indexDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "aidllsp",
		Subsystem: "index",
		Name:      "duration_seconds",
		Help:      "Time spent on a full workspace index",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
	})

	indexedFiles = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "aidllsp",
		Subsystem: "index",
		Name:      "files",
		Help:      "Number of files held by the workspace index",
	})

	// diagnostics counts published diagnostics.
	// Labels: severity
	diagnostics = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "aidllsp",
		Subsystem: "index",
		Name:      "diagnostics_total",
		Help:      "Total diagnostics published by severity",
	}, []string{"severity"})
)

// ObserveMessage records the outcome of one dispatched message.
func ObserveMessage(method, outcome string, elapsed time.Duration) {
	messages.WithLabelValues(method, outcome).Inc()
	messageDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// ObserveIndex records a completed full index.
func ObserveIndex(elapsed time.Duration, files int) {
	indexDuration.Observe(elapsed.Seconds())
	indexedFiles.Set(float64(files))
}

// SetIndexedFiles records the number of files currently held by the index.
func SetIndexedFiles(files int) {
	indexedFiles.Set(float64(files))
}

// AddDiagnostics records n published diagnostics of the given severity.
func AddDiagnostics(severity string, n int) {
	if n > 0 {
		diagnostics.WithLabelValues(severity).Add(float64(n))
	}
}

// Serve exposes the default registry on addr under /metrics until ctx is
// done. The listener is bound before Serve returns so that address errors
// are reported to the caller.
func Serve(ctx context.Context, addr string) (net.Addr, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", addr, err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			debug.LogError(ctx, "metrics listener stopped", err)
		}
	}()
	return ln.Addr(), nil
}
