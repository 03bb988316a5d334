package main

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/coredump-labs/dwarfgraph/pkg/typegraph"
)

// serveMetrics starts a background HTTP server exposing the run's
// Prometheus counters at /metrics and returns the registry-backed
// *typegraph.Metrics the SymbolManager should be constructed with. addr
// empty disables metrics entirely and returns a nil *typegraph.Metrics,
// which every Manager method treats as a no-op.
func serveMetrics(addr string, logger *slog.Logger) *typegraph.Metrics {
	if addr == "" {
		return nil
	}
	reg := prometheus.NewRegistry()
	m := typegraph.NewMetrics(reg)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error("metrics server exited", "err", err)
		}
	}()
	logger.Info("metrics listening", "addr", addr)
	return m
}
