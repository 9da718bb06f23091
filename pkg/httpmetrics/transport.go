/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package httpmetrics instruments outbound HTTP clients with prometheus
// metrics and OpenTelemetry propagation, and serves the scrape endpoint.
package httpmetrics

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/chainguard-dev/clog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var (
	requestCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_client_requests_total",
		Help: "Outbound HTTP requests by host, method, and status code.",
	}, []string{"host", "method", "code"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_client_request_duration_seconds",
		Help:    "Outbound HTTP request latency by host and method.",
		Buckets: prometheus.DefBuckets,
	}, []string{"host", "method"})
)

// Transport is an instrumented replacement for http.DefaultTransport.
var Transport = WrapTransport(http.DefaultTransport)

type metricsTransport struct {
	inner http.RoundTripper
}

// WrapTransport instruments a transport with request metrics and trace
// propagation. A nil inner transport falls back to http.DefaultTransport.
func WrapTransport(inner http.RoundTripper) http.RoundTripper {
	if inner == nil {
		inner = http.DefaultTransport
	}
	return otelhttp.NewTransport(&metricsTransport{inner: inner})
}

func (t *metricsTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.inner.RoundTrip(req)
	requestDuration.WithLabelValues(req.URL.Host, req.Method).Observe(time.Since(start).Seconds())

	code := "error"
	if err == nil {
		code = strconv.Itoa(resp.StatusCode)
	}
	requestCount.WithLabelValues(req.URL.Host, req.Method, code).Inc()
	return resp, err
}

// ServeMetrics serves the prometheus scrape endpoint on the given port until
// the context is canceled. Intended to run in its own goroutine.
func ServeMetrics(ctx context.Context, port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		clog.FromContext(ctx).Errorf("metrics server: %v", err)
	}
}
