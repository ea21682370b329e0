// Package metrics exposes Prometheus instrumentation for receipt parsing and
// the RPC API.
package metrics

import (
	"context"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmynk/billzy/internal/receipt"
)

const namespace = "billzy"

// Metrics holds the collectors on a private registry, so several instances
// can coexist in tests.
type Metrics struct {
	registry *prometheus.Registry

	receipts prometheus.Counter
	lines    *prometheus.CounterVec
	items    *prometheus.CounterVec
	warnings prometheus.Counter
	rpc      *prometheus.HistogramVec
}

// New creates and registers all collectors, plus the Go runtime and process
// collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		receipts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "receipts_parsed_total",
			Help:      "Receipts run through the parser.",
		}),
		lines: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "receipt_lines_total",
			Help:      "Receipt lines by classification.",
		}, []string{"class"}),
		items: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "receipt_items_total",
			Help:      "Parsed line items by price confidence.",
		}, []string{"confidence"}),
		warnings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "receipt_warnings_total",
			Help:      "Warnings produced while parsing receipts.",
		}),
		rpc: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_duration_seconds",
			Help:      "RPC handling time by procedure and result code.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure", "code"}),
	}

	m.registry.MustRegister(
		m.receipts, m.lines, m.items, m.warnings, m.rpc,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveParse records what the parser did with one receipt.
func (m *Metrics) ObserveParse(res *receipt.Result) {
	m.receipts.Inc()
	for _, tr := range res.Trace {
		m.lines.WithLabelValues(string(tr.Class)).Inc()
	}
	for _, it := range res.Items {
		if it.Uncertain {
			m.items.WithLabelValues("uncertain").Inc()
		} else {
			m.items.WithLabelValues("certain").Inc()
		}
	}
	m.warnings.Add(float64(len(res.Warnings)))
}

// Interceptor returns a Connect interceptor timing every unary call.
func (m *Metrics) Interceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			resp, err := next(ctx, req)

			code := "ok"
			if err != nil {
				code = connect.CodeOf(err).String()
			}
			m.rpc.WithLabelValues(req.Spec().Procedure, code).Observe(time.Since(start).Seconds())

			return resp, err
		}
	}
}
