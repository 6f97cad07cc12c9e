// Package metrics exposes Prometheus metrics for HTTP traffic and workflow
// outcomes.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mtlprog/floatingagent/internal/domain"
)

const namespace = "floatingagent"

// Metrics holds all Prometheus metrics of the proxy on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Workflow metrics
	WorkflowRuns    *prometheus.CounterVec
	WorkflowSteps   *prometheus.CounterVec
	WorkflowsActive prometheus.Gauge
}

// New creates the metrics and registers them together with the Go runtime
// and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"method", "route"},
		),

		WorkflowRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "workflow_runs_total",
				Help:      "Finished workflow runs by kind and outcome",
			},
			[]string{"kind", "status"},
		),
		WorkflowSteps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "workflow_steps_total",
				Help:      "Workflow steps by name and outcome",
			},
			[]string{"step", "status"},
		),
		WorkflowsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "workflows_active",
				Help:      "Workflow runs currently in progress",
			},
		),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRequest records one served HTTP request. An empty route means no
// pattern matched.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// StartRun, RecordStep and FinishRun let Metrics act as a workflow journal.

func (m *Metrics) StartRun(_ context.Context, _ *domain.WorkflowRun) error {
	m.WorkflowsActive.Inc()
	return nil
}

func (m *Metrics) RecordStep(_ context.Context, step *domain.WorkflowStep) error {
	m.WorkflowSteps.WithLabelValues(step.Name, string(step.Status)).Inc()
	return nil
}

func (m *Metrics) FinishRun(_ context.Context, run *domain.WorkflowRun) error {
	m.WorkflowsActive.Dec()
	m.WorkflowRuns.WithLabelValues(string(run.Kind), string(run.Status)).Inc()
	return nil
}
