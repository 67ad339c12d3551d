// Package metricsvc exposes the app metrics to prometheus.
package metricsvc

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/trezcool/academia/core/student"
)

const namespace = "academia"

type Metrics struct {
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	runs            *prometheus.CounterVec
	runDuration     *prometheus.HistogramVec
	students        *prometheus.CounterVec
}

var _ student.Recorder = (*Metrics)(nil)

// New registers the app metrics with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latencies by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_runs_total",
			Help:      "Promotion and inactivity runs.",
		}, []string{"job"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_run_duration_seconds",
			Help:      "Promotion and inactivity run durations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"job"}),
		students: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_students_total",
			Help:      "Students processed by the promotion and inactivity runs, by outcome.",
		}, []string{"job", "outcome"}),
	}

	for _, c := range []prometheus.Collector{m.requests, m.requestDuration, m.runs, m.runDuration, m.students} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) ObservePromotion(res student.PromotionResult, took time.Duration) {
	const job = "promotion"
	m.runs.WithLabelValues(job).Inc()
	m.runDuration.WithLabelValues(job).Observe(took.Seconds())
	m.students.WithLabelValues(job, "promoted").Add(float64(res.Promoted))
	m.students.WithLabelValues(job, "repeated").Add(float64(res.Repeated))
	m.students.WithLabelValues(job, "skipped").Add(float64(res.Skipped))
	m.students.WithLabelValues(job, "failed").Add(float64(res.Failed))
}

func (m *Metrics) ObserveSweep(res student.SweepResult, took time.Duration) {
	const job = "inactivity"
	m.runs.WithLabelValues(job).Inc()
	m.runDuration.WithLabelValues(job).Observe(took.Seconds())
	m.students.WithLabelValues(job, "inactive").Add(float64(res.Inactive))
	m.students.WithLabelValues(job, "activated").Add(float64(res.Activated))
	m.students.WithLabelValues(job, "failed").Add(float64(res.Failed))
}

// Middleware records the requests handled by echo, by route template.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			start := time.Now()
			err := next(ctx)

			// let the error handler pick the status code
			if err != nil {
				ctx.Error(err)
			}
			route := ctx.Path()
			if route == "" {
				route = "unknown"
			}
			method := ctx.Request().Method
			m.requests.WithLabelValues(route, method, strconv.Itoa(ctx.Response().Status)).Inc()
			m.requestDuration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
			return nil
		}
	}
}
