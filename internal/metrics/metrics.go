// Package metrics exposes Prometheus metrics for chatgate.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Chat turn outcomes.
const (
	OutcomeOK            = "ok"
	OutcomeUnauthorized  = "unauthorized"
	OutcomeInvalid       = "invalid"
	OutcomeQuotaExceeded = "quota_exceeded"
	OutcomeProviderError = "provider_error"
	OutcomeSessionBusy   = "session_busy"
)

// Metrics holds all Prometheus metrics. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	ChatTurns        *prometheus.CounterVec
	VerifyAttempts   *prometheus.CounterVec
	ProviderDuration *prometheus.HistogramVec
	SessionsEvicted  prometheus.Counter

	registry *prometheus.Registry
}

// New creates a collector on its own registry. sessionCount, if non-nil,
// backs the active sessions gauge.
func New(sessionCount func() int) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	m := &Metrics{
		registry: reg,

		ChatTurns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatgate_chat_turns_total",
				Help: "Chat requests by outcome",
			},
			[]string{"outcome"},
		),
		VerifyAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatgate_verify_total",
				Help: "Password verification attempts by result",
			},
			[]string{"result"},
		),
		ProviderDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "chatgate_provider_request_duration_seconds",
				Help:    "Completion provider call duration in seconds",
				Buckets: []float64{.1, .25, .5, 1, 2, 5, 10, 20, 30, 60},
			},
			[]string{"outcome"},
		),
		SessionsEvicted: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "chatgate_sessions_evicted_total",
				Help: "Sessions removed by the idle sweeper",
			},
		),
	}

	if sessionCount != nil {
		factory.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "chatgate_sessions_active",
				Help: "Sessions currently held in memory",
			},
			func() float64 { return float64(sessionCount()) },
		)
	}

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveChatTurn counts one chat request outcome.
func (m *Metrics) ObserveChatTurn(outcome string) {
	if m == nil {
		return
	}
	m.ChatTurns.WithLabelValues(outcome).Inc()
}

// ObserveVerify counts one password verification.
func (m *Metrics) ObserveVerify(ok bool) {
	if m == nil {
		return
	}
	result := "rejected"
	if ok {
		result = "accepted"
	}
	m.VerifyAttempts.WithLabelValues(result).Inc()
}

// ObserveProvider records the duration of one provider call. outcome is
// "ok" or the provider error kind.
func (m *Metrics) ObserveProvider(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.ProviderDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

// ObserveEvictions counts sessions removed by one sweep.
func (m *Metrics) ObserveEvictions(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.SessionsEvicted.Add(float64(n))
}
