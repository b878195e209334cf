// Package observability provides the Prometheus metrics of the game server.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics contains the game server's Prometheus metrics. A nil *Metrics
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	CommandsTotal   *prometheus.CounterVec
	SessionsCreated prometheus.Counter
	SessionsActive  prometheus.Gauge
	GamesFinished   *prometheus.CounterVec
	RequestsTotal   *prometheus.CounterVec
}

// NewMetrics creates the metrics on a fresh registry that also carries the
// standard Go and process collectors.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: registry,
		CommandsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "campus_quest_commands_total",
				Help: "Total number of game commands by action and result",
			},
			[]string{"action", "result"},
		),
		SessionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "campus_quest_sessions_created_total",
			Help: "Total number of game sessions created",
		}),
		SessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "campus_quest_sessions_active",
			Help: "Number of game sessions currently held in memory",
		}),
		GamesFinished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "campus_quest_games_finished_total",
				Help: "Total number of finished games by status and reason",
			},
			[]string{"status", "reason"},
		),
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "campus_quest_http_requests_total",
				Help: "Total number of HTTP requests by method, route and status code",
			},
			[]string{"method", "route", "code"},
		),
	}

	registry.MustRegister(m.CommandsTotal)
	registry.MustRegister(m.SessionsCreated)
	registry.MustRegister(m.SessionsActive)
	registry.MustRegister(m.GamesFinished)
	registry.MustRegister(m.RequestsTotal)

	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordCommand counts one command.
func (m *Metrics) RecordCommand(action string, ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "rejected"
	}
	m.CommandsTotal.WithLabelValues(action, result).Inc()
}

// SessionCreated counts a new session.
func (m *Metrics) SessionCreated() {
	if m == nil {
		return
	}
	m.SessionsCreated.Inc()
	m.SessionsActive.Inc()
}

// SessionsRemoved lowers the active gauge.
func (m *Metrics) SessionsRemoved(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.SessionsActive.Sub(float64(n))
}

// GameFinished counts a finished game.
func (m *Metrics) GameFinished(status, reason string) {
	if m == nil {
		return
	}
	m.GamesFinished.WithLabelValues(status, reason).Inc()
}

// RecordRequest counts one HTTP request.
func (m *Metrics) RecordRequest(method, route, code string) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, route, code).Inc()
}
