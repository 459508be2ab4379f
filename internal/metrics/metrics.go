// Package metrics tracks the process-wide registration counters. The
// four legacy counters feed the final shutdown stats line; the same
// increments are mirrored onto Prometheus collectors served by the ops
// sidecar.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/zotreg/internal/models"
)

// Service owns a private Prometheus registry plus the exact counters the
// shutdown report prints.
type Service struct {
	registry *prometheus.Registry
	handler  http.Handler

	clientsTotal   prometheus.Counter
	sessionsTotal  prometheus.Counter
	enrollsTotal   prometheus.Counter
	dropsTotal     prometheus.Counter
	activeSessions prometheus.Gauge

	mu    sync.Mutex
	stats models.Stats
}

// NewService registers the core collectors.
func NewService() *Service {
	registry := prometheus.NewRegistry()

	clientsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "zotreg_clients_total",
		Help: "Total client connections accepted",
	})
	sessionsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "zotreg_sessions_total",
		Help: "Total session goroutines spawned",
	})
	enrollsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "zotreg_enrolls_total",
		Help: "Successful enrollments, wait-list promotions included",
	})
	dropsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "zotreg_drops_total",
		Help: "Successful course drops",
	})
	activeSessions := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "zotreg_active_sessions",
		Help: "Sessions currently serving a connection",
	})

	registry.MustRegister(clientsTotal, sessionsTotal, enrollsTotal, dropsTotal, activeSessions)

	return &Service{
		registry:       registry,
		handler:        promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		clientsTotal:   clientsTotal,
		sessionsTotal:  sessionsTotal,
		enrollsTotal:   enrollsTotal,
		dropsTotal:     dropsTotal,
		activeSessions: activeSessions,
	}
}

// Handler exposes the registry for the ops sidecar.
func (s *Service) Handler() http.Handler {
	return s.handler
}

// ClientConnected counts an accepted login and its session goroutine.
func (s *Service) ClientConnected() {
	s.mu.Lock()
	s.stats.Clients++
	s.stats.Sessions++
	s.mu.Unlock()

	s.clientsTotal.Inc()
	s.sessionsTotal.Inc()
	s.activeSessions.Inc()
}

// SessionEnded marks a session goroutine as finished.
func (s *Service) SessionEnded() {
	s.activeSessions.Dec()
}

// EnrollCommitted counts a successful enrollment or promotion.
func (s *Service) EnrollCommitted() {
	s.mu.Lock()
	s.stats.Adds++
	s.mu.Unlock()

	s.enrollsTotal.Inc()
}

// DropCommitted counts a successful drop.
func (s *Service) DropCommitted() {
	s.mu.Lock()
	s.stats.Drops++
	s.mu.Unlock()

	s.dropsTotal.Inc()
}

// Snapshot returns the aggregate counters for the shutdown report.
func (s *Service) Snapshot() models.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}
