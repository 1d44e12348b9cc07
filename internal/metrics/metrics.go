package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Metrics counts routed events and relay outcomes.
type Metrics struct {
	registry *prometheus.Registry
	events   *prometheus.CounterVec
	relays   *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "supportbot",
			Name:      "events_total",
			Help:      "Inbound messages by routing action.",
		}, []string{"action"}),
		relays: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "supportbot",
			Name:      "relays_total",
			Help:      "Relay attempts by direction and result.",
		}, []string{"direction", "result"}),
	}
	m.registry.MustRegister(m.events, m.relays)
	return m
}

func (m *Metrics) ObserveEvent(action string) {
	m.events.WithLabelValues(action).Inc()
}

func (m *Metrics) ObserveRelay(direction, result string) {
	m.relays.WithLabelValues(direction, result).Inc()
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string, logger *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("Metrics endpoint listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
