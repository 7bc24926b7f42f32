// Package metrics exports control-channel activity to Prometheus.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rbright/wpactrl/internal/ctrlerr"
	"github.com/rbright/wpactrl/internal/event"
)

// Registry holds the engine metrics. It satisfies wpactrl.Observer.
type Registry struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	EventsTotal     *prometheus.CounterVec
	EventsDropped   prometheus.Counter

	gatherer prometheus.Gatherer
}

// New registers the engine metrics on a fresh registry.
func New() *Registry {
	reg := prometheus.NewRegistry()
	return NewWith(reg, reg)
}

// NewWith registers the engine metrics on reg and serves them from gatherer.
func NewWith(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Registry {
	factory := promauto.With(reg)
	r := &Registry{gatherer: gatherer}

	r.RequestsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "wpactrl_requests_total",
		Help: "Control commands sent, by verb and outcome",
	}, []string{"verb", "result"})

	r.RequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wpactrl_request_duration_seconds",
		Help:    "Time from send to reply for control commands",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
	}, []string{"verb"})

	r.EventsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "wpactrl_events_total",
		Help: "Events received from the daemon, by event name",
	}, []string{"name"})

	r.EventsDropped = factory.NewCounter(prometheus.CounterOpts{
		Name: "wpactrl_events_dropped_total",
		Help: "Events evicted from a full event queue",
	})

	return r
}

// ObserveRequest records one exchange.
func (r *Registry) ObserveRequest(verb string, elapsed time.Duration, err error) {
	r.RequestsTotal.WithLabelValues(verb, Result(err)).Inc()
	if err == nil {
		r.RequestDuration.WithLabelValues(verb).Observe(elapsed.Seconds())
	}
}

// ObserveEvent counts one event by name.
func (r *Registry) ObserveEvent(ev event.Event) {
	name := ev.Name
	if name == "" {
		name = "unknown"
	}
	r.EventsTotal.WithLabelValues(name).Inc()
}

// ObserveDroppedEvent counts one evicted event.
func (r *Registry) ObserveDroppedEvent() {
	r.EventsDropped.Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}

// Result is the outcome label for err.
func Result(err error) string {
	if err == nil {
		return "ok"
	}
	var e *ctrlerr.Error
	if !errors.As(err, &e) {
		return "error"
	}
	switch e.Kind {
	case ctrlerr.KindTimeout:
		return "timeout"
	case ctrlerr.KindPeerGone:
		return "peer_gone"
	case ctrlerr.KindProtocolViolation:
		return "protocol_violation"
	case ctrlerr.KindWouldBlock:
		return "would_block"
	default:
		return "error"
	}
}
