package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "dashd"

// IncrementalCounter counts occurrences by label values.
type IncrementalCounter interface {
	Increment(val ...string)
}

// Counter is an IncrementalCounter backed by a Prometheus counter vector.
type Counter struct {
	Name string
	Help string

	vec *prometheus.CounterVec
}

// Increment adds one to the series identified by val.
func (c *Counter) Increment(val ...string) {
	c.vec.WithLabelValues(val...).Inc()
}

// NewCounterWithRegistry creates a counter and registers it with reg.
func NewCounterWithRegistry(reg prometheus.Registerer, name, help string, labels ...string) *Counter {
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	}, labels)

	reg.MustRegister(counter)

	return &Counter{
		Name: name,
		Help: help,
		vec:  counter,
	}
}

// Metrics groups the counters reported by the dashboard.
type Metrics struct {
	// Requests counts HTTP requests by method and status code.
	Requests IncrementalCounter

	// UIEvents counts interface state transitions by event name.
	UIEvents IncrementalCounter

	// Logins counts login submissions by outcome.
	Logins IncrementalCounter
}

// Login submission outcomes.
const (
	LoginInvalid  = "invalid"
	LoginAccepted = "accepted"
	LoginRejected = "rejected"
	LoginPending  = "pending"
	LoginBusy     = "busy"
)

// NewMetrics creates the dashboard counters and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		Requests: NewCounterWithRegistry(reg, "http_requests_total",
			"HTTP requests handled, by method and status code.", "method", "code"),
		UIEvents: NewCounterWithRegistry(reg, "ui_events_total",
			"Interface state transitions, by event.", "event"),
		Logins: NewCounterWithRegistry(reg, "login_submissions_total",
			"Login form submissions, by outcome.", "outcome"),
	}
}

// GetHandlerForRegistry returns an HTTP handler serving the metrics of reg.
func GetHandlerForRegistry(reg prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
