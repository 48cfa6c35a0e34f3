// Package metrics exposes identity pool activity as Prometheus counters.
//
// # Basic Usage
//
//	collector, err := metrics.NewCollector("users", prometheus.DefaultRegisterer)
//	if err != nil {
//		return err
//	}
//	pool, err := identity.New(cfg, identity.WithObserver(collector))
//
// Every pool event increments identity_pool_events_total with the pool name
// and event labels. Cleanup and eviction events add the number of affected
// entries rather than one.
package metrics

import (
	"errors"

	"github.com/goliatone/go-repository-identity/identity"
	"github.com/prometheus/client_golang/prometheus"
)

// Collector implements identity.Observer on top of a Prometheus CounterVec.
type Collector struct {
	name   string
	events *prometheus.CounterVec
}

var _ identity.Observer = (*Collector)(nil)

// NewCollector creates a collector labelled with name and registers its
// counters on reg. Registering the same counters twice reuses the existing
// ones, so several pools may share a registry.
func NewCollector(name string, reg prometheus.Registerer) (*Collector, error) {
	events := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "identity",
			Subsystem: "pool",
			Name:      "events_total",
			Help:      "Identity pool events by type.",
		},
		[]string{"pool", "event"},
	)

	if reg != nil {
		if err := reg.Register(events); err != nil {
			var already prometheus.AlreadyRegisteredError
			if !errors.As(err, &already) {
				return nil, err
			}
			existing, ok := already.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				return nil, err
			}
			events = existing
		}
	}

	return &Collector{name: name, events: events}, nil
}

// Observe implements identity.Observer.
func (c *Collector) Observe(event identity.Event, n int) {
	if n <= 0 {
		return
	}
	c.events.WithLabelValues(c.name, string(event)).Add(float64(n))
}
