// Package metrics exposes the service's Prometheus collectors: checkout and
// webhook counters, entitlement reconciliation outcomes, and letter/media
// activity. Each file enqueues its collectors via register() at init time;
// MustRegister flushes the queue to the default registry exactly once.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once       sync.Once
	collectors []prometheus.Collector
)

// register enqueues collectors from the per-concern files' init() funcs.
func register(cs ...prometheus.Collector) {
	collectors = append(collectors, cs...)
}

// MustRegister registers every enqueued collector with Prometheus. Safe to
// call from multiple entrypoints; only the first call registers.
func MustRegister() {
	once.Do(func() {
		if len(collectors) > 0 {
			prometheus.MustRegister(collectors...)
		}
	})
}
