// Package telemetry wires AtomKV's Prometheus registry, grounded on
// the pack's telemetry/metrics.go: a package-level Registry, one
// metric var per concern, registered in init, exposed through a
// promhttp handler.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Registry = prometheus.NewRegistry()

	HitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "atomkv",
		Name:      "hits_total",
		Help:      "Total number of GET/MGET hits.",
	})

	MissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "atomkv",
		Name:      "misses_total",
		Help:      "Total number of GET/MGET misses.",
	})

	EvictionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "atomkv",
		Name:      "evictions_total",
		Help:      "Total number of keys evicted by the LRU policy.",
	})

	Keys = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "atomkv",
		Name:      "keys",
		Help:      "Current number of stored keys, including expired keys not yet removed.",
	})

	Capacity = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "atomkv",
		Name:      "capacity",
		Help:      "Configured maximum number of keys.",
	})

	DCLQueueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "atomkv",
		Name:      "dcl_queue_depth",
		Help:      "Number of records currently buffered in the durable command log queue.",
	})

	CommandsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "atomkv",
		Name:      "tcp_commands_total",
		Help:      "Total number of TCP commands handled, by verb and outcome.",
	}, []string{"verb", "outcome"})

	startTime = time.Now()
	uptime    = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "atomkv",
		Name:      "uptime_seconds",
		Help:      "Process uptime in seconds.",
	}, func() float64 { return time.Since(startTime).Seconds() })
)

func init() {
	Registry.MustRegister(
		HitsTotal, MissesTotal, EvictionsTotal,
		Keys, Capacity, DCLQueueDepth, CommandsTotal,
		uptime,
	)
}

// Handler exposes the Prometheus exposition format for /debug/metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Sample pulls one reading from the store into the gauges/counters
// above. Store's own atomic fields are the source of truth and never
// reset, so the counters here are reconciled to the latest cumulative
// total on every poll rather than incremented per event.
var lastHits, lastMisses, lastEvictions uint64

func Sample(keys int64, capacity int, hits, misses, evictions uint64, queueDepth int) {
	Keys.Set(float64(keys))
	Capacity.Set(float64(capacity))
	DCLQueueDepth.Set(float64(queueDepth))

	if hits > lastHits {
		HitsTotal.Add(float64(hits - lastHits))
	}
	lastHits = hits

	if misses > lastMisses {
		MissesTotal.Add(float64(misses - lastMisses))
	}
	lastMisses = misses

	if evictions > lastEvictions {
		EvictionsTotal.Add(float64(evictions - lastEvictions))
	}
	lastEvictions = evictions
}
