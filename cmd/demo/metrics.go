package main

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector is the demo driver's Prometheus surface: a handful of gauges
// and counters describing book depth and latency, refreshed by refreshMetrics
// (main.go). Modeled on the metrics collector pattern from the exchange
// examples, trimmed to what this single-symbol book actually exposes.
type Collector struct {
	OrdersResting  prometheus.Gauge
	TradesTotal    prometheus.Counter
	RejectedTotal  *prometheus.CounterVec
	MatchLatencyUs prometheus.Gauge
}

var (
	collector     *Collector
	collectorOnce sync.Once
)

// GetCollector returns the singleton metrics collector, registering it
// with the default Prometheus registry on first use.
func GetCollector() *Collector {
	collectorOnce.Do(func() {
		collector = newCollector()
	})
	return collector
}

func newCollector() *Collector {
	c := &Collector{
		OrdersResting: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "matchbook",
			Name:      "orders_resting",
			Help:      "Number of orders currently resting in the book.",
		}),
		TradesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "matchbook",
			Name:      "trades_total",
			Help:      "Total number of trades executed.",
		}),
		RejectedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "matchbook",
			Name:      "rejected_total",
			Help:      "Total number of orders refused at admission, by reason.",
		}, []string{"reason"}),
		MatchLatencyUs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "matchbook",
			Name:      "match_latency_us_mean",
			Help:      "Mean per-trade matching latency in microseconds.",
		}),
	}

	prometheus.MustRegister(c.OrdersResting)
	prometheus.MustRegister(c.TradesTotal)
	prometheus.MustRegister(c.RejectedTotal)
	prometheus.MustRegister(c.MatchLatencyUs)

	return c
}
