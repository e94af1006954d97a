package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "deploy_networks"

var (
	// Registry holds every collector of this package. It is separate from the default
	// registry so tests and embedders get a clean set.
	Registry = prometheus.NewRegistry()

	ResolveTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "resolve_total",
		Help:      "Network lookups by result.",
	}, []string{"network", "result"})

	ProviderConstructions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "provider_constructions_total",
		Help:      "Provider factory invocations by result.",
	}, []string{"network", "result"})

	RPCDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "rpc_duration_seconds",
		Help:      "Duration of JSON-RPC calls against remote nodes.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"network", "method", "result"})

	NetworkUp = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "network_up",
		Help:      "1 if the last check of the network succeeded and the network id matched.",
	}, []string{"network"})

	registerOnce sync.Once
)

// MustRegisterMetrics registers all collectors on Registry. Safe to call more than once.
func MustRegisterMetrics() {
	registerOnce.Do(func() {
		Registry.MustRegister(
			ResolveTotal,
			ProviderConstructions,
			RPCDuration,
			NetworkUp,
			prometheus.NewGoCollector(),
		)
	})
}

// Result maps an error onto the "result" label.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveRPC records one RPC call started at start.
func ObserveRPC(network, method string, start time.Time, err error) {
	RPCDuration.WithLabelValues(network, method, Result(err)).Observe(time.Since(start).Seconds())
}

// SetNetworkUp sets the up gauge for network.
func SetNetworkUp(network string, up bool) {
	v := 0.0
	if up {
		v = 1
	}
	NetworkUp.WithLabelValues(network).Set(v)
}
