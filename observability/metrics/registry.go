// Package metrics exposes the prometheus collectors xhook reports into.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// RegistryProvider abstracts the registry statistics exported by NewRegistryCollector.
type RegistryProvider interface {
	Points() int
	Callbacks() int
}

var (
	// Global registry (unified registration for all xhook collectors)
	registry = prometheus.NewRegistry()
	// Additional aggregation sources (host registries that cannot depend on this package)
	extraGatherers []prometheus.Gatherer
)

// RegisterGatherer injects a host-owned registry into the Handler output.
func RegisterGatherer(g prometheus.Gatherer) {
	if g == nil {
		return
	}
	extraGatherers = append(extraGatherers, g)
}

// RegisterCollector registers a Collector to the global registry
func RegisterCollector(c prometheus.Collector) error {
	return registry.Register(c)
}

// UnregisterCollector removes a Collector from the global registry
func UnregisterCollector(c prometheus.Collector) bool {
	return registry.Unregister(c)
}

// Gatherer returns the global registry together with registered extra gatherers.
func Gatherer() prometheus.Gatherer {
	g := prometheus.Gatherers{registry}
	return append(g, extraGatherers...)
}

// registryCollector adapts RegistryProvider to two gauges:
// - xhook_hook_points{bridge}
// - xhook_hook_callbacks{bridge}
type registryCollector struct {
	rp            RegistryProvider
	pointsDesc    *prometheus.Desc
	callbacksDesc *prometheus.Desc
}

// NewRegistryCollector exports the size of an interception registry.
func NewRegistryCollector(bridge string, rp RegistryProvider) prometheus.Collector {
	constLabels := prometheus.Labels{"bridge": bridge}
	return &registryCollector{
		rp: rp,
		pointsDesc: prometheus.NewDesc(
			"xhook_hook_points",
			"Number of interception points with an installed trampoline",
			nil, constLabels,
		),
		callbacksDesc: prometheus.NewDesc(
			"xhook_hook_callbacks",
			"Number of registered hook callbacks across all points",
			nil, constLabels,
		),
	}
}

func (c *registryCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.pointsDesc
	ch <- c.callbacksDesc
}

func (c *registryCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.pointsDesc, prometheus.GaugeValue, float64(c.rp.Points()))
	ch <- prometheus.MustNewConstMetric(c.callbacksDesc, prometheus.GaugeValue, float64(c.rp.Callbacks()))
}
