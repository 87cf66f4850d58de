package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler serves the xhook registry, the default prometheus registry and any
// extra gatherers on one endpoint.
func Handler() http.Handler {
	g := prometheus.Gatherers{registry, prometheus.DefaultGatherer}
	if len(extraGatherers) > 0 {
		g = append(g, extraGatherers...)
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}
