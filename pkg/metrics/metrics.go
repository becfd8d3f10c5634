// Package metrics exposes the Prometheus metrics of the TBA client.
// Metrics are defined in their owning packages (client, cache, fanout) and
// registered via promauto; this package serves and documents them.
package metrics

import (
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the registerer all TBA metrics are registered with.
var Registry = prometheus.DefaultRegisterer

// Gatherer is the gatherer Handler serves from.
var Gatherer prometheus.Gatherer = prometheus.DefaultGatherer

// Prefix is shared by every metric this module defines.
const Prefix = "tba_"

// Names lists the metric families defined by this module.
var Names = []string{
	"tba_requests_total",
	"tba_request_duration_seconds",
	"tba_errors_total",
	"tba_cache_hits_total",
	"tba_cache_misses_total",
	"tba_conditional_requests_total",
	"tba_304_responses_total",
	"tba_cache_errors_total",
	"tba_fanout_width",
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Snapshot returns the TBA metric families currently exported. Vectors with
// no observed label set are absent.
func Snapshot() (map[string]float64, error) {
	families, err := Gatherer.Gather()
	if err != nil {
		return nil, err
	}

	out := make(map[string]float64)
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), Prefix) {
			continue
		}
		var sum float64
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				sum += m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				sum += m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				sum += float64(m.GetHistogram().GetSampleCount())
			}
		}
		out[mf.GetName()] = sum
	}
	return out, nil
}

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - tba_requests_total{endpoint, status} (Counter): requests by endpoint template and HTTP status
//   - tba_request_duration_seconds{endpoint} (Histogram): request latency
//   - tba_errors_total{class} (Counter): errors by class (client, server, rate_limit, network, upstream)
//
// Cache Metrics (pkg/cache):
//   - tba_cache_hits_total (Counter): fresh entries served without a request
//   - tba_cache_misses_total (Counter): lookups without a stored entry
//   - tba_conditional_requests_total (Counter): revalidations sent with If-None-Match / If-Modified-Since
//   - tba_304_responses_total (Counter): revalidations answered 304
//   - tba_cache_errors_total{operation} (Counter): Redis failures
//
// Fan-out Metrics (pkg/fanout):
//   - tba_fanout_width{kind} (Histogram): sub-requests per multi-year / multi-page call
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(tba_cache_hits_total[5m])) /
//   (sum(rate(tba_cache_hits_total[5m])) + sum(rate(tba_cache_misses_total[5m])))
//
//   # Upstream error rate by class
//   sum by (class) (rate(tba_errors_total[5m]))
//
//   # P95 Request Latency
//   histogram_quantile(0.95, sum by (le) (rate(tba_request_duration_seconds_bucket[5m])))
//
//   # Revalidation savings
//   rate(tba_304_responses_total[5m]) / rate(tba_requests_total[5m])
