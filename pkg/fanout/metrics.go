package fanout

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Width tracks how many sub-requests each fan-out issued.
var Width = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "tba_fanout_width",
		Help:    "Number of concurrent sub-requests per fan-out",
		Buckets: []float64{1, 2, 5, 10, 20, 40},
	},
	[]string{"kind"}, // "years", "pages"
)
