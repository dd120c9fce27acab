package wanted

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PagesFetched tracks listing pages requested across aggregation runs
	PagesFetched = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sonarr_wanted_pages_fetched_total",
			Help: "Total number of wanted-missing pages fetched",
		},
	)

	// RecordsEmitted tracks normalized records yielded to consumers
	RecordsEmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sonarr_wanted_records_emitted_total",
			Help: "Total number of normalized records emitted",
		},
	)

	// RecordsSkipped tracks records dropped before emission by reason
	RecordsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sonarr_wanted_records_skipped_total",
			Help: "Total number of records skipped before emission",
		},
		[]string{"reason"}, // "limit", "invalid"
	)
)
