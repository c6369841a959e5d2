// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SearchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "talent_searches_total",
			Help: "Total number of talent searches by outcome",
		},
		[]string{"status"},
	)

	SearchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "talent_search_duration_seconds",
			Help: "Duration of the full search pipeline in seconds",
		},
	)

	CandidatesScored = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "talent_candidates_scored_total",
			Help: "Total number of candidates run through the match scorer",
		},
	)

	MergeCommitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "talent_merge_commits_total",
			Help: "Total CV merge commit attempts by entity kind and outcome",
		},
		[]string{"kind", "status"},
	)

	CatalogCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "talent_catalog_cache_requests_total",
			Help: "Skill catalog cache lookups by result",
		},
		[]string{"result"},
	)
)
