package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the collectors of the index and the retriever. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	ImagesIndexed       prometheus.Counter
	RecordsIndexed      prometheus.Counter
	RegionsSkipped      prometheus.Counter
	Buckets             prometheus.Gauge
	Queries             *prometheus.CounterVec
	QueryVotes          prometheus.Histogram
	AggregationDuration prometheus.Histogram
}

func NewMetrics(registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		ImagesIndexed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "spsearch_images_indexed_total",
			Help: "Total number of images inserted into the index",
		}),
		RecordsIndexed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "spsearch_records_indexed_total",
			Help: "Total number of region records appended to buckets",
		}),
		RegionsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "spsearch_regions_skipped_total",
			Help: "Total number of empty or unindexable regions skipped on insert",
		}),
		Buckets: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "spsearch_buckets",
			Help: "Number of non-empty buckets in the index",
		}),
		Queries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "spsearch_queries_total",
				Help: "Total number of retrievals by outcome",
			},
			[]string{"outcome"},
		),
		QueryVotes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "spsearch_query_votes",
			Help:    "Votes cast per retrieval",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		}),
		AggregationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "spsearch_aggregation_duration_seconds",
			Help:    "Duration of a single region aggregation pass",
			Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		}),
	}

	if registerer != nil {
		registerer.MustRegister(
			m.ImagesIndexed,
			m.RecordsIndexed,
			m.RegionsSkipped,
			m.Buckets,
			m.Queries,
			m.QueryVotes,
			m.AggregationDuration,
		)
	}

	return m
}

func (this *Metrics) ObserveInsert(records, skipped int, buckets int) {
	if this == nil {
		return
	}
	this.ImagesIndexed.Inc()
	this.RecordsIndexed.Add(float64(records))
	this.RegionsSkipped.Add(float64(skipped))
	this.Buckets.Set(float64(buckets))
}

func (this *Metrics) ObserveQuery(votes uint64, matched bool) {
	if this == nil {
		return
	}
	outcome := "no_match"
	if matched {
		outcome = "match"
	}
	this.Queries.WithLabelValues(outcome).Inc()
	this.QueryVotes.Observe(float64(votes))
}

func (this *Metrics) ObserveAggregation(d time.Duration) {
	if this == nil {
		return
	}
	this.AggregationDuration.Observe(d.Seconds())
}
