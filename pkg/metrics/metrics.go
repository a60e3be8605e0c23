package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	DocumentsSaved = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "docstore", Name: "documents_saved_total", Help: "Number of saved documents by backend and outcome (created|upserted)."},
		[]string{"backend", "outcome"},
	)
	DocumentLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "docstore", Name: "document_lookups_total", Help: "Number of lookups by id by backend and result (hit|miss)."},
		[]string{"backend", "result"},
	)
	SearchResults = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: "docstore", Name: "search_results", Help: "Number of documents returned per search.", Buckets: prometheus.ExponentialBuckets(1, 4, 6)},
		[]string{"backend"},
	)
	BackendErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "docstore", Name: "backend_errors_total", Help: "Number of failed storage operations by backend and operation."},
		[]string{"backend", "op"},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "docstore", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "docstore", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(DocumentsSaved)
	reg.MustRegister(DocumentLookups)
	reg.MustRegister(SearchResults)
	reg.MustRegister(BackendErrors)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
}

// RegisterStoredDocuments exposes the document count reported by count.
// Each scrape gives count at most timeout; a failed count reads as -1.
func RegisterStoredDocuments(reg prometheus.Registerer, count func(context.Context) (int64, error), timeout time.Duration) {
	reg.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{Namespace: "docstore", Name: "stored_documents", Help: "Number of documents currently stored."},
		func() float64 {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			n, err := count(ctx)
			if err != nil {
				return -1
			}
			return float64(n)
		},
	))
}
