package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRegisterCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	RegisterCollectors(reg)
	RegisterStoredDocuments(reg, func(context.Context) (int64, error) { return 7, nil }, time.Second)

	DocumentsSaved.WithLabelValues("memory", "created").Inc()
	n, err := testutil.GatherAndCount(reg, "docstore_documents_saved_total", "docstore_stored_documents")
	require.NoError(t, err)
	require.Equal(t, 2, n)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() == "docstore_stored_documents" {
			require.Equal(t, 7.0, mf.GetMetric()[0].GetGauge().GetValue())
		}
	}
}

func storedDocuments(t *testing.T, reg *prometheus.Registry) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() == "docstore_stored_documents" {
			return mf.GetMetric()[0].GetGauge().GetValue()
		}
	}
	t.Fatal("docstore_stored_documents not gathered")
	return 0
}

func TestRegisterStoredDocuments_StalledCountTimesOut(t *testing.T) {
	reg := prometheus.NewRegistry()
	RegisterStoredDocuments(reg, func(ctx context.Context) (int64, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	}, 50*time.Millisecond)

	start := time.Now()
	require.Equal(t, -1.0, storedDocuments(t, reg))
	require.Less(t, time.Since(start), 5*time.Second)
}
