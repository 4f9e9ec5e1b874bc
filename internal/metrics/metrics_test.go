package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsExist(t *testing.T) {
	tests := []struct {
		name   string
		metric interface{}
	}{
		{"HTTPRequestsTotal", HTTPRequestsTotal},
		{"HTTPRequestDuration", HTTPRequestDuration},
		{"HTTPRequestsInFlight", HTTPRequestsInFlight},
		{"JobsSubmitted", JobsSubmitted},
		{"JobsCompleted", JobsCompleted},
		{"JobDuration", JobDuration},
		{"QueueDepth", QueueDepth},
		{"SourceCacheHits", SourceCacheHits},
		{"SourceCacheMisses", SourceCacheMisses},
		{"SourceDownloads", SourceDownloads},
		{"SourceDownloadDuration", SourceDownloadDuration},
		{"BatchResets", BatchResets},
		{"BatchCounter", BatchCounter},
		{"AppInfo", AppInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.metric == nil {
				t.Errorf("%s metric is nil", tt.name)
			}
		})
	}
}

func TestInitializeMetricsPopulatesLabels(t *testing.T) {
	InitializeMetrics()

	// Pre-populated series exist with zero values before any event.
	for _, mode := range []string{"async", "sync"} {
		if got := testutil.ToFloat64(JobsSubmitted.WithLabelValues(mode)); got < 0 {
			t.Errorf("JobsSubmitted[%s] = %v, want >= 0", mode, got)
		}
	}
	for _, status := range []string{"done", "error"} {
		if got := testutil.ToFloat64(JobsCompleted.WithLabelValues(status)); got < 0 {
			t.Errorf("JobsCompleted[%s] = %v, want >= 0", status, got)
		}
	}
}

func TestSetAppInfo(t *testing.T) {
	SetAppInfo("test-version", "test-commit", "go1.25")

	got := testutil.ToFloat64(AppInfo.WithLabelValues("test-version", "test-commit", "go1.25"))
	if got != 1 {
		t.Errorf("AppInfo = %v, want 1", got)
	}
}

func TestQueueDepthGauge(t *testing.T) {
	QueueDepth.Set(0)
	QueueDepth.Inc()
	QueueDepth.Inc()
	QueueDepth.Dec()

	if got := testutil.ToFloat64(QueueDepth); got != 1 {
		t.Errorf("QueueDepth = %v, want 1", got)
	}
	QueueDepth.Set(0)
}
