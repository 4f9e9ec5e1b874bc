package metrics

// InitializeMetrics pre-populates the label combinations that would
// otherwise only appear after the first matching event, so every series
// is present from the first Prometheus scrape.
func InitializeMetrics() {
	for _, mode := range []string{"async", "sync"} {
		JobsSubmitted.WithLabelValues(mode)
	}
	for _, status := range []string{"done", "error"} {
		JobsCompleted.WithLabelValues(status)
	}
	for _, status := range []string{"success", "error"} {
		SourceDownloads.WithLabelValues(status)
	}
}
