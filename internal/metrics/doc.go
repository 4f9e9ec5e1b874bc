// Package metrics defines the Prometheus metrics exported by the clip
// service: HTTP traffic, job pipeline progress, source cache activity
// and batch bookkeeping.
package metrics
