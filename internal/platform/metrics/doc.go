// Package metrics defines the Prometheus collectors exposed on /metrics and
// small helpers to record them.
package metrics
