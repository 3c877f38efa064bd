// Package metrics exposes retention counters in Prometheus format on a
// private registry.
package metrics
