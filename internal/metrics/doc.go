// Package metrics exposes coordinator activity as Prometheus metrics.
package metrics
