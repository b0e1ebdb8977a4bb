// Package metrics holds the Prometheus collectors for comparison sweeps and
// serves them on /metrics through Fiber.
package metrics
