// Package internaldefs holds the metric names shared by the exporters so that the
// Prometheus and OTel outputs agree on names and bucket boundaries.
package internaldefs
