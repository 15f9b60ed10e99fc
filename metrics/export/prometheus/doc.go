// Package prometheus exposes goConsole engine counters to Prometheus.
//
// [NewCollector] wraps an engine as a prometheus.Collector that reads
// Engine.MetricsSnapshot on every scrape. [Exporter] registers it on a private registry
// and serves it through promhttp. Counter names are goconsole_*_total; the single
// histogram is goconsole_user_fetch_latency_seconds.
//
// # What this package must NOT do
//
//   - Register on the global Prometheus registry. Callers mount the Handler.
//   - Mutate engine state.
package prometheus
