// Package otel binds goConsole engine counters to OpenTelemetry observable instruments.
//
// [NewExporter] registers one Int64ObservableCounter per engine counter and one
// Int64ObservableGauge per latency bucket. A single callback reads the engine snapshot
// on each collection.
//
// The caller owns the MeterProvider; this package only takes a Meter.
package otel
