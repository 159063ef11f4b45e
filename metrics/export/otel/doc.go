// Package otel provides OpenTelemetry metric exporter bindings for
// authcore counters and histograms.
//
// [NewExporter] registers an Int64ObservableCounter per engine metric
// and Int64ObservableGauges per histogram bucket. A single callback
// reads [authcore.Engine.MetricsSnapshot] on each collection cycle.
//
// # What this package must NOT do
//
//   - Own the OTel MeterProvider — callers supply the Meter.
//   - Mutate engine state.
package otel
