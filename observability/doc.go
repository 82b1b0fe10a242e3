// Package observability wires OpenTelemetry metrics and traces for walletmux.
//
// Setup installs OTLP/HTTP exporters when telemetry is enabled; otherwise the
// global no-op providers stay in place and every instrument is free to call.
// Metrics groups the counters and histograms recorded by the provider proxy.
package observability
