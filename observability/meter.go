package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/walletmux/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	ServiceName    string
	ServiceVersion string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	Insecure bool
	Interval time.Duration
}

// InitMeter initializes the OpenTelemetry meter provider and installs it globally.
func InitMeter(ctx context.Context, config MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		logger.FieldEndpoint, config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the instruments recorded by the wallet proxy.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	requestTotal      metric.Int64Counter
	requestDuration   metric.Float64Histogram
	eventRelayed      metric.Int64Counter
	providerSwitch    metric.Int64Counter
	providerAnnounced metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	requestTotal, err := meter.Int64Counter("wallet.request.total",
		metric.WithDescription("Requests forwarded to the active wallet"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating wallet.request.total counter: %w", err)
	}

	requestDuration, err := meter.Float64Histogram("wallet.request.duration",
		metric.WithDescription("Duration of wallet requests in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating wallet.request.duration histogram: %w", err)
	}

	eventRelayed, err := meter.Int64Counter("wallet.event.relayed",
		metric.WithDescription("Wallet events re-emitted by the proxy"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating wallet.event.relayed counter: %w", err)
	}

	providerSwitch, err := meter.Int64Counter("wallet.provider.switch",
		metric.WithDescription("Active wallet selection changes"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating wallet.provider.switch counter: %w", err)
	}

	providerAnnounced, err := meter.Int64Counter("wallet.provider.announced",
		metric.WithDescription("Wallet announcements accepted by the registry"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating wallet.provider.announced counter: %w", err)
	}

	return &Metrics{
		requestTotal:      requestTotal,
		requestDuration:   requestDuration,
		eventRelayed:      eventRelayed,
		providerSwitch:    providerSwitch,
		providerAnnounced: providerAnnounced,
	}, nil
}

// RecordRequest records a completed wallet request.
func (m *Metrics) RecordRequest(ctx context.Context, provider, method, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("method", method),
		attribute.String("status", status),
	))
	m.requestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("method", method),
	))
}

// RecordEvent records one relayed wallet event.
func (m *Metrics) RecordEvent(ctx context.Context, provider, event string) {
	if m == nil {
		return
	}
	m.eventRelayed.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("event", event),
	))
}

// RecordSwitch records a change of the active wallet. An empty to means the selection was cleared.
func (m *Metrics) RecordSwitch(ctx context.Context, from, to string) {
	if m == nil {
		return
	}
	m.providerSwitch.Add(ctx, 1, metric.WithAttributes(
		attribute.String("from", from),
		attribute.String("to", to),
	))
}

// RecordAnnounce records an accepted wallet announcement.
func (m *Metrics) RecordAnnounce(ctx context.Context, provider string) {
	if m == nil {
		return
	}
	m.providerAnnounced.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", provider),
	))
}
