package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes commission-level instruments. A nil *Metrics is a no-op.
type Metrics struct {
	quotes           metric.Int64Counter
	invalidAmounts   metric.Int64Counter
	settlements      metric.Int64Counter
	commissionAmount metric.Float64Histogram
	rateLimitDenied  metric.Int64Counter
}

// NewProvider configures and registers the meter provider. Domain
// instruments are always readable on reg; OTLP export is added when enabled.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger, reg prometheus.Registerer) (metric.MeterProvider, error) {
	var opts []sdkmetric.Option
	if reg != nil {
		promReader, err := otelprom.New(otelprom.WithRegisterer(reg))
		if err != nil {
			return nil, fmt.Errorf("create prometheus reader: %w", err)
		}
		opts = append(opts, sdkmetric.WithReader(promReader))
	}

	if cfg.Enabled {
		exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
		if err != nil {
			return nil, err
		}
		opts = append(opts, sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))))
	}

	if len(opts) == 0 {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	provider := sdkmetric.NewMeterProvider(opts...)
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.Bool("otlp_enabled", cfg.Enabled),
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "remag"
	}
	meter := provider.Meter(name)

	quotes, err := meter.Int64Counter("remag_commission_quotes_total")
	if err != nil {
		return nil, err
	}
	invalidAmounts, err := meter.Int64Counter("remag_commission_invalid_amount_total")
	if err != nil {
		return nil, err
	}
	settlements, err := meter.Int64Counter("remag_settlements_recorded_total")
	if err != nil {
		return nil, err
	}
	commissionAmount, err := meter.Float64Histogram("remag_commission_amount")
	if err != nil {
		return nil, err
	}
	rateLimitDenied, err := meter.Int64Counter("remag_rate_limit_denied_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		quotes:           quotes,
		invalidAmounts:   invalidAmounts,
		settlements:      settlements,
		commissionAmount: commissionAmount,
		rateLimitDenied:  rateLimitDenied,
	}, nil
}

// RecordQuote counts a computed quote by tier and clamping bound.
func (m *Metrics) RecordQuote(ctx context.Context, tier, bound string, commission float64) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("tier", strings.TrimSpace(tier)),
		attribute.String("bound", strings.TrimSpace(bound)),
	)
	m.quotes.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.commissionAmount.Record(ctx, commission, metric.WithAttributes(attrs...))
}

func (m *Metrics) RecordInvalidAmount(ctx context.Context, source string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("source", strings.TrimSpace(source)))
	m.invalidAmounts.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *Metrics) RecordSettlement(ctx context.Context, tier, bound string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("tier", strings.TrimSpace(tier)),
		attribute.String("bound", strings.TrimSpace(bound)),
	)
	m.settlements.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *Metrics) RecordRateLimitDenied(ctx context.Context, endpoint, reason string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("endpoint", strings.TrimSpace(endpoint)),
		attribute.String("reason", strings.TrimSpace(reason)),
	)
	m.rateLimitDenied.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(protocol)) {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{otlpmetrichttp.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"tier":        {},
	"bound":       {},
	"source":      {},
	"endpoint":    {},
	"status_code": {},
	"reason":      {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
