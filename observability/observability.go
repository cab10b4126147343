package observability

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// ConfigureLogger sets the global zerolog level and output writer.
func ConfigureLogger(level string, w io.Writer) error {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("unknown log level %s: %w", level, err)
	}

	zerolog.SetGlobalLevel(parsed)
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
	return nil
}

// InitMetricProvider sets up the OTLP metric pipeline. An empty collector URL
// yields a provider without readers, so instruments become no-ops.
func InitMetricProvider(ctx context.Context, collectorURL string) (*sdkmetric.MeterProvider, error) {
	if collectorURL == "" {
		provider := sdkmetric.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	u, err := url.Parse(collectorURL)
	if err != nil {
		return nil, fmt.Errorf("invalid collector URL %s: %w", collectorURL, err)
	}

	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(u.Host),
	}
	if u.Scheme == "http" {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, err
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
	)
	otel.SetMeterProvider(provider)
	return provider, nil
}
