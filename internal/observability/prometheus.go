package observability

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// meterName scopes the instruments created through this package.
const meterName = "github.com/Sumatoshi-tech/treeq"

// Exporter bundles a meter whose instruments are collected into a
// Prometheus registry and the http.Handler serving the scrape endpoint.
type Exporter struct {
	Meter   metric.Meter
	Handler http.Handler

	provider *sdkmetric.MeterProvider
}

// NewPrometheusExporter creates an OTel meter bridged to a fresh
// Prometheus registry. Each call creates an independent registry to avoid
// collector conflicts when called multiple times.
func NewPrometheusExporter() (*Exporter, error) {
	registry := prometheus.NewRegistry()

	exporter, err := promexporter.New(
		promexporter.WithRegisterer(registry),
	)
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))

	return &Exporter{
		Meter:    provider.Meter(meterName),
		Handler:  promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		provider: provider,
	}, nil
}

// Shutdown flushes and stops the meter provider.
func (e *Exporter) Shutdown(ctx context.Context) error {
	return e.provider.Shutdown(ctx)
}
