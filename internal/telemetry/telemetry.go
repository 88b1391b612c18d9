// Package telemetry wires the OpenTelemetry SDK for notesync.
//
// When enabled it installs global tracer and meter providers backed by
// an OTLP gRPC exporter, so the spans and counters recorded by the sync
// and gitlab packages reach a collector. When disabled the globals stay
// no-op and instrumented code costs nothing.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// shutdownTimeout bounds the final telemetry flush.
const shutdownTimeout = 5 * time.Second

// Config holds OTLP export settings.
type Config struct {
	Enabled    bool    `koanf:"enabled"`
	Endpoint   string  `koanf:"endpoint"` // collector host:port
	Insecure   bool    `koanf:"insecure"`
	SampleRate float64 `koanf:"sample_rate"` // 0.0-1.0 trace sampling

	// ExportIntervalSeconds is the metric push period.
	ExportIntervalSeconds int `koanf:"export_interval_seconds"`
}

// DefaultConfig returns telemetry defaults. Disabled by default so users
// without a collector are unaffected.
func DefaultConfig() Config {
	return Config{
		Enabled:               false,
		Endpoint:              "localhost:4317",
		Insecure:              true,
		SampleRate:            1.0,
		ExportIntervalSeconds: 15,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Endpoint == "" {
		return errors.New("telemetry endpoint is required when enabled")
	}
	if c.SampleRate < 0 || c.SampleRate > 1 {
		return fmt.Errorf("telemetry sample_rate must be between 0 and 1, got %g", c.SampleRate)
	}
	if c.ExportIntervalSeconds <= 0 {
		return errors.New("telemetry export_interval_seconds must be positive")
	}
	return nil
}

// Telemetry owns the installed providers and shuts them down on exit.
type Telemetry struct {
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
}

// New installs global OpenTelemetry providers per cfg.
//
// With cfg.Enabled false it returns an inert instance and leaves the
// no-op globals in place.
func New(ctx context.Context, cfg Config, version string) (*Telemetry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	t := &Telemetry{}
	if !cfg.Enabled {
		return t, nil
	}

	res := newResource(version)

	tp, err := newTracerProvider(ctx, cfg, res)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer provider: %w", err)
	}
	t.tracerProvider = tp
	otel.SetTracerProvider(tp)

	mp, err := newMeterProvider(ctx, cfg, res)
	if err != nil {
		return nil, fmt.Errorf("failed to create meter provider: %w", err)
	}
	t.meterProvider = mp
	otel.SetMeterProvider(mp)

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return t, nil
}

// Shutdown flushes and stops the installed providers.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil {
		return nil
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, shutdownTimeout)
		defer cancel()
	}

	var errs []error
	if t.tracerProvider != nil {
		if err := t.tracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("trace provider shutdown: %w", err))
		}
	}
	if t.meterProvider != nil {
		if err := t.meterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}
	return errors.Join(errs...)
}
