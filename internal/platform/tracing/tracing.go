// Package tracing installs a process-wide OpenTelemetry TracerProvider so
// otelgin's request-span middleware, and anything downstream that reads
// trace.SpanContextFromContext, has a real span to work with instead of a
// permanently-empty one.
package tracing

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"

	"github.com/ytlearn/backend/internal/pkg/logger"
)

type Config struct {
	ServiceName string
	Enabled     bool
	SampleRatio float64
}

var initOnce sync.Once

// Init installs a global TracerProvider. When cfg.Enabled is false it
// installs a provider that samples nothing, so spans are still created
// (and SpanContextFromContext no longer dead-ends) but exporting is a
// no-op. Safe to call once at startup; later calls are ignored.
func Init(ctx context.Context, log *logger.Logger, cfg Config) func(context.Context) error {
	var shutdown func(context.Context) error = func(context.Context) error { return nil }

	initOnce.Do(func() {
		serviceName := cfg.ServiceName
		if serviceName == "" {
			serviceName = "ytlearn-backend"
		}

		ratio := cfg.SampleRatio
		if !cfg.Enabled {
			ratio = 0
		}
		if ratio < 0 {
			ratio = 0
		}
		if ratio > 1 {
			ratio = 1
		}

		res, err := resource.New(ctx, resource.WithAttributes(
			semconv.ServiceNameKey.String(serviceName),
		))
		if err != nil {
			log.Warn("tracing resource init failed, continuing without service attributes", "error", err)
			res = resource.Default()
		}

		exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			log.Warn("tracing exporter init failed, spans will not be recorded", "error", err)
			return
		}

		tp := sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exporter),
			sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))),
			sdktrace.WithResource(res),
		)
		otel.SetTracerProvider(tp)
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))
		shutdown = tp.Shutdown
		log.Info("tracing initialized", "service", serviceName, "enabled", cfg.Enabled, "sample_ratio", ratio)
	})

	return shutdown
}
