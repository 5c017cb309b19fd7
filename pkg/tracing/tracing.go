package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Logger интерфейс для логирования
type Logger interface {
	Warn(format string, v ...interface{})
}

// Config настройки экспорта трейсов
type Config struct {
	Enabled  bool
	Endpoint string
	Insecure bool
}

// ShutdownFunc останавливает провайдер трейсов и сбрасывает буфер спанов
type ShutdownFunc func(context.Context) error

func noop(context.Context) error { return nil }

// Setup настраивает глобальный TracerProvider с OTLP gRPC экспортером.
// При выключенной трассировке или ошибке экспортера сервис работает без трейсов.
func Setup(ctx context.Context, serviceName string, cfg Config, log Logger) ShutdownFunc {
	if !cfg.Enabled || cfg.Endpoint == "" {
		return noop
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}

	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		log.Warn("tracing: failed to create exporter: %v", err)
		return noop
	}

	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(serviceName)))
	if err != nil {
		log.Warn("tracing: failed to build resource: %v", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(provider)

	return provider.Shutdown
}
