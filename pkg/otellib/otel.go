package otellib

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/sdk/resource"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.7.0"

	"github.com/rifapix/settlement/config"
)

// InitOtel configures the global tracer provider with a jaeger exporter.
// The returned shutdown func flushes pending spans.
func InitOtel(serviceName string, env string, conf config.JaegerConfig) (*tracesdk.TracerProvider, func()) {
	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(serviceName),
		attribute.String("environment", env),
	)

	if !conf.Enabled {
		provider := tracesdk.NewTracerProvider(
			tracesdk.WithSampler(tracesdk.NeverSample()),
			tracesdk.WithResource(res),
		)
		return provider, func() {}
	}

	exporter, err := jaeger.New(jaeger.WithCollectorEndpoint(
		jaeger.WithEndpoint(conf.Endpoint),
	))
	if err != nil {
		panic(err)
	}

	provider := tracesdk.NewTracerProvider(
		tracesdk.WithBatcher(exporter),
		tracesdk.WithResource(res),
	)

	shutdown := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		err := provider.Shutdown(ctx)
		if err != nil {
			fmt.Println("shutdown tracer provider:", err)
		}
	}
	return provider, shutdown
}
