// Copyright (c) 2026 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package telemetry installs the tracer provider and propagators used by envelope scopes.
package telemetry

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/propagators/b3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/zipkin"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/AccelByte/extend-trio-queue/pkg/config"
)

// Setup builds a tracer provider for cfg, registers it globally together with
// the b3 and W3C propagators, and returns the function that flushes it.
// Extra span processors are added as given, tests use them to record spans.
func Setup(cfg *config.Config, processors ...sdktrace.SpanProcessor) (func(context.Context) error, error) {
	options := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", cfg.ServiceName))),
	}

	if cfg.ZipkinEndpoint != "" {
		exporter, err := zipkin.New(cfg.ZipkinEndpoint)
		if err != nil {
			return nil, fmt.Errorf("create zipkin exporter: %w", err)
		}
		options = append(options, sdktrace.WithBatcher(exporter))
		logrus.WithField("endpoint", cfg.ZipkinEndpoint).Info("exporting spans to zipkin")
	}
	for _, processor := range processors {
		options = append(options, sdktrace.WithSpanProcessor(processor))
	}

	provider := sdktrace.NewTracerProvider(options...)
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(Propagator())

	return provider.Shutdown, nil
}

// Propagator reads and writes both b3 multi-header and W3C trace context.
func Propagator() propagation.TextMapPropagator {
	return propagation.NewCompositeTextMapPropagator(
		b3.New(b3.WithInjectEncoding(b3.B3MultipleHeader)),
		propagation.TraceContext{},
	)
}

// Extract returns ctx carrying the remote span context found in headers, if any.
func Extract(ctx context.Context, headers map[string]string) context.Context {
	if len(headers) == 0 {
		return ctx
	}
	return Propagator().Extract(ctx, propagation.MapCarrier(headers))
}

// Inject writes the span context of ctx into headers.
func Inject(ctx context.Context, headers map[string]string) {
	Propagator().Inject(ctx, propagation.MapCarrier(headers))
}
