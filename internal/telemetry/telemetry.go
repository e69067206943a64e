package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	tracer "go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

func String(key string, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

func Int(key string, value int) attribute.KeyValue {
	return attribute.Int(key, value)
}

// InitTracer exports spans to the OTLP collector at collectorURL. The
// returned function flushes pending spans and closes the connection.
func InitTracer(ctx context.Context, serviceName string, collectorURL string) (func(context.Context) error, error) {
	conn, err := grpc.DialContext(ctx, collectorURL, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC connection to collector: %w", err)
	}

	exporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion("1.0.0"),
		),
	)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	bsp := trace.NewBatchSpanProcessor(
		exporter,
		trace.WithBatchTimeout(time.Second*5),
	)

	tracerProvider := trace.NewTracerProvider(
		trace.WithSampler(trace.AlwaysSample()),
		trace.WithResource(res),
		trace.WithSpanProcessor(bsp),
	)

	otel.SetTracerProvider(tracerProvider)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return func(ctx context.Context) error {
		return errors.Join(tracerProvider.Shutdown(ctx), conn.Close())
	}, nil
}

// GetTracer returns an OpenTelemetry tracer for the specified service name.
// Without InitTracer it is a no-op tracer.
func GetTracer(serviceName string) tracer.Tracer {
	return otel.GetTracerProvider().Tracer(serviceName)
}

// RecordError marks span as failed with err.
func RecordError(span tracer.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// Middleware opens a server span per request, continuing any incoming trace.
func Middleware(serviceName string) gin.HandlerFunc {
	t := GetTracer(serviceName)
	return func(c *gin.Context) {
		ctx := otel.GetTextMapPropagator().Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		ctx, span := t.Start(ctx, c.Request.Method+" "+route, tracer.WithSpanKind(tracer.SpanKindServer))
		defer span.End()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		span.SetAttributes(
			String("http.method", c.Request.Method),
			String("http.route", route),
			Int("http.status_code", c.Writer.Status()),
		)
		if c.Writer.Status() >= 500 {
			span.SetStatus(codes.Error, "server error")
		}
	}
}
