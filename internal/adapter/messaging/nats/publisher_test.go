package nats

import (
	"context"
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

func TestHeaderCarrier_CarriesTraceContext(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()

	ctx, span := tp.Tracer("test").Start(context.Background(), "publish")
	defer span.End()

	header := nats.Header{}
	prop := propagation.TraceContext{}
	prop.Inject(ctx, HeaderCarrier(header))

	assert.NotEmpty(t, header.Get("traceparent"))
	assert.Contains(t, HeaderCarrier(header).Keys(), "traceparent")

	extracted := prop.Extract(context.Background(), HeaderCarrier(header))
	assert.Equal(t, span.SpanContext().TraceID(), trace.SpanContextFromContext(extracted).TraceID())
}

func TestNoopPublisher(t *testing.T) {
	assert.NoError(t, NoopPublisher{}.Publish(context.Background(), "review.created", map[string]string{"id": "1"}))
}
