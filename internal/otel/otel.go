package otel

import (
	"context"
	"net/http"
	"sync"

	eventbus "github.com/hanpama/gqlengine/internal/eventbus"
	events "github.com/hanpama/gqlengine/internal/events"
	reqid "github.com/hanpama/gqlengine/internal/reqid"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const tracerName = "gqlengine"

// Setup configures OpenTelemetry and attaches eventbus subscribers.
// If endpoint is empty, no telemetry is configured.
func Setup(endpoint, service string) (func(context.Context) error, error) {
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}
	exp, err := otlptracegrpc.New(context.Background(),
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(service),
		)),
	)
	otel.SetTracerProvider(tp)

	Register(tp.Tracer(tracerName))

	return tp.Shutdown, nil
}

// Register subscribes span recording for HTTP, operation and resolver
// events on the default event bus.
func Register(tracer trace.Tracer) {
	s := &subscriber{tracer: tracer}
	s.register()
}

// spans holds open spans by key until their finish event arrives.
type spans struct{ m sync.Map }

func (s *spans) put(key string, span trace.Span) { s.m.Store(key, span) }

func (s *spans) get(key string) (trace.Span, bool) {
	v, ok := s.m.Load(key)
	if !ok {
		return nil, false
	}
	return v.(trace.Span), true
}

func (s *spans) take(key string) (trace.Span, bool) {
	v, ok := s.m.LoadAndDelete(key)
	if !ok {
		return nil, false
	}
	return v.(trace.Span), true
}

type subscriber struct {
	tracer    trace.Tracer
	http      spans // by request id
	operation spans // by request id
	resolver  spans // by request id and field path
}

// parent nests new spans under the operation span, else the HTTP span.
func (s *subscriber) parent(ctx context.Context, rid string) context.Context {
	if span, ok := s.operation.get(rid); ok {
		return trace.ContextWithSpan(ctx, span)
	}
	if span, ok := s.http.get(rid); ok {
		return trace.ContextWithSpan(ctx, span)
	}
	return ctx
}

func requestID(ctx context.Context) string {
	rid, _ := reqid.FromContext(ctx)
	return rid
}

func resolverKey(ctx context.Context, path string) string {
	return requestID(ctx) + "/" + path
}

func (s *subscriber) register() {
	eventbus.Subscribe(func(ctx context.Context, e events.HTTPStart) {
		rid := requestID(ctx)
		_, span := s.tracer.Start(ctx, "http.request", trace.WithSpanKind(trace.SpanKindServer))
		span.SetAttributes(
			semconv.HTTPMethodKey.String(e.Request.Method),
			attribute.String("http.target", e.Request.URL.Path),
			attribute.String("http.request_id", rid),
			attribute.Bool("http.event_stream", e.Stream),
		)
		s.http.put(rid, span)
	})

	eventbus.Subscribe(func(ctx context.Context, e events.HTTPFinish) {
		span, ok := s.http.take(requestID(ctx))
		if !ok {
			return
		}
		span.SetAttributes(
			semconv.HTTPStatusCodeKey.Int(e.Status),
			attribute.Int("graphql.operation_count", e.Operations),
		)
		if e.Status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(e.Status))
		}
		span.End()
	})

	eventbus.Subscribe(func(ctx context.Context, e events.GraphQLStart) {
		rid := requestID(ctx)
		_, span := s.tracer.Start(s.parent(ctx, rid), "graphql.operation")
		span.SetAttributes(
			attribute.String("graphql.operation.name", e.OperationName),
			attribute.String("graphql.operation.type", e.OperationType),
		)
		s.operation.put(rid, span)
	})

	eventbus.Subscribe(func(ctx context.Context, e events.GraphQLFinish) {
		span, ok := s.operation.take(requestID(ctx))
		if !ok {
			return
		}
		span.SetAttributes(
			attribute.String("graphql.stage", e.Stage),
			attribute.Int("graphql.error_count", len(e.Errors)),
		)
		if len(e.Errors) > 0 {
			span.SetStatus(codes.Error, e.Errors[0].Error())
		}
		span.End()
	})

	eventbus.Subscribe(func(ctx context.Context, e events.ResolverStart) {
		_, span := s.tracer.Start(s.parent(ctx, requestID(ctx)), "graphql.resolve")
		span.SetAttributes(
			attribute.String("graphql.field.parent_type", e.ParentType),
			attribute.String("graphql.field.name", e.Field),
			attribute.String("graphql.field.path", e.Path),
		)
		s.resolver.put(resolverKey(ctx, e.Path), span)
	})

	eventbus.Subscribe(func(ctx context.Context, e events.ResolverFinish) {
		span, ok := s.resolver.take(resolverKey(ctx, e.Path))
		if !ok {
			return
		}
		if e.Err != nil {
			span.RecordError(e.Err)
			span.SetStatus(codes.Error, e.Err.Error())
		}
		span.End()
	})
}
