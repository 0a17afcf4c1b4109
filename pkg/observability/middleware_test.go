package observability_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Sumatoshi-tech/phprefactor/pkg/observability"
)

func newTestTracer(t *testing.T) (*tracetest.InMemoryExporter, *sdktrace.TracerProvider) {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	t.Cleanup(func() { require.NoError(t, tp.Shutdown(context.Background())) })

	return exporter, tp
}

func spanAttr(span tracetest.SpanStub, key string) (attribute.Value, bool) {
	for _, kv := range span.Attributes {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}

	return attribute.Value{}, false
}

func TestHTTPMiddleware_NamesSpanAfterRoute(t *testing.T) {
	t.Parallel()

	exporter, tp := newTestTracer(t)

	var seenID string

	handler := http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		seenID = observability.RequestIDFrom(req.Context())

		_, _ = io.WriteString(rw, "scrape")
	})

	mw := observability.HTTPMiddleware(tp.Tracer("test"), nil, observability.RouteMetrics, handler)

	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics?name[]=x", http.NoBody))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "GET /metrics", spans[0].Name)

	route, ok := spanAttr(spans[0], "http.route")
	require.True(t, ok)
	assert.Equal(t, "/metrics", route.AsString())

	status, ok := spanAttr(spans[0], "http.response.status_code")
	require.True(t, ok)
	assert.Equal(t, int64(http.StatusOK), status.AsInt64())

	requestID, ok := spanAttr(spans[0], "phprefactor.request_id")
	require.True(t, ok)
	assert.NotEmpty(t, seenID)
	assert.Equal(t, seenID, requestID.AsString())
	assert.Equal(t, seenID, rec.Header().Get(observability.HeaderRequestID))
}

func TestHTTPMiddleware_FreshRequestIDPerRequest(t *testing.T) {
	t.Parallel()

	_, tp := newTestTracer(t)

	mw := observability.HTTPMiddleware(tp.Tracer("test"), nil, observability.RouteHealth, observability.HealthHandler())

	first := httptest.NewRecorder()
	mw.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody))

	second := httptest.NewRecorder()
	mw.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody))

	assert.NotEmpty(t, first.Header().Get(observability.HeaderRequestID))
	assert.NotEqual(t, first.Header().Get(observability.HeaderRequestID), second.Header().Get(observability.HeaderRequestID))
}

func TestHTTPMiddleware_ExtractsTraceParent(t *testing.T) {
	t.Parallel()

	exporter, tp := newTestTracer(t)

	// Register W3C propagator globally (same as Init does).
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	parentTraceID := "0af7651916cd43dd8448eb211c80319c"
	parentSpanID := "00f067aa0ba902b7"

	mw := observability.HTTPMiddleware(tp.Tracer("test"), nil, observability.RouteHealth, observability.HealthHandler())

	req := httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody)
	req.Header.Set("Traceparent", "00-"+parentTraceID+"-"+parentSpanID+"-01")

	mw.ServeHTTP(httptest.NewRecorder(), req)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, parentTraceID, spans[0].SpanContext.TraceID().String())
	assert.Equal(t, parentSpanID, spans[0].Parent.SpanID().String())
}

func TestHTTPMiddleware_RecordsREDPerRoute(t *testing.T) {
	t.Parallel()

	_, tp := newTestTracer(t)

	reader := sdkmetric.NewManualReader()
	red, err := observability.NewREDMetrics(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test"))
	require.NoError(t, err)

	failing := http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		rw.WriteHeader(http.StatusInternalServerError)
	})

	mux := http.NewServeMux()
	mux.Handle(observability.RouteMetrics, observability.HTTPMiddleware(tp.Tracer("test"), red, observability.RouteMetrics, failing))
	mux.Handle(observability.RouteHealth,
		observability.HTTPMiddleware(tp.Tracer("test"), red, observability.RouteHealth, observability.HealthHandler()))

	for range 2 {
		mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody))
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rm := collectMetrics(t, reader)

	requests := findMetric(rm, "phprefactor.requests.total")
	require.NotNil(t, requests)

	sum, ok := requests.Data.(metricdata.Sum[int64])
	require.True(t, ok)

	counts := map[string]int64{}

	for _, dp := range sum.DataPoints {
		op, _ := dp.Attributes.Value("op")
		status, _ := dp.Attributes.Value("status")
		counts[op.AsString()+" "+status.AsString()] += dp.Value
	}

	assert.Equal(t, map[string]int64{
		"http /healthz ok":    2,
		"http /metrics error": 1,
	}, counts)

	errorsTotal := findMetric(rm, "phprefactor.errors.total")
	require.NotNil(t, errorsTotal)

	errSum, ok := errorsTotal.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, errSum.DataPoints, 1)
	assert.Equal(t, int64(1), errSum.DataPoints[0].Value)
}

func TestHTTPMiddleware_SetsStatusOnError(t *testing.T) {
	t.Parallel()

	exporter, tp := newTestTracer(t)

	handler := http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		rw.WriteHeader(http.StatusServiceUnavailable)
		rw.WriteHeader(http.StatusOK)
	})

	mw := observability.HTTPMiddleware(tp.Tracer("test"), nil, observability.RouteMetrics, handler)

	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
}
