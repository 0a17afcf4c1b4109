package observability

import (
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// Routes served by the metrics listener.
const (
	RouteMetrics = "/metrics"
	RouteHealth  = "/healthz"
)

// HeaderRequestID carries the request ID assigned by [HTTPMiddleware].
const HeaderRequestID = "X-Request-Id"

const attrSpanRequestID = "phprefactor.request_id"

// statusRecorder remembers the first status code a handler writes.
type statusRecorder struct {
	http.ResponseWriter

	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}

	r.ResponseWriter.WriteHeader(code)
}

// code returns the recorded status; a handler that only wrote a body got 200.
func (r *statusRecorder) code() int {
	if r.status == 0 {
		return http.StatusOK
	}

	return r.status
}

// HTTPMiddleware instruments one route of the metrics listener. Every request
// gets a request ID from [WithRequestID], echoed back in [HeaderRequestID].
// The server span is named after the route, not the raw path, and continues
// an incoming traceparent. When red is non-nil the request is also counted
// under op "http <route>", with 5xx responses recorded as errors.
func HTTPMiddleware(tracer trace.Tracer, red *REDMetrics, route string, next http.Handler) http.Handler {
	op := "http " + route

	return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		started := time.Now()

		ctx := otel.GetTextMapPropagator().Extract(req.Context(), propagation.HeaderCarrier(req.Header))
		ctx, requestID := WithRequestID(ctx)

		ctx, span := tracer.Start(ctx, req.Method+" "+route,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				semconv.HTTPRequestMethodKey.String(req.Method),
				semconv.HTTPRouteKey.String(route),
				attribute.String(attrSpanRequestID, requestID),
			),
		)
		defer span.End()

		if red != nil {
			defer red.TrackInflight(ctx, op)()
		}

		rw.Header().Set(HeaderRequestID, requestID)

		rec := &statusRecorder{ResponseWriter: rw}
		next.ServeHTTP(rec, req.WithContext(ctx))

		code := rec.code()
		span.SetAttributes(semconv.HTTPResponseStatusCodeKey.Int(code))

		status := statusOK
		if code >= http.StatusInternalServerError {
			status = statusError
			span.SetStatus(codes.Error, http.StatusText(code))
		}

		if red != nil {
			red.RecordRequest(ctx, op, status, time.Since(started))
		}
	})
}
