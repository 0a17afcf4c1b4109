package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricRequestsTotal    = "phprefactor.requests.total"
	metricRequestDuration  = "phprefactor.request.duration.seconds"
	metricErrorsTotal      = "phprefactor.errors.total"
	metricInflightRequests = "phprefactor.inflight.requests"
	metricChangesTotal     = "phprefactor.refactor.changes.total"
	metricChangesPerRun    = "phprefactor.refactor.changes"

	attrOp     = "op"
	attrStatus = "status"

	statusOK    = "ok"
	statusError = "error"
)

// durationBucketBoundaries covers 1ms to 10s: a refactoring parses and prints
// one file, so anything slower is an outlier.
var durationBucketBoundaries = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// changeBucketBoundaries groups how many sites a single refactoring touched.
var changeBucketBoundaries = []float64{0, 1, 2, 5, 10, 25, 50, 100}

// REDMetrics holds the OTel instruments for Rate, Error, Duration metrics.
type REDMetrics struct {
	requestsTotal    metric.Int64Counter
	requestDuration  metric.Float64Histogram
	errorsTotal      metric.Int64Counter
	inflightRequests metric.Int64UpDownCounter
}

// NewREDMetrics creates RED metric instruments from the given meter.
func NewREDMetrics(mt metric.Meter) (*REDMetrics, error) {
	in := newInstruments(mt)

	rm := &REDMetrics{
		requestsTotal:    in.count(metricRequestsTotal, "Total number of requests", "{request}"),
		requestDuration:  in.distribution(metricRequestDuration, "Request duration in seconds", "s", durationBucketBoundaries),
		errorsTotal:      in.count(metricErrorsTotal, "Total number of errors", "{error}"),
		inflightRequests: in.level(metricInflightRequests, "Number of in-flight requests", "{request}"),
	}

	if err := in.err(); err != nil {
		return nil, err
	}

	return rm, nil
}

// RecordRequest records a completed request with its operation, status, and duration.
func (rm *REDMetrics) RecordRequest(ctx context.Context, op, status string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String(attrOp, op),
		attribute.String(attrStatus, status),
	)

	rm.requestsTotal.Add(ctx, 1, attrs)
	rm.requestDuration.Record(ctx, duration.Seconds(), attrs)

	if status == statusError {
		rm.errorsTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.String(attrOp, op),
		))
	}
}

// TrackInflight increments the in-flight gauge and returns a function to decrement it.
func (rm *REDMetrics) TrackInflight(ctx context.Context, op string) func() {
	attrs := metric.WithAttributes(attribute.String(attrOp, op))
	rm.inflightRequests.Add(ctx, 1, attrs)

	return func() {
		rm.inflightRequests.Add(ctx, -1, attrs)
	}
}

// RefactorMetrics adds per-refactoring change counts to the RED set.
type RefactorMetrics struct {
	*REDMetrics

	changesTotal  metric.Int64Counter
	changesPerRun metric.Float64Histogram
}

// NewRefactorMetrics creates the RED instruments plus the change instruments.
func NewRefactorMetrics(mt metric.Meter) (*RefactorMetrics, error) {
	red, err := NewREDMetrics(mt)
	if err != nil {
		return nil, err
	}

	in := newInstruments(mt)

	rm := &RefactorMetrics{
		REDMetrics:    red,
		changesTotal:  in.count(metricChangesTotal, "Total number of rewritten sites", "{change}"),
		changesPerRun: in.distribution(metricChangesPerRun, "Rewritten sites per refactoring", "{change}", changeBucketBoundaries),
	}

	if err := in.err(); err != nil {
		return nil, err
	}

	return rm, nil
}

// RecordChanges records how many sites a successful refactoring rewrote.
func (rm *RefactorMetrics) RecordChanges(ctx context.Context, op string, changes int) {
	attrs := metric.WithAttributes(attribute.String(attrOp, op))

	rm.changesTotal.Add(ctx, int64(changes), attrs)
	rm.changesPerRun.Record(ctx, float64(changes), attrs)
}
