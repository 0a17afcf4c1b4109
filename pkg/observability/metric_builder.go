package observability

import (
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/metric"
)

// instruments creates the phprefactor instruments from one meter. Creation
// failures are collected rather than returned one by one, so a constructor
// declares its whole instrument set and checks [instruments.err] once.
type instruments struct {
	meter  metric.Meter
	failed []error
}

func newInstruments(mt metric.Meter) *instruments {
	return &instruments{meter: mt}
}

// count returns a monotonic counter such as requests or rewritten sites.
func (in *instruments) count(name, desc, unit string) metric.Int64Counter {
	c, err := in.meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit(unit))
	in.record(name, err)

	return c
}

// level returns an up/down counter for values that rise and fall, like
// requests in flight.
func (in *instruments) level(name, desc, unit string) metric.Int64UpDownCounter {
	c, err := in.meter.Int64UpDownCounter(name, metric.WithDescription(desc), metric.WithUnit(unit))
	in.record(name, err)

	return c
}

// distribution returns a histogram with fixed bucket boundaries.
func (in *instruments) distribution(name, desc, unit string, bounds []float64) metric.Float64Histogram {
	h, err := in.meter.Float64Histogram(name,
		metric.WithDescription(desc),
		metric.WithUnit(unit),
		metric.WithExplicitBucketBoundaries(bounds...),
	)
	in.record(name, err)

	return h
}

func (in *instruments) record(name string, err error) {
	if err != nil {
		in.failed = append(in.failed, fmt.Errorf("create instrument %s: %w", name, err))
	}
}

// err joins every creation failure, or returns nil.
func (in *instruments) err() error {
	return errors.Join(in.failed...)
}
