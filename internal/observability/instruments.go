package observability

import (
	"fmt"

	"go.opentelemetry.io/otel/metric"
)

// instrumentSet creates the instruments for one meter while remembering
// the first creation failure, so NewQueryMetrics checks once after
// building the whole set instead of after every instrument.
type instrumentSet struct {
	meter metric.Meter
	err   error
}

func newInstrumentSet(mt metric.Meter) *instrumentSet {
	return &instrumentSet{meter: mt}
}

func (s *instrumentSet) counter(name, desc, unit string) metric.Int64Counter {
	c, err := s.meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit(unit))
	s.fail(name, err)

	return c
}

func (s *instrumentSet) upDownCounter(name, desc, unit string) metric.Int64UpDownCounter {
	c, err := s.meter.Int64UpDownCounter(name, metric.WithDescription(desc), metric.WithUnit(unit))
	s.fail(name, err)

	return c
}

// histogram creates a Float64Histogram; a nil bounds slice keeps the SDK
// default buckets.
func (s *instrumentSet) histogram(name, desc, unit string, bounds []float64) metric.Float64Histogram {
	opts := []metric.Float64HistogramOption{
		metric.WithDescription(desc),
		metric.WithUnit(unit),
	}

	if len(bounds) > 0 {
		opts = append(opts, metric.WithExplicitBucketBoundaries(bounds...))
	}

	h, err := s.meter.Float64Histogram(name, opts...)
	s.fail(name, err)

	return h
}

func (s *instrumentSet) fail(name string, err error) {
	if err != nil && s.err == nil {
		s.err = fmt.Errorf("create %s: %w", name, err)
	}
}
