package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricCompilesTotal = "treeq.query.compiles.total"
	metricExecsTotal    = "treeq.query.execs.total"
	metricMatchesTotal  = "treeq.query.matches.total"
	metricCapturesTotal = "treeq.query.captures.total"
	metricExecDuration  = "treeq.query.exec.duration.seconds"
	metricInflightExecs = "treeq.query.inflight.execs"

	attrLanguage = "language"
	attrStatus   = "status"

	// StatusOK and StatusError are the values recorded under the status
	// attribute.
	StatusOK    = "ok"
	StatusError = "error"
)

// durationBucketBoundaries covers 1ms to 60s: single-file executions are
// typically sub-millisecond, whole-directory pack runs can take seconds.
var durationBucketBoundaries = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60}

// QueryMetrics holds the OTel instruments for query compilation and
// execution.
type QueryMetrics struct {
	compilesTotal metric.Int64Counter
	execsTotal    metric.Int64Counter
	matchesTotal  metric.Int64Counter
	capturesTotal metric.Int64Counter
	execDuration  metric.Float64Histogram
	inflightExecs metric.Int64UpDownCounter
}

// NewQueryMetrics creates the query instruments from the given meter.
func NewQueryMetrics(mt metric.Meter) (*QueryMetrics, error) {
	ins := newInstrumentSet(mt)

	qm := &QueryMetrics{
		compilesTotal: ins.counter(metricCompilesTotal, "Total number of query compilations", "{compile}"),
		execsTotal:    ins.counter(metricExecsTotal, "Total number of query executions", "{exec}"),
		matchesTotal:  ins.counter(metricMatchesTotal, "Total number of surfaced matches", "{match}"),
		capturesTotal: ins.counter(metricCapturesTotal, "Total number of surfaced captures", "{capture}"),
		execDuration:  ins.histogram(metricExecDuration, "Query execution duration in seconds", "s", durationBucketBoundaries),
		inflightExecs: ins.upDownCounter(metricInflightExecs, "Number of in-flight query executions", "{exec}"),
	}

	if ins.err != nil {
		return nil, ins.err
	}

	return qm, nil
}

// RecordCompile records one query compilation attempt.
func (qm *QueryMetrics) RecordCompile(ctx context.Context, language, status string) {
	qm.compilesTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrLanguage, language),
		attribute.String(attrStatus, status),
	))
}

// RecordExec records a completed query execution with its result counts
// and duration.
func (qm *QueryMetrics) RecordExec(ctx context.Context, language, status string, matches, captures int64, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String(attrLanguage, language),
		attribute.String(attrStatus, status),
	)

	qm.execsTotal.Add(ctx, 1, attrs)
	qm.matchesTotal.Add(ctx, matches, attrs)
	qm.capturesTotal.Add(ctx, captures, attrs)
	qm.execDuration.Record(ctx, duration.Seconds(), attrs)
}

// TrackInflight increments the in-flight gauge and returns a function to
// decrement it.
func (qm *QueryMetrics) TrackInflight(ctx context.Context, language string) func() {
	attrs := metric.WithAttributes(attribute.String(attrLanguage, language))
	qm.inflightExecs.Add(ctx, 1, attrs)

	return func() {
		qm.inflightExecs.Add(ctx, -1, attrs)
	}
}
