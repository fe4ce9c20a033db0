package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/cuihairu/tabletop/catalog"

// CatalogTracer wraps spans and counters around catalog operations.
// It resolves the global providers, so it works before and after NewProvider.
type CatalogTracer struct {
	tracer  trace.Tracer
	metrics *CatalogMetrics
}

func NewCatalogTracer() *CatalogTracer {
	t := &CatalogTracer{tracer: otel.Tracer(instrumentationName)}
	if m, err := NewCatalogMetrics(otel.Meter(instrumentationName)); err == nil {
		t.metrics = m
	}
	return t
}

// Start opens a span named catalog.<op>.
func (t *CatalogTracer) Start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, OperationKey.String(op))
	return t.tracer.Start(ctx, "catalog."+op, trace.WithAttributes(attrs...))
}

// End records err on span and closes it. Successful mutations bump the mutation counter.
func (t *CatalogTracer) End(ctx context.Context, span trace.Span, op string, mutation bool, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else if mutation && t.metrics != nil {
		t.metrics.Mutations.Add(ctx, 1, metric.WithAttributes(OperationKey.String(op)))
	}
	span.End()
}

// Repair counts one repair write of the given pass.
func (t *CatalogTracer) Repair(ctx context.Context, pass string, err error) {
	if t.metrics == nil {
		return
	}
	attrs := metric.WithAttributes(RepairPassKey.String(pass))
	t.metrics.Repairs.Add(ctx, 1, attrs)
	if err != nil {
		t.metrics.RepairFailures.Add(ctx, 1, attrs)
	}
}
