package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Catalog semantic conventions.
const (
	RecordIDKey    = attribute.Key("catalog.record.id")
	RecordKindKey  = attribute.Key("catalog.record.kind")
	BaseGameIDKey  = attribute.Key("catalog.base_game.id")
	OperationKey   = attribute.Key("catalog.operation")
	RepairPassKey  = attribute.Key("catalog.repair.pass")
	RepairCountKey = attribute.Key("catalog.repair.count")
)

// CatalogMetrics groups the catalog counters.
type CatalogMetrics struct {
	Mutations      metric.Int64Counter
	Repairs        metric.Int64Counter
	RepairFailures metric.Int64Counter
}

func NewCatalogMetrics(meter metric.Meter) (*CatalogMetrics, error) {
	mutations, err := meter.Int64Counter("catalog.mutations",
		metric.WithDescription("Completed catalog mutations by operation"))
	if err != nil {
		return nil, err
	}
	repairs, err := meter.Int64Counter("catalog.repairs",
		metric.WithDescription("Reverse-link repair writes issued"))
	if err != nil {
		return nil, err
	}
	failures, err := meter.Int64Counter("catalog.repair_failures",
		metric.WithDescription("Reverse-link repair writes that failed"))
	if err != nil {
		return nil, err
	}
	return &CatalogMetrics{Mutations: mutations, Repairs: repairs, RepairFailures: failures}, nil
}
