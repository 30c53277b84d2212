package harvest

import (
	"context"

	"github.com/olerom/formula/internal/domain"
	"github.com/olerom/formula/pkg/ergast"
	"github.com/olerom/formula/pkg/publishers"
	"github.com/olerom/formula/pkg/queries"
)

// StatsClient is the subset of *ergast.Client the harvester needs.
type StatsClient interface {
	Drivers(ctx context.Context, season, limit, offset int) ([]ergast.Driver, error)
	Circuits(ctx context.Context, season, limit, offset int) ([]ergast.Circuit, error)
	Constructors(ctx context.Context, season, limit, offset int) ([]ergast.Constructor, error)
	Seasons(ctx context.Context, season, limit, offset int) ([]ergast.Season, error)
}

// RecordEnricher adds page metadata to harvested records.
type RecordEnricher interface {
	Enrich(ctx context.Context, q queries.Query, records []domain.Record) []domain.Record
}

// EventPublisher publishes records downstream and reports how many sinks accepted them.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}

// Deduper remembers record keys that were already delivered.
type Deduper interface {
	SeenRecord(key string) (bool, error)
	MarkRecord(key string) error
}
