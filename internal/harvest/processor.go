package harvest

import (
	"context"
	"errors"
	"fmt"

	"github.com/olerom/formula/internal/domain"
	"github.com/olerom/formula/internal/logger"
	"github.com/olerom/formula/pkg/ergast"
	"github.com/olerom/formula/pkg/publishers"
	"github.com/olerom/formula/pkg/queries"
)

// QueryProcessor runs a single query: fetch, dedupe, enrich, publish.
type QueryProcessor struct {
	client    StatsClient
	enricher  RecordEnricher
	publisher EventPublisher
	log       logger.Logger
	deduper   Deduper
}

// NewQueryProcessor wires the processor. enricher, publisher and deduper may be nil.
func NewQueryProcessor(client StatsClient, enricher RecordEnricher, pub EventPublisher, log logger.Logger, deduper Deduper) *QueryProcessor {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &QueryProcessor{
		client:    client,
		enricher:  enricher,
		publisher: pub,
		log:       log,
		deduper:   deduper,
	}
}

// Process fetches the records selected by q and publishes the ones not delivered yet.
func (p *QueryProcessor) Process(ctx context.Context, q queries.Query) error {
	if p == nil || p.client == nil {
		return fmt.Errorf("query processor is not initialized")
	}

	records, err := p.fetch(ctx, q)
	if err != nil {
		return fmt.Errorf("fetch query %s: %w", q.ID, err)
	}

	fresh := p.filterNewRecords(q, records)
	if q.Enrich && p.enricher != nil && len(fresh) > 0 {
		fresh = p.enricher.Enrich(ctx, q, fresh)
	}

	published, err := p.publish(ctx, q, fresh)

	p.log.InfoObj("query harvest completed", "query_result", map[string]any{
		"query_id":          q.ID,
		"resource":          q.Resource,
		"records_fetched":   len(records),
		"records_new":       len(fresh),
		"records_published": published,
	})
	return err
}

func (p *QueryProcessor) fetch(ctx context.Context, q queries.Query) ([]domain.Record, error) {
	season, limit, offset := q.SeasonValue(), q.LimitValue(), q.OffsetValue()

	switch q.ResourceValue() {
	case ergast.ResourceDrivers:
		drivers, err := p.client.Drivers(ctx, season, limit, offset)
		if err != nil {
			return nil, err
		}
		return RecordsFromDrivers(drivers), nil
	case ergast.ResourceCircuits:
		circuits, err := p.client.Circuits(ctx, season, limit, offset)
		if err != nil {
			return nil, err
		}
		return RecordsFromCircuits(circuits), nil
	case ergast.ResourceConstructors:
		constructors, err := p.client.Constructors(ctx, season, limit, offset)
		if err != nil {
			return nil, err
		}
		return RecordsFromConstructors(constructors), nil
	case ergast.ResourceSeasons:
		seasons, err := p.client.Seasons(ctx, season, limit, offset)
		if err != nil {
			return nil, err
		}
		return RecordsFromSeasons(seasons), nil
	default:
		return nil, fmt.Errorf("unsupported resource %q", q.Resource)
	}
}

// filterNewRecords drops records already delivered. Lookup failures keep the record.
func (p *QueryProcessor) filterNewRecords(q queries.Query, records []domain.Record) []domain.Record {
	if p.deduper == nil {
		return records
	}

	out := make([]domain.Record, 0, len(records))
	for _, rec := range records {
		seen, err := p.deduper.SeenRecord(rec.Key())
		if err != nil {
			p.log.WarnObj("dedupe lookup failed", "dedupe_error", map[string]any{
				"query_id":   q.ID,
				"record_key": rec.Key(),
				"error":      err.Error(),
			})
			out = append(out, rec)
			continue
		}
		if !seen {
			out = append(out, rec)
		}
	}
	return out
}

func (p *QueryProcessor) publish(ctx context.Context, q queries.Query, records []domain.Record) (int, error) {
	if p.publisher == nil {
		return 0, nil
	}

	var errs []error
	published := 0
	for _, rec := range records {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}

		delivered, err := p.publisher.Publish(ctx, publishers.NewEvent(q.ID, rec))
		if err != nil {
			errs = append(errs, fmt.Errorf("publish record %s: %w", rec.Key(), err))
		}
		if delivered == 0 {
			continue
		}
		published++

		if p.deduper != nil {
			if err := p.deduper.MarkRecord(rec.Key()); err != nil {
				p.log.WarnObj("dedupe mark failed", "dedupe_error", map[string]any{
					"query_id":   q.ID,
					"record_key": rec.Key(),
					"error":      err.Error(),
				})
			}
		}
	}
	return published, errors.Join(errs...)
}
