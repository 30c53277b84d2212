package harvest

import (
	"context"
	"errors"
	"fmt"

	"github.com/olerom/formula/internal/logger"
	"github.com/olerom/formula/pkg/queries"
)

// Service coordinates harvesting across all configured queries.
type Service struct {
	processor *QueryProcessor
	log       logger.Logger
}

// NewService wires a harvest service. deduper may be nil to publish every record.
func NewService(client StatsClient, enricher RecordEnricher, pub EventPublisher, log logger.Logger, deduper Deduper) *Service {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Service{
		processor: NewQueryProcessor(client, enricher, pub, log, deduper),
		log:       log,
	}
}

// Run executes one harvest pass over qs.
func (s *Service) Run(ctx context.Context, qs []queries.Query) error {
	if s == nil || s.processor == nil {
		return fmt.Errorf("harvest service is not initialized")
	}

	if len(qs) == 0 {
		return fmt.Errorf("no queries configured for harvesting")
	}

	errs := s.runAll(ctx, qs)
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

func (s *Service) runAll(ctx context.Context, qs []queries.Query) []error {
	errs := make([]error, 0, len(qs))

	for _, q := range qs {
		select {
		case <-ctx.Done():
			s.log.WarnObj("harvest pass cancelled", "harvest_cancel", map[string]any{
				"query_id": q.ID,
			})
			return errs
		default:
		}

		if err := s.processor.Process(ctx, q); err != nil {
			errs = append(errs, err)
			s.log.ErrorObj("query harvest failed", "query_error", map[string]any{
				"query_id": q.ID,
				"error":    err.Error(),
			})
		}
	}

	return errs
}
