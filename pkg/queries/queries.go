package queries

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/olerom/formula/pkg/ergast"
	"github.com/olerom/formula/pkg/registryfile"
)

// Package queries loads the list of ergast requests the harvester runs (YAML/JSON).

const defaultRequestDelayMs = 500

// Query is one configured request against the statistics API.
type Query struct {
	ID             string `json:"id" yaml:"id"`
	Resource       string `json:"resource" yaml:"resource"`
	Season         *int   `json:"season" yaml:"season"`
	Limit          *int   `json:"limit" yaml:"limit"`
	Offset         *int   `json:"offset" yaml:"offset"`
	Enrich         bool   `json:"enrich" yaml:"enrich"`
	RequestDelayMs int    `json:"request_delay_ms" yaml:"request_delay_ms"`
}

// ResourceValue returns the parsed resource. Validated queries always parse.
func (q Query) ResourceValue() ergast.Resource {
	r, _ := ergast.ParseResource(q.Resource)
	return r
}

// SeasonValue returns the configured season or ergast.Unspecified.
func (q Query) SeasonValue() int { return intOrUnspecified(q.Season) }

// LimitValue returns the configured limit or ergast.Unspecified.
func (q Query) LimitValue() int { return intOrUnspecified(q.Limit) }

// OffsetValue returns the configured offset or ergast.Unspecified.
func (q Query) OffsetValue() int { return intOrUnspecified(q.Offset) }

// RequestDelay is the pause between enrichment page fetches.
func (q Query) RequestDelay() time.Duration {
	if q.RequestDelayMs <= 0 {
		return time.Duration(defaultRequestDelayMs) * time.Millisecond
	}
	return time.Duration(q.RequestDelayMs) * time.Millisecond
}

func intOrUnspecified(v *int) int {
	if v == nil {
		return ergast.Unspecified
	}
	return *v
}

// Registry holds the validated queries of one file.
type Registry struct {
	mu      sync.RWMutex
	queries []Query
	idx     map[string]Query
}

type fileContent struct {
	Queries []Query `json:"queries" yaml:"queries"`
}

// LoadRegistry reads and validates the queries file at path.
func LoadRegistry(path string) (*Registry, error) {
	var content fileContent
	if err := registryfile.Decode(path, "queries", &content); err != nil {
		return nil, err
	}
	if len(content.Queries) == 0 {
		return nil, errors.New("queries file contains no queries entries")
	}

	reg := &Registry{
		queries: make([]Query, 0, len(content.Queries)),
		idx:     make(map[string]Query, len(content.Queries)),
	}
	for i, raw := range content.Queries {
		q := sanitizeQuery(raw)
		if err := validateQuery(q); err != nil {
			return nil, fmt.Errorf("queries[%d]: %w", i, err)
		}
		if _, exists := reg.idx[q.ID]; exists {
			return nil, fmt.Errorf("duplicate query id %q", q.ID)
		}
		reg.queries = append(reg.queries, q)
		reg.idx[q.ID] = q
	}
	return reg, nil
}

func sanitizeQuery(q Query) Query {
	q.ID = strings.TrimSpace(q.ID)
	q.Resource = strings.ToLower(strings.TrimSpace(q.Resource))
	if q.RequestDelayMs <= 0 {
		q.RequestDelayMs = defaultRequestDelayMs
	}
	return q
}

func validateQuery(q Query) error {
	if q.ID == "" {
		return errors.New("id is required")
	}
	if q.Resource == "" {
		return fmt.Errorf("resource is required for query %q", q.ID)
	}
	if _, ok := ergast.ParseResource(q.Resource); !ok {
		return fmt.Errorf("unknown resource %q for query %q", q.Resource, q.ID)
	}
	return nil
}

// All returns a copy of every query in file order.
func (r *Registry) All() []Query {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Query, len(r.queries))
	copy(out, r.queries)
	return out
}

// ByID returns the query with the given id.
func (r *Registry) ByID(id string) (Query, bool) {
	if r == nil {
		return Query{}, false
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return Query{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	q, ok := r.idx[id]
	return q, ok
}
