package publishers

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/olerom/formula/internal/domain"
)

// Event is the payload published for every newly harvested record.
type Event struct {
	ID          string        `json:"id"`
	QueryID     string        `json:"query_id"`
	Resource    string        `json:"resource"`
	Record      domain.Record `json:"record"`
	CollectedAt time.Time     `json:"collected_at"`
}

// NewEvent stamps rec with the query that produced it.
func NewEvent(queryID string, rec domain.Record) Event {
	return Event{
		ID:          uuid.NewString(),
		QueryID:     queryID,
		Resource:    rec.Resource,
		Record:      rec,
		CollectedAt: time.Now().UTC(),
	}
}

// attributes are the message attributes brokers can filter on.
func (e Event) attributes() map[string]string {
	return map[string]string{
		"resource": e.Resource,
		"query_id": e.QueryID,
	}
}

func (e Event) payload() ([]byte, error) {
	return json.Marshal(e)
}
