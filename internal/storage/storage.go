package storage

import (
	"fmt"
	"strings"
	"time"
)

// Package storage remembers which records were already delivered.

// Store tracks delivered record keys.
type Store interface {
	Close() error
	SeenRecord(key string) (bool, error)
	MarkRecord(key string) error
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	RecordTTL       time.Duration
	CleanupInterval time.Duration
}

const (
	defaultRecordTTL       = 30 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.RecordTTL <= 0 {
		opts.RecordTTL = defaultRecordTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopStore struct{}

func (noopStore) Close() error                    { return nil }
func (noopStore) SeenRecord(string) (bool, error) { return false, nil }
func (noopStore) MarkRecord(string) error         { return nil }
