package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/samvad-hq/langextract-client/internal/domain"
)

// Package storage keeps the local job ledger.

// Store records jobs submitted through the client.
type Store interface {
	Close() error
	RecordJob(entry domain.JobEntry) error
	// UpdateStatus returns the entry as it was before the update, and false
	// when the job is not in the ledger.
	UpdateStatus(id, status string) (domain.JobEntry, bool, error)
	// MarkDelivered flags a job whose terminal status reached the sinks.
	MarkDelivered(id string) (bool, error)
	Jobs() ([]domain.JobEntry, error)
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	EntryTTL        time.Duration
	CleanupInterval time.Duration
}

const (
	defaultEntryTTL        = 30 * 24 * time.Hour
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
	if opts.EntryTTL <= 0 {
		opts.EntryTTL = defaultEntryTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopStore struct{}

func (noopStore) Close() error                    { return nil }
func (noopStore) RecordJob(domain.JobEntry) error { return nil }
func (noopStore) UpdateStatus(string, string) (domain.JobEntry, bool, error) {
	return domain.JobEntry{}, false, nil
}
func (noopStore) MarkDelivered(string) (bool, error) { return false, nil }
func (noopStore) Jobs() ([]domain.JobEntry, error)   { return nil, nil }
