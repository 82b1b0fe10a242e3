package provider

import (
	"sort"
	"sync"

	"github.com/kbukum/walletmux/logger"
)

// Registry stores announced wallets keyed by uuid. A later announcement of the
// same uuid replaces the earlier record.
type Registry struct {
	mu      sync.RWMutex
	records map[string]*Record
	log     *logger.Logger
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		records: make(map[string]*Record),
		log:     logger.Get("provider"),
	}
}

// Announce validates d and stores a fresh record for it, replacing any record
// with the same uuid. The new record starts with an empty cache.
func (r *Registry) Announce(d Detail) (*Record, error) {
	if err := d.Validate(); err != nil {
		r.log.Warn("announcement rejected", logger.Fields(
			logger.FieldProviderUUID, d.Info.UUID,
			logger.FieldProvider, d.Info.Name,
			logger.FieldError, err.Error(),
		))
		return nil, err
	}

	rec := newRecord(d)
	r.mu.Lock()
	_, replaced := r.records[rec.UUID()]
	r.records[rec.UUID()] = rec
	r.mu.Unlock()

	r.log.Info("provider announced", logger.Fields(
		logger.FieldProviderUUID, rec.UUID(),
		logger.FieldProvider, rec.info.Name,
		logger.FieldRDNS, rec.info.RDNS,
		"replaced", replaced,
	))
	return rec, nil
}

// Lookup returns the record for uuid.
func (r *Registry) Lookup(uuid string) (*Record, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[uuid]
	return rec, ok
}

// List returns all records sorted by name, then uuid.
func (r *Registry) List() []*Record {
	r.mu.RLock()
	out := make([]*Record, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, rec)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].info.Name != out[j].info.Name {
			return out[i].info.Name < out[j].info.Name
		}
		return out[i].info.UUID < out[j].info.UUID
	})
	return out
}

// Len returns the number of registered wallets.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}
