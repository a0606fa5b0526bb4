package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/NeuralTrust/SiteGuard/pkg/domain/security"
)

type memoryBlockRepository struct {
	mu      sync.RWMutex
	entries map[string]security.BlockEntry
}

// NewMemoryBlockRepository holds the block list in process. It is empty
// after every restart.
func NewMemoryBlockRepository() security.BlockRepository {
	return &memoryBlockRepository{
		entries: make(map[string]security.BlockEntry),
	}
}

func (r *memoryBlockRepository) Add(_ context.Context, entry security.BlockEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[entry.IP] = entry
	return nil
}

func (r *memoryBlockRepository) Remove(_ context.Context, ip string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries[ip]
	delete(r.entries, ip)
	return ok, nil
}

func (r *memoryBlockRepository) Contains(_ context.Context, ip string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[ip]
	return ok, nil
}

func (r *memoryBlockRepository) List(_ context.Context) ([]security.BlockEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]security.BlockEntry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	sortEntries(out)
	return out, nil
}

func sortEntries(entries []security.BlockEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].BlockedAt.Equal(entries[j].BlockedAt) {
			return entries[i].BlockedAt.After(entries[j].BlockedAt)
		}
		return entries[i].IP < entries[j].IP
	})
}
