package repository

import (
	"context"
	"sync"

	"github.com/NeuralTrust/SiteGuard/pkg/domain/security"
)

type memoryEventRepository struct {
	mu       sync.RWMutex
	capacity int
	events   []*security.Event
}

// NewMemoryEventRepository keeps the newest capacity events in process.
func NewMemoryEventRepository(capacity int) security.EventRepository {
	return &memoryEventRepository{
		capacity: capacity,
		events:   make([]*security.Event, 0, capacity),
	}
}

func (r *memoryEventRepository) Append(_ context.Context, event *security.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = prepend(r.events, event, r.capacity)
	return nil
}

func (r *memoryEventRepository) List(_ context.Context) ([]*security.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*security.Event, len(r.events))
	copy(out, r.events)
	return out, nil
}

// prepend puts event first and drops whatever falls past capacity.
func prepend(events []*security.Event, event *security.Event, capacity int) []*security.Event {
	if capacity <= 0 {
		capacity = 1
	}
	n := len(events) + 1
	if n > capacity {
		n = capacity
	}
	out := make([]*security.Event, n, capacity)
	out[0] = event
	copy(out[1:], events)
	return out
}
