package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/NeuralTrust/SiteGuard/pkg/domain/security"
	"github.com/sirupsen/logrus"
)

// fileEventRepository stores the log as one indented JSON array, newest
// first. Every append rewrites the file through a temp file and rename.
type fileEventRepository struct {
	logger   *logrus.Logger
	path     string
	capacity int

	mu     sync.Mutex
	events []*security.Event
}

func NewFileEventRepository(logger *logrus.Logger, path string, capacity int) (security.EventRepository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create event log directory: %w", err)
	}
	r := &fileEventRepository{
		logger:   logger,
		path:     path,
		capacity: capacity,
	}

	events, err := r.load()
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := r.write(nil); err != nil {
			return nil, err
		}
	case err != nil:
		logger.WithError(err).WithField("path", path).Warn("unreadable event log, starting empty")
	default:
		if len(events) > capacity {
			events = events[:capacity]
		}
		r.events = events
	}
	return r, nil
}

func (r *fileEventRepository) load() ([]*security.Event, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, err
	}
	var events []*security.Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", r.path, err)
	}
	return events, nil
}

func (r *fileEventRepository) write(events []*security.Event) error {
	if events == nil {
		events = []*security.Event{}
	}
	data, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode event log: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".security-log-*")
	if err != nil {
		return fmt.Errorf("failed to create temp event log: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write event log: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp event log: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("failed to replace event log: %w", err)
	}
	return nil
}

func (r *fileEventRepository) Append(_ context.Context, event *security.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := prepend(r.events, event, r.capacity)
	if err := r.write(next); err != nil {
		return err
	}
	r.events = next
	return nil
}

func (r *fileEventRepository) List(_ context.Context) ([]*security.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*security.Event, len(r.events))
	copy(out, r.events)
	return out, nil
}
