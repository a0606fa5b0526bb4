package eventlog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/NeuralTrust/SiteGuard/pkg/domain/security"
	"github.com/sirupsen/logrus"
)

var ErrInvalidFilter = errors.New("invalid event filter")

// Dispatcher fans stored events out to secondary consumers without
// blocking the caller.
type Dispatcher interface {
	Dispatch(event *security.Event)
}

type Service interface {
	// Append stores the event. Storage faults are logged, never returned.
	Append(ctx context.Context, event *security.Event)
	Query(ctx context.Context, filter security.Filter) (*security.Page, error)
	Stats(ctx context.Context) (*security.Stats, error)
}

type Options struct {
	TimeProvider func() time.Time
}

type service struct {
	logger       *logrus.Logger
	repo         security.EventRepository
	dispatcher   Dispatcher
	timeProvider func() time.Time
}

func NewService(
	logger *logrus.Logger,
	repo security.EventRepository,
	dispatcher Dispatcher,
	opts *Options,
) Service {
	timeProvider := time.Now
	if opts != nil && opts.TimeProvider != nil {
		timeProvider = opts.TimeProvider
	}
	return &service{
		logger:       logger,
		repo:         repo,
		dispatcher:   dispatcher,
		timeProvider: timeProvider,
	}
}

func (s *service) Append(ctx context.Context, event *security.Event) {
	if event == nil {
		return
	}
	if err := s.repo.Append(ctx, event); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"event_id": event.ID,
			"type":     event.Type,
			"ip":       event.IP,
		}).Error("failed to store security event")
		return
	}
	if s.dispatcher != nil {
		s.dispatcher.Dispatch(event)
	}
}

func (s *service) Query(ctx context.Context, filter security.Filter) (*security.Page, error) {
	filter, err := normalize(filter)
	if err != nil {
		return nil, err
	}
	if pager, ok := s.repo.(security.Pager); ok {
		return pager.Page(ctx, filter)
	}

	events, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list security events: %w", err)
	}
	return Paginate(events, filter), nil
}

// Paginate applies the filter to a newest first event list.
func Paginate(events []*security.Event, filter security.Filter) *security.Page {
	matched := make([]*security.Event, 0, len(events))
	for _, e := range events {
		if filter.Matches(e) {
			matched = append(matched, e)
		}
	}

	page := &security.Page{
		Events: []*security.Event{},
		Total:  len(matched),
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}
	if filter.Offset >= len(matched) {
		return page
	}
	end := filter.Offset + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}
	page.Events = matched[filter.Offset:end]
	return page
}

func normalize(filter security.Filter) (security.Filter, error) {
	if filter.Severity != "" && !filter.Severity.Valid() {
		return filter, fmt.Errorf("%w: unknown severity %q", ErrInvalidFilter, filter.Severity)
	}
	if filter.Type != "" && !filter.Type.Valid() {
		return filter, fmt.Errorf("%w: unknown type %q", ErrInvalidFilter, filter.Type)
	}
	if filter.Limit <= 0 {
		filter.Limit = security.DefaultQueryLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return filter, nil
}

func (s *service) Stats(ctx context.Context) (*security.Stats, error) {
	events, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list security events: %w", err)
	}
	return Aggregate(events, s.timeProvider()), nil
}

// Aggregate computes the dashboard summary of a newest first event list.
func Aggregate(events []*security.Event, now time.Time) *security.Stats {
	stats := &security.Stats{
		Total: len(events),
		BySeverity: map[security.Severity]int{
			security.SeverityHigh:   0,
			security.SeverityMedium: 0,
			security.SeverityLow:    0,
		},
		ByType:        make(map[security.Outcome]int),
		TopIPs:        []security.ClientCount{},
		RecentAttacks: []*security.Event{},
		GeneratedAt:   now.UTC(),
	}

	perIP := make(map[string]int)
	for _, e := range events {
		if now.Sub(e.Timestamp) < 24*time.Hour {
			stats.Last24Hours++
		}
		stats.BySeverity[e.Severity]++
		stats.ByType[e.Type]++
		if e.IP != "" && e.IP != "unknown" {
			perIP[e.IP]++
		}
		if e.IsAttack() && len(stats.RecentAttacks) < security.RecentAttackLimit {
			stats.RecentAttacks = append(stats.RecentAttacks, e)
		}
	}

	for ip, count := range perIP {
		stats.TopIPs = append(stats.TopIPs, security.ClientCount{IP: ip, Count: count})
	}
	sort.Slice(stats.TopIPs, func(i, j int) bool {
		if stats.TopIPs[i].Count != stats.TopIPs[j].Count {
			return stats.TopIPs[i].Count > stats.TopIPs[j].Count
		}
		return stats.TopIPs[i].IP < stats.TopIPs[j].IP
	})
	if len(stats.TopIPs) > security.TopClientsLimit {
		stats.TopIPs = stats.TopIPs[:security.TopClientsLimit]
	}
	return stats
}
