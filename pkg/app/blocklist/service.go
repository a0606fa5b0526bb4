package blocklist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/NeuralTrust/SiteGuard/pkg/domain/security"
	"github.com/sirupsen/logrus"
)

var ErrEmptyClient = errors.New("client identifier is required")

const DefaultReason = "Manually blocked by admin"

// EventRecorder is the part of the event log the block list writes to.
type EventRecorder interface {
	Append(ctx context.Context, event *security.Event)
}

// Observer is told the block list size after every change.
type Observer func(size int)

type Service interface {
	IsBlocked(ctx context.Context, client string) bool
	Block(ctx context.Context, client, reason string) error
	Unblock(ctx context.Context, client string) (bool, error)
	List(ctx context.Context) ([]security.BlockEntry, error)
}

type Options struct {
	TimeProvider func() time.Time
	Observer     Observer
}

type service struct {
	logger       *logrus.Logger
	repo         security.BlockRepository
	events       EventRecorder
	timeProvider func() time.Time
	observer     Observer
}

func NewService(logger *logrus.Logger, repo security.BlockRepository, events EventRecorder, opts *Options) Service {
	s := &service{
		logger:       logger,
		repo:         repo,
		events:       events,
		timeProvider: time.Now,
	}
	if opts != nil {
		if opts.TimeProvider != nil {
			s.timeProvider = opts.TimeProvider
		}
		s.observer = opts.Observer
	}
	return s
}

// IsBlocked fails open: a lookup error is logged and the client admitted.
func (s *service) IsBlocked(ctx context.Context, client string) bool {
	blocked, err := s.repo.Contains(ctx, client)
	if err != nil {
		s.logger.WithError(err).WithField("ip", client).Error("failed to check block list")
		return false
	}
	return blocked
}

func (s *service) Block(ctx context.Context, client, reason string) error {
	client = strings.Clone(strings.TrimSpace(client))
	if client == "" {
		return ErrEmptyClient
	}
	if strings.TrimSpace(reason) == "" {
		reason = DefaultReason
	} else {
		reason = strings.Clone(reason)
	}

	now := s.timeProvider()
	if err := s.repo.Add(ctx, security.BlockEntry{IP: client, Reason: reason, BlockedAt: now.UTC()}); err != nil {
		return fmt.Errorf("failed to block %s: %w", client, err)
	}

	event := security.NewEvent(security.OutcomeIPBlocked, security.SeverityHigh, now)
	event.IP = client
	event.Details = reason
	s.events.Append(ctx, event)

	s.logger.WithFields(logrus.Fields{
		"ip":     client,
		"reason": reason,
	}).Warn("client blocked")
	s.notify(ctx)
	return nil
}

func (s *service) Unblock(ctx context.Context, client string) (bool, error) {
	client = strings.TrimSpace(client)
	if client == "" {
		return false, ErrEmptyClient
	}
	removed, err := s.repo.Remove(ctx, client)
	if err != nil {
		return false, fmt.Errorf("failed to unblock %s: %w", client, err)
	}
	if removed {
		s.logger.WithField("ip", client).Info("client unblocked")
		s.notify(ctx)
	}
	return removed, nil
}

func (s *service) List(ctx context.Context) ([]security.BlockEntry, error) {
	return s.repo.List(ctx)
}

func (s *service) notify(ctx context.Context) {
	if s.observer == nil {
		return
	}
	entries, err := s.repo.List(ctx)
	if err != nil {
		s.logger.WithError(err).Debug("could not size block list")
		return
	}
	s.observer(len(entries))
}
