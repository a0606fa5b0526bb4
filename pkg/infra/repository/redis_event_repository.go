package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/NeuralTrust/SiteGuard/pkg/domain/security"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

type redisEventRepository struct {
	logger   *logrus.Logger
	client   *redis.Client
	key      string
	capacity int
}

// NewRedisEventRepository keeps the log in one redis list, newest at the
// head, trimmed to capacity on every push.
func NewRedisEventRepository(logger *logrus.Logger, client *redis.Client, key string, capacity int) security.EventRepository {
	return &redisEventRepository{
		logger:   logger,
		client:   client,
		key:      key,
		capacity: capacity,
	}
}

func (r *redisEventRepository) Append(ctx context.Context, event *security.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal security event: %w", err)
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, r.key, data)
		pipe.LTrim(ctx, r.key, 0, int64(r.capacity-1))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to push security event: %w", err)
	}
	return nil
}

func (r *redisEventRepository) List(ctx context.Context) ([]*security.Event, error) {
	raw, err := r.client.LRange(ctx, r.key, 0, int64(r.capacity-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read security events: %w", err)
	}
	events := make([]*security.Event, 0, len(raw))
	for _, item := range raw {
		var e security.Event
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			r.logger.WithError(err).Warn("skipping undecodable security event")
			continue
		}
		events = append(events, &e)
	}
	return events, nil
}
