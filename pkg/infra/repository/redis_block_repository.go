package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/NeuralTrust/SiteGuard/pkg/domain/security"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// redisBlockRepository keeps entries in one hash keyed by client so every
// instance sees the same block list.
type redisBlockRepository struct {
	logger *logrus.Logger
	client *redis.Client
	key    string
}

func NewRedisBlockRepository(logger *logrus.Logger, client *redis.Client, key string) security.BlockRepository {
	return &redisBlockRepository{
		logger: logger,
		client: client,
		key:    key,
	}
}

func (r *redisBlockRepository) Add(ctx context.Context, entry security.BlockEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal block entry: %w", err)
	}
	if err := r.client.HSet(ctx, r.key, entry.IP, string(data)).Err(); err != nil {
		return fmt.Errorf("failed to store block entry: %w", err)
	}
	return nil
}

func (r *redisBlockRepository) Remove(ctx context.Context, ip string) (bool, error) {
	n, err := r.client.HDel(ctx, r.key, ip).Result()
	if err != nil {
		return false, fmt.Errorf("failed to remove block entry: %w", err)
	}
	return n > 0, nil
}

func (r *redisBlockRepository) Contains(ctx context.Context, ip string) (bool, error) {
	ok, err := r.client.HExists(ctx, r.key, ip).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check block entry: %w", err)
	}
	return ok, nil
}

func (r *redisBlockRepository) List(ctx context.Context) ([]security.BlockEntry, error) {
	raw, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list block entries: %w", err)
	}
	entries := make([]security.BlockEntry, 0, len(raw))
	for ip, item := range raw {
		var e security.BlockEntry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			r.logger.WithError(err).WithField("ip", ip).Warn("skipping undecodable block entry")
			continue
		}
		entries = append(entries, e)
	}
	sortEntries(entries)
	return entries, nil
}
