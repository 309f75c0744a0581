package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// redisStore keeps every setting as a field of one HASH.
type redisStore struct {
	cl  *redis.Client
	key string
	log *slog.Logger
}

func NewRedisStore(cl *redis.Client, key string, log *slog.Logger) *redisStore {
	return &redisStore{
		cl:  cl,
		key: key,
		log: log.With(slog.String("item", "RedisStore")),
	}
}

func (s *redisStore) Get(ctx context.Context, key string) (string, error) {
	value, err := s.cl.HGet(ctx, s.key, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}

		return "", fmt.Errorf("cannot get setting %s: %w", key, err)
	}

	return value, nil
}

func (s *redisStore) Set(ctx context.Context, key, value string) error {
	if _, err := s.cl.HSet(ctx, s.key, key, value).Result(); err != nil {
		s.log.Error("Cannot save setting", slog.String("key", key), slog.Any("error", err))

		return fmt.Errorf("cannot set setting %s: %w", key, err)
	}

	return nil
}

func (s *redisStore) Close() error {
	return s.cl.Close()
}
