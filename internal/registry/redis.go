package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisStore keeps all bindings in one hash; HSET touches a single field so
// unrelated users are never clobbered.
type RedisStore struct {
	rdb redis.Cmdable
	key string
	log zerolog.Logger
}

func NewRedisStore(rdb redis.Cmdable, key string, log zerolog.Logger) *RedisStore {
	return &RedisStore{
		rdb: rdb,
		key: key,
		log: log.With().Str("component", "registry").Str("backend", "redis").Logger(),
	}
}

func (s *RedisStore) Get(ctx context.Context, userID string) (string, bool) {
	name, err := s.rdb.HGet(ctx, s.key, userID).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warn().Err(err).Str("user_id", userID).Msg("registry read failed, treating as empty")
		}
		return "", false
	}
	return name, name != ""
}

func (s *RedisStore) Set(ctx context.Context, userID, packName string) error {
	if err := s.rdb.HSet(ctx, s.key, userID, packName).Err(); err != nil {
		return fmt.Errorf("registry: hset %s: %w", s.key, err)
	}
	return nil
}
