package options

import (
	"context"
	"errors"

	"shrtfly-integration/internal/config"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps options as plain Redis strings without expiration.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(cfg *config.Config) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return &RedisStore{client: client}, nil
}

func (rs *RedisStore) Get(ctx context.Context, key string) (string, error) {
	val, err := rs.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrOptionNotFound
	}
	return val, err
}

func (rs *RedisStore) Set(ctx context.Context, key, value string) error {
	return rs.client.Set(ctx, key, value, 0).Err()
}

// Add relies on SETNX, which is atomic on the server.
func (rs *RedisStore) Add(ctx context.Context, key, value string) (bool, error) {
	return rs.client.SetNX(ctx, key, value, 0).Result()
}

func (rs *RedisStore) Delete(ctx context.Context, key string) error {
	return rs.client.Del(ctx, key).Err()
}

func (rs *RedisStore) Close() error {
	return rs.client.Close()
}
