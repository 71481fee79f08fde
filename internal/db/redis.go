package db

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/yigit/schoolbook/internal/app/models"
	"github.com/yigit/schoolbook/internal/app/persistence"
	"github.com/yigit/schoolbook/internal/config"
	"github.com/yigit/schoolbook/internal/pkg/apperrors"
	"github.com/yigit/schoolbook/internal/pkg/logger"
)

// RedisStore keeps the JSON document of a dataset under one key, with a
// metadata hash next to it.
type RedisStore struct {
	Client *redis.Client
	key    string
}

// NewRedisStore connects to addr and verifies the connection
func NewRedisStore(ctx context.Context, addr, password string, database int, key string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       database,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return NewRedisStoreWithClient(client, key), nil
}

// NewRedisStoreWithClient wraps an existing client
func NewRedisStoreWithClient(client *redis.Client, key string) *RedisStore {
	return &RedisStore{Client: client, key: key}
}

// metaKey is the hash holding snapshot metadata
func (s *RedisStore) metaKey() string {
	return s.key + ":meta"
}

// Name identifies the backend
func (s *RedisStore) Name() string {
	return config.DriverRedis
}

// Close closes the client
func (s *RedisStore) Close() error {
	return s.Client.Close()
}

// WriteSnapshot stores ds and its metadata in one MULTI/EXEC pipeline
func (s *RedisStore) WriteSnapshot(ctx context.Context, ds models.Dataset) error {
	var buf bytes.Buffer
	if err := persistence.Encode(&buf, ds); err != nil {
		return err
	}

	_, err := s.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key, buf.Bytes(), 0)
		pipe.HSet(ctx, s.metaKey(), map[string]interface{}{
			"saved_at":    time.Now().UTC().Format(time.RFC3339),
			"students":    len(ds.Students),
			"instructors": len(ds.Instructors),
			"courses":     len(ds.Courses),
		})
		return nil
	})
	if err != nil {
		logger.Error().Err(err).Str("key", s.key).Msg("Error writing snapshot to redis")
		return fmt.Errorf("failed to write snapshot to redis: %w", err)
	}
	return nil
}

// ReadSnapshot loads the stored document
func (s *RedisStore) ReadSnapshot(ctx context.Context) (models.Dataset, error) {
	data, err := s.Client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Dataset{}, apperrors.NewNotFoundError("snapshot", s.Name())
	}
	if err != nil {
		return models.Dataset{}, fmt.Errorf("failed to read snapshot from redis: %w", err)
	}
	return persistence.Decode(bytes.NewReader(data))
}

// Meta returns the metadata hash of the last snapshot
func (s *RedisStore) Meta(ctx context.Context) (map[string]string, error) {
	return s.Client.HGetAll(ctx, s.metaKey()).Result()
}
