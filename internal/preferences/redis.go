package preferences

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/bobby-s-dev/weather-widget/internal/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const DefaultRedisKey = "weather-widget:units"

const pingTimeout = 2 * time.Second

type RedisStore struct {
	client redis.Cmdable
	key    string
	logger *zap.Logger
	closer io.Closer
}

func NewRedisStore(client redis.Cmdable, key string, logger *zap.Logger) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{client: client, key: key, logger: logger}
}

// NewRedisStoreFromURL connects and pings the server. The returned store owns
// the connection; release it with Close.
func NewRedisStoreFromURL(url, key string, logger *zap.Logger) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", opts.Addr, err)
	}

	store := NewRedisStore(client, key, logger)
	store.closer = client
	return store, nil
}

func (s *RedisStore) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

func (s *RedisStore) LoadUnits(ctx context.Context) (models.Units, bool, error) {
	value, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading unit preference: %w", err)
	}

	units, ok := parseStored(value)
	if !ok {
		invalidStored(s.logger, s.key, value)
	}
	return units, ok, nil
}

func (s *RedisStore) SaveUnits(ctx context.Context, units models.Units) error {
	if err := s.client.Set(ctx, s.key, string(units), 0).Err(); err != nil {
		return fmt.Errorf("writing unit preference: %w", err)
	}
	return nil
}
