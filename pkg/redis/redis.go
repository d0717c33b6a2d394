package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/ikkim/catalogo-backend/config"
	"github.com/ikkim/catalogo-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

var client *redis.Client

// Init initializes Redis connection
func Init(cfg *config.RedisConfig) error {
	logger.Info("Initializing Redis connection", map[string]interface{}{
		"host": cfg.Host,
		"port": cfg.Port,
		"db":   cfg.DB,
	})

	client = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("Failed to connect to Redis", err, map[string]interface{}{
			"host": cfg.Host,
			"port": cfg.Port,
		})
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established successfully")
	return nil
}

// GetClient returns the Redis client instance
func GetClient() *redis.Client {
	return client
}

// Close closes the Redis connection
func Close() error {
	if client != nil {
		logger.Info("Closing Redis connection")
		return client.Close()
	}
	return nil
}

// Store keeps revoked token ids and rate limit counters in redis so they
// are shared between server instances.
type Store struct {
	rdb    redis.Cmdable
	prefix string
}

func NewStore(rdb redis.Cmdable) *Store {
	return &Store{rdb: rdb, prefix: "catalogo:"}
}

// Revoke blacklists a token id until ttl elapses.
func (s *Store) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	logger.Debug("Adding token to blacklist", map[string]interface{}{
		"expiry": ttl.String(),
	})

	key := s.prefix + "blacklist:" + tokenID
	if err := s.rdb.Set(ctx, key, "revoked", ttl).Err(); err != nil {
		logger.Error("Failed to blacklist token", err)
		return err
	}
	return nil
}

// IsRevoked checks if a token id is in the blacklist
func (s *Store) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	val, err := s.rdb.Get(ctx, s.prefix+"blacklist:"+tokenID).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		logger.Error("Failed to check token blacklist", err)
		return false, err
	}
	return val == "revoked", nil
}

// Allow counts one hit against key in a fixed window. The window starts
// with the first hit.
func (s *Store) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	k := s.prefix + "ratelimit:" + key

	pipe := s.rdb.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.ExpireNX(ctx, k, window)
	if _, err := pipe.Exec(ctx); err != nil {
		logger.Error("Failed to count rate limit hit", err, map[string]interface{}{
			"key": key,
		})
		return false, err
	}
	return incr.Val() <= int64(limit), nil
}
