package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sreevishnu-spericorn/jag-backend/internal/pkg/env"
)

// Accessor is the cache dependency handed to services. Implementations must be
// safe for concurrent use. Services never treat a cache failure as fatal; the
// Safe* helpers below enforce that.
type Accessor interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	DeletePattern(ctx context.Context, pattern string) error
}

// Miss is returned by Get when the key is absent.
var Miss = redis.Nil

type redisAccessor struct {
	client *redis.Client
}

// NewRedis connects to the configured cache server. The connection is probed
// once at startup; a failed ping is logged but the accessor is still returned,
// since cache unavailability must never break the application.
func NewRedis() Accessor {
	host := env.GetEnv("CACHE_HOST", "localhost")
	port := env.GetEnv("CACHE_PORT", "6379")

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: env.GetEnv("CACHE_PASSWORD", ""),
		DB:       env.GetEnvInt("CACHE_DB", 0),
	})

	if pong, err := client.Ping(context.Background()).Result(); err != nil {
		log.Printf("Warning: could not connect to cache at %s:%s: %v", host, port, err)
	} else {
		log.Printf("Connected to cache: %s", pong)
	}

	return &redisAccessor{client: client}
}

func (r *redisAccessor) Get(ctx context.Context, key string) (string, error) {
	return r.client.Get(ctx, key).Result()
}

func (r *redisAccessor) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *redisAccessor) DeletePattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, nextCursor, err := r.client.Scan(ctx, cursor, pattern, 500).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = nextCursor
		if cursor == 0 {
			return nil
		}
	}
}

// SafeGet returns the cached value or "" on miss/error. Errors are logged only.
func SafeGet(ctx context.Context, a Accessor, key string) (string, bool) {
	if a == nil {
		return "", false
	}
	val, err := a.Get(ctx, key)
	if err != nil {
		if err != Miss {
			log.Printf("Warning: cache GET %s failed: %v", key, err)
		}
		return "", false
	}
	return val, true
}

// SafeSet stores a value best-effort.
func SafeSet(ctx context.Context, a Accessor, key, value string, ttl time.Duration) {
	if a == nil {
		return
	}
	if err := a.Set(ctx, key, value, ttl); err != nil {
		log.Printf("Warning: cache SET %s failed: %v", key, err)
	}
}

// SafeDelPattern invalidates all keys matching pattern best-effort.
func SafeDelPattern(ctx context.Context, a Accessor, pattern string) {
	if a == nil {
		return
	}
	if err := a.DeletePattern(ctx, pattern); err != nil {
		log.Printf("Warning: cache DEL %s failed: %v", pattern, err)
	}
}
