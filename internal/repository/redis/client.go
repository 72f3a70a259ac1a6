package redis

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sau-portal/auth-gateway/internal/config"
)

const dialTimeout = 5 * time.Second

// Cache is the optional caching and revocation-blocklist layer on top of the
// authoritative session store.
type Cache struct {
	client *redis.Client
}

// Connect dials Redis from REDIS_URL. An unreachable server is not fatal:
// the gateway runs on the authoritative store alone, and callers treat the
// nil return as cache-disabled.
func Connect() *Cache {
	addr := config.GetEnv("REDIS_URL", "localhost:6379")
	password := config.GetEnv("REDIS_PASSWORD", "")

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("[REDIS] Warning: Could not connect to Redis: %v. Falling back to the authoritative store only.", err)
		client.Close()
		return nil
	}

	log.Println("[REDIS] Connected successfully")
	return &Cache{client: client}
}

func (c *Cache) Close() error {
	return c.client.Close()
}

func (c *Cache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return c.client.Set(ctx, key, value, expiration).Err()
}

// Get returns the value, or an empty string with no error for an absent key.
// A non-nil error means the server could not be reached.
func (c *Cache) Get(ctx context.Context, key string) (string, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	return val, err
}

func (c *Cache) Del(ctx context.Context, keys ...string) error {
	return c.client.Del(ctx, keys...).Err()
}
