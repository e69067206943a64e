package redis

import (
	"context"
	"time"

	"github.com/namwkim/dataviz-storytelling/internal/cache"

	"github.com/redis/go-redis/v9"
)

const scanBatch = 500

type Cache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

func New(opts cache.Options) *Cache {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.RedisURL,
		Password: opts.RedisPassword,
		DB:       opts.RedisDB,
	})

	defaults := cache.DefaultOptions()
	ttl := opts.DefaultTTL
	if ttl <= 0 {
		ttl = defaults.DefaultTTL
	}
	prefix := opts.KeyPrefix
	if prefix == "" {
		prefix = defaults.KeyPrefix
	}
	return &Cache{client: client, ttl: ttl, prefix: prefix}
}

// Ping checks the connection so start-up can fall back to memory.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if key == "" {
		return cache.ErrInvalidKey
	}
	if ttl == 0 {
		ttl = c.ttl
	}
	return c.client.Set(ctx, c.key(key), value, ttl).Err()
}

func (c *Cache) Get(ctx context.Context, key string, value interface{}) error {
	val, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err == redis.Nil {
		return cache.ErrNotFound
	}
	if err != nil {
		return err
	}
	return cache.Decode(val, value)
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.key(key)).Err()
}

// Clear deletes the keys under this cache's prefix and leaves the rest of
// the database alone.
func (c *Cache) Clear(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, c.pattern(), scanBatch).Iterator()

	batch := make([]string, 0, scanBatch)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == scanBatch {
			if err := c.client.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return c.client.Del(ctx, batch...).Err()
	}
	return nil
}

func (c *Cache) Close() error {
	return c.client.Close()
}

func (c *Cache) key(key string) string {
	return c.prefix + key
}

// pattern matches every key under the prefix, with glob characters in the
// prefix escaped.
func (c *Cache) pattern() string {
	out := make([]byte, 0, len(c.prefix)+1)
	for i := 0; i < len(c.prefix); i++ {
		switch ch := c.prefix[i]; ch {
		case '*', '?', '[', ']', '\\':
			out = append(out, '\\', ch)
		default:
			out = append(out, ch)
		}
	}
	return string(append(out, '*'))
}
