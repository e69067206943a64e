package cache

import (
	"context"
	"encoding"
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("key not found in cache")
	ErrInvalidValue = errors.New("invalid value for cache")
	ErrClosed       = errors.New("cache is closed")
	ErrInvalidKey   = errors.New("invalid cache key")
)

type Cache interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	Get(ctx context.Context, key string, value interface{}) error

	Delete(ctx context.Context, key string) error

	Clear(ctx context.Context) error

	Close() error
}

type Options struct {
	DefaultTTL time.Duration

	CleanupInterval time.Duration

	RedisURL string

	RedisPassword string

	RedisDB int

	// KeyPrefix namespaces keys in a shared store; Clear only removes keys
	// under it.
	KeyPrefix string
}

func DefaultOptions() Options {
	return Options{
		DefaultTTL:      time.Hour,
		CleanupInterval: time.Minute * 5,
		KeyPrefix:       "dataviz:",
	}
}

// encode turns a cacheable value into bytes.
func encode(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	case encoding.BinaryMarshaler:
		return v.MarshalBinary()
	default:
		return nil, ErrInvalidValue
	}
}

// Decode copies cached bytes into value, which must be a *string, *[]byte
// or an encoding.BinaryUnmarshaler.
func Decode(raw []byte, value interface{}) error {
	switch v := value.(type) {
	case *string:
		*v = string(raw)
	case *[]byte:
		*v = append((*v)[:0], raw...)
	case encoding.BinaryUnmarshaler:
		return v.UnmarshalBinary(raw)
	default:
		return ErrInvalidValue
	}
	return nil
}
