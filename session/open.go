package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
)

// Storage driver names accepted by [Open].
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverRedis  = "redis"
	DriverSQLite = "sqlite"
)

// ErrUnknownDriver is returned by [Open] for an unsupported driver name.
var ErrUnknownDriver = errors.New("unknown session storage driver")

// Options selects and configures a storage backend.
type Options struct {
	Driver string

	// Path is the session file for DriverFile and the database DSN for DriverSQLite.
	Path string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
	RedisTTL      time.Duration
}

// Open builds the storage described by opts. An empty driver selects DriverMemory.
// Backends holding resources implement [io.Closer]; see [Close].
func Open(ctx context.Context, opts Options) (Storage, error) {
	switch opts.Driver {
	case "", DriverMemory:
		return NewMemoryStorage(), nil
	case DriverFile:
		if opts.Path == "" {
			return nil, errors.New("file storage requires a path")
		}
		return NewFileStorage(opts.Path), nil
	case DriverRedis:
		if opts.RedisAddr == "" {
			return nil, errors.New("redis storage requires an address")
		}
		rdb := redis.NewClient(&redis.Options{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
		return NewRedisStorage(rdb, opts.RedisPrefix, opts.RedisTTL), nil
	case DriverSQLite:
		if opts.Path == "" {
			return nil, errors.New("sqlite storage requires a path")
		}
		return OpenSQLite(ctx, opts.Path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, opts.Driver)
	}
}

// Close releases s when it holds resources.
func Close(s Storage) error {
	if c, ok := s.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
