package storage

import (
	"context"
	"fmt"
	"path/filepath"
)

// Store is a byte-oriented key-value backend. The gateway keeps a single
// well-known key in it, but backends make no assumption about key count.
//
// Get returns (nil, false, nil) when the key is absent; an error means the
// backend could not answer.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Backend names accepted by [Open].
const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Options selects and configures a backend.
type Options struct {
	Backend string

	// Path is the directory for the file backend and the database file for
	// the sqlite backend.
	Path string

	RedisAddr string
	RedisDB   int

	PostgresDSN string
}

// Open creates the backend named by opts.Backend. An empty backend name
// selects the file store.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case "", BackendFile:
		return NewFileStore(opts.Path)
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendSQLite:
		path := opts.Path
		if path != "" && filepath.Ext(path) == "" {
			path = filepath.Join(path, "flowcanvas.db")
		}
		return NewSQLiteStore(ctx, path)
	case BackendRedis:
		return NewRedisStore(ctx, RedisConfig{Addr: opts.RedisAddr, DB: opts.RedisDB})
	case BackendPostgres:
		return NewPostgresStore(ctx, opts.PostgresDSN)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}
