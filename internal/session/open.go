package session

import (
	"context"
	"fmt"

	"github.com/and161185/socialclient/internal/migrate"
	"github.com/and161185/socialclient/internal/session/postgres"
)

// Backend names accepted by Open.
const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

var _ Slot = (*postgres.Slot)(nil)

// Options selects and configures the durable slot backend.
type Options struct {
	Backend     string
	Dir         string // file backend; DefaultDir() when empty
	RedisURL    string
	RedisPrefix string
	DSN         string
	Migrate     bool   // postgres: apply migrations before use
	Passphrase  string // non-empty wraps the slot in Sealed
}

// Open builds the slot named by opts.Backend. The returned func releases backend resources.
func Open(ctx context.Context, opts Options) (Slot, func(), error) {
	var (
		slot    Slot
		release = func() {}
	)
	switch opts.Backend {
	case "", BackendFile:
		dir := opts.Dir
		if dir == "" {
			dir = DefaultDir()
		}
		slot = NewFile(dir)
	case BackendMemory:
		slot = NewMemory()
	case BackendRedis:
		r, c, err := NewRedis(ctx, opts.RedisURL, opts.RedisPrefix)
		if err != nil {
			return nil, nil, fmt.Errorf("redis slot: %w", err)
		}
		slot, release = r, func() { _ = c() }
	case BackendPostgres:
		if opts.Migrate {
			if err := migrate.Up(ctx, opts.DSN); err != nil {
				return nil, nil, fmt.Errorf("migrate up: %w", err)
			}
		}
		pg, err := postgres.Open(ctx, opts.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres slot: %w", err)
		}
		slot, release = pg, pg.Close
	default:
		return nil, nil, fmt.Errorf("unknown session backend %q", opts.Backend)
	}
	if opts.Passphrase != "" {
		slot = NewSealed(slot, opts.Passphrase)
	}
	return slot, release, nil
}
