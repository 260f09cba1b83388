// Package postgres stores session slots in the client_kv table.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/and161185/socialclient/internal/errs"
)

// Conn is the part of *pgxpool.Pool the slot needs; pgxmock.PgxPoolIface satisfies it too.
type Conn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// Slot stores key/value cells in the client_kv table.
type Slot struct{ conn Conn }

// NewSlot wraps an existing connection.
func NewSlot(conn Conn) *Slot { return &Slot{conn: conn} }

// Open connects to dsn with a small pool; a client holds at most a couple of cells.
func Open(ctx context.Context, dsn string) (*Slot, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	cfg.MaxConns = 2
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &Slot{conn: pool}, nil
}

// Close releases the connection.
func (s *Slot) Close() { s.conn.Close() }

// Get loads the value for key; missing rows map to errs.ErrNotFound.
func (s *Slot) Get(ctx context.Context, key string) ([]byte, error) {
	const q = `SELECT value FROM client_kv WHERE key=$1`
	var v []byte
	err := s.conn.QueryRow(ctx, q, key).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Put upserts the value for key.
func (s *Slot) Put(ctx context.Context, key string, value []byte) error {
	const q = `
INSERT INTO client_kv (key, value, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET value=EXCLUDED.value, updated_at=now()`
	_, err := s.conn.Exec(ctx, q, key, value)
	return err
}

// Delete removes key; deleting a missing key is not an error.
func (s *Slot) Delete(ctx context.Context, key string) error {
	const q = `DELETE FROM client_kv WHERE key=$1`
	_, err := s.conn.Exec(ctx, q, key)
	return err
}
