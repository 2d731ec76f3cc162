package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inamate/transformer/internal/typeid"
)

const schema = `
CREATE TABLE IF NOT EXISTS scene_snapshots (
	session_id TEXT PRIMARY KEY,
	id         TEXT NOT NULL,
	version    INTEGER NOT NULL,
	scene      JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Postgres keeps snapshots in a single upserted row per session.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres connects to databaseURL and creates the table if needed.
func NewPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Latest(ctx context.Context, sessionID string) (*Snapshot, error) {
	var snap Snapshot
	err := p.pool.QueryRow(ctx,
		`SELECT id, session_id, version, scene, created_at FROM scene_snapshots WHERE session_id = $1`,
		sessionID,
	).Scan(&snap.ID, &snap.SessionID, &snap.Version, &snap.Scene, &snap.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	return &snap, nil
}

func (p *Postgres) Save(ctx context.Context, sessionID string, scene json.RawMessage) (*Snapshot, error) {
	snap := Snapshot{ID: typeid.NewSnapshotID(), SessionID: sessionID, Scene: scene}
	err := p.pool.QueryRow(ctx, `
		INSERT INTO scene_snapshots (session_id, id, version, scene)
		VALUES ($1, $2, 1, $3)
		ON CONFLICT (session_id) DO UPDATE
		SET id = EXCLUDED.id,
		    version = scene_snapshots.version + 1,
		    scene = EXCLUDED.scene,
		    created_at = now()
		RETURNING version, created_at`,
		sessionID, snap.ID, []byte(scene),
	).Scan(&snap.Version, &snap.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("save snapshot: %w", err)
	}
	return &snap, nil
}

func (p *Postgres) Close() { p.pool.Close() }
