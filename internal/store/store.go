// Package store persists the latest scene snapshot of each session.
// Only the newest snapshot is kept; there is no history.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/inamate/transformer/internal/typeid"
)

var ErrNotFound = errors.New("snapshot not found")

type Snapshot struct {
	ID        string          `json:"id"`
	SessionID string          `json:"sessionId"`
	Version   int             `json:"version"`
	Scene     json.RawMessage `json:"scene"`
	CreatedAt time.Time       `json:"createdAt"`
}

type Store interface {
	// Latest returns the newest snapshot of a session or ErrNotFound.
	Latest(ctx context.Context, sessionID string) (*Snapshot, error)
	// Save replaces the session's snapshot and bumps its version.
	Save(ctx context.Context, sessionID string, scene json.RawMessage) (*Snapshot, error)
	Close()
}

// Memory is a Store for development and tests.
type Memory struct {
	mu    sync.Mutex
	snaps map[string]Snapshot
	now   func() time.Time
}

func NewMemory() *Memory {
	return &Memory{snaps: make(map[string]Snapshot), now: time.Now}
}

func (m *Memory) Latest(_ context.Context, sessionID string) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.snaps[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	snap.Scene = append(json.RawMessage(nil), snap.Scene...)
	return &snap, nil
}

func (m *Memory) Save(_ context.Context, sessionID string, scene json.RawMessage) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := Snapshot{
		ID:        typeid.NewSnapshotID(),
		SessionID: sessionID,
		Version:   m.snaps[sessionID].Version + 1,
		Scene:     append(json.RawMessage(nil), scene...),
		CreatedAt: m.now().UTC(),
	}
	m.snaps[sessionID] = snap
	return &snap, nil
}

func (m *Memory) Close() {}
