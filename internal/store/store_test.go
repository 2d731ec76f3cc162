package store

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/transformer/internal/typeid"
)

func testStore(t *testing.T, s Store) {
	ctx := context.Background()
	session := typeid.NewSessionID()

	_, err := s.Latest(ctx, session)
	assert.ErrorIs(t, err, ErrNotFound)

	first, err := s.Save(ctx, session, json.RawMessage(`{"name":"a"}`))
	require.NoError(t, err)
	assert.Equal(t, 1, first.Version)
	assert.True(t, strings.HasPrefix(first.ID, "snap_"))

	second, err := s.Save(ctx, session, json.RawMessage(`{"name":"b"}`))
	require.NoError(t, err)
	assert.Equal(t, 2, second.Version)

	latest, err := s.Latest(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)
	assert.Equal(t, 2, latest.Version)
	assert.JSONEq(t, `{"name":"b"}`, string(latest.Scene))

	_, err = s.Latest(ctx, typeid.NewSessionID())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory(t *testing.T) {
	testStore(t, NewMemory())
}

func TestMemoryCopiesScene(t *testing.T) {
	m := NewMemory()
	scene := json.RawMessage(`{"v":1}`)
	_, err := m.Save(context.Background(), "s", scene)
	require.NoError(t, err)
	scene[5] = '9'

	latest, err := m.Latest(context.Background(), "s")
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":1}`, string(latest.Scene))
}

func TestPostgres(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	p, err := NewPostgres(context.Background(), url)
	require.NoError(t, err)
	defer p.Close()
	testStore(t, p)
}
