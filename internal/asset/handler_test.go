package asset

import (
	"context"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/transformer/internal/document"
	"github.com/inamate/transformer/internal/store"
	"github.com/inamate/transformer/internal/surface"
	"github.com/inamate/transformer/internal/texture"
)

type stubFrames map[string]*document.Scene

func (s stubFrames) Frame(_ context.Context, id string) (*document.Scene, []surface.DrawCommand, error) {
	scene, ok := s[id]
	if !ok {
		return nil, nil, store.ErrNotFound
	}
	rec := surface.NewRecorder("root")
	scene.Render(rec.AddChild("scene"))
	return scene, rec.Compile(), nil
}

func newRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/textures/{id}", h.Texture).Methods("GET")
	r.HandleFunc("/sessions/{sessionId}/render.png", h.Render).Methods("GET")
	return r
}

func TestTextureServesPNG(t *testing.T) {
	cache := texture.NewCache(0)
	tex, err := cache.Rotator("#1e88e5", "#333333", 24)
	require.NoError(t, err)
	r := newRouter(NewHandler(cache, stubFrames{}))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/textures/"+tex.ID+".png", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Cache-Control"), "immutable")
	img, err := png.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 24, img.Bounds().Dx())
}

func TestTextureNotFound(t *testing.T) {
	r := newRouter(NewHandler(texture.NewCache(0), stubFrames{}))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/textures/nope.png", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRenderSession(t *testing.T) {
	frames := stubFrames{"sess_a": document.NewSampleScene()}
	r := newRouter(NewHandler(texture.NewCache(0), frames))

	tests := []struct {
		name       string
		url        string
		wantStatus int
		wantWidth  int
	}{
		{"scene size", "/sessions/sess_a/render.png", http.StatusOK, frames["sess_a"].Width},
		{"override size", "/sessions/sess_a/render.png?width=320&height=180", http.StatusOK, 320},
		{"bad width", "/sessions/sess_a/render.png?width=-1", http.StatusBadRequest, 0},
		{"too large", "/sessions/sess_a/render.png?height=100000", http.StatusBadRequest, 0},
		{"unknown session", "/sessions/sess_b/render.png", http.StatusNotFound, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.url, nil))
			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus != http.StatusOK {
				return
			}
			img, err := png.Decode(rec.Body)
			require.NoError(t, err)
			assert.Equal(t, tt.wantWidth, img.Bounds().Dx())
		})
	}
}
