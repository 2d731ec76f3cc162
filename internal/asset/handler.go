// Package asset serves rasterized images over HTTP: the rotator textures
// referenced by sprite draw commands and PNG renders of session scenes.
package asset

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/inamate/transformer/internal/document"
	"github.com/inamate/transformer/internal/store"
	"github.com/inamate/transformer/internal/surface"
	"github.com/inamate/transformer/internal/texture"
)

// maxRenderSide bounds the width and height of a requested render.
const maxRenderSide = 4096

// Frames looks up the current state of a session.
type Frames interface {
	Frame(ctx context.Context, sessionID string) (*document.Scene, []surface.DrawCommand, error)
}

// Handler serves texture and render endpoints.
type Handler struct {
	textures *texture.Cache
	frames   Frames
}

// NewHandler creates a handler backed by textures and frames.
func NewHandler(textures *texture.Cache, frames Frames) *Handler {
	if textures == nil {
		textures = texture.Default()
	}
	return &Handler{textures: textures, frames: frames}
}

// Texture handles GET /textures/{id}.png.
func (h *Handler) Texture(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSuffix(mux.Vars(r)["id"], ".png")
	tex, ok := h.textures.ByID(id)
	if !ok {
		http.Error(w, "texture not found", http.StatusNotFound)
		return
	}

	data, err := tex.PNG()
	if err != nil {
		slog.Error("encode texture", "error", err, "texture", id)
		http.Error(w, "failed to encode texture", http.StatusInternalServerError)
		return
	}

	// Texture ids are content hashes, so the bytes never change
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// Render handles GET /sessions/{sessionId}/render.png. The optional width
// and height query parameters override the scene size.
func (h *Handler) Render(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	scene, commands, err := h.frames.Frame(r.Context(), sessionID)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("load frame", "error", err, "session", sessionID)
		http.Error(w, "failed to load session", http.StatusInternalServerError)
		return
	}

	width, ok := dimension(r, "width", scene.Width)
	if !ok {
		http.Error(w, "invalid width", http.StatusBadRequest)
		return
	}
	height, ok := dimension(r, "height", scene.Height)
	if !ok {
		http.Error(w, "invalid height", http.StatusBadRequest)
		return
	}

	raster := surface.Raster{
		Width:      width,
		Height:     height,
		Background: scene.Background,
		Textures:   h.textures,
	}
	var buf bytes.Buffer
	if err := raster.WritePNG(&buf, commands); err != nil {
		slog.Error("render session", "error", err, "session", sessionID)
		http.Error(w, "failed to render", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

func dimension(r *http.Request, key string, def int) (int, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, def > 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 || n > maxRenderSide {
		return 0, false
	}
	return n, true
}
