// Package session runs live transformer sessions over websockets. Each
// session is a room that owns one scene, one pointer stage and one
// transformer; connected clients drive it with pointer events and receive
// the resulting draw commands.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/inamate/transformer/internal/config"
	"github.com/inamate/transformer/internal/document"
	"github.com/inamate/transformer/internal/store"
	"github.com/inamate/transformer/internal/surface"
	"github.com/inamate/transformer/internal/texture"
)

type HubConfig struct {
	Store    store.Store
	Options  config.Options
	Textures *texture.Cache
	Logger   *slog.Logger
}

type registration struct {
	client *Client
	done   chan struct{}
}

type Hub struct {
	cfg    HubConfig
	logger *slog.Logger

	mu    sync.RWMutex
	rooms map[string]*Room // sessionID -> room

	register   chan registration
	unregister chan registration
	stop       chan struct{}
	stopped    chan struct{}
}

func NewHub(cfg HubConfig) *Hub {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Store == nil {
		cfg.Store = store.NewMemory()
	}
	if cfg.Textures == nil {
		cfg.Textures = texture.Default()
	}
	return &Hub{
		cfg:        cfg,
		logger:     cfg.Logger,
		rooms:      make(map[string]*Room),
		register:   make(chan registration),
		unregister: make(chan registration),
		stop:       make(chan struct{}),
		stopped:    make(chan struct{}),
	}
}

// Run serves registrations until Stop is called.
func (h *Hub) Run() {
	defer close(h.stopped)
	for {
		select {
		case r := <-h.register:
			h.addClient(r.client)
			close(r.done)
		case r := <-h.unregister:
			h.removeClient(r.client)
			close(r.done)
		case <-h.stop:
			h.closeRooms()
			return
		}
	}
}

// Register adds client to its session, creating the room on first join.
// It returns once the client has been welcomed.
func (h *Hub) Register(client *Client) {
	h.call(h.register, client)
}

func (h *Hub) Unregister(client *Client) {
	h.call(h.unregister, client)
}

func (h *Hub) call(ch chan registration, client *Client) {
	r := registration{client: client, done: make(chan struct{})}
	select {
	case ch <- r:
		<-r.done
	case <-h.stopped:
	}
}

// Stop closes every room, saving its latest scene, and ends Run.
func (h *Hub) Stop() {
	select {
	case h.stop <- struct{}{}:
		<-h.stopped
	case <-h.stopped:
	}
}

// Room returns the room of a session, if it is open.
func (h *Hub) Room(sessionID string) (*Room, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	r, ok := h.rooms[sessionID]
	return r, ok
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.SessionID]
	if !ok {
		room = h.openRoom(client.SessionID)
		h.rooms[client.SessionID] = room
	}
	h.mu.Unlock()

	room.join(client)
	h.logger.Info("client joined", "user", client.UserID, "session", client.SessionID)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.SessionID]
	if !ok {
		h.mu.Unlock()
		return
	}
	empty := room.leave(client)
	if empty {
		delete(h.rooms, client.SessionID)
	}
	h.mu.Unlock()

	if empty {
		room.close()
	}
	h.logger.Info("client left", "user", client.UserID, "session", client.SessionID, "dropped", client.Dropped())
}

func (h *Hub) openRoom(sessionID string) *Room {
	scene, err := h.loadScene(sessionID)
	if err != nil {
		h.logger.Error("load scene, starting from sample", "session", sessionID, "error", err)
		scene = document.NewSampleScene()
	}
	return newRoom(roomConfig{
		id:       sessionID,
		scene:    scene,
		options:  h.cfg.Options,
		textures: h.cfg.Textures,
		store:    h.cfg.Store,
		logger:   h.logger.With("session", sessionID),
	})
}

func (h *Hub) loadScene(sessionID string) (*document.Scene, error) {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	snap, err := h.cfg.Store.Latest(ctx, sessionID)
	if errors.Is(err, store.ErrNotFound) {
		return document.NewSampleScene(), nil
	}
	if err != nil {
		return nil, err
	}
	return decodeScene(snap.Scene)
}

func (h *Hub) closeRooms() {
	h.mu.Lock()
	rooms := h.rooms
	h.rooms = make(map[string]*Room)
	h.mu.Unlock()

	for _, r := range rooms {
		r.close()
	}
}

func (h *Hub) handleMessage(sender *Client, msg *Message) {
	room, ok := h.Room(sender.SessionID)
	if !ok {
		return
	}
	room.handle(sender, msg)
}

// Frame returns a session's scene and the commands that draw it. An open
// session includes the transformer overlay; otherwise the latest snapshot is
// drawn on its own.
func (h *Hub) Frame(ctx context.Context, sessionID string) (*document.Scene, []surface.DrawCommand, error) {
	if room, ok := h.Room(sessionID); ok {
		scene, commands := room.Frame()
		return scene, commands, nil
	}

	snap, err := h.cfg.Store.Latest(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	scene, err := decodeScene(snap.Scene)
	if err != nil {
		return nil, nil, err
	}
	root := surface.NewRecorder("root")
	scene.Render(root.AddChild("scene"))
	return scene, root.Compile(), nil
}
