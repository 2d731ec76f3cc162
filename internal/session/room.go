package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/inamate/transformer/internal/config"
	"github.com/inamate/transformer/internal/document"
	"github.com/inamate/transformer/internal/engine"
	"github.com/inamate/transformer/internal/nested"
	"github.com/inamate/transformer/internal/pointer"
	"github.com/inamate/transformer/internal/store"
	"github.com/inamate/transformer/internal/surface"
	"github.com/inamate/transformer/internal/texture"
	"github.com/inamate/transformer/internal/transformer"
)

const saveTimeout = 5 * time.Second

var ErrPointerBusy = errors.New("pointer is held by another client")

type roomConfig struct {
	id       string
	scene    *document.Scene
	options  config.Options
	textures *texture.Cache
	store    store.Store
	logger   *slog.Logger
}

// Room is one live session. Everything it owns is guarded by mu; pointer
// events from all clients are serialized through it.
type Room struct {
	id     string
	logger *slog.Logger
	store  store.Store

	mu       sync.Mutex
	clients  map[string]*Client // clientID -> client
	presence *PresenceManager
	engine   *engine.Engine
	owner    string // clientID holding the pointer
	seq      int64
	closed   bool

	saves chan json.RawMessage
	saved chan struct{}
}

func newRoom(cfg roomConfig) *Room {
	r := &Room{
		id:       cfg.id,
		logger:   cfg.logger,
		store:    cfg.store,
		clients:  make(map[string]*Client),
		presence: NewPresenceManager(),
		saves:    make(chan json.RawMessage, 1),
		saved:    make(chan struct{}),
	}
	r.engine = engine.New(engine.Config{
		Scene:     cfg.scene,
		Options:   cfg.options,
		Textures:  cfg.textures,
		Logger:    r.logger,
		Callbacks: nested.Callbacks{OnFocusChange: r.onFocus},
	})
	tf := r.engine.Transformer()
	tf.On(transformer.EventTransformChange, func(e transformer.Event) { r.onTransform(TypeTransformChange, e) })
	tf.On(transformer.EventTransformCommit, func(e transformer.Event) {
		r.onTransform(TypeTransformCommit, e)
		r.queueSave()
	})
	tf.On(transformer.EventGroupChange, func(transformer.Event) {
		r.broadcast(newMessage(TypeSelection, SelectionPayload{IDs: r.engine.Selection()}), "")
	})

	go r.saveLoop()
	return r
}

func (r *Room) join(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.clients[c.ClientID] = c
	c.Send(newMessage(TypeWelcome, WelcomePayload{
		ClientID:  c.ClientID,
		UserID:    c.UserID,
		SessionID: r.id,
		Scene:     r.engine.Scene(),
		Options:   r.engine.Options(),
		Selection: r.engine.Selection(),
	}))
	c.Send(r.presence.StateMessage())
	c.Send(newMessage(TypeDraw, DrawPayload{Commands: r.engine.Frame()}))

	r.broadcast(newMessage(TypePresenceJoin, PresenceJoinPayload{
		UserID:      c.UserID,
		DisplayName: c.DisplayName,
	}), c.ClientID)
}

// leave removes c and reports whether the room is now empty. A drag held
// by c is committed where the pointer last was.
func (r *Room) leave(c *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.clients[c.ClientID]; !ok {
		return len(r.clients) == 0
	}
	if r.owner == c.ClientID {
		r.engine.Release()
		r.owner = ""
		r.flush()
	}
	delete(r.clients, c.ClientID)
	close(c.send)
	r.presence.Remove(c.UserID)

	r.broadcast(newMessage(TypePresenceLeave, PresenceLeavePayload{UserID: c.UserID}), "")
	return len(r.clients) == 0
}

// close stops the room and waits for the latest scene to be saved.
func (r *Room) close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	for id, c := range r.clients {
		delete(r.clients, id)
		close(c.send)
	}
	r.engine.Destroy()
	close(r.saves)
	r.mu.Unlock()
	<-r.saved
}

func (r *Room) handle(sender *Client, msg *Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}

	var err error
	switch msg.Type {
	case TypePointer:
		err = r.handlePointer(sender, msg.Payload)
	case TypeProps:
		err = r.handleProps(msg.Payload)
	case TypeSelect:
		err = r.handleSelect(sender, msg.Payload)
	case TypePresenceUpdate:
		err = r.handlePresence(sender, msg.Payload)
	default:
		err = fmt.Errorf("unknown message type %q", msg.Type)
	}
	if err != nil {
		r.logger.Debug("message rejected", "type", msg.Type, "user", sender.UserID, "error", err)
		sender.Send(newMessage(TypeError, ErrorPayload{Message: err.Error()}))
	}
	r.flush()
}

func (r *Room) handlePointer(sender *Client, payload json.RawMessage) error {
	var p PointerPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("decode pointer: %w", err)
	}
	pt := mgl64.Vec2{p.X, p.Y}
	typ, ok := pointer.ParseType(p.Kind)
	if !ok {
		return fmt.Errorf("unknown pointer kind %q", p.Kind)
	}

	if r.owner != "" && r.owner != sender.ClientID {
		if typ == pointer.Down {
			return ErrPointerBusy
		}
		// moves and ups of other clients are ignored while the pointer is held
		return nil
	}

	switch typ {
	case pointer.Down:
		r.owner = sender.ClientID
		r.engine.PointerDown(pt)
	case pointer.Move:
		r.engine.PointerMove(pt)
		if r.owner == "" {
			sender.Send(newMessage(TypeCursor, CursorPayload{Cursor: r.engine.Cursor(pt)}))
		}
	default:
		r.engine.PointerUp(pt)
		r.owner = ""
	}
	return nil
}

func (r *Room) handleProps(payload json.RawMessage) error {
	var bag map[string]any
	if err := json.Unmarshal(payload, &bag); err != nil {
		return fmt.Errorf("decode props: %w", err)
	}
	return r.engine.ApplyProps(bag)
}

func (r *Room) handleSelect(sender *Client, payload json.RawMessage) error {
	if r.owner != "" && r.owner != sender.ClientID {
		return ErrPointerBusy
	}
	var p SelectPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("decode select: %w", err)
	}
	return r.engine.Select(p.IDs...)
}

func (r *Room) handlePresence(sender *Client, payload json.RawMessage) error {
	var presence PresencePayload
	if err := json.Unmarshal(payload, &presence); err != nil {
		return fmt.Errorf("decode presence: %w", err)
	}
	presence.DisplayName = sender.DisplayName
	r.presence.Update(sender.UserID, &presence)

	out := newMessage(TypePresenceUpdate, presence)
	out.UserID = sender.UserID
	r.broadcast(out, sender.ClientID)
	return nil
}

func (r *Room) onTransform(typ string, e transformer.Event) {
	payload := TransformPayload{Translate: e.Translate, Box: e.Box}
	if !e.Translate {
		payload.Handle = e.Handle.String()
	}
	for _, m := range e.Members {
		if obj, ok := m.(*document.Object); ok {
			payload.Objects = append(payload.Objects, ObjectTransform{ID: obj.ID, Transform: obj.Transform})
		}
	}
	r.broadcast(newMessage(typ, payload), "")
}

func (r *Room) onFocus(index int, m transformer.Member) {
	payload := FocusPayload{Index: index}
	if obj, ok := m.(*document.Object); ok {
		payload.ObjectID = obj.ID
	}
	r.broadcast(newMessage(TypeElementFocused, payload), "")
}

func (r *Room) flush() {
	if r.engine.Render() {
		r.broadcast(newMessage(TypeDraw, DrawPayload{Commands: r.engine.Commands()}), "")
	}
}

func (r *Room) broadcast(msg *Message, excludeClientID string) {
	r.seq++
	msg.Seq = r.seq
	msg.SessionID = r.id
	data, err := json.Marshal(msg)
	if err != nil {
		r.logger.Error("marshal message", "type", msg.Type, "error", err)
		return
	}
	for id, c := range r.clients {
		if id != excludeClientID {
			c.enqueue(data)
		}
	}
}

// queueSave hands the current scene to the save loop, replacing any
// snapshot that has not been written yet.
func (r *Room) queueSave() {
	data, err := json.Marshal(r.engine.Scene())
	if err != nil {
		r.logger.Error("marshal scene", "error", err)
		return
	}
	select {
	case <-r.saves:
	default:
	}
	r.saves <- data
}

func (r *Room) saveLoop() {
	defer close(r.saved)
	for data := range r.saves {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		snap, err := r.store.Save(ctx, r.id, data)
		cancel()
		if err != nil {
			r.logger.Error("save snapshot", "error", err)
			continue
		}
		r.logger.Debug("snapshot saved", "version", snap.Version)
	}
}

// Scene returns a copy of the current scene.
func (r *Room) Scene() *document.Scene {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.engine.Scene().Clone()
}

func decodeScene(data json.RawMessage) (*document.Scene, error) {
	var s document.Scene
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode scene: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("decode scene: %w", err)
	}
	return &s, nil
}

// Frame flushes pending drawing and returns a copy of the scene together
// with the full command list for the current state.
func (r *Room) Frame() (*document.Scene, []surface.DrawCommand) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flush()
	return r.engine.Scene().Clone(), r.engine.Commands()
}
