package session

import (
	"encoding/json"

	"github.com/inamate/transformer/internal/document"
	"github.com/inamate/transformer/internal/geometry"
	"github.com/inamate/transformer/internal/surface"
	"github.com/inamate/transformer/internal/transformer"
)

type Message struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId,omitempty"`
	ClientID  string          `json:"clientId,omitempty"`
	UserID    string          `json:"userId,omitempty"`
	Seq       int64           `json:"seq,omitempty"`
	Payload   json.RawMessage `json:"payload"`
}

const (
	// Client to server
	TypePointer        = "pointer"
	TypeProps          = "props"
	TypeSelect         = "select"
	TypePresenceUpdate = "presence.update"

	// Server to client
	TypeWelcome         = "welcome"
	TypeDraw            = "draw"
	TypeCursor          = "cursor"
	TypeSelection       = "selection"
	TypeTransformChange = "transform.change"
	TypeTransformCommit = "transform.commit"
	TypeElementFocused  = "element.focused"
	TypePresenceState   = "presence.state"
	TypePresenceJoin    = "presence.join"
	TypePresenceLeave   = "presence.leave"
	TypeError           = "error"
)

// PointerPayload carries one pointer event in scene coordinates. Kind is
// "down", "move" or "up".
type PointerPayload struct {
	Kind string  `json:"kind"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

type SelectPayload struct {
	IDs []string `json:"ids"`
}

type PresencePayload struct {
	Cursor      *CursorPos `json:"cursor,omitempty"`
	DisplayName string     `json:"displayName,omitempty"`
}

type CursorPos struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type PresenceStatePayload struct {
	Presences map[string]*PresencePayload `json:"presences"`
}

type PresenceJoinPayload struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

type PresenceLeavePayload struct {
	UserID string `json:"userId"`
}

type WelcomePayload struct {
	ClientID  string              `json:"clientId"`
	UserID    string              `json:"userId"`
	SessionID string              `json:"sessionId"`
	Scene     *document.Scene     `json:"scene"`
	Options   transformer.Options `json:"options"`
	Selection []string            `json:"selection"`
}

type DrawPayload struct {
	Commands []surface.DrawCommand `json:"commands"`
}

type CursorPayload struct {
	Cursor string `json:"cursor"`
}

type SelectionPayload struct {
	IDs []string `json:"ids"`
}

type ObjectTransform struct {
	ID        string             `json:"id"`
	Transform geometry.Transform `json:"transform"`
}

type TransformPayload struct {
	Handle    string               `json:"handle,omitempty"`
	Translate bool                 `json:"translate,omitempty"`
	Box       geometry.OrientedBox `json:"box"`
	Objects   []ObjectTransform    `json:"objects"`
}

type FocusPayload struct {
	// Index is -1 when focus is cleared.
	Index    int    `json:"index"`
	ObjectID string `json:"objectId,omitempty"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

func newMessage(typ string, payload any) *Message {
	data, err := json.Marshal(payload)
	if err != nil {
		data = []byte("null")
	}
	return &Message{Type: typ, Payload: data}
}
