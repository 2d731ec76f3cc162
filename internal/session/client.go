package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	maxMsgSize = 64 * 1024
	sendBuffer = 256
)

// ErrInvalidMessage is reported to a client whose frame cannot be decoded or
// carries a type clients may not send.
var ErrInvalidMessage = errors.New("invalid message")

// clientTypes are the message types accepted from a connection.
var clientTypes = map[string]bool{
	TypePointer:        true,
	TypeProps:          true,
	TypeSelect:         true,
	TypePresenceUpdate: true,
}

// Client is one websocket connection joined to a session room. Outgoing
// frames are queued on a bounded buffer; a client that falls behind loses
// frames instead of stalling the room.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	logger  *slog.Logger
	dropped atomic.Int64

	UserID      string
	DisplayName string
	SessionID   string
	ClientID    string
}

func NewClient(hub *Hub, conn *websocket.Conn, userID, displayName, sessionID, clientID string) *Client {
	logger := slog.Default()
	if hub != nil && hub.logger != nil {
		logger = hub.logger
	}
	return &Client{
		hub:         hub,
		conn:        conn,
		send:        make(chan []byte, sendBuffer),
		logger:      logger.With("session", sessionID, "client", clientID, "user", userID),
		UserID:      userID,
		DisplayName: displayName,
		SessionID:   sessionID,
		ClientID:    clientID,
	}
}

// Dropped returns how many frames were discarded because the send buffer
// was full.
func (c *Client) Dropped() int64 { return c.dropped.Load() }

// ReadPump decodes frames and hands them to the room until the connection
// closes, then unregisters the client.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	c.conn.SetReadLimit(maxMsgSize)

	for {
		typ, data, err := c.conn.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			default:
				c.logger.Debug("read error", "error", err)
			}
			return
		}
		if typ != websocket.MessageText {
			c.reject(fmt.Errorf("%w: binary frame", ErrInvalidMessage))
			continue
		}

		msg, err := c.decode(data)
		if err != nil {
			c.reject(err)
			continue
		}
		c.hub.handleMessage(c, msg)
	}
}

// decode parses one frame and stamps it with the sender's identity, so a
// client cannot speak for another.
func (c *Client) decode(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if !clientTypes[msg.Type] {
		return nil, fmt.Errorf("%w: type %q is not accepted from clients", ErrInvalidMessage, msg.Type)
	}
	msg.UserID = c.UserID
	msg.ClientID = c.ClientID
	msg.SessionID = c.SessionID
	msg.Seq = 0
	return &msg, nil
}

func (c *Client) reject(err error) {
	c.logger.Warn("message rejected", "error", err)
	c.Send(newMessage(TypeError, ErrorPayload{Message: err.Error()}))
}

// WritePump writes queued frames and keeps the connection alive with pings.
func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				return
			}
			err := withWriteTimeout(ctx, func(ctx context.Context) error {
				return c.conn.Write(ctx, websocket.MessageText, data)
			})
			if err != nil {
				c.logger.Debug("write error", "error", err)
				return
			}

		case <-ticker.C:
			if err := withWriteTimeout(ctx, c.conn.Ping); err != nil {
				c.logger.Debug("ping failed", "error", err)
				return
			}

		case <-ctx.Done():
			return
		}
	}
}

func withWriteTimeout(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, writeWait)
	defer cancel()
	return fn(ctx)
}

// Send encodes msg and queues it without blocking.
func (c *Client) Send(msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.logger.Error("marshal message", "type", msg.Type, "error", err)
		return
	}
	c.enqueue(data)
}

// enqueue queues an encoded frame. Rooms encode a broadcast once and
// enqueue the same bytes for every recipient.
func (c *Client) enqueue(data []byte) {
	select {
	case c.send <- data:
	default:
		if c.dropped.Add(1) == 1 {
			c.logger.Warn("client send buffer full, dropping messages")
		}
	}
}
