package session

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ErrConnClosed is returned by Send once the connection has been torn down.
var ErrConnClosed = errors.New("connection closed")

const writeWait = 10 * time.Second

// Conn wraps one live WebSocket. All writes go through the connection mutex
// so two relay operations can never interleave frames on the same socket.
type Conn struct {
	ws     *websocket.Conn
	mu     sync.Mutex
	hook   func([]byte) error
	closed bool
}

func NewConn(ws *websocket.Conn) *Conn { return &Conn{ws: ws} }

// SetSendHook replaces the default WebSocket sender (used in tests).
func (c *Conn) SetSendHook(fn func([]byte) error) {
	c.mu.Lock()
	c.hook = fn
	c.mu.Unlock()
}

// Send writes one text message. An error means the peer is unreachable and
// the caller should treat the member as gone.
func (c *Conn) Send(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hook != nil {
		return c.hook(payload)
	}
	if c.ws == nil || c.closed {
		return ErrConnClosed
	}
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(websocket.TextMessage, payload)
}

// Receive blocks until the next message arrives or the stream closes or
// errors.
func (c *Conn) Receive() ([]byte, error) {
	if c.ws == nil {
		return nil, ErrConnClosed
	}
	_, msg, err := c.ws.ReadMessage()
	return msg, err
}

// Close sends a close frame with the given code and reason and tears the
// socket down. Safe to call more than once.
func (c *Conn) Close(code int, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.ws == nil {
		return
	}
	msg := websocket.FormatCloseMessage(code, reason)
	_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
	_ = c.ws.Close()
}
