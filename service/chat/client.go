package chat

import (
	"sync"

	"Connectify/logger"

	"github.com/gorilla/websocket"
)

// Client is one authenticated websocket session. A user may hold
// several connections, each with its own client record; the Send queue
// is drained by a single writer goroutine.
type Client struct {
	ConnID   string
	UserID   string
	Username string
	WS       *websocket.Conn
	Send     chan []byte

	mu     sync.Mutex
	closed bool
}

func NewClient(connID, userID, username string, ws *websocket.Conn, sendQueueSize int) *Client {
	return &Client{
		ConnID:   connID,
		UserID:   userID,
		Username: username,
		WS:       ws,
		Send:     make(chan []byte, sendQueueSize),
	}
}

// enqueue hands a frame to the writer without blocking the caller. A
// full queue means the peer is too slow; the frame is dropped for this
// client only. A fanout can still hold this client after teardown
// removed it from the registry, so enqueue and Close share a lock: a
// frame arriving after Close is dropped, never sent on a closed
// channel.
func (c *Client) enqueue(frame []byte) {
	if frame == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.Send <- frame:
	default:
		logger.Warnf("send queue full, drop frame user=%s conn=%s", c.UserID, c.ConnID)
	}
}

// Close stops the writer; safe to call more than once and safe against
// concurrent enqueue.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.Send)
}

// writePump is the only goroutine that writes to the socket.
func (c *Client) writePump() {
	defer func() {
		if err := c.WS.Close(); err != nil {
			logger.Debug("close websocket: " + err.Error())
		}
	}()
	for frame := range c.Send {
		if err := c.WS.WriteMessage(websocket.TextMessage, frame); err != nil {
			logger.Infof("write err user=%s conn=%s err=%v", c.UserID, c.ConnID, err)
			return
		}
	}
	_ = c.WS.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
