package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// ClientMessage is the only inbound frame clients send: room membership
// control. Leaving a room is the sole cancellation primitive.
type ClientMessage struct {
	Action string `json:"action"` // "join" or "leave"
	Room   string `json:"room"`
}

// Client is one websocket connection attached to the hub.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	logger *zap.Logger

	writeWait time.Duration
	pongWait  time.Duration

	closeOnce sync.Once
}

func (c *Client) closeSend() {
	c.closeOnce.Do(func() { close(c.send) })
}

// readPump consumes join/leave frames until the connection drops, then
// unregisters the client.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(1024)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("websocket closed unexpectedly", zap.Error(err))
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(raw, &msg); err != nil || msg.Room == "" {
			continue
		}

		switch msg.Action {
		case "join":
			c.hub.join <- subscription{client: c, room: msg.Room}
		case "leave":
			c.hub.leave <- subscription{client: c, room: msg.Room}
		}
	}
}

// writePump pushes queued events and keepalive pings to the connection.
func (c *Client) writePump() {
	pingPeriod := c.pongWait * 9 / 10
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
