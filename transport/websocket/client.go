package websocket

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"
)

// Client is a single websocket connection. The SID identifies the
// connection, the UID identifies the player across reconnects.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	uid string
	sid string
}

// UID implements engine.Client.
func (c *Client) UID() string { return c.uid }

// SID implements engine.Client.
func (c *Client) SID() string { return c.sid }

type errorPayload struct {
	Message string `json:"message"`
}

// sendError answers the sender with an error event. State is never touched
// on the error path.
func (c *Client) sendError(message string) {
	raw, _ := json.Marshal(errorPayload{Message: message})
	data, err := json.Marshal(Message{Event: "error", Payload: raw})
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

// readPump reads messages from the connection and hands them to the
// dispatcher. It runs in its own goroutine; one per connection.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("websocket: client %s read error: %v", c.sid, err)
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.sendError("malformed message")
			continue
		}
		if msg.Event == "" {
			c.sendError("missing event")
			continue
		}

		if c.hub.service == nil {
			c.sendError("server not ready")
			continue
		}
		if err := c.hub.service.Dispatch(c, msg.Event, msg.Payload); err != nil {
			c.sendError(err.Error())
		}
	}
}

// writePump pushes queued messages and keepalive pings to the connection. It
// runs in its own goroutine; one per connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
