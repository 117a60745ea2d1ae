package chathub

import (
	"chatroom/backend/internal/config"
	"chatroom/backend/internal/models"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// WebSocketClient implements Client over a gorilla/websocket connection.
type WebSocketClient struct {
	ConnID string
	UserID string
	Conn   *websocket.Conn
	Hub    Hub

	maxMessageSize int64

	mu     sync.Mutex
	send   chan models.ServerEvent
	closed bool
}

func NewWebSocketClient(conn *websocket.Conn, hub Hub, userID string, sendBuffer int, maxMessageSize int64) *WebSocketClient {
	return &WebSocketClient{
		ConnID:         uuid.NewString(),
		UserID:         userID,
		Conn:           conn,
		Hub:            hub,
		maxMessageSize: maxMessageSize,
		send:           make(chan models.ServerEvent, sendBuffer),
	}
}

func (c *WebSocketClient) GetConnID() string { return c.ConnID }
func (c *WebSocketClient) GetUserID() string { return c.UserID }

func (c *WebSocketClient) Deliver(evt models.ServerEvent) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.send <- evt:
		return true
	default:
		return false
	}
}

// Run starts the pumps for the WebSocket.
func (c *WebSocketClient) Run() {
	go c.writePump()
	go c.readPump()
}

// Close closes the send queue, which makes writePump close the socket.
func (c *WebSocketClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *WebSocketClient) readPump() {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(c.maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(config.PongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(config.PongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("ERROR: reading from connection %s: %v", c.ConnID, err)
			}
			break
		}

		evt, err := models.DecodeClientEvent(message)
		if err != nil {
			log.Printf("WARNING: Rejected frame from connection %s: %v", c.ConnID, err)
			c.Deliver(models.ErrorEvent(err.Error()))
			continue
		}

		if !c.Hub.Dispatch(c, evt) {
			break
		}
	}
}

// writePump drains the send queue into the socket and keeps the connection alive with pings.
func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(config.PingPeriod)

	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case evt, ok := <-c.send:
			c.Conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if !ok {
				// The hub closed the queue.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteJSON(evt); err != nil {
				log.Printf("ERROR: writing %s to connection %s: %v", evt.Event, c.ConnID, err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
