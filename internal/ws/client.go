package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufferSize = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Demo service fronted by local dev UIs; origin checks are left to
	// the deployment proxy.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client is a single WebSocket connection managed by the hub.
type Client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// clientCommand is the inbound control message format. Anything that does
// not parse as a command is echoed back, preserving the original
// terminal's loopback behavior.
type clientCommand struct {
	Action string `json:"action"`
	Symbol string `json:"symbol"`
}

// Serve upgrades an HTTP request to a WebSocket connection and registers
// the client with the hub. Gin handler for GET /ws/:client_id.
func Serve(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := c.Param("client_id")

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			hub.log.Warn("websocket upgrade failed",
				zap.String("client_id", clientID),
				zap.Error(err),
			)
			return
		}

		client := &Client{
			id:   clientID,
			hub:  hub,
			conn: conn,
			send: make(chan []byte, sendBufferSize),
			done: make(chan struct{}),
		}
		hub.addClient(client)

		go client.writePump()
		go client.readPump()
	}
}

// trySend queues a payload without blocking; a client that cannot keep
// up has its messages dropped rather than stalling the hub, and a closed
// client drops everything.
func (c *Client) trySend(payload []byte) {
	select {
	case <-c.done:
		return
	default:
	}
	select {
	case c.send <- payload:
	default:
	}
}

func (c *Client) closeSend() {
	c.closeOnce.Do(func() { close(c.done) })
}

// readPump consumes inbound messages: subscribe/unsubscribe commands
// manage price subscriptions, anything else is echoed back.
func (c *Client) readPump() {
	defer func() {
		c.hub.removeClient(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.log.Warn("websocket read error",
					zap.String("client_id", c.id),
					zap.Error(err),
				)
			}
			return
		}

		var cmd clientCommand
		if err := json.Unmarshal(message, &cmd); err == nil && cmd.Symbol != "" {
			switch cmd.Action {
			case "subscribe":
				c.hub.subscribe(c.id, cmd.Symbol)
				continue
			case "unsubscribe":
				c.hub.unsubscribe(c.id, cmd.Symbol)
				continue
			}
		}

		c.trySend([]byte("Message received: " + string(message)))
	}
}

// writePump drains the send channel onto the connection and keeps the
// connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case payload := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
