package hub

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = 30 * time.Second
	maxMessageSize = 512
	sendBufferSize = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The HTTP layer enforces CORS; the websocket endpoint accepts the same
	// origins the rest of the API does.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client is one websocket connection. Outbound messages flow through the
// buffered send channel so one stuck connection never blocks the hub.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// inboundMessage is the only client-to-server message the channel accepts:
// a manual-testing trigger that echoes the symbol with the current balance.
type inboundMessage struct {
	Event  string `json:"event"`
	Symbol string `json:"symbol"`
}

// readPump consumes inbound frames until the connection dies, then
// unregisters the client.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("Client read failed", slog.Any("error", err))
			}
			return
		}

		var msg inboundMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.hub.logger.Warn("Ignoring malformed client message", slog.Any("error", err))
			continue
		}
		if msg.Event == "SendStockUpdate" && c.hub.balanceFn != nil {
			c.hub.logger.Info("Sending update", slog.String("symbol", msg.Symbol))
			c.hub.Broadcast(EventStockUpdate, stockUpdatePayload{
				Symbol:  msg.Symbol,
				Balance: c.hub.balanceFn(),
			})
		}
	}
}

// writePump drains the send channel onto the wire and keeps the connection
// alive with pings. Runs until the hub closes the send channel.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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
