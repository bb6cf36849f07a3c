package chat

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/theajstars/voyatek-assessment/internal/pkg/logx"
)

const (
	// writeWait bounds a single write to the WebSocket connection.
	writeWait = 10 * time.Second

	// pongWait is how long the server waits for a Pong from the client.
	pongWait = 60 * time.Second

	// pingPeriod is how often the server pings; must be under pongWait.
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize bounds inbound frames in bytes.
	maxMessageSize = 8192

	// sendQueueSize is the per-connection outbound buffer.
	sendQueueSize = 256
)

// Client binds one WebSocket connection to the gateway. It implements
// Sender for outbound frames and pumps inbound frames into the gateway's
// event dispatch.
type Client struct {
	gateway *Gateway
	conn    *websocket.Conn

	// id is the gateway-wide connection id.
	id string

	// userID is fixed at handshake time and never changes.
	userID int64

	// send queues outbound frames for WritePump. mu guards closed so a
	// broadcast that raced the disconnect cannot write to a closed channel.
	send   chan []byte
	mu     sync.Mutex
	closed bool

	logger zerolog.Logger
}

// NewClient wraps an upgraded connection for the given authenticated user.
func NewClient(gateway *Gateway, conn *websocket.Conn, connID string, userID int64) *Client {
	clientLogger := logx.Logger().With().
		Str("conn_id", connID).
		Int64("user_id", userID).
		Logger()

	return &Client{
		gateway: gateway,
		conn:    conn,
		id:      connID,
		userID:  userID,
		send:    make(chan []byte, sendQueueSize),
		logger:  clientLogger,
	}
}

// ID returns the connection id.
func (c *Client) ID() string {
	return c.id
}

// Send queues a frame for delivery without blocking. A full queue or a
// closed connection drops the frame and reports false.
func (c *Client) Send(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}

	select {
	case c.send <- data:
		return true
	default:
		c.logger.Warn().Int("queue_len", len(c.send)).Msg("Client send queue full, dropping frame")
		return false
	}
}

// closeSend marks the client closed and releases WritePump.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// ReadPump reads frames from the WebSocket until the connection drops,
// dispatching each one through the gateway. It owns disconnect cleanup.
func (c *Client) ReadPump() {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Unexpected close while reading")
			}
			break
		}

		c.gateway.HandleEvent(context.Background(), c.id, frame)
	}
}

// cleanupOnDisconnect runs the gateway disconnect path and closes the
// transport when ReadPump terminates.
func (c *Client) cleanupOnDisconnect() {
	c.logger.Info().Msg("Client connection cleanup starting")

	c.gateway.Disconnect(context.Background(), c.id)

	c.closeSend()

	if err := c.conn.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("Connection close error")
	}
}

// WritePump drains the send queue to the WebSocket and keeps the
// heartbeat alive with periodic pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Connection close error in WritePump")
		}
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error().Err(err).Msg("Failed to set write deadline")
				return
			}

			if !ok {
				if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					c.logger.Debug().Err(err).Msg("Error writing close message")
				}
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.logger.Warn().Err(err).Msg("Error writing frame")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
				return
			}

			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Debug().Err(err).Msg("Error writing ping")
				return
			}
		}
	}
}
