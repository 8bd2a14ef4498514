package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/meetmate-ai/server/internal/session"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512 * 1024 // 512KB for audio chunks

	// Timeout for handling one start_session request.
	startTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// TODO: restrict origins once the frontend host is settled
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// WriteData is one outbound websocket frame.
type WriteData struct {
	// Type is websocket.TextMessage or websocket.BinaryMessage.
	Type    int
	Payload []byte
}

// Hub maintains the set of connected clients and routes session events back
// to the connection that owns them. It implements session.EventSink.
type Hub struct {
	// Registered clients keyed by connection ID.
	clients map[string]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	mu sync.RWMutex

	sessions *session.Registry

	logger *zap.Logger
}

// NewHub creates a WebSocket hub. The session registry is attached
// afterwards with SetRegistry because the registry needs the hub as its
// event sink.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger,
	}
}

// SetRegistry attaches the session registry. Must be called before serving
// connections.
func (h *Hub) SetRegistry(sessions *session.Registry) {
	h.sessions = sessions
}

// Run starts the hub's main loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.connectionID] = client
			h.mu.Unlock()
			h.logger.Info("client registered",
				zap.String("connectionID", client.connectionID),
				zap.String("userID", client.userID))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.connectionID]; ok {
				delete(h.clients, client.connectionID)
				close(client.send)
			}
			h.mu.Unlock()
			h.logger.Info("client unregistered",
				zap.String("connectionID", client.connectionID))
		}
	}
}

// Deliver sends a session event to the connection that owns the session.
// Delivery to a connection that is gone, or whose send buffer is full, is
// dropped; events never block a session worker on transport I/O.
func (h *Hub) Deliver(connectionID string, ev session.Event) {
	h.mu.RLock()
	client, ok := h.clients[connectionID]
	h.mu.RUnlock()
	if !ok {
		h.logger.Debug("dropping event for disconnected client",
			zap.String("connectionID", connectionID),
			zap.String("eventType", string(ev.Type)))
		return
	}

	payload, err := MarshalEvent(ev)
	if err != nil {
		h.logger.Error("failed to marshal session event", zap.Error(err))
		return
	}

	select {
	case client.send <- WriteData{Type: websocket.TextMessage, Payload: payload}:
	default:
		h.logger.Warn("client send buffer full, dropping event",
			zap.String("connectionID", connectionID),
			zap.String("eventType", string(ev.Type)))
	}
}

// Client is a middleman between one websocket connection and the hub.
type Client struct {
	hub *Hub

	// The websocket connection.
	conn *websocket.Conn

	// Buffered channel of outbound messages.
	send chan WriteData

	// Connection ID, unique for the lifetime of this connection. Session
	// workers address outbound events by it.
	connectionID string

	// Authenticated user this connection belongs to.
	userID string

	logger *zap.Logger
}

// HandleWebSocket upgrades the request and starts the client pumps for an
// authenticated user.
func HandleWebSocket(hub *Hub, c echo.Context, userID string, logger *zap.Logger) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Error("websocket upgrade failed", zap.Error(err))
		return err
	}

	client := &Client{
		hub:          hub,
		conn:         conn,
		send:         make(chan WriteData, 256),
		connectionID: uuid.NewString(),
		userID:       userID,
		logger:       logger,
	}

	client.hub.register <- client

	go client.writePump()
	go client.readPump()

	return nil
}

// readPump pumps messages from the websocket connection into the session
// registry. It only enqueues work and returns immediately; it never blocks
// on speech-service I/O.
func (c *Client) readPump() {
	defer func() {
		c.hub.sessions.OnDisconnect(c.connectionID)
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("websocket error", zap.Error(err))
			}
			break
		}

		switch messageType {
		case websocket.TextMessage:
			c.processMessage(message)
		case websocket.BinaryMessage:
			c.hub.sessions.PushAudio(c.connectionID, message)
		default:
			c.logger.Warn("received unknown frame type", zap.Int("type", messageType))
		}
	}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(message.Type, message.Payload); err != nil {
				c.logger.Error("failed to write message", zap.Error(err))
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

// processMessage dispatches one inbound control message.
func (c *Client) processMessage(raw []byte) {
	parsed, err := ParseMessage(raw)
	if err != nil {
		c.logger.Warn("invalid control message", zap.Error(err))
		c.sendJSON(NewErrorMessage("invalid_message", err.Error()))
		return
	}

	switch msg := parsed.(type) {
	case *StartSessionMessage:
		c.handleStartSession(msg)
	case *ChangeStyleMessage:
		c.hub.sessions.ChangeStyle(c.connectionID, msg.StyleID)
	case *StopSessionMessage:
		c.hub.sessions.StopSession(c.connectionID)
	case *PingMessage:
		c.sendJSON(NewPongMessage(msg.Data))
	}
}

func (c *Client) handleStartSession(msg *StartSessionMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), startTimeout)
	defer cancel()

	sessionID, status, err := c.hub.sessions.StartSession(ctx, c.connectionID, msg.MeetingID)
	if err != nil {
		c.logger.Error("failed to start session",
			zap.String("connectionID", c.connectionID),
			zap.String("meetingID", msg.MeetingID),
			zap.Error(err))
		c.sendJSON(NewErrorMessage("session_start_failed", "failed to start session"))
		return
	}

	switch status {
	case session.StartAlreadyActive:
		c.sendJSON(NewErrorMessage("already_active", "a session is already active for this connection"))
	case session.StartMeetingNotFound:
		c.sendJSON(NewErrorMessage("meeting_not_found", "meeting does not exist"))
	default:
		c.hub.Deliver(c.connectionID, session.Event{
			Type:      session.EventSessionStarted,
			SessionID: sessionID,
		})
	}
}

func (c *Client) sendJSON(v interface{}) {
	payload, err := json.Marshal(v)
	if err != nil {
		c.logger.Error("failed to marshal response", zap.Error(err))
		return
	}
	select {
	case c.send <- WriteData{Type: websocket.TextMessage, Payload: payload}:
	default:
		c.logger.Warn("client send buffer full, dropping response",
			zap.String("connectionID", c.connectionID))
	}
}
