package http

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"heartrisk/session"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 16 << 10
)

// SessionHub owns the live form connections.
type SessionHub struct {
	predictor session.Predictor
	logger    *zap.Logger
	upgrader  websocket.Upgrader

	mu      sync.Mutex
	clients map[*sessionClient]struct{}
	ctx     context.Context
	cancel  context.CancelFunc
}

type sessionClient struct {
	conn    *websocket.Conn
	send    chan []byte
	session *session.Session
}

// NewSessionHub creates a hub serving sessions against predictor.
func NewSessionHub(predictor session.Predictor, logger *zap.Logger) *SessionHub {
	ctx, cancel := context.WithCancel(context.Background())
	return &SessionHub{
		predictor: predictor,
		logger:    logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		clients: make(map[*sessionClient]struct{}),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// HandleWebSocket upgrades the request and starts the session pumps.
func (h *SessionHub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &sessionClient{
		conn:    conn,
		send:    make(chan []byte, 16),
		session: session.New(uuid.NewString(), h.predictor),
	}

	h.mu.Lock()
	h.clients[client] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()
	h.logger.Info("session opened", zap.String("session_id", client.session.ID), zap.Int("sessions", count))

	client.send <- mustMarshal(session.Outbound{Type: session.TypeState, State: client.session.State()})

	go client.writePump()
	go client.readPump(h)
}

// Sessions returns the number of open sessions.
func (h *SessionHub) Sessions() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every session.
func (h *SessionHub) Close() {
	h.cancel()
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		client.conn.Close()
	}
}

func (h *SessionHub) unregister(c *sessionClient) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
	h.logger.Info("session closed", zap.String("session_id", c.session.ID))
}

func (c *sessionClient) readPump(h *SessionHub) {
	defer func() {
		h.unregister(c)
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
				h.logger.Warn("session read error", zap.String("session_id", c.session.ID), zap.Error(err))
			}
			return
		}

		var reply session.Outbound
		var in session.Inbound
		if err := json.Unmarshal(data, &in); err != nil {
			reply = session.Outbound{Type: session.TypeError, State: c.session.State(), Error: "invalid message: " + err.Error()}
		} else {
			reply = c.session.Handle(h.ctx, in)
		}

		select {
		case c.send <- mustMarshal(reply):
		default:
			h.logger.Warn("session send queue full, closing", zap.String("session_id", c.session.ID))
			return
		}
	}
}

func (c *sessionClient) writePump() {
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
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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

func mustMarshal(v interface{}) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}
