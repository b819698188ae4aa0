package handler

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"library-gateway/internal/config"
	"library-gateway/internal/domains/notification/service"
	"library-gateway/internal/shared/response"
	"library-gateway/internal/shared/utils"
)

const maxClientFrame = 512

// =====================================================
// WEBSOCKET HANDLER
// =====================================================

type WebSocketHandler struct {
	hub          *service.Hub
	upgrader     websocket.Upgrader
	writeTimeout time.Duration
	pingInterval time.Duration
}

func NewWebSocketHandler(hub *service.Hub, cfg config.WebSocketConfig) *WebSocketHandler {
	return &WebSocketHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browsers connect from the SPA origin; CORS is not enforced on the socket.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		writeTimeout: cfg.WriteTimeout,
		pingInterval: cfg.PingInterval,
	}
}

// IsUpgrade reports whether the request asks for a WebSocket upgrade.
func IsUpgrade(c *gin.Context) bool {
	return websocket.IsWebSocketUpgrade(c.Request)
}

// Connect upgrades the request and keeps the socket registered for ?userId
// until the peer goes away.
// GET /ws?userId=7
func (h *WebSocketHandler) Connect(c *gin.Context) {
	userID, err := utils.ParseID(c.Query("userId"))
	if err != nil {
		response.BadRequest(c, "userId query parameter is required")
		return
	}

	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		log.Warn().Err(err).Int64("user_id", userID).Msg("[WS] Upgrade failed")
		return
	}

	conn := newSocket(ws, h.writeTimeout)
	h.hub.Register(userID, conn)

	go conn.keepAlive(h.pingInterval)
	conn.drain(h.pingInterval)

	h.hub.Release(userID, conn)
	_ = conn.Close()
}

// =====================================================
// SOCKET
// =====================================================

// socket adapts a gorilla connection to service.Conn. gorilla allows one
// concurrent writer, so every write goes through mu.
type socket struct {
	ws           *websocket.Conn
	writeTimeout time.Duration

	mu        sync.Mutex
	done      chan struct{}
	closeOnce sync.Once
}

func newSocket(ws *websocket.Conn, writeTimeout time.Duration) *socket {
	return &socket{
		ws:           ws,
		writeTimeout: writeTimeout,
		done:         make(chan struct{}),
	}
}

func (s *socket) WriteJSON(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.writeTimeout > 0 {
		_ = s.ws.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	}
	return s.ws.WriteJSON(v)
}

func (s *socket) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		err = s.ws.Close()
	})
	return err
}

func (s *socket) ping() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	deadline := time.Now().Add(time.Second)
	if s.writeTimeout > 0 {
		deadline = time.Now().Add(s.writeTimeout)
	}
	return s.ws.WriteControl(websocket.PingMessage, nil, deadline)
}

func (s *socket) keepAlive(interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			if err := s.ping(); err != nil {
				_ = s.Close()
				return
			}
		}
	}
}

// drain reads and discards client frames until the connection fails.
// There is no client-to-server protocol; reading is what notices a close.
func (s *socket) drain(pingInterval time.Duration) {
	s.ws.SetReadLimit(maxClientFrame)

	if pingInterval > 0 {
		wait := 2 * pingInterval
		_ = s.ws.SetReadDeadline(time.Now().Add(wait))
		s.ws.SetPongHandler(func(string) error {
			return s.ws.SetReadDeadline(time.Now().Add(wait))
		})
	}

	for {
		if _, _, err := s.ws.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug().Err(err).Msg("[WS] Read loop ended")
			}
			return
		}
	}
}
