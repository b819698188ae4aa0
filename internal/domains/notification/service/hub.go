package service

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"library-gateway/internal/domains/notification/model"
)

// Conn is one live client connection. Implementations must be safe for
// concurrent WriteJSON calls.
type Conn interface {
	WriteJSON(v any) error
	Close() error
}

// Notifier delivers a notification to a user, best effort.
// The result reports delivery; it is never an error.
type Notifier interface {
	Notify(ctx context.Context, userID int64, n model.Notification) bool
}

// =====================================================
// HUB
// =====================================================

// Hub is the process-wide registry of user connections.
// One connection per user: the most recent registration wins.
type Hub struct {
	mu    sync.RWMutex
	conns map[int64]Conn
}

var _ Notifier = (*Hub)(nil)

func NewHub() *Hub {
	return &Hub{conns: make(map[int64]Conn)}
}

// Register associates conn with userID, closing any connection it replaces.
func (h *Hub) Register(userID int64, conn Conn) {
	h.mu.Lock()
	old, replaced := h.conns[userID]
	h.conns[userID] = conn
	total := len(h.conns)
	h.mu.Unlock()

	if replaced && old != conn {
		_ = old.Close()
	}

	log.Info().
		Int64("user_id", userID).
		Bool("replaced", replaced).
		Int("total_connections", total).
		Msg("ws_connected")
}

// Deregister removes whatever connection is registered for userID.
func (h *Hub) Deregister(userID int64) {
	h.mu.Lock()
	delete(h.conns, userID)
	total := len(h.conns)
	h.mu.Unlock()

	log.Info().
		Int64("user_id", userID).
		Int("total_connections", total).
		Msg("ws_disconnected")
}

// Release removes userID only while conn is still its registered connection,
// so closing a stale socket never evicts a newer one.
func (h *Hub) Release(userID int64, conn Conn) bool {
	h.mu.Lock()
	current, ok := h.conns[userID]
	if !ok || current != conn {
		h.mu.Unlock()
		return false
	}
	delete(h.conns, userID)
	total := len(h.conns)
	h.mu.Unlock()

	log.Info().
		Int64("user_id", userID).
		Int("total_connections", total).
		Msg("ws_disconnected")
	return true
}

// Push writes n to the user's connection. It returns false when the user is
// not connected or the write fails; a failed connection is dropped.
func (h *Hub) Push(userID int64, n model.Notification) bool {
	h.mu.RLock()
	conn, ok := h.conns[userID]
	h.mu.RUnlock()

	if !ok {
		log.Debug().
			Int64("user_id", userID).
			Str("type", string(n.Type)).
			Msg("notification_no_connection")
		return false
	}

	if err := conn.WriteJSON(n); err != nil {
		log.Warn().
			Err(err).
			Int64("user_id", userID).
			Str("type", string(n.Type)).
			Msg("notification_failed")
		h.Release(userID, conn)
		_ = conn.Close()
		return false
	}

	log.Info().
		Int64("user_id", userID).
		Str("type", string(n.Type)).
		Int64("request_id", n.RequestID).
		Msg("notification_sent")
	return true
}

// Notify delivers to this process only.
func (h *Hub) Notify(_ context.Context, userID int64, n model.Notification) bool {
	return h.Push(userID, n)
}

// Count returns the number of connected users.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}
