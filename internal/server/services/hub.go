package services

import (
	"encoding/json"
	"fmt"
	"sync"

	"homescout/internal/chat"
	"homescout/internal/models"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// OfflineHandler is invoked when a message targets a user with no live
// connection, typically to fire a push notification.
type OfflineHandler func(msg models.Message)

// ChatHub manages the live chat connections, one per user.
type ChatHub struct {
	mu          sync.RWMutex
	connections map[string]*websocket.Conn
	offline     OfflineHandler
}

// NewChatHub creates a new chat hub
func NewChatHub(offline OfflineHandler) *ChatHub {
	return &ChatHub{
		connections: make(map[string]*websocket.Conn),
		offline:     offline,
	}
}

// Register registers a new connection for a user, displacing any previous
// one.
func (h *ChatHub) Register(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if existing, ok := h.connections[userID]; ok {
		existing.Close()
	}
	h.connections[userID] = conn

	log.Info().Str("user_id", userID).Msg("Chat connection registered")
}

// Unregister removes a user's connection
func (h *ChatHub) Unregister(userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conn, ok := h.connections[userID]; ok {
		conn.Close()
		delete(h.connections, userID)
		log.Info().Str("user_id", userID).Msg("Chat connection unregistered")
	}
}

// IsOnline checks if a user has a live connection
func (h *ChatHub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.connections[userID]
	return ok
}

// SendToUser sends an envelope to a specific user
func (h *ChatHub) SendToUser(userID string, env chat.Envelope) error {
	h.mu.RLock()
	conn, ok := h.connections[userID]
	h.mu.RUnlock()

	if !ok {
		return fmt.Errorf("user %s is not connected", userID)
	}

	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		h.Unregister(userID)
		return fmt.Errorf("failed to send envelope: %w", err)
	}
	return nil
}

// Deliver routes a stored message to its receiver: over the socket when
// online, through the offline handler otherwise.
func (h *ChatHub) Deliver(msg models.Message) {
	if h.IsOnline(msg.ReceiverID) {
		env := chat.Envelope{Type: "message", Message: &msg}
		if err := h.SendToUser(msg.ReceiverID, env); err != nil {
			log.Error().Err(err).Str("receiver_id", msg.ReceiverID).Msg("Failed to deliver message")
		}
		return
	}
	if h.offline != nil {
		go h.offline(msg)
	}
}
