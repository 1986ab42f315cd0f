package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"homescout/internal/chat"
	"homescout/internal/models"
	"homescout/internal/server/middleware"
	"homescout/internal/server/services"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// MessageStore is the persistence surface for chat messages.
type MessageStore interface {
	Create(ctx context.Context, msg *models.Message) error
	ListConversation(ctx context.Context, userA, userB string, limit int) ([]models.Message, error)
}

// ChatHandler handles the chat WebSocket and conversation history
type ChatHandler struct {
	hub      *services.ChatHub
	auth     *services.AuthService
	messages MessageStore
}

// NewChatHandler creates a new chat handler
func NewChatHandler(hub *services.ChatHub, auth *services.AuthService, messages MessageStore) *ChatHandler {
	return &ChatHandler{hub: hub, auth: auth, messages: messages}
}

// HandleWebSocket handles GET /ws
func (h *ChatHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		respondError(w, "token required", http.StatusUnauthorized)
		return
	}

	userID, err := h.auth.ValidateJWT(token)
	if err != nil {
		respondError(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade chat connection")
		return
	}
	defer conn.Close()

	h.hub.Register(userID, conn)
	defer h.hub.Unregister(userID)

	log.Info().Str("user_id", userID).Msg("Chat connection established")

	ctx := r.Context()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("user_id", userID).Msg("Chat connection error")
			}
			break
		}

		var env chat.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			log.Error().Err(err).Str("user_id", userID).Msg("Failed to parse chat frame")
			h.sendError(conn, "Invalid message format")
			continue
		}

		if err := h.handleEnvelope(ctx, userID, env); err != nil {
			log.Error().Err(err).Str("user_id", userID).Str("type", env.Type).Msg("Failed to handle chat frame")
			h.sendError(conn, err.Error())
		}
	}
}

func (h *ChatHandler) handleEnvelope(ctx context.Context, senderID string, env chat.Envelope) error {
	switch env.Type {
	case "message":
		return h.handleMessage(ctx, senderID, env.Message)
	default:
		return h.hub.SendToUser(senderID, chat.Envelope{Type: "error", Error: "Unknown message type"})
	}
}

func (h *ChatHandler) handleMessage(ctx context.Context, senderID string, msg *models.Message) error {
	if msg == nil || msg.ReceiverID == "" || msg.Body == "" {
		return h.hub.SendToUser(senderID, chat.Envelope{Type: "error", Error: "receiver_id and body are required"})
	}

	stored := models.Message{
		ID:         uuid.New().String(),
		SenderID:   senderID,
		ReceiverID: msg.ReceiverID,
		PropertyID: msg.PropertyID,
		Body:       msg.Body,
		SentAt:     time.Now(),
	}
	if err := h.messages.Create(ctx, &stored); err != nil {
		return err
	}

	h.hub.Deliver(stored)

	log.Info().
		Str("sender_id", senderID).
		Str("receiver_id", stored.ReceiverID).
		Msg("Message delivered")
	return nil
}

// Conversation handles GET /api/messages/{user_id}
func (h *ChatHandler) Conversation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	otherID := chi.URLParam(r, "user_id")

	msgs, err := h.messages.ListConversation(ctx, userID, otherID, 50)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list conversation")
		respondError(w, "Failed to list conversation", http.StatusInternalServerError)
		return
	}
	if msgs == nil {
		msgs = []models.Message{}
	}
	respondJSON(w, http.StatusOK, msgs)
}

func (h *ChatHandler) sendError(conn *websocket.Conn, message string) {
	env := chat.Envelope{Type: "error", Error: message}
	data, _ := json.Marshal(env)
	conn.WriteMessage(websocket.TextMessage, data)
}
