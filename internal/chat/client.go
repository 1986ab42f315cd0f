// Package chat is the client side of in-app messaging between property
// seekers and owners.
package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"homescout/internal/models"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Envelope is the wire frame exchanged over the chat socket.
type Envelope struct {
	Type    string          `json:"type"`
	Message *models.Message `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Client is a live chat connection. Incoming messages are delivered on the
// Messages channel until the connection closes.
type Client struct {
	conn     *websocket.Conn
	messages chan models.Message
}

// Dial connects to the chat endpoint of the listing API, authenticating with
// the bearer token as a query parameter.
func Dial(ctx context.Context, baseURL, token string) (*Client, error) {
	wsURL := strings.Replace(baseURL, "http", "ws", 1)
	u := fmt.Sprintf("%s/ws?token=%s", strings.TrimRight(wsURL, "/"), url.QueryEscape(token))

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to chat: %w", err)
	}

	c := &Client{
		conn:     conn,
		messages: make(chan models.Message, 16),
	}
	go c.readLoop()
	return c, nil
}

// Messages returns the stream of incoming chat messages. The channel is
// closed when the connection drops; reconnection is the caller's concern.
func (c *Client) Messages() <-chan models.Message {
	return c.messages
}

// Send delivers a chat message to another user.
func (c *Client) Send(receiverID, propertyID, body string) error {
	env := Envelope{
		Type: "message",
		Message: &models.Message{
			ReceiverID: receiverID,
			PropertyID: propertyID,
			Body:       body,
		},
	}
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// Close tears down the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) readLoop() {
	defer close(c.messages)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error().Err(err).Msg("Chat connection error")
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			log.Error().Err(err).Msg("Failed to parse chat frame")
			continue
		}
		switch env.Type {
		case "message":
			if env.Message != nil {
				c.messages <- *env.Message
			}
		case "error":
			log.Warn().Str("error", env.Error).Msg("Chat server reported error")
		}
	}
}
