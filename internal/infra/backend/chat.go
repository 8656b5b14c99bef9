package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/edumarques81/vibesync-player/internal/domain/catalog"
)

// ChatHistory returns the stored conversation of a user.
func (c *Client) ChatHistory(ctx context.Context, userID string) ([]catalog.ChatMessage, error) {
	msgs, _, err := getList[catalog.ChatMessage](ctx, c, resource("/chat/history", userID), "history", nil)
	if err != nil {
		return nil, fmt.Errorf("chat history: %w", err)
	}
	return msgs, nil
}

// SendChat posts a message and returns the bot reply with the new history.
func (c *Client) SendChat(ctx context.Context, userID, message string) (*catalog.ChatReply, error) {
	body := map[string]string{"message": message, "user_id": userID}
	var reply catalog.ChatReply
	if err := c.send(ctx, http.MethodPost, "/chat", body, &reply); err != nil {
		return nil, fmt.Errorf("send chat: %w", err)
	}
	return &reply, nil
}

// ClearChatHistory deletes a user's conversation.
func (c *Client) ClearChatHistory(ctx context.Context, userID string) error {
	if err := c.send(ctx, http.MethodDelete, resource("/chat/history", userID), nil, nil); err != nil {
		return fmt.Errorf("clear chat history: %w", err)
	}
	return nil
}
