// Package chat keeps the assistant chat history for the signed-in user.
package chat

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/edumarques81/vibesync-player/internal/domain/catalog"
)

// Fallback texts shown as bot messages.
const (
	DefaultName     = "there"
	MissingUserText = "❌ Could not find your user id. Please sign in again."
	NoResponseText  = "🤖 No response from the assistant."
	SendFailedText  = "❌ Could not reach the server."
)

// ErrEmptyMessage is returned for blank messages.
var ErrEmptyMessage = errors.New("empty message")

// Backend is the chat API.
type Backend interface {
	ChatHistory(ctx context.Context, userID string) ([]catalog.ChatMessage, error)
	SendChat(ctx context.Context, userID, message string) (*catalog.ChatReply, error)
	ClearChatHistory(ctx context.Context, userID string) error
}

// Greeting is the first bot message of an empty conversation.
func Greeting(name string) string {
	if name == "" {
		name = DefaultName
	}
	return fmt.Sprintf("Hi %s, how are you today?", name)
}

func bot(text string) catalog.ChatMessage {
	return catalog.ChatMessage{Text: text, Sender: catalog.SenderBot}
}

// Session is one chat window.
type Session struct {
	mu      sync.Mutex
	history []catalog.ChatMessage
	backend Backend
}

// NewSession creates an empty chat.
func NewSession(b Backend) *Session {
	return &Session{backend: b}
}

// Messages returns a copy of the local history.
func (s *Session) Messages() []catalog.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := slices.Clone(s.history)
	if out == nil {
		out = []catalog.ChatMessage{}
	}
	return out
}

func (s *Session) set(h []catalog.ChatMessage) []catalog.ChatMessage {
	s.mu.Lock()
	s.history = slices.Clone(h)
	s.mu.Unlock()
	return s.Messages()
}

func (s *Session) push(m ...catalog.ChatMessage) []catalog.ChatMessage {
	s.mu.Lock()
	s.history = append(s.history, m...)
	s.mu.Unlock()
	return s.Messages()
}

// History loads the user's conversation. An empty conversation starts
// with a greeting.
func (s *Session) History(ctx context.Context, user *catalog.User) ([]catalog.ChatMessage, error) {
	if user == nil || user.ID == "" {
		return s.set([]catalog.ChatMessage{bot(MissingUserText)}), nil
	}

	h, err := s.backend.ChatHistory(ctx, user.ID)
	if err != nil {
		log.Error().Err(err).Str("user", user.ID).Msg("Failed to load chat history")
		return s.Messages(), fmt.Errorf("chat history: %w", err)
	}
	if len(h) == 0 {
		return s.set([]catalog.ChatMessage{bot(Greeting(user.Name))}), nil
	}
	return s.set(h), nil
}

// Send posts text for the user. The server's history replaces the local
// one on success; failures append a bot fallback message instead of
// returning an error.
func (s *Session) Send(ctx context.Context, user *catalog.User, text string) ([]catalog.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return s.Messages(), ErrEmptyMessage
	}
	if user == nil || user.ID == "" {
		return s.push(bot(MissingUserText)), nil
	}

	s.push(catalog.ChatMessage{Text: text, Sender: catalog.SenderUser})

	reply, err := s.backend.SendChat(ctx, user.ID, text)
	switch {
	case err != nil:
		log.Error().Err(err).Str("user", user.ID).Msg("Chat request failed")
		return s.push(bot(SendFailedText)), nil
	case reply == nil || reply.Response == "":
		return s.push(bot(NoResponseText)), nil
	case len(reply.History) == 0:
		return s.push(bot(reply.Response)), nil
	}
	return s.set(reply.History), nil
}

// Clear deletes the user's conversation.
func (s *Session) Clear(ctx context.Context, user *catalog.User) error {
	if user == nil || user.ID == "" {
		return fmt.Errorf("clear chat: %w", catalog.ErrNotFound)
	}
	if err := s.backend.ClearChatHistory(ctx, user.ID); err != nil {
		return fmt.Errorf("clear chat: %w", err)
	}
	s.set(nil)
	return nil
}
