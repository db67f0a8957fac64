package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/zhouzirui/ai-chat/internal/model/chat"
	"github.com/zhouzirui/ai-chat/internal/model/user"
	"github.com/zhouzirui/ai-chat/internal/store"
)

var ErrEmptyContent = errors.New("message content is required")

// fallbackReply is stored when the responder fails, so every user turn gets an answer.
const fallbackReply = "Sorry, I could not generate a response right now."

// Responder produces the assistant reply for a new user message.
type Responder interface {
	Reply(ctx context.Context, history []chat.Message, content string) (string, error)
}

// EchoResponder answers without a model.
type EchoResponder struct{}

func (EchoResponder) Reply(_ context.Context, _ []chat.Message, content string) (string, error) {
	return "response to: " + content, nil
}

// Service stores user turns together with the assistant's reply.
type Service struct {
	store     store.Store
	responder Responder
	hub       *Hub
	now       func() time.Time
}

// NewService returns a chat service. A nil responder falls back to EchoResponder.
func NewService(st store.Store, responder Responder, hub *Hub) *Service {
	if responder == nil {
		responder = EchoResponder{}
	}
	if hub == nil {
		hub = NewHub()
	}
	return &Service{
		store:     st,
		responder: responder,
		hub:       hub,
		now:       time.Now,
	}
}

// Hub exposes the live feed of stored messages.
func (s *Service) Hub() *Hub {
	return s.hub
}

// Send stores content for u plus the assistant reply and returns the user's message.
func (s *Service) Send(ctx context.Context, u user.User, content string) (chat.Message, error) {
	if strings.TrimSpace(content) == "" {
		return chat.Message{}, ErrEmptyContent
	}

	history, err := s.store.MessagesByUser(ctx, u.ID)
	if err != nil {
		return chat.Message{}, fmt.Errorf("load history: %w", err)
	}

	reply, err := s.responder.Reply(ctx, history, content)
	if err != nil {
		log.Printf("[chat] responder failed for user=%d: %v", u.ID, err)
		reply = fallbackReply
	}

	now := s.now().UTC()
	stored, err := s.store.AppendMessages(ctx, []chat.Message{
		{Content: content, Timestamp: now, UserID: u.ID},
		{Content: chat.AssistantContent(reply), Timestamp: now, UserID: u.ID},
	})
	if err != nil {
		return chat.Message{}, fmt.Errorf("save messages: %w", err)
	}

	for _, msg := range stored {
		s.hub.Publish(msg)
	}
	return stored[0], nil
}

// History returns every message of u in the order they were stored.
func (s *Service) History(ctx context.Context, u user.User) ([]chat.Message, error) {
	messages, err := s.store.MessagesByUser(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return messages, nil
}
