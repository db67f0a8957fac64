package chat_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/zhouzirui/ai-chat/internal/model/chat"
	"github.com/zhouzirui/ai-chat/internal/model/user"
	chatservice "github.com/zhouzirui/ai-chat/internal/service/chat"
	"github.com/zhouzirui/ai-chat/internal/store"
)

type failingResponder struct{}

func (failingResponder) Reply(context.Context, []chat.Message, string) (string, error) {
	return "", errors.New("model unavailable")
}

func newUser(t *testing.T, st store.Store, name string) user.User {
	t.Helper()
	u, err := st.CreateUser(context.Background(), user.User{Username: name, Email: name + "@gmail.com", PasswordHash: "h"})
	if err != nil {
		t.Fatalf("CreateUser err: %v", err)
	}
	return u
}

func TestServiceSendStoresReply(t *testing.T) {
	st := store.NewMemoryStore()
	svc := chatservice.NewService(st, nil, nil)
	ctx := context.Background()
	alice := newUser(t, st, "alice")

	msg, err := svc.Send(ctx, alice, "hello")
	if err != nil {
		t.Fatalf("Send err: %v", err)
	}
	if msg.Content != "hello" || msg.UserID != alice.ID || msg.ID == 0 {
		t.Fatalf("unexpected message: %+v", msg)
	}

	history, err := svc.History(ctx, alice)
	if err != nil {
		t.Fatalf("History err: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(history))
	}
	if history[0].FromAssistant() {
		t.Fatal("user message flagged as assistant")
	}
	if !history[1].FromAssistant() || history[1].Content != "AI: response to: hello" {
		t.Fatalf("unexpected reply: %q", history[1].Content)
	}
}

func TestServiceSendRejectsBlank(t *testing.T) {
	st := store.NewMemoryStore()
	svc := chatservice.NewService(st, nil, nil)
	alice := newUser(t, st, "alice")

	if _, err := svc.Send(context.Background(), alice, "   "); !errors.Is(err, chatservice.ErrEmptyContent) {
		t.Fatalf("expected ErrEmptyContent, got %v", err)
	}
}

func TestServiceSendFallsBackOnResponderError(t *testing.T) {
	st := store.NewMemoryStore()
	svc := chatservice.NewService(st, failingResponder{}, nil)
	ctx := context.Background()
	alice := newUser(t, st, "alice")

	if _, err := svc.Send(ctx, alice, "hello"); err != nil {
		t.Fatalf("Send err: %v", err)
	}
	history, _ := svc.History(ctx, alice)
	if len(history) != 2 || !history[1].FromAssistant() {
		t.Fatalf("expected fallback assistant reply, got %+v", history)
	}
}

func TestServiceHistoryIsPerUser(t *testing.T) {
	st := store.NewMemoryStore()
	svc := chatservice.NewService(st, nil, nil)
	ctx := context.Background()
	alice := newUser(t, st, "alice")
	bob := newUser(t, st, "bob")

	if _, err := svc.Send(ctx, alice, "from alice"); err != nil {
		t.Fatalf("Send err: %v", err)
	}

	history, err := svc.History(ctx, bob)
	if err != nil {
		t.Fatalf("History err: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("bob should see no messages, got %d", len(history))
	}
}

func TestServicePublishesToSubscribers(t *testing.T) {
	st := store.NewMemoryStore()
	hub := chatservice.NewHub()
	svc := chatservice.NewService(st, nil, hub)
	alice := newUser(t, st, "alice")
	bob := newUser(t, st, "bob")

	aliceSub := hub.Subscribe(alice.ID)
	defer aliceSub.Close()
	bobSub := hub.Subscribe(bob.ID)
	defer bobSub.Close()

	if _, err := svc.Send(context.Background(), alice, "ping"); err != nil {
		t.Fatalf("Send err: %v", err)
	}

	for _, want := range []string{"ping", "AI: response to: ping"} {
		select {
		case got := <-aliceSub.C:
			if got.Content != want {
				t.Fatalf("got %q want %q", got.Content, want)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for %q", want)
		}
	}

	select {
	case msg := <-bobSub.C:
		t.Fatalf("bob received %+v", msg)
	default:
	}
}

func TestHubCloseEndsSubscriptions(t *testing.T) {
	hub := chatservice.NewHub()
	sub := hub.Subscribe(1)
	hub.Close()

	if _, ok := <-sub.C; ok {
		t.Fatal("expected closed channel")
	}
	sub.Close()

	late := hub.Subscribe(1)
	if _, ok := <-late.C; ok {
		t.Fatal("expected closed channel after hub close")
	}
	late.Close()
}
