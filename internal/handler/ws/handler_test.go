package ws

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/zhouzirui/ai-chat/internal/model/user"
	chatservice "github.com/zhouzirui/ai-chat/internal/service/chat"
	"github.com/zhouzirui/ai-chat/internal/store"
)

type tokenAuth struct {
	store store.Store
}

func (a tokenAuth) Authenticate(ctx context.Context, token string) (user.User, error) {
	u, err := a.store.UserByUsername(ctx, token)
	if err != nil {
		return user.User{}, errors.New("unknown token")
	}
	return u, nil
}

func TestWebSocketPushesNewMessages(t *testing.T) {
	st := store.NewMemoryStore()
	alice, err := st.CreateUser(context.Background(), user.User{Username: "alice", Email: "alice@gmail.com"})
	if err != nil {
		t.Fatalf("CreateUser err: %v", err)
	}

	hub := chatservice.NewHub()
	svc := chatservice.NewService(st, nil, hub)

	r := chi.NewRouter()
	New(hub, tokenAuth{store: st}, nil).RegisterRoutes(r)
	srv := httptest.NewServer(r)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=alice"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var hello Event
	if err := conn.ReadJSON(&hello); err != nil || hello.Type != "connected" {
		t.Fatalf("expected connected event, got %+v err=%v", hello, err)
	}

	if _, err := svc.Send(context.Background(), alice, "hi"); err != nil {
		t.Fatalf("Send err: %v", err)
	}

	for _, want := range []string{"hi", "AI: response to: hi"} {
		var ev Event
		if err := conn.ReadJSON(&ev); err != nil {
			t.Fatalf("read: %v", err)
		}
		if ev.Type != "message" || ev.Message == nil || ev.Message.Content != want {
			t.Fatalf("unexpected event: %+v", ev)
		}
	}
}

func TestWebSocketRejectsMissingToken(t *testing.T) {
	st := store.NewMemoryStore()
	r := chi.NewRouter()
	New(chatservice.NewHub(), tokenAuth{store: st}, nil).RegisterRoutes(r)
	srv := httptest.NewServer(r)
	defer srv.Close()

	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	if err == nil {
		t.Fatal("expected dial failure")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 response, got %+v", resp)
	}
}
