package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	chatModel "github.com/zhouzirui/ai-chat/internal/model/chat"
	"github.com/zhouzirui/ai-chat/internal/model/user"
	chatservice "github.com/zhouzirui/ai-chat/internal/service/chat"
	"github.com/zhouzirui/ai-chat/internal/store"
)

// tokenAuth treats the bearer token as a username.
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

func setupRouter(t *testing.T) *chi.Mux {
	t.Helper()
	st := store.NewMemoryStore()
	for _, name := range []string{"alice", "bob"} {
		if _, err := st.CreateUser(context.Background(), user.User{Username: name, Email: name + "@gmail.com"}); err != nil {
			t.Fatalf("CreateUser err: %v", err)
		}
	}

	handler := New(chatservice.NewService(st, nil, nil), tokenAuth{store: st})
	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r
}

func do(r http.Handler, method, path, token string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestChatThenListMessages(t *testing.T) {
	r := setupRouter(t)

	resp := do(r, http.MethodPost, "/chat", "alice", []byte(`{"content":"hello"}`))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var sent chatModel.Message
	if err := json.Unmarshal(resp.Body.Bytes(), &sent); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sent.Content != "hello" || sent.ID == 0 {
		t.Fatalf("unexpected message: %+v", sent)
	}

	resp = do(r, http.MethodGet, "/messages", "alice", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var messages []map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &messages); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	for _, key := range []string{"id", "content", "timestamp", "user_id"} {
		if _, ok := messages[0][key]; !ok {
			t.Fatalf("message missing %q: %v", key, messages[0])
		}
	}
	if messages[1]["content"] != "AI: response to: hello" {
		t.Fatalf("unexpected reply: %v", messages[1]["content"])
	}
}

func TestListMessagesIsolatedPerUser(t *testing.T) {
	r := setupRouter(t)
	do(r, http.MethodPost, "/chat", "alice", []byte(`{"content":"secret"}`))

	resp := do(r, http.MethodGet, "/messages", "bob", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if got := bytes.TrimSpace(resp.Body.Bytes()); string(got) != "[]" {
		t.Fatalf("expected empty list, got %s", got)
	}
}

func TestChatRequiresToken(t *testing.T) {
	r := setupRouter(t)

	if resp := do(r, http.MethodGet, "/messages", "", nil); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
	if resp := do(r, http.MethodPost, "/chat", "mallory", []byte(`{"content":"x"}`)); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestChatRejectsBlankContent(t *testing.T) {
	r := setupRouter(t)

	if resp := do(r, http.MethodPost, "/chat", "alice", []byte(`{"content":"  "}`)); resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.Code)
	}
	if resp := do(r, http.MethodPost, "/chat", "alice", []byte(`not json`)); resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.Code)
	}
}
