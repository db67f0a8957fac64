package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/zhouzirui/ai-chat/internal/model/user"
)

type stubAuth struct{}

func (stubAuth) Authenticate(_ context.Context, token string) (user.User, error) {
	if token == "good" {
		return user.User{ID: 7, Username: "alice"}, nil
	}
	return user.User{}, errors.New("bad token")
}

func protected(allowQuery bool) http.Handler {
	return RequireUser(stubAuth{}, allowQuery)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := UserFromContext(r.Context())
		if !ok || u.ID != 7 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
}

func TestRequireUser(t *testing.T) {
	cases := []struct {
		name       string
		header     string
		target     string
		allowQuery bool
		want       int
	}{
		{"valid header", "Bearer good", "/", false, http.StatusOK},
		{"lowercase scheme", "bearer good", "/", false, http.StatusOK},
		{"missing", "", "/", false, http.StatusUnauthorized},
		{"bad token", "Bearer bad", "/", false, http.StatusUnauthorized},
		{"basic scheme", "Basic good", "/", false, http.StatusUnauthorized},
		{"query disallowed", "", "/?token=good", false, http.StatusUnauthorized},
		{"query allowed", "", "/?token=good", true, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.target, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp := httptest.NewRecorder()
			protected(tc.allowQuery).ServeHTTP(resp, req)

			if resp.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, resp.Code)
			}
			if tc.want == http.StatusUnauthorized && resp.Header().Get("WWW-Authenticate") != "Bearer" {
				t.Fatal("expected WWW-Authenticate: Bearer")
			}
		})
	}
}

func TestRateLimiter(t *testing.T) {
	l := NewRateLimiter(2)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	if !l.Allow("a") || !l.Allow("a") {
		t.Fatal("expected burst of 2 allowed")
	}
	if l.Allow("a") {
		t.Fatal("expected third request rejected")
	}
	if !l.Allow("b") {
		t.Fatal("other clients have their own bucket")
	}

	now = now.Add(30 * time.Second)
	if !l.Allow("a") {
		t.Fatal("expected a token after refill")
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	if got := ClientIP(req); got != "192.0.2.1" {
		t.Fatalf("unexpected ip %q", got)
	}
	req.RemoteAddr = "192.0.2.9"
	if got := ClientIP(req); got != "192.0.2.9" {
		t.Fatalf("unexpected ip %q", got)
	}
}
