package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/zhouzirui/ai-chat/internal/model/user"
	"github.com/zhouzirui/ai-chat/pkg/utils"
)

const credentialsError = "Could not validate credentials"

// Authenticator resolves a bearer token to a user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (user.User, error)
}

type userKey struct{}

// WithUser stores u on ctx.
func WithUser(ctx context.Context, u user.User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// UserFromContext returns the user attached by RequireUser.
func UserFromContext(ctx context.Context) (user.User, bool) {
	u, ok := ctx.Value(userKey{}).(user.User)
	return u, ok
}

// BearerToken extracts the token from an "Authorization: Bearer ..." header.
func BearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// RequireUser rejects requests without a valid bearer token. With allowQuery,
// a "token" query parameter is accepted too, for clients that cannot set
// headers (browser websockets).
func RequireUser(auth Authenticator, allowQuery bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" && allowQuery {
				token = r.URL.Query().Get("token")
			}
			if token == "" {
				utils.RespondUnauthorized(w, "Not authenticated")
				return
			}

			u, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				log.Printf("[auth] rejected token: %v", err)
				utils.RespondUnauthorized(w, credentialsError)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}
