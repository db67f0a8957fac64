package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	authHandler "github.com/zhouzirui/ai-chat/internal/handler/auth"
	chatHandler "github.com/zhouzirui/ai-chat/internal/handler/chat"
	wsHandler "github.com/zhouzirui/ai-chat/internal/handler/ws"
	middlewarePkg "github.com/zhouzirui/ai-chat/internal/middleware"
	authService "github.com/zhouzirui/ai-chat/internal/service/auth"
	chatService "github.com/zhouzirui/ai-chat/internal/service/chat"
)

// Options holds router settings that come from configuration.
type Options struct {
	CORSOrigins []string
	// AuthRatePerMinute limits /token and /register per client IP; 0 disables it.
	AuthRatePerMinute int
	// FrontendURL is where browser navigation to / is sent.
	FrontendURL string
}

// NewRouter wires HTTP routes to core services.
func NewRouter(authSvc *authService.Service, chatSvc *chatService.Service, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           600,
	}))

	var limiter *middlewarePkg.RateLimiter
	if opts.AuthRatePerMinute > 0 {
		limiter = middlewarePkg.NewRateLimiter(opts.AuthRatePerMinute)
	}

	authHandler.New(authSvc, limiter).RegisterRoutes(r)
	chatHandler.New(chatSvc, authSvc).RegisterRoutes(r)
	wsHandler.New(chatSvc.Hub(), authSvc, opts.CORSOrigins).RegisterRoutes(r)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("OK\n"))
	})
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, strings.TrimSuffix(opts.FrontendURL, "/")+"/login", http.StatusTemporaryRedirect)
	})

	return r
}
