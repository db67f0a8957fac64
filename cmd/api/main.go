package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/zhouzirui/ai-chat/internal/config"
	"github.com/zhouzirui/ai-chat/internal/handler"
	"github.com/zhouzirui/ai-chat/internal/service/ai"
	"github.com/zhouzirui/ai-chat/internal/service/auth"
	"github.com/zhouzirui/ai-chat/internal/service/chat"
	"github.com/zhouzirui/ai-chat/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	st, err := store.Open(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer st.Close()

	// Without Ark credentials replies come from the echo responder.
	var responder chat.Responder
	if cfg.AI.Enabled() {
		aiService, err := ai.NewService(ctx, cfg.AI)
		if err != nil {
			log.Printf("warning: failed to initialize AI service: %v", err)
			log.Println("continuing with echo replies")
		} else {
			responder = aiService
			log.Println("AI service initialized successfully")
		}
	} else {
		log.Println("Ark credentials not configured, using echo replies")
	}

	hub := chat.NewHub()
	defer hub.Close()

	authService := auth.NewService(st,
		auth.NewTokenIssuer(cfg.Auth.SecretKey, cfg.Auth.TokenTTL),
		auth.NewLockout(cfg.Auth.MaxLoginAttempts, cfg.Auth.LoginBlock),
	)
	chatService := chat.NewService(st, responder, hub)

	router := handler.NewRouter(authService, chatService, handler.Options{
		CORSOrigins:       cfg.Server.CORSOrigins,
		AuthRatePerMinute: cfg.Auth.RatePerMinute,
		FrontendURL:       cfg.Server.FrontendURL,
	})

	startServer(ctx, cfg.Server, router, hub)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler, hub *chat.Hub) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	// Websocket handlers hold their connections open; closing the hub ends them.
	srv.RegisterOnShutdown(hub.Close)

	log.Printf("AI chat backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
