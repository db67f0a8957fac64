package chat

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/ai-chat/internal/middleware"
	chatService "github.com/zhouzirui/ai-chat/internal/service/chat"
	"github.com/zhouzirui/ai-chat/pkg/utils"
)

// Handler 聊天服务的HTTP处理器
type Handler struct {
	chatSvc *chatService.Service
	auth    middleware.Authenticator
}

// New 创建聊天处理器
func New(chatSvc *chatService.Service, auth middleware.Authenticator) *Handler {
	return &Handler{
		chatSvc: chatSvc,
		auth:    auth,
	}
}

// RegisterRoutes 注册聊天相关的路由，所有路由都需要 Bearer 令牌
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireUser(h.auth, false))
		r.Get("/messages", h.handleListMessages)
		r.Post("/chat", h.handleChat)
	})
}

// handleListMessages 返回当前用户的全部消息
func (h *Handler) handleListMessages(w http.ResponseWriter, r *http.Request) {
	u, _ := middleware.UserFromContext(r.Context())

	messages, err := h.chatSvc.History(r.Context(), u)
	if err != nil {
		log.Printf("[chat] list messages for user=%d: %v", u.ID, err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to load messages")
		return
	}

	utils.RespondJSON(w, http.StatusOK, messages)
}

// handleChat 保存用户消息并生成助手回复
func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Content string `json:"content"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondValidation(w, []utils.FieldError{{
			Loc:  []string{"body"},
			Msg:  "Invalid JSON body",
			Type: "value_error.jsondecode",
		}})
		return
	}

	u, _ := middleware.UserFromContext(r.Context())
	message, err := h.chatSvc.Send(r.Context(), u, payload.Content)
	if errors.Is(err, chatService.ErrEmptyContent) {
		utils.RespondValidation(w, []utils.FieldError{{
			Loc:  []string{"body", "content"},
			Msg:  err.Error(),
			Type: "value_error",
		}})
		return
	}
	if err != nil {
		log.Printf("[chat] send for user=%d: %v", u.ID, err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to save message")
		return
	}

	utils.RespondJSON(w, http.StatusOK, message)
}
