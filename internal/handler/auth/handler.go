package auth

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/ai-chat/internal/middleware"
	authService "github.com/zhouzirui/ai-chat/internal/service/auth"
	"github.com/zhouzirui/ai-chat/pkg/utils"
)

// Handler 账号注册与令牌签发的HTTP处理器
type Handler struct {
	authSvc *authService.Service
	limiter *middleware.RateLimiter
}

// New 创建认证处理器，limiter 为空时不限流
func New(authSvc *authService.Service, limiter *middleware.RateLimiter) *Handler {
	return &Handler{
		authSvc: authSvc,
		limiter: limiter,
	}
}

// RegisterRoutes 注册认证相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		if h.limiter != nil {
			r.Use(h.limiter.Handler)
		}
		r.Post("/token", h.handleToken)
		r.Post("/register", h.handleRegister)
	})
}

// TokenResponse 登录成功返回的令牌
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// handleToken 使用表单凭证换取访问令牌
func (h *Handler) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid form body")
		return
	}

	username := r.PostForm.Get("username")
	password := r.PostForm.Get("password")

	var missing []utils.FieldError
	if username == "" {
		missing = append(missing, requiredField("username"))
	}
	if password == "" {
		missing = append(missing, requiredField("password"))
	}
	if len(missing) > 0 {
		utils.RespondValidation(w, missing)
		return
	}

	token, err := h.authSvc.Login(r.Context(), middleware.ClientIP(r), username, password)
	switch {
	case errors.Is(err, authService.ErrTooManyAttempts):
		utils.RespondError(w, http.StatusTooManyRequests, err.Error())
		return
	case errors.Is(err, authService.ErrInvalidCredentials):
		utils.RespondUnauthorized(w, err.Error())
		return
	case err != nil:
		log.Printf("[auth] login error: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	utils.RespondJSON(w, http.StatusOK, TokenResponse{AccessToken: token, TokenType: authService.TokenType})
}

// RegisterRequest 注册请求体
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// handleRegister 创建新账号
func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var payload RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondValidation(w, []utils.FieldError{{
			Loc:  []string{"body"},
			Msg:  "Invalid JSON body",
			Type: "value_error.jsondecode",
		}})
		return
	}

	created, err := h.authSvc.Register(r.Context(), payload.Username, payload.Email, payload.Password)
	var verr *authService.ValidationError
	switch {
	case errors.As(err, &verr):
		fields := verr.Fields.Fields()
		details := make([]utils.FieldError, 0, len(fields))
		for _, field := range fields {
			details = append(details, utils.FieldError{
				Loc:  []string{"body", field},
				Msg:  verr.Fields[field],
				Type: "value_error",
			})
		}
		utils.RespondValidation(w, details)
		return
	case errors.Is(err, authService.ErrUsernameTaken), errors.Is(err, authService.ErrEmailTaken):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		log.Printf("[auth] registration error: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	utils.RespondJSON(w, http.StatusOK, created.Public())
}

func requiredField(name string) utils.FieldError {
	return utils.FieldError{Loc: []string{"body", name}, Msg: "field required", Type: "value_error.missing"}
}
