package utils

import (
	"encoding/json"
	"log"
	"net/http"
)

// FieldError 描述单个字段的校验失败，与 FastAPI 的 422 响应结构一致。
type FieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// RespondJSON 发送JSON响应
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

// RespondError 发送错误响应，格式为 {"detail": message}
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, map[string]string{"detail": message})
}

// RespondUnauthorized 发送带 Bearer 质询头的 401 响应
func RespondUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	RespondError(w, http.StatusUnauthorized, message)
}

// RespondValidation 发送 422 字段校验错误列表
func RespondValidation(w http.ResponseWriter, errs []FieldError) {
	RespondJSON(w, http.StatusUnprocessableEntity, map[string][]FieldError{"detail": errs})
}
