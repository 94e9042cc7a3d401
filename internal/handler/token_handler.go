// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/hitoshi/blogapi/internal/jsonapi"
	"github.com/hitoshi/blogapi/internal/metrics"
	"github.com/hitoshi/blogapi/internal/middleware"
	"github.com/hitoshi/blogapi/internal/model"
)

// AuthServiceInterface はトークンハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	// Authenticate は認可コードをBearerトークンに交換する。
	Authenticate(ctx context.Context, code string) (*model.Token, *model.User, error)
	// Logout は指定値のトークンを破棄する。
	Logout(ctx context.Context, tokenValue string) error
}

// TokenHandler はセッション（トークン）管理のHTTPハンドラー。
type TokenHandler struct {
	service   AuthServiceInterface
	collector metrics.AuthCollector
}

// NewTokenHandler はTokenHandlerを生成する。
func NewTokenHandler(service AuthServiceInterface, collector metrics.AuthCollector) *TokenHandler {
	return &TokenHandler{
		service:   service,
		collector: collector,
	}
}

// createTokenRequest はトークン発行リクエストのボディ。
type createTokenRequest struct {
	Code string `json:"code"`
}

// Create は認可コードをBearerトークンに交換する。
// POST /login
func (h *TokenHandler) Create(w http.ResponseWriter, r *http.Request) {
	// ボディが不正な場合は空のコードとして扱い、認証失敗に落とす
	var req createTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		req.Code = ""
	}

	token, _, err := h.service.Authenticate(r.Context(), req.Code)
	if err != nil {
		h.collector.RecordLoginFailure()
		handleServiceError(w, err)
		return
	}

	h.collector.RecordLoginSuccess()
	jsonapi.WriteDocument(w, http.StatusCreated, jsonapi.Document{
		Data: tokenResource(token),
	})
}

// Destroy は提示されたトークンを破棄する。
// DELETE /login
func (h *TokenHandler) Destroy(w http.ResponseWriter, r *http.Request) {
	token, err := middleware.TokenFromContext(r.Context())
	if err != nil {
		jsonapi.WriteErrors(w, http.StatusUnauthorized, jsonapi.AuthorizationFailed())
		return
	}

	if err := h.service.Logout(r.Context(), token.Value); err != nil {
		slog.Error("failed to logout", slog.String("error", err.Error()))
		jsonapi.WriteErrors(w, http.StatusInternalServerError, jsonapi.InternalServerError())
		return
	}

	h.collector.RecordTokenRevoked()
	w.WriteHeader(http.StatusNoContent)
}
