package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/blogapi/internal/jsonapi"
	"github.com/hitoshi/blogapi/internal/middleware"
	"github.com/hitoshi/blogapi/internal/model"
	"github.com/hitoshi/blogapi/internal/repository"
)

// CommentServiceInterface はコメントハンドラーが必要とするサービスインターフェース。
type CommentServiceInterface interface {
	// ListByArticle は記事のコメント一覧を投稿ユーザー付きで返す。
	ListByArticle(ctx context.Context, articleID string, page, perPage int) ([]repository.CommentWithAuthor, error)
	// Create は記事へのコメントを作成する。記事の所有ユーザーのみ投稿できる。
	Create(ctx context.Context, userID, articleID, content string) (*model.Comment, error)
}

// CommentHandler はコメント管理のHTTPハンドラー。
type CommentHandler struct {
	service CommentServiceInterface
}

// NewCommentHandler はCommentHandlerを生成する。
func NewCommentHandler(service CommentServiceInterface) *CommentHandler {
	return &CommentHandler{service: service}
}

// commentDocumentRequest はコメント作成リクエストのボディ。
type commentDocumentRequest struct {
	Data struct {
		Attributes struct {
			Content *string `json:"content"`
		} `json:"attributes"`
	} `json:"data"`
}

// Index は記事のコメント一覧を取得する。
// GET /articles/{article_id}/comments?page=1&per_page=20
func (h *CommentHandler) Index(w http.ResponseWriter, r *http.Request) {
	articleID := chi.URLParam(r, "article_id")
	page := queryInt(r, "page")
	perPage := queryInt(r, "per_page")

	comments, err := h.service.ListByArticle(r.Context(), articleID, page, perPage)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	jsonapi.WriteDocument(w, http.StatusOK, commentListDocument(comments))
}

// Create は記事へのコメントを作成する。記事の所有ユーザーのみ実行できる。
// POST /articles/{article_id}/comments
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		jsonapi.WriteErrors(w, http.StatusUnauthorized, jsonapi.AuthorizationFailed())
		return
	}

	var doc commentDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		doc.Data.Attributes.Content = nil
	}

	comment, err := h.service.Create(r.Context(), user.ID, chi.URLParam(r, "article_id"),
		stringValue(doc.Data.Attributes.Content))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	jsonapi.WriteDocument(w, http.StatusCreated, jsonapi.Document{Data: commentResource(comment)})
}
