package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/blogapi/internal/jsonapi"
	"github.com/hitoshi/blogapi/internal/middleware"
	"github.com/hitoshi/blogapi/internal/model"
)

// ArticleServiceInterface は記事ハンドラーが必要とするサービスインターフェース。
type ArticleServiceInterface interface {
	// List は記事一覧をcreated_at降順・ページネーション付きで返す。
	List(ctx context.Context, page, perPage int) ([]*model.Article, error)
	// Get は指定IDの記事を返す。
	Get(ctx context.Context, id string) (*model.Article, error)
	// Create は記事を作成する。
	Create(ctx context.Context, userID, title, content string) (*model.Article, error)
	// Update は記事を更新する。nilのフィールドは変更しない。
	Update(ctx context.Context, userID, articleID string, title, content *string) (*model.Article, error)
	// Delete は記事を削除する。
	Delete(ctx context.Context, userID, articleID string) error
}

// ArticleHandler は記事CRUDのHTTPハンドラー。
type ArticleHandler struct {
	service ArticleServiceInterface
}

// NewArticleHandler はArticleHandlerを生成する。
func NewArticleHandler(service ArticleServiceInterface) *ArticleHandler {
	return &ArticleHandler{service: service}
}

// articleAttributesRequest はJSON:APIリクエストボディのattributes部分。
// nilは「指定なし」を意味する。
type articleAttributesRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

// articleDocumentRequest は記事作成・更新リクエストのボディ。
type articleDocumentRequest struct {
	Data struct {
		Attributes articleAttributesRequest `json:"attributes"`
	} `json:"data"`
}

// Index は記事一覧を取得する。
// GET /articles?page=1&per_page=20
func (h *ArticleHandler) Index(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page")
	perPage := queryInt(r, "per_page")

	articles, err := h.service.List(r.Context(), page, perPage)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resources := make([]jsonapi.Resource, len(articles))
	for i, a := range articles {
		resources[i] = articleResource(a)
	}

	jsonapi.WriteDocument(w, http.StatusOK, jsonapi.Document{Data: resources})
}

// Show は記事詳細を取得する。
// GET /articles/{id}
func (h *ArticleHandler) Show(w http.ResponseWriter, r *http.Request) {
	article, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	jsonapi.WriteDocument(w, http.StatusOK, jsonapi.Document{Data: articleResource(article)})
}

// Create は記事を作成する。
// POST /articles
func (h *ArticleHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		jsonapi.WriteErrors(w, http.StatusUnauthorized, jsonapi.AuthorizationFailed())
		return
	}

	attrs := decodeArticleAttributes(r)
	title := stringValue(attrs.Title)
	content := stringValue(attrs.Content)

	article, err := h.service.Create(r.Context(), user.ID, title, content)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	jsonapi.WriteDocument(w, http.StatusCreated, jsonapi.Document{Data: articleResource(article)})
}

// Update は記事を更新する。所有ユーザーのみ実行できる。
// PATCH /articles/{id}
func (h *ArticleHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		jsonapi.WriteErrors(w, http.StatusUnauthorized, jsonapi.AuthorizationFailed())
		return
	}

	attrs := decodeArticleAttributes(r)

	if _, err := h.service.Update(r.Context(), user.ID, chi.URLParam(r, "id"), attrs.Title, attrs.Content); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Destroy は記事を削除する。所有ユーザーのみ実行できる。
// DELETE /articles/{id}
func (h *ArticleHandler) Destroy(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		jsonapi.WriteErrors(w, http.StatusUnauthorized, jsonapi.AuthorizationFailed())
		return
	}

	if err := h.service.Delete(r.Context(), user.ID, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// decodeArticleAttributes はリクエストボディからattributesを取り出す。
// ボディが不正・欠落している場合は空のattributesを返し、
// バリデーションでまとめてエラーにする。
func decodeArticleAttributes(r *http.Request) articleAttributesRequest {
	var doc articleDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		return articleAttributesRequest{}
	}
	return doc.Data.Attributes
}

// queryInt はクエリパラメータを整数として読み取る。未指定・不正な値は0を返す。
func queryInt(r *http.Request, key string) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

// stringValue はnilなら空文字列、そうでなければ指している値を返す。
func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
