package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hitoshi/blogapi/internal/metrics"
	"github.com/hitoshi/blogapi/internal/model"
	"github.com/hitoshi/blogapi/internal/repository"
)

// --- 共有モック ---

type mockAuthService struct {
	authenticateFn func(ctx context.Context, code string) (*model.Token, *model.User, error)
	logoutFn       func(ctx context.Context, tokenValue string) error
}

func (m *mockAuthService) Authenticate(ctx context.Context, code string) (*model.Token, *model.User, error) {
	if m.authenticateFn != nil {
		return m.authenticateFn(ctx, code)
	}
	return nil, nil, model.ErrAuthenticationFailed
}

func (m *mockAuthService) Logout(ctx context.Context, tokenValue string) error {
	if m.logoutFn != nil {
		return m.logoutFn(ctx, tokenValue)
	}
	return nil
}

type mockArticleService struct {
	listFn   func(ctx context.Context, page, perPage int) ([]*model.Article, error)
	getFn    func(ctx context.Context, id string) (*model.Article, error)
	createFn func(ctx context.Context, userID, title, content string) (*model.Article, error)
	updateFn func(ctx context.Context, userID, articleID string, title, content *string) (*model.Article, error)
	deleteFn func(ctx context.Context, userID, articleID string) error
}

func (m *mockArticleService) List(ctx context.Context, page, perPage int) ([]*model.Article, error) {
	if m.listFn != nil {
		return m.listFn(ctx, page, perPage)
	}
	return nil, nil
}

func (m *mockArticleService) Get(ctx context.Context, id string) (*model.Article, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, model.ErrNotFound
}

func (m *mockArticleService) Create(ctx context.Context, userID, title, content string) (*model.Article, error) {
	if m.createFn != nil {
		return m.createFn(ctx, userID, title, content)
	}
	return nil, nil
}

func (m *mockArticleService) Update(ctx context.Context, userID, articleID string, title, content *string) (*model.Article, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, userID, articleID, title, content)
	}
	return nil, nil
}

func (m *mockArticleService) Delete(ctx context.Context, userID, articleID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID, articleID)
	}
	return nil
}

type mockCommentService struct {
	listByArticleFn func(ctx context.Context, articleID string, page, perPage int) ([]repository.CommentWithAuthor, error)
	createFn        func(ctx context.Context, userID, articleID, content string) (*model.Comment, error)
}

func (m *mockCommentService) ListByArticle(ctx context.Context, articleID string, page, perPage int) ([]repository.CommentWithAuthor, error) {
	if m.listByArticleFn != nil {
		return m.listByArticleFn(ctx, articleID, page, perPage)
	}
	return nil, nil
}

func (m *mockCommentService) Create(ctx context.Context, userID, articleID, content string) (*model.Comment, error) {
	if m.createFn != nil {
		return m.createFn(ctx, userID, articleID, content)
	}
	return nil, nil
}

type mockAuthCollector struct {
	successCount int
	failureCount int
	revokedCount int
}

func (m *mockAuthCollector) RecordLoginSuccess() { m.successCount++ }
func (m *mockAuthCollector) RecordLoginFailure() { m.failureCount++ }
func (m *mockAuthCollector) RecordTokenRevoked() { m.revokedCount++ }

// --- compile-time interface checks ---
var (
	_ AuthServiceInterface    = (*mockAuthService)(nil)
	_ ArticleServiceInterface = (*mockArticleService)(nil)
	_ CommentServiceInterface = (*mockCommentService)(nil)
	_ metrics.AuthCollector   = (*mockAuthCollector)(nil)
)

// --- レスポンス検証ヘルパー ---

type errorEntry struct {
	Status string `json:"status"`
	Source struct {
		Pointer string `json:"pointer"`
	} `json:"source"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

type errorBody struct {
	Errors []errorEntry `json:"errors"`
}

func decodeErrors(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse error body: %v", err)
	}
	return body
}

func decodeDocument(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse document body: %v", err)
	}
	return body
}

func jsonBody(s string) io.Reader {
	return strings.NewReader(s)
}

func assertSingleError(t *testing.T, rec *httptest.ResponseRecorder, wantStatus, wantPointer, wantTitle string) {
	t.Helper()
	body := decodeErrors(t, rec)
	if len(body.Errors) != 1 {
		t.Fatalf("errors = %d, want 1", len(body.Errors))
	}
	e := body.Errors[0]
	if e.Status != wantStatus || e.Source.Pointer != wantPointer || e.Title != wantTitle {
		t.Errorf("error = %+v, want status=%s pointer=%s title=%s", e, wantStatus, wantPointer, wantTitle)
	}
}
