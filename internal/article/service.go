// Package article は記事に関するビジネスロジックを提供する。
package article

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/blogapi/internal/model"
	"github.com/hitoshi/blogapi/internal/repository"
	"github.com/hitoshi/blogapi/internal/security"
)

const (
	// DefaultPerPage は記事一覧の1ページあたりのデフォルト件数。
	DefaultPerPage = 20
	// MaxPerPage は1ページあたりの最大件数。
	MaxPerPage = 100
)

// blankMessage はフィールド未入力時のバリデーションメッセージ。
const blankMessage = "can't be blank"

// Service は記事のCRUDと所有権チェックを提供する。
type Service struct {
	articleRepo repository.ArticleRepository
	sanitizer   security.ContentSanitizerService
}

// NewService はServiceを生成する。
func NewService(articleRepo repository.ArticleRepository, sanitizer security.ContentSanitizerService) *Service {
	return &Service{
		articleRepo: articleRepo,
		sanitizer:   sanitizer,
	}
}

// List は記事一覧をcreated_at降順・ページネーション付きで返す。
// pageとperPageが0以下の場合はデフォルト値を使用する。
func (s *Service) List(ctx context.Context, page, perPage int) ([]*model.Article, error) {
	limit, offset := normalizePagination(page, perPage)

	articles, err := s.articleRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	return articles, nil
}

// Get は指定IDの記事を返す。存在しない場合はmodel.ErrNotFoundを返す。
func (s *Service) Get(ctx context.Context, id string) (*model.Article, error) {
	article, err := s.articleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find article: %w", err)
	}
	if article == nil {
		return nil, model.ErrNotFound
	}
	return article, nil
}

// Create は記事を作成する。
// titleとcontentの未入力はフィールドごとに収集してまとめて返す。
// slugは"title id"をパラメータ化した値で、ID確定後に挿入前へ採番する。
func (s *Service) Create(ctx context.Context, userID, title, content string) (*model.Article, error) {
	var verr model.ValidationErrors
	if title == "" {
		verr = append(verr, model.FieldError{Field: "title", Message: blankMessage})
	}
	if content == "" {
		verr = append(verr, model.FieldError{Field: "content", Message: blankMessage})
	}
	if len(verr) > 0 {
		return nil, verr
	}

	now := time.Now()
	article := &model.Article{
		ID:        uuid.New().String(),
		Title:     title,
		Content:   s.sanitizer.Sanitize(content),
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	article.Slug = Parameterize(article.Title + " " + article.ID)

	if err := s.articleRepo.Create(ctx, article); err != nil {
		return nil, fmt.Errorf("failed to create article: %w", err)
	}

	return article, nil
}

// Update は記事を更新する。所有ユーザー以外からの更新はmodel.ErrAccessDeniedを返す。
// nilのフィールドは変更しない。指定されたフィールドが空文字列の場合は
// バリデーションエラーになる。
func (s *Service) Update(ctx context.Context, userID, articleID string, title, content *string) (*model.Article, error) {
	article, err := s.articleRepo.FindByID(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("failed to find article: %w", err)
	}
	if article == nil {
		return nil, model.ErrNotFound
	}
	if article.UserID != userID {
		return nil, model.ErrAccessDenied
	}

	var verr model.ValidationErrors
	if title != nil && *title == "" {
		verr = append(verr, model.FieldError{Field: "title", Message: blankMessage})
	}
	if content != nil && *content == "" {
		verr = append(verr, model.FieldError{Field: "content", Message: blankMessage})
	}
	if len(verr) > 0 {
		return nil, verr
	}

	if title != nil {
		article.Title = *title
	}
	if content != nil {
		article.Content = s.sanitizer.Sanitize(*content)
	}
	article.UpdatedAt = time.Now()

	if err := s.articleRepo.Update(ctx, article); err != nil {
		return nil, fmt.Errorf("failed to update article: %w", err)
	}

	return article, nil
}

// Delete は記事を削除する。所有ユーザー以外からの削除はmodel.ErrAccessDeniedを返す。
func (s *Service) Delete(ctx context.Context, userID, articleID string) error {
	article, err := s.articleRepo.FindByID(ctx, articleID)
	if err != nil {
		return fmt.Errorf("failed to find article: %w", err)
	}
	if article == nil {
		return model.ErrNotFound
	}
	if article.UserID != userID {
		return model.ErrAccessDenied
	}

	if err := s.articleRepo.DeleteByID(ctx, articleID); err != nil {
		return fmt.Errorf("failed to delete article: %w", err)
	}
	return nil
}

// normalizePagination はpage/per_pageをLIMIT/OFFSETに変換する。
func normalizePagination(page, perPage int) (limit, offset int) {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	if page <= 0 {
		page = 1
	}
	return perPage, (page - 1) * perPage
}
