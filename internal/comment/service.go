// Package comment は記事コメントに関するビジネスロジックを提供する。
package comment

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
	// DefaultPerPage はコメント一覧の1ページあたりのデフォルト件数。
	DefaultPerPage = 20
	// MaxPerPage は1ページあたりの最大件数。
	MaxPerPage = 100
)

const blankMessage = "can't be blank"

// Service はコメントの一覧取得と作成を提供する。
type Service struct {
	commentRepo repository.CommentRepository
	articleRepo repository.ArticleRepository
	sanitizer   security.ContentSanitizerService
}

// NewService はServiceを生成する。
func NewService(
	commentRepo repository.CommentRepository,
	articleRepo repository.ArticleRepository,
	sanitizer security.ContentSanitizerService,
) *Service {
	return &Service{
		commentRepo: commentRepo,
		articleRepo: articleRepo,
		sanitizer:   sanitizer,
	}
}

// ListByArticle は記事のコメント一覧を投稿ユーザー付きで返す。
// 記事が存在しない場合はmodel.ErrNotFoundを返す。
func (s *Service) ListByArticle(ctx context.Context, articleID string, page, perPage int) ([]repository.CommentWithAuthor, error) {
	article, err := s.articleRepo.FindByID(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("failed to find article: %w", err)
	}
	if article == nil {
		return nil, model.ErrNotFound
	}

	limit, offset := normalizePagination(page, perPage)
	comments, err := s.commentRepo.ListByArticleID(ctx, articleID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

// Create は記事へのコメントを作成する。
// 記事の所有ユーザー以外からの投稿はmodel.ErrAccessDeniedを返す。
// 所有権チェックはバリデーションより先に行う。
func (s *Service) Create(ctx context.Context, userID, articleID, content string) (*model.Comment, error) {
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

	if content == "" {
		return nil, model.ValidationErrors{
			{Field: "content", Message: blankMessage},
		}
	}

	now := time.Now()
	comment := &model.Comment{
		ID:        uuid.New().String(),
		Content:   s.sanitizer.Sanitize(content),
		ArticleID: articleID,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	return comment, nil
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
