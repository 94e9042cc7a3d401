package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/blogapi/internal/model"
)

// PostgresArticleRepo はPostgreSQLを使用した記事リポジトリ。
type PostgresArticleRepo struct {
	db *sql.DB
}

// NewPostgresArticleRepo はPostgresArticleRepoを生成する。
func NewPostgresArticleRepo(db *sql.DB) *PostgresArticleRepo {
	return &PostgresArticleRepo{db: db}
}

// FindByID は指定IDの記事を取得する。見つからない場合はnilを返す。
func (r *PostgresArticleRepo) FindByID(ctx context.Context, id string) (*model.Article, error) {
	article := &model.Article{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, content, slug, user_id, created_at, updated_at
		 FROM articles WHERE id = $1`,
		id,
	).Scan(&article.ID, &article.Title, &article.Content, &article.Slug,
		&article.UserID, &article.CreatedAt, &article.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find article by ID: %w", err)
	}

	return article, nil
}

// List は記事一覧をcreated_at降順で取得する。
func (r *PostgresArticleRepo) List(ctx context.Context, limit, offset int) ([]*model.Article, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, content, slug, user_id, created_at, updated_at
		 FROM articles
		 ORDER BY created_at DESC, id DESC
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	defer rows.Close()

	var articles []*model.Article
	for rows.Next() {
		article := &model.Article{}
		if err := rows.Scan(&article.ID, &article.Title, &article.Content, &article.Slug,
			&article.UserID, &article.CreatedAt, &article.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan article row: %w", err)
		}
		articles = append(articles, article)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate article rows: %w", err)
	}

	return articles, nil
}

// Create は記事を作成する。
func (r *PostgresArticleRepo) Create(ctx context.Context, article *model.Article) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO articles (id, title, content, slug, user_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		article.ID, article.Title, article.Content, article.Slug,
		article.UserID, article.CreatedAt, article.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert article: %w", err)
	}
	return nil
}

// Update は記事のtitle/content/slug/updated_atを上書き更新する。
func (r *PostgresArticleRepo) Update(ctx context.Context, article *model.Article) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE articles SET title = $1, content = $2, slug = $3, updated_at = $4
		 WHERE id = $5`,
		article.Title, article.Content, article.Slug, article.UpdatedAt, article.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update article: %w", err)
	}
	return nil
}

// DeleteByID は指定IDの記事を削除する。関連コメントはCASCADE削除される。
func (r *PostgresArticleRepo) DeleteByID(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM articles WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete article: %w", err)
	}
	return nil
}

// compile-time interface check
var _ ArticleRepository = (*PostgresArticleRepo)(nil)
