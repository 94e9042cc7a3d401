package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/blogapi/internal/model"
)

// PostgresCommentRepo はPostgreSQLを使用したコメントリポジトリ。
type PostgresCommentRepo struct {
	db *sql.DB
}

// NewPostgresCommentRepo はPostgresCommentRepoを生成する。
func NewPostgresCommentRepo(db *sql.DB) *PostgresCommentRepo {
	return &PostgresCommentRepo{db: db}
}

// ListByArticleID は記事のコメント一覧を投稿ユーザー付き・created_at降順で取得する。
func (r *PostgresCommentRepo) ListByArticleID(ctx context.Context, articleID string, limit, offset int) ([]CommentWithAuthor, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT c.id, c.content, c.article_id, c.user_id, c.created_at, c.updated_at,
		        u.id, u.uid, u.provider, u.login, u.name, u.url, u.avatar_url, u.created_at, u.updated_at
		 FROM comments c
		 JOIN users u ON u.id = c.user_id
		 WHERE c.article_id = $1
		 ORDER BY c.created_at DESC, c.id DESC
		 LIMIT $2 OFFSET $3`,
		articleID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var comments []CommentWithAuthor
	for rows.Next() {
		var cw CommentWithAuthor
		if err := rows.Scan(
			&cw.ID, &cw.Content, &cw.ArticleID, &cw.UserID, &cw.CreatedAt, &cw.UpdatedAt,
			&cw.Author.ID, &cw.Author.UID, &cw.Author.Provider, &cw.Author.Login,
			&cw.Author.Name, &cw.Author.URL, &cw.Author.AvatarURL,
			&cw.Author.CreatedAt, &cw.Author.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan comment row: %w", err)
		}
		comments = append(comments, cw)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate comment rows: %w", err)
	}

	return comments, nil
}

// Create はコメントを作成する。
func (r *PostgresCommentRepo) Create(ctx context.Context, comment *model.Comment) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO comments (id, content, article_id, user_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		comment.ID, comment.Content, comment.ArticleID, comment.UserID,
		comment.CreatedAt, comment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert comment: %w", err)
	}
	return nil
}

// compile-time interface check
var _ CommentRepository = (*PostgresCommentRepo)(nil)
