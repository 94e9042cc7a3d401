package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/blogapi/internal/model"
)

// PostgresTokenRepo はPostgreSQLを使用したトークンリポジトリ。
// トークン値の一意性はtokens.tokenの一意インデックスが最終的に保証する。
type PostgresTokenRepo struct {
	db *sql.DB
}

// NewPostgresTokenRepo はPostgresTokenRepoを生成する。
func NewPostgresTokenRepo(db *sql.DB) *PostgresTokenRepo {
	return &PostgresTokenRepo{db: db}
}

// Create はトークンを作成する。
func (r *PostgresTokenRepo) Create(ctx context.Context, token *model.Token) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tokens (id, token, user_id, expires_at, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		token.ID, token.Value, token.UserID, token.ExpiresAt, token.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert token: %w", err)
	}
	return nil
}

// FindByValue はトークン値の完全一致でトークンを取得する。
// 期限切れ（expires_atが過去）のトークンは存在しないものとして扱う。
func (r *PostgresTokenRepo) FindByValue(ctx context.Context, value string) (*model.Token, error) {
	token := &model.Token{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, token, user_id, expires_at, created_at
		 FROM tokens
		 WHERE token = $1 AND (expires_at IS NULL OR expires_at > now())`,
		value,
	).Scan(&token.ID, &token.Value, &token.UserID, &token.ExpiresAt, &token.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find token by value: %w", err)
	}

	return token, nil
}

// FindByUserID は指定ユーザーのトークンを取得する。見つからない場合はnilを返す。
func (r *PostgresTokenRepo) FindByUserID(ctx context.Context, userID string) (*model.Token, error) {
	token := &model.Token{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, token, user_id, expires_at, created_at
		 FROM tokens
		 WHERE user_id = $1 AND (expires_at IS NULL OR expires_at > now())`,
		userID,
	).Scan(&token.ID, &token.Value, &token.UserID, &token.ExpiresAt, &token.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find token by user ID: %w", err)
	}

	return token, nil
}

// ExistsValue は指定値のトークンが存在するかを返す。
// excludeIDが空でない場合、構築途中のレコード自身を除外して判定する。
func (r *PostgresTokenRepo) ExistsValue(ctx context.Context, value, excludeID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM tokens WHERE token = $1 AND id <> $2)`,
		value, excludeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check token existence: %w", err)
	}
	return exists, nil
}

// DeleteByValue は指定値のトークンを削除する。
func (r *PostgresTokenRepo) DeleteByValue(ctx context.Context, value string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM tokens WHERE token = $1`,
		value,
	)
	if err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}

// compile-time interface check
var _ TokenRepository = (*PostgresTokenRepo)(nil)
