// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/blogapi/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByProviderUID はproviderとuidでユーザーを検索する。
	// 見つからない場合はnilを返す。
	FindByProviderUID(ctx context.Context, provider, uid string) (*model.User, error)

	// Create はユーザーを作成する。
	// (provider, uid)が既に存在する場合は一意制約違反エラーを返す。
	Create(ctx context.Context, user *model.User) error
}

// TokenRepository はBearerトークンの永続化インターフェース。
type TokenRepository interface {
	// Create はトークンを作成する。
	// 同じ値のトークンが既に存在する場合は一意制約違反エラーを返す。
	Create(ctx context.Context, token *model.Token) error

	// FindByValue はトークン値の完全一致でトークンを取得する。
	// 期限切れまたは存在しない場合はnilを返す。
	FindByValue(ctx context.Context, value string) (*model.Token, error)

	// FindByUserID は指定ユーザーのトークンを取得する。見つからない場合はnilを返す。
	FindByUserID(ctx context.Context, userID string) (*model.Token, error)

	// ExistsValue は指定値のトークンが存在するかを返す。
	// excludeIDが空でない場合、そのIDのレコード自身は除外して判定する。
	ExistsValue(ctx context.Context, value, excludeID string) (bool, error)

	// DeleteByValue は指定値のトークンを削除する。以降の検索はnilを返す。
	DeleteByValue(ctx context.Context, value string) error
}

// ArticleRepository は記事データの永続化インターフェース。
type ArticleRepository interface {
	// FindByID は指定IDの記事を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Article, error)

	// List は記事一覧をcreated_at降順で取得する。
	List(ctx context.Context, limit, offset int) ([]*model.Article, error)

	// Create は記事を作成する。
	Create(ctx context.Context, article *model.Article) error

	// Update は記事のtitle/content/slug/updated_atを上書き更新する。
	Update(ctx context.Context, article *model.Article) error

	// DeleteByID は指定IDの記事を削除する。関連コメントはCASCADE削除される。
	DeleteByID(ctx context.Context, id string) error
}

// CommentWithAuthor はコメントと投稿ユーザーを結合した構造体。
// コメント一覧のincludedセクション生成に使用する。
type CommentWithAuthor struct {
	model.Comment
	Author model.User
}

// CommentRepository はコメントデータの永続化インターフェース。
type CommentRepository interface {
	// ListByArticleID は記事のコメント一覧を投稿ユーザー付き・created_at降順で取得する。
	ListByArticleID(ctx context.Context, articleID string, limit, offset int) ([]CommentWithAuthor, error)

	// Create はコメントを作成する。
	Create(ctx context.Context, comment *model.Comment) error
}
