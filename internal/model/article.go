package model

import "time"

// Article はブログ記事を表す。
// 所有ユーザー以外による更新・削除は許可されない。
type Article struct {
	ID        string
	Title     string
	Content   string
	Slug      string
	UserID    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Comment は記事へのコメントを表す。
type Comment struct {
	ID        string
	Content   string
	ArticleID string
	UserID    string
	CreatedAt time.Time
	UpdatedAt time.Time
}
