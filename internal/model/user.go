// Package model はドメインモデルを定義する。
package model

import "time"

// GitHubProvider は現在サポートしている唯一の外部IdP名。
const GitHubProvider = "github"

// User はサービス利用ユーザーを表す。
// 外部IdPでの初回認証時に作成され、(Provider, UID)の組で一意に識別される。
type User struct {
	ID        string
	UID       string // IdP側のユーザーID
	Provider  string
	Login     string
	Name      string
	URL       string
	AvatarURL string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Token はBearer認証用の不透明トークンを表す。
// Valueがそのまま資格情報であり、ハッシュ化や署名は行わない。
// ExpiresAtがnilのトークンは無期限。所有ユーザーは作成後に変更されない。
type Token struct {
	ID        string
	Value     string
	UserID    string
	ExpiresAt *time.Time
	CreatedAt time.Time
}
