package model

import (
	"errors"
	"strings"
)

// 認証・認可まわりの定義済みエラー。
// ハンドラー層でHTTPステータスへのマッピングに使用する。
var (
	// ErrAuthenticationFailed は資格情報の交換失敗、または有効な認証情報が
	// 提示されなかったことを示す。どの段階で失敗したかは外部に漏らさない。
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrAccessDenied は認証済みユーザーが対象リソースへの権限を
	// 持たないことを示す。
	ErrAccessDenied = errors.New("access denied")

	// ErrNotFound はリソースが存在しないことを示す。
	ErrNotFound = errors.New("resource not found")
)

// FieldError は単一フィールドのバリデーションエラーを表す。
type FieldError struct {
	Field   string // 属性名（例: "title"）
	Message string // フィールド単位のメッセージ（例: "can't be blank"）
}

// ValidationErrors は複数フィールドのバリデーションエラーをまとめて保持する。
// バリデーションは1件ずつではなく全フィールド分を収集してから返す。
type ValidationErrors []FieldError

// Error はerrorインターフェースを実装する。
func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, fe := range v {
		msgs[i] = fe.Field + " " + fe.Message
	}
	return "validation failed: " + strings.Join(msgs, ", ")
}

// AsValidationErrors はエラーチェーンからValidationErrorsを取り出す。
// 見つからない場合はnilとfalseを返す。
func AsValidationErrors(err error) (ValidationErrors, bool) {
	var v ValidationErrors
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}
