// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hitoshi/blogapi/internal/jsonapi"
	"github.com/hitoshi/blogapi/internal/model"
)

// bearerPrefix はAuthorizationヘッダーの期待される接頭辞。
// これ以外のスキームは資格情報なしとして扱う。
const bearerPrefix = "Bearer "

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

var (
	// currentUserContextKey は認証済みユーザーを格納するためのキー。
	currentUserContextKey = contextKey("current_user")
	// currentTokenContextKey は提示されたトークンを格納するためのキー。
	currentTokenContextKey = contextKey("current_token")
)

// TokenFinder はトークンの検索に必要なインターフェース。
// repository.TokenRepositoryの部分集合として定義する。
type TokenFinder interface {
	FindByValue(ctx context.Context, value string) (*model.Token, error)
}

// UserFinder はユーザーの検索に必要なインターフェース。
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// NewAuthMiddleware はAuthorizationヘッダーのBearerトークンを解決し、
// 認証済みユーザーをリクエストコンテキストに注入するミドルウェアを返す。
// 有効な資格情報がないリクエストには、ハンドラーのロジックを実行する前に
// 401とJSON:APIエラーエンベロープを返す。
func NewAuthMiddleware(tokenFinder TokenFinder, userFinder UserFinder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. Authorizationヘッダーからトークン値を取り出す
			value := bearerTokenValue(r)
			if value == "" {
				jsonapi.WriteErrors(w, http.StatusUnauthorized, jsonapi.AuthorizationFailed())
				return
			}

			// 2. トークン値の完全一致で検索（期限切れは存在しない扱い）
			token, err := tokenFinder.FindByValue(r.Context(), value)
			if err != nil {
				slog.Error("failed to find token", slog.String("error", err.Error()))
				jsonapi.WriteErrors(w, http.StatusUnauthorized, jsonapi.AuthorizationFailed())
				return
			}
			if token == nil {
				jsonapi.WriteErrors(w, http.StatusUnauthorized, jsonapi.AuthorizationFailed())
				return
			}

			// 3. 所有ユーザーを解決
			user, err := userFinder.FindByID(r.Context(), token.UserID)
			if err != nil {
				slog.Error("failed to find token user", slog.String("error", err.Error()))
				jsonapi.WriteErrors(w, http.StatusUnauthorized, jsonapi.AuthorizationFailed())
				return
			}
			if user == nil {
				jsonapi.WriteErrors(w, http.StatusUnauthorized, jsonapi.AuthorizationFailed())
				return
			}

			// 4. リクエスト境界で1回だけ解決し、以降は明示的に引き回す
			ctx := context.WithValue(r.Context(), currentUserContextKey, user)
			ctx = context.WithValue(ctx, currentTokenContextKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerTokenValue はAuthorizationヘッダーからBearerトークン値を取り出す。
// ヘッダーがない、または別スキームの場合は空文字列を返す。
func bearerTokenValue(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, bearerPrefix) {
		return ""
	}
	return strings.TrimPrefix(header, bearerPrefix)
}

// UserFromContext はリクエストコンテキストから認証済みユーザーを取得する。
// 認証ミドルウェアを通過したリクエストでのみ有効。
func UserFromContext(ctx context.Context) (*model.User, error) {
	user, ok := ctx.Value(currentUserContextKey).(*model.User)
	if !ok || user == nil {
		return nil, fmt.Errorf("authenticated user not found in context")
	}
	return user, nil
}

// TokenFromContext はリクエストコンテキストから提示されたトークンを取得する。
func TokenFromContext(ctx context.Context) (*model.Token, error) {
	token, ok := ctx.Value(currentTokenContextKey).(*model.Token)
	if !ok || token == nil {
		return nil, fmt.Errorf("token not found in context")
	}
	return token, nil
}

// ContextWithUser はコンテキストに認証済みユーザーを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, currentUserContextKey, user)
}

// ContextWithToken はコンテキストにトークンを注入する。
func ContextWithToken(ctx context.Context, token *model.Token) context.Context {
	return context.WithValue(ctx, currentTokenContextKey, token)
}
