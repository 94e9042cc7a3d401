package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/blogapi/internal/metrics"
	"github.com/hitoshi/blogapi/internal/middleware"
)

// HealthChecker はヘルスチェックに必要なインターフェース。
// *sql.DBがそのまま満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	HealthChecker     HealthChecker
	TokenFinder       middleware.TokenFinder
	UserFinder        middleware.UserFinder
	CORSAllowedOrigin string
	Logger            *slog.Logger

	// メトリクス
	HTTPMetrics    metrics.HTTPCollector
	AuthMetrics    metrics.AuthCollector
	MetricsHandler http.Handler

	// ドメインサービス
	AuthService    AuthServiceInterface
	ArticleService ArticleServiceInterface
	CommentService CommentServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを
// 構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging → Metrics
//
// 認証必須ルートにはさらにAuthミドルウェアが適用され、
// ハンドラーのロジックより先に401を返す。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	r.Use(middleware.NewMetricsMiddleware(deps.HTTPMetrics))

	tokenHandler := NewTokenHandler(deps.AuthService, deps.AuthMetrics)
	articleHandler := NewArticleHandler(deps.ArticleService)
	commentHandler := NewCommentHandler(deps.CommentService)

	// --- 認証不要のルート ---

	r.Get("/health", newHealthHandler(deps.HealthChecker))
	r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)

	r.Post("/login", tokenHandler.Create)
	r.Get("/articles", articleHandler.Index)
	r.Get("/articles/{id}", articleHandler.Show)
	r.Get("/articles/{article_id}/comments", commentHandler.Index)

	// --- 認証が必要なルート ---
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.TokenFinder, deps.UserFinder))

		r.Delete("/login", tokenHandler.Destroy)

		r.Post("/articles", articleHandler.Create)
		r.Patch("/articles/{id}", articleHandler.Update)
		r.Put("/articles/{id}", articleHandler.Update)
		r.Delete("/articles/{id}", articleHandler.Destroy)

		r.Post("/articles/{article_id}/comments", commentHandler.Create)
	})

	return r
}

// newHealthHandler はDB接続を確認するヘルスチェックハンドラーを返す。
func newHealthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := checker.PingContext(r.Context()); err != nil {
			slog.Error("health check failed", slog.String("error", err.Error()))
			http.Error(w, "unhealthy", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}
}
