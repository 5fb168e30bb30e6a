package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/blogman/internal/metrics"
	"github.com/hitoshi/blogman/internal/middleware"
	"github.com/hitoshi/blogman/internal/syndication"
	"github.com/prometheus/client_golang/prometheus"
)

// DBPinger はヘルスチェックのための接続確認インターフェース。
type DBPinger interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	UserResolver middleware.UserResolver
	RateLimiter  *middleware.RateLimiter
	CSRFConfig   middleware.CSRFConfig
	Logger       *slog.Logger

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// 記事・コメント
	ContentService ContentServiceInterface

	// 表示
	Renderer PageRenderer
	Policy   AdminChecker

	// フィード
	FeedBuilder *syndication.Builder

	// 運用
	DB       DBPinger
	Metrics  metrics.MetricsCollector
	Registry prometheus.Gatherer
}

// NewRouter は全ルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → RequestID → SecurityHeaders → Metrics → Logging
//
// HTMLページのグループにはさらにIdentity → CSRFを適用する。
// 運用ルート（/health、/metrics、/feed）はセッション解決の外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewRequestIDMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	if deps.Metrics != nil {
		r.Use(metrics.NewHTTPMiddleware(deps.Metrics))
	}
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))

	authHandler := NewAuthHandler(deps.AuthService, deps.Renderer, deps.Policy, authMetrics(deps.Metrics), deps.AuthConfig)
	postHandler := NewPostHandler(deps.ContentService, deps.Renderer, deps.Policy)
	pageHandler := NewPageHandler(deps.Renderer, deps.Policy)
	feedHandler := NewFeedHandler(deps.ContentService, deps.FeedBuilder)

	// --- 運用ルート ---

	r.Get("/health", healthHandler(deps.DB))
	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Registry))
	}
	r.Get("/feed", feedHandler.Feed)

	// --- HTMLページのルート ---
	// ミドルウェアスタック: Identity → CSRF
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewIdentityMiddleware(deps.UserResolver))
		r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))

		r.Get("/", postHandler.Index)
		r.Get("/about", pageHandler.About)
		r.Get("/contact", pageHandler.Contact)

		// 認証（ログイン・登録には専用レート制限を適用）
		r.Get("/register", authHandler.RegisterForm)
		r.With(deps.RateLimiter.AuthMiddleware()).Post("/register", authHandler.Register)
		r.Get("/login", authHandler.LoginForm)
		r.With(deps.RateLimiter.AuthMiddleware()).Post("/login", authHandler.Login)
		r.Get("/logout", authHandler.Logout)

		// 記事・コメント（書き込みレート制限を適用）
		r.Route("/post/{id}", func(r chi.Router) {
			r.Get("/", postHandler.ShowPost)
			r.With(deps.RateLimiter.WriteMiddleware()).Post("/", postHandler.AddComment)
		})

		// 管理者専用（権限検証はハンドラー内で行い、403ページを描画する）
		r.Get("/new-post", postHandler.NewPostForm)
		r.With(deps.RateLimiter.WriteMiddleware()).Post("/new-post", postHandler.CreatePost)
		r.Route("/edit-post/{id}", func(r chi.Router) {
			r.Get("/", postHandler.EditPostForm)
			r.With(deps.RateLimiter.WriteMiddleware()).Post("/", postHandler.UpdatePost)
		})
		r.Get("/delete/{id}", postHandler.DeletePost)

		r.NotFound(func(w http.ResponseWriter, req *http.Request) {
			renderNotFound(deps.Renderer, w, req, deps.Policy)
		})
	})

	return r
}

// healthHandler はDB接続を確認するヘルスチェックハンドラーを返す。
// GET /health
func healthHandler(db DBPinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.PingContext(r.Context()); err != nil {
				slog.Error("health check failed", slog.String("error", err.Error()))
				http.Error(w, "unhealthy", http.StatusServiceUnavailable)
				return
			}
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok"))
	}
}

// authMetrics はnil安全にAuthMetricsへ変換する。
func authMetrics(collector metrics.MetricsCollector) AuthMetrics {
	if collector == nil {
		return nil
	}
	return collector
}
