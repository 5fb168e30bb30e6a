// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"log/slog"
	"net/http"

	"github.com/hitoshi/blogman/internal/middleware"
	"github.com/hitoshi/blogman/internal/view"
)

// PageRenderer はページ描画のインターフェース。
// view.Rendererの部分集合として定義する。
type PageRenderer interface {
	Render(w http.ResponseWriter, status int, page string, data *view.Data) error
}

// AdminChecker は管理者判定のインターフェース。
// policy.Policyの部分集合として定義する。
type AdminChecker interface {
	IsAdmin(userID int64) bool
}

// pageData はリクエストコンテキストから表示用の共通データを組み立てる。
// フラッシュメッセージはここで取り出され、Cookieから削除される。
func pageData(w http.ResponseWriter, r *http.Request, checker AdminChecker) *view.Data {
	user := middleware.UserFromContext(r.Context())

	data := &view.Data{
		CurrentUser: user,
		Flash:       popFlash(w, r),
		CSRFToken:   middleware.CSRFTokenFromContext(r.Context()),
	}
	if user != nil && checker != nil {
		data.IsAdmin = checker.IsAdmin(user.ID)
	}
	return data
}

// renderPage はページを描画する。描画に失敗した場合はログを残し500を返す。
func renderPage(renderer PageRenderer, w http.ResponseWriter, r *http.Request, status int, page string, data *view.Data) {
	if err := renderer.Render(w, status, page, data); err != nil {
		slog.Error("failed to render page",
			slog.String("page", page),
			slog.String("request_id", middleware.RequestIDFromContext(r.Context())),
			slog.String("error", err.Error()),
		)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// renderErrorPage はエラーページ（403/404/500）を描画する。
func renderErrorPage(renderer PageRenderer, w http.ResponseWriter, r *http.Request, checker AdminChecker, status int, title, message string) {
	data := pageData(w, r, checker)
	data.Title = title
	data.ErrorMessage = message
	renderPage(renderer, w, r, status, "error.html", data)
}

// renderNotFound は記事が見つからない場合の404ページを描画する。
func renderNotFound(renderer PageRenderer, w http.ResponseWriter, r *http.Request, checker AdminChecker) {
	renderErrorPage(renderer, w, r, checker, http.StatusNotFound,
		"404 Not Found", "お探しの記事は見つかりませんでした。")
}

// renderForbidden は管理者権限が無い場合の403ページを描画する。
func renderForbidden(renderer PageRenderer, w http.ResponseWriter, r *http.Request, checker AdminChecker) {
	renderErrorPage(renderer, w, r, checker, http.StatusForbidden,
		"403 Forbidden", "この操作には管理者権限が必要です。")
}

// renderInternalError は予期しないエラーの500ページを描画する。
func renderInternalError(renderer PageRenderer, w http.ResponseWriter, r *http.Request, checker AdminChecker, err error) {
	slog.Error("internal server error",
		slog.String("request_id", middleware.RequestIDFromContext(r.Context())),
		slog.String("error", err.Error()),
	)
	renderErrorPage(renderer, w, r, checker, http.StatusInternalServerError,
		"500 Internal Server Error", "内部エラーが発生しました。しばらく待ってから再度お試しください。")
}
