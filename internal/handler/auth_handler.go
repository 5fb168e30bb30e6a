package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/blogman/internal/middleware"
	"github.com/hitoshi/blogman/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	// Register は新規ユーザーを登録する。
	Register(ctx context.Context, email, name, password string) (*model.User, error)
	// Login は認証に成功した場合、ユーザーとセッションを返す。
	Login(ctx context.Context, email, password string) (*model.User, *model.Session, error)
	// Logout はセッションを破棄する。
	Logout(ctx context.Context, sessionID string) error
	// CookieValue はセッションの署名付きCookie値を返す。
	CookieValue(session *model.Session) string
	// SessionIDFromCookie は署名付きCookie値からセッションIDを取り出す。
	SessionIDFromCookie(cookieValue string) string
}

// AuthMetrics は認証イベントのメトリクス記録インターフェース。
// metrics.Collectorの部分集合として定義する。
type AuthMetrics interface {
	RecordUserRegistered()
	RecordLoginFailure()
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	CookieDomain  string
	CookieSecure  bool
	SessionMaxAge int // セッションCookieの有効期間（秒）
}

// AuthHandler はユーザー登録・ログイン・ログアウトのHTTPハンドラー。
type AuthHandler struct {
	service  AuthServiceInterface
	renderer PageRenderer
	checker  AdminChecker
	metrics  AuthMetrics // nilの場合は記録をスキップ
	config   AuthHandlerConfig
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, renderer PageRenderer, checker AdminChecker, metrics AuthMetrics, config AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{
		service:  service,
		renderer: renderer,
		checker:  checker,
		metrics:  metrics,
		config:   config,
	}
}

// RegisterForm は登録フォームを表示する。
// GET /register
func (h *AuthHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	data := pageData(w, r, h.checker)
	data.Title = "Register"
	data.Form = map[string]string{}
	renderPage(h.renderer, w, r, http.StatusOK, "register.html", data)
}

// Register はユーザー登録を処理する。
// POST /register
//
// 登録に成功した場合もメールアドレスが重複していた場合も、
// フラッシュメッセージを設定してログインページへリダイレクトする。
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	email := r.PostFormValue("email")
	name := r.PostFormValue("name")
	password := r.PostFormValue("password")

	user, err := h.service.Register(r.Context(), email, name, password)
	if err != nil {
		var appErr *model.AppError
		if !errors.As(err, &appErr) {
			renderInternalError(h.renderer, w, r, h.checker, err)
			return
		}

		switch appErr.Code {
		case model.ErrCodeValidation:
			data := pageData(w, r, h.checker)
			data.Title = "Register"
			data.Flash = appErr.Message
			data.Form = map[string]string{"email": email, "name": name}
			renderPage(h.renderer, w, r, http.StatusBadRequest, "register.html", data)
		case model.ErrCodeDuplicateEmail:
			setFlash(w, appErr.Message)
			http.Redirect(w, r, "/login", http.StatusSeeOther)
		default:
			renderInternalError(h.renderer, w, r, h.checker, err)
		}
		return
	}

	if h.metrics != nil {
		h.metrics.RecordUserRegistered()
	}
	slog.Info("registration completed",
		slog.Int64("user_id", user.ID),
		slog.String("request_id", middleware.RequestIDFromContext(r.Context())),
	)

	setFlash(w, "登録が完了しました。ログインしてください。")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// LoginForm はログインフォームを表示する。
// GET /login
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	data := pageData(w, r, h.checker)
	data.Title = "Log In"
	data.Form = map[string]string{}
	renderPage(h.renderer, w, r, http.StatusOK, "login.html", data)
}

// Login はログインを処理する。
// POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	email := r.PostFormValue("email")
	password := r.PostFormValue("password")

	_, session, err := h.service.Login(r.Context(), email, password)
	if err != nil {
		if model.CodeOf(err) == model.ErrCodeInvalidCredentials {
			if h.metrics != nil {
				h.metrics.RecordLoginFailure()
			}
			var appErr *model.AppError
			errors.As(err, &appErr)
			setFlash(w, appErr.Message)
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		renderInternalError(h.renderer, w, r, h.checker, err)
		return
	}

	// セッションCookieを設定（HTTP Only）
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    h.service.CookieValue(session),
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   h.config.SessionMaxAge,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout はセッションを破棄し、Cookieをクリアする。
// GET /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(middleware.SessionCookieName)
	if err == nil && cookie.Value != "" {
		if sessionID := h.service.SessionIDFromCookie(cookie.Value); sessionID != "" {
			if logoutErr := h.service.Logout(r.Context(), sessionID); logoutErr != nil {
				slog.Error("failed to logout", slog.String("error", logoutErr.Error()))
				// ログアウト失敗してもCookieはクリアする
			}
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, "/", http.StatusSeeOther)
}
