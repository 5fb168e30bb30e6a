// Package view はサーバーサイドレンダリングのテンプレート管理を提供する。
package view

import (
	"bytes"
	"crypto/md5"
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/http"

	"github.com/hitoshi/blogman/internal/model"
)

//go:embed templates/*.html
var templatesFS embed.FS

// baseTemplate は全ページ共通のレイアウトテンプレート。
const baseTemplate = "base.html"

// Data はテンプレートに渡す表示用データ。
type Data struct {
	Title       string
	CurrentUser *model.User
	IsAdmin     bool
	Flash       string
	CSRFToken   string

	Posts    []model.PostWithAuthor
	Post     *model.PostWithAuthor
	Comments []model.CommentWithAuthor

	// Form はバリデーション失敗時に入力値を復元するための値。
	Form map[string]string
	// Editing は記事フォームを編集モードで表示するかどうか。
	Editing bool

	// ErrorMessage はエラーページ（403/404/500）の表示文言。
	ErrorMessage string
}

// funcs はテンプレートから使用するヘルパー関数。
var funcs = template.FuncMap{
	// gravatarURL はコメント著者のアバター画像URLを生成する。
	// サイズ・デフォルト画像は元サイトのGravatar設定（s=100, d=retro）に合わせる。
	"gravatarURL": func(email string) string {
		sum := md5.Sum([]byte(email))
		return fmt.Sprintf("https://www.gravatar.com/avatar/%x?s=100&d=retro&r=g", sum)
	},
	// safeHTML はサニタイズ済みHTMLをエスケープせずに埋め込む。
	// 必ずsecurity.ContentSanitizerを通した文字列にのみ使用すること。
	"safeHTML": func(s string) template.HTML {
		return template.HTML(s)
	},
}

// Renderer は埋め込みテンプレートを事前にパースして保持し、
// バッファ経由でレンダリングする。パースエラーは起動時に検出される。
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer はRendererを生成する。レイアウトと各ページを組でパースする。
func NewRenderer() (*Renderer, error) {
	entries, err := templatesFS.ReadDir("templates")
	if err != nil {
		return nil, fmt.Errorf("failed to read templates dir: %w", err)
	}

	pages := make(map[string]*template.Template)
	for _, entry := range entries {
		name := entry.Name()
		if name == baseTemplate {
			continue
		}

		ts, err := template.New(name).Funcs(funcs).ParseFS(templatesFS,
			"templates/"+baseTemplate, "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		pages[name] = ts
	}

	return &Renderer{pages: pages}, nil
}

// Render はページテンプレートをレイアウトに組み込んで書き出す。
// レンダリングは一旦バッファに行い、成功した場合のみレスポンスに書き込む。
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, data *Data) error {
	if data == nil {
		data = &Data{}
	}

	ts, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown template: %s", page)
	}

	buf := new(bytes.Buffer)
	if err := ts.ExecuteTemplate(buf, "base", data); err != nil {
		return fmt.Errorf("failed to execute template %s: %w", page, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := io.Copy(w, buf)
	return err
}
