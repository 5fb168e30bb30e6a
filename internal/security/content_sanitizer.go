// Package security はアプリケーションのセキュリティ機能を提供する。
//
// ContentSanitizer は記事本文とコメントのHTMLをサニタイズし、
// XSS攻撃などのセキュリティリスクから閲覧者を保護する。
// bluemondayライブラリを使用した許可リストベースのポリシーで、
// 安全なタグと属性のみを通過させる。
package security

import (
	"net/url"

	"github.com/microcosm-cc/bluemonday"
)

// ContentSanitizer はHTMLコンテンツのサニタイズ機能のインターフェースを定義する。
// 記事・コメントの保存前に使用される。
type ContentSanitizer interface {
	// SanitizePostBody は記事本文のHTMLをサニタイズして安全なHTMLを返す。
	// 見出し・段落・リスト・リンク・画像（httpsのみ）等の執筆用タグを通過させ、
	// script, iframe, styleタグおよびon*イベント属性を除去する。
	// 同一入力に対して常に同一出力を返す（冪等）。
	SanitizePostBody(rawHTML string) string

	// SanitizeComment はコメント本文をサニタイズして安全なHTMLを返す。
	// 整形タグ（p, br, strong, em, code）のみを通過させ、
	// リンクと画像は許可しない。
	SanitizeComment(rawHTML string) string
}

// contentSanitizer はContentSanitizerの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type contentSanitizer struct {
	postPolicy    *bluemonday.Policy
	commentPolicy *bluemonday.Policy
}

// NewContentSanitizer はContentSanitizerの新しいインスタンスを生成する。
// 初期化時にbluemondayのカスタムポリシーを構築する。
//
// 記事本文ポリシー:
//   - 許可タグ: h1〜h3, p, br, a, ul, ol, li, blockquote, pre, code, strong, em, img
//   - 禁止タグ: script, iframe, style および全てのon*イベント属性
//   - imgのsrc属性: httpsスキームのみ許可
//   - aタグ: target="_blank" と rel="noopener noreferrer" を自動付与
//
// コメントポリシー:
//   - 許可タグ: p, br, strong, em, code のみ（リンク・画像は不許可）
func NewContentSanitizer() *contentSanitizer {
	post := bluemonday.NewPolicy()

	post.AllowElements(
		"h1", "h2", "h3",
		"p", "br", "ul", "ol", "li",
		"blockquote", "pre", "code",
		"strong", "em",
	)

	// aタグ: href属性のみ許可し、外部リンクには安全なrel/targetを強制する
	post.AllowAttrs("href").OnElements("a")
	post.AllowRelativeURLs(false)
	post.AddTargetBlankToFullyQualifiedLinks(true)
	post.RequireNoReferrerOnLinks(true)

	// imgタグ: src属性はhttpsスキームのみ許可（http, javascript, data等は拒否）
	post.AllowAttrs("src").OnElements("img")
	post.AllowAttrs("alt").OnElements("img")
	post.AllowURLSchemeWithCustomPolicy("https", func(u *url.URL) bool {
		return true
	})

	comment := bluemonday.NewPolicy()
	comment.AllowElements("p", "br", "strong", "em", "code")

	return &contentSanitizer{
		postPolicy:    post,
		commentPolicy: comment,
	}
}

// SanitizePostBody は記事本文のHTMLをサニタイズして安全なHTMLを返す。
func (s *contentSanitizer) SanitizePostBody(rawHTML string) string {
	return s.postPolicy.Sanitize(rawHTML)
}

// SanitizeComment はコメント本文をサニタイズして安全なHTMLを返す。
func (s *contentSanitizer) SanitizeComment(rawHTML string) string {
	return s.commentPolicy.Sanitize(rawHTML)
}
