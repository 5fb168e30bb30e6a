package syndication

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

// excerptMaxRunes はフィードのdescriptionに使う抜粋の最大文字数。
const excerptMaxRunes = 200

// Excerpt はHTML本文からタグを取り除いたプレーンテキストの抜粋を生成する。
// script/style要素の中身は含めない。空白は1つに正規化し、
// maxRunes文字を超える場合は切り詰めて "…" を付ける。
func Excerpt(rawHTML string, maxRunes int) string {
	if maxRunes <= 0 {
		maxRunes = excerptMaxRunes
	}

	var b strings.Builder
	tokenizer := html.NewTokenizer(strings.NewReader(rawHTML))

	skipDepth := 0
	for {
		tokenType := tokenizer.Next()
		switch tokenType {
		case html.ErrorToken:
			return truncate(normalizeSpace(b.String()), maxRunes)
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			if isSkippedElement(string(name)) {
				skipDepth++
			}
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			if isSkippedElement(string(name)) && skipDepth > 0 {
				skipDepth--
			}
		case html.TextToken:
			if skipDepth == 0 {
				b.Write(tokenizer.Text())
				b.WriteByte(' ')
			}
		}
	}
}

// isSkippedElement はテキストを抜粋に含めない要素かを判定する。
func isSkippedElement(name string) bool {
	return name == "script" || name == "style"
}

// normalizeSpace は連続する空白文字を1つのスペースにまとめる。
func normalizeSpace(s string) string {
	var b strings.Builder
	inSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			inSpace = true
			continue
		}
		if inSpace && b.Len() > 0 {
			b.WriteByte(' ')
		}
		inSpace = false
		b.WriteRune(r)
	}
	return b.String()
}

// truncate は文字列をmaxRunes文字に切り詰める。
func truncate(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes]) + "…"
}
