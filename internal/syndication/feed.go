// Package syndication はブログのRSS 2.0フィード生成を提供する。
package syndication

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/hitoshi/blogman/internal/model"
)

// rss はRSS 2.0ドキュメントのルート要素。
type rss struct {
	XMLName xml.Name `xml:"rss"`
	Version string   `xml:"version,attr"`
	Channel channel  `xml:"channel"`
}

type channel struct {
	Title         string `xml:"title"`
	Link          string `xml:"link"`
	Description   string `xml:"description"`
	LastBuildDate string `xml:"lastBuildDate,omitempty"`
	Items         []item `xml:"item"`
}

type item struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	GUID        string `xml:"guid"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate,omitempty"`
}

// FeedConfig はフィードのチャンネル情報。
type FeedConfig struct {
	Title       string
	BaseURL     string
	Description string
}

// Builder はブログ記事からRSS 2.0フィードを構築する。
type Builder struct {
	config FeedConfig
}

// NewBuilder はBuilderを生成する。
func NewBuilder(config FeedConfig) *Builder {
	return &Builder{config: config}
}

// Build は記事一覧からRSS 2.0のXMLバイト列を生成する。
// 各itemのdescriptionには本文のプレーンテキスト抜粋を使用する。
func (b *Builder) Build(posts []model.PostWithAuthor) ([]byte, error) {
	baseURL := strings.TrimSuffix(b.config.BaseURL, "/")

	items := make([]item, 0, len(posts))
	var lastBuild time.Time
	for _, post := range posts {
		link := fmt.Sprintf("%s/post/%d", baseURL, post.ID)
		items = append(items, item{
			Title:       post.Title,
			Link:        link,
			GUID:        link,
			Description: Excerpt(post.Body, excerptMaxRunes),
			PubDate:     pubDate(post),
		})
		if post.CreatedAt.After(lastBuild) {
			lastBuild = post.CreatedAt
		}
	}

	doc := rss{
		Version: "2.0",
		Channel: channel{
			Title:       b.config.Title,
			Link:        baseURL,
			Description: b.config.Description,
			Items:       items,
		},
	}
	if !lastBuild.IsZero() {
		doc.Channel.LastBuildDate = lastBuild.Format(time.RFC1123Z)
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal feed: %w", err)
	}

	return append([]byte(xml.Header), out...), nil
}

// pubDate は記事の公開日時をRFC1123Z形式で返す。
// 表示用のDate文字列ではなく作成タイムスタンプを使用する。
func pubDate(post model.PostWithAuthor) string {
	if post.CreatedAt.IsZero() {
		return ""
	}
	return post.CreatedAt.Format(time.RFC1123Z)
}
