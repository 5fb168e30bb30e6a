// Package model はドメインモデルを定義する。
package model

import "time"

// BlogPost はブログ記事を表す。
// Dateは作成時に "January 02, 2006" 形式で刻印された表示用文字列。
type BlogPost struct {
	ID        int64
	AuthorID  int64
	Title     string
	Subtitle  string
	Date      string
	Body      string
	ImageURL  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PostDateLayout は記事の公開日の表示フォーマット。
const PostDateLayout = "January 02, 2006"

// Comment は記事へのコメントを表す。
// 必ず既存のUserと既存のBlogPostを参照する。
type Comment struct {
	ID        int64
	PostID    int64
	AuthorID  int64
	Text      string
	CreatedAt time.Time
}

// PostWithAuthor は記事と著者名を結合した表示用の構造体。
// CommentCountは一覧ページの表示用で、詳細取得では設定されない。
type PostWithAuthor struct {
	BlogPost
	AuthorName   string
	CommentCount int
}

// CommentWithAuthor はコメントと著者情報を結合した表示用の構造体。
// AuthorEmailはGravatarアバターのURL生成にのみ使用する。
type CommentWithAuthor struct {
	Comment
	AuthorName  string
	AuthorEmail string
}
