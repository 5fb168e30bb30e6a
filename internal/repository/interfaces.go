// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/blogman/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// Create はユーザーを作成し、採番されたIDをuser.IDに書き戻す。
	// メールアドレスが既に存在する場合はErrDuplicateEmailを返す。
	// 一意性はDB制約で保証されるため、同時登録でも重複レコードは生じない。
	Create(ctx context.Context, user *model.User) error

	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

// PostRepository は記事データの永続化インターフェース。
type PostRepository interface {
	// Create は記事を作成し、採番されたIDをpost.IDに書き戻す。
	// タイトルが既に存在する場合はErrDuplicateTitleを返す。
	Create(ctx context.Context, post *model.BlogPost) error

	// FindByID は指定IDの記事を著者名付きで取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.PostWithAuthor, error)

	// List は全記事を著者名付きでID昇順で返す。
	List(ctx context.Context) ([]model.PostWithAuthor, error)

	// Update は記事のタイトル・サブタイトル・本文・画像URLを更新する。
	// 記事が存在しない場合はErrNotFound、タイトル重複の場合はErrDuplicateTitleを返す。
	Update(ctx context.Context, post *model.BlogPost) error

	// Delete は指定IDの記事を削除する。従属するコメントはCASCADE削除される。
	// 記事が存在しない場合はErrNotFoundを返す。
	Delete(ctx context.Context, id int64) error
}

// CommentRepository はコメントデータの永続化インターフェース。
type CommentRepository interface {
	// Create はコメントを作成し、採番されたIDをcomment.IDに書き戻す。
	Create(ctx context.Context, comment *model.Comment) error

	// ListByPostID は指定記事のコメントを著者情報付きでID昇順で返す。
	ListByPostID(ctx context.Context, postID int64) ([]model.CommentWithAuthor, error)

	// CountByPostID は指定記事のコメント数を返す。
	CountByPostID(ctx context.Context, postID int64) (int, error)
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteByUserID は指定ユーザーの全セッションを削除する。
	DeleteByUserID(ctx context.Context, userID int64) error
}
