package repository

import (
	"errors"

	"github.com/lib/pq"
)

// 永続化層の番兵エラー。
// 一意制約違反はアプリ側の事前チェックではなくDB制約の違反として検出するため、
// 同時リクエスト間の競合があっても重複レコードは生じない。
var (
	// ErrNotFound は対象レコードが存在しないことを表す。
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateEmail はusers.emailの一意制約違反を表す。
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrDuplicateTitle はblog_posts.titleの一意制約違反を表す。
	ErrDuplicateTitle = errors.New("title already exists")
)

// uniqueViolationCode はPostgreSQLの一意制約違反のSQLSTATEコード。
const uniqueViolationCode = "23505"

// 一意制約名。マイグレーションのCONSTRAINT定義と一致させること。
const (
	usersEmailConstraint     = "users_email_key"
	blogPostsTitleConstraint = "blog_posts_title_key"
)

// mapUniqueViolation は一意制約違反を対応する番兵エラーに変換する。
// 対象外のエラーはそのまま返す。
func mapUniqueViolation(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || string(pqErr.Code) != uniqueViolationCode {
		return err
	}

	switch pqErr.Constraint {
	case usersEmailConstraint:
		return ErrDuplicateEmail
	case blogPostsTitleConstraint:
		return ErrDuplicateTitle
	default:
		return err
	}
}
