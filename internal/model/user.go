// Package model はドメインモデルを定義する。
package model

import "time"

// AnonymousUserID は未認証の訪問者を表す番兵ID。
// 有効なユーザーIDは必ず1以上になる。
const AnonymousUserID int64 = 0

// User はブログの登録ユーザーを表す。
// PasswordHash にはbcryptハッシュのみを保持し、平文パスワードは保持しない。
type User struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}

// Session はユーザーのログインセッションを表す。
// IDはサーバー側で生成する推測不能なトークンで、Cookieには署名を付けて渡す。
type Session struct {
	ID        string
	UserID    int64
	ExpiresAt time.Time
	CreatedAt time.Time
}
