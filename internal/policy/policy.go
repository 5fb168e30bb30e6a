// Package policy はアクセス制御の判定を提供する。
package policy

import "github.com/hitoshi/blogman/internal/model"

// Policy は唯一の管理者アカウントに基づくアクセス判定を行う。
// 管理者IDは設定値として注入され、コード中の定数には依存しない。
type Policy struct {
	adminUserID int64
}

// New はPolicyを生成する。
func New(adminUserID int64) *Policy {
	return &Policy{adminUserID: adminUserID}
}

// IsAdmin は指定ユーザーが管理者かどうかを判定する。
// 匿名（AnonymousUserID）は常にfalse。
// 記事の作成・編集・削除の各ハンドラーは処理の先頭でこの判定を行い、
// falseの場合は403で拒否する（黙殺はしない）。
func (p *Policy) IsAdmin(userID int64) bool {
	return userID != model.AnonymousUserID && userID == p.adminUserID
}
