package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword は平文パスワードからbcryptハッシュを生成する。
// ソルトは呼び出しごとにランダム生成されハッシュ文字列に埋め込まれるため、
// 同じ入力でも毎回異なる出力になる。平文はどこにも保存しない。
func HashPassword(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword は平文パスワードが保存済みハッシュと一致するかを検証する。
// 比較はbcrypt内部で定数時間で行われる。
// ハッシュが不正な形式の場合もパニックせずfalseを返す。
func VerifyPassword(plaintext, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plaintext)) == nil
}
