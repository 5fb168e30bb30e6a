package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// CookieSigner はセッションIDの署名付きCookie値を生成・検証する。
// セッションIDそのものは推測不能なランダム値だが、Cookieには
// "id.signature" 形式で渡すことで改ざんも検出できるようにする。
type CookieSigner struct {
	secret []byte
}

// NewCookieSigner はCookieSignerを生成する。
func NewCookieSigner(secret string) *CookieSigner {
	return &CookieSigner{secret: []byte(secret)}
}

// Sign はセッションIDから署名付きCookie値を生成する。
func (s *CookieSigner) Sign(sessionID string) string {
	return sessionID + "." + s.signature(sessionID)
}

// Verify は署名付きCookie値を検証し、セッションIDを取り出す。
// 形式不正または署名不一致の場合はエラーを返す。比較は定数時間で行う。
func (s *CookieSigner) Verify(cookieValue string) (string, error) {
	sessionID, sig, ok := strings.Cut(cookieValue, ".")
	if !ok || sessionID == "" || sig == "" {
		return "", fmt.Errorf("malformed session cookie")
	}

	expected := s.signature(sessionID)
	if !hmac.Equal([]byte(sig), []byte(expected)) {
		return "", fmt.Errorf("session cookie signature mismatch")
	}

	return sessionID, nil
}

// signature はHMAC-SHA256署名を16進文字列で返す。
func (s *CookieSigner) signature(sessionID string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(sessionID))
	return hex.EncodeToString(mac.Sum(nil))
}
