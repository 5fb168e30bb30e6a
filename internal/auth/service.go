// Package auth はユーザー登録、パスワード認証、セッション管理を提供する。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hitoshi/blogman/internal/model"
	"github.com/hitoshi/blogman/internal/repository"
)

// dummyHash は存在しないユーザーへのログイン試行時に検証する固定ハッシュ。
// メールアドレスの登録有無を応答時間で露出させないために使用する。
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionMaxAge int // セッション有効期間（秒）
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	signer      *CookieSigner
	config      ServiceConfig
}

// NewService はServiceを生成する。
func NewService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	signer *CookieSigner,
	config ServiceConfig,
) *Service {
	return &Service{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		signer:      signer,
		config:      config,
	}
}

// Register は新規ユーザーを登録する。
// メールアドレスの一意性はDB制約で検証されるため、同時登録の競合でも
// 重複レコードは生じない。重複時はDUPLICATE_EMAILエラーを返す。
func (s *Service) Register(ctx context.Context, email, name, password string) (*model.User, error) {
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)

	switch {
	case email == "":
		return nil, model.NewValidationError("email")
	case name == "":
		return nil, model.NewValidationError("name")
	case password == "":
		return nil, model.NewValidationError("password")
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, model.NewDuplicateEmailError()
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("new user registered",
		slog.Int64("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return user, nil
}

// Login はメールアドレスとパスワードでユーザーを認証し、セッションを発行する。
// 発行時に同一ユーザーの既存セッションはすべて無効化される。
// メールアドレス不明とパスワード不一致は同一のINVALID_CREDENTIALSエラーになり、
// どちらのケースかは漏らさない。
func (s *Service) Login(ctx context.Context, email, password string) (*model.User, *model.Session, error) {
	user, err := s.userRepo.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find user: %w", err)
	}

	if user == nil {
		// 未知メールの場合もハッシュ検証を実行し、応答時間を登録済みの場合と揃える
		VerifyPassword(password, dummyHash)
		return nil, nil, model.NewInvalidCredentialsError()
	}

	if !VerifyPassword(password, user.PasswordHash) {
		return nil, nil, model.NewInvalidCredentialsError()
	}

	session, err := s.createSession(ctx, user.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create session: %w", err)
	}

	slog.Info("user logged in", slog.Int64("user_id", user.ID))

	return user, session, nil
}

// Logout はセッションを破棄する。
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session ID is required")
	}

	if err := s.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	slog.Info("user logged out", slog.String("session_id", sessionID))
	return nil
}

// CurrentUser は署名付きCookie値から現在のユーザーを解決する。
// 署名不正・セッション期限切れ・ユーザーレコード消失のいずれの場合も
// エラーにせずnil（匿名）を返す。ストア障害のみエラーを返す。
func (s *Service) CurrentUser(ctx context.Context, cookieValue string) (*model.User, error) {
	if cookieValue == "" {
		return nil, nil
	}

	sessionID, err := s.signer.Verify(cookieValue)
	if err != nil {
		return nil, nil
	}

	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	if session == nil {
		return nil, nil
	}

	user, err := s.userRepo.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		// セッションが指すユーザーが存在しない場合は匿名として扱う（フェイルクローズ）
		return nil, nil
	}

	return user, nil
}

// CookieValue はセッションの署名付きCookie値を返す。
func (s *Service) CookieValue(session *model.Session) string {
	return s.signer.Sign(session.ID)
}

// SessionIDFromCookie は署名付きCookie値を検証してセッションIDを取り出す。
// 検証に失敗した場合は空文字列を返す。
func (s *Service) SessionIDFromCookie(cookieValue string) string {
	sessionID, err := s.signer.Verify(cookieValue)
	if err != nil {
		return ""
	}
	return sessionID
}

// createSession はセッションを作成し永続化する。
// ユーザーの既存セッションは先に破棄し、有効なセッションを常に1つに保つ。
func (s *Service) createSession(ctx context.Context, userID int64) (*model.Session, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	session := &model.Session{
		ID:        sessionID,
		UserID:    userID,
		ExpiresAt: time.Now().Add(time.Duration(s.config.SessionMaxAge) * time.Second),
		CreatedAt: time.Now(),
	}

	if err := s.sessionRepo.DeleteByUserID(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to invalidate previous sessions: %w", err)
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return session, nil
}

// generateSessionID は暗号的に安全なセッションIDを生成する。
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
