// Package content は記事とコメントのドメインロジックを提供する。
package content

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hitoshi/blogman/internal/model"
	"github.com/hitoshi/blogman/internal/repository"
	"github.com/hitoshi/blogman/internal/security"
)

// PostInput は記事の作成・編集フォームの入力値。
type PostInput struct {
	Title    string
	Subtitle string
	Body     string
	ImageURL string
}

// PostView は記事詳細ページの表示用データ。
type PostView struct {
	model.PostWithAuthor
	Comments []model.CommentWithAuthor
}

// MetricsRecorder はコンテンツ操作のメトリクス記録インターフェース。
// metrics.Collectorの部分集合として定義する。
type MetricsRecorder interface {
	RecordPostCreated()
	RecordCommentCreated()
}

// Service は記事・コメントに関するビジネスロジックを提供する。
type Service struct {
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	sanitizer   security.ContentSanitizer
	urlGuard    security.URLGuardService
	prober      ImageProber     // nilの場合は到達確認をスキップ
	metrics     MetricsRecorder // nilの場合は記録をスキップ
}

// NewService はServiceを生成する。
func NewService(
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	sanitizer security.ContentSanitizer,
	urlGuard security.URLGuardService,
	prober ImageProber,
	metrics MetricsRecorder,
) *Service {
	return &Service{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		sanitizer:   sanitizer,
		urlGuard:    urlGuard,
		prober:      prober,
		metrics:     metrics,
	}
}

// CreatePost は新規記事を作成する。
// 公開日は作成時点の日付を "January 02, 2006" 形式で刻印する。
// タイトルの一意性はDB制約で検証され、重複時はDUPLICATE_TITLEエラーを返す。
func (s *Service) CreatePost(ctx context.Context, authorID int64, input PostInput) (*model.BlogPost, error) {
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	now := time.Now()
	post := &model.BlogPost{
		AuthorID:  authorID,
		Title:     strings.TrimSpace(input.Title),
		Subtitle:  strings.TrimSpace(input.Subtitle),
		Date:      now.Format(model.PostDateLayout),
		Body:      s.sanitizer.SanitizePostBody(input.Body),
		ImageURL:  strings.TrimSpace(input.ImageURL),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		if errors.Is(err, repository.ErrDuplicateTitle) {
			return nil, model.NewDuplicateTitleError()
		}
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	s.probeImage(ctx, post.ID, post.ImageURL)

	if s.metrics != nil {
		s.metrics.RecordPostCreated()
	}
	slog.Info("post created",
		slog.Int64("post_id", post.ID),
		slog.String("title", post.Title),
	)

	return post, nil
}

// EditPost は既存記事を更新する。公開日と著者は変更しない。
// 記事が存在しない場合はPOST_NOT_FOUNDエラーを返す。
func (s *Service) EditPost(ctx context.Context, postID int64, input PostInput) (*model.BlogPost, error) {
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	post := &model.BlogPost{
		ID:        postID,
		Title:     strings.TrimSpace(input.Title),
		Subtitle:  strings.TrimSpace(input.Subtitle),
		Body:      s.sanitizer.SanitizePostBody(input.Body),
		ImageURL:  strings.TrimSpace(input.ImageURL),
		UpdatedAt: time.Now(),
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, model.NewPostNotFoundError(postID)
		case errors.Is(err, repository.ErrDuplicateTitle):
			return nil, model.NewDuplicateTitleError()
		}
		return nil, fmt.Errorf("failed to update post: %w", err)
	}

	s.probeImage(ctx, postID, post.ImageURL)

	slog.Info("post updated", slog.Int64("post_id", postID))

	return post, nil
}

// DeletePost は記事を削除する。従属するコメントはストアのCASCADE制約で
// 記事と同時に削除される。記事が存在しない場合はPOST_NOT_FOUNDエラーを返す。
func (s *Service) DeletePost(ctx context.Context, postID int64) error {
	if err := s.postRepo.Delete(ctx, postID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.NewPostNotFoundError(postID)
		}
		return fmt.Errorf("failed to delete post: %w", err)
	}

	slog.Info("post deleted", slog.Int64("post_id", postID))
	return nil
}

// GetPost は記事とそのコメント一覧を取得する。見つからない場合はnilを返す。
func (s *Service) GetPost(ctx context.Context, postID int64) (*PostView, error) {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to find post: %w", err)
	}
	if post == nil {
		return nil, nil
	}

	comments, err := s.commentRepo.ListByPostID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	return &PostView{
		PostWithAuthor: *post,
		Comments:       comments,
	}, nil
}

// ListPosts は全記事をID昇順で、コメント数付きで返す。
func (s *Service) ListPosts(ctx context.Context) ([]model.PostWithAuthor, error) {
	posts, err := s.postRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	for i := range posts {
		count, err := s.commentRepo.CountByPostID(ctx, posts[i].ID)
		if err != nil {
			return nil, fmt.Errorf("failed to count comments: %w", err)
		}
		posts[i].CommentCount = count
	}

	return posts, nil
}

// AddComment は記事にコメントを追加する。
// 匿名（AnonymousUserID）の場合はUNAUTHENTICATED、
// 記事が存在しない場合はPOST_NOT_FOUNDエラーを返す。
func (s *Service) AddComment(ctx context.Context, authorID, postID int64, text string) (*model.Comment, error) {
	if authorID == model.AnonymousUserID {
		return nil, model.NewUnauthenticatedError()
	}

	sanitized := strings.TrimSpace(s.sanitizer.SanitizeComment(text))
	if sanitized == "" {
		return nil, model.NewValidationError("comment")
	}

	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to find post: %w", err)
	}
	if post == nil {
		return nil, model.NewPostNotFoundError(postID)
	}

	comment := &model.Comment{
		PostID:    postID,
		AuthorID:  authorID,
		Text:      sanitized,
		CreatedAt: time.Now(),
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordCommentCreated()
	}
	slog.Info("comment added",
		slog.Int64("comment_id", comment.ID),
		slog.Int64("post_id", postID),
		slog.Int64("author_id", authorID),
	)

	return comment, nil
}

// validateInput は記事フォームの必須項目と画像URLを検証する。
func (s *Service) validateInput(input PostInput) error {
	switch {
	case strings.TrimSpace(input.Title) == "":
		return model.NewValidationError("title")
	case strings.TrimSpace(input.Subtitle) == "":
		return model.NewValidationError("subtitle")
	case strings.TrimSpace(input.Body) == "":
		return model.NewValidationError("body")
	case strings.TrimSpace(input.ImageURL) == "":
		return model.NewValidationError("image_url")
	}

	if err := s.urlGuard.ValidateURL(strings.TrimSpace(input.ImageURL)); err != nil {
		return model.NewValidationError("image_url")
	}

	return nil
}

// probeImage は画像URLの到達確認を行う。到達できなくても記事の保存は妨げず、
// 警告ログのみ残す。
func (s *Service) probeImage(ctx context.Context, postID int64, imageURL string) {
	if s.prober == nil {
		return
	}
	if err := s.prober.Probe(ctx, imageURL); err != nil {
		slog.Warn("image URL unreachable",
			slog.Int64("post_id", postID),
			slog.String("image_url", imageURL),
			slog.String("error", err.Error()),
		)
	}
}
