package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/blogman/internal/content"
	"github.com/hitoshi/blogman/internal/middleware"
	"github.com/hitoshi/blogman/internal/model"
)

// ContentServiceInterface は記事ハンドラーが必要とするサービスインターフェース。
type ContentServiceInterface interface {
	// CreatePost は新規記事を作成する。
	CreatePost(ctx context.Context, authorID int64, input content.PostInput) (*model.BlogPost, error)
	// EditPost は既存記事を更新する。
	EditPost(ctx context.Context, postID int64, input content.PostInput) (*model.BlogPost, error)
	// DeletePost は記事を削除する。
	DeletePost(ctx context.Context, postID int64) error
	// GetPost は記事とコメント一覧を取得する。見つからない場合はnilを返す。
	GetPost(ctx context.Context, postID int64) (*content.PostView, error)
	// ListPosts は全記事をID昇順で返す。
	ListPosts(ctx context.Context) ([]model.PostWithAuthor, error)
	// AddComment は記事にコメントを追加する。
	AddComment(ctx context.Context, authorID, postID int64, text string) (*model.Comment, error)
}

// PostHandler は記事・コメントのHTTPハンドラー。
type PostHandler struct {
	service  ContentServiceInterface
	renderer PageRenderer
	checker  AdminChecker
}

// NewPostHandler はPostHandlerを生成する。
func NewPostHandler(service ContentServiceInterface, renderer PageRenderer, checker AdminChecker) *PostHandler {
	return &PostHandler{
		service:  service,
		renderer: renderer,
		checker:  checker,
	}
}

// Index は記事一覧を表示する。
// GET /
func (h *PostHandler) Index(w http.ResponseWriter, r *http.Request) {
	posts, err := h.service.ListPosts(r.Context())
	if err != nil {
		renderInternalError(h.renderer, w, r, h.checker, err)
		return
	}

	data := pageData(w, r, h.checker)
	data.Posts = posts
	renderPage(h.renderer, w, r, http.StatusOK, "index.html", data)
}

// ShowPost は記事詳細とコメント一覧を表示する。
// GET /post/:id
func (h *PostHandler) ShowPost(w http.ResponseWriter, r *http.Request) {
	postID, err := parsePostID(r)
	if err != nil {
		renderNotFound(h.renderer, w, r, h.checker)
		return
	}

	post, err := h.service.GetPost(r.Context(), postID)
	if err != nil {
		renderInternalError(h.renderer, w, r, h.checker, err)
		return
	}
	if post == nil {
		renderNotFound(h.renderer, w, r, h.checker)
		return
	}

	data := pageData(w, r, h.checker)
	data.Title = post.Title
	data.Post = &post.PostWithAuthor
	data.Comments = post.Comments
	renderPage(h.renderer, w, r, http.StatusOK, "post.html", data)
}

// AddComment は記事へのコメント投稿を処理する。
// POST /post/:id
//
// 匿名ユーザーの投稿はフラッシュメッセージと共にログインページへ誘導する。
func (h *PostHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	postID, err := parsePostID(r)
	if err != nil {
		renderNotFound(h.renderer, w, r, h.checker)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	authorID := middleware.UserIDFromContext(r.Context())
	_, err = h.service.AddComment(r.Context(), authorID, postID, r.PostFormValue("comment"))
	if err != nil {
		switch model.CodeOf(err) {
		case model.ErrCodeUnauthenticated:
			setFlash(w, "コメントするにはログインしてください。")
			http.Redirect(w, r, "/login", http.StatusSeeOther)
		case model.ErrCodePostNotFound:
			renderNotFound(h.renderer, w, r, h.checker)
		case model.ErrCodeValidation:
			setFlash(w, "コメントを入力してください。")
			http.Redirect(w, r, fmt.Sprintf("/post/%d", postID), http.StatusSeeOther)
		default:
			renderInternalError(h.renderer, w, r, h.checker, err)
		}
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/post/%d", postID), http.StatusSeeOther)
}

// NewPostForm は記事作成フォームを表示する。
// GET /new-post
func (h *PostHandler) NewPostForm(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	data := pageData(w, r, h.checker)
	data.Title = "New Post"
	data.Form = map[string]string{}
	renderPage(h.renderer, w, r, http.StatusOK, "make_post.html", data)
}

// CreatePost は記事作成を処理する。
// POST /new-post
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	input, err := parsePostForm(r)
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	post, err := h.service.CreatePost(r.Context(), middleware.UserIDFromContext(r.Context()), input)
	if err != nil {
		h.renderPostFormError(w, r, "New Post", false, 0, input, err)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/post/%d", post.ID), http.StatusSeeOther)
}

// EditPostForm は記事編集フォームを表示する。
// GET /edit-post/:id
func (h *PostHandler) EditPostForm(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	postID, err := parsePostID(r)
	if err != nil {
		renderNotFound(h.renderer, w, r, h.checker)
		return
	}

	post, err := h.service.GetPost(r.Context(), postID)
	if err != nil {
		renderInternalError(h.renderer, w, r, h.checker, err)
		return
	}
	if post == nil {
		renderNotFound(h.renderer, w, r, h.checker)
		return
	}

	data := pageData(w, r, h.checker)
	data.Title = "Edit Post"
	data.Editing = true
	data.Form = map[string]string{
		"title":    post.Title,
		"subtitle": post.Subtitle,
		"img_url":  post.ImageURL,
		"body":     post.Body,
	}
	renderPage(h.renderer, w, r, http.StatusOK, "make_post.html", data)
}

// UpdatePost は記事編集を処理する。
// POST /edit-post/:id
func (h *PostHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	postID, err := parsePostID(r)
	if err != nil {
		renderNotFound(h.renderer, w, r, h.checker)
		return
	}

	input, err := parsePostForm(r)
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	if _, err := h.service.EditPost(r.Context(), postID, input); err != nil {
		h.renderPostFormError(w, r, "Edit Post", true, postID, input, err)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/post/%d", postID), http.StatusSeeOther)
}

// DeletePost は記事を削除する。従属するコメントも同時に消える。
// GET /delete/:id
func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	postID, err := parsePostID(r)
	if err != nil {
		renderNotFound(h.renderer, w, r, h.checker)
		return
	}

	if err := h.service.DeletePost(r.Context(), postID); err != nil {
		if model.CodeOf(err) == model.ErrCodePostNotFound {
			renderNotFound(h.renderer, w, r, h.checker)
			return
		}
		renderInternalError(h.renderer, w, r, h.checker, err)
		return
	}

	setFlash(w, "記事を削除しました。")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// requireAdmin は現在のユーザーが管理者であることを検証する。
// 匿名・非管理者の場合は403ページを描画しfalseを返す。
func (h *PostHandler) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	if !h.checker.IsAdmin(middleware.UserIDFromContext(r.Context())) {
		renderForbidden(h.renderer, w, r, h.checker)
		return false
	}
	return true
}

// renderPostFormError は記事フォームのエラーを入力値を保持したまま再表示する。
func (h *PostHandler) renderPostFormError(w http.ResponseWriter, r *http.Request, title string, editing bool, postID int64, input content.PostInput, err error) {
	var appErr *model.AppError
	if !errors.As(err, &appErr) {
		renderInternalError(h.renderer, w, r, h.checker, err)
		return
	}

	switch appErr.Code {
	case model.ErrCodeValidation, model.ErrCodeDuplicateTitle:
		data := pageData(w, r, h.checker)
		data.Title = title
		data.Editing = editing
		data.Flash = appErr.Message
		data.Form = map[string]string{
			"title":    input.Title,
			"subtitle": input.Subtitle,
			"img_url":  input.ImageURL,
			"body":     input.Body,
		}
		renderPage(h.renderer, w, r, http.StatusBadRequest, "make_post.html", data)
	case model.ErrCodePostNotFound:
		renderNotFound(h.renderer, w, r, h.checker)
	default:
		renderInternalError(h.renderer, w, r, h.checker, err)
	}
}

// parsePostID はURLパスの記事IDを解析する。
func parsePostID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// parsePostForm は記事フォームの入力値を解析する。
func parsePostForm(r *http.Request) (content.PostInput, error) {
	if err := r.ParseForm(); err != nil {
		return content.PostInput{}, err
	}
	return content.PostInput{
		Title:    r.PostFormValue("title"),
		Subtitle: r.PostFormValue("subtitle"),
		Body:     r.PostFormValue("body"),
		ImageURL: r.PostFormValue("img_url"),
	}, nil
}
