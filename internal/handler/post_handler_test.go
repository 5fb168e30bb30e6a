package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/blogman/internal/content"
	"github.com/hitoshi/blogman/internal/middleware"
	"github.com/hitoshi/blogman/internal/model"
)

// mockContentService はContentServiceInterfaceのモック。
type mockContentService struct {
	createPostFunc func(ctx context.Context, authorID int64, input content.PostInput) (*model.BlogPost, error)
	editPostFunc   func(ctx context.Context, postID int64, input content.PostInput) (*model.BlogPost, error)
	deletePostFunc func(ctx context.Context, postID int64) error
	getPostFunc    func(ctx context.Context, postID int64) (*content.PostView, error)
	listPostsFunc  func(ctx context.Context) ([]model.PostWithAuthor, error)
	addCommentFunc func(ctx context.Context, authorID, postID int64, text string) (*model.Comment, error)
}

var _ ContentServiceInterface = (*mockContentService)(nil)

func (m *mockContentService) CreatePost(ctx context.Context, authorID int64, input content.PostInput) (*model.BlogPost, error) {
	return m.createPostFunc(ctx, authorID, input)
}

func (m *mockContentService) EditPost(ctx context.Context, postID int64, input content.PostInput) (*model.BlogPost, error) {
	return m.editPostFunc(ctx, postID, input)
}

func (m *mockContentService) DeletePost(ctx context.Context, postID int64) error {
	return m.deletePostFunc(ctx, postID)
}

func (m *mockContentService) GetPost(ctx context.Context, postID int64) (*content.PostView, error) {
	return m.getPostFunc(ctx, postID)
}

func (m *mockContentService) ListPosts(ctx context.Context) ([]model.PostWithAuthor, error) {
	return m.listPostsFunc(ctx)
}

func (m *mockContentService) AddComment(ctx context.Context, authorID, postID int64, text string) (*model.Comment, error) {
	return m.addCommentFunc(ctx, authorID, postID, text)
}

// newPostRouter はURLパラメーターを解決するためにchiルーター経由で
// ハンドラーを公開するヘルパー。
func newPostRouter(h *PostHandler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.Index)
	r.Get("/post/{id}", h.ShowPost)
	r.Post("/post/{id}", h.AddComment)
	r.Get("/new-post", h.NewPostForm)
	r.Post("/new-post", h.CreatePost)
	r.Get("/edit-post/{id}", h.EditPostForm)
	r.Post("/edit-post/{id}", h.UpdatePost)
	r.Get("/delete/{id}", h.DeletePost)
	return r
}

func newTestPostHandler(service *mockContentService) (*PostHandler, *mockRenderer) {
	renderer := &mockRenderer{}
	h := NewPostHandler(service, renderer, &stubChecker{adminID: 1})
	return h, renderer
}

var adminUser = &model.User{ID: 1, Email: "hitoshi@example.com", Name: "Hitoshi"}

// postFormAs はユーザーを注入したフォームPOSTリクエストを生成するヘルパー。
func postFormAs(target string, values url.Values, user *model.User) *http.Request {
	req := postForm(target, values)
	if user != nil {
		req = req.WithContext(middleware.ContextWithUser(req.Context(), user))
	}
	return req
}

// TestIndex_ListsPosts は記事一覧が表示されることを検証する。
func TestIndex_ListsPosts(t *testing.T) {
	service := &mockContentService{
		listPostsFunc: func(ctx context.Context) ([]model.PostWithAuthor, error) {
			return []model.PostWithAuthor{
				{BlogPost: model.BlogPost{ID: 1, Title: "最初の記事"}},
				{BlogPost: model.BlogPost{ID: 2, Title: "次の記事"}},
			}, nil
		},
	}
	h, renderer := newTestPostHandler(service)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	newPostRouter(h).ServeHTTP(rec, req)

	if renderer.page != "index.html" {
		t.Errorf("page = %q, want index.html", renderer.page)
	}
	if len(renderer.data.Posts) != 2 {
		t.Errorf("posts = %d, want 2", len(renderer.data.Posts))
	}
}

// TestShowPost_RendersPostWithComments は記事詳細とコメントが表示されることを検証する。
func TestShowPost_RendersPostWithComments(t *testing.T) {
	service := &mockContentService{
		getPostFunc: func(ctx context.Context, postID int64) (*content.PostView, error) {
			if postID != 5 {
				t.Errorf("postID = %d, want 5", postID)
			}
			return &content.PostView{
				PostWithAuthor: model.PostWithAuthor{BlogPost: model.BlogPost{ID: 5, Title: "記事タイトル"}},
				Comments: []model.CommentWithAuthor{
					{Comment: model.Comment{ID: 1, Text: "いいね"}},
				},
			}, nil
		},
	}
	h, renderer := newTestPostHandler(service)

	req := httptest.NewRequest(http.MethodGet, "/post/5", nil)
	rec := httptest.NewRecorder()
	newPostRouter(h).ServeHTTP(rec, req)

	if renderer.page != "post.html" {
		t.Errorf("page = %q, want post.html", renderer.page)
	}
	if renderer.data.Title != "記事タイトル" {
		t.Errorf("Title = %q, want 記事タイトル", renderer.data.Title)
	}
	if len(renderer.data.Comments) != 1 {
		t.Errorf("comments = %d, want 1", len(renderer.data.Comments))
	}
}

// TestShowPost_NotFound は存在しない記事で404ページが表示されることを検証する。
func TestShowPost_NotFound(t *testing.T) {
	service := &mockContentService{
		getPostFunc: func(ctx context.Context, postID int64) (*content.PostView, error) {
			return nil, nil
		},
	}
	h, renderer := newTestPostHandler(service)

	req := httptest.NewRequest(http.MethodGet, "/post/999", nil)
	rec := httptest.NewRecorder()
	newPostRouter(h).ServeHTTP(rec, req)

	if renderer.status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", renderer.status)
	}
	if renderer.page != "error.html" {
		t.Errorf("page = %q, want error.html", renderer.page)
	}
}

// TestShowPost_InvalidID は数値でないIDで404ページが表示されることを検証する。
func TestShowPost_InvalidID(t *testing.T) {
	h, renderer := newTestPostHandler(&mockContentService{})

	req := httptest.NewRequest(http.MethodGet, "/post/abc", nil)
	rec := httptest.NewRecorder()
	newPostRouter(h).ServeHTTP(rec, req)

	if renderer.status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", renderer.status)
	}
}

// TestAddComment_Success はコメント投稿後に記事ページへ戻ることを検証する。
func TestAddComment_Success(t *testing.T) {
	service := &mockContentService{
		addCommentFunc: func(ctx context.Context, authorID, postID int64, text string) (*model.Comment, error) {
			if authorID != 2 || postID != 5 || text != "良い記事ですね" {
				t.Errorf("unexpected args: author=%d post=%d text=%q", authorID, postID, text)
			}
			return &model.Comment{ID: 1, PostID: postID, AuthorID: authorID, Text: text}, nil
		},
	}
	h, _ := newTestPostHandler(service)

	req := postFormAs("/post/5", url.Values{"comment": {"良い記事ですね"}}, &model.User{ID: 2})
	rec := httptest.NewRecorder()
	newPostRouter(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/post/5" {
		t.Errorf("Location = %q, want /post/5", loc)
	}
}

// TestAddComment_AnonymousRedirectsToLogin は匿名の投稿がログインページへ
// 誘導されることを検証する。
func TestAddComment_AnonymousRedirectsToLogin(t *testing.T) {
	service := &mockContentService{
		addCommentFunc: func(ctx context.Context, authorID, postID int64, text string) (*model.Comment, error) {
			if authorID != model.AnonymousUserID {
				t.Errorf("authorID = %d, want anonymous", authorID)
			}
			return nil, model.NewUnauthenticatedError()
		},
	}
	h, _ := newTestPostHandler(service)

	req := postFormAs("/post/5", url.Values{"comment": {"匿名コメント"}}, nil)
	rec := httptest.NewRecorder()
	newPostRouter(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Errorf("Location = %q, want /login", loc)
	}
	if flashCookieFrom(t, rec) == nil {
		t.Error("flash cookie should be set")
	}
}

// TestAddComment_EmptyText は空コメントが記事ページへ差し戻されることを検証する。
func TestAddComment_EmptyText(t *testing.T) {
	service := &mockContentService{
		addCommentFunc: func(ctx context.Context, authorID, postID int64, text string) (*model.Comment, error) {
			return nil, model.NewValidationError("comment")
		},
	}
	h, _ := newTestPostHandler(service)

	req := postFormAs("/post/5", url.Values{"comment": {""}}, &model.User{ID: 2})
	rec := httptest.NewRecorder()
	newPostRouter(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/post/5" {
		t.Errorf("Location = %q, want /post/5", loc)
	}
}

// TestAddComment_PostGone は消えた記事へのコメントで404が返ることを検証する。
func TestAddComment_PostGone(t *testing.T) {
	service := &mockContentService{
		addCommentFunc: func(ctx context.Context, authorID, postID int64, text string) (*model.Comment, error) {
			return nil, model.NewPostNotFoundError(postID)
		},
	}
	h, renderer := newTestPostHandler(service)

	req := postFormAs("/post/999", url.Values{"comment": {"コメント"}}, &model.User{ID: 2})
	rec := httptest.NewRecorder()
	newPostRouter(h).ServeHTTP(rec, req)

	if renderer.status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", renderer.status)
	}
}

// TestAdminPages_RequireAdmin は管理者専用ページが匿名・一般ユーザーを
// 拒否することを検証する。
func TestAdminPages_RequireAdmin(t *testing.T) {
	tests := []struct {
		name string
		user *model.User
	}{
		{name: "匿名ユーザー", user: nil},
		{name: "一般ユーザー", user: &model.User{ID: 2, Name: "Taro"}},
	}

	targets := []string{"/new-post", "/edit-post/1", "/delete/1"}

	for _, tt := range tests {
		for _, target := range targets {
			t.Run(tt.name+" "+target, func(t *testing.T) {
				h, renderer := newTestPostHandler(&mockContentService{})

				req := requestWithUser(http.MethodGet, target, tt.user)
				rec := httptest.NewRecorder()
				newPostRouter(h).ServeHTTP(rec, req)

				if renderer.status != http.StatusForbidden {
					t.Errorf("status = %d, want 403", renderer.status)
				}
				if renderer.page != "error.html" {
					t.Errorf("page = %q, want error.html", renderer.page)
				}
			})
		}
	}
}

// TestNewPostForm_Admin は管理者に作成フォームが表示されることを検証する。
func TestNewPostForm_Admin(t *testing.T) {
	h, renderer := newTestPostHandler(&mockContentService{})

	req := requestWithUser(http.MethodGet, "/new-post", adminUser)
	rec := httptest.NewRecorder()
	newPostRouter(h).ServeHTTP(rec, req)

	if renderer.page != "make_post.html" {
		t.Errorf("page = %q, want make_post.html", renderer.page)
	}
	if renderer.data.Editing {
		t.Error("new post form should not be in editing mode")
	}
}

// TestCreatePost_Success は記事作成後に新しい記事ページへ移ることを検証する。
func TestCreatePost_Success(t *testing.T) {
	service := &mockContentService{
		createPostFunc: func(ctx context.Context, authorID int64, input content.PostInput) (*model.BlogPost, error) {
			if authorID != 1 {
				t.Errorf("authorID = %d, want 1", authorID)
			}
			if input.Title != "新しい記事" || input.Body != "本文" {
				t.Errorf("unexpected input: %+v", input)
			}
			return &model.BlogPost{ID: 7, Title: input.Title}, nil
		},
	}
	h, _ := newTestPostHandler(service)

	req := postFormAs("/new-post", url.Values{
		"title":    {"新しい記事"},
		"subtitle": {"サブタイトル"},
		"body":     {"本文"},
		"img_url":  {"https://example.com/a.png"},
	}, adminUser)
	rec := httptest.NewRecorder()
	newPostRouter(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/post/7" {
		t.Errorf("Location = %q, want /post/7", loc)
	}
}

// TestCreatePost_DuplicateTitle はタイトル重複で入力値を保持したまま
// フォームを再表示することを検証する。
func TestCreatePost_DuplicateTitle(t *testing.T) {
	service := &mockContentService{
		createPostFunc: func(ctx context.Context, authorID int64, input content.PostInput) (*model.BlogPost, error) {
			return nil, model.NewDuplicateTitleError()
		},
	}
	h, renderer := newTestPostHandler(service)

	req := postFormAs("/new-post", url.Values{
		"title": {"重複タイトル"},
		"body":  {"本文"},
	}, adminUser)
	rec := httptest.NewRecorder()
	newPostRouter(h).ServeHTTP(rec, req)

	if renderer.status != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", renderer.status)
	}
	if renderer.page != "make_post.html" {
		t.Errorf("page = %q, want make_post.html", renderer.page)
	}
	if renderer.data.Form["title"] != "重複タイトル" {
		t.Error("title input should be restored")
	}
	if renderer.data.Flash == "" {
		t.Error("error message should be shown")
	}
}

// TestEditPostForm_PrefillsForm は編集フォームに既存の値が入ることを検証する。
func TestEditPostForm_PrefillsForm(t *testing.T) {
	service := &mockContentService{
		getPostFunc: func(ctx context.Context, postID int64) (*content.PostView, error) {
			return &content.PostView{
				PostWithAuthor: model.PostWithAuthor{BlogPost: model.BlogPost{
					ID:       3,
					Title:    "既存タイトル",
					Subtitle: "既存サブタイトル",
					Body:     "既存本文",
					ImageURL: "https://example.com/old.png",
				}},
			}, nil
		},
	}
	h, renderer := newTestPostHandler(service)

	req := requestWithUser(http.MethodGet, "/edit-post/3", adminUser)
	rec := httptest.NewRecorder()
	newPostRouter(h).ServeHTTP(rec, req)

	if !renderer.data.Editing {
		t.Error("edit form should be in editing mode")
	}
	want := map[string]string{
		"title":    "既存タイトル",
		"subtitle": "既存サブタイトル",
		"body":     "既存本文",
		"img_url":  "https://example.com/old.png",
	}
	for key, value := range want {
		if renderer.data.Form[key] != value {
			t.Errorf("Form[%q] = %q, want %q", key, renderer.data.Form[key], value)
		}
	}
}

// TestUpdatePost_Success は記事更新後に記事ページへ戻ることを検証する。
func TestUpdatePost_Success(t *testing.T) {
	service := &mockContentService{
		editPostFunc: func(ctx context.Context, postID int64, input content.PostInput) (*model.BlogPost, error) {
			if postID != 3 {
				t.Errorf("postID = %d, want 3", postID)
			}
			return &model.BlogPost{ID: 3, Title: input.Title}, nil
		},
	}
	h, _ := newTestPostHandler(service)

	req := postFormAs("/edit-post/3", url.Values{
		"title": {"更新後タイトル"},
		"body":  {"更新後本文"},
	}, adminUser)
	rec := httptest.NewRecorder()
	newPostRouter(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/post/3" {
		t.Errorf("Location = %q, want /post/3", loc)
	}
}

// TestUpdatePost_NotFound は存在しない記事の更新で404が返ることを検証する。
func TestUpdatePost_NotFound(t *testing.T) {
	service := &mockContentService{
		editPostFunc: func(ctx context.Context, postID int64, input content.PostInput) (*model.BlogPost, error) {
			return nil, model.NewPostNotFoundError(postID)
		},
	}
	h, renderer := newTestPostHandler(service)

	req := postFormAs("/edit-post/999", url.Values{"title": {"t"}, "body": {"b"}}, adminUser)
	rec := httptest.NewRecorder()
	newPostRouter(h).ServeHTTP(rec, req)

	if renderer.status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", renderer.status)
	}
}

// TestDeletePost_Success は削除後にフラッシュと共にトップページへ戻ることを検証する。
func TestDeletePost_Success(t *testing.T) {
	service := &mockContentService{
		deletePostFunc: func(ctx context.Context, postID int64) error {
			if postID != 3 {
				t.Errorf("postID = %d, want 3", postID)
			}
			return nil
		},
	}
	h, _ := newTestPostHandler(service)

	req := requestWithUser(http.MethodGet, "/delete/3", adminUser)
	rec := httptest.NewRecorder()
	newPostRouter(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("Location = %q, want /", loc)
	}
	if flashCookieFrom(t, rec) == nil {
		t.Error("flash cookie should be set")
	}
}

// TestDeletePost_NotFound は存在しない記事の削除で404が返ることを検証する。
func TestDeletePost_NotFound(t *testing.T) {
	service := &mockContentService{
		deletePostFunc: func(ctx context.Context, postID int64) error {
			return model.NewPostNotFoundError(postID)
		},
	}
	h, renderer := newTestPostHandler(service)

	req := requestWithUser(http.MethodGet, "/delete/999", adminUser)
	rec := httptest.NewRecorder()
	newPostRouter(h).ServeHTTP(rec, req)

	if renderer.status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", renderer.status)
	}
}
