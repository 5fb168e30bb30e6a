package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/hitoshi/blogman/internal/model"
	"github.com/hitoshi/blogman/internal/syndication"
)

// FeedHandler はRSSフィード配信のHTTPハンドラー。
type FeedHandler struct {
	lister  PostLister
	builder *syndication.Builder
}

// PostLister はフィード生成に必要な記事一覧のインターフェース。
type PostLister interface {
	ListPosts(ctx context.Context) ([]model.PostWithAuthor, error)
}

// NewFeedHandler はFeedHandlerを生成する。
func NewFeedHandler(lister PostLister, builder *syndication.Builder) *FeedHandler {
	return &FeedHandler{
		lister:  lister,
		builder: builder,
	}
}

// Feed はRSS 2.0フィードを返す。
// GET /feed
func (h *FeedHandler) Feed(w http.ResponseWriter, r *http.Request) {
	posts, err := h.lister.ListPosts(r.Context())
	if err != nil {
		slog.Error("failed to list posts for feed", slog.String("error", err.Error()))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	body, err := h.builder.Build(posts)
	if err != nil {
		slog.Error("failed to build feed", slog.String("error", err.Error()))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	w.Write(body)
}
