package handler

import "net/http"

// PageHandler は静的ページのHTTPハンドラー。
type PageHandler struct {
	renderer PageRenderer
	checker  AdminChecker
}

// NewPageHandler はPageHandlerを生成する。
func NewPageHandler(renderer PageRenderer, checker AdminChecker) *PageHandler {
	return &PageHandler{
		renderer: renderer,
		checker:  checker,
	}
}

// About は自己紹介ページを表示する。
// GET /about
func (h *PageHandler) About(w http.ResponseWriter, r *http.Request) {
	data := pageData(w, r, h.checker)
	data.Title = "About"
	renderPage(h.renderer, w, r, http.StatusOK, "about.html", data)
}

// Contact は連絡先ページを表示する。
// GET /contact
func (h *PageHandler) Contact(w http.ResponseWriter, r *http.Request) {
	data := pageData(w, r, h.checker)
	data.Title = "Contact"
	renderPage(h.renderer, w, r, http.StatusOK, "contact.html", data)
}
