package handler

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/nikkilog/nikki/internal/service"
	"github.com/nikkilog/nikki/internal/ui"
)

type pageHandler struct {
	contentService *service.ContentService
	renderer       *ui.Renderer
}

func NewPageHandler(contentService *service.ContentService, renderer *ui.Renderer) *pageHandler {
	return &pageHandler{
		contentService: contentService,
		renderer:       renderer,
	}
}

type pageContent struct {
	Title   string
	Updated string
	HTML    template.HTML
}

// Show renders a static markdown page like /pages/about.
func (h *pageHandler) Show(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")

	page, err := h.contentService.Page(slug)
	if err != nil {
		if errors.Is(err, service.ErrPageNotFound) {
			h.renderer.NotFound(w, r)
			return
		}
		slog.Error("failed to load page", "error", err, "slug", slug)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.renderer.Render(w, r, http.StatusOK, "page", ui.Data{
		Title: page.Title,
		Content: pageContent{
			Title:   page.Title,
			Updated: page.LastUpdated,
			HTML:    template.HTML(page.HTMLContent),
		},
	})
}

// NotFound is the catch-all for unmatched routes.
func (h *pageHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.renderer.NotFound(w, r)
}
