package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/nikkilog/nikki/internal/authz"
	"github.com/nikkilog/nikki/internal/ctxkeys"
	"github.com/nikkilog/nikki/internal/model"
	"github.com/nikkilog/nikki/internal/service"
	"github.com/nikkilog/nikki/internal/ui"
	"github.com/nikkilog/nikki/internal/validation"
)

type commentHandler struct {
	commentService *service.CommentService
	renderer       *ui.Renderer
}

func NewCommentHandler(commentService *service.CommentService, renderer *ui.Renderer) *commentHandler {
	return &commentHandler{
		commentService: commentService,
		renderer:       renderer,
	}
}

func (h *commentHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	articleID := r.PathValue("id")
	body := strings.TrimSpace(r.FormValue("body"))

	if body == "" {
		http.Redirect(w, r, "/articles/"+articleID, http.StatusSeeOther)
		return
	}

	_, err := h.commentService.Create(user.ID, articleID, body)
	if err != nil {
		if errors.Is(err, service.ErrArticleNotFound) {
			h.renderer.NotFound(w, r)
			return
		}
		slog.Error("failed to create comment", "error", err, "article_id", articleID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/articles/"+articleID, http.StatusSeeOther)
}

type commentContent struct {
	Comment *model.Comment
}

// Show renders a single comment with its edit and delete actions. Visible
// to the comment's author, and to superusers for moderation.
func (h *commentHandler) Show(w http.ResponseWriter, r *http.Request) {
	comment, ok := h.authorizedComment(w, r, authz.CanDeleteComment)
	if !ok {
		return
	}

	h.renderer.Render(w, r, http.StatusOK, "comment_detail", ui.Data{
		Title:   "Comment",
		Content: commentContent{Comment: comment},
	})
}

func (h *commentHandler) EditPage(w http.ResponseWriter, r *http.Request) {
	comment, ok := h.authorizedComment(w, r, authz.CanEditComment)
	if !ok {
		return
	}

	h.renderer.Render(w, r, http.StatusOK, "comment_form", ui.Data{
		Title:   "Edit comment",
		Content: commentContent{Comment: comment},
		Form:    map[string]string{"body": comment.Body},
	})
}

func (h *commentHandler) Update(w http.ResponseWriter, r *http.Request) {
	comment, ok := h.authorizedComment(w, r, authz.CanEditComment)
	if !ok {
		return
	}

	body := strings.TrimSpace(r.FormValue("body"))
	if body == "" {
		h.renderer.Render(w, r, http.StatusUnprocessableEntity, "comment_form", ui.Data{
			Title:   "Edit comment",
			Content: commentContent{Comment: comment},
			Errors:  validation.Errors{"body": "comment is required"},
			Form:    map[string]string{"body": body},
		})
		return
	}

	err := h.commentService.Update(comment, body)
	if err != nil {
		slog.Error("failed to update comment", "error", err, "comment_id", comment.ID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/articles/"+comment.ArticleID, http.StatusSeeOther)
}

func (h *commentHandler) DeletePage(w http.ResponseWriter, r *http.Request) {
	comment, ok := h.authorizedComment(w, r, authz.CanDeleteComment)
	if !ok {
		return
	}

	h.renderer.Render(w, r, http.StatusOK, "comment_delete", ui.Data{
		Title:   "Delete comment",
		Content: commentContent{Comment: comment},
	})
}

func (h *commentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	comment, ok := h.authorizedComment(w, r, authz.CanDeleteComment)
	if !ok {
		return
	}

	err := h.commentService.Delete(comment.ID)
	if err != nil {
		slog.Error("failed to delete comment", "error", err, "comment_id", comment.ID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/articles/"+comment.ArticleID, http.StatusSeeOther)
}

func (h *commentHandler) authorizedComment(w http.ResponseWriter, r *http.Request, allowed func(*model.User, *model.Comment) bool) (*model.Comment, bool) {
	commentID := r.PathValue("id")

	comment, err := h.commentService.ByID(commentID)
	if err != nil {
		if errors.Is(err, service.ErrCommentNotFound) {
			h.renderer.NotFound(w, r)
			return nil, false
		}
		slog.Error("failed to load comment", "error", err, "comment_id", commentID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil, false
	}

	user := ctxkeys.User(r.Context())
	if !allowed(user, comment) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return nil, false
	}

	return comment, true
}
