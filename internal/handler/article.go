package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/nikkilog/nikki/internal/authz"
	"github.com/nikkilog/nikki/internal/ctxkeys"
	"github.com/nikkilog/nikki/internal/model"
	"github.com/nikkilog/nikki/internal/service"
	"github.com/nikkilog/nikki/internal/ui"
	"github.com/nikkilog/nikki/internal/validation"
)

type articleHandler struct {
	articleService  *service.ArticleService
	categoryService *service.CategoryService
	renderer        *ui.Renderer
	pageSize        int
	authorPageSize  int
}

func NewArticleHandler(
	articleService *service.ArticleService,
	categoryService *service.CategoryService,
	renderer *ui.Renderer,
	pageSize, authorPageSize int,
) *articleHandler {
	return &articleHandler{
		articleService:  articleService,
		categoryService: categoryService,
		renderer:        renderer,
		pageSize:        pageSize,
		authorPageSize:  authorPageSize,
	}
}

func (h *articleHandler) Index(w http.ResponseWriter, r *http.Request) {
	sections, err := h.articleService.Index()
	if err != nil {
		slog.Error("failed to build index", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.renderer.Render(w, r, http.StatusOK, "index", ui.Data{Content: sections})
}

type searchContent struct {
	Query string
	List  *service.ArticleList
}

func (h *articleHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	content := searchContent{Query: query}
	if query != "" {
		list, err := h.articleService.Search(query, pageParam(r), h.pageSize)
		if err != nil {
			slog.Error("search failed", "error", err, "query", query)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		content.List = list
	}

	h.renderer.Render(w, r, http.StatusOK, "search", ui.Data{Title: "Search", Content: content})
}

type categoryContent struct {
	Category *model.Category
	List     *service.ArticleList
}

func (h *articleHandler) Category(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")

	category, list, err := h.articleService.ByCategorySlug(slug, pageParam(r), h.pageSize)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCategory) {
			h.renderer.NotFound(w, r)
			return
		}
		slog.Error("failed to list category", "error", err, "slug", slug)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.renderer.Render(w, r, http.StatusOK, "category", ui.Data{
		Title:   category.Name,
		Content: categoryContent{Category: category, List: list},
	})
}

type authorContent struct {
	Author *model.User
	List   *service.ArticleList
}

func (h *articleHandler) Author(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")

	author, list, err := h.articleService.ByAuthor(userID, pageParam(r), h.authorPageSize)
	if err != nil {
		if errors.Is(err, service.ErrArticleNotFound) {
			h.renderer.NotFound(w, r)
			return
		}
		slog.Error("failed to list author", "error", err, "user_id", userID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.renderer.Render(w, r, http.StatusOK, "author", ui.Data{
		Title:   "Entries by " + author.DisplayName(),
		Content: authorContent{Author: author, List: list},
	})
}

type detailContent struct {
	Detail    *service.ArticleDetail
	CanEdit   bool
	CanDelete bool
}

func (h *articleHandler) Detail(w http.ResponseWriter, r *http.Request) {
	articleID := r.PathValue("id")

	detail, err := h.articleService.Detail(articleID)
	if err != nil {
		if errors.Is(err, service.ErrArticleNotFound) {
			h.renderer.NotFound(w, r)
			return
		}
		slog.Error("failed to load article", "error", err, "article_id", articleID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	user := ctxkeys.User(r.Context())
	h.renderer.Render(w, r, http.StatusOK, "article_detail", ui.Data{
		Title: detail.Article.Title,
		Content: detailContent{
			Detail:    detail,
			CanEdit:   authz.CanEditArticle(user, detail.Article),
			CanDelete: authz.CanDeleteArticle(user, detail.Article),
		},
	})
}

type articleFormContent struct {
	Action     string
	Categories []*model.Category
	Images     []int
}

func (h *articleHandler) formContent(action string) (articleFormContent, error) {
	categories, err := h.categoryService.All()
	if err != nil {
		return articleFormContent{}, err
	}

	images := make([]int, 0, model.FailureImageMax+1)
	for i := model.FailureImageNone; i <= model.FailureImageMax; i++ {
		images = append(images, i)
	}

	return articleFormContent{Action: action, Categories: categories, Images: images}, nil
}

func (h *articleHandler) NewPage(w http.ResponseWriter, r *http.Request) {
	content, err := h.formContent("/articles/new")
	if err != nil {
		slog.Error("failed to load article form", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.renderer.Render(w, r, http.StatusOK, "article_form", ui.Data{
		Title:   "New entry",
		Content: content,
		Form:    map[string]string{"failure_image": "0"},
	})
}

func (h *articleHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	in, form, fieldErrors := h.parseForm(r)
	if fieldErrors.Any() {
		content, err := h.formContent("/articles/new")
		if err != nil {
			slog.Error("failed to load article form", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		h.renderer.Render(w, r, http.StatusUnprocessableEntity, "article_form", ui.Data{
			Title:   "New entry",
			Content: content,
			Errors:  fieldErrors,
			Form:    form,
		})
		return
	}

	article, err := h.articleService.Create(user.ID, in)
	if err != nil {
		h.renderFormError(w, r, "/articles/new", "New entry", form, err)
		return
	}

	http.Redirect(w, r, "/articles/"+article.ID, http.StatusSeeOther)
}

func (h *articleHandler) EditPage(w http.ResponseWriter, r *http.Request) {
	article, ok := h.editableArticle(w, r)
	if !ok {
		return
	}

	content, err := h.formContent("/articles/" + article.ID + "/edit")
	if err != nil {
		slog.Error("failed to load article form", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.renderer.Render(w, r, http.StatusOK, "article_form", ui.Data{
		Title:   "Edit entry",
		Content: content,
		Form: map[string]string{
			"category_id":   article.CategoryID,
			"title":         article.Title,
			"body":          article.Body,
			"failure_image": strconv.Itoa(article.FailureImage),
		},
	})
}

func (h *articleHandler) Update(w http.ResponseWriter, r *http.Request) {
	article, ok := h.editableArticle(w, r)
	if !ok {
		return
	}

	action := "/articles/" + article.ID + "/edit"
	in, form, fieldErrors := h.parseForm(r)
	if fieldErrors.Any() {
		content, err := h.formContent(action)
		if err != nil {
			slog.Error("failed to load article form", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		h.renderer.Render(w, r, http.StatusUnprocessableEntity, "article_form", ui.Data{
			Title:   "Edit entry",
			Content: content,
			Errors:  fieldErrors,
			Form:    form,
		})
		return
	}

	err := h.articleService.Update(article, in)
	if err != nil {
		h.renderFormError(w, r, action, "Edit entry", form, err)
		return
	}

	http.Redirect(w, r, "/articles/"+article.ID, http.StatusSeeOther)
}

func (h *articleHandler) DeletePage(w http.ResponseWriter, r *http.Request) {
	article, ok := h.deletableArticle(w, r)
	if !ok {
		return
	}

	h.renderer.Render(w, r, http.StatusOK, "article_delete", ui.Data{
		Title:   "Delete entry",
		Content: struct{ Article *model.Article }{article},
	})
}

func (h *articleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	article, ok := h.deletableArticle(w, r)
	if !ok {
		return
	}

	err := h.articleService.Delete(article.ID)
	if err != nil {
		slog.Error("failed to delete article", "error", err, "article_id", article.ID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// editableArticle loads the article and enforces owner-only editing. It
// writes the response on failure.
func (h *articleHandler) editableArticle(w http.ResponseWriter, r *http.Request) (*model.Article, bool) {
	return h.authorizedArticle(w, r, authz.CanEditArticle)
}

func (h *articleHandler) deletableArticle(w http.ResponseWriter, r *http.Request) (*model.Article, bool) {
	return h.authorizedArticle(w, r, authz.CanDeleteArticle)
}

func (h *articleHandler) authorizedArticle(w http.ResponseWriter, r *http.Request, allowed func(*model.User, *model.Article) bool) (*model.Article, bool) {
	articleID := r.PathValue("id")

	article, err := h.articleService.ByID(articleID)
	if err != nil {
		if errors.Is(err, service.ErrArticleNotFound) {
			h.renderer.NotFound(w, r)
			return nil, false
		}
		slog.Error("failed to load article", "error", err, "article_id", articleID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil, false
	}

	user := ctxkeys.User(r.Context())
	if !allowed(user, article) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return nil, false
	}

	return article, true
}

func (h *articleHandler) parseForm(r *http.Request) (service.ArticleInput, map[string]string, validation.Errors) {
	form := map[string]string{
		"category_id":   r.FormValue("category_id"),
		"title":         r.FormValue("title"),
		"body":          r.FormValue("body"),
		"failure_image": r.FormValue("failure_image"),
	}

	fieldErrors := validation.Check(
		validation.Field{Name: "category_id", Value: form["category_id"], Checks: []func(string) error{validation.Required("category")}},
		validation.Field{Name: "title", Value: form["title"], Checks: []func(string) error{validation.Required("title"), validation.MaxLen("title", 255)}},
		validation.Field{Name: "body", Value: form["body"], Checks: []func(string) error{validation.Required("entry"), validation.MaxLen("entry", 2500)}},
	)

	image, err := strconv.Atoi(form["failure_image"])
	if err != nil || !model.ValidFailureImage(image) {
		if fieldErrors == nil {
			fieldErrors = validation.Errors{}
		}
		fieldErrors["failure_image"] = "invalid illustration"
	}

	in := service.ArticleInput{
		CategoryID:   form["category_id"],
		Title:        form["title"],
		Body:         form["body"],
		FailureImage: image,
	}
	return in, form, fieldErrors
}

func (h *articleHandler) renderFormError(w http.ResponseWriter, r *http.Request, action, title string, form map[string]string, err error) {
	fieldErrors := validation.Errors{}
	switch {
	case errors.Is(err, service.ErrInvalidCategory):
		fieldErrors["category_id"] = "invalid category"
	case errors.Is(err, service.ErrInvalidImage):
		fieldErrors["failure_image"] = "invalid illustration"
	default:
		slog.Error("failed to save article", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	content, contentErr := h.formContent(action)
	if contentErr != nil {
		slog.Error("failed to load article form", "error", contentErr)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.renderer.Render(w, r, http.StatusUnprocessableEntity, "article_form", ui.Data{
		Title:   title,
		Content: content,
		Errors:  fieldErrors,
		Form:    form,
	})
}

func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
