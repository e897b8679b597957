package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/nikkilog/nikki/internal/authz"
	"github.com/nikkilog/nikki/internal/ctxkeys"
	"github.com/nikkilog/nikki/internal/model"
	"github.com/nikkilog/nikki/internal/repository"
	"github.com/nikkilog/nikki/internal/service"
	"github.com/nikkilog/nikki/internal/ui"
	"github.com/nikkilog/nikki/internal/validation"
)

type accountHandler struct {
	userService    *service.UserService
	articleService *service.ArticleService
	authService    *service.AuthService
	renderer       *ui.Renderer
	authorPageSize int
}

func NewAccountHandler(
	userService *service.UserService,
	articleService *service.ArticleService,
	authService *service.AuthService,
	renderer *ui.Renderer,
	authorPageSize int,
) *accountHandler {
	return &accountHandler{
		userService:    userService,
		articleService: articleService,
		authService:    authService,
		renderer:       renderer,
		authorPageSize: authorPageSize,
	}
}

type profileContent struct {
	Account *model.User
	List    *service.ArticleList
	IsSelf  bool
}

// Detail shows a member's profile and entries. Only the account itself or
// a superuser may view it; the public listing lives at /authors/{id}.
func (h *accountHandler) Detail(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")

	current := ctxkeys.User(r.Context())
	if !authz.CanManageUser(current, userID) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	account, list, err := h.articleService.ByAuthor(userID, pageParam(r), h.authorPageSize)
	if err != nil {
		if errors.Is(err, service.ErrArticleNotFound) {
			h.renderer.NotFound(w, r)
			return
		}
		slog.Error("failed to load profile", "error", err, "user_id", userID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.renderer.Render(w, r, http.StatusOK, "user_detail", ui.Data{
		Title: account.DisplayName(),
		Content: profileContent{
			Account: account,
			List:    list,
			IsSelf:  current != nil && current.ID == account.ID,
		},
	})
}

type profileFormContent struct {
	AgeGroups []string
	Action    string
}

func (h *accountHandler) EditPage(w http.ResponseWriter, r *http.Request) {
	account, ok := h.managedAccount(w, r)
	if !ok {
		return
	}

	h.renderer.Render(w, r, http.StatusOK, "user_form", ui.Data{
		Title:   "Edit profile",
		Content: profileFormContent{AgeGroups: model.AgeGroups, Action: "/users/" + account.ID + "/edit"},
		Form: map[string]string{
			"email":     account.Email,
			"nickname":  account.Nickname,
			"age_group": account.AgeGroup,
		},
	})
}

func (h *accountHandler) Edit(w http.ResponseWriter, r *http.Request) {
	account, ok := h.managedAccount(w, r)
	if !ok {
		return
	}

	in := service.UpdateUserInput{
		Email:    r.FormValue("email"),
		Nickname: r.FormValue("nickname"),
		AgeGroup: r.FormValue("age_group"),
	}
	form := map[string]string{
		"email":     in.Email,
		"nickname":  in.Nickname,
		"age_group": in.AgeGroup,
	}

	fieldErrors := validation.Check(
		validation.Field{Name: "email", Value: in.Email, Checks: []func(string) error{validation.ValidateEmail}},
		validation.Field{Name: "nickname", Value: in.Nickname, Checks: []func(string) error{validation.ValidateNickname}},
		validation.Field{Name: "age_group", Value: in.AgeGroup, Checks: []func(string) error{validation.ValidateAgeGroup}},
	)
	if !fieldErrors.Any() {
		_, err := h.userService.Update(account.ID, in)
		switch {
		case err == nil:
			http.Redirect(w, r, "/users/"+account.ID, http.StatusSeeOther)
			return
		case errors.Is(err, service.ErrEmailAlreadyExists):
			fieldErrors["email"] = "An account with this email already exists."
		default:
			slog.Error("failed to update profile", "error", err, "user_id", account.ID)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
	}

	h.renderer.Render(w, r, http.StatusUnprocessableEntity, "user_form", ui.Data{
		Title:   "Edit profile",
		Content: profileFormContent{AgeGroups: model.AgeGroups, Action: "/users/" + account.ID + "/edit"},
		Errors:  fieldErrors,
		Form:    form,
	})
}

func (h *accountHandler) DeletePage(w http.ResponseWriter, r *http.Request) {
	account, ok := h.managedAccount(w, r)
	if !ok {
		return
	}

	h.renderer.Render(w, r, http.StatusOK, "user_delete", ui.Data{
		Title:   "Close account",
		Content: profileContent{Account: account},
	})
}

// Delete soft-disables the account; entries and comments stay published.
// Closing your own account also signs you out, a superuser closing someone
// else's keeps their own session.
func (h *accountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	account, ok := h.managedAccount(w, r)
	if !ok {
		return
	}

	err := h.userService.Deactivate(account.ID)
	if err != nil {
		slog.Error("failed to deactivate account", "error", err, "user_id", account.ID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	current := ctxkeys.User(r.Context())
	if current != nil && current.ID == account.ID {
		h.authService.ClearJWTCookie(w)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// managedAccount resolves the {id} path target and enforces that only the
// account itself or a superuser may manage it. It writes the response on
// failure.
func (h *accountHandler) managedAccount(w http.ResponseWriter, r *http.Request) (*model.User, bool) {
	userID := r.PathValue("id")

	current := ctxkeys.User(r.Context())
	if !authz.CanManageUser(current, userID) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return nil, false
	}

	account, err := h.userService.ByID(userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			h.renderer.NotFound(w, r)
			return nil, false
		}
		slog.Error("failed to load account", "error", err, "user_id", userID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil, false
	}

	return account, true
}
