package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/nikkilog/nikki/internal/ctxkeys"
	"github.com/nikkilog/nikki/internal/model"
	"github.com/nikkilog/nikki/internal/service"
	"github.com/nikkilog/nikki/internal/ui"
	"github.com/nikkilog/nikki/internal/validation"
)

type authHandler struct {
	authService *service.AuthService
	renderer    *ui.Renderer
}

func NewAuthHandler(authService *service.AuthService, renderer *ui.Renderer) *authHandler {
	return &authHandler{
		authService: authService,
		renderer:    renderer,
	}
}

func (h *authHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, r, http.StatusOK, "login", ui.Data{Title: "Log in"})
}

func (h *authHandler) Login(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	user, err := h.authService.Login(email, password)
	if err != nil {
		message := "Invalid email or password."
		if errors.Is(err, service.ErrAccountInactive) {
			message = "This account has not been activated. Check your inbox for the activation link."
		} else if !errors.Is(err, service.ErrInvalidCredentials) {
			slog.Error("login failed", "error", err)
			message = "Something went wrong. Please try again."
		}
		h.renderer.Render(w, r, http.StatusUnprocessableEntity, "login", ui.Data{
			Title:  "Log in",
			Errors: validation.Errors{"form": message},
			Form:   map[string]string{"email": email},
		})
		return
	}

	jwtToken, err := h.authService.GenerateJWT(user)
	if err != nil {
		slog.Error("failed to generate JWT", "error", err, "user_id", user.ID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.authService.SetJWTCookie(w, jwtToken, time.Now().Add(h.authService.JWTExpiry()))
	slog.Info("user logged in", "user_id", user.ID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *authHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.authService.ClearJWTCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *authHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, r, http.StatusOK, "register", ui.Data{
		Title:   "Sign up",
		Content: registerContent{AgeGroups: model.AgeGroups},
	})
}

type registerContent struct {
	AgeGroups []string
}

func (h *authHandler) Register(w http.ResponseWriter, r *http.Request) {
	in := service.RegisterInput{
		Email:    r.FormValue("email"),
		Nickname: r.FormValue("nickname"),
		AgeGroup: r.FormValue("age_group"),
		Password: r.FormValue("password"),
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
		validation.Field{Name: "password", Value: in.Password, Checks: []func(string) error{validation.ValidatePassword}},
	)
	if fieldErrors.Any() {
		h.renderer.Render(w, r, http.StatusUnprocessableEntity, "register", ui.Data{
			Title:   "Sign up",
			Content: registerContent{AgeGroups: model.AgeGroups},
			Errors:  fieldErrors,
			Form:    form,
		})
		return
	}

	_, err := h.authService.Register(in)
	if err != nil {
		if errors.Is(err, service.ErrEmailAlreadyExists) {
			h.renderer.Render(w, r, http.StatusUnprocessableEntity, "register", ui.Data{
				Title:   "Sign up",
				Content: registerContent{AgeGroups: model.AgeGroups},
				Errors:  validation.Errors{"email": "An account with this email already exists."},
				Form:    form,
			})
			return
		}
		slog.Error("registration failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/register/done", http.StatusSeeOther)
}

func (h *authHandler) RegisterDone(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, r, http.StatusOK, "register_done", ui.Data{Title: "Check your inbox"})
}

// Activate handles the emailed link. Any failure renders the 404 page so a
// forged link and a stale one look the same. Success signs the member in.
func (h *authHandler) Activate(w http.ResponseWriter, r *http.Request) {
	uidToken := r.PathValue("uid")
	emailToken := r.PathValue("token")

	user, err := h.authService.Activate(uidToken, emailToken)
	if err != nil {
		if !errors.Is(err, service.ErrActivationNotFound) {
			slog.Error("activation failed", "error", err)
		}
		h.renderer.NotFound(w, r)
		return
	}

	jwtToken, err := h.authService.GenerateJWT(user)
	if err != nil {
		slog.Error("failed to generate JWT after activation", "error", err, "user_id", user.ID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	h.authService.SetJWTCookie(w, jwtToken, time.Now().Add(h.authService.JWTExpiry()))

	h.renderer.Render(w, r, http.StatusOK, "activate_complete", ui.Data{Title: "Account activated"})
}

func (h *authHandler) PasswordChangePage(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, r, http.StatusOK, "password_change", ui.Data{Title: "Change password"})
}

func (h *authHandler) PasswordChange(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	current := r.FormValue("current_password")
	next := r.FormValue("new_password")

	err := h.authService.ChangePassword(user.ID, current, next)
	if err != nil {
		fieldErrors := validation.Errors{}
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			fieldErrors["current_password"] = "Current password is incorrect."
		default:
			if passwordErr := validation.ValidatePassword(next); passwordErr != nil {
				fieldErrors["new_password"] = passwordErr.Error()
			} else {
				slog.Error("password change failed", "error", err, "user_id", user.ID)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
		}
		h.renderer.Render(w, r, http.StatusUnprocessableEntity, "password_change", ui.Data{
			Title:  "Change password",
			Errors: fieldErrors,
		})
		return
	}

	http.Redirect(w, r, "/password-change/done", http.StatusSeeOther)
}

func (h *authHandler) PasswordChangeDone(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, r, http.StatusOK, "password_change_done", ui.Data{Title: "Password changed"})
}

func (h *authHandler) PasswordResetPage(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, r, http.StatusOK, "password_reset", ui.Data{Title: "Reset password"})
}

func (h *authHandler) PasswordReset(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))

	err := validation.ValidateEmail(email)
	if err != nil {
		h.renderer.Render(w, r, http.StatusUnprocessableEntity, "password_reset", ui.Data{
			Title:  "Reset password",
			Errors: validation.Errors{"email": err.Error()},
			Form:   map[string]string{"email": email},
		})
		return
	}

	// Unknown and inactive addresses are silently accepted inside the
	// service, so an error here is a real failure, not an enumeration
	// signal.
	err = h.authService.RequestPasswordReset(email)
	if err != nil {
		slog.Error("password reset request failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/password-reset/done", http.StatusSeeOther)
}

func (h *authHandler) PasswordResetDone(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, r, http.StatusOK, "password_reset_done", ui.Data{Title: "Check your inbox"})
}

type resetConfirmContent struct {
	Action string
}

// PasswordResetConfirmPage validates the emailed token pair before showing
// the new-password form. Bad links render the 404 page.
func (h *authHandler) PasswordResetConfirmPage(w http.ResponseWriter, r *http.Request) {
	uidToken := r.PathValue("uid")
	emailToken := r.PathValue("token")

	_, err := h.authService.ConfirmPasswordReset(uidToken, emailToken)
	if err != nil {
		if !errors.Is(err, service.ErrResetNotFound) {
			slog.Error("password reset confirmation failed", "error", err)
		}
		h.renderer.NotFound(w, r)
		return
	}

	h.renderer.Render(w, r, http.StatusOK, "password_reset_confirm", ui.Data{
		Title:   "Choose a new password",
		Content: resetConfirmContent{Action: "/reset/" + uidToken + "/" + emailToken},
	})
}

func (h *authHandler) PasswordResetConfirm(w http.ResponseWriter, r *http.Request) {
	uidToken := r.PathValue("uid")
	emailToken := r.PathValue("token")
	next := r.FormValue("new_password")

	_, err := h.authService.CompletePasswordReset(uidToken, emailToken, next)
	if err != nil {
		if errors.Is(err, service.ErrResetNotFound) {
			h.renderer.NotFound(w, r)
			return
		}
		if passwordErr := validation.ValidatePassword(next); passwordErr != nil {
			h.renderer.Render(w, r, http.StatusUnprocessableEntity, "password_reset_confirm", ui.Data{
				Title:   "Choose a new password",
				Content: resetConfirmContent{Action: "/reset/" + uidToken + "/" + emailToken},
				Errors:  validation.Errors{"new_password": passwordErr.Error()},
			})
			return
		}
		slog.Error("password reset failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/reset/done", http.StatusSeeOther)
}

func (h *authHandler) PasswordResetComplete(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, r, http.StatusOK, "password_reset_complete", ui.Data{Title: "Password reset"})
}
