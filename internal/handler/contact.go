package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/nikkilog/nikki/internal/service"
	"github.com/nikkilog/nikki/internal/ui"
	"github.com/nikkilog/nikki/internal/validation"
)

type contactHandler struct {
	mailer   service.Mailer
	renderer *ui.Renderer
}

func NewContactHandler(mailer service.Mailer, renderer *ui.Renderer) *contactHandler {
	return &contactHandler{
		mailer:   mailer,
		renderer: renderer,
	}
}

func (h *contactHandler) Page(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, r, http.StatusOK, "contact", ui.Data{Title: "Contact"})
}

func (h *contactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.FormValue("name"))
	email := strings.TrimSpace(r.FormValue("email"))
	message := strings.TrimSpace(r.FormValue("message"))

	form := map[string]string{"name": name, "email": email, "message": message}

	fieldErrors := validation.Check(
		validation.Field{Name: "name", Value: name, Checks: []func(string) error{validation.Required("name"), validation.MaxLen("name", 100)}},
		validation.Field{Name: "email", Value: email, Checks: []func(string) error{validation.ValidateEmail}},
		validation.Field{Name: "message", Value: message, Checks: []func(string) error{validation.Required("message"), validation.MaxLen("message", 5000)}},
	)
	if fieldErrors.Any() {
		h.renderer.Render(w, r, http.StatusUnprocessableEntity, "contact", ui.Data{
			Title:  "Contact",
			Errors: fieldErrors,
			Form:   form,
		})
		return
	}

	err := h.mailer.SendContactEmail(name, email, message)
	if err != nil {
		slog.Error("failed to send contact email", "error", err)
		h.renderer.Render(w, r, http.StatusInternalServerError, "contact", ui.Data{
			Title:  "Contact",
			Errors: validation.Errors{"message": "Your message could not be sent. Please try again later."},
			Form:   form,
		})
		return
	}

	http.Redirect(w, r, "/contact/done", http.StatusSeeOther)
}

func (h *contactHandler) Done(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, r, http.StatusOK, "contact_done", ui.Data{Title: "Message sent"})
}
