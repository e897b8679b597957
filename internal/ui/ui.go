package ui

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/nikkilog/nikki/internal/ctxkeys"
	"github.com/nikkilog/nikki/internal/model"
	"github.com/nikkilog/nikki/internal/validation"
)

//go:embed templates/layout.html templates/pages/*.html static/*
var assetsFS embed.FS

// Data is the payload every template receives. Render fills the
// request-scoped fields; handlers only set the rest.
type Data struct {
	Title     string
	AppName   string
	User      *model.User
	CSRFToken string
	Path      string
	Errors    validation.Errors
	Form      map[string]string
	Content   any
}

// Renderer parses the embedded templates once at startup and renders
// layout-wrapped pages.
type Renderer struct {
	templates map[string]*template.Template
}

func NewRenderer() (*Renderer, error) {
	funcs := template.FuncMap{
		"formatDate": func(t time.Time) string {
			return t.Format("Jan 2, 2006")
		},
		"formatDateTime": func(t time.Time) string {
			return t.Format("Jan 2, 2006 15:04")
		},
		"failureImage": func(n int) string {
			return fmt.Sprintf("/static/failure/%d.svg", n)
		},
	}

	pages, err := fs.Glob(assetsFS, "templates/pages/*.html")
	if err != nil {
		return nil, fmt.Errorf("globbing templates: %w", err)
	}

	templates := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		name := stripPage(page)
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(assetsFS, "templates/layout.html", page)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", page, err)
		}
		templates[name] = t
	}

	return &Renderer{templates: templates}, nil
}

func stripPage(path string) string {
	name := path[len("templates/pages/"):]
	return name[:len(name)-len(".html")]
}

// Render writes the named page wrapped in the site layout. Request-scoped
// values like the signed-in user and CSRF token come from the context.
func (r *Renderer) Render(w http.ResponseWriter, req *http.Request, status int, page string, data Data) {
	t, ok := r.templates[page]
	if !ok {
		slog.Error("unknown template", "page", page)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ctx := req.Context()
	data.User = ctxkeys.User(ctx)
	data.CSRFToken = ctxkeys.CSRFToken(ctx)
	data.Path = ctxkeys.URLPath(ctx)
	if cfg := ctxkeys.Config(ctx); cfg != nil {
		data.AppName = cfg.AppName
	}
	if data.Form == nil {
		data.Form = map[string]string{}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := t.ExecuteTemplate(w, "layout.html", data); err != nil {
		slog.Error("rendering template", "page", page, "error", err)
	}
}

// NotFound renders the site 404 page.
func (r *Renderer) NotFound(w http.ResponseWriter, req *http.Request) {
	r.Render(w, req, http.StatusNotFound, "404", Data{Title: "Page not found"})
}

// StaticHandler serves the embedded static assets under /static/.
func StaticHandler() http.Handler {
	sub, err := fs.Sub(assetsFS, "static")
	if err != nil {
		panic("static assets missing: " + err.Error())
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}
