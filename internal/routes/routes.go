package routes

import (
	"net/http"

	"github.com/nikkilog/nikki/internal/app"
	"github.com/nikkilog/nikki/internal/handler"
	"github.com/nikkilog/nikki/internal/middleware"
	"github.com/nikkilog/nikki/internal/ui"
)

func SetupRoutes(app *app.App, renderer *ui.Renderer) http.Handler {
	// Handlers
	auth := handler.NewAuthHandler(app.AuthService, renderer)
	account := handler.NewAccountHandler(app.UserService, app.ArticleService, app.AuthService, renderer, app.Cfg.AuthorPageSize)
	article := handler.NewArticleHandler(app.ArticleService, app.CategoryService, renderer, app.Cfg.PageSize, app.Cfg.AuthorPageSize)
	comment := handler.NewCommentHandler(app.CommentService, renderer)
	contact := handler.NewContactHandler(app.EmailService, renderer)
	page := handler.NewPageHandler(app.ContentService, renderer)

	mux := http.NewServeMux()

	// Static files
	mux.Handle("GET /static/", ui.StaticHandler())

	// Home and browsing
	mux.HandleFunc("GET /{$}", article.Index)
	mux.HandleFunc("GET /search", article.Search)
	mux.HandleFunc("GET /categories/{slug}", article.Category)
	mux.HandleFunc("GET /authors/{id}", article.Author)
	mux.HandleFunc("GET /articles/{id}", article.Detail)

	// Auth flow (rate limited)
	rateLimiter := middleware.RateLimitAuth()

	mux.HandleFunc("GET /login", middleware.RequireGuest(auth.LoginPage))
	mux.HandleFunc("POST /login", rateLimiter(middleware.RequireGuest(auth.Login)))
	mux.HandleFunc("POST /logout", auth.Logout)

	mux.HandleFunc("GET /register", middleware.RequireGuest(auth.RegisterPage))
	mux.HandleFunc("POST /register", rateLimiter(middleware.RequireGuest(auth.Register)))
	mux.HandleFunc("GET /register/done", auth.RegisterDone)
	mux.HandleFunc("GET /activate/{uid}/{token}", auth.Activate)

	mux.HandleFunc("GET /password-change", middleware.RequireAuth(auth.PasswordChangePage))
	mux.HandleFunc("POST /password-change", middleware.RequireAuth(auth.PasswordChange))
	mux.HandleFunc("GET /password-change/done", middleware.RequireAuth(auth.PasswordChangeDone))

	mux.HandleFunc("GET /password-reset", middleware.RequireGuest(auth.PasswordResetPage))
	mux.HandleFunc("POST /password-reset", rateLimiter(middleware.RequireGuest(auth.PasswordReset)))
	mux.HandleFunc("GET /password-reset/done", auth.PasswordResetDone)
	mux.HandleFunc("GET /reset/done", auth.PasswordResetComplete)
	mux.HandleFunc("GET /reset/{uid}/{token}", auth.PasswordResetConfirmPage)
	mux.HandleFunc("POST /reset/{uid}/{token}", auth.PasswordResetConfirm)

	// Entries
	mux.HandleFunc("GET /articles/new", middleware.RequireAuth(article.NewPage))
	mux.HandleFunc("POST /articles/new", middleware.RequireAuth(article.Create))
	mux.HandleFunc("GET /articles/{id}/edit", middleware.RequireAuth(article.EditPage))
	mux.HandleFunc("POST /articles/{id}/edit", middleware.RequireAuth(article.Update))
	mux.HandleFunc("GET /articles/{id}/delete", middleware.RequireAuth(article.DeletePage))
	mux.HandleFunc("POST /articles/{id}/delete", middleware.RequireAuth(article.Delete))

	// Comments
	mux.HandleFunc("POST /articles/{id}/comments", middleware.RequireAuth(comment.Create))
	mux.HandleFunc("GET /comments/{id}", middleware.RequireAuth(comment.Show))
	mux.HandleFunc("GET /comments/{id}/edit", middleware.RequireAuth(comment.EditPage))
	mux.HandleFunc("POST /comments/{id}/edit", middleware.RequireAuth(comment.Update))
	mux.HandleFunc("GET /comments/{id}/delete", middleware.RequireAuth(comment.DeletePage))
	mux.HandleFunc("POST /comments/{id}/delete", middleware.RequireAuth(comment.Delete))

	// Profiles (self, or superuser moderation)
	mux.HandleFunc("GET /users/{id}", middleware.RequireAuth(account.Detail))
	mux.HandleFunc("GET /users/{id}/edit", middleware.RequireAuth(account.EditPage))
	mux.HandleFunc("POST /users/{id}/edit", middleware.RequireAuth(account.Edit))
	mux.HandleFunc("GET /users/{id}/delete", middleware.RequireAuth(account.DeletePage))
	mux.HandleFunc("POST /users/{id}/delete", middleware.RequireAuth(account.Delete))

	// Contact
	mux.HandleFunc("GET /contact", contact.Page)
	mux.HandleFunc("POST /contact", rateLimiter(contact.Submit))
	mux.HandleFunc("GET /contact/done", contact.Done)

	// Static markdown pages
	mux.HandleFunc("GET /pages/{slug}", page.Show)

	// 404
	mux.HandleFunc("/{path...}", page.NotFound)

	// Global middleware - executed in order (top to bottom)
	return middleware.Chain(
		mux,
		middleware.Config(app.Cfg),
		middleware.SecurityHeaders,
		middleware.RequestLogging,
		middleware.CSRFProtection,
		middleware.AuthMiddleware(app.AuthService, app.UserService),
		middleware.WithURLPath,
	)
}
